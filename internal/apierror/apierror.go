// Package apierror provides standardized error response structures for the API
// and the typed domain errors services return. Handlers translate a domain
// error into an envelope with HTTPStatus and Respuesta so persistence details
// never reach the client.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"planta/internal/expansion"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Tipo   string `json:"tipo,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}

// IntegrityResponse is returned when an action needs explicit acknowledgement.
type IntegrityResponse struct {
	Detail       string                  `json:"detail"`
	Tipo         string                  `json:"tipo"`
	Advertencias []expansion.Advertencia `json:"advertencias"`
}

// ── Domain errors ────────────────────────────────────────────────────────────

type Tipo string

const (
	NoEncontrado Tipo = "no_encontrado"
	Validacion   Tipo = "validacion"
	Integridad   Tipo = "integridad"
	Propiedad    Tipo = "propiedad"
	Estado       Tipo = "estado"
	Persistencia Tipo = "persistencia"
)

// Error is a domain error carrying its category.
type Error struct {
	Tipo         Tipo
	Mensaje      string
	Advertencias []expansion.Advertencia
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Mensaje, e.Err)
	}
	return e.Mensaje
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...any) *Error {
	return &Error{Tipo: NoEncontrado, Mensaje: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) *Error {
	return &Error{Tipo: Validacion, Mensaje: fmt.Sprintf(format, args...)}
}

func IntegrityWarning(msg string, adv []expansion.Advertencia) *Error {
	return &Error{Tipo: Integridad, Mensaje: msg, Advertencias: adv}
}

func Ownership() *Error {
	return &Error{Tipo: Propiedad, Mensaje: "El carro pertenece a otro usuario"}
}

func State(format string, args ...any) *Error {
	return &Error{Tipo: Estado, Mensaje: fmt.Sprintf(format, args...)}
}

func Persistence(op string, err error) *Error {
	return &Error{Tipo: Persistencia, Mensaje: "Error al " + op, Err: err}
}

// Es reports whether err is a domain error of tipo t.
func Es(err error, t Tipo) bool {
	var e *Error
	return errors.As(err, &e) && e.Tipo == t
}

// HTTPStatus maps err to its status code. Unknown errors are 500.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Tipo {
	case NoEncontrado:
		return http.StatusNotFound
	case Validacion:
		return http.StatusUnprocessableEntity
	case Integridad, Estado:
		return http.StatusConflict
	case Propiedad:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Respuesta builds the client-facing body for err.
func Respuesta(err error) any {
	var e *Error
	if !errors.As(err, &e) || e.Tipo == Persistencia {
		return &APIError{Detail: "Error interno del servidor", Tipo: string(Persistencia)}
	}
	if e.Tipo == Integridad {
		return &IntegrityResponse{Detail: e.Mensaje, Tipo: string(e.Tipo), Advertencias: e.Advertencias}
	}
	return &APIError{Detail: e.Mensaje, Tipo: string(e.Tipo)}
}
