package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type SincronizarRequest struct {
	HojaID string `json:"hoja_id" validate:"required,max=120"`
	Async  bool   `json:"async"`
}

type SincronizacionResponse struct {
	HojaID       string    `json:"hoja_id"`
	Presupuestos int       `json:"presupuestos"`
	Detalles     int       `json:"detalles"`
	Omitidas     int       `json:"filas_omitidas"`
	Encolado     bool      `json:"encolado"`
	Fecha        time.Time `json:"fecha"`
}

type PresupuestoDetalleResponse struct {
	Articulo       string          `json:"articulo"`
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Diferencia     decimal.Decimal `json:"diferencia"`
}

type PresupuestoResponse struct {
	ID             uint                         `json:"id"`
	IDExterno      string                       `json:"id_externo"`
	HojaID         string                       `json:"hoja_id"`
	Cliente        string                       `json:"cliente"`
	Fecha          *time.Time                   `json:"fecha,omitempty"`
	Estado         string                       `json:"estado"`
	Total          decimal.Decimal              `json:"total"`
	SincronizadoEn time.Time                    `json:"sincronizado_en"`
	Detalles       []PresupuestoDetalleResponse `json:"detalles,omitempty"`
}
