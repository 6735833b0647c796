package handler

import (
	"net/http"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/middleware"
	"planta/internal/service"

	"github.com/gin-gonic/gin"
)

// CicloHandler serves the cart lifecycle and the outputs of a confirmed cart.
type CicloHandler struct {
	ciclo      service.CicloService
	documentos service.DocumentoService
}

func NewCicloHandler(ciclo service.CicloService, documentos service.DocumentoService) *CicloHandler {
	return &CicloHandler{ciclo: ciclo, documentos: documentos}
}

// CambiarEstado godoc
// @Summary      Avanzar el estado del carro
// @Description  Sin estado avanza al siguiente. Confirmar un carro externo exige kilos_producidos > 0.
// @Tags         ciclo
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                      true "ID del carro"
// @Param        body body dto.CambiarEstadoRequest true "Destino"
// @Success      200  {object} dto.TransicionResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/carros/{id}/estado [post]
func (h *CicloHandler) CambiarEstado(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.CambiarEstadoRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ciclo.CambiarEstado(c.Request.Context(), middleware.UsuarioID(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GuardarIngredientes godoc
// @Summary      Guardar ajustes finales de ingredientes
// @Description  Solo carros internos confirmados. Se aplican únicamente las filas con ajustar=true.
// @Tags         ciclo
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                            true "ID del carro"
// @Param        body body dto.GuardarIngredientesRequest true "Ajustes"
// @Success      200  {object} dto.GuardarIngredientesResponse
// @Router       /v1/carros/{id}/ingredientes-finales [post]
func (h *CicloHandler) GuardarIngredientes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.GuardarIngredientesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.ciclo.GuardarIngredientes(c.Request.Context(), middleware.UsuarioID(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Salidas ──────────────────────────────────────────────────────────────────

// ImprimirEtiquetas godoc
// @Summary      Imprimir etiquetas del carro
// @Tags         documentos
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del carro"
// @Success      202  {object} dto.ImpresionResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/carros/{id}/etiquetas [post]
func (h *CicloHandler) ImprimirEtiquetas(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.documentos.ImprimirEtiquetas(c.Request.Context(), middleware.UsuarioID(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// GenerarInforme godoc
// @Summary      Informe de consolidación
// @Description  Genera el PDF de ingredientes consolidados y opcionalmente lo envía por correo.
// @Tags         documentos
// @Produce      json
// @Security     BearerAuth
// @Param        id           path  int    true  "ID del carro"
// @Param        destinatario query string false "Correo destino"
// @Success      202  {object} dto.InformeResponse
// @Router       /v1/carros/{id}/informe [post]
func (h *CicloHandler) GenerarInforme(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	destinatario := c.Query("destinatario")
	if destinatario != "" {
		if err := validate.Var(destinatario, "email"); err != nil {
			c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"destinatario": "email"}))
			return
		}
	}
	resp, err := h.documentos.GenerarInforme(c.Request.Context(), middleware.UsuarioID(c), id, destinatario)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}
