package handler

import (
	"net/http"

	"planta/internal/dto"
	"planta/internal/service"

	"github.com/gin-gonic/gin"
)

type PresupuestosHandler struct{ svc service.PresupuestoService }

func NewPresupuestosHandler(svc service.PresupuestoService) *PresupuestosHandler {
	return &PresupuestosHandler{svc: svc}
}

// Sincronizar godoc
// @Summary      Importar presupuestos desde una planilla
// @Description  Sincronización en un solo sentido, planilla a base. Con async=true se encola.
// @Tags         presupuestos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.SincronizarRequest true "Planilla"
// @Success      200  {object} dto.SincronizacionResponse
// @Success      202  {object} dto.SincronizacionResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/presupuestos/sincronizar [post]
func (h *PresupuestosHandler) Sincronizar(c *gin.Context) {
	var req dto.SincronizarRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.Async {
		resp, err := h.svc.SincronizarAsync(c.Request.Context(), req.HojaID)
		if err != nil {
			responderError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, resp)
		return
	}
	resp, err := h.svc.Sincronizar(c.Request.Context(), req.HojaID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar presupuestos importados
// @Tags         presupuestos
// @Produce      json
// @Security     BearerAuth
// @Param        hoja_id query string false "Filtrar por planilla"
// @Success      200  {array} dto.PresupuestoResponse
// @Router       /v1/presupuestos [get]
func (h *PresupuestosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("hoja_id"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener presupuesto con su detalle
// @Tags         presupuestos
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del presupuesto"
// @Success      200  {object} dto.PresupuestoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/presupuestos/{id} [get]
func (h *PresupuestosHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
