package handler

import (
	"net/http"

	"planta/internal/dto"
	"planta/internal/middleware"
	"planta/internal/service"

	"github.com/gin-gonic/gin"
)

// CarrosHandler serves cart editing and the consolidated views. Every
// route is scoped to the authenticated usuario.
type CarrosHandler struct {
	svc        service.CarroService
	agregacion service.AgregacionService
}

func NewCarrosHandler(svc service.CarroService, agregacion service.AgregacionService) *CarrosHandler {
	return &CarrosHandler{svc: svc, agregacion: agregacion}
}

// Crear godoc
// @Summary      Crear carro de producción
// @Tags         carros
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearCarroRequest true "Tipo de carro"
// @Success      201  {object} dto.CarroResponse
// @Router       /v1/carros [post]
func (h *CarrosHandler) Crear(c *gin.Context) {
	var req dto.CrearCarroRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), middleware.UsuarioID(c), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Carros del usuario
// @Tags         carros
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.CarroResponse
// @Router       /v1/carros [get]
func (h *CarrosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), middleware.UsuarioID(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener carro
// @Tags         carros
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del carro"
// @Success      200  {object} dto.CarroResponse
// @Failure      403  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/carros/{id} [get]
func (h *CarrosHandler) Obtener(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), middleware.UsuarioID(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenEliminacion godoc
// @Summary      Conteo de lo que borraría eliminar el carro
// @Tags         carros
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del carro"
// @Success      200  {object} dto.ResumenEliminacionResponse
// @Router       /v1/carros/{id}/resumen-eliminacion [get]
func (h *CarrosHandler) ResumenEliminacion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ResumenEliminacion(c.Request.Context(), middleware.UsuarioID(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar carro
// @Description  Revierte todos los movimientos de stock del carro, en cualquier estado.
// @Tags         carros
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del carro"
// @Success      200  {object} dto.ResumenEliminacionResponse
// @Router       /v1/carros/{id} [delete]
func (h *CarrosHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Eliminar(c.Request.Context(), middleware.UsuarioID(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Artículos del carro ──────────────────────────────────────────────────────

// ListarArticulos godoc
// @Summary      Artículos del carro
// @Tags         carros
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del carro"
// @Success      200  {array} dto.CarroArticuloResponse
// @Router       /v1/carros/{id}/articulos [get]
func (h *CarrosHandler) ListarArticulos(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListarArticulos(c.Request.Context(), middleware.UsuarioID(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarArticulo godoc
// @Summary      Agregar artículo al carro
// @Description  Suma la cantidad si el artículo ya está. Responde 409 integridad si la receta tiene faltantes y no se confirmó.
// @Tags         carros
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                        true "ID del carro"
// @Param        body body dto.AgregarArticuloRequest true "Artículo"
// @Success      200  {object} dto.CarroResponse
// @Failure      409  {object} apierror.IntegrityResponse
// @Router       /v1/carros/{id}/articulos [post]
func (h *CarrosHandler) AgregarArticulo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.AgregarArticuloRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarArticulo(c.Request.Context(), middleware.UsuarioID(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ModificarCantidad godoc
// @Summary      Cambiar la cantidad de un artículo
// @Tags         carros
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int                          true "ID del carro"
// @Param        numero path string                       true "Número de artículo"
// @Param        body   body dto.ModificarCantidadRequest true "Cantidad"
// @Success      200  {object} dto.CarroResponse
// @Router       /v1/carros/{id}/articulos/{numero} [put]
func (h *CarrosHandler) ModificarCantidad(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ModificarCantidadRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ModificarCantidad(c.Request.Context(), middleware.UsuarioID(c), id, c.Param("numero"), req.Cantidad)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarArticulo godoc
// @Summary      Quitar un artículo del carro
// @Tags         carros
// @Produce      json
// @Security     BearerAuth
// @Param        id     path int    true "ID del carro"
// @Param        numero path string true "Número de artículo"
// @Success      200  {object} dto.CarroResponse
// @Router       /v1/carros/{id}/articulos/{numero} [delete]
func (h *CarrosHandler) EliminarArticulo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.EliminarArticulo(c.Request.Context(), middleware.UsuarioID(c), id, c.Param("numero"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarVinculado godoc
// @Summary      Ajustar un artículo vinculado
// @Description  Solo carros externos en estado preparado.
// @Tags         carros
// @Accept       json
// @Security     BearerAuth
// @Param        id     path int                            true "ID del carro"
// @Param        numero path string                         true "Número del artículo vinculado"
// @Param        body   body dto.ActualizarVinculadoRequest true "Cantidad consumida"
// @Success      204
// @Router       /v1/carros/{id}/vinculados/{numero} [put]
func (h *CarrosHandler) ActualizarVinculado(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarVinculadoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.ActualizarVinculado(c.Request.Context(), middleware.UsuarioID(c), id, c.Param("numero"), req.Cantidad); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Vistas consolidadas ──────────────────────────────────────────────────────

// Ingredientes godoc
// @Summary      Ingredientes consolidados del carro
// @Tags         agregacion
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del carro"
// @Success      200  {object} dto.IngredientesConsolidadosResponse
// @Router       /v1/carros/{id}/ingredientes [get]
func (h *CarrosHandler) Ingredientes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.agregacion.Ingredientes(c.Request.Context(), middleware.UsuarioID(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Mixes godoc
// @Summary      Mixes consolidados del carro
// @Tags         agregacion
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del carro"
// @Success      200  {array} dto.MixConsolidado
// @Router       /v1/carros/{id}/mixes [get]
func (h *CarrosHandler) Mixes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.agregacion.Mixes(c.Request.Context(), middleware.UsuarioID(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Vinculados godoc
// @Summary      Artículos vinculados consumidos por el carro
// @Tags         agregacion
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del carro"
// @Success      200  {array} dto.ArticuloVinculado
// @Router       /v1/carros/{id}/vinculados [get]
func (h *CarrosHandler) Vinculados(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.agregacion.Articulos(c.Request.Context(), middleware.UsuarioID(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
