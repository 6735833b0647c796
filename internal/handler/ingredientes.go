package handler

import (
	"net/http"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/service"

	"github.com/gin-gonic/gin"
)

type IngredientesHandler struct{ svc service.IngredienteService }

func NewIngredientesHandler(svc service.IngredienteService) *IngredientesHandler {
	return &IngredientesHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear ingrediente
// @Tags         ingredientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearIngredienteRequest true "Ingrediente"
// @Success      201  {object} dto.IngredienteResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/ingredientes [post]
func (h *IngredientesHandler) Crear(c *gin.Context) {
	var req dto.CrearIngredienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Buscar ingredientes
// @Description  Búsqueda por palabras, sin distinguir mayúsculas ni acentos.
// @Tags         ingredientes
// @Produce      json
// @Security     BearerAuth
// @Param        q          query string false "Texto de búsqueda"
// @Param        categoria  query string false "Categoría"
// @Param        solo_mixes query bool   false "Solo raíces de mix"
// @Success      200  {array} dto.IngredienteResponse
// @Router       /v1/ingredientes [get]
func (h *IngredientesHandler) Listar(c *gin.Context) {
	var filter dto.IngredienteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Obtener ingrediente
// @Tags         ingredientes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del ingrediente"
// @Success      200  {object} dto.IngredienteResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ingredientes/{id} [get]
func (h *IngredientesHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar ingrediente
// @Description  No modifica el stock; este solo cambia por movimientos.
// @Tags         ingredientes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                             true "ID del ingrediente"
// @Param        body body dto.ActualizarIngredienteRequest true "Datos"
// @Success      200  {object} dto.IngredienteResponse
// @Router       /v1/ingredientes/{id} [put]
func (h *IngredientesHandler) Actualizar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarIngredienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar ingrediente
// @Tags         ingredientes
// @Security     BearerAuth
// @Param        id path int true "ID del ingrediente"
// @Success      204
// @Router       /v1/ingredientes/{id} [delete]
func (h *IngredientesHandler) Eliminar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Composición de mixes ─────────────────────────────────────────────────────

// ObtenerComposicion godoc
// @Summary      Composición de un mix
// @Tags         mixes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del mix"
// @Success      200  {object} dto.MixComposicionResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ingredientes/{id}/composicion [get]
func (h *IngredientesHandler) ObtenerComposicion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerComposicion(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarComponente godoc
// @Summary      Agregar componente a un mix
// @Tags         mixes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                   true "ID del mix"
// @Param        body body dto.ComponenteRequest true "Componente"
// @Success      200  {object} dto.MixComposicionResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/ingredientes/{id}/composicion [post]
func (h *IngredientesHandler) AgregarComponente(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.ComponenteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarComponente(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ActualizarComponente godoc
// @Summary      Cambiar la cantidad de un componente
// @Tags         mixes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id             path int                             true "ID del mix"
// @Param        ingrediente_id path int                             true "ID del componente"
// @Param        body           body dto.ActualizarComponenteRequest true "Cantidad"
// @Success      200  {object} dto.MixComposicionResponse
// @Router       /v1/ingredientes/{id}/composicion/{ingrediente_id} [put]
func (h *IngredientesHandler) ActualizarComponente(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	compID, ok := paramID(c, "ingrediente_id")
	if !ok {
		return
	}
	var req dto.ActualizarComponenteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarComponente(c.Request.Context(), id, compID, req.Cantidad)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarComponente godoc
// @Summary      Quitar un componente
// @Tags         mixes
// @Produce      json
// @Security     BearerAuth
// @Param        id             path int true "ID del mix"
// @Param        ingrediente_id path int true "ID del componente"
// @Success      200  {object} dto.MixComposicionResponse
// @Router       /v1/ingredientes/{id}/composicion/{ingrediente_id} [delete]
func (h *IngredientesHandler) EliminarComponente(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	compID, ok := paramID(c, "ingrediente_id")
	if !ok {
		return
	}
	resp, err := h.svc.EliminarComponente(c.Request.Context(), id, compID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarComposicion godoc
// @Summary      Eliminar la composición completa
// @Tags         mixes
// @Security     BearerAuth
// @Param        id path int true "ID del mix"
// @Success      204
// @Router       /v1/ingredientes/{id}/composicion [delete]
func (h *IngredientesHandler) EliminarComposicion(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarComposicion(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ActualizarRecetaBase godoc
// @Summary      Fijar los kilos base del mix
// @Tags         mixes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                   true "ID del mix"
// @Param        body body dto.RecetaBaseRequest true "Kilos base"
// @Success      200  {object} dto.MixComposicionResponse
// @Router       /v1/ingredientes/{id}/receta-base [put]
func (h *IngredientesHandler) ActualizarRecetaBase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.RecetaBaseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ActualizarRecetaBase(c.Request.Context(), id, req.RecetaBaseKg)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// BuscarArticulos godoc
// @Summary      Buscar artículos
// @Tags         articulos
// @Produce      json
// @Security     BearerAuth
// @Param        q query string false "Texto de búsqueda"
// @Success      200  {array} dto.ArticuloResponse
// @Router       /v1/articulos [get]
func (h *IngredientesHandler) BuscarArticulos(c *gin.Context) {
	var filter dto.ArticuloFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parametros invalidos: "+err.Error()))
		return
	}
	resp, err := h.svc.BuscarArticulos(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
