package handler

import (
	"net/http"
	"strconv"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/service"

	"github.com/gin-gonic/gin"
)

type RecetasHandler struct{ svc service.RecetaService }

func NewRecetasHandler(svc service.RecetaService) *RecetasHandler { return &RecetasHandler{svc: svc} }

// Obtener godoc
// @Summary      Receta de un artículo
// @Description  Devuelve null cuando el artículo no tiene receta.
// @Tags         recetas
// @Produce      json
// @Security     BearerAuth
// @Param        numero path string true "Número de artículo"
// @Success      200  {object} dto.RecetaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/articulos/{numero}/receta [get]
func (h *RecetasHandler) Obtener(c *gin.Context) {
	resp, err := h.svc.Obtener(c.Request.Context(), c.Param("numero"))
	if err != nil {
		responderError(c, err)
		return
	}
	if resp == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Guardar godoc
// @Summary      Reemplazar la receta de un artículo
// @Tags         recetas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        numero path string                 true "Número de artículo"
// @Param        body   body dto.GuardarRecetaRequest true "Receta"
// @Success      200  {object} dto.RecetaResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/articulos/{numero}/receta [put]
func (h *RecetasHandler) Guardar(c *gin.Context) {
	var req dto.GuardarRecetaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), c.Param("numero"), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Eliminar la receta de un artículo
// @Tags         recetas
// @Security     BearerAuth
// @Param        numero path string true "Número de artículo"
// @Success      204
// @Router       /v1/articulos/{numero}/receta [delete]
func (h *RecetasHandler) Eliminar(c *gin.Context) {
	if err := h.svc.Eliminar(c.Request.Context(), c.Param("numero")); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Integridad godoc
// @Summary      Verificar la integridad de una receta
// @Tags         recetas
// @Produce      json
// @Security     BearerAuth
// @Param        numero path string true "Número de artículo"
// @Success      200  {object} dto.IntegridadResponse
// @Router       /v1/articulos/{numero}/receta/integridad [get]
func (h *RecetasHandler) Integridad(c *gin.Context) {
	resp, err := h.svc.Integridad(c.Request.Context(), c.Param("numero"))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Expandir godoc
// @Summary      Desglose en ingredientes primitivos
// @Tags         recetas
// @Produce      json
// @Security     BearerAuth
// @Param        numero        path  string true  "Número de artículo"
// @Param        multiplicador query number false "Unidades (por defecto 1)"
// @Success      200  {object} dto.ExpansionResponse
// @Router       /v1/articulos/{numero}/expansion [get]
func (h *RecetasHandler) Expandir(c *gin.Context) {
	mult := 1.0
	if v := c.Query("multiplicador"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			c.JSON(http.StatusBadRequest, apierror.New("multiplicador invalido"))
			return
		}
		mult = f
	}
	resp, err := h.svc.Expandir(c.Request.Context(), c.Param("numero"), mult)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
