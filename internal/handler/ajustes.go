package handler

import (
	"net/http"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/middleware"
	"planta/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AjustesHandler struct{ svc service.AjusteService }

func NewAjustesHandler(svc service.AjusteService) *AjustesHandler { return &AjustesHandler{svc: svc} }

// Registrar godoc
// @Summary      Registrar un ajuste manual
// @Description  Kilos positivos ingresan stock, negativos lo retiran. Un mix se reparte entre sus componentes.
// @Tags         ajustes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path int                        true "ID del carro"
// @Param        body body dto.RegistrarAjusteRequest true "Ajuste"
// @Success      201  {object} dto.AjusteResponse
// @Failure      409  {object} apierror.IntegrityResponse
// @Router       /v1/carros/{id}/ajustes [post]
func (h *AjustesHandler) Registrar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.RegistrarAjusteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Registrar(c.Request.Context(), middleware.UsuarioID(c), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Ajustes manuales del carro
// @Tags         ajustes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "ID del carro"
// @Success      200  {array} dto.MovimientoResponse
// @Router       /v1/carros/{id}/ajustes [get]
func (h *AjustesHandler) Listar(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), middleware.UsuarioID(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eliminar godoc
// @Summary      Revertir un ajuste manual
// @Description  Revierte el movimiento y, si vino de un mix, todo su grupo.
// @Tags         ajustes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID del movimiento"
// @Success      200  {object} dto.EliminarAjusteResponse
// @Router       /v1/ajustes/{id} [delete]
func (h *AjustesHandler) Eliminar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.Eliminar(c.Request.Context(), middleware.UsuarioID(c), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockUsuario godoc
// @Summary      Stock propio del usuario
// @Tags         ajustes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.StockUsuarioResponse
// @Router       /v1/stock-usuario [get]
func (h *AjustesHandler) StockUsuario(c *gin.Context) {
	resp, err := h.svc.StockUsuario(c.Request.Context(), middleware.UsuarioID(c))
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
