package dto

import "time"

// RegistrarAjusteRequest is a manual stock ingreso scoped to a cart.
// Kilos is a signed delta; ArticuloNumero is the sales article consumed.
type RegistrarAjusteRequest struct {
	IngredienteID       uint    `json:"ingrediente_id" validate:"required"`
	Kilos               float64 `json:"kilos" validate:"required,ne=0"`
	ArticuloNumero      string  `json:"articulo_numero" validate:"required"`
	CodigoBarras        string  `json:"codigo_barras"`
	ConfirmarIntegridad bool    `json:"confirmar_integridad"`
}

type MovimientoResponse struct {
	ID             string    `json:"id"`
	IngredienteID  uint      `json:"ingrediente_id"`
	CarroID        *uint     `json:"carro_id"`
	Tipo           string    `json:"tipo"`
	Cantidad       float64   `json:"cantidad"`
	StockAnterior  float64   `json:"stock_anterior"`
	StockNuevo     float64   `json:"stock_nuevo"`
	Destino        string    `json:"destino"`
	OrigenMixID    *uint     `json:"origen_mix_id,omitempty"`
	GrupoID        *string   `json:"grupo_id,omitempty"`
	ArticuloNumero *string   `json:"articulo_numero,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type AjusteResponse struct {
	GrupoID  string               `json:"grupo_id"`
	Entradas []MovimientoResponse `json:"entradas"`
}

type EliminarAjusteResponse struct {
	Revertidos int `json:"revertidos"`
}

type StockUsuarioResponse struct {
	IngredienteID uint    `json:"ingrediente_id"`
	Nombre        string  `json:"nombre"`
	Cantidad      float64 `json:"cantidad"`
}
