package dto

import (
	"time"

	"planta/internal/expansion"
)

// ── Carros ────────────────────────────────────────────────────────────────────

type CrearCarroRequest struct {
	TipoCarro string `json:"tipo_carro" validate:"required,oneof=interna externa"`
}

type AgregarArticuloRequest struct {
	ArticuloNumero      string  `json:"articulo_numero" validate:"required"`
	Cantidad            float64 `json:"cantidad" validate:"required,gt=0"`
	ConfirmarIntegridad bool    `json:"confirmar_integridad"`
}

type ModificarCantidadRequest struct {
	Cantidad float64 `json:"cantidad" validate:"required,gt=0"`
}

type ActualizarVinculadoRequest struct {
	Cantidad float64 `json:"cantidad" validate:"min=0"`
}

type CarroArticuloResponse struct {
	Numero      string  `json:"numero"`
	Descripcion string  `json:"descripcion"`
	Cantidad    float64 `json:"cantidad"`
}

type CarroResponse struct {
	ID                uint                    `json:"id"`
	UsuarioID         string                  `json:"usuario_id"`
	TipoCarro         string                  `json:"tipo_carro"`
	Estado            string                  `json:"estado"`
	FechaInicio       time.Time               `json:"fecha_inicio"`
	FechaPreparado    *time.Time              `json:"fecha_preparado,omitempty"`
	FechaConfirmacion *time.Time              `json:"fecha_confirmacion,omitempty"`
	KilosProducidos   *float64                `json:"kilos_producidos,omitempty"`
	Articulos         []CarroArticuloResponse `json:"articulos"`
}

// ResumenEliminacionResponse holds what deleting a cart removes.
type ResumenEliminacionResponse struct {
	ArticulosEliminados    int64 `json:"articulosEliminados"`
	IngredientesEliminados int64 `json:"ingredientesEliminados"`
	StockVentasEliminados  int64 `json:"stockVentasEliminados"`
}

// ── Vistas consolidadas ───────────────────────────────────────────────────────

const (
	OrigenReceta        = "receta"
	OrigenIngresoManual = "ingreso_manual"
	OrigenAmbos         = "both"
)

type IngredienteConsolidado struct {
	ID              uint     `json:"id"`
	Nombre          string   `json:"nombre"`
	UnidadMedida    string   `json:"unidad_medida"`
	Cantidad        float64  `json:"cantidad"`
	StockActual     float64  `json:"stock_actual"`
	Faltante        float64  `json:"faltante"`
	Suficiente      bool     `json:"suficiente"`
	IngresadoManual float64  `json:"ingresado_manual"`
	Origen          string   `json:"origen"`
	StockUsuario    *float64 `json:"stock_usuario,omitempty"`
}

type IngredientesConsolidadosResponse struct {
	CarroID      uint                     `json:"carro_id"`
	Integro      bool                     `json:"integro"`
	Advertencias []expansion.Advertencia  `json:"advertencias"`
	Ingredientes []IngredienteConsolidado `json:"ingredientes"`
}

type MixConsolidado struct {
	ID           uint    `json:"id"`
	Nombre       string  `json:"nombre"`
	UnidadMedida string  `json:"unidad_medida"`
	Cantidad     float64 `json:"cantidad"`
}

type ArticuloVinculado struct {
	Numero           string  `json:"numero"`
	Descripcion      string  `json:"descripcion"`
	CodigoBarras     string  `json:"codigo_barras"`
	CantidadReceta   float64 `json:"cantidad_receta"`
	CantidadAjustada float64 `json:"cantidad_ajustada"`
	StockVentas      float64 `json:"stock_ventas"`
}

// ── Ciclo de vida ─────────────────────────────────────────────────────────────

type CambiarEstadoRequest struct {
	Estado              string   `json:"estado" validate:"omitempty,oneof=en_preparacion preparado confirmado"`
	KilosProducidos     *float64 `json:"kilos_producidos"`
	ConfirmarIntegridad bool     `json:"confirmar_integridad"`
}

type TransicionResponse struct {
	CarroID  uint   `json:"carro_id"`
	Anterior string `json:"estado_anterior"`
	Estado   string `json:"estado"`
}

type IngredienteFinalRequest struct {
	IngredienteID uint    `json:"ingrediente_id" validate:"required"`
	Cantidad      float64 `json:"cantidad"`
	Ajustar       bool    `json:"ajustar"`
}

type GuardarIngredientesRequest struct {
	Items []IngredienteFinalRequest `json:"items" validate:"required,min=1,dive"`
}

type GuardarIngredientesResponse struct {
	Aplicados int `json:"aplicados"`
	Omitidos  int `json:"omitidos"`
}

type ImpresionResponse struct {
	CarroID   uint   `json:"carro_id"`
	Encolado  bool   `json:"encolado"`
	Etiquetas int    `json:"etiquetas"`
	Mensaje   string `json:"mensaje"`
}

type InformeResponse struct {
	CarroID      uint   `json:"carro_id"`
	Encolado     bool   `json:"encolado"`
	Filas        int    `json:"filas"`
	Destinatario string `json:"destinatario,omitempty"`
	Mensaje      string `json:"mensaje"`
}
