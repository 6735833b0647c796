package dto

import "planta/internal/expansion"

type RecetaIngredienteRequest struct {
	IngredienteID uint    `json:"ingrediente_id" validate:"required"`
	Cantidad      float64 `json:"cantidad" validate:"required,gt=0"`
}

type RecetaArticuloRequest struct {
	ArticuloNumero string  `json:"articulo_numero" validate:"required"`
	Cantidad       float64 `json:"cantidad" validate:"required,gt=0"`
}

type GuardarRecetaRequest struct {
	Descripcion  string                     `json:"descripcion" validate:"max=200"`
	Ingredientes []RecetaIngredienteRequest `json:"ingredientes" validate:"dive"`
	Articulos    []RecetaArticuloRequest    `json:"articulos" validate:"dive"`
}

type RecetaIngredienteResponse struct {
	IngredienteID     uint    `json:"ingrediente_id"`
	NombreIngrediente string  `json:"nombre_ingrediente"`
	UnidadMedida      string  `json:"unidad_medida"`
	Cantidad          float64 `json:"cantidad"`
}

type RecetaArticuloResponse struct {
	ArticuloNumero string  `json:"articulo_numero"`
	Cantidad       float64 `json:"cantidad"`
}

type RecetaResponse struct {
	ArticuloNumero string                      `json:"articulo_numero"`
	Descripcion    string                      `json:"descripcion"`
	Ingredientes   []RecetaIngredienteResponse `json:"ingredientes"`
	Articulos      []RecetaArticuloResponse    `json:"articulos"`
	Integra        bool                        `json:"integra"`
}

type IntegridadResponse struct {
	ArticuloNumero string   `json:"articulo_numero"`
	Integra        bool     `json:"integra"`
	Faltantes      []string `json:"faltantes"`
}

// ExpansionResponse is the primitive breakdown of one article, for previews.
type ExpansionResponse struct {
	ArticuloNumero string                  `json:"articulo_numero"`
	Multiplicador  float64                 `json:"multiplicador"`
	Ingredientes   []IngredienteCantidad   `json:"ingredientes"`
	Advertencias   []expansion.Advertencia `json:"advertencias"`
}

type IngredienteCantidad struct {
	IngredienteID uint    `json:"ingrediente_id"`
	Nombre        string  `json:"nombre"`
	UnidadMedida  string  `json:"unidad_medida"`
	Cantidad      float64 `json:"cantidad"`
}
