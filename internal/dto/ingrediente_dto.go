package dto

// ── Ingredientes ──────────────────────────────────────────────────────────────

type CrearIngredienteRequest struct {
	Nombre       string   `json:"nombre" validate:"required,min=1,max=120"`
	UnidadMedida string   `json:"unidad_medida" validate:"required,max=20"`
	Categoria    string   `json:"categoria" validate:"max=60"`
	Descripcion  *string  `json:"descripcion"`
	StockActual  float64  `json:"stock_actual" validate:"min=0"`
	RecetaBaseKg *float64 `json:"receta_base_kg" validate:"omitempty,gt=0"`
}

type ActualizarIngredienteRequest struct {
	Nombre       string  `json:"nombre" validate:"required,min=1,max=120"`
	UnidadMedida string  `json:"unidad_medida" validate:"required,max=20"`
	Categoria    string  `json:"categoria" validate:"max=60"`
	Descripcion  *string `json:"descripcion"`
}

type IngredienteFilter struct {
	Q         string `form:"q"`
	Categoria string `form:"categoria"`
	SoloMixes bool   `form:"solo_mixes"`
}

type IngredienteResponse struct {
	ID           uint     `json:"id"`
	Nombre       string   `json:"nombre"`
	UnidadMedida string   `json:"unidad_medida"`
	Categoria    string   `json:"categoria"`
	Descripcion  *string  `json:"descripcion,omitempty"`
	StockActual  float64  `json:"stock_actual"`
	PadreID      *uint    `json:"padre_id"`
	EsMix        bool     `json:"es_mix"`
	RecetaBaseKg *float64 `json:"receta_base_kg,omitempty"`
}

// ── Composicion de mixes ──────────────────────────────────────────────────────

type ComponenteRequest struct {
	IngredienteID uint    `json:"ingrediente_id" validate:"required"`
	Cantidad      float64 `json:"cantidad" validate:"required,gt=0"`
}

type ActualizarComponenteRequest struct {
	Cantidad float64 `json:"cantidad" validate:"required,gt=0"`
}

type RecetaBaseRequest struct {
	RecetaBaseKg float64 `json:"receta_base_kg" validate:"required,gt=0"`
}

type MixInfo struct {
	ID           uint     `json:"id"`
	Nombre       string   `json:"nombre"`
	RecetaBaseKg *float64 `json:"receta_base_kg"`
}

type ComponenteResponse struct {
	IngredienteID     uint    `json:"ingrediente_id"`
	NombreIngrediente string  `json:"nombre_ingrediente"`
	Cantidad          float64 `json:"cantidad"`
	UnidadMedida      string  `json:"unidad_medida"`
}

type MixComposicionResponse struct {
	Mix         MixInfo              `json:"mix"`
	Composicion []ComponenteResponse `json:"composicion"`
}

// ── Articulos ─────────────────────────────────────────────────────────────────

type ArticuloFilter struct {
	Q string `form:"q"`
}

type ArticuloResponse struct {
	Numero       string  `json:"numero"`
	Descripcion  string  `json:"descripcion"`
	CodigoBarras string  `json:"codigo_barras"`
	StockVentas  float64 `json:"stock_ventas"`
	TieneReceta  bool    `json:"tiene_receta"`
}
