package model

import "time"

// Ingrediente is either a plain ingredient or a mix root.
// A mix is an ingredient with composition rows and no PadreID.
type Ingrediente struct {
	ID           uint    `gorm:"primaryKey"`
	Nombre       string  `gorm:"index;not null"`
	UnidadMedida string  `gorm:"not null;default:'kg'"`
	Categoria    string  `gorm:"index"`
	Descripcion  *string
	StockActual  float64 `gorm:"not null;default:0"`
	// PadreID points at the mix this ingredient was registered under, if any.
	PadreID *uint `gorm:"index"`
	// RecetaBaseKg is the yield produced by the listed composition quantities.
	RecetaBaseKg *float64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Composicion []MixComposicion `gorm:"foreignKey:MixID"`
}

func (Ingrediente) TableName() string { return "ingredientes" }

// EsMix requires Composicion to be preloaded.
func (i *Ingrediente) EsMix() bool {
	return i.PadreID == nil && len(i.Composicion) > 0
}

// BaseKg returns the recipe yield, zero when unset.
func (i *Ingrediente) BaseKg() float64 {
	if i.RecetaBaseKg == nil {
		return 0
	}
	return *i.RecetaBaseKg
}

// MixComposicion is one component row of a mix.
type MixComposicion struct {
	ID            uint    `gorm:"primaryKey"`
	MixID         uint    `gorm:"uniqueIndex:idx_mix_ingrediente;not null"`
	IngredienteID uint    `gorm:"uniqueIndex:idx_mix_ingrediente;not null"`
	Cantidad      float64 `gorm:"not null"`

	// No FK constraint: a deleted component stays listed as a stale reference.
	Ingrediente *Ingrediente `gorm:"foreignKey:IngredienteID;constraint:-"`
}

func (MixComposicion) TableName() string { return "ingrediente_composicion" }
