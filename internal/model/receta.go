package model

import "time"

// Receta is the bill of materials of one article. It may reference
// ingredients (plain or mix) and other articles consumed as base stock.
type Receta struct {
	ID             uint   `gorm:"primaryKey"`
	ArticuloNumero string `gorm:"uniqueIndex;type:varchar(64);not null"`
	Descripcion    string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Ingredientes []RecetaIngrediente `gorm:"foreignKey:RecetaID;constraint:OnDelete:CASCADE"`
	Articulos    []RecetaArticulo    `gorm:"foreignKey:RecetaID;constraint:OnDelete:CASCADE"`
}

func (Receta) TableName() string { return "recetas" }

// RecetaIngrediente keeps a copy of the ingredient name and unit so a
// stale reference can still be displayed after the ingredient is deleted.
type RecetaIngrediente struct {
	ID                uint    `gorm:"primaryKey"`
	RecetaID          uint    `gorm:"index;not null"`
	IngredienteID     uint    `gorm:"index;not null"`
	NombreIngrediente string
	UnidadMedida      string
	Cantidad          float64 `gorm:"not null"`
}

func (RecetaIngrediente) TableName() string { return "receta_ingredientes" }

type RecetaArticulo struct {
	ID             uint    `gorm:"primaryKey"`
	RecetaID       uint    `gorm:"index;not null"`
	ArticuloNumero string  `gorm:"type:varchar(64);not null"`
	Cantidad       float64 `gorm:"not null"`
}

func (RecetaArticulo) TableName() string { return "receta_articulos" }
