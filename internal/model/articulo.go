package model

import "time"

// Articulo is a sellable product identified by its catalog number.
// StockVentas is the sales stock, credited by production and debited when
// the article is consumed as raw material.
type Articulo struct {
	Numero       string  `gorm:"primaryKey;type:varchar(64)"`
	Descripcion  string  `gorm:"not null"`
	CodigoBarras string  `gorm:"index"`
	StockVentas  float64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Articulo) TableName() string { return "articulos" }
