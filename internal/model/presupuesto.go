package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Presupuesto is a budget imported one-way from a spreadsheet.
type Presupuesto struct {
	ID             uint            `gorm:"primaryKey"`
	IDExterno      string          `gorm:"uniqueIndex;not null"`
	HojaID         string          `gorm:"index;not null"`
	Cliente        string
	Fecha          *time.Time
	Estado         string
	Total          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	SincronizadoEn time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Detalles []PresupuestoDetalle `gorm:"foreignKey:PresupuestoID;constraint:OnDelete:CASCADE"`
}

func (Presupuesto) TableName() string { return "presupuestos" }

type PresupuestoDetalle struct {
	ID             uint            `gorm:"primaryKey"`
	PresupuestoID  uint            `gorm:"index;not null"`
	Articulo       string
	Descripcion    string
	Cantidad       decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Diferencia     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
}

func (PresupuestoDetalle) TableName() string { return "presupuestos_detalles" }
