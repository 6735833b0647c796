package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovimientoIngresoManual = "ingreso_manual"
	MovimientoProduccion    = "produccion"
	MovimientoAjusteFinal   = "ajuste_final"

	VentasConsumoIngreso   = "consumo_ingreso"
	VentasConsumoVinculado = "consumo_vinculado"
	VentasProduccion       = "produccion"

	DestinoStockGeneral = "stock_general"
	DestinoStockUsuario = "stock_usuario"
)

// MovimientoIngrediente is one ledger row of an ingredient stock change.
// Rows registered from a single mix adjustment share GrupoID and OrigenMixID.
type MovimientoIngrediente struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	IngredienteID  uint       `gorm:"index;not null"`
	CarroID        *uint      `gorm:"index"`
	UsuarioID      uuid.UUID  `gorm:"type:uuid;not null"`
	Tipo           string     `gorm:"type:varchar(20);not null"`
	Cantidad       float64    `gorm:"not null"` // positive = entrada, negative = salida
	StockAnterior  float64    `gorm:"not null"`
	StockNuevo     float64    `gorm:"not null"`
	Destino        string     `gorm:"type:varchar(20);not null;default:'stock_general'"`
	OrigenMixID    *uint
	GrupoID        *uuid.UUID `gorm:"type:uuid;index"`
	ArticuloNumero *string    `gorm:"type:varchar(64)"`
	CodigoBarras   *string
	Motivo         string
	CreatedAt      time.Time

	Ingrediente *Ingrediente `gorm:"foreignKey:IngredienteID"`
}

func (MovimientoIngrediente) TableName() string { return "movimientos_ingrediente" }

// MovimientoStockVentas is the sales-stock side of a transfer. For a manual
// ingreso, Kilos is the negation of the paired ingredient movement.
type MovimientoStockVentas struct {
	ID                      uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ArticuloNumero          string     `gorm:"type:varchar(64);index;not null"`
	CodigoBarras            string
	Kilos                   float64    `gorm:"not null"`
	CarroID                 *uint      `gorm:"index"`
	MovimientoIngredienteID *uuid.UUID `gorm:"type:uuid;index"`
	UsuarioID               uuid.UUID  `gorm:"type:uuid;not null"`
	Tipo                    string     `gorm:"type:varchar(20);not null"`
	StockAnterior           float64    `gorm:"not null"`
	StockNuevo              float64    `gorm:"not null"`
	CreatedAt               time.Time
}

func (MovimientoStockVentas) TableName() string { return "movimientos_stock_ventas" }

// StockUsuario holds ingredient stock credited to an operator by external carts.
type StockUsuario struct {
	ID            uint      `gorm:"primaryKey"`
	UsuarioID     uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_stock_usuario;not null"`
	IngredienteID uint      `gorm:"uniqueIndex:idx_stock_usuario;not null"`
	Cantidad      float64   `gorm:"not null;default:0"`
	UpdatedAt     time.Time
}

func (StockUsuario) TableName() string { return "stock_usuario" }
