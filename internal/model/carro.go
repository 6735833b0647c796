package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TipoCarroInterna = "interna"
	TipoCarroExterna = "externa"

	EstadoEnPreparacion = "en_preparacion"
	EstadoPreparado     = "preparado"
	EstadoConfirmado    = "confirmado"
)

// SiguienteEstado returns the only legal forward state, or "" for the terminal one.
func SiguienteEstado(estado string) string {
	switch estado {
	case EstadoEnPreparacion:
		return EstadoPreparado
	case EstadoPreparado:
		return EstadoConfirmado
	default:
		return ""
	}
}

// Carro is a production cart, owned by the user who created it.
type Carro struct {
	ID                uint      `gorm:"primaryKey"`
	UsuarioID         uuid.UUID `gorm:"type:uuid;index;not null"`
	TipoCarro         string    `gorm:"type:varchar(10);not null;default:'interna'"`
	Estado            string    `gorm:"type:varchar(20);index;not null;default:'en_preparacion'"`
	FechaInicio       time.Time `gorm:"not null"`
	FechaPreparado    *time.Time
	FechaConfirmacion *time.Time
	KilosProducidos   *float64
	UpdatedAt         time.Time

	Articulos []CarroArticulo `gorm:"foreignKey:CarroID;constraint:OnDelete:CASCADE"`
	Vinculos  []CarroVinculo  `gorm:"foreignKey:CarroID;constraint:OnDelete:CASCADE"`
}

func (Carro) TableName() string { return "carros_produccion" }

func (c *Carro) EsExterna() bool { return c.TipoCarro == TipoCarroExterna }

type CarroArticulo struct {
	ID             uint    `gorm:"primaryKey"`
	CarroID        uint    `gorm:"uniqueIndex:idx_carro_articulo;not null"`
	ArticuloNumero string  `gorm:"uniqueIndex:idx_carro_articulo;type:varchar(64);not null"`
	Cantidad       float64 `gorm:"not null"`
	CreatedAt      time.Time

	Articulo *Articulo `gorm:"foreignKey:ArticuloNumero;references:Numero"`
}

func (CarroArticulo) TableName() string { return "carros_articulos" }

// CarroVinculo overrides the consumed quantity of a linked sub-article on an
// external cart once it reaches preparado.
type CarroVinculo struct {
	ID             uint    `gorm:"primaryKey"`
	CarroID        uint    `gorm:"uniqueIndex:idx_carro_vinculo;not null"`
	ArticuloNumero string  `gorm:"uniqueIndex:idx_carro_vinculo;type:varchar(64);not null"`
	Cantidad       float64 `gorm:"not null"`
	UpdatedAt      time.Time
}

func (CarroVinculo) TableName() string { return "carros_articulos_vinculados" }
