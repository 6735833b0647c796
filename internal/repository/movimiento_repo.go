package repository

import (
	"context"

	"planta/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoRepository is the cart-scoped ledger: ingredient movements and
// their sales-stock counterparts.
type MovimientoRepository interface {
	CreateIngredienteTx(tx *gorm.DB, m *model.MovimientoIngrediente) error
	CreateVentasTx(tx *gorm.DB, m *model.MovimientoStockVentas) error

	FindIngredienteByID(ctx context.Context, id uuid.UUID) (*model.MovimientoIngrediente, error)
	ListIngredienteByCarro(ctx context.Context, carroID uint) ([]model.MovimientoIngrediente, error)
	ListIngredienteByCarroTx(tx *gorm.DB, carroID uint) ([]model.MovimientoIngrediente, error)
	ListIngredienteByGrupoTx(tx *gorm.DB, grupoID uuid.UUID) ([]model.MovimientoIngrediente, error)
	ListVentasByCarroTx(tx *gorm.DB, carroID uint) ([]model.MovimientoStockVentas, error)
	ListVentasByMovimientosTx(tx *gorm.DB, ids []uuid.UUID) ([]model.MovimientoStockVentas, error)

	DeleteIngredienteTx(tx *gorm.DB, ids []uuid.UUID) error
	DeleteVentasTx(tx *gorm.DB, ids []uuid.UUID) error

	CountByCarro(ctx context.Context, carroID uint) (ingredientes, ventas int64, err error)

	DB() *gorm.DB
}

type movimientoRepo struct{ db *gorm.DB }

func NewMovimientoRepository(db *gorm.DB) MovimientoRepository { return &movimientoRepo{db: db} }

func (r *movimientoRepo) DB() *gorm.DB { return r.db }

func (r *movimientoRepo) CreateIngredienteTx(tx *gorm.DB, m *model.MovimientoIngrediente) error {
	return tx.Create(m).Error
}

func (r *movimientoRepo) CreateVentasTx(tx *gorm.DB, m *model.MovimientoStockVentas) error {
	return tx.Create(m).Error
}

func (r *movimientoRepo) FindIngredienteByID(ctx context.Context, id uuid.UUID) (*model.MovimientoIngrediente, error) {
	var m model.MovimientoIngrediente
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *movimientoRepo) ListIngredienteByCarro(ctx context.Context, carroID uint) ([]model.MovimientoIngrediente, error) {
	return r.ListIngredienteByCarroTx(r.db.WithContext(ctx), carroID)
}

func (r *movimientoRepo) ListIngredienteByCarroTx(tx *gorm.DB, carroID uint) ([]model.MovimientoIngrediente, error) {
	var out []model.MovimientoIngrediente
	err := tx.Where("carro_id = ?", carroID).Order("created_at ASC").Find(&out).Error
	return out, err
}

func (r *movimientoRepo) ListIngredienteByGrupoTx(tx *gorm.DB, grupoID uuid.UUID) ([]model.MovimientoIngrediente, error) {
	var out []model.MovimientoIngrediente
	err := tx.Where("grupo_id = ?", grupoID).Find(&out).Error
	return out, err
}

func (r *movimientoRepo) ListVentasByCarroTx(tx *gorm.DB, carroID uint) ([]model.MovimientoStockVentas, error) {
	var out []model.MovimientoStockVentas
	err := tx.Where("carro_id = ?", carroID).Find(&out).Error
	return out, err
}

func (r *movimientoRepo) ListVentasByMovimientosTx(tx *gorm.DB, ids []uuid.UUID) ([]model.MovimientoStockVentas, error) {
	var out []model.MovimientoStockVentas
	if len(ids) == 0 {
		return out, nil
	}
	err := tx.Where("movimiento_ingrediente_id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *movimientoRepo) DeleteIngredienteTx(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("id IN ?", ids).Delete(&model.MovimientoIngrediente{}).Error
}

func (r *movimientoRepo) DeleteVentasTx(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return tx.Where("id IN ?", ids).Delete(&model.MovimientoStockVentas{}).Error
}

func (r *movimientoRepo) CountByCarro(ctx context.Context, carroID uint) (int64, int64, error) {
	var ing, ven int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.MovimientoIngrediente{}).Where("carro_id = ?", carroID).Count(&ing).Error; err != nil {
		return 0, 0, err
	}
	if err := db.Model(&model.MovimientoStockVentas{}).Where("carro_id = ?", carroID).Count(&ven).Error; err != nil {
		return 0, 0, err
	}
	return ing, ven, nil
}
