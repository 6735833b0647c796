package repository

import (
	"context"

	"planta/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ArticuloRepository interface {
	Create(ctx context.Context, a *model.Articulo) error
	FindByNumero(ctx context.Context, numero string) (*model.Articulo, error)
	FindByNumerosTx(tx *gorm.DB, numeros []string) ([]model.Articulo, error)
	List(ctx context.Context) ([]model.Articulo, error)
	// AddStockTx locks the row and applies delta to stock_ventas.
	AddStockTx(tx *gorm.DB, numero string, delta float64) (anterior, nuevo float64, err error)
	DB() *gorm.DB
}

type articuloRepo struct{ db *gorm.DB }

func NewArticuloRepository(db *gorm.DB) ArticuloRepository { return &articuloRepo{db: db} }

func (r *articuloRepo) DB() *gorm.DB { return r.db }

func (r *articuloRepo) Create(ctx context.Context, a *model.Articulo) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *articuloRepo) FindByNumero(ctx context.Context, numero string) (*model.Articulo, error) {
	var a model.Articulo
	if err := r.db.WithContext(ctx).Where("numero = ?", numero).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *articuloRepo) FindByNumerosTx(tx *gorm.DB, numeros []string) ([]model.Articulo, error) {
	var out []model.Articulo
	if len(numeros) == 0 {
		return out, nil
	}
	err := tx.Where("numero IN ?", numeros).Find(&out).Error
	return out, err
}

func (r *articuloRepo) List(ctx context.Context) ([]model.Articulo, error) {
	var out []model.Articulo
	err := r.db.WithContext(ctx).Order("descripcion ASC").Find(&out).Error
	return out, err
}

func (r *articuloRepo) AddStockTx(tx *gorm.DB, numero string, delta float64) (float64, float64, error) {
	var a model.Articulo
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("numero", "stock_ventas").Where("numero = ?", numero).First(&a).Error; err != nil {
		return 0, 0, err
	}
	nuevo := a.StockVentas + delta
	if err := tx.Model(&model.Articulo{}).Where("numero = ?", numero).Update("stock_ventas", nuevo).Error; err != nil {
		return 0, 0, err
	}
	return a.StockVentas, nuevo, nil
}
