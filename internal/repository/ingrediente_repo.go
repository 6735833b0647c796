package repository

import (
	"context"

	"planta/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IngredienteFilter struct {
	Categoria string
}

// IngredienteRepository covers ingredients, mix composition rows and the
// general ingredient stock.
type IngredienteRepository interface {
	Create(ctx context.Context, i *model.Ingrediente) error
	FindByID(ctx context.Context, id uint) (*model.Ingrediente, error)
	// FindByIDsTx preloads Composicion. tx may be the root DB for plain reads.
	FindByIDsTx(tx *gorm.DB, ids []uint) ([]model.Ingrediente, error)
	List(ctx context.Context, filter IngredienteFilter) ([]model.Ingrediente, error)
	Update(ctx context.Context, i *model.Ingrediente) error
	DeleteTx(tx *gorm.DB, id uint) error

	// Composition
	AddComponenteTx(tx *gorm.DB, c *model.MixComposicion) error
	UpdateComponente(ctx context.Context, mixID, ingredienteID uint, cantidad float64) error
	DeleteComponenteTx(tx *gorm.DB, mixID, ingredienteID uint) error
	DeleteComposicionTx(tx *gorm.DB, mixID uint) error
	SetPadreTx(tx *gorm.DB, id uint, padreID *uint) error
	ClearPadreTx(tx *gorm.DB, padreID uint) error
	UpdateRecetaBaseTx(tx *gorm.DB, id uint, kg *float64) error

	// AddStockTx locks the row and applies delta to stock_actual.
	AddStockTx(tx *gorm.DB, id uint, delta float64) (anterior, nuevo float64, err error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type ingredienteRepo struct{ db *gorm.DB }

func NewIngredienteRepository(db *gorm.DB) IngredienteRepository {
	return &ingredienteRepo{db: db}
}

func (r *ingredienteRepo) DB() *gorm.DB { return r.db }

func (r *ingredienteRepo) Create(ctx context.Context, i *model.Ingrediente) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *ingredienteRepo) FindByID(ctx context.Context, id uint) (*model.Ingrediente, error) {
	var i model.Ingrediente
	err := r.db.WithContext(ctx).
		Preload("Composicion").
		Preload("Composicion.Ingrediente").
		First(&i, id).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *ingredienteRepo) FindByIDsTx(tx *gorm.DB, ids []uint) ([]model.Ingrediente, error) {
	var out []model.Ingrediente
	if len(ids) == 0 {
		return out, nil
	}
	err := tx.Preload("Composicion").Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (r *ingredienteRepo) List(ctx context.Context, filter IngredienteFilter) ([]model.Ingrediente, error) {
	q := r.db.WithContext(ctx).Model(&model.Ingrediente{}).Preload("Composicion")
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}
	var out []model.Ingrediente
	err := q.Order("nombre ASC").Find(&out).Error
	return out, err
}

// Update saves descriptive fields only. Stock moves through AddStockTx.
func (r *ingredienteRepo) Update(ctx context.Context, i *model.Ingrediente) error {
	return r.db.WithContext(ctx).Model(&model.Ingrediente{}).Where("id = ?", i.ID).
		Updates(map[string]any{
			"nombre":        i.Nombre,
			"unidad_medida": i.UnidadMedida,
			"categoria":     i.Categoria,
			"descripcion":   i.Descripcion,
		}).Error
}

// DeleteTx removes the ingredient, its own composition rows and the padre_id
// links pointing at it. Rows of other mixes that list it as a component are
// kept so expansion reports the missing reference.
func (r *ingredienteRepo) DeleteTx(tx *gorm.DB, id uint) error {
	if err := tx.Where("mix_id = ?", id).Delete(&model.MixComposicion{}).Error; err != nil {
		return err
	}
	if err := r.ClearPadreTx(tx, id); err != nil {
		return err
	}
	res := tx.Delete(&model.Ingrediente{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ingredienteRepo) AddComponenteTx(tx *gorm.DB, c *model.MixComposicion) error {
	return tx.Create(c).Error
}

func (r *ingredienteRepo) UpdateComponente(ctx context.Context, mixID, ingredienteID uint, cantidad float64) error {
	res := r.db.WithContext(ctx).Model(&model.MixComposicion{}).
		Where("mix_id = ? AND ingrediente_id = ?", mixID, ingredienteID).
		Update("cantidad", cantidad)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ingredienteRepo) DeleteComponenteTx(tx *gorm.DB, mixID, ingredienteID uint) error {
	res := tx.Where("mix_id = ? AND ingrediente_id = ?", mixID, ingredienteID).Delete(&model.MixComposicion{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ingredienteRepo) DeleteComposicionTx(tx *gorm.DB, mixID uint) error {
	return tx.Where("mix_id = ?", mixID).Delete(&model.MixComposicion{}).Error
}

func (r *ingredienteRepo) SetPadreTx(tx *gorm.DB, id uint, padreID *uint) error {
	return tx.Model(&model.Ingrediente{}).Where("id = ?", id).Update("padre_id", padreID).Error
}

func (r *ingredienteRepo) ClearPadreTx(tx *gorm.DB, padreID uint) error {
	return tx.Model(&model.Ingrediente{}).Where("padre_id = ?", padreID).Update("padre_id", nil).Error
}

func (r *ingredienteRepo) UpdateRecetaBaseTx(tx *gorm.DB, id uint, kg *float64) error {
	return tx.Model(&model.Ingrediente{}).Where("id = ?", id).Update("receta_base_kg", kg).Error
}

func (r *ingredienteRepo) AddStockTx(tx *gorm.DB, id uint, delta float64) (float64, float64, error) {
	var i model.Ingrediente
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "stock_actual").First(&i, id).Error; err != nil {
		return 0, 0, err
	}
	nuevo := i.StockActual + delta
	if err := tx.Model(&model.Ingrediente{}).Where("id = ?", id).Update("stock_actual", nuevo).Error; err != nil {
		return 0, 0, err
	}
	return i.StockActual, nuevo, nil
}
