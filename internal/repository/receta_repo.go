package repository

import (
	"context"

	"planta/internal/model"

	"gorm.io/gorm"
)

type RecetaRepository interface {
	FindByArticulo(ctx context.Context, numero string) (*model.Receta, error)
	FindByArticulosTx(tx *gorm.DB, numeros []string) ([]model.Receta, error)
	// ReplaceTx drops the current recipe of r.ArticuloNumero, if any, and inserts r.
	ReplaceTx(tx *gorm.DB, r *model.Receta) error
	DeleteTx(tx *gorm.DB, numero string) error
	DB() *gorm.DB
}

type recetaRepo struct{ db *gorm.DB }

func NewRecetaRepository(db *gorm.DB) RecetaRepository { return &recetaRepo{db: db} }

func (r *recetaRepo) DB() *gorm.DB { return r.db }

func (r *recetaRepo) FindByArticulo(ctx context.Context, numero string) (*model.Receta, error) {
	var rec model.Receta
	err := r.db.WithContext(ctx).
		Preload("Ingredientes").
		Preload("Articulos").
		Where("articulo_numero = ?", numero).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recetaRepo) FindByArticulosTx(tx *gorm.DB, numeros []string) ([]model.Receta, error) {
	var out []model.Receta
	if len(numeros) == 0 {
		return out, nil
	}
	err := tx.Preload("Ingredientes").Preload("Articulos").
		Where("articulo_numero IN ?", numeros).Find(&out).Error
	return out, err
}

func (r *recetaRepo) ReplaceTx(tx *gorm.DB, rec *model.Receta) error {
	if err := r.deleteTx(tx, rec.ArticuloNumero); err != nil {
		return err
	}
	return tx.Create(rec).Error
}

func (r *recetaRepo) DeleteTx(tx *gorm.DB, numero string) error {
	return r.deleteTx(tx, numero)
}

func (r *recetaRepo) deleteTx(tx *gorm.DB, numero string) error {
	var ids []uint
	if err := tx.Model(&model.Receta{}).Where("articulo_numero = ?", numero).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("receta_id IN ?", ids).Delete(&model.RecetaIngrediente{}).Error; err != nil {
		return err
	}
	if err := tx.Where("receta_id IN ?", ids).Delete(&model.RecetaArticulo{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&model.Receta{}).Error
}
