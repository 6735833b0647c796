package repository

import (
	"context"

	"planta/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StockUsuarioRepository interface {
	// AddTx applies delta to the operator's stock of an ingredient, creating the row on first use.
	AddTx(tx *gorm.DB, usuarioID uuid.UUID, ingredienteID uint, delta float64) (anterior, nuevo float64, err error)
	ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.StockUsuario, error)
}

type stockUsuarioRepo struct{ db *gorm.DB }

func NewStockUsuarioRepository(db *gorm.DB) StockUsuarioRepository {
	return &stockUsuarioRepo{db: db}
}

func (r *stockUsuarioRepo) AddTx(tx *gorm.DB, usuarioID uuid.UUID, ingredienteID uint, delta float64) (float64, float64, error) {
	row := model.StockUsuario{UsuarioID: usuarioID, IngredienteID: ingredienteID}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return 0, 0, err
	}
	var actual model.StockUsuario
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("usuario_id = ? AND ingrediente_id = ?", usuarioID, ingredienteID).
		First(&actual).Error; err != nil {
		return 0, 0, err
	}
	nuevo := actual.Cantidad + delta
	if err := tx.Model(&model.StockUsuario{}).Where("id = ?", actual.ID).Update("cantidad", nuevo).Error; err != nil {
		return 0, 0, err
	}
	return actual.Cantidad, nuevo, nil
}

func (r *stockUsuarioRepo) ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.StockUsuario, error) {
	var out []model.StockUsuario
	err := r.db.WithContext(ctx).Where("usuario_id = ?", usuarioID).Find(&out).Error
	return out, err
}
