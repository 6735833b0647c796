package repository

import (
	"context"

	"planta/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CarroRepository interface {
	Create(ctx context.Context, c *model.Carro) error
	// FindByID preloads article lines (with their Articulo) and vinculos.
	FindByID(ctx context.Context, id uint) (*model.Carro, error)
	ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Carro, error)

	AddArticulo(ctx context.Context, a *model.CarroArticulo) error
	UpdateArticuloCantidad(ctx context.Context, carroID uint, numero string, cantidad float64) error
	DeleteArticulo(ctx context.Context, carroID uint, numero string) error
	CountArticulos(ctx context.Context, carroID uint) (int64, error)

	UpsertVinculo(ctx context.Context, v *model.CarroVinculo) error

	// TransitionTx moves the cart from desde to hacia only if it is still in
	// desde. Returns ErrTransicionConcurrente when no row matched.
	TransitionTx(tx *gorm.DB, id uint, desde, hacia string, campos map[string]any) error
	// EstadoForUpdateTx locks the cart row until tx ends and returns its state.
	EstadoForUpdateTx(tx *gorm.DB, id uint) (string, error)
	DeleteTx(tx *gorm.DB, id uint) error

	DB() *gorm.DB
}

type carroRepo struct{ db *gorm.DB }

func NewCarroRepository(db *gorm.DB) CarroRepository { return &carroRepo{db: db} }

func (r *carroRepo) DB() *gorm.DB { return r.db }

func (r *carroRepo) Create(ctx context.Context, c *model.Carro) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *carroRepo) FindByID(ctx context.Context, id uint) (*model.Carro, error) {
	var c model.Carro
	err := r.db.WithContext(ctx).
		Preload("Articulos", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Articulos.Articulo").
		Preload("Vinculos").
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *carroRepo) ListByUsuario(ctx context.Context, usuarioID uuid.UUID) ([]model.Carro, error) {
	var out []model.Carro
	err := r.db.WithContext(ctx).
		Preload("Articulos").
		Preload("Articulos.Articulo").
		Where("usuario_id = ?", usuarioID).
		Order("fecha_inicio DESC").
		Find(&out).Error
	return out, err
}

func (r *carroRepo) AddArticulo(ctx context.Context, a *model.CarroArticulo) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *carroRepo) UpdateArticuloCantidad(ctx context.Context, carroID uint, numero string, cantidad float64) error {
	res := r.db.WithContext(ctx).Model(&model.CarroArticulo{}).
		Where("carro_id = ? AND articulo_numero = ?", carroID, numero).
		Update("cantidad", cantidad)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *carroRepo) DeleteArticulo(ctx context.Context, carroID uint, numero string) error {
	res := r.db.WithContext(ctx).
		Where("carro_id = ? AND articulo_numero = ?", carroID, numero).
		Delete(&model.CarroArticulo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *carroRepo) CountArticulos(ctx context.Context, carroID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.CarroArticulo{}).Where("carro_id = ?", carroID).Count(&n).Error
	return n, err
}

func (r *carroRepo) UpsertVinculo(ctx context.Context, v *model.CarroVinculo) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "carro_id"}, {Name: "articulo_numero"}},
		DoUpdates: clause.AssignmentColumns([]string{"cantidad", "updated_at"}),
	}).Create(v).Error
}

func (r *carroRepo) TransitionTx(tx *gorm.DB, id uint, desde, hacia string, campos map[string]any) error {
	updates := map[string]any{"estado": hacia}
	for k, v := range campos {
		updates[k] = v
	}
	res := tx.Model(&model.Carro{}).Where("id = ? AND estado = ?", id, desde).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTransicionConcurrente
	}
	return nil
}

func (r *carroRepo) EstadoForUpdateTx(tx *gorm.DB, id uint) (string, error) {
	var c model.Carro
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id", "estado").
		First(&c, id).Error
	if err != nil {
		return "", err
	}
	return c.Estado, nil
}

func (r *carroRepo) DeleteTx(tx *gorm.DB, id uint) error {
	if err := tx.Where("carro_id = ?", id).Delete(&model.CarroArticulo{}).Error; err != nil {
		return err
	}
	if err := tx.Where("carro_id = ?", id).Delete(&model.CarroVinculo{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Carro{}, id).Error
}
