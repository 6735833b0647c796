package repository

import (
	"context"

	"planta/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PresupuestoRepository interface {
	// UpsertTx inserts or updates by id_externo and replaces the detail rows.
	UpsertTx(tx *gorm.DB, p *model.Presupuesto) error
	List(ctx context.Context, hojaID string) ([]model.Presupuesto, error)
	FindByID(ctx context.Context, id uint) (*model.Presupuesto, error)
	DB() *gorm.DB
}

type presupuestoRepo struct{ db *gorm.DB }

func NewPresupuestoRepository(db *gorm.DB) PresupuestoRepository {
	return &presupuestoRepo{db: db}
}

func (r *presupuestoRepo) DB() *gorm.DB { return r.db }

func (r *presupuestoRepo) UpsertTx(tx *gorm.DB, p *model.Presupuesto) error {
	detalles := p.Detalles
	p.Detalles = nil
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id_externo"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"hoja_id", "cliente", "fecha", "estado", "total", "sincronizado_en", "updated_at",
		}),
	}).Create(p).Error
	if err != nil {
		return err
	}
	// ON CONFLICT DO UPDATE does not always hand the id back
	var ids []uint
	if err := tx.Model(&model.Presupuesto{}).Where("id_externo = ?", p.IDExterno).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return gorm.ErrRecordNotFound
	}
	p.ID = ids[0]
	if err := tx.Where("presupuesto_id = ?", p.ID).Delete(&model.PresupuestoDetalle{}).Error; err != nil {
		return err
	}
	for i := range detalles {
		detalles[i].ID = 0
		detalles[i].PresupuestoID = p.ID
	}
	p.Detalles = detalles
	if len(detalles) == 0 {
		return nil
	}
	return tx.Create(&p.Detalles).Error
}

func (r *presupuestoRepo) List(ctx context.Context, hojaID string) ([]model.Presupuesto, error) {
	q := r.db.WithContext(ctx).Model(&model.Presupuesto{})
	if hojaID != "" {
		q = q.Where("hoja_id = ?", hojaID)
	}
	var out []model.Presupuesto
	err := q.Order("fecha DESC NULLS LAST, id DESC").Find(&out).Error
	return out, err
}

func (r *presupuestoRepo) FindByID(ctx context.Context, id uint) (*model.Presupuesto, error) {
	var p model.Presupuesto
	if err := r.db.WithContext(ctx).Preload("Detalles").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
