package infra

import (
	"fmt"

	"planta/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection. When autoMigrate is set the schema is
// brought up to date with AutoMigrate followed by the idempotent SQL patches
// GORM cannot express (check constraints).
func NewDatabase(dsn string, autoMigrate bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if autoMigrate {
		if err := RunMigrations(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// RunMigrations creates or updates every table and applies the schema patches.
// Integration tests call it directly against a fresh container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Ingrediente{},
		&model.MixComposicion{},
		&model.Articulo{},
		&model.Receta{},
		&model.RecetaIngrediente{},
		&model.RecetaArticulo{},
		&model.Carro{},
		&model.CarroArticulo{},
		&model.CarroVinculo{},
		&model.MovimientoIngrediente{},
		&model.MovimientoStockVentas{},
		&model.StockUsuario{},
		&model.Presupuesto{},
		&model.PresupuestoDetalle{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate does not manage.
// Each statement is guarded so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// cart state machine values
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_carros_estado') THEN
		    ALTER TABLE carros_produccion
		      ADD CONSTRAINT chk_carros_estado
		      CHECK (estado IN ('en_preparacion', 'preparado', 'confirmado'));
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_carros_tipo') THEN
		    ALTER TABLE carros_produccion
		      ADD CONSTRAINT chk_carros_tipo
		      CHECK (tipo_carro IN ('interna', 'externa'));
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
