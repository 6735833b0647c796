package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"
	"time"

	"planta/internal/apierror"
	"planta/internal/expansion"
	"planta/internal/model"
	"planta/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// runReadTx runs fn against a read-only repeatable-read snapshot so every
// lookup of one aggregation pass sees the same catalog and stock.
func runReadTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
}

// traducir maps storage errors to domain errors. Domain errors pass through.
func traducir(err error, op, noEncontrado string, args ...any) error {
	if err == nil {
		return nil
	}
	var de *apierror.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(noEncontrado, args...)
	}
	return apierror.Persistence(op, err)
}

func cantidadValida(c float64) bool {
	return !math.IsNaN(c) && !math.IsInf(c, 0)
}

// ── Collaborators ────────────────────────────────────────────────────────────

// Notificador is told about every cart mutation so connected clients can
// recompute their consolidated views.
type Notificador interface {
	CarroActualizado(carroID uint, evento string)
}

type sinNotificador struct{}

func (sinNotificador) CarroActualizado(uint, string) {}

func notificadorODefault(n Notificador) Notificador {
	if n == nil {
		return sinNotificador{}
	}
	return n
}

// Candado is an in-flight lock guarding double submission of a transition.
type Candado interface {
	Adquirir(ctx context.Context, clave string, ttl time.Duration) (bool, error)
	Liberar(ctx context.Context, clave string) error
}

// Encolador enqueues async jobs. *worker.Dispatcher implements it.
type Encolador interface {
	EnqueueEtiquetas(ctx context.Context, job EtiquetasJob) error
	EnqueueInforme(ctx context.Context, job InformeJob) error
	EnqueueSincronizacion(ctx context.Context, job SincronizacionJob) error
}

// ── Ownership ────────────────────────────────────────────────────────────────

func obtenerCarroPropio(ctx context.Context, repo repository.CarroRepository, id uint, usuarioID uuid.UUID) (*model.Carro, error) {
	c, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "obtener el carro", "Carro %d no encontrado", id)
	}
	if c.UsuarioID != usuarioID {
		return nil, apierror.Ownership()
	}
	return c, nil
}

// ── Misc ─────────────────────────────────────────────────────────────────────

func advertenciasUnicas(adv []expansion.Advertencia) []expansion.Advertencia {
	out := make([]expansion.Advertencia, 0, len(adv))
	vistas := make(map[expansion.Advertencia]bool, len(adv))
	for _, a := range adv {
		if vistas[a] {
			continue
		}
		vistas[a] = true
		out = append(out, a)
	}
	return out
}

func idsOrdenados[V any](m map[uint]V) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func numerosOrdenados[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
