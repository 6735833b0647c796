package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"planta/internal/dto"
	"planta/internal/service"

	"github.com/rs/zerolog/log"
)

// Sincronizador imports one sheet. service.PresupuestoService implements it.
type Sincronizador interface {
	Sincronizar(ctx context.Context, hojaID string) (*dto.SincronizacionResponse, error)
}

type PresupuestoWorker struct {
	sync Sincronizador
}

func NewPresupuestoWorker(s Sincronizador) *PresupuestoWorker {
	return &PresupuestoWorker{sync: s}
}

func (w *PresupuestoWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job service.SincronizacionJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("presupuesto_worker: invalid payload: %w", err)
	}
	res, err := w.sync.Sincronizar(ctx, job.HojaID)
	if err != nil {
		return fmt.Errorf("presupuesto_worker: hoja %s: %w", job.HojaID, err)
	}
	log.Info().Str("hoja_id", job.HojaID).Int("presupuestos", res.Presupuestos).Int("omitidas", res.Omitidas).Msg("presupuesto_worker: sheet synced")
	return nil
}
