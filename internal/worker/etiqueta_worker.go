package worker

// etiqueta_worker.go renders the production labels of a confirmed cart and
// sends them to the printer sidecar through the circuit breaker, retrying
// with exponential backoff.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"planta/internal/infra"
	"planta/internal/service"

	"github.com/rs/zerolog/log"
)

// Impresora is the printer sidecar. *infra.ImpresoraClient implements it.
type Impresora interface {
	Imprimir(ctx context.Context, t infra.TrabajoImpresion) (*infra.RespuestaImpresion, error)
}

type EtiquetaWorker struct {
	impresora   Impresora
	cb          *infra.CircuitBreaker
	storagePath string
	intentos    int
	backoff     time.Duration
}

func NewEtiquetaWorker(impresora Impresora, cb *infra.CircuitBreaker, storagePath string) *EtiquetaWorker {
	return &EtiquetaWorker{impresora: impresora, cb: cb, storagePath: storagePath, intentos: 3, backoff: time.Second}
}

func (w *EtiquetaWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job service.EtiquetasJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("etiqueta_worker: invalid payload: %w", err)
	}

	path, err := infra.GenerarEtiquetasPDF(job, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Uint("carro_id", job.CarroID).Str("pdf", path).Int("etiquetas", len(job.Items)).Msg("etiqueta_worker: PDF generated")

	var resp *infra.RespuestaImpresion
	err = withRetry(ctx, w.intentos, w.backoff, func(attempt int) error {
		return w.cb.Execute(ctx, func(ctx context.Context) error {
			r, err := w.impresora.Imprimir(ctx, infra.TrabajoImpresion{CarroID: job.CarroID, Archivo: path})
			if err != nil {
				log.Warn().Err(err).Int("attempt", attempt+1).Uint("carro_id", job.CarroID).Msg("etiqueta_worker: print attempt failed")
				return err
			}
			resp = r
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("etiqueta_worker: carro %d: %w", job.CarroID, err)
	}
	log.Info().Uint("carro_id", job.CarroID).Str("trabajo_id", resp.TrabajoID).Msg("etiqueta_worker: labels printed")
	return nil
}
