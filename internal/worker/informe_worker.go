package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"planta/internal/infra"
	"planta/internal/service"

	"github.com/rs/zerolog/log"
)

// EmailEncolador queues outgoing mail. *Dispatcher implements it.
type EmailEncolador interface {
	EnqueueEmail(ctx context.Context, job EmailJobPayload) error
}

// InformeWorker renders the consolidation report and, when the job names a
// recipient, queues it for delivery.
type InformeWorker struct {
	storagePath string
	correo      EmailEncolador
}

func NewInformeWorker(storagePath string, correo EmailEncolador) *InformeWorker {
	return &InformeWorker{storagePath: storagePath, correo: correo}
}

func (w *InformeWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var job service.InformeJob
	if err := json.Unmarshal(raw, &job); err != nil {
		return fmt.Errorf("informe_worker: invalid payload: %w", err)
	}

	path, err := infra.GenerarInformePDF(job, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Uint("carro_id", job.CarroID).Str("pdf", path).Msg("informe_worker: PDF generated")

	if job.Destinatario == "" || w.correo == nil {
		return nil
	}
	email := EmailJobPayload{
		ToEmail: job.Destinatario,
		Subject: fmt.Sprintf("Consolidación de ingredientes, carro %d", job.CarroID),
		Body: fmt.Sprintf("Adjunto el informe de ingredientes del carro %d (%s), confirmado el %s.",
			job.CarroID, job.TipoCarro, job.Fecha.Format("02/01/2006 15:04")),
		PDFPath: path,
	}
	if err := w.correo.EnqueueEmail(ctx, email); err != nil {
		return fmt.Errorf("informe_worker: enqueue email: %w", err)
	}
	log.Info().Str("email", job.Destinatario).Uint("carro_id", job.CarroID).Msg("informe_worker: email job enqueued")
	return nil
}
