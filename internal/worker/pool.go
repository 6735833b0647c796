package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"planta/internal/metrics"
	"planta/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEtiquetas    = "jobs:etiquetas"
	QueueInforme      = "jobs:informe"
	QueueEmail        = "jobs:email"
	QueuePresupuestos = "jobs:presupuestos"
)

// Job types, one per queue.
const (
	TipoEtiquetas    = "etiquetas"
	TipoInforme      = "informe"
	TipoEmail        = "email"
	TipoPresupuestos = "presupuestos"
)

var colas = map[string]string{
	TipoEtiquetas:    QueueEtiquetas,
	TipoInforme:      QueueInforme,
	TipoEmail:        QueueEmail,
	TipoPresupuestos: QueuePresupuestos,
}

// Cola returns the queue of a job type.
func Cola(tipo string) (string, bool) {
	q, ok := colas[tipo]
	return q, ok
}

// Tipos lists the registered job types in a stable order.
func Tipos() []string {
	return []string{TipoEtiquetas, TipoInforme, TipoEmail, TipoPresupuestos}
}

// Job is the generic envelope for all async tasks.
type Job struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Processor handles one decoded job payload. A returned error moves the job
// to the dead letter queue.
type Processor interface {
	Process(ctx context.Context, raw json.RawMessage) error
}

// ── Dispatcher ───────────────────────────────────────────────────────────────

// Dispatcher enqueues async jobs into Redis lists. The worker pool dequeues
// them via BRPOP.
type Dispatcher struct {
	rdb redis.Cmdable
}

var _ service.Encolador = (*Dispatcher)(nil)

func NewDispatcher(rdb redis.Cmdable) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

func (d *Dispatcher) EnqueueEtiquetas(ctx context.Context, job service.EtiquetasJob) error {
	return d.enqueue(ctx, TipoEtiquetas, job)
}

func (d *Dispatcher) EnqueueInforme(ctx context.Context, job service.InformeJob) error {
	return d.enqueue(ctx, TipoInforme, job)
}

func (d *Dispatcher) EnqueueSincronizacion(ctx context.Context, job service.SincronizacionJob) error {
	return d.enqueue(ctx, TipoPresupuestos, job)
}

func (d *Dispatcher) EnqueueEmail(ctx context.Context, job EmailJobPayload) error {
	return d.enqueue(ctx, TipoEmail, job)
}

func (d *Dispatcher) enqueue(ctx context.Context, jobType string, payload any) error {
	encoded, err := codificar(jobType, payload)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, colas[jobType], encoded).Err()
}

func codificar(jobType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", jobType, err)
	}
	return json.Marshal(Job{ID: uuid.NewString(), Type: jobType, Payload: data, CreatedAt: time.Now().UTC()})
}

// ── Pool ─────────────────────────────────────────────────────────────────────

// Pool routes dequeued jobs to their Processor.
type Pool struct {
	rdb          redis.Cmdable
	procesadores map[string]Processor
	metrics      *metrics.Metrics
}

func NewPool(rdb redis.Cmdable, procesadores map[string]Processor, m *metrics.Metrics) *Pool {
	return &Pool{rdb: rdb, procesadores: procesadores, metrics: m}
}

// Start launches numWorkers goroutines consuming every registered queue.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	queues := make([]string, 0, len(p.procesadores))
	for tipo := range p.procesadores {
		queues = append(queues, colas[tipo])
	}
	for i := 0; i < numWorkers; i++ {
		go p.run(ctx, i, queues)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", queues).Msg("worker pool started")
}

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop, waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil || len(result) < 2 {
				continue
			}
			p.procesar(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) procesar(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "desconocido", json.RawMessage(raw), err.Error(), 0)
		return
	}
	proc, ok := p.procesadores[job.Type]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no processor for job type")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "tipo de job sin procesador", 0)
		return
	}

	start := time.Now()
	err := proc.Process(ctx, job.Payload)
	p.metrics.Job(job.Type, err)
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Str("type", job.Type).Msg("job failed")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), 1)
		return
	}
	log.Info().Str("job_id", job.ID).Str("type", job.Type).Dur("duracion", time.Since(start)).Msg("job processed")
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = base, 3 = 2*base.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * base
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
