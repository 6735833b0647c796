package worker

// sync_cron.go periodically enqueues a budget sync for every configured
// sheet and reports the dead letter backlog.

import (
	"context"
	"time"

	"planta/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type SyncCronConfig struct {
	Encolador service.Encolador
	RDB       redis.Cmdable
	Hojas     []string
	Interval  time.Duration
}

// StartSyncCron ticks every Interval until ctx is done.
func StartSyncCron(ctx context.Context, cfg SyncCronConfig) {
	if cfg.Interval <= 0 || len(cfg.Hojas) == 0 {
		log.Info().Msg("sync_cron: no sheets configured, not started")
		return
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Strs("hojas", cfg.Hojas).Dur("interval", cfg.Interval).Msg("sync_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sync_cron: shutting down")
				return
			case <-ticker.C:
				tick(ctx, cfg)
			}
		}
	}()
}

func tick(ctx context.Context, cfg SyncCronConfig) {
	for _, hoja := range cfg.Hojas {
		if err := cfg.Encolador.EnqueueSincronizacion(ctx, service.SincronizacionJob{HojaID: hoja}); err != nil {
			log.Error().Err(err).Str("hoja_id", hoja).Msg("sync_cron: failed to enqueue sync")
		}
	}
	if cfg.RDB == nil {
		return
	}
	for _, q := range []string{QueueEtiquetas, QueueInforme, QueueEmail, QueuePresupuestos} {
		n, err := DLQLength(ctx, cfg.RDB, q)
		if err == nil && n > 0 {
			log.Warn().Str("queue", q).Int64("pendientes", n).Msg("sync_cron: dead letter backlog")
		}
	}
}
