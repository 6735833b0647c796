package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planta/internal/config"
	"planta/internal/handler"
	"planta/internal/infra"
	"planta/internal/metrics"
	"planta/internal/router"
	"planta/internal/service"
	"planta/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, cfg.DBAutoMigrate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Infrastructure ───────────────────────────────────────────────────────
	m := metrics.New()
	hub := infra.NewHub(cfg.Origenes())
	go hub.Run(ctx)

	dispatcher := worker.NewDispatcher(rdb)
	mailer := infra.NewMailer(cfg)
	impresora := infra.NewImpresoraClient(cfg.PrinterURL)
	impresoraCB := infra.NewCircuitBreaker(infra.DefaultCBConfig("impresora"))

	mapeo, err := service.CargarMapeo(cfg.SheetMappingFile)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.SheetMappingFile).Msg("presupuestos sync disabled")
	}

	deps := router.Deps{
		Metrics: m,
		Hub:     hub,
		Cola:    dispatcher,
		Candado: infra.NewRedisCandado(rdb),
		Fuente:  infra.NewPlanillaDir(cfg.SheetsDir),
		Mapeo:   mapeo,
	}
	var salud handler.Pinger
	if cfg.PrinterURL != "" {
		salud = impresora
	}
	deps.Impresora = salud

	svc := router.NewServicios(cfg, db, deps)

	// ── Workers ──────────────────────────────────────────────────────────────
	// Processors are wired here (composition root) so the pool has full
	// access to the infrastructure.
	pool := worker.NewPool(rdb, map[string]worker.Processor{
		worker.TipoEtiquetas:    worker.NewEtiquetaWorker(impresora, impresoraCB, cfg.LabelStoragePath),
		worker.TipoInforme:      worker.NewInformeWorker(cfg.ReportStoragePath, dispatcher),
		worker.TipoEmail:        worker.NewEmailWorker(mailer),
		worker.TipoPresupuestos: worker.NewPresupuestoWorker(svc.Presupuestos),
	}, m)
	pool.Start(ctx, cfg.WorkerPoolSize)

	worker.StartSyncCron(ctx, worker.SyncCronConfig{
		Encolador: dispatcher,
		RDB:       rdb,
		Hojas:     cfg.Hojas(),
		Interval:  time.Duration(cfg.SheetSyncIntervalMin) * time.Minute,
	})

	r := router.New(cfg, db, rdb, svc, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("planta backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := rdb.Close(); err != nil {
		log.Warn().Err(err).Msg("redis close")
	}
	log.Info().Msg("server exited")
}
