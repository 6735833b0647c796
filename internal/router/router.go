package router

import (
	"time"

	"planta/internal/config"
	"planta/internal/handler"
	"planta/internal/infra"
	"planta/internal/metrics"
	"planta/internal/middleware"
	"planta/internal/repository"
	"planta/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the infrastructure pieces built by the composition root. Nil
// fields disable the feature they back.
type Deps struct {
	Metrics   *metrics.Metrics
	Hub       *infra.Hub
	Cola      service.Encolador
	Candado   service.Candado
	Fuente    service.FuentePlanilla
	Mapeo     *service.MapeoPlanilla
	Impresora handler.Pinger
}

// Servicios groups the domain services so cmd/server can hand the same
// instances to the worker pool.
type Servicios struct {
	Ingredientes service.IngredienteService
	Recetas      service.RecetaService
	Carros       service.CarroService
	Agregacion   service.AgregacionService
	Ajustes      service.AjusteService
	Ciclo        service.CicloService
	Documentos   service.DocumentoService
	Presupuestos service.PresupuestoService
}

// NewServicios wires Service ← Repository ← DB.
func NewServicios(cfg *config.Config, db *gorm.DB, d Deps) *Servicios {
	// ── Repositories ─────────────────────────────────────────────────────────
	ingredienteRepo := repository.NewIngredienteRepository(db)
	articuloRepo := repository.NewArticuloRepository(db)
	recetaRepo := repository.NewRecetaRepository(db)
	carroRepo := repository.NewCarroRepository(db)
	movimientoRepo := repository.NewMovimientoRepository(db)
	stockUsuarioRepo := repository.NewStockUsuarioRepository(db)
	presupuestoRepo := repository.NewPresupuestoRepository(db)

	var notif service.Notificador
	if d.Hub != nil {
		notif = d.Hub
	}
	lockTTL := time.Duration(cfg.TransitionLockSeconds) * time.Second

	// ── Services ─────────────────────────────────────────────────────────────
	agregacionSvc := service.NewAgregacionService(carroRepo, movimientoRepo, ingredienteRepo, articuloRepo, recetaRepo, stockUsuarioRepo, cfg.StockEpsilon)
	return &Servicios{
		Ingredientes: service.NewIngredienteService(ingredienteRepo, articuloRepo, recetaRepo),
		Recetas:      service.NewRecetaService(recetaRepo, articuloRepo, ingredienteRepo),
		Carros:       service.NewCarroService(carroRepo, movimientoRepo, ingredienteRepo, articuloRepo, recetaRepo, stockUsuarioRepo, notif),
		Agregacion:   agregacionSvc,
		Ajustes:      service.NewAjusteService(carroRepo, movimientoRepo, ingredienteRepo, articuloRepo, recetaRepo, stockUsuarioRepo, d.Metrics, notif),
		Ciclo: service.NewCicloService(carroRepo, movimientoRepo, ingredienteRepo, articuloRepo, recetaRepo, stockUsuarioRepo,
			d.Candado, lockTTL, d.Metrics, notif),
		Documentos:   service.NewDocumentoService(carroRepo, agregacionSvc, d.Cola, cfg.ReportEmailTo),
		Presupuestos: service.NewPresupuestoService(presupuestoRepo, d.Fuente, d.Mapeo, d.Cola, d.Metrics),
	}
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, svc *Servicios, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.CORS(cfg.Origenes()))
	r.Use(middleware.ErrorHandler())

	// ── Handlers ─────────────────────────────────────────────────────────────
	ingredientesH := handler.NewIngredientesHandler(svc.Ingredientes)
	recetasH := handler.NewRecetasHandler(svc.Recetas)
	carrosH := handler.NewCarrosHandler(svc.Carros, svc.Agregacion)
	ajustesH := handler.NewAjustesHandler(svc.Ajustes)
	cicloH := handler.NewCicloHandler(svc.Ciclo, svc.Documentos)
	presupuestosH := handler.NewPresupuestosHandler(svc.Presupuestos)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var cmd redis.Cmdable
	if rdb != nil {
		cmd = rdb
	}
	r.GET("/health", handler.Health(db, cmd, d.Impresora))
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	if d.Hub != nil {
		r.GET("/ws", gin.WrapH(d.Hub))
	}

	rpm := cfg.RateLimitRPM
	if rpm <= 0 {
		rpm = 600
	}
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.RateLimiter(rpm, time.Minute))
	{
		// Catalog reads: any authenticated operator
		v1.GET("/ingredientes", ingredientesH.Listar)
		v1.GET("/ingredientes/:id", ingredientesH.ObtenerPorID)
		v1.GET("/ingredientes/:id/composicion", ingredientesH.ObtenerComposicion)
		v1.GET("/articulos", ingredientesH.BuscarArticulos)
		v1.GET("/articulos/:numero/receta", recetasH.Obtener)
		v1.GET("/articulos/:numero/receta/integridad", recetasH.Integridad)
		v1.GET("/articulos/:numero/expansion", recetasH.Expandir)

		// Catalog writes: supervisor only
		ing := v1.Group("/ingredientes", middleware.RequireRole("supervisor"))
		{
			ing.POST("", ingredientesH.Crear)
			ing.PUT("/:id", ingredientesH.Actualizar)
			ing.DELETE("/:id", ingredientesH.Eliminar)
			ing.POST("/:id/composicion", ingredientesH.AgregarComponente)
			ing.PUT("/:id/composicion/:ingrediente_id", ingredientesH.ActualizarComponente)
			ing.DELETE("/:id/composicion/:ingrediente_id", ingredientesH.EliminarComponente)
			ing.DELETE("/:id/composicion", ingredientesH.EliminarComposicion)
			ing.PUT("/:id/receta-base", ingredientesH.ActualizarRecetaBase)
		}
		rec := v1.Group("/articulos/:numero/receta", middleware.RequireRole("supervisor"))
		{
			rec.PUT("", recetasH.Guardar)
			rec.DELETE("", recetasH.Eliminar)
		}

		// Carts: scoped to the caller by the services
		carros := v1.Group("/carros")
		{
			carros.POST("", carrosH.Crear)
			carros.GET("", carrosH.Listar)
			carros.GET("/:id", carrosH.Obtener)
			carros.DELETE("/:id", carrosH.Eliminar)
			carros.GET("/:id/resumen-eliminacion", carrosH.ResumenEliminacion)

			carros.GET("/:id/articulos", carrosH.ListarArticulos)
			carros.POST("/:id/articulos", carrosH.AgregarArticulo)
			carros.PUT("/:id/articulos/:numero", carrosH.ModificarCantidad)
			carros.DELETE("/:id/articulos/:numero", carrosH.EliminarArticulo)
			carros.GET("/:id/vinculados", carrosH.Vinculados)
			carros.PUT("/:id/vinculados/:numero", carrosH.ActualizarVinculado)

			carros.GET("/:id/ingredientes", carrosH.Ingredientes)
			carros.GET("/:id/mixes", carrosH.Mixes)

			carros.POST("/:id/ajustes", ajustesH.Registrar)
			carros.GET("/:id/ajustes", ajustesH.Listar)

			carros.POST("/:id/estado", cicloH.CambiarEstado)
			carros.POST("/:id/ingredientes-finales", cicloH.GuardarIngredientes)
			carros.POST("/:id/etiquetas", cicloH.ImprimirEtiquetas)
			carros.POST("/:id/informe", cicloH.GenerarInforme)
		}
		v1.DELETE("/ajustes/:id", ajustesH.Eliminar)
		v1.GET("/stock-usuario", ajustesH.StockUsuario)

		v1.GET("/presupuestos", presupuestosH.Listar)
		v1.GET("/presupuestos/:id", presupuestosH.Obtener)
		v1.POST("/presupuestos/sincronizar", middleware.RequireRole("supervisor"), presupuestosH.Sincronizar)

		if cmd != nil {
			jobsH := handler.NewJobsHandler(cmd)
			jobs := v1.Group("/jobs", middleware.RequireRole("supervisor"))
			{
				jobs.GET("/dlq", jobsH.DLQ)
				jobs.POST("/:tipo/reencolar", jobsH.Reencolar)
			}
		}
	}

	// Swagger UI: only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
