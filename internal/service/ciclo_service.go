package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/expansion"
	"planta/internal/metrics"
	"planta/internal/model"
	"planta/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CicloService drives the cart through en_preparacion → preparado →
// confirmado and books the stock effects of confirmation.
type CicloService interface {
	// CambiarEstado moves the cart to req.Estado, or to the next state when
	// req.Estado is empty.
	CambiarEstado(ctx context.Context, usuarioID uuid.UUID, carroID uint, req dto.CambiarEstadoRequest) (*dto.TransicionResponse, error)
	// GuardarIngredientes applies the operator's final per-ingredient
	// corrections to a confirmed internal cart. Rows without Ajustar are skipped.
	GuardarIngredientes(ctx context.Context, usuarioID uuid.UUID, carroID uint, req dto.GuardarIngredientesRequest) (*dto.GuardarIngredientesResponse, error)
}

type cicloService struct {
	carros       repository.CarroRepository
	movimientos  repository.MovimientoRepository
	ingredientes repository.IngredienteRepository
	articulos    repository.ArticuloRepository
	stockUsuario repository.StockUsuarioRepository
	carga        *cargador
	candado      Candado
	lockTTL      time.Duration
	metrics      *metrics.Metrics
	notif        Notificador
}

func NewCicloService(
	carros repository.CarroRepository,
	movimientos repository.MovimientoRepository,
	ingredientes repository.IngredienteRepository,
	articulos repository.ArticuloRepository,
	recetas repository.RecetaRepository,
	stockUsuario repository.StockUsuarioRepository,
	candado Candado,
	lockTTL time.Duration,
	m *metrics.Metrics,
	notif Notificador,
) CicloService {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &cicloService{
		carros:       carros,
		movimientos:  movimientos,
		ingredientes: ingredientes,
		articulos:    articulos,
		stockUsuario: stockUsuario,
		carga:        &cargador{ingredientes: ingredientes, articulos: articulos, recetas: recetas},
		candado:      candado,
		lockTTL:      lockTTL,
		metrics:      m,
		notif:        notificadorODefault(notif),
	}
}

// ── Transiciones ─────────────────────────────────────────────────────────────

func (s *cicloService) CambiarEstado(ctx context.Context, usuarioID uuid.UUID, carroID uint, req dto.CambiarEstadoRequest) (*dto.TransicionResponse, error) {
	c, err := obtenerCarroPropio(ctx, s.carros, carroID, usuarioID)
	if err != nil {
		return nil, err
	}
	siguiente := model.SiguienteEstado(c.Estado)
	destino := req.Estado
	if destino == "" {
		destino = siguiente
	}
	if siguiente == "" {
		return nil, apierror.State("El carro %d ya esta confirmado", carroID)
	}
	if destino != siguiente {
		return nil, apierror.State("No se puede pasar de %s a %s", c.Estado, destino)
	}

	liberar, err := s.bloquear(ctx, carroID)
	if err != nil {
		return nil, err
	}
	defer liberar()

	anterior := c.Estado
	switch destino {
	case model.EstadoPreparado:
		err = s.preparar(ctx, c)
	case model.EstadoConfirmado:
		err = s.confirmar(ctx, c, req)
	}
	if err != nil {
		return nil, err
	}

	s.metrics.Transicion(destino, c.TipoCarro)
	log.Info().Uint("carro_id", carroID).Str("desde", anterior).Str("hacia", destino).Str("tipo", c.TipoCarro).Msg("transicion de carro")
	s.notif.CarroActualizado(carroID, "estado_"+destino)
	return &dto.TransicionResponse{CarroID: carroID, Anterior: anterior, Estado: destino}, nil
}

// bloquear takes the in-flight lock for the cart. When the lock store is
// unreachable the conditional update still rejects a concurrent transition.
func (s *cicloService) bloquear(ctx context.Context, carroID uint) (func(), error) {
	if s.candado == nil {
		return func() {}, nil
	}
	clave := fmt.Sprintf("carro:transicion:%d", carroID)
	ok, err := s.candado.Adquirir(ctx, clave, s.lockTTL)
	if err != nil {
		log.Warn().Err(err).Uint("carro_id", carroID).Msg("candado de transicion no disponible")
		return func() {}, nil
	}
	if !ok {
		return nil, apierror.State("Ya hay un cambio de estado en curso para el carro %d", carroID)
	}
	return func() {
		if err := s.candado.Liberar(context.WithoutCancel(ctx), clave); err != nil {
			log.Warn().Err(err).Uint("carro_id", carroID).Msg("no se pudo liberar el candado de transicion")
		}
	}, nil
}

func (s *cicloService) transicion(tx *gorm.DB, c *model.Carro, hacia string, campos map[string]any) error {
	err := s.carros.TransitionTx(tx, c.ID, c.Estado, hacia, campos)
	if errors.Is(err, repository.ErrTransicionConcurrente) {
		return apierror.State("El carro %d cambio de estado en otra operacion", c.ID)
	}
	return err
}

func (s *cicloService) preparar(ctx context.Context, c *model.Carro) error {
	if len(c.Articulos) == 0 {
		return apierror.Invalid("El carro no tiene articulos")
	}
	ahora := time.Now()
	err := runTx(ctx, s.carros.DB(), func(tx *gorm.DB) error {
		return s.transicion(tx, c, model.EstadoPreparado, map[string]any{"fecha_preparado": ahora})
	})
	return traducir(err, "preparar el carro", "Carro %d no encontrado", c.ID)
}

func (s *cicloService) confirmar(ctx context.Context, c *model.Carro, req dto.CambiarEstadoRequest) error {
	var kilos float64
	if c.EsExterna() {
		if req.KilosProducidos == nil {
			return apierror.Invalid("Los kilos producidos son obligatorios para carros externos")
		}
		kilos = *req.KilosProducidos
		if kilos <= 0 || !cantidadValida(kilos) {
			return apierror.Invalid("Los kilos producidos deben ser un numero mayor a cero")
		}
	} else if req.KilosProducidos != nil {
		log.Warn().Uint("carro_id", c.ID).Float64("kilos", *req.KilosProducidos).Msg("kilos producidos ignorados en carro interno")
	}

	ahora := time.Now()
	campos := map[string]any{"fecha_confirmacion": ahora}
	if c.EsExterna() {
		campos["kilos_producidos"] = kilos
	}

	err := runTx(ctx, s.carros.DB(), func(tx *gorm.DB) error {
		res, cat, err := s.carga.expandirCarro(tx, c)
		if err != nil {
			return err
		}
		if !res.Integro() && !req.ConfirmarIntegridad {
			return apierror.IntegrityWarning("El carro contiene recetas no integras", res.Advertencias)
		}
		if err := s.transicion(tx, c, model.EstadoConfirmado, campos); err != nil {
			return err
		}
		if c.EsExterna() {
			return s.efectosExterna(tx, c, res, cat, kilos)
		}
		return s.efectosInterna(tx, c, res)
	})
	return traducir(err, "confirmar el carro", "Carro %d no encontrado", c.ID)
}

// ── Efectos de confirmacion ──────────────────────────────────────────────────

func (s *cicloService) efectosInterna(tx *gorm.DB, c *model.Carro, res *expansion.Resultado) error {
	for _, id := range idsOrdenados(res.Ingredientes) {
		if err := s.debitarIngrediente(tx, c, id, res.Ingredientes[id], model.DestinoStockGeneral); err != nil {
			return err
		}
	}
	for _, linea := range c.Articulos {
		if err := s.moverVentas(tx, c, linea.ArticuloNumero, linea.Cantidad, model.VentasProduccion); err != nil {
			return err
		}
	}
	return nil
}

// efectosExterna debits primitives from the user's own stock, takes linked
// sub-articles from sales stock and credits the produced kilos to the
// cart's articles in proportion to their line quantity.
func (s *cicloService) efectosExterna(tx *gorm.DB, c *model.Carro, res *expansion.Resultado, cat *catalogo, kilos float64) error {
	for _, id := range idsOrdenados(res.Ingredientes) {
		if err := s.debitarIngrediente(tx, c, id, res.Ingredientes[id], model.DestinoStockUsuario); err != nil {
			return err
		}
	}
	for _, v := range vinculados(c, res, cat) {
		if v.CantidadAjustada <= 0 {
			continue
		}
		if err := s.moverVentas(tx, c, v.Numero, -v.CantidadAjustada, model.VentasConsumoVinculado); err != nil {
			return err
		}
	}
	var total float64
	for _, linea := range c.Articulos {
		total += linea.Cantidad
	}
	if total <= 0 {
		return nil
	}
	for _, linea := range c.Articulos {
		if err := s.moverVentas(tx, c, linea.ArticuloNumero, kilos*linea.Cantidad/total, model.VentasProduccion); err != nil {
			return err
		}
	}
	return nil
}

func (s *cicloService) debitarIngrediente(tx *gorm.DB, c *model.Carro, id uint, cantidad float64, destino string) error {
	var anterior, nuevo float64
	var err error
	if destino == model.DestinoStockUsuario {
		anterior, nuevo, err = s.stockUsuario.AddTx(tx, c.UsuarioID, id, -cantidad)
	} else {
		anterior, nuevo, err = s.ingredientes.AddStockTx(tx, id, -cantidad)
	}
	if err != nil {
		return err
	}
	carroID := c.ID
	return s.movimientos.CreateIngredienteTx(tx, &model.MovimientoIngrediente{
		ID:            uuid.New(),
		IngredienteID: id,
		CarroID:       &carroID,
		UsuarioID:     c.UsuarioID,
		Tipo:          model.MovimientoProduccion,
		Cantidad:      -cantidad,
		StockAnterior: anterior,
		StockNuevo:    nuevo,
		Destino:       destino,
	})
}

func (s *cicloService) moverVentas(tx *gorm.DB, c *model.Carro, numero string, kilos float64, tipo string) error {
	anterior, nuevo, err := s.articulos.AddStockTx(tx, numero, kilos)
	if err != nil {
		return err
	}
	carroID := c.ID
	var codigo string
	for _, l := range c.Articulos {
		if l.ArticuloNumero == numero && l.Articulo != nil {
			codigo = l.Articulo.CodigoBarras
		}
	}
	return s.movimientos.CreateVentasTx(tx, &model.MovimientoStockVentas{
		ID:             uuid.New(),
		ArticuloNumero: numero,
		CodigoBarras:   codigo,
		Kilos:          kilos,
		CarroID:        &carroID,
		UsuarioID:      c.UsuarioID,
		Tipo:           tipo,
		StockAnterior:  anterior,
		StockNuevo:     nuevo,
	})
}

// ── Ajuste final ─────────────────────────────────────────────────────────────

func (s *cicloService) GuardarIngredientes(ctx context.Context, usuarioID uuid.UUID, carroID uint, req dto.GuardarIngredientesRequest) (*dto.GuardarIngredientesResponse, error) {
	c, err := obtenerCarroPropio(ctx, s.carros, carroID, usuarioID)
	if err != nil {
		return nil, err
	}
	if c.EsExterna() {
		return nil, apierror.State("El ajuste final de ingredientes solo aplica a carros internos")
	}
	if c.Estado != model.EstadoConfirmado {
		return nil, apierror.State("El carro %d debe estar confirmado para guardar ingredientes", carroID)
	}

	resp := &dto.GuardarIngredientesResponse{}
	var elegidos []dto.IngredienteFinalRequest
	for _, it := range req.Items {
		if !it.Ajustar {
			resp.Omitidos++
			continue
		}
		if it.Cantidad == 0 || !cantidadValida(it.Cantidad) {
			return nil, apierror.Invalid("La cantidad del ingrediente %d debe ser un numero distinto de cero", it.IngredienteID)
		}
		elegidos = append(elegidos, it)
	}
	if len(elegidos) == 0 {
		return nil, apierror.Invalid("Seleccione al menos un ingrediente para ajustar")
	}

	err = runTx(ctx, s.carros.DB(), func(tx *gorm.DB) error {
		for _, it := range elegidos {
			anterior, nuevo, err := s.ingredientes.AddStockTx(tx, it.IngredienteID, it.Cantidad)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apierror.NotFound("Ingrediente %d no encontrado", it.IngredienteID)
				}
				return err
			}
			err = s.movimientos.CreateIngredienteTx(tx, &model.MovimientoIngrediente{
				ID:            uuid.New(),
				IngredienteID: it.IngredienteID,
				CarroID:       &carroID,
				UsuarioID:     usuarioID,
				Tipo:          model.MovimientoAjusteFinal,
				Cantidad:      it.Cantidad,
				StockAnterior: anterior,
				StockNuevo:    nuevo,
				Destino:       model.DestinoStockGeneral,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, traducir(err, "guardar ingredientes", "Carro %d no encontrado", carroID)
	}
	resp.Aplicados = len(elegidos)
	log.Info().Uint("carro_id", carroID).Int("aplicados", resp.Aplicados).Int("omitidos", resp.Omitidos).Msg("ajuste final de ingredientes")
	s.notif.CarroActualizado(carroID, "ingredientes_guardados")
	return resp, nil
}
