package service

import (
	"context"
	"strings"

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

// AjusteService is the cart-scoped manual stock ledger. Each entry is one
// ingredient movement paired with one sales-stock movement, written together.
type AjusteService interface {
	Registrar(ctx context.Context, usuarioID uuid.UUID, carroID uint, req dto.RegistrarAjusteRequest) (*dto.AjusteResponse, error)
	// Eliminar reverses the entry and, when it came from a mix ingreso, the
	// whole group that ingreso produced.
	Eliminar(ctx context.Context, usuarioID uuid.UUID, movimientoID uuid.UUID) (*dto.EliminarAjusteResponse, error)
	Listar(ctx context.Context, usuarioID uuid.UUID, carroID uint) ([]dto.MovimientoResponse, error)
	StockUsuario(ctx context.Context, usuarioID uuid.UUID) ([]dto.StockUsuarioResponse, error)
}

type ajusteService struct {
	carros       repository.CarroRepository
	movimientos  repository.MovimientoRepository
	ingredientes repository.IngredienteRepository
	articulos    repository.ArticuloRepository
	stockUsuario repository.StockUsuarioRepository
	carga        *cargador
	metrics      *metrics.Metrics
	notif        Notificador
}

func NewAjusteService(
	carros repository.CarroRepository,
	movimientos repository.MovimientoRepository,
	ingredientes repository.IngredienteRepository,
	articulos repository.ArticuloRepository,
	recetas repository.RecetaRepository,
	stockUsuario repository.StockUsuarioRepository,
	m *metrics.Metrics,
	notif Notificador,
) AjusteService {
	return &ajusteService{
		carros:       carros,
		movimientos:  movimientos,
		ingredientes: ingredientes,
		articulos:    articulos,
		stockUsuario: stockUsuario,
		carga:        &cargador{ingredientes: ingredientes, articulos: articulos, recetas: recetas},
		metrics:      m,
		notif:        notificadorODefault(notif),
	}
}

func movimientoToResponse(m *model.MovimientoIngrediente) dto.MovimientoResponse {
	resp := dto.MovimientoResponse{
		ID:             m.ID.String(),
		IngredienteID:  m.IngredienteID,
		CarroID:        m.CarroID,
		Tipo:           m.Tipo,
		Cantidad:       m.Cantidad,
		StockAnterior:  m.StockAnterior,
		StockNuevo:     m.StockNuevo,
		Destino:        m.Destino,
		OrigenMixID:    m.OrigenMixID,
		ArticuloNumero: m.ArticuloNumero,
		CreatedAt:      m.CreatedAt,
	}
	if m.GrupoID != nil {
		g := m.GrupoID.String()
		resp.GrupoID = &g
	}
	return resp
}

// ── Registrar ────────────────────────────────────────────────────────────────

// Registrar books a signed ingreso against a cart. A mix target is never
// booked as such: it fans out into one entry per primitive component,
// proportional to the mix base yield and tagged with origen_mix_id.
func (s *ajusteService) Registrar(ctx context.Context, usuarioID uuid.UUID, carroID uint, req dto.RegistrarAjusteRequest) (*dto.AjusteResponse, error) {
	if req.Kilos == 0 || !cantidadValida(req.Kilos) {
		return nil, apierror.Invalid("Los kilos deben ser un numero distinto de cero")
	}
	c, err := obtenerCarroPropio(ctx, s.carros, carroID, usuarioID)
	if err != nil {
		return nil, err
	}
	if c.Estado == model.EstadoConfirmado {
		return nil, apierror.State("El carro %d esta confirmado y no admite ajustes", carroID)
	}
	numero := strings.TrimSpace(req.ArticuloNumero)
	art, err := s.articulos.FindByNumero(ctx, numero)
	if err != nil {
		return nil, traducir(err, "obtener el articulo", "Articulo %s no encontrado", numero)
	}
	codigo := req.CodigoBarras
	if codigo == "" {
		codigo = art.CodigoBarras
	}

	destino := model.DestinoStockGeneral
	if c.EsExterna() {
		destino = model.DestinoStockUsuario
	}
	grupo := uuid.New()
	resp := &dto.AjusteResponse{GrupoID: grupo.String()}

	err = runTx(ctx, s.carros.DB(), func(tx *gorm.DB) error {
		if err := s.exigirAbiertoTx(tx, carroID); err != nil {
			return err
		}
		cat, err := s.carga.cargar(tx, nil, []uint{req.IngredienteID})
		if err != nil {
			return err
		}
		objetivo, ok := cat.ingredientes[req.IngredienteID]
		if !ok {
			return apierror.NotFound("Ingrediente %d no encontrado", req.IngredienteID)
		}
		partes := expansion.DescomponerMix(cat.grafo, objetivo.ID, req.Kilos)
		if !partes.Integro() && !req.ConfirmarIntegridad {
			return apierror.IntegrityWarning("La composicion de "+objetivo.Nombre+" no es integra", advertenciasUnicas(partes.Advertencias))
		}
		if len(partes.Ingredientes) == 0 {
			return apierror.Invalid("El ingrediente %s no tiene componentes que ajustar", objetivo.Nombre)
		}
		var origenMix *uint
		if objetivo.EsMix() {
			origenMix = &objetivo.ID
		}

		for _, id := range idsOrdenados(partes.Ingredientes) {
			cant := partes.Ingredientes[id]
			var anterior, nuevo float64
			if destino == model.DestinoStockUsuario {
				anterior, nuevo, err = s.stockUsuario.AddTx(tx, usuarioID, id, cant)
			} else {
				anterior, nuevo, err = s.ingredientes.AddStockTx(tx, id, cant)
			}
			if err != nil {
				return err
			}
			mov := &model.MovimientoIngrediente{
				ID:             uuid.New(),
				IngredienteID:  id,
				CarroID:        &carroID,
				UsuarioID:      usuarioID,
				Tipo:           model.MovimientoIngresoManual,
				Cantidad:       cant,
				StockAnterior:  anterior,
				StockNuevo:     nuevo,
				Destino:        destino,
				OrigenMixID:    origenMix,
				GrupoID:        &grupo,
				ArticuloNumero: &numero,
				CodigoBarras:   &codigo,
			}
			if err := s.movimientos.CreateIngredienteTx(tx, mov); err != nil {
				return err
			}

			vAnt, vNuevo, err := s.articulos.AddStockTx(tx, numero, -cant)
			if err != nil {
				return err
			}
			venta := &model.MovimientoStockVentas{
				ID:                      uuid.New(),
				ArticuloNumero:          numero,
				CodigoBarras:            codigo,
				Kilos:                   -cant,
				CarroID:                 &carroID,
				MovimientoIngredienteID: &mov.ID,
				UsuarioID:               usuarioID,
				Tipo:                    model.VentasConsumoIngreso,
				StockAnterior:           vAnt,
				StockNuevo:              vNuevo,
			}
			if err := s.movimientos.CreateVentasTx(tx, venta); err != nil {
				return err
			}
			resp.Entradas = append(resp.Entradas, movimientoToResponse(mov))
		}
		return nil
	})
	if err != nil {
		return nil, traducir(err, "registrar el ajuste", "Ingrediente %d no encontrado", req.IngredienteID)
	}
	s.metrics.AjustesRegistrados(len(resp.Entradas))
	log.Info().Uint("carro_id", carroID).
		Uint("ingrediente_id", req.IngredienteID).
		Float64("kilos", req.Kilos).
		Str("grupo_id", resp.GrupoID).
		Int("entradas", len(resp.Entradas)).
		Msg("ajuste manual registrado")
	s.notif.CarroActualizado(carroID, "ajuste_registrado")
	return resp, nil
}

// exigirAbiertoTx re-reads the cart state under a row lock held until tx ends.
func (s *ajusteService) exigirAbiertoTx(tx *gorm.DB, carroID uint) error {
	estado, err := s.carros.EstadoForUpdateTx(tx, carroID)
	if err != nil {
		return err
	}
	if estado == model.EstadoConfirmado {
		return apierror.State("El carro %d esta confirmado y no admite ajustes", carroID)
	}
	return nil
}

// ── Eliminar ─────────────────────────────────────────────────────────────────

func (s *ajusteService) Eliminar(ctx context.Context, usuarioID uuid.UUID, movimientoID uuid.UUID) (*dto.EliminarAjusteResponse, error) {
	mov, err := s.movimientos.FindIngredienteByID(ctx, movimientoID)
	if err != nil {
		return nil, traducir(err, "obtener el movimiento", "Movimiento %s no encontrado", movimientoID)
	}
	if mov.CarroID == nil {
		return nil, apierror.Invalid("El movimiento %s no pertenece a un carro", movimientoID)
	}
	carroID := *mov.CarroID
	c, err := obtenerCarroPropio(ctx, s.carros, carroID, usuarioID)
	if err != nil {
		return nil, err
	}
	if c.Estado == model.EstadoConfirmado {
		return nil, apierror.State("El carro %d esta confirmado y no admite cambios en ajustes", carroID)
	}
	if mov.Tipo != model.MovimientoIngresoManual {
		return nil, apierror.Invalid("Solo se pueden eliminar ingresos manuales")
	}

	var revertidos int
	err = runTx(ctx, s.movimientos.DB(), func(tx *gorm.DB) error {
		if err := s.exigirAbiertoTx(tx, carroID); err != nil {
			return err
		}
		grupo := []model.MovimientoIngrediente{*mov}
		if mov.GrupoID != nil {
			g, err := s.movimientos.ListIngredienteByGrupoTx(tx, *mov.GrupoID)
			if err != nil {
				return err
			}
			if len(g) > 0 {
				grupo = g
			}
		}
		ids := idsMovimientos(grupo)
		ventas, err := s.movimientos.ListVentasByMovimientosTx(tx, ids)
		if err != nil {
			return err
		}
		if err := revertirIngredientes(tx, s.ingredientes, s.stockUsuario, grupo); err != nil {
			return err
		}
		if err := revertirVentas(tx, s.articulos, ventas); err != nil {
			return err
		}
		if err := s.movimientos.DeleteVentasTx(tx, idsVentas(ventas)); err != nil {
			return err
		}
		if err := s.movimientos.DeleteIngredienteTx(tx, ids); err != nil {
			return err
		}
		revertidos = len(grupo)
		return nil
	})
	if err != nil {
		return nil, apierror.Persistence("revertir el ajuste", err)
	}
	s.metrics.AjustesRevertidos(revertidos)
	log.Info().Uint("carro_id", carroID).Str("movimiento_id", movimientoID.String()).Int("revertidos", revertidos).Msg("ajuste manual revertido")
	s.notif.CarroActualizado(carroID, "ajuste_eliminado")
	return &dto.EliminarAjusteResponse{Revertidos: revertidos}, nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *ajusteService) Listar(ctx context.Context, usuarioID uuid.UUID, carroID uint) ([]dto.MovimientoResponse, error) {
	if _, err := obtenerCarroPropio(ctx, s.carros, carroID, usuarioID); err != nil {
		return nil, err
	}
	movs, err := s.movimientos.ListIngredienteByCarro(ctx, carroID)
	if err != nil {
		return nil, apierror.Persistence("listar movimientos", err)
	}
	out := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		out = append(out, movimientoToResponse(&movs[i]))
	}
	return out, nil
}

func (s *ajusteService) StockUsuario(ctx context.Context, usuarioID uuid.UUID) ([]dto.StockUsuarioResponse, error) {
	filas, err := s.stockUsuario.ListByUsuario(ctx, usuarioID)
	if err != nil {
		return nil, apierror.Persistence("obtener stock de usuario", err)
	}
	ids := make([]uint, 0, len(filas))
	for _, f := range filas {
		ids = append(ids, f.IngredienteID)
	}
	nombres := make(map[uint]string, len(ids))
	err = runReadTx(ctx, s.ingredientes.DB(), func(tx *gorm.DB) error {
		ings, err := s.ingredientes.FindByIDsTx(tx, ids)
		for _, i := range ings {
			nombres[i.ID] = i.Nombre
		}
		return err
	})
	if err != nil {
		return nil, apierror.Persistence("obtener ingredientes", err)
	}
	out := make([]dto.StockUsuarioResponse, 0, len(filas))
	for _, f := range filas {
		out = append(out, dto.StockUsuarioResponse{IngredienteID: f.IngredienteID, Nombre: nombres[f.IngredienteID], Cantidad: f.Cantidad})
	}
	return out, nil
}
