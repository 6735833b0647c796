package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/expansion"
	"planta/internal/model"
	"planta/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CarroService handles production carts and their article lines. Every
// operation is scoped to the requesting user.
type CarroService interface {
	Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearCarroRequest) (*dto.CarroResponse, error)
	Listar(ctx context.Context, usuarioID uuid.UUID) ([]dto.CarroResponse, error)
	Obtener(ctx context.Context, usuarioID uuid.UUID, id uint) (*dto.CarroResponse, error)
	ListarArticulos(ctx context.Context, usuarioID uuid.UUID, id uint) ([]dto.CarroArticuloResponse, error)

	AgregarArticulo(ctx context.Context, usuarioID uuid.UUID, id uint, req dto.AgregarArticuloRequest) (*dto.CarroResponse, error)
	ModificarCantidad(ctx context.Context, usuarioID uuid.UUID, id uint, numero string, cantidad float64) (*dto.CarroResponse, error)
	EliminarArticulo(ctx context.Context, usuarioID uuid.UUID, id uint, numero string) (*dto.CarroResponse, error)
	ActualizarVinculado(ctx context.Context, usuarioID uuid.UUID, id uint, numero string, cantidad float64) error

	// ResumenEliminacion counts what Eliminar would remove, for the
	// confirmation prompt.
	ResumenEliminacion(ctx context.Context, usuarioID uuid.UUID, id uint) (*dto.ResumenEliminacionResponse, error)
	Eliminar(ctx context.Context, usuarioID uuid.UUID, id uint) (*dto.ResumenEliminacionResponse, error)
}

type carroService struct {
	repo         repository.CarroRepository
	movimientos  repository.MovimientoRepository
	ingredientes repository.IngredienteRepository
	articulos    repository.ArticuloRepository
	stockUsuario repository.StockUsuarioRepository
	carga        *cargador
	notif        Notificador
}

func NewCarroService(
	repo repository.CarroRepository,
	movimientos repository.MovimientoRepository,
	ingredientes repository.IngredienteRepository,
	articulos repository.ArticuloRepository,
	recetas repository.RecetaRepository,
	stockUsuario repository.StockUsuarioRepository,
	notif Notificador,
) CarroService {
	return &carroService{
		repo:         repo,
		movimientos:  movimientos,
		ingredientes: ingredientes,
		articulos:    articulos,
		stockUsuario: stockUsuario,
		carga:        &cargador{ingredientes: ingredientes, articulos: articulos, recetas: recetas},
		notif:        notificadorODefault(notif),
	}
}

func carroToResponse(c *model.Carro) *dto.CarroResponse {
	resp := &dto.CarroResponse{
		ID:                c.ID,
		UsuarioID:         c.UsuarioID.String(),
		TipoCarro:         c.TipoCarro,
		Estado:            c.Estado,
		FechaInicio:       c.FechaInicio,
		FechaPreparado:    c.FechaPreparado,
		FechaConfirmacion: c.FechaConfirmacion,
		KilosProducidos:   c.KilosProducidos,
		Articulos:         lineasToResponse(c.Articulos),
	}
	return resp
}

func lineasToResponse(lineas []model.CarroArticulo) []dto.CarroArticuloResponse {
	out := make([]dto.CarroArticuloResponse, 0, len(lineas))
	for _, a := range lineas {
		row := dto.CarroArticuloResponse{Numero: a.ArticuloNumero, Cantidad: a.Cantidad}
		if a.Articulo != nil {
			row.Descripcion = a.Articulo.Descripcion
		}
		out = append(out, row)
	}
	return out
}

// ── Carros ───────────────────────────────────────────────────────────────────

func (s *carroService) Crear(ctx context.Context, usuarioID uuid.UUID, req dto.CrearCarroRequest) (*dto.CarroResponse, error) {
	tipo := strings.ToLower(strings.TrimSpace(req.TipoCarro))
	if tipo != model.TipoCarroInterna && tipo != model.TipoCarroExterna {
		return nil, apierror.Invalid("Tipo de carro invalido: %s", req.TipoCarro)
	}
	c := &model.Carro{
		UsuarioID:   usuarioID,
		TipoCarro:   tipo,
		Estado:      model.EstadoEnPreparacion,
		FechaInicio: time.Now(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, apierror.Persistence("crear el carro", err)
	}
	log.Info().Uint("carro_id", c.ID).Str("tipo", tipo).Str("usuario_id", usuarioID.String()).Msg("carro creado")
	return carroToResponse(c), nil
}

func (s *carroService) Listar(ctx context.Context, usuarioID uuid.UUID) ([]dto.CarroResponse, error) {
	carros, err := s.repo.ListByUsuario(ctx, usuarioID)
	if err != nil {
		return nil, apierror.Persistence("listar carros", err)
	}
	out := make([]dto.CarroResponse, 0, len(carros))
	for i := range carros {
		out = append(out, *carroToResponse(&carros[i]))
	}
	return out, nil
}

func (s *carroService) Obtener(ctx context.Context, usuarioID uuid.UUID, id uint) (*dto.CarroResponse, error) {
	c, err := obtenerCarroPropio(ctx, s.repo, id, usuarioID)
	if err != nil {
		return nil, err
	}
	return carroToResponse(c), nil
}

func (s *carroService) ListarArticulos(ctx context.Context, usuarioID uuid.UUID, id uint) ([]dto.CarroArticuloResponse, error) {
	c, err := obtenerCarroPropio(ctx, s.repo, id, usuarioID)
	if err != nil {
		return nil, err
	}
	return lineasToResponse(c.Articulos), nil
}

// ── Lineas ───────────────────────────────────────────────────────────────────

func (s *carroService) editable(ctx context.Context, usuarioID uuid.UUID, id uint) (*model.Carro, error) {
	c, err := obtenerCarroPropio(ctx, s.repo, id, usuarioID)
	if err != nil {
		return nil, err
	}
	if c.Estado != model.EstadoEnPreparacion {
		return nil, apierror.State("El carro %d esta %s y ya no admite cambios de articulos", id, c.Estado)
	}
	return c, nil
}

// AgregarArticulo adds a line or sums onto an existing one. A recipe that
// does not fully resolve needs ConfirmarIntegridad.
func (s *carroService) AgregarArticulo(ctx context.Context, usuarioID uuid.UUID, id uint, req dto.AgregarArticuloRequest) (*dto.CarroResponse, error) {
	if req.Cantidad <= 0 || !cantidadValida(req.Cantidad) {
		return nil, apierror.Invalid("La cantidad debe ser mayor a cero")
	}
	c, err := s.editable(ctx, usuarioID, id)
	if err != nil {
		return nil, err
	}
	numero := strings.TrimSpace(req.ArticuloNumero)
	if _, err := s.articulos.FindByNumero(ctx, numero); err != nil {
		return nil, traducir(err, "obtener el articulo", "Articulo %s no encontrado", numero)
	}

	if !req.ConfirmarIntegridad {
		prueba := &model.Carro{TipoCarro: c.TipoCarro, Articulos: []model.CarroArticulo{{ArticuloNumero: numero, Cantidad: req.Cantidad}}}
		var res *expansion.Resultado
		err := runReadTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			r, _, err := s.carga.expandirCarro(tx, prueba)
			res = r
			return err
		})
		if err != nil {
			return nil, apierror.Persistence("verificar la receta", err)
		}
		if !res.Integro() {
			return nil, apierror.IntegrityWarning("La receta del articulo "+numero+" no es integra", res.Advertencias)
		}
	}

	var existente *model.CarroArticulo
	for i := range c.Articulos {
		if c.Articulos[i].ArticuloNumero == numero {
			existente = &c.Articulos[i]
			break
		}
	}
	if existente != nil {
		err = s.repo.UpdateArticuloCantidad(ctx, id, numero, existente.Cantidad+req.Cantidad)
	} else {
		err = s.repo.AddArticulo(ctx, &model.CarroArticulo{CarroID: id, ArticuloNumero: numero, Cantidad: req.Cantidad})
	}
	if err != nil {
		return nil, apierror.Persistence("agregar el articulo", err)
	}
	log.Info().Uint("carro_id", id).Str("articulo", numero).Float64("cantidad", req.Cantidad).Msg("articulo agregado al carro")
	s.notif.CarroActualizado(id, "articulo_agregado")
	return s.Obtener(ctx, usuarioID, id)
}

func (s *carroService) ModificarCantidad(ctx context.Context, usuarioID uuid.UUID, id uint, numero string, cantidad float64) (*dto.CarroResponse, error) {
	if cantidad <= 0 || !cantidadValida(cantidad) {
		return nil, apierror.Invalid("La cantidad debe ser mayor a cero")
	}
	if _, err := s.editable(ctx, usuarioID, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateArticuloCantidad(ctx, id, numero, cantidad); err != nil {
		return nil, traducir(err, "modificar la cantidad", "El articulo %s no esta en el carro", numero)
	}
	s.notif.CarroActualizado(id, "cantidad_modificada")
	return s.Obtener(ctx, usuarioID, id)
}

func (s *carroService) EliminarArticulo(ctx context.Context, usuarioID uuid.UUID, id uint, numero string) (*dto.CarroResponse, error) {
	if _, err := s.editable(ctx, usuarioID, id); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteArticulo(ctx, id, numero); err != nil {
		return nil, traducir(err, "eliminar el articulo", "El articulo %s no esta en el carro", numero)
	}
	s.notif.CarroActualizado(id, "articulo_eliminado")
	return s.Obtener(ctx, usuarioID, id)
}

// ActualizarVinculado overrides the quantity of a linked sub-article. Only
// external carts in preparado have a linked-article phase.
func (s *carroService) ActualizarVinculado(ctx context.Context, usuarioID uuid.UUID, id uint, numero string, cantidad float64) error {
	if cantidad < 0 || !cantidadValida(cantidad) {
		return apierror.Invalid("La cantidad no puede ser negativa")
	}
	c, err := obtenerCarroPropio(ctx, s.repo, id, usuarioID)
	if err != nil {
		return err
	}
	if !c.EsExterna() {
		return apierror.State("Solo los carros externos tienen articulos vinculados")
	}
	if c.Estado != model.EstadoPreparado {
		return apierror.State("Los articulos vinculados solo se editan con el carro preparado")
	}
	var res *expansion.Resultado
	err = runReadTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		r, _, err := s.carga.expandirCarro(tx, c)
		res = r
		return err
	})
	if err != nil {
		return apierror.Persistence("expandir el carro", err)
	}
	if _, ok := res.Articulos[numero]; !ok {
		return apierror.NotFound("El articulo %s no esta vinculado al carro", numero)
	}
	if err := s.repo.UpsertVinculo(ctx, &model.CarroVinculo{CarroID: id, ArticuloNumero: numero, Cantidad: cantidad}); err != nil {
		return apierror.Persistence("guardar el articulo vinculado", err)
	}
	s.notif.CarroActualizado(id, "vinculado_actualizado")
	return nil
}

// ── Eliminacion ──────────────────────────────────────────────────────────────

func (s *carroService) ResumenEliminacion(ctx context.Context, usuarioID uuid.UUID, id uint) (*dto.ResumenEliminacionResponse, error) {
	c, err := obtenerCarroPropio(ctx, s.repo, id, usuarioID)
	if err != nil {
		return nil, err
	}
	ing, ventas, err := s.movimientos.CountByCarro(ctx, id)
	if err != nil {
		return nil, apierror.Persistence("contar movimientos", err)
	}
	return &dto.ResumenEliminacionResponse{
		ArticulosEliminados:    int64(len(c.Articulos)),
		IngredientesEliminados: ing,
		StockVentasEliminados:  ventas,
	}, nil
}

// Eliminar reverses every stock effect booked against the cart, deletes its
// ledger and then the cart itself, all in one transaction.
func (s *carroService) Eliminar(ctx context.Context, usuarioID uuid.UUID, id uint) (*dto.ResumenEliminacionResponse, error) {
	c, err := obtenerCarroPropio(ctx, s.repo, id, usuarioID)
	if err != nil {
		return nil, err
	}
	resumen := &dto.ResumenEliminacionResponse{ArticulosEliminados: int64(len(c.Articulos))}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		movs, err := s.movimientos.ListIngredienteByCarroTx(tx, id)
		if err != nil {
			return err
		}
		ventas, err := s.movimientos.ListVentasByCarroTx(tx, id)
		if err != nil {
			return err
		}
		if err := revertirIngredientes(tx, s.ingredientes, s.stockUsuario, movs); err != nil {
			return err
		}
		if err := revertirVentas(tx, s.articulos, ventas); err != nil {
			return err
		}
		if err := s.movimientos.DeleteVentasTx(tx, idsVentas(ventas)); err != nil {
			return err
		}
		if err := s.movimientos.DeleteIngredienteTx(tx, idsMovimientos(movs)); err != nil {
			return err
		}
		resumen.IngredientesEliminados = int64(len(movs))
		resumen.StockVentasEliminados = int64(len(ventas))
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return nil, traducir(err, "eliminar el carro", "Carro %d no encontrado", id)
	}
	log.Info().Uint("carro_id", id).
		Int64("movimientos", resumen.IngredientesEliminados).
		Int64("movimientos_ventas", resumen.StockVentasEliminados).
		Msg("carro eliminado")
	s.notif.CarroActualizado(id, "carro_eliminado")
	return resumen, nil
}

// revertirIngredientes undoes the stock delta of each movement on the
// balance it was booked to. A missing ingredient has no stock left to fix.
func revertirIngredientes(tx *gorm.DB, ingredientes repository.IngredienteRepository, su repository.StockUsuarioRepository, movs []model.MovimientoIngrediente) error {
	for _, m := range movs {
		var err error
		if m.Destino == model.DestinoStockUsuario {
			_, _, err = su.AddTx(tx, m.UsuarioID, m.IngredienteID, -m.Cantidad)
		} else {
			_, _, err = ingredientes.AddStockTx(tx, m.IngredienteID, -m.Cantidad)
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

func revertirVentas(tx *gorm.DB, articulos repository.ArticuloRepository, ventas []model.MovimientoStockVentas) error {
	for _, v := range ventas {
		if _, _, err := articulos.AddStockTx(tx, v.ArticuloNumero, -v.Kilos); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

func idsMovimientos(movs []model.MovimientoIngrediente) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(movs))
	for _, m := range movs {
		out = append(out, m.ID)
	}
	return out
}

func idsVentas(ventas []model.MovimientoStockVentas) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ventas))
	for _, v := range ventas {
		out = append(out, v.ID)
	}
	return out
}
