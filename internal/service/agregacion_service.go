package service

import (
	"context"
	"sort"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/expansion"
	"planta/internal/model"
	"planta/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AgregacionService builds the read-only consolidated views of a cart.
type AgregacionService interface {
	Ingredientes(ctx context.Context, usuarioID uuid.UUID, carroID uint) (*dto.IngredientesConsolidadosResponse, error)
	Mixes(ctx context.Context, usuarioID uuid.UUID, carroID uint) ([]dto.MixConsolidado, error)
	Articulos(ctx context.Context, usuarioID uuid.UUID, carroID uint) ([]dto.ArticuloVinculado, error)
}

type agregacionService struct {
	carros       repository.CarroRepository
	movimientos  repository.MovimientoRepository
	ingredientes repository.IngredienteRepository
	stockUsuario repository.StockUsuarioRepository
	carga        *cargador
	epsilon      float64
}

func NewAgregacionService(
	carros repository.CarroRepository,
	movimientos repository.MovimientoRepository,
	ingredientes repository.IngredienteRepository,
	articulos repository.ArticuloRepository,
	recetas repository.RecetaRepository,
	stockUsuario repository.StockUsuarioRepository,
	epsilon float64,
) AgregacionService {
	if epsilon <= 0 {
		epsilon = 0.01
	}
	return &agregacionService{
		carros:       carros,
		movimientos:  movimientos,
		ingredientes: ingredientes,
		stockUsuario: stockUsuario,
		carga:        &cargador{ingredientes: ingredientes, articulos: articulos, recetas: recetas},
		epsilon:      epsilon,
	}
}

// Ingredientes consolidates the primitive requirements of every line by
// ingredient id and joins them against stock. External carts are measured
// against the user's own stock, which is where their ingresos land.
func (s *agregacionService) Ingredientes(ctx context.Context, usuarioID uuid.UUID, carroID uint) (*dto.IngredientesConsolidadosResponse, error) {
	c, err := obtenerCarroPropio(ctx, s.carros, carroID, usuarioID)
	if err != nil {
		return nil, err
	}

	var (
		res     *expansion.Resultado
		cat     *catalogo
		manual  = make(map[uint]float64)
		propios = make(map[uint]float64)
	)
	err = runReadTx(ctx, s.carros.DB(), func(tx *gorm.DB) error {
		var err error
		res, cat, err = s.carga.expandirCarro(tx, c)
		if err != nil {
			return err
		}
		movs, err := s.movimientos.ListIngredienteByCarroTx(tx, carroID)
		if err != nil {
			return err
		}
		var faltan []uint
		for _, m := range movs {
			if m.Tipo != model.MovimientoIngresoManual {
				continue
			}
			manual[m.IngredienteID] += m.Cantidad
			if _, ok := cat.ingredientes[m.IngredienteID]; !ok {
				faltan = append(faltan, m.IngredienteID)
			}
		}
		if len(faltan) > 0 {
			extra, err := s.ingredientes.FindByIDsTx(tx, faltan)
			if err != nil {
				return err
			}
			for i := range extra {
				cat.ingredientes[extra[i].ID] = &extra[i]
			}
		}
		return nil
	})
	if err != nil {
		return nil, apierror.Persistence("consolidar ingredientes", err)
	}

	if c.EsExterna() {
		filas, err := s.stockUsuario.ListByUsuario(ctx, usuarioID)
		if err != nil {
			return nil, apierror.Persistence("obtener stock de usuario", err)
		}
		for _, f := range filas {
			propios[f.IngredienteID] = f.Cantidad
		}
	}

	if !res.Integro() {
		log.Warn().Uint("carro_id", carroID).Int("advertencias", len(res.Advertencias)).Msg("expansion degradada")
	}

	ids := make(map[uint]struct{}, len(res.Ingredientes)+len(manual))
	for id := range res.Ingredientes {
		ids[id] = struct{}{}
	}
	for id := range manual {
		ids[id] = struct{}{}
	}

	resp := &dto.IngredientesConsolidadosResponse{
		CarroID:      carroID,
		Integro:      res.Integro(),
		Advertencias: res.Advertencias,
		Ingredientes: make([]dto.IngredienteConsolidado, 0, len(ids)),
	}
	for _, id := range idsOrdenados(ids) {
		cant, deReceta := res.Ingredientes[id]
		ingresado, deManual := manual[id]
		row := dto.IngredienteConsolidado{
			ID:              id,
			Cantidad:        cant,
			IngresadoManual: ingresado,
			Origen:          origen(deReceta, deManual),
		}
		if ing, ok := cat.ingredientes[id]; ok {
			row.Nombre = ing.Nombre
			row.UnidadMedida = ing.UnidadMedida
			row.StockActual = ing.StockActual
		}
		disponible := row.StockActual
		if c.EsExterna() {
			propio := propios[id]
			row.StockUsuario = &propio
			disponible = propio
		}
		row.Faltante = faltante(cant, disponible)
		row.Suficiente = disponible+s.epsilon >= cant
		resp.Ingredientes = append(resp.Ingredientes, row)
	}
	sort.SliceStable(resp.Ingredientes, func(i, j int) bool {
		return resp.Ingredientes[i].Nombre < resp.Ingredientes[j].Nombre
	})
	return resp, nil
}

func origen(deReceta, deManual bool) string {
	switch {
	case deReceta && deManual:
		return dto.OrigenAmbos
	case deManual:
		return dto.OrigenIngresoManual
	default:
		return dto.OrigenReceta
	}
}

func faltante(requerido, disponible float64) float64 {
	if requerido > disponible {
		return requerido - disponible
	}
	return 0
}

// Mixes lists each mix used anywhere in the cart with its total unexpanded
// quantity.
func (s *agregacionService) Mixes(ctx context.Context, usuarioID uuid.UUID, carroID uint) ([]dto.MixConsolidado, error) {
	c, err := obtenerCarroPropio(ctx, s.carros, carroID, usuarioID)
	if err != nil {
		return nil, err
	}
	var res *expansion.Resultado
	var cat *catalogo
	err = runReadTx(ctx, s.carros.DB(), func(tx *gorm.DB) error {
		var err error
		res, cat, err = s.carga.expandirCarro(tx, c)
		return err
	})
	if err != nil {
		return nil, apierror.Persistence("consolidar mixes", err)
	}
	out := make([]dto.MixConsolidado, 0, len(res.Mixes))
	for _, id := range idsOrdenados(res.Mixes) {
		nombre, unidad := cat.nombreIngrediente(id)
		out = append(out, dto.MixConsolidado{ID: id, Nombre: nombre, UnidadMedida: unidad, Cantidad: res.Mixes[id]})
	}
	return out, nil
}

// Articulos lists the sub-articles consumed as base stock, with the
// operator's override when one was saved in the vinculados phase.
func (s *agregacionService) Articulos(ctx context.Context, usuarioID uuid.UUID, carroID uint) ([]dto.ArticuloVinculado, error) {
	c, err := obtenerCarroPropio(ctx, s.carros, carroID, usuarioID)
	if err != nil {
		return nil, err
	}
	var res *expansion.Resultado
	var cat *catalogo
	err = runReadTx(ctx, s.carros.DB(), func(tx *gorm.DB) error {
		var err error
		res, cat, err = s.carga.expandirCarro(tx, c)
		return err
	})
	if err != nil {
		return nil, apierror.Persistence("consolidar articulos", err)
	}
	return vinculados(c, res, cat), nil
}

func vinculados(c *model.Carro, res *expansion.Resultado, cat *catalogo) []dto.ArticuloVinculado {
	ajustes := make(map[string]float64, len(c.Vinculos))
	for _, v := range c.Vinculos {
		ajustes[v.ArticuloNumero] = v.Cantidad
	}
	out := make([]dto.ArticuloVinculado, 0, len(res.Articulos))
	for _, n := range numerosOrdenados(res.Articulos) {
		row := dto.ArticuloVinculado{
			Numero:           n,
			CantidadReceta:   res.Articulos[n],
			CantidadAjustada: res.Articulos[n],
		}
		if a, ok := ajustes[n]; ok {
			row.CantidadAjustada = a
		}
		if art, ok := cat.articulos[n]; ok {
			row.Descripcion = art.Descripcion
			row.CodigoBarras = art.CodigoBarras
			row.StockVentas = art.StockVentas
		}
		out = append(out, row)
	}
	return out
}
