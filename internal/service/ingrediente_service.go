package service

import (
	"context"
	"sort"
	"strings"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/expansion"
	"planta/internal/model"
	"planta/internal/repository"
	"planta/internal/texto"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// IngredienteService manages the ingredient catalog and mix compositions.
type IngredienteService interface {
	Crear(ctx context.Context, req dto.CrearIngredienteRequest) (*dto.IngredienteResponse, error)
	ObtenerPorID(ctx context.Context, id uint) (*dto.IngredienteResponse, error)
	Listar(ctx context.Context, filter dto.IngredienteFilter) ([]dto.IngredienteResponse, error)
	Actualizar(ctx context.Context, id uint, req dto.ActualizarIngredienteRequest) (*dto.IngredienteResponse, error)
	Eliminar(ctx context.Context, id uint) error

	ObtenerComposicion(ctx context.Context, mixID uint) (*dto.MixComposicionResponse, error)
	AgregarComponente(ctx context.Context, mixID uint, req dto.ComponenteRequest) (*dto.MixComposicionResponse, error)
	ActualizarComponente(ctx context.Context, mixID, ingredienteID uint, cantidad float64) (*dto.MixComposicionResponse, error)
	EliminarComponente(ctx context.Context, mixID, ingredienteID uint) (*dto.MixComposicionResponse, error)
	EliminarComposicion(ctx context.Context, mixID uint) error
	ActualizarRecetaBase(ctx context.Context, mixID uint, kg float64) (*dto.MixComposicionResponse, error)

	BuscarArticulos(ctx context.Context, filter dto.ArticuloFilter) ([]dto.ArticuloResponse, error)
}

type ingredienteService struct {
	repo      repository.IngredienteRepository
	articulos repository.ArticuloRepository
	recetas   repository.RecetaRepository
	carga     *cargador
}

func NewIngredienteService(
	repo repository.IngredienteRepository,
	articulos repository.ArticuloRepository,
	recetas repository.RecetaRepository,
) IngredienteService {
	return &ingredienteService{
		repo:      repo,
		articulos: articulos,
		recetas:   recetas,
		carga:     &cargador{ingredientes: repo, articulos: articulos, recetas: recetas},
	}
}

func ingredienteToResponse(i *model.Ingrediente) *dto.IngredienteResponse {
	return &dto.IngredienteResponse{
		ID:           i.ID,
		Nombre:       i.Nombre,
		UnidadMedida: i.UnidadMedida,
		Categoria:    i.Categoria,
		Descripcion:  i.Descripcion,
		StockActual:  i.StockActual,
		PadreID:      i.PadreID,
		EsMix:        i.EsMix(),
		RecetaBaseKg: i.RecetaBaseKg,
	}
}

// ── CRUD ─────────────────────────────────────────────────────────────────────

func (s *ingredienteService) Crear(ctx context.Context, req dto.CrearIngredienteRequest) (*dto.IngredienteResponse, error) {
	if strings.TrimSpace(req.Nombre) == "" {
		return nil, apierror.Invalid("El nombre es obligatorio")
	}
	if req.StockActual < 0 || !cantidadValida(req.StockActual) {
		return nil, apierror.Invalid("El stock inicial debe ser un numero no negativo")
	}
	ing := &model.Ingrediente{
		Nombre:       strings.TrimSpace(req.Nombre),
		UnidadMedida: req.UnidadMedida,
		Categoria:    req.Categoria,
		Descripcion:  req.Descripcion,
		StockActual:  req.StockActual,
		RecetaBaseKg: req.RecetaBaseKg,
	}
	if err := s.repo.Create(ctx, ing); err != nil {
		return nil, apierror.Persistence("crear el ingrediente", err)
	}
	log.Info().Uint("ingrediente_id", ing.ID).Str("nombre", ing.Nombre).Msg("ingrediente creado")
	return ingredienteToResponse(ing), nil
}

func (s *ingredienteService) ObtenerPorID(ctx context.Context, id uint) (*dto.IngredienteResponse, error) {
	ing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "obtener el ingrediente", "Ingrediente %d no encontrado", id)
	}
	return ingredienteToResponse(ing), nil
}

// Listar applies the name query in memory: matching is accent-insensitive
// with every token required.
func (s *ingredienteService) Listar(ctx context.Context, filter dto.IngredienteFilter) ([]dto.IngredienteResponse, error) {
	ings, err := s.repo.List(ctx, repository.IngredienteFilter{Categoria: filter.Categoria})
	if err != nil {
		return nil, apierror.Persistence("listar ingredientes", err)
	}
	out := make([]dto.IngredienteResponse, 0, len(ings))
	for i := range ings {
		if filter.SoloMixes && !ings[i].EsMix() {
			continue
		}
		if !texto.Coincide(ings[i].Nombre, filter.Q) {
			continue
		}
		out = append(out, *ingredienteToResponse(&ings[i]))
	}
	return out, nil
}

func (s *ingredienteService) Actualizar(ctx context.Context, id uint, req dto.ActualizarIngredienteRequest) (*dto.IngredienteResponse, error) {
	ing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, traducir(err, "obtener el ingrediente", "Ingrediente %d no encontrado", id)
	}
	ing.Nombre = strings.TrimSpace(req.Nombre)
	ing.UnidadMedida = req.UnidadMedida
	ing.Categoria = req.Categoria
	ing.Descripcion = req.Descripcion
	if err := s.repo.Update(ctx, ing); err != nil {
		return nil, apierror.Persistence("actualizar el ingrediente", err)
	}
	return ingredienteToResponse(ing), nil
}

// Eliminar keeps recipe rows that reference the ingredient; those recipes
// become non-integral.
func (s *ingredienteService) Eliminar(ctx context.Context, id uint) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return traducir(err, "eliminar el ingrediente", "Ingrediente %d no encontrado", id)
	}
	log.Info().Uint("ingrediente_id", id).Msg("ingrediente eliminado")
	return nil
}

// ── Composicion ──────────────────────────────────────────────────────────────

func (s *ingredienteService) ObtenerComposicion(ctx context.Context, mixID uint) (*dto.MixComposicionResponse, error) {
	mix, err := s.repo.FindByID(ctx, mixID)
	if err != nil {
		return nil, traducir(err, "obtener la composicion", "Ingrediente %d no encontrado", mixID)
	}
	if !mix.EsMix() {
		return nil, apierror.NotFound("El ingrediente %d no tiene composicion", mixID)
	}
	return composicionToResponse(mix), nil
}

func composicionToResponse(mix *model.Ingrediente) *dto.MixComposicionResponse {
	resp := &dto.MixComposicionResponse{
		Mix:         dto.MixInfo{ID: mix.ID, Nombre: mix.Nombre, RecetaBaseKg: mix.RecetaBaseKg},
		Composicion: make([]dto.ComponenteResponse, 0, len(mix.Composicion)),
	}
	for _, c := range mix.Composicion {
		row := dto.ComponenteResponse{IngredienteID: c.IngredienteID, Cantidad: c.Cantidad}
		if c.Ingrediente != nil {
			row.NombreIngrediente = c.Ingrediente.Nombre
			row.UnidadMedida = c.Ingrediente.UnidadMedida
		}
		resp.Composicion = append(resp.Composicion, row)
	}
	sort.Slice(resp.Composicion, func(i, j int) bool {
		return resp.Composicion[i].NombreIngrediente < resp.Composicion[j].NombreIngrediente
	})
	return resp
}

func (s *ingredienteService) recargarComposicion(ctx context.Context, mixID uint) (*dto.MixComposicionResponse, error) {
	mix, err := s.repo.FindByID(ctx, mixID)
	if err != nil {
		return nil, traducir(err, "obtener la composicion", "Ingrediente %d no encontrado", mixID)
	}
	return composicionToResponse(mix), nil
}

// AgregarComponente adds one composition row. A plain component is parented
// to the mix; a component that is itself a mix root stays a nested mix.
func (s *ingredienteService) AgregarComponente(ctx context.Context, mixID uint, req dto.ComponenteRequest) (*dto.MixComposicionResponse, error) {
	if req.Cantidad <= 0 || !cantidadValida(req.Cantidad) {
		return nil, apierror.Invalid("La cantidad debe ser mayor a cero")
	}
	if req.IngredienteID == mixID {
		return nil, apierror.Invalid("Un mix no puede contenerse a si mismo")
	}
	mix, err := s.repo.FindByID(ctx, mixID)
	if err != nil {
		return nil, traducir(err, "obtener el mix", "Ingrediente %d no encontrado", mixID)
	}
	if mix.PadreID != nil {
		return nil, apierror.Invalid("El ingrediente %s pertenece a otro mix y no puede tener composicion", mix.Nombre)
	}
	for _, c := range mix.Composicion {
		if c.IngredienteID == req.IngredienteID {
			return nil, apierror.Invalid("El ingrediente %d ya forma parte del mix", req.IngredienteID)
		}
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cat, err := s.carga.cargar(tx, nil, []uint{req.IngredienteID})
		if err != nil {
			return err
		}
		comp, ok := cat.ingredientes[req.IngredienteID]
		if !ok {
			return apierror.NotFound("Ingrediente %d no encontrado", req.IngredienteID)
		}
		if expansion.ContieneIngrediente(cat.grafo, req.IngredienteID, mixID) {
			return apierror.Invalid("Agregar %s al mix %s crearia un ciclo", comp.Nombre, mix.Nombre)
		}
		fila := &model.MixComposicion{MixID: mixID, IngredienteID: req.IngredienteID, Cantidad: req.Cantidad}
		if err := s.repo.AddComponenteTx(tx, fila); err != nil {
			return err
		}
		if !comp.EsMix() {
			return s.repo.SetPadreTx(tx, comp.ID, &mixID)
		}
		return nil
	})
	if err != nil {
		return nil, traducir(err, "agregar el componente", "Ingrediente %d no encontrado", req.IngredienteID)
	}
	log.Info().Uint("mix_id", mixID).Uint("ingrediente_id", req.IngredienteID).Float64("cantidad", req.Cantidad).Msg("componente agregado")
	return s.recargarComposicion(ctx, mixID)
}

func (s *ingredienteService) ActualizarComponente(ctx context.Context, mixID, ingredienteID uint, cantidad float64) (*dto.MixComposicionResponse, error) {
	if cantidad <= 0 || !cantidadValida(cantidad) {
		return nil, apierror.Invalid("La cantidad debe ser mayor a cero")
	}
	if err := s.repo.UpdateComponente(ctx, mixID, ingredienteID, cantidad); err != nil {
		return nil, traducir(err, "actualizar el componente", "El ingrediente %d no forma parte del mix %d", ingredienteID, mixID)
	}
	return s.recargarComposicion(ctx, mixID)
}

func (s *ingredienteService) EliminarComponente(ctx context.Context, mixID, ingredienteID uint) (*dto.MixComposicionResponse, error) {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteComponenteTx(tx, mixID, ingredienteID); err != nil {
			return err
		}
		cat, err := s.carga.cargar(tx, nil, []uint{ingredienteID})
		if err != nil {
			return err
		}
		if comp, ok := cat.ingredientes[ingredienteID]; ok && comp.PadreID != nil && *comp.PadreID == mixID {
			return s.repo.SetPadreTx(tx, ingredienteID, nil)
		}
		return nil
	})
	if err != nil {
		return nil, traducir(err, "eliminar el componente", "El ingrediente %d no forma parte del mix %d", ingredienteID, mixID)
	}
	return s.recargarComposicion(ctx, mixID)
}

// EliminarComposicion reverts the mix to a plain ingredient.
func (s *ingredienteService) EliminarComposicion(ctx context.Context, mixID uint) error {
	if _, err := s.repo.FindByID(ctx, mixID); err != nil {
		return traducir(err, "obtener el mix", "Ingrediente %d no encontrado", mixID)
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.DeleteComposicionTx(tx, mixID); err != nil {
			return err
		}
		if err := s.repo.ClearPadreTx(tx, mixID); err != nil {
			return err
		}
		return s.repo.UpdateRecetaBaseTx(tx, mixID, nil)
	})
	if err != nil {
		return apierror.Persistence("eliminar la composicion", err)
	}
	log.Info().Uint("mix_id", mixID).Msg("composicion eliminada")
	return nil
}

func (s *ingredienteService) ActualizarRecetaBase(ctx context.Context, mixID uint, kg float64) (*dto.MixComposicionResponse, error) {
	if kg <= 0 || !cantidadValida(kg) {
		return nil, apierror.Invalid("La receta base debe ser mayor a cero")
	}
	if _, err := s.repo.FindByID(ctx, mixID); err != nil {
		return nil, traducir(err, "obtener el mix", "Ingrediente %d no encontrado", mixID)
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateRecetaBaseTx(tx, mixID, &kg)
	})
	if err != nil {
		return nil, apierror.Persistence("actualizar la receta base", err)
	}
	return s.recargarComposicion(ctx, mixID)
}

// ── Articulos ────────────────────────────────────────────────────────────────

func (s *ingredienteService) BuscarArticulos(ctx context.Context, filter dto.ArticuloFilter) ([]dto.ArticuloResponse, error) {
	arts, err := s.articulos.List(ctx)
	if err != nil {
		return nil, apierror.Persistence("listar articulos", err)
	}
	out := make([]dto.ArticuloResponse, 0, len(arts))
	numeros := make([]string, 0, len(arts))
	for _, a := range arts {
		if filter.Q != "" && !texto.Coincide(a.Descripcion+" "+a.Numero, filter.Q) && a.CodigoBarras != filter.Q {
			continue
		}
		out = append(out, dto.ArticuloResponse{
			Numero:       a.Numero,
			Descripcion:  a.Descripcion,
			CodigoBarras: a.CodigoBarras,
			StockVentas:  a.StockVentas,
		})
		numeros = append(numeros, a.Numero)
	}
	var db *gorm.DB
	if s.recetas.DB() != nil {
		db = s.recetas.DB().WithContext(ctx)
	}
	recs, err := s.recetas.FindByArticulosTx(db, numeros)
	if err != nil {
		return nil, apierror.Persistence("listar recetas", err)
	}
	con := make(map[string]bool, len(recs))
	for _, r := range recs {
		con[r.ArticuloNumero] = true
	}
	for i := range out {
		out[i].TieneReceta = con[out[i].Numero]
	}
	return out, nil
}
