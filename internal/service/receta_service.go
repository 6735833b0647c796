package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/expansion"
	"planta/internal/model"
	"planta/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// RecetaService manages article recipes and exposes integrity checks and
// expansion previews over them.
type RecetaService interface {
	// Obtener returns (nil, nil) when the article exists but has no recipe.
	Obtener(ctx context.Context, numero string) (*dto.RecetaResponse, error)
	Guardar(ctx context.Context, numero string, req dto.GuardarRecetaRequest) (*dto.RecetaResponse, error)
	Eliminar(ctx context.Context, numero string) error
	Integridad(ctx context.Context, numero string) (*dto.IntegridadResponse, error)
	Expandir(ctx context.Context, numero string, multiplicador float64) (*dto.ExpansionResponse, error)
}

type recetaService struct {
	repo      repository.RecetaRepository
	articulos repository.ArticuloRepository
	carga     *cargador
}

func NewRecetaService(
	repo repository.RecetaRepository,
	articulos repository.ArticuloRepository,
	ingredientes repository.IngredienteRepository,
) RecetaService {
	return &recetaService{
		repo:      repo,
		articulos: articulos,
		carga:     &cargador{ingredientes: ingredientes, articulos: articulos, recetas: repo},
	}
}

func (s *recetaService) Obtener(ctx context.Context, numero string) (*dto.RecetaResponse, error) {
	if _, err := s.articulos.FindByNumero(ctx, numero); err != nil {
		return nil, traducir(err, "obtener el articulo", "Articulo %s no encontrado", numero)
	}
	rec, err := s.repo.FindByArticulo(ctx, numero)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apierror.Persistence("obtener la receta", err)
	}
	integ, err := s.Integridad(ctx, numero)
	if err != nil {
		return nil, err
	}
	return recetaToResponse(rec, integ.Integra), nil
}

func recetaToResponse(r *model.Receta, integra bool) *dto.RecetaResponse {
	resp := &dto.RecetaResponse{
		ArticuloNumero: r.ArticuloNumero,
		Descripcion:    r.Descripcion,
		Ingredientes:   make([]dto.RecetaIngredienteResponse, 0, len(r.Ingredientes)),
		Articulos:      make([]dto.RecetaArticuloResponse, 0, len(r.Articulos)),
		Integra:        integra,
	}
	for _, ri := range r.Ingredientes {
		resp.Ingredientes = append(resp.Ingredientes, dto.RecetaIngredienteResponse{
			IngredienteID:     ri.IngredienteID,
			NombreIngrediente: ri.NombreIngrediente,
			UnidadMedida:      ri.UnidadMedida,
			Cantidad:          ri.Cantidad,
		})
	}
	for _, ra := range r.Articulos {
		resp.Articulos = append(resp.Articulos, dto.RecetaArticuloResponse{
			ArticuloNumero: ra.ArticuloNumero,
			Cantidad:       ra.Cantidad,
		})
	}
	return resp
}

// Guardar replaces the whole recipe. Every reference must exist at save
// time and no sub-article may reach back to the article being saved.
func (s *recetaService) Guardar(ctx context.Context, numero string, req dto.GuardarRecetaRequest) (*dto.RecetaResponse, error) {
	if _, err := s.articulos.FindByNumero(ctx, numero); err != nil {
		return nil, traducir(err, "obtener el articulo", "Articulo %s no encontrado", numero)
	}
	if len(req.Ingredientes) == 0 && len(req.Articulos) == 0 {
		return nil, apierror.Invalid("La receta debe tener al menos un ingrediente o articulo")
	}

	ids := make([]uint, 0, len(req.Ingredientes))
	vistosIng := make(map[uint]bool)
	for _, ri := range req.Ingredientes {
		if ri.Cantidad <= 0 || !cantidadValida(ri.Cantidad) {
			return nil, apierror.Invalid("La cantidad del ingrediente %d debe ser mayor a cero", ri.IngredienteID)
		}
		if vistosIng[ri.IngredienteID] {
			return nil, apierror.Invalid("El ingrediente %d esta repetido en la receta", ri.IngredienteID)
		}
		vistosIng[ri.IngredienteID] = true
		ids = append(ids, ri.IngredienteID)
	}
	subs := make([]string, 0, len(req.Articulos))
	vistosArt := make(map[string]bool)
	for _, ra := range req.Articulos {
		n := strings.TrimSpace(ra.ArticuloNumero)
		if ra.Cantidad <= 0 || !cantidadValida(ra.Cantidad) {
			return nil, apierror.Invalid("La cantidad del articulo %s debe ser mayor a cero", n)
		}
		if n == numero {
			return nil, apierror.Invalid("Un articulo no puede ser parte de su propia receta")
		}
		if vistosArt[n] {
			return nil, apierror.Invalid("El articulo %s esta repetido en la receta", n)
		}
		vistosArt[n] = true
		subs = append(subs, n)
	}

	var guardada *model.Receta
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		cat, err := s.carga.cargar(tx, subs, ids)
		if err != nil {
			return err
		}
		rec := &model.Receta{ArticuloNumero: numero, Descripcion: req.Descripcion}
		for _, ri := range req.Ingredientes {
			ing, ok := cat.ingredientes[ri.IngredienteID]
			if !ok {
				return apierror.NotFound("Ingrediente %d no encontrado", ri.IngredienteID)
			}
			rec.Ingredientes = append(rec.Ingredientes, model.RecetaIngrediente{
				IngredienteID:     ing.ID,
				NombreIngrediente: ing.Nombre,
				UnidadMedida:      ing.UnidadMedida,
				Cantidad:          ri.Cantidad,
			})
		}
		for _, ra := range req.Articulos {
			n := strings.TrimSpace(ra.ArticuloNumero)
			if !cat.grafo.TieneArticulo(n) {
				return apierror.NotFound("Articulo %s no encontrado", n)
			}
			if expansion.AlcanzaArticulo(cat.grafo, n, numero) {
				return apierror.Invalid("El articulo %s ya contiene a %s y crearia un ciclo", n, numero)
			}
			rec.Articulos = append(rec.Articulos, model.RecetaArticulo{ArticuloNumero: n, Cantidad: ra.Cantidad})
		}
		if err := s.repo.ReplaceTx(tx, rec); err != nil {
			return err
		}
		guardada = rec
		return nil
	})
	if err != nil {
		return nil, traducir(err, "guardar la receta", "Articulo %s no encontrado", numero)
	}
	log.Info().Str("articulo", numero).
		Int("ingredientes", len(guardada.Ingredientes)).
		Int("articulos", len(guardada.Articulos)).
		Msg("receta guardada")
	return recetaToResponse(guardada, true), nil
}

func (s *recetaService) Eliminar(ctx context.Context, numero string) error {
	if _, err := s.repo.FindByArticulo(ctx, numero); err != nil {
		return traducir(err, "obtener la receta", "El articulo %s no tiene receta", numero)
	}
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DeleteTx(tx, numero)
	})
	if err != nil {
		return apierror.Persistence("eliminar la receta", err)
	}
	log.Info().Str("articulo", numero).Msg("receta eliminada")
	return nil
}

// Integridad checks the recipe's direct references plus the components of
// each mix it uses. Nested mixes below that level are not inspected.
func (s *recetaService) Integridad(ctx context.Context, numero string) (*dto.IntegridadResponse, error) {
	resp := &dto.IntegridadResponse{ArticuloNumero: numero, Integra: true, Faltantes: []string{}}
	rec, err := s.repo.FindByArticulo(ctx, numero)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return resp, nil
	}
	if err != nil {
		return nil, apierror.Persistence("obtener la receta", err)
	}

	ids := make([]uint, 0, len(rec.Ingredientes))
	for _, ri := range rec.Ingredientes {
		ids = append(ids, ri.IngredienteID)
	}
	subs := make([]string, 0, len(rec.Articulos))
	for _, ra := range rec.Articulos {
		subs = append(subs, ra.ArticuloNumero)
	}

	err = runReadTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ings, err := s.carga.ingredientes.FindByIDsTx(tx, ids)
		if err != nil {
			return err
		}
		porID := make(map[uint]*model.Ingrediente, len(ings))
		var comps []uint
		for i := range ings {
			porID[ings[i].ID] = &ings[i]
			for _, c := range ings[i].Composicion {
				comps = append(comps, c.IngredienteID)
			}
		}
		for _, ri := range rec.Ingredientes {
			if _, ok := porID[ri.IngredienteID]; !ok {
				resp.Faltantes = append(resp.Faltantes, "ingrediente:"+ri.NombreIngrediente)
			}
		}
		if len(comps) > 0 {
			existentes, err := s.carga.ingredientes.FindByIDsTx(tx, comps)
			if err != nil {
				return err
			}
			hay := make(map[uint]bool, len(existentes))
			for _, e := range existentes {
				hay[e.ID] = true
			}
			for _, ing := range ings {
				for _, c := range ing.Composicion {
					if !hay[c.IngredienteID] {
						resp.Faltantes = append(resp.Faltantes, "componente:"+ing.Nombre)
					}
				}
			}
		}
		arts, err := s.articulos.FindByNumerosTx(tx, subs)
		if err != nil {
			return err
		}
		hayArt := make(map[string]bool, len(arts))
		for _, a := range arts {
			hayArt[a.Numero] = true
		}
		for _, n := range subs {
			if !hayArt[n] {
				resp.Faltantes = append(resp.Faltantes, "articulo:"+n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, apierror.Persistence("verificar la receta", err)
	}
	sort.Strings(resp.Faltantes)
	resp.Integra = len(resp.Faltantes) == 0
	return resp, nil
}

func (s *recetaService) Expandir(ctx context.Context, numero string, multiplicador float64) (*dto.ExpansionResponse, error) {
	if multiplicador <= 0 || !cantidadValida(multiplicador) {
		return nil, apierror.Invalid("El multiplicador debe ser mayor a cero")
	}
	var res *expansion.Resultado
	var cat *catalogo
	err := runReadTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		cat, err = s.carga.cargar(tx, []string{numero}, nil)
		if err != nil {
			return err
		}
		res = expansion.Expandir(cat.grafo, numero, multiplicador)
		return nil
	})
	if err != nil {
		return nil, apierror.Persistence("expandir la receta", err)
	}
	resp := &dto.ExpansionResponse{
		ArticuloNumero: numero,
		Multiplicador:  multiplicador,
		Ingredientes:   make([]dto.IngredienteCantidad, 0, len(res.Ingredientes)),
		Advertencias:   advertenciasUnicas(res.Advertencias),
	}
	for _, id := range idsOrdenados(res.Ingredientes) {
		nombre, unidad := cat.nombreIngrediente(id)
		resp.Ingredientes = append(resp.Ingredientes, dto.IngredienteCantidad{
			IngredienteID: id,
			Nombre:        nombre,
			UnidadMedida:  unidad,
			Cantidad:      res.Ingredientes[id],
		})
	}
	return resp, nil
}
