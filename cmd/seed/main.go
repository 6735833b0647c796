// cmd/seed loads demo data: a supervisor and an operario, plain
// ingredients, a mix, articles and their recipes.
// Uso: go run ./cmd/seed
package main

import (
	"context"

	"planta/internal/config"
	"planta/internal/dto"
	"planta/internal/infra"
	"planta/internal/model"
	"planta/internal/repository"
	"planta/internal/service"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm/clause"
)

func ptr[T any](v T) *T { return &v }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL, true)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	ctx := context.Background()

	usuarios := repository.NewUsuarioRepository(db)
	for _, u := range []*model.Usuario{
		{Username: "supervisor", Nombre: "Supervisor Demo", Email: ptr("supervisor@planta.local"), Rol: "supervisor", Activo: true},
		{Username: "operario", Nombre: "Operario Demo", Rol: "operario", Activo: true},
	} {
		if err := usuarios.Upsert(ctx, u); err != nil {
			log.Fatal().Err(err).Str("username", u.Username).Msg("usuario")
		}
		log.Info().Str("usuario_id", u.ID.String()).Str("rol", u.Rol).Msg("usuario demo")
	}

	var n int64
	if err := db.Model(&model.Ingrediente{}).Count(&n).Error; err != nil {
		log.Fatal().Err(err).Msg("count ingredientes")
	}
	if n > 0 {
		log.Info().Int64("ingredientes", n).Msg("catalogo ya cargado, nada que hacer")
		return
	}

	ingredienteRepo := repository.NewIngredienteRepository(db)
	articuloRepo := repository.NewArticuloRepository(db)
	recetaRepo := repository.NewRecetaRepository(db)
	ingredientes := service.NewIngredienteService(ingredienteRepo, articuloRepo, recetaRepo)
	recetas := service.NewRecetaService(recetaRepo, articuloRepo, ingredienteRepo)

	crear := func(req dto.CrearIngredienteRequest) uint {
		resp, err := ingredientes.Crear(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Str("nombre", req.Nombre).Msg("crear ingrediente")
		}
		return resp.ID
	}
	harina := crear(dto.CrearIngredienteRequest{Nombre: "Harina 000", UnidadMedida: "kg", Categoria: "secos", StockActual: 500})
	agua := crear(dto.CrearIngredienteRequest{Nombre: "Agua", UnidadMedida: "kg", Categoria: "liquidos", StockActual: 1000})
	miel := crear(dto.CrearIngredienteRequest{Nombre: "Miel", UnidadMedida: "kg", Categoria: "endulzantes", StockActual: 80})
	sal := crear(dto.CrearIngredienteRequest{Nombre: "Sal fina", UnidadMedida: "kg", Categoria: "secos", StockActual: 50})
	jarabe := crear(dto.CrearIngredienteRequest{Nombre: "Jarabe de miel", UnidadMedida: "kg", Categoria: "mixes", RecetaBaseKg: ptr(10.0)})

	for _, c := range []dto.ComponenteRequest{{IngredienteID: miel, Cantidad: 3}, {IngredienteID: agua, Cantidad: 7}} {
		if _, err := ingredientes.AgregarComponente(ctx, jarabe, c); err != nil {
			log.Fatal().Err(err).Msg("composicion")
		}
	}

	articulos := []model.Articulo{
		{Numero: "BASE", Descripcion: "Base de masa", CodigoBarras: "7790000000017", StockVentas: 40},
		{Numero: "PAN", Descripcion: "Pan de miel 1kg", CodigoBarras: "7790000000024"},
		{Numero: "COMBO", Descripcion: "Combo panadero", CodigoBarras: "7790000000031"},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&articulos).Error; err != nil {
		log.Fatal().Err(err).Msg("articulos")
	}

	guardar := func(numero string, req dto.GuardarRecetaRequest) {
		if _, err := recetas.Guardar(ctx, numero, req); err != nil {
			log.Fatal().Err(err).Str("articulo", numero).Msg("receta")
		}
	}
	guardar("PAN", dto.GuardarRecetaRequest{
		Descripcion: "Pan de miel",
		Ingredientes: []dto.RecetaIngredienteRequest{
			{IngredienteID: harina, Cantidad: 0.6},
			{IngredienteID: jarabe, Cantidad: 0.35},
			{IngredienteID: sal, Cantidad: 0.05},
		},
	})
	guardar("COMBO", dto.GuardarRecetaRequest{
		Descripcion:  "Combo panadero",
		Ingredientes: []dto.RecetaIngredienteRequest{{IngredienteID: harina, Cantidad: 1}},
		Articulos: []dto.RecetaArticuloRequest{
			{ArticuloNumero: "PAN", Cantidad: 2},
			{ArticuloNumero: "BASE", Cantidad: 1},
		},
	})

	log.Info().Msg("catalogo demo cargado")
}
