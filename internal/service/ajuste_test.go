package service_test

import (
	"context"
	"testing"

	"planta/internal/apierror"
	"planta/internal/dto"
	"planta/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrar_MixSeAbreEnComponentes(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, map[string]float64{"PAN": 1})
	const delta = 20.0

	res, err := p.ajustes().Registrar(context.Background(), u, id, dto.RegistrarAjusteRequest{
		IngredienteID: idMixAB, Kilos: delta, ArticuloNumero: "BASE",
	})
	require.NoError(t, err)
	require.Len(t, res.Entradas, 2)

	got := map[uint]dto.MovimientoResponse{}
	for _, e := range res.Entradas {
		got[e.IngredienteID] = e
		require.NotNil(t, e.OrigenMixID)
		assert.Equal(t, idMixAB, *e.OrigenMixID)
		require.NotNil(t, e.GrupoID)
		assert.Equal(t, res.GrupoID, *e.GrupoID)
		assert.Equal(t, model.MovimientoIngresoManual, e.Tipo)
		assert.Equal(t, model.DestinoStockGeneral, e.Destino)
	}
	assert.InDelta(t, 0.3*delta, got[idA].Cantidad, 1e-9)
	assert.InDelta(t, 0.7*delta, got[idB].Cantidad, 1e-9)
	assert.InDelta(t, 26.0, p.m.ingredientes[idA].StockActual, 1e-9)
	assert.InDelta(t, 34.0, p.m.ingredientes[idB].StockActual, 1e-9)
	assert.InDelta(t, 20.0, got[idA].StockAnterior, 1e-9)
	assert.NotContains(t, ingredientesConMovimiento(p, id), idMixAB)

	// Each ingredient entry has its sales-stock counterpart.
	ventas, _ := p.movs.ListVentasByCarroTx(nil, id)
	require.Len(t, ventas, 2)
	var kilos float64
	for _, v := range ventas {
		assert.Equal(t, model.VentasConsumoIngreso, v.Tipo)
		assert.Equal(t, "7790003", v.CodigoBarras)
		kilos += v.Kilos
	}
	assert.InDelta(t, -delta, kilos, 1e-9)
	assert.InDelta(t, 20.0, p.m.articulos["BASE"].StockVentas, 1e-9)
	assert.Equal(t, []string{"ajuste_registrado"}, p.notif.eventos)
}

func ingredientesConMovimiento(p *planta, carroID uint) []uint {
	movs, _ := p.movs.ListIngredienteByCarroTx(nil, carroID)
	var out []uint
	for _, m := range movs {
		out = append(out, m.IngredienteID)
	}
	return out
}

func TestRegistrar_PrimitivoUnaEntrada(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoPreparado, nil)

	res, err := p.ajustes().Registrar(context.Background(), u, id, dto.RegistrarAjusteRequest{
		IngredienteID: idHarina, Kilos: -3.5, ArticuloNumero: "BASE", CodigoBarras: "LEIDO",
	})
	require.NoError(t, err)
	require.Len(t, res.Entradas, 1)
	assert.Nil(t, res.Entradas[0].OrigenMixID)
	assert.InDelta(t, 96.5, p.m.ingredientes[idHarina].StockActual, 1e-9)
	require.Len(t, p.m.movVentas, 1)
	assert.Equal(t, "LEIDO", p.m.movVentas[0].CodigoBarras)
	assert.InDelta(t, 3.5, p.m.movVentas[0].Kilos, 1e-9)
}

func TestRegistrar_Validaciones(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	abierto := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, nil)
	confirmado := p.carro(u, model.TipoCarroInterna, model.EstadoConfirmado, nil)
	aj := p.ajustes()

	cases := []struct {
		name  string
		usu   uuid.UUID
		carro uint
		req   dto.RegistrarAjusteRequest
		tipo  apierror.Tipo
	}{
		{"kilos cero", u, abierto, dto.RegistrarAjusteRequest{IngredienteID: idHarina, Kilos: 0, ArticuloNumero: "BASE"}, apierror.Validacion},
		{"ingrediente inexistente", u, abierto, dto.RegistrarAjusteRequest{IngredienteID: 999, Kilos: 1, ArticuloNumero: "BASE"}, apierror.NoEncontrado},
		{"articulo inexistente", u, abierto, dto.RegistrarAjusteRequest{IngredienteID: idHarina, Kilos: 1, ArticuloNumero: "NOPE"}, apierror.NoEncontrado},
		{"carro confirmado", u, confirmado, dto.RegistrarAjusteRequest{IngredienteID: idHarina, Kilos: 1, ArticuloNumero: "BASE"}, apierror.Estado},
		{"otro usuario", uuid.New(), abierto, dto.RegistrarAjusteRequest{IngredienteID: idHarina, Kilos: 1, ArticuloNumero: "BASE"}, apierror.Propiedad},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := aj.Registrar(context.Background(), tc.usu, tc.carro, tc.req)
			require.Error(t, err)
			assert.True(t, apierror.Es(err, tc.tipo), "got %v", err)
		})
	}
	assert.Empty(t, p.m.movIng)
	assert.Equal(t, 100.0, p.m.ingredientes[idHarina].StockActual)
}

func TestRegistrar_MixNoIntegroPideConfirmacion(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, nil)
	delete(p.m.ingredientes, idAgua)

	_, err := p.ajustes().Registrar(context.Background(), u, id, dto.RegistrarAjusteRequest{IngredienteID: idMixMiel, Kilos: 10, ArticuloNumero: "BASE"})
	assert.True(t, apierror.Es(err, apierror.Integridad))
	assert.Empty(t, p.m.movIng)

	res, err := p.ajustes().Registrar(context.Background(), u, id, dto.RegistrarAjusteRequest{
		IngredienteID: idMixMiel, Kilos: 10, ArticuloNumero: "BASE", ConfirmarIntegridad: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Entradas, 1)
	assert.InDelta(t, 8.0, res.Entradas[0].Cantidad, 1e-9)
}

func TestEliminarAjuste_RevierteGrupoCompleto(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, nil)
	aj := p.ajustes()

	mix, err := aj.Registrar(context.Background(), u, id, dto.RegistrarAjusteRequest{IngredienteID: idMixAB, Kilos: 10, ArticuloNumero: "BASE"})
	require.NoError(t, err)
	_, err = aj.Registrar(context.Background(), u, id, dto.RegistrarAjusteRequest{IngredienteID: idHarina, Kilos: 1, ArticuloNumero: "BASE"})
	require.NoError(t, err)

	movID := uuid.MustParse(mix.Entradas[0].ID)
	res, err := aj.Eliminar(context.Background(), u, movID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Revertidos)

	assert.InDelta(t, 20.0, p.m.ingredientes[idA].StockActual, 1e-9)
	assert.InDelta(t, 20.0, p.m.ingredientes[idB].StockActual, 1e-9)
	assert.InDelta(t, 101.0, p.m.ingredientes[idHarina].StockActual, 1e-9)
	assert.InDelta(t, 39.0, p.m.articulos["BASE"].StockVentas, 1e-9)
	assert.Equal(t, []uint{idHarina}, ingredientesConMovimiento(p, id))
	ventas, _ := p.movs.ListVentasByCarroTx(nil, id)
	assert.Len(t, ventas, 1)
}

func TestEliminarAjuste_Errores(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, nil)
	aj := p.ajustes()

	res, err := aj.Registrar(context.Background(), u, id, dto.RegistrarAjusteRequest{IngredienteID: idHarina, Kilos: 1, ArticuloNumero: "BASE"})
	require.NoError(t, err)
	movID := uuid.MustParse(res.Entradas[0].ID)

	_, err = aj.Eliminar(context.Background(), uuid.New(), movID)
	assert.True(t, apierror.Es(err, apierror.Propiedad))

	_, err = aj.Eliminar(context.Background(), u, uuid.New())
	assert.True(t, apierror.Es(err, apierror.NoEncontrado))

	p.m.carros[id].Estado = model.EstadoConfirmado
	_, err = aj.Eliminar(context.Background(), u, movID)
	assert.True(t, apierror.Es(err, apierror.Estado))
	assert.Len(t, p.m.movIng, 1)
}

func TestRegistrar_ConfirmadoDuranteLaOperacion(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoPreparado, nil)
	p.carros.alLeer = func(c *model.Carro) { c.Estado = model.EstadoConfirmado }

	_, err := p.ajustes().Registrar(context.Background(), u, id,
		dto.RegistrarAjusteRequest{IngredienteID: idHarina, Kilos: 1, ArticuloNumero: "BASE"})
	assert.True(t, apierror.Es(err, apierror.Estado))
	assert.Empty(t, p.m.movIng)
	assert.Empty(t, p.m.movVentas)
	assert.Equal(t, 100.0, p.m.ingredientes[idHarina].StockActual)
}

func TestEliminarAjuste_ConfirmadoDuranteLaOperacion(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoPreparado, nil)
	aj := p.ajustes()
	res, err := aj.Registrar(context.Background(), u, id,
		dto.RegistrarAjusteRequest{IngredienteID: idHarina, Kilos: 1, ArticuloNumero: "BASE"})
	require.NoError(t, err)

	p.carros.alLeer = func(c *model.Carro) { c.Estado = model.EstadoConfirmado }
	_, err = aj.Eliminar(context.Background(), u, uuid.MustParse(res.Entradas[0].ID))
	assert.True(t, apierror.Es(err, apierror.Estado))
	assert.Len(t, p.m.movIng, 1)
	assert.Equal(t, 101.0, p.m.ingredientes[idHarina].StockActual)
}

func TestStockUsuario_Listado(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroExterna, model.EstadoEnPreparacion, nil)

	_, err := p.ajustes().Registrar(context.Background(), u, id, dto.RegistrarAjusteRequest{IngredienteID: idMixMiel, Kilos: 5, ArticuloNumero: "BASE"})
	require.NoError(t, err)

	res, err := p.ajustes().StockUsuario(context.Background(), u)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "Miel", res[0].Nombre)
	assert.InDelta(t, 4.0, res[0].Cantidad, 1e-9)
	assert.Equal(t, "Agua", res[1].Nombre)
	assert.InDelta(t, 1.0, res[1].Cantidad, 1e-9)
}
