package service_test

import (
	"context"
	"testing"

	"planta/internal/dto"
	"planta/internal/expansion"
	"planta/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func porID(rows []dto.IngredienteConsolidado) map[uint]dto.IngredienteConsolidado {
	out := make(map[uint]dto.IngredienteConsolidado, len(rows))
	for _, r := range rows {
		out[r.ID] = r
	}
	return out
}

func TestIngredientes_TortaPorTres(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, map[string]float64{"TORTA-A": 3})

	res, err := p.agregacion().Ingredientes(context.Background(), u, id)
	require.NoError(t, err)
	assert.True(t, res.Integro)
	require.Len(t, res.Ingredientes, 1)
	h := res.Ingredientes[0]
	assert.Equal(t, "Harina", h.Nombre)
	assert.InDelta(t, 6.0, h.Cantidad, 1e-9)
	assert.Equal(t, 100.0, h.StockActual)
	assert.True(t, h.Suficiente)
	assert.Zero(t, h.Faltante)
	assert.Equal(t, dto.OrigenReceta, h.Origen)
}

func TestIngredientes_PanExpandeMix(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, map[string]float64{"PAN": 1})

	res, err := p.agregacion().Ingredientes(context.Background(), u, id)
	require.NoError(t, err)
	rows := porID(res.Ingredientes)
	require.Len(t, rows, 2)
	assert.InDelta(t, 4.0, rows[idMiel].Cantidad, 1e-9)
	assert.InDelta(t, 1.0, rows[idAgua].Cantidad, 1e-9)
	assert.NotContains(t, rows, idMixMiel)
}

func TestIngredientes_FaltanteYEpsilon(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, map[string]float64{"TORTA-A": 3})

	p.m.ingredientes[idHarina].StockActual = 5
	res, err := p.agregacion().Ingredientes(context.Background(), u, id)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Ingredientes[0].Faltante, 1e-9)
	assert.False(t, res.Ingredientes[0].Suficiente)

	p.m.ingredientes[idHarina].StockActual = 5.995
	res, err = p.agregacion().Ingredientes(context.Background(), u, id)
	require.NoError(t, err)
	assert.True(t, res.Ingredientes[0].Suficiente)
}

func TestIngredientes_ConsolidacionAditiva(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	lineas := map[string]float64{"TORTA-A": 2, "PAN": 3, "COMBO": 1.5}
	total := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, lineas)

	esperado := make(map[uint]float64)
	for n, q := range lineas {
		solo := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, map[string]float64{n: q})
		res, err := p.agregacion().Ingredientes(context.Background(), u, solo)
		require.NoError(t, err)
		for _, r := range res.Ingredientes {
			esperado[r.ID] += r.Cantidad
		}
	}

	res, err := p.agregacion().Ingredientes(context.Background(), u, total)
	require.NoError(t, err)
	rows := porID(res.Ingredientes)
	require.Len(t, rows, len(esperado))
	for id, q := range esperado {
		assert.InDelta(t, q, rows[id].Cantidad, 1e-9, "ingrediente %d", id)
	}
	// COMBO 1.5 consumes BASE 3, which needs 3 of Harina on top of TORTA-A's 4.
	assert.InDelta(t, 7.0, rows[idHarina].Cantidad, 1e-9)
}

func TestIngredientes_OrigenIngresoManual(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, map[string]float64{"TORTA-A": 1})

	_, err := p.ajustes().Registrar(context.Background(), u, id, dto.RegistrarAjusteRequest{IngredienteID: idHarina, Kilos: 1, ArticuloNumero: "BASE"})
	require.NoError(t, err)
	_, err = p.ajustes().Registrar(context.Background(), u, id, dto.RegistrarAjusteRequest{IngredienteID: idA, Kilos: 2, ArticuloNumero: "BASE"})
	require.NoError(t, err)

	res, err := p.agregacion().Ingredientes(context.Background(), u, id)
	require.NoError(t, err)
	rows := porID(res.Ingredientes)
	assert.Equal(t, dto.OrigenAmbos, rows[idHarina].Origen)
	assert.InDelta(t, 1.0, rows[idHarina].IngresadoManual, 1e-9)
	assert.Equal(t, dto.OrigenIngresoManual, rows[idA].Origen)
	assert.Equal(t, "Componente A", rows[idA].Nombre)
	assert.Zero(t, rows[idA].Cantidad)
}

func TestIngredientes_ComponenteEliminadoDegrada(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	require.NoError(t, p.ingredientes().Eliminar(context.Background(), idAgua))
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, map[string]float64{"PAN": 1})

	res, err := p.agregacion().Ingredientes(context.Background(), u, id)
	require.NoError(t, err)
	assert.False(t, res.Integro)
	require.Len(t, res.Advertencias, 1)
	assert.Equal(t, expansion.AdvertenciaReferenciaFaltante, res.Advertencias[0].Tipo)

	rows := porID(res.Ingredientes)
	assert.InDelta(t, 4.0, rows[idMiel].Cantidad, 1e-9)
	assert.NotContains(t, rows, idAgua)
}

func TestIngredientes_ExternoUsaStockDeUsuario(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroExterna, model.EstadoEnPreparacion, map[string]float64{"COMBO": 10})
	p.m.stockUsuario[u] = map[uint]float64{idMiel: 9}

	res, err := p.agregacion().Ingredientes(context.Background(), u, id)
	require.NoError(t, err)
	rows := porID(res.Ingredientes)
	// External carts take BASE from sales stock, so no Harina is required.
	assert.NotContains(t, rows, idHarina)
	require.NotNil(t, rows[idMiel].StockUsuario)
	assert.InDelta(t, 8.0, rows[idMiel].Cantidad, 1e-9)
	assert.True(t, rows[idMiel].Suficiente)
	assert.False(t, rows[idAgua].Suficiente)
	assert.InDelta(t, 2.0, rows[idAgua].Faltante, 1e-9)
}

func TestIngredientes_RecetaDegradadaSeInforma(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, map[string]float64{"PAN": 1, "TORTA-A": 1})
	delete(p.m.ingredientes, idAgua)

	res, err := p.agregacion().Ingredientes(context.Background(), u, id)
	require.NoError(t, err)
	assert.False(t, res.Integro)
	require.NotEmpty(t, res.Advertencias)
	rows := porID(res.Ingredientes)
	assert.InDelta(t, 4.0, rows[idMiel].Cantidad, 1e-9)
	assert.InDelta(t, 2.0, rows[idHarina].Cantidad, 1e-9)
}

func TestMixes_CantidadSinExpandir(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroInterna, model.EstadoEnPreparacion, map[string]float64{"PAN": 2, "COMBO": 1})

	res, err := p.agregacion().Mixes(context.Background(), u, id)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "MixMiel", res[0].Nombre)
	assert.InDelta(t, 11.0, res[0].Cantidad, 1e-9)
}

func TestArticulos_VinculadosConAjuste(t *testing.T) {
	p := nuevaPlanta()
	u := uuid.New()
	id := p.carro(u, model.TipoCarroExterna, model.EstadoPreparado, map[string]float64{"COMBO": 3})

	res, err := p.agregacion().Articulos(context.Background(), u, id)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "BASE", res[0].Numero)
	assert.InDelta(t, 6.0, res[0].CantidadReceta, 1e-9)
	assert.InDelta(t, 6.0, res[0].CantidadAjustada, 1e-9)
	assert.Equal(t, 40.0, res[0].StockVentas)

	require.NoError(t, p.carrosSvc().ActualizarVinculado(context.Background(), u, id, "BASE", 4.5))
	res, err = p.agregacion().Articulos(context.Background(), u, id)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, res[0].CantidadReceta, 1e-9)
	assert.InDelta(t, 4.5, res[0].CantidadAjustada, 1e-9)
}
