package service_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"planta/internal/apierror"
	"planta/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fuenteFija struct {
	pestanas map[string][][]string
	err      error
}

func (f *fuenteFija) Filas(_ context.Context, _ string, pestana string) ([][]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pestanas[pestana], nil
}

func mapeoDePrueba(t *testing.T) *service.MapeoPlanilla {
	t.Helper()
	raw, err := os.ReadFile("../../config/presupuestos.yaml")
	require.NoError(t, err)
	m, err := service.ParsearMapeo(raw)
	require.NoError(t, err)
	return m
}

func hojaDePrueba() *fuenteFija {
	return &fuenteFija{pestanas: map[string][][]string{
		"Presupuestos": {
			{"ID", "Cliente", "Fecha", "Estado", "Total"},
			{"P-1", "Panaderia Sur", "05/03/2026", "aprobado", "$ 1.500,00"},
			{"P-2", "Bar Norte", "fecha rota", "pendiente", "10"},
			{"", "Sin id", "", "", ""},
			{"P-1", "Duplicado", "", "", ""},
			{"", "", "", "", ""},
			{"P-3", "Cafe Este", "2026-03-06", "pendiente", "200"},
		},
		"Detalle": {
			{"ID Presupuesto", "Articulo", "Descripcion", "Cantidad", "Precio Unitario", "Subtotal", "Diferencia"},
			{"P-1", "TORTA-A", "Torta A", "2", "500", "1000", "0"},
			{"P-1", "PAN", "Pan de miel", "1", "500", "500", "-10,5"},
			{"P-9", "PAN", "", "1", "1", "1", "0"},
			{"P-3", "", "Sin articulo", "1", "1", "1", "0"},
		},
	}}
}

func TestParsearMapeo_Validaciones(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"yaml roto", "presupuestos: [\n"},
		{"sin pestana", "presupuestos:\n  columnas:\n    id_externo: ID\ndetalles:\n  pestana: D\n  columnas:\n    presupuesto: P\n    articulo: A\n"},
		{"campo desconocido", "presupuestos:\n  pestana: P\n  columnas:\n    id_externo: ID\n    color: Color\ndetalles:\n  pestana: D\n  columnas:\n    presupuesto: P\n    articulo: A\n"},
		{"falta requerido", "presupuestos:\n  pestana: P\n  columnas:\n    cliente: Cliente\ndetalles:\n  pestana: D\n  columnas:\n    presupuesto: P\n    articulo: A\n"},
		{"falta articulo", "presupuestos:\n  pestana: P\n  columnas:\n    id_externo: ID\ndetalles:\n  pestana: D\n  columnas:\n    presupuesto: P\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.ParsearMapeo([]byte(tc.raw))
			assert.Error(t, err)
		})
	}
}

func TestSincronizar_ImportaYCuentaOmitidas(t *testing.T) {
	p := nuevaPlanta()
	svc := service.NewPresupuestoService(p.pres, hojaDePrueba(), mapeoDePrueba(t), p.cola, nil)

	res, err := svc.Sincronizar(context.Background(), "hoja-1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Presupuestos)
	assert.Equal(t, 2, res.Detalles)
	// P-2 bad date, blank id, duplicate P-1, detail of unknown P-9, detail without article.
	assert.Equal(t, 5, res.Omitidas)

	require.Contains(t, p.m.presupuestos, "P-1")
	p1 := p.m.presupuestos["P-1"]
	assert.Equal(t, "Panaderia Sur", p1.Cliente)
	assert.Equal(t, "1500", p1.Total.String())
	require.NotNil(t, p1.Fecha)
	assert.Equal(t, 5, p1.Fecha.Day())
	require.Len(t, p1.Detalles, 2)
	assert.Equal(t, "-10.5", p1.Detalles[1].Diferencia.String())
	assert.NotContains(t, p.m.presupuestos, "P-2")
}

func TestSincronizar_EsIdempotente(t *testing.T) {
	p := nuevaPlanta()
	svc := service.NewPresupuestoService(p.pres, hojaDePrueba(), mapeoDePrueba(t), p.cola, nil)

	_, err := svc.Sincronizar(context.Background(), "hoja-1")
	require.NoError(t, err)
	primero := p.m.presupuestos["P-1"].ID
	_, err = svc.Sincronizar(context.Background(), "hoja-1")
	require.NoError(t, err)

	assert.Len(t, p.m.presupuestos, 2)
	assert.Equal(t, primero, p.m.presupuestos["P-1"].ID)

	lista, err := svc.Listar(context.Background(), "hoja-1")
	require.NoError(t, err)
	assert.Len(t, lista, 2)

	got, err := svc.Obtener(context.Background(), primero)
	require.NoError(t, err)
	assert.Equal(t, "P-1", got.IDExterno)
}

func TestSincronizar_SubtotalCalculadoSinColumna(t *testing.T) {
	p := nuevaPlanta()
	m := mapeoDePrueba(t)
	delete(m.Detalles.Columnas, service.CampoSubtotal)
	hoja := &fuenteFija{pestanas: map[string][][]string{
		"Presupuestos": {{"ID"}, {"P-1"}},
		"Detalle":      {{"ID Presupuesto", "Articulo", "Cantidad", "Precio Unitario"}, {"P-1", "PAN", "1,5", "3,333"}},
	}}
	svc := service.NewPresupuestoService(p.pres, hoja, m, p.cola, nil)

	_, err := svc.Sincronizar(context.Background(), "hoja-1")
	require.NoError(t, err)
	require.Len(t, p.m.presupuestos["P-1"].Detalles, 1)
	assert.Equal(t, "5", p.m.presupuestos["P-1"].Detalles[0].Subtotal.String())
}

func TestSincronizar_Errores(t *testing.T) {
	p := nuevaPlanta()
	m := mapeoDePrueba(t)

	_, err := service.NewPresupuestoService(p.pres, hojaDePrueba(), m, p.cola, nil).Sincronizar(context.Background(), "")
	assert.True(t, apierror.Es(err, apierror.Validacion))

	_, err = service.NewPresupuestoService(p.pres, nil, nil, p.cola, nil).Sincronizar(context.Background(), "hoja-1")
	assert.True(t, apierror.Es(err, apierror.Estado))

	sinColumna := &fuenteFija{pestanas: map[string][][]string{"Presupuestos": {{"Cliente"}, {"X"}}}}
	_, err = service.NewPresupuestoService(p.pres, sinColumna, m, p.cola, nil).Sincronizar(context.Background(), "hoja-1")
	assert.True(t, apierror.Es(err, apierror.Validacion))

	caida := &fuenteFija{err: errors.New("timeout")}
	_, err = service.NewPresupuestoService(p.pres, caida, m, p.cola, nil).Sincronizar(context.Background(), "hoja-1")
	assert.True(t, apierror.Es(err, apierror.Persistencia))

	assert.Empty(t, p.m.presupuestos)
}

func TestSincronizarAsync_Encola(t *testing.T) {
	p := nuevaPlanta()
	svc := service.NewPresupuestoService(p.pres, nil, nil, p.cola, nil)

	res, err := svc.SincronizarAsync(context.Background(), "hoja-7")
	require.NoError(t, err)
	assert.True(t, res.Encolado)
	assert.Equal(t, []string{"hoja-7"}, p.cola.hojas)

	_, err = service.NewPresupuestoService(p.pres, nil, nil, nil, nil).SincronizarAsync(context.Background(), "hoja-7")
	assert.True(t, apierror.Es(err, apierror.Estado))
}
