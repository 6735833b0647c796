package metrics_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"planta/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsEsSeguro(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Transicion("preparado", "interna")
		m.AjustesRegistrados(2)
		m.Job("etiquetas", errors.New("x"))
		m.ObserveHTTP("GET", "/health", 200, time.Millisecond)
	})
}

func TestHandlerExponeContadores(t *testing.T) {
	m := metrics.New()
	m.Transicion("confirmado", "externa")
	m.AjustesRegistrados(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `planta_carro_transiciones_total{estado="confirmado",tipo_carro="externa"} 1`)
	assert.Contains(t, string(body), `planta_ajustes_manuales_total{operacion="registro"} 3`)
}
