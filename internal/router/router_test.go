package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planta/internal/config"
	"planta/internal/infra"
	"planta/internal/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secreto = "router-test-secret"

func engine(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{Env: "test", JWTSecret: secreto, RateLimitRPM: 100}
	d := Deps{Metrics: metrics.New(), Hub: infra.NewHub(nil)}
	return New(cfg, nil, nil, NewServicios(cfg, nil, d), d)
}

func token(t *testing.T, rol string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": uuid.NewString(), "username": "op", "rol": rol,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(secreto))
	require.NoError(t, err)
	return s
}

func do(h http.Handler, method, path, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthSinDependencias(t *testing.T) {
	w := do(engine(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"impresora":"disabled"`)
}

func TestRouter_MetricsPublico(t *testing.T) {
	w := do(engine(t), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_V1RequiereToken(t *testing.T) {
	h := engine(t)
	for _, path := range []string{"/v1/carros", "/v1/ingredientes", "/v1/presupuestos", "/v1/stock-usuario"} {
		w := do(h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRouter_EscrituraCatalogoSoloSupervisor(t *testing.T) {
	h := engine(t)
	w := do(h, http.MethodDelete, "/v1/ingredientes/1", token(t, "operario"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(h, http.MethodPost, "/v1/presupuestos/sincronizar", token(t, "operario"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_IDMalformado(t *testing.T) {
	w := do(engine(t), http.MethodGet, "/v1/carros/abc", token(t, "operario"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_RutaDesconocida(t *testing.T) {
	w := do(engine(t), http.MethodGet, "/v1/nada", token(t, "operario"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
