package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planta/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func firmar(t *testing.T, secret string, claims JWTClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func rutaProtegida(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/yo", JWTAuth(secret), func(c *gin.Context) {
		c.String(http.StatusOK, UsuarioID(c).String())
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	u := uuid.New()
	valido := firmar(t, "s3cret", JWTClaims{UserID: u.String(), Rol: "operario",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}})
	vencido := firmar(t, "s3cret", JWTClaims{UserID: u.String(),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}})
	otraClave := firmar(t, "otra", JWTClaims{UserID: u.String()})
	sinUsuario := firmar(t, "s3cret", JWTClaims{UserID: "no-uuid"})

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valido", "Bearer " + valido, http.StatusOK},
		{"sin header", "", http.StatusUnauthorized},
		{"sin bearer", valido, http.StatusUnauthorized},
		{"vencido", "Bearer " + vencido, http.StatusUnauthorized},
		{"otra clave", "Bearer " + otraClave, http.StatusUnauthorized},
		{"usuario invalido", "Bearer " + sinUsuario, http.StatusUnauthorized},
	}
	r := rutaProtegida("s3cret")
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/yo", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, u.String(), w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	secret := "s3cret"
	r := gin.New()
	r.GET("/sup", JWTAuth(secret), RequireRole("supervisor"), func(c *gin.Context) { c.Status(http.StatusOK) })

	for rol, want := range map[string]int{"supervisor": http.StatusOK, "operario": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/sup", nil)
		req.Header.Set("Authorization", "Bearer "+firmar(t, secret, JWTClaims{UserID: uuid.NewString(), Rol: rol}))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, rol)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRecoveryNoFiltraPanic(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://planta.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://planta.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://planta.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://otro.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLimitador(t *testing.T) {
	now := time.Now()
	l := newLimitador(2, time.Minute)
	l.now = func() time.Time { return now }

	ok, _ := l.permitir("a")
	assert.True(t, ok)
	ok, _ = l.permitir("a")
	assert.True(t, ok)
	ok, _ = l.permitir("a")
	assert.False(t, ok)
	ok, _ = l.permitir("b")
	assert.True(t, ok)

	now = now.Add(time.Minute + time.Second)
	ok, _ = l.permitir("a")
	assert.True(t, ok)

	now = now.Add(purgeInterval + time.Minute)
	l.permitir("c")
	assert.Len(t, l.entradas, 1)
}

func TestRateLimiterResponde429(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimiter(1, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestErrorHandlerMapeaErroresDeDominio(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/estado", func(c *gin.Context) { _ = c.Error(apierror.State("ya confirmado")) })
	r.GET("/interno", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/estado", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ya confirmado")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/interno", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}
