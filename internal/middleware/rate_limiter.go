package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"planta/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ── Rate limiter ─────────────────────────────────────────────────────────────

type ventana struct {
	count int
	fin   time.Time
}

// limitador is a fixed-window counter keyed by caller. Expired windows are
// purged inline every purgeInterval.
type limitador struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	entradas map[string]*ventana
	purgado  time.Time
	now      func() time.Time
}

const purgeInterval = 5 * time.Minute

func newLimitador(limit int, window time.Duration) *limitador {
	return &limitador{limit: limit, window: window, entradas: make(map[string]*ventana), now: time.Now}
}

// permitir counts one request for clave and reports whether it is allowed,
// with the end of the current window.
func (l *limitador) permitir(clave string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.purgado) >= purgeInterval {
		l.purgar(now)
	}
	v, ok := l.entradas[clave]
	if !ok || now.After(v.fin) {
		v = &ventana{fin: now.Add(l.window)}
		l.entradas[clave] = v
	}
	v.count++
	return v.count <= l.limit, v.fin
}

func (l *limitador) purgar(now time.Time) {
	purgadas := 0
	for k, v := range l.entradas {
		if now.After(v.fin) {
			delete(l.entradas, k)
			purgadas++
		}
	}
	l.purgado = now
	if purgadas > 0 {
		log.Debug().Int("purgadas", purgadas).Int("restantes", len(l.entradas)).Msg("rate limiter purged")
	}
}

// RateLimiter allows limit requests per window per caller: the JWT usuario
// when authenticated, the client IP otherwise.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newLimitador(limit, window)
	return func(c *gin.Context) {
		clave := c.ClientIP()
		if id := UsuarioID(c); id != uuid.Nil {
			clave = id.String()
		}
		ok, fin := l.permitir(clave)
		if !ok {
			segundos := int(time.Until(fin).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(segundos))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes. Intente nuevamente en un momento."))
			return
		}
		c.Next()
	}
}
