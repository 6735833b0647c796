// Package metrics holds the prometheus collectors of the server. Every
// method is safe on a nil *Metrics so services can run without them in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	transiciones *prometheus.CounterVec
	ajustes      *prometheus.CounterVec
	filasSync    *prometheus.CounterVec
	jobs         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planta_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planta_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transiciones: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planta_carro_transiciones_total",
			Help: "Cart state transitions by destination state",
		}, []string{"estado", "tipo_carro"}),
		ajustes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planta_ajustes_manuales_total",
			Help: "Manual ledger entries registered and reversed",
		}, []string{"operacion"}),
		filasSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planta_presupuestos_filas_total",
			Help: "Spreadsheet rows processed by the budget synchronizer",
		}, []string{"resultado"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planta_jobs_total",
			Help: "Async jobs processed by type and outcome",
		}, []string{"tipo", "resultado"}),
	}
	m.registry.MustRegister(
		m.httpRequests, m.httpDuration, m.transiciones, m.ajustes, m.filasSync, m.jobs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) Transicion(estado, tipoCarro string) {
	if m == nil {
		return
	}
	m.transiciones.WithLabelValues(estado, tipoCarro).Inc()
}

func (m *Metrics) AjustesRegistrados(n int) {
	if m == nil {
		return
	}
	m.ajustes.WithLabelValues("registro").Add(float64(n))
}

func (m *Metrics) AjustesRevertidos(n int) {
	if m == nil {
		return
	}
	m.ajustes.WithLabelValues("reversion").Add(float64(n))
}

func (m *Metrics) FilasSincronizadas(ok, omitidas int) {
	if m == nil {
		return
	}
	m.filasSync.WithLabelValues("ok").Add(float64(ok))
	m.filasSync.WithLabelValues("omitida").Add(float64(omitidas))
}

func (m *Metrics) Job(tipo string, err error) {
	if m == nil {
		return
	}
	resultado := "ok"
	if err != nil {
		resultado = "error"
	}
	m.jobs.WithLabelValues(tipo, resultado).Inc()
}
