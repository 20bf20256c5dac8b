// Package metrics - Prometheus метрики подключения и запросов.
//
// Metrics реализует conn.Observer и query.Observer. Коллекторы регистрируются
// в собственном реестре, поэтому несколько экземпляров не конфликтуют.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ruslano69/recordkit/pkg/driver"
)

// Namespace - префикс имен метрик
const Namespace = "recordkit"

// ResultConnected - метка успешного handshake
const ResultConnected = "connected"

var states = []string{"disconnected", "connecting", "connected"}

// Metrics - набор коллекторов
type Metrics struct {
	registry *prometheus.Registry

	connectAttempts *prometheus.CounterVec
	connectionState *prometheus.GaugeVec
	queriesTotal    *prometheus.CounterVec
	queryDuration   prometheus.Histogram
}

// New создает Metrics с новым реестром
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// connectAttempts считает handshake по результату: connected или код ошибки
		connectAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "connect_attempts_total",
				Help:      "Total number of connection handshakes by result",
			},
			[]string{"result"},
		),

		// connectionState = 1 для текущего состояния, 0 для остальных
		connectionState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "connection_state",
				Help:      "Current connection state (1 for the active state)",
			},
			[]string{"state"},
		),

		queriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "queries_total",
				Help:      "Total number of executed queries by status",
			},
			[]string{"status"},
		),

		queryDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "query_duration_seconds",
				Help:      "Query latency including connection wait",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}
}

// ObserveConnectAttempt учитывает один handshake; err == nil - успех
func (m *Metrics) ObserveConnectAttempt(code driver.Code, err error) {
	result := ResultConnected
	if err != nil {
		result = code.String()
	}
	m.connectAttempts.WithLabelValues(result).Inc()
}

// ObserveState переключает gauge состояния
func (m *Metrics) ObserveState(state string) {
	for _, s := range states {
		v := 0.0
		if s == state {
			v = 1
		}
		m.connectionState.WithLabelValues(s).Set(v)
	}
}

// ObserveQuery учитывает выполненный запрос
func (m *Metrics) ObserveQuery(status string, elapsed time.Duration) {
	m.queriesTotal.WithLabelValues(status).Inc()
	m.queryDuration.Observe(elapsed.Seconds())
}

// Registry возвращает реестр коллекторов
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler отдает метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ConnectAttempts возвращает счетчик handshake с результатом result
func (m *Metrics) ConnectAttempts(result string) prometheus.Counter {
	return m.connectAttempts.WithLabelValues(result)
}

// ConnectionState возвращает gauge состояния state
func (m *Metrics) ConnectionState(state string) prometheus.Gauge {
	return m.connectionState.WithLabelValues(state)
}

// Queries возвращает счетчик запросов со статусом status
func (m *Metrics) Queries(status string) prometheus.Counter {
	return m.queriesTotal.WithLabelValues(status)
}
