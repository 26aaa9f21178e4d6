package engine

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// sessionMetrics holds Prometheus metrics for the process engine.
type sessionMetrics struct {
	once sync.Once

	statements prometheus.Counter
	errors     *prometheus.CounterVec
	forced     prometheus.Counter
	duration   prometheus.Histogram
	sessions   prometheus.Gauge
}

var engMetrics sessionMetrics

func (m *sessionMetrics) init() {
	m.once.Do(func() {
		m.statements = prometheus.NewCounter(prometheus.CounterOpts{Name: "duckpond_statements_total", Help: "Statements submitted to engine subprocesses"})
		m.errors = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "duckpond_statement_errors_total", Help: "Statements resolved as engine errors"}, []string{"kind"})
		m.forced = prometheus.NewCounter(prometheus.CounterOpts{Name: "duckpond_forced_resolutions_total", Help: "Statements resolved by timeout instead of completion marker"})
		m.duration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "duckpond_statement_seconds",
			Help:    "Wall time from statement submission to resolution",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		})
		m.sessions = prometheus.NewGauge(prometheus.GaugeOpts{Name: "duckpond_sessions_active", Help: "Live engine subprocess sessions"})

		prometheus.MustRegister(m.statements, m.errors, m.forced, m.duration, m.sessions)
	})
}

func recordSessionOpened()       { engMetrics.init(); engMetrics.sessions.Inc() }
func recordSessionClosed()       { engMetrics.init(); engMetrics.sessions.Dec() }
func recordStatement()           { engMetrics.init(); engMetrics.statements.Inc() }
func recordForcedResolution()    { engMetrics.init(); engMetrics.forced.Inc() }
func recordDuration(sec float64) { engMetrics.init(); engMetrics.duration.Observe(sec) }
func recordError(kind string)    { engMetrics.init(); engMetrics.errors.WithLabelValues(kind).Inc() }
