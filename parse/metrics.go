package parse

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "gtfs_"

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Metrics records per-table load statistics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	rows     *prometheus.CounterVec
	loads    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates load metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		rows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_loaded_total",
				Help: "Total rows decoded by table",
			},
			[]string{"table"},
		),
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "table_loads_total",
				Help: "Total table loads by table and result",
			},
			[]string{"table", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "table_load_seconds",
				Help:    "Table load latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"table"},
		),
	}

	for _, c := range []prometheus.Collector{m.rows, m.loads, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) observe(table string, rows int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}

	result := resultSuccess
	if err != nil {
		result = resultError
	}

	m.rows.WithLabelValues(table).Add(float64(rows))
	m.loads.WithLabelValues(table, result).Inc()
	m.duration.WithLabelValues(table).Observe(elapsed.Seconds())
}
