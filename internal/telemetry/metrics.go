package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shaiso/Aerodata/internal/export"
)

// Исходы сессии экспорта (label outcome).
const (
	OutcomeCompleted = "completed" // дошли до End
	OutcomeFailed    = "failed"    // Failed: ошибка источника или кодирования
	OutcomeAborted   = "aborted"   // потребитель ушёл: отмена, ошибка записи
)

// ExportMetrics — Prometheus метрики сессий экспорта.
type ExportMetrics struct {
	sessions *prometheus.CounterVec
	rows     *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	active   *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

// NewExportMetrics регистрирует метрики в reg.
// prometheus.DefaultRegisterer — для сервисов, отдельный Registry — для тестов.
func NewExportMetrics(reg prometheus.Registerer) *ExportMetrics {
	factory := promauto.With(reg)

	return &ExportMetrics{
		sessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aerodata_export_sessions_total",
				Help: "Total number of finished export sessions",
			},
			[]string{"table", "outcome"},
		),
		rows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aerodata_export_rows_total",
				Help: "Total number of data rows written by export sessions",
			},
			[]string{"table"},
		),
		bytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aerodata_export_bytes_total",
				Help: "Total number of CSV bytes written by export sessions",
			},
			[]string{"table"},
		),
		active: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aerodata_export_active_sessions",
				Help: "Number of export sessions currently streaming",
			},
			[]string{"table"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aerodata_export_duration_seconds",
				Help:    "Export session duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"table"},
		),
	}
}

// Begin отмечает начало сессии. Возвращённую функцию нужно вызвать по завершении.
func (m *ExportMetrics) Begin(table string) func() {
	g := m.active.WithLabelValues(table)
	g.Inc()
	return g.Dec
}

// Observe учитывает завершённую сессию.
func (m *ExportMetrics) Observe(table string, stats export.Stats, err error, d time.Duration) {
	m.sessions.WithLabelValues(table, Outcome(err)).Inc()
	m.rows.WithLabelValues(table).Add(float64(stats.Rows))
	m.bytes.WithLabelValues(table).Add(float64(stats.Bytes))
	m.duration.WithLabelValues(table).Observe(d.Seconds())
}

// Outcome классифицирует результат export.Stream.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeCompleted
	case errors.Is(err, export.ErrSourceFetch), errors.Is(err, export.ErrEncoding):
		return OutcomeFailed
	default:
		return OutcomeAborted
	}
}
