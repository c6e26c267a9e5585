// Package metrics provides observability for the draw engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks registration volume, winner selections by method, and the
// latency of the two contended paths.
type Metrics struct {
	RegistrationsTotal    prometheus.Counter
	RegistrationConflicts prometheus.Counter
	WinnersSelectedTotal  *prometheus.CounterVec
	SelectionRejections   *prometheus.CounterVec
	NotifyEmitFailures    prometheus.Counter
	RegisterDuration      prometheus.Histogram
	SelectWinnerDuration  prometheus.Histogram
}

// New registers all draw engine metrics with the default registry.
func New() *Metrics {
	return &Metrics{
		RegistrationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "luckydraw_registrations_total",
			Help: "Total number of accepted draw registrations",
		}),
		RegistrationConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "luckydraw_registration_conflicts_total",
			Help: "Registration attempts rejected as duplicates",
		}),
		WinnersSelectedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "luckydraw_winners_selected_total",
			Help: "Winner selections committed, by resolution method",
		}, []string{"method"}),
		SelectionRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "luckydraw_selection_rejections_total",
			Help: "Winner selection attempts rejected, by error code",
		}, []string{"code"}),
		NotifyEmitFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "luckydraw_notify_emit_failures_total",
			Help: "Winner-selected events that failed to reach the dispatcher",
		}),
		RegisterDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "luckydraw_register_duration_seconds",
			Help:    "Duration of Register operations (registrant hot path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		SelectWinnerDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "luckydraw_select_winner_duration_seconds",
			Help:    "Duration of SelectWinner operations (resolution path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveRegister records the duration of a Register operation.
func (m *Metrics) ObserveRegister(start time.Time) {
	m.RegisterDuration.Observe(time.Since(start).Seconds())
}

// ObserveSelectWinner records the duration of a SelectWinner operation.
func (m *Metrics) ObserveSelectWinner(start time.Time) {
	m.SelectWinnerDuration.Observe(time.Since(start).Seconds())
}
