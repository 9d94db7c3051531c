package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the metering gate and the
// external generation call.
type Metrics struct {
	// Gate metrics
	AdmissionsTotal   *prometheus.CounterVec
	DebitsTotal       prometheus.Counter
	BypassesTotal     prometheus.Counter
	DuplicatesTotal   prometheus.Counter
	NoFundsTotal      prometheus.Counter
	TopUpsTotal       prometheus.Counter
	TopUpAmount       prometheus.Histogram

	// Generation metrics
	GenerationDuration prometheus.Histogram
	GenerationTimeouts prometheus.Counter
	GenerationFailures prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		AdmissionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tokengate_admissions_total",
				Help: "Total admission decisions by outcome",
			},
			[]string{"outcome"},
		),
		DebitsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_debits_total",
			Help: "Total generation debits committed",
		}),
		BypassesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_bypasses_total",
			Help: "Total privileged bypass entries recorded",
		}),
		DuplicatesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_duplicates_total",
			Help: "Total duplicate request ids short-circuited",
		}),
		NoFundsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_no_funds_total",
			Help: "Total requests rejected for insufficient balance",
		}),
		TopUpsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_topups_total",
			Help: "Total top-up credits applied",
		}),
		TopUpAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tokengate_topup_amount",
			Help:    "Top-up amounts",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000},
		}),
		GenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tokengate_generation_duration_seconds",
			Help:    "Duration of external generation calls",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		}),
		GenerationTimeouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_generation_timeouts_total",
			Help: "Total generation calls that exceeded the deadline",
		}),
		GenerationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tokengate_generation_failures_total",
			Help: "Total generation calls that failed upstream",
		}),
	}
}
