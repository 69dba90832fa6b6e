// Package metrics records conversation and catalog events in Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is the set of events the flows and stores report.
type Recorder interface {
	EstimateStarted()
	EstimateCompleted(total float64)
	Rejected(flow, reason string)
	ConfigWritten(source string)
	CorruptConfigRead()
	AdminDropped()
}

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	started      prometheus.Counter
	completed    prometheus.Counter
	totals       prometheus.Histogram
	rejections   *prometheus.CounterVec
	configWrites *prometheus.CounterVec
	corruptReads prometheus.Counter
	adminDropped prometheus.Counter
}

// NewPrometheusRecorder registers the collectors with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	f := promauto.With(reg)
	return &PrometheusRecorder{
		started: f.NewCounter(prometheus.CounterOpts{
			Name: "buildcalc_estimates_started_total",
			Help: "Number of estimate conversations started",
		}),
		completed: f.NewCounter(prometheus.CounterOpts{
			Name: "buildcalc_estimates_completed_total",
			Help: "Number of estimates that reached the result screen",
		}),
		totals: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "buildcalc_estimate_total_rub",
			Help:    "Distribution of finished estimate totals in rubles",
			Buckets: prometheus.ExponentialBuckets(250_000, 2, 10),
		}),
		rejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildcalc_rejected_actions_total",
				Help: "Actions recovered as a re-prompt, by flow and reason",
			},
			[]string{"flow", "reason"},
		),
		configWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buildcalc_config_writes_total",
				Help: "Configuration document overwrites by source",
			},
			[]string{"source"},
		),
		corruptReads: f.NewCounter(prometheus.CounterOpts{
			Name: "buildcalc_config_corrupt_reads_total",
			Help: "Reads that fell back to the built-in catalog because the stored one did not parse",
		}),
		adminDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "buildcalc_admin_dropped_total",
			Help: "Admin actions dropped because the caller is not an operator",
		}),
	}
}

func (p *PrometheusRecorder) EstimateStarted() { p.started.Inc() }

func (p *PrometheusRecorder) EstimateCompleted(total float64) {
	p.completed.Inc()
	p.totals.Observe(total)
}

func (p *PrometheusRecorder) Rejected(flow, reason string) {
	p.rejections.WithLabelValues(flow, reason).Inc()
}

func (p *PrometheusRecorder) ConfigWritten(source string) {
	p.configWrites.WithLabelValues(source).Inc()
}

func (p *PrometheusRecorder) CorruptConfigRead() { p.corruptReads.Inc() }

func (p *PrometheusRecorder) AdminDropped() { p.adminDropped.Inc() }

// Nop discards everything.
type Nop struct{}

func (Nop) EstimateStarted()          {}
func (Nop) EstimateCompleted(float64) {}
func (Nop) Rejected(string, string)   {}
func (Nop) ConfigWritten(string)      {}
func (Nop) CorruptConfigRead()        {}
func (Nop) AdminDropped()             {}
