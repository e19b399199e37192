package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/leapstack-labs/lintstream/pkg/lint"
)

// File outcomes recorded by Metrics.
const (
	OutcomeLinted  = "linted"
	OutcomeIgnored = "ignored"
	OutcomeSkipped = "skipped"
	OutcomeFixed   = "fixed"
)

// Metrics counts pipeline activity. A nil *Metrics records nothing.
type Metrics struct {
	files       *prometheus.CounterVec
	messages    *prometheus.CounterVec
	stageErrors *prometheus.CounterVec
}

// NewMetrics creates the pipeline counters and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		files: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lintstream",
			Name:      "files_total",
			Help:      "Files seen by pipeline stages by outcome",
		}, []string{"outcome"}),
		messages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lintstream",
			Name:      "messages_total",
			Help:      "Lint messages attached to files by severity",
		}, []string{"severity"}),
		stageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lintstream",
			Name:      "stage_errors_total",
			Help:      "Stage failures by stage name",
		}, []string{"stage"}),
	}
}

func (m *Metrics) file(outcome string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(outcome).Inc()
}

func (m *Metrics) result(r *lint.Result) {
	if m == nil || r == nil {
		return
	}
	m.messages.WithLabelValues("error").Add(float64(r.ErrorCount))
	m.messages.WithLabelValues("warning").Add(float64(r.WarningCount))
}

func (m *Metrics) stageError(stage string) {
	if m == nil {
		return
	}
	m.stageErrors.WithLabelValues(stage).Inc()
}
