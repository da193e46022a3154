package metrics

import "github.com/prometheus/client_golang/prometheus"

// DecisionMetrics tracks vendor decisions and the failures they run into.
type DecisionMetrics struct {
	outcomes   *prometheus.CounterVec
	rejections *prometheus.CounterVec
}

func NewDecisionMetrics(reg prometheus.Registerer) *DecisionMetrics {
	if reg == nil {
		return &DecisionMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_decisions_total",
		Help:      "Decisions applied to orders, by outcome.",
	}, []string{"outcome"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_decision_errors_total",
		Help:      "Decisions that failed, by error code.",
	}, []string{"code"})
	reg.MustRegister(outcomes, rejections)
	return &DecisionMetrics{outcomes: outcomes, rejections: rejections}
}

// IncOutcome records a committed decision.
func (m *DecisionMetrics) IncOutcome(outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncError records a decision that rolled back, labelled by error code.
func (m *DecisionMetrics) IncError(code string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(code)).Inc()
}
