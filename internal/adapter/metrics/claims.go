package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/campusfind/internal/domain"
)

// ClaimMetrics tracks claim submissions, decisions and score distribution.
// It implements app.ClaimObserver.
type ClaimMetrics struct {
	Submitted       prometheus.Counter
	Throttled       prometheus.Counter
	Decisions       *prometheus.CounterVec
	CompositeScores prometheus.Histogram
}

func NewClaimMetrics(reg prometheus.Registerer) *ClaimMetrics {
	m := &ClaimMetrics{
		Submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "submitted_total",
			Help:      "Total number of accepted claim submissions.",
		}),
		Throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "throttled_total",
			Help:      "Total number of claim submissions rejected by the cooldown.",
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "decisions_total",
			Help:      "Total number of claims reaching a terminal status, by status.",
		}, []string{"status"}),
		CompositeScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "claims",
			Name:      "composite_score",
			Help:      "Composite scores of submitted claims.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
	}

	reg.MustRegister(m.Submitted, m.Throttled, m.Decisions, m.CompositeScores)
	return m
}

func (m *ClaimMetrics) ClaimSubmitted(score int) {
	m.Submitted.Inc()
	m.CompositeScores.Observe(float64(score))
}

func (m *ClaimMetrics) SubmissionThrottled() {
	m.Throttled.Inc()
}

func (m *ClaimMetrics) ClaimDecided(status domain.ClaimStatus, count int) {
	m.Decisions.WithLabelValues(string(status)).Add(float64(count))
}
