package metrics

import "github.com/prometheus/client_golang/prometheus"

// EventMetrics tracks notification delivery per sink.
type EventMetrics struct {
	Delivered    *prometheus.CounterVec
	Failed       *prometheus.CounterVec
	Skipped      *prometheus.CounterVec
	BreakerState *prometheus.GaugeVec
}

func NewEventMetrics(reg prometheus.Registerer) *EventMetrics {
	m := &EventMetrics{
		Delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "delivered_total",
			Help:      "Total number of events delivered, by sink.",
		}, []string{"sink"}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "failed_total",
			Help:      "Total number of failed event deliveries, by sink.",
		}, []string{"sink"}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "skipped_total",
			Help:      "Total number of events skipped because the sink's circuit breaker was open, by sink.",
		}, []string{"sink"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "circuit_breaker_open",
			Help:      "1 while the sink's circuit breaker is open, 0 otherwise.",
		}, []string{"sink"}),
	}

	reg.MustRegister(m.Delivered, m.Failed, m.Skipped, m.BreakerState)
	return m
}
