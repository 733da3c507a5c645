// Package eventpublisher fans domain events out to several sinks, each behind
// its own circuit breaker.
package eventpublisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/pscheid92/campusfind/internal/adapter/metrics"
	"github.com/pscheid92/campusfind/internal/domain"
)

// Sink is a named event destination.
type Sink struct {
	Name      string
	Publisher domain.EventPublisher
}

// BreakerSettings configure the per-sink circuit breaker: it opens once at
// least MinExecutions deliveries in Window failed at FailureRate or more, and
// probes the sink again after Delay.
type BreakerSettings struct {
	FailureRate   float64
	MinExecutions uint
	Window        time.Duration
	Delay         time.Duration
}

var DefaultBreakerSettings = BreakerSettings{
	FailureRate:   0.6,
	MinExecutions: 5,
	Window:        10 * time.Second,
	Delay:         30 * time.Second,
}

type guardedSink struct {
	Sink
	cb circuitbreaker.CircuitBreaker[any]
}

// EventPublisher implements domain.EventPublisher by delivering every event
// to all sinks. A sink whose breaker is open is skipped.
type EventPublisher struct {
	sinks   []guardedSink
	metrics *metrics.EventMetrics
}

var _ domain.EventPublisher = (*EventPublisher)(nil)

// New builds a publisher over sinks. m may be nil.
func New(settings BreakerSettings, m *metrics.EventMetrics, sinks ...Sink) *EventPublisher {
	p := &EventPublisher{metrics: m}
	for _, s := range sinks {
		p.sinks = append(p.sinks, guardedSink{Sink: s, cb: newBreaker(s.Name, settings, m)})
		if m != nil {
			m.BreakerState.WithLabelValues(s.Name).Set(0)
		}
	}
	return p
}

func newBreaker(sink string, settings BreakerSettings, m *metrics.EventMetrics) circuitbreaker.CircuitBreaker[any] {
	return circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(settings.FailureRate, settings.MinExecutions, settings.Window).
		WithDelay(settings.Delay).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "event_sink",
				"sink", sink,
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			if m != nil {
				open := 0.0
				if e.NewState == circuitbreaker.OpenState {
					open = 1
				}
				m.BreakerState.WithLabelValues(sink).Set(open)
			}
		}).
		Build()
}

// Publish delivers event to every sink and joins the failures.
func (p *EventPublisher) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, s := range p.sinks {
		if !s.cb.TryAcquirePermit() {
			p.count(func(m *metrics.EventMetrics) { m.Skipped.WithLabelValues(s.Name).Inc() })
			errs = append(errs, fmt.Errorf("sink %s: %w", s.Name, circuitbreaker.ErrOpen))
			continue
		}

		if err := s.Publisher.Publish(ctx, event); err != nil {
			s.cb.RecordError(err)
			p.count(func(m *metrics.EventMetrics) { m.Failed.WithLabelValues(s.Name).Inc() })
			errs = append(errs, fmt.Errorf("sink %s: %w", s.Name, err))
			continue
		}
		s.cb.RecordSuccess()
		p.count(func(m *metrics.EventMetrics) { m.Delivered.WithLabelValues(s.Name).Inc() })
	}
	return errors.Join(errs...)
}

func (p *EventPublisher) count(fn func(m *metrics.EventMetrics)) {
	if p.metrics != nil {
		fn(p.metrics)
	}
}
