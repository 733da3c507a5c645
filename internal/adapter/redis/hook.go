package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/pscheid92/campusfind/internal/adapter/metrics"
	goredis "github.com/redis/go-redis/v9"
)

// Hook guards every Redis command with a circuit breaker and records command
// metrics. While the breaker is open commands fail immediately with
// circuitbreaker.ErrOpen, so callers that fail open (submission guard,
// question cache) stop paying for timeouts.
type Hook struct {
	cb      circuitbreaker.CircuitBreaker[any]
	metrics *metrics.RedisMetrics
}

var _ goredis.Hook = (*Hook)(nil)

// NewHook opens the breaker at a 60% failure rate over at least 5 commands in
// 10s and probes again after delay. m may be nil.
func NewHook(m *metrics.RedisMetrics, delay time.Duration) *Hook {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(delay).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "redis",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			if m != nil {
				m.BreakerState.Set(stateToFloat(e.NewState))
			}
		}).
		Build()

	return &Hook{cb: cb, metrics: m}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

func (h *Hook) State() circuitbreaker.State {
	return h.cb.State()
}

func (h *Hook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !h.cb.TryAcquirePermit() {
			return nil, fmt.Errorf("redis dial: %w", circuitbreaker.ErrOpen)
		}
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.cb.RecordError(err)
			return nil, err
		}
		h.cb.RecordSuccess()
		return conn, nil
	}
}

// ProcessHook returns command errors unwrapped so goredis.Nil checks keep working.
func (h *Hook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			h.observe(cmd.Name(), "rejected", 0)
			err := fmt.Errorf("redis %s: %w", cmd.Name(), circuitbreaker.ErrOpen)
			cmd.SetErr(err)
			return err
		}

		start := time.Now()
		err := next(ctx, cmd)
		elapsed := time.Since(start)

		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			h.observe(cmd.Name(), "error", elapsed)
			return err
		}
		h.cb.RecordSuccess()
		h.observe(cmd.Name(), "success", elapsed)
		return err
	}
}

func (h *Hook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			h.observe("pipeline", "rejected", 0)
			return fmt.Errorf("redis pipeline: %w", circuitbreaker.ErrOpen)
		}

		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)

		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			h.observe("pipeline", "error", elapsed)
			return err
		}
		h.cb.RecordSuccess()
		h.observe("pipeline", "success", elapsed)
		return err
	}
}

func (h *Hook) observe(operation, status string, elapsed time.Duration) {
	if h.metrics == nil {
		return
	}
	h.metrics.Ops.WithLabelValues(operation, status).Inc()
	if status != "rejected" {
		h.metrics.Duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}
