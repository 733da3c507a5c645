package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pscheid92/campusfind/internal/adapter/metrics"
)

// queryTracer implements pgx.QueryTracer to record query duration and errors.
type queryTracer struct {
	metrics *metrics.DBMetrics
}

var _ pgx.QueryTracer = (*queryTracer)(nil)

type queryContextKey struct{}

type queryContext struct {
	start     time.Time
	operation string
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryContextKey{}, queryContext{start: time.Now(), operation: operationName(data.SQL)})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qctx, ok := ctx.Value(queryContextKey{}).(queryContext)
	if !ok {
		return
	}

	t.metrics.QueryDuration.WithLabelValues(qctx.operation).Observe(time.Since(qctx.start).Seconds())
	if data.Err != nil {
		t.metrics.Errors.WithLabelValues(qctx.operation).Inc()
	}
}

// operationName reduces a statement to its leading keyword to keep label
// cardinality low.
func operationName(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	op := strings.ToLower(fields[0])
	switch op {
	case "select", "insert", "update", "delete", "with", "begin", "commit", "rollback":
		return op
	default:
		return "other"
	}
}
