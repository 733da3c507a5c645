package redis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/adapter/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionCache_RedisLayerSharedAcrossInstances(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()
	itemID := uuid.New()

	repo := &mockQuestionRepo{}
	warm := NewQuestionCacheRepo(client, repo, time.Minute, nil)
	want, err := warm.ListByItem(ctx, itemID)
	require.NoError(t, err)

	// A second instance has a cold L1 and must be served from Redis.
	m := metrics.NewCacheMetrics(prometheus.NewRegistry())
	cold := NewQuestionCacheRepo(client, repo, time.Minute, m)
	got, err := cold.ListByItem(ctx, itemID)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Hits.WithLabelValues("redis")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Misses))

	exists, err := client.Exists(ctx, questionCacheKey(itemID)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}
