package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pscheid92/campusfind/internal/adapter/metrics"
	"github.com/pscheid92/campusfind/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const questionCacheTTL = 1 * time.Hour

// QuestionCacheRepo caches immutable question sets in front of a
// QuestionRepository: an in-process L1 and, when rdb is set, a Redis L2.
type QuestionCacheRepo struct {
	rdb       goredis.Cmdable
	questions domain.QuestionRepository
	mem       *cache.Cache
	metrics   *metrics.CacheMetrics
}

var _ domain.QuestionRepository = (*QuestionCacheRepo)(nil)

// NewQuestionCacheRepo wraps questions. rdb and m may be nil.
func NewQuestionCacheRepo(rdb goredis.Cmdable, questions domain.QuestionRepository, memTTL time.Duration, m *metrics.CacheMetrics) *QuestionCacheRepo {
	return &QuestionCacheRepo{
		rdb:       rdb,
		questions: questions,
		mem:       cache.New(memTTL, 2*memTTL),
		metrics:   m,
	}
}

func (r *QuestionCacheRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.VerificationQuestion, error) {
	key := itemID.String()

	// Layer 1: in-memory cache
	if v, ok := r.mem.Get(key); ok {
		r.hit("memory")
		return cloneQuestions(v.([]domain.VerificationQuestion)), nil
	}

	// Layer 2: Redis cache
	if qs, ok := r.getCached(ctx, itemID); ok {
		r.hit("redis")
		r.mem.SetDefault(key, qs)
		return cloneQuestions(qs), nil
	}

	// Layer 3: repository
	if r.metrics != nil {
		r.metrics.Misses.Inc()
	}
	qs, err := r.questions.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	r.mem.SetDefault(key, cloneQuestions(qs))
	r.writeCache(ctx, itemID, qs)
	return qs, nil
}

func (r *QuestionCacheRepo) hit(layer string) {
	if r.metrics != nil {
		r.metrics.Hits.WithLabelValues(layer).Inc()
	}
}

func (r *QuestionCacheRepo) writeCache(ctx context.Context, itemID uuid.UUID, qs []domain.VerificationQuestion) {
	if r.rdb == nil {
		return
	}

	encoded, err := json.Marshal(qs)
	if err != nil {
		slog.WarnContext(ctx, "Failed to marshal questions for Redis cache", "item_id", itemID, "error", err)
		return
	}

	if err := r.rdb.Set(ctx, questionCacheKey(itemID), encoded, questionCacheTTL).Err(); err != nil {
		slog.WarnContext(ctx, "Failed to populate Redis question cache", "item_id", itemID, "error", err)
	}
}

func (r *QuestionCacheRepo) getCached(ctx context.Context, itemID uuid.UUID) ([]domain.VerificationQuestion, bool) {
	if r.rdb == nil {
		return nil, false
	}

	data, err := r.rdb.Get(ctx, questionCacheKey(itemID)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			slog.WarnContext(ctx, "Redis question cache GET failed", "item_id", itemID, "error", err)
		}
		return nil, false
	}

	var qs []domain.VerificationQuestion
	if err := json.Unmarshal(data, &qs); err != nil {
		slog.WarnContext(ctx, "Failed to unmarshal cached questions", "item_id", itemID, "error", err)
		return nil, false
	}
	return qs, true
}

func questionCacheKey(itemID uuid.UUID) string {
	return fmt.Sprintf("question_cache:%s", itemID)
}

func cloneQuestions(qs []domain.VerificationQuestion) []domain.VerificationQuestion {
	return append([]domain.VerificationQuestion(nil), qs...)
}
