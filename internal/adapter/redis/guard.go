package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// SubmissionGuard implements domain.SubmissionGuard with one SET NX key per
// item and claimant that expires after the cooldown.
type SubmissionGuard struct {
	rdb      goredis.Cmdable
	cooldown time.Duration
}

var _ domain.SubmissionGuard = (*SubmissionGuard)(nil)

func NewSubmissionGuard(rdb goredis.Cmdable, cooldown time.Duration) *SubmissionGuard {
	return &SubmissionGuard{rdb: rdb, cooldown: cooldown}
}

// Allow returns false if the claimant already submitted for the item within
// the cooldown. An allowed call starts a new cooldown.
func (g *SubmissionGuard) Allow(ctx context.Context, itemID uuid.UUID, claimantID string) (bool, error) {
	if g.cooldown <= 0 {
		return true, nil
	}

	args := goredis.SetArgs{TTL: g.cooldown, Mode: "NX"}
	_, err := g.rdb.SetArgs(ctx, guardKey(itemID, claimantID), "1", args).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to set submission guard: %w", err)
	}
	return true, nil
}

func guardKey(itemID uuid.UUID, claimantID string) string {
	return "submission_guard:" + itemID.String() + ":" + claimantID
}
