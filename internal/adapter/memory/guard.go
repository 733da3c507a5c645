package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/pscheid92/campusfind/internal/domain"
)

// SubmissionGuard is the single-instance counterpart of the Redis guard. It
// remembers each (item, claimant) pair for the cooldown.
type SubmissionGuard struct {
	seen     *cache.Cache
	cooldown time.Duration
}

var _ domain.SubmissionGuard = (*SubmissionGuard)(nil)

func NewSubmissionGuard(cooldown time.Duration) *SubmissionGuard {
	cleanup := max(cooldown, time.Minute)
	return &SubmissionGuard{
		seen:     cache.New(cooldown, cleanup),
		cooldown: cooldown,
	}
}

func (g *SubmissionGuard) Allow(_ context.Context, itemID uuid.UUID, claimantID string) (bool, error) {
	if g.cooldown <= 0 {
		return true, nil
	}
	// Add fails while an unexpired entry exists.
	err := g.seen.Add(itemID.String()+":"+claimantID, struct{}{}, g.cooldown)
	return err == nil, nil
}
