package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/domain"
)

// Decision is the committed outcome of a review: the decided claim, the item
// after status recomputation and the claims superseded as a side effect.
type Decision struct {
	Claim      domain.Claim
	Item       domain.Item
	Superseded []domain.Claim
}

// loadForReview loads a claim and its item and checks that reviewerID is the item's finder.
func (s *Service) loadForReview(ctx context.Context, claimID uuid.UUID, reviewerID string) (*domain.Claim, *domain.Item, error) {
	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		return nil, nil, err
	}
	item, err := s.items.GetByID(ctx, claim.ItemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load item of claim %s: %w", claimID, err)
	}
	if item.FinderID != reviewerID {
		return nil, nil, domain.ErrNotItemFinder
	}
	return claim, item, nil
}

// ApproveClaim approves a submitted claim, supersedes every other submitted
// claim on the item and marks the item returned, all in one transaction.
func (s *Service) ApproveClaim(ctx context.Context, claimID uuid.UUID, reviewerID string) (*Decision, error) {
	claim, item, err := s.loadForReview(ctx, claimID, reviewerID)
	if err != nil {
		return nil, err
	}
	if claim.Status.Terminal() {
		return nil, domain.ErrClaimDecided
	}

	var d Decision
	err = s.tx.WithItemLock(ctx, item.ID, func(ctx context.Context, tx domain.ItemTx) error {
		d = Decision{}
		claims, err := tx.Claims(ctx)
		if err != nil {
			return fmt.Errorf("failed to load claims: %w", err)
		}
		idx := slices.IndexFunc(claims, func(c domain.Claim) bool { return c.ID == claimID })
		if idx < 0 {
			return domain.ErrClaimNotFound
		}
		if claims[idx].Status != domain.ClaimSubmitted {
			return domain.ErrClaimDecided
		}

		now := s.clock.Now()
		if err := tx.SetClaimStatus(ctx, claimID, domain.ClaimApproved, reviewerID, now); err != nil {
			return fmt.Errorf("failed to approve claim: %w", err)
		}
		d.Claim = decided(claims[idx], domain.ClaimApproved, reviewerID, now)

		for _, sibling := range claims {
			if sibling.ID == claimID || sibling.Status != domain.ClaimSubmitted {
				continue
			}
			if err := tx.SetClaimStatus(ctx, sibling.ID, domain.ClaimSuperseded, reviewerID, now); err != nil {
				return fmt.Errorf("failed to supersede claim %s: %w", sibling.ID, err)
			}
			d.Superseded = append(d.Superseded, decided(sibling, domain.ClaimSuperseded, reviewerID, now))
		}

		if err := tx.SetItemStatus(ctx, domain.ItemReturned, now); err != nil {
			return fmt.Errorf("failed to mark item returned: %w", err)
		}
		d.Item = tx.Item()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observer.ClaimDecided(domain.ClaimApproved, 1)
	if len(d.Superseded) > 0 {
		s.observer.ClaimDecided(domain.ClaimSuperseded, len(d.Superseded))
	}
	slog.InfoContext(ctx, "Claim approved", "claim_id", claimID, "item_id", d.Item.ID, "superseded", len(d.Superseded))

	events := []domain.Event{s.newEvent(domain.EventClaimApproved, d.Claim.ClaimantID, d.Item, d.Claim)}
	for _, c := range d.Superseded {
		events = append(events, s.newEvent(domain.EventClaimSuperseded, c.ClaimantID, d.Item, c))
	}
	s.publish(ctx, events...)

	return &d, nil
}

// RejectClaim rejects a submitted claim and recomputes the item status.
// Sibling claims are left untouched.
func (s *Service) RejectClaim(ctx context.Context, claimID uuid.UUID, reviewerID string) (*Decision, error) {
	claim, item, err := s.loadForReview(ctx, claimID, reviewerID)
	if err != nil {
		return nil, err
	}
	if claim.Status.Terminal() {
		return nil, domain.ErrClaimDecided
	}

	var d Decision
	err = s.tx.WithItemLock(ctx, item.ID, func(ctx context.Context, tx domain.ItemTx) error {
		d = Decision{}
		claims, err := tx.Claims(ctx)
		if err != nil {
			return fmt.Errorf("failed to load claims: %w", err)
		}
		idx := slices.IndexFunc(claims, func(c domain.Claim) bool { return c.ID == claimID })
		if idx < 0 {
			return domain.ErrClaimNotFound
		}
		if claims[idx].Status != domain.ClaimSubmitted {
			return domain.ErrClaimDecided
		}

		now := s.clock.Now()
		if err := tx.SetClaimStatus(ctx, claimID, domain.ClaimRejected, reviewerID, now); err != nil {
			return fmt.Errorf("failed to reject claim: %w", err)
		}
		claims[idx] = decided(claims[idx], domain.ClaimRejected, reviewerID, now)
		d.Claim = claims[idx]

		if status := domain.DeriveItemStatus(claims); status != tx.Item().Status {
			if err := tx.SetItemStatus(ctx, status, now); err != nil {
				return fmt.Errorf("failed to update item status: %w", err)
			}
		}
		d.Item = tx.Item()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observer.ClaimDecided(domain.ClaimRejected, 1)
	slog.InfoContext(ctx, "Claim rejected", "claim_id", claimID, "item_id", d.Item.ID, "item_status", d.Item.Status)
	s.publish(ctx, s.newEvent(domain.EventClaimRejected, d.Claim.ClaimantID, d.Item, d.Claim))

	return &d, nil
}

func decided(c domain.Claim, status domain.ClaimStatus, by string, at time.Time) domain.Claim {
	c.Status = status
	c.DecidedBy = by
	c.DecidedAt = &at
	return c
}
