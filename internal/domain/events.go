package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventClaimSubmitted  EventType = "claim_submitted"
	EventClaimApproved   EventType = "claim_approved"
	EventClaimRejected   EventType = "claim_rejected"
	EventClaimSuperseded EventType = "claim_superseded"
)

// Event is a notification about a claim, addressed to a single actor.
type Event struct {
	Type        EventType `json:"type"`
	RecipientID string    `json:"recipient_id"`
	ItemID      uuid.UUID `json:"item_id"`
	ItemTitle   string    `json:"item_title"`
	ClaimID     uuid.UUID `json:"claim_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventPublisher delivers events to infrastructure. Delivery is best-effort:
// callers log failures and never roll back on them.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// SubmissionGuard throttles repeated submissions by one claimant for one item.
type SubmissionGuard interface {
	// Allow returns false if the claimant submitted for the item within the cooldown.
	Allow(ctx context.Context, itemID uuid.UUID, claimantID string) (bool, error)
}
