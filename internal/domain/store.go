package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ItemRepository persists items together with their question sets.
type ItemRepository interface {
	Create(ctx context.Context, item *Item, questions []VerificationQuestion) error
	GetByID(ctx context.Context, itemID uuid.UUID) (*Item, error)
	List(ctx context.Context, filter ItemFilter) ([]Item, error)
}

// QuestionRepository reads an item's question set, ordered by position.
// Question sets are immutable once the item is created.
type QuestionRepository interface {
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]VerificationQuestion, error)
}

// ClaimRepository provides read access to claims and score updates. Status
// changes only happen through an ItemTx. Lists are in submission order.
type ClaimRepository interface {
	GetByID(ctx context.Context, claimID uuid.UUID) (*Claim, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]Claim, error)
	ListByClaimant(ctx context.Context, claimantID string) ([]ClaimView, error)
	ListByStatus(ctx context.Context, status ClaimStatus) ([]Claim, error)
	// UpdateScore fails with ErrClaimDecided unless the claim is still submitted.
	UpdateScore(ctx context.Context, claimID uuid.UUID, score int) error
}

// ItemTransactor runs fn with exclusive access to one item and its claims.
// All writes made through tx commit together when fn returns nil and are
// discarded otherwise. Calls for different items do not block each other.
type ItemTransactor interface {
	WithItemLock(ctx context.Context, itemID uuid.UUID, fn func(ctx context.Context, tx ItemTx) error) error
}

// ItemTx is the set of reads and writes allowed inside an item-scoped transaction.
type ItemTx interface {
	Item() Item
	Claims(ctx context.Context) ([]Claim, error)
	InsertClaim(ctx context.Context, claim *Claim) error
	SetClaimStatus(ctx context.Context, claimID uuid.UUID, status ClaimStatus, decidedBy string, decidedAt time.Time) error
	SetItemStatus(ctx context.Context, status ItemStatus, at time.Time) error
}
