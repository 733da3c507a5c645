package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ItemStatus is derived from the item's claims and never set directly by callers.
type ItemStatus string

const (
	ItemAvailable    ItemStatus = "available"
	ItemClaimPending ItemStatus = "claim_pending"
	ItemReturned     ItemStatus = "returned"
)

// ParseItemStatus converts a string to an ItemStatus, reporting false for unknown values.
func ParseItemStatus(s string) (ItemStatus, bool) {
	switch ItemStatus(s) {
	case ItemAvailable, ItemClaimPending, ItemReturned:
		return ItemStatus(s), true
	default:
		return "", false
	}
}

type Item struct {
	ID            uuid.UUID
	FinderID      string
	Title         string
	Category      string
	Description   string
	FoundLocation string
	FoundAt       time.Time
	PhotoRef      string
	Status        ItemStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReportItemRequest bundles the finder-supplied fields for a new item.
type ReportItemRequest struct {
	FinderID      string
	Title         string
	Category      string
	Description   string
	FoundLocation string
	FoundAt       time.Time
	PhotoRef      string
	Questions     []QuestionInput
}

// ItemFilter narrows ListItems. Zero values match everything.
type ItemFilter struct {
	Category string
	Location string
	Text     string
	Status   ItemStatus
	FinderID string
}

// Matches reports whether item satisfies the filter. Stores that filter in
// memory use this; SQL stores implement the same semantics in their queries.
func (f ItemFilter) Matches(item Item) bool {
	if f.Category != "" && !strings.EqualFold(item.Category, f.Category) {
		return false
	}
	if f.Location != "" && !containsFold(item.FoundLocation, f.Location) {
		return false
	}
	if f.Text != "" && !containsFold(item.Title, f.Text) && !containsFold(item.Description, f.Text) && !containsFold(item.Category, f.Text) {
		return false
	}
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.FinderID != "" && item.FinderID != f.FinderID {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// DeriveItemStatus computes an item's status from its claims:
// Returned if any claim is approved, ClaimPending if any is still submitted,
// Available otherwise.
func DeriveItemStatus(claims []Claim) ItemStatus {
	pending := false
	for _, c := range claims {
		switch c.Status {
		case ClaimApproved:
			return ItemReturned
		case ClaimSubmitted:
			pending = true
		}
	}
	if pending {
		return ItemClaimPending
	}
	return ItemAvailable
}
