package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveItemStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []ClaimStatus
		want     ItemStatus
	}{
		{"no claims", nil, ItemAvailable},
		{"all rejected", []ClaimStatus{ClaimRejected, ClaimRejected}, ItemAvailable},
		{"one submitted", []ClaimStatus{ClaimRejected, ClaimSubmitted}, ItemClaimPending},
		{"approved wins", []ClaimStatus{ClaimSubmitted, ClaimApproved, ClaimSuperseded}, ItemReturned},
		{"superseded only", []ClaimStatus{ClaimSuperseded}, ItemAvailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := make([]Claim, len(tt.statuses))
			for i, s := range tt.statuses {
				claims[i].Status = s
			}
			assert.Equal(t, tt.want, DeriveItemStatus(claims))
		})
	}
}

func TestParseItemStatus(t *testing.T) {
	s, ok := ParseItemStatus("claim_pending")
	assert.True(t, ok)
	assert.Equal(t, ItemClaimPending, s)

	_, ok = ParseItemStatus("lost")
	assert.False(t, ok)
}

func TestItemFilter_Matches(t *testing.T) {
	item := Item{
		FinderID:      "finder-1",
		Title:         "Blue umbrella",
		Category:      "Accessories",
		Description:   "Folding, wooden handle",
		FoundLocation: "Main Library entrance",
		Status:        ItemAvailable,
	}

	tests := []struct {
		name   string
		filter ItemFilter
		want   bool
	}{
		{"empty filter", ItemFilter{}, true},
		{"category case-insensitive", ItemFilter{Category: "accessories"}, true},
		{"category must be equal", ItemFilter{Category: "access"}, false},
		{"location substring", ItemFilter{Location: "library"}, true},
		{"location mismatch", ItemFilter{Location: "gym"}, false},
		{"text in title", ItemFilter{Text: "UMBRELLA"}, true},
		{"text in description", ItemFilter{Text: "wooden"}, true},
		{"text in category", ItemFilter{Text: "accessor"}, true},
		{"text mismatch", ItemFilter{Text: "wallet"}, false},
		{"status match", ItemFilter{Status: ItemAvailable}, true},
		{"status mismatch", ItemFilter{Status: ItemReturned}, false},
		{"finder mismatch", ItemFilter{FinderID: "finder-2"}, false},
		{"combined", ItemFilter{Category: "Accessories", Location: "main", Text: "blue", FinderID: "finder-1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(item))
		})
	}
}

func TestErrorCategories(t *testing.T) {
	assert.True(t, errors.Is(ErrItemNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrClaimNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrItemReturned, ErrConflict))
	assert.True(t, errors.Is(ErrClaimDecided, ErrConflict))
	assert.True(t, errors.Is(ErrNotItemFinder, ErrForbidden))
	assert.True(t, errors.Is(ErrSubmissionThrottled, ErrThrottled))

	var err error = NewValidationError("title", "title is required")
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "title: title is required", err.Error())
}
