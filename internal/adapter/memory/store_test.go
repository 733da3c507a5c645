package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func seedItem(t *testing.T, s *Store, title string) domain.Item {
	t.Helper()
	item := domain.Item{
		ID:            uuid.New(),
		FinderID:      "finder-1",
		Title:         title,
		Category:      "bags",
		FoundLocation: "Library",
		FoundAt:       now,
		Status:        domain.ItemAvailable,
	}
	q := domain.VerificationQuestion{ID: uuid.New(), ItemID: item.ID, Prompt: "Colour?", ExpectedAnswer: "red"}
	require.NoError(t, s.Items().Create(context.Background(), &item, []domain.VerificationQuestion{q}))
	return item
}

func insertClaim(t *testing.T, s *Store, itemID uuid.UUID, claimant string) domain.Claim {
	t.Helper()
	c := domain.Claim{ID: uuid.New(), ItemID: itemID, ClaimantID: claimant, Status: domain.ClaimSubmitted, SubmittedAt: now}
	err := s.Transactor().WithItemLock(context.Background(), itemID, func(ctx context.Context, tx domain.ItemTx) error {
		return tx.InsertClaim(ctx, &c)
	})
	require.NoError(t, err)
	return c
}

func TestItemRepo_CreateGetList(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	a := seedItem(t, s, "Red backpack")
	b := seedItem(t, s, "Blue umbrella")

	got, err := s.Items().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Red backpack", got.Title)

	all, err := s.Items().List(ctx, domain.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, b.ID, all[1].ID)

	filtered, err := s.Items().List(ctx, domain.ItemFilter{Text: "umbrella"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, b.ID, filtered[0].ID)

	_, err = s.Items().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemRepo_DuplicateID(t *testing.T) {
	s := NewStore()
	item := seedItem(t, s, "Wallet")
	assert.Error(t, s.Items().Create(context.Background(), &item, nil))
}

func TestQuestionRepo_ListByItem(t *testing.T) {
	s := NewStore()
	item := seedItem(t, s, "Wallet")

	qs, err := s.Questions().ListByItem(context.Background(), item.ID)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "red", qs[0].ExpectedAnswer)

	_, err = s.Questions().ListByItem(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestClaimRepo_Lists(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	item := seedItem(t, s, "Wallet")
	c1 := insertClaim(t, s, item.ID, "alice")
	c2 := insertClaim(t, s, item.ID, "bob")

	byItem, err := s.Claims().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, byItem, 2)
	assert.Equal(t, c1.ID, byItem[0].ID)
	assert.Equal(t, c2.ID, byItem[1].ID)

	mine, err := s.Claims().ListByClaimant(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Wallet", mine[0].ItemTitle)
	assert.Equal(t, c2.ID, mine[0].ID)

	submitted, err := s.Claims().ListByStatus(ctx, domain.ClaimSubmitted)
	require.NoError(t, err)
	assert.Len(t, submitted, 2)
}

func TestClaimRepo_UpdateScore(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	item := seedItem(t, s, "Wallet")
	c := insertClaim(t, s, item.ID, "alice")

	require.NoError(t, s.Claims().UpdateScore(ctx, c.ID, 77))
	got, err := s.Claims().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 77, got.CompositeScore)

	err = s.Transactor().WithItemLock(ctx, item.ID, func(ctx context.Context, tx domain.ItemTx) error {
		return tx.SetClaimStatus(ctx, c.ID, domain.ClaimRejected, "finder-1", now)
	})
	require.NoError(t, err)

	assert.ErrorIs(t, s.Claims().UpdateScore(ctx, c.ID, 10), domain.ErrClaimDecided)
	assert.ErrorIs(t, s.Claims().UpdateScore(ctx, uuid.New(), 10), domain.ErrClaimNotFound)
}

func TestTransactor_RollbackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	item := seedItem(t, s, "Wallet")
	c := insertClaim(t, s, item.ID, "alice")
	boom := errors.New("boom")

	err := s.Transactor().WithItemLock(ctx, item.ID, func(ctx context.Context, tx domain.ItemTx) error {
		require.NoError(t, tx.SetClaimStatus(ctx, c.ID, domain.ClaimApproved, "finder-1", now))
		require.NoError(t, tx.SetItemStatus(ctx, domain.ItemReturned, now))
		extra := domain.Claim{ID: uuid.New(), ItemID: item.ID, ClaimantID: "bob", Status: domain.ClaimSubmitted}
		require.NoError(t, tx.InsertClaim(ctx, &extra))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Claims().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimSubmitted, got.Status)

	gotItem, err := s.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemAvailable, gotItem.Status)

	claims, err := s.Claims().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, claims, 1)
}

func TestTransactor_ReadsSeeStagedWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	item := seedItem(t, s, "Wallet")
	c := insertClaim(t, s, item.ID, "alice")

	err := s.Transactor().WithItemLock(ctx, item.ID, func(ctx context.Context, tx domain.ItemTx) error {
		require.NoError(t, tx.SetClaimStatus(ctx, c.ID, domain.ClaimRejected, "finder-1", now))
		require.NoError(t, tx.SetItemStatus(ctx, domain.ItemAvailable, now))

		claims, err := tx.Claims(ctx)
		require.NoError(t, err)
		require.Len(t, claims, 1)
		assert.Equal(t, domain.ClaimRejected, claims[0].Status)
		assert.Equal(t, "finder-1", claims[0].DecidedBy)

		assert.ErrorIs(t, tx.SetClaimStatus(ctx, c.ID, domain.ClaimApproved, "finder-1", now), domain.ErrClaimDecided)
		return nil
	})
	require.NoError(t, err)
}

func TestTransactor_UnknownItem(t *testing.T) {
	s := NewStore()
	err := s.Transactor().WithItemLock(context.Background(), uuid.New(), func(context.Context, domain.ItemTx) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestTransactor_InsertForOtherItemFails(t *testing.T) {
	s := NewStore()
	item := seedItem(t, s, "Wallet")

	err := s.Transactor().WithItemLock(context.Background(), item.ID, func(ctx context.Context, tx domain.ItemTx) error {
		return tx.InsertClaim(ctx, &domain.Claim{ID: uuid.New(), ItemID: uuid.New()})
	})
	assert.Error(t, err)
}

func TestTransactor_SerializesPerItem(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	item := seedItem(t, s, "Wallet")

	const claimants = 20
	claims := make([]domain.Claim, claimants)
	for i := range claimants {
		claims[i] = insertClaim(t, s, item.ID, uuid.NewString())
	}

	var approvals atomic.Int32
	var wg sync.WaitGroup
	for _, c := range claims {
		wg.Go(func() {
			err := s.Transactor().WithItemLock(ctx, item.ID, func(ctx context.Context, tx domain.ItemTx) error {
				if tx.Item().Status == domain.ItemReturned {
					return domain.ErrItemReturned
				}
				if err := tx.SetClaimStatus(ctx, c.ID, domain.ClaimApproved, "finder-1", now); err != nil {
					return err
				}
				return tx.SetItemStatus(ctx, domain.ItemReturned, now)
			})
			if err == nil {
				approvals.Add(1)
			}
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), approvals.Load())
}
