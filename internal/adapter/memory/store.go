// Package memory is a process-local implementation of the storage ports,
// used for development, single-instance deployments and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/domain"
)

// Store holds items, questions and claims in maps guarded by one RWMutex.
// Item-scoped transactions additionally hold a per-item mutex for their whole
// duration, so transactions on different items never wait for each other.
type Store struct {
	mu        sync.RWMutex
	items     map[uuid.UUID]domain.Item
	itemOrder []uuid.UUID
	questions map[uuid.UUID][]domain.VerificationQuestion
	claims    map[uuid.UUID]domain.Claim
	byItem    map[uuid.UUID][]uuid.UUID
	claimSeq  []uuid.UUID

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		items:     make(map[uuid.UUID]domain.Item),
		questions: make(map[uuid.UUID][]domain.VerificationQuestion),
		claims:    make(map[uuid.UUID]domain.Claim),
		byItem:    make(map[uuid.UUID][]uuid.UUID),
		locks:     make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Store) Items() *ItemRepo         { return &ItemRepo{s: s} }
func (s *Store) Questions() *QuestionRepo { return &QuestionRepo{s: s} }
func (s *Store) Claims() *ClaimRepo       { return &ClaimRepo{s: s} }
func (s *Store) Transactor() *Transactor  { return &Transactor{s: s} }

func (s *Store) itemLock(itemID uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[itemID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[itemID] = l
	}
	return l
}

func cloneClaim(c domain.Claim) domain.Claim {
	c.Answers = slices.Clone(c.Answers)
	if c.LostTime != nil {
		t := *c.LostTime
		c.LostTime = &t
	}
	if c.DecidedAt != nil {
		t := *c.DecidedAt
		c.DecidedAt = &t
	}
	return c
}

// --- Items ---

type ItemRepo struct{ s *Store }

var _ domain.ItemRepository = (*ItemRepo)(nil)

func (r *ItemRepo) Create(_ context.Context, item *domain.Item, questions []domain.VerificationQuestion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.items[item.ID]; exists {
		return fmt.Errorf("item %s already exists", item.ID)
	}
	r.s.items[item.ID] = *item
	r.s.itemOrder = append(r.s.itemOrder, item.ID)
	r.s.questions[item.ID] = slices.Clone(questions)
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, itemID uuid.UUID) (*domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &item, nil
}

func (r *ItemRepo) List(_ context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Item, 0)
	for _, id := range r.s.itemOrder {
		if item := r.s.items[id]; filter.Matches(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// --- Questions ---

type QuestionRepo struct{ s *Store }

var _ domain.QuestionRepository = (*QuestionRepo)(nil)

func (r *QuestionRepo) ListByItem(_ context.Context, itemID uuid.UUID) ([]domain.VerificationQuestion, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.items[itemID]; !ok {
		return nil, domain.ErrItemNotFound
	}
	return slices.Clone(r.s.questions[itemID]), nil
}

// --- Claims ---

type ClaimRepo struct{ s *Store }

var _ domain.ClaimRepository = (*ClaimRepo)(nil)

func (r *ClaimRepo) GetByID(_ context.Context, claimID uuid.UUID) (*domain.Claim, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.claims[claimID]
	if !ok {
		return nil, domain.ErrClaimNotFound
	}
	c = cloneClaim(c)
	return &c, nil
}

func (r *ClaimRepo) ListByItem(_ context.Context, itemID uuid.UUID) ([]domain.Claim, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := r.s.byItem[itemID]
	out := make([]domain.Claim, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneClaim(r.s.claims[id]))
	}
	return out, nil
}

func (r *ClaimRepo) ListByClaimant(_ context.Context, claimantID string) ([]domain.ClaimView, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.ClaimView, 0)
	for _, id := range r.s.claimSeq {
		c := r.s.claims[id]
		if c.ClaimantID != claimantID {
			continue
		}
		item := r.s.items[c.ItemID]
		out = append(out, domain.ClaimView{Claim: cloneClaim(c), ItemTitle: item.Title, ItemStatus: item.Status})
	}
	return out, nil
}

func (r *ClaimRepo) ListByStatus(_ context.Context, status domain.ClaimStatus) ([]domain.Claim, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Claim, 0)
	for _, id := range r.s.claimSeq {
		if c := r.s.claims[id]; c.Status == status {
			out = append(out, cloneClaim(c))
		}
	}
	return out, nil
}

func (r *ClaimRepo) UpdateScore(_ context.Context, claimID uuid.UUID, score int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.claims[claimID]
	if !ok {
		return domain.ErrClaimNotFound
	}
	if c.Status != domain.ClaimSubmitted {
		return domain.ErrClaimDecided
	}
	c.CompositeScore = score
	r.s.claims[claimID] = c
	return nil
}

// --- Transactions ---

type Transactor struct{ s *Store }

var _ domain.ItemTransactor = (*Transactor)(nil)

func (t *Transactor) WithItemLock(ctx context.Context, itemID uuid.UUID, fn func(ctx context.Context, tx domain.ItemTx) error) error {
	lock := t.s.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	t.s.mu.RLock()
	item, ok := t.s.items[itemID]
	t.s.mu.RUnlock()
	if !ok {
		return domain.ErrItemNotFound
	}

	tx := &itemTx{s: t.s, item: item, updated: make(map[uuid.UUID]domain.Claim)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// itemTx stages writes and applies them on commit. Reads see committed state
// overlaid with the staged writes.
type itemTx struct {
	s           *Store
	item        domain.Item
	itemChanged bool
	inserted    []domain.Claim
	updated     map[uuid.UUID]domain.Claim
}

func (tx *itemTx) Item() domain.Item { return tx.item }

func (tx *itemTx) Claims(_ context.Context) ([]domain.Claim, error) {
	tx.s.mu.RLock()
	ids := tx.s.byItem[tx.item.ID]
	out := make([]domain.Claim, 0, len(ids)+len(tx.inserted))
	for _, id := range ids {
		out = append(out, cloneClaim(tx.s.claims[id]))
	}
	tx.s.mu.RUnlock()

	out = append(out, tx.inserted...)
	for i := range out {
		if c, ok := tx.updated[out[i].ID]; ok {
			out[i] = cloneClaim(c)
		}
	}
	return out, nil
}

func (tx *itemTx) InsertClaim(_ context.Context, claim *domain.Claim) error {
	if claim.ItemID != tx.item.ID {
		return fmt.Errorf("claim %s belongs to item %s, not %s", claim.ID, claim.ItemID, tx.item.ID)
	}
	tx.inserted = append(tx.inserted, cloneClaim(*claim))
	return nil
}

func (tx *itemTx) SetClaimStatus(ctx context.Context, claimID uuid.UUID, status domain.ClaimStatus, decidedBy string, decidedAt time.Time) error {
	claims, err := tx.Claims(ctx)
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(claims, func(c domain.Claim) bool { return c.ID == claimID })
	if idx < 0 {
		return domain.ErrClaimNotFound
	}

	c := claims[idx]
	if c.Status.Terminal() {
		return domain.ErrClaimDecided
	}
	c.Status = status
	c.DecidedBy = decidedBy
	c.DecidedAt = &decidedAt
	tx.updated[claimID] = c
	return nil
}

func (tx *itemTx) SetItemStatus(_ context.Context, status domain.ItemStatus, at time.Time) error {
	tx.item.Status = status
	tx.item.UpdatedAt = at
	tx.itemChanged = true
	return nil
}

func (tx *itemTx) commit() {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	for _, c := range tx.inserted {
		tx.s.claims[c.ID] = c
		tx.s.byItem[c.ItemID] = append(tx.s.byItem[c.ItemID], c.ID)
		tx.s.claimSeq = append(tx.s.claimSeq, c.ID)
	}
	for id, c := range tx.updated {
		tx.s.claims[id] = c
	}
	if tx.itemChanged {
		tx.s.items[tx.item.ID] = tx.item
	}
}
