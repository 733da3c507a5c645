package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/campusfind/internal/adapter/memory"
	"github.com/pscheid92/campusfind/internal/domain"
	"github.com/pscheid92/campusfind/internal/scoring"
	"github.com/stretchr/testify/require"
)

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu        sync.Mutex
	events    []domain.Event
	publishFn func(ctx context.Context, event domain.Event) error
}

func (m *mockPublisher) Publish(ctx context.Context, event domain.Event) error {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.publishFn != nil {
		return m.publishFn(ctx, event)
	}
	return nil
}

func (m *mockPublisher) published() []domain.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Event, len(m.events))
	copy(out, m.events)
	return out
}

// --- Mock SubmissionGuard ---

type mockGuard struct {
	allowFn func(ctx context.Context, itemID uuid.UUID, claimantID string) (bool, error)
}

func (m *mockGuard) Allow(ctx context.Context, itemID uuid.UUID, claimantID string) (bool, error) {
	if m.allowFn != nil {
		return m.allowFn(ctx, itemID, claimantID)
	}
	return true, nil
}

// --- Mock Scorer ---

type mockScorer struct {
	scoreFn func(item domain.Item, questions []domain.VerificationQuestion, claim domain.Claim) domain.MatchResult
}

func (m *mockScorer) Score(item domain.Item, questions []domain.VerificationQuestion, claim domain.Claim) domain.MatchResult {
	if m.scoreFn != nil {
		return m.scoreFn(item, questions, claim)
	}
	return domain.MatchResult{CompositeScore: 50}
}

// --- Mock ClaimObserver ---

type mockObserver struct {
	mu        sync.Mutex
	submitted []int
	throttled int
	decided   map[domain.ClaimStatus]int
}

func (m *mockObserver) ClaimSubmitted(score int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, score)
}

func (m *mockObserver) SubmissionThrottled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.throttled++
}

func (m *mockObserver) ClaimDecided(status domain.ClaimStatus, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decided == nil {
		m.decided = make(map[domain.ClaimStatus]int)
	}
	m.decided[status] += count
}

// --- Test fixture ---

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

const finderID = "finder-1"

type fixture struct {
	svc       *Service
	store     *memory.Store
	publisher *mockPublisher
	guard     *mockGuard
	observer  *mockObserver
	clock     *clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithScorer(t, scoring.NewScorer(scoring.DefaultConfig()))
}

func newFixtureWithScorer(t *testing.T, scorer domain.Scorer) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:     store,
		publisher: &mockPublisher{},
		guard:     &mockGuard{},
		observer:  &mockObserver{},
		clock:     clockwork.NewFakeClockAt(testNow),
	}
	repos := Repositories{
		Items:      store.Items(),
		Questions:  store.Questions(),
		Claims:     store.Claims(),
		Transactor: store.Transactor(),
	}
	f.svc = NewService(repos, scorer, f.publisher, f.guard, f.observer, f.clock)
	t.Cleanup(f.svc.Close)
	return f
}

func walletRequest() domain.ReportItemRequest {
	return domain.ReportItemRequest{
		FinderID:      finderID,
		Title:         "Black leather wallet",
		Category:      "Wallets",
		Description:   "Found under a desk",
		FoundLocation: "Library, 2nd Floor",
		FoundAt:       testNow.Add(-2 * time.Hour),
		PhotoRef:      "blob://photos/1",
		Questions: []domain.QuestionInput{
			{Prompt: "What colour is the inside?", ExpectedAnswer: "brown"},
			{Prompt: "How many cards are in it?", ExpectedAnswer: "three cards"},
			{Prompt: "Which ID card is inside?", ExpectedAnswer: "student id"},
		},
	}
}

// reportWallet reports the standard test item and returns it with its full question set.
func (f *fixture) reportWallet(t *testing.T) (*domain.Item, []domain.VerificationQuestion) {
	t.Helper()
	item, err := f.svc.ReportItem(context.Background(), walletRequest())
	require.NoError(t, err)
	qs, err := f.store.Questions().ListByItem(context.Background(), item.ID)
	require.NoError(t, err)
	return item, qs
}

func (f *fixture) submit(t *testing.T, itemID uuid.UUID, qs []domain.VerificationQuestion, claimant string) *domain.Claim {
	t.Helper()
	claim, err := f.svc.SubmitClaim(context.Background(), domain.SubmitClaimRequest{
		ItemID:       itemID,
		ClaimantID:   claimant,
		LostLocation: "Library 2nd floor",
		Answers:      []domain.Answer{{QuestionID: qs[0].ID, Text: "brown"}},
	})
	require.NoError(t, err)
	return claim
}

func (f *fixture) item(t *testing.T, itemID uuid.UUID) *domain.Item {
	t.Helper()
	item, err := f.store.Items().GetByID(context.Background(), itemID)
	require.NoError(t, err)
	return item
}

func (f *fixture) claim(t *testing.T, claimID uuid.UUID) *domain.Claim {
	t.Helper()
	c, err := f.store.Claims().GetByID(context.Background(), claimID)
	require.NoError(t, err)
	return c
}
