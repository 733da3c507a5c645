package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/campusfind/internal/domain"
	"golang.org/x/sync/singleflight"
)

const eventPublishTimeout = 5 * time.Second

// Repositories bundles the storage ports the service depends on.
type Repositories struct {
	Items      domain.ItemRepository
	Questions  domain.QuestionRepository
	Claims     domain.ClaimRepository
	Transactor domain.ItemTransactor
}

// ClaimObserver receives claim lifecycle signals, typically for metrics.
type ClaimObserver interface {
	ClaimSubmitted(score int)
	SubmissionThrottled()
	ClaimDecided(status domain.ClaimStatus, count int)
}

type noopObserver struct{}

func (noopObserver) ClaimSubmitted(int)                   {}
func (noopObserver) SubmissionThrottled()                 {}
func (noopObserver) ClaimDecided(domain.ClaimStatus, int) {}

// Service is the application layer. It is the only component that combines
// storage, scoring and event delivery.
type Service struct {
	items     domain.ItemRepository
	questions domain.QuestionRepository
	claims    domain.ClaimRepository
	tx        domain.ItemTransactor
	scorer    domain.Scorer
	events    domain.EventPublisher
	guard     domain.SubmissionGuard
	observer  ClaimObserver
	clock     clockwork.Clock

	rescoreGroup singleflight.Group
	eventsWg     sync.WaitGroup
}

// NewService creates the application service.
// guard and observer may be nil.
func NewService(repos Repositories, scorer domain.Scorer, events domain.EventPublisher, guard domain.SubmissionGuard, observer ClaimObserver, clock clockwork.Clock) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Service{
		items:     repos.Items,
		questions: repos.Questions,
		claims:    repos.Claims,
		tx:        repos.Transactor,
		scorer:    scorer,
		events:    events,
		guard:     guard,
		observer:  observer,
		clock:     clock,
	}
}

// Close waits for in-flight event deliveries.
func (s *Service) Close() {
	s.eventsWg.Wait()
}

// publish delivers events in the background. The request's values (such as
// the correlation id) are kept but its cancellation is not.
func (s *Service) publish(ctx context.Context, events ...domain.Event) {
	if s.events == nil || len(events) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	s.eventsWg.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, eventPublishTimeout)
		defer cancel()

		for _, ev := range events {
			if err := s.events.Publish(ctx, ev); err != nil {
				slog.WarnContext(ctx, "Event delivery failed", "type", ev.Type, "claim_id", ev.ClaimID, "recipient", ev.RecipientID, "error", err)
			}
		}
	})
}

func (s *Service) newEvent(t domain.EventType, recipient string, item domain.Item, claim domain.Claim) domain.Event {
	return domain.Event{
		Type:        t,
		RecipientID: recipient,
		ItemID:      item.ID,
		ItemTitle:   item.Title,
		ClaimID:     claim.ID,
		OccurredAt:  s.clock.Now(),
	}
}
