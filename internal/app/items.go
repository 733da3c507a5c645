package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/domain"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

// ItemDetail is an item with the claimant-facing view of its questions.
type ItemDetail struct {
	Item      domain.Item
	Questions []domain.PublicQuestion
}

// Dashboard summarises an actor's activity as finder and as claimant.
type Dashboard struct {
	ItemsFound      int
	ItemsReturned   int
	PendingReviews  int
	ClaimsSubmitted int
}

// ReportItem validates and stores a found item with its verification questions.
func (s *Service) ReportItem(ctx context.Context, req domain.ReportItemRequest) (*domain.Item, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	req.FoundLocation = strings.TrimSpace(req.FoundLocation)
	req.Description = strings.TrimSpace(req.Description)

	if err := validateReport(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	item := &domain.Item{
		ID:            uuid.New(),
		FinderID:      req.FinderID,
		Title:         req.Title,
		Category:      req.Category,
		Description:   req.Description,
		FoundLocation: req.FoundLocation,
		FoundAt:       req.FoundAt,
		PhotoRef:      strings.TrimSpace(req.PhotoRef),
		Status:        domain.ItemAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	questions := make([]domain.VerificationQuestion, len(req.Questions))
	for i, q := range req.Questions {
		questions[i] = domain.VerificationQuestion{
			ID:             uuid.New(),
			ItemID:         item.ID,
			Position:       i,
			Prompt:         strings.TrimSpace(q.Prompt),
			ExpectedAnswer: strings.TrimSpace(q.ExpectedAnswer),
		}
	}

	if err := s.items.Create(ctx, item, questions); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return item, nil
}

func validateReport(req domain.ReportItemRequest) error {
	switch {
	case req.FinderID == "":
		return domain.NewValidationError("finder_id", "finder is required")
	case req.Title == "":
		return domain.NewValidationError("title", "title is required")
	case len(req.Title) > maxTitleLength:
		return domain.NewValidationError("title", fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	case req.Category == "":
		return domain.NewValidationError("category", "category is required")
	case len(req.Description) > maxDescriptionLength:
		return domain.NewValidationError("description", fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	case req.FoundLocation == "":
		return domain.NewValidationError("found_location", "found location is required")
	case req.FoundAt.IsZero():
		return domain.NewValidationError("found_at", "found time is required")
	}
	return domain.ValidateQuestions(req.Questions)
}

// GetItem returns an item with its public questions.
func (s *Service) GetItem(ctx context.Context, itemID uuid.UUID) (*ItemDetail, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	return &ItemDetail{Item: *item, Questions: domain.PublicQuestions(questions)}, nil
}

func (s *Service) ListItems(ctx context.Context, filter domain.ItemFilter) ([]domain.Item, error) {
	return s.items.List(ctx, filter)
}

func (s *Service) ListMyItems(ctx context.Context, finderID string) ([]domain.Item, error) {
	return s.items.List(ctx, domain.ItemFilter{FinderID: finderID})
}

// Dashboard counts the actor's found items, returned items, claims awaiting
// their review and claims they submitted.
func (s *Service) Dashboard(ctx context.Context, actorID string) (*Dashboard, error) {
	mine, err := s.items.List(ctx, domain.ItemFilter{FinderID: actorID})
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	d := &Dashboard{ItemsFound: len(mine)}
	owned := make(map[uuid.UUID]struct{}, len(mine))
	for _, item := range mine {
		owned[item.ID] = struct{}{}
		if item.Status == domain.ItemReturned {
			d.ItemsReturned++
		}
	}

	pending, err := s.claims.ListByStatus(ctx, domain.ClaimSubmitted)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending claims: %w", err)
	}
	for _, c := range pending {
		if _, ok := owned[c.ItemID]; ok {
			d.PendingReviews++
		}
	}

	submitted, err := s.claims.ListByClaimant(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}
	d.ClaimsSubmitted = len(submitted)

	return d, nil
}
