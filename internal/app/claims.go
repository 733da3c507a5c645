package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/domain"
)

const maxAdditionalInfoLength = 2000

// SubmitClaim validates a claim, scores it and stores it as submitted.
// The claim is inserted under the item lock so it can never land on an item
// that was returned in the meantime.
func (s *Service) SubmitClaim(ctx context.Context, req domain.SubmitClaimRequest) (*domain.Claim, error) {
	item, err := s.items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, err
	}
	if item.Status == domain.ItemReturned {
		return nil, domain.ErrItemReturned
	}

	req.LostLocation = strings.TrimSpace(req.LostLocation)
	req.AdditionalInfo = strings.TrimSpace(req.AdditionalInfo)
	if req.ClaimantID == "" {
		return nil, domain.NewValidationError("claimant_id", "claimant is required")
	}
	if req.LostLocation == "" {
		return nil, domain.NewValidationError("lost_location", "lost location is required")
	}
	if len(req.AdditionalInfo) > maxAdditionalInfoLength {
		return nil, domain.NewValidationError("additional_info", fmt.Sprintf("additional info must be at most %d characters", maxAdditionalInfoLength))
	}
	// A later duplicate replaces an earlier answer, so only the collapsed set counts.
	answers := domain.CollapseAnswers(req.Answers)
	if !domain.HasNonEmptyAnswer(answers) {
		return nil, domain.NewValidationError("answers", "at least one answer is required")
	}

	questions, err := s.questions.ListByItem(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	if err := checkAnswersBelong(answers, questions); err != nil {
		return nil, err
	}

	if err := s.checkGuard(ctx, item.ID, req.ClaimantID); err != nil {
		return nil, err
	}

	claim := &domain.Claim{
		ID:             uuid.New(),
		ItemID:         item.ID,
		ClaimantID:     req.ClaimantID,
		LostLocation:   req.LostLocation,
		LostTime:       req.LostTime,
		Answers:        answers,
		AdditionalInfo: req.AdditionalInfo,
		SubmittedAt:    s.clock.Now(),
		Status:         domain.ClaimSubmitted,
	}
	claim.CompositeScore = s.scorer.Score(*item, questions, *claim).CompositeScore

	var locked domain.Item
	err = s.tx.WithItemLock(ctx, item.ID, func(ctx context.Context, tx domain.ItemTx) error {
		locked = tx.Item()
		if locked.Status == domain.ItemReturned {
			return domain.ErrItemReturned
		}
		if err := tx.InsertClaim(ctx, claim); err != nil {
			return fmt.Errorf("failed to insert claim: %w", err)
		}
		if locked.Status != domain.ItemClaimPending {
			if err := tx.SetItemStatus(ctx, domain.ItemClaimPending, claim.SubmittedAt); err != nil {
				return fmt.Errorf("failed to update item status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.observer.ClaimSubmitted(claim.CompositeScore)
	slog.InfoContext(ctx, "Claim submitted", "claim_id", claim.ID, "item_id", item.ID, "score", claim.CompositeScore)
	s.publish(ctx, s.newEvent(domain.EventClaimSubmitted, locked.FinderID, locked, *claim))

	return claim, nil
}

func checkAnswersBelong(answers []domain.Answer, questions []domain.VerificationQuestion) error {
	known := make(map[uuid.UUID]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	for _, a := range answers {
		if _, ok := known[a.QuestionID]; !ok {
			return domain.NewValidationError("answers.question_id", fmt.Sprintf("question %s does not belong to this item", a.QuestionID))
		}
	}
	return nil
}

// checkGuard enforces the per-claimant submission cooldown. Guard failures
// let the submission through.
func (s *Service) checkGuard(ctx context.Context, itemID uuid.UUID, claimantID string) error {
	if s.guard == nil {
		return nil
	}
	allowed, err := s.guard.Allow(ctx, itemID, claimantID)
	if err != nil {
		slog.WarnContext(ctx, "Submission guard failed, allowing claim", "item_id", itemID, "claimant", claimantID, "error", err)
		return nil
	}
	if !allowed {
		s.observer.SubmissionThrottled()
		return domain.ErrSubmissionThrottled
	}
	return nil
}

// ListClaimsForItem returns all claims on an item. Only the item's finder may see them.
func (s *Service) ListClaimsForItem(ctx context.Context, itemID uuid.UUID, reviewerID string) ([]domain.Claim, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.FinderID != reviewerID {
		return nil, domain.ErrNotItemFinder
	}
	return s.claims.ListByItem(ctx, itemID)
}

func (s *Service) ListMyClaims(ctx context.Context, claimantID string) ([]domain.ClaimView, error) {
	return s.claims.ListByClaimant(ctx, claimantID)
}

type rescoreResult struct {
	claim  *domain.Claim
	result domain.MatchResult
}

// RescoreClaim recomputes and stores the score of a submitted claim.
// Concurrent calls for the same claim and reviewer share one computation.
func (s *Service) RescoreClaim(ctx context.Context, claimID uuid.UUID, reviewerID string) (*domain.Claim, domain.MatchResult, error) {
	v, err, _ := s.rescoreGroup.Do(claimID.String()+"/"+reviewerID, func() (any, error) {
		claim, item, err := s.loadForReview(ctx, claimID, reviewerID)
		if err != nil {
			return nil, err
		}
		if claim.Status != domain.ClaimSubmitted {
			return nil, domain.ErrClaimDecided
		}

		result, err := s.score(ctx, *item, *claim)
		if err != nil {
			return nil, err
		}
		if err := s.claims.UpdateScore(ctx, claim.ID, result.CompositeScore); err != nil {
			return nil, err
		}
		claim.CompositeScore = result.CompositeScore
		return rescoreResult{claim: claim, result: result}, nil
	})
	if err != nil {
		return nil, domain.MatchResult{}, err
	}
	r := v.(rescoreResult)
	claimCopy := *r.claim
	return &claimCopy, r.result, nil
}

func (s *Service) score(ctx context.Context, item domain.Item, claim domain.Claim) (domain.MatchResult, error) {
	questions, err := s.questions.ListByItem(ctx, item.ID)
	if err != nil {
		return domain.MatchResult{}, fmt.Errorf("failed to load questions: %w", err)
	}
	return s.scorer.Score(item, questions, claim), nil
}

// RescoreReport summarises a bulk rescoring run.
type RescoreReport struct {
	Scanned int
	Changed int
	Skipped int
}

// RescoreSubmitted recomputes the score of every submitted claim, for example
// after the scoring configuration changed. With dryRun no scores are written.
func (s *Service) RescoreSubmitted(ctx context.Context, dryRun bool) (RescoreReport, error) {
	var report RescoreReport

	claims, err := s.claims.ListByStatus(ctx, domain.ClaimSubmitted)
	if err != nil {
		return report, fmt.Errorf("failed to list submitted claims: %w", err)
	}

	items := make(map[uuid.UUID]*domain.Item)
	for _, c := range claims {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++

		item, ok := items[c.ItemID]
		if !ok {
			item, err = s.items.GetByID(ctx, c.ItemID)
			if err != nil {
				return report, fmt.Errorf("failed to load item %s: %w", c.ItemID, err)
			}
			items[c.ItemID] = item
		}

		result, err := s.score(ctx, *item, c)
		if err != nil {
			return report, err
		}
		if result.CompositeScore == c.CompositeScore {
			continue
		}
		if dryRun {
			report.Changed++
			continue
		}

		err = s.claims.UpdateScore(ctx, c.ID, result.CompositeScore)
		switch {
		case errors.Is(err, domain.ErrClaimDecided):
			report.Skipped++
		case err != nil:
			return report, fmt.Errorf("failed to update claim %s: %w", c.ID, err)
		default:
			report.Changed++
		}
	}
	return report, nil
}
