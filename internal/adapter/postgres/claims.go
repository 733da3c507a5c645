package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/campusfind/internal/domain"
)

const claimColumns = `c.id, c.item_id, c.claimant_id, c.lost_location, c.lost_time, c.answers, c.additional_info,
	c.submitted_at, c.status, c.composite_score, c.decided_by, c.decided_at`

// answerRow is the jsonb representation of one answer.
type answerRow struct {
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ClaimRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ClaimRepository = (*ClaimRepo)(nil)

func NewClaimRepo(pool *pgxpool.Pool) *ClaimRepo {
	return &ClaimRepo{pool: pool}
}

func (r *ClaimRepo) GetByID(ctx context.Context, claimID uuid.UUID) (*domain.Claim, error) {
	rows, _ := r.pool.Query(ctx, `SELECT `+claimColumns+` FROM claims c WHERE c.id = $1`, claimID)
	claim, err := pgx.CollectExactlyOneRow(rows, scanClaim)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrClaimNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}
	return &claim, nil
}

func (r *ClaimRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.Claim, error) {
	return listClaimsByItem(ctx, r.pool, itemID)
}

func (r *ClaimRepo) ListByClaimant(ctx context.Context, claimantID string) ([]domain.ClaimView, error) {
	rows, _ := r.pool.Query(ctx, `
		SELECT `+claimColumns+`, i.title, i.status
		FROM claims c JOIN items i ON i.id = c.item_id
		WHERE c.claimant_id = $1
		ORDER BY c.seq`, claimantID)
	views, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.ClaimView, error) {
		var (
			view       domain.ClaimView
			itemStatus string
		)
		dest, finish := claimScanTargets(&view.Claim)
		if err := row.Scan(append(dest, &view.ItemTitle, &itemStatus)...); err != nil {
			return domain.ClaimView{}, err
		}
		view.ItemStatus = domain.ItemStatus(itemStatus)
		return view, finish()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list claims by claimant: %w", err)
	}
	return views, nil
}

func (r *ClaimRepo) ListByStatus(ctx context.Context, status domain.ClaimStatus) ([]domain.Claim, error) {
	rows, _ := r.pool.Query(ctx, `SELECT `+claimColumns+` FROM claims c WHERE c.status = $1 ORDER BY c.seq`, string(status))
	claims, err := pgx.CollectRows(rows, scanClaim)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims by status: %w", err)
	}
	return claims, nil
}

func (r *ClaimRepo) UpdateScore(ctx context.Context, claimID uuid.UUID, score int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE claims SET composite_score = $2
		WHERE id = $1 AND status = 'submitted'`, claimID, score)
	if err != nil {
		return fmt.Errorf("failed to update claim score: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return undecidedClaimError(ctx, r.pool, claimID)
}

// undecidedClaimError explains why a claim could not be updated as submitted.
func undecidedClaimError(ctx context.Context, q querier, claimID uuid.UUID) error {
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM claims WHERE id = $1)`, claimID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check claim: %w", err)
	}
	if !exists {
		return domain.ErrClaimNotFound
	}
	return domain.ErrClaimDecided
}

func listClaimsByItem(ctx context.Context, q querier, itemID uuid.UUID) ([]domain.Claim, error) {
	rows, _ := q.Query(ctx, `SELECT `+claimColumns+` FROM claims c WHERE c.item_id = $1 ORDER BY c.seq`, itemID)
	claims, err := pgx.CollectRows(rows, scanClaim)
	if err != nil {
		return nil, fmt.Errorf("failed to list claims by item: %w", err)
	}
	return claims, nil
}

func scanClaim(row pgx.CollectableRow) (domain.Claim, error) {
	var c domain.Claim
	dest, finish := claimScanTargets(&c)
	if err := row.Scan(dest...); err != nil {
		return domain.Claim{}, err
	}
	return c, finish()
}

// claimScanTargets returns scan destinations matching claimColumns and a
// function that copies the scanned values into c.
func claimScanTargets(c *domain.Claim) ([]any, func() error) {
	var (
		answers []byte
		status  string
		score   int32
	)
	dest := []any{&c.ID, &c.ItemID, &c.ClaimantID, &c.LostLocation, &c.LostTime, &answers, &c.AdditionalInfo,
		&c.SubmittedAt, &status, &score, &c.DecidedBy, &c.DecidedAt}

	finish := func() error {
		var rows []answerRow
		if err := json.Unmarshal(answers, &rows); err != nil {
			return fmt.Errorf("failed to decode answers of claim %s: %w", c.ID, err)
		}
		c.Answers = make([]domain.Answer, len(rows))
		for i, a := range rows {
			c.Answers[i] = domain.Answer{QuestionID: a.QuestionID, Text: a.Text}
		}
		c.Status = domain.ClaimStatus(status)
		c.CompositeScore = int(score)
		c.SubmittedAt = utc(c.SubmittedAt)
		c.LostTime = utcPtr(c.LostTime)
		c.DecidedAt = utcPtr(c.DecidedAt)
		return nil
	}
	return dest, finish
}

func encodeAnswers(answers []domain.Answer) ([]byte, error) {
	rows := make([]answerRow, len(answers))
	for i, a := range answers {
		rows[i] = answerRow{QuestionID: a.QuestionID, Text: a.Text}
	}
	return json.Marshal(rows)
}

func insertClaim(ctx context.Context, tx pgx.Tx, c *domain.Claim) error {
	answers, err := encodeAnswers(c.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO claims (id, item_id, claimant_id, lost_location, lost_time, answers, additional_info,
		                    submitted_at, status, composite_score, decided_by, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		c.ID, c.ItemID, c.ClaimantID, c.LostLocation, c.LostTime, answers, c.AdditionalInfo,
		c.SubmittedAt, string(c.Status), c.CompositeScore, c.DecidedBy, c.DecidedAt)
	if err != nil {
		return fmt.Errorf("failed to insert claim: %w", err)
	}
	return nil
}
