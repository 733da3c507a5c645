package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/campusfind/internal/domain"
)

type QuestionRepo struct {
	pool *pgxpool.Pool
}

var _ domain.QuestionRepository = (*QuestionRepo)(nil)

func NewQuestionRepo(pool *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{pool: pool}
}

func (r *QuestionRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.VerificationQuestion, error) {
	rows, _ := r.pool.Query(ctx, `
		SELECT id, item_id, position, prompt, expected_answer
		FROM questions WHERE item_id = $1 ORDER BY position`, itemID)
	questions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.VerificationQuestion, error) {
		var q domain.VerificationQuestion
		err := row.Scan(&q.ID, &q.ItemID, &q.Position, &q.Prompt, &q.ExpectedAnswer)
		return q, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	if len(questions) > 0 {
		return questions, nil
	}

	// Every item has at least one question, so an empty set means no item.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)`, itemID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check item: %w", err)
	}
	if !exists {
		return nil, domain.ErrItemNotFound
	}
	return questions, nil
}
