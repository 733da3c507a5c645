package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/campusfind/internal/domain"
)

const itemColumns = `id, finder_id, title, category, description, found_location, found_at, photo_ref, status, created_at, updated_at`

type ItemRepo struct {
	pool *pgxpool.Pool
}

var _ domain.ItemRepository = (*ItemRepo)(nil)

func NewItemRepo(pool *pgxpool.Pool) *ItemRepo {
	return &ItemRepo{pool: pool}
}

// Create inserts the item and its questions in one transaction.
func (r *ItemRepo) Create(ctx context.Context, item *domain.Item, questions []domain.VerificationQuestion) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO items (`+itemColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			item.ID, item.FinderID, item.Title, item.Category, item.Description, item.FoundLocation,
			item.FoundAt, item.PhotoRef, string(item.Status), item.CreatedAt, item.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		batch := &pgx.Batch{}
		for _, q := range questions {
			batch.Queue(`
				INSERT INTO questions (id, item_id, position, prompt, expected_answer)
				VALUES ($1, $2, $3, $4, $5)`,
				q.ID, item.ID, q.Position, q.Prompt, q.ExpectedAnswer)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert questions: %w", err)
		}
		return nil
	})
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	rows, _ := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, itemID)
	item, err := pgx.CollectExactlyOneRow(rows, scanItem)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// List applies the same filter semantics as domain.ItemFilter.Matches.
func (r *ItemRepo) List(ctx context.Context, f domain.ItemFilter) ([]domain.Item, error) {
	rows, _ := r.pool.Query(ctx, `
		SELECT `+itemColumns+` FROM items
		WHERE ($1::text = '' OR lower(category) = lower($1))
		  AND ($2::text = '' OR strpos(lower(found_location), lower($2)) > 0)
		  AND ($3::text = '' OR strpos(lower(title), lower($3)) > 0
		                     OR strpos(lower(description), lower($3)) > 0
		                     OR strpos(lower(category), lower($3)) > 0)
		  AND ($4::text = '' OR status = $4)
		  AND ($5::text = '' OR finder_id = $5)
		ORDER BY seq`,
		f.Category, f.Location, f.Text, string(f.Status), f.FinderID)
	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func scanItem(row pgx.CollectableRow) (domain.Item, error) {
	var (
		item   domain.Item
		status string
	)
	err := row.Scan(&item.ID, &item.FinderID, &item.Title, &item.Category, &item.Description, &item.FoundLocation,
		&item.FoundAt, &item.PhotoRef, &status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return domain.Item{}, err
	}
	item.Status = domain.ItemStatus(status)
	item.FoundAt = utc(item.FoundAt)
	item.CreatedAt = utc(item.CreatedAt)
	item.UpdatedAt = utc(item.UpdatedAt)
	return item, nil
}
