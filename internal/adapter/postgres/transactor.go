package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pscheid92/campusfind/internal/domain"
)

// Transactor serialises work per item by locking the item row with
// SELECT ... FOR UPDATE for the duration of a transaction.
type Transactor struct {
	pool *pgxpool.Pool
}

var _ domain.ItemTransactor = (*Transactor)(nil)

func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{pool: pool}
}

func (t *Transactor) WithItemLock(ctx context.Context, itemID uuid.UUID, fn func(ctx context.Context, tx domain.ItemTx) error) error {
	return pgx.BeginFunc(ctx, t.pool, func(tx pgx.Tx) error {
		rows, _ := tx.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, itemID)
		item, err := pgx.CollectExactlyOneRow(rows, scanItem)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock item: %w", err)
		}
		return fn(ctx, &itemTx{tx: tx, item: item})
	})
}

type itemTx struct {
	tx   pgx.Tx
	item domain.Item
}

func (t *itemTx) Item() domain.Item { return t.item }

func (t *itemTx) Claims(ctx context.Context) ([]domain.Claim, error) {
	return listClaimsByItem(ctx, t.tx, t.item.ID)
}

func (t *itemTx) InsertClaim(ctx context.Context, claim *domain.Claim) error {
	if claim.ItemID != t.item.ID {
		return fmt.Errorf("claim %s belongs to item %s, not %s", claim.ID, claim.ItemID, t.item.ID)
	}
	return insertClaim(ctx, t.tx, claim)
}

func (t *itemTx) SetClaimStatus(ctx context.Context, claimID uuid.UUID, status domain.ClaimStatus, decidedBy string, decidedAt time.Time) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE claims SET status = $3, decided_by = $4, decided_at = $5
		WHERE id = $1 AND item_id = $2 AND status = 'submitted'`,
		claimID, t.item.ID, string(status), decidedBy, decidedAt)
	if err != nil {
		return fmt.Errorf("failed to update claim status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	err = t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM claims WHERE id = $1 AND item_id = $2)`, claimID, t.item.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check claim: %w", err)
	}
	if !exists {
		return domain.ErrClaimNotFound
	}
	return domain.ErrClaimDecided
}

func (t *itemTx) SetItemStatus(ctx context.Context, status domain.ItemStatus, at time.Time) error {
	_, err := t.tx.Exec(ctx, `UPDATE items SET status = $2, updated_at = $3 WHERE id = $1`, t.item.ID, string(status), at)
	if err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
	}
	t.item.Status = status
	t.item.UpdatedAt = at
	return nil
}
