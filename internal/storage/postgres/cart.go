package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarline/storefront/internal/domain/cart"
)

const (
	loadCartSQL = `SELECT items FROM carts WHERE session_id = $1`

	saveCartSQL = `INSERT INTO carts (session_id, items, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (session_id) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`
)

var _ cart.Store = (*CartStore)(nil)

// CartStore is the durable per-session cart record backed by a JSONB column.
// Save upserts the whole line-item list in a single statement, so concurrent
// writers from different devices resolve as last-write-wins.
type CartStore struct {
	pool *pgxpool.Pool
}

// NewCartStore returns a CartStore that uses the given pool.
func NewCartStore(pool *pgxpool.Pool) *CartStore {
	return &CartStore{pool: pool}
}

// Load returns the session's line items. Unknown sessions yield an empty
// cart, not an error.
func (s *CartStore) Load(ctx context.Context, sessionID string) ([]cart.LineItem, error) {
	rows, err := s.pool.Query(ctx, loadCartSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading cart %q: %w", sessionID, err)
	}

	itemsJSON, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[[]byte])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []cart.LineItem{}, nil
		}
		return nil, fmt.Errorf("loading cart %q: %w", sessionID, err)
	}

	var items []cart.LineItem
	if err := json.Unmarshal(itemsJSON, &items); err != nil {
		return nil, fmt.Errorf("unmarshaling cart %q: %w", sessionID, err)
	}
	return items, nil
}

// Save replaces the session's stored item list.
func (s *CartStore) Save(ctx context.Context, sessionID string, items []cart.LineItem) error {
	if items == nil {
		items = []cart.LineItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshaling cart %q: %w", sessionID, err)
	}

	if _, err := s.pool.Exec(ctx, saveCartSQL, sessionID, itemsJSON); err != nil {
		return fmt.Errorf("saving cart %q: %w", sessionID, err)
	}
	return nil
}
