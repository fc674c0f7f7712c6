package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bazaarline/storefront/internal/domain/auth"
)

const getAPIKeyByHashSQL = `SELECT id, key_hash, name, scopes FROM api_keys WHERE key_hash = $1`

var _ auth.Repository = (*APIKeyRepository)(nil)

// APIKeyRepository provides API key lookups backed by PostgreSQL.
type APIKeyRepository struct {
	pool *pgxpool.Pool
}

// NewAPIKeyRepository returns an APIKeyRepository that uses the given pool.
func NewAPIKeyRepository(pool *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{pool: pool}
}

// FindByHash looks up an API key by its HMAC-SHA256 hash.
func (r *APIKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.APIKeyInfo, error) {
	rows, err := r.pool.Query(ctx, getAPIKeyByHashSQL, hash)
	if err != nil {
		return nil, fmt.Errorf("finding api key by hash: %w", err)
	}

	info, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (auth.APIKeyInfo, error) {
		var i auth.APIKeyInfo
		err := row.Scan(&i.ID, &i.KeyHash, &i.Name, &i.Scopes)
		return i, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUnauthorized
		}
		return nil, fmt.Errorf("finding api key by hash: %w", err)
	}
	return &info, nil
}
