package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/storage"
)

// TokenMirrorStore implements storage.TokenMirrorStore using PostgreSQL.
type TokenMirrorStore struct {
	pool *Pool
}

// NewTokenMirrorStore creates a new TokenMirrorStore.
func NewTokenMirrorStore(pool *Pool) *TokenMirrorStore {
	return &TokenMirrorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenMirrorStore = (*TokenMirrorStore)(nil)

// Replace deletes every row for the user and bulk-inserts the snapshots in a
// single transaction. Duplicate mints are merged into one row with the
// summed amount before insert; the table is keyed (user_id, mint). Returns
// the number of rows inserted.
func (s *TokenMirrorStore) Replace(ctx context.Context, userID string, accounts []*domain.TokenAccount) (int, error) {
	if userID == "" {
		return 0, storage.ErrInvalidInput
	}
	merged, err := storage.MergeTokenAccounts(accounts)
	if err != nil {
		return 0, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM wallet_tokens WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("delete tokens for user: %w", err)
	}

	query := `
		INSERT INTO wallet_tokens (
			user_id, mint, account_address, owner_address, amount, decimals
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, a := range merged {
		if _, err := tx.Exec(ctx, query,
			userID,
			a.Mint,
			a.Address,
			a.Owner,
			a.Amount,
			a.Decimals,
		); err != nil {
			return 0, fmt.Errorf("insert token row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return len(merged), nil
}

// GetByUser retrieves all mirrored token rows for a user, ordered by mint.
func (s *TokenMirrorStore) GetByUser(ctx context.Context, userID string) ([]*domain.TokenAccount, error) {
	if userID == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT mint, account_address, owner_address, amount, decimals
		FROM wallet_tokens
		WHERE user_id = $1
		ORDER BY mint ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get tokens by user: %w", err)
	}
	defer rows.Close()

	return scanTokenAccounts(rows)
}

// scanTokenAccounts scans rows into TokenAccount snapshots.
func scanTokenAccounts(rows pgx.Rows) ([]*domain.TokenAccount, error) {
	var accounts []*domain.TokenAccount

	for rows.Next() {
		var a domain.TokenAccount
		if err := rows.Scan(&a.Mint, &a.Address, &a.Owner, &a.Amount, &a.Decimals); err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		accounts = append(accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token rows: %w", err)
	}

	return accounts, nil
}
