package clickhouse

import (
	"context"
	"fmt"

	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/storage"
)

// BalanceHistoryStore implements storage.BalanceHistoryStore using
// ClickHouse. Append-only: one row per (user, mint) per synchronization pass.
type BalanceHistoryStore struct {
	conn *Conn
}

// NewBalanceHistoryStore creates a new BalanceHistoryStore.
func NewBalanceHistoryStore(conn *Conn) *BalanceHistoryStore {
	return &BalanceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BalanceHistoryStore = (*BalanceHistoryStore)(nil)

// InsertBulk appends a batch of observations.
func (s *BalanceHistoryStore) InsertBulk(ctx context.Context, points []*domain.BalancePoint) error {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if p == nil || p.UserID == "" || p.Mint == "" {
			return storage.ErrInvalidInput
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO wallet_balance_history (
			user_id, mint, amount, decimals, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare balance history batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(
			p.UserID,
			p.Mint,
			p.Amount,
			int32(p.Decimals),
			p.ObservedAt,
		); err != nil {
			return fmt.Errorf("append balance point: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send balance history batch: %w", err)
	}
	return nil
}

// GetByUserMint retrieves observations for one (user, mint), ordered by
// observation time ascending.
func (s *BalanceHistoryStore) GetByUserMint(ctx context.Context, userID, mint string) ([]*domain.BalancePoint, error) {
	if userID == "" || mint == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT user_id, mint, amount, decimals, observed_at
		FROM wallet_balance_history
		WHERE user_id = ? AND mint = ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, userID, mint)
	if err != nil {
		return nil, fmt.Errorf("get balance history: %w", err)
	}
	defer rows.Close()

	var points []*domain.BalancePoint
	for rows.Next() {
		var p domain.BalancePoint
		var decimals int32
		if err := rows.Scan(&p.UserID, &p.Mint, &p.Amount, &decimals, &p.ObservedAt); err != nil {
			return nil, fmt.Errorf("scan balance point: %w", err)
		}
		p.Decimals = int(decimals)
		points = append(points, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balance points: %w", err)
	}

	return points, nil
}
