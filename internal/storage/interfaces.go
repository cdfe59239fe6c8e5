package storage

import (
	"context"

	"solana-wallet-hub/internal/domain"
)

// TokenMirrorStore persists the fungible-token mirror, keyed (user_id, mint).
// The mirror is a display cache of the last synchronization pass, never
// authoritative for existence or ownership.
type TokenMirrorStore interface {
	// Replace deletes every row for the user and bulk-inserts the given
	// snapshots, as one atomic operation from the caller's point of view.
	// Snapshots sharing a mint merge into one row with the summed amount.
	// Returns the number of rows inserted. Returns ErrInvalidInput if userID
	// is empty or any snapshot is missing required fields; nothing is mutated
	// in that case.
	Replace(ctx context.Context, userID string, accounts []*domain.TokenAccount) (int, error)

	// GetByUser retrieves all mirrored token rows for a user.
	GetByUser(ctx context.Context, userID string) ([]*domain.TokenAccount, error)
}

// NFTMirrorStore persists the non-fungible-asset mirror, keyed
// (user_id, mint). Same replace contract as TokenMirrorStore.
type NFTMirrorStore interface {
	// Replace deletes every row for the user and bulk-inserts the given
	// snapshots atomically. Returns the number of rows inserted.
	Replace(ctx context.Context, userID string, nfts []*domain.NFT) (int, error)

	// GetByUser retrieves all mirrored NFT rows for a user.
	GetByUser(ctx context.Context, userID string) ([]*domain.NFT, error)
}

// BalanceHistoryStore appends per-pass balance observations. Append-only.
type BalanceHistoryStore interface {
	// InsertBulk appends a batch of observations.
	InsertBulk(ctx context.Context, points []*domain.BalancePoint) error

	// GetByUserMint retrieves observations for one (user, mint), ordered by
	// observation time ascending.
	GetByUserMint(ctx context.Context, userID, mint string) ([]*domain.BalancePoint, error)
}
