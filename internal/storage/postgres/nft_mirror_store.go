package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/storage"
)

// NFTMirrorStore implements storage.NFTMirrorStore using PostgreSQL.
type NFTMirrorStore struct {
	pool *Pool
}

// NewNFTMirrorStore creates a new NFTMirrorStore.
func NewNFTMirrorStore(pool *Pool) *NFTMirrorStore {
	return &NFTMirrorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.NFTMirrorStore = (*NFTMirrorStore)(nil)

// Replace deletes every row for the user and bulk-inserts the snapshots in a
// single transaction. Returns the number of rows inserted.
func (s *NFTMirrorStore) Replace(ctx context.Context, userID string, nfts []*domain.NFT) (int, error) {
	if userID == "" {
		return 0, storage.ErrInvalidInput
	}
	for _, n := range nfts {
		if n == nil || n.Address == "" {
			return 0, storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM wallet_nfts WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("delete nfts for user: %w", err)
	}

	query := `
		INSERT INTO wallet_nfts (
			user_id, mint, name, description, image, collection_mint
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, n := range nfts {
		if _, err := tx.Exec(ctx, query,
			userID,
			n.Address,
			n.Name,
			n.Description,
			n.Image,
			n.Collection,
		); err != nil {
			return 0, fmt.Errorf("insert nft row: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return len(nfts), nil
}

// GetByUser retrieves all mirrored NFT rows for a user, ordered by mint.
func (s *NFTMirrorStore) GetByUser(ctx context.Context, userID string) ([]*domain.NFT, error) {
	if userID == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT mint, name, description, image, collection_mint
		FROM wallet_nfts
		WHERE user_id = $1
		ORDER BY mint ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get nfts by user: %w", err)
	}
	defer rows.Close()

	return scanNFTs(rows)
}

// scanNFTs scans rows into NFT snapshots.
func scanNFTs(rows pgx.Rows) ([]*domain.NFT, error) {
	var nfts []*domain.NFT

	for rows.Next() {
		var n domain.NFT
		if err := rows.Scan(&n.Address, &n.Name, &n.Description, &n.Image, &n.Collection); err != nil {
			return nil, fmt.Errorf("scan nft row: %w", err)
		}
		nfts = append(nfts, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nft rows: %w", err)
	}

	return nfts, nil
}
