package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/storage"
)

// NFTMirrorStore is an in-memory implementation of storage.NFTMirrorStore.
type NFTMirrorStore struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*domain.NFT // user_id -> mint -> row

	// ReplaceErr, when set, fails Replace after the delete step.
	ReplaceErr error
}

// NewNFTMirrorStore creates a new in-memory NFT mirror store.
func NewNFTMirrorStore() *NFTMirrorStore {
	return &NFTMirrorStore{
		byUser: make(map[string]map[string]*domain.NFT),
	}
}

// Compile-time interface check.
var _ storage.NFTMirrorStore = (*NFTMirrorStore)(nil)

// Replace deletes every row for the user, then inserts the snapshots.
func (s *NFTMirrorStore) Replace(_ context.Context, userID string, nfts []*domain.NFT) (int, error) {
	if userID == "" {
		return 0, storage.ErrInvalidInput
	}
	for _, n := range nfts {
		if n == nil || n.Address == "" {
			return 0, storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byUser, userID)

	if s.ReplaceErr != nil {
		return 0, s.ReplaceErr
	}

	rows := make(map[string]*domain.NFT, len(nfts))
	for _, n := range nfts {
		rowCopy := *n
		rows[n.Address] = &rowCopy
	}
	s.byUser[userID] = rows

	return len(nfts), nil
}

// GetByUser retrieves all mirrored NFT rows for a user, ordered by mint.
func (s *NFTMirrorStore) GetByUser(_ context.Context, userID string) ([]*domain.NFT, error) {
	if userID == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.byUser[userID]
	nfts := make([]*domain.NFT, 0, len(rows))
	for _, n := range rows {
		rowCopy := *n
		nfts = append(nfts, &rowCopy)
	}
	sort.Slice(nfts, func(i, j int) bool { return nfts[i].Address < nfts[j].Address })

	return nfts, nil
}
