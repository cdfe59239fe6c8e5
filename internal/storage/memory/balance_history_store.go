package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/storage"
)

// BalanceHistoryStore is an in-memory implementation of
// storage.BalanceHistoryStore.
type BalanceHistoryStore struct {
	mu     sync.RWMutex
	points []*domain.BalancePoint
}

// NewBalanceHistoryStore creates a new in-memory balance history store.
func NewBalanceHistoryStore() *BalanceHistoryStore {
	return &BalanceHistoryStore{}
}

// Compile-time interface check.
var _ storage.BalanceHistoryStore = (*BalanceHistoryStore)(nil)

// InsertBulk appends a batch of observations.
func (s *BalanceHistoryStore) InsertBulk(_ context.Context, points []*domain.BalancePoint) error {
	for _, p := range points {
		if p == nil || p.UserID == "" || p.Mint == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		pointCopy := *p
		s.points = append(s.points, &pointCopy)
	}
	return nil
}

// GetByUserMint retrieves observations for one (user, mint), ordered by
// observation time ascending.
func (s *BalanceHistoryStore) GetByUserMint(_ context.Context, userID, mint string) ([]*domain.BalancePoint, error) {
	if userID == "" || mint == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BalancePoint
	for _, p := range s.points {
		if p.UserID == userID && p.Mint == mint {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ObservedAt < result[j].ObservedAt })

	return result, nil
}
