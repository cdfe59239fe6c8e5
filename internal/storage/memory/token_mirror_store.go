package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/storage"
)

// TokenMirrorStore is an in-memory implementation of
// storage.TokenMirrorStore.
type TokenMirrorStore struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*domain.TokenAccount // user_id -> mint -> row

	// ReplaceErr, when set, fails Replace after the delete step, leaving the
	// user's mirror empty. Exercises the partial-completion failure mode.
	ReplaceErr error
}

// NewTokenMirrorStore creates a new in-memory token mirror store.
func NewTokenMirrorStore() *TokenMirrorStore {
	return &TokenMirrorStore{
		byUser: make(map[string]map[string]*domain.TokenAccount),
	}
}

// Compile-time interface check.
var _ storage.TokenMirrorStore = (*TokenMirrorStore)(nil)

// Replace deletes every row for the user, then inserts the snapshots.
// Duplicate mints are merged into one row with the summed amount.
func (s *TokenMirrorStore) Replace(_ context.Context, userID string, accounts []*domain.TokenAccount) (int, error) {
	if userID == "" {
		return 0, storage.ErrInvalidInput
	}
	merged, err := storage.MergeTokenAccounts(accounts)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byUser, userID)

	if s.ReplaceErr != nil {
		return 0, s.ReplaceErr
	}

	rows := make(map[string]*domain.TokenAccount, len(merged))
	for _, a := range merged {
		rowCopy := *a
		rows[a.Mint] = &rowCopy
	}
	s.byUser[userID] = rows

	return len(merged), nil
}

// GetByUser retrieves all mirrored token rows for a user, ordered by mint.
func (s *TokenMirrorStore) GetByUser(_ context.Context, userID string) ([]*domain.TokenAccount, error) {
	if userID == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.byUser[userID]
	accounts := make([]*domain.TokenAccount, 0, len(rows))
	for _, a := range rows {
		rowCopy := *a
		accounts = append(accounts, &rowCopy)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Mint < accounts[j].Mint })

	return accounts, nil
}
