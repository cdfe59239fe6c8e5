package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/storage"
)

func tokenRow(mint, amount string) *domain.TokenAccount {
	return &domain.TokenAccount{
		Address:  "acct-" + mint,
		Owner:    "owner-1",
		Mint:     mint,
		Amount:   amount,
		Decimals: 6,
	}
}

func TestTokenMirrorStore_ReplaceAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenMirrorStore(pool)
	ctx := context.Background()

	inserted, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{
		tokenRow("mintB", "200"),
		tokenRow("mintA", "100"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	got, err := store.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by mint ascending.
	assert.Equal(t, "mintA", got[0].Mint)
	assert.Equal(t, "100", got[0].Amount)
	assert.Equal(t, "acct-mintA", got[0].Address)
	assert.Equal(t, "owner-1", got[0].Owner)
	assert.Equal(t, 6, got[0].Decimals)
	assert.Equal(t, "mintB", got[1].Mint)
}

func TestTokenMirrorStore_MergesDuplicateMints(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenMirrorStore(pool)
	ctx := context.Background()

	// Same mint held through two token accounts. The table is keyed
	// (user_id, mint), so the rows must merge rather than abort the replace.
	aux := tokenRow("mintA", "50")
	aux.Address = "acct-aux"
	inserted, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{
		tokenRow("mintA", "100"),
		aux,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	got, err := store.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mintA", got[0].Mint)
	assert.Equal(t, "150", got[0].Amount)
}

func TestTokenMirrorStore_ReplaceIsFullReplace(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenMirrorStore(pool)
	ctx := context.Background()

	_, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{
		tokenRow("mintA", "100"),
		tokenRow("mintB", "200"),
		tokenRow("mintC", "300"),
	})
	require.NoError(t, err)

	// A later pass with a subset must leave exactly the subset.
	inserted, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{
		tokenRow("mintB", "250"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	got, err := store.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mintB", got[0].Mint)
	assert.Equal(t, "250", got[0].Amount)
}

func TestTokenMirrorStore_ReplaceEmptyClearsMirror(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenMirrorStore(pool)
	ctx := context.Background()

	_, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{tokenRow("mintA", "100")})
	require.NoError(t, err)

	inserted, err := store.Replace(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	got, err := store.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenMirrorStore_UsersAreIsolated(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenMirrorStore(pool)
	ctx := context.Background()

	_, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{tokenRow("mintA", "100")})
	require.NoError(t, err)
	_, err = store.Replace(ctx, "user-2", []*domain.TokenAccount{tokenRow("mintZ", "900")})
	require.NoError(t, err)

	// Replacing user-1 must not touch user-2.
	_, err = store.Replace(ctx, "user-1", nil)
	require.NoError(t, err)

	got, err := store.GetByUser(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mintZ", got[0].Mint)
}

func TestTokenMirrorStore_Validation(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTokenMirrorStore(pool)
	ctx := context.Background()

	_, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{tokenRow("mintA", "100")})
	require.NoError(t, err)

	_, err = store.Replace(ctx, "", []*domain.TokenAccount{tokenRow("mintA", "100")})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.Replace(ctx, "user-1", []*domain.TokenAccount{tokenRow("", "100")})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.Replace(ctx, "user-1", []*domain.TokenAccount{nil})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.GetByUser(ctx, "")
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	// Rejected input must not have mutated the mirror.
	got, err := store.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "100", got[0].Amount)
}
