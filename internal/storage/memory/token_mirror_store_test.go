package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/storage"
)

func tokenRow(mint, amount string) *domain.TokenAccount {
	return &domain.TokenAccount{
		Address:  "acct-" + mint,
		Owner:    "owner1",
		Mint:     mint,
		Amount:   amount,
		Decimals: 6,
	}
}

func TestTokenMirrorStore_ReplaceSubset(t *testing.T) {
	ctx := context.Background()
	store := NewTokenMirrorStore()

	// First pass: three accounts.
	n, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{
		tokenRow("mintA", "100"),
		tokenRow("mintB", "200"),
		tokenRow("mintC", "300"),
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows inserted, got %d", n)
	}

	// Second pass: a strict subset. The wallet dropped mintB and mintC.
	if _, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{
		tokenRow("mintA", "150"),
	}); err != nil {
		t.Fatalf("replace subset: %v", err)
	}

	rows, err := store.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly the subset to survive, got %d rows", len(rows))
	}
	if rows[0].Mint != "mintA" || rows[0].Amount != "150" {
		t.Errorf("unexpected surviving row: %+v", rows[0])
	}
}

func TestTokenMirrorStore_MergesDuplicateMints(t *testing.T) {
	ctx := context.Background()
	store := NewTokenMirrorStore()

	// Same mint held through two token accounts (associated + auxiliary).
	aux := tokenRow("mintA", "50")
	aux.Address = "acct-aux"
	n, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{
		tokenRow("mintA", "100"),
		aux,
		tokenRow("mintB", "7"),
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows inserted after merge, got %d", n)
	}

	rows, err := store.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Mint != "mintA" || rows[0].Amount != "150" {
		t.Errorf("expected merged amount 150 for mintA, got %+v", rows[0])
	}
	if rows[0].Address != "acct-mintA" {
		t.Errorf("expected first account address kept, got %q", rows[0].Address)
	}
}

func TestTokenMirrorStore_ReplaceEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewTokenMirrorStore()

	if _, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{tokenRow("mintA", "1")}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	// Empty snapshot empties the mirror.
	n, err := store.Replace(ctx, "user-1", nil)
	if err != nil {
		t.Fatalf("replace empty: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows inserted, got %d", n)
	}

	rows, err := store.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty mirror, got %d rows", len(rows))
	}
}

func TestTokenMirrorStore_UsersIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewTokenMirrorStore()

	if _, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{tokenRow("mintA", "1")}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if _, err := store.Replace(ctx, "user-2", []*domain.TokenAccount{tokenRow("mintB", "2")}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	// Replacing user-1 must not touch user-2.
	if _, err := store.Replace(ctx, "user-1", nil); err != nil {
		t.Fatalf("replace: %v", err)
	}

	rows, err := store.GetByUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rows) != 1 || rows[0].Mint != "mintB" {
		t.Errorf("user-2 rows disturbed: %+v", rows)
	}
}

func TestTokenMirrorStore_Validation(t *testing.T) {
	ctx := context.Background()
	store := NewTokenMirrorStore()

	if _, err := store.Replace(ctx, "", nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty user: expected ErrInvalidInput, got %v", err)
	}

	// A row without a mint fails before any mutation.
	if _, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{tokenRow("mintA", "1")}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{{Address: "acct"}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	// So does a non-numeric amount.
	_, err = store.Replace(ctx, "user-1", []*domain.TokenAccount{tokenRow("mintB", "lots")})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad amount, got %v", err)
	}

	rows, err := store.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("failed validation must not mutate the mirror, got %d rows", len(rows))
	}

	if _, err := store.GetByUser(ctx, ""); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty user get: expected ErrInvalidInput, got %v", err)
	}
}

func TestTokenMirrorStore_GetByUserOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewTokenMirrorStore()

	if _, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{
		tokenRow("mintC", "3"),
		tokenRow("mintA", "1"),
		tokenRow("mintB", "2"),
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	rows, err := store.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Mint >= rows[i].Mint {
			t.Fatalf("rows not ordered by mint: %s before %s", rows[i-1].Mint, rows[i].Mint)
		}
	}
}

func TestTokenMirrorStore_InjectedReplaceFailure(t *testing.T) {
	ctx := context.Background()
	store := NewTokenMirrorStore()

	if _, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{tokenRow("mintA", "1")}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store.ReplaceErr = fmt.Errorf("disk full")
	if _, err := store.Replace(ctx, "user-1", []*domain.TokenAccount{tokenRow("mintB", "2")}); err == nil {
		t.Fatal("expected injected failure")
	}

	// The injected failure models a partial replace: delete succeeded,
	// insert did not.
	rows, err := store.GetByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected emptied mirror after partial replace, got %d rows", len(rows))
	}
}
