package storage

import (
	"strconv"

	"solana-wallet-hub/internal/domain"
)

// MergeTokenAccounts validates snapshots and collapses rows sharing a mint
// into one row with the summed amount. A wallet can hold the same mint
// through several token accounts (associated plus auxiliary), but the mirror
// is keyed (user_id, mint), so duplicates must merge before insertion.
// First-seen order and the first account's address are kept. Returns
// ErrInvalidInput on a nil row, empty mint, or non-numeric amount; nothing is
// merged in that case.
func MergeTokenAccounts(accounts []*domain.TokenAccount) ([]*domain.TokenAccount, error) {
	amounts := make([]uint64, len(accounts))
	for i, a := range accounts {
		if a == nil || a.Mint == "" {
			return nil, ErrInvalidInput
		}
		amount, err := strconv.ParseUint(a.Amount, 10, 64)
		if err != nil {
			return nil, ErrInvalidInput
		}
		amounts[i] = amount
	}

	merged := make([]*domain.TokenAccount, 0, len(accounts))
	byMint := make(map[string]*domain.TokenAccount, len(accounts))
	totals := make(map[string]uint64, len(accounts))

	for i, a := range accounts {
		row, ok := byMint[a.Mint]
		if !ok {
			rowCopy := *a
			byMint[a.Mint] = &rowCopy
			totals[a.Mint] = amounts[i]
			merged = append(merged, &rowCopy)
			continue
		}
		// Holdings of one mint never exceed its u64 total supply, so the
		// sum cannot overflow.
		totals[a.Mint] += amounts[i]
		row.Amount = strconv.FormatUint(totals[a.Mint], 10)
	}

	return merged, nil
}
