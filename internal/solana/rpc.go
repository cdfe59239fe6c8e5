package solana

import (
	"context"
	"errors"
)

// ErrMalformedAccountData is returned when ledger account data does not match
// the expected shape. Callers treat it as a per-record, non-fatal error.
var ErrMalformedAccountData = errors.New("malformed account data")

// RPCClient is the read-only ledger surface used by the asset services.
// Submission is out of scope: transactions built here are signed and sent by
// the wallet layer, never by this client.
type RPCClient interface {
	// GetTokenAccountsByOwner enumerates every token-program-owned account for
	// the owner. Completeness depends on the RPC node's enumeration contract;
	// no pagination limit is imposed here.
	GetTokenAccountsByOwner(ctx context.Context, owner, programID string) ([]TokenAccountEntry, error)

	// GetTokenAccountBalance retrieves the balance of a single token account.
	GetTokenAccountBalance(ctx context.Context, account string) (*TokenBalance, error)

	// GetMinimumBalanceForRentExemption returns the lamports needed to make an
	// account of the given size rent exempt.
	GetMinimumBalanceForRentExemption(ctx context.Context, size uint64) (uint64, error)

	// GetAccountInfo retrieves raw account info by public key.
	// Returns nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

// TokenAccountEntry is one record from getTokenAccountsByOwner. Parsed fields
// are pointers so that callers can distinguish absent from empty when mapping;
// a missing field is a per-record mapping error, not a fatal one.
type TokenAccountEntry struct {
	Pubkey   string
	Mint     *string
	Owner    *string
	Amount   *string
	Decimals *int
}

// TokenBalance is the result of getTokenAccountBalance.
type TokenBalance struct {
	Amount   string // base units, stringified u64
	Decimals int
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}
