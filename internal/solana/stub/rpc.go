// Package stub provides an in-memory RPCClient for testing.
package stub

import (
	"context"
	"strconv"
	"sync"

	"solana-wallet-hub/internal/solana"
)

// RPCClient implements solana.RPCClient against in-memory state.
// All maps are keyed by base58 address strings.
type RPCClient struct {
	mu sync.Mutex

	// TokenAccounts maps owner -> entries returned by GetTokenAccountsByOwner.
	TokenAccounts map[string][]solana.TokenAccountEntry

	// Balances maps token account -> balance.
	Balances map[string]*solana.TokenBalance

	// Accounts maps pubkey -> account info.
	Accounts map[string]*solana.AccountInfo

	// RentExemptLamports is returned by GetMinimumBalanceForRentExemption.
	RentExemptLamports uint64

	// Err, when set, is returned by every query. Simulates ledger outage.
	Err error

	// Calls counts queries by method name.
	Calls map[string]int
}

// NewRPCClient creates an empty stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		TokenAccounts: make(map[string][]solana.TokenAccountEntry),
		Balances:      make(map[string]*solana.TokenBalance),
		Accounts:      make(map[string]*solana.AccountInfo),
		Calls:         make(map[string]int),
	}
}

// Compile-time interface check.
var _ solana.RPCClient = (*RPCClient)(nil)

func (c *RPCClient) record(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls[method]++
	return c.Err
}

// GetTokenAccountsByOwner returns the configured entries for an owner.
func (c *RPCClient) GetTokenAccountsByOwner(_ context.Context, owner, _ string) ([]solana.TokenAccountEntry, error) {
	if err := c.record("getTokenAccountsByOwner"); err != nil {
		return nil, err
	}
	return c.TokenAccounts[owner], nil
}

// GetTokenAccountBalance returns the configured balance for an account.
func (c *RPCClient) GetTokenAccountBalance(_ context.Context, account string) (*solana.TokenBalance, error) {
	if err := c.record("getTokenAccountBalance"); err != nil {
		return nil, err
	}
	b, ok := c.Balances[account]
	if !ok {
		return nil, solana.ErrMalformedAccountData
	}
	return b, nil
}

// GetMinimumBalanceForRentExemption returns the configured rent cost.
func (c *RPCClient) GetMinimumBalanceForRentExemption(_ context.Context, _ uint64) (uint64, error) {
	if err := c.record("getMinimumBalanceForRentExemption"); err != nil {
		return 0, err
	}
	return c.RentExemptLamports, nil
}

// GetAccountInfo returns the configured account info, nil when absent.
func (c *RPCClient) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	if err := c.record("getAccountInfo"); err != nil {
		return nil, err
	}
	return c.Accounts[pubkey], nil
}

// MintBalance adjusts the stub ledger after a simulated mint: the destination
// account balance increases by amount base units.
func (c *RPCClient) MintBalance(account string, amount uint64, decimals int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.Balances[account]
	if !ok {
		b = &solana.TokenBalance{Amount: "0", Decimals: decimals}
		c.Balances[account] = b
	}
	cur, _ := strconv.ParseUint(b.Amount, 10, 64)
	b.Amount = strconv.FormatUint(cur+amount, 10)
	b.Decimals = decimals
}
