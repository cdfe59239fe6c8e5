package domain

// TokenAccount is one fungible-token holding observed live from the ledger.
// Ephemeral: recomputed every synchronization pass and replaced wholesale,
// never mutated in place.
type TokenAccount struct {
	Address  string // token account address (base58)
	Owner    string // owning wallet address
	Mint     string // token mint address
	Amount   string // raw balance in base units, stringified u64
	Decimals int
}
