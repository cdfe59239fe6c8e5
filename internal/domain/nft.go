package domain

// NFT is one non-fungible asset observed live from the ledger, with display
// metadata resolved either from the local mirror or from the off-chain blob.
// Same replace semantics as TokenAccount.
type NFT struct {
	Address     string  // mint address of the asset
	Name        string
	Description string
	Image       string  // image URI
	Collection  *string // collection mint address, nil when the asset is itself a collection
}

// Collection groups non-fungible assets by reference. A parent is itself a
// mirror row (an NFT with no collection reference); Size is a derived member
// count, recomputed every pass.
type Collection struct {
	Address     string
	Name        string
	Symbol      string
	Description string
	Image       string
	Size        int
}

// BalancePoint is one per-pass balance observation, appended to the balance
// history timeseries.
type BalancePoint struct {
	UserID     string
	Mint       string
	Amount     string // base units at observation time
	Decimals   int
	ObservedAt int64 // unix ms
}
