// Package sync reconciles the live ledger asset set with the persisted
// mirror. One pass: fetch → reconcile → replace-persist → return the fresh
// view. The mirror is replaced wholesale, never merged.
package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/nft"
	"solana-wallet-hub/internal/observability"
	"solana-wallet-hub/internal/solana"
	"solana-wallet-hub/internal/storage"
)

// ErrSyncFailed marks a persistence-phase failure. The already-fetched live
// view is still returned; callers must not assume the mirror is in either the
// old or the new state.
var ErrSyncFailed = errors.New("sync persistence failed")

// State of a user's synchronization pass.
type State string

const (
	StateIdle        State = "IDLE"
	StateFetching    State = "FETCHING"
	StateReconciling State = "RECONCILING"
	StatePersisting  State = "PERSISTING"

	// StateFailed marks a pass that did not fully succeed, either a ledger
	// read or a mirror replace. It holds until the next pass starts.
	StateFailed State = "FAILED"
)

// TokenFetcher supplies live fungible-token snapshots.
type TokenFetcher interface {
	GetTokenAccounts(ctx context.Context, owner solana.Pubkey) ([]*domain.TokenAccount, int, error)
}

// AssetFetcher supplies live non-fungible snapshots, partitioned.
type AssetFetcher interface {
	GetOwnedAssets(ctx context.Context, owner solana.Pubkey, userID string) (*nft.OwnedAssets, error)
}

// Orchestrator coordinates synchronization passes. At most one pass is in
// flight per user; independent users never block each other.
type Orchestrator struct {
	tokens      TokenFetcher
	assets      AssetFetcher
	tokenMirror storage.TokenMirrorStore
	nftMirror   storage.NFTMirrorStore
	history     storage.BalanceHistoryStore // optional
	logger      *zap.Logger

	users *userTable
}

// Options for creating an Orchestrator.
type Options struct {
	Tokens      TokenFetcher
	Assets      AssetFetcher
	TokenMirror storage.TokenMirrorStore
	NFTMirror   storage.NFTMirrorStore

	// History, when set, receives a best-effort balance observation per pass.
	History storage.BalanceHistoryStore

	Logger *zap.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		tokens:      opts.Tokens,
		assets:      opts.Assets,
		tokenMirror: opts.TokenMirror,
		nftMirror:   opts.NFTMirror,
		history:     opts.History,
		logger:      logger,
		users:       newUserTable(),
	}
}

// Result is the merged, freshly fetched view returned by one pass. It is
// returned even when mirroring failed; PersistErr then carries the failure.
type Result struct {
	Tokens      []*domain.TokenAccount
	NFTs        []*domain.NFT
	Collections []*domain.Collection

	TokensMirrored int
	NFTsMirrored   int
	Skipped        int // records dropped for malformed account data

	// PersistErr wraps ErrSyncFailed when the replace step failed. The live
	// view above is still valid for display.
	PersistErr error

	CompletedAt time.Time
}

// Run executes one synchronization pass for the user. If a pass is already
// active for the same user, Run is a no-op returning the last completed
// result. A ledger-read failure aborts before any mirror mutation.
func (o *Orchestrator) Run(ctx context.Context, userID string, owner solana.Pubkey) (*Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("sync: missing user id: %w", storage.ErrInvalidInput)
	}

	entry, acquired := o.users.acquire(userID)
	if !acquired {
		o.logger.Debug("sync already in flight, returning last result",
			zap.String("user_id", userID))
		return entry.lastResult(), nil
	}
	final := StateFailed
	defer func() { o.users.release(userID, final) }()

	o.logger.Info("sync pass started",
		zap.String("user_id", userID),
		zap.String("owner", owner.String()))
	start := time.Now()

	// Fetching: both asset classes, issuance order, no mirror mutation yet.
	tokens, _, err := o.tokens.GetTokenAccounts(ctx, owner)
	if err != nil {
		observability.RecordSyncRun("fetch_error", time.Since(start).Seconds(), 0, 0, 0)
		return nil, fmt.Errorf("sync fetch tokens for %s: %w", userID, err)
	}

	assets, err := o.assets.GetOwnedAssets(ctx, owner, userID)
	if err != nil {
		observability.RecordSyncRun("fetch_error", time.Since(start).Seconds(), 0, 0, 0)
		return nil, fmt.Errorf("sync fetch assets for %s: %w", userID, err)
	}

	// Reconciling: derive collection sizes from membership counts; the live
	// query never returns them and stale values must not survive.
	entry.setState(StateReconciling)
	result := &Result{
		Tokens:      tokens,
		NFTs:        assets.NFTs,
		Collections: assets.Collections,
		// Both fetchers enumerate the same ledger records, so malformed ones
		// are counted once, on the asset side.
		Skipped: assets.Skipped,
	}
	recomputeCollectionSizes(result.Collections, result.NFTs)

	// Persisting: unconditional replace, one family at a time. A failure
	// here is surfaced separately; the fetched view is returned regardless.
	entry.setState(StatePersisting)
	result.PersistErr = o.persist(ctx, userID, result)

	o.appendHistory(ctx, userID, tokens)

	result.CompletedAt = time.Now()
	entry.storeResult(result)

	if result.PersistErr == nil {
		final = StateIdle
		observability.RecordSyncRun("success", time.Since(start).Seconds(),
			result.TokensMirrored, result.NFTsMirrored, result.Skipped)
		observability.MarkSyncPersisted(result.CompletedAt.Unix())
	} else {
		observability.RecordSyncRun("persist_error", time.Since(start).Seconds(),
			0, 0, result.Skipped)
	}

	o.logger.Info("sync pass completed",
		zap.String("user_id", userID),
		zap.Int("tokens", len(result.Tokens)),
		zap.Int("nfts", len(result.NFTs)),
		zap.Int("collections", len(result.Collections)),
		zap.Int("skipped", result.Skipped),
		zap.Bool("persisted", result.PersistErr == nil))

	return result, nil
}

// State reports the current pass state for a user.
func (o *Orchestrator) State(userID string) State {
	return o.users.state(userID)
}

// LastResult returns the most recent completed result for a user, nil if the
// user has never completed a pass.
func (o *Orchestrator) LastResult(userID string) *Result {
	return o.users.get(userID).lastResult()
}

// persist replaces both mirror families. Collection parents are mirror rows
// too, written with a nil collection reference so the replaced set is exactly
// the non-fungible holdings observed. Any failure wraps ErrSyncFailed.
func (o *Orchestrator) persist(ctx context.Context, userID string, result *Result) error {
	n, err := o.tokenMirror.Replace(ctx, userID, result.Tokens)
	if err != nil {
		o.logger.Error("token mirror replace failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return fmt.Errorf("%w: replace tokens: %v", ErrSyncFailed, err)
	}
	result.TokensMirrored = n

	rows := make([]*domain.NFT, 0, len(result.NFTs)+len(result.Collections))
	rows = append(rows, result.NFTs...)
	for _, c := range result.Collections {
		rows = append(rows, &domain.NFT{
			Address:     c.Address,
			Name:        c.Name,
			Description: c.Description,
			Image:       c.Image,
		})
	}

	n, err = o.nftMirror.Replace(ctx, userID, rows)
	if err != nil {
		o.logger.Error("nft mirror replace failed",
			zap.String("user_id", userID),
			zap.Error(err))
		return fmt.Errorf("%w: replace nfts: %v", ErrSyncFailed, err)
	}
	result.NFTsMirrored = n

	return nil
}

// appendHistory records a balance observation per token. Best effort: a
// history failure never fails the pass.
func (o *Orchestrator) appendHistory(ctx context.Context, userID string, tokens []*domain.TokenAccount) {
	if o.history == nil || len(tokens) == 0 {
		return
	}

	now := time.Now().UnixMilli()
	points := make([]*domain.BalancePoint, 0, len(tokens))
	for _, t := range tokens {
		points = append(points, &domain.BalancePoint{
			UserID:     userID,
			Mint:       t.Mint,
			Amount:     t.Amount,
			Decimals:   t.Decimals,
			ObservedAt: now,
		})
	}

	if err := o.history.InsertBulk(ctx, points); err != nil {
		o.logger.Warn("balance history append failed",
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

// recomputeCollectionSizes counts member assets per collection.
func recomputeCollectionSizes(collections []*domain.Collection, nfts []*domain.NFT) {
	counts := make(map[string]int)
	for _, n := range nfts {
		if n.Collection != nil {
			counts[*n.Collection]++
		}
	}
	for _, c := range collections {
		c.Size = counts[c.Address]
	}
}
