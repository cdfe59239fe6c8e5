package token

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/observability"
	"solana-wallet-hub/internal/solana"
)

// Service builds unsigned fungible-token transactions and runs read-only
// balance queries. The configured wallet address is always the signing
// authority named in the instructions; the caller signs and submits.
type Service struct {
	rpc       solana.RPCClient
	wallet    solana.Pubkey
	programID solana.Pubkey
	logger    *zap.Logger
}

// NewService creates a token Service. The ledger client and signing-authority
// address are explicit; there is no ambient connection or wallet state.
func NewService(rpc solana.RPCClient, wallet solana.Pubkey, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		rpc:       rpc,
		wallet:    wallet,
		programID: solana.TokenProgram,
		logger:    logger,
	}
}

// CreateTokenResult is returned by CreateToken. The mint keypair is an
// ephemeral co-signer owned by the caller.
type CreateTokenResult struct {
	Transaction *solana.UnsignedTransaction
	Mint        solana.Pubkey
}

// CreateToken builds a transaction allocating a rent-exempt mint account and
// initializing it with the given decimals. decimals must be within [0, 9].
// freezeAuthority may be the zero pubkey; the wallet then doubles as freeze
// authority, matching the mint authority.
func (s *Service) CreateToken(ctx context.Context, decimals int, freezeAuthority solana.Pubkey) (*CreateTokenResult, error) {
	if decimals < 0 || decimals > 9 {
		return nil, ErrInvalidDecimals
	}

	lamports, err := s.rpc.GetMinimumBalanceForRentExemption(ctx, MintSize)
	if err != nil {
		return nil, fmt.Errorf("create token: query rent exemption: %w", err)
	}

	mintKeypair, err := solana.NewKeypair()
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}
	mint := mintKeypair.PublicKey

	createIx, err := NewCreateAccountInstruction(s.wallet, mint, lamports, MintSize, s.programID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	if freezeAuthority.IsZero() {
		freezeAuthority = s.wallet
	}
	initIx, err := NewInitializeMintInstruction(mint, decimals, s.wallet, freezeAuthority, s.programID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	tx := &solana.UnsignedTransaction{Signers: []*solana.Keypair{mintKeypair}}
	tx.Add(createIx, initIx)

	observability.RecordTransactionBuilt("create_token")
	return &CreateTokenResult{Transaction: tx, Mint: mint}, nil
}

// MintTo builds a transaction minting amount base units of mint to the
// destination owner's associated token account. The caller scales by
// 10^decimals before calling.
func (s *Service) MintTo(ctx context.Context, mint, destinationOwner solana.Pubkey, amount int64) (*solana.UnsignedTransaction, error) {
	ata, err := solana.FindAssociatedTokenAddress(mint, destinationOwner, s.programID)
	if err != nil {
		return nil, fmt.Errorf("mint to: %w", err)
	}

	ix, err := NewMintToInstruction(mint, ata, s.wallet, amount, s.programID)
	if err != nil {
		return nil, err
	}

	tx := &solana.UnsignedTransaction{}
	tx.Add(ix)
	observability.RecordTransactionBuilt("mint_to")
	return tx, nil
}

// Transfer builds a transaction moving amount base units between two token
// accounts. Balance sufficiency is a ledger-side check, not enforced here.
func (s *Service) Transfer(_ context.Context, source, destination solana.Pubkey, amount int64) (*solana.UnsignedTransaction, error) {
	ix, err := NewTransferInstruction(source, destination, s.wallet, amount, s.programID)
	if err != nil {
		return nil, err
	}

	tx := &solana.UnsignedTransaction{}
	tx.Add(ix)
	observability.RecordTransactionBuilt("transfer")
	return tx, nil
}

// Burn builds a transaction burning amount base units from a token account.
func (s *Service) Burn(_ context.Context, mint, account solana.Pubkey, amount int64) (*solana.UnsignedTransaction, error) {
	ix, err := NewBurnInstruction(account, mint, s.wallet, amount, s.programID)
	if err != nil {
		return nil, err
	}

	tx := &solana.UnsignedTransaction{}
	tx.Add(ix)
	observability.RecordTransactionBuilt("burn")
	return tx, nil
}

// CloseAccount builds a transaction closing a token account, reclaiming rent
// to the wallet.
func (s *Service) CloseAccount(_ context.Context, account solana.Pubkey) (*solana.UnsignedTransaction, error) {
	ix, err := NewCloseAccountInstruction(account, s.wallet, s.wallet, s.programID)
	if err != nil {
		return nil, err
	}

	tx := &solana.UnsignedTransaction{}
	tx.Add(ix)
	observability.RecordTransactionBuilt("close_account")
	return tx, nil
}

// Delegate builds a transaction approving delegate to spend up to amount base
// units from a token account.
func (s *Service) Delegate(_ context.Context, account, delegate solana.Pubkey, amount int64) (*solana.UnsignedTransaction, error) {
	ix, err := NewApproveInstruction(account, delegate, s.wallet, amount, s.programID)
	if err != nil {
		return nil, err
	}

	tx := &solana.UnsignedTransaction{}
	tx.Add(ix)
	observability.RecordTransactionBuilt("delegate")
	return tx, nil
}

// RevokeDelegate builds a transaction revoking any existing delegate.
func (s *Service) RevokeDelegate(_ context.Context, account solana.Pubkey) (*solana.UnsignedTransaction, error) {
	ix, err := NewRevokeInstruction(account, s.wallet, s.programID)
	if err != nil {
		return nil, err
	}

	tx := &solana.UnsignedTransaction{}
	tx.Add(ix)
	observability.RecordTransactionBuilt("revoke_delegate")
	return tx, nil
}

// GetTokenBalance queries the balance of a single token account.
func (s *Service) GetTokenBalance(ctx context.Context, account solana.Pubkey) (*solana.TokenBalance, error) {
	balance, err := s.rpc.GetTokenAccountBalance(ctx, account.String())
	if err != nil {
		return nil, fmt.Errorf("get token balance %s: %w", account, err)
	}
	return balance, nil
}

// GetTokenAccounts enumerates every token account for the owner and maps each
// into a snapshot. Records with a malformed shape are counted and skipped;
// the remaining enumeration continues. Returns the snapshots and the count of
// skipped records.
func (s *Service) GetTokenAccounts(ctx context.Context, owner solana.Pubkey) ([]*domain.TokenAccount, int, error) {
	entries, err := s.rpc.GetTokenAccountsByOwner(ctx, owner.String(), s.programID.String())
	if err != nil {
		return nil, 0, fmt.Errorf("get token accounts for %s: %w", owner, err)
	}

	accounts := make([]*domain.TokenAccount, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		acct, err := mapTokenAccount(e)
		if err != nil {
			skipped++
			s.logger.Warn("skipping malformed token account",
				zap.String("pubkey", e.Pubkey),
				zap.Error(err))
			continue
		}
		accounts = append(accounts, acct)
	}

	return accounts, skipped, nil
}

// mapTokenAccount converts one RPC record into a snapshot. Absence of mint,
// amount, or decimals is a mapping error.
func mapTokenAccount(e solana.TokenAccountEntry) (*domain.TokenAccount, error) {
	if e.Pubkey == "" || e.Mint == nil || e.Amount == nil || e.Decimals == nil {
		return nil, solana.ErrMalformedAccountData
	}
	owner := ""
	if e.Owner != nil {
		owner = *e.Owner
	}
	return &domain.TokenAccount{
		Address:  e.Pubkey,
		Owner:    owner,
		Mint:     *e.Mint,
		Amount:   *e.Amount,
		Decimals: *e.Decimals,
	}, nil
}
