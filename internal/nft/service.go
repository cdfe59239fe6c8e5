// Package nft builds unsigned mint transactions for non-fungible assets and
// collections, and reads back the assets a wallet owns.
package nft

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"solana-wallet-hub/internal/contentstore"
	"solana-wallet-hub/internal/domain"
	"solana-wallet-hub/internal/observability"
	"solana-wallet-hub/internal/solana"
	"solana-wallet-hub/internal/storage"
	"solana-wallet-hub/internal/token"
)

// Fixed royalty and creator split for every mint: 5% seller fee, sole
// creator with full share.
const (
	sellerFeeBasisPoints = 500
	creatorShare         = 100
)

// Service orchestrates metadata upload and mint instruction construction.
// It never signs or submits; every operation returns an unsigned transaction
// owned by the caller.
type Service struct {
	rpc    solana.RPCClient
	store  contentstore.Store
	mirror storage.NFTMirrorStore // display override cache, may be nil
	wallet solana.Pubkey
	logger *zap.Logger
}

// NewService creates an NFT Service. mirror may be nil; display metadata is
// then always resolved from the off-chain blob.
func NewService(rpc solana.RPCClient, store contentstore.Store, mirror storage.NFTMirrorStore, wallet solana.Pubkey, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		rpc:    rpc,
		store:  store,
		mirror: mirror,
		wallet: wallet,
		logger: logger,
	}
}

// MintResult is returned by CreateCollection and MintNFT. The mint keypair is
// an ephemeral co-signer owned by the caller.
type MintResult struct {
	Transaction *solana.UnsignedTransaction
	Mint        solana.Pubkey
	MetadataURI string
}

// CreateCollection uploads the image and assembled metadata, then builds the
// unsigned transaction minting a sized collection parent. An upload failure
// aborts before any instruction is built.
func (s *Service) CreateCollection(ctx context.Context, name, symbol, description string, image []byte, imageName string) (*MintResult, error) {
	uri, err := s.uploadMetadata(ctx, name, description, image, imageName)
	if err != nil {
		return nil, err
	}

	return s.buildMintTransaction(ctx, metadataParams{
		authority:    s.wallet,
		name:         name,
		symbol:       symbol,
		uri:          uri,
		sellerFeeBps: sellerFeeBasisPoints,
		isCollection: true,
	})
}

// MintNFT uploads the image and metadata, then builds the unsigned
// transaction minting an asset tagged with collectionAddress. The address is
// validated before any upload so an invalid input wastes no upload.
func (s *Service) MintNFT(ctx context.Context, name, description string, image []byte, imageName, collectionAddress string) (*MintResult, error) {
	collection, err := solana.TryPubkeyFromBase58(collectionAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCollectionAddress, collectionAddress)
	}

	uri, err := s.uploadMetadata(ctx, name, description, image, imageName)
	if err != nil {
		return nil, err
	}

	return s.buildMintTransaction(ctx, metadataParams{
		authority:    s.wallet,
		name:         name,
		uri:          uri,
		sellerFeeBps: sellerFeeBasisPoints,
		collection:   &collection,
	})
}

// uploadMetadata stores the image, then the metadata object referencing it.
// The ledger is never asked to mint against a missing metadata reference.
func (s *Service) uploadMetadata(ctx context.Context, name, description string, image []byte, imageName string) (string, error) {
	imageURI, err := s.store.UploadFile(ctx, imageName, image)
	if err != nil {
		return "", fmt.Errorf("%w: upload image: %v", ErrMetadataUpload, err)
	}

	uri, err := s.store.UploadMetadata(ctx, contentstore.Metadata{
		Name:        name,
		Description: description,
		Image:       imageURI,
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload metadata: %v", ErrMetadataUpload, err)
	}

	return uri, nil
}

// buildMintTransaction assembles the full unsigned mint: create mint account,
// initialize a zero-decimals mint, create the wallet's associated token
// account, mint the single unit, create metadata, create master edition.
func (s *Service) buildMintTransaction(ctx context.Context, params metadataParams) (*MintResult, error) {
	lamports, err := s.rpc.GetMinimumBalanceForRentExemption(ctx, token.MintSize)
	if err != nil {
		return nil, fmt.Errorf("mint: query rent exemption: %w", err)
	}

	mintKeypair, err := solana.NewKeypair()
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	mint := mintKeypair.PublicKey
	params.mint = mint

	createIx, err := token.NewCreateAccountInstruction(s.wallet, mint, lamports, token.MintSize, solana.TokenProgram)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	initIx, err := token.NewInitializeMintInstruction(mint, 0, s.wallet, s.wallet, solana.TokenProgram)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}

	ata, err := solana.FindAssociatedTokenAddress(mint, s.wallet, solana.TokenProgram)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	ataIx, err := token.NewCreateAssociatedTokenAccountInstruction(s.wallet, ata, s.wallet, mint, solana.TokenProgram)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	mintToIx, err := token.NewMintToInstruction(mint, ata, s.wallet, 1, solana.TokenProgram)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}

	metadataIx, err := newCreateMetadataV3Instruction(params)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}
	editionIx, err := newCreateMasterEditionV3Instruction(mint, s.wallet, 0)
	if err != nil {
		return nil, fmt.Errorf("mint: %w", err)
	}

	tx := &solana.UnsignedTransaction{Signers: []*solana.Keypair{mintKeypair}}
	tx.Add(createIx, initIx, ataIx, mintToIx, metadataIx, editionIx)

	op := "mint_nft"
	if params.isCollection {
		op = "create_collection"
	}
	observability.RecordTransactionBuilt(op)

	return &MintResult{
		Transaction: tx,
		Mint:        mint,
		MetadataURI: params.uri,
	}, nil
}

// OwnedAssets is the partitioned result of one ownership enumeration.
type OwnedAssets struct {
	NFTs        []*domain.NFT
	Collections []*domain.Collection
	Skipped     int // records dropped for malformed account data
}

// GetOwnedAssets enumerates the owner's non-fungible holdings in a single
// pass and partitions them into collection parents and member assets by the
// collection-membership field. When userID is non-empty and a mirror row
// exists for an asset, the mirror's display fields override the live
// metadata so the off-chain blob is not re-fetched.
func (s *Service) GetOwnedAssets(ctx context.Context, owner solana.Pubkey, userID string) (*OwnedAssets, error) {
	entries, err := s.rpc.GetTokenAccountsByOwner(ctx, owner.String(), solana.TokenProgramStr)
	if err != nil {
		return nil, fmt.Errorf("get owned assets for %s: %w", owner, err)
	}

	overrides := s.loadOverrides(ctx, userID)

	result := &OwnedAssets{}
	for _, e := range entries {
		if e.Mint == nil || e.Amount == nil || e.Decimals == nil {
			result.Skipped++
			s.logger.Warn("skipping malformed token account", zap.String("pubkey", e.Pubkey))
			continue
		}
		// Non-fungible holdings only: single unit, zero decimals.
		if *e.Amount != "1" || *e.Decimals != 0 {
			continue
		}

		meta, err := s.fetchMetadata(ctx, *e.Mint)
		if err != nil {
			result.Skipped++
			s.logger.Warn("skipping asset with malformed metadata",
				zap.String("mint", *e.Mint),
				zap.Error(err))
			continue
		}
		if meta == nil {
			// No metadata account: plain token dust, not an NFT.
			continue
		}

		if meta.Collection == nil {
			// Parents are mirror rows too: resolve their display fields the
			// same way, so a mirror override applies to collections.
			parent := &domain.NFT{Address: *e.Mint, Name: meta.Name}
			s.resolveDisplayFields(ctx, parent, meta, overrides)
			result.Collections = append(result.Collections, &domain.Collection{
				Address:     *e.Mint,
				Name:        parent.Name,
				Symbol:      meta.Symbol,
				Description: parent.Description,
				Image:       parent.Image,
			})
			continue
		}

		nft := &domain.NFT{
			Address:    *e.Mint,
			Name:       meta.Name,
			Collection: meta.Collection,
		}
		s.resolveDisplayFields(ctx, nft, meta, overrides)
		result.NFTs = append(result.NFTs, nft)
	}

	return result, nil
}

// GetNFTs returns the member assets the owner holds.
func (s *Service) GetNFTs(ctx context.Context, owner solana.Pubkey, userID string) ([]*domain.NFT, error) {
	assets, err := s.GetOwnedAssets(ctx, owner, userID)
	if err != nil {
		return nil, err
	}
	return assets.NFTs, nil
}

// GetCollections returns the collection parents the owner holds. Size is left
// zero; the caller recomputes it from membership counts.
func (s *Service) GetCollections(ctx context.Context, owner solana.Pubkey, userID string) ([]*domain.Collection, error) {
	assets, err := s.GetOwnedAssets(ctx, owner, userID)
	if err != nil {
		return nil, err
	}
	return assets.Collections, nil
}

// fetchMetadata reads and decodes the metadata account for a mint. Returns
// nil when no metadata account exists.
func (s *Service) fetchMetadata(ctx context.Context, mint string) (*ParsedMetadata, error) {
	mintKey, err := solana.TryPubkeyFromBase58(mint)
	if err != nil {
		return nil, fmt.Errorf("mint address: %w", solana.ErrMalformedAccountData)
	}
	metadataAddr, err := FindMetadataAddress(mintKey)
	if err != nil {
		return nil, err
	}

	info, err := s.rpc.GetAccountInfo(ctx, metadataAddr.String())
	if err != nil {
		return nil, fmt.Errorf("fetch metadata account: %w", err)
	}
	if info == nil || info.Data == "" {
		return nil, nil
	}

	return decodeMetadataAccount(info.Data)
}

// loadOverrides reads the user's mirror rows keyed by mint. Mirror read
// failures degrade to live metadata; they never fail the enumeration.
func (s *Service) loadOverrides(ctx context.Context, userID string) map[string]*domain.NFT {
	if s.mirror == nil || userID == "" {
		return nil
	}
	rows, err := s.mirror.GetByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("mirror read failed, using live metadata",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil
	}
	overrides := make(map[string]*domain.NFT, len(rows))
	for _, row := range rows {
		overrides[row.Address] = row
	}
	return overrides
}

// resolveDisplayFields fills name/description/image, preferring the mirror
// row over the off-chain blob when one exists.
func (s *Service) resolveDisplayFields(ctx context.Context, nft *domain.NFT, meta *ParsedMetadata, overrides map[string]*domain.NFT) {
	if row, ok := overrides[nft.Address]; ok {
		if row.Name != "" {
			nft.Name = row.Name
		}
		nft.Description = row.Description
		nft.Image = row.Image
		return
	}

	if meta.URI == "" {
		return
	}
	blob, err := s.store.FetchMetadata(ctx, meta.URI)
	if err != nil {
		s.logger.Warn("off-chain metadata fetch failed",
			zap.String("mint", nft.Address),
			zap.String("uri", meta.URI),
			zap.Error(err))
		return
	}
	if blob.Name != "" {
		nft.Name = blob.Name
	}
	nft.Description = blob.Description
	nft.Image = blob.Image
}
