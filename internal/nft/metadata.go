package nft

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"

	"solana-wallet-hub/internal/solana"
)

// Token metadata program instruction discriminators.
const (
	ixCreateMetadataAccountV3 = 33
	ixCreateMasterEditionV3   = 17
)

// metadataSeed prefixes every metadata-program PDA.
var metadataSeed = []byte("metadata")

// FindMetadataAddress derives the metadata account address for a mint.
func FindMetadataAddress(mint solana.Pubkey) (solana.Pubkey, error) {
	program := solana.TokenMetadataProgram
	seeds := [][]byte{metadataSeed, program[:], mint[:]}
	addr, _, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		return solana.Pubkey{}, fmt.Errorf("derive metadata address: %w", err)
	}
	return addr, nil
}

// FindMasterEditionAddress derives the master edition account address for a
// mint.
func FindMasterEditionAddress(mint solana.Pubkey) (solana.Pubkey, error) {
	program := solana.TokenMetadataProgram
	seeds := [][]byte{metadataSeed, program[:], mint[:], []byte("edition")}
	addr, _, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		return solana.Pubkey{}, fmt.Errorf("derive master edition address: %w", err)
	}
	return addr, nil
}

// Borsh argument types for the token metadata program. Field order is the
// program's wire layout; do not reorder.

type creatorArg struct {
	Address  [32]byte
	Verified bool
	Share    uint8
}

type collectionArg struct {
	Verified bool
	Key      [32]byte
}

type usesArg struct {
	UseMethod uint8
	Remaining uint64
	Total     uint64
}

type dataV2Arg struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             *[]creatorArg
	Collection           *collectionArg
	Uses                 *usesArg
}

type collectionDetailsArg struct {
	Enum borsh.Enum `borsh_enum:"true"`
	V1   struct {
		Size uint64
	}
}

type createMetadataAccountArgsV3 struct {
	Data              dataV2Arg
	IsMutable         bool
	CollectionDetails *collectionDetailsArg
}

type createMasterEditionArgsV3 struct {
	MaxSupply *uint64
}

// metadataParams carries everything needed to build a create-metadata
// instruction.
type metadataParams struct {
	mint         solana.Pubkey
	authority    solana.Pubkey // mint authority, payer, and update authority
	name         string
	symbol       string
	uri          string
	sellerFeeBps uint16
	collection   *solana.Pubkey // membership reference, unverified
	isCollection bool           // sized collection parent
}

// newCreateMetadataV3Instruction builds the CreateMetadataAccountV3
// instruction for a new asset.
func newCreateMetadataV3Instruction(p metadataParams) (solana.Instruction, error) {
	metadataAddr, err := FindMetadataAddress(p.mint)
	if err != nil {
		return solana.Instruction{}, err
	}

	creators := []creatorArg{{Address: p.authority, Verified: true, Share: 100}}

	args := createMetadataAccountArgsV3{
		Data: dataV2Arg{
			Name:                 p.name,
			Symbol:               p.symbol,
			URI:                  p.uri,
			SellerFeeBasisPoints: p.sellerFeeBps,
			Creators:             &creators,
		},
		IsMutable: true,
	}
	if p.collection != nil {
		args.Data.Collection = &collectionArg{Verified: false, Key: *p.collection}
	}
	if p.isCollection {
		args.CollectionDetails = &collectionDetailsArg{}
	}

	encoded, err := borsh.Serialize(args)
	if err != nil {
		return solana.Instruction{}, fmt.Errorf("encode metadata args: %w", err)
	}
	data := append([]byte{ixCreateMetadataAccountV3}, encoded...)

	return solana.Instruction{
		ProgramID: solana.TokenMetadataProgram,
		Accounts: []solana.AccountMeta{
			{Pubkey: metadataAddr, IsWritable: true},
			{Pubkey: p.mint},
			{Pubkey: p.authority, IsSigner: true},
			{Pubkey: p.authority, IsSigner: true, IsWritable: true},
			{Pubkey: p.authority, IsSigner: true},
			{Pubkey: solana.SystemProgram},
			{Pubkey: solana.SysvarRent},
		},
		Data: data,
	}, nil
}

// newCreateMasterEditionV3Instruction builds the CreateMasterEditionV3
// instruction. maxSupply 0 makes the edition non-printable.
func newCreateMasterEditionV3Instruction(mint, authority solana.Pubkey, maxSupply uint64) (solana.Instruction, error) {
	editionAddr, err := FindMasterEditionAddress(mint)
	if err != nil {
		return solana.Instruction{}, err
	}
	metadataAddr, err := FindMetadataAddress(mint)
	if err != nil {
		return solana.Instruction{}, err
	}

	encoded, err := borsh.Serialize(createMasterEditionArgsV3{MaxSupply: &maxSupply})
	if err != nil {
		return solana.Instruction{}, fmt.Errorf("encode master edition args: %w", err)
	}
	data := append([]byte{ixCreateMasterEditionV3}, encoded...)

	return solana.Instruction{
		ProgramID: solana.TokenMetadataProgram,
		Accounts: []solana.AccountMeta{
			{Pubkey: editionAddr, IsWritable: true},
			{Pubkey: mint, IsWritable: true},
			{Pubkey: authority, IsSigner: true},
			{Pubkey: authority, IsSigner: true},
			{Pubkey: authority, IsSigner: true, IsWritable: true},
			{Pubkey: metadataAddr, IsWritable: true},
			{Pubkey: solana.TokenProgram},
			{Pubkey: solana.SystemProgram},
			{Pubkey: solana.SysvarRent},
		},
		Data: data,
	}, nil
}

// ParsedMetadata is the decoded on-chain metadata account.
type ParsedMetadata struct {
	Name       string
	Symbol     string
	URI        string
	Collection *string // collection mint, nil when the asset is not a member
}

// metadataV1Key tags a MetadataV1 account.
const metadataV1Key = 4

// decodeMetadataAccount decodes a base64 metadata account into its tagged
// fields. Any shape mismatch returns ErrMalformedAccountData; the caller
// treats that as a per-record error.
func decodeMetadataAccount(data string) (*ParsedMetadata, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode metadata account: %w", solana.ErrMalformedAccountData)
	}

	// key(1) + updateAuthority(32) + mint(32)
	if len(decoded) < 65 || decoded[0] != metadataV1Key {
		return nil, fmt.Errorf("metadata account key: %w", solana.ErrMalformedAccountData)
	}
	offset := 65

	name, offset, err := readBorshString(decoded, offset)
	if err != nil {
		return nil, err
	}
	symbol, offset, err := readBorshString(decoded, offset)
	if err != nil {
		return nil, err
	}
	uri, offset, err := readBorshString(decoded, offset)
	if err != nil {
		return nil, err
	}

	// sellerFeeBasisPoints(2)
	offset += 2

	// creators: Option<Vec<Creator>>, Creator = address(32)+verified(1)+share(1)
	if offset+1 > len(decoded) {
		return nil, fmt.Errorf("metadata creators: %w", solana.ErrMalformedAccountData)
	}
	if decoded[offset] == 1 {
		offset++
		if offset+4 > len(decoded) {
			return nil, fmt.Errorf("metadata creators length: %w", solana.ErrMalformedAccountData)
		}
		count := binary.LittleEndian.Uint32(decoded[offset:])
		offset += 4
		if count > 5 || offset+int(count)*34 > len(decoded) {
			return nil, fmt.Errorf("metadata creators size: %w", solana.ErrMalformedAccountData)
		}
		offset += int(count) * 34
	} else {
		offset++
	}

	// primarySaleHappened(1) + isMutable(1)
	offset += 2

	// editionNonce: Option<u8>
	offset, err = skipOption(decoded, offset, 1)
	if err != nil {
		return nil, err
	}

	// tokenStandard: Option<u8>
	offset, err = skipOption(decoded, offset, 1)
	if err != nil {
		return nil, err
	}

	// collection: Option<{verified(1), key(32)}>
	if offset+1 > len(decoded) {
		return nil, fmt.Errorf("metadata collection: %w", solana.ErrMalformedAccountData)
	}

	meta := &ParsedMetadata{
		Name:   trimPadding(name),
		Symbol: trimPadding(symbol),
		URI:    trimPadding(uri),
	}

	if decoded[offset] == 1 {
		offset++
		if offset+33 > len(decoded) {
			return nil, fmt.Errorf("metadata collection key: %w", solana.ErrMalformedAccountData)
		}
		key := base58.Encode(decoded[offset+1 : offset+33])
		meta.Collection = &key
	}

	return meta, nil
}

// readBorshString reads a 4-byte length-prefixed string.
func readBorshString(data []byte, offset int) (string, int, error) {
	if offset+4 > len(data) {
		return "", 0, fmt.Errorf("string length: %w", solana.ErrMalformedAccountData)
	}
	length := binary.LittleEndian.Uint32(data[offset:])
	offset += 4
	if length > 1000 || offset+int(length) > len(data) {
		return "", 0, fmt.Errorf("string bounds: %w", solana.ErrMalformedAccountData)
	}
	s := string(data[offset : offset+int(length)])
	return s, offset + int(length), nil
}

// skipOption skips an Option field whose payload is size bytes.
func skipOption(data []byte, offset, size int) (int, error) {
	if offset+1 > len(data) {
		return 0, fmt.Errorf("option flag: %w", solana.ErrMalformedAccountData)
	}
	if data[offset] == 1 {
		if offset+1+size > len(data) {
			return 0, fmt.Errorf("option payload: %w", solana.ErrMalformedAccountData)
		}
		return offset + 1 + size, nil
	}
	return offset + 1, nil
}

// trimPadding strips the zero padding the metadata program stores after
// fixed-capacity strings.
func trimPadding(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return s[:i]
		}
	}
	return s
}
