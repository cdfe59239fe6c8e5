package solana

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// Well-known program addresses.
const (
	SystemProgramStr          = "11111111111111111111111111111111"
	TokenProgramStr           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgramStr = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	TokenMetadataProgramStr   = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	SysvarRentStr             = "SysvarRent111111111111111111111111111111111"
)

var (
	SystemProgram          = MustPubkeyFromBase58(SystemProgramStr)
	TokenProgram           = MustPubkeyFromBase58(TokenProgramStr)
	AssociatedTokenProgram = MustPubkeyFromBase58(AssociatedTokenProgramStr)
	TokenMetadataProgram   = MustPubkeyFromBase58(TokenMetadataProgramStr)
	SysvarRent             = MustPubkeyFromBase58(SysvarRentStr)
)

// Pubkey is a Solana account address.
type Pubkey [32]byte

// String returns the base58 representation.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// IsZero reports whether the pubkey is the all-zero value.
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// TryPubkeyFromBase58 parses a base58 string into a Pubkey.
// Returns an error for untrusted input that is not a valid 32-byte address.
func TryPubkeyFromBase58(s string) (Pubkey, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("decode base58 pubkey %q: %w", s, err)
	}
	if len(data) != 32 {
		return Pubkey{}, fmt.Errorf("invalid pubkey length: got %d, want 32, input=%q", len(data), s)
	}
	var p Pubkey
	copy(p[:], data)
	return p, nil
}

// MustPubkeyFromBase58 parses a base58 string into a Pubkey, panicking on
// invalid input. Only for compile-time constants.
func MustPubkeyFromBase58(s string) Pubkey {
	p, err := TryPubkeyFromBase58(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Keypair holds ephemeral ed25519 key material for transaction co-signers
// (e.g. a freshly generated mint account). The secret key never leaves the
// caller that requested the transaction.
type Keypair struct {
	PublicKey  Pubkey
	PrivateKey ed25519.PrivateKey
}

// NewKeypair generates a new random keypair.
func NewKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate keypair: %w", err)
	}
	var p Pubkey
	copy(p[:], pub)
	return &Keypair{PublicKey: p, PrivateKey: priv}, nil
}
