package nft

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"

	"solana-wallet-hub/internal/solana"
)

var (
	testMintKey = solana.MustPubkeyFromBase58("So11111111111111111111111111111111111111112")
	testAuth    = solana.MustPubkeyFromBase58("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
)

func TestFindMetadataAddress(t *testing.T) {
	addr1, err := FindMetadataAddress(testMintKey)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	addr2, err := FindMetadataAddress(testMintKey)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if addr1 != addr2 {
		t.Error("metadata address must be deterministic")
	}

	edition, err := FindMasterEditionAddress(testMintKey)
	if err != nil {
		t.Fatalf("derive edition: %v", err)
	}
	if edition == addr1 {
		t.Error("edition and metadata addresses must differ")
	}
}

func TestNewCreateMetadataV3Instruction(t *testing.T) {
	ix, err := newCreateMetadataV3Instruction(metadataParams{
		mint:         testMintKey,
		authority:    testAuth,
		name:         "Test Asset",
		symbol:       "TST",
		uri:          "https://example.invalid/meta.json",
		sellerFeeBps: 500,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if ix.ProgramID != solana.TokenMetadataProgram {
		t.Errorf("expected metadata program, got %s", ix.ProgramID)
	}
	if len(ix.Data) == 0 || ix.Data[0] != ixCreateMetadataAccountV3 {
		t.Errorf("expected discriminator %d", ixCreateMetadataAccountV3)
	}
	if len(ix.Accounts) != 7 {
		t.Fatalf("expected 7 accounts, got %d", len(ix.Accounts))
	}
	if !ix.Accounts[2].IsSigner {
		t.Error("mint authority must sign")
	}
}

func TestNewCreateMasterEditionV3Instruction(t *testing.T) {
	ix, err := newCreateMasterEditionV3Instruction(testMintKey, testAuth, 0)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ix.Data[0] != ixCreateMasterEditionV3 {
		t.Errorf("expected discriminator %d, got %d", ixCreateMasterEditionV3, ix.Data[0])
	}
	if len(ix.Accounts) != 9 {
		t.Fatalf("expected 9 accounts, got %d", len(ix.Accounts))
	}
}

// buildMetadataAccount assembles a MetadataV1 account body the way the
// on-chain program lays it out.
func buildMetadataAccount(name, symbol, uri string, collection *solana.Pubkey) string {
	buf := []byte{metadataV1Key}
	buf = append(buf, make([]byte, 64)...) // update authority + mint

	appendString := func(s string) {
		var length [4]byte
		binary.LittleEndian.PutUint32(length[:], uint32(len(s)))
		buf = append(buf, length[:]...)
		buf = append(buf, []byte(s)...)
	}
	appendString(name)
	appendString(symbol)
	appendString(uri)

	buf = append(buf, 0xF4, 0x01) // seller fee 500

	// creators: Some([1 creator])
	buf = append(buf, 1)
	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], 1)
	buf = append(buf, count[:]...)
	buf = append(buf, make([]byte, 32)...) // address
	buf = append(buf, 1, 100)              // verified, share

	buf = append(buf, 1, 1) // primarySaleHappened, isMutable
	buf = append(buf, 1, 7) // editionNonce: Some(7)
	buf = append(buf, 0)    // tokenStandard: None

	if collection != nil {
		buf = append(buf, 1, 0) // Some, unverified
		buf = append(buf, collection[:]...)
	} else {
		buf = append(buf, 0)
	}

	return base64.StdEncoding.EncodeToString(buf)
}

func TestDecodeMetadataAccount(t *testing.T) {
	collection := testAuth

	tests := []struct {
		name           string
		data           string
		wantName       string
		wantCollection *string
	}{
		{
			name:           "member asset",
			data:           buildMetadataAccount("Asset One\x00\x00", "A1", "https://x/1.json", &collection),
			wantName:       "Asset One",
			wantCollection: func() *string { s := collection.String(); return &s }(),
		},
		{
			name:     "collection parent",
			data:     buildMetadataAccount("Parent", "P", "https://x/p.json", nil),
			wantName: "Parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := decodeMetadataAccount(tt.data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if meta.Name != tt.wantName {
				t.Errorf("expected name %q, got %q", tt.wantName, meta.Name)
			}
			if tt.wantCollection == nil {
				if meta.Collection != nil {
					t.Errorf("expected no collection, got %s", *meta.Collection)
				}
			} else {
				if meta.Collection == nil {
					t.Fatal("expected collection membership")
				}
				if *meta.Collection != *tt.wantCollection {
					t.Errorf("expected collection %s, got %s", *tt.wantCollection, *meta.Collection)
				}
			}
		})
	}
}

func TestDecodeMetadataAccount_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not base64", "!!!"},
		{"empty", ""},
		{"wrong key", base64.StdEncoding.EncodeToString(append([]byte{9}, make([]byte, 64)...))},
		{"truncated strings", base64.StdEncoding.EncodeToString(append([]byte{metadataV1Key}, make([]byte, 64)...))},
		{"oversized string length", base64.StdEncoding.EncodeToString(append(append([]byte{metadataV1Key}, make([]byte, 64)...), 0xFF, 0xFF, 0xFF, 0xFF))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeMetadataAccount(tt.data)
			if !errors.Is(err, solana.ErrMalformedAccountData) {
				t.Errorf("expected ErrMalformedAccountData, got %v", err)
			}
		})
	}
}
