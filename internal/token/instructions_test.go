package token

import (
	"encoding/binary"
	"errors"
	"testing"

	"solana-wallet-hub/internal/solana"
)

var (
	testWallet = solana.MustPubkeyFromBase58("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	testMint   = solana.MustPubkeyFromBase58("So11111111111111111111111111111111111111112")
	testOther  = solana.TokenMetadataProgram
)

func TestNewCreateAccountInstruction(t *testing.T) {
	ix, err := NewCreateAccountInstruction(testWallet, testMint, 1461600, MintSize, solana.TokenProgram)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if ix.ProgramID != solana.SystemProgram {
		t.Errorf("expected system program, got %s", ix.ProgramID)
	}
	if len(ix.Data) != 52 {
		t.Fatalf("expected 52 data bytes, got %d", len(ix.Data))
	}
	if binary.LittleEndian.Uint32(ix.Data[0:]) != 0 {
		t.Error("expected CreateAccount discriminator 0")
	}
	if binary.LittleEndian.Uint64(ix.Data[4:]) != 1461600 {
		t.Error("lamports not encoded at offset 4")
	}
	if binary.LittleEndian.Uint64(ix.Data[12:]) != MintSize {
		t.Error("space not encoded at offset 12")
	}

	if len(ix.Accounts) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(ix.Accounts))
	}
	if !ix.Accounts[0].IsSigner || !ix.Accounts[0].IsWritable {
		t.Error("funder must sign and be writable")
	}
	if !ix.Accounts[1].IsSigner || !ix.Accounts[1].IsWritable {
		t.Error("new account must sign and be writable")
	}
}

func TestNewInitializeMintInstruction(t *testing.T) {
	tests := []struct {
		name            string
		decimals        int
		freezeAuthority solana.Pubkey
		wantErr         error
		wantDataLen     int
	}{
		{"no freeze authority", 6, solana.Pubkey{}, nil, 2 + 32 + 1},
		{"with freeze authority", 9, testOther, nil, 2 + 32 + 1 + 32},
		{"zero decimals", 0, solana.Pubkey{}, nil, 2 + 32 + 1},
		{"decimals too large", 10, solana.Pubkey{}, ErrInvalidDecimals, 0},
		{"negative decimals", -1, solana.Pubkey{}, ErrInvalidDecimals, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := NewInitializeMintInstruction(testMint, tt.decimals, testWallet, tt.freezeAuthority, solana.TokenProgram)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("build: %v", err)
			}

			if ix.Data[0] != tagInitializeMint {
				t.Errorf("expected tag %d, got %d", tagInitializeMint, ix.Data[0])
			}
			if ix.Data[1] != byte(tt.decimals) {
				t.Errorf("expected decimals byte %d, got %d", tt.decimals, ix.Data[1])
			}
			if len(ix.Data) != tt.wantDataLen {
				t.Errorf("expected %d data bytes, got %d", tt.wantDataLen, len(ix.Data))
			}
		})
	}
}

func TestNewInitializeMintInstruction_MissingAuthority(t *testing.T) {
	_, err := NewInitializeMintInstruction(testMint, 6, solana.Pubkey{}, solana.Pubkey{}, solana.TokenProgram)
	if !errors.Is(err, ErrMissingAuthority) {
		t.Errorf("expected ErrMissingAuthority, got %v", err)
	}
}

func TestAmountInstructions_Encoding(t *testing.T) {
	tests := []struct {
		name  string
		build func(amount int64) (solana.Instruction, error)
		tag   byte
	}{
		{"mint to", func(a int64) (solana.Instruction, error) {
			return NewMintToInstruction(testMint, testOther, testWallet, a, solana.TokenProgram)
		}, tagMintTo},
		{"transfer", func(a int64) (solana.Instruction, error) {
			return NewTransferInstruction(testMint, testOther, testWallet, a, solana.TokenProgram)
		}, tagTransfer},
		{"burn", func(a int64) (solana.Instruction, error) {
			return NewBurnInstruction(testOther, testMint, testWallet, a, solana.TokenProgram)
		}, tagBurn},
		{"approve", func(a int64) (solana.Instruction, error) {
			return NewApproveInstruction(testOther, testMint, testWallet, a, solana.TokenProgram)
		}, tagApprove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, err := tt.build(5_000_000)
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if len(ix.Data) != 9 {
				t.Fatalf("expected 9 data bytes, got %d", len(ix.Data))
			}
			if ix.Data[0] != tt.tag {
				t.Errorf("expected tag %d, got %d", tt.tag, ix.Data[0])
			}
			if got := binary.LittleEndian.Uint64(ix.Data[1:]); got != 5_000_000 {
				t.Errorf("expected amount 5000000, got %d", got)
			}
			if ix.ProgramID != solana.TokenProgram {
				t.Errorf("expected token program, got %s", ix.ProgramID)
			}

			if _, err := tt.build(-1); !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("negative amount: expected ErrInvalidAmount, got %v", err)
			}
		})
	}
}

func TestNewRevokeInstruction(t *testing.T) {
	ix, err := NewRevokeInstruction(testOther, testWallet, solana.TokenProgram)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(ix.Data) != 1 || ix.Data[0] != tagRevoke {
		t.Errorf("expected single tag byte %d, got %v", tagRevoke, ix.Data)
	}
	if !ix.Accounts[1].IsSigner {
		t.Error("owner must sign the revoke")
	}

	if _, err := NewRevokeInstruction(testOther, solana.Pubkey{}, solana.TokenProgram); !errors.Is(err, ErrMissingAuthority) {
		t.Errorf("expected ErrMissingAuthority, got %v", err)
	}
}

func TestNewCloseAccountInstruction(t *testing.T) {
	ix, err := NewCloseAccountInstruction(testOther, testWallet, testWallet, solana.TokenProgram)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(ix.Data) != 1 || ix.Data[0] != tagCloseAccount {
		t.Errorf("expected single tag byte %d, got %v", tagCloseAccount, ix.Data)
	}
	if len(ix.Accounts) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(ix.Accounts))
	}
	if !ix.Accounts[1].IsWritable {
		t.Error("rent destination must be writable")
	}
}

func TestNewCreateAssociatedTokenAccountInstruction(t *testing.T) {
	ata, err := solana.FindAssociatedTokenAddress(testMint, testWallet, solana.TokenProgram)
	if err != nil {
		t.Fatalf("derive ata: %v", err)
	}

	ix, err := NewCreateAssociatedTokenAccountInstruction(testWallet, ata, testWallet, testMint, solana.TokenProgram)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if ix.ProgramID != solana.AssociatedTokenProgram {
		t.Errorf("expected associated token program, got %s", ix.ProgramID)
	}
	if len(ix.Data) != 0 {
		t.Errorf("expected empty data, got %d bytes", len(ix.Data))
	}
	if len(ix.Accounts) != 6 {
		t.Fatalf("expected 6 accounts, got %d", len(ix.Accounts))
	}
	if !ix.Accounts[0].IsSigner || !ix.Accounts[0].IsWritable {
		t.Error("payer must sign and be writable")
	}
	if ix.Accounts[1].Pubkey != ata {
		t.Error("second account must be the associated token account")
	}
}
