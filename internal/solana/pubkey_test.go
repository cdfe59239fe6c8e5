package solana

import (
	"testing"
)

func TestTryPubkeyFromBase58_RoundTrip(t *testing.T) {
	for _, s := range []string{
		SystemProgramStr,
		TokenProgramStr,
		AssociatedTokenProgramStr,
		TokenMetadataProgramStr,
		SysvarRentStr,
	} {
		p, err := TryPubkeyFromBase58(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if got := p.String(); got != s {
			t.Errorf("round trip mismatch: got %q, want %q", got, s)
		}
	}
}

func TestTryPubkeyFromBase58_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not base58", "0OIl+/"},
		{"too short", "abc"},
		{"too long", TokenProgramStr + TokenProgramStr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := TryPubkeyFromBase58(tt.input); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestPubkey_IsZero(t *testing.T) {
	var zero Pubkey
	if !zero.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if TokenProgram.IsZero() {
		t.Error("token program should not report IsZero")
	}
}

func TestNewKeypair(t *testing.T) {
	kp1, err := NewKeypair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	kp2, err := NewKeypair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}

	if kp1.PublicKey.IsZero() {
		t.Error("generated public key is zero")
	}
	if kp1.PublicKey == kp2.PublicKey {
		t.Error("two generated keypairs share a public key")
	}
	if len(kp1.PrivateKey) == 0 {
		t.Error("generated private key is empty")
	}
}
