package solana

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
)

// FindProgramAddress derives a Program Derived Address for the given seeds.
// Derivation algorithm:
//  1. Concatenate all seeds with a bump byte (255 down to 1)
//  2. Append program ID and "ProgramDerivedAddress" marker
//  3. SHA256 hash
//  4. First bump whose hash is off the ed25519 curve wins
//
// Pure function: identical inputs always yield the same address.
func FindProgramAddress(seeds [][]byte, programID Pubkey) (Pubkey, byte, error) {
	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0, 128)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, programID[:]...)
		data = append(data, []byte("ProgramDerivedAddress")...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			var p Pubkey
			copy(p[:], hash[:])
			return p, bump, nil
		}
	}
	return Pubkey{}, 0, fmt.Errorf("no viable bump seed for program %s", programID)
}

// FindAssociatedTokenAddress derives the associated token account address for
// a (mint, owner) pair under the given token program.
func FindAssociatedTokenAddress(mint, owner, tokenProgram Pubkey) (Pubkey, error) {
	seeds := [][]byte{owner[:], tokenProgram[:], mint[:]}
	addr, _, err := FindProgramAddress(seeds, AssociatedTokenProgram)
	if err != nil {
		return Pubkey{}, fmt.Errorf("derive associated token address: %w", err)
	}
	return addr, nil
}

func isOnCurve(point []byte) bool {
	if len(point) != 32 {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}
