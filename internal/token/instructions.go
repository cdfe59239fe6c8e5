// Package token builds unsigned SPL token transactions and performs read-only
// balance queries. Nothing here signs or submits.
package token

import (
	"encoding/binary"

	"solana-wallet-hub/internal/solana"
)

// MintSize is the byte size of an SPL token mint account.
const MintSize = 82

// SPL token program instruction tags.
const (
	tagInitializeMint = 0
	tagTransfer       = 3
	tagApprove        = 4
	tagRevoke         = 5
	tagMintTo         = 7
	tagBurn           = 8
	tagCloseAccount   = 9
)

// NewCreateAccountInstruction builds a system-program create-account
// instruction funding a new account owned by the given program.
func NewCreateAccountInstruction(from, newAccount solana.Pubkey, lamports, space uint64, owner solana.Pubkey) (solana.Instruction, error) {
	if from.IsZero() {
		return solana.Instruction{}, ErrMissingAuthority
	}

	data := make([]byte, 4+8+8+32)
	binary.LittleEndian.PutUint32(data[0:], 0) // CreateAccount
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[12:], space)
	copy(data[20:], owner[:])

	return solana.Instruction{
		ProgramID: solana.SystemProgram,
		Accounts: []solana.AccountMeta{
			{Pubkey: from, IsSigner: true, IsWritable: true},
			{Pubkey: newAccount, IsSigner: true, IsWritable: true},
		},
		Data: data,
	}, nil
}

// NewInitializeMintInstruction builds an initialize-mint instruction.
// freezeAuthority may be the zero pubkey to omit a freeze authority.
func NewInitializeMintInstruction(mint solana.Pubkey, decimals int, mintAuthority, freezeAuthority, programID solana.Pubkey) (solana.Instruction, error) {
	if decimals < 0 || decimals > 9 {
		return solana.Instruction{}, ErrInvalidDecimals
	}
	if mintAuthority.IsZero() {
		return solana.Instruction{}, ErrMissingAuthority
	}

	data := make([]byte, 0, 2+32+1+32)
	data = append(data, tagInitializeMint, byte(decimals))
	data = append(data, mintAuthority[:]...)
	if freezeAuthority.IsZero() {
		data = append(data, 0)
	} else {
		data = append(data, 1)
		data = append(data, freezeAuthority[:]...)
	}

	return solana.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{Pubkey: mint, IsWritable: true},
			{Pubkey: solana.SysvarRent},
		},
		Data: data,
	}, nil
}

// NewMintToInstruction builds a mint-to instruction. amount is in base units.
func NewMintToInstruction(mint, destination, authority solana.Pubkey, amount int64, programID solana.Pubkey) (solana.Instruction, error) {
	data, err := amountData(tagMintTo, amount)
	if err != nil {
		return solana.Instruction{}, err
	}
	if authority.IsZero() {
		return solana.Instruction{}, ErrMissingAuthority
	}

	return solana.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{Pubkey: mint, IsWritable: true},
			{Pubkey: destination, IsWritable: true},
			{Pubkey: authority, IsSigner: true},
		},
		Data: data,
	}, nil
}

// NewTransferInstruction builds a transfer instruction between two token
// accounts.
func NewTransferInstruction(source, destination, owner solana.Pubkey, amount int64, programID solana.Pubkey) (solana.Instruction, error) {
	data, err := amountData(tagTransfer, amount)
	if err != nil {
		return solana.Instruction{}, err
	}
	if owner.IsZero() {
		return solana.Instruction{}, ErrMissingAuthority
	}

	return solana.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{Pubkey: source, IsWritable: true},
			{Pubkey: destination, IsWritable: true},
			{Pubkey: owner, IsSigner: true},
		},
		Data: data,
	}, nil
}

// NewBurnInstruction builds a burn instruction.
func NewBurnInstruction(account, mint, owner solana.Pubkey, amount int64, programID solana.Pubkey) (solana.Instruction, error) {
	data, err := amountData(tagBurn, amount)
	if err != nil {
		return solana.Instruction{}, err
	}
	if owner.IsZero() {
		return solana.Instruction{}, ErrMissingAuthority
	}

	return solana.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{Pubkey: account, IsWritable: true},
			{Pubkey: mint, IsWritable: true},
			{Pubkey: owner, IsSigner: true},
		},
		Data: data,
	}, nil
}

// NewApproveInstruction builds an approve-delegate instruction.
func NewApproveInstruction(account, delegate, owner solana.Pubkey, amount int64, programID solana.Pubkey) (solana.Instruction, error) {
	data, err := amountData(tagApprove, amount)
	if err != nil {
		return solana.Instruction{}, err
	}
	if owner.IsZero() {
		return solana.Instruction{}, ErrMissingAuthority
	}

	return solana.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{Pubkey: account, IsWritable: true},
			{Pubkey: delegate},
			{Pubkey: owner, IsSigner: true},
		},
		Data: data,
	}, nil
}

// NewRevokeInstruction builds a revoke-delegate instruction.
func NewRevokeInstruction(account, owner solana.Pubkey, programID solana.Pubkey) (solana.Instruction, error) {
	if owner.IsZero() {
		return solana.Instruction{}, ErrMissingAuthority
	}

	return solana.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{Pubkey: account, IsWritable: true},
			{Pubkey: owner, IsSigner: true},
		},
		Data: []byte{tagRevoke},
	}, nil
}

// NewCloseAccountInstruction builds a close-account instruction. Reclaimed
// lamports go to destination.
func NewCloseAccountInstruction(account, destination, owner solana.Pubkey, programID solana.Pubkey) (solana.Instruction, error) {
	if owner.IsZero() {
		return solana.Instruction{}, ErrMissingAuthority
	}

	return solana.Instruction{
		ProgramID: programID,
		Accounts: []solana.AccountMeta{
			{Pubkey: account, IsWritable: true},
			{Pubkey: destination, IsWritable: true},
			{Pubkey: owner, IsSigner: true},
		},
		Data: []byte{tagCloseAccount},
	}, nil
}

// NewCreateAssociatedTokenAccountInstruction builds an instruction creating
// the associated token account for (mint, owner).
func NewCreateAssociatedTokenAccountInstruction(payer, ata, owner, mint, tokenProgram solana.Pubkey) (solana.Instruction, error) {
	if payer.IsZero() {
		return solana.Instruction{}, ErrMissingAuthority
	}

	return solana.Instruction{
		ProgramID: solana.AssociatedTokenProgram,
		Accounts: []solana.AccountMeta{
			{Pubkey: payer, IsSigner: true, IsWritable: true},
			{Pubkey: ata, IsWritable: true},
			{Pubkey: owner},
			{Pubkey: mint},
			{Pubkey: solana.SystemProgram},
			{Pubkey: tokenProgram},
		},
		Data: nil,
	}, nil
}

// amountData encodes tag + u64 little-endian amount, rejecting negatives.
func amountData(tag byte, amount int64) ([]byte, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	data := make([]byte, 9)
	data[0] = tag
	binary.LittleEndian.PutUint64(data[1:], uint64(amount))
	return data, nil
}
