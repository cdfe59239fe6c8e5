package solana

// AccountMeta describes one account referenced by an instruction.
type AccountMeta struct {
	Pubkey     Pubkey
	IsSigner   bool
	IsWritable bool
}

// Instruction is a single program invocation: the program to call, the
// accounts it touches, and its opaque instruction data.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// UnsignedTransaction is an ordered sequence of instructions plus the
// ephemeral co-signers the caller must sign with in addition to its own
// wallet. The transaction is owned solely by the caller that requested it;
// nothing in this repository signs, submits, or retains it.
type UnsignedTransaction struct {
	Instructions []Instruction
	Signers      []*Keypair
}

// Add appends instructions, preserving order.
func (tx *UnsignedTransaction) Add(instrs ...Instruction) {
	tx.Instructions = append(tx.Instructions, instrs...)
}
