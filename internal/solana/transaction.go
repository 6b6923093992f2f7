package solana

import (
	"encoding/base64"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/solpayhq/solpay/internal/domain/errors"
)

// DecodeBase64Transaction deserializes a base64-encoded versioned
// transaction. Undecodable payloads map to ErrMalformedTransaction.
func DecodeBase64Transaction(encoded string) (*solana.Transaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedTransaction, err)
	}
	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedTransaction, err)
	}
	return tx, nil
}

// EncodeBase64Transaction serializes a transaction to the base64 wire form.
func EncodeBase64Transaction(tx *solana.Transaction) (string, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("marshal transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// FirstSignature returns the transaction's fee-payer signature in base58.
func FirstSignature(tx *solana.Transaction) string {
	if len(tx.Signatures) == 0 {
		return ""
	}
	return tx.Signatures[0].String()
}

// DeriveAssociatedTokenAddress derives the associated token account for an
// owner and mint. The derivation is a pure function of (owner, mint); the
// account may or may not exist on-chain.
func DeriveAssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated token address: %w", err)
	}
	return ata, nil
}

// NewCreateIdempotentATAInstruction builds a CreateIdempotent (index 1)
// associated-token-account instruction. CreateIdempotent succeeds even if
// the account already exists, so prepending it can never invalidate an
// otherwise valid transaction.
//
// Accounts:
//
//	[0] payer (signer, writable)
//	[1] ata (writable)
//	[2] owner
//	[3] mint
//	[4] system program
//	[5] token program
func NewCreateIdempotentATAInstruction(payer, owner, mint solana.PublicKey) (solana.Instruction, error) {
	ata, err := DeriveAssociatedTokenAddress(owner, mint)
	if err != nil {
		return nil, err
	}

	accounts := solana.AccountMetaSlice{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(
		solana.SPLAssociatedTokenAccountProgramID,
		accounts,
		[]byte{1},
	), nil
}

// PrependInstruction rebuilds a transaction with ix placed before the
// existing instruction list. Lookup-table-based account references are
// resolved with the supplied tables and re-compiled so indices stay valid
// after the message changes. The returned transaction is unsigned.
func PrependInstruction(tx *solana.Transaction, ix solana.Instruction, tables map[solana.PublicKey]solana.PublicKeySlice) (*solana.Transaction, error) {
	msg := tx.Message
	if len(tables) > 0 {
		if err := msg.SetAddressTables(tables); err != nil {
			return nil, fmt.Errorf("set address tables: %w", err)
		}
		if err := msg.ResolveLookups(); err != nil {
			return nil, fmt.Errorf("resolve lookups: %w", err)
		}
	}

	decompiled, err := decompileInstructions(&msg)
	if err != nil {
		return nil, err
	}
	instructions := append([]solana.Instruction{ix}, decompiled...)

	if len(msg.AccountKeys) == 0 {
		return nil, fmt.Errorf("transaction has no account keys")
	}
	payer := msg.AccountKeys[0]

	opts := []solana.TransactionOption{solana.TransactionPayer(payer)}
	if len(tables) > 0 {
		opts = append(opts, solana.TransactionAddressTables(tables))
	}

	rebuilt, err := solana.NewTransaction(instructions, msg.RecentBlockhash, opts...)
	if err != nil {
		return nil, fmt.Errorf("recompile transaction: %w", err)
	}
	return rebuilt, nil
}

// decompileInstructions expands compiled instructions back into generic
// instructions with full account metas.
func decompileInstructions(msg *solana.Message) ([]solana.Instruction, error) {
	out := make([]solana.Instruction, 0, len(msg.Instructions))
	for i, compiled := range msg.Instructions {
		programID, err := msg.Program(compiled.ProgramIDIndex)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: resolve program: %w", i, err)
		}
		metas := make(solana.AccountMetaSlice, 0, len(compiled.Accounts))
		for _, accIdx := range compiled.Accounts {
			key, err := msg.Account(accIdx)
			if err != nil {
				return nil, fmt.Errorf("instruction %d: resolve account %d: %w", i, accIdx, err)
			}
			writable, err := msg.IsWritable(key)
			if err != nil {
				return nil, fmt.Errorf("instruction %d: writable flag for %s: %w", i, key, err)
			}
			metas = append(metas, &solana.AccountMeta{
				PublicKey:  key,
				IsSigner:   msg.IsSigner(key),
				IsWritable: writable,
			})
		}
		out = append(out, solana.NewInstruction(programID, metas, compiled.Data))
	}
	return out, nil
}
