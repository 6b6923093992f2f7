package testutil

import (
	"encoding/base64"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/google/uuid"

	"github.com/solpayhq/solpay/internal/domain/merchant"
	"github.com/solpayhq/solpay/internal/domain/payment"
)

// USDCMint is the mainnet USDC mint, used as the settlement asset in tests.
var USDCMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

func NewTestMerchant() *merchant.Merchant {
	return &merchant.Merchant{
		UserID:          uuid.New(),
		Name:            "Test Coffee Shop",
		Description:     "A small coffee shop that takes crypto",
		SolanaPublicKey: solana.NewWallet().PublicKey().String(),
		CreatedAt:       time.Now(),
	}
}

func NewTestRecord(shopID int64, sig string) *payment.Record {
	return &payment.Record{
		ShopID:      shopID,
		Email:       "customer@example.com",
		Name:        "Test Customer",
		Amount:      5,
		Status:      payment.StatusCompleted,
		TxSignature: sig,
		Reference:   uuid.New().String(),
		CreatedAt:   time.Now(),
	}
}

// NewTestTransaction builds a minimal signed-looking transaction: a single
// system transfer with a non-zero placeholder signature.
func NewTestTransaction(payer solana.PublicKey) *solana.Transaction {
	recipient := solana.NewWallet().PublicKey()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, payer, recipient).Build(),
		},
		solana.Hash{1},
		solana.TransactionPayer(payer),
	)
	if err != nil {
		panic(err)
	}
	tx.Signatures = []solana.Signature{{1, 2, 3}}
	return tx
}

// EncodeTestTransaction returns the base64 wire form of a test transaction.
func EncodeTestTransaction(payer solana.PublicKey) string {
	tx := NewTestTransaction(payer)
	raw, err := tx.MarshalBinary()
	if err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}
