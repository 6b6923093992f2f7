package service

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"

	"github.com/solpayhq/solpay/internal/jupiter"
)

// Quoter fetches a priced route for an exact output amount.
type Quoter interface {
	Quote(ctx context.Context, p jupiter.QuoteParams) (json.RawMessage, error)
}

// SwapBuilder obtains an unsigned serialized swap transaction for a quote.
type SwapBuilder interface {
	BuildSwap(ctx context.Context, quote json.RawMessage, userPublicKey, destinationTokenAccount string) (string, error)
}

// Network is the settlement-network surface the payment flow depends on.
type Network interface {
	TokenDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
	AddressTable(ctx context.Context, key solana.PublicKey) (solana.PublicKeySlice, error)
	Simulate(ctx context.Context, tx *solana.Transaction) error
}
