package solana

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	"github.com/gagliardetto/solana-go/rpc"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
)

// Client talks to a Solana RPC node. It is safe for concurrent use and is
// intended to be created once at process start and injected.
type Client struct {
	rpc        *rpc.Client
	commitment rpc.CommitmentType
}

// NewClient creates a Client against the given RPC endpoint.
func NewClient(endpoint string, commitment rpc.CommitmentType) *Client {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Client{
		rpc:        rpc.New(endpoint),
		commitment: commitment,
	}
}

// TokenDecimals fetches the declared decimal precision of a mint.
func (c *Client) TokenDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	supply, err := c.rpc.GetTokenSupply(ctx, mint, c.commitment)
	if err != nil {
		return 0, domainErrors.NewUpstreamError("solana-rpc", fmt.Errorf("get token supply for %s: %w", mint, err))
	}
	if supply == nil || supply.Value == nil {
		return 0, domainErrors.NewUpstreamError("solana-rpc", fmt.Errorf("empty token supply for %s", mint))
	}
	return supply.Value.Decimals, nil
}

// AccountExists reports whether an account is present on-chain.
func (c *Client) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	_, err := c.rpc.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
	})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return false, nil
		}
		return false, domainErrors.NewUpstreamError("solana-rpc", fmt.Errorf("get account info for %s: %w", account, err))
	}
	return true, nil
}

// AddressTable fetches and decodes an address lookup table account.
func (c *Client) AddressTable(ctx context.Context, key solana.PublicKey) (solana.PublicKeySlice, error) {
	info, err := c.rpc.GetAccountInfoWithOpts(ctx, key, &rpc.GetAccountInfoOpts{
		Commitment: c.commitment,
	})
	if err != nil {
		return nil, domainErrors.NewUpstreamError("solana-rpc", fmt.Errorf("get lookup table %s: %w", key, err))
	}
	state, err := addresslookuptable.DecodeAddressLookupTableState(info.Value.Data.GetBinary())
	if err != nil {
		return nil, domainErrors.NewUpstreamError("solana-rpc", fmt.Errorf("decode lookup table %s: %w", key, err))
	}
	return state.Addresses, nil
}

// Simulate dry-runs a signed transaction against current network state.
// A network-reported execution error maps to a SimulationError; transport
// failures map to an upstream error.
func (c *Client) Simulate(ctx context.Context, tx *solana.Transaction) error {
	res, err := c.rpc.SimulateTransactionWithOpts(ctx, tx, &rpc.SimulateTransactionOpts{
		SigVerify:  true,
		Commitment: c.commitment,
	})
	if err != nil {
		return domainErrors.NewUpstreamError("solana-rpc", fmt.Errorf("simulate transaction: %w", err))
	}
	if res == nil || res.Value == nil {
		return domainErrors.NewUpstreamError("solana-rpc", errors.New("empty simulation response"))
	}
	if res.Value.Err != nil {
		return domainErrors.NewSimulationError(fmt.Sprintf("%v", res.Value.Err))
	}
	return nil
}
