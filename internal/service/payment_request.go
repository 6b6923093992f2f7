package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
	"github.com/solpayhq/solpay/internal/domain/merchant"
	"github.com/solpayhq/solpay/internal/jupiter"
	"github.com/solpayhq/solpay/internal/observability"
	solnet "github.com/solpayhq/solpay/internal/solana"
)

// PaymentRequestService composes merchant lookup, quote acquisition and
// swap construction into the "create payable transaction" operation. It
// mutates no state; every call re-quotes because prices move and quotes
// expire within seconds.
type PaymentRequestService struct {
	merchants       merchant.Repository
	quoter          Quoter
	swaps           SwapBuilder
	network         Network
	usdcMint        solana.PublicKey
	slippageBps     int
	upstreamTimeout time.Duration
	metrics         *observability.Metrics
	logger          zerolog.Logger
}

// NewPaymentRequestService creates a PaymentRequestService.
func NewPaymentRequestService(
	merchants merchant.Repository,
	quoter Quoter,
	swaps SwapBuilder,
	network Network,
	usdcMint solana.PublicKey,
	slippageBps int,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *PaymentRequestService {
	return &PaymentRequestService{
		merchants:       merchants,
		quoter:          quoter,
		swaps:           swaps,
		network:         network,
		usdcMint:        usdcMint,
		slippageBps:     slippageBps,
		upstreamTimeout: 10 * time.Second,
		metrics:         metrics,
		logger:          logger,
	}
}

// CreatePaymentRequest holds the already-validated input for building a
// payable transaction.
type CreatePaymentRequest struct {
	Customer    solana.PublicKey
	InputMint   solana.PublicKey
	TokenAmount uint64 // whole units of the reference asset
	ShopID      int64
}

// CreatePaymentRequest builds an unsigned, base64-encoded swap transaction
// paying TokenAmount of the reference asset to the shop's derived token
// account. When that account does not yet exist on-chain, a create
// instruction is spliced in front of the swap so first-time merchants can
// still be paid.
func (s *PaymentRequestService) CreatePaymentRequest(ctx context.Context, req CreatePaymentRequest) (string, error) {
	var (
		shop     *merchant.Merchant
		decimals uint8
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.merchants.GetByID(gctx, req.ShopID)
		if err != nil {
			return err
		}
		shop = m
		return nil
	})
	g.Go(func() error {
		tctx, cancel := context.WithTimeout(gctx, s.upstreamTimeout)
		defer cancel()
		d, err := s.network.TokenDecimals(tctx, s.usdcMint)
		if err != nil {
			return err
		}
		decimals = d
		return nil
	})
	if err := g.Wait(); err != nil {
		s.countRequest(err)
		return "", err
	}

	outputAmount, err := solnet.ScaleToBaseUnits(req.TokenAmount, decimals)
	if err != nil {
		s.countRequest(err)
		return "", err
	}

	merchantKey, err := shop.ReceivingKey()
	if err != nil {
		return "", fmt.Errorf("shop %d has invalid receiving key: %w", shop.ID, err)
	}
	destination, err := solnet.DeriveAssociatedTokenAddress(merchantKey, s.usdcMint)
	if err != nil {
		return "", err
	}

	qctx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()
	quote, err := s.quoter.Quote(qctx, jupiter.QuoteParams{
		InputMint:   req.InputMint.String(),
		OutputMint:  s.usdcMint.String(),
		Amount:      outputAmount,
		SlippageBps: s.slippageBps,
	})
	if err != nil {
		s.countRequest(err)
		return "", err
	}

	sctx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()
	swapTx, err := s.swaps.BuildSwap(sctx, quote, req.Customer.String(), destination.String())
	if err != nil {
		s.countRequest(err)
		return "", err
	}

	swapTx, err = s.ensureDestinationAccount(ctx, swapTx, req.Customer, merchantKey, destination)
	if err != nil {
		s.countRequest(err)
		return "", err
	}

	s.logger.Info().
		Int64("shop_id", req.ShopID).
		Uint64("output_amount", outputAmount).
		Str("destination", destination.String()).
		Msg("payment request built")
	s.countRequest(nil)
	return swapTx, nil
}

// ensureDestinationAccount prepends a create-destination-account
// instruction when the merchant's token account is absent on-chain. The
// lookup-table references of the swap transaction are re-resolved so the
// amended message stays valid.
func (s *PaymentRequestService) ensureDestinationAccount(ctx context.Context, swapTx string, customer, merchantKey, destination solana.PublicKey) (string, error) {
	ectx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()
	exists, err := s.network.AccountExists(ectx, destination)
	if err != nil {
		return "", err
	}
	if exists {
		return swapTx, nil
	}

	tx, err := solnet.DecodeBase64Transaction(swapTx)
	if err != nil {
		return "", fmt.Errorf("%w: undecodable swap transaction: %v", domainErrors.ErrSwapConstructionFailed, err)
	}

	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(tx.Message.AddressTableLookups))
	for _, lookup := range tx.Message.AddressTableLookups {
		tctx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
		addresses, err := s.network.AddressTable(tctx, lookup.AccountKey)
		cancel()
		if err != nil {
			return "", err
		}
		tables[lookup.AccountKey] = addresses
	}

	createIx, err := solnet.NewCreateIdempotentATAInstruction(customer, merchantKey, s.usdcMint)
	if err != nil {
		return "", err
	}
	rebuilt, err := solnet.PrependInstruction(tx, createIx, tables)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainErrors.ErrSwapConstructionFailed, err)
	}

	if s.metrics != nil {
		s.metrics.ATACreationsSpliced.Inc()
	}
	s.logger.Debug().Str("destination", destination.String()).Msg("spliced destination account creation")
	return solnet.EncodeBase64Transaction(rebuilt)
}

func (s *PaymentRequestService) countRequest(err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.PaymentRequestsTotal.WithLabelValues(outcome).Inc()
}
