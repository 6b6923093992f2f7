package service

import (
	"context"
	"errors"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
	"github.com/solpayhq/solpay/internal/domain/merchant"
	"github.com/solpayhq/solpay/internal/domain/payment"
	"github.com/solpayhq/solpay/internal/observability"
	solnet "github.com/solpayhq/solpay/internal/solana"
)

// VerificationService validates a customer-signed transaction against the
// expected shop and payment details, dry-runs it against the settlement
// network, and records the payment. A rejected simulation never yields a
// success result, and re-verifying the same signed transaction returns
// the original confirmation instead of creating a second record.
type VerificationService struct {
	merchants       merchant.Repository
	payments        payment.Repository
	network         Network
	upstreamTimeout time.Duration
	metrics         *observability.Metrics
	logger          zerolog.Logger
}

// NewVerificationService creates a VerificationService.
func NewVerificationService(
	merchants merchant.Repository,
	payments payment.Repository,
	network Network,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *VerificationService {
	return &VerificationService{
		merchants:       merchants,
		payments:        payments,
		network:         network,
		upstreamTimeout: 10 * time.Second,
		metrics:         metrics,
		logger:          logger,
	}
}

// PaymentDetails are the customer-supplied details accompanying a signed
// transaction.
type PaymentDetails struct {
	Amount    int64
	Token     string
	Email     string
	Name      string
	Reference string
}

// Confirmation is returned to the caller after a recorded payment.
type Confirmation struct {
	Reference string
	Amount    int64
	Email     string
}

// Verify runs the verification sequence: resolve shop, deserialize,
// simulate, record. No retries happen inside this call; failures surface
// synchronously and the caller decides whether to retry end to end.
func (s *VerificationService) Verify(ctx context.Context, shopID int64, signedTransaction string, details PaymentDetails) (*Confirmation, error) {
	start := time.Now()
	conf, err := s.verify(ctx, shopID, signedTransaction, details)
	s.observe(time.Since(start), err)
	return conf, err
}

func (s *VerificationService) verify(ctx context.Context, shopID int64, signedTransaction string, details PaymentDetails) (*Confirmation, error) {
	if _, err := s.merchants.GetByID(ctx, shopID); err != nil {
		return nil, err
	}

	tx, err := solnet.DecodeBase64Transaction(signedTransaction)
	if err != nil {
		return nil, err
	}
	sig := solnet.FirstSignature(tx)
	if sig == "" || tx.Signatures[0] == (solana.Signature{}) {
		return nil, domainErrors.ErrMalformedTransaction
	}

	// A transaction already recorded for this signature is a replay:
	// return the stored confirmation rather than simulating again.
	if existing, err := s.payments.GetByTxSignature(ctx, sig); err == nil && existing != nil {
		s.logger.Info().Str("tx_signature", sig).Msg("verification replayed")
		return confirmationFrom(existing), nil
	}

	sctx, cancel := context.WithTimeout(ctx, s.upstreamTimeout)
	defer cancel()
	if err := s.network.Simulate(sctx, tx); err != nil {
		var simErr *domainErrors.SimulationError
		if errors.As(err, &simErr) {
			s.logger.Warn().
				Int64("shop_id", shopID).
				Str("tx_signature", sig).
				Str("network_error", simErr.NetworkErr).
				Msg("simulation rejected")
		}
		return nil, err
	}

	rec, err := payment.NewRecord(shopID, details.Email, details.Name, details.Amount, sig, details.Reference)
	if err != nil {
		return nil, err
	}
	if err := rec.MarkCompleted(); err != nil {
		return nil, err
	}

	if err := s.payments.Create(ctx, rec); err != nil {
		// Lost a race with a concurrent verification of the same
		// transaction; the stored record wins.
		if errors.Is(err, domainErrors.ErrPaymentAlreadyRecorded) {
			existing, getErr := s.payments.GetByTxSignature(ctx, sig)
			if getErr != nil {
				return nil, getErr
			}
			return confirmationFrom(existing), nil
		}
		return nil, err
	}

	s.logger.Info().
		Int64("shop_id", shopID).
		Str("tx_signature", sig).
		Int64("amount", rec.Amount).
		Msg("payment recorded")
	return confirmationFrom(rec), nil
}

func confirmationFrom(r *payment.Record) *Confirmation {
	return &Confirmation{
		Reference: r.Reference,
		Amount:    r.Amount,
		Email:     r.Email,
	}
}

func (s *VerificationService) observe(d time.Duration, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "recorded"
	switch {
	case err == nil:
	case errors.Is(err, domainErrors.ErrSimulationRejected):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	s.metrics.VerificationsTotal.WithLabelValues(outcome).Inc()
	s.metrics.VerificationDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
