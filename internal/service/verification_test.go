package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
	"github.com/solpayhq/solpay/internal/domain/payment"
	solnet "github.com/solpayhq/solpay/internal/solana"
	"github.com/solpayhq/solpay/internal/testutil"
)

func newVerificationFixture(t *testing.T) (*VerificationService, *testutil.MockPaymentRepository, *testutil.MockNetwork, int64, string) {
	t.Helper()
	merchants := testutil.NewMockMerchantRepository()
	shop := testutil.NewTestMerchant()
	merchants.AddMerchant(shop)
	payments := testutil.NewMockPaymentRepository()
	network := &testutil.MockNetwork{}
	svc := NewVerificationService(merchants, payments, network, nil, zerolog.Nop())
	signed := testutil.EncodeTestTransaction(solana.NewWallet().PublicKey())
	return svc, payments, network, shop.ID, signed
}

func testDetails() PaymentDetails {
	return PaymentDetails{
		Amount:    5,
		Token:     "usdc",
		Email:     "customer@example.com",
		Name:      "Test Customer",
		Reference: "order-123",
	}
}

func TestVerify_Success(t *testing.T) {
	svc, payments, network, shopID, signed := newVerificationFixture(t)

	conf, err := svc.Verify(context.Background(), shopID, signed, testDetails())
	require.NoError(t, err)
	assert.Equal(t, "order-123", conf.Reference)
	assert.Equal(t, int64(5), conf.Amount)
	assert.Equal(t, "customer@example.com", conf.Email)
	assert.Equal(t, 1, network.SimulateCalls())
	assert.Equal(t, 1, payments.Count())

	tx, err := solnet.DecodeBase64Transaction(signed)
	require.NoError(t, err)
	rec, err := payments.GetByTxSignature(context.Background(), solnet.FirstSignature(tx))
	require.NoError(t, err)
	assert.Equal(t, payment.StatusCompleted, rec.Status)
	assert.NotNil(t, rec.CompletedAt)
}

func TestVerify_SimulationRejectedNeverSucceeds(t *testing.T) {
	svc, payments, network, shopID, signed := newVerificationFixture(t)
	network.SimulateFunc = func(ctx context.Context, tx *solana.Transaction) error {
		return domainErrors.NewSimulationError(`{"InstructionError":[2,{"Custom":6001}]}`)
	}

	conf, err := svc.Verify(context.Background(), shopID, signed, testDetails())
	require.ErrorIs(t, err, domainErrors.ErrSimulationRejected)
	assert.Nil(t, conf)
	assert.Zero(t, payments.Count(), "rejected simulation must not record a payment")
}

func TestVerify_ReplayReturnsStoredConfirmation(t *testing.T) {
	svc, payments, network, shopID, signed := newVerificationFixture(t)

	first, err := svc.Verify(context.Background(), shopID, signed, testDetails())
	require.NoError(t, err)

	second, err := svc.Verify(context.Background(), shopID, signed, testDetails())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, payments.Count(), "replay must not create a second record")
	assert.Equal(t, 1, network.SimulateCalls(), "replay must not simulate again")
}

func TestVerify_MalformedTransaction(t *testing.T) {
	svc, _, network, shopID, _ := newVerificationFixture(t)

	_, err := svc.Verify(context.Background(), shopID, "not base64!!", testDetails())
	require.ErrorIs(t, err, domainErrors.ErrMalformedTransaction)
	assert.Zero(t, network.SimulateCalls())
}

func TestVerify_UnsignedTransaction(t *testing.T) {
	svc, _, network, shopID, _ := newVerificationFixture(t)

	tx := testutil.NewTestTransaction(solana.NewWallet().PublicKey())
	tx.Signatures = []solana.Signature{{}} // placeholder, never signed
	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), shopID, base64.StdEncoding.EncodeToString(raw), testDetails())
	require.ErrorIs(t, err, domainErrors.ErrMalformedTransaction)
	assert.Zero(t, network.SimulateCalls())
}

func TestVerify_ShopNotFound(t *testing.T) {
	svc, _, network, _, signed := newVerificationFixture(t)

	_, err := svc.Verify(context.Background(), 999, signed, testDetails())
	require.ErrorIs(t, err, domainErrors.ErrMerchantNotFound)
	assert.Zero(t, network.SimulateCalls())
}

func TestVerify_ConcurrentInsertLosesRaceGracefully(t *testing.T) {
	svc, payments, _, shopID, signed := newVerificationFixture(t)

	tx, err := solnet.DecodeBase64Transaction(signed)
	require.NoError(t, err)
	sig := solnet.FirstSignature(tx)
	stored := testutil.NewTestRecord(shopID, sig)

	lookups := 0
	payments.GetByTxSignatureFunc = func(ctx context.Context, s string) (*payment.Record, error) {
		lookups++
		if lookups == 1 {
			// Not recorded at pre-check time; a concurrent request
			// inserts between the check and our insert.
			return nil, domainErrors.ErrPaymentNotFound
		}
		return stored, nil
	}
	payments.CreateFunc = func(ctx context.Context, r *payment.Record) error {
		return domainErrors.ErrPaymentAlreadyRecorded
	}

	conf, err := svc.Verify(context.Background(), shopID, signed, testDetails())
	require.NoError(t, err)
	assert.Equal(t, stored.Reference, conf.Reference)
	assert.Equal(t, stored.Amount, conf.Amount)
}

func TestVerify_InvalidDetailsRejected(t *testing.T) {
	svc, payments, _, shopID, signed := newVerificationFixture(t)

	details := testDetails()
	details.Amount = 0
	_, err := svc.Verify(context.Background(), shopID, signed, details)
	require.Error(t, err)
	assert.Zero(t, payments.Count())
}
