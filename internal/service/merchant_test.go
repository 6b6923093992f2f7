package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
	"github.com/solpayhq/solpay/internal/domain/payment"
	"github.com/solpayhq/solpay/internal/testutil"
)

func TestGetProfile(t *testing.T) {
	merchants := testutil.NewMockMerchantRepository()
	shop := testutil.NewTestMerchant()
	merchants.AddMerchant(shop)
	svc := NewMerchantService(merchants, testutil.NewMockPaymentRepository(), zerolog.Nop())

	profile, err := svc.GetProfile(context.Background(), shop.ID)
	require.NoError(t, err)
	assert.Equal(t, shop.ID, profile.ID)
	assert.Equal(t, shop.Name, profile.BusinessName)
	assert.Equal(t, shop.SolanaPublicKey, profile.SolanaPublicKey)
	assert.Equal(t, fmt.Sprintf("/merchant/%d", shop.ID), profile.PublicProfileURL)
	assert.Contains(t, profile.SupportedTokens, "usdc")
}

func TestGetProfile_NotFound(t *testing.T) {
	svc := NewMerchantService(testutil.NewMockMerchantRepository(), testutil.NewMockPaymentRepository(), zerolog.Nop())

	_, err := svc.GetProfile(context.Background(), 7)
	require.ErrorIs(t, err, domainErrors.ErrMerchantNotFound)
}

func TestCreateMerchant(t *testing.T) {
	svc := NewMerchantService(testutil.NewMockMerchantRepository(), testutil.NewMockPaymentRepository(), zerolog.Nop())

	in := CreateMerchantInput{
		UserID:              uuid.New(),
		BusinessName:        "Corner Bakery",
		BusinessDescription: "Fresh bread and pastries every morning",
		SolanaPubKey:        solana.NewWallet().PublicKey().String(),
	}
	m, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.NotZero(t, m.ID)
	assert.Equal(t, in.BusinessName, m.Name)
}

func TestCreateMerchant_DuplicateUser(t *testing.T) {
	merchants := testutil.NewMockMerchantRepository()
	shop := testutil.NewTestMerchant()
	merchants.AddMerchant(shop)
	svc := NewMerchantService(merchants, testutil.NewMockPaymentRepository(), zerolog.Nop())

	_, err := svc.Create(context.Background(), CreateMerchantInput{
		UserID:              shop.UserID,
		BusinessName:        "Second Shop",
		BusinessDescription: "One shop per user is the rule",
		SolanaPubKey:        solana.NewWallet().PublicKey().String(),
	})
	require.ErrorIs(t, err, domainErrors.ErrMerchantExists)
}

func TestCreateMerchant_InvalidKey(t *testing.T) {
	svc := NewMerchantService(testutil.NewMockMerchantRepository(), testutil.NewMockPaymentRepository(), zerolog.Nop())

	_, err := svc.Create(context.Background(), CreateMerchantInput{
		UserID:              uuid.New(),
		BusinessName:        "Corner Bakery",
		BusinessDescription: "Fresh bread and pastries every morning",
		SolanaPubKey:        "not-a-key",
	})
	require.Error(t, err)
}

func TestRecentPayments_ClampsLimit(t *testing.T) {
	merchants := testutil.NewMockMerchantRepository()
	shop := testutil.NewTestMerchant()
	merchants.AddMerchant(shop)
	payments := testutil.NewMockPaymentRepository()

	var gotLimit int
	payments.ListByShopFunc = func(ctx context.Context, shopID int64, limit int) ([]*payment.Record, error) {
		gotLimit = limit
		return nil, nil
	}
	svc := NewMerchantService(merchants, payments, zerolog.Nop())

	_, err := svc.RecentPayments(context.Background(), shop.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)

	_, err = svc.RecentPayments(context.Background(), shop.ID, 500)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)
}
