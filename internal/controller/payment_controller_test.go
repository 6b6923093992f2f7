package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
	"github.com/solpayhq/solpay/internal/domain/merchant"
	"github.com/solpayhq/solpay/internal/service"
	"github.com/solpayhq/solpay/internal/testutil"
)

func newPaymentHandler(t *testing.T) (*PaymentController, *merchant.Merchant, *testutil.MockNetwork) {
	t.Helper()
	merchants := testutil.NewMockMerchantRepository()
	shop := testutil.NewTestMerchant()
	merchants.AddMerchant(shop)

	network := &testutil.MockNetwork{}
	customer := solana.NewWallet().PublicKey()
	swaps := &testutil.MockSwapBuilder{
		BuildSwapFunc: func(ctx context.Context, quote json.RawMessage, userPublicKey, destinationTokenAccount string) (string, error) {
			return testutil.EncodeTestTransaction(customer), nil
		},
	}

	requests := service.NewPaymentRequestService(
		merchants, &testutil.MockQuoter{}, swaps, network,
		testutil.USDCMint, 50, nil, zerolog.Nop(),
	)
	verifications := service.NewVerificationService(
		merchants, testutil.NewMockPaymentRepository(), network, nil, zerolog.Nop(),
	)
	return NewPaymentController(requests, verifications), shop, network
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestPaymentController_CreatePaymentRequest(t *testing.T) {
	handler, shop, _ := newPaymentHandler(t)

	rec := postJSON(t, handler.CreatePaymentRequest, "/api/v1/payment-request", PaymentRequestRequest{
		Customer:       solana.NewWallet().PublicKey().String(),
		InputTokenMint: solana.SolMint.String(),
		TokenAmount:    "5",
		ShopID:         strconv.FormatInt(shop.ID, 10),
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp PaymentRequestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SwapTransaction == "" {
		t.Error("expected a swapTransaction in the response")
	}
}

func TestPaymentController_CreatePaymentRequest_UnknownShop(t *testing.T) {
	handler, _, _ := newPaymentHandler(t)

	rec := postJSON(t, handler.CreatePaymentRequest, "/api/v1/payment-request", PaymentRequestRequest{
		Customer:       solana.NewWallet().PublicKey().String(),
		InputTokenMint: solana.SolMint.String(),
		TokenAmount:    "5",
		ShopID:         "9999",
	})

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d: %s", http.StatusNotFound, rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != "not_found" {
		t.Errorf("expected code not_found, got %q", resp.Code)
	}
}

func TestPaymentController_CreatePaymentRequest_InvalidCustomer(t *testing.T) {
	handler, shop, _ := newPaymentHandler(t)

	rec := postJSON(t, handler.CreatePaymentRequest, "/api/v1/payment-request", PaymentRequestRequest{
		Customer:       "definitely-not-a-solana-public-key-value",
		InputTokenMint: solana.SolMint.String(),
		TokenAmount:    "5",
		ShopID:         strconv.FormatInt(shop.ID, 10),
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestPaymentController_CreatePaymentRequest_NonNumericAmount(t *testing.T) {
	handler, shop, _ := newPaymentHandler(t)

	rec := postJSON(t, handler.CreatePaymentRequest, "/api/v1/payment-request", PaymentRequestRequest{
		Customer:       solana.NewWallet().PublicKey().String(),
		InputTokenMint: solana.SolMint.String(),
		TokenAmount:    "five",
		ShopID:         strconv.FormatInt(shop.ID, 10),
	})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestPaymentController_CreatePaymentRequest_ZeroAmount(t *testing.T) {
	handler, shop, _ := newPaymentHandler(t)

	rec := postJSON(t, handler.CreatePaymentRequest, "/api/v1/payment-request", PaymentRequestRequest{
		Customer:       solana.NewWallet().PublicKey().String(),
		InputTokenMint: solana.SolMint.String(),
		TokenAmount:    "0",
		ShopID:         strconv.FormatInt(shop.ID, 10),
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !strings.Contains(resp.Error, "tokenAmount") {
		t.Errorf("expected validation message referencing tokenAmount, got %q", resp.Error)
	}
}

func verifyBody(shopID int64, signed string) VerifyPaymentRequest {
	return VerifyPaymentRequest{
		SignedTransaction: signed,
		PaymentDetails: PaymentDetailsDTO{
			Amount:    5,
			Token:     "usdc",
			Email:     "customer@example.com",
			Name:      "Test Customer",
			Reference: "order-123",
		},
		ShopID: shopID,
	}
}

func TestPaymentController_VerifyPayment(t *testing.T) {
	handler, shop, _ := newPaymentHandler(t)
	signed := testutil.EncodeTestTransaction(solana.NewWallet().PublicKey())

	rec := postJSON(t, handler.VerifyPayment, "/api/v1/payment-verify", verifyBody(shop.ID, signed))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp VerifyPaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.Data.Reference != "order-123" {
		t.Errorf("expected reference order-123, got %q", resp.Data.Reference)
	}
}

func TestPaymentController_VerifyPayment_SimulationRejected(t *testing.T) {
	handler, shop, network := newPaymentHandler(t)
	network.SimulateFunc = func(ctx context.Context, tx *solana.Transaction) error {
		return domainErrors.NewSimulationError(`{"InsufficientFundsForFee":null}`)
	}
	signed := testutil.EncodeTestTransaction(solana.NewWallet().PublicKey())

	rec := postJSON(t, handler.VerifyPayment, "/api/v1/payment-verify", verifyBody(shop.ID, signed))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("rejected simulation must not return success: got %d: %s", rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != "simulation_rejected" {
		t.Errorf("expected code simulation_rejected, got %q", resp.Code)
	}
}

func TestPaymentController_VerifyPayment_MalformedTransaction(t *testing.T) {
	handler, shop, _ := newPaymentHandler(t)

	rec := postJSON(t, handler.VerifyPayment, "/api/v1/payment-verify", verifyBody(shop.ID, "%%%not-base64%%%"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != "malformed_transaction" {
		t.Errorf("expected code malformed_transaction, got %q", resp.Code)
	}
}
