package controller

import (
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
	"github.com/solpayhq/solpay/internal/domain/merchant"
	"github.com/solpayhq/solpay/internal/domain/payment"
	"github.com/solpayhq/solpay/internal/service"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (string-encoded keys and amounts,
// validation tags). Controllers convert them to service layer inputs
// before calling business logic.

// PaymentRequestRequest holds the input for building a payment transaction.
type PaymentRequestRequest struct {
	Customer       string `json:"customer" validate:"required,min=32,max=44"`
	InputTokenMint string `json:"inputTokenMint" validate:"required,min=32,max=44"`
	TokenAmount    string `json:"tokenAmount" validate:"required"`
	ShopID         string `json:"shopId" validate:"required"`
}

// Parse converts the wire form into validated service input.
func (r *PaymentRequestRequest) Parse() (service.CreatePaymentRequest, error) {
	customer, err := solana.PublicKeyFromBase58(r.Customer)
	if err != nil {
		return service.CreatePaymentRequest{}, domainErrors.NewValidationError("customer", "not a valid public key")
	}
	inputMint, err := solana.PublicKeyFromBase58(r.InputTokenMint)
	if err != nil {
		return service.CreatePaymentRequest{}, domainErrors.NewValidationError("inputTokenMint", "not a valid public key")
	}
	amount, err := strconv.ParseUint(r.TokenAmount, 10, 64)
	if err != nil || amount == 0 {
		return service.CreatePaymentRequest{}, domainErrors.NewValidationError("tokenAmount", "must be a positive integer")
	}
	shopID, err := strconv.ParseInt(r.ShopID, 10, 64)
	if err != nil || shopID <= 0 {
		return service.CreatePaymentRequest{}, domainErrors.NewValidationError("shopId", "must be a positive integer")
	}
	return service.CreatePaymentRequest{
		Customer:    customer,
		InputMint:   inputMint,
		TokenAmount: amount,
		ShopID:      shopID,
	}, nil
}

// PaymentDetailsDTO carries the customer-supplied payment details.
type PaymentDetailsDTO struct {
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Token     string `json:"token" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"required"`
	Reference string `json:"reference,omitempty"`
}

// VerifyPaymentRequest holds the input for verifying a signed transaction.
type VerifyPaymentRequest struct {
	SignedTransaction string            `json:"signedTransaction" validate:"required"`
	PaymentDetails    PaymentDetailsDTO `json:"paymentDetails" validate:"required"`
	ShopID            int64             `json:"shopId" validate:"required,gt=0"`
}

// CreateMerchantRequest holds the input for registering a shop.
type CreateMerchantRequest struct {
	UserID              string `json:"userId" validate:"required,uuid"`
	BusinessName        string `json:"businessName" validate:"required,min=3,max=120"`
	BusinessDescription string `json:"businessDescription" validate:"required,min=10,max=1024"`
	SolanaPubKey        string `json:"solanaPubKey" validate:"required,min=32,max=44"`
	WebhookURL          string `json:"webhookUrl,omitempty" validate:"omitempty,url"`
}

// --- Response DTOs ---

// PaymentRequestResponse carries the unsigned transaction back to the payer.
type PaymentRequestResponse struct {
	SwapTransaction string `json:"swapTransaction"`
}

// VerifyPaymentResponse is the envelope for a verification result.
type VerifyPaymentResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    ConfirmationData `json:"data"`
}

// ConfirmationData echoes the recorded payment back to the payer.
type ConfirmationData struct {
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Email     string `json:"email"`
}

// MerchantResponse represents a shop in API responses.
type MerchantResponse struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	SolanaPublicKey string    `json:"solanaPublicKey"`
	WebhookURL      string    `json:"webhookUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PaymentRecordResponse represents a recorded payment in API responses.
type PaymentRecordResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	TxSignature string     `json:"txSignature"`
	Reference   string     `json:"reference"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromConfirmation converts a service confirmation to API response data.
func FromConfirmation(c *service.Confirmation) ConfirmationData {
	return ConfirmationData{
		Reference: c.Reference,
		Amount:    c.Amount,
		Email:     c.Email,
	}
}

// FromMerchant converts a domain merchant to API response.
func FromMerchant(m *merchant.Merchant) *MerchantResponse {
	return &MerchantResponse{
		ID:              m.ID,
		UserID:          m.UserID.String(),
		Name:            m.Name,
		Description:     m.Description,
		SolanaPublicKey: m.SolanaPublicKey,
		WebhookURL:      m.WebhookURL,
		CreatedAt:       m.CreatedAt,
	}
}

// FromRecord converts a domain payment record to API response.
func FromRecord(r *payment.Record) *PaymentRecordResponse {
	return &PaymentRecordResponse{
		ID:          r.ID,
		Email:       r.Email,
		Name:        r.Name,
		Amount:      r.Amount,
		Status:      string(r.Status),
		TxSignature: r.TxSignature,
		Reference:   r.Reference,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

// parseUUID parses a UUID string, returning nil if invalid.
func parseUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
