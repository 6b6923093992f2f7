package controller

import (
	"net/http"

	"github.com/solpayhq/solpay/internal/service"
)

// PaymentController handles the payment-request and payment-verify endpoints.
type PaymentController struct {
	requests      *service.PaymentRequestService
	verifications *service.VerificationService
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(
	requests *service.PaymentRequestService,
	verifications *service.VerificationService,
) *PaymentController {
	return &PaymentController{
		requests:      requests,
		verifications: verifications,
	}
}

// CreatePaymentRequest handles POST /api/v1/payment-request
func (h *PaymentController) CreatePaymentRequest(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequestRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.Parse()
	if err != nil {
		writeError(w, err)
		return
	}

	swapTx, err := h.requests.CreatePaymentRequest(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PaymentRequestResponse{SwapTransaction: swapTx})
}

// VerifyPayment handles POST /api/v1/payment-verify
func (h *PaymentController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	conf, err := h.verifications.Verify(r.Context(), req.ShopID, req.SignedTransaction, service.PaymentDetails{
		Amount:    req.PaymentDetails.Amount,
		Token:     req.PaymentDetails.Token,
		Email:     req.PaymentDetails.Email,
		Name:      req.PaymentDetails.Name,
		Reference: req.PaymentDetails.Reference,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, VerifyPaymentResponse{
		Success: true,
		Message: "payment verified and recorded",
		Data:    FromConfirmation(conf),
	})
}
