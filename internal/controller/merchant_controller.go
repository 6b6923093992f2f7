package controller

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/solpayhq/solpay/internal/service"
)

// MerchantController handles shop profile and onboarding requests.
type MerchantController struct {
	merchants *service.MerchantService
}

// NewMerchantController creates a new MerchantController.
func NewMerchantController(merchants *service.MerchantService) *MerchantController {
	return &MerchantController{merchants: merchants}
}

// GetProfile handles GET /api/v1/merchant?shopId=
func (h *MerchantController) GetProfile(w http.ResponseWriter, r *http.Request) {
	shopID, err := strconv.ParseInt(r.URL.Query().Get("shopId"), 10, 64)
	if err != nil || shopID <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid shopId", Code: "invalid_id"})
		return
	}

	profile, err := h.merchants.GetProfile(r.Context(), shopID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Create handles POST /api/v1/merchant
func (h *MerchantController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMerchantRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	userID := parseUUID(req.UserID)
	if userID == nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid userId", Code: "invalid_id"})
		return
	}

	m, err := h.merchants.Create(r.Context(), service.CreateMerchantInput{
		UserID:              *userID,
		BusinessName:        req.BusinessName,
		BusinessDescription: req.BusinessDescription,
		SolanaPubKey:        req.SolanaPubKey,
		WebhookURL:          req.WebhookURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromMerchant(m))
}

// ListPayments handles GET /api/v1/merchant/{id}/payments
func (h *MerchantController) ListPayments(w http.ResponseWriter, r *http.Request) {
	shopID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || shopID <= 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid shop id", Code: "invalid_id"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	records, err := h.merchants.RecentPayments(r.Context(), shopID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*PaymentRecordResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, FromRecord(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}
