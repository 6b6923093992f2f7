package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
)

var validate = validator.New()

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrMerchantNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrPaymentNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrMerchantExists, http.StatusConflict, "merchant_exists"},
	{domainErrors.ErrMalformedTransaction, http.StatusBadRequest, "malformed_transaction"},
	{domainErrors.ErrSimulationRejected, http.StatusBadRequest, "simulation_rejected"},
	{domainErrors.ErrAmountOverflow, http.StatusBadRequest, "amount_overflow"},
	{domainErrors.ErrInvalidStateTransition, http.StatusConflict, "invalid_state_transition"},
	{domainErrors.ErrQuoteUnavailable, http.StatusBadGateway, "quote_unavailable"},
	{domainErrors.ErrSwapConstructionFailed, http.StatusBadGateway, "swap_unavailable"},
	{domainErrors.ErrNetworkUnavailable, http.StatusBadGateway, "network_unavailable"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		resp.Code = "validation_error"
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			resp.Code = m.code
			// Upstream detail stays in logs; clients get the sentinel text.
			if m.status == http.StatusBadGateway {
				log.Error().Err(err).Msg("upstream failure in handler")
				resp.Error = m.err.Error()
			}
			writeJSON(w, m.status, resp)
			return
		}
	}

	var upstreamErr *domainErrors.UpstreamError
	if errors.As(err, &upstreamErr) {
		log.Error().Err(err).Str("service", upstreamErr.Service).Msg("upstream failure in handler")
		resp.Code = "upstream_unavailable"
		resp.Error = "upstream service unavailable"
		writeJSON(w, http.StatusBadGateway, resp)
		return
	}

	log.Error().Err(err).Msg("unhandled error in handler")
	resp.Code = "internal_error"
	resp.Error = "internal server error"
	writeJSON(w, http.StatusInternalServerError, resp)
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domainErrors.NewValidationError("body", "invalid JSON: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return domainErrors.NewValidationError(ve[0].Field(), ve[0].Tag()+" validation failed")
		}
		return domainErrors.NewValidationError("body", err.Error())
	}
	return nil
}
