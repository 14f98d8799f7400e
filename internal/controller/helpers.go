package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	domainErrors "github.com/commercekit/checkout/internal/domain/errors"
	"github.com/commercekit/checkout/pkg/fsm"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domainErrors.ErrOrderNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrItemNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrPaymentNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrProviderNotFound, http.StatusNotFound, "not_found"},
	{domainErrors.ErrPaymentMethodUnknown, http.StatusBadRequest, "unknown_method"},
	{domainErrors.ErrCurrencyMismatch, http.StatusBadRequest, "currency_mismatch"},
	{domainErrors.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{domainErrors.ErrDuplicateAdjustment, http.StatusConflict, "duplicate_adjustment"},
	{fsm.ErrIllegalTransition, http.StatusConflict, "illegal_transition"},
	{domainErrors.ErrLockAcquisitionFailed, http.StatusConflict, "order_busy"},
	{domainErrors.ErrMissingPaymentMethod, http.StatusUnprocessableEntity, "missing_method"},
	{domainErrors.ErrMissingAmount, http.StatusUnprocessableEntity, "missing_amount"},
	{domainErrors.ErrUnsupportedAction, http.StatusUnprocessableEntity, "unsupported_action"},
	{domainErrors.ErrProviderCommunication, http.StatusBadGateway, "provider_error"},
	{domainErrors.ErrProviderUnavailable, http.StatusServiceUnavailable, "provider_unavailable"},
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
			writeJSON(w, m.status, resp)
			return
		}
	}

	var domainErr *domainErrors.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = domainErr.Code
		writeJSON(w, http.StatusUnprocessableEntity, resp)
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
