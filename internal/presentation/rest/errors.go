package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var errorStatuses = []struct {
	target error
	status int
	code   string
}{
	{model.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{model.ErrApprovalCeilingExceeded, http.StatusUnprocessableEntity, "APPROVAL_CEILING_EXCEEDED"},
	{model.ErrAmountExceedsApproved, http.StatusUnprocessableEntity, "AMOUNT_EXCEEDS_APPROVED"},
	{model.ErrPaymentExceedsBalance, http.StatusUnprocessableEntity, "PAYMENT_EXCEEDS_BALANCE"},
	{model.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{model.ErrAlreadyDisbursed, http.StatusConflict, "ALREADY_DISBURSED"},
	{model.ErrConcurrentModification, http.StatusConflict, "CONCURRENT_MODIFICATION"},
	{model.ErrIncompleteApplication, http.StatusConflict, "INCOMPLETE_APPLICATION"},
	{model.ErrNotApproved, http.StatusConflict, "NOT_APPROVED"},
	{model.ErrLoanNotActive, http.StatusConflict, "LOAN_NOT_ACTIVE"},
	{valueobject.ErrInvalidStatusTransition, http.StatusConflict, "INVALID_STATUS_TRANSITION"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "TIMEOUT"},
	{errOperationNotConfigured, http.StatusNotImplemented, "NOT_IMPLEMENTED"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError maps err onto an HTTP status. Unknown errors are logged and
// reported as 500 without their text.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *validationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {Code: "INVALID_REQUEST", Message: verr.Error()}})
		return
	}

	var field string
	var iie *model.InvalidInputError
	if errors.As(err, &iie) {
		field = iie.Field
	}

	for _, es := range errorStatuses {
		if errors.Is(err, es.target) {
			writeJSON(w, es.status, map[string]errorBody{"error": {Code: es.code, Message: err.Error(), Field: field}})
			return
		}
	}

	logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]errorBody{"error": {Code: "INTERNAL", Message: "internal error"}})
}
