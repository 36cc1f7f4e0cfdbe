package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/pkg/auth"
)

const maxBodyBytes = 1 << 20

var errOperationNotConfigured = errors.New("operation not configured")

// Handler exposes the underwriting use cases as JSON over HTTP.
type Handler struct {
	uc        usecase.Set
	graceDays int
	logger    *slog.Logger
}

// NewHandler creates a handler. graceDays is used by the overdue sweep when
// the request does not name one.
func NewHandler(uc usecase.Set, graceDays int, logger *slog.Logger) *Handler {
	return &Handler{uc: uc, graceDays: graceDays, logger: logger}
}

// decodeBody reads the request body, validates it against schema when one is
// given and decodes it into dst. An empty body decodes to the zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, schema *schemaValidator, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return &validationError{violations: []string{fmt.Sprintf("read body: %v", err)}}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if schema != nil {
			return &validationError{violations: []string{"request body is required"}}
		}
		return nil
	}
	if schema != nil {
		if err := schema.validate(body); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &validationError{violations: []string{err.Error()}}
	}
	return nil
}

func run[Req, Resp any](ctx context.Context, uc usecase.UseCase[Req, Resp], req Req) (Resp, error) {
	if uc == nil {
		var zero Resp
		return zero, errOperationNotConfigured
	}
	return uc.Execute(ctx, req)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, status, v)
}

// Evaluate handles POST /v1/evaluations.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req dto.EvaluateRequest
	if err := decodeBody(w, r, evaluateSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := run(r.Context(), h.uc.EvaluateQuote, req)
	h.respond(w, r, http.StatusOK, resp, err)
}

// EvaluateBorrower handles POST /v1/borrowers/{borrowerID}/evaluations.
func (h *Handler) EvaluateBorrower(w http.ResponseWriter, r *http.Request) {
	var req dto.EvaluateBorrowerRequest
	if err := decodeBody(w, r, nil, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.BorrowerID = chi.URLParam(r, "borrowerID")
	resp, err := run(r.Context(), h.uc.EvaluateBorrower, req)
	h.respond(w, r, http.StatusOK, resp, err)
}

// SubmitApplication handles POST /v1/applications.
func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitApplicationRequest
	if err := decodeBody(w, r, submitSchema, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.PerformedBy = auth.ActorFromContext(r.Context())
	resp, err := run(r.Context(), h.uc.Submit, req)
	h.respond(w, r, http.StatusCreated, resp, err)
}

// GetApplication handles GET /v1/applications/{applicationID}.
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	req := dto.GetApplicationRequest{ApplicationID: chi.URLParam(r, "applicationID")}
	resp, err := run(r.Context(), h.uc.GetApplication, req)
	h.respond(w, r, http.StatusOK, resp, err)
}

// DecideApplication handles POST /v1/applications/{applicationID}/decision.
func (h *Handler) DecideApplication(w http.ResponseWriter, r *http.Request) {
	var req dto.DecideApplicationRequest
	if err := decodeBody(w, r, nil, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.ApplicationID = chi.URLParam(r, "applicationID")
	req.PerformedBy = auth.ActorFromContext(r.Context())
	resp, err := run(r.Context(), h.uc.Decide, req)
	h.respond(w, r, http.StatusOK, resp, err)
}

// DisburseLoan handles POST /v1/applications/{applicationID}/disbursement.
func (h *Handler) DisburseLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.DisburseLoanRequest
	if err := decodeBody(w, r, nil, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.ApplicationID = chi.URLParam(r, "applicationID")
	req.PerformedBy = auth.ActorFromContext(r.Context())
	resp, err := run(r.Context(), h.uc.Disburse, req)
	h.respond(w, r, http.StatusCreated, resp, err)
}

// GetLoan handles GET /v1/loans/{accountID}.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	req := dto.GetLoanRequest{AccountID: chi.URLParam(r, "accountID")}
	resp, err := run(r.Context(), h.uc.GetLoan, req)
	h.respond(w, r, http.StatusOK, resp, err)
}

// MakePayment handles POST /v1/loans/{accountID}/payments.
func (h *Handler) MakePayment(w http.ResponseWriter, r *http.Request) {
	var req dto.MakePaymentRequest
	if err := decodeBody(w, r, nil, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.AccountID = chi.URLParam(r, "accountID")
	req.PerformedBy = auth.ActorFromContext(r.Context())
	resp, err := run(r.Context(), h.uc.MakePayment, req)
	h.respond(w, r, http.StatusOK, resp, err)
}

// SweepOverdue handles POST /v1/loans/overdue-sweep.
func (h *Handler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AsOf      time.Time `json:"as_of"`
		GraceDays *int      `json:"grace_days"`
	}
	if err := decodeBody(w, r, nil, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req := dto.SweepOverdueRequest{
		AsOf:        body.AsOf,
		GraceDays:   h.graceDays,
		PerformedBy: auth.ActorFromContext(r.Context()),
	}
	if body.GraceDays != nil {
		req.GraceDays = *body.GraceDays
	}
	resp, err := run(r.Context(), h.uc.SweepOverdue, req)
	h.respond(w, r, http.StatusOK, resp, err)
}
