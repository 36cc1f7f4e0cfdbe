package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/presentation/rest"
	"github.com/bibbank/underwriting/pkg/auth"
	"github.com/bibbank/underwriting/pkg/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	uc     usecase.Set
	checks map[string]rest.Check
	jwt    *auth.JWTService
	grace  int
}

func (f fixture) server(t *testing.T) *httptest.Server {
	t.Helper()
	logger := quietLogger()
	router := rest.NewRouter(
		rest.NewHandler(f.uc, f.grace, logger),
		rest.NewHealthHandler("underwriting", f.checks, logger),
		logger,
		rest.RouterOptions{
			JWT: f.jwt,
			Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "# metrics\n")
			}),
		},
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body, token string) (*http.Response, map[string]any) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "body has no error object: %v", body)
	code, _ := e["code"].(string)
	return code
}

const validEvaluation = `{
	"requested_amount": "10000000",
	"loan_type": "PERSONAL",
	"term_months": 12,
	"monthly_income": 15000000,
	"credit_score": 720,
	"employment_status": "employed",
	"savings_balance": "5000000"
}`

func TestEvaluate(t *testing.T) {
	var got dto.EvaluateRequest
	f := fixture{uc: usecase.Set{
		EvaluateQuote: usecase.Func[dto.EvaluateRequest, dto.EvaluationResponse](
			func(_ context.Context, req dto.EvaluateRequest) (dto.EvaluationResponse, error) {
				got = req
				return dto.EvaluationResponse{IsEligible: true, RiskScore: 18, RiskBand: "LOW"}, nil
			}),
	}}
	srv := f.server(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/evaluations", validEvaluation, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["is_eligible"])
	assert.Equal(t, "LOW", body["risk_band"])
	testutil.AssertDecimalEqual(t, testutil.D("15000000"), got.MonthlyIncome)
	testutil.AssertDecimalEqual(t, testutil.D("5000000"), got.SavingsBalance)
}

func TestEvaluate_SchemaViolations(t *testing.T) {
	called := false
	f := fixture{uc: usecase.Set{
		EvaluateQuote: usecase.Func[dto.EvaluateRequest, dto.EvaluationResponse](
			func(context.Context, dto.EvaluateRequest) (dto.EvaluationResponse, error) {
				called = true
				return dto.EvaluationResponse{}, nil
			}),
	}}
	srv := f.server(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"missing fields", `{"loan_type": "PERSONAL"}`},
		{"credit score as string", strings.Replace(validEvaluation, `"credit_score": 720`, `"credit_score": "720"`, 1)},
		{"amount not numeric", strings.Replace(validEvaluation, `"10000000"`, `"ten million"`, 1)},
		{"not json", `{"requested_amount": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/v1/evaluations", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "INVALID_REQUEST", errorCode(t, body))
		})
	}
	assert.False(t, called)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid input", model.NewInvalidInput("amount", "must be positive"), http.StatusBadRequest, "INVALID_INPUT"},
		{"not found", model.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"not active", model.ErrLoanNotActive, http.StatusConflict, "LOAN_NOT_ACTIVE"},
		{"exceeds balance", model.ErrPaymentExceedsBalance, http.StatusUnprocessableEntity, "PAYMENT_EXCEEDS_BALANCE"},
		{"unknown", errors.New("pool closed"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fixture{uc: usecase.Set{
				MakePayment: usecase.Func[dto.MakePaymentRequest, dto.PaymentResponse](
					func(context.Context, dto.MakePaymentRequest) (dto.PaymentResponse, error) {
						return dto.PaymentResponse{}, tt.err
					}),
			}}
			srv := f.server(t)

			resp, body := do(t, http.MethodPost, srv.URL+"/v1/loans/acc-1/payments", `{"amount": "100"}`, "")
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, errorCode(t, body))
			if tt.code == "INVALID_INPUT" {
				assert.Equal(t, "amount", body["error"].(map[string]any)["field"])
			}
			if tt.code == "INTERNAL" {
				assert.NotContains(t, body["error"].(map[string]any)["message"], "pool closed")
			}
		})
	}
}

func TestPathParametersWin(t *testing.T) {
	var got dto.DecideApplicationRequest
	f := fixture{uc: usecase.Set{
		Decide: usecase.Func[dto.DecideApplicationRequest, dto.LoanApplicationResponse](
			func(_ context.Context, req dto.DecideApplicationRequest) (dto.LoanApplicationResponse, error) {
				got = req
				return dto.LoanApplicationResponse{ID: req.ApplicationID, State: "APPROVED"}, nil
			}),
	}}
	srv := f.server(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/applications/app-42/decision",
		`{"application_id": "other", "approve": true, "approved_amount": "5000", "interest_rate": "12", "monthly_payment": "444.24"}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "app-42", body["id"])
	assert.Equal(t, "app-42", got.ApplicationID)
	assert.True(t, got.Approve)
	require.True(t, got.InterestRate.Valid)
	testutil.AssertDecimalEqual(t, testutil.D("12"), got.InterestRate.Decimal)
	assert.Equal(t, "system", got.PerformedBy)
}

func TestSweepOverdue_DefaultsGraceDays(t *testing.T) {
	var got []dto.SweepOverdueRequest
	f := fixture{grace: 90, uc: usecase.Set{
		SweepOverdue: usecase.Func[dto.SweepOverdueRequest, dto.SweepOverdueResponse](
			func(_ context.Context, req dto.SweepOverdueRequest) (dto.SweepOverdueResponse, error) {
				got = append(got, req)
				return dto.SweepOverdueResponse{Scanned: 1, Defaulted: []string{"acc-1"}}, nil
			}),
	}}
	srv := f.server(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/loans/overdue-sweep", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{"acc-1"}, body["defaulted"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/loans/overdue-sweep",
		`{"as_of": "2025-06-20T00:00:00Z", "grace_days": 0}`, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Len(t, got, 2)
	assert.Equal(t, 90, got[0].GraceDays)
	assert.True(t, got[0].AsOf.IsZero())
	assert.Equal(t, 0, got[1].GraceDays)
	assert.Equal(t, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), got[1].AsOf)
}

func TestUnconfiguredOperation(t *testing.T) {
	srv := fixture{}.server(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/loans/acc-1", "", "")
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	assert.Equal(t, "NOT_IMPLEMENTED", errorCode(t, body))
}

func TestAuthAndRoles(t *testing.T) {
	svc, err := auth.NewJWTService(auth.JWTConfig{Secret: "test-secret", Issuer: "bib", Expiration: time.Minute})
	require.NoError(t, err)
	token := func(actor string, roles ...string) string {
		tok, err := svc.GenerateToken(actor, roles)
		require.NoError(t, err)
		return tok
	}

	var performedBy string
	f := fixture{jwt: svc, uc: usecase.Set{
		Submit: usecase.Func[dto.SubmitApplicationRequest, dto.LoanApplicationResponse](
			func(_ context.Context, req dto.SubmitApplicationRequest) (dto.LoanApplicationResponse, error) {
				performedBy = req.PerformedBy
				return dto.LoanApplicationResponse{ID: "app-1", State: "UNDER_REVIEW"}, nil
			}),
	}}
	srv := f.server(t)
	body := `{"borrower_id": "b-1", "loan_type": "PERSONAL", "requested_amount": "1000", "term_months": 12}`

	resp, _ := do(t, http.MethodPost, srv.URL+"/v1/applications", body, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/applications", body, token("svc-1", auth.RoleServicing))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, got := do(t, http.MethodPost, srv.URL+"/v1/applications", body, token("officer-9", auth.RoleLoanOfficer))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "UNDER_REVIEW", got["state"])
	assert.Equal(t, "officer-9", performedBy)

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/applications", body, token("root", auth.RoleAdmin))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, srv.URL+"/metrics", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadiness(t *testing.T) {
	healthy := fixture{checks: map[string]rest.Check{
		"postgres": func(context.Context) error { return nil },
	}}.server(t)
	resp, body := do(t, http.MethodGet, healthy.URL+"/readyz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])

	failing := fixture{checks: map[string]rest.Check{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}}.server(t)
	resp, body = do(t, http.MethodGet, failing.URL+"/readyz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "not_ready", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "ok", checks["postgres"])
	assert.Equal(t, "connection refused", checks["redis"])
}
