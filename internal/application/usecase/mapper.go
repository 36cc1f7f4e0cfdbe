package usecase

import (
	"strings"
	"time"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// Audit entity types.
const (
	entityApplication = "loan_application"
	entityAccount     = "loan_account"
	entityCollection  = "collection_case"
)

func parseLoanType(s string) (valueobject.LoanType, error) {
	lt, err := valueobject.ParseLoanType(s)
	if err != nil {
		return valueobject.LoanType{}, model.NewInvalidInput("loan_type", err.Error())
	}
	return lt, nil
}

// parseCurrency accepts an empty code; the zero currency rounds to two
// places.
func parseCurrency(code string) (money.Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return money.Currency{}, nil
	}
	cur, err := money.NewCurrency(code)
	if err != nil {
		return money.Currency{}, model.NewInvalidInput("currency", err.Error())
	}
	return cur, nil
}

func toEvaluationResponse(res model.EvaluationResult, cur money.Currency) dto.EvaluationResponse {
	factors := make(map[string]dto.FactorResponse, len(res.Factors))
	for name, f := range res.Factors {
		factors[string(name)] = dto.FactorResponse{
			Score:       int(f.Score),
			Weight:      f.Weight,
			Description: f.Description,
		}
	}

	return dto.EvaluationResponse{
		IsEligible:                 res.IsEligible,
		RiskScore:                  int(res.RiskScore),
		RiskBand:                   string(res.RiskBand),
		RecommendedAmount:          res.RecommendedAmount,
		RecommendedAmountFormatted: money.Format(res.RecommendedAmount, cur),
		RecommendedInterestRate:    res.RecommendedInterestRate,
		BaseInterestRate:           res.BaseInterestRate,
		EstimatedMonthlyPayment:    res.EstimatedMonthlyPayment,
		DebtToIncomeRatio:          res.DebtToIncomeRatio,
		SavingsImpact: dto.SavingsImpactResponse{
			SavingsRatio:            res.SavingsImpact.SavingsRatio,
			SavingsBonus:            res.SavingsImpact.SavingsBonus,
			MinimumSavingsRequired:  res.SavingsImpact.MinimumSavingsRequired,
			MeetsSavingsRequirement: res.SavingsImpact.MeetsSavingsRequirement,
		},
		Factors:         factors,
		Recommendations: nonNil(res.Recommendations),
		Warnings:        nonNil(res.Warnings),
	}
}

func toApplicationResponse(app model.LoanApplication) dto.LoanApplicationResponse {
	resp := dto.LoanApplicationResponse{
		ID:              app.ID(),
		BorrowerID:      app.BorrowerID(),
		LoanType:        app.LoanType().String(),
		RequestedAmount: app.RequestedAmount(),
		Currency:        app.Currency().Code(),
		TermMonths:      app.TermMonths(),
		Purpose:         app.Purpose(),
		State:           app.State().String(),
		ApprovedAmount:  app.ApprovedAmount(),
		ApprovedRate:    app.ApprovedRate(),
		ApprovedPayment: app.ApprovedPayment(),
		DecisionReason:  app.DecisionReason(),
		DecidedBy:       app.DecidedBy(),
		AccountID:       app.AccountID(),
		Version:         app.Version(),
		CreatedAt:       app.CreatedAt(),
		UpdatedAt:       app.UpdatedAt(),
	}
	if a := app.Assessment(); a != nil {
		resp.Assessment = &dto.AssessmentResponse{
			IsEligible:              a.IsEligible,
			RiskScore:               int(a.RiskScore),
			RecommendedAmount:       a.RecommendedAmount,
			RecommendedInterestRate: a.RecommendedInterestRate,
			EvaluatedAt:             a.EvaluatedAt,
		}
	}
	return resp
}

func toScheduleResponse(entries []model.AmortizationEntry) []dto.AmortizationEntryResponse {
	out := make([]dto.AmortizationEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.AmortizationEntryResponse{
			InstallmentNumber: e.InstallmentNumber,
			DueDate:           e.DueDate,
			PrincipalPortion:  e.PrincipalPortion,
			InterestPortion:   e.InterestPortion,
			TotalAmount:       e.TotalAmount,
			RunningBalance:    e.RunningBalance,
		}
	}
	return out
}

func toDisbursementResponse(acct model.LoanAccount) dto.DisbursementResponse {
	return dto.DisbursementResponse{
		AccountID:       acct.ID(),
		ApplicationID:   acct.ApplicationID(),
		AccountNumber:   acct.AccountNumber(),
		PrincipalAmount: acct.Principal(),
		Currency:        acct.Currency().Code(),
		InterestRate:    acct.InterestRate(),
		MonthlyPayment:  acct.MonthlyPayment(),
		StartDate:       acct.StartDate(),
		MaturityDate:    acct.MaturityDate(),
		NextPaymentDate: acct.NextPaymentDate(),
		State:           acct.State().String(),
		InitialSchedule: toScheduleResponse(acct.Schedule()),
	}
}

func toAccountResponse(acct model.LoanAccount, asOf time.Time) dto.LoanAccountResponse {
	return dto.LoanAccountResponse{
		ID:                acct.ID(),
		ApplicationID:     acct.ApplicationID(),
		BorrowerID:        acct.BorrowerID(),
		AccountNumber:     acct.AccountNumber(),
		Principal:         acct.Principal(),
		Currency:          acct.Currency().Code(),
		InterestRate:      acct.InterestRate(),
		TermMonths:        acct.TermMonths(),
		MonthlyPayment:    acct.MonthlyPayment(),
		StartDate:         acct.StartDate(),
		MaturityDate:      acct.MaturityDate(),
		NextPaymentDate:   optionalTime(acct.NextPaymentDate()),
		RunningBalance:    acct.RunningBalance(),
		OutstandingAmount: acct.OutstandingAmount(),
		TotalPaid:         acct.TotalPaid(),
		PaidInstallments:  acct.PaidInstallments(),
		DaysOverdue:       acct.DaysOverdue(asOf),
		State:             acct.State().String(),
		DefaultReason:     acct.DefaultReason(),
		Schedule:          toScheduleResponse(acct.Schedule()),
		CreatedAt:         acct.CreatedAt(),
		UpdatedAt:         acct.UpdatedAt(),
	}
}

// openedAccountValues records the approved terms next to the disbursed ones
// so a recomputed payment is visible in the audit trail.
func openedAccountValues(app model.LoanApplication, acct model.LoanAccount) map[string]any {
	v := accountValues(acct)
	v["principal"] = acct.Principal().String()
	v["monthly_payment"] = acct.MonthlyPayment().String()
	v["approved_amount"] = app.ApprovedAmount().String()
	v["approved_monthly_payment"] = app.ApprovedPayment().String()
	return v
}

func toCollectionCaseResponses(cases []model.CollectionCase) []dto.CollectionCaseResponse {
	if len(cases) == 0 {
		return nil
	}
	out := make([]dto.CollectionCaseResponse, len(cases))
	for i, c := range cases {
		out[i] = dto.CollectionCaseResponse{
			ID:          c.ID(),
			Status:      c.Status().String(),
			Reason:      c.Reason(),
			DaysOverdue: c.DaysOverdue(),
			Outstanding: c.Outstanding(),
			AssignedTo:  c.AssignedTo(),
			Notes:       c.Notes(),
			CreatedAt:   c.CreatedAt(),
		}
	}
	return out
}

func collectionValues(c model.CollectionCase) map[string]any {
	return map[string]any{
		"account_id":   c.AccountID(),
		"status":       c.Status().String(),
		"days_overdue": c.DaysOverdue(),
		"outstanding":  c.Outstanding().String(),
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ---------------------------------------------------------------------------
// audit values
// ---------------------------------------------------------------------------

func applicationValues(app model.LoanApplication) map[string]any {
	v := map[string]any{
		"state":            app.State().String(),
		"requested_amount": app.RequestedAmount().String(),
		"version":          app.Version(),
	}
	if !app.ApprovedAmount().IsZero() {
		v["approved_amount"] = app.ApprovedAmount().String()
		v["approved_rate"] = app.ApprovedRate().String()
		v["approved_payment"] = app.ApprovedPayment().String()
	}
	if app.DecisionReason() != "" {
		v["decision_reason"] = app.DecisionReason()
	}
	if app.AccountID() != "" {
		v["account_id"] = app.AccountID()
	}
	return v
}

func accountValues(acct model.LoanAccount) map[string]any {
	v := map[string]any{
		"state":             acct.State().String(),
		"running_balance":   acct.RunningBalance().String(),
		"paid_installments": acct.PaidInstallments(),
		"total_paid":        acct.TotalPaid().String(),
	}
	if next := acct.NextPaymentDate(); !next.IsZero() {
		v["next_payment_date"] = next.Format(time.DateOnly)
	}
	if acct.DefaultReason() != "" {
		v["default_reason"] = acct.DefaultReason()
	}
	return v
}
