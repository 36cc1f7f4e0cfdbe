package model

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// MaxTermMonths bounds the schedule length the engine will generate.
const MaxTermMonths = 600

// BorrowerProfile is a point-in-time snapshot supplied by the caller.
type BorrowerProfile struct {
	BorrowerID        string
	MonthlyIncome     decimal.Decimal
	CreditScore       int
	EmploymentStatus  valueobject.EmploymentStatus
	ExistingLoanCount int
	// TotalActiveDebt is the borrower's current monthly debt service.
	TotalActiveDebt decimal.Decimal
}

// SavingsProfile describes the borrower's savings account.
type SavingsProfile struct {
	Balance             decimal.Decimal
	TotalInterestEarned decimal.Decimal
	AccountAgeMonths    int
}

// LoanRequest is what the borrower asks for.
type LoanRequest struct {
	RequestedAmount decimal.Decimal
	LoanType        valueobject.LoanType
	TermMonths      int
	Currency        money.Currency
}

// EvaluationInput bundles everything one evaluation needs.
type EvaluationInput struct {
	Borrower BorrowerProfile
	Savings  SavingsProfile
	Request  LoanRequest
}

// Validate reports every offending field. The returned error matches
// ErrInvalidInput and unwraps to one *InvalidInputError per field.
func (in EvaluationInput) Validate() error {
	var errs []error
	add := func(field, reason string) {
		errs = append(errs, NewInvalidInput(field, reason))
	}

	if in.Request.LoanType.IsZero() {
		add("loan_type", "is required")
	}
	if !in.Request.RequestedAmount.IsPositive() {
		add("requested_amount", "must be greater than zero")
	}
	switch {
	case in.Request.TermMonths <= 0:
		add("term_months", "must be greater than zero")
	case in.Request.TermMonths > MaxTermMonths:
		add("term_months", "must not exceed 600")
	}
	if !in.Borrower.MonthlyIncome.IsPositive() {
		add("monthly_income", "must be greater than zero")
	}
	if in.Borrower.CreditScore < 0 {
		add("credit_score", "must not be negative")
	}
	if in.Borrower.ExistingLoanCount < 0 {
		add("existing_loan_count", "must not be negative")
	}
	if in.Borrower.TotalActiveDebt.IsNegative() {
		add("total_active_debt", "must not be negative")
	}
	if in.Savings.Balance.IsNegative() {
		add("savings_balance", "must not be negative")
	}
	if in.Savings.TotalInterestEarned.IsNegative() {
		add("total_interest_earned", "must not be negative")
	}
	if in.Savings.AccountAgeMonths < 0 {
		add("savings_account_age_months", "must not be negative")
	}

	return errors.Join(errs...)
}
