package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// EvaluateRequest carries a complete borrower, savings and loan profile for
// a direct evaluation.
type EvaluateRequest struct {
	BorrowerID              string          `json:"borrower_id,omitempty"`
	RequestedAmount         decimal.Decimal `json:"requested_amount"`
	LoanType                string          `json:"loan_type"`
	TermMonths              int             `json:"term_months"`
	Currency                string          `json:"currency,omitempty"`
	MonthlyIncome           decimal.Decimal `json:"monthly_income"`
	CreditScore             int             `json:"credit_score"`
	EmploymentStatus        string          `json:"employment_status"`
	SavingsBalance          decimal.Decimal `json:"savings_balance"`
	TotalInterestEarned     decimal.Decimal `json:"total_interest_earned"`
	SavingsAccountAgeMonths int             `json:"savings_account_age_months"`
	ExistingLoanCount       int             `json:"existing_loan_count"`
	TotalActiveDebt         decimal.Decimal `json:"total_active_debt"`
}

// EvaluateBorrowerRequest evaluates a loan request against the stored
// profile of a borrower.
type EvaluateBorrowerRequest struct {
	BorrowerID      string          `json:"borrower_id"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	LoanType        string          `json:"loan_type"`
	TermMonths      int             `json:"term_months"`
	Currency        string          `json:"currency,omitempty"`
}

// SubmitApplicationRequest carries the data needed to submit a new loan application.
type SubmitApplicationRequest struct {
	BorrowerID      string          `json:"borrower_id"`
	LoanType        string          `json:"loan_type"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	Currency        string          `json:"currency"`
	TermMonths      int             `json:"term_months"`
	Purpose         string          `json:"purpose"`
	PerformedBy     string          `json:"-"`
}

// DecideApplicationRequest approves or rejects an application under review.
// InterestRate and MonthlyPayment are required for an approval.
type DecideApplicationRequest struct {
	ApplicationID  string              `json:"application_id"`
	Approve        bool                `json:"approve"`
	ApprovedAmount decimal.Decimal     `json:"approved_amount"`
	InterestRate   decimal.NullDecimal `json:"interest_rate"`
	MonthlyPayment decimal.NullDecimal `json:"monthly_payment"`
	Reason         string              `json:"reason"`
	PerformedBy    string              `json:"-"`
}

// DisburseLoanRequest disburses an approved application. Amount may lower
// the principal below the approved amount; a zero DisbursementDate means now.
type DisburseLoanRequest struct {
	ApplicationID    string              `json:"application_id"`
	Amount           decimal.NullDecimal `json:"amount"`
	DisbursementDate time.Time           `json:"disbursement_date"`
	PerformedBy      string              `json:"-"`
}

// MakePaymentRequest carries one repayment.
type MakePaymentRequest struct {
	AccountID   string          `json:"account_id"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	PerformedBy string          `json:"-"`
}

// GetLoanRequest identifies a loan account to retrieve.
type GetLoanRequest struct {
	AccountID string `json:"account_id"`
}

// GetApplicationRequest identifies a loan application to retrieve.
type GetApplicationRequest struct {
	ApplicationID string `json:"application_id"`
}

// SweepOverdueRequest asks for every active loan more than GraceDays late
// as of AsOf to be defaulted.
type SweepOverdueRequest struct {
	AsOf        time.Time `json:"as_of"`
	GraceDays   int       `json:"grace_days"`
	PerformedBy string    `json:"-"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// FactorResponse is one entry of the factor breakdown.
type FactorResponse struct {
	Score       int    `json:"score"`
	Weight      int    `json:"weight"`
	Description string `json:"description"`
}

// SavingsImpactResponse explains the savings contribution.
type SavingsImpactResponse struct {
	SavingsRatio            decimal.Decimal `json:"savings_ratio"`
	SavingsBonus            decimal.Decimal `json:"savings_bonus"`
	MinimumSavingsRequired  decimal.Decimal `json:"minimum_savings_required"`
	MeetsSavingsRequirement bool            `json:"meets_savings_requirement"`
}

// EvaluationResponse is the external representation of an evaluation.
type EvaluationResponse struct {
	IsEligible                 bool                      `json:"is_eligible"`
	RiskScore                  int                       `json:"risk_score"`
	RiskBand                   string                    `json:"risk_band"`
	RecommendedAmount          decimal.Decimal           `json:"recommended_amount"`
	RecommendedAmountFormatted string                    `json:"recommended_amount_formatted"`
	RecommendedInterestRate    decimal.Decimal           `json:"recommended_interest_rate"`
	BaseInterestRate           decimal.Decimal           `json:"base_interest_rate"`
	EstimatedMonthlyPayment    decimal.Decimal           `json:"estimated_monthly_payment"`
	DebtToIncomeRatio          decimal.Decimal           `json:"debt_to_income_ratio"`
	SavingsImpact              SavingsImpactResponse     `json:"savings_impact"`
	Factors                    map[string]FactorResponse `json:"factors"`
	Recommendations            []string                  `json:"recommendations"`
	Warnings                   []string                  `json:"warnings"`
}

// AssessmentResponse is the evaluation summary kept on an application.
type AssessmentResponse struct {
	IsEligible              bool            `json:"is_eligible"`
	RiskScore               int             `json:"risk_score"`
	RecommendedAmount       decimal.Decimal `json:"recommended_amount"`
	RecommendedInterestRate decimal.Decimal `json:"recommended_interest_rate"`
	EvaluatedAt             time.Time       `json:"evaluated_at"`
}

// LoanApplicationResponse is the external representation of a loan application.
type LoanApplicationResponse struct {
	ID              string              `json:"id"`
	BorrowerID      string              `json:"borrower_id"`
	LoanType        string              `json:"loan_type"`
	RequestedAmount decimal.Decimal     `json:"requested_amount"`
	Currency        string              `json:"currency"`
	TermMonths      int                 `json:"term_months"`
	Purpose         string              `json:"purpose"`
	State           string              `json:"state"`
	Assessment      *AssessmentResponse `json:"assessment,omitempty"`
	ApprovedAmount  decimal.Decimal     `json:"approved_amount"`
	ApprovedRate    decimal.Decimal     `json:"approved_rate"`
	ApprovedPayment decimal.Decimal     `json:"approved_payment"`
	DecisionReason  string              `json:"decision_reason,omitempty"`
	DecidedBy       string              `json:"decided_by,omitempty"`
	AccountID       string              `json:"account_id,omitempty"`
	Version         int                 `json:"version"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// AmortizationEntryResponse represents a single amortization schedule entry.
type AmortizationEntryResponse struct {
	InstallmentNumber int             `json:"installment_number"`
	DueDate           time.Time       `json:"due_date"`
	PrincipalPortion  decimal.Decimal `json:"principal_portion"`
	InterestPortion   decimal.Decimal `json:"interest_portion"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	RunningBalance    decimal.Decimal `json:"running_balance"`
}

// DisbursementResponse is returned by a successful disbursement.
type DisbursementResponse struct {
	AccountID       string                      `json:"account_id"`
	ApplicationID   string                      `json:"application_id"`
	AccountNumber   string                      `json:"account_number"`
	PrincipalAmount decimal.Decimal             `json:"principal_amount"`
	Currency        string                      `json:"currency"`
	InterestRate    decimal.Decimal             `json:"interest_rate"`
	MonthlyPayment  decimal.Decimal             `json:"monthly_payment"`
	StartDate       time.Time                   `json:"start_date"`
	MaturityDate    time.Time                   `json:"maturity_date"`
	NextPaymentDate time.Time                   `json:"next_payment_date"`
	State           string                      `json:"state"`
	InitialSchedule []AmortizationEntryResponse `json:"initial_schedule"`
}

// LoanAccountResponse is the external representation of a loan account.
type LoanAccountResponse struct {
	ID                string                      `json:"id"`
	ApplicationID     string                      `json:"application_id"`
	BorrowerID        string                      `json:"borrower_id"`
	AccountNumber     string                      `json:"account_number"`
	Principal         decimal.Decimal             `json:"principal"`
	Currency          string                      `json:"currency"`
	InterestRate      decimal.Decimal             `json:"interest_rate"`
	TermMonths        int                         `json:"term_months"`
	MonthlyPayment    decimal.Decimal             `json:"monthly_payment"`
	StartDate         time.Time                   `json:"start_date"`
	MaturityDate      time.Time                   `json:"maturity_date"`
	NextPaymentDate   *time.Time                  `json:"next_payment_date,omitempty"`
	RunningBalance    decimal.Decimal             `json:"running_balance"`
	OutstandingAmount decimal.Decimal             `json:"outstanding_amount"`
	TotalPaid         decimal.Decimal             `json:"total_paid"`
	PaidInstallments  int                         `json:"paid_installments"`
	DaysOverdue       int                         `json:"days_overdue"`
	State             string                      `json:"state"`
	DefaultReason     string                      `json:"default_reason,omitempty"`
	Schedule          []AmortizationEntryResponse `json:"schedule,omitempty"`
	CollectionCases   []CollectionCaseResponse    `json:"collection_cases,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// CollectionCaseResponse is a collection case opened for a defaulted account.
type CollectionCaseResponse struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	Reason      string          `json:"reason"`
	DaysOverdue int             `json:"days_overdue"`
	Outstanding decimal.Decimal `json:"outstanding"`
	AssignedTo  string          `json:"assigned_to,omitempty"`
	Notes       []string        `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PaymentResponse is the external representation of a payment result.
type PaymentResponse struct {
	AccountID         string          `json:"account_id"`
	Reference         string          `json:"reference"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	RunningBalance    decimal.Decimal `json:"running_balance"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	NextPaymentDate   *time.Time      `json:"next_payment_date,omitempty"`
	State             string          `json:"state"`
}

// SweepOverdueResponse summarises one overdue sweep.
type SweepOverdueResponse struct {
	Scanned   int      `json:"scanned"`
	Defaulted []string `json:"defaulted"`
	Failed    []string `json:"failed,omitempty"`

	// CollectionCases holds the IDs of the cases opened for Defaulted.
	CollectionCases []string `json:"collection_cases,omitempty"`
}
