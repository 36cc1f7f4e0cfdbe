package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	aggregateApplication = "LoanApplication"
	aggregateAccount     = "LoanAccount"
)

// Event type names as they appear on the wire.
const (
	TypeApplicationSubmitted   = "underwriting.application.submitted"
	TypeApplicationUnderReview = "underwriting.application.under_review"
	TypeApplicationApproved    = "underwriting.application.approved"
	TypeApplicationRejected    = "underwriting.application.rejected"
	TypeApplicationDisbursed   = "underwriting.application.disbursed"
	TypeLoanDisbursed          = "underwriting.loan.disbursed"
	TypeLoanActivated          = "underwriting.loan.activated"
	TypePaymentApplied         = "underwriting.loan.payment_applied"
	TypeLoanPaidOff            = "underwriting.loan.paid_off"
	TypeLoanDefaulted          = "underwriting.loan.defaulted"
)

// ---------------------------------------------------------------------------
// Application events
// ---------------------------------------------------------------------------

type ApplicationSubmitted struct {
	events.BaseEvent
	BorrowerID      string          `json:"borrower_id"`
	LoanType        string          `json:"loan_type"`
	RequestedAmount decimal.Decimal `json:"requested_amount"`
	Currency        string          `json:"currency"`
	TermMonths      int             `json:"term_months"`
}

func NewApplicationSubmitted(applicationID, borrowerID, loanType string, amount decimal.Decimal, currency string, termMonths int, at time.Time) ApplicationSubmitted {
	return ApplicationSubmitted{
		BaseEvent:       events.NewBaseEvent(TypeApplicationSubmitted, applicationID, aggregateApplication, at),
		BorrowerID:      borrowerID,
		LoanType:        loanType,
		RequestedAmount: amount,
		Currency:        currency,
		TermMonths:      termMonths,
	}
}

type ApplicationUnderReview struct {
	events.BaseEvent
	BorrowerID string `json:"borrower_id"`
}

func NewApplicationUnderReview(applicationID, borrowerID string, at time.Time) ApplicationUnderReview {
	return ApplicationUnderReview{
		BaseEvent:  events.NewBaseEvent(TypeApplicationUnderReview, applicationID, aggregateApplication, at),
		BorrowerID: borrowerID,
	}
}

// ApplicationApproved carries the terms the underwriter committed to.
type ApplicationApproved struct {
	events.BaseEvent
	BorrowerID     string          `json:"borrower_id"`
	ApprovedAmount decimal.Decimal `json:"approved_amount"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	ApprovedBy     string          `json:"approved_by"`
}

func NewApplicationApproved(applicationID, borrowerID string, amount, rate, payment decimal.Decimal, approvedBy string, at time.Time) ApplicationApproved {
	return ApplicationApproved{
		BaseEvent:      events.NewBaseEvent(TypeApplicationApproved, applicationID, aggregateApplication, at),
		BorrowerID:     borrowerID,
		ApprovedAmount: amount,
		InterestRate:   rate,
		MonthlyPayment: payment,
		ApprovedBy:     approvedBy,
	}
}

type ApplicationRejected struct {
	events.BaseEvent
	BorrowerID string `json:"borrower_id"`
	Reason     string `json:"reason"`
	RejectedBy string `json:"rejected_by"`
}

func NewApplicationRejected(applicationID, borrowerID, reason, rejectedBy string, at time.Time) ApplicationRejected {
	return ApplicationRejected{
		BaseEvent:  events.NewBaseEvent(TypeApplicationRejected, applicationID, aggregateApplication, at),
		BorrowerID: borrowerID,
		Reason:     reason,
		RejectedBy: rejectedBy,
	}
}

type ApplicationDisbursed struct {
	events.BaseEvent
	AccountID string `json:"account_id"`
}

func NewApplicationDisbursed(applicationID, accountID string, at time.Time) ApplicationDisbursed {
	return ApplicationDisbursed{
		BaseEvent: events.NewBaseEvent(TypeApplicationDisbursed, applicationID, aggregateApplication, at),
		AccountID: accountID,
	}
}

// ---------------------------------------------------------------------------
// Account events
// ---------------------------------------------------------------------------

// LoanDisbursed is raised once per application when funds are released.
type LoanDisbursed struct {
	events.BaseEvent
	ApplicationID  string          `json:"application_id"`
	BorrowerID     string          `json:"borrower_id"`
	AccountNumber  string          `json:"account_number"`
	Principal      decimal.Decimal `json:"principal"`
	Currency       string          `json:"currency"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TermMonths     int             `json:"term_months"`
	MaturityDate   time.Time       `json:"maturity_date"`
}

func NewLoanDisbursed(
	accountID, applicationID, borrowerID, accountNumber string,
	principal decimal.Decimal, currency string,
	rate, payment decimal.Decimal, termMonths int,
	maturity, at time.Time,
) LoanDisbursed {
	return LoanDisbursed{
		BaseEvent:      events.NewBaseEvent(TypeLoanDisbursed, accountID, aggregateAccount, at),
		ApplicationID:  applicationID,
		BorrowerID:     borrowerID,
		AccountNumber:  accountNumber,
		Principal:      principal,
		Currency:       currency,
		InterestRate:   rate,
		MonthlyPayment: payment,
		TermMonths:     termMonths,
		MaturityDate:   maturity,
	}
}

type LoanActivated struct {
	events.BaseEvent
	NextPaymentDate time.Time `json:"next_payment_date"`
}

func NewLoanActivated(accountID string, nextPaymentDate, at time.Time) LoanActivated {
	return LoanActivated{
		BaseEvent:       events.NewBaseEvent(TypeLoanActivated, accountID, aggregateAccount, at),
		NextPaymentDate: nextPaymentDate,
	}
}

// PaymentApplied records one repayment and the balance it left behind.
type PaymentApplied struct {
	events.BaseEvent
	PaymentReference string          `json:"payment_reference"`
	Amount           decimal.Decimal `json:"amount"`
	RunningBalance   decimal.Decimal `json:"running_balance"`
	NextPaymentDate  time.Time       `json:"next_payment_date"`
}

func NewPaymentApplied(accountID, reference string, amount, balance decimal.Decimal, next, at time.Time) PaymentApplied {
	return PaymentApplied{
		BaseEvent:        events.NewBaseEvent(TypePaymentApplied, accountID, aggregateAccount, at),
		PaymentReference: reference,
		Amount:           amount,
		RunningBalance:   balance,
		NextPaymentDate:  next,
	}
}

type LoanPaidOff struct {
	events.BaseEvent
	ApplicationID string `json:"application_id"`
}

func NewLoanPaidOff(accountID, applicationID string, at time.Time) LoanPaidOff {
	return LoanPaidOff{
		BaseEvent:     events.NewBaseEvent(TypeLoanPaidOff, accountID, aggregateAccount, at),
		ApplicationID: applicationID,
	}
}

type LoanDefaulted struct {
	events.BaseEvent
	ApplicationID  string          `json:"application_id"`
	DaysOverdue    int             `json:"days_overdue"`
	RunningBalance decimal.Decimal `json:"running_balance"`
	Reason         string          `json:"reason"`
}

func NewLoanDefaulted(accountID, applicationID string, daysOverdue int, balance decimal.Decimal, reason string, at time.Time) LoanDefaulted {
	return LoanDefaulted{
		BaseEvent:      events.NewBaseEvent(TypeLoanDefaulted, accountID, aggregateAccount, at),
		ApplicationID:  applicationID,
		DaysOverdue:    daysOverdue,
		RunningBalance: balance,
		Reason:         reason,
	}
}
