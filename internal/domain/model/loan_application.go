package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// DefaultApprovalCeiling allows approving up to the requested amount.
var DefaultApprovalCeiling = decimal.NewFromInt(1)

// ---------------------------------------------------------------------------
// LoanApplication aggregate root
// ---------------------------------------------------------------------------

// Assessment is the part of an evaluation kept on the application for the
// underwriter's reference.
type Assessment struct {
	IsEligible              bool
	RiskScore               valueobject.RiskScore
	RecommendedAmount       decimal.Decimal
	RecommendedInterestRate decimal.Decimal
	EvaluatedAt             time.Time
}

// ApprovalTerms accompany an approval. InterestRate and MonthlyPayment are
// nullable so an omitted value can be told apart from zero.
type ApprovalTerms struct {
	ApprovedAmount decimal.Decimal
	InterestRate   decimal.NullDecimal
	MonthlyPayment decimal.NullDecimal
	ApprovedBy     string
	Notes          string
}

// LoanApplication is an immutable aggregate. Every mutation returns a new copy.
type LoanApplication struct {
	id              string
	borrowerID      string
	loanType        valueobject.LoanType
	requestedAmount decimal.Decimal
	currency        money.Currency
	termMonths      int
	purpose         string
	state           valueobject.LifecycleState
	assessment      *Assessment
	approvedAmount  decimal.Decimal
	approvedRate    decimal.Decimal
	approvedPayment decimal.Decimal
	decisionReason  string
	decidedBy       string
	accountID       string
	version         int
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []event.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoanApplication creates a DRAFT application. Missing fields are allowed
// until Submit; values that can never be valid are rejected here.
func NewLoanApplication(
	borrowerID string,
	loanType valueobject.LoanType,
	requestedAmount decimal.Decimal,
	currency money.Currency,
	termMonths int,
	purpose string,
	now time.Time,
) (LoanApplication, error) {
	if requestedAmount.IsNegative() {
		return LoanApplication{}, NewInvalidInput("requested_amount", "must not be negative")
	}
	if termMonths < 0 || termMonths > MaxTermMonths {
		return LoanApplication{}, NewInvalidInput("term_months", "out of range")
	}

	return LoanApplication{
		id:              uuid.New().String(),
		borrowerID:      borrowerID,
		loanType:        loanType,
		requestedAmount: requestedAmount,
		currency:        currency,
		termMonths:      termMonths,
		purpose:         purpose,
		state:           valueobject.StateDraft,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// LoanApplicationSnapshot is the persisted form of an application.
type LoanApplicationSnapshot struct {
	ID              string
	BorrowerID      string
	LoanType        valueobject.LoanType
	RequestedAmount decimal.Decimal
	Currency        money.Currency
	TermMonths      int
	Purpose         string
	State           valueobject.LifecycleState
	Assessment      *Assessment
	ApprovedAmount  decimal.Decimal
	ApprovedRate    decimal.Decimal
	ApprovedPayment decimal.Decimal
	DecisionReason  string
	DecidedBy       string
	AccountID       string
	Version         int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReconstructLoanApplication rebuilds an aggregate from persistence without
// recording events.
func ReconstructLoanApplication(s LoanApplicationSnapshot) LoanApplication {
	return LoanApplication{
		id:              s.ID,
		borrowerID:      s.BorrowerID,
		loanType:        s.LoanType,
		requestedAmount: s.RequestedAmount,
		currency:        s.Currency,
		termMonths:      s.TermMonths,
		purpose:         s.Purpose,
		state:           s.State,
		assessment:      s.Assessment,
		approvedAmount:  s.ApprovedAmount,
		approvedRate:    s.ApprovedRate,
		approvedPayment: s.ApprovedPayment,
		decisionReason:  s.DecisionReason,
		decidedBy:       s.DecidedBy,
		accountID:       s.AccountID,
		version:         s.Version,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
	}
}

// Snapshot exports the aggregate's state for persistence.
func (a LoanApplication) Snapshot() LoanApplicationSnapshot {
	return LoanApplicationSnapshot{
		ID:              a.id,
		BorrowerID:      a.borrowerID,
		LoanType:        a.loanType,
		RequestedAmount: a.requestedAmount,
		Currency:        a.currency,
		TermMonths:      a.termMonths,
		Purpose:         a.purpose,
		State:           a.state,
		Assessment:      a.assessment,
		ApprovedAmount:  a.approvedAmount,
		ApprovedRate:    a.approvedRate,
		ApprovedPayment: a.approvedPayment,
		DecisionReason:  a.decisionReason,
		DecidedBy:       a.decidedBy,
		AccountID:       a.accountID,
		Version:         a.version,
		CreatedAt:       a.createdAt,
		UpdatedAt:       a.updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions (each returns a new copy)
// ---------------------------------------------------------------------------

// MissingFields lists the required fields that are still empty.
func (a LoanApplication) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(a.borrowerID) == "" {
		missing = append(missing, "borrower_id")
	}
	if a.loanType.IsZero() {
		missing = append(missing, "loan_type")
	}
	if !a.requestedAmount.IsPositive() {
		missing = append(missing, "requested_amount")
	}
	if a.termMonths <= 0 {
		missing = append(missing, "term_months")
	}
	if a.currency.IsZero() {
		missing = append(missing, "currency")
	}
	return missing
}

// Submit moves DRAFT -> SUBMITTED once every required field is present.
func (a LoanApplication) Submit(now time.Time) (LoanApplication, error) {
	to, err := valueobject.Transition(a.state, valueobject.EventSubmit)
	if err != nil {
		return a, err
	}
	if missing := a.MissingFields(); len(missing) > 0 {
		return a, fmt.Errorf("%w: missing %s", ErrIncompleteApplication, strings.Join(missing, ", "))
	}

	next := a.advance(to, now)
	next.domainEvents = append(next.domainEvents, event.NewApplicationSubmitted(
		a.id, a.borrowerID, a.loanType.String(), a.requestedAmount, a.currency.Code(), a.termMonths, now,
	))
	return next, nil
}

// StartReview moves SUBMITTED -> UNDER_REVIEW.
func (a LoanApplication) StartReview(now time.Time) (LoanApplication, error) {
	to, err := valueobject.Transition(a.state, valueobject.EventStartReview)
	if err != nil {
		return a, err
	}
	next := a.advance(to, now)
	next.domainEvents = append(next.domainEvents, event.NewApplicationUnderReview(a.id, a.borrowerID, now))
	return next, nil
}

// AttachAssessment records the latest evaluation. It does not change state.
func (a LoanApplication) AttachAssessment(res EvaluationResult, now time.Time) (LoanApplication, error) {
	if !a.state.Equal(valueobject.StateSubmitted) && !a.state.Equal(valueobject.StateUnderReview) {
		return a, fmt.Errorf("%w: cannot assess application in %s", valueobject.ErrInvalidStatusTransition, a.state)
	}
	next := a.advance(a.state, now)
	next.assessment = &Assessment{
		IsEligible:              res.IsEligible,
		RiskScore:               res.RiskScore,
		RecommendedAmount:       res.RecommendedAmount,
		RecommendedInterestRate: res.RecommendedInterestRate,
		EvaluatedAt:             now,
	}
	return next, nil
}

// Approve moves UNDER_REVIEW -> APPROVED. Eligibility is advisory; the
// approved amount is bounded by requestedAmount x ceiling, and an explicit
// rate and monthly payment are mandatory.
func (a LoanApplication) Approve(terms ApprovalTerms, ceiling decimal.Decimal, now time.Time) (LoanApplication, error) {
	to, err := valueobject.Transition(a.state, valueobject.EventApprove)
	if err != nil {
		return a, err
	}
	if !ceiling.IsPositive() {
		ceiling = DefaultApprovalCeiling
	}

	switch {
	case !terms.ApprovedAmount.IsPositive():
		return a, NewInvalidInput("approved_amount", "must be greater than zero")
	case terms.ApprovedAmount.GreaterThan(a.requestedAmount.Mul(ceiling)):
		return a, fmt.Errorf("%w: %s > %s x %s", ErrApprovalCeilingExceeded,
			terms.ApprovedAmount, a.requestedAmount, ceiling)
	case !terms.InterestRate.Valid:
		return a, NewInvalidInput("interest_rate", "is required")
	case terms.InterestRate.Decimal.IsNegative():
		return a, NewInvalidInput("interest_rate", "must not be negative")
	case !terms.MonthlyPayment.Valid:
		return a, NewInvalidInput("monthly_payment", "is required")
	case !terms.MonthlyPayment.Decimal.IsPositive():
		return a, NewInvalidInput("monthly_payment", "must be greater than zero")
	}

	next := a.advance(to, now)
	next.approvedAmount = terms.ApprovedAmount
	next.approvedRate = terms.InterestRate.Decimal
	next.approvedPayment = terms.MonthlyPayment.Decimal
	next.decisionReason = terms.Notes
	next.decidedBy = terms.ApprovedBy
	next.domainEvents = append(next.domainEvents, event.NewApplicationApproved(
		a.id, a.borrowerID, terms.ApprovedAmount, next.approvedRate, next.approvedPayment, terms.ApprovedBy, now,
	))
	return next, nil
}

// Reject moves UNDER_REVIEW -> REJECTED.
func (a LoanApplication) Reject(reason, rejectedBy string, now time.Time) (LoanApplication, error) {
	to, err := valueobject.Transition(a.state, valueobject.EventReject)
	if err != nil {
		return a, err
	}
	if strings.TrimSpace(reason) == "" {
		return a, NewInvalidInput("reason", "is required")
	}
	next := a.advance(to, now)
	next.decisionReason = reason
	next.decidedBy = rejectedBy
	next.domainEvents = append(next.domainEvents, event.NewApplicationRejected(a.id, a.borrowerID, reason, rejectedBy, now))
	return next, nil
}

// CheckDisbursable reports why the application cannot be disbursed, if so.
func (a LoanApplication) CheckDisbursable() error {
	switch {
	case a.state.Equal(valueobject.StateApproved):
		return nil
	case a.state.Equal(valueobject.StateDisbursed) || a.accountID != "":
		return ErrAlreadyDisbursed
	default:
		return fmt.Errorf("%w: application is %s", ErrNotApproved, a.state)
	}
}

// MarkDisbursed moves APPROVED -> DISBURSED and links the account.
func (a LoanApplication) MarkDisbursed(accountID string, now time.Time) (LoanApplication, error) {
	if err := a.CheckDisbursable(); err != nil {
		return a, err
	}
	to, err := valueobject.Transition(a.state, valueobject.EventDisburse)
	if err != nil {
		return a, err
	}
	next := a.advance(to, now)
	next.accountID = accountID
	next.domainEvents = append(next.domainEvents, event.NewApplicationDisbursed(a.id, accountID, now))
	return next, nil
}

func (a LoanApplication) advance(to valueobject.LifecycleState, now time.Time) LoanApplication {
	next := a
	next.state = to
	next.updatedAt = now
	next.domainEvents = copyEvents(a.domainEvents)
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (a LoanApplication) ID() string                          { return a.id }
func (a LoanApplication) BorrowerID() string                  { return a.borrowerID }
func (a LoanApplication) LoanType() valueobject.LoanType      { return a.loanType }
func (a LoanApplication) RequestedAmount() decimal.Decimal    { return a.requestedAmount }
func (a LoanApplication) Currency() money.Currency            { return a.currency }
func (a LoanApplication) TermMonths() int                     { return a.termMonths }
func (a LoanApplication) Purpose() string                     { return a.purpose }
func (a LoanApplication) State() valueobject.LifecycleState   { return a.state }
func (a LoanApplication) Assessment() *Assessment             { return a.assessment }
func (a LoanApplication) ApprovedAmount() decimal.Decimal     { return a.approvedAmount }
func (a LoanApplication) ApprovedRate() decimal.Decimal       { return a.approvedRate }
func (a LoanApplication) ApprovedPayment() decimal.Decimal    { return a.approvedPayment }
func (a LoanApplication) DecisionReason() string              { return a.decisionReason }
func (a LoanApplication) DecidedBy() string                   { return a.decidedBy }
func (a LoanApplication) AccountID() string                   { return a.accountID }
func (a LoanApplication) Version() int                        { return a.version }
func (a LoanApplication) CreatedAt() time.Time                { return a.createdAt }
func (a LoanApplication) UpdatedAt() time.Time                { return a.updatedAt }
func (a LoanApplication) DomainEvents() []event.DomainEvent   { return a.domainEvents }

// ClearEvents returns a copy with an empty event list (call after publishing).
func (a LoanApplication) ClearEvents() LoanApplication {
	next := a
	next.domainEvents = nil
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
