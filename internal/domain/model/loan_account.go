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

// ---------------------------------------------------------------------------
// LoanAccount aggregate root
// ---------------------------------------------------------------------------

// LoanAccount is the servicing side of a disbursed application. It is
// immutable; mutations return a new copy.
type LoanAccount struct {
	id                string
	applicationID     string
	borrowerID        string
	accountNumber     string
	principal         decimal.Decimal
	currency          money.Currency
	interestRate      decimal.Decimal
	termMonths        int
	monthlyPayment    decimal.Decimal
	startDate         time.Time
	maturityDate      time.Time
	nextPaymentDate   time.Time
	runningBalance    decimal.Decimal
	totalPaid         decimal.Decimal
	paidInstallments  int
	installmentCredit decimal.Decimal
	schedule          []AmortizationEntry
	state             valueobject.LifecycleState
	defaultReason     string
	version           int
	createdAt         time.Time
	updatedAt         time.Time
	domainEvents      []event.DomainEvent
}

// DisbursementRequest carries the optional overrides of a disbursement.
type DisbursementRequest struct {
	Amount           decimal.NullDecimal
	DisbursementDate time.Time
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoanAccount opens an account for an approved application. The account
// is created in DISBURSED state; Activate completes the hand-over.
func NewLoanAccount(app LoanApplication, req DisbursementRequest, now time.Time) (LoanAccount, error) {
	if err := app.CheckDisbursable(); err != nil {
		return LoanAccount{}, err
	}

	principal := app.ApprovedAmount()
	if req.Amount.Valid {
		if !req.Amount.Decimal.IsPositive() {
			return LoanAccount{}, NewInvalidInput("disbursement_amount", "must be greater than zero")
		}
		if req.Amount.Decimal.GreaterThan(principal) {
			return LoanAccount{}, fmt.Errorf("%w: %s > %s", ErrAmountExceedsApproved, req.Amount.Decimal, principal)
		}
		principal = req.Amount.Decimal
	}
	start := req.DisbursementDate
	if start.IsZero() {
		start = now
	}

	state, err := valueobject.Transition(app.State(), valueobject.EventDisburse)
	if err != nil {
		return LoanAccount{}, err
	}
	sched, err := GenerateAmortizationSchedule(principal, app.ApprovedRate(), app.TermMonths(), start, app.Currency())
	if err != nil {
		return LoanAccount{}, fmt.Errorf("building schedule: %w", err)
	}

	id := uuid.New().String()
	acct := LoanAccount{
		id:                id,
		applicationID:     app.ID(),
		borrowerID:        app.BorrowerID(),
		accountNumber:     NewAccountNumber(start),
		principal:         principal,
		currency:          app.Currency(),
		interestRate:      app.ApprovedRate(),
		termMonths:        app.TermMonths(),
		monthlyPayment:    sched.MonthlyPayment,
		startDate:         start,
		maturityDate:      sched.MaturityDate,
		nextPaymentDate:   sched.Entries[0].DueDate,
		runningBalance:    principal,
		totalPaid:         decimal.Zero,
		installmentCredit: decimal.Zero,
		schedule:          sched.Entries,
		state:             state,
		version:           1,
		createdAt:         now,
		updatedAt:         now,
	}
	acct.domainEvents = append(acct.domainEvents, event.NewLoanDisbursed(
		id, app.ID(), app.BorrowerID(), acct.accountNumber,
		principal, acct.currency.Code(), acct.interestRate, acct.monthlyPayment, acct.termMonths,
		acct.maturityDate, now,
	))
	return acct, nil
}

// NewAccountNumber formats a human-readable account number.
func NewAccountNumber(disbursedAt time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
	return "LN-" + disbursedAt.UTC().Format("20060102") + "-" + suffix
}

// LoanAccountSnapshot is the persisted form of an account.
type LoanAccountSnapshot struct {
	ID                string
	ApplicationID     string
	BorrowerID        string
	AccountNumber     string
	Principal         decimal.Decimal
	Currency          money.Currency
	InterestRate      decimal.Decimal
	TermMonths        int
	MonthlyPayment    decimal.Decimal
	StartDate         time.Time
	MaturityDate      time.Time
	NextPaymentDate   time.Time
	RunningBalance    decimal.Decimal
	TotalPaid         decimal.Decimal
	PaidInstallments  int
	InstallmentCredit decimal.Decimal
	Schedule          []AmortizationEntry
	State             valueobject.LifecycleState
	DefaultReason     string
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ReconstructLoanAccount rebuilds an account from persistence.
func ReconstructLoanAccount(s LoanAccountSnapshot) LoanAccount {
	return LoanAccount{
		id:                s.ID,
		applicationID:     s.ApplicationID,
		borrowerID:        s.BorrowerID,
		accountNumber:     s.AccountNumber,
		principal:         s.Principal,
		currency:          s.Currency,
		interestRate:      s.InterestRate,
		termMonths:        s.TermMonths,
		monthlyPayment:    s.MonthlyPayment,
		startDate:         s.StartDate,
		maturityDate:      s.MaturityDate,
		nextPaymentDate:   s.NextPaymentDate,
		runningBalance:    s.RunningBalance,
		totalPaid:         s.TotalPaid,
		paidInstallments:  s.PaidInstallments,
		installmentCredit: s.InstallmentCredit,
		schedule:          s.Schedule,
		state:             s.State,
		defaultReason:     s.DefaultReason,
		version:           s.Version,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
	}
}

// Snapshot exports the account's state for persistence.
func (l LoanAccount) Snapshot() LoanAccountSnapshot {
	return LoanAccountSnapshot{
		ID:                l.id,
		ApplicationID:     l.applicationID,
		BorrowerID:        l.borrowerID,
		AccountNumber:     l.accountNumber,
		Principal:         l.principal,
		Currency:          l.currency,
		InterestRate:      l.interestRate,
		TermMonths:        l.termMonths,
		MonthlyPayment:    l.monthlyPayment,
		StartDate:         l.startDate,
		MaturityDate:      l.maturityDate,
		NextPaymentDate:   l.nextPaymentDate,
		RunningBalance:    l.runningBalance,
		TotalPaid:         l.totalPaid,
		PaidInstallments:  l.paidInstallments,
		InstallmentCredit: l.installmentCredit,
		Schedule:          l.Schedule(),
		State:             l.state,
		DefaultReason:     l.defaultReason,
		Version:           l.version,
		CreatedAt:         l.createdAt,
		UpdatedAt:         l.updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Activate moves DISBURSED -> ACTIVE. The first installment falls due one
// period after disbursement.
func (l LoanAccount) Activate(now time.Time) (LoanAccount, error) {
	to, err := valueobject.Transition(l.state, valueobject.EventActivate)
	if err != nil {
		return l, err
	}
	next := l.advance(to, now)
	next.domainEvents = append(next.domainEvents, event.NewLoanActivated(l.id, l.nextPaymentDate, now))
	return next, nil
}

// OutstandingAmount is what remains to be paid over the rest of the schedule,
// interest included, net of any partial credit toward the next installment.
func (l LoanAccount) OutstandingAmount() decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.schedule[l.paidInstallments:] {
		total = total.Add(e.TotalAmount)
	}
	return total.Sub(l.installmentCredit)
}

// ApplyPayment allocates amount to installments in order. Every installment
// it covers in full lowers the running balance to that installment's
// balance and moves the next payment date forward. A remainder is held as
// credit toward the next installment. Covering the last installment pays the
// loan off.
func (l LoanAccount) ApplyPayment(reference string, amount decimal.Decimal, now time.Time) (LoanAccount, error) {
	if !l.state.Equal(valueobject.StateActive) {
		return l, fmt.Errorf("%w: account is %s", ErrLoanNotActive, l.state)
	}
	if !amount.IsPositive() {
		return l, NewInvalidInput("amount", "must be greater than zero")
	}
	if outstanding := l.OutstandingAmount(); amount.GreaterThan(outstanding) {
		return l, fmt.Errorf("%w: %s > %s", ErrPaymentExceedsBalance, amount, outstanding)
	}

	next := l.advance(l.state, now)
	next.schedule = l.Schedule()
	next.totalPaid = l.totalPaid.Add(amount)

	credit := l.installmentCredit.Add(amount)
	for next.paidInstallments < len(next.schedule) && credit.GreaterThanOrEqual(next.schedule[next.paidInstallments].TotalAmount) {
		credit = credit.Sub(next.schedule[next.paidInstallments].TotalAmount)
		next.runningBalance = next.schedule[next.paidInstallments].RunningBalance
		next.paidInstallments++
	}
	next.installmentCredit = credit

	if next.paidInstallments < len(next.schedule) {
		next.nextPaymentDate = next.schedule[next.paidInstallments].DueDate
	}
	next.domainEvents = append(next.domainEvents, event.NewPaymentApplied(
		l.id, reference, amount, next.runningBalance, next.nextPaymentDate, now,
	))

	if next.paidInstallments == len(next.schedule) && next.runningBalance.IsZero() {
		to, err := valueobject.Transition(next.state, valueobject.EventPayOff)
		if err != nil {
			return l, err
		}
		next.state = to
		next.nextPaymentDate = time.Time{}
		next.domainEvents = append(next.domainEvents, event.NewLoanPaidOff(l.id, l.applicationID, now))
	}
	return next, nil
}

// DaysOverdue is the number of days the next installment is late. Only
// active accounts can be overdue.
func (l LoanAccount) DaysOverdue(asOf time.Time) int {
	if !l.state.Equal(valueobject.StateActive) {
		return 0
	}
	return DaysOverdue(l.nextPaymentDate, asOf)
}

// MarkDefaulted moves ACTIVE -> DEFAULTED. The decision belongs to the
// caller's collection policy.
func (l LoanAccount) MarkDefaulted(reason string, asOf time.Time) (LoanAccount, error) {
	to, err := valueobject.Transition(l.state, valueobject.EventDefault)
	if err != nil {
		return l, err
	}
	next := l.advance(to, asOf)
	next.defaultReason = reason
	next.domainEvents = append(next.domainEvents, event.NewLoanDefaulted(
		l.id, l.applicationID, l.DaysOverdue(asOf), l.runningBalance, reason, asOf,
	))
	return next, nil
}

func (l LoanAccount) advance(to valueobject.LifecycleState, now time.Time) LoanAccount {
	next := l
	next.state = to
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l LoanAccount) ID() string                             { return l.id }
func (l LoanAccount) ApplicationID() string                  { return l.applicationID }
func (l LoanAccount) BorrowerID() string                     { return l.borrowerID }
func (l LoanAccount) AccountNumber() string                  { return l.accountNumber }
func (l LoanAccount) Principal() decimal.Decimal             { return l.principal }
func (l LoanAccount) Currency() money.Currency               { return l.currency }
func (l LoanAccount) InterestRate() decimal.Decimal          { return l.interestRate }
func (l LoanAccount) TermMonths() int                        { return l.termMonths }
func (l LoanAccount) MonthlyPayment() decimal.Decimal        { return l.monthlyPayment }
func (l LoanAccount) StartDate() time.Time                   { return l.startDate }
func (l LoanAccount) MaturityDate() time.Time                { return l.maturityDate }
func (l LoanAccount) NextPaymentDate() time.Time             { return l.nextPaymentDate }
func (l LoanAccount) RunningBalance() decimal.Decimal        { return l.runningBalance }
func (l LoanAccount) TotalPaid() decimal.Decimal             { return l.totalPaid }
func (l LoanAccount) PaidInstallments() int                  { return l.paidInstallments }
func (l LoanAccount) InstallmentCredit() decimal.Decimal     { return l.installmentCredit }
func (l LoanAccount) State() valueobject.LifecycleState      { return l.state }
func (l LoanAccount) DefaultReason() string                  { return l.defaultReason }
func (l LoanAccount) Version() int                           { return l.version }
func (l LoanAccount) CreatedAt() time.Time                   { return l.createdAt }
func (l LoanAccount) UpdatedAt() time.Time                   { return l.updatedAt }
func (l LoanAccount) DomainEvents() []event.DomainEvent      { return l.domainEvents }

// Schedule returns a copy of the amortization entries.
func (l LoanAccount) Schedule() []AmortizationEntry {
	out := make([]AmortizationEntry, len(l.schedule))
	copy(out, l.schedule)
	return out
}

// ClearEvents returns a copy with an empty event list.
func (l LoanAccount) ClearEvents() LoanAccount {
	next := l
	next.domainEvents = nil
	return next
}
