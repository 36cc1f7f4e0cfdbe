package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// CollectionCase tracks recovery work on a defaulted loan account. It is
// opened by the overdue sweep with the exposure at the moment of default.
type CollectionCase struct {
	id          string
	accountID   string
	borrowerID  string
	status      valueobject.CollectionCaseStatus
	reason      string
	daysOverdue int
	outstanding decimal.Decimal
	assignedTo  string
	notes       []string
	createdAt   time.Time
	updatedAt   time.Time
}

// OpenCollectionCase starts a case for an account that has just defaulted.
func OpenCollectionCase(acct LoanAccount, now time.Time) (CollectionCase, error) {
	if !acct.State().Equal(valueobject.StateDefaulted) {
		return CollectionCase{}, fmt.Errorf("%w: collection case needs a DEFAULTED account, got %s",
			valueobject.ErrInvalidStatusTransition, acct.State())
	}
	return CollectionCase{
		id:          uuid.New().String(),
		accountID:   acct.ID(),
		borrowerID:  acct.BorrowerID(),
		status:      valueobject.CollectionCaseStatusOpen,
		reason:      acct.DefaultReason(),
		daysOverdue: DaysOverdue(acct.NextPaymentDate(), now),
		outstanding: acct.OutstandingAmount(),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// CollectionCaseSnapshot is the persisted form of a case.
type CollectionCaseSnapshot struct {
	ID          string
	AccountID   string
	BorrowerID  string
	Status      valueobject.CollectionCaseStatus
	Reason      string
	DaysOverdue int
	Outstanding decimal.Decimal
	AssignedTo  string
	Notes       []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReconstructCollectionCase rebuilds a case from persistence.
func ReconstructCollectionCase(s CollectionCaseSnapshot) CollectionCase {
	return CollectionCase{
		id:          s.ID,
		accountID:   s.AccountID,
		borrowerID:  s.BorrowerID,
		status:      s.Status,
		reason:      s.Reason,
		daysOverdue: s.DaysOverdue,
		outstanding: s.Outstanding,
		assignedTo:  s.AssignedTo,
		notes:       s.Notes,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}
}

// AddNote appends a note to the case.
func (c CollectionCase) AddNote(note string, now time.Time) CollectionCase {
	next := c
	next.notes = make([]string, len(c.notes)+1)
	copy(next.notes, c.notes)
	next.notes[len(c.notes)] = note
	next.updatedAt = now
	return next
}

// Assign hands the case to an agent, moving an OPEN case to IN_PROGRESS.
func (c CollectionCase) Assign(agentID string, now time.Time) (CollectionCase, error) {
	if agentID == "" {
		return c, NewInvalidInput("assigned_to", "is required")
	}
	if !c.status.IsOpen() {
		return c, fmt.Errorf("%w: assign on %s", valueobject.ErrInvalidStatusTransition, c.status)
	}
	next := c
	next.assignedTo = agentID
	next.status = valueobject.CollectionCaseStatusInProgress
	next.updatedAt = now
	return next, nil
}

// Resolve marks recovery work as finished.
func (c CollectionCase) Resolve(now time.Time) (CollectionCase, error) {
	if !c.status.IsOpen() {
		return c, fmt.Errorf("%w: resolve on %s", valueobject.ErrInvalidStatusTransition, c.status)
	}
	next := c
	next.status = valueobject.CollectionCaseStatusResolved
	next.updatedAt = now
	return next, nil
}

// Close archives a resolved case.
func (c CollectionCase) Close(now time.Time) (CollectionCase, error) {
	if !c.status.Equal(valueobject.CollectionCaseStatusResolved) {
		return c, fmt.Errorf("%w: close on %s", valueobject.ErrInvalidStatusTransition, c.status)
	}
	next := c
	next.status = valueobject.CollectionCaseStatusClosed
	next.updatedAt = now
	return next, nil
}

func (c CollectionCase) ID() string                               { return c.id }
func (c CollectionCase) AccountID() string                        { return c.accountID }
func (c CollectionCase) BorrowerID() string                       { return c.borrowerID }
func (c CollectionCase) Status() valueobject.CollectionCaseStatus { return c.status }
func (c CollectionCase) Reason() string                           { return c.reason }
func (c CollectionCase) DaysOverdue() int                         { return c.daysOverdue }
func (c CollectionCase) Outstanding() decimal.Decimal             { return c.outstanding }
func (c CollectionCase) AssignedTo() string                       { return c.assignedTo }
func (c CollectionCase) CreatedAt() time.Time                     { return c.createdAt }
func (c CollectionCase) UpdatedAt() time.Time                     { return c.updatedAt }

// Notes returns a copy.
func (c CollectionCase) Notes() []string {
	if c.notes == nil {
		return nil
	}
	out := make([]string, len(c.notes))
	copy(out, c.notes)
	return out
}
