package model

import (
	"errors"
	"fmt"
)

// Domain errors. Callers match with errors.Is.
var (
	ErrInvalidInput            = errors.New("invalid input")
	ErrNotFound                = errors.New("not found")
	ErrIncompleteApplication   = errors.New("application is incomplete")
	ErrApprovalCeilingExceeded = errors.New("approved amount exceeds approval ceiling")
	ErrNotApproved             = errors.New("application is not approved")
	ErrAlreadyDisbursed        = errors.New("application already disbursed")
	ErrAmountExceedsApproved   = errors.New("disbursement amount exceeds approved amount")
	ErrLoanNotActive           = errors.New("loan account is not active")
	ErrPaymentExceedsBalance   = errors.New("payment exceeds outstanding amount")
	ErrConcurrentModification  = errors.New("concurrent modification")
)

// InvalidInputError names the offending field. It matches ErrInvalidInput.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewInvalidInput builds an *InvalidInputError.
func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
