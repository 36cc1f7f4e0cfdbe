package model

import "time"

// DaysOverdue counts whole calendar days from the payment due date to asOf,
// both taken as UTC dates. It is zero until the day after the due date and
// for an unset due date.
func DaysOverdue(nextPaymentDate, asOf time.Time) int {
	if nextPaymentDate.IsZero() {
		return 0
	}
	due := civilDate(nextPaymentDate)
	now := civilDate(asOf)
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due).Hours() / 24)
}

// IsPastGrace reports whether the payment is more than graceDays overdue.
func IsPastGrace(nextPaymentDate, asOf time.Time, graceDays int) bool {
	return DaysOverdue(nextPaymentDate, asOf) > graceDays
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
