package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/pkg/money"
)

// powerPrecision is the number of fractional digits kept while raising the
// growth factor to the term.
const powerPrecision = 24

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// AmortizationEntry is one installment of a schedule.
type AmortizationEntry struct {
	InstallmentNumber int
	DueDate           time.Time
	PrincipalPortion  decimal.Decimal
	InterestPortion   decimal.Decimal
	TotalAmount       decimal.Decimal
	RunningBalance    decimal.Decimal
}

// AmortizationSchedule is a full repayment plan. Entries are ordered by
// InstallmentNumber 1..TermMonths and the last RunningBalance is zero.
type AmortizationSchedule struct {
	Principal      decimal.Decimal
	AnnualRate     decimal.Decimal
	TermMonths     int
	MonthlyPayment decimal.Decimal
	StartDate      time.Time
	MaturityDate   time.Time
	Entries        []AmortizationEntry
}

// TotalInterest sums the interest portions.
func (s AmortizationSchedule) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Entries {
		total = total.Add(e.InterestPortion)
	}
	return total
}

// TotalPrincipal sums the principal portions. It equals Principal.
func (s AmortizationSchedule) TotalPrincipal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Entries {
		total = total.Add(e.PrincipalPortion)
	}
	return total
}

// MonthlyRate converts an annual percentage rate to a monthly fraction.
func MonthlyRate(annualRate decimal.Decimal) decimal.Decimal {
	return annualRate.Div(hundred).Div(monthsInYear)
}

// MonthlyPayment returns the fixed annuity payment rounded to the currency's
// minor unit. A zero rate falls back to principal/termMonths. The result is
// zero when the payment rounds below one minor unit.
//
//	payment = P * r * (1+r)^n / ((1+r)^n - 1)
func MonthlyPayment(principal, annualRate decimal.Decimal, termMonths int, cur money.Currency) decimal.Decimal {
	if termMonths <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}
	n := decimal.NewFromInt(int64(termMonths))
	r := MonthlyRate(annualRate)
	if !r.IsPositive() {
		return cur.Round(principal.Div(n))
	}

	factor := powInt(decimal.NewFromInt(1).Add(r), termMonths)
	denom := factor.Sub(decimal.NewFromInt(1))
	if denom.IsZero() {
		return cur.Round(principal.Div(n))
	}
	return cur.Round(principal.Mul(r).Mul(factor).Div(denom))
}

// GenerateAmortizationSchedule walks the loan month by month. Interest is the
// running balance times the monthly rate, the rest of the payment retires
// principal, and the last installment takes whatever balance remains.
func GenerateAmortizationSchedule(
	principal, annualRate decimal.Decimal,
	termMonths int,
	startDate time.Time,
	cur money.Currency,
) (AmortizationSchedule, error) {
	switch {
	case !principal.IsPositive():
		return AmortizationSchedule{}, NewInvalidInput("principal", "must be greater than zero")
	case annualRate.IsNegative():
		return AmortizationSchedule{}, NewInvalidInput("annual_rate", "must not be negative")
	case termMonths <= 0:
		return AmortizationSchedule{}, NewInvalidInput("term_months", "must be greater than zero")
	case termMonths > MaxTermMonths:
		return AmortizationSchedule{}, NewInvalidInput("term_months", "must not exceed 600")
	}

	payment := MonthlyPayment(principal, annualRate, termMonths, cur)
	if !payment.IsPositive() {
		return AmortizationSchedule{}, NewInvalidInput("principal", "too small to repay over term_months in whole minor units")
	}
	r := MonthlyRate(annualRate)

	entries := make([]AmortizationEntry, 0, termMonths)
	balance := principal
	for i := 1; i <= termMonths; i++ {
		interest := cur.Round(balance.Mul(r))
		principalPart := payment.Sub(interest)
		if principalPart.IsNegative() {
			principalPart = decimal.Zero
		}
		if i == termMonths || principalPart.GreaterThan(balance) {
			principalPart = balance
		}
		balance = balance.Sub(principalPart)

		entries = append(entries, AmortizationEntry{
			InstallmentNumber: i,
			DueDate:           AddMonths(startDate, i),
			PrincipalPortion:  principalPart,
			InterestPortion:   interest,
			TotalAmount:       principalPart.Add(interest),
			RunningBalance:    balance,
		})
	}

	return AmortizationSchedule{
		Principal:      principal,
		AnnualRate:     annualRate,
		TermMonths:     termMonths,
		MonthlyPayment: payment,
		StartDate:      startDate,
		MaturityDate:   AddMonths(startDate, termMonths),
		Entries:        entries,
	}, nil
}

// AddMonths moves t forward by months calendar months, clamping the day to
// the end of a shorter target month (Jan 31 + 1 month = Feb 28/29).
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// powInt raises base to a non-negative integer power by squaring.
func powInt(base decimal.Decimal, exp int) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(powerPrecision)
		}
		base = base.Mul(base).Round(powerPrecision)
		exp >>= 1
	}
	return result
}
