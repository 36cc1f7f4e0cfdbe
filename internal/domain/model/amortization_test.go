package model

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/pkg/money"
)

var start = time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMonthlyPayment_KnownValues(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		cur       money.Currency
		want      string
	}{
		{"one percent a month", "100000", "12", 12, money.USD, "8884.88"},
		{"zero-decimal currency", "1000000", "12", 12, money.JPY, "88849"},
		{"zero rate straight line", "1200", "0", 12, money.USD, "100"},
		{"zero rate rounds to cents", "1000", "0", 3, money.USD, "333.33"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyPayment(d(tt.principal), d(tt.rate), tt.term, tt.cur)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestGenerateAmortizationSchedule_ZeroRateFallsBackToStraightLine(t *testing.T) {
	sched, err := GenerateAmortizationSchedule(d("1000"), decimal.Zero, 3, start, money.USD)
	require.NoError(t, err)

	require.Len(t, sched.Entries, 3)
	assert.True(t, sched.MonthlyPayment.Equal(d("333.33")))
	for _, e := range sched.Entries {
		assert.True(t, e.InterestPortion.IsZero())
	}
	assert.True(t, sched.Entries[2].PrincipalPortion.Equal(d("333.34")))
	assert.True(t, sched.Entries[2].RunningBalance.IsZero())
}

func TestGenerateAmortizationSchedule_Conservation(t *testing.T) {
	principals := []string{"1000", "10000000", "2500.55", "999999.99", "0.05"}
	rates := []string{"0", "0.5", "10", "13", "29.99", "30"}
	terms := []int{1, 7, 24, 60, 360}

	for _, p := range principals {
		for _, r := range rates {
			for _, n := range terms {
				t.Run(fmt.Sprintf("%s@%s/%d", p, r, n), func(t *testing.T) {
					sched, err := GenerateAmortizationSchedule(d(p), d(r), n, start, money.USD)
					if MonthlyPayment(d(p), d(r), n, money.USD).IsZero() {
						require.ErrorIs(t, err, ErrInvalidInput)
						return
					}
					require.NoError(t, err)
					require.Len(t, sched.Entries, n)

					assert.True(t, sched.TotalPrincipal().Equal(d(p)), "principal sum %s", sched.TotalPrincipal())
					last := sched.Entries[n-1]
					assert.True(t, last.RunningBalance.IsZero(), "final balance %s", last.RunningBalance)

					prev := d(p)
					for i, e := range sched.Entries {
						assert.Equal(t, i+1, e.InstallmentNumber)
						assert.False(t, e.PrincipalPortion.IsNegative())
						assert.False(t, e.InterestPortion.IsNegative())
						assert.True(t, e.TotalAmount.Equal(e.PrincipalPortion.Add(e.InterestPortion)))
						assert.True(t, prev.Sub(e.PrincipalPortion).Equal(e.RunningBalance))
						assert.True(t, e.InterestPortion.Equal(e.InterestPortion.Round(2)))
						prev = e.RunningBalance
					}
				})
			}
		}
	}
}

func TestGenerateAmortizationSchedule_InterestDeclinesPrincipalRises(t *testing.T) {
	sched, err := GenerateAmortizationSchedule(d("10000000"), d("15"), 24, start, money.USD)
	require.NoError(t, err)

	for i := 1; i < len(sched.Entries)-1; i++ {
		assert.True(t, sched.Entries[i].InterestPortion.LessThanOrEqual(sched.Entries[i-1].InterestPortion))
		assert.True(t, sched.Entries[i].PrincipalPortion.GreaterThanOrEqual(sched.Entries[i-1].PrincipalPortion))
		assert.True(t, sched.Entries[i].TotalAmount.Equal(sched.MonthlyPayment))
	}
	assert.True(t, sched.Entries[0].InterestPortion.Equal(d("125000")))
}

func TestGenerateAmortizationSchedule_Dates(t *testing.T) {
	monthEnd := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	sched, err := GenerateAmortizationSchedule(d("3000"), d("10"), 3, monthEnd, money.USD)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), sched.Entries[0].DueDate)
	assert.Equal(t, time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC), sched.Entries[1].DueDate)
	assert.Equal(t, time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC), sched.Entries[2].DueDate)
	assert.Equal(t, sched.Entries[2].DueDate, sched.MaturityDate)
}

func TestGenerateAmortizationSchedule_RejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		term      int
		field     string
	}{
		{"zero principal", "0", "10", 12, "principal"},
		{"negative rate", "100", "-1", 12, "annual_rate"},
		{"zero term", "100", "10", 0, "term_months"},
		{"term too long", "100", "10", MaxTermMonths + 1, "term_months"},
		{"payment rounds to zero", "0.05", "0", 12, "principal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateAmortizationSchedule(d(tt.principal), d(tt.rate), tt.term, start, money.USD)
			require.ErrorIs(t, err, ErrInvalidInput)
			var inv *InvalidInputError
			require.True(t, errors.As(err, &inv))
			assert.Equal(t, tt.field, inv.Field)
		})
	}
}

func TestGenerateAmortizationSchedule_PrincipalBelowOneMinorUnitPerMonth(t *testing.T) {
	assert.True(t, MonthlyPayment(d("1"), d("0"), 12, money.JPY).IsZero())

	_, err := GenerateAmortizationSchedule(d("1"), d("0"), 12, start, money.JPY)
	require.ErrorIs(t, err, ErrInvalidInput)

	sched, err := GenerateAmortizationSchedule(d("12"), d("0"), 12, start, money.JPY)
	require.NoError(t, err)
	assert.True(t, sched.MonthlyPayment.Equal(d("1")))
	for _, e := range sched.Entries {
		assert.True(t, e.TotalAmount.Equal(d("1")), "installment %d", e.InstallmentNumber)
	}
}

func TestDaysOverdue(t *testing.T) {
	due := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysOverdue(due, due.Add(-time.Hour)))
	assert.Equal(t, 0, DaysOverdue(due, due.Add(23*time.Hour)))
	assert.Equal(t, 1, DaysOverdue(due, due.Add(25*time.Hour)))
	assert.Equal(t, 31, DaysOverdue(due, time.Date(2025, time.April, 15, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, DaysOverdue(time.Time{}, due))

	assert.False(t, IsPastGrace(due, due.AddDate(0, 0, 30), 30))
	assert.True(t, IsPastGrace(due, due.AddDate(0, 0, 31), 30))
}
