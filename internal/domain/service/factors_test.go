package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

func TestWeightsSumToHundred(t *testing.T) {
	total := 0
	for _, name := range model.FactorNames() {
		total += Weight(name)
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, 25, Weight(model.FactorIncome))
	assert.Equal(t, 5, Weight(model.FactorLoanType))
}

func TestEvaluateIncome(t *testing.T) {
	tests := []struct {
		income, payment string
		want            valueobject.DesirabilityScore
	}{
		{"5", "1", 90},
		{"4.99", "1", 80},
		{"4", "1", 80},
		{"3", "1", 70},
		{"2.5", "1", 60},
		{"2.49", "1", 30},
		{"100", "0", 90},
	}
	for _, tt := range tests {
		t.Run(tt.income+"/"+tt.payment, func(t *testing.T) {
			got := EvaluateIncome(dec(tt.income), dec(tt.payment))
			assert.Equal(t, tt.want, got.Score)
			assert.Equal(t, 25, got.Weight)
			assert.NotEmpty(t, got.Description)
		})
	}
}

func TestEvaluateCreditScore(t *testing.T) {
	tests := map[int]valueobject.DesirabilityScore{
		850: 95, 800: 95, 799: 85, 750: 85, 700: 75, 699: 60, 650: 60, 600: 40, 599: 20, 0: 20,
	}
	for in, want := range tests {
		assert.Equal(t, want, EvaluateCreditScore(in).Score, "credit score %d", in)
	}
}

func TestEvaluateSavings(t *testing.T) {
	tests := []struct {
		name      string
		balance   string
		interest  string
		age       int
		requested string
		want      valueobject.DesirabilityScore
	}{
		{"no savings", "0", "0", 0, "1000", 40},
		{"no savings but interest", "0", "5", 0, "1000", 40},
		{"five percent", "50", "0", 0, "1000", 55},
		{"ten percent with history", "100", "1", 12, "1000", 70},
		{"twenty percent", "200", "0", 0, "1000", 70},
		{"thirty percent", "300", "0", 0, "1000", 80},
		{"everything clamps to 100", "500", "10", 24, "1000", 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateSavings(model.SavingsProfile{
				Balance:             dec(tt.balance),
				TotalInterestEarned: dec(tt.interest),
				AccountAgeMonths:    tt.age,
			}, dec(tt.requested))
			assert.Equal(t, tt.want, got.Score)
			assert.Equal(t, 25, got.Weight)
		})
	}
}

func TestEvaluateEmployment(t *testing.T) {
	assert.Equal(t, valueobject.DesirabilityScore(85), EvaluateEmployment(valueobject.NewEmploymentStatus("employed")).Score)
	unknown := EvaluateEmployment(valueobject.NewEmploymentStatus("astronaut"))
	assert.Equal(t, valueobject.DesirabilityScore(30), unknown.Score)
	assert.Equal(t, 15, unknown.Weight)
}

func TestEvaluateDebtRatio(t *testing.T) {
	tests := map[string]valueobject.DesirabilityScore{
		"0": 90, "20": 90, "20.01": 75, "30": 75, "40": 60, "40.5": 40, "50": 40, "50.01": 20, "300": 20,
	}
	for in, want := range tests {
		assert.Equal(t, want, EvaluateDebtRatio(dec(in)).Score, "dti %s", in)
	}
}

func TestEvaluateLoanType(t *testing.T) {
	tests := []struct {
		lt     valueobject.LoanType
		amount string
		want   valueobject.DesirabilityScore
	}{
		{valueobject.LoanTypeMortgage, "1000", 85},
		{valueobject.LoanTypePayday, "1000", 30},
		{valueobject.LoanTypeAuto, "100000000", 80},
		{valueobject.LoanTypeAuto, "100000001", 75},
		{valueobject.LoanTypeAuto, "500000000", 75},
		{valueobject.LoanTypeAuto, "500000001", 70},
		{valueobject.LoanTypePersonal, "10000000", 65},
	}
	for _, tt := range tests {
		t.Run(tt.lt.String()+"/"+tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateLoanType(tt.lt, dec(tt.amount)).Score)
		})
	}
}

func TestRatios(t *testing.T) {
	assert.True(t, SavingsRatio(dec("2000000"), dec("10000000")).Equal(dec("20")))
	assert.True(t, SavingsRatio(dec("1"), decimal.Zero).IsZero())
	assert.True(t, DebtToIncome(dec("100"), dec("300"), dec("1000")).Equal(dec("40")))
	assert.True(t, DebtToIncome(dec("100"), dec("300"), decimal.Zero).IsZero())
}

func TestAggregateRisk(t *testing.T) {
	all := func(score int) map[model.FactorName]model.FactorScore {
		out := make(map[model.FactorName]model.FactorScore)
		for _, n := range model.FactorNames() {
			out[n] = model.FactorScore{Score: valueobject.DesirabilityScore(score), Weight: Weight(n)}
		}
		return out
	}
	assert.Equal(t, valueobject.RiskScore(0), AggregateRisk(all(100)))
	assert.Equal(t, valueobject.RiskScore(100), AggregateRisk(all(0)))
	assert.Equal(t, valueobject.RiskScore(40), AggregateRisk(all(60)))
	assert.Equal(t, valueobject.RiskScore(100), AggregateRisk(nil))

	half := map[model.FactorName]model.FactorScore{
		model.FactorIncome:      {Score: 51, Weight: 50},
		model.FactorCreditScore: {Score: 50, Weight: 50},
	}
	assert.Equal(t, valueobject.RiskScore(50), AggregateRisk(half), "49.5 rounds away from zero")
}
