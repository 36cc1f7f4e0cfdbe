package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

func TestRiskAdjustment(t *testing.T) {
	tests := map[valueobject.RiskScore]string{
		0: "-1", 20: "-1", 21: "0", 40: "0", 41: "1", 60: "1", 61: "2.5", 80: "2.5", 81: "5", 100: "5",
	}
	for risk, want := range tests {
		assert.True(t, RiskAdjustment(risk).Equal(dec(want)), "risk %d", risk)
	}
}

func TestSavingsDiscount(t *testing.T) {
	tests := []struct {
		name     string
		ratio    string
		interest string
		age      int
		want     string
	}{
		{"nothing", "0", "0", 0, "0"},
		{"five percent", "5", "0", 0, "0.5"},
		{"ten percent", "10", "0", 0, "1"},
		{"twenty percent", "20", "0", 0, "2"},
		{"thirty percent", "30", "0", 0, "2.5"},
		{"fifty percent", "50", "0", 0, "3"},
		{"capped at three", "400", "0", 0, "3"},
		{"interest earned", "0", "0.01", 0, "0.5"},
		{"aging account", "0", "0", 12, "0.25"},
		{"mature account", "0", "0", 24, "0.5"},
		{"everything", "60", "10", 36, "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SavingsDiscount(model.SavingsProfile{
				Balance:             dec("1"),
				TotalInterestEarned: dec(tt.interest),
				AccountAgeMonths:    tt.age,
			}, dec(tt.ratio))
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestPriceLoan(t *testing.T) {
	tests := []struct {
		name    string
		lt      valueobject.LoanType
		risk    valueobject.RiskScore
		savings model.SavingsProfile
		ratio   string
		want    string
	}{
		{"floor applies", valueobject.LoanTypePersonal, 10, model.SavingsProfile{TotalInterestEarned: dec("5"), AccountAgeMonths: 30}, "60", "10.5"},
		{"severe risk no savings", valueobject.LoanTypePayday, 90, model.SavingsProfile{}, "0", "35"},
		{"moderate risk some savings", valueobject.LoanTypeMortgage, 50, model.SavingsProfile{AccountAgeMonths: 12}, "12", "11.75"},
		{"typical personal loan", valueobject.LoanTypePersonal, 22, model.SavingsProfile{}, "20", "13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PriceLoan(tt.lt, tt.risk, tt.savings, dec(tt.ratio))
			assert.True(t, p.FinalRate.Equal(dec(tt.want)), "got %s", p.FinalRate)
			assert.True(t, p.FinalRate.GreaterThanOrEqual(p.FloorRate))
			assert.True(t, p.BaseRate.Equal(tt.lt.Terms().BaseRate))
		})
	}
}

func TestPriceLoan_NeverBelowFloor(t *testing.T) {
	rich := model.SavingsProfile{TotalInterestEarned: dec("1"), AccountAgeMonths: 48}
	for _, lt := range valueobject.LoanTypes() {
		for risk := valueobject.RiskScore(0); risk <= 100; risk += 5 {
			p := PriceLoan(lt, risk, rich, dec("80"))
			assert.True(t, p.FinalRate.GreaterThanOrEqual(lt.Terms().BaseRate.Mul(dec("0.7"))), "%s risk %d", lt, risk)
		}
	}
}

func TestRecommendAmount(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		risk      valueobject.RiskScore
		ratio     string
		want      string
	}{
		{"high risk", "1000000", 71, "90", "700000"},
		{"elevated risk beats savings", "1000000", 70, "90", "850000"},
		{"elevated risk rounds", "1000001", 51, "0", "850001"},
		{"strong savings", "1000000", 50, "30", "1100000"},
		{"just below strong savings", "1000000", 50, "29.99", "1000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecommendAmount(dec(tt.requested), tt.risk, dec(tt.ratio))
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestMinimumSavingsRequired(t *testing.T) {
	req := model.LoanRequest{RequestedAmount: dec("10000000"), LoanType: valueobject.LoanTypeMortgage, TermMonths: 24, Currency: money.IDR}
	assert.True(t, MinimumSavingsRequired(req).Equal(dec("2000000")))

	req.LoanType = valueobject.LoanTypeStudent
	req.RequestedAmount = dec("333.33")
	assert.True(t, MinimumSavingsRequired(req).Equal(dec("10")), "3 percent of 333.33 rounds to 10.00")
}

func TestDecideEligibility(t *testing.T) {
	base := EligibilityInput{
		RiskScore:              70,
		DebtToIncome:           dec("40"),
		SavingsBalance:         dec("500"),
		MinimumSavingsRequired: dec("500"),
		CreditScore:            580,
		LoanType:               valueobject.LoanTypePersonal,
	}
	assert.True(t, DecideEligibility(base).Eligible, "boundaries are inclusive")

	tests := []struct {
		name   string
		mutate func(*EligibilityInput)
		rule   Rule
	}{
		{"risk", func(in *EligibilityInput) { in.RiskScore = 71 }, RuleRiskScore},
		{"dti", func(in *EligibilityInput) { in.DebtToIncome = dec("40.01") }, RuleDebtToIncome},
		{"savings", func(in *EligibilityInput) { in.SavingsBalance = dec("499.99") }, RuleMinimumSavings},
		{"credit", func(in *EligibilityInput) { in.CreditScore = 579 }, RuleCreditScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			got := DecideEligibility(in)
			assert.False(t, got.Eligible)
			assert.True(t, got.Failed(tt.rule))
			assert.Len(t, got.Failures, 1)
		})
	}

	none := base
	none.SavingsBalance = decimal.Zero
	none.CreditScore = 0
	assert.Len(t, DecideEligibility(none).Failures, 2)
}
