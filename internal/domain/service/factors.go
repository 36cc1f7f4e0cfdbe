package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// factorWeights must sum to 100; init enforces it.
var factorWeights = map[model.FactorName]int{
	model.FactorIncome:      25,
	model.FactorCreditScore: 20,
	model.FactorSavings:     25,
	model.FactorEmployment:  15,
	model.FactorDebtRatio:   10,
	model.FactorLoanType:    5,
}

func init() {
	total := 0
	for _, w := range factorWeights {
		total += w
	}
	if total != 100 {
		panic(fmt.Sprintf("factor weights sum to %d, want 100", total))
	}
}

// Weight returns the fixed weight of a factor.
func Weight(name model.FactorName) int { return factorWeights[name] }

var (
	hundred = decimal.NewFromInt(100)

	highAmountThreshold   = decimal.NewFromInt(500_000_000)
	mediumAmountThreshold = decimal.NewFromInt(100_000_000)
)

// rung is one step of a score ladder: inputs at or beyond bound get score.
type rung struct {
	bound decimal.Decimal
	score int
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	incomeLadder = []rung{{dec("5"), 90}, {dec("4"), 80}, {dec("3"), 70}, {dec("2.5"), 60}}
	creditLadder = []rung{{dec("800"), 95}, {dec("750"), 85}, {dec("700"), 75}, {dec("650"), 60}, {dec("600"), 40}}
	debtLadder   = []rung{{dec("20"), 90}, {dec("30"), 75}, {dec("40"), 60}, {dec("50"), 40}}

	savingsRatioLadder    = []rung{{dec("50"), 40}, {dec("30"), 30}, {dec("20"), 20}, {dec("10"), 10}, {dec("5"), 5}}
	savingsInterestLadder = []rung{{dec("2"), 10}, {dec("1"), 5}}
	savingsAgeLadder      = []rung{{dec("24"), 10}, {dec("12"), 5}}
)

// atLeast walks a descending ladder and returns the first score whose bound
// v reaches.
func atLeast(ladder []rung, v decimal.Decimal, otherwise int) int {
	for _, r := range ladder {
		if v.GreaterThanOrEqual(r.bound) {
			return r.score
		}
	}
	return otherwise
}

// atMost walks an ascending ladder and returns the first score whose bound v
// does not exceed.
func atMost(ladder []rung, v decimal.Decimal, otherwise int) int {
	for _, r := range ladder {
		if v.LessThanOrEqual(r.bound) {
			return r.score
		}
	}
	return otherwise
}

func factor(name model.FactorName, score int, description string) model.FactorScore {
	return model.FactorScore{
		Score:       valueobject.ClampDesirability(score),
		Weight:      factorWeights[name],
		Description: description,
	}
}

// EstimateMonthlyPayment prices the request at the loan type's base rate.
// Income and debt-ratio scoring use this estimate, not the final rate.
func EstimateMonthlyPayment(req model.LoanRequest) decimal.Decimal {
	return model.MonthlyPayment(req.RequestedAmount, req.LoanType.Terms().BaseRate, req.TermMonths, req.Currency)
}

// SavingsRatio is the savings balance as a percentage of the requested amount.
func SavingsRatio(balance, requested decimal.Decimal) decimal.Decimal {
	if !requested.IsPositive() {
		return decimal.Zero
	}
	return balance.Div(requested).Mul(hundred)
}

// DebtToIncome is (monthly debt + new payment) / monthly income, in percent.
func DebtToIncome(activeDebt, payment, monthlyIncome decimal.Decimal) decimal.Decimal {
	if !monthlyIncome.IsPositive() {
		return decimal.Zero
	}
	return activeDebt.Add(payment).Div(monthlyIncome).Mul(hundred)
}

// EvaluateIncome scores how many times income covers the estimated payment.
func EvaluateIncome(monthlyIncome, estimatedPayment decimal.Decimal) model.FactorScore {
	if !estimatedPayment.IsPositive() {
		return factor(model.FactorIncome, 90, "No measurable repayment burden")
	}
	ratio := monthlyIncome.Div(estimatedPayment)
	score := atLeast(incomeLadder, ratio, 30)
	return factor(model.FactorIncome, score,
		fmt.Sprintf("Income covers the estimated payment %sx", ratio.StringFixed(2)))
}

// EvaluateCreditScore maps a bureau score onto the credit ladder.
func EvaluateCreditScore(creditScore int) model.FactorScore {
	score := atLeast(creditLadder, decimal.NewFromInt(int64(creditScore)), 20)
	return factor(model.FactorCreditScore, score, fmt.Sprintf("Credit score %d", creditScore))
}

// EvaluateSavings starts at 50 and adjusts for coverage of the request,
// interest history and account age.
func EvaluateSavings(savings model.SavingsProfile, requested decimal.Decimal) model.FactorScore {
	ratio := SavingsRatio(savings.Balance, requested)
	score := 50 + atLeast(savingsRatioLadder, ratio, -10)

	if savings.Balance.IsPositive() {
		interestPct := savings.TotalInterestEarned.Div(savings.Balance).Mul(hundred)
		score += atLeast(savingsInterestLadder, interestPct, 0)
	}
	score += atLeast(savingsAgeLadder, decimal.NewFromInt(int64(savings.AccountAgeMonths)), 0)

	return factor(model.FactorSavings, score,
		fmt.Sprintf("Savings cover %s%% of the requested amount over %d months", ratio.StringFixed(2), savings.AccountAgeMonths))
}

// EvaluateEmployment scores the normalised employment category.
func EvaluateEmployment(status valueobject.EmploymentStatus) model.FactorScore {
	desc := "Employment status " + status.String()
	if !status.Known() {
		desc = "Unrecognised employment status"
	}
	return factor(model.FactorEmployment, int(status.Score()), desc)
}

// EvaluateDebtRatio scores the debt-to-income percentage.
func EvaluateDebtRatio(dti decimal.Decimal) model.FactorScore {
	score := atMost(debtLadder, dti, 20)
	return factor(model.FactorDebtRatio, score, fmt.Sprintf("Debt-to-income ratio %s%%", dti.StringFixed(2)))
}

// EvaluateLoanType starts from the product's risk base and penalises very
// large requests.
func EvaluateLoanType(lt valueobject.LoanType, requested decimal.Decimal) model.FactorScore {
	score := lt.Terms().RiskBase
	desc := lt.String() + " product risk"
	switch {
	case requested.GreaterThan(highAmountThreshold):
		score -= 10
		desc += ", high amount"
	case requested.GreaterThan(mediumAmountThreshold):
		score -= 5
		desc += ", elevated amount"
	}
	return factor(model.FactorLoanType, score, desc)
}
