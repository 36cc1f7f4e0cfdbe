package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// Hard limits applied by DecideEligibility.
const (
	MaxEligibleRiskScore = 70
	MaxDebtToIncome      = 40
)

// Rule identifies one eligibility condition.
type Rule string

const (
	RuleRiskScore      Rule = "risk_score"
	RuleDebtToIncome   Rule = "debt_to_income"
	RuleMinimumSavings Rule = "minimum_savings"
	RuleCreditScore    Rule = "credit_score"
)

// RuleFailure explains one unmet condition.
type RuleFailure struct {
	Rule    Rule
	Message string
}

// Eligibility is the verdict plus every rule that failed, in rule order.
type Eligibility struct {
	Eligible bool
	Failures []RuleFailure
}

// Failed reports whether rule is among the failures.
func (e Eligibility) Failed(rule Rule) bool {
	for _, f := range e.Failures {
		if f.Rule == rule {
			return true
		}
	}
	return false
}

// MinimumSavingsRequired is requested x the product's minimum savings percent,
// rounded to the request currency.
func MinimumSavingsRequired(req model.LoanRequest) decimal.Decimal {
	pct := req.LoanType.Terms().MinimumSavingsPercent
	return req.Currency.Round(req.RequestedAmount.Mul(pct).Div(hundred))
}

// EligibilityInput gathers the values the decision rule reads.
type EligibilityInput struct {
	RiskScore              valueobject.RiskScore
	DebtToIncome           decimal.Decimal
	SavingsBalance         decimal.Decimal
	MinimumSavingsRequired decimal.Decimal
	CreditScore            int
	LoanType               valueobject.LoanType
}

// DecideEligibility applies all four rules; an application must pass every one.
func DecideEligibility(in EligibilityInput) Eligibility {
	var failures []RuleFailure

	if in.RiskScore > MaxEligibleRiskScore {
		failures = append(failures, RuleFailure{RuleRiskScore,
			fmt.Sprintf("Risk score %d exceeds the maximum of %d", in.RiskScore, MaxEligibleRiskScore)})
	}
	if in.DebtToIncome.GreaterThan(decimal.NewFromInt(MaxDebtToIncome)) {
		failures = append(failures, RuleFailure{RuleDebtToIncome,
			fmt.Sprintf("Debt-to-income ratio %s%% exceeds the maximum of %d%%", in.DebtToIncome.StringFixed(2), MaxDebtToIncome)})
	}
	if in.SavingsBalance.LessThan(in.MinimumSavingsRequired) {
		failures = append(failures, RuleFailure{RuleMinimumSavings,
			fmt.Sprintf("Savings balance %s is below the %s minimum of %s",
				in.SavingsBalance.String(), in.LoanType, in.MinimumSavingsRequired.String())})
	}
	if minCredit := in.LoanType.Terms().MinimumCreditScore; in.CreditScore < minCredit {
		failures = append(failures, RuleFailure{RuleCreditScore,
			fmt.Sprintf("Credit score %d is below the %s minimum credit score of %d", in.CreditScore, in.LoanType, minCredit)})
	}

	return Eligibility{Eligible: len(failures) == 0, Failures: failures}
}
