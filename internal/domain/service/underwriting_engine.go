package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
)

// ---------------------------------------------------------------------------
// UnderwritingEngine – scores, decides and prices one loan request
// ---------------------------------------------------------------------------

// UnderwritingEngine is stateless and safe for concurrent use.
type UnderwritingEngine struct{}

// NewUnderwritingEngine returns a new engine instance.
func NewUnderwritingEngine() *UnderwritingEngine {
	return &UnderwritingEngine{}
}

// Evaluate validates the input, scores the six factors, aggregates them into
// a risk score and derives eligibility, pricing and a recommended amount.
// Ineligibility is a normal result; only invalid input returns an error.
func (e *UnderwritingEngine) Evaluate(in model.EvaluationInput) (model.EvaluationResult, error) {
	if err := in.Validate(); err != nil {
		return model.EvaluationResult{}, err
	}

	req := in.Request
	payment := EstimateMonthlyPayment(req)
	dti := DebtToIncome(in.Borrower.TotalActiveDebt, payment, in.Borrower.MonthlyIncome)
	savingsRatio := SavingsRatio(in.Savings.Balance, req.RequestedAmount)

	factors := map[model.FactorName]model.FactorScore{
		model.FactorIncome:      EvaluateIncome(in.Borrower.MonthlyIncome, payment),
		model.FactorCreditScore: EvaluateCreditScore(in.Borrower.CreditScore),
		model.FactorSavings:     EvaluateSavings(in.Savings, req.RequestedAmount),
		model.FactorEmployment:  EvaluateEmployment(in.Borrower.EmploymentStatus),
		model.FactorDebtRatio:   EvaluateDebtRatio(dti),
		model.FactorLoanType:    EvaluateLoanType(req.LoanType, req.RequestedAmount),
	}
	risk := AggregateRisk(factors)

	minSavings := MinimumSavingsRequired(req)
	verdict := DecideEligibility(EligibilityInput{
		RiskScore:              risk,
		DebtToIncome:           dti,
		SavingsBalance:         in.Savings.Balance,
		MinimumSavingsRequired: minSavings,
		CreditScore:            in.Borrower.CreditScore,
		LoanType:               req.LoanType,
	})
	pricing := PriceLoan(req.LoanType, risk, in.Savings, savingsRatio)
	recommended := RecommendAmount(req.RequestedAmount, risk, savingsRatio)

	warnings := make([]string, 0, len(verdict.Failures))
	for _, f := range verdict.Failures {
		warnings = append(warnings, f.Message)
	}

	return model.EvaluationResult{
		IsEligible:              verdict.Eligible,
		RiskScore:               risk,
		RiskBand:                risk.Band(),
		RecommendedAmount:       recommended,
		RecommendedInterestRate: pricing.FinalRate,
		BaseInterestRate:        pricing.BaseRate,
		EstimatedMonthlyPayment: payment,
		DebtToIncomeRatio:       dti.Round(2),
		SavingsImpact: model.SavingsImpact{
			SavingsRatio:            savingsRatio.Round(2),
			SavingsBonus:            pricing.SavingsDiscount,
			MinimumSavingsRequired:  minSavings,
			MeetsSavingsRequirement: !verdict.Failed(RuleMinimumSavings),
		},
		Factors:         factors,
		Recommendations: recommendations(in, verdict, savingsRatio, minSavings, recommended),
		Warnings:        warnings,
	}, nil
}

func recommendations(
	in model.EvaluationInput,
	verdict Eligibility,
	savingsRatio, minSavings, recommended decimal.Decimal,
) []string {
	req := in.Request
	var out []string

	if verdict.Failed(RuleMinimumSavings) {
		shortfall := minSavings.Sub(in.Savings.Balance)
		out = append(out, fmt.Sprintf("Add %s to savings to meet the %s%% minimum for %s loans",
			shortfall.String(), req.LoanType.Terms().MinimumSavingsPercent.String(), req.LoanType))
	}
	if verdict.Failed(RuleCreditScore) {
		out = append(out, fmt.Sprintf("Improve the credit score to at least %d before reapplying",
			req.LoanType.Terms().MinimumCreditScore))
	}
	if verdict.Failed(RuleDebtToIncome) {
		out = append(out, "Reduce existing debt or choose a longer term to bring the debt-to-income ratio under 40%")
	}
	if recommended.LessThan(req.RequestedAmount) {
		out = append(out, fmt.Sprintf("Consider requesting %s instead of %s", recommended.String(), req.RequestedAmount.String()))
	}
	if recommended.GreaterThan(req.RequestedAmount) {
		out = append(out, fmt.Sprintf("Savings history supports up to %s", recommended.String()))
	}
	if savingsRatio.LessThan(strongSavingsRatio) && verdict.Eligible {
		out = append(out, "Savings of 30% of the requested amount or more unlock a larger recommended amount")
	}
	if !in.Borrower.EmploymentStatus.Known() {
		out = append(out, "Provide a recognised employment status to improve the employment score")
	}
	if in.Savings.AccountAgeMonths < 12 {
		out = append(out, "A savings account older than 12 months earns an additional rate discount")
	}
	return out
}
