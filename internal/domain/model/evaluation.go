package model

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// FactorName keys the factor breakdown of an evaluation.
type FactorName string

const (
	FactorIncome      FactorName = "income"
	FactorCreditScore FactorName = "credit_score"
	FactorSavings     FactorName = "savings"
	FactorEmployment  FactorName = "employment"
	FactorDebtRatio   FactorName = "debt_ratio"
	FactorLoanType    FactorName = "loan_type"
)

// FactorNames lists the six factors in presentation order.
func FactorNames() []FactorName {
	return []FactorName{FactorIncome, FactorCreditScore, FactorSavings, FactorEmployment, FactorDebtRatio, FactorLoanType}
}

// FactorScore is the desirability of one dimension and its weight in the
// aggregate.
type FactorScore struct {
	Score       valueobject.DesirabilityScore
	Weight      int
	Description string
}

// SavingsImpact explains how savings shaped the decision. SavingsRatio is a
// percentage of the requested amount and SavingsBonus is the rate discount in
// percentage points.
type SavingsImpact struct {
	SavingsRatio            decimal.Decimal
	SavingsBonus            decimal.Decimal
	MinimumSavingsRequired  decimal.Decimal
	MeetsSavingsRequirement bool
}

// EvaluationResult is built fresh for every evaluation and never mutated.
type EvaluationResult struct {
	IsEligible              bool
	RiskScore               valueobject.RiskScore
	RiskBand                valueobject.RiskBand
	RecommendedAmount       decimal.Decimal
	RecommendedInterestRate decimal.Decimal
	BaseInterestRate        decimal.Decimal
	// EstimatedMonthlyPayment is priced at BaseInterestRate, not the
	// recommended rate; the DTI and income checks use it.
	EstimatedMonthlyPayment decimal.Decimal
	DebtToIncomeRatio       decimal.Decimal
	SavingsImpact           SavingsImpact
	Factors                 map[FactorName]FactorScore
	Recommendations         []string
	Warnings                []string
}
