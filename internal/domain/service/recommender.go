package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

var (
	highRiskMultiplier     = dec("0.7")
	elevatedRiskMultiplier = dec("0.85")
	strongSavingsBonus     = dec("1.1")
	strongSavingsRatio     = dec("30")
)

// AmountMultiplier scales the request down for risk, or up for strong savings.
func AmountMultiplier(risk valueobject.RiskScore, savingsRatio decimal.Decimal) decimal.Decimal {
	switch {
	case risk > 70:
		return highRiskMultiplier
	case risk > 50:
		return elevatedRiskMultiplier
	case savingsRatio.GreaterThanOrEqual(strongSavingsRatio):
		return strongSavingsBonus
	default:
		return decimal.NewFromInt(1)
	}
}

// RecommendAmount returns requested x multiplier rounded to whole units.
func RecommendAmount(requested decimal.Decimal, risk valueobject.RiskScore, savingsRatio decimal.Decimal) decimal.Decimal {
	return requested.Mul(AmountMultiplier(risk, savingsRatio)).Round(0)
}
