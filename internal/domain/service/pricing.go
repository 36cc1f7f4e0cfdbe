package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

var (
	rateFloorFactor = dec("0.7")

	savingsDiscountLadder = []struct{ bound, discount decimal.Decimal }{
		{dec("50"), dec("3.0")},
		{dec("30"), dec("2.5")},
		{dec("20"), dec("2.0")},
		{dec("10"), dec("1.0")},
		{dec("5"), dec("0.5")},
	}

	interestEarnedDiscount = dec("0.5")
	matureAccountDiscount  = dec("0.5")
	agingAccountDiscount   = dec("0.25")
)

// Pricing breaks down how the recommended rate was reached. All values are
// annual percentages.
type Pricing struct {
	BaseRate        decimal.Decimal
	RiskAdjustment  decimal.Decimal
	SavingsDiscount decimal.Decimal
	FloorRate       decimal.Decimal
	FinalRate       decimal.Decimal
}

// RiskAdjustment is the premium (or discount) for a risk score.
func RiskAdjustment(risk valueobject.RiskScore) decimal.Decimal {
	switch {
	case risk <= 20:
		return dec("-1.0")
	case risk <= 40:
		return decimal.Zero
	case risk <= 60:
		return dec("1.0")
	case risk <= 80:
		return dec("2.5")
	default:
		return dec("5.0")
	}
}

// SavingsDiscount rewards savings coverage (at most 3.0 points), any earned
// interest, and account age.
func SavingsDiscount(savings model.SavingsProfile, savingsRatio decimal.Decimal) decimal.Decimal {
	discount := decimal.Zero
	for _, step := range savingsDiscountLadder {
		if savingsRatio.GreaterThanOrEqual(step.bound) {
			discount = step.discount
			break
		}
	}
	if savings.TotalInterestEarned.IsPositive() {
		discount = discount.Add(interestEarnedDiscount)
	}
	switch {
	case savings.AccountAgeMonths >= 24:
		discount = discount.Add(matureAccountDiscount)
	case savings.AccountAgeMonths >= 12:
		discount = discount.Add(agingAccountDiscount)
	}
	return discount
}

// PriceLoan computes max(base + risk adjustment - savings discount, 70% of
// base), rounded to two places.
func PriceLoan(lt valueobject.LoanType, risk valueobject.RiskScore, savings model.SavingsProfile, savingsRatio decimal.Decimal) Pricing {
	base := lt.Terms().BaseRate
	adj := RiskAdjustment(risk)
	disc := SavingsDiscount(savings, savingsRatio)
	floor := base.Mul(rateFloorFactor)

	rate := base.Add(adj).Sub(disc)
	if rate.LessThan(floor) {
		rate = floor
	}

	return Pricing{
		BaseRate:        base,
		RiskAdjustment:  adj,
		SavingsDiscount: disc,
		FloorRate:       floor,
		FinalRate:       rate.Round(2),
	}
}
