package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// AggregateRisk inverts the weighted average of the factor scores:
// risk = round(100 - sum(score*weight)/sum(weight)). Halves round away from
// zero. An empty breakdown is maximally risky.
func AggregateRisk(factors map[model.FactorName]model.FactorScore) valueobject.RiskScore {
	weighted := decimal.Zero
	totalWeight := int64(0)
	for _, f := range factors {
		weighted = weighted.Add(decimal.NewFromInt(int64(f.Score) * int64(f.Weight)))
		totalWeight += int64(f.Weight)
	}
	if totalWeight == 0 {
		return valueobject.RiskScore(valueobject.MaxScore)
	}

	avg := weighted.Div(decimal.NewFromInt(totalWeight))
	risk := hundred.Sub(avg).Round(0)
	return valueobject.ClampRisk(int(risk.IntPart()))
}
