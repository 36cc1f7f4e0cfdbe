package valueobject

// DesirabilityScore rates one evaluation dimension: 100 is best.
type DesirabilityScore int

// RiskScore is the aggregate risk of an application: 0 is safest.
type RiskScore int

const (
	MinScore = 0
	MaxScore = 100
)

// ClampDesirability bounds v to [0, 100].
func ClampDesirability(v int) DesirabilityScore {
	return DesirabilityScore(clamp(v))
}

// ClampRisk bounds v to [0, 100].
func ClampRisk(v int) RiskScore {
	return RiskScore(clamp(v))
}

func clamp(v int) int {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}

// RiskBand buckets a RiskScore for display and pricing.
type RiskBand string

const (
	RiskBandLow      RiskBand = "LOW"
	RiskBandModerate RiskBand = "MODERATE"
	RiskBandHigh     RiskBand = "HIGH"
	RiskBandSevere   RiskBand = "SEVERE"
)

// Band maps the score to LOW (<=40), MODERATE (<=60), HIGH (<=80) or SEVERE.
func (r RiskScore) Band() RiskBand {
	switch {
	case r <= 40:
		return RiskBandLow
	case r <= 60:
		return RiskBandModerate
	case r <= 80:
		return RiskBandHigh
	default:
		return RiskBandSevere
	}
}
