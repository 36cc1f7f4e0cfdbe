package valueobject

import "strings"

// EmploymentStatus is a normalised employment category. Unrecognised input is
// kept verbatim and scores as unknown.
type EmploymentStatus struct {
	value string
}

var employmentScores = map[string]int{
	"EMPLOYED":      85,
	"FULL_TIME":     85,
	"SELF_EMPLOYED": 70,
	"FREELANCER":    70,
	"PART_TIME":     60,
	"CONTRACT":      65,
	"RETIRED":       75,
}

const unknownEmploymentScore = 30

var employmentReplacer = strings.NewReplacer("-", "_", " ", "_")

// NewEmploymentStatus normalises s: trimmed, upper-cased, with dashes and
// spaces folded to underscores.
func NewEmploymentStatus(s string) EmploymentStatus {
	return EmploymentStatus{value: employmentReplacer.Replace(strings.ToUpper(strings.TrimSpace(s)))}
}

// Known reports whether the status is one of the recognised categories.
func (e EmploymentStatus) Known() bool {
	_, ok := employmentScores[e.value]
	return ok
}

// Score is the desirability of the category on the 0..100 scale.
func (e EmploymentStatus) Score() DesirabilityScore {
	if s, ok := employmentScores[e.value]; ok {
		return DesirabilityScore(s)
	}
	return DesirabilityScore(unknownEmploymentScore)
}

func (e EmploymentStatus) String() string { return e.value }
func (e EmploymentStatus) IsZero() bool   { return e.value == "" }
