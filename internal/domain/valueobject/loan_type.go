package valueobject

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// LoanType is the product a borrower applies for.
type LoanType struct {
	value string
}

const (
	loanTypePersonal = "PERSONAL"
	loanTypeMortgage = "MORTGAGE"
	loanTypeAuto     = "AUTO"
	loanTypeBusiness = "BUSINESS"
	loanTypeStudent  = "STUDENT"
	loanTypePayday   = "PAYDAY"
)

var (
	LoanTypePersonal = LoanType{value: loanTypePersonal}
	LoanTypeMortgage = LoanType{value: loanTypeMortgage}
	LoanTypeAuto     = LoanType{value: loanTypeAuto}
	LoanTypeBusiness = LoanType{value: loanTypeBusiness}
	LoanTypeStudent  = LoanType{value: loanTypeStudent}
	LoanTypePayday   = LoanType{value: loanTypePayday}
)

// LoanTerms are the fixed per-product constants used by scoring, eligibility
// and pricing. Rates and percentages are expressed in percent.
type LoanTerms struct {
	BaseRate              decimal.Decimal
	MinimumCreditScore    int
	MinimumSavingsPercent decimal.Decimal
	RiskBase              int
}

var loanTermsTable = map[string]LoanTerms{
	loanTypePersonal: {BaseRate: decimal.NewFromInt(15), MinimumCreditScore: 580, MinimumSavingsPercent: decimal.NewFromInt(5), RiskBase: 65},
	loanTypeMortgage: {BaseRate: decimal.NewFromInt(12), MinimumCreditScore: 650, MinimumSavingsPercent: decimal.NewFromInt(20), RiskBase: 85},
	loanTypeAuto:     {BaseRate: decimal.NewFromInt(13), MinimumCreditScore: 600, MinimumSavingsPercent: decimal.NewFromInt(10), RiskBase: 80},
	loanTypeBusiness: {BaseRate: decimal.NewFromInt(14), MinimumCreditScore: 650, MinimumSavingsPercent: decimal.NewFromInt(15), RiskBase: 60},
	loanTypeStudent:  {BaseRate: decimal.NewFromInt(10), MinimumCreditScore: 550, MinimumSavingsPercent: decimal.NewFromInt(3), RiskBase: 75},
	loanTypePayday:   {BaseRate: decimal.NewFromInt(30), MinimumCreditScore: 500, MinimumSavingsPercent: decimal.NewFromInt(2), RiskBase: 30},
}

// ParseLoanType accepts any letter case and surrounding whitespace.
func ParseLoanType(s string) (LoanType, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if _, ok := loanTermsTable[v]; !ok {
		return LoanType{}, fmt.Errorf("unknown loan type %q", s)
	}
	return LoanType{value: v}, nil
}

// LoanTypes lists every supported product in a stable order.
func LoanTypes() []LoanType {
	return []LoanType{LoanTypePersonal, LoanTypeMortgage, LoanTypeAuto, LoanTypeBusiness, LoanTypeStudent, LoanTypePayday}
}

// Terms returns the product constants. The zero LoanType has zero terms.
func (t LoanType) Terms() LoanTerms { return loanTermsTable[t.value] }

func (t LoanType) String() string { return t.value }
func (t LoanType) IsZero() bool { return t.value == "" }
func (t LoanType) Equal(other LoanType) bool { return t.value == other.value }
