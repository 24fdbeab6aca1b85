package service

import (
	"math"

	"kavak-agent/internal/model"
)

// FinanceSettings holds the loan defaults.
type FinanceSettings struct {
	AnnualRate   float64
	DefaultTerm  int
	AllowedTerms []int
}

// DefaultFinanceSettings returns 10% annual over 36/48/60/72 months.
func DefaultFinanceSettings() FinanceSettings {
	return FinanceSettings{AnnualRate: 0.10, DefaultTerm: 48, AllowedTerms: []int{36, 48, 60, 72}}
}

// MonthlyPayment is the annuity payment for price minus downPayment over
// termMonths at annualRate (0.10 = 10%).
func MonthlyPayment(price, downPayment float64, termMonths int, annualRate float64) float64 {
	principal := math.Max(price-downPayment, 0)
	if termMonths <= 0 || principal <= 0 {
		return 0
	}
	r := annualRate / 12
	n := float64(termMonths)
	if r == 0 {
		return principal / n
	}
	growth := math.Pow(1+r, n)
	return principal * r * growth / (growth - 1)
}

// NearestTerm snaps term to the closest allowed term, preferring the lower
// one on a tie. An allowed term is returned unchanged.
func NearestTerm(term int, allowed []int) int {
	if len(allowed) == 0 {
		return term
	}
	best := allowed[0]
	for _, t := range allowed[1:] {
		d, bd := absInt(t-term), absInt(best-term)
		if d < bd || (d == bd && t < best) {
			best = t
		}
	}
	return best
}

// FinancePlan returns one entry per requested term, in order. Without terms
// it uses the allowed set. Terms outside the allowed set are snapped.
func FinancePlan(price, downPayment float64, terms []int, annualRate float64, settings FinanceSettings) model.FinancePlan {
	if len(terms) == 0 {
		terms = settings.AllowedTerms
	}
	plan := make(model.FinancePlan, 0, len(terms))
	for _, t := range terms {
		if len(settings.AllowedTerms) > 0 {
			t = NearestTerm(t, settings.AllowedTerms)
		}
		plan = append(plan, model.PlanEntry{
			TermMonths:     t,
			MonthlyPayment: MonthlyPayment(price, downPayment, t, annualRate),
		})
	}
	return plan
}
