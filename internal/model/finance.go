package model

// PlanEntry is the monthly payment for one term.
type PlanEntry struct {
	TermMonths     int     `json:"term_months"`
	MonthlyPayment float64 `json:"monthly_payment"`
}

// FinancePlan lists monthly payments in the order terms were requested.
type FinancePlan []PlanEntry

// FinancePlanRequest is the body of POST /api/v1/finance/plan.
type FinancePlanRequest struct {
	Price       float64  `json:"price" binding:"required,gt=0"`
	DownPayment float64  `json:"down_payment" binding:"gte=0"`
	Terms       []int    `json:"terms"`
	AnnualRate  *float64 `json:"annual_rate"`
}

// FinancePlanResponse is returned by the finance plan endpoint.
type FinancePlanResponse struct {
	Principal  float64     `json:"principal"`
	AnnualRate float64     `json:"annual_rate"`
	Plan       FinancePlan `json:"plan"`
}
