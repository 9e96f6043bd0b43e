package domain

import "time"

// LoanParameters are the three scalars the amortization engine works from.
type LoanParameters struct {
	Principal                 float64 `json:"principal"`
	AnnualInterestRatePercent float64 `json:"annual_rate"`
	DurationYears             int     `json:"duration_years"`
}

// TotalMonths is the number of monthly installments.
func (p LoanParameters) TotalMonths() int {
	return p.DurationYears * 12
}

// ScheduleRow is one month of the amortization schedule.
type ScheduleRow struct {
	Month                   int     `json:"month"`
	InterestForMonth        float64 `json:"interest_for_month"`
	PrincipalForMonth       float64 `json:"principal_for_month"`
	RemainingPrincipal      float64 `json:"remaining_principal"`
	CumulativePrincipalPaid float64 `json:"cumulative_principal_paid"`
	CumulativeInterestPaid  float64 `json:"cumulative_interest_paid"`
}

// AmortizationResult is the engine output.
type AmortizationResult struct {
	MonthlyPayment    float64       `json:"monthly_payment"`
	TotalInterestCost float64       `json:"total_interest_cost"`
	Schedule          []ScheduleRow `json:"schedule,omitempty"`
}

// LoanInput is the request body accepted by the calculate endpoint.
type LoanInput struct {
	LoanParameters
	IncludeSchedule bool `json:"include_schedule,omitempty"`
}

// LoanSimulation is a computed loan as returned to callers and kept in history.
type LoanSimulation struct {
	ID                string         `json:"id"`
	Parameters        LoanParameters `json:"parameters"`
	MonthlyPayment    float64        `json:"monthly_payment"`
	TotalInterestCost float64        `json:"total_interest_cost"`
	TotalRepaid       float64        `json:"total_repaid"`
	Schedule          []ScheduleRow  `json:"schedule,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// LastRow returns the final schedule row, or false when the schedule is empty.
func (r AmortizationResult) LastRow() (ScheduleRow, bool) {
	if len(r.Schedule) == 0 {
		return ScheduleRow{}, false
	}
	return r.Schedule[len(r.Schedule)-1], true
}
