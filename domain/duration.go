package domain

// CompareInput asks for the same principal simulated over several durations.
// Rates maps a duration in years to the annual rate (percent) to use for it.
type CompareInput struct {
	Principal float64         `json:"principal"`
	Rates     map[int]float64 `json:"rates"`
}

// DurationOption is the outcome of one duration in a comparison.
type DurationOption struct {
	DurationYears     int     `json:"duration_years"`
	AnnualRate        float64 `json:"annual_rate"`
	MonthlyPayment    float64 `json:"monthly_payment"`
	TotalInterestCost float64 `json:"total_interest_cost"`
	TotalRepaid       float64 `json:"total_repaid"`
	CheapestTotal     bool    `json:"cheapest_total"`
	LowestPayment     bool    `json:"lowest_payment"`
}

// CompareResult lists options ordered by duration.
type CompareResult struct {
	Principal float64          `json:"principal"`
	Options   []DurationOption `json:"options"`
}
