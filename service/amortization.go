package service

import (
	"errors"
	"fmt"
	"math"

	"loan-simulator/domain"
)

// ErrInvalidArgument is returned when loan parameters are outside the domain
// of the amortization formula.
var ErrInvalidArgument = errors.New("invalid argument")

// MaxDurationYears bounds the schedule length the engine will build.
const MaxDurationYears = 100

// ComputeSchedule builds the full monthly amortization schedule of a
// fixed-rate loan. It is a pure function: same parameters, same result.
func ComputeSchedule(p domain.LoanParameters) (domain.AmortizationResult, error) {
	if err := checkParameters(p); err != nil {
		return domain.AmortizationResult{}, err
	}

	monthlyRate := (p.AnnualInterestRatePercent / 100) / 12
	totalMonths := p.TotalMonths()

	var monthlyPayment, totalInterestCost float64
	if monthlyRate == 0 {
		monthlyPayment = p.Principal / float64(totalMonths)
		totalInterestCost = 0
	} else {
		monthlyPayment = p.Principal * monthlyRate / (1 - math.Pow(1+monthlyRate, -float64(totalMonths)))
		totalInterestCost = monthlyPayment*float64(totalMonths) - p.Principal
	}

	schedule := make([]domain.ScheduleRow, 0, totalMonths)
	currentPrincipal := p.Principal
	cumulativePrincipal := 0.0
	cumulativeInterest := 0.0

	for month := 1; month <= totalMonths; month++ {
		interestForMonth := currentPrincipal * monthlyRate
		principalForMonth := monthlyPayment - interestForMonth

		// Last installment retires whatever is left so the balance ends at zero.
		// Interest is recomputed after the override; a zero-rate loan accrues none.
		if month == totalMonths {
			principalForMonth = currentPrincipal
			if monthlyRate > 0 {
				interestForMonth = math.Max(0, monthlyPayment-principalForMonth)
			}
		}

		currentPrincipal -= principalForMonth
		cumulativePrincipal += principalForMonth
		cumulativeInterest += interestForMonth

		schedule = append(schedule, domain.ScheduleRow{
			Month:                   month,
			InterestForMonth:        interestForMonth,
			PrincipalForMonth:       principalForMonth,
			RemainingPrincipal:      math.Max(0, currentPrincipal),
			CumulativePrincipalPaid: cumulativePrincipal,
			CumulativeInterestPaid:  cumulativeInterest,
		})
	}

	return domain.AmortizationResult{
		MonthlyPayment:    monthlyPayment,
		TotalInterestCost: totalInterestCost,
		Schedule:          schedule,
	}, nil
}

func checkParameters(p domain.LoanParameters) error {
	if math.IsNaN(p.Principal) || math.IsInf(p.Principal, 0) || p.Principal <= 0 {
		return fmt.Errorf("%w: principal must be a positive amount, got %v", ErrInvalidArgument, p.Principal)
	}
	rate := p.AnnualInterestRatePercent
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return fmt.Errorf("%w: annual rate must be a non-negative percentage, got %v", ErrInvalidArgument, rate)
	}
	if p.DurationYears < 1 || p.DurationYears > MaxDurationYears {
		return fmt.Errorf("%w: duration must be between 1 and %d years, got %d",
			ErrInvalidArgument, MaxDurationYears, p.DurationYears)
	}
	return nil
}
