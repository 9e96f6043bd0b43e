package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"loan-simulator/domain"
)

// DurationComparisonService simulates one principal over several durations,
// each with its own rate.
type DurationComparisonService struct {
	loanService *LoanService
	logger      *zap.Logger
}

func NewDurationComparisonService(loanService *LoanService, logger *zap.Logger) *DurationComparisonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DurationComparisonService{loanService: loanService, logger: logger}
}

// Compare returns one option per requested duration, ordered by duration.
// The option costing the least interest and the one with the lowest monthly
// payment are flagged.
func (s *DurationComparisonService) Compare(
	ctx context.Context,
	input domain.CompareInput,
) (domain.CompareResult, error) {

	if len(input.Rates) == 0 {
		return domain.CompareResult{}, fmt.Errorf("%w: at least one duration is required", ErrInvalidArgument)
	}
	if len(input.Rates) > MaxCompareDurations {
		return domain.CompareResult{}, fmt.Errorf("%w: at most %d durations can be compared", ErrInvalidArgument, MaxCompareDurations)
	}

	years := make([]int, 0, len(input.Rates))
	for y := range input.Rates {
		years = append(years, y)
	}
	sort.Ints(years)

	options := make([]domain.DurationOption, 0, len(years))
	for _, y := range years {
		if err := ctx.Err(); err != nil {
			return domain.CompareResult{}, err
		}

		params := domain.LoanParameters{
			Principal:                 input.Principal,
			AnnualInterestRatePercent: input.Rates[y],
			DurationYears:             y,
		}
		result, err := s.loanService.Schedule(params)
		if err != nil {
			return domain.CompareResult{}, fmt.Errorf("duration %d years: %w", y, err)
		}

		options = append(options, domain.DurationOption{
			DurationYears:     y,
			AnnualRate:        params.AnnualInterestRatePercent,
			MonthlyPayment:    roundTo2Decimals(result.MonthlyPayment),
			TotalInterestCost: roundTo2Decimals(result.TotalInterestCost),
			TotalRepaid:       roundTo2Decimals(input.Principal + result.TotalInterestCost),
		})
	}

	cheapest, lowest := 0, 0
	for i, o := range options {
		if o.TotalInterestCost < options[cheapest].TotalInterestCost {
			cheapest = i
		}
		if o.MonthlyPayment < options[lowest].MonthlyPayment {
			lowest = i
		}
	}
	options[cheapest].CheapestTotal = true
	options[lowest].LowestPayment = true

	s.logger.Debug("compared durations",
		zap.Float64("principal", input.Principal),
		zap.Ints("years", years))

	return domain.CompareResult{Principal: input.Principal, Options: options}, nil
}
