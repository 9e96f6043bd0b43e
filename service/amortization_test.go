package service

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-simulator/domain"
)

const tolerance = 1e-6

func params(principal, rate float64, years int) domain.LoanParameters {
	return domain.LoanParameters{
		Principal:                 principal,
		AnnualInterestRatePercent: rate,
		DurationYears:             years,
	}
}

func TestComputeSchedule_ReferenceScenario(t *testing.T) {
	result, err := ComputeSchedule(params(250000, 1.5, 20))
	require.NoError(t, err)

	assert.InDelta(t, 1206.36, result.MonthlyPayment, 0.005)
	assert.InDelta(t, 39527.25, result.TotalInterestCost, 0.005)
	assert.Len(t, result.Schedule, 240)

	last, ok := result.LastRow()
	require.True(t, ok)
	assert.Equal(t, 0.0, last.RemainingPrincipal)
	assert.InDelta(t, 250000, last.CumulativePrincipalPaid, tolerance)
}

func TestComputeSchedule_ZeroRate(t *testing.T) {
	result, err := ComputeSchedule(params(120000, 0, 10))
	require.NoError(t, err)

	assert.Equal(t, 1000.0, result.MonthlyPayment)
	assert.Equal(t, 0.0, result.TotalInterestCost)
	assert.Len(t, result.Schedule, 120)
	for _, row := range result.Schedule {
		assert.Equal(t, 0.0, row.InterestForMonth, "month %d", row.Month)
	}

	last, _ := result.LastRow()
	assert.Equal(t, 0.0, last.RemainingPrincipal)
	assert.Equal(t, 120000.0, last.CumulativePrincipalPaid)
}

func TestComputeSchedule_ZeroRateUnevenSplit(t *testing.T) {
	p := params(100000, 0, 25)
	result, err := ComputeSchedule(p)
	require.NoError(t, err)

	assert.Equal(t, p.Principal/300, result.MonthlyPayment)
	for _, row := range result.Schedule {
		assert.Equal(t, 0.0, row.InterestForMonth, "month %d", row.Month)
	}
	last, _ := result.LastRow()
	assert.InDelta(t, 0, last.RemainingPrincipal, tolerance)
	assert.InDelta(t, p.Principal, last.CumulativePrincipalPaid, tolerance)
}

func TestComputeSchedule_OneYear(t *testing.T) {
	p := params(10000, 5.0, 1)
	result, err := ComputeSchedule(p)
	require.NoError(t, err)

	assert.Len(t, result.Schedule, 12)
	assert.Greater(t, result.TotalInterestCost, 0.0)

	// Replay the first eleven months to know what the final installment must retire.
	monthlyRate := 0.05 / 12
	current := p.Principal
	for i := 0; i < 11; i++ {
		current -= result.MonthlyPayment - current*monthlyRate
	}
	last, _ := result.LastRow()
	assert.Equal(t, current, last.PrincipalForMonth)
	assert.Equal(t, 0.0, last.RemainingPrincipal)
}

func TestComputeSchedule_Invariants(t *testing.T) {
	cases := []domain.LoanParameters{
		params(250000, 1.5, 20),
		params(10000, 5, 1),
		params(10_000_000, 10, 30),
		params(10000, 0.1, 30),
		params(75000, 3.85, 15),
		params(333333.33, 7.25, 7),
	}

	for _, p := range cases {
		result, err := ComputeSchedule(p)
		require.NoError(t, err)

		require.Len(t, result.Schedule, p.DurationYears*12)

		var prev domain.ScheduleRow
		for i, row := range result.Schedule {
			assert.Equal(t, i+1, row.Month)
			assert.GreaterOrEqual(t, row.InterestForMonth, 0.0)
			assert.GreaterOrEqual(t, row.PrincipalForMonth, 0.0)
			assert.GreaterOrEqual(t, row.RemainingPrincipal, 0.0)
			if i > 0 {
				assert.GreaterOrEqual(t, row.CumulativePrincipalPaid, prev.CumulativePrincipalPaid)
				assert.GreaterOrEqual(t, row.CumulativeInterestPaid, prev.CumulativeInterestPaid)
			}
			if i < len(result.Schedule)-1 {
				assert.InDelta(t, result.MonthlyPayment, row.PrincipalForMonth+row.InterestForMonth, tolerance)
			}
			prev = row
		}

		last, _ := result.LastRow()
		assert.InDelta(t, 0, last.RemainingPrincipal, tolerance)
		assert.InDelta(t, p.Principal, last.CumulativePrincipalPaid, tolerance*p.Principal)
		assert.InDelta(t, result.TotalInterestCost, last.CumulativeInterestPaid, 1e-3)
	}
}

func TestComputeSchedule_Deterministic(t *testing.T) {
	p := params(180000, 3.4, 25)
	first, err := ComputeSchedule(p)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]domain.AmortizationResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ComputeSchedule(p)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, first, r)
	}
}

func TestComputeSchedule_InvalidArguments(t *testing.T) {
	cases := map[string]domain.LoanParameters{
		"zero duration":      params(100000, 2, 0),
		"negative duration":  params(100000, 2, -3),
		"zero principal":     params(0, 2, 10),
		"negative principal": params(-5, 2, 10),
		"negative rate":      params(100000, -0.5, 10),
		"nan principal":      params(math.NaN(), 2, 10),
		"infinite rate":      params(100000, math.Inf(1), 10),
		"duration too long":  params(100000, 2, MaxDurationYears+1),
		"overflowing months": params(1000, 1, math.MaxInt/6),
	}

	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := ComputeSchedule(p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidArgument))
			assert.Empty(t, result.Schedule)
		})
	}
}
