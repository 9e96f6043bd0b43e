package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"loan-simulator/config"
	"loan-simulator/domain"
	"loan-simulator/repository"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Save(ctx context.Context, sim domain.LoanSimulation) error {
	return m.Called(ctx, sim).Error(0)
}

func (m *MockLoanRepository) Get(ctx context.Context, id string) (domain.LoanSimulation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.LoanSimulation), args.Error(1)
}

func (m *MockLoanRepository) List(ctx context.Context, limit int) ([]domain.LoanSimulation, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.LoanSimulation), args.Error(1)
}

func newTestLoanService(repo repository.LoanRepository, cache repository.CacheRepository) *LoanService {
	return NewLoanService(repo, cache, config.DefaultConfig().Limits, time.Hour, zap.NewNop())
}

func referenceInput() domain.LoanInput {
	return domain.LoanInput{LoanParameters: domain.LoanParameters{
		Principal:                 250_000,
		AnnualInterestRatePercent: 1.5,
		DurationYears:             20,
	}}
}

func TestCalculateLoan_WithInterest(t *testing.T) {
	repo := new(MockLoanRepository)
	repo.On("Save", mock.Anything, mock.AnythingOfType("domain.LoanSimulation")).Return(nil).Once()

	sim, err := newTestLoanService(repo, nil).CalculateLoan(context.Background(), referenceInput())
	require.NoError(t, err)

	assert.Equal(t, 1206.36, sim.MonthlyPayment)
	assert.Equal(t, 39527.25, sim.TotalInterestCost)
	assert.Equal(t, 289527.25, sim.TotalRepaid)
	assert.NotEmpty(t, sim.ID)
	assert.False(t, sim.CreatedAt.IsZero())
	assert.Empty(t, sim.Schedule)
	repo.AssertExpectations(t)
}

func TestCalculateLoan_IncludeSchedule(t *testing.T) {
	repo := new(MockLoanRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	input := referenceInput()
	input.IncludeSchedule = true

	sim, err := newTestLoanService(repo, nil).CalculateLoan(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, sim.Schedule, 240)
	assert.Equal(t, 0.0, sim.Schedule[239].RemainingPrincipal)

	// History never carries the schedule.
	saved := repo.Calls[0].Arguments.Get(1).(domain.LoanSimulation)
	assert.Empty(t, saved.Schedule)
}

func TestCalculateLoan_ZeroInterest(t *testing.T) {
	repo := new(MockLoanRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	input := domain.LoanInput{LoanParameters: domain.LoanParameters{
		Principal: 120_000, AnnualInterestRatePercent: 0, DurationYears: 10,
	}}
	sim, err := newTestLoanService(repo, nil).CalculateLoan(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, sim.MonthlyPayment)
	assert.Equal(t, 0.0, sim.TotalInterestCost)
	assert.Equal(t, 120_000.0, sim.TotalRepaid)
}

func TestCalculateLoan_SaveErrorIsNotFatal(t *testing.T) {
	repo := new(MockLoanRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	_, err := newTestLoanService(repo, nil).CalculateLoan(context.Background(), referenceInput())
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCalculateLoan_OutOfLimits(t *testing.T) {
	tests := []struct {
		name   string
		params domain.LoanParameters
	}{
		{"principal below minimum", domain.LoanParameters{Principal: 5_000, AnnualInterestRatePercent: 2, DurationYears: 10}},
		{"principal above maximum", domain.LoanParameters{Principal: 20_000_000, AnnualInterestRatePercent: 2, DurationYears: 10}},
		{"negative rate", domain.LoanParameters{Principal: 100_000, AnnualInterestRatePercent: -1, DurationYears: 10}},
		{"rate above maximum", domain.LoanParameters{Principal: 100_000, AnnualInterestRatePercent: 12, DurationYears: 10}},
		{"zero duration", domain.LoanParameters{Principal: 100_000, AnnualInterestRatePercent: 2, DurationYears: 0}},
		{"duration above maximum", domain.LoanParameters{Principal: 100_000, AnnualInterestRatePercent: 2, DurationYears: 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockLoanRepository)
			_, err := newTestLoanService(repo, nil).CalculateLoan(context.Background(), domain.LoanInput{LoanParameters: tt.params})
			assert.ErrorIs(t, err, ErrInvalidArgument)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestCalculateLoan_UsesCache(t *testing.T) {
	repo := new(MockLoanRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil).Twice()

	cache := repository.NewMemoryCache()
	defer cache.Stop()
	svc := newTestLoanService(repo, cache)

	first, err := svc.CalculateLoan(context.Background(), referenceInput())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	second, err := svc.CalculateLoan(context.Background(), referenceInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.MonthlyPayment, second.MonthlyPayment)
	assert.Equal(t, first.TotalInterestCost, second.TotalInterestCost)
	repo.AssertExpectations(t)
}

func TestCalculateLoan_CacheKeyIsExact(t *testing.T) {
	repo := repository.NewLoanRepositoryMemory()
	cache := repository.NewMemoryCache()
	defer cache.Stop()
	svc := newTestLoanService(repo, cache)

	first := domain.LoanInput{LoanParameters: domain.LoanParameters{
		Principal: 100_000.001, AnnualInterestRatePercent: 3.00001, DurationYears: 20,
	}}
	second := domain.LoanInput{LoanParameters: domain.LoanParameters{
		Principal: 100_000.004, AnnualInterestRatePercent: 3.00004, DurationYears: 20,
	}, IncludeSchedule: true}

	_, err := svc.CalculateLoan(context.Background(), first)
	require.NoError(t, err)
	got, err := svc.CalculateLoan(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, second.LoanParameters, got.Parameters)
	assert.InDelta(t, second.Principal, got.Schedule[len(got.Schedule)-1].CumulativePrincipalPaid, 1e-6)

	history, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.LoanParameters, history[0].Parameters)
}

func TestCalculateLoan_RunsEngineOnce(t *testing.T) {
	repo := new(MockLoanRepository)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	cache := repository.NewMemoryCache()
	defer cache.Stop()
	svc := newTestLoanService(repo, cache)
	runs := 0
	svc.engine = func(p domain.LoanParameters) (domain.AmortizationResult, error) {
		runs++
		return ComputeSchedule(p)
	}

	input := referenceInput()
	input.IncludeSchedule = true

	sim, err := svc.CalculateLoan(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, sim.Schedule, 240)
	assert.Equal(t, 1, runs)

	// A cache hit carries no schedule, so it is computed once for the response.
	sim, err = svc.CalculateLoan(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, sim.Schedule, 240)
	assert.Equal(t, 2, runs)

	input.IncludeSchedule = false
	_, err = svc.CalculateLoan(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 2, runs)
}

func TestHistoryAndSimulation(t *testing.T) {
	repo := repository.NewLoanRepositoryMemory()
	svc := newTestLoanService(repo, nil)

	sim, err := svc.CalculateLoan(context.Background(), referenceInput())
	require.NoError(t, err)

	history, err := svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, sim.ID, history[0].ID)

	got, err := svc.Simulation(context.Background(), sim.ID)
	require.NoError(t, err)
	assert.Len(t, got.Schedule, 240)

	_, err = svc.Simulation(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, ClampLimit(0))
	assert.Equal(t, DefaultHistoryLimit, ClampLimit(-3))
	assert.Equal(t, 7, ClampLimit(7))
	assert.Equal(t, MaxHistoryLimit, ClampLimit(10_000))
}
