package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"loan-simulator/config"
	"loan-simulator/domain"
	"loan-simulator/metrics"
	"loan-simulator/repository"
)

// roundTo2Decimals rounds a float64 to cents.
func roundTo2Decimals(value float64) float64 {
	return math.Round(value*100) / 100
}

type LoanService struct {
	repo   repository.LoanRepository
	cache  repository.CacheRepository
	limits config.LimitsConfig
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
	engine func(domain.LoanParameters) (domain.AmortizationResult, error)
}

// NewLoanService creates a new LoanService with the given repository and cache.
func NewLoanService(repo repository.LoanRepository,
	cache repository.CacheRepository,
	limits config.LimitsConfig,
	ttl time.Duration,
	logger *zap.Logger,
) *LoanService {
	if cache == nil {
		cache = repository.NoopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanService{
		repo:   repo,
		cache:  cache,
		limits: limits,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		engine: ComputeSchedule,
	}
}

// Limits returns the accepted parameter ranges.
func (s *LoanService) Limits() config.LimitsConfig {
	return s.limits
}

// CalculateLoan simulates a loan, records it in the history and returns it.
func (s *LoanService) CalculateLoan(
	ctx context.Context,
	input domain.LoanInput,
) (domain.LoanSimulation, error) {

	if err := s.Validate(input.LoanParameters); err != nil {
		metrics.Calculations.WithLabelValues("invalid").Inc()
		return domain.LoanSimulation{}, err
	}

	key := cacheKey(input.LoanParameters)
	sim, hit := s.cached(ctx, key)

	var schedule []domain.ScheduleRow
	if hit {
		metrics.Calculations.WithLabelValues("cached").Inc()
	} else {
		result, err := s.compute(input.LoanParameters)
		if err != nil {
			metrics.Calculations.WithLabelValues("invalid").Inc()
			return domain.LoanSimulation{}, err
		}
		metrics.Calculations.WithLabelValues("computed").Inc()

		sim = summarize(input.LoanParameters, result)
		schedule = result.Schedule
		s.store(ctx, key, sim)
	}

	sim.ID = uuid.NewString()
	sim.CreatedAt = s.now().UTC()

	// Saving the history is not critical.
	if err := s.repo.Save(ctx, sim); err != nil {
		s.logger.Warn("failed to save loan simulation",
			zap.String("id", sim.ID),
			zap.Error(err))
	}

	if input.IncludeSchedule {
		if schedule == nil {
			result, err := s.compute(input.LoanParameters)
			if err != nil {
				return domain.LoanSimulation{}, err
			}
			schedule = result.Schedule
		}
		sim.Schedule = schedule
	}

	return sim, nil
}

// Schedule validates the parameters and returns the full engine output.
func (s *LoanService) Schedule(p domain.LoanParameters) (domain.AmortizationResult, error) {
	if err := s.Validate(p); err != nil {
		return domain.AmortizationResult{}, err
	}
	return s.compute(p)
}

// History lists the most recent simulations, newest first.
func (s *LoanService) History(ctx context.Context, limit int) ([]domain.LoanSimulation, error) {
	return s.repo.List(ctx, limit)
}

// Simulation fetches a past simulation and recomputes its schedule.
func (s *LoanService) Simulation(ctx context.Context, id string) (domain.LoanSimulation, error) {
	sim, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.LoanSimulation{}, err
	}
	result, err := s.engine(sim.Parameters)
	if err != nil {
		return domain.LoanSimulation{}, err
	}
	sim.Schedule = result.Schedule
	return sim, nil
}

// Validate checks p against the configured limits.
func (s *LoanService) Validate(p domain.LoanParameters) error {
	l := s.limits
	if math.IsNaN(p.Principal) || p.Principal < l.MinPrincipal || p.Principal > l.MaxPrincipal {
		return fmt.Errorf("%w: principal must be between %.0f and %.0f, got %v",
			ErrInvalidArgument, l.MinPrincipal, l.MaxPrincipal, p.Principal)
	}
	if math.IsNaN(p.AnnualInterestRatePercent) || p.AnnualInterestRatePercent < 0 || p.AnnualInterestRatePercent > l.MaxAnnualRate {
		return fmt.Errorf("%w: annual rate must be between 0 and %.2f%%, got %v",
			ErrInvalidArgument, l.MaxAnnualRate, p.AnnualInterestRatePercent)
	}
	if p.DurationYears < l.MinDurationYears || p.DurationYears > l.MaxDurationYears {
		return fmt.Errorf("%w: duration must be between %d and %d years, got %d",
			ErrInvalidArgument, l.MinDurationYears, l.MaxDurationYears, p.DurationYears)
	}
	return nil
}

func (s *LoanService) compute(p domain.LoanParameters) (domain.AmortizationResult, error) {
	start := time.Now()
	result, err := s.engine(p)
	if err != nil {
		return result, err
	}
	metrics.CalculationDuration.Observe(time.Since(start).Seconds())
	metrics.ScheduleMonths.Observe(float64(len(result.Schedule)))
	return result, nil
}

func (s *LoanService) cached(ctx context.Context, key string) (domain.LoanSimulation, bool) {
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return domain.LoanSimulation{}, false
	}
	var sim domain.LoanSimulation
	if err := json.Unmarshal([]byte(raw), &sim); err != nil {
		s.logger.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return domain.LoanSimulation{}, false
	}
	return sim, true
}

func (s *LoanService) store(ctx context.Context, key string, sim domain.LoanSimulation) {
	raw, err := json.Marshal(sim)
	if err != nil {
		s.logger.Warn("failed to encode simulation for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.logger.Warn("failed to cache simulation", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey holds the exact parameter values; only identical requests share
// an entry.
func cacheKey(p domain.LoanParameters) string {
	return "sim:" + strconv.FormatFloat(p.Principal, 'g', -1, 64) +
		":" + strconv.FormatFloat(p.AnnualInterestRatePercent, 'g', -1, 64) +
		":" + strconv.Itoa(p.DurationYears)
}

// summarize builds the stored form of a simulation: rounded totals, no schedule.
func summarize(p domain.LoanParameters, r domain.AmortizationResult) domain.LoanSimulation {
	return domain.LoanSimulation{
		Parameters:        p,
		MonthlyPayment:    roundTo2Decimals(r.MonthlyPayment),
		TotalInterestCost: roundTo2Decimals(r.TotalInterestCost),
		TotalRepaid:       roundTo2Decimals(p.Principal + r.TotalInterestCost),
	}
}
