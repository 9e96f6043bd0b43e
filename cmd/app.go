package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"loan-simulator/config"
	"loan-simulator/domain"
	"loan-simulator/logging"
	"loan-simulator/repository"
	"loan-simulator/scraper"
	"loan-simulator/service"
)

// app holds the services shared by every command.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	loans    *service.LoanService
	compare  *service.DurationComparisonService
	rates    *service.RateService
	sessions *service.SessionService

	closers []func() error
}

type stores struct {
	loans    repository.LoanRepository
	rates    repository.RateRepository
	sessions repository.SessionRepository
}

func newApp(flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	st, err := a.openStores()
	if err != nil {
		a.Close()
		return nil, err
	}
	cache := a.openCache()

	a.loans = service.NewLoanService(st.loans, cache, cfg.Limits, cfg.Cache.TTL.Duration, logger.Named("loans"))
	a.compare = service.NewDurationComparisonService(a.loans, logger.Named("compare"))
	a.rates = service.NewRateService(a.sources(), st.rates, cache, cfg.Cache.RateTTL.Duration, cfg.Scraper.Timeout.Duration, logger.Named("rates"))
	a.sessions = service.NewSessionService(st.sessions, logger.Named("sessions"))
	return a, nil
}

func (a *app) openStores() (stores, error) {
	switch a.cfg.Storage.Driver {
	case "memory", "":
		return stores{
			loans:    repository.NewLoanRepositoryMemory(),
			rates:    repository.NewRateRepositoryMemory(),
			sessions: repository.NewSessionRepositoryMemory(),
		}, nil
	}

	store, err := repository.OpenSQLStore(a.cfg.Storage.Driver, a.cfg.Storage.DSN)
	if err != nil {
		return stores{}, err
	}
	a.closers = append(a.closers, store.Close)
	a.logger.Debug("storage opened", zap.String("driver", a.cfg.Storage.Driver))
	return stores{loans: store, rates: store, sessions: store}, nil
}

// openCache never fails: an unreachable Redis is reported and every lookup
// then degrades to a miss.
func (a *app) openCache() repository.CacheRepository {
	switch a.cfg.Cache.Backend {
	case "redis":
		c := repository.NewRedisCache(a.cfg.Cache.RedisAddr, a.cfg.Cache.RedisPassword, a.cfg.Cache.RedisDB,
			a.logger.Named("redis"))
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Ping(ctx); err != nil {
			a.logger.Warn("redis unreachable, results will not be cached",
				zap.String("addr", a.cfg.Cache.RedisAddr), zap.Error(err))
		}
		a.closers = append(a.closers, c.Close)
		return c
	case "none":
		return repository.NoopCache{}
	}

	c := repository.NewMemoryCache()
	a.closers = append(a.closers, func() error { c.Stop(); return nil })
	return c
}

func (a *app) sources() []scraper.Source {
	sc := a.cfg.Scraper
	client := scraper.NewClient(sc.Timeout.Duration, sc.UserAgent, a.logger.Named("scraper"))

	var sources []scraper.Source
	if sc.MeilleurtauxURL != "" {
		sources = append(sources, scraper.NewMeilleurtaux(client, sc.MeilleurtauxURL))
	}
	if sc.EmpruntisURL != "" {
		sources = append(sources, scraper.NewEmpruntis(client, sc.EmpruntisURL))
	}
	return sources
}

// Close releases storage and cache connections and flushes the logger.
func (a *app) Close() {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn("closing resources", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// loanFlags are the three loan parameters shared by several commands.
type loanFlags struct {
	principal float64
	rate      float64
	years     int
}

func (f *loanFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&f.principal, "principal", "p", 250_000, "Amount borrowed")
	cmd.Flags().Float64VarP(&f.rate, "rate", "r", 1.5, "Annual interest rate in percent")
	cmd.Flags().IntVarP(&f.years, "years", "y", 20, "Duration in years")
}

func (f *loanFlags) parameters() domain.LoanParameters {
	return domain.LoanParameters{
		Principal:                 f.principal,
		AnnualInterestRatePercent: f.rate,
		DurationYears:             f.years,
	}
}

func simulationResult(sim domain.LoanSimulation) domain.AmortizationResult {
	return domain.AmortizationResult{
		MonthlyPayment:    sim.MonthlyPayment,
		TotalInterestCost: sim.TotalInterestCost,
		Schedule:          sim.Schedule,
	}
}
