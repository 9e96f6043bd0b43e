package service

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"loan-simulator/domain"
	"loan-simulator/metrics"
	"loan-simulator/repository"
	"loan-simulator/scraper"
)

const rateBoardKey = "rates:board"

// RateService collects published mortgage rates from every configured source.
type RateService struct {
	sources []scraper.Source
	repo    repository.RateRepository
	cache   repository.CacheRepository
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewRateService(
	sources []scraper.Source,
	repo repository.RateRepository,
	cache repository.CacheRepository,
	ttl, timeout time.Duration,
	logger *zap.Logger,
) *RateService {
	if cache == nil {
		cache = repository.NoopCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateService{
		sources: sources,
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Board returns the cached rate board, scraping the sources when the cache
// is empty or expired.
func (s *RateService) Board(ctx context.Context) (domain.RateBoard, error) {
	if raw, ok := s.cache.Get(ctx, rateBoardKey); ok {
		var board domain.RateBoard
		if err := json.Unmarshal([]byte(raw), &board); err == nil {
			return board, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh scrapes every source now. A failing source is reported in the
// board's Errors and does not prevent the others from being returned.
func (s *RateService) Refresh(ctx context.Context) (domain.RateBoard, error) {
	type outcome struct {
		source string
		quotes []domain.RateQuote
		err    error
	}

	results := make(chan outcome, len(s.sources))
	var wg sync.WaitGroup
	for _, src := range s.sources {
		wg.Add(1)
		go func(src scraper.Source) {
			defer wg.Done()
			fetchCtx := ctx
			if s.timeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
				defer cancel()
			}

			start := time.Now()
			quotes, err := src.Fetch(fetchCtx)
			metrics.ScrapeDuration.WithLabelValues(src.Name()).Observe(time.Since(start).Seconds())
			results <- outcome{source: src.Name(), quotes: quotes, err: err}
		}(src)
	}
	wg.Wait()
	close(results)

	board := domain.RateBoard{
		Quotes:    make(map[string][]domain.RateQuote),
		FetchedAt: s.now().UTC(),
	}
	var collected []domain.RateQuote
	for res := range results {
		if res.err != nil {
			metrics.Scrapes.WithLabelValues(res.source, "error").Inc()
			s.logger.Warn("rate source failed", zap.String("source", res.source), zap.Error(res.err))
			if board.Errors == nil {
				board.Errors = make(map[string]string)
			}
			board.Errors[res.source] = res.err.Error()
			continue
		}
		metrics.Scrapes.WithLabelValues(res.source, "ok").Inc()
		for _, q := range res.quotes {
			metrics.PublishedRate.WithLabelValues(q.Source, strconv.Itoa(q.DurationYears)).Set(q.RatePercent)
		}
		board.Quotes[res.source] = res.quotes
		collected = append(collected, res.quotes...)
	}

	if len(collected) == 0 {
		return board, nil
	}

	if err := s.repo.SaveQuotes(ctx, collected); err != nil {
		s.logger.Warn("failed to persist rate snapshot", zap.Error(err))
	}
	if raw, err := json.Marshal(board); err == nil {
		if err := s.cache.Set(ctx, rateBoardKey, string(raw), s.ttl); err != nil {
			s.logger.Warn("failed to cache rate board", zap.Error(err))
		}
	}

	s.logger.Info("rates refreshed",
		zap.Int("quotes", len(collected)),
		zap.Int("failed_sources", len(board.Errors)))
	return board, nil
}

// LatestSnapshots returns persisted quotes, newest first.
func (s *RateService) LatestSnapshots(ctx context.Context, limit int) ([]domain.RateQuote, error) {
	return s.repo.RecentQuotes(ctx, ClampLimit(limit))
}

// Sources lists the configured source names.
func (s *RateService) Sources() []string {
	names := make([]string, 0, len(s.sources))
	for _, src := range s.sources {
		names = append(names, src.Name())
	}
	return names
}
