// Package scheduler refreshes published rates on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"loan-simulator/domain"
)

// ErrAlreadyRunning is returned by Start on a running refresher.
var ErrAlreadyRunning = errors.New("rate refresher already running")

// Refresher is the job run on every tick.
type Refresher interface {
	Refresh(ctx context.Context) (domain.RateBoard, error)
}

// RateRefresher runs a Refresher on a cron expression (five fields, or a
// descriptor such as "@hourly" or "@every 30m").
type RateRefresher struct {
	cron    *cron.Cron
	spec    string
	target  Refresher
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	entry   cron.EntryID
	cancel  context.CancelFunc
}

// NewRateRefresher validates spec and returns a stopped refresher.
func NewRateRefresher(spec string, target Refresher, timeout time.Duration, logger *zap.Logger) (*RateRefresher, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateRefresher{
		cron:    cron.New(),
		spec:    spec,
		target:  target,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Start schedules the job. Runs stop when ctx is cancelled or Stop is called.
func (r *RateRefresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}

	jobCtx, cancel := context.WithCancel(ctx)
	id, err := r.cron.AddFunc(r.spec, func() { r.RunNow(jobCtx) })
	if err != nil {
		cancel()
		return fmt.Errorf("scheduling rate refresh: %w", err)
	}

	r.entry = id
	r.cancel = cancel
	r.running = true
	r.cron.Start()

	r.logger.Info("rate refresher started",
		zap.String("schedule", r.spec),
		zap.Time("next", r.cron.Entry(id).Next))
	return nil
}

// Stop waits for a running job to finish. It is safe to call more than once.
func (r *RateRefresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	r.cancel()
	<-r.cron.Stop().Done()
	r.cron.Remove(r.entry)
	r.running = false

	r.logger.Info("rate refresher stopped")
}

// Next reports the next scheduled run, or the zero time when stopped.
func (r *RateRefresher) Next() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return time.Time{}
	}
	return r.cron.Entry(r.entry).Next
}

// RunNow performs one refresh synchronously.
func (r *RateRefresher) RunNow(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	board, err := r.target.Refresh(ctx)
	if err != nil {
		r.logger.Error("scheduled rate refresh failed", zap.Error(err))
		return
	}

	quotes := 0
	for _, qs := range board.Quotes {
		quotes += len(qs)
	}
	r.logger.Info("scheduled rate refresh done",
		zap.Int("quotes", quotes),
		zap.Int("failed_sources", len(board.Errors)),
		zap.Duration("took", time.Since(start)))
}
