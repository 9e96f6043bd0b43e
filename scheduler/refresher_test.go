package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"loan-simulator/domain"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(ctx context.Context) (domain.RateBoard, error) {
	c.calls.Add(1)
	if c.err != nil {
		return domain.RateBoard{}, c.err
	}
	return domain.RateBoard{Quotes: map[string][]domain.RateQuote{
		"empruntis": {{Source: "empruntis", DurationYears: 15, RatePercent: 3.05}},
	}}, nil
}

func TestNewRateRefresherRejectsBadSchedule(t *testing.T) {
	_, err := NewRateRefresher("every six hours", &countingRefresher{}, time.Second, nil)
	assert.Error(t, err)

	_, err = NewRateRefresher("0 */6 * * *", &countingRefresher{}, time.Second, nil)
	assert.NoError(t, err)
}

func TestRunNowLogsOutcome(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	target := &countingRefresher{}
	r, err := NewRateRefresher("@hourly", target, time.Second, zap.New(core))
	require.NoError(t, err)

	r.RunNow(context.Background())
	assert.Equal(t, int32(1), target.calls.Load())
	entries := logs.FilterMessage("scheduled rate refresh done").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["quotes"])

	target.err = errors.New("boom")
	r.RunNow(context.Background())
	assert.Equal(t, 1, logs.FilterMessage("scheduled rate refresh failed").Len())
}

func TestRunNowSkipsCancelledContext(t *testing.T) {
	target := &countingRefresher{}
	r, err := NewRateRefresher("@hourly", target, time.Second, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.RunNow(ctx)
	assert.Zero(t, target.calls.Load())
}

func TestStartRunsOnSchedule(t *testing.T) {
	target := &countingRefresher{}
	r, err := NewRateRefresher("@every 1s", target, time.Second, nil)
	require.NoError(t, err)

	require.NoError(t, r.Start(context.Background()))
	assert.ErrorIs(t, r.Start(context.Background()), ErrAlreadyRunning)
	assert.False(t, r.Next().IsZero())

	assert.Eventually(t, func() bool { return target.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	r.Stop()
	r.Stop()
	assert.True(t, r.Next().IsZero())
}
