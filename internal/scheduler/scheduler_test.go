package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-lookup/pkg/logger"
)

type countingRefresher struct {
	calls       atomic.Int32
	hadDeadline atomic.Bool
}

func (r *countingRefresher) Refresh(ctx context.Context) {
	_, ok := ctx.Deadline()
	r.hadDeadline.Store(ok)
	r.calls.Add(1)
}

func TestScheduler_RefreshesPeriodically(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, 50*time.Millisecond, logger.NewNop())

	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, r.hadDeadline.Load())
}

func TestScheduler_ZeroIntervalDisables(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, 0, logger.NewNop())

	require.NoError(t, s.Start())
	defer s.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), r.calls.Load())
}
