package lib

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecalculator struct {
	calls atomic.Int32
}

func (c *countingRecalculator) RecalculateAll(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 2, nil
}

func TestScheduleCompletionRecalculation(t *testing.T) {
	sched, err := gocron.NewScheduler()
	require.NoError(t, err)
	NewScheduler(sched)
	defer func() {
		_ = sched.Shutdown()
		NewScheduler(nil)
	}()

	r := &countingRecalculator{}
	id, err := ScheduleCompletionRecalculation(r, 20*time.Millisecond)
	require.NoError(t, err)
	assert.NotEmpty(t, *id)
	assert.Len(t, sched.Jobs(), 1)

	sched.Start()
	assert.Eventually(t, func() bool { return r.calls.Load() > 0 }, time.Second, 10*time.Millisecond)
}
