package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/helixml/newsbrief/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodic_Enabled(t *testing.T) {
	var runs atomic.Int32
	p := NewPeriodic("count", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, log.Discard())

	p.Start(context.Background())
	require.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)
	p.Stop()

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())
}

func TestPeriodic_Disabled(t *testing.T) {
	var runs atomic.Int32
	p := NewPeriodic("never", 0, func(context.Context) error {
		runs.Add(1)
		return nil
	}, log.Discard())

	assert.False(t, p.Enabled())
	assert.NoError(t, p.Run(context.Background()))
	assert.Zero(t, runs.Load())
}

func TestPeriodic_ErrorsDoNotStopLoop(t *testing.T) {
	var runs atomic.Int32
	p := NewPeriodic("failing", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return errBoom
	}, log.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
