package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type countingTrigger struct {
	runs atomic.Int64
}

func (c *countingTrigger) TryRun(ctx context.Context) bool {
	c.runs.Add(1)
	return true
}

func TestStart_FiresAfterInitialDelayThenAtInterval(t *testing.T) {
	trigger := &countingTrigger{}
	s := New(trigger, 5*time.Millisecond, 20*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return trigger.runs.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestStart_CancelDuringInitialDelayFiresNothing(t *testing.T) {
	trigger := &countingTrigger{}
	s := New(trigger, time.Hour, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
	assert.Zero(t, trigger.runs.Load())
}
