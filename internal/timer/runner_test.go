package timer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRunner_TicksUntilStopped(t *testing.T) {
	// Given: a running ticker counting its callbacks
	var ticks atomic.Int64
	runner := StartRunner(context.Background(), time.Millisecond, func() bool {
		ticks.Add(1)
		return true
	})

	// When: it runs for a while and is then stopped
	require.Eventually(t, func() bool {
		return ticks.Load() >= 5
	}, time.Second, time.Millisecond)

	runner.Stop()
	<-runner.Done()

	// Then: no further ticks arrive after the goroutine exits
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, after, ticks.Load())
}

func TestRunner_StopsWhenTickReturnsFalse(t *testing.T) {
	// Given: a callback that asks to stop on its third tick
	var ticks atomic.Int64
	runner := StartRunner(context.Background(), time.Millisecond, func() bool {
		return ticks.Add(1) < 3
	})

	// Then: the runner exits on its own
	select {
	case <-runner.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}

	require.Equal(t, int64(3), ticks.Load())
}

func TestRunner_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	runner := StartRunner(ctx, time.Millisecond, func() bool { return true })

	cancel()

	select {
	case <-runner.Done():
	case <-time.After(time.Second):
		t.Fatal("runner did not stop on context cancel")
	}
}

func TestRunner_StopIsIdempotent(t *testing.T) {
	runner := StartRunner(context.Background(), time.Millisecond, func() bool { return true })

	runner.Stop()
	runner.Stop()

	<-runner.Done()
}
