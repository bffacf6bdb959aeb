package timer

import (
	"context"
	"sync"
	"time"
)

// Runner - drives a room's timer machine with one tick per second. The tick
// callback returns false to stop the runner; it is also stopped when its
// context is canceled, which happens exactly when the room leaves the state
// that needed ticking. A runner never outlives its room.
type Runner struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// StartRunner - spawns the ticking goroutine.
func StartRunner(ctx context.Context, interval time.Duration, tick func() bool) *Runner {
	ctx, cancel := context.WithCancel(ctx)

	runner := &Runner{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(runner.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !tick() {
					return
				}
			}
		}
	}()

	return runner
}

// Stop - cancels the runner. Safe to call more than once; does not wait for
// an in-flight tick.
func (that *Runner) Stop() {
	that.once.Do(that.cancel)
}

// Done - closed when the ticking goroutine has exited.
func (that *Runner) Done() <-chan struct{} {
	return that.done
}
