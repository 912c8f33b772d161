package account

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher runs follow-on work after a request has been answered. Each task
// gets its own deadline and survives cancellation of the request context.
type Dispatcher struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

const defaultTaskTimeout = 30 * time.Second

func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTaskTimeout
	}
	return &Dispatcher{timeout: timeout}
}

// Go starts fn in the background. Failures are logged under name.
func (d *Dispatcher) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		start := time.Now()
		if err := fn(taskCtx); err != nil {
			slog.Warn("background task failed", "task", name, "duration", time.Since(start), "err", err)
			return
		}
		slog.Debug("background task done", "task", name, "duration", time.Since(start))
	}()
}

// Wait blocks until every started task has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown waits for in-flight tasks or until ctx is done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
