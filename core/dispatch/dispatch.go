// Package dispatch runs best-effort side effects (activity logging,
// notification emission) off the primary mutation path. Tasks are retried a
// few times and their failures are logged, never propagated: secondary
// bookkeeping must not fail a primary write.
package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newrise0410/piano-academy-app-sub002/core"
)

const (
	defaultQueueSize = 64
	maxAttempts      = 3
	retryDelay       = 200 * time.Millisecond
)

type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Dispatcher struct {
	logger core.Logger
	tasks  chan Task
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func New(logger core.Logger, queueSize ...int) *Dispatcher {
	size := defaultQueueSize
	if len(queueSize) > 0 && queueSize[0] > 0 {
		size = queueSize[0]
	}
	d := &Dispatcher{
		logger: logger,
		tasks:  make(chan Task, size),
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Enqueue submits a task; it never blocks. When the queue is full or the
// dispatcher is closed the task is dropped with a warning.
func (d *Dispatcher) Enqueue(t Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.logger.Warn(fmt.Sprintf("dispatch: dropping %q, dispatcher closed", t.Name))
		return
	}
	select {
	case d.tasks <- t:
	default:
		d.logger.Warn(fmt.Sprintf("dispatch: dropping %q, queue full", t.Name))
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for t := range d.tasks {
		d.run(t)
	}
}

func (d *Dispatcher) run(t Task) {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = t.Run(ctx)
		cancel()
		if err == nil {
			return
		}
		if attempt < maxAttempts {
			time.Sleep(time.Duration(attempt) * retryDelay)
		}
	}
	d.logger.Error(fmt.Sprintf("dispatch: %q failed after %d attempts: %v", t.Name, maxAttempts, err), err)
}

// Close drains the queue and stops the worker. Enqueue calls after Close are
// dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.tasks)
	d.wg.Wait()
}
