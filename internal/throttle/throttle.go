// Package throttle enforces a minimum spacing between outbound calls to
// one external judge.
//
// Each Throttler owns a single worker goroutine draining a FIFO queue.
// The worker computes start = max(now, nextAllowedStart), advances
// nextAllowedStart by the configured interval, sleeps until start, then
// runs the task. Tasks therefore execute in submission order with at
// least the minimum interval between consecutive starts, even when
// callers schedule concurrently. A task's failure does not stall the
// queue; the worker simply moves on to the next task.
package throttle

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Schedule after Close.
var ErrClosed = errors.New("throttle: scheduler closed")

// queueDepth bounds how many tasks may wait before Schedule blocks.
const queueDepth = 128

type result struct {
	value any
	err   error
}

type task struct {
	ctx context.Context
	fn  func(context.Context) (any, error)
	out chan result
}

// Throttler is a per-integration FIFO scheduler. Create one per external
// judge with that judge's minimum call spacing.
type Throttler struct {
	minInterval time.Duration

	mu     sync.Mutex
	closed bool
	queue  chan *task
	done   chan struct{}
}

// New starts a throttler whose tasks begin at least minInterval apart.
// A non-positive interval disables spacing but keeps FIFO ordering.
func New(minInterval time.Duration) *Throttler {
	t := &Throttler{
		minInterval: minInterval,
		queue:       make(chan *task, queueDepth),
		done:        make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *Throttler) run() {
	defer close(t.done)

	var nextAllowedStart time.Time
	for tk := range t.queue {
		start := time.Now()
		if nextAllowedStart.After(start) {
			start = nextAllowedStart
		}
		nextAllowedStart = start.Add(t.minInterval)

		if wait := time.Until(start); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-tk.ctx.Done():
				timer.Stop()
				tk.out <- result{err: tk.ctx.Err()}
				continue
			}
		}
		if err := tk.ctx.Err(); err != nil {
			tk.out <- result{err: err}
			continue
		}

		value, err := tk.fn(tk.ctx)
		tk.out <- result{value: value, err: err}
	}
}

// Close stops accepting new tasks and waits for queued tasks to drain.
func (t *Throttler) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		<-t.done
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()
	<-t.done
}

func (t *Throttler) enqueue(tk *task) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	select {
	case t.queue <- tk:
		return nil
	case <-tk.ctx.Done():
		return tk.ctx.Err()
	}
}

// Schedule queues fn and blocks until it has run (or the context is
// cancelled while the task is still waiting for its slot). The task's
// error is returned as-is; scheduling errors are ErrClosed or the
// context's error.
func Schedule[T any](t *Throttler, ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	tk := &task{
		ctx: ctx,
		out: make(chan result, 1),
		fn: func(ctx context.Context) (any, error) {
			return fn(ctx)
		},
	}
	if err := t.enqueue(tk); err != nil {
		return zero, err
	}

	r := <-tk.out
	if r.err != nil {
		return zero, r.err
	}
	return r.value.(T), nil
}
