package core

import (
	"context"
	"errors"
	"sync"
)

// ErrWorkerClosed is returned for work submitted after Close
var ErrWorkerClosed = errors.New("worker closed")

type job struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

// Worker runs submitted operations one at a time on a single goroutine, so
// callers such as a UI loop never block on file operations.
type Worker struct {
	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
}

// NewWorker starts a worker with room for queue pending operations
func NewWorker(queue int) *Worker {
	w := &Worker{jobs: make(chan job, queue)}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *Worker) run() {
	defer w.wg.Done()
	for j := range w.jobs {
		if err := j.ctx.Err(); err != nil {
			j.result <- err
			continue
		}
		j.result <- j.fn()
	}
}

// Submit queues fn and returns a channel that receives its result. If ctx
// is done before fn starts, fn is skipped and the context error is sent.
func (w *Worker) Submit(ctx context.Context, fn func() error) <-chan error {
	result := make(chan error, 1)

	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		result <- ErrWorkerClosed
		return result
	}

	select {
	case w.jobs <- job{ctx: ctx, fn: fn, result: result}:
	case <-ctx.Done():
		result <- ctx.Err()
	}
	return result
}

// Close stops accepting work and waits for queued operations to finish
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.jobs)
	w.mu.Unlock()

	w.wg.Wait()
}
