package media

import (
	"context"
	"errors"
	"sync"
)

// Pending is the outcome of a media insertion that may still be running.
type Pending struct {
	once   sync.Once
	done   chan struct{}
	result Resolved
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// Completed returns an already finished Pending.
func Completed(r Resolved, err error) *Pending {
	p := newPending()
	p.finish(r, err)
	return p
}

// finish records the first outcome only.
func (p *Pending) finish(r Resolved, err error) {
	p.once.Do(func() {
		p.result, p.err = r, err
		close(p.done)
	})
}

// Done is closed once the insertion finished or failed.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the insertion finished or ctx is done.
func (p *Pending) Wait(ctx context.Context) (Resolved, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
		return Resolved{}, ctx.Err()
	}
}

// CompleteFunc applies a resolved source. It runs on the queue worker and
// must do its own synchronization with the document owner. Returning
// ErrSkipped reports a no-op rather than a failure.
type CompleteFunc func(Resolved) error

type job struct {
	resolve  func() (Resolved, error)
	complete CompleteFunc
	pending  *Pending
}

// Queue runs file reads on a single worker so completions are applied in
// submission order.
type Queue struct {
	mu     sync.Mutex
	closed bool
	jobs   chan job

	// reading is the job whose source is being read, if any.
	reading *Pending
}

// NewQueue starts a queue holding at most size waiting jobs.
func NewQueue(size int) *Queue {
	if size < 1 {
		size = 1
	}
	q := &Queue{
		jobs: make(chan job, size),
	}
	go q.run()
	return q
}

// Submit schedules resolve followed by complete. It never blocks: a full
// or closed queue fails the returned Pending immediately.
func (q *Queue) Submit(resolve func() (Resolved, error), complete CompleteFunc) *Pending {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return Completed(Resolved{}, ErrClosed)
	}
	p := newPending()
	select {
	case q.jobs <- job{resolve: resolve, complete: complete, pending: p}:
		return p
	default:
		return Completed(Resolved{}, ErrQueueFull)
	}
}

// Close stops accepting jobs and fails the ones not yet applied with
// ErrClosed, including a read in progress. It does not wait for that read
// to return; the worker discards its result and exits afterwards. A
// completion already running is allowed to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	if q.reading != nil {
		q.reading.finish(Resolved{}, ErrClosed)
	}
	q.mu.Unlock()

	for j := range q.jobs {
		j.pending.finish(Resolved{}, ErrClosed)
	}
}

func (q *Queue) run() {
	for j := range q.jobs {
		if !q.begin(j.pending) {
			j.pending.finish(Resolved{}, ErrClosed)
			continue
		}
		r, err := j.resolve()
		if !q.end() {
			j.pending.finish(Resolved{}, ErrClosed)
			continue
		}
		if err != nil {
			j.pending.finish(Resolved{}, err)
			continue
		}
		if err := j.complete(r); err != nil {
			if errors.Is(err, ErrSkipped) {
				err = nil
			}
			j.pending.finish(Resolved{}, err)
			continue
		}
		j.pending.finish(r, nil)
	}
}

// begin marks p as reading unless the queue is closed.
func (q *Queue) begin(p *Pending) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.reading = p
	return true
}

// end clears the reading job and reports whether it may still complete.
func (q *Queue) end() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reading = nil
	return !q.closed
}
