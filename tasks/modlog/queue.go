package modlog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"
)

var ErrQueueClosed = errors.New("mod-log queue is closed")

// Job is one unit of serialized work, typically "write the record, then post the log message".
type Job func(ctx context.Context) error

type item struct {
	ctx    context.Context
	name   string
	fn     Job
	result chan error
}

// Queue runs submitted jobs one at a time, in submission order, on a single worker.
type Queue struct {
	items   chan *item
	limiter *rate.Limiter
	pending atomic.Int64
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewQueue creates a queue holding up to size waiting jobs. Jobs start no faster than limit allows.
func NewQueue(size int, limit rate.Limit, burst int) *Queue {
	if size <= 0 {
		size = 100
	}
	return &Queue{
		items:   make(chan *item, size),
		limiter: rate.NewLimiter(limit, burst),
		done:    make(chan struct{}),
	}
}

// Start launches the worker.
func (q *Queue) Start() {
	log.Println("[ModLog] Starting queue worker...")
	q.wg.Add(1)
	go q.run()
}

// Stop stops the worker after the job in flight finishes. Waiting jobs fail with ErrQueueClosed.
func (q *Queue) Stop() {
	q.once.Do(func() {
		close(q.done)
		q.wg.Wait()
		log.Println("[ModLog] Queue worker stopped")
	})
}

// Submit enqueues fn and returns a channel that receives its result.
func (q *Queue) Submit(ctx context.Context, name string, fn Job) <-chan error {
	it := &item{ctx: ctx, name: name, fn: fn, result: make(chan error, 1)}
	select {
	case <-q.done:
		it.result <- ErrQueueClosed
		return it.result
	default:
	}

	q.pending.Add(1)
	select {
	case q.items <- it:
	case <-ctx.Done():
		q.pending.Add(-1)
		it.result <- ctx.Err()
	case <-q.done:
		q.pending.Add(-1)
		it.result <- ErrQueueClosed
	}
	return it.result
}

// Do submits fn and waits for it to finish.
func (q *Queue) Do(ctx context.Context, name string, fn Job) error {
	select {
	case err := <-q.Submit(ctx, name, fn):
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Size returns the number of jobs waiting or in flight.
func (q *Queue) Size() int {
	return int(q.pending.Load())
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case it := <-q.items:
			it.result <- q.process(it)
			q.pending.Add(-1)
		case <-q.done:
			q.drain()
			return
		}
	}
}

func (q *Queue) drain() {
	for {
		select {
		case it := <-q.items:
			it.result <- ErrQueueClosed
			q.pending.Add(-1)
		default:
			return
		}
	}
}

func (q *Queue) process(it *item) (err error) {
	if err := it.ctx.Err(); err != nil {
		return err
	}
	if err := q.limiter.Wait(it.ctx); err != nil {
		return fmt.Errorf("failed to wait for rate limiter: %w", err)
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ModLog] Job %s panicked: %v", it.name, r)
			err = fmt.Errorf("job %s panicked: %v", it.name, r)
		}
	}()
	if err := it.fn(it.ctx); err != nil {
		log.Printf("[ModLog] Job %s failed: %v", it.name, err)
		return err
	}
	return nil
}
