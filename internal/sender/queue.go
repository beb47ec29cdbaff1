package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nebel/CurrencyWatchdog/internal/alert"
	"github.com/nebel/CurrencyWatchdog/internal/settings"
)

// DefaultQueueSize is the number of batches buffered ahead of the worker.
const DefaultQueueSize = 64

var (
	// ErrQueueFull is returned when the worker has fallen behind.
	ErrQueueFull = errors.New("chat queue full")
	// ErrQueueClosed is returned after Close.
	ErrQueueClosed = errors.New("chat queue closed")
)

// Deliverer sends one rendered batch.
type Deliverer interface {
	Deliver(ctx context.Context, job Job) error
}

// Recorder is the part of the metrics collector the worker reports to.
type Recorder interface {
	RecordError()
	IncrementCustom(name string)
}

// Queue renders chat batches on the caller's goroutine and delivers them on a
// single background worker, in order. Send never waits on the network.
type Queue struct {
	deliverer Deliverer
	recorder  Recorder
	jobs      chan Job

	mu      sync.Mutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewQueue creates a queue holding up to size pending batches (the default
// when size <= 0). recorder may be nil.
func NewQueue(d Deliverer, size int, recorder Recorder) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		deliverer: d,
		recorder:  recorder,
		jobs:      make(chan Job, size),
	}
}

// Start runs the worker until Close. Deliveries use ctx.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for job := range q.jobs {
			q.deliver(ctx, job)
		}
	}()
}

// Send renders alerts and queues the batch. It fails with ErrQueueFull
// instead of blocking.
func (q *Queue) Send(_ context.Context, st *settings.Settings, alerts []alert.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	job := Render(st, alerts)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		slog.Warn("Chat queue full, dropping batch",
			"batch_id", job.Batch.ID,
			"lines", len(job.Batch.Lines),
		)
		return ErrQueueFull
	}
}

// Pending returns the number of batches waiting for the worker.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

// Close stops accepting batches and waits for the worker to drain the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
}

func (q *Queue) deliver(ctx context.Context, job Job) {
	if err := q.deliverer.Deliver(ctx, job); err != nil {
		slog.Error("Failed to deliver chat batch",
			"batch_id", job.Batch.ID,
			"lines", len(job.Batch.Lines),
			"error", err,
		)
		if q.recorder != nil {
			q.recorder.RecordError()
		}
		return
	}
	if q.recorder != nil {
		q.recorder.IncrementCustom("chat_batches_delivered")
	}
}
