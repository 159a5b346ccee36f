package delivery

import (
	"context"
	"errors"
	"sync"
	"time"

	"nutri-go/internal/nutri"
)

// DefaultJobTimeout bounds a single delivery attempt, fallback included.
const DefaultJobTimeout = 30 * time.Second

// Deliverer performs one delivery attempt.
type Deliverer interface {
	Deliver(ctx context.Context, endpoint string, payload any) nutri.DeliveryResult
}

type job struct {
	payload any
	done    func(nutri.DeliveryResult)
}

// Queue forwards payloads to a single endpoint in the background.
//
// Enqueue never blocks: jobs go to a buffered channel drained by one worker,
// and when the buffer is full the job runs on its own goroutine instead.
// Close stops accepting work and waits for everything in flight.
type Queue struct {
	deliverer Deliverer
	endpoint  string
	timeout   time.Duration
	logger    nutri.Logger

	jobs     chan job
	inflight sync.WaitGroup
	worker   sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

var _ nutri.DeliveryQueue = (*Queue)(nil)

// NewQueue starts a Queue with the given buffer size.
func NewQueue(deliverer Deliverer, endpoint string, size int, logger nutri.Logger) *Queue {
	if size < 1 {
		size = 1
	}
	q := &Queue{
		deliverer: deliverer,
		endpoint:  endpoint,
		timeout:   DefaultJobTimeout,
		logger:    logger,
		jobs:      make(chan job, size),
	}
	q.worker.Add(1)
	go q.run()
	return q
}

// SetJobTimeout changes the per-delivery timeout.
func (q *Queue) SetJobTimeout(d time.Duration) {
	if d > 0 {
		q.timeout = d
	}
}

// Enqueue schedules payload for delivery. done may be nil. After Close the
// payload is dropped and done receives a failed result.
func (q *Queue) Enqueue(payload any, done func(nutri.DeliveryResult)) {
	j := job{payload: payload, done: done}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Info("delivery queue closed, dropping payload")
		q.finish(j, nutri.DeliveryResult{Message: "delivery queue closed"})
		return
	}
	q.inflight.Add(1)
	select {
	case q.jobs <- j:
		q.mu.Unlock()
	default:
		q.mu.Unlock()
		q.logger.Debug("delivery queue full, delivering detached")
		go func() {
			defer q.inflight.Done()
			q.process(j)
		}()
	}
}

func (q *Queue) run() {
	defer q.worker.Done()
	for j := range q.jobs {
		q.process(j)
		q.inflight.Done()
	}
}

func (q *Queue) process(j job) {
	if q.endpoint == "" {
		q.finish(j, nutri.DeliveryResult{Message: "sync endpoint not configured"})
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	result := q.deliverer.Deliver(ctx, q.endpoint, j.payload)
	q.logger.Debug("delivery finished", "success", result.Success, "opaque", result.Opaque, "message", result.Message)
	q.finish(j, result)
}

func (q *Queue) finish(j job, result nutri.DeliveryResult) {
	if j.done != nil {
		j.done(result)
	}
}

// Close stops the queue and waits until pending deliveries have resolved
// or ctx is done.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		q.inflight.Wait()
		q.worker.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("delivery queue did not drain"), ctx.Err())
	}
}
