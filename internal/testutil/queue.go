package testutil

import (
	"sync"

	"nutri-go/internal/nutri"
)

// ManualQueue holds enqueued deliveries until the test resolves them.
type ManualQueue struct {
	mu       sync.Mutex
	jobs     []queuedJob
	payloads []any
}

type queuedJob struct {
	payload any
	done    func(nutri.DeliveryResult)
}

var _ nutri.DeliveryQueue = (*ManualQueue)(nil)

func NewManualQueue() *ManualQueue {
	return &ManualQueue{}
}

func (q *ManualQueue) Enqueue(payload any, done func(nutri.DeliveryResult)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, queuedJob{payload: payload, done: done})
	q.payloads = append(q.payloads, payload)
}

// Payloads returns the payloads enqueued so far, resolved or not.
func (q *ManualQueue) Payloads() []any {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]any(nil), q.payloads...)
}

// Resolve completes every pending job with result.
func (q *ManualQueue) Resolve(result nutri.DeliveryResult) {
	q.mu.Lock()
	jobs := q.jobs
	q.jobs = nil
	q.mu.Unlock()

	for _, j := range jobs {
		if j.done != nil {
			j.done(result)
		}
	}
}
