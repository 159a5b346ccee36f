package app

import (
	"time"

	"nutri-go/internal/nutri"
)

// Operation statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation tracks one CLI invocation. Its ID stamps every log line written
// while the command runs.
type Operation struct {
	ID      string
	Name    string
	Status  string
	Started time.Time
	Err     error
}

// NewOperation starts an operation named after the CLI command being run.
func NewOperation(name string, clock nutri.Clock) *Operation {
	started := clock.Now()
	return &Operation{
		ID:      started.UTC().Format("20060102T150405Z"),
		Name:    name,
		Status:  StatusSuccess,
		Started: started,
	}
}

// Record marks the operation failed when err is non-nil and returns err
// unchanged. The first error wins.
func (op *Operation) Record(err error) error {
	if err != nil && op.Err == nil {
		op.Status = StatusError
		op.Err = err
	}
	return err
}

// Failed reports whether any recorded step failed.
func (op *Operation) Failed() bool {
	return op.Status == StatusError
}

// Elapsed returns the time since the operation started.
func (op *Operation) Elapsed(clock nutri.Clock) time.Duration {
	return clock.Now().Sub(op.Started)
}
