package nutri

import (
	"time"

	"github.com/google/uuid"

	"nutri-go/internal/model"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time in the local timezone.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// Today returns the calendar date of the clock's current time, formatted as
// YYYY-MM-DD in the clock's location.
func Today(c Clock) string {
	return c.Now().Format(model.DateLayout)
}

// shortID derives an 8 character suffix from a generated id.
func shortID(idgen IDGenerator) string {
	id := idgen.New()
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
