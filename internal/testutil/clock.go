package testutil

import (
	"fmt"
	"sync"
	"time"

	"nutri-go/internal/nutri"
)

// StubClock returns a settable time. Safe for concurrent use.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ nutri.Clock = (*StubClock)(nil)

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NextDay moves the clock forward 24 hours.
func (c *StubClock) NextDay() {
	c.Advance(24 * time.Hour)
}

// StubIDGenerator returns sequential IDs: "00000001-1", "00000002-2", etc.
// The first 8 characters are unique so derived short identities are
// predictable.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

var _ nutri.IDGenerator = (*StubIDGenerator)(nil)

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%08x-%d", g.counter, g.counter)
}
