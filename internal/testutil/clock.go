package testutil

import (
	"fmt"
	"sync"
	"time"

	"nfc-go/internal/nfc"
)

// StubClock reports a pinned instant. When Step is non-zero every call to Now
// moves the clock forward by Step, so consecutive rename records get
// distinct, ordered timestamps.
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock is pinned to 2024-01-15 10:30:00 UTC and never moves.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.Step)
	return t
}

// SequenceIDGenerator hands out "<prefix>-1", "<prefix>-2", ...
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	return &SequenceIDGenerator{prefix: prefix}
}

func (g *SequenceIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%d", g.prefix, g.next)
}

var (
	_ nfc.Clock       = (*StubClock)(nil)
	_ nfc.IDGenerator = (*SequenceIDGenerator)(nil)
)
