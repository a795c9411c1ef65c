package spectrum

import "sync/atomic"

// Counters tracks the number of executed and failed tests in a session.
type Counters struct {
	total  atomic.Int64
	failed atomic.Int64
}

// TestStarted records the start of a test and returns the new total.
func (c *Counters) TestStarted() int {
	return int(c.total.Add(1))
}

// TestFailed records a failing test and returns the new failed total.
func (c *Counters) TestFailed() int {
	return int(c.failed.Add(1))
}

// Total returns the number of tests started.
func (c *Counters) Total() int {
	return int(c.total.Load())
}

// Failed returns the number of failing tests.
func (c *Counters) Failed() int {
	return int(c.failed.Load())
}

// Passed returns Total minus Failed.
func (c *Counters) Passed() int {
	return c.Total() - c.Failed()
}
