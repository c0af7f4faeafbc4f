package update

import "fmt"

// Clock drives update cycles. All tracked-column mutation and listener
// delivery happens inside a cycle on one goroutine; readers outside the
// cycle see the snapshot of the last completed cycle through the
// previous-value paths.
//
// Columns and row sets arm a flusher the first time they capture a
// pre-image in a cycle; CompleteCycle runs the armed flushers to tear their
// shadows down, then advances the logical step.
type Clock struct {
	step     int64
	inCycle  bool
	flushers []func()
}

// NewClock creates a clock at step zero with no cycle active.
func NewClock() *Clock {
	return &Clock{}
}

// Step returns the logical time, incremented at each completed cycle.
func (c *Clock) Step() int64 {
	return c.step
}

// CycleActive reports whether a cycle is open.
func (c *Clock) CycleActive() bool {
	return c.inCycle
}

// StartCycle opens an update cycle. Starting a cycle while one is active is
// a contract violation.
func (c *Clock) StartCycle() {
	if c.inCycle {
		panic("update: cycle already active")
	}
	c.inCycle = true
}

// ArmFlusher registers a commit callback to run when the current cycle
// completes or aborts. Callers arm at most once per cycle; the clock does
// not deduplicate.
func (c *Clock) ArmFlusher(f func()) {
	if !c.inCycle {
		panic("update: flusher armed outside a cycle")
	}
	c.flushers = append(c.flushers, f)
}

// CompleteCycle runs the armed flushers in arming order, clears them, and
// advances the step. After completion every previous-value read observes
// the new state.
func (c *Clock) CompleteCycle() {
	if !c.inCycle {
		panic("update: no cycle to complete")
	}
	for _, f := range c.flushers {
		f()
	}
	c.flushers = c.flushers[:0]
	c.step++
	c.inCycle = false
}

// AbortCycle tears down the cycle without advancing the step. Armed
// flushers still run so shadow structures are recycled rather than leaked;
// recovery of the data itself is the scheduler's responsibility.
func (c *Clock) AbortCycle() {
	if !c.inCycle {
		panic("update: no cycle to abort")
	}
	for _, f := range c.flushers {
		f()
	}
	c.flushers = c.flushers[:0]
	c.inCycle = false
}

// RunCycle opens a cycle, runs body, and completes the cycle. If body
// panics the cycle is aborted and the panic re-raised.
func (c *Clock) RunCycle(body func()) {
	c.StartCycle()
	defer func() {
		if r := recover(); r != nil {
			c.AbortCycle()
			panic(r)
		}
		c.CompleteCycle()
	}()
	body()
}

// String renders the clock state.
func (c *Clock) String() string {
	return fmt.Sprintf("clock{step=%d active=%v}", c.step, c.inCycle)
}
