// Package rollover tracks the Rollover Count that Extended Format messages
// mix into their CRC seed. The count is never transmitted; each side of a
// connection derives it independently from the running 16-bit time-stamp
// counter and the connection's Initial Rollover Value, established at
// SafetyOpen (the Initial_RV field of the Network Segment Safety).
package rollover

// Counter tracks the Rollover Count for one connection direction. A new
// Counter starts at the Initial Rollover Value established by the
// SafetyOpen request/response before any message flows.
type Counter struct {
	initial uint16
	current uint16
	lastTS  uint16
	primed  bool
}

// NewCounter returns a Counter seeded at initialValue, mirroring the
// Initial Rollover Value carried in a connection's Network Segment Safety.
func NewCounter(initialValue uint16) *Counter {
	return &Counter{initial: initialValue, current: initialValue}
}

// Value returns the Rollover Count to mix into the next message's CRC seed.
func (c *Counter) Value() uint16 {
	return c.current
}

// Reset returns the counter to its connection-open Initial Rollover Value,
// for use when a connection is re-opened without reallocating its Counter.
func (c *Counter) Reset() {
	c.current = c.initial
	c.primed = false
}

// Observe advances the counter from the 16-bit time-stamp value carried in
// the message just produced or accepted. The time stamp wraps at 0xFFFF;
// every wrap (a new value numerically less than or equal to the last one
// seen) increments the Rollover Count by one, exactly as a 128 µs counter
// overflowing its 16 bits would.
func (c *Counter) Observe(timeStamp uint16) {
	if c.primed && timeStamp <= c.lastTS {
		c.current++
	}
	c.lastTS = timeStamp
	c.primed = true
}
