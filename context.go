package fitdecode

import (
	"time"

	"github.com/lucasjlepore/fit-decoder/fields"
)

// rollover16 is the largest value of the rolling 16-bit timestamp counter.
const rollover16 = 65535

// offset5Mask covers the 5-bit time offset carried by compressed record
// headers.
const offset5Mask = 0x1F

// Context carries the cross-record state for decoding one file: the last
// absolute timestamp seen, the timestamp assigned to the most recent
// record, and the anchor used to unroll 16-bit rolling timestamps. One
// context serves exactly one file; it is not safe for concurrent use.
type Context struct {
	// matched16 is the 16-bit counter value first anchored against the
	// current absolute-timestamp epoch. It stays put until the next
	// absolute timestamp resets it, so later counters always measure their
	// delta against the same anchor.
	matched16 *uint16

	// lastOffset5 is the previous 5-bit time offset, seeded from the low
	// bits of each absolute timestamp.
	lastOffset5 int

	lastAbsolute  time.Time
	lastTimestamp time.Time
}

// NewContext returns an empty per-file decode context.
func NewContext() *Context {
	return &Context{}
}

// LastTimestamp returns the timestamp assigned to the most recently
// decoded record.
func (c *Context) LastTimestamp() time.Time { return c.lastTimestamp }

// setAbsolute adopts a full absolute timestamp, resets the rolling counter
// anchor for the new epoch, and re-seeds the compressed time offset from
// the timestamp's low bits.
func (c *Context) setAbsolute(ts time.Time) {
	c.lastAbsolute = ts
	c.matched16 = nil
	c.lastOffset5 = int(ts.Sub(fields.Epoch)/time.Second) & offset5Mask
}

// advanceCompressed rolls the carried timestamp forward by a compressed
// record header's 5-bit time offset. Offsets mirror the low bits of the
// absolute timestamp they compress away, so the delta is taken modulo 32
// against the previous offset. Without a reference timestamp the offset
// cannot be anchored and the carried timestamp stays put.
func (c *Context) advanceCompressed(offset uint8) time.Time {
	if c.lastTimestamp.IsZero() {
		return c.lastTimestamp
	}
	delta := (int(offset) - c.lastOffset5) & offset5Mask
	c.lastOffset5 = int(offset)
	return c.lastTimestamp.Add(time.Duration(delta) * time.Second)
}

// unroll converts a 16-bit rolling counter value into an absolute
// timestamp. The first counter of an epoch becomes the anchor with delta
// zero; later counters measure against that same anchor, going through the
// wrap correction when the counter has rolled past the maximum.
func (c *Context) unroll(ts16 uint16) time.Time {
	var delta int
	switch {
	case c.matched16 == nil:
		anchor := ts16
		c.matched16 = &anchor
	case ts16 >= *c.matched16:
		delta = int(ts16) - int(*c.matched16)
	default:
		delta = (int(*c.matched16) - rollover16) + int(ts16)
	}
	return c.lastAbsolute.Add(time.Duration(delta) * time.Second)
}
