package link

import "time"

// Clock is a monotonic millisecond counter which wraps at 32 bits.
// All comparisons use unsigned subtraction.
type Clock interface {
	Millis() uint32
}

// SystemClock counts milliseconds since its creation.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a SystemClock starting at 0.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Millis implements Clock.
func (c *SystemClock) Millis() uint32 {
	return uint32(time.Since(c.start) / time.Millisecond)
}

func durationMillis(d time.Duration) uint32 {
	return uint32(d / time.Millisecond)
}
