package ieee802154

import "time"

// DeadlineTimer is a Timer backed by the monotonic clock.
// The zero value is a stopped timer.
type DeadlineTimer struct {
	deadline time.Time
	running  bool
}

// Start arms the timer to expire micros microseconds from now.
func (t *DeadlineTimer) Start(micros uint32) {
	t.deadline = time.Now().Add(time.Duration(micros) * time.Microsecond)
	t.running = true
}

// ResetIfFinished reports whether the timer has expired, stopping it if so.
func (t *DeadlineTimer) ResetIfFinished() bool {
	if !t.running || time.Now().Before(t.deadline) {
		return false
	}
	t.running = false
	return true
}

// Delay busy-waits for micros microseconds using t.
func Delay(t Timer, micros uint32) {
	t.Start(micros)
	for !t.ResetIfFinished() {
	}
}
