package booking

import "time"

const (
	DefaultModificationWindow = 48 * time.Hour
	DefaultMaxReschedules     = 1
)

// ModificationPolicy decides whether a confirmed booking may still be changed.
// Implementations must be pure so they can run inside a store transaction.
type ModificationPolicy interface {
	// WindowOpen reports whether enough time remains before bookingDate.
	WindowOpen(bookingDate, now time.Time) bool
	// RescheduleAllowed reports whether another reschedule is within the limit.
	RescheduleAllowed(rescheduledCount int) bool
	// Window is the minimum lead time quoted back to the caller on rejection.
	Window() time.Duration
}

type DefaultModificationPolicy struct {
	window         time.Duration
	maxReschedules int
}

func NewDefaultModificationPolicy(window time.Duration, maxReschedules int) *DefaultModificationPolicy {
	return &DefaultModificationPolicy{
		window:         window,
		maxReschedules: maxReschedules,
	}
}

// WindowOpen is inclusive: exactly Window before the booking still permits changes.
func (p *DefaultModificationPolicy) WindowOpen(bookingDate, now time.Time) bool {
	return bookingDate.Sub(now) >= p.window
}

func (p *DefaultModificationPolicy) RescheduleAllowed(rescheduledCount int) bool {
	return rescheduledCount < p.maxReschedules
}

func (p *DefaultModificationPolicy) Window() time.Duration {
	return p.window
}
