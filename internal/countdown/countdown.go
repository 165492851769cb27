// Package countdown implements the exam timer as a pure state machine.
// Callers feed elapsed time in via Tick and react to the returned
// events; the package itself never touches a clock, which keeps the
// threshold logic testable without sleeping.
package countdown

import "time"

// EventKind discriminates countdown events.
type EventKind string

const (
	// EventWarning fires once per registered threshold when the
	// remaining time first drops to or below it.
	EventWarning EventKind = "warning"
	// EventExpired fires exactly once when the countdown hits zero.
	EventExpired EventKind = "expired"
)

// Event is emitted by Tick when a threshold is crossed.
type Event struct {
	Kind      EventKind
	Remaining time.Duration
	// Threshold is the registered mark that triggered a warning; zero
	// for expiry.
	Threshold time.Duration
}

type threshold struct {
	at    time.Duration
	fired bool
}

// Countdown counts a fixed budget down through Tick calls. Not safe for
// concurrent use; the owning connection loop serializes access.
type Countdown struct {
	remaining  time.Duration
	paused     bool
	expired    bool
	thresholds []threshold
}

// New creates a countdown with the given budget. Each warning mark
// produces one EventWarning when remaining time first reaches it; marks
// at or above the budget are dropped.
func New(budget time.Duration, warnings ...time.Duration) *Countdown {
	c := &Countdown{remaining: budget}
	for _, w := range warnings {
		if w > 0 && w < budget {
			c.thresholds = append(c.thresholds, threshold{at: w})
		}
	}
	return c
}

// Tick advances the countdown by delta and returns any events crossed.
// Ticking while paused or after expiry returns nothing. A delta large
// enough to cross several thresholds at once reports all of them, in
// descending threshold order, with expiry last.
func (c *Countdown) Tick(delta time.Duration) []Event {
	if c.paused || c.expired || delta <= 0 {
		return nil
	}

	c.remaining -= delta
	if c.remaining < 0 {
		c.remaining = 0
	}

	var events []Event
	for i := range c.thresholds {
		t := &c.thresholds[i]
		if !t.fired && c.remaining <= t.at {
			t.fired = true
			events = append(events, Event{Kind: EventWarning, Remaining: c.remaining, Threshold: t.at})
		}
	}
	if c.remaining == 0 {
		c.expired = true
		events = append(events, Event{Kind: EventExpired})
	}
	return events
}

// Pause freezes the countdown. Reports whether the state changed.
func (c *Countdown) Pause() bool {
	if c.paused || c.expired {
		return false
	}
	c.paused = true
	return true
}

// Resume unfreezes the countdown. Reports whether the state changed.
func (c *Countdown) Resume() bool {
	if !c.paused || c.expired {
		return false
	}
	c.paused = false
	return true
}

// Remaining returns the time left on the clock.
func (c *Countdown) Remaining() time.Duration { return c.remaining }

// Paused reports whether the countdown is frozen.
func (c *Countdown) Paused() bool { return c.paused }

// Expired reports whether the countdown has run out.
func (c *Countdown) Expired() bool { return c.expired }
