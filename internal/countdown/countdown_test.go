package countdown

import (
	"testing"
	"time"
)

func TestTickCountsDown(t *testing.T) {
	c := New(10 * time.Minute)

	if events := c.Tick(3 * time.Minute); len(events) != 0 {
		t.Fatalf("expected no events, got %v", events)
	}
	if got := c.Remaining(); got != 7*time.Minute {
		t.Errorf("remaining = %v, want 7m", got)
	}
}

func TestWarningFiresOncePerThreshold(t *testing.T) {
	c := New(10*time.Minute, 5*time.Minute)

	events := c.Tick(5 * time.Minute)
	if len(events) != 1 || events[0].Kind != EventWarning {
		t.Fatalf("expected one warning, got %v", events)
	}
	if events[0].Threshold != 5*time.Minute {
		t.Errorf("threshold = %v, want 5m", events[0].Threshold)
	}

	// Another tick below the same threshold must stay silent.
	if events := c.Tick(time.Minute); len(events) != 0 {
		t.Errorf("warning fired twice: %v", events)
	}
}

func TestLargeTickCrossesEverything(t *testing.T) {
	c := New(10*time.Minute, 5*time.Minute, time.Minute)

	events := c.Tick(time.Hour)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %v", events)
	}
	if events[0].Kind != EventWarning || events[1].Kind != EventWarning {
		t.Errorf("expected two warnings first, got %v", events)
	}
	if events[2].Kind != EventExpired {
		t.Errorf("expected expiry last, got %v", events[2])
	}
	if !c.Expired() {
		t.Error("countdown should be expired")
	}
	if c.Remaining() != 0 {
		t.Errorf("remaining = %v, want 0", c.Remaining())
	}
}

func TestExpiredFiresOnce(t *testing.T) {
	c := New(time.Minute)

	if events := c.Tick(time.Minute); len(events) != 1 || events[0].Kind != EventExpired {
		t.Fatalf("expected expiry, got %v", events)
	}
	if events := c.Tick(time.Minute); len(events) != 0 {
		t.Errorf("expiry fired twice: %v", events)
	}
}

func TestPauseFreezesClock(t *testing.T) {
	c := New(10 * time.Minute)

	if !c.Pause() {
		t.Fatal("pause should change state")
	}
	if c.Pause() {
		t.Error("second pause should be a no-op")
	}
	if events := c.Tick(time.Hour); len(events) != 0 {
		t.Errorf("paused tick produced events: %v", events)
	}
	if got := c.Remaining(); got != 10*time.Minute {
		t.Errorf("remaining changed while paused: %v", got)
	}

	if !c.Resume() {
		t.Fatal("resume should change state")
	}
	if c.Resume() {
		t.Error("second resume should be a no-op")
	}
	c.Tick(time.Minute)
	if got := c.Remaining(); got != 9*time.Minute {
		t.Errorf("remaining = %v, want 9m", got)
	}
}

func TestResumeAfterExpiryRejected(t *testing.T) {
	c := New(time.Second)
	c.Tick(time.Second)

	if c.Pause() || c.Resume() {
		t.Error("expired countdown should ignore pause/resume")
	}
}

func TestThresholdAboveBudgetDropped(t *testing.T) {
	c := New(time.Minute, 2*time.Minute)

	events := c.Tick(time.Second)
	if len(events) != 0 {
		t.Errorf("out-of-range threshold fired: %v", events)
	}
}
