package timer

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type countingSounder struct {
	rings atomic.Int32
}

func (c *countingSounder) RingOnce() { c.rings.Add(1) }

func newTestEngine(t *testing.T, sounder Sounder) *Engine {
	t.Helper()
	cfg := Config{
		PollInterval: 5 * time.Millisecond,
		RingFor:      50 * time.Millisecond,
	}
	e := NewEngine(cfg, sounder, zaptest.NewLogger(t))
	t.Cleanup(e.Close)
	return e
}

func TestTimeLeftBeforeExpiry(t *testing.T) {
	e := newTestEngine(t, nil)

	msg := e.Set(5 * time.Second)
	if msg != "Timer set for 5 seconds." {
		t.Errorf("Unexpected set message: %q", msg)
	}

	left := e.TimeLeft()
	if !strings.HasSuffix(left, "remaining.") {
		t.Errorf("Expected remaining duration, got %q", left)
	}
}

func TestTimerRingsAndReturnsToIdle(t *testing.T) {
	sounder := &countingSounder{}
	e := newTestEngine(t, sounder)

	e.Set(20 * time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for !e.Ringing() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !e.Ringing() {
		t.Fatal("Timer never started ringing")
	}

	// after the ringing ceiling the engine must return to idle
	deadline = time.Now().Add(2 * time.Second)
	for e.Ringing() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if e.Ringing() {
		t.Fatal("Ringing did not stop within the ceiling")
	}
	if sounder.rings.Load() == 0 {
		t.Error("Expected at least one alarm iteration")
	}
	if got := e.TimeLeft(); got != "No active timer." {
		t.Errorf("Expected idle state, got %q", got)
	}
}

func TestSetReplacesExistingTimer(t *testing.T) {
	e := newTestEngine(t, nil)

	e.Set(10 * time.Second)
	e.Set(1 * time.Hour)

	left := e.TimeLeft()
	if !strings.Contains(left, "minute") && !strings.Contains(left, "hour") {
		t.Errorf("Expected the second timer's remaining time, got %q", left)
	}
}

func TestStop(t *testing.T) {
	e := newTestEngine(t, nil)

	if got := e.Stop(); got != "No active timer." {
		t.Errorf("Stop on idle engine = %q", got)
	}

	e.Set(10 * time.Second)
	if got := e.Stop(); got != "Timer stopped." {
		t.Errorf("Stop on running timer = %q", got)
	}
	if got := e.Stop(); got != "No active timer." {
		t.Errorf("Second stop = %q", got)
	}
	if got := e.TimeLeft(); got != "No active timer." {
		t.Errorf("TimeLeft after stop = %q", got)
	}
}

func TestStopSilencesRinging(t *testing.T) {
	sounder := &countingSounder{}
	e := newTestEngine(t, sounder)

	e.Set(20 * time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for !e.Ringing() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !e.Ringing() {
		t.Fatal("Timer never started ringing")
	}

	if got := e.Stop(); got != "Timer stopped." {
		t.Errorf("Stop while ringing = %q", got)
	}
	if e.Ringing() {
		t.Error("Still ringing after stop")
	}
}

func TestNegativeDurationRejected(t *testing.T) {
	e := newTestEngine(t, nil)
	if got := e.Set(-time.Second); got != "Timer duration must be positive." {
		t.Errorf("Set(-1s) = %q", got)
	}
	if got := e.TimeLeft(); got != "No active timer." {
		t.Errorf("State changed by invalid set: %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{90 * time.Second, "1 minute 30 seconds"},
		{time.Hour + 5*time.Minute, "1 hour 5 minutes"},
		{2*time.Hour + time.Second, "2 hours 1 second"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.in); got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"set a timer for ten minutes", 10 * time.Minute, true},
		{"two hours fifteen minutes", 2*time.Hour + 15*time.Minute, true},
		{"90s", 90 * time.Second, true},
		{"30 sec", 30 * time.Second, true},
		{"10 secs", 10 * time.Second, true},
		{"5 secnds", 5 * time.Second, true},
		{"2 mins", 2 * time.Minute, true},
		{"an hr", time.Hour, true},
		// the shorthand rewrite must not touch ordinary words
		{"send ten", 0, false},
		{"please send five messages", 0, false},
		{"no duration here", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseDuration(c.in)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseDuration(%q) = %v, %v, want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestHandleIntent(t *testing.T) {
	e := newTestEngine(t, nil)

	msg, handled := e.HandleIntent("set a timer for ten minutes")
	if !handled {
		t.Fatal("set phrase not handled")
	}
	if msg != "Timer set for 10 minutes." {
		t.Errorf("Unexpected set reply: %q", msg)
	}

	msg, handled = e.HandleIntent("how long is left on the timer")
	if !handled || !strings.HasSuffix(msg, "remaining.") {
		t.Errorf("time-left reply = %q (handled=%v)", msg, handled)
	}

	msg, handled = e.HandleIntent("stop the timer")
	if !handled || msg != "Timer stopped." {
		t.Errorf("stop reply = %q (handled=%v)", msg, handled)
	}

	if _, handled = e.HandleIntent("turn on the lamp"); handled {
		t.Error("non-timer phrase was handled")
	}

	msg, handled = e.HandleIntent("set a timer for eleventy snorks")
	if !handled || msg != "I couldn't parse the timer duration." {
		t.Errorf("unparsable duration reply = %q (handled=%v)", msg, handled)
	}
}
