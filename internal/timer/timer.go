// Package timer holds the shared kitchen-timer state machine used by
// the command interpreter. A timer moves Idle -> Running -> Ringing ->
// Idle, with Stop valid from Running or Ringing. All deadlines come
// from the monotonic clock so wall-clock changes never fire or delay
// an alarm.
package timer

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPollInterval = 200 * time.Millisecond
	defaultRingFor      = 5 * time.Second
	ringGap             = 300 * time.Millisecond
)

// Sounder plays one iteration of the alarm pattern. Implementations
// must return promptly so the ring loop can observe cancellation.
type Sounder interface {
	RingOnce()
}

// NopSounder silently discards the alarm. Useful on headless nodes
// and in tests.
type NopSounder struct{}

func (NopSounder) RingOnce() {}

// Config controls engine timing. Zero values fall back to defaults.
type Config struct {
	PollInterval time.Duration
	RingFor      time.Duration
}

// Engine is the single shared timer instance. Safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	logger   *zap.Logger
	sounder  Sounder
	poll     time.Duration
	ringFor  time.Duration
	deadline time.Time
	active   bool
	ringing  bool
	cancel   chan struct{}
}

func NewEngine(cfg Config, sounder Sounder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sounder == nil {
		sounder = NopSounder{}
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	ringFor := cfg.RingFor
	if ringFor <= 0 {
		ringFor = defaultRingFor
	}
	return &Engine{
		logger:  logger,
		sounder: sounder,
		poll:    poll,
		ringFor: ringFor,
	}
}

// Set replaces any existing timer with a new one and reports the
// confirmation sentence.
func (e *Engine) Set(d time.Duration) string {
	if d <= 0 {
		return "Timer duration must be positive."
	}
	e.Stop()

	e.mu.Lock()
	cancel := make(chan struct{})
	e.cancel = cancel
	e.deadline = time.Now().Add(d)
	e.active = true
	e.ringing = false
	e.mu.Unlock()

	e.logger.Info("timer set", zap.Duration("duration", d))
	go e.run(cancel, d)
	return fmt.Sprintf("Timer set for %s.", FormatDuration(d))
}

// TimeLeft is a pure read of the remaining duration.
func (e *Engine) TimeLeft() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return "No active timer."
	}
	left := time.Until(e.deadline)
	if left <= 0 {
		return "Timer has finished."
	}
	return fmt.Sprintf("%s remaining.", FormatDuration(left))
}

// Stop cancels a running or ringing timer. Calling it with no timer
// active is a no-op.
func (e *Engine) Stop() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return "No active timer."
	}
	close(e.cancel)
	e.cancel = nil
	e.active = false
	e.ringing = false
	e.deadline = time.Time{}
	return "Timer stopped."
}

// Ringing reports whether the alarm is currently sounding.
func (e *Engine) Ringing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ringing
}

// Close stops any running timer. The engine stays usable afterwards.
func (e *Engine) Close() {
	e.Stop()
}

func (e *Engine) run(cancel chan struct{}, d time.Duration) {
	deadline := time.Now().Add(d)
	ticker := time.NewTicker(e.poll)
	defer ticker.Stop()

	for time.Until(deadline) > 0 {
		select {
		case <-cancel:
			return
		case <-ticker.C:
		}
	}

	e.mu.Lock()
	if e.cancel != cancel {
		// replaced or stopped while we were waiting
		e.mu.Unlock()
		return
	}
	e.ringing = true
	e.mu.Unlock()

	e.logger.Info("timer finished, ringing")
	ringUntil := time.Now().Add(e.ringFor)
	for time.Until(ringUntil) > 0 {
		select {
		case <-cancel:
			return
		default:
		}
		e.sounder.RingOnce()
		select {
		case <-cancel:
			return
		case <-time.After(ringGap):
		}
	}

	e.mu.Lock()
	if e.cancel == cancel {
		e.cancel = nil
		e.active = false
		e.ringing = false
		e.deadline = time.Time{}
	}
	e.mu.Unlock()
}

// FormatDuration renders a duration the way it is spoken back:
// "1 hour 5 minutes 20 seconds".
func FormatDuration(d time.Duration) string {
	s := int64(d / time.Second)
	if s < 0 {
		s = 0
	}
	h := s / 3600
	s %= 3600
	m := s / 60
	s %= 60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", h, plural("hour", h)))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", m, plural("minute", m)))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d %s", s, plural("second", s)))
	}
	return strings.Join(parts, " ")
}

func plural(unit string, n int64) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
