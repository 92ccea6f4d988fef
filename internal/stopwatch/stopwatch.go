// Package stopwatch provides the race timer driven by the start, stop and reset controls.
package stopwatch

import (
	"fmt"
	"sync"
	"time"
)

// State is a point-in-time view of the stopwatch.
type State struct {
	Running   bool   `json:"running"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Display   string `json:"display"`
}

// Option configures a Stopwatch.
type Option func(*Stopwatch)

// WithClock replaces time.Now as the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Stopwatch) {
		s.now = now
	}
}

// Stopwatch accumulates running time across start/stop cycles. It is safe for concurrent use.
type Stopwatch struct {
	mu        sync.Mutex
	now       func() time.Time
	running   bool
	startedAt time.Time
	elapsed   time.Duration // accumulated before startedAt
}

// New returns a stopped Stopwatch at zero.
func New(opts ...Option) *Stopwatch {
	s := &Stopwatch{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start starts or resumes timing. It does nothing if already running.
func (s *Stopwatch) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.startedAt = s.now()
}

// Stop pauses timing and keeps the elapsed time. It does nothing if stopped.
func (s *Stopwatch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.elapsed += s.now().Sub(s.startedAt)
	s.running = false
}

// Reset stops the stopwatch and clears the elapsed time.
func (s *Stopwatch) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.elapsed = 0
	s.startedAt = time.Time{}
}

// Running reports whether the stopwatch is timing.
func (s *Stopwatch) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Elapsed returns the total timed duration.
func (s *Stopwatch) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

// elapsedLocked returns the total timed duration. Caller must hold s.mu.
func (s *Stopwatch) elapsedLocked() time.Duration {
	if !s.running {
		return s.elapsed
	}
	return s.elapsed + s.now().Sub(s.startedAt)
}

// Display returns the elapsed time formatted for the time display.
func (s *Stopwatch) Display() string {
	return Format(s.Elapsed())
}

// Snapshot returns the current state.
func (s *Stopwatch) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.elapsedLocked()
	return State{
		Running:   s.running,
		ElapsedMS: d.Milliseconds(),
		Display:   Format(d),
	}
}

// Format renders d as minutes:seconds:hundredths, e.g. 1:05:42.
// Negative durations are shown as zero.
func Format(d time.Duration) string {
	d = max(d, 0)
	cs := int64(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d", cs/6000, cs/100%60, cs%100)
}
