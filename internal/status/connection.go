// internal/status/connection.go
package status

import (
	"time"
)

// State is the connection-health classification of the latest telemetry.
type State uint8

const (
	Connected State = iota + 1
	Slow
	Lost
)

func (s State) String() string {
	switch s {
	case Connected:
		return "connected"
	case Slow:
		return "slow"
	case Lost:
		return "lost"
	}
	return "invalid"
}

// Label is the human-facing text shown next to the last reading time.
func (s State) Label() string {
	switch s {
	case Connected:
		return "Connected"
	case Slow:
		return "Slow Connection"
	case Lost:
		return "Connection Lost"
	}
	return ""
}

// Alert is the whole-surface alert intensity for the host UI.
type Alert uint8

const (
	AlertNone   Alert = iota // baseline visual
	AlertMild                // yellow pulse
	AlertStrong              // red pulse
)

func (a Alert) String() string {
	switch a {
	case AlertMild:
		return "mild"
	case AlertStrong:
		return "strong"
	}
	return "none"
}

// Alert returns the alert intensity paired with the state.
func (s State) Alert() Alert {
	switch s {
	case Slow:
		return AlertMild
	case Lost:
		return AlertStrong
	}
	return AlertNone
}

// MissingTimestamp is shown instead of a state when the snapshot carries no timestamp.
const MissingTimestamp = "⚠️ Missing timestamp"

// Thresholds are the lower bounds of the slow and lost bands.
type Thresholds struct {
	Slow time.Duration
	Lost time.Duration
}

// DefaultThresholds: slow from 30 s, lost from 50 s.
var DefaultThresholds = Thresholds{
	Slow: 30 * time.Second,
	Lost: 50 * time.Second,
}

// Classify maps the age of the last reading to a state.
// Each band is inclusive on its lower bound.
func (t Thresholds) Classify(elapsed time.Duration) State {
	switch {
	case elapsed >= t.Lost:
		return Lost
	case elapsed >= t.Slow:
		return Slow
	default:
		return Connected
	}
}

// Check is one connection classification.
type Check struct {
	State   State
	Elapsed time.Duration
}

// Monitor classifies telemetry freshness against a clock.
// Callers must not pass a missing timestamp; see MissingTimestamp.
type Monitor struct {
	now        func() time.Time
	thresholds Thresholds
}

// NewMonitor builds a monitor. A nil clock means time.Now; zero thresholds mean the defaults.
func NewMonitor(now func() time.Time, t Thresholds) *Monitor {
	if now == nil {
		now = time.Now
	}
	if t.Slow <= 0 {
		t.Slow = DefaultThresholds.Slow
	}
	if t.Lost <= 0 {
		t.Lost = DefaultThresholds.Lost
	}
	return &Monitor{now: now, thresholds: t}
}

// Check classifies the connection given the snapshot's last reading time.
func (m *Monitor) Check(lastReading time.Time) Check {
	elapsed := m.now().Sub(lastReading)
	return Check{
		State:   m.thresholds.Classify(elapsed),
		Elapsed: elapsed,
	}
}
