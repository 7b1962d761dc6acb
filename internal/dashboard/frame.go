// internal/dashboard/frame.go
package dashboard

import (
	"time"

	"github.com/tamzrod/inverter-monitor/internal/mode"
	"github.com/tamzrod/inverter-monitor/internal/status"
	"github.com/tamzrod/inverter-monitor/internal/telemetry"
)

// Frame is everything derived from one applied snapshot.
type Frame struct {
	Snapshot telemetry.Snapshot

	StateOfCharge    int
	HasStateOfCharge bool

	Mode  mode.Mode
	Flows Flows

	// Connection and Elapsed are meaningful only when HasTimestamp.
	Connection   status.State
	HasTimestamp bool
	Elapsed      time.Duration
}

// Alert is the alert level the frame painted. No timestamp means no alert.
func (f Frame) Alert() status.Alert {
	if !f.HasTimestamp {
		return status.AlertNone
	}
	return f.Connection.Alert()
}

// Status projects the frame onto the mirror's register snapshot.
func (f Frame) Status() status.Snapshot {
	s := status.Snapshot{
		Connection:          status.ConnectionCode(f.Connection, f.HasTimestamp),
		StateOfCharge:       status.Unavailable,
		ModeCode:            status.Unavailable,
		SecondsSinceReading: status.Unavailable,
		AlertLevel:          uint16(f.Alert()),
		Flows:               f.Flows.Bits(),
	}

	if f.HasStateOfCharge {
		s.StateOfCharge = uint16(f.StateOfCharge)
	}
	if n, ok := f.Mode.Numeric(); ok {
		s.ModeCode = status.Saturate(int64(n))
	}
	if f.HasTimestamp {
		s.SecondsSinceReading = status.Saturate(int64(f.Elapsed / time.Second))
	}
	return s
}
