// internal/status/snapshot.go
package status

// Snapshot represents exactly what the mirror writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Connection          uint16
	StateOfCharge       uint16
	ModeCode            uint16
	SecondsSinceReading uint16
	AlertLevel          uint16
	Flows               uint16
}

// ConnectionCode maps a check to its mirror code.
// hasTimestamp=false yields CodeNoTimestamp regardless of state.
func ConnectionCode(s State, hasTimestamp bool) uint16 {
	if !hasTimestamp {
		return CodeNoTimestamp
	}
	switch s {
	case Connected:
		return CodeConnected
	case Slow:
		return CodeSlow
	case Lost:
		return CodeLost
	}
	return CodeNoTimestamp
}

// Saturate clamps a non-negative count into a register.
func Saturate(n int64) uint16 {
	if n < 0 {
		return 0
	}
	if n > 65535 {
		return 65535
	}
	return uint16(n)
}
