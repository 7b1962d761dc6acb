// internal/status/encode.go
package status

// Encode converts a Snapshot into the live part of a status block.
// Layout is protocol-locked.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotConnection] = s.Connection
	regs[SlotStateOfCharge] = s.StateOfCharge
	regs[SlotModeCode] = s.ModeCode
	regs[SlotSecondsSinceReading] = s.SecondsSinceReading
	regs[SlotAlertLevel] = s.AlertLevel
	regs[SlotFlows] = s.Flows

	return regs
}
