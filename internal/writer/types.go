// internal/writer/types.go
package writer

// Plan is the fully-built status mirror plan.
type Plan struct {
	Endpoint   string
	UnitID     uint8
	Slot       uint16 // block index; the block starts at Slot*SlotsPerDevice
	DeviceName string
}

// endpointClient is the exact contract the writer uses.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
