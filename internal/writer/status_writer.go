// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/inverter-monitor/internal/status"
)

// StatusWriter is the delivery-only contract for the status mirror.
// It receives a snapshot and writes it verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter mirrors one status block into holding registers.
type deviceStatusWriter struct {
	plan Plan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

// liveSlot is one incrementally written register.
type liveSlot struct {
	name string
	addr uint16
	get  func(*status.Snapshot) *uint16
}

var liveSlots = []liveSlot{
	{"connection", status.SlotConnection, func(s *status.Snapshot) *uint16 { return &s.Connection }},
	{"state_of_charge", status.SlotStateOfCharge, func(s *status.Snapshot) *uint16 { return &s.StateOfCharge }},
	{"mode_code", status.SlotModeCode, func(s *status.Snapshot) *uint16 { return &s.ModeCode }},
	{"seconds_since_reading", status.SlotSecondsSinceReading, func(s *status.Snapshot) *uint16 { return &s.SecondsSinceReading }},
	{"alert_level", status.SlotAlertLevel, func(s *status.Snapshot) *uint16 { return &s.AlertLevel }},
	{"flows", status.SlotFlows, func(s *status.Snapshot) *uint16 { return &s.Flows }},
}

// NewDeviceStatusWriter builds a status writer over cli.
func NewDeviceStatusWriter(plan Plan, cli endpointClient) (StatusWriter, error) {
	if cli == nil {
		return nil, fmt.Errorf("status writer: missing client for endpoint %s", plan.Endpoint)
	}
	if int(plan.Slot)*status.SlotsPerDevice > 0xFFFF-status.SlotsPerDevice {
		return nil, fmt.Errorf("status writer: slot %d out of range", plan.Slot)
	}

	return &deviceStatusWriter{
		plan:     plan,
		cli:      cli,
		needFull: true, // full re-assert on first successful write
		nameRegs: encodeDeviceNameRegs(plan.DeviceName),
	}, nil
}

// WriteStatus delivers a snapshot into status memory.
// On any write failure, the next call re-asserts the full block.
func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	baseAddr := sw.baseAddr()

	if sw.needFull {
		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr, sw.fullBlockRegs(s)); err != nil {
			sw.needFull = true
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}

		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	for _, ls := range liveSlots {
		want := *ls.get(&s)
		have := ls.get(&sw.last)
		if *have == want {
			continue
		}

		if err := sw.cli.WriteRegisters(sw.plan.UnitID, baseAddr+ls.addr, []uint16{want}); err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", ls.addr, ls.name, err))
			continue
		}
		*have = want
	}

	if len(errs) > 0 {
		// any partial failure introduces doubt: re-assert on next write
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}

	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	return sw.plan.Slot * status.SlotsPerDevice
}

func (sw *deviceStatusWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)

	// reserved slots stay zero; device name lives at the end of the block
	for i := 0; i < status.SlotDeviceNameSlots && i < len(sw.nameRegs); i++ {
		regs[status.SlotDeviceNameStart+i] = sw.nameRegs[i]
	}

	return regs
}

// encodeDeviceNameRegs packs up to 16 ASCII characters into 8 registers,
// two bytes per register, big-endian.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < status.DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
