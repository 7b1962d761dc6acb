// internal/dashboard/flows.go
package dashboard

import (
	"github.com/tamzrod/inverter-monitor/internal/status"
	"github.com/tamzrod/inverter-monitor/internal/telemetry"
)

// Flows is the set of lit energy-flow paths on the power diagram.
type Flows struct {
	Solar            bool `json:"solar"`
	Output           bool `json:"output"`
	Grid             bool `json:"grid"`
	BatteryDischarge bool `json:"battery_discharge"`
	BatteryCharge    bool `json:"battery_charge"`
}

// FlowsOf derives the flow paths from a snapshot.
// Each path lights only on a strictly positive numeric reading.
func FlowsOf(s telemetry.Snapshot) Flows {
	return Flows{
		Solar:            s.PVPower.Positive(),
		Output:           s.ACOutputPower.Positive(),
		Grid:             s.GridVoltage.Positive(),
		BatteryDischarge: s.BatteryDischargeCurrent.Positive(),
		BatteryCharge:    s.BatteryChargingCurrent.Positive(),
	}
}

// Charging is the battery down-arrow.
func (f Flows) Charging() bool { return f.BatteryCharge }

// Discharging is the battery up-arrow.
func (f Flows) Discharging() bool { return f.BatteryDischarge }

// Bits packs the flows into the mirror's bitmask.
func (f Flows) Bits() uint16 {
	var b uint16
	if f.Solar {
		b |= status.FlowSolar
	}
	if f.Output {
		b |= status.FlowOutput
	}
	if f.Grid {
		b |= status.FlowGrid
	}
	if f.BatteryDischarge {
		b |= status.FlowBatteryDischarge
	}
	if f.BatteryCharge {
		b |= status.FlowBatteryCharge
	}
	return b
}
