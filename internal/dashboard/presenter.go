// internal/dashboard/presenter.go
package dashboard

import (
	"math"
	"strconv"
	"time"

	"github.com/tamzrod/inverter-monitor/internal/mode"
	"github.com/tamzrod/inverter-monitor/internal/soc"
	"github.com/tamzrod/inverter-monitor/internal/status"
	"github.com/tamzrod/inverter-monitor/internal/telemetry"
)

// ClockLayout is the wall-clock format of the currentTime widget.
const ClockLayout = "Jan 2, 2006, 03:04:05 PM"

// Presenter turns snapshots into renderer calls.
// It holds no state of its own between snapshots.
type Presenter struct {
	r       Renderer
	monitor *status.Monitor
	curve   soc.Curve
}

// NewPresenter builds a presenter drawing into r.
// A nil monitor uses the wall clock and default thresholds.
func NewPresenter(r Renderer, m *status.Monitor) *Presenter {
	if m == nil {
		m = status.NewMonitor(nil, status.Thresholds{})
	}
	return &Presenter{r: r, monitor: m, curve: soc.LiFePO4}
}

type valueField struct {
	field Field
	unit  string
	read  func(telemetry.Snapshot) telemetry.Reading
}

type textField struct {
	field  Field
	prefix string
	suffix string
	read   func(telemetry.Snapshot) telemetry.Reading
}

var valueFields = []valueField{
	{FieldACOutputPower, "W", func(s telemetry.Snapshot) telemetry.Reading { return s.ACOutputPower }},
	{FieldOutputApparentPower, "VA", func(s telemetry.Snapshot) telemetry.Reading { return s.OutputApparentPower }},
	{FieldLoadPercentage, "", func(s telemetry.Snapshot) telemetry.Reading { return s.LoadPercentage }},
	{FieldACOutputVoltage, "V", func(s telemetry.Snapshot) telemetry.Reading { return s.ACOutputVoltage }},
	{FieldPVPower, "W", func(s telemetry.Snapshot) telemetry.Reading { return s.PVPower }},
	{FieldPVVoltage, "V", func(s telemetry.Snapshot) telemetry.Reading { return s.PVVoltage }},
	{FieldPVChargingPower, "A", func(s telemetry.Snapshot) telemetry.Reading { return s.PVChargingPower }},
	{FieldBatteryVoltage, "V", func(s telemetry.Snapshot) telemetry.Reading { return s.BatteryVoltage }},
	{FieldHeatSinkTemp, "°C", func(s telemetry.Snapshot) telemetry.Reading { return s.HeatSinkTemp }},
	{FieldGridVoltage, "V", func(s telemetry.Snapshot) telemetry.Reading { return s.GridVoltage }},
	{FieldBusVoltage, "V", func(s telemetry.Snapshot) telemetry.Reading { return s.BusVoltage }},
}

var textFields = []textField{
	{field: FieldACOutputFrequency, suffix: " Hz", read: func(s telemetry.Snapshot) telemetry.Reading { return s.ACOutputFrequency }},
	{field: FieldBatteryChargingCurrent, suffix: "A", read: func(s telemetry.Snapshot) telemetry.Reading { return s.BatteryChargingCurrent }},
	{field: FieldBatteryDischargeCurrent, suffix: "A", read: func(s telemetry.Snapshot) telemetry.Reading { return s.BatteryDischargeCurrent }},
	{field: FieldGridFrequency, suffix: " Hz", read: func(s telemetry.Snapshot) telemetry.Reading { return s.GridFrequency }},
	{field: FieldStatusCode, read: func(s telemetry.Snapshot) telemetry.Reading { return s.DeviceStatus }},
	{field: FieldStatusBits, read: func(s telemetry.Snapshot) telemetry.Reading { return s.StatusBits }},
	{field: FieldStatusBinary, prefix: "Binary: ", read: func(s telemetry.Snapshot) telemetry.Reading { return s.StatusBits }},
	{field: FieldFanBatteryOffset, read: func(s telemetry.Snapshot) telemetry.Reading { return s.FanBatteryOffset }},
	{field: FieldEEPROMFirmware, read: func(s telemetry.Snapshot) telemetry.Reading { return s.EEPROMFirmware }},
	{field: FieldReserved, read: func(s telemetry.Snapshot) telemetry.Reading { return s.Reserved }},
	{field: FieldLastUpdateTime, read: func(s telemetry.Snapshot) telemetry.Reading { return s.LastUpdated }},
}

// Apply renders one snapshot and returns what was derived from it.
// Every field is rendered independently; a missing value degrades only its own widget.
func (p *Presenter) Apply(s telemetry.Snapshot) Frame {
	f := Frame{Snapshot: s}

	for _, vf := range valueFields {
		p.value(vf.field, vf.read(s), vf.unit)
	}
	p.loadAmpere(s)

	for _, tf := range textFields {
		r := tf.read(s)
		if !r.Present() {
			p.r.SetText(tf.field, Placeholder)
			continue
		}
		p.r.SetText(tf.field, tf.prefix+r.String()+tf.suffix)
	}

	f.Mode = mode.Resolve(s.StatusCode())
	p.r.SetMode(f.Mode)

	f.Flows = FlowsOf(s)
	p.r.SetFlows(f.Flows)

	// battery_capacity shows the interpolated state of charge, not the served value
	if v, ok := s.BatteryVoltage.Float(); ok {
		f.StateOfCharge = p.curve.Percent(v)
		f.HasStateOfCharge = true
		p.r.SetValue(FieldBatteryCapacity, Quantity{Value: float64(f.StateOfCharge), Unit: "%"})
	} else {
		p.r.SetText(FieldBatteryCapacity, Placeholder)
	}

	if s.HasTimestamp {
		c := p.monitor.Check(s.Timestamp)
		f.HasTimestamp = true
		f.Connection = c.State
		f.Elapsed = c.Elapsed
		p.r.SetText(FieldLastReadingTime, c.State.Label())
		p.r.SetAlert(c.State.Alert())
	} else {
		p.r.SetText(FieldLastReadingTime, status.MissingTimestamp)
	}

	Flush(p.r)
	return f
}

// Tick renders the wall clock and the countdown.
func (p *Presenter) Tick(now time.Time, remaining int) {
	p.r.SetText(FieldCurrentTime, now.Format(ClockLayout))
	p.r.SetText(FieldCountdown, strconv.Itoa(remaining))
	Flush(p.r)
}

func (p *Presenter) value(field Field, r telemetry.Reading, unit string) {
	v, ok := r.Float()
	if !ok {
		p.r.SetText(field, Placeholder)
		return
	}
	p.r.SetValue(field, Quantity{Value: v, Unit: unit})
}

func (p *Presenter) loadAmpere(s telemetry.Snapshot) {
	w, okW := s.ACOutputPower.Float()
	v, okV := s.ACOutputVoltage.Float()
	if !okW || !okV {
		p.r.SetText(FieldLoadAmpere, Placeholder)
		return
	}

	a := math.Round(w/v*100) / 100
	if math.IsNaN(a) || math.IsInf(a, 0) {
		p.r.SetText(FieldLoadAmpere, Placeholder)
		return
	}
	p.r.SetValue(FieldLoadAmpere, Quantity{Value: a, Unit: "A"})
}
