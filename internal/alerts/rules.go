// internal/alerts/rules.go
package alerts

import (
	"fmt"
	"strconv"

	"github.com/tamzrod/inverter-monitor/internal/dashboard"
	"github.com/tamzrod/inverter-monitor/internal/telemetry"
)

type value struct {
	v  float64
	ok bool
}

func valueOf(r telemetry.Reading) value {
	v, ok := r.Float()
	return value{v: v, ok: ok}
}

func (v value) String() string {
	if !v.ok {
		return dashboard.Placeholder
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// readings are the inputs every rule draws from.
type readings struct {
	load, battery, grid, pv, discharge value
}

func readingsOf(s telemetry.Snapshot) readings {
	return readings{
		load:      valueOf(s.ACOutputPower),
		battery:   valueOf(s.BatteryVoltage),
		grid:      valueOf(s.GridVoltage),
		pv:        valueOf(s.PVPower),
		discharge: valueOf(s.BatteryDischargeCurrent),
	}
}

// rule is one alert condition.
// A rule only runs when every input it needs is present.
type rule struct {
	code  string
	title string

	// limit caps sends per episode; 0 means only the cooldown applies
	limit int

	needs func(r readings) bool
	fires func(r readings, gridUp bool) bool
	// resets ends an episode and clears the send counter
	resets  func(r readings) bool
	message func(r readings) string
	// grid, when set, is the grid state recorded after a send
	grid *bool
}

var (
	gridUp   = true
	gridDown = false
)

var rules = []rule{
	{
		code:  CodeBatteryDrainingFast,
		title: "Battery draining fast",
		limit: 2,
		needs: func(r readings) bool { return r.discharge.ok && r.grid.ok && r.pv.ok },
		fires: func(r readings, _ bool) bool {
			return r.discharge.v > 25 && r.grid.v < 10 && r.pv.v < 10
		},
		resets: func(r readings) bool { return r.discharge.v < 22 },
		message: func(r readings) string {
			return fmt.Sprintf("%sWatts - %sA is higher than normal usage and battery will drop faster. Please reduce the load",
				r.load, r.discharge)
		},
	},
	{
		code:  CodeBatteryLoadLimit,
		title: "Battery load limit reached",
		limit: 3,
		needs: func(r readings) bool { return r.discharge.ok },
		fires: func(r readings, _ bool) bool {
			return r.discharge.v >= 90
		},
		resets: func(r readings) bool { return r.discharge.v < 80 },
		message: func(r readings) string {
			return fmt.Sprintf("%sWatts - %sA exceeds 90A limit and battery might be damaged if exceeds 100A. Please reduce the load",
				r.load, r.discharge)
		},
	},
	{
		code:  CodeLowBattery,
		title: "Low battery",
		needs: func(r readings) bool { return r.battery.ok },
		fires: func(r readings, _ bool) bool {
			return r.battery.v < 23.0
		},
		message: func(r readings) string {
			return fmt.Sprintf("%sWatts - %sA\nBattery at %sV - It will shutdown at 21.0V! Reduce the load to keep running for a bit longer",
				r.load, r.discharge, r.battery)
		},
	},
	{
		code:  CodeGridDown,
		title: "Grid power outage",
		needs: func(r readings) bool { return r.grid.ok },
		fires: func(r readings, up bool) bool {
			return r.grid.v == 0 && up
		},
		message: loadMessage,
		grid:    &gridDown,
	},
	{
		code:  CodeGridUp,
		title: "Grid power restored",
		needs: func(r readings) bool { return r.grid.ok },
		fires: func(r readings, up bool) bool {
			return r.grid.v > 210 && !up
		},
		message: loadMessage,
		grid:    &gridUp,
	},
	{
		code:  CodeInsufficientSolar,
		title: "Insufficient solar power",
		limit: 3,
		needs: func(r readings) bool { return r.discharge.ok && r.grid.ok && r.pv.ok && r.load.ok },
		fires: func(r readings, _ bool) bool {
			return insufficientSolar(r)
		},
		// the episode ends when the condition clears
		resets: func(r readings) bool { return !insufficientSolar(r) },
		message: func(r readings) string {
			return fmt.Sprintf("PV Power: %sWatts - %sA\nPlease turn off the fridges or other load.",
				r.pv, r.discharge)
		},
	},
}

func insufficientSolar(r readings) bool {
	return r.discharge.v >= 3 && r.discharge.v <= 10 &&
		r.grid.v < 10 &&
		r.pv.v < 800 &&
		r.load.v > 500 && r.load.v < 1000
}

func loadMessage(r readings) string {
	return fmt.Sprintf("%sWatts - %sA", r.load, r.discharge)
}
