// internal/soc/interpolate.go
package soc

import "math"

// Breakpoint is one calibration point of the voltage curve.
type Breakpoint struct {
	Volts   float64
	Percent float64
}

// Curve is an ordered calibration table, strictly increasing in voltage.
// Readings at or above the last breakpoint are full, at or below the first are empty.
type Curve []Breakpoint

// LiFePO4 is the 24 V pack curve (cutoff 21.0 V, bulk charge 28.6 V).
var LiFePO4 = Curve{
	{Volts: 21.0, Percent: 0},
	{Volts: 23.0, Percent: 10},
	{Volts: 25.0, Percent: 40},
	{Volts: 26.0, Percent: 70},
	{Volts: 27.0, Percent: 90},
	{Volts: 28.6, Percent: 100},
}

// Full returns the full-charge threshold.
func (c Curve) Full() float64 { return c[len(c)-1].Volts }

// Empty returns the cutoff threshold.
func (c Curve) Empty() float64 { return c[0].Volts }

// Percent maps a battery voltage to a state of charge in [0, 100].
// Total over the real line: NaN and anything that falls between the
// intervals resolves to 0.
func (c Curve) Percent(volts float64) int {
	if len(c) < 2 {
		return 0
	}
	if volts >= c.Full() {
		return 100
	}
	if volts <= c.Empty() {
		return 0
	}

	// first matching interval wins; bounds are inclusive
	for i := 0; i < len(c)-1; i++ {
		lo, hi := c[i], c[i+1]
		if volts >= lo.Volts && volts <= hi.Volts {
			p := lo.Percent + (volts-lo.Volts)/(hi.Volts-lo.Volts)*(hi.Percent-lo.Percent)
			return clamp(int(math.Round(p)))
		}
	}

	return 0
}

// Percent maps a voltage on the default LiFePO4 curve.
func Percent(volts float64) int {
	return LiFePO4.Percent(volts)
}

func clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
