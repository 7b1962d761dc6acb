// internal/mode/resolver.go
package mode

import "strconv"

// Category classifies where the inverter is drawing power from.
type Category string

const (
	CategoryPowerOn Category = "power-on"
	CategoryStandby Category = "standby"
	CategorySolar   Category = "solar"
	CategoryBattery Category = "battery"
	CategoryGrid    Category = "grid"
	CategoryUnknown Category = "unknown"
)

// Mode is the display record for one device status code.
type Mode struct {
	Code        string   `json:"code"`
	Label       string   `json:"label"`
	Category    Category `json:"category"`
	IconKey     string   `json:"icon_key"`
	Description string   `json:"description"`
}

// Known reports whether the code resolved to a table entry.
func (m Mode) Known() bool { return m.Category != CategoryUnknown }

// Numeric returns the code as an integer ("110" -> 110).
func (m Mode) Numeric() (int, bool) {
	n, err := strconv.Atoi(m.Code)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

type badge struct {
	label    string
	category Category
	icon     string
}

// badges and descriptions are two independent tables keyed by the same codes.
var badges = map[string]badge{
	"000": {label: "Power On", category: CategoryPowerOn, icon: "fas fa-power-off"},
	"001": {label: "Standby", category: CategoryStandby, icon: "fas fa-pause"},
	"110": {label: "Solar & Battery Mode", category: CategorySolar, icon: "fas fa-bolt"},
	"010": {label: "Battery Mode", category: CategoryBattery, icon: "fas fa-battery-full"},
	"101": {label: "K-Electric Mode", category: CategoryGrid, icon: "fas fa-exclamation-triangle"},
}

var descriptions = map[string]string{
	"000": "System is powered on and initializing",
	"001": "System in standby mode, ready for activation",
	"110": "Operating from Solar Grid and Battery power",
	// NOTE: upstream keyed this text under "000" a second time; it is the
	// battery-mode text. Pending confirmation from the device owner.
	"010": "Operating from battery backup power",
	"101": "Operating from AC",
}

var unknown = badge{label: "Unknown", category: CategoryUnknown, icon: "fas fa-question"}

const unknownDescription = "Unknown operating state"

// Resolve maps a device status code to its display mode.
// Codes missing from the table resolve to the unknown mode.
func Resolve(code string) Mode {
	b, ok := badges[code]
	if !ok {
		b = unknown
	}

	desc, ok := descriptions[code]
	if !ok {
		desc = unknownDescription
	}

	return Mode{
		Code:        code,
		Label:       b.label,
		Category:    b.category,
		IconKey:     b.icon,
		Description: desc,
	}
}

// Codes lists every code with a badge entry.
func Codes() []string {
	out := make([]string, 0, len(badges))
	for c := range badges {
		out = append(out, c)
	}
	return out
}
