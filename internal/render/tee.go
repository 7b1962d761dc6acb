// internal/render/tee.go
package render

import (
	"github.com/tamzrod/inverter-monitor/internal/dashboard"
	"github.com/tamzrod/inverter-monitor/internal/mode"
	"github.com/tamzrod/inverter-monitor/internal/status"
)

// Tee fans every call out to each renderer in order.
type Tee []dashboard.Renderer

func (t Tee) SetValue(f dashboard.Field, q dashboard.Quantity) {
	for _, r := range t {
		r.SetValue(f, q)
	}
}

func (t Tee) SetText(f dashboard.Field, text string) {
	for _, r := range t {
		r.SetText(f, text)
	}
}

func (t Tee) SetAlert(level status.Alert) {
	for _, r := range t {
		r.SetAlert(level)
	}
}

func (t Tee) SetMode(m mode.Mode) {
	for _, r := range t {
		r.SetMode(m)
	}
}

func (t Tee) SetFlows(f dashboard.Flows) {
	for _, r := range t {
		r.SetFlows(f)
	}
}

// Flush flushes every renderer that batches.
func (t Tee) Flush() {
	for _, r := range t {
		dashboard.Flush(r)
	}
}
