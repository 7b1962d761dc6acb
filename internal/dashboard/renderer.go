// internal/dashboard/renderer.go
package dashboard

import (
	"strconv"

	"github.com/tamzrod/inverter-monitor/internal/mode"
	"github.com/tamzrod/inverter-monitor/internal/status"
)

// Placeholder is rendered for a field whose value is missing or not a number.
const Placeholder = "--"

// Quantity is a number with its display unit.
type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// String formats the quantity the way the dashboard cards show it.
func (q Quantity) String() string {
	v := strconv.FormatFloat(q.Value, 'f', -1, 64)
	if q.Unit == "" {
		return v
	}
	return v + " " + q.Unit
}

// Renderer is the view surface the presenter draws into.
// Implementations must tolerate calls for fields they do not display.
type Renderer interface {
	SetValue(field Field, q Quantity)
	SetText(field Field, text string)
	SetAlert(level status.Alert)
	SetMode(m mode.Mode)
	SetFlows(f Flows)
}

// Flusher is implemented by renderers that batch updates until a frame is complete.
type Flusher interface {
	Flush()
}

// Flush flushes r if it batches.
func Flush(r Renderer) {
	if f, ok := r.(Flusher); ok {
		f.Flush()
	}
}
