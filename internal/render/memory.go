// internal/render/memory.go
package render

import (
	"sync"
	"time"

	"github.com/tamzrod/inverter-monitor/internal/dashboard"
	"github.com/tamzrod/inverter-monitor/internal/mode"
	"github.com/tamzrod/inverter-monitor/internal/status"
)

// State is a copy of everything currently displayed.
type State struct {
	Values  map[dashboard.Field]dashboard.Quantity `json:"values"`
	Texts   map[dashboard.Field]string             `json:"texts"`
	Alert   status.Alert                           `json:"alert"`
	Mode    *mode.Mode                             `json:"mode,omitempty"`
	Flows   dashboard.Flows                        `json:"flows"`
	Updated map[dashboard.Field]time.Time          `json:"-"`
}

// Display returns the field as shown on screen.
func (s State) Display(f dashboard.Field) (string, bool) {
	if q, ok := s.Values[f]; ok {
		return q.String(), true
	}
	t, ok := s.Texts[f]
	return t, ok
}

// Memory keeps the latest rendered state. Safe for concurrent use.
type Memory struct {
	mu  sync.RWMutex
	now func() time.Time

	values  map[dashboard.Field]dashboard.Quantity
	texts   map[dashboard.Field]string
	updated map[dashboard.Field]time.Time
	alert   status.Alert
	mode    *mode.Mode
	flows   dashboard.Flows
}

// NewMemory creates an empty store. A nil clock means time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		now:     now,
		values:  make(map[dashboard.Field]dashboard.Quantity),
		texts:   make(map[dashboard.Field]string),
		updated: make(map[dashboard.Field]time.Time),
	}
}

func (m *Memory) SetValue(f dashboard.Field, q dashboard.Quantity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.texts, f)
	m.values[f] = q
	m.updated[f] = m.now()
}

func (m *Memory) SetText(f dashboard.Field, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, f)
	m.texts[f] = text
	m.updated[f] = m.now()
}

func (m *Memory) SetAlert(level status.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alert = level
}

func (m *Memory) SetMode(md mode.Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = &md
}

func (m *Memory) SetFlows(f dashboard.Flows) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows = f
}

// State returns a copy of the current state.
func (m *Memory) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := State{
		Values:  make(map[dashboard.Field]dashboard.Quantity, len(m.values)),
		Texts:   make(map[dashboard.Field]string, len(m.texts)),
		Updated: make(map[dashboard.Field]time.Time, len(m.updated)),
		Alert:   m.alert,
		Flows:   m.flows,
	}
	for k, v := range m.values {
		s.Values[k] = v
	}
	for k, v := range m.texts {
		s.Texts[k] = v
	}
	for k, v := range m.updated {
		s.Updated[k] = v
	}
	if m.mode != nil {
		md := *m.mode
		s.Mode = &md
	}
	return s
}
