// internal/writer/writer.go
package writer

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/tamzrod/inverter-monitor/internal/dashboard"
)

// Mirror writes every applied frame to status memory.
// Write failures are logged and never reach the poll loop.
type Mirror struct {
	mu  sync.Mutex
	sw  StatusWriter
	log zerolog.Logger

	failing bool
}

// NewMirror wraps a status writer.
func NewMirror(sw StatusWriter, log zerolog.Logger) *Mirror {
	return &Mirror{sw: sw, log: log}
}

// Observe is a poller observer.
func (m *Mirror) Observe(f dashboard.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sw.WriteStatus(f.Status()); err != nil {
		if !m.failing {
			m.log.Error().Err(err).Msg("status mirror write failed")
		} else {
			m.log.Debug().Err(err).Msg("status mirror still failing")
		}
		m.failing = true
		return
	}

	if m.failing {
		m.log.Info().Msg("status mirror recovered")
	}
	m.failing = false
}
