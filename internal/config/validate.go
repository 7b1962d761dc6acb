// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Validate checks configuration correctness.
// It performs declarative validation only; zero values mean "use the default".
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil config")
	}

	m := cfg.Monitor

	// ------------------------------------------------------------
	// TELEMETRY ENDPOINT
	// ------------------------------------------------------------

	if m.Endpoint == "" {
		return errors.New("monitor.endpoint is required (or set MONITOR_ENDPOINT)")
	}
	u, err := url.Parse(m.Endpoint)
	if err != nil {
		return fmt.Errorf("monitor.endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("monitor.endpoint %q: scheme must be http or https", m.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("monitor.endpoint %q: host is required", m.Endpoint)
	}

	if m.FetchTimeoutMs < 0 {
		return errors.New("monitor.fetch_timeout_ms must be >= 0")
	}

	// ------------------------------------------------------------
	// POLL LOOP
	// ------------------------------------------------------------

	if m.Poll.TickMs < 0 {
		return errors.New("monitor.poll.tick_ms must be >= 0")
	}
	if m.Poll.InitialCountdown < 0 {
		return errors.New("monitor.poll.initial_countdown must be >= 0")
	}
	if m.Poll.RefreshCountdown < 0 {
		return errors.New("monitor.poll.refresh_countdown must be >= 0")
	}

	// ------------------------------------------------------------
	// CONNECTION THRESHOLDS
	// ------------------------------------------------------------

	if m.Connection.SlowAfterMs < 0 || m.Connection.LostAfterMs < 0 {
		return errors.New("monitor.connection thresholds must be >= 0")
	}
	slow := orDefault(m.Connection.SlowAfterMs, DefaultSlowAfterMs)
	lost := orDefault(m.Connection.LostAfterMs, DefaultLostAfterMs)
	if slow >= lost {
		return fmt.Errorf(
			"monitor.connection: slow_after_ms (%d) must be below lost_after_ms (%d)",
			slow,
			lost,
		)
	}

	// ------------------------------------------------------------
	// TIMESTAMP
	// ------------------------------------------------------------

	if m.Timestamp.Location != "" {
		if _, err := time.LoadLocation(m.Timestamp.Location); err != nil {
			return fmt.Errorf("monitor.timestamp.location: %w", err)
		}
	}
	for i, l := range m.Timestamp.Layouts {
		if strings.TrimSpace(l) == "" {
			return fmt.Errorf("monitor.timestamp.layouts[%d] is empty", i)
		}
	}

	// ------------------------------------------------------------
	// WEBSOCKET
	// ------------------------------------------------------------

	if m.WebSocket.Path != "" && !strings.HasPrefix(m.WebSocket.Path, "/") {
		return fmt.Errorf("monitor.websocket.path %q must start with /", m.WebSocket.Path)
	}

	// ------------------------------------------------------------
	// MQTT ALERTS (OPT-IN)
	// ------------------------------------------------------------

	if m.Alerts.Enabled {
		if m.Alerts.Broker == "" {
			return errors.New("monitor.alerts.broker is required when alerts are enabled")
		}
		if strings.ContainsAny(m.Alerts.Topic, "+#") {
			return fmt.Errorf("monitor.alerts.topic %q must not contain wildcards", m.Alerts.Topic)
		}
		if m.Alerts.QoS > 2 {
			return fmt.Errorf("monitor.alerts.qos %d out of range", m.Alerts.QoS)
		}
		if m.Alerts.CooldownMs < 0 {
			return errors.New("monitor.alerts.cooldown_ms must be >= 0")
		}
		if m.Alerts.ConnectTimeoutMs < 0 {
			return errors.New("monitor.alerts.connect_timeout_ms must be >= 0")
		}
	}

	// ------------------------------------------------------------
	// STATUS MEMORY (OPT-IN)
	// ------------------------------------------------------------

	sm := m.StatusMemory
	for i := 0; i < len(sm.DeviceName); i++ {
		if sm.DeviceName[i] > 0x7F {
			return errors.New("monitor.status_memory.device_name must contain ASCII characters only")
		}
	}
	if sm.Enabled {
		if sm.Endpoint == "" {
			return errors.New("monitor.status_memory.endpoint is required when status memory is enabled")
		}
		// a 20-register block must fit in the 16-bit address space
		if int(sm.Slot)*20+20 > 0x10000 {
			return fmt.Errorf("monitor.status_memory.slot %d out of range", sm.Slot)
		}
		if sm.TimeoutMs < 0 {
			return errors.New("monitor.status_memory.timeout_ms must be >= 0")
		}
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	switch cfg.Log.Output {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("log.output %q: must be stdout or stderr", cfg.Log.Output)
	}

	return nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
