// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	DefaultTickMs           = 1000
	DefaultInitialCountdown = 2
	DefaultRefreshCountdown = 5
	DefaultSlowAfterMs      = 30000
	DefaultLostAfterMs      = 50000
	DefaultLocation         = "Local"
	DefaultWebSocketPath    = "/ws"
	DefaultAlertTopic       = "inverter/alert/{code}"
	DefaultAlertClientID    = "inverter-monitor"
	DefaultAlertCooldownMs  = 3000
	DefaultAlertConnectMs   = 10000
	DefaultStatusTimeoutMs  = 2000
	DefaultLogLevel         = "info"
	DefaultLogOutput        = "stdout"
)

// Normalize applies post-validation defaults.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	m := &cfg.Monitor

	setInt(&m.Poll.TickMs, DefaultTickMs)
	setInt(&m.Poll.InitialCountdown, DefaultInitialCountdown)
	setInt(&m.Poll.RefreshCountdown, DefaultRefreshCountdown)

	setInt(&m.Connection.SlowAfterMs, DefaultSlowAfterMs)
	setInt(&m.Connection.LostAfterMs, DefaultLostAfterMs)

	setString(&m.Timestamp.Location, DefaultLocation)

	setString(&m.WebSocket.Path, DefaultWebSocketPath)

	setString(&m.Alerts.Topic, DefaultAlertTopic)
	setString(&m.Alerts.ClientID, DefaultAlertClientID)
	setInt(&m.Alerts.CooldownMs, DefaultAlertCooldownMs)
	setInt(&m.Alerts.ConnectTimeoutMs, DefaultAlertConnectMs)

	setInt(&m.StatusMemory.TimeoutMs, DefaultStatusTimeoutMs)
	if m.StatusMemory.UnitID == 0 {
		m.StatusMemory.UnitID = 1
	}
	// device_name is ASCII (validated); keep at most 16 characters
	if len(m.StatusMemory.DeviceName) > 16 {
		m.StatusMemory.DeviceName = m.StatusMemory.DeviceName[:16]
	}

	setString(&cfg.Log.Level, DefaultLogLevel)
	setString(&cfg.Log.Output, DefaultLogOutput)
}

func setInt(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}
