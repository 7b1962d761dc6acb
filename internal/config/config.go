// internal/config/config.go
package config

type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
	Log     LogConfig     `yaml:"log"`
}

type MonitorConfig struct {
	Endpoint       string `yaml:"endpoint"`
	FetchTimeoutMs int    `yaml:"fetch_timeout_ms"` // 0 = no timeout

	Poll         PollConfig         `yaml:"poll"`
	Connection   ConnectionConfig   `yaml:"connection"`
	Timestamp    TimestampConfig    `yaml:"timestamp"`
	Console      ConsoleConfig      `yaml:"console"`
	WebSocket    WebSocketConfig    `yaml:"websocket"`
	Alerts       AlertsConfig       `yaml:"alerts"`
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
}

// ---- POLL ----

type PollConfig struct {
	TickMs           int `yaml:"tick_ms"`
	InitialCountdown int `yaml:"initial_countdown"`
	RefreshCountdown int `yaml:"refresh_countdown"`
}

// ---- CONNECTION HEALTH ----

type ConnectionConfig struct {
	SlowAfterMs int `yaml:"slow_after_ms"`
	LostAfterMs int `yaml:"lost_after_ms"`
}

// ---- TIMESTAMP PARSING ----

type TimestampConfig struct {
	Location string   `yaml:"location"` // IANA name, "Local" or "UTC"
	Layouts  []string `yaml:"layouts"`  // tried before the built-in layouts
}

// ---- RENDERERS ----

type ConsoleConfig struct {
	Enabled *bool `yaml:"enabled"` // default true
	Clear   *bool `yaml:"clear"`   // default true
}

// WebSocketConfig is opt-in: an empty Listen disables the endpoint.
type WebSocketConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

// ---- MQTT ALERTS ----

type AlertsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Broker     string `yaml:"broker"`
	ClientID   string `yaml:"client_id"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Topic      string `yaml:"topic"` // {code} is replaced by the alert code
	QoS        byte   `yaml:"qos"`
	CooldownMs int    `yaml:"cooldown_ms"`

	ConnectTimeoutMs int `yaml:"connect_timeout_ms"`
}

// ---- STATUS MEMORY (Modbus mirror, opt-in) ----

type StatusMemoryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// ---- LOGGING ----

type LogConfig struct {
	Level      string `yaml:"level"`
	Debug      bool   `yaml:"debug"`
	Output     string `yaml:"output"` // stdout | stderr
	TimeFormat string `yaml:"time_format"`
}

// ConsoleEnabled reports the effective console switch.
func (c ConsoleConfig) ConsoleEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// ClearScreen reports the effective redraw mode.
func (c ConsoleConfig) ClearScreen() bool {
	return c.Clear == nil || *c.Clear
}
