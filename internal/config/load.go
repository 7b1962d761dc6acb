// internal/config/load.go
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads path (optional), applies .env and environment overrides,
// then validates and normalizes. An empty path means defaults plus environment.
func Load(path string) (*Config, error) {
	// a missing .env is not an error
	_ = godotenv.Load()

	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Parse(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	ApplyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	Normalize(cfg)

	return cfg, nil
}

// Parse decodes YAML strictly; unknown keys are an error.
func Parse(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides file values with environment variables.
func ApplyEnv(cfg *Config) {
	m := &cfg.Monitor

	m.Endpoint = getEnv("MONITOR_ENDPOINT", m.Endpoint)

	m.Alerts.Broker = getEnv("MQTT_BROKER", m.Alerts.Broker)
	m.Alerts.ClientID = getEnv("MQTT_CLIENT_ID", m.Alerts.ClientID)
	m.Alerts.Username = getEnv("MQTT_USERNAME", m.Alerts.Username)
	m.Alerts.Password = getEnv("MQTT_PASSWORD", m.Alerts.Password)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Debug = getEnvBool("DEBUG", cfg.Log.Debug)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
