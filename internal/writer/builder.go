// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/inverter-monitor/internal/config"
	wmodbus "github.com/tamzrod/inverter-monitor/internal/writer/modbus"
)

// BuildPlan converts the status memory config into a Plan.
// Assumes config has already passed validation.
func BuildPlan(sm cfg.StatusMemoryConfig) (Plan, error) {
	if sm.Endpoint == "" {
		return Plan{}, errors.New("writer: status_memory.endpoint required")
	}
	return Plan{
		Endpoint:   sm.Endpoint,
		UnitID:     sm.UnitID,
		Slot:       sm.Slot,
		DeviceName: sm.DeviceName,
	}, nil
}

// Build wires the Modbus client and returns the mirror and its closer.
func Build(sm cfg.StatusMemoryConfig, log zerolog.Logger) (*Mirror, func() error, error) {
	plan, err := BuildPlan(sm)
	if err != nil {
		return nil, nil, err
	}

	c, err := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: plan.Endpoint,
		Timeout:  time.Duration(sm.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	sw, err := NewDeviceStatusWriter(plan, c)
	if err != nil {
		_ = c.Close()
		return nil, nil, err
	}

	return NewMirror(sw, log), c.Close, nil
}
