// internal/writer/writer_test.go
package writer

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/tamzrod/inverter-monitor/internal/config"
	"github.com/tamzrod/inverter-monitor/internal/dashboard"
	"github.com/tamzrod/inverter-monitor/internal/mode"
	"github.com/tamzrod/inverter-monitor/internal/status"
)

func TestMirror_ObserveWritesFrameStatus(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw, err := NewDeviceStatusWriter(testPlan(), cli)
	require.NoError(t, err)

	m := NewMirror(sw, zerolog.Nop())
	m.Observe(dashboard.Frame{
		StateOfCharge:    55,
		HasStateOfCharge: true,
		Mode:             mode.Resolve("010"),
		Connection:       status.Lost,
		HasTimestamp:     true,
		Elapsed:          61 * time.Second,
	})

	regs := cli.last().regs
	assert.Equal(t, status.CodeLost, regs[status.SlotConnection])
	assert.Equal(t, uint16(55), regs[status.SlotStateOfCharge])
	assert.Equal(t, uint16(10), regs[status.SlotModeCode])
	assert.Equal(t, uint16(61), regs[status.SlotSecondsSinceReading])
	assert.Equal(t, uint16(status.AlertStrong), regs[status.SlotAlertLevel])
}

func TestMirror_LogsFailureOnce(t *testing.T) {
	var buf bytes.Buffer
	cli := &fakeEndpointClient{fail: true}
	sw, err := NewDeviceStatusWriter(testPlan(), cli)
	require.NoError(t, err)

	m := NewMirror(sw, zerolog.New(&buf).Level(zerolog.InfoLevel))
	m.Observe(dashboard.Frame{})
	m.Observe(dashboard.Frame{})

	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("status mirror write failed")))

	cli.fail = false
	m.Observe(dashboard.Frame{})
	assert.Contains(t, buf.String(), "status mirror recovered")
}

func TestBuildPlan(t *testing.T) {
	_, err := BuildPlan(cfgStatusMemory(""))
	assert.Error(t, err)

	p, err := BuildPlan(cfgStatusMemory("127.0.0.1:502"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:502", p.Endpoint)
	assert.Equal(t, "INVERTER", p.DeviceName)
}

func cfgStatusMemory(endpoint string) cfg.StatusMemoryConfig {
	return cfg.StatusMemoryConfig{
		Enabled:    true,
		Endpoint:   endpoint,
		UnitID:     1,
		DeviceName: "INVERTER",
	}
}
