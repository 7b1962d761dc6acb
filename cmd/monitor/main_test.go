// cmd/monitor/main_test.go
package main

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nothing listens on port 1
const failingStartupYAML = `
monitor:
  endpoint: http://127.0.0.1:1/api/data
  console:
    enabled: false
  alerts:
    enabled: true
    broker: tcp://127.0.0.1:1
    connect_timeout_ms: 200
  status_memory:
    enabled: true
    endpoint: 127.0.0.1:1
    timeout_ms: 200
log:
  level: error
  output: stderr
`

func TestRun_StatusMemoryFailureReturnsWithAlertsEnabled(t *testing.T) {
	for _, k := range []string{
		"MONITOR_ENDPOINT", "MQTT_BROKER", "MQTT_CLIENT_ID",
		"MQTT_USERNAME", "MQTT_PASSWORD", "LOG_LEVEL", "DEBUG",
	} {
		t.Setenv(k, "")
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(failingStartupYAML), 0o600))

	errc := make(chan error, 1)
	go func() { errc <- run(path) }()

	select {
	case err := <-errc:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status memory")
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after the status mirror failed to connect")
	}
}

type countingRestarter struct {
	n atomic.Int32
}

func (c *countingRestarter) Restart() { c.n.Add(1) }

func TestRestartOn_RestartsPerSignalUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 2)
	r := &countingRestarter{}

	done := make(chan struct{})
	go func() {
		defer close(done)
		restartOn(ctx, sig, r, zerolog.Nop())
	}()

	sig <- syscall.SIGHUP
	sig <- syscall.SIGHUP
	require.Eventually(t, func() bool { return r.n.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("restartOn did not return after cancel")
	}
	assert.Equal(t, int32(2), r.n.Load())
}
