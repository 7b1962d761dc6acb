// internal/telemetry/client_test.go
package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
	"ac_output_power": "0450",
	"ac_output_voltage": "230.1",
	"ac_output_frequency": "50.0",
	"pv_power": "0800",
	"battery_voltage": "26.40",
	"battery_capacity": "072",
	"battery_charging_current": "005",
	"battery_discharge_current": "00000",
	"grid_voltage": "000.0",
	"device_status": "010",
	"status_bits": "00010110",
	"timestamp": "2024-05-01 01:15:30 PM",
	"last_updated": "2024-05-01 01:15:30 PM"
}`

func TestClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	c, err := NewClient(Config{
		Endpoint: srv.URL,
		Parser:   TimeParser{Location: time.UTC},
	}, zerolog.Nop())
	require.NoError(t, err)

	snap, err := c.Fetch(context.Background())
	require.NoError(t, err)

	v, ok := snap.BatteryVoltage.Float()
	require.True(t, ok)
	assert.InDelta(t, 26.4, v, 1e-9)
	assert.Equal(t, "010", snap.StatusCode())

	require.True(t, snap.HasTimestamp)
	assert.Equal(t, time.Date(2024, 5, 1, 13, 15, 30, 0, time.UTC), snap.Timestamp)
}

func TestClient_FetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(Config{Endpoint: srv.URL}, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)
}

func TestClient_FetchMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pv_power": `))
	}))
	defer srv.Close()

	c, err := NewClient(Config{Endpoint: srv.URL}, zerolog.Nop())
	require.NoError(t, err)

	_, err = c.Fetch(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStatus)
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{}, zerolog.Nop())
	require.Error(t, err)
}

func TestTimeParser(t *testing.T) {
	p := TimeParser{Location: time.UTC}

	_, ok := p.Parse(Reading{})
	assert.False(t, ok, "absent")

	_, ok = p.Parse(Text(""))
	assert.False(t, ok, "empty")

	_, ok = p.Parse(Text("No data"))
	assert.False(t, ok, "placeholder")

	ts, ok := p.Parse(Text("2024-05-01 13:15:30"))
	require.True(t, ok)
	assert.Equal(t, 13, ts.Hour())

	ts, ok = p.Parse(Text("2024-05-01T13:15:30Z"))
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 13, 15, 30, 0, time.UTC), ts.UTC())

	ts, ok = p.Parse(Number(1714569330250))
	require.True(t, ok)
	assert.Equal(t, int64(1714569330250), ts.UnixMilli())
}

func TestTimeParser_ConfiguredLayoutFirst(t *testing.T) {
	p := TimeParser{Layouts: []string{"02/01/2006 15:04"}, Location: time.UTC}

	ts, ok := p.Parse(Text("01/05/2024 09:30"))
	require.True(t, ok)
	assert.Equal(t, time.May, ts.Month())
	assert.Equal(t, 1, ts.Day())
}

func TestDecode_UnusableTimestampIsMissing(t *testing.T) {
	snap, err := Decode(strings.NewReader(`{"timestamp": "No data", "pv_power": 0}`), TimeParser{})
	require.NoError(t, err)
	assert.False(t, snap.HasTimestamp)
	assert.True(t, snap.RawTimestamp.Present())
}
