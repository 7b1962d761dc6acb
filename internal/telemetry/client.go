// internal/telemetry/client.go
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// ErrStatus is returned when the endpoint answers with a non-2xx status.
var ErrStatus = errors.New("telemetry: unexpected status")

// maxBody bounds a snapshot payload.
const maxBody = 1 << 20

// Config is minimal transport config.
type Config struct {
	Endpoint string
	// Timeout of 0 leaves the request unbounded; a hung request only stalls its own cycle.
	Timeout time.Duration
	Parser  TimeParser
}

// Client reads snapshots from the telemetry endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	parser   TimeParser
	log      zerolog.Logger
}

// NewClient creates an endpoint client.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("telemetry: endpoint required")
	}
	return &Client{
		endpoint: cfg.Endpoint,
		http:     &http.Client{Timeout: cfg.Timeout},
		parser:   cfg.Parser,
		log:      log,
	}, nil
}

// Fetch performs one read of the endpoint.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("telemetry: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("telemetry: get %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return Snapshot{}, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	snap, err := Decode(io.LimitReader(resp.Body, maxBody), c.parser)
	if err != nil {
		return Snapshot{}, err
	}

	if !snap.HasTimestamp && snap.RawTimestamp.Present() {
		c.log.Warn().Str("timestamp", snap.RawTimestamp.String()).Msg("unusable snapshot timestamp")
	}

	return snap, nil
}

// Decode reads one JSON snapshot and resolves its timestamp.
// Unknown keys are ignored; missing keys stay absent.
func Decode(r io.Reader, p TimeParser) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("telemetry: decode snapshot: %w", err)
	}
	snap.Timestamp, snap.HasTimestamp = p.Parse(snap.RawTimestamp)
	return snap, nil
}
