// internal/telemetry/timestamp.go
package telemetry

import (
	"strings"
	"time"
)

// DefaultLayouts are tried after any configured layouts.
// The first is what the inverter log bridge serves.
var DefaultLayouts = []string{
	"2006-01-02 03:04:05 PM",
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// TimeParser resolves the snapshot's timestamp field.
type TimeParser struct {
	Layouts  []string
	Location *time.Location
}

// Parse returns the reading time, false when the field is absent or unusable.
// A numeric field is Unix milliseconds, as a browser Date reads it.
func (p TimeParser) Parse(r Reading) (time.Time, bool) {
	if !r.Present() {
		return time.Time{}, false
	}

	if v, ok := r.Float(); ok {
		if v <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(v)), true
	}

	s := strings.TrimSpace(r.String())
	if s == "" {
		return time.Time{}, false
	}

	loc := p.Location
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range p.layouts() {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p TimeParser) layouts() []string {
	if len(p.Layouts) == 0 {
		return DefaultLayouts
	}
	out := make([]string, 0, len(p.Layouts)+len(DefaultLayouts))
	out = append(out, p.Layouts...)
	return append(out, DefaultLayouts...)
}
