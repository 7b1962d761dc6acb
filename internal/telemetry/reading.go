// internal/telemetry/reading.go
package telemetry

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Reading is one telemetry field as served by the endpoint.
// The endpoint serves numbers either as JSON numbers or as strings ("026.9").
// A zero Reading is an absent field.
type Reading struct {
	raw     string
	value   float64
	present bool
	numeric bool
}

// Number builds a numeric reading.
func Number(v float64) Reading {
	return Reading{
		raw:     strconv.FormatFloat(v, 'f', -1, 64),
		value:   v,
		present: true,
		numeric: !math.IsNaN(v) && !math.IsInf(v, 0),
	}
}

// Text builds a reading from its served text.
func Text(s string) Reading {
	r := Reading{raw: s, present: true}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
		r.value = v
		r.numeric = true
	}
	return r
}

// Present reports whether the field was in the payload and not null.
func (r Reading) Present() bool { return r.present }

// Float returns the numeric value, false when absent or not a number.
func (r Reading) Float() (float64, bool) {
	return r.value, r.numeric
}

// String returns the served text.
func (r Reading) String() string { return r.raw }

// Positive reports a numeric value strictly greater than zero.
func (r Reading) Positive() bool {
	v, ok := r.Float()
	return ok && v > 0
}

// UnmarshalJSON accepts numbers, strings, booleans and null.
func (r *Reading) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = Reading{}
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Text(s)
		return nil
	}

	if b[0] == '-' || (b[0] >= '0' && b[0] <= '9') {
		v, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			// out of float64 range: keep the text, the field degrades alone
			*r = Reading{raw: string(b), present: true}
			return nil
		}
		*r = Reading{raw: string(b), value: v, present: true, numeric: true}
		return nil
	}

	// objects, arrays, booleans: keep the text, never numeric
	*r = Reading{raw: string(b), present: true}
	return nil
}

// MarshalJSON writes numeric readings as numbers and the rest as strings.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.present {
		return []byte("null"), nil
	}
	if r.numeric {
		return []byte(strconv.FormatFloat(r.value, 'f', -1, 64)), nil
	}
	return json.Marshal(r.raw)
}
