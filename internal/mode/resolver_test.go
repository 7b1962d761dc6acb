// internal/mode/resolver_test.go
package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_KnownCodes(t *testing.T) {
	want := map[string]string{
		"000": "Power On",
		"001": "Standby",
		"110": "Solar & Battery Mode",
		"010": "Battery Mode",
		"101": "K-Electric Mode",
	}

	require.Len(t, Codes(), len(want))

	for _, code := range Codes() {
		m := Resolve(code)
		assert.True(t, m.Known(), "code %s", code)
		assert.Equal(t, code, m.Code)
		assert.Equal(t, want[code], m.Label)
		assert.NotEqual(t, unknownDescription, m.Description, "code %s", code)
		assert.NotEmpty(t, m.IconKey)
	}
}

func TestResolve_DescriptionsAreNotDuplicated(t *testing.T) {
	assert.Equal(t, "System is powered on and initializing", Resolve("000").Description)
	assert.Equal(t, "Operating from battery backup power", Resolve("010").Description)
}

func TestResolve_Unknown(t *testing.T) {
	for _, code := range []string{"unknown-code", "", "111", "10", "0000"} {
		m := Resolve(code)
		assert.False(t, m.Known(), "code %q", code)
		assert.Equal(t, CategoryUnknown, m.Category)
		assert.Equal(t, "Unknown", m.Label)
		assert.Equal(t, "fas fa-question", m.IconKey)
		assert.Equal(t, "Unknown operating state", m.Description)
		assert.Equal(t, code, m.Code)
	}
}

func TestMode_Numeric(t *testing.T) {
	n, ok := Resolve("110").Numeric()
	require.True(t, ok)
	assert.Equal(t, 110, n)

	n, ok = Resolve("010").Numeric()
	require.True(t, ok)
	assert.Equal(t, 10, n)

	_, ok = Resolve("unknown-code").Numeric()
	assert.False(t, ok)
}
