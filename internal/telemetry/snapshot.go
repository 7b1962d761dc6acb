// internal/telemetry/snapshot.go
package telemetry

import (
	"strconv"
	"strings"
	"time"
)

// Snapshot is one poll's full set of device readings.
type Snapshot struct {
	ACOutputPower           Reading `json:"ac_output_power"`
	OutputApparentPower     Reading `json:"output_apparent_power"`
	LoadPercentage          Reading `json:"load_percentage"`
	ACOutputVoltage         Reading `json:"ac_output_voltage"`
	ACOutputFrequency       Reading `json:"ac_output_frequency"`
	PVPower                 Reading `json:"pv_power"`
	PVVoltage               Reading `json:"pv_voltage"`
	PVChargingPower         Reading `json:"pv_charging_power"`
	BatteryCapacity         Reading `json:"battery_capacity"`
	BatteryVoltage          Reading `json:"battery_voltage"`
	BatteryChargingCurrent  Reading `json:"battery_charging_current"`
	BatteryDischargeCurrent Reading `json:"battery_discharge_current"`
	HeatSinkTemp            Reading `json:"heat_sink_temp"`
	GridVoltage             Reading `json:"grid_voltage"`
	GridFrequency           Reading `json:"grid_frequency"`
	BusVoltage              Reading `json:"bus_voltage"`
	DeviceStatus            Reading `json:"device_status"`
	StatusBits              Reading `json:"status_bits"`
	FanBatteryOffset        Reading `json:"fan_battery_offset"`
	EEPROMFirmware          Reading `json:"eeprom_fw"`
	Reserved                Reading `json:"reserved"`
	RawTimestamp            Reading `json:"timestamp"`
	LastUpdated             Reading `json:"last_updated"`

	// Timestamp is the device reading time; valid only when HasTimestamp.
	Timestamp    time.Time `json:"-"`
	HasTimestamp bool      `json:"-"`
}

// StatusCode returns the device status normalised to its table key.
// Integer forms are zero-padded to three digits so 10, "10" and "010" agree.
func (s Snapshot) StatusCode() string {
	r := s.DeviceStatus
	if !r.Present() {
		return ""
	}

	raw := strings.TrimSpace(r.String())
	v, ok := r.Float()
	if !ok || v < 0 || v != float64(int64(v)) {
		return raw
	}

	// already a digit string of width >= 3: keep as served
	if isDigits(raw) && len(raw) >= 3 {
		return raw
	}

	code := strconv.FormatInt(int64(v), 10)
	for len(code) < 3 {
		code = "0" + code
	}
	return code
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
