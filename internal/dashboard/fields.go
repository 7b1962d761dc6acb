// internal/dashboard/fields.go
package dashboard

// Field names a dashboard widget.
type Field string

// Numeric card fields.
const (
	FieldACOutputPower       Field = "ac_output_power"
	FieldOutputApparentPower Field = "output_apparent_power"
	FieldLoadPercentage      Field = "load_percentage"
	FieldLoadAmpere          Field = "load_ampere"
	FieldACOutputVoltage     Field = "ac_output_voltage"
	FieldPVPower             Field = "pv_power"
	FieldPVVoltage           Field = "pv_voltage"
	FieldPVChargingPower     Field = "pv_charging_power"
	FieldBatteryCapacity     Field = "battery_capacity"
	FieldBatteryVoltage      Field = "battery_voltage"
	FieldHeatSinkTemp        Field = "heat_sink_temp"
	FieldGridVoltage         Field = "grid_voltage"
	FieldBusVoltage          Field = "bus_voltage"
)

// Text fields.
const (
	FieldACOutputFrequency       Field = "ac_output_frequency"
	FieldBatteryChargingCurrent  Field = "battery_charging_current"
	FieldBatteryDischargeCurrent Field = "battery_discharge_current"
	FieldGridFrequency           Field = "grid_frequency"
	FieldStatusCode              Field = "status_code"
	FieldStatusBits              Field = "status_bits"
	FieldStatusBinary            Field = "status_binary"
	FieldFanBatteryOffset        Field = "fan_battery_offset"
	FieldEEPROMFirmware          Field = "eeprom_fw"
	FieldReserved                Field = "reserved"
	FieldLastUpdateTime          Field = "lastUpdateTime"
	FieldLastReadingTime         Field = "lastReadingTime"
	FieldCurrentTime             Field = "currentTime"
	FieldCountdown               Field = "countdown"
)

// Fields lists every widget in display order.
func Fields() []Field {
	return []Field{
		FieldACOutputPower, FieldOutputApparentPower, FieldLoadPercentage, FieldLoadAmpere,
		FieldACOutputVoltage, FieldACOutputFrequency,
		FieldPVPower, FieldPVVoltage, FieldPVChargingPower,
		FieldBatteryCapacity, FieldBatteryVoltage, FieldBatteryChargingCurrent,
		FieldBatteryDischargeCurrent, FieldHeatSinkTemp,
		FieldGridVoltage, FieldGridFrequency, FieldBusVoltage,
		FieldStatusCode, FieldStatusBits, FieldStatusBinary,
		FieldFanBatteryOffset, FieldEEPROMFirmware, FieldReserved,
		FieldLastUpdateTime, FieldLastReadingTime, FieldCurrentTime, FieldCountdown,
	}
}
