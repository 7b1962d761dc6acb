// internal/status/constants.go
package status

// Status Block layout constants.
// These values define the mirror protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per monitored inverter.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotConnection holds the connection code.
const SlotConnection = 0

// SlotStateOfCharge holds the interpolated battery percentage.
const SlotStateOfCharge = 1

// SlotModeCode holds the device status code as an integer.
const SlotModeCode = 2

// SlotSecondsSinceReading holds the age of the last reading in seconds.
const SlotSecondsSinceReading = 3

// SlotAlertLevel holds the alert intensity.
const SlotAlertLevel = 4

// SlotFlows holds the energy-flow bitmask.
const SlotFlows = 5

// ---- RESERVED RANGE ----

// Slots 6–10 are reserved for future use.
const SlotReservedStart = 6
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// Unavailable marks a slot whose value could not be derived.
const Unavailable uint16 = 0xFFFF

// ---- CONNECTION CODES ----

// CodeNoTimestamp means the last snapshot carried no timestamp.
const CodeNoTimestamp uint16 = 0

// CodeConnected, CodeSlow and CodeLost mirror State.
const (
	CodeConnected uint16 = 1
	CodeSlow      uint16 = 2
	CodeLost      uint16 = 3
)

// ---- FLOW BITS ----

const (
	FlowSolar uint16 = 1 << iota
	FlowOutput
	FlowGrid
	FlowBatteryDischarge
	FlowBatteryCharge
)
