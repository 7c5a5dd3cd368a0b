package icd

import (
	"fmt"
	"strings"
)

var systemStates = map[uint32]string{
	0: "Idle",
	1: "Startup",
	2: "Operational",
	3: "Standby",
	4: "Error",
	5: "Maintenance",
}

// SystemStateName resolves a system state enumeration value.
func SystemStateName(state uint32) string {
	if name, ok := systemStates[state]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", state)
}

var operationalModes = map[uint32]string{
	0: "Standby",
	1: "Search",
	2: "Track",
	3: "Search & Track",
	4: "Maintenance",
	5: "Test",
}

// OperationalModeName resolves an operational mode enumeration value.
func OperationalModeName(mode uint32) string {
	if name, ok := operationalModes[mode]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", mode)
}

var targetClasses = map[int32]string{
	0: "Unknown",
	1: "Aircraft",
	2: "Helicopter",
	3: "Bird",
	4: "Clutter",
	5: "Weather",
}

// TargetClassName resolves a target classification value.
func TargetClassName(class int32) string {
	if name, ok := targetClasses[class]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (%d)", class)
}

var controlCommands = map[uint32]string{
	1: "Start System",
	2: "Stop System",
	3: "Reset System",
	4: "Start Search",
	5: "Stop Search",
	6: "Set Mode",
	7: "Calibrate",
	8: "Self Test",
}

// ControlCommandName resolves a system control command value.
func ControlCommandName(cmd uint32) string {
	if name, ok := controlCommands[cmd]; ok {
		return name
	}
	return fmt.Sprintf("Unknown Command (%d)", cmd)
}

// ErrorCodeText classifies an error code into the ICD severity bands.
func ErrorCodeText(code uint32) string {
	switch {
	case code == 0:
		return "No Error"
	case code < 100:
		return fmt.Sprintf("Warning Code %d", code)
	case code < 200:
		return fmt.Sprintf("Error Code %d", code)
	default:
		return fmt.Sprintf("Critical Error %d", code)
	}
}

var powerBits = []struct {
	bit  uint32
	name string
}{
	{0x01, "Main Power"},
	{0x02, "Backup Power"},
	{0x04, "Transmitter"},
	{0x08, "Receiver"},
	{0x10, "Antenna Drive"},
	{0x20, "Processing Unit"},
}

// PowerStatusText lists the subsystems whose power bits are set.
func PowerStatusText(mask uint32) string {
	var active []string
	for _, pb := range powerBits {
		if mask&pb.bit != 0 {
			active = append(active, pb.name)
		}
	}
	if len(active) == 0 {
		return "All Systems Off"
	}
	return strings.Join(active, ", ")
}
