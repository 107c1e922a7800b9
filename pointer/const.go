package pointer

import "github.com/microsoft/mu-hid-go/internal/hidreport"

// HID usage-page ranges this handler cares about (USB HID usage tables,
// generic desktop page 0x01 and button page 0x09).
const (
	usageX         = 0x00010030
	usageY         = 0x00010031
	usageZ         = 0x00010032
	usageWheel     = 0x00010038
	buttonUsageMin = 0x00090001
	buttonUsageMax = 0x00090020
)

// AxisResolution is the fixed normalized range every axis is scaled to,
// regardless of the device's own logical range.
const AxisResolution = 1024

// axisKind classifies which field of State a relevantField feeds.
type axisKind int

const (
	axisX axisKind = iota
	axisY
	axisZ
	axisButton
)

func isXUsage(u hidreport.Usage) bool   { return uint32(u) == usageX }
func isYUsage(u hidreport.Usage) bool   { return uint32(u) == usageY }
func isZOrWheel(u hidreport.Usage) bool { return uint32(u) == usageZ || uint32(u) == usageWheel }
func isButtonUsage(u hidreport.Usage) bool {
	v := uint32(u)
	return v >= buttonUsageMin && v <= buttonUsageMax
}

// ModeAttribute bits for Mode.Attributes.
const (
	ModeAttributeAlternateButton uint32 = 1 << iota
	ModeAttributePressureAsZ
)
