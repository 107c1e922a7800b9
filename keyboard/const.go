package keyboard

import (
	"github.com/microsoft/mu-hid-go/hii"
	"github.com/microsoft/mu-hid-go/internal/hidreport"
)

// HID usage-page ranges this handler cares about (UEFI spec 2.10 figure
// 34.3 and the LED usage page).
const (
	modifierUsageMin = 0x000700E0
	modifierUsageMax = 0x000700E7
	keyUsageMin      = 0x00070001
	keyUsageMax      = 0x00070065
	ledUsageMin      = 0x00080001
	ledUsageMax      = 0x00080005
)

func inModifierRange(u hidreport.Usage) bool {
	return uint32(u) >= modifierUsageMin && uint32(u) <= modifierUsageMax
}

func inKeyRange(u hidreport.Usage) bool {
	return uint32(u) >= keyUsageMin && uint32(u) <= keyUsageMax
}

func inLEDRange(u hidreport.Usage) bool {
	return uint32(u) >= ledUsageMin && uint32(u) <= ledUsageMax
}

// usageToPhysicalKey maps a HID keyboard-page usage to the physical key it
// represents, per the standard 104/105-key layout. Usages outside this
// table (error codes, reserved ranges) are not handled by this driver.
var usageToPhysicalKey = map[uint16]hii.PhysicalKey{
	0x04: hii.KeyC1,
	0x05: hii.KeyB5,
	0x06: hii.KeyB3,
	0x07: hii.KeyC3,
	0x08: hii.KeyD3,
	0x09: hii.KeyC4,
	0x0A: hii.KeyC5,
	0x0B: hii.KeyC6,
	0x0C: hii.KeyD8,
	0x0D: hii.KeyC7,
	0x0E: hii.KeyC8,
	0x0F: hii.KeyC9,
	0x10: hii.KeyB7,
	0x11: hii.KeyB6,
	0x12: hii.KeyD9,
	0x13: hii.KeyD10,
	0x14: hii.KeyD1,
	0x15: hii.KeyD4,
	0x16: hii.KeyC2,
	0x17: hii.KeyD5,
	0x18: hii.KeyD7,
	0x19: hii.KeyB4,
	0x1A: hii.KeyD2,
	0x1B: hii.KeyB2,
	0x1C: hii.KeyD6,
	0x1D: hii.KeyB1,
	0x1E: hii.KeyE1,
	0x1F: hii.KeyE2,
	0x20: hii.KeyE3,
	0x21: hii.KeyE4,
	0x22: hii.KeyE5,
	0x23: hii.KeyE6,
	0x24: hii.KeyE7,
	0x25: hii.KeyE8,
	0x26: hii.KeyE9,
	0x27: hii.KeyE10,
	0x28: hii.KeyEnter,
	0x29: hii.KeyEsc,
	0x2A: hii.KeyBackSpace,
	0x2B: hii.KeyTab,
	0x2C: hii.KeySpaceBar,
	0x2D: hii.KeyE11,
	0x2E: hii.KeyE12,
	0x2F: hii.KeyD11,
	0x30: hii.KeyD12,
	0x31: hii.KeyD13,
	0x32: hii.KeyC12,
	0x33: hii.KeyC10,
	0x34: hii.KeyC11,
	0x35: hii.KeyE0,
	0x36: hii.KeyB8,
	0x37: hii.KeyB9,
	0x38: hii.KeyB10,
	0x39: hii.KeyCapsLock,
	0x3A: hii.KeyF1,
	0x3B: hii.KeyF2,
	0x3C: hii.KeyF3,
	0x3D: hii.KeyF4,
	0x3E: hii.KeyF5,
	0x3F: hii.KeyF6,
	0x40: hii.KeyF7,
	0x41: hii.KeyF8,
	0x42: hii.KeyF9,
	0x43: hii.KeyF10,
	0x44: hii.KeyF11,
	0x45: hii.KeyF12,
	0x46: hii.KeyPrint,
	0x47: hii.KeySLck,
	0x48: hii.KeyPause,
	0x49: hii.KeyIns,
	0x4A: hii.KeyHome,
	0x4B: hii.KeyPgUp,
	0x4C: hii.KeyDel,
	0x4D: hii.KeyEnd,
	0x4E: hii.KeyPgDn,
	0x4F: hii.KeyRightArrow,
	0x50: hii.KeyLeftArrow,
	0x51: hii.KeyDownArrow,
	0x52: hii.KeyUpArrow,
	0x53: hii.KeyNLck,
	0x54: hii.KeySlash,
	0x55: hii.KeyAsterisk,
	0x56: hii.KeyMinus,
	0x57: hii.KeyPlus,
	0x58: hii.KeyEnter,
	0x59: hii.KeyOne,
	0x5A: hii.KeyTwo,
	0x5B: hii.KeyThree,
	0x5C: hii.KeyFour,
	0x5D: hii.KeyFive,
	0x5E: hii.KeySix,
	0x5F: hii.KeySeven,
	0x60: hii.KeyEight,
	0x61: hii.KeyNine,
	0x62: hii.KeyZero,
	0x63: hii.KeyPeriod,
	0x64: hii.KeyB0,
	0x65: hii.KeyA4,
	0xE0: hii.KeyLCtrl,
	0xE1: hii.KeyLShift,
	0xE2: hii.KeyLAlt,
	0xE3: hii.KeyA0,
	0xE4: hii.KeyRCtrl,
	0xE5: hii.KeyRShift,
	0xE6: hii.KeyA2,
	0xE7: hii.KeyA3,
}

func usageToEfiKey(u hidreport.Usage) (hii.PhysicalKey, bool) {
	if u.UsagePage() != 0x07 {
		return 0, false
	}
	k, ok := usageToPhysicalKey[u.UsageID()]
	return k, ok
}

// heldWhileModifiers stay active only as long as their key is held down.
var heldWhileModifiers = map[hii.Modifier]struct{}{
	hii.LeftControlModifier:  {},
	hii.RightControlModifier: {},
	hii.LeftShiftModifier:    {},
	hii.RightShiftModifier:   {},
	hii.LeftAltModifier:      {},
	hii.RightAltModifier:     {},
	hii.LeftLogoModifier:     {},
	hii.RightLogoModifier:    {},
	hii.MenuModifier:         {},
	hii.PrintModifier:        {},
	hii.SysRequestModifier:   {},
	hii.AltGrModifier:        {},
}

// toggleModifiers flip their membership in activeModifiers each time their
// key is pressed.
var toggleModifiers = map[hii.Modifier]struct{}{
	hii.NumLockModifier:    {},
	hii.CapsLockModifier:   {},
	hii.ScrollLockModifier: {},
}

// Scan codes, per the simple-text-input-ex protocol (UEFI spec 2.10 §12.2).
const (
	scanNull     uint16 = 0x0000
	scanUp       uint16 = 0x0001
	scanDown     uint16 = 0x0002
	scanRight    uint16 = 0x0003
	scanLeft     uint16 = 0x0004
	scanHome     uint16 = 0x0005
	scanEnd      uint16 = 0x0006
	scanInsert   uint16 = 0x0007
	scanDelete   uint16 = 0x0008
	scanPageUp   uint16 = 0x0009
	scanPageDown uint16 = 0x000A
	scanF1       uint16 = 0x000B
	scanF2       uint16 = 0x000C
	scanF3       uint16 = 0x000D
	scanF4       uint16 = 0x000E
	scanF5       uint16 = 0x000F
	scanF6       uint16 = 0x0010
	scanF7       uint16 = 0x0011
	scanF8       uint16 = 0x0012
	scanF9       uint16 = 0x0013
	scanF10      uint16 = 0x0014
	scanF11      uint16 = 0x0015
	scanF12      uint16 = 0x0016
	scanEsc      uint16 = 0x0017
	scanPause    uint16 = 0x0048
)

func modifierToScan(m hii.Modifier) uint16 {
	switch m {
	case hii.InsertModifier:
		return scanInsert
	case hii.DeleteModifier:
		return scanDelete
	case hii.PageDownModifier:
		return scanPageDown
	case hii.PageUpModifier:
		return scanPageUp
	case hii.HomeModifier:
		return scanHome
	case hii.EndModifier:
		return scanEnd
	case hii.LeftArrowModifier:
		return scanLeft
	case hii.RightArrowModifier:
		return scanRight
	case hii.DownArrowModifier:
		return scanDown
	case hii.UpArrowModifier:
		return scanUp
	case hii.FunctionKeyOneModifier:
		return scanF1
	case hii.FunctionKeyTwoModifier:
		return scanF2
	case hii.FunctionKeyThreeModifier:
		return scanF3
	case hii.FunctionKeyFourModifier:
		return scanF4
	case hii.FunctionKeyFiveModifier:
		return scanF5
	case hii.FunctionKeySixModifier:
		return scanF6
	case hii.FunctionKeySevenModifier:
		return scanF7
	case hii.FunctionKeyEightModifier:
		return scanF8
	case hii.FunctionKeyNineModifier:
		return scanF9
	case hii.FunctionKeyTenModifier:
		return scanF10
	case hii.FunctionKeyElevenModifier:
		return scanF11
	case hii.FunctionKeyTwelveModifier:
		return scanF12
	case hii.PauseModifier:
		return scanPause
	default:
		return scanNull
	}
}

func modifierToLEDUsage(m hii.Modifier) (hidreport.Usage, bool) {
	switch m {
	case hii.NumLockModifier:
		return hidreport.NewUsage(0x08, 0x01), true
	case hii.CapsLockModifier:
		return hidreport.NewUsage(0x08, 0x02), true
	case hii.ScrollLockModifier:
		return hidreport.NewUsage(0x08, 0x03), true
	default:
		return 0, false
	}
}

// ShiftState bits (KeyData.ShiftState).
const (
	ShiftStateValid    uint32 = 1 << 31
	RightLogoPressed   uint32 = 1 << 3
	LeftLogoPressed    uint32 = 1 << 2
	ShiftStateMenuKey  uint32 = 1 << 4
	ShiftStateSysReq   uint32 = 1 << 5
	LeftShiftPressed   uint32 = 1 << 0
	RightShiftPressed  uint32 = 1 << 1
	LeftControlPressed uint32 = 1 << 8
	RightControlPressed uint32 = 1 << 9
	LeftAltPressed     uint32 = 1 << 10
	RightAltPressed    uint32 = 1 << 11
)

// ToggleState bits (KeyData.ToggleState).
const (
	ToggleStateValid  uint8 = 1 << 7
	KeyStateExposed   uint8 = 1 << 6
	ScrollLockActive  uint8 = 1 << 0
	NumLockActive     uint8 = 1 << 1
	CapsLockActive    uint8 = 1 << 2
)
