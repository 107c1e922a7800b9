package hii

// PhysicalKey enumerates the ~106 physical key positions a keyboard layout
// can describe. The ordering matches the UEFI HII physical-key enumeration
// so that layout packages built against either this package or a firmware
// build agree on the encoded value.
type PhysicalKey uint32

const (
	KeyLCtrl PhysicalKey = iota
	KeyA0
	KeyLAlt
	KeySpaceBar
	KeyA2
	KeyA3
	KeyA4
	KeyRCtrl
	KeyLeftArrow
	KeyDownArrow
	KeyRightArrow
	KeyZero
	KeyPeriod
	KeyEnter
	KeyLShift
	KeyB0
	KeyB1
	KeyB2
	KeyB3
	KeyB4
	KeyB5
	KeyB6
	KeyB7
	KeyB8
	KeyB9
	KeyB10
	KeyRShift
	KeyUpArrow
	KeyOne
	KeyTwo
	KeyThree
	KeyCapsLock
	KeyC1
	KeyC2
	KeyC3
	KeyC4
	KeyC5
	KeyC6
	KeyC7
	KeyC8
	KeyC9
	KeyC10
	KeyC11
	KeyC12
	KeyFour
	KeyFive
	KeySix
	KeyPlus
	KeyTab
	KeyD1
	KeyD2
	KeyD3
	KeyD4
	KeyD5
	KeyD6
	KeyD7
	KeyD8
	KeyD9
	KeyD10
	KeyD11
	KeyD12
	KeyD13
	KeyDel
	KeyEnd
	KeyPgDn
	KeySeven
	KeyEight
	KeyNine
	KeyE0
	KeyE1
	KeyE2
	KeyE3
	KeyE4
	KeyE5
	KeyE6
	KeyE7
	KeyE8
	KeyE9
	KeyE10
	KeyE11
	KeyE12
	KeyBackSpace
	KeyIns
	KeyHome
	KeyPgUp
	KeyNLck
	KeySlash
	KeyAsterisk
	KeyMinus
	KeyEsc
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyPrint
	KeySLck
	KeyPause
	KeyIntl0
	KeyIntl1
	KeyIntl2
	KeyIntl3
	KeyIntl4
	KeyIntl5
	KeyIntl6
	KeyIntl7
	KeyIntl8
	KeyIntl9

	numPhysicalKeys
)

// IsValid reports whether k is a defined physical-key enum value.
func (k PhysicalKey) IsValid() bool { return k < numPhysicalKeys }
