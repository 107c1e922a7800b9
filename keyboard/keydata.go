package keyboard

// KeyData is a decoded keystroke: the unicode character and/or scan code it
// produced, together with the shift and toggle state in effect when it was
// generated.
type KeyData struct {
	UnicodeChar uint16
	ScanCode    uint16
	ShiftState  uint32
	ToggleState uint8
}

// IsPartial reports whether this event carries neither a unicode character
// nor a scan code (a "partial" keystroke, only ever enqueued when partial
// keystroke support is active).
func (k KeyData) IsPartial() bool {
	return k.UnicodeChar == 0 && k.ScanCode == scanNull
}

// NotifyPattern is a registration pattern for RegisterKeyNotify: a zero
// ShiftState or ToggleState acts as a wildcard for that field.
type NotifyPattern struct {
	UnicodeChar uint16
	ScanCode    uint16
	ShiftState  uint32
	ToggleState uint8
}

func (p NotifyPattern) matches(e KeyData) bool {
	if p.UnicodeChar != e.UnicodeChar || p.ScanCode != e.ScanCode {
		return false
	}
	if p.ShiftState != 0 && p.ShiftState != e.ShiftState {
		return false
	}
	if p.ToggleState != 0 && p.ToggleState != e.ToggleState {
		return false
	}
	return true
}

// NotifyFunc is invoked for a key event matching a registered pattern.
type NotifyFunc func(KeyData)

// NotifyHandle identifies a registered notification; returned by
// RegisterKeyNotify and consumed by UnregisterKeyNotify.
type NotifyHandle uint64
