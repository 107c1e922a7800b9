package simhid

// Boot-report modifier-byte bit positions (USB HID 1.11 §B.1).
const (
	ModLeftCtrl   uint8 = 1 << 0
	ModLeftShift  uint8 = 1 << 1
	ModLeftAlt    uint8 = 1 << 2
	ModLeftGUI    uint8 = 1 << 3
	ModRightCtrl  uint8 = 1 << 4
	ModRightShift uint8 = 1 << 5
	ModRightAlt   uint8 = 1 << 6
	ModRightGUI   uint8 = 1 << 7
)

// lowerUsage/digitUsage/plainSymbolUsage/shiftedSymbolUsage follow the standard US-104
// keyboard-page usage assignment (the same table keyboard.Handler resolves
// in the opposite direction via its own usageToPhysicalKey).
var lowerUsage = map[rune]uint8{
	'a': 0x04, 'b': 0x05, 'c': 0x06, 'd': 0x07, 'e': 0x08, 'f': 0x09,
	'g': 0x0A, 'h': 0x0B, 'i': 0x0C, 'j': 0x0D, 'k': 0x0E, 'l': 0x0F,
	'm': 0x10, 'n': 0x11, 'o': 0x12, 'p': 0x13, 'q': 0x14, 'r': 0x15,
	's': 0x16, 't': 0x17, 'u': 0x18, 'v': 0x19, 'w': 0x1A, 'x': 0x1B,
	'y': 0x1C, 'z': 0x1D,
}

var digitUsage = map[rune]uint8{
	'1': 0x1E, '2': 0x1F, '3': 0x20, '4': 0x21, '5': 0x22,
	'6': 0x23, '7': 0x24, '8': 0x25, '9': 0x26, '0': 0x27,
}

// plainSymbolUsage holds symbols produced without Shift.
var plainSymbolUsage = map[rune]uint8{
	'\n': 0x28, '\r': 0x28, '\t': 0x2B, ' ': 0x2C,
	'-': 0x2D, '=': 0x2E, '[': 0x2F, ']': 0x30, '\\': 0x31,
	';': 0x33, '\'': 0x34, '`': 0x35, ',': 0x36, '.': 0x37, '/': 0x38,
	0x1B: 0x29, // Esc
	0x7F: 0x2A, // Backspace (DEL)
	0x08: 0x2A, // Backspace (BS)
}

// shiftedSymbolUsage holds symbols that require Shift on a US-104 layout,
// mapped to the usage of the unshifted key that produces them.
var shiftedSymbolUsage = map[rune]uint8{
	'!': 0x1E, '@': 0x1F, '#': 0x20, '$': 0x21, '%': 0x22,
	'^': 0x23, '&': 0x24, '*': 0x25, '(': 0x26, ')': 0x27,
	'_': 0x2D, '+': 0x2E, '{': 0x2F, '}': 0x30, '|': 0x31,
	':': 0x33, '"': 0x34, '~': 0x35, '<': 0x36, '>': 0x37, '?': 0x38,
}

// KeyForRune maps an ASCII rune typed at a terminal to the HID usage code
// and modifier bits that produce it on a standard US-104 layout. ok is
// false for runes outside the mapped ASCII subset (e.g. multi-byte UTF-8
// beyond Latin-1, arrow-key escape sequences the caller should intercept
// before reaching here).
func KeyForRune(r rune) (usage uint8, mods uint8, ok bool) {
	if u, found := lowerUsage[r]; found {
		return u, 0, true
	}
	if r >= 'A' && r <= 'Z' {
		if u, found := lowerUsage[r+('a'-'A')]; found {
			return u, ModLeftShift, true
		}
	}
	if u, found := digitUsage[r]; found {
		return u, 0, true
	}
	if u, found := plainSymbolUsage[r]; found {
		return u, 0, true
	}
	if u, found := shiftedSymbolUsage[r]; found {
		return u, ModLeftShift, true
	}
	return 0, 0, false
}
