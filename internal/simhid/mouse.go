package simhid

import "github.com/microsoft/mu-hid-go/hidio"

// bootMouseDescriptor is a standard 3-button relative mouse with a wheel
// axis, producing a 4-byte report: [buttons, dx, dy, dwheel], each axis a
// signed byte in [-127, 127].
var bootMouseDescriptor = []byte{
	0x05, 0x01,
	0x09, 0x02,
	0xA1, 0x01,
	0x09, 0x01,
	0xA1, 0x00,
	0x05, 0x09,
	0x19, 0x01,
	0x29, 0x03,
	0x15, 0x00,
	0x25, 0x01,
	0x95, 0x03,
	0x75, 0x01,
	0x81, 0x02,
	0x95, 0x01,
	0x75, 0x05,
	0x81, 0x03,
	0x05, 0x01,
	0x09, 0x30,
	0x09, 0x31,
	0x09, 0x38,
	0x15, 0x81,
	0x25, 0x7F,
	0x75, 0x08,
	0x95, 0x03,
	0x81, 0x06,
	0xC0,
	0xC0,
}

// Mouse is a simulated relative boot-protocol HID mouse.
type Mouse struct {
	*reportTransport
}

// NewMouse returns a Mouse ready to Open via hidio.Open.
func NewMouse() *Mouse {
	return &Mouse{reportTransport: newReportTransport(bootMouseDescriptor)}
}

// Move injects a single relative-motion report. buttons is the 3-bit
// button bitmask (bit0=left, bit1=right, bit2=middle); dx/dy/wheel are
// clamped to a signed byte by the caller's own choice of range.
func (m *Mouse) Move(buttons uint8, dx, dy, wheel int8) {
	m.inject([]byte{buttons, byte(dx), byte(dy), byte(wheel)})
}

var _ hidio.Transport = (*Mouse)(nil)
