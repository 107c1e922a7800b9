package simhid

import "github.com/microsoft/mu-hid-go/hidio"

// bootKeyboardDescriptor is the standard USB HID boot-protocol keyboard
// report descriptor: an 8-bit modifier byte, a reserved byte, a 6-key
// rollover array, and a 5-bit LED output report.
var bootKeyboardDescriptor = []byte{
	0x05, 0x01, 0x09, 0x06, 0xa1, 0x01,
	0x75, 0x01, 0x95, 0x08, 0x05, 0x07, 0x19, 0xE0, 0x29, 0xE7,
	0x15, 0x00, 0x25, 0x01, 0x81, 0x02,
	0x95, 0x01, 0x75, 0x08, 0x81, 0x03,
	0x95, 0x05, 0x75, 0x01, 0x05, 0x08, 0x19, 0x01, 0x29, 0x05, 0x91, 0x02,
	0x95, 0x01, 0x75, 0x03, 0x91, 0x02,
	0x95, 0x06, 0x75, 0x08, 0x15, 0x00, 0x26, 0xff, 0x00,
	0x05, 0x07, 0x19, 0x00, 0x2a, 0xff, 0x00, 0x81, 0x00,
	0xc0,
}

// Keyboard is a simulated boot-protocol HID keyboard: Press/Release/Tap
// build and inject 8-byte reports, and OnLEDChange observes the LED
// output report a keyboard.Handler writes back.
type Keyboard struct {
	*reportTransport
	pressed [6]uint8
}

// NewKeyboard returns a Keyboard ready to Open via hidio.Open.
func NewKeyboard() *Keyboard {
	return &Keyboard{reportTransport: newReportTransport(bootKeyboardDescriptor)}
}

// OnLEDChange registers fn to run whenever the host writes an LED output
// report. data is the raw 1-byte LED bitmask (NumLock=bit0, CapsLock=bit1,
// ScrollLock=bit2).
func (k *Keyboard) OnLEDChange(fn func(leds byte)) {
	k.mu.Lock()
	k.onOutput = func(id uint8, data []byte) {
		if len(data) > 0 {
			fn(data[0])
		}
	}
	k.mu.Unlock()
}

// Press synthesizes and injects a report with usage added to the held-key
// array (if there is room) and mods set as the modifier byte.
func (k *Keyboard) Press(usage uint8, mods uint8) {
	for i, u := range k.pressed {
		if u == 0 {
			k.pressed[i] = usage
			break
		}
	}
	k.emit(mods)
}

// Release removes usage from the held-key array and injects the result.
func (k *Keyboard) Release(usage uint8, mods uint8) {
	for i, u := range k.pressed {
		if u == usage {
			copy(k.pressed[i:], k.pressed[i+1:])
			k.pressed[len(k.pressed)-1] = 0
		}
	}
	k.emit(mods)
}

// Tap presses and immediately releases usage, injecting both reports.
func (k *Keyboard) Tap(usage uint8, mods uint8) {
	k.Press(usage, mods)
	k.Release(usage, mods)
}

func (k *Keyboard) emit(mods uint8) {
	report := make([]byte, 8)
	report[0] = mods
	copy(report[2:], k.pressed[:])
	k.inject(report)
}

var _ hidio.Transport = (*Keyboard)(nil)
