package keyboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/hii"
	"github.com/microsoft/mu-hid-go/internal/status"
	"github.com/microsoft/mu-hid-go/keyboard"
	"github.com/stretchr/testify/require"
)

// bootKeyboardDescriptor is the standard boot-protocol keyboard report
// descriptor (modifier byte + reserved byte + 6-key array + 5-bit LED
// output report), identical to internal/hidreport's fixture.
var bootKeyboardDescriptor = []byte{
	0x05, 0x01,
	0x09, 0x06,
	0xa1, 0x01,
	0x75, 0x01,
	0x95, 0x08,
	0x05, 0x07,
	0x19, 0xE0,
	0x29, 0xE7,
	0x15, 0x00,
	0x25, 0x01,
	0x81, 0x02,
	0x95, 0x01,
	0x75, 0x08,
	0x81, 0x03,
	0x95, 0x05,
	0x75, 0x01,
	0x05, 0x08,
	0x19, 0x01,
	0x29, 0x05,
	0x91, 0x02,
	0x95, 0x01,
	0x75, 0x03,
	0x91, 0x02,
	0x95, 0x06,
	0x75, 0x08,
	0x15, 0x00,
	0x26, 0xff, 0x00,
	0x05, 0x07,
	0x19, 0x00,
	0x2a, 0xff, 0x00,
	0x81, 0x00,
	0xc0,
}

// fakeTransport is an in-memory hidio.Transport standing in for a real HID
// device node: it returns a fixed report descriptor, captures output
// reports, and lets the test inject input reports through the registered
// callback.
type fakeTransport struct {
	descriptor []byte
	cb         hidio.ReportFunc
	outputs    [][]byte
	closed     bool
}

func (f *fakeTransport) GetReportDescriptor(size *int, buf []byte) error {
	if buf == nil || len(buf) < len(f.descriptor) {
		*size = len(f.descriptor)
		return status.New(status.BufferTooSmall)
	}
	copy(buf, f.descriptor)
	*size = len(f.descriptor)
	return nil
}

func (f *fakeTransport) SetReport(id uint8, kind hidio.ReportKind, data []byte) error {
	cp := append([]byte(nil), data...)
	f.outputs = append(f.outputs, cp)
	return nil
}

func (f *fakeTransport) RegisterReportCallback(fn hidio.ReportFunc) error {
	f.cb = fn
	return nil
}

func (f *fakeTransport) UnregisterReportCallback() error {
	f.cb = nil
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func (f *fakeTransport) inject(report []byte) {
	if f.cb != nil {
		f.cb(report)
	}
}

func newTestHandler(t *testing.T) (*keyboard.Handler, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{descriptor: bootKeyboardDescriptor}
	adapter, err := hidio.Open(context.Background(), "test0", true,
		func(ctx context.Context, ctrl hidio.ControllerHandle) (hidio.Transport, error) {
			return ft, nil
		})
	require.NoError(t, err)

	h, err := keyboard.NewHandler(adapter, hii.DefaultLayout())
	require.NoError(t, err)
	return h, ft
}

func pressRelease(ft *fakeTransport, usage byte) {
	ft.inject([]byte{0x00, 0x00, usage, 0, 0, 0, 0, 0})
	ft.inject([]byte{0x00, 0x00, 0x00, 0, 0, 0, 0, 0})
}

func TestHandlerSimplePress(t *testing.T) {
	h, ft := newTestHandler(t)

	ft.inject([]byte{0x00, 0x00, 0x04, 0, 0, 0, 0, 0}) // usage 0x04 == 'a'

	k, err := h.ReadKeyEx()
	require.NoError(t, err)
	require.Equal(t, uint16('a'), k.UnicodeChar)

	_, err = h.ReadKeyEx()
	require.Error(t, err)
}

func TestHandlerShiftedLetter(t *testing.T) {
	h, ft := newTestHandler(t)

	ft.inject([]byte{0x02, 0x00, 0x04, 0, 0, 0, 0, 0}) // left shift + 'a'
	k, err := h.ReadKeyEx()
	require.NoError(t, err)
	require.Equal(t, uint16('A'), k.UnicodeChar)
	require.Equal(t, uint32(0), k.ShiftState&(keyboard.LeftShiftPressed|keyboard.RightShiftPressed))
}

func TestHandlerCtrlB(t *testing.T) {
	h, ft := newTestHandler(t)

	ft.inject([]byte{0x01, 0x00, 0x05, 0, 0, 0, 0, 0}) // left ctrl + 'b'
	k, err := h.ReadKeyEx()
	require.NoError(t, err)
	require.Equal(t, uint16('b'), k.UnicodeChar)
	require.NotEqual(t, uint32(0), k.ShiftState&keyboard.LeftControlPressed)
}

func TestHandlerCtrlAltDeleteTriggersReset(t *testing.T) {
	h, ft := newTestHandler(t)
	triggered := false
	h.ResetHook = func() { triggered = true }

	// left ctrl + left alt + delete (usage 0x4C)
	ft.inject([]byte{0x05, 0x00, 0x4C, 0, 0, 0, 0, 0})
	require.True(t, triggered)
}

func TestHandlerReset(t *testing.T) {
	h, ft := newTestHandler(t)
	pressRelease(ft, 0x04)
	_, _ = h.ReadKeyEx()

	require.NoError(t, h.Reset(true))
	_, err := h.ReadKeyEx()
	require.Error(t, err)
}

func TestHandlerNumLockTogglesNumpadDigit(t *testing.T) {
	h, ft := newTestHandler(t)

	// NumLock on (usage 0x53), then numpad 1 (usage 0x59) -> digit '1'
	pressRelease(ft, 0x53)
	ft.inject([]byte{0x00, 0x00, 0x59, 0, 0, 0, 0, 0})
	k, err := h.ReadKeyEx()
	require.NoError(t, err)
	require.Equal(t, uint16('1'), k.UnicodeChar)

	// NumLock off again -> numpad 1 behaves as End (scan code, no unicode)
	pressRelease(ft, 0x53)
	ft.inject([]byte{0x00, 0x00, 0x59, 0, 0, 0, 0, 0})
	k, err = h.ReadKeyEx()
	require.NoError(t, err)
	require.Equal(t, uint16(0), k.UnicodeChar)
}

func TestHandlerRegisterKeyNotify(t *testing.T) {
	h, ft := newTestHandler(t)

	received := make(chan keyboard.KeyData, 1)
	_, err := h.RegisterKeyNotify(keyboard.NotifyPattern{UnicodeChar: uint16('a')}, func(k keyboard.KeyData) {
		received <- k
	})
	require.NoError(t, err)

	ft.inject([]byte{0x00, 0x00, 0x04, 0, 0, 0, 0, 0})

	select {
	case k := <-received:
		require.Equal(t, uint16('a'), k.UnicodeChar)
	case <-time.After(time.Second):
		t.Fatal("notify callback was not invoked")
	}
}

func TestHandlerReadKeyFoldsCtrlLetterToControlCode(t *testing.T) {
	h, ft := newTestHandler(t)

	ft.inject([]byte{0x01, 0x00, 0x05, 0, 0, 0, 0, 0}) // left ctrl + 'b'
	k, err := h.ReadKey()
	require.NoError(t, err)
	require.Equal(t, uint16(2), k.UnicodeChar) // 'b'-'a'+1
}

func TestHandlerGetPendingNotify(t *testing.T) {
	h, ft := newTestHandler(t)

	_, err := h.RegisterKeyNotify(keyboard.NotifyPattern{UnicodeChar: uint16('a')}, func(keyboard.KeyData) {})
	require.NoError(t, err)

	ft.inject([]byte{0x00, 0x00, 0x04, 0, 0, 0, 0, 0})

	ev, cbs, err := h.GetPendingNotify()
	require.NoError(t, err)
	require.Equal(t, uint16('a'), ev.UnicodeChar)
	require.Len(t, cbs, 1)
}
