package input_test

import (
	"context"
	"testing"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/input"
	"github.com/microsoft/mu-hid-go/internal/status"
	"github.com/stretchr/testify/require"
)

// bootKeyboardDescriptor is the standard boot-protocol keyboard report
// descriptor: modifier byte + reserved byte + 6-key array + 5-bit LED
// output report.
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

type fakeTransport struct {
	descriptor []byte
	cb         hidio.ReportFunc
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

func (f *fakeTransport) SetReport(id uint8, kind hidio.ReportKind, data []byte) error { return nil }
func (f *fakeTransport) RegisterReportCallback(fn hidio.ReportFunc) error {
	f.cb = fn
	return nil
}
func (f *fakeTransport) UnregisterReportCallback() error { f.cb = nil; return nil }
func (f *fakeTransport) Close() error                    { return nil }
func (f *fakeTransport) inject(report []byte)            { f.cb(report) }

func newTestMultiplexer(t *testing.T) (*input.Multiplexer, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{descriptor: bootKeyboardDescriptor}
	open := func(ctx context.Context, ctrl hidio.ControllerHandle) (hidio.Transport, error) {
		return ft, nil
	}
	mux := input.NewMultiplexer(open, input.DefaultReceivers(nil, 0, nil, nil), nil, nil)
	return mux, ft
}

func TestMultiplexerStartKeepsOnlySurvivingReceivers(t *testing.T) {
	mux, _ := newTestMultiplexer(t)
	require.True(t, mux.Supported(context.Background(), "ctrl0"))
	require.NoError(t, mux.Start(context.Background(), "ctrl0"))

	svcs, ok := mux.Services("ctrl0")
	require.True(t, ok)

	_, err := svcs.AbsolutePointer.GetState()
	require.ErrorIs(t, err, status.DeviceError) // no pointer usages on this descriptor

	_, err = svcs.SimpleTextInput.ReadKey()
	require.ErrorIs(t, err, status.NotReady) // keyboard survived, just empty
}

func TestMultiplexerStartFailsWhenNoReceiverSurvives(t *testing.T) {
	ft := &fakeTransport{descriptor: []byte{0x05, 0x01, 0x09, 0x80, 0xa1, 0x01, 0xc0}}
	open := func(ctx context.Context, ctrl hidio.ControllerHandle) (hidio.Transport, error) {
		return ft, nil
	}
	mux := input.NewMultiplexer(open, input.DefaultReceivers(nil, 0, nil, nil), nil, nil)
	err := mux.Start(context.Background(), "ctrl0")
	require.ErrorIs(t, err, status.Unsupported)
}

func TestMultiplexerStopDetachesServices(t *testing.T) {
	mux, _ := newTestMultiplexer(t)
	require.NoError(t, mux.Start(context.Background(), "ctrl0"))
	svcs, ok := mux.Services("ctrl0")
	require.True(t, ok)

	require.NoError(t, mux.Stop(context.Background(), "ctrl0"))

	_, err := svcs.SimpleTextInput.ReadKey()
	require.ErrorIs(t, err, status.DeviceError)

	_, ok = mux.Services("ctrl0")
	require.False(t, ok)
}

func TestMultiplexerReportsFanOutToKeyboard(t *testing.T) {
	mux, ft := newTestMultiplexer(t)
	require.NoError(t, mux.Start(context.Background(), "ctrl0"))
	svcs, _ := mux.Services("ctrl0")

	ft.inject([]byte{0x00, 0x00, 0x04, 0, 0, 0, 0, 0})
	k, err := svcs.SimpleTextInputEx.ReadKeyEx()
	require.NoError(t, err)
	require.Equal(t, uint16('a'), k.UnicodeChar)
}
