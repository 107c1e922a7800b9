package pointer_test

import (
	"context"
	"testing"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/internal/status"
	"github.com/microsoft/mu-hid-go/pointer"
	"github.com/stretchr/testify/require"
)

// bootMouseDescriptor is a standard 3-button relative mouse with a wheel
// axis, producing a 4-byte report: [buttons, dx, dy, dwheel].
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

func (f *fakeTransport) UnregisterReportCallback() error {
	f.cb = nil
	return nil
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) inject(report []byte) {
	if f.cb != nil {
		f.cb(report)
	}
}

func newTestHandler(t *testing.T) (*pointer.Handler, *fakeTransport) {
	t.Helper()
	ft := &fakeTransport{descriptor: bootMouseDescriptor}
	adapter, err := hidio.Open(context.Background(), "test0", true,
		func(ctx context.Context, ctrl hidio.ControllerHandle) (hidio.Transport, error) {
			return ft, nil
		})
	require.NoError(t, err)

	h, err := pointer.NewHandler(adapter)
	require.NoError(t, err)
	return h, ft
}

func TestHandlerInitialState(t *testing.T) {
	h, _ := newTestHandler(t)
	_, err := h.GetState()
	require.ErrorIs(t, err, status.NotReady)
}

func TestHandlerRelativeMotion(t *testing.T) {
	h, ft := newTestHandler(t)

	ft.inject([]byte{0x05, 0x20, 0x20, 0x00})
	s, err := h.GetState()
	require.NoError(t, err)
	require.Equal(t, uint32(0x05), s.Buttons)
	require.Equal(t, uint64(544), s.X)
	require.Equal(t, uint64(544), s.Y)
	require.Equal(t, uint64(0), s.Z)

	ft.inject([]byte{0x00, 0x20, 0xF0, 0x20})
	s, err = h.GetState()
	require.NoError(t, err)
	require.Equal(t, uint32(0), s.Buttons)
	require.Equal(t, uint64(576), s.X)
	require.Equal(t, uint64(528), s.Y)
	require.Equal(t, uint64(32), s.Z)
}

func TestHandlerSaturatesAtBounds(t *testing.T) {
	h, ft := newTestHandler(t)
	for i := 0; i < 20; i++ {
		ft.inject([]byte{0x00, 0x7F, 0x7F, 0x00})
	}
	s, err := h.GetState()
	require.NoError(t, err)
	require.Equal(t, uint64(pointer.AxisResolution), s.X)
	require.Equal(t, uint64(pointer.AxisResolution), s.Y)

	for i := 0; i < 20; i++ {
		ft.inject([]byte{0x00, 0x81, 0x81, 0x00})
	}
	s, err = h.GetState()
	require.NoError(t, err)
	require.Equal(t, uint64(0), s.X)
	require.Equal(t, uint64(0), s.Y)
}

func TestHandlerModeReportsAlternateButtonAndPressureAsZ(t *testing.T) {
	h, _ := newTestHandler(t)
	mode := h.GetMode()
	require.NotZero(t, mode.Attributes&pointer.ModeAttributeAlternateButton)
	require.NotZero(t, mode.Attributes&pointer.ModeAttributePressureAsZ)
	require.Equal(t, uint64(0), mode.AbsoluteMinX)
	require.Equal(t, uint64(pointer.AxisResolution), mode.AbsoluteMaxX)
}

func TestHandlerRejectsEmptyDescriptor(t *testing.T) {
	ft := &fakeTransport{descriptor: []byte{
		0x05, 0x01, 0x09, 0x02, 0xA1, 0x01, 0xC0,
	}}
	adapter, err := hidio.Open(context.Background(), "test0", true,
		func(ctx context.Context, ctrl hidio.ControllerHandle) (hidio.Transport, error) {
			return ft, nil
		})
	require.NoError(t, err)
	_, err = pointer.NewHandler(adapter)
	require.ErrorIs(t, err, status.Unsupported)
}
