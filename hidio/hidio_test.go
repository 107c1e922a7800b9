package hidio_test

import (
	"context"
	"testing"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/internal/status"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	descriptor      []byte
	outputs         []outputCall
	receiverInstall int
	closed          bool
}

type outputCall struct {
	id   uint8
	kind hidio.ReportKind
	data []byte
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
	f.outputs = append(f.outputs, outputCall{id, kind, append([]byte(nil), data...)})
	return nil
}

func (f *fakeTransport) RegisterReportCallback(fn hidio.ReportFunc) error {
	f.receiverInstall++
	return nil
}

func (f *fakeTransport) UnregisterReportCallback() error {
	f.receiverInstall--
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

type fakeReceiver struct {
	got []byte
}

func (r *fakeReceiver) ReceiveReport(data []byte, a *hidio.Adapter) { r.got = data }

func openFake(ft *fakeTransport) hidio.OpenFunc {
	return func(ctx context.Context, ctrl hidio.ControllerHandle) (hidio.Transport, error) {
		return ft, nil
	}
}

func TestAdapterSizeProbesReportDescriptor(t *testing.T) {
	ft := &fakeTransport{descriptor: []byte{0x05, 0x01, 0x09, 0x06, 0xa1, 0x01, 0xc0}}
	a, err := hidio.Open(context.Background(), "dev0", true, openFake(ft))
	require.NoError(t, err)

	desc, err := a.GetReportDescriptor()
	require.NoError(t, err)
	require.NotNil(t, desc)
}

func TestOwningAdapterCanInstallReceiver(t *testing.T) {
	ft := &fakeTransport{}
	a, err := hidio.Open(context.Background(), "dev0", true, openFake(ft))
	require.NoError(t, err)

	r := &fakeReceiver{}
	require.NoError(t, a.SetReportReceiver(r))
	require.Equal(t, 1, ft.receiverInstall)

	taken, ok := a.TakeReportReceiver()
	require.True(t, ok)
	require.Same(t, r, taken)
	require.Equal(t, 0, ft.receiverInstall)
}

func TestNonOwningAdapterCannotInstallReceiver(t *testing.T) {
	ft := &fakeTransport{}
	a, err := hidio.Open(context.Background(), "dev0", false, openFake(ft))
	require.NoError(t, err)

	err = a.SetReportReceiver(&fakeReceiver{})
	require.Error(t, err)
	require.True(t, status.Is(err, status.AccessDenied))
}

func TestNonOwningAdapterCloseDoesNotCloseTransport(t *testing.T) {
	ft := &fakeTransport{}
	a, err := hidio.Open(context.Background(), "dev0", false, openFake(ft))
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.False(t, ft.closed)
}

func TestOwningAdapterCloseClosesTransport(t *testing.T) {
	ft := &fakeTransport{}
	a, err := hidio.Open(context.Background(), "dev0", true, openFake(ft))
	require.NoError(t, err)

	require.NoError(t, a.Close())
	require.True(t, ft.closed)
}

func TestSetOutputReportForwardsToTransport(t *testing.T) {
	ft := &fakeTransport{}
	a, err := hidio.Open(context.Background(), "dev0", true, openFake(ft))
	require.NoError(t, err)

	require.NoError(t, a.SetOutputReport(0, []byte{0x07}))
	require.Len(t, ft.outputs, 1)
	require.Equal(t, hidio.ReportOutput, ft.outputs[0].kind)
	require.Equal(t, []byte{0x07}, ft.outputs[0].data)
}
