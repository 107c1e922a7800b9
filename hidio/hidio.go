// Package hidio adapts a raw HID transport (a device node capable of
// returning its report descriptor, receiving input reports, and accepting
// output reports) into the size-probe/buffer conventions the keyboard and
// pointer handlers expect.
package hidio

import (
	"context"

	"github.com/microsoft/mu-hid-go/internal/hidreport"
	"github.com/microsoft/mu-hid-go/internal/log"
	"github.com/microsoft/mu-hid-go/internal/status"
)

// ReportKind distinguishes the three HID report types.
type ReportKind uint8

const (
	ReportInput ReportKind = iota + 1
	ReportOutput
	ReportFeature
)

// ReportFunc receives one inbound HID input report (report-id byte still
// attached, if the device uses report ids).
type ReportFunc func(data []byte)

// Transport is the raw device-level HID interface this package adapts.
// Implementations are free-standing (e.g. hidrawlinux.Device); Transport
// itself never dials hardware.
type Transport interface {
	// GetReportDescriptor size-probes like GetKeyboardLayout: if buf is nil
	// or *size is too small, return status.BufferTooSmall with *size set to
	// the required length; else fill buf and return nil.
	GetReportDescriptor(size *int, buf []byte) error
	SetReport(id uint8, kind ReportKind, data []byte) error
	RegisterReportCallback(fn ReportFunc) error
	UnregisterReportCallback() error
	Close() error
}

// ControllerHandle identifies the underlying device node an Adapter opens.
type ControllerHandle string

// ReportReceiver is notified of each inbound report a Multiplexer splits
// across the installed handlers.
type ReportReceiver interface {
	ReceiveReport(data []byte, adapter *Adapter)
}

// OpenFunc constructs a Transport for a controller handle; production code
// wires this to hidrawlinux.OpenFunc, tests substitute a fake.
type OpenFunc func(ctx context.Context, ctrl ControllerHandle) (Transport, error)

// Adapter wraps a Transport with the owning/probing distinction §4.E
// requires: a probing adapter can read the report descriptor and send
// output reports, but cannot register a report receiver, and its Close
// leaves the transport open.
type Adapter struct {
	ctrl      ControllerHandle
	transport Transport
	owned     bool
	receiver  ReportReceiver
	rawLogger log.RawLogger
}

// SetRawLogger installs rl to hex-dump every inbound input report and
// outbound output report this adapter passes through. A nil rl (the
// default) disables raw logging.
func (a *Adapter) SetRawLogger(rl log.RawLogger) {
	a.rawLogger = rl
}

// Open acquires a Transport for ctrl via open. owned=true claims exclusive
// ownership (the caller intends to drive the device); owned=false is a
// non-claiming probe.
func Open(ctx context.Context, ctrl ControllerHandle, owned bool, open OpenFunc) (*Adapter, error) {
	t, err := open(ctx, ctrl)
	if err != nil {
		return nil, err
	}
	return &Adapter{ctrl: ctrl, transport: t, owned: owned}, nil
}

// GetReportDescriptor runs the size-probe/allocate/fetch sequence against
// the underlying transport and parses the result.
func (a *Adapter) GetReportDescriptor() (*hidreport.ReportDescriptor, error) {
	size := 0
	err := a.transport.GetReportDescriptor(&size, nil)
	if err == nil {
		return nil, status.New(status.DeviceError)
	}
	if !status.Is(err, status.BufferTooSmall) {
		return nil, err
	}
	buf := make([]byte, size)
	if err := a.transport.GetReportDescriptor(&size, buf); err != nil {
		return nil, err
	}
	desc, err := hidreport.Parse(buf)
	if err != nil {
		return nil, status.New(status.DeviceError)
	}
	return desc, nil
}

// SetOutputReport writes an output report. idOrZero is the report id, or 0
// when the device has no report ids.
func (a *Adapter) SetOutputReport(idOrZero uint8, data []byte) error {
	if a.rawLogger != nil {
		a.rawLogger.Log(false, data)
	}
	return a.transport.SetReport(idOrZero, ReportOutput, data)
}

// SetReportReceiver installs r as the callback for inbound input reports.
// Only an owning adapter may do this.
func (a *Adapter) SetReportReceiver(r ReportReceiver) error {
	if !a.owned {
		return status.New(status.AccessDenied)
	}
	if a.receiver != nil {
		_ = a.transport.UnregisterReportCallback()
	}
	a.receiver = r
	return a.transport.RegisterReportCallback(func(data []byte) {
		if a.rawLogger != nil {
			a.rawLogger.Log(true, data)
		}
		r.ReceiveReport(data, a)
	})
}

// TakeReportReceiver removes and returns the currently installed receiver.
func (a *Adapter) TakeReportReceiver() (ReportReceiver, bool) {
	if a.receiver == nil {
		return nil, false
	}
	r := a.receiver
	a.receiver = nil
	_ = a.transport.UnregisterReportCallback()
	return r, true
}

// Controller returns the handle this adapter was opened against.
func (a *Adapter) Controller() ControllerHandle { return a.ctrl }

// Close releases the transport. A non-owning adapter drops silently
// without closing the underlying handle, since it never claimed it.
func (a *Adapter) Close() error {
	if !a.owned {
		return nil
	}
	return a.transport.Close()
}
