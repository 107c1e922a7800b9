// Package simhid provides an in-process hidio.Transport and hii.Database
// pair that stand in for real hardware and firmware services, so
// cmd/hidsim can drive the full keyboard/pointer/input stack from
// synthetic reports instead of a /dev/hidraw* node.
package simhid

import (
	"sync"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/internal/status"
)

// reportTransport is the shared hidio.Transport skeleton both the
// simulated keyboard and mouse build on: a fixed report descriptor, a
// single registered callback, and a record of the last output report a
// handler wrote (LED state, for the keyboard).
type reportTransport struct {
	descriptor []byte

	mu         sync.Mutex
	cb         hidio.ReportFunc
	lastOutput []byte
	onOutput   func(id uint8, data []byte)
}

func newReportTransport(descriptor []byte) *reportTransport {
	return &reportTransport{descriptor: descriptor}
}

func (t *reportTransport) GetReportDescriptor(size *int, buf []byte) error {
	if buf == nil || len(buf) < len(t.descriptor) {
		*size = len(t.descriptor)
		return status.New(status.BufferTooSmall)
	}
	copy(buf, t.descriptor)
	*size = len(t.descriptor)
	return nil
}

func (t *reportTransport) SetReport(id uint8, kind hidio.ReportKind, data []byte) error {
	if kind != hidio.ReportOutput {
		return status.New(status.Unsupported)
	}
	t.mu.Lock()
	t.lastOutput = append([]byte(nil), data...)
	onOutput := t.onOutput
	t.mu.Unlock()
	if onOutput != nil {
		onOutput(id, data)
	}
	return nil
}

func (t *reportTransport) RegisterReportCallback(fn hidio.ReportFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cb != nil {
		return status.New(status.AccessDenied)
	}
	t.cb = fn
	return nil
}

func (t *reportTransport) UnregisterReportCallback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cb = nil
	return nil
}

func (t *reportTransport) Close() error { return nil }

// inject delivers report to whichever callback is currently registered, if
// any. Reports injected before a handler registers are dropped, mirroring
// a real device that simply has nobody listening yet.
func (t *reportTransport) inject(report []byte) {
	t.mu.Lock()
	cb := t.cb
	t.mu.Unlock()
	if cb != nil {
		cb(report)
	}
}
