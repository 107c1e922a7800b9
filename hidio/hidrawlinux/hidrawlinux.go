//go:build linux

// Package hidrawlinux implements hidio.Transport against a Linux
// /dev/hidraw* device node, using the HIDIOCGRDESCSIZE/HIDIOCGRDESC ioctls
// to retrieve the report descriptor and plain read/write for reports.
package hidrawlinux

import (
	"context"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/internal/status"
)

const (
	hidiocGetRdescSize = 0x80044801 // HIDIOCGRDESCSIZE
	hidiocGetRdesc     = 0x90044802 // HIDIOCGRDESC
	maxReportDescSize  = 4096
)

// hidrawReportDescriptor mirrors struct hidraw_report_descriptor.
type hidrawReportDescriptor struct {
	Size  uint32
	Value [maxReportDescSize]byte
}

// Device is a hidio.Transport backed by an open /dev/hidraw* node.
type Device struct {
	f *os.File

	mu       sync.Mutex
	cb       hidio.ReportFunc
	stopRead chan struct{}
}

// Open opens the hidraw device node at path (e.g. "/dev/hidraw3").
func Open(ctx context.Context, path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("hidrawlinux: open %s: %w", path, err)
	}
	return &Device{f: f}, nil
}

// OpenFunc adapts Open to hidio.OpenFunc, treating ctrl as the device path.
func OpenFunc(ctx context.Context, ctrl hidio.ControllerHandle) (hidio.Transport, error) {
	return Open(ctx, string(ctrl))
}

func (d *Device) GetReportDescriptor(size *int, buf []byte) error {
	var descSize int32
	if err := ioctl(d.f.Fd(), hidiocGetRdescSize, unsafe.Pointer(&descSize)); err != nil {
		return status.New(status.DeviceError)
	}
	if buf == nil || len(buf) < int(descSize) {
		*size = int(descSize)
		return status.New(status.BufferTooSmall)
	}

	var desc hidrawReportDescriptor
	desc.Size = uint32(descSize)
	if err := ioctl(d.f.Fd(), hidiocGetRdesc, unsafe.Pointer(&desc)); err != nil {
		return status.New(status.DeviceError)
	}
	copy(buf, desc.Value[:descSize])
	*size = int(descSize)
	return nil
}

func (d *Device) SetReport(id uint8, kind hidio.ReportKind, data []byte) error {
	if kind != hidio.ReportOutput {
		return status.New(status.Unsupported)
	}
	out := make([]byte, 0, len(data)+1)
	out = append(out, id)
	out = append(out, data...)
	if _, err := d.f.Write(out); err != nil {
		return status.New(status.DeviceError)
	}
	return nil
}

func (d *Device) RegisterReportCallback(fn hidio.ReportFunc) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cb != nil {
		return status.New(status.AccessDenied)
	}
	d.cb = fn
	d.stopRead = make(chan struct{})
	go d.readLoop(d.stopRead)
	return nil
}

func (d *Device) UnregisterReportCallback() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cb == nil {
		return nil
	}
	close(d.stopRead)
	d.cb = nil
	return nil
}

func (d *Device) readLoop(stop chan struct{}) {
	buf := make([]byte, 64)
	for {
		select {
		case <-stop:
			return
		default:
		}
		n, err := d.f.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		d.mu.Lock()
		cb := d.cb
		d.mu.Unlock()
		if cb != nil {
			report := append([]byte(nil), buf[:n]...)
			cb(report)
		}
	}
}

func (d *Device) Close() error {
	d.mu.Lock()
	if d.cb != nil && d.stopRead != nil {
		close(d.stopRead)
		d.cb = nil
	}
	d.mu.Unlock()
	return d.f.Close()
}

func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
