// Package status defines the stable status-code enum the rest of the
// subsystem returns instead of ad-hoc errors, mirroring the small fixed
// return-code surface of the firmware ABI this core is built against.
package status

import "errors"

// Code is one of the firmware's stable return codes.
type Code int

const (
	Success Code = iota
	NotReady
	InvalidParameter
	Unsupported
	DeviceError
	BufferTooSmall
	NotStarted
	AccessDenied
	NotFound
	OutOfResources
)

func (c Code) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case NotReady:
		return "NOT_READY"
	case InvalidParameter:
		return "INVALID_PARAMETER"
	case Unsupported:
		return "UNSUPPORTED"
	case DeviceError:
		return "DEVICE_ERROR"
	case BufferTooSmall:
		return "BUFFER_TOO_SMALL"
	case NotStarted:
		return "NOT_STARTED"
	case AccessDenied:
		return "ACCESS_DENIED"
	case NotFound:
		return "NOT_FOUND"
	case OutOfResources:
		return "OUT_OF_RESOURCES"
	default:
		return "UNKNOWN_STATUS"
	}
}

// Error lets a bare Code serve as an errors.Is target.
func (c Code) Error() string { return c.String() }

// Error wraps a Code so it satisfies the error interface while remaining
// comparable via errors.Is against a bare Code sentinel.
type Error struct {
	Code Code
}

func (e *Error) Error() string { return e.Code.String() }

// Is lets errors.Is(err, SomeCode) work directly against a *Error, by
// treating a target Code value as equivalent to &Error{Code: target}.
func (e *Error) Is(target error) bool {
	if c, ok := target.(Code); ok {
		return c == e.Code
	}
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return false
}

// New returns nil for Success and a *Error otherwise.
func New(c Code) error {
	if c == Success {
		return nil
	}
	return &Error{Code: c}
}

// From extracts the Code carried by err, or DeviceError if err is a plain
// (non-status) error, or Success if err is nil.
func From(err error) Code {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return DeviceError
}

// Is reports whether err carries the given Code.
func Is(err error, c Code) bool {
	return errors.Is(err, &Error{Code: c})
}
