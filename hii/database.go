package hii

import "github.com/google/uuid"

// DriverHandle identifies the driver instance registering a package list
// with the HII database. Opaque to this package; the value a real HII
// database implementation returns from its own driver-binding install.
type DriverHandle uintptr

// HiiHandle identifies a package list once installed in the HII database.
type HiiHandle uintptr

// LayoutSetEventGroupGUID identifies the event group the HII database
// signals whenever the current keyboard layout changes, whether by a
// SetKeyboardLayout call or by a platform installing a new package list.
var LayoutSetEventGroupGUID = uuid.MustParse("14982a4f-b0ed-45e3-a2bc-1a2f7e475c41")

// Database is the HII database service this core consumes: it stores
// keyboard-layout package lists, tracks which layout is currently active,
// and notifies subscribers when that selection changes.
type Database interface {
	// NewPackageList installs listBytes (as produced by Encode) under
	// driverHandle, returning a handle for later reference.
	NewPackageList(listBytes []byte, driverHandle DriverHandle) (HiiHandle, error)
	// SetKeyboardLayout selects guid as the active layout and signals
	// LayoutSetEventGroupGUID subscribers.
	SetKeyboardLayout(guid uuid.UUID) error
	// GetKeyboardLayout follows the size-probe convention of
	// hidio.Transport.GetReportDescriptor: a nil/too-small buf returns
	// status.BufferTooSmall with *size set to the required length. A nil
	// guid means "the current layout".
	GetKeyboardLayout(guid *uuid.UUID, size *int, buf []byte) error
	// RegisterLayoutChange subscribes fn to run whenever the active
	// layout changes, returning an unsubscribe function.
	RegisterLayoutChange(fn func()) (unregister func())
}
