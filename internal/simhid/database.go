package simhid

import (
	"sync"

	"github.com/google/uuid"

	"github.com/microsoft/mu-hid-go/hii"
	"github.com/microsoft/mu-hid-go/internal/status"
)

// Database is an in-memory hii.Database: package lists live in a map keyed
// by the handle NewPackageList returns and are found through the GUIDs of
// the layouts they carry, one layout is "active", and subscribers are called
// synchronously on every SetKeyboardLayout (mirroring a real HII database
// signalling its event group inline rather than deferring it).
type Database struct {
	mu       sync.Mutex
	handles  map[hii.HiiHandle][]byte
	byLayout map[uuid.UUID]hii.HiiHandle
	active   uuid.UUID
	next     hii.HiiHandle
	subs     map[int]func()
	nextSub  int
}

// NewDatabase returns an empty Database.
func NewDatabase() *Database {
	return &Database{
		handles:  map[hii.HiiHandle][]byte{},
		byLayout: map[uuid.UUID]hii.HiiHandle{},
		subs:     map[int]func(){},
	}
}

func (d *Database) NewPackageList(listBytes []byte, driverHandle hii.DriverHandle) (hii.HiiHandle, error) {
	pl, err := hii.Decode(listBytes)
	if err != nil {
		return 0, status.New(status.InvalidParameter)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	handle := d.next
	d.handles[handle] = listBytes
	for _, l := range pl.Package.Layouts {
		d.byLayout[l.GUID] = handle
	}
	return handle, nil
}

func (d *Database) SetKeyboardLayout(guid uuid.UUID) error {
	d.mu.Lock()
	if _, ok := d.byLayout[guid]; !ok {
		d.mu.Unlock()
		return status.New(status.NotFound)
	}
	d.active = guid
	subs := make([]func(), 0, len(d.subs))
	for _, fn := range d.subs {
		subs = append(subs, fn)
	}
	d.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
	return nil
}

func (d *Database) GetKeyboardLayout(guid *uuid.UUID, size *int, buf []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	target := d.active
	if guid != nil {
		target = *guid
	}
	handle, ok := d.byLayout[target]
	if !ok {
		*size = 0
		return status.New(status.NotFound)
	}
	data := d.handles[handle]
	if buf == nil || len(buf) < len(data) {
		*size = len(data)
		return status.New(status.BufferTooSmall)
	}
	copy(buf, data)
	*size = len(data)
	return nil
}

func (d *Database) RegisterLayoutChange(fn func()) (unregister func()) {
	d.mu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subs[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.subs, id)
		d.mu.Unlock()
	}
}

var _ hii.Database = (*Database)(nil)
