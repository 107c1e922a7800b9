package simhid_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/microsoft/mu-hid-go/hii"
	"github.com/microsoft/mu-hid-go/internal/simhid"
	"github.com/microsoft/mu-hid-go/internal/status"
)

func TestDatabaseRoundTripsDefaultLayout(t *testing.T) {
	db := simhid.NewDatabase()
	pl := &hii.PackageList{
		GUID:    hii.DefaultKeyboardPkgListGUID,
		Package: hii.Package{Layouts: []*hii.Layout{hii.DefaultLayout()}},
	}
	_, err := db.NewPackageList(hii.Encode(pl), 1)
	require.NoError(t, err)
	require.NoError(t, db.SetKeyboardLayout(hii.DefaultKeyboardLayoutGUID))

	size := 0
	err = db.GetKeyboardLayout(nil, &size, nil)
	require.ErrorIs(t, err, status.BufferTooSmall)
	require.Positive(t, size)

	buf := make([]byte, size)
	require.NoError(t, db.GetKeyboardLayout(nil, &size, buf))

	got, err := hii.Decode(buf)
	require.NoError(t, err)
	require.Len(t, got.Package.Layouts, 1)
	require.Equal(t, hii.DefaultKeyboardLayoutGUID, got.Package.Layouts[0].GUID)
}

func TestDatabaseNotifiesLayoutChangeSubscribers(t *testing.T) {
	db := simhid.NewDatabase()
	pl := &hii.PackageList{
		GUID:    hii.DefaultKeyboardPkgListGUID,
		Package: hii.Package{Layouts: []*hii.Layout{hii.DefaultLayout()}},
	}
	_, err := db.NewPackageList(hii.Encode(pl), 1)
	require.NoError(t, err)

	notified := 0
	unregister := db.RegisterLayoutChange(func() { notified++ })
	require.NoError(t, db.SetKeyboardLayout(hii.DefaultKeyboardLayoutGUID))
	require.Equal(t, 1, notified)

	unregister()
	require.NoError(t, db.SetKeyboardLayout(hii.DefaultKeyboardLayoutGUID))
	require.Equal(t, 1, notified)
}

func TestDatabaseGetKeyboardLayoutNotFoundBeforeAnyInstall(t *testing.T) {
	db := simhid.NewDatabase()
	size := 0
	err := db.GetKeyboardLayout(nil, &size, nil)
	require.ErrorIs(t, err, status.NotFound)
}
