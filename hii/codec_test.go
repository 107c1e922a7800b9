package hii_test

import (
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/microsoft/mu-hid-go/hii"
	"github.com/stretchr/testify/require"
)

func TestRoundTripDefaultLayout(t *testing.T) {
	pl := hii.DefaultPackageList()
	buf := hii.Encode(pl)

	decoded, err := hii.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, pl.GUID, decoded.GUID)
	require.Len(t, decoded.Package.Layouts, 1)

	orig := pl.Package.Layouts[0]
	got := decoded.Package.Layouts[0]
	require.Equal(t, orig.GUID, got.GUID)
	require.Equal(t, orig.Keys, got.Keys)
	require.Equal(t, orig.Descriptions, got.Descriptions)

	a, ok := got.Lookup(hii.KeyC1)
	require.True(t, ok)
	require.Equal(t, 'a', a.Unicode)
	require.Equal(t, 'A', a.ShiftedUnicode)
}

func TestRoundTripEndMarkerAndLength(t *testing.T) {
	buf := hii.Encode(hii.DefaultPackageList())
	require.GreaterOrEqual(t, len(buf), 24)
	require.Equal(t, uint32(len(buf)), binary.LittleEndian.Uint32(buf[16:20]))

	end := buf[len(buf)-4:]
	require.Equal(t, byte(0xDF), end[3])
	require.Equal(t, byte(4), end[0])
}

// nonSpacingFixture builds a layout carrying one dead key (E0) whose
// dependents produce accented a/e/i/o/u, mirroring the reference
// non-spacing test layout.
func nonSpacingFixture() *hii.Layout {
	l := &hii.Layout{GUID: uuid.New()}
	l.NonSpacing = []hii.NonSpacingDescriptor{
		{
			Descriptor: hii.KeyDescriptor{Key: hii.KeyE0, Modifier: hii.NsKeyModifier},
			DependentKeys: []hii.KeyDescriptor{
				{Key: hii.KeyC1, Unicode: 0x00E2, ShiftedUnicode: 0x00C2, Modifier: hii.NsKeyDependencyModifier, AffectedBy: hii.AffectedByStandardShift | hii.AffectedByCapsLock},
				{Key: hii.KeyD3, Unicode: 0x00EA, ShiftedUnicode: 0x00CA, Modifier: hii.NsKeyDependencyModifier, AffectedBy: hii.AffectedByStandardShift | hii.AffectedByCapsLock},
				{Key: hii.KeyD8, Unicode: 0x00EC, ShiftedUnicode: 0x00CC, Modifier: hii.NsKeyDependencyModifier, AffectedBy: hii.AffectedByStandardShift | hii.AffectedByCapsLock},
				{Key: hii.KeyD9, Unicode: 0x00F4, ShiftedUnicode: 0x00D4, Modifier: hii.NsKeyDependencyModifier, AffectedBy: hii.AffectedByStandardShift | hii.AffectedByCapsLock},
				{Key: hii.KeyD7, Unicode: 0x00FB, ShiftedUnicode: 0x00CB, Modifier: hii.NsKeyDependencyModifier, AffectedBy: hii.AffectedByStandardShift | hii.AffectedByCapsLock},
			},
		},
	}
	l.Descriptions = []hii.Description{{Language: "fr-FR", Description: "Dead-key test layout"}}
	return l
}

func TestNonSpacingRoundTrip(t *testing.T) {
	pl := &hii.PackageList{GUID: uuid.New(), Package: hii.Package{Layouts: []*hii.Layout{nonSpacingFixture()}}}
	buf := hii.Encode(pl)

	decoded, err := hii.Decode(buf)
	require.NoError(t, err)
	got := decoded.Package.Layouts[0]

	require.True(t, got.IsNonSpacing(hii.KeyE0))
	require.Len(t, got.NonSpacing, 1)
	require.Len(t, got.NonSpacing[0].DependentKeys, 5)

	circumflexA, ok := got.ResolveNonSpacing(hii.KeyE0, hii.KeyC1)
	require.True(t, ok)
	require.Equal(t, rune(0x00E2), circumflexA.Unicode)
	require.Equal(t, rune(0x00C2), circumflexA.ShiftedUnicode)

	_, ok = got.ResolveNonSpacing(hii.KeyE0, hii.KeyB5)
	require.False(t, ok)
}

func TestNonSpacingConsumptionStopsAtPlainDescriptor(t *testing.T) {
	l := &hii.Layout{GUID: uuid.New()}
	l.NonSpacing = []hii.NonSpacingDescriptor{
		{
			Descriptor: hii.KeyDescriptor{Key: hii.KeyE0, Modifier: hii.NsKeyModifier},
			DependentKeys: []hii.KeyDescriptor{
				{Key: hii.KeyC1, Unicode: 0x00E2, Modifier: hii.NsKeyDependencyModifier},
			},
		},
	}
	l.Keys = []hii.KeyDescriptor{{Key: hii.KeyB0, Unicode: 'z', ShiftedUnicode: 'Z', AffectedBy: hii.AffectedByStandardShift | hii.AffectedByCapsLock}}

	pl := &hii.PackageList{GUID: uuid.New(), Package: hii.Package{Layouts: []*hii.Layout{l}}}
	buf := hii.Encode(pl)

	// Encode writes plain keys ahead of non-spacing groups. Move the plain
	// B0 descriptor (the first one) behind the dependent, so the decoder
	// meets it directly after the non-spacing group.
	const firstDescriptor = 26 + 23
	plain := append([]byte(nil), buf[firstDescriptor:firstDescriptor+18]...)
	copy(buf[firstDescriptor:], buf[firstDescriptor+18:firstDescriptor+54])
	copy(buf[firstDescriptor+36:], plain)

	decoded, err := hii.Decode(buf)
	require.NoError(t, err)
	got := decoded.Package.Layouts[0]

	require.Len(t, got.NonSpacing[0].DependentKeys, 1)
	require.Len(t, got.Keys, 1)
	require.Equal(t, hii.KeyB0, got.Keys[0].Key)
}
