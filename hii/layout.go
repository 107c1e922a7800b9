package hii

import "github.com/google/uuid"

// DefaultKeyboardLayoutGUID identifies the layout this package builds via
// DefaultLayout.
var DefaultKeyboardLayoutGUID = uuid.MustParse("3a4d7a7c-018a-4b42-81b3-dc10e3b591bd")

// DefaultKeyboardPkgListGUID identifies the package list DefaultPackageList
// builds.
var DefaultKeyboardPkgListGUID = uuid.MustParse("0c0f3b43-44de-4907-b478-225f6f6289dc")

// KeyDescriptor is one physical key's mapping: the unicode value it
// produces plain, shifted, with AltGr, and with AltGr+shift, plus the
// modifier it represents (if any) and the lock/shift states that select
// among its unicode fields.
type KeyDescriptor struct {
	Key                 PhysicalKey
	Unicode             rune
	ShiftedUnicode      rune
	AltGrUnicode        rune
	ShiftedAltGrUnicode rune
	Modifier            Modifier
	AffectedBy          AffectedBy
}

// NonSpacingDescriptor is a dead key together with the dependent keys that
// combine with it to produce an accented character. A dependent not
// present in this list falls back to its own plain mapping elsewhere in
// the layout when typed after the dead key — layout data here only lists
// the combinations the dead key actually produces.
type NonSpacingDescriptor struct {
	Descriptor    KeyDescriptor
	DependentKeys []KeyDescriptor
}

// Description names a layout in one language, e.g. {"en-US", "English
// Keyboard"}.
type Description struct {
	Language    string
	Description string
}

// Layout is a single keyboard layout: a GUID identifying it, its plain key
// descriptors, its non-spacing descriptors (each with its dependents), and
// the human-readable names it is known by. The two descriptor kinds are
// kept in separate lists, so their relative order is not recorded; Encode
// writes all plain descriptors before the non-spacing groups.
type Layout struct {
	GUID         uuid.UUID
	Keys         []KeyDescriptor
	NonSpacing   []NonSpacingDescriptor
	Descriptions []Description
}

// Lookup returns the plain descriptor for key, searching both the direct
// key list and the non-spacing descriptors' own (undiacritical) mapping.
// It does not resolve dependent combinations; use ResolveNonSpacing for
// that.
func (l *Layout) Lookup(key PhysicalKey) (KeyDescriptor, bool) {
	for _, k := range l.Keys {
		if k.Key == key {
			return k, true
		}
	}
	for _, ns := range l.NonSpacing {
		if ns.Descriptor.Key == key {
			return ns.Descriptor, true
		}
	}
	return KeyDescriptor{}, false
}

// ResolveNonSpacing returns the dependent descriptor that deadKey combined
// with next would produce, if deadKey is a non-spacing key with next among
// its dependents.
func (l *Layout) ResolveNonSpacing(deadKey, next PhysicalKey) (KeyDescriptor, bool) {
	for _, ns := range l.NonSpacing {
		if ns.Descriptor.Key != deadKey {
			continue
		}
		for _, dep := range ns.DependentKeys {
			if dep.Key == next {
				return dep, true
			}
		}
	}
	return KeyDescriptor{}, false
}

// IsNonSpacing reports whether key is a dead key in this layout.
func (l *Layout) IsNonSpacing(key PhysicalKey) bool {
	for _, ns := range l.NonSpacing {
		if ns.Descriptor.Key == key {
			return true
		}
	}
	return false
}

// Package is one HII keyboard layout package: a list of layouts, each
// independently selectable by GUID.
type Package struct {
	Layouts []*Layout
}

// PackageList is the top-level container a platform advertises: a GUID for
// the list itself and the single keyboard layout package it carries.
type PackageList struct {
	GUID    uuid.UUID
	Package Package
}

// FindLayout returns the layout in the package list matching guid.
func (pl *PackageList) FindLayout(guid uuid.UUID) (*Layout, bool) {
	for _, l := range pl.Package.Layouts {
		if l.GUID == guid {
			return l, true
		}
	}
	return nil, false
}
