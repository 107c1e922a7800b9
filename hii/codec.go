package hii

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

const (
	packageTypeKeyboardLayout = 0x11
	packageTypeEnd            = 0xDF
	descriptorSize            = 18
)

// DecodeError reports a malformed package-list buffer.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("hii: decode error at offset %d: %s", e.Offset, e.Reason)
}

// Decode parses a raw HII keyboard-layout package list, as produced by
// Encode or by firmware, into a PackageList.
func Decode(data []byte) (*PackageList, error) {
	if len(data) < 20 {
		return nil, &DecodeError{Offset: 0, Reason: "buffer shorter than package-list header"}
	}
	guid, err := uuid.FromBytes(reorderGUID(data[0:16]))
	if err != nil {
		return nil, &DecodeError{Offset: 0, Reason: "malformed package-list guid"}
	}
	total := int(binary.LittleEndian.Uint32(data[16:20]))
	if total > len(data) {
		return nil, &DecodeError{Offset: 16, Reason: "package-list length exceeds buffer"}
	}

	if len(data) < 26 {
		return nil, &DecodeError{Offset: 20, Reason: "buffer shorter than package header"}
	}
	header := binary.LittleEndian.Uint32(data[20:24])
	pkgType := header >> 24
	if pkgType != packageTypeKeyboardLayout {
		return nil, &DecodeError{Offset: 20, Reason: fmt.Sprintf("unexpected package type 0x%02x", pkgType)}
	}
	layoutCount := int(binary.LittleEndian.Uint16(data[24:26]))

	pkg := Package{Layouts: make([]*Layout, 0, layoutCount)}
	offset := 26
	for i := 0; i < layoutCount; i++ {
		layout, n, err := decodeLayout(data[offset:])
		if err != nil {
			return nil, err
		}
		pkg.Layouts = append(pkg.Layouts, layout)
		offset += n
	}

	if offset+4 > len(data) {
		return nil, &DecodeError{Offset: offset, Reason: "missing package-list end marker"}
	}
	end := binary.LittleEndian.Uint32(data[offset : offset+4])
	if end>>24 != packageTypeEnd {
		return nil, &DecodeError{Offset: offset, Reason: "missing package-list end marker"}
	}

	return &PackageList{GUID: guid, Package: pkg}, nil
}

func decodeLayout(data []byte) (*Layout, int, error) {
	if len(data) < 23 {
		return nil, 0, &DecodeError{Offset: 0, Reason: "buffer shorter than layout header"}
	}
	length := int(binary.LittleEndian.Uint16(data[0:2]))
	guid, err := uuid.FromBytes(reorderGUID(data[2:18]))
	if err != nil {
		return nil, 0, &DecodeError{Offset: 2, Reason: "malformed layout guid"}
	}
	descStringOffset := int(binary.LittleEndian.Uint32(data[18:22]))
	if descStringOffset > len(data) {
		return nil, 0, &DecodeError{Offset: 18, Reason: "descriptor-string offset exceeds layout"}
	}
	// data[22] is the raw descriptor count, present on the wire but not
	// used to drive decoding: descriptors are read until descStringOffset
	// is reached, the same as the reference decoder.

	layout := &Layout{GUID: guid}

	offset := 23
	var pendingNonSpacing *NonSpacingDescriptor
	for offset < descStringOffset {
		if offset+descriptorSize > len(data) {
			return nil, 0, &DecodeError{Offset: offset, Reason: "truncated key descriptor"}
		}
		kd := decodeDescriptor(data[offset : offset+descriptorSize])
		if !kd.Key.IsValid() {
			return nil, 0, &DecodeError{Offset: offset, Reason: fmt.Sprintf("unknown physical key %d", kd.Key)}
		}
		offset += descriptorSize

		switch kd.Modifier {
		case NsKeyModifier:
			layout.NonSpacing = append(layout.NonSpacing, NonSpacingDescriptor{Descriptor: kd})
			pendingNonSpacing = &layout.NonSpacing[len(layout.NonSpacing)-1]
		case NsKeyDependencyModifier:
			if pendingNonSpacing == nil {
				return nil, 0, &DecodeError{Offset: offset, Reason: "dependent descriptor without a preceding non-spacing key"}
			}
			pendingNonSpacing.DependentKeys = append(pendingNonSpacing.DependentKeys, kd)
		default:
			pendingNonSpacing = nil
			layout.Keys = append(layout.Keys, kd)
		}
	}

	if descStringOffset+2 > len(data) {
		return nil, 0, &DecodeError{Offset: descStringOffset, Reason: "truncated description bundle"}
	}
	descCount := int(binary.LittleEndian.Uint16(data[descStringOffset : descStringOffset+2]))
	pos := descStringOffset + 2
	for i := 0; i < descCount; i++ {
		s, n, err := decodeUCS2String(data[pos:])
		if err != nil {
			return nil, 0, &DecodeError{Offset: pos, Reason: err.Error()}
		}
		pos += n
		lang, desc := splitLanguage(s)
		if lang == s {
			return nil, 0, &DecodeError{Offset: pos - n, Reason: "description has no space between language and text"}
		}
		layout.Descriptions = append(layout.Descriptions, Description{Language: lang, Description: desc})
	}

	if length == 0 {
		length = pos
	}
	return layout, length, nil
}

func decodeDescriptor(b []byte) KeyDescriptor {
	return KeyDescriptor{
		Key:                 PhysicalKey(binary.LittleEndian.Uint32(b[0:4])),
		Unicode:             rune(binary.LittleEndian.Uint16(b[4:6])),
		ShiftedUnicode:      rune(binary.LittleEndian.Uint16(b[6:8])),
		AltGrUnicode:        rune(binary.LittleEndian.Uint16(b[8:10])),
		ShiftedAltGrUnicode: rune(binary.LittleEndian.Uint16(b[10:12])),
		Modifier:            Modifier(binary.LittleEndian.Uint16(b[12:14])),
		AffectedBy:          AffectedBy(binary.LittleEndian.Uint16(b[14:16])),
	}
}

func encodeDescriptor(k KeyDescriptor) []byte {
	b := make([]byte, descriptorSize)
	binary.LittleEndian.PutUint32(b[0:4], uint32(k.Key))
	binary.LittleEndian.PutUint16(b[4:6], uint16(k.Unicode))
	binary.LittleEndian.PutUint16(b[6:8], uint16(k.ShiftedUnicode))
	binary.LittleEndian.PutUint16(b[8:10], uint16(k.AltGrUnicode))
	binary.LittleEndian.PutUint16(b[10:12], uint16(k.ShiftedAltGrUnicode))
	binary.LittleEndian.PutUint16(b[12:14], uint16(k.Modifier))
	binary.LittleEndian.PutUint16(b[14:16], uint16(k.AffectedBy))
	// bytes 16:18 reserved/padding to the 18-byte descriptor size.
	return b
}

func decodeUCS2String(data []byte) (string, int, error) {
	var units []uint16
	i := 0
	for {
		if i+2 > len(data) {
			return "", 0, fmt.Errorf("unterminated UCS-2 string")
		}
		u := binary.LittleEndian.Uint16(data[i : i+2])
		i += 2
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16Decode(units)), i, nil
}

func utf16Decode(units []uint16) []rune {
	out := make([]rune, 0, len(units))
	for i := 0; i < len(units); i++ {
		u := units[i]
		if u >= 0xD800 && u <= 0xDBFF && i+1 < len(units) {
			lo := units[i+1]
			if lo >= 0xDC00 && lo <= 0xDFFF {
				out = append(out, ((rune(u)-0xD800)<<10|(rune(lo)-0xDC00))+0x10000)
				i++
				continue
			}
		}
		out = append(out, rune(u))
	}
	return out
}

func encodeUCS2String(s string) []byte {
	var out []byte
	for _, r := range s {
		if r > 0xFFFF {
			r -= 0x10000
			hi := uint16(0xD800 + (r >> 10))
			lo := uint16(0xDC00 + (r & 0x3FF))
			b := make([]byte, 4)
			binary.LittleEndian.PutUint16(b[0:2], hi)
			binary.LittleEndian.PutUint16(b[2:4], lo)
			out = append(out, b...)
			continue
		}
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(r))
		out = append(out, b...)
	}
	out = append(out, 0, 0) // NUL terminator
	return out
}

func splitLanguage(s string) (lang, desc string) {
	for i, r := range s {
		if r == ' ' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// Encode serializes pl into a package-list buffer in the same format
// Decode reads.
func Encode(pl *PackageList) []byte {
	var layoutBufs [][]byte
	for _, l := range pl.Package.Layouts {
		layoutBufs = append(layoutBufs, encodeLayout(l))
	}

	var pkgBody []byte
	pkgBody = append(pkgBody, uint16le(uint16(len(layoutBufs)))...)
	for _, lb := range layoutBufs {
		pkgBody = append(pkgBody, lb...)
	}

	pkgHeader := make([]byte, 4)
	pkgLen := uint32(4 + len(pkgBody))
	binary.LittleEndian.PutUint32(pkgHeader, pkgLen&0x00FFFFFF|uint32(packageTypeKeyboardLayout)<<24)

	var out []byte
	out = append(out, guidBytes(pl.GUID)...)
	out = append(out, make([]byte, 4)...) // total length placeholder
	out = append(out, pkgHeader...)
	out = append(out, pkgBody...)

	endMarker := make([]byte, 4)
	binary.LittleEndian.PutUint32(endMarker, 4|uint32(packageTypeEnd)<<24)
	out = append(out, endMarker...)

	binary.LittleEndian.PutUint32(out[16:20], uint32(len(out)))
	return out
}

func encodeLayout(l *Layout) []byte {
	var descBody []byte
	for _, k := range l.Keys {
		descBody = append(descBody, encodeDescriptor(k)...)
	}
	for _, ns := range l.NonSpacing {
		descBody = append(descBody, encodeDescriptor(ns.Descriptor)...)
		for _, dep := range ns.DependentKeys {
			descBody = append(descBody, encodeDescriptor(dep)...)
		}
	}
	descCount := len(descBody) / descriptorSize

	var descStrings []byte
	descStrings = append(descStrings, uint16le(uint16(len(l.Descriptions)))...)
	for _, d := range l.Descriptions {
		descStrings = append(descStrings, encodeUCS2String(d.Language+" "+d.Description)...)
	}

	header := make([]byte, 23)
	// header[0:2] layout length, patched below
	copy(header[2:18], guidBytes(l.GUID))
	binary.LittleEndian.PutUint32(header[18:22], uint32(23+len(descBody)))
	header[22] = uint8(descCount)

	var out []byte
	out = append(out, header...)
	out = append(out, descBody...)
	out = append(out, descStrings...)

	binary.LittleEndian.PutUint16(out[0:2], uint16(len(out)))
	return out
}

func uint16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

// guidBytes returns g's bytes in the little-endian-mixed layout UEFI GUIDs
// use on the wire (the first three fields little-endian, the rest as-is).
func guidBytes(g uuid.UUID) []byte {
	b := make([]byte, 16)
	copy(b, g[:])
	b[0], b[3] = g[3], g[0]
	b[1], b[2] = g[2], g[1]
	b[4], b[5] = g[5], g[4]
	b[6], b[7] = g[7], g[6]
	return b
}

// reorderGUID converts a wire-format GUID back into the byte order
// uuid.FromBytes expects.
func reorderGUID(b []byte) []byte {
	out := make([]byte, 16)
	copy(out, b)
	out[0], out[3] = b[3], b[0]
	out[1], out[2] = b[2], b[1]
	out[4], out[5] = b[5], b[4]
	out[6], out[7] = b[7], b[6]
	return out
}
