package hidreport

// Item tags, grouped by the item type encoded in bits 2-3 of the prefix
// byte (USB HID 1.11 §6.2.2).
const (
	tagMainInput         = 0x8
	tagMainOutput        = 0x9
	tagMainCollection    = 0xA
	tagMainFeature       = 0xB
	tagMainEndCollection = 0xC

	tagGlobalUsagePage   = 0x0
	tagGlobalLogicalMin  = 0x1
	tagGlobalLogicalMax  = 0x2
	tagGlobalReportSize  = 0x7
	tagGlobalReportID    = 0x8
	tagGlobalReportCount = 0x9
	tagGlobalPush        = 0xA
	tagGlobalPop         = 0xB

	tagLocalUsage    = 0x0
	tagLocalUsageMin = 0x1
	tagLocalUsageMax = 0x2

	itemTypeMain   = 0
	itemTypeGlobal = 1
	itemTypeLocal  = 2
)

const (
	mainFlagConstant = 1 << 0
	mainFlagVariable = 1 << 1
	mainFlagRelative = 1 << 2
)

type globalState struct {
	usagePage   uint16
	logicalMin  int32
	logicalMax  int32
	reportSize  int
	reportCount int
	reportID    uint8
	haveID      bool
}

type localState struct {
	usages   []UsageRange // discrete Usage() entries, each [u,u]
	usageMin *uint32
	usageMax *uint32
}

func (l *localState) reset() { *l = localState{} }

// ranges collapses any pending UsageMinimum/UsageMaximum pair into the
// discrete usage list, then returns it.
func (l *localState) ranges(page uint16) []UsageRange {
	out := append([]UsageRange(nil), l.usages...)
	if l.usageMin != nil && l.usageMax != nil {
		out = append(out, UsageRange{
			Start: Usage(uint32(page)<<16) | Usage(*l.usageMin),
			End:   Usage(uint32(page)<<16) | Usage(*l.usageMax),
		})
	}
	return out
}

type reportCursor struct {
	bitOffset map[uint16]int // keyed by report id (0 used as the "no id" sentinel)
}

func newReportCursor() *reportCursor { return &reportCursor{bitOffset: map[uint16]int{}} }

func (c *reportCursor) advance(id uint16, bits int) int {
	start := c.bitOffset[id]
	c.bitOffset[id] = start + bits
	return start
}

// Parse decodes a raw USB HID report descriptor into a ReportDescriptor.
func Parse(raw []byte) (*ReportDescriptor, error) {
	desc := &ReportDescriptor{}

	var g globalState
	var l localState
	var stack []globalState

	inCursor := newReportCursor()
	outCursor := newReportCursor()
	featCursor := newReportCursor()

	reportIDOf := func() *uint8 {
		if !g.haveID {
			return nil
		}
		id := g.reportID
		return &id
	}
	cursorKey := func() uint16 {
		if !g.haveID {
			return 0
		}
		return uint16(g.reportID)
	}

	i := 0
	for i < len(raw) {
		prefix := raw[i]
		if prefix == 0xFE { // long item, skip
			if i+1 >= len(raw) {
				return nil, &ParseError{Offset: i, Reason: "truncated long item"}
			}
			dataLen := int(raw[i+1])
			i += 3 + dataLen
			continue
		}
		size := int(prefix & 0x03)
		if size == 3 {
			size = 4
		}
		typ := int((prefix >> 2) & 0x03)
		tag := int((prefix >> 4) & 0x0F)
		i++
		if i+size > len(raw) {
			return nil, &ParseError{Offset: i, Reason: "truncated item data"}
		}
		data := raw[i : i+size]
		i += size

		switch typ {
		case itemTypeGlobal:
			switch tag {
			case tagGlobalUsagePage:
				g.usagePage = uint16(readUnsigned(data))
			case tagGlobalLogicalMin:
				g.logicalMin = readSigned(data)
			case tagGlobalLogicalMax:
				g.logicalMax = readSigned(data)
			case tagGlobalReportSize:
				g.reportSize = int(readUnsigned(data))
			case tagGlobalReportCount:
				g.reportCount = int(readUnsigned(data))
			case tagGlobalReportID:
				g.reportID = uint8(readUnsigned(data))
				g.haveID = true
				desc.ReportIDPresent = true
			case tagGlobalPush:
				stack = append(stack, g)
			case tagGlobalPop:
				if n := len(stack); n > 0 {
					g = stack[n-1]
					stack = stack[:n-1]
				}
			}
		case itemTypeLocal:
			switch tag {
			case tagLocalUsage:
				u := usageFrom(data, g.usagePage)
				l.usages = append(l.usages, UsageRange{Start: u, End: u})
			case tagLocalUsageMin:
				v := readUnsigned(data)
				l.usageMin = &v
			case tagLocalUsageMax:
				v := readUnsigned(data)
				l.usageMax = &v
			}
		case itemTypeMain:
			switch tag {
			case tagMainCollection, tagMainEndCollection:
				l.reset()
			case tagMainInput, tagMainOutput, tagMainFeature:
				flags := readUnsigned(data)
				fields := buildFields(g, &l, flags)

				var cursor *reportCursor
				var list *[]ReportInfo
				switch tag {
				case tagMainInput:
					cursor, list = inCursor, &desc.Input
				case tagMainOutput:
					cursor, list = outCursor, &desc.Output
				default:
					cursor, list = featCursor, &desc.Feature
				}

				id := reportIDOf()
				key := cursorKey()
				for idx := range fields {
					fields[idx].BitOffset = cursor.advance(key, fields[idx].ReportSize)
				}

				info, ok := FindReport(*list, id)
				if !ok {
					*list = append(*list, ReportInfo{ID: id})
					info = &(*list)[len(*list)-1]
				}
				info.Fields = append(info.Fields, fields...)
				bits := cursor.bitOffset[key]
				if sz := (bits + 7) / 8; sz > info.ByteSize {
					info.ByteSize = sz
				}
				l.reset()
			}
		}
	}

	return desc, nil
}

func buildFields(g globalState, l *localState, flags uint32) []Field {
	count := g.reportCount
	if count <= 0 {
		count = 1
	}
	base := Field{
		LogicalMinimum: g.logicalMin,
		LogicalMaximum: g.logicalMax,
		ReportSize:     g.reportSize,
		Relative:       flags&mainFlagRelative != 0,
	}

	if flags&mainFlagConstant != 0 {
		fields := make([]Field, count)
		for i := range fields {
			f := base
			f.Kind = FieldPadding
			fields[i] = f
		}
		return fields
	}

	ranges := l.ranges(g.usagePage)

	if flags&mainFlagVariable != 0 {
		flat := flattenUsages(ranges)
		fields := make([]Field, count)
		for i := range fields {
			f := base
			f.Kind = FieldVariable
			switch {
			case len(flat) == 0:
				f.Kind = FieldPadding
			case i < len(flat):
				f.Usage = flat[i]
			default:
				f.Usage = flat[len(flat)-1]
			}
			fields[i] = f
		}
		return fields
	}

	// Array: every slot shares the same declared usage ranges.
	fields := make([]Field, count)
	for i := range fields {
		f := base
		f.Kind = FieldArray
		f.UsageRanges = ranges
		fields[i] = f
	}
	return fields
}

// flattenUsages expands UsageRanges into individual usages, in
// declaration order, for assigning one usage per variable-field slot.
func flattenUsages(ranges []UsageRange) []Usage {
	var out []Usage
	for _, r := range ranges {
		for u := r.Start; u <= r.End; u++ {
			out = append(out, u)
			if u == ^Usage(0) {
				break
			}
		}
	}
	return out
}

func usageFrom(data []byte, page uint16) Usage {
	if len(data) == 4 {
		return Usage(readUnsigned(data))
	}
	return Usage(uint32(page)<<16 | readUnsigned(data))
}

func readUnsigned(data []byte) uint32 {
	var v uint32
	for i, b := range data {
		v |= uint32(b) << (8 * uint(i))
	}
	return v
}

func readSigned(data []byte) int32 {
	v := readUnsigned(data)
	bits := len(data) * 8
	if bits == 0 {
		return 0
	}
	shift := uint(32 - bits)
	return int32(v<<shift) >> shift
}
