package hidreport_test

import (
	"testing"

	"github.com/microsoft/mu-hid-go/internal/hidreport"
	"github.com/stretchr/testify/require"
)

// bootKeyboardDescriptor is the standard boot-protocol keyboard report
// descriptor: 8-bit modifier byte (usages 0xE0-0xE7), 1 reserved byte,
// 6-byte array of key usages (0x00-0xFF), and a 5-bit LED output report.
var bootKeyboardDescriptor = []byte{
	0x05, 0x01,
	0x09, 0x06,
	0xa1, 0x01,
	0x75, 0x01,
	0x95, 0x08,
	0x05, 0x07,
	0x19, 0xE0,
	0x29, 0xE7,
	0x15, 0x00,
	0x25, 0x01,
	0x81, 0x02,
	0x95, 0x01,
	0x75, 0x08,
	0x81, 0x03,
	0x95, 0x05,
	0x75, 0x01,
	0x05, 0x08,
	0x19, 0x01,
	0x29, 0x05,
	0x91, 0x02,
	0x95, 0x01,
	0x75, 0x03,
	0x91, 0x02,
	0x95, 0x06,
	0x75, 0x08,
	0x15, 0x00,
	0x26, 0xff, 0x00,
	0x05, 0x07,
	0x19, 0x00,
	0x2a, 0xff, 0x00,
	0x81, 0x00,
	0xc0,
}

var bootMouseDescriptor = []byte{
	0x05, 0x01,
	0x09, 0x02,
	0xa1, 0x01,
	0x09, 0x01,
	0xa1, 0x00,
	0x05, 0x09,
	0x19, 0x01,
	0x29, 0x05,
	0x15, 0x00,
	0x25, 0x01,
	0x95, 0x05,
	0x75, 0x01,
	0x81, 0x02,
	0x95, 0x01,
	0x75, 0x03,
	0x81, 0x01,
	0x05, 0x01,
	0x09, 0x30,
	0x09, 0x31,
	0x09, 0x38,
	0x15, 0x81,
	0x25, 0x7f,
	0x75, 0x08,
	0x95, 0x03,
	0x81, 0x06,
	0xc0,
	0xc0,
}

func TestParseBootKeyboardDescriptor(t *testing.T) {
	desc, err := hidreport.Parse(bootKeyboardDescriptor)
	require.NoError(t, err)
	require.False(t, desc.ReportIDPresent)

	require.Len(t, desc.Input, 1)
	in := desc.Input[0]
	require.Nil(t, in.ID)
	require.Equal(t, 8, in.ByteSize)

	var variableCount, arrayCount, paddingCount int
	for _, f := range in.Fields {
		switch f.Kind {
		case hidreport.FieldVariable:
			variableCount++
		case hidreport.FieldArray:
			arrayCount++
		case hidreport.FieldPadding:
			paddingCount++
		}
	}
	require.Equal(t, 8, variableCount) // modifier bits E0-E7
	require.Equal(t, 6, arrayCount)    // 6-key rollover
	require.Equal(t, 1, paddingCount)  // reserved byte: one 8-bit constant field

	require.Len(t, desc.Output, 1)
	out := desc.Output[0]
	require.Equal(t, 1, out.ByteSize)
	var ledVars, ledPad int
	for _, f := range out.Fields {
		switch f.Kind {
		case hidreport.FieldVariable:
			ledVars++
		case hidreport.FieldPadding:
			ledPad++
		}
	}
	require.Equal(t, 5, ledVars)
	require.Equal(t, 1, ledPad) // one 3-bit field with no usage
}

func TestModifierFieldUsageAssignment(t *testing.T) {
	desc, err := hidreport.Parse(bootKeyboardDescriptor)
	require.NoError(t, err)
	in := desc.Input[0]

	report := make([]byte, 8)
	report[0] = 0x02 // left shift bit set (E0=bit0 .. E1=bit1 == left shift)

	var sawLeftShift bool
	for _, f := range in.Fields {
		if f.Kind != hidreport.FieldVariable {
			continue
		}
		if f.Usage.UsagePage() != 0x07 {
			continue
		}
		v, ok := f.Value(report)
		require.True(t, ok)
		if f.Usage.UsageID() == 0xE1 && v == 1 {
			sawLeftShift = true
		}
	}
	require.True(t, sawLeftShift)
}

func TestArrayFieldResolvesUsage(t *testing.T) {
	desc, err := hidreport.Parse(bootKeyboardDescriptor)
	require.NoError(t, err)
	in := desc.Input[0]

	report := make([]byte, 8)
	report[2] = 0x04 // first array slot: usage 0x04 ('a')

	var found hidreport.Usage
	for _, f := range in.Fields {
		if f.Kind != hidreport.FieldArray {
			continue
		}
		v, ok := f.Value(report)
		require.True(t, ok)
		if v == 0 {
			continue
		}
		u, ok := f.ResolveArrayUsage(v)
		require.True(t, ok)
		found = u
		break
	}
	require.Equal(t, hidreport.NewUsage(0x07, 0x04), found)
}

func TestParseBootMouseDescriptor(t *testing.T) {
	desc, err := hidreport.Parse(bootMouseDescriptor)
	require.NoError(t, err)
	require.Len(t, desc.Input, 1)
	in := desc.Input[0]
	require.Equal(t, 4, in.ByteSize)

	var xUsage, yUsage, wheelUsage bool
	var buttonCount int
	for _, f := range in.Fields {
		if f.Kind == hidreport.FieldVariable && f.Usage.UsagePage() == 0x09 {
			buttonCount++
		}
		if f.Kind == hidreport.FieldVariable && f.Usage == hidreport.NewUsage(0x01, 0x30) {
			xUsage = true
			require.True(t, f.Relative)
		}
		if f.Kind == hidreport.FieldVariable && f.Usage == hidreport.NewUsage(0x01, 0x31) {
			yUsage = true
		}
		if f.Kind == hidreport.FieldVariable && f.Usage == hidreport.NewUsage(0x01, 0x38) {
			wheelUsage = true
		}
	}
	require.Equal(t, 5, buttonCount)
	require.True(t, xUsage)
	require.True(t, yUsage)
	require.True(t, wheelUsage)
}

func TestRelativeSignedFieldValue(t *testing.T) {
	desc, err := hidreport.Parse(bootMouseDescriptor)
	require.NoError(t, err)
	in := desc.Input[0]

	report := []byte{0x05, 0x20, 0xF0, 0x20} // buttons, dx=+32, dy=-16, wheel=+32

	var dy int32
	for _, f := range in.Fields {
		if f.Kind == hidreport.FieldVariable && f.Usage == hidreport.NewUsage(0x01, 0x31) {
			v, ok := f.Value(report)
			require.True(t, ok)
			dy = v
		}
	}
	require.Equal(t, int32(-16), dy)
}
