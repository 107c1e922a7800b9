// Package pointer implements the absolute-pointer side of the HID input
// core: report-descriptor ingestion for X/Y/Z-or-wheel and button usages,
// per-report axis normalization onto a fixed resolution, and change
// detection, mirroring keyboard's report-ingestion shape for the simpler
// pointer state machine.
package pointer

import (
	"sync"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/internal/hidreport"
	"github.com/microsoft/mu-hid-go/internal/numeric"
	"github.com/microsoft/mu-hid-go/internal/status"
)

// relevantField pairs a parsed report field with the axis/button role it
// plays, plus which report id it belongs to (nil when the device has no
// report ids).
type relevantField struct {
	reportID *uint8
	field    *hidreport.Field
	kind     axisKind
}

// Handler is the pointer-side counterpart of absolute-pointer: it ingests
// raw HID reports from an adapter, normalizes declared axis/button fields
// onto a fixed resolution, and exposes the polled state/mode APIs on top.
// All state is guarded by mu, raised for the duration of any report
// ingestion or exported method, mirroring keyboard.Handler's single
// critical section.
type Handler struct {
	mu sync.Mutex

	adapter    *hidio.Adapter
	descriptor *hidreport.ReportDescriptor

	fields []relevantField
	mode   Mode

	current State
	changed bool
}

// NewHandler builds a Handler bound to adapter, parsing its report
// descriptor and classifying its fields.
func NewHandler(adapter *hidio.Adapter) (*Handler, error) {
	desc, err := adapter.GetReportDescriptor()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		adapter:    adapter,
		descriptor: desc,
		current:    initialState(),
	}
	if err := h.classifyFields(); err != nil {
		return nil, err
	}
	if err := adapter.SetReportReceiver(h); err != nil {
		return nil, err
	}
	return h, nil
}

// classifyFields walks the parsed descriptor once, sorting its variable
// fields into X/Y/Z-or-wheel/button buckets and building the advertised
// Mode. It returns status.DeviceError if more than one input report is
// declared without report ids, and status.Unsupported if nothing relevant
// was found.
func (h *Handler) classifyFields() error {
	if len(h.descriptor.Input) > 1 && !h.descriptor.ReportIDPresent {
		return status.New(status.DeviceError)
	}

	var buttonCount int
	var hasZ bool

	for ri := range h.descriptor.Input {
		report := &h.descriptor.Input[ri]
		for fi := range report.Fields {
			f := &report.Fields[fi]
			if f.Kind != hidreport.FieldVariable {
				continue
			}
			switch {
			case isXUsage(f.Usage):
				h.fields = append(h.fields, relevantField{report.ID, f, axisX})
				h.mode.AbsoluteMinX, h.mode.AbsoluteMaxX = 0, AxisResolution
			case isYUsage(f.Usage):
				h.fields = append(h.fields, relevantField{report.ID, f, axisY})
				h.mode.AbsoluteMinY, h.mode.AbsoluteMaxY = 0, AxisResolution
			case isZOrWheel(f.Usage):
				h.fields = append(h.fields, relevantField{report.ID, f, axisZ})
				h.mode.AbsoluteMinZ, h.mode.AbsoluteMaxZ = 0, AxisResolution
				hasZ = true
			case isButtonUsage(f.Usage):
				h.fields = append(h.fields, relevantField{report.ID, f, axisButton})
				buttonCount++
			}
		}
	}

	if len(h.fields) == 0 {
		return status.New(status.Unsupported)
	}
	if buttonCount > 1 {
		h.mode.Attributes |= ModeAttributeAlternateButton
	}
	if hasZ {
		// Not literally what the device reports; preserved for
		// compatibility with the reference this mirrors.
		h.mode.Attributes |= ModeAttributePressureAsZ
	}
	return nil
}

// ReceiveReport implements hidio.ReportReceiver.
func (h *Handler) ReceiveReport(data []byte, adapter *hidio.Adapter) {
	h.mu.Lock()
	defer h.mu.Unlock()

	body := data
	var reportID *uint8
	if h.descriptor.ReportIDPresent {
		if len(data) == 0 {
			return
		}
		id := data[0]
		body = data[1:]
		reportID = &id
	}

	info, ok := hidreport.FindReport(h.descriptor.Input, reportID)
	if !ok || len(body) != info.ByteSize {
		return
	}

	for _, rf := range h.fields {
		if h.descriptor.ReportIDPresent {
			if rf.reportID == nil || *rf.reportID != *reportID {
				continue
			}
		}
		v, ok := rf.field.Value(body)
		if !ok {
			continue
		}
		switch rf.kind {
		case axisX:
			h.applyAxis(&h.current.X, rf.field, v)
		case axisY:
			h.applyAxis(&h.current.Y, rf.field, v)
		case axisZ:
			h.applyAxis(&h.current.Z, rf.field, v)
		case axisButton:
			h.applyButton(rf.field.Usage, v)
		}
	}
}

// applyAxis normalizes value onto [0, AxisResolution] and assigns it into
// axis, marking the handler changed if it actually moved. A relative field
// accumulates onto the current value; an absolute field is rescaled from
// the field's own logical range.
func (h *Handler) applyAxis(axis *uint64, f *hidreport.Field, value int32) {
	var next int64
	if f.Relative {
		next = int64(*axis) + int64(value)
	} else {
		span := int64(f.LogicalMaximum) - int64(f.LogicalMinimum)
		if span == 0 {
			next = 0
		} else {
			next = (int64(value) - int64(f.LogicalMinimum)) * AxisResolution / span
		}
	}
	clamped := uint64(numeric.Clamp(next, 0, AxisResolution))
	if clamped != *axis {
		*axis = clamped
		h.changed = true
	}
}

// applyButton sets or clears the bit for usage in the button mask.
func (h *Handler) applyButton(usage hidreport.Usage, value int32) {
	shift := uint32(usage) - buttonUsageMin
	if shift > 31 {
		return
	}
	mask := h.current.Buttons &^ (1 << shift)
	mask |= uint32(value) << shift
	if mask != h.current.Buttons {
		h.current.Buttons = mask
		h.changed = true
	}
}

// Reset reinitializes pointer state to its startup values.
func (h *Handler) Reset(extendedVerification bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = initialState()
	h.changed = false
	return nil
}

// GetState returns the current pointer state and clears the change flag,
// or status.NotReady if nothing has changed since the last call.
func (h *Handler) GetState() (State, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.changed {
		return State{}, status.New(status.NotReady)
	}
	h.changed = false
	return h.current, nil
}

// WaitForInput signals ready (non-blocking) iff state has changed since
// the last GetState.
func (h *Handler) WaitForInput(ready chan<- struct{}) {
	h.mu.Lock()
	changed := h.changed
	h.mu.Unlock()
	if changed {
		select {
		case ready <- struct{}{}:
		default:
		}
	}
}

// GetMode returns the advertised capability of this pointer.
func (h *Handler) GetMode() Mode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.mode
}

// Close releases the underlying adapter.
func (h *Handler) Close() error {
	h.adapter.TakeReportReceiver()
	return h.adapter.Close()
}
