package keyboard

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/hii"
	"github.com/microsoft/mu-hid-go/internal/hidreport"
	"github.com/microsoft/mu-hid-go/internal/status"
)

// relevantField pairs a parsed report field with the id of the report it
// belongs to (nil when the device uses no report ids). Whether it is a
// modifier bit or a regular key array slot is given by the slice holding it.
type relevantField struct {
	reportID *uint8
	field    *hidreport.Field
}

// Handler is the keyboard-side counterpart of simple-text-input-ex: it
// ingests raw HID reports from an adapter, runs them through the layout
// engine, and exposes the polled/notify key APIs on top.
//
// Two bands of access exist, per the device this mirrors: report ingestion
// and every exported method below run under mu (the "raised TPL" critical
// section), while registered NotifyFuncs run on a dedicated goroutine so a
// slow callback never blocks report delivery.
type Handler struct {
	mu sync.Mutex

	adapter    *hidio.Adapter
	descriptor *hidreport.ReportDescriptor

	modifierFields []relevantField
	keyFields      []relevantField
	ledReports     []hidreport.ReportInfo
	ledFields      map[hidreport.Usage]*hidreport.Field // per output report, keyed by usage

	queue *queue

	currentKeys map[hidreport.Usage]struct{}
	lastKeys    map[hidreport.Usage]struct{}
	ledState    map[hidreport.Usage]struct{}

	notifyCh chan []pendingNotify
	stopCh   chan struct{}

	db               hii.Database
	dbDriverHandle   hii.DriverHandle
	log              *slog.Logger
	unregisterLayout func()

	// ResetHook is invoked in place of the firmware's warm reset when
	// Ctrl+Alt+Delete is detected. Tests substitute a recorder.
	ResetHook func()
}

// NewHandler builds a Handler bound to adapter, parsing its report
// descriptor and classifying its fields. It installs layout as the active
// keyboard layout if non-nil, mirroring install_default_layout.
func NewHandler(adapter *hidio.Adapter, layout *hii.Layout) (*Handler, error) {
	desc, err := adapter.GetReportDescriptor()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		adapter:     adapter,
		descriptor:  desc,
		queue:       newQueue(),
		currentKeys: map[hidreport.Usage]struct{}{},
		lastKeys:    map[hidreport.Usage]struct{}{},
		ledState:    map[hidreport.Usage]struct{}{},
		ledFields:   map[hidreport.Usage]*hidreport.Field{},
		notifyCh:    make(chan []pendingNotify, 16),
		stopCh:      make(chan struct{}),
	}
	if err := h.classifyFields(); err != nil {
		return nil, err
	}
	if layout != nil {
		h.queue.setLayout(layout)
	}

	if err := adapter.SetReportReceiver(h); err != nil {
		return nil, err
	}

	go h.dispatchLoop()
	return h, nil
}

// classifyFields walks the parsed descriptor once, sorting its fields into
// the modifier/key/LED buckets process_descriptor builds. It returns
// status.DeviceError if the descriptor uses no report ids but declares more
// than one input, output or feature report, and status.Unsupported if
// nothing relevant was found on either the input or output side.
func (h *Handler) classifyFields() error {
	d := h.descriptor
	if !d.ReportIDPresent && (len(d.Input) > 1 || len(d.Output) > 1 || len(d.Feature) > 1) {
		return status.New(status.DeviceError)
	}
	for ri := range h.descriptor.Input {
		report := &h.descriptor.Input[ri]
		for fi := range report.Fields {
			f := &report.Fields[fi]
			switch f.Kind {
			case hidreport.FieldVariable:
				if inModifierRange(f.Usage) {
					h.modifierFields = append(h.modifierFields, relevantField{report.ID, f})
				}
			case hidreport.FieldArray:
				for _, r := range f.UsageRanges {
					if rangeOverlapsKeyUsage(r) {
						h.keyFields = append(h.keyFields, relevantField{report.ID, f})
						break
					}
				}
			}
		}
	}

	for ri := range h.descriptor.Output {
		report := &h.descriptor.Output[ri]
		for fi := range report.Fields {
			f := &report.Fields[fi]
			if f.Kind != hidreport.FieldVariable || !inLEDRange(f.Usage) {
				continue
			}
			h.ledFields[f.Usage] = f
			h.ledReports = append(h.ledReports, hidreport.ReportInfo{ID: report.ID, ByteSize: report.ByteSize})
		}
	}

	if len(h.modifierFields) == 0 && len(h.keyFields) == 0 && len(h.ledFields) == 0 {
		return status.New(status.Unsupported)
	}
	return nil
}

// ReceiveReport implements hidio.ReportReceiver. It is invoked on whatever
// goroutine the adapter's transport delivers reports on.
func (h *Handler) ReceiveReport(data []byte, adapter *hidio.Adapter) {
	h.mu.Lock()

	body := data
	var reportID *uint8
	if h.descriptor.ReportIDPresent {
		if len(data) == 0 {
			h.mu.Unlock()
			return
		}
		id := data[0]
		body = data[1:]
		if !h.reportIDKnown(id) {
			h.mu.Unlock()
			return
		}
		reportID = &id
	}

	info, ok := hidreport.FindReport(h.descriptor.Input, reportID)
	if !ok || len(body) != info.ByteSize {
		h.mu.Unlock()
		return
	}

	for k := range h.currentKeys {
		delete(h.currentKeys, k)
	}

	for _, rf := range h.modifierFields {
		if !h.fieldMatchesReport(rf, body, data) {
			continue
		}
		v, ok := rf.field.Value(body)
		if ok && v != 0 {
			h.currentKeys[rf.field.Usage] = struct{}{}
		}
	}
	for _, rf := range h.keyFields {
		if !h.fieldMatchesReport(rf, body, data) {
			continue
		}
		v, ok := rf.field.Value(body)
		if !ok {
			continue
		}
		u, ok := rf.field.ResolveArrayUsage(v)
		if ok {
			h.currentKeys[u] = struct{}{}
		}
	}

	var outputReports []ledOutputReport
	if !usageSetsEqual(h.currentKeys, h.lastKeys) {
		released, pressed := diffUsages(h.lastKeys, h.currentKeys)
		for _, u := range released {
			h.queue.keystroke(u, KeyUp, h.reset)
		}
		for _, u := range pressed {
			h.queue.keystroke(u, KeyDown, h.reset)
		}

		h.lastKeys = copyUsageSet(h.currentKeys)
		outputReports = h.generateLEDReports()

		if batch := h.drainNotify(); len(batch) > 0 {
			select {
			case h.notifyCh <- batch:
			default:
			}
		}
	}

	h.mu.Unlock()

	for _, r := range outputReports {
		id := uint8(0)
		if r.ID != nil {
			id = *r.ID
		}
		_ = h.adapter.SetOutputReport(id, r.Data)
	}
}

// reportIDKnown reports whether id matches some report this handler
// classified fields from.
func (h *Handler) reportIDKnown(id uint8) bool {
	for _, rf := range h.modifierFields {
		if rf.reportID != nil && *rf.reportID == id {
			return true
		}
	}
	for _, rf := range h.keyFields {
		if rf.reportID != nil && *rf.reportID == id {
			return true
		}
	}
	return false
}

// rangeOverlapsKeyUsage reports whether r (a declared UsageMinimum/
// UsageMaximum pair on some array field) intersects the standard keyboard
// usage range at all, not merely whether its endpoints fall inside it -
// the boot keyboard descriptor declares its array usage range as the full
// 0x00-0xFF page, which straddles keyUsageMin/Max on both sides.
func rangeOverlapsKeyUsage(r hidreport.UsageRange) bool {
	lo, hi := uint32(r.Start), uint32(r.End)
	return lo <= keyUsageMax && hi >= keyUsageMin
}

func (h *Handler) fieldMatchesReport(rf relevantField, body, full []byte) bool {
	if !h.descriptor.ReportIDPresent {
		return true
	}
	return rf.reportID != nil && len(full) > 0 && full[0] == *rf.reportID
}

// ledOutputReport is one fully-built output report buffer, ready for
// hidio.Adapter.SetOutputReport.
type ledOutputReport struct {
	ID   *uint8
	Data []byte
}

// generateLEDReports diffs the queue's active LED usages against the last
// emitted state and, on change, rebuilds every output report byte buffer
// with the appropriate bits set.
func (h *Handler) generateLEDReports() []ledOutputReport {
	active := h.queue.activeLEDUsages()
	if usageSetsEqual(active, h.ledState) {
		return nil
	}
	h.ledState = active
	if len(h.ledReports) == 0 {
		return nil
	}

	bufs := make(map[*uint8][]byte, len(h.ledReports))
	var order []*uint8
	for i := range h.ledReports {
		r := &h.ledReports[i]
		if _, ok := bufs[r.ID]; ok {
			continue
		}
		bufs[r.ID] = make([]byte, r.ByteSize)
		order = append(order, r.ID)
	}

	for usage, field := range h.ledFields {
		id := h.ledReports[0].ID
		for ri := range h.descriptor.Output {
			rep := &h.descriptor.Output[ri]
			for fi := range rep.Fields {
				if &rep.Fields[fi] == field {
					id = rep.ID
				}
			}
		}
		buf, ok := bufs[id]
		if !ok {
			continue
		}
		v := int32(0)
		if _, on := active[usage]; on {
			v = 1
		}
		field.SetValue(buf, v)
	}

	out := make([]ledOutputReport, 0, len(order))
	for _, id := range order {
		out = append(out, ledOutputReport{ID: id, Data: bufs[id]})
	}
	return out
}

func (h *Handler) reset() {
	if h.ResetHook != nil {
		h.ResetHook()
	}
}

// pendingNotify pairs a matched event with the callback it is destined for,
// so the dispatch goroutine can invoke callbacks with the KeyData that
// actually triggered them.
type pendingNotify struct {
	event KeyData
	cb    NotifyFunc
}

func (h *Handler) drainNotify() []pendingNotify {
	var all []pendingNotify
	for {
		ev, ok := h.queue.popNotify()
		if !ok {
			break
		}
		for _, cb := range h.queue.pendingCallbacks(ev) {
			all = append(all, pendingNotify{event: ev, cb: cb})
		}
	}
	return all
}

func (h *Handler) dispatchLoop() {
	for {
		select {
		case batch := <-h.notifyCh:
			for _, p := range batch {
				p.cb(p.event)
			}
		case <-h.stopCh:
			return
		}
	}
}

// Close stops the dispatch goroutine, unsubscribes from layout-change
// notifications if TrackLayout was used, and releases the underlying
// adapter.
func (h *Handler) Close() error {
	close(h.stopCh)
	if h.unregisterLayout != nil {
		h.unregisterLayout()
	}
	h.adapter.TakeReportReceiver()
	return h.adapter.Close()
}

// Reset mirrors EFI_SIMPLE_TEXT_INPUT_EX_PROTOCOL.Reset: extendedVerification
// additionally clears held/toggle modifier state.
func (h *Handler) Reset(extendedVerification bool) error {
	h.mu.Lock()
	h.queue.reset(extendedVerification)
	var zeroReports []ledOutputReport
	if extendedVerification {
		for i := range h.ledReports {
			r := &h.ledReports[i]
			zeroReports = append(zeroReports, ledOutputReport{ID: r.ID, Data: make([]byte, r.ByteSize)})
		}
		for k := range h.ledState {
			delete(h.ledState, k)
		}
	}
	h.mu.Unlock()

	for _, r := range zeroReports {
		id := uint8(0)
		if r.ID != nil {
			id = *r.ID
		}
		_ = h.adapter.SetOutputReport(id, r.Data)
	}
	return nil
}

// ReadKey pops the next non-partial queued key event (discarding any
// leading partial events when partial-keystroke exposure is off) and folds
// ctrl+letter into the matching C0 control code, mirroring the basic
// text-input protocol's reduced semantics.
func (h *Handler) ReadKey() (KeyData, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	k, ok := h.popNonPartial()
	if !ok {
		return KeyData{}, status.New(status.NotReady)
	}

	ctrlHeld := k.ShiftState&(LeftControlPressed|RightControlPressed) != 0
	if ctrlHeld {
		switch {
		case k.UnicodeChar >= 'a' && k.UnicodeChar <= 'z':
			k.UnicodeChar = k.UnicodeChar - 'a' + 1
		case k.UnicodeChar >= 'A' && k.UnicodeChar <= 'Z':
			k.UnicodeChar = k.UnicodeChar - 'A' + 1
		}
	}
	return k, nil
}

// ReadKeyEx is ReadKey without ctrl-alpha folding, returning the full
// shift/toggle state word. If the queue is empty it still reports the live
// state word alongside status.NotReady.
func (h *Handler) ReadKeyEx() (KeyData, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	k, ok := h.popNonPartial()
	if ok {
		return k, nil
	}
	shift, toggle := h.queue.stateWords()
	return KeyData{ShiftState: shift, ToggleState: toggle}, status.New(status.NotReady)
}

// popNonPartial pops the oldest queued event, discarding leading partial
// events (both unicode and scan code zero) when partial exposure is off.
// Caller must hold h.mu.
func (h *Handler) popNonPartial() (KeyData, bool) {
	for {
		k, ok := h.queue.popKey()
		if !ok {
			return KeyData{}, false
		}
		if h.queue.partialExposed || !k.IsPartial() {
			return k, true
		}
	}
}

// WaitForKey signals ready when the next queued event is non-partial,
// without consuming it. When partial exposure is off, leading partial
// events are discarded first.
func (h *Handler) WaitForKey(ready chan<- struct{}) {
	h.mu.Lock()
	k, ok := h.queue.peekKey()
	for ok && !h.queue.partialExposed && k.IsPartial() {
		h.queue.popKey()
		k, ok = h.queue.peekKey()
	}
	partialExposed := h.queue.partialExposed
	h.mu.Unlock()

	if ok && (partialExposed || !k.IsPartial()) {
		select {
		case ready <- struct{}{}:
		default:
		}
	}
}

// GetPendingNotify pops the next notify-queue event and returns it together
// with the callbacks whose registered patterns match it.
func (h *Handler) GetPendingNotify() (KeyData, []NotifyFunc, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ev, ok := h.queue.popNotify()
	if !ok {
		return KeyData{}, nil, status.New(status.NotReady)
	}
	return ev, h.queue.pendingCallbacks(ev), nil
}

// SetState sets the toggle LEDs (Scroll/Num/Caps Lock) and the partial
// keystroke exposure flag from a ToggleState word, regenerating output
// reports if LED state actually changed.
func (h *Handler) SetState(toggle uint8) error {
	h.mu.Lock()
	h.queue.setToggleState(toggle)
	reports := h.generateLEDReports()
	h.mu.Unlock()

	for _, r := range reports {
		id := uint8(0)
		if r.ID != nil {
			id = *r.ID
		}
		_ = h.adapter.SetOutputReport(id, r.Data)
	}
	return nil
}

// RegisterKeyNotify installs cb to run whenever a keystroke matches
// pattern, returning a handle for later removal.
func (h *Handler) RegisterKeyNotify(pattern NotifyPattern, cb NotifyFunc) (NotifyHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queue.addNotify(pattern, cb), nil
}

// UnregisterKeyNotify removes a previously registered notification.
func (h *Handler) UnregisterKeyNotify(handle NotifyHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.queue.removeNotify(handle) {
		return status.New(status.InvalidParameter)
	}
	return nil
}

// SetLayout installs a new keyboard layout, mirroring on_layout_update.
func (h *Handler) SetLayout(layout *hii.Layout) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queue.setLayout(layout)
}

// usageSetsEqual, diffUsages and copyUsageSet implement the symmetric-
// difference/descending-order dispatch rule: releases (present in last,
// absent from current) are processed before presses (absent from last,
// present in current). Both lists are produced in descending usage order,
// so modifier usages (0xE0-0xE7), which sort above the regular key usages,
// are handled first within each list.
func usageSetsEqual(a, b map[hidreport.Usage]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func copyUsageSet(src map[hidreport.Usage]struct{}) map[hidreport.Usage]struct{} {
	out := make(map[hidreport.Usage]struct{}, len(src))
	for k := range src {
		out[k] = struct{}{}
	}
	return out
}

func diffUsages(last, current map[hidreport.Usage]struct{}) (released, pressed []hidreport.Usage) {
	for u := range last {
		if _, ok := current[u]; !ok {
			released = append(released, u)
		}
	}
	for u := range current {
		if _, ok := last[u]; !ok {
			pressed = append(pressed, u)
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i] > released[j] })
	sort.Slice(pressed, func(i, j int) bool { return pressed[i] > pressed[j] })
	return released, pressed
}
