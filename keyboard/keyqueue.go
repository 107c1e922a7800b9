package keyboard

import (
	"github.com/microsoft/mu-hid-go/hii"
	"github.com/microsoft/mu-hid-go/internal/hidreport"
)

// KeyAction is whether a keystroke represents a press or a release.
type KeyAction int

const (
	KeyDown KeyAction = iota
	KeyUp
)

type notifyRegistration struct {
	handle  NotifyHandle
	pattern NotifyPattern
	cb      NotifyFunc
}

// queue holds the layout-driven keystroke engine: active modifier state,
// the pending non-spacing key (if any), and the two output queues. It has
// no locking of its own; callers (keyboard.Handler) serialize access.
type queue struct {
	layout            *hii.Layout
	activeModifiers   map[hii.Modifier]struct{}
	activeNonSpacing  *hii.NonSpacingDescriptor
	partialExposed    bool
	keyQueue          []KeyData
	notifyQueue       []KeyData
	registered        []notifyRegistration
	nextHandle        NotifyHandle
}

func newQueue() *queue {
	return &queue{activeModifiers: map[hii.Modifier]struct{}{}}
}

func (q *queue) setLayout(l *hii.Layout) { q.layout = l }

func (q *queue) getLayout() *hii.Layout { return q.layout }

// reset clears pending state. A non-extended reset retains the three
// LED-mapped toggle modifiers; an extended reset clears everything.
func (q *queue) reset(extended bool) {
	if extended {
		q.activeModifiers = map[hii.Modifier]struct{}{}
	} else {
		kept := map[hii.Modifier]struct{}{}
		for m := range q.activeModifiers {
			if _, ok := modifierToLEDUsage(m); ok {
				kept[m] = struct{}{}
			}
		}
		q.activeModifiers = kept
	}
	q.activeNonSpacing = nil
	q.partialExposed = false
	q.keyQueue = nil
}

// resetHook is invoked when Ctrl+Alt+Del is detected; it never returns in
// the firmware this mirrors, so real implementations should not return
// either.
type resetHook func()

// keystroke runs one (usage, action) event through the layout engine,
// possibly enqueuing a decoded KeyData. reset is called in place of the
// firmware warm-reset call on Ctrl+Alt+Delete.
func (q *queue) keystroke(usage hidreport.Usage, action KeyAction, reset resetHook) {
	if q.layout == nil {
		return
	}

	efiKey, ok := usageToEfiKey(usage)
	if !ok {
		return
	}

	var current hii.KeyDescriptor
	found := false

	if q.activeNonSpacing != nil {
		for _, dep := range q.activeNonSpacing.DependentKeys {
			if dep.Key == efiKey {
				current = dep
				found = true
				q.activeNonSpacing = nil
				break
			}
		}
	}

	if !found {
		for _, k := range q.layout.Keys {
			if k.Key == efiKey {
				current = k
				found = true
				break
			}
		}
		if !found {
			for i := range q.layout.NonSpacing {
				ns := &q.layout.NonSpacing[i]
				if ns.Descriptor.Key == efiKey {
					q.activeNonSpacing = ns
					return
				}
			}
		}
	}

	if !found {
		return
	}

	if _, ok := heldWhileModifiers[current.Modifier]; ok {
		switch action {
		case KeyUp:
			delete(q.activeModifiers, current.Modifier)
		case KeyDown:
			q.activeModifiers[current.Modifier] = struct{}{}
		}
	}

	if _, ok := toggleModifiers[current.Modifier]; ok && action == KeyDown {
		if _, active := q.activeModifiers[current.Modifier]; active {
			delete(q.activeModifiers, current.Modifier)
		} else {
			q.activeModifiers[current.Modifier] = struct{}{}
		}
	}

	if q.anyActive(hii.LeftControlModifier, hii.RightControlModifier) &&
		q.anyActive(hii.LeftAltModifier, hii.RightAltModifier) &&
		current.Modifier == hii.DeleteModifier {
		if reset != nil {
			reset()
		}
		return
	}

	if action == KeyUp {
		return
	}

	event := KeyData{
		UnicodeChar: uint16(current.Unicode),
		ScanCode:    modifierToScan(current.Modifier),
	}

	shiftActive := q.anyActive(hii.LeftShiftModifier, hii.RightShiftModifier)
	altGrActive := q.isActive(hii.AltGrModifier)
	capsLockActive := q.isActive(hii.CapsLockModifier)
	numLockActive := q.isActive(hii.NumLockModifier)

	shiftApplied := false
	if current.AffectedBy&hii.AffectedByStandardShift != 0 {
		if shiftActive {
			if altGrActive {
				event.UnicodeChar = uint16(current.ShiftedAltGrUnicode)
			} else {
				event.UnicodeChar = uint16(current.ShiftedUnicode)
			}
			shiftApplied = true
		} else if altGrActive {
			event.UnicodeChar = uint16(current.AltGrUnicode)
		}
	}

	if current.AffectedBy&hii.AffectedByCapsLock != 0 && capsLockActive {
		switch event.UnicodeChar {
		case uint16(current.Unicode):
			event.UnicodeChar = uint16(current.ShiftedUnicode)
		case uint16(current.ShiftedUnicode):
			event.UnicodeChar = uint16(current.Unicode)
		}
	}

	if current.AffectedBy&hii.AffectedByNumLock != 0 {
		if numLockActive && !shiftActive {
			event.ScanCode = scanNull
		} else {
			event.UnicodeChar = 0
		}
	}

	if event.UnicodeChar == 0x001B && event.ScanCode == scanNull {
		event.ScanCode = scanEsc
		event.UnicodeChar = 0
	}

	if !q.partialExposed && event.UnicodeChar == 0 && event.ScanCode == scanNull {
		return
	}

	event.ShiftState, event.ToggleState = q.stateWords()
	// Deliberate, not a bug: once the shifted form has been produced, the
	// event reports neither shift key as pressed.
	if shiftApplied {
		event.ShiftState &^= LeftShiftPressed | RightShiftPressed
	}

	for _, reg := range q.registered {
		if reg.pattern.matches(event) {
			q.notifyQueue = append(q.notifyQueue, event)
			break
		}
	}

	q.keyQueue = append(q.keyQueue, event)
}

func (q *queue) anyActive(mods ...hii.Modifier) bool {
	for _, m := range mods {
		if q.isActive(m) {
			return true
		}
	}
	return false
}

func (q *queue) isActive(m hii.Modifier) bool {
	_, ok := q.activeModifiers[m]
	return ok
}

// stateWords builds the ShiftState/ToggleState words from the currently
// active modifiers.
func (q *queue) stateWords() (shift uint32, toggle uint8) {
	shift = ShiftStateValid
	toggle = ToggleStateValid
	if q.partialExposed {
		toggle |= KeyStateExposed
	}
	for m := range q.activeModifiers {
		switch m {
		case hii.LeftControlModifier:
			shift |= LeftControlPressed
		case hii.RightControlModifier:
			shift |= RightControlPressed
		case hii.LeftAltModifier:
			shift |= LeftAltPressed
		case hii.RightAltModifier:
			shift |= RightAltPressed
		case hii.LeftShiftModifier:
			shift |= LeftShiftPressed
		case hii.RightShiftModifier:
			shift |= RightShiftPressed
		case hii.LeftLogoModifier:
			shift |= LeftLogoPressed
		case hii.RightLogoModifier:
			shift |= RightLogoPressed
		case hii.MenuModifier:
			shift |= ShiftStateMenuKey
		case hii.SysRequestModifier, hii.PrintModifier:
			shift |= ShiftStateSysReq
		case hii.ScrollLockModifier:
			toggle |= ScrollLockActive
		case hii.NumLockModifier:
			toggle |= NumLockActive
		case hii.CapsLockModifier:
			toggle |= CapsLockActive
		}
	}
	return shift, toggle
}

func (q *queue) popKey() (KeyData, bool) {
	if len(q.keyQueue) == 0 {
		return KeyData{}, false
	}
	k := q.keyQueue[0]
	q.keyQueue = q.keyQueue[1:]
	return k, true
}

func (q *queue) peekKey() (KeyData, bool) {
	if len(q.keyQueue) == 0 {
		return KeyData{}, false
	}
	return q.keyQueue[0], true
}

func (q *queue) popNotify() (KeyData, bool) {
	if len(q.notifyQueue) == 0 {
		return KeyData{}, false
	}
	k := q.notifyQueue[0]
	q.notifyQueue = q.notifyQueue[1:]
	return k, true
}

func (q *queue) setToggleState(toggle uint8) {
	setMod := func(bit uint8, m hii.Modifier) {
		if toggle&bit != 0 {
			q.activeModifiers[m] = struct{}{}
		} else {
			delete(q.activeModifiers, m)
		}
	}
	setMod(ScrollLockActive, hii.ScrollLockModifier)
	setMod(NumLockActive, hii.NumLockModifier)
	setMod(CapsLockActive, hii.CapsLockModifier)
	q.partialExposed = toggle&KeyStateExposed != 0
}

func (q *queue) activeLEDUsages() map[hidreport.Usage]struct{} {
	out := map[hidreport.Usage]struct{}{}
	for m := range q.activeModifiers {
		if u, ok := modifierToLEDUsage(m); ok {
			out[u] = struct{}{}
		}
	}
	return out
}

// addNotify installs a new registration. Exact-duplicate-registration dedup
// by (pattern, callback) identity is not reproduced here: Go function
// values aren't comparable, so unlike the source this always allocates a
// fresh handle rather than returning an existing one for a repeat
// (pattern, callback) pair.
func (q *queue) addNotify(pattern NotifyPattern, cb NotifyFunc) NotifyHandle {
	q.nextHandle++
	h := q.nextHandle
	q.registered = append(q.registered, notifyRegistration{handle: h, pattern: pattern, cb: cb})
	return h
}

func (q *queue) removeNotify(h NotifyHandle) bool {
	for i, reg := range q.registered {
		if reg.handle == h {
			q.registered = append(q.registered[:i], q.registered[i+1:]...)
			return true
		}
	}
	return false
}

func (q *queue) pendingCallbacks(event KeyData) []NotifyFunc {
	var out []NotifyFunc
	for _, reg := range q.registered {
		if reg.pattern.matches(event) {
			out = append(out, reg.cb)
		}
	}
	return out
}
