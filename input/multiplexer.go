// Package input implements the receiver multiplexer and lifecycle glue
// (SPEC_FULL §4.F) and the external-service shims (§4.G) that bind a
// controller handle to a keyboard.Handler and pointer.Handler pair and
// expose them as the three public service wrappers consumers poll.
package input

import (
	"context"
	"log/slog"
	"sync"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/hii"
	"github.com/microsoft/mu-hid-go/internal/log"
	"github.com/microsoft/mu-hid-go/internal/status"
	"github.com/microsoft/mu-hid-go/keyboard"
	"github.com/microsoft/mu-hid-go/pointer"
)

// receiver is what a Multiplexer fans inbound reports to: anything built
// by a receiverConstructor must accept reports and release its resources
// on Close. keyboard.Handler and pointer.Handler both satisfy this
// structurally.
type receiver interface {
	hidio.ReportReceiver
	Close() error
}

// receiverConstructor builds one receiver against an already-opened
// adapter. A constructor returning a non-nil error means that receiver
// does not apply to this device (e.g. no keyboard usages in the
// descriptor) and Start proceeds without it.
type receiverConstructor func(adapter *hidio.Adapter) (receiver, error)

// ReceiverFactory produces the set of receiver constructors Start tries
// for every controller. The canonical factory (DefaultReceivers) tries a
// pointer.Handler and a keyboard.Handler, in that order.
type ReceiverFactory func() []receiverConstructor

// DefaultReceivers returns the canonical {pointer, keyboard} receiver
// factory. db/driverHandle/resetHook/logger are threaded into the
// keyboard receiver's layout tracking and Ctrl+Alt+Del handling; db may be
// nil, in which case the keyboard handler runs without dynamic layout
// tracking (hii.DefaultLayout only).
func DefaultReceivers(db hii.Database, driverHandle hii.DriverHandle, resetHook ResetHook, logger *slog.Logger) ReceiverFactory {
	return func() []receiverConstructor {
		return []receiverConstructor{
			func(a *hidio.Adapter) (receiver, error) {
				return pointer.NewHandler(a)
			},
			func(a *hidio.Adapter) (receiver, error) {
				// When a Database is wired in, leave the initial layout
				// unset and let TrackLayout seed it (installing
				// hii.DefaultLayout via the database itself if nothing is
				// installed yet). Without one, seed it directly so the
				// handler is usable standalone.
				var seed *hii.Layout
				if db == nil {
					seed = hii.DefaultLayout()
				}
				h, err := keyboard.NewHandler(a, seed)
				if err != nil {
					return nil, err
				}
				h.ResetHook = warmResetHook(resetHook, logger)
				if db != nil {
					if err := h.TrackLayout(db, driverHandle, logger); err != nil && logger != nil {
						logger.Warn("track keyboard layout", "error", err)
					}
				}
				return h, nil
			},
		}
	}
}

// splitter fans one inbound report out to every receiver that survived
// Start, in insertion order, mirroring SPEC_FULL §4.F step 5.
type splitter struct {
	receivers []receiver
}

func (s *splitter) ReceiveReport(data []byte, adapter *hidio.Adapter) {
	for _, r := range s.receivers {
		r.ReceiveReport(data, adapter)
	}
}

// record is the per-controller instance SPEC_FULL §3 "Lifecycle" and §4.F
// step 7 describe: it owns the adapter, the splitter, and the receivers
// fanned behind it, and is what handlerArena indexes point back to.
type record struct {
	ctrl     hidio.ControllerHandle
	adapter  *hidio.Adapter
	splitter *splitter
	keyboard *keyboard.Handler
	pointer  *pointer.Handler
	arenaIdx int
}

// Multiplexer is the top-level lifecycle owner: Supported/Start/Stop are
// the driver-binding-protocol hooks SPEC_FULL §1 treats as externally
// invoked, and the per-controller records it builds are what the three
// exported service wrappers (SimpleTextInput, SimpleTextInputEx,
// AbsolutePointer) read from.
type Multiplexer struct {
	mu        sync.Mutex
	open      hidio.OpenFunc
	factory   ReceiverFactory
	logger    *slog.Logger
	rawLogger log.RawLogger
	arena     handlerArena
	byCtrl    map[hidio.ControllerHandle]*record
}

// NewMultiplexer builds a Multiplexer that opens controllers via open and
// populates each with the receivers factory returns. rawLogger, if
// non-nil, hex-dumps every report the resulting adapters pass through;
// pass nil to disable raw logging.
func NewMultiplexer(open hidio.OpenFunc, factory ReceiverFactory, logger *slog.Logger, rawLogger log.RawLogger) *Multiplexer {
	return &Multiplexer{
		open:      open,
		factory:   factory,
		logger:    logger,
		rawLogger: rawLogger,
		byCtrl:    map[hidio.ControllerHandle]*record{},
	}
}

// Supported reports whether ctrl can be driven by this core, by opening a
// non-owning probe adapter and immediately dropping it without installing
// anything.
func (m *Multiplexer) Supported(ctx context.Context, ctrl hidio.ControllerHandle) bool {
	adapter, err := hidio.Open(ctx, ctrl, false, m.open)
	if err != nil {
		return false
	}
	_ = adapter.Close()
	return true
}

// Start builds an owning adapter for ctrl, constructs every receiver the
// factory offers, keeps only the ones that initialize successfully, and
// installs a splitter fanning reports to all of them. It fails with
// status.Unsupported if no receiver survived.
func (m *Multiplexer) Start(ctx context.Context, ctrl hidio.ControllerHandle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byCtrl[ctrl]; exists {
		return status.New(status.AccessDenied)
	}

	adapter, err := hidio.Open(ctx, ctrl, true, m.open)
	if err != nil {
		return err
	}
	adapter.SetRawLogger(m.rawLogger)

	var survivors []receiver
	var kb *keyboard.Handler
	var pt *pointer.Handler
	for _, ctor := range m.factory() {
		r, err := ctor(adapter)
		if err != nil {
			if m.logger != nil {
				m.logger.Debug("receiver did not apply", "controller", ctrl, "error", err)
			}
			continue
		}
		survivors = append(survivors, r)
		switch h := r.(type) {
		case *keyboard.Handler:
			kb = h
		case *pointer.Handler:
			pt = h
		}
	}

	if len(survivors) == 0 {
		_ = adapter.Close()
		return status.New(status.Unsupported)
	}

	sp := &splitter{receivers: survivors}
	if err := adapter.SetReportReceiver(sp); err != nil {
		for _, r := range survivors {
			_ = r.Close()
		}
		_ = adapter.Close()
		return err
	}

	rec := &record{ctrl: ctrl, adapter: adapter, splitter: sp, keyboard: kb, pointer: pt}
	rec.arenaIdx = m.arena.insert(rec)
	m.byCtrl[ctrl] = rec
	return nil
}

// Stop looks up the record installed for ctrl, detaches it from the arena
// so in-flight service calls observe status.DeviceError, then withdraws
// each receiver, drops the splitter, and closes the adapter.
func (m *Multiplexer) Stop(ctx context.Context, ctrl hidio.ControllerHandle) error {
	m.mu.Lock()
	rec, ok := m.byCtrl[ctrl]
	if ok {
		delete(m.byCtrl, ctrl)
	}
	m.mu.Unlock()
	if !ok {
		return status.New(status.NotFound)
	}

	m.arena.detach(rec.arenaIdx)

	var firstErr error
	for _, r := range rec.splitter.receivers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		if m.logger != nil {
			m.logger.Warn("teardown error withdrawing receiver; handler leaked", "controller", ctrl, "error", firstErr)
		}
		return firstErr
	}
	return rec.adapter.Close()
}

// Services returns the three public service wrappers installed for ctrl,
// or ok=false if Start has not been called for it (or Stop already ran).
func (m *Multiplexer) Services(ctrl hidio.ControllerHandle) (Services, bool) {
	m.mu.Lock()
	rec, ok := m.byCtrl[ctrl]
	m.mu.Unlock()
	if !ok {
		return Services{}, false
	}
	return Services{
		SimpleTextInput:   SimpleTextInput{arena: &m.arena, idx: rec.arenaIdx},
		SimpleTextInputEx: SimpleTextInputEx{arena: &m.arena, idx: rec.arenaIdx},
		AbsolutePointer:   AbsolutePointer{arena: &m.arena, idx: rec.arenaIdx},
	}, true
}

// Services bundles the three external-service wrappers Start installs for
// one controller.
type Services struct {
	SimpleTextInput   SimpleTextInput
	SimpleTextInputEx SimpleTextInputEx
	AbsolutePointer   AbsolutePointer
}
