package keyboard

import (
	"log/slog"

	"github.com/microsoft/mu-hid-go/hii"
	"github.com/microsoft/mu-hid-go/internal/status"
)

// TrackLayout subscribes this handler to db's layout-change notifications
// and installs the currently active layout. If the database has no layout
// installed yet, it installs hii.DefaultLayout via db and re-queries,
// mirroring on_layout_update's install_default_layout fallback.
//
// Called once by input.Multiplexer.Start after constructing the handler;
// log receives transient GetKeyboardLayout failures, which are swallowed
// per the "transient transport error" handling in SPEC_FULL §7 — the next
// layout-change event is the retry point.
func (h *Handler) TrackLayout(db hii.Database, driverHandle hii.DriverHandle, log *slog.Logger) error {
	h.db = db
	h.dbDriverHandle = driverHandle
	h.log = log

	h.onLayoutChange()
	if h.queue.getLayout() == nil {
		if err := h.installDefaultLayout(); err != nil {
			return err
		}
	}

	h.unregisterLayout = db.RegisterLayoutChange(h.onLayoutChange)
	return nil
}

// installDefaultLayout encodes and installs hii.DefaultLayout into db, then
// re-runs onLayoutChange so the handler picks it up through the same path
// a platform-installed layout would.
func (h *Handler) installDefaultLayout() error {
	pl := &hii.PackageList{
		GUID:    hii.DefaultKeyboardPkgListGUID,
		Package: hii.Package{Layouts: []*hii.Layout{hii.DefaultLayout()}},
	}
	if _, err := h.db.NewPackageList(hii.Encode(pl), h.dbDriverHandle); err != nil {
		return err
	}
	if err := h.db.SetKeyboardLayout(hii.DefaultKeyboardLayoutGUID); err != nil {
		return err
	}
	h.onLayoutChange()
	return nil
}

// onLayoutChange queries the database for the current layout bytes (using
// the size-probe/buffer convention of hii.Database.GetKeyboardLayout),
// decodes them, and installs the result. Failure is logged and swallowed:
// the handler keeps whatever layout it already had.
func (h *Handler) onLayoutChange() {
	size := 0
	if err := h.db.GetKeyboardLayout(nil, &size, nil); err != nil && !status.Is(err, status.BufferTooSmall) {
		h.logError("get keyboard layout size", err)
		return
	}
	if size == 0 {
		return
	}
	buf := make([]byte, size)
	if err := h.db.GetKeyboardLayout(nil, &size, buf); err != nil {
		h.logError("get keyboard layout", err)
		return
	}
	pl, err := hii.Decode(buf)
	if err != nil {
		h.logError("decode keyboard layout", err)
		return
	}
	if len(pl.Package.Layouts) == 0 {
		return
	}
	h.SetLayout(pl.Package.Layouts[0])
}

func (h *Handler) logError(msg string, err error) {
	if h.log != nil {
		h.log.Warn(msg, "error", err)
	}
}
