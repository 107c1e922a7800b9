package input

import (
	"log/slog"

	"github.com/microsoft/mu-hid-go/internal/status"
)

// ResetKind mirrors EFI_RESET_TYPE's three relevant members.
type ResetKind int

const (
	ResetCold ResetKind = iota
	ResetWarm
	ResetShutdown
)

// ResetHook is the reset-system call this core consumes (SPEC_FULL §6.6).
// Ctrl+Alt+Del invokes it with ResetWarm; a faithful implementation never
// returns.
type ResetHook func(kind ResetKind, code status.Code, data []byte)

// warmResetHook adapts a ResetHook into the zero-argument callback
// keyboard.Handler.ResetHook expects, fixing kind/code/data to the
// Ctrl+Alt+Del values SPEC_FULL §4.B step 7 specifies. If hook returns
// (it shouldn't — SPEC_FULL §7 "the caller panics"), this panics.
func warmResetHook(hook ResetHook, logger *slog.Logger) func() {
	return func() {
		if hook == nil {
			if logger != nil {
				logger.Error("ctrl+alt+del with no reset hook installed")
			}
			panic("input: warm reset requested with no ResetHook installed")
		}
		hook(ResetWarm, status.Success, nil)
		panic("input: ResetHook returned; a reset hook must not return")
	}
}
