package main

import (
	"context"
	"fmt"
	"time"

	"github.com/microsoft/mu-hid-go/input"
)

// pollInterval is how often the event loops below re-check WaitFor*Event;
// both keyboard.Handler.WaitForKey and pointer.Handler.WaitForInput are
// non-blocking polls (mirroring UEFI's WaitForEvent signal-and-return
// model), so a real event loop drives them from a ticker rather than a
// blocking receive.
const pollInterval = 15 * time.Millisecond

// watchKeys prints every keystroke svc produces until ctx is done.
func watchKeys(ctx context.Context, svc input.SimpleTextInputEx) {
	ready := make(chan struct{}, 1)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.WaitForKeyExEvent(ready); err != nil {
				return
			}
			select {
			case <-ready:
				drainKeys(svc)
			default:
			}
		}
	}
}

func drainKeys(svc input.SimpleTextInputEx) {
	for {
		k, err := svc.ReadKeyEx()
		if err != nil {
			return
		}
		fmt.Printf("key: unicode=%q scan=0x%04x shift=0x%08x toggle=0x%02x\n",
			rune(k.UnicodeChar), k.ScanCode, k.ShiftState, k.ToggleState)
	}
}

// watchPointer prints pointer state every time it changes until ctx is
// done.
func watchPointer(ctx context.Context, svc input.AbsolutePointer) {
	ready := make(chan struct{}, 1)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svc.WaitForInputEvent(ready); err != nil {
				return
			}
			select {
			case <-ready:
				st, err := svc.GetState()
				if err == nil {
					fmt.Printf("pointer: x=%d y=%d z=%d buttons=0x%02x\n", st.X, st.Y, st.Z, st.Buttons)
				}
			default:
			}
		}
	}
}
