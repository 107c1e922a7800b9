package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/input"
	"github.com/microsoft/mu-hid-go/internal/log"
	"github.com/microsoft/mu-hid-go/internal/simhid"
)

const (
	simKeyboardCtrl hidio.ControllerHandle = "sim-keyboard"
	simMouseCtrl    hidio.ControllerHandle = "sim-mouse"
)

// runSimulated drives the full stack against the built-in simulated
// keyboard and mouse: terminal keystrokes become synthesized reports, and
// a background goroutine jiggles the simulated mouse so AbsolutePointer
// has something to report.
func runSimulated(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger, factory input.ReceiverFactory) {
	kbd := simhid.NewKeyboard()
	mouse := simhid.NewMouse()
	kbd.OnLEDChange(func(leds byte) {
		logger.Info("LED state changed",
			"num_lock", leds&0x01 != 0,
			"caps_lock", leds&0x02 != 0,
			"scroll_lock", leds&0x04 != 0)
	})

	open := func(_ context.Context, ctrl hidio.ControllerHandle) (hidio.Transport, error) {
		switch ctrl {
		case simKeyboardCtrl:
			return kbd, nil
		case simMouseCtrl:
			return mouse, nil
		default:
			return nil, fmt.Errorf("hidsim: unknown simulated controller %q", ctrl)
		}
	}

	mux := input.NewMultiplexer(open, factory, logger, rawLogger)
	if err := mux.Start(ctx, simKeyboardCtrl); err != nil {
		logger.Error("start simulated keyboard", "error", err)
		os.Exit(1)
	}
	if err := mux.Start(ctx, simMouseCtrl); err != nil {
		logger.Error("start simulated mouse", "error", err)
		os.Exit(1)
	}
	defer func() { _ = mux.Stop(context.Background(), simKeyboardCtrl) }()
	defer func() { _ = mux.Stop(context.Background(), simMouseCtrl) }()

	kbdSvcs, _ := mux.Services(simKeyboardCtrl)
	mouseSvcs, _ := mux.Services(simMouseCtrl)

	go watchKeys(ctx, kbdSvcs.SimpleTextInputEx)
	go watchPointer(ctx, mouseSvcs.AbsolutePointer)
	go jiggleMouse(ctx, mouse)

	fmt.Fprintln(os.Stderr, "hidsim: simulated mode. Type to emit keystrokes; Ctrl+C to quit.")
	readTerminalKeystrokes(ctx, kbd)
}

// jiggleMouse periodically injects a small relative move, since the
// terminal has no native pointer-motion source to forward.
func jiggleMouse(ctx context.Context, mouse *simhid.Mouse) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dx := int8(rand.Intn(11) - 5)
			dy := int8(rand.Intn(11) - 5)
			mouse.Move(0, dx, dy, 0)
		}
	}
}

// readTerminalKeystrokes puts stdin into raw mode and translates each
// typed rune into a press/release pair on kbd until ctx is done or the
// user types Ctrl+C (0x03), which this loop treats as the quit key since
// raw mode suppresses the normal SIGINT delivery.
func readTerminalKeystrokes(ctx context.Context, kbd *simhid.Keyboard) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hidsim: stdin is not a terminal; simulated keyboard will stay idle")
		<-ctx.Done()
		return
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		if buf[0] == 0x03 {
			return
		}
		usage, mods, ok := simhid.KeyForRune(rune(buf[0]))
		if !ok {
			continue
		}
		kbd.Tap(usage, mods)
	}
}
