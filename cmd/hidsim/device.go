//go:build linux

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/microsoft/mu-hid-go/hidio"
	"github.com/microsoft/mu-hid-go/hidio/hidrawlinux"
	"github.com/microsoft/mu-hid-go/input"
	"github.com/microsoft/mu-hid-go/internal/log"
)

// runDevice drives the stack against a real /dev/hidraw* node. Unlike the
// simulator, reports originate from actual hardware, so this just starts
// the multiplexer and prints whatever it decodes until ctx is done.
func runDevice(ctx context.Context, path string, logger *slog.Logger, rawLogger log.RawLogger, factory input.ReceiverFactory) {
	mux := input.NewMultiplexer(hidrawlinux.OpenFunc, factory, logger, rawLogger)
	ctrl := hidio.ControllerHandle(path)
	if err := mux.Start(ctx, ctrl); err != nil {
		logger.Error("start device", "path", path, "error", err)
		os.Exit(1)
	}
	defer func() { _ = mux.Stop(context.Background(), ctrl) }()

	svcs, _ := mux.Services(ctrl)
	go watchKeys(ctx, svcs.SimpleTextInputEx)
	go watchPointer(ctx, svcs.AbsolutePointer)

	logger.Info("hidsim: driving device", "path", path)
	<-ctx.Done()
}
