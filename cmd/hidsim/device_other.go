//go:build !linux

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/microsoft/mu-hid-go/input"
	"github.com/microsoft/mu-hid-go/internal/log"
)

// runDevice is unavailable outside Linux: hidio/hidrawlinux is the only
// Transport this module ships for real hardware.
func runDevice(ctx context.Context, path string, logger *slog.Logger, rawLogger log.RawLogger, factory input.ReceiverFactory) {
	logger.Error("driving a real hidraw device is only supported on linux; use --device=sim", "path", path)
	os.Exit(1)
}
