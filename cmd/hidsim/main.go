// Command hidsim drives the pre-boot HID input stack end to end, either
// against a real /dev/hidraw* node or the built-in simulated keyboard and
// mouse, and prints decoded keystrokes and pointer state to the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/microsoft/mu-hid-go/hii"
	"github.com/microsoft/mu-hid-go/input"
	"github.com/microsoft/mu-hid-go/internal/config"
	"github.com/microsoft/mu-hid-go/internal/configpaths"
	"github.com/microsoft/mu-hid-go/internal/log"
	"github.com/microsoft/mu-hid-go/internal/simhid"
	"github.com/microsoft/mu-hid-go/internal/status"
)

func main() {
	userCfg := findUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	kong.Parse(&cli,
		kong.Name("hidsim"),
		kong.Description("Drives the keyboard/pointer input stack against a real hidraw device or the built-in simulator"),
		kong.UsageOnError(),
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to setup logger:", err)
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var rawLogger log.RawLogger
	if cli.Log.RawFile != "" {
		f, err := os.OpenFile(cli.Log.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open raw log file", "file", cli.Log.RawFile, "error", err)
			rawLogger = log.NewRaw(nil)
		} else {
			rawLogger = log.NewRaw(f)
			closeFiles = append(closeFiles, f)
		}
	} else if cli.Log.Level == "trace" {
		rawLogger = log.NewRaw(os.Stdout)
	} else {
		rawLogger = log.NewRaw(nil)
	}

	db := simhid.NewDatabase()
	if cli.Layout.File != "" {
		if err := installLayoutFile(db, cli.Layout.File); err != nil {
			logger.Error("install layout file", "path", cli.Layout.File, "error", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resetHook := input.ResetHook(func(kind input.ResetKind, code status.Code, data []byte) {
		logger.Warn("reset requested by keyboard handler", "kind", kind)
		stop()
		os.Exit(0)
	})
	factory := input.DefaultReceivers(db, 1, resetHook, logger)

	switch cli.Device {
	case "", "sim":
		runSimulated(ctx, logger, rawLogger, factory)
	default:
		runDevice(ctx, cli.Device, logger, rawLogger, factory)
	}
}

func installLayoutFile(db *simhid.Database, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	pl, err := hii.Decode(data)
	if err != nil {
		return err
	}
	if _, err := db.NewPackageList(data, 1); err != nil {
		return err
	}
	if len(pl.Package.Layouts) == 0 {
		return nil
	}
	return db.SetKeyboardLayout(pl.Package.Layouts[0].GUID)
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("HIDSIM_CONFIG"); v != "" {
		return v
	}
	return ""
}
