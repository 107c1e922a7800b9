// Package config defines the kong-parsed CLI schema cmd/hidsim loads,
// following the embed/prefix convention the original VIIPER server/proxy
// commands use for their own sub-configs (internal/server/api.ServerConfig,
// internal/server/usb.ServerConfig).
package config

// CLI is the top-level flag/config-file schema for cmd/hidsim.
type CLI struct {
	Device string `help:"hidraw device path to drive (e.g. /dev/hidraw3), or \"sim\" for the built-in simulated keyboard+mouse" default:"sim" env:"HIDSIM_DEVICE"`

	Layout LayoutConfig `embed:"" prefix:"layout."`
	Log    LogConfig    `embed:"" prefix:"log."`
}

// LayoutConfig controls how the keyboard handler's HII-backed layout
// tracking is seeded.
type LayoutConfig struct {
	File string `help:"Path to an HII keyboard-layout package-list file to install instead of the built-in US-104 default" env:"HIDSIM_LAYOUT_FILE"`
}

// LogConfig mirrors the Log sub-config every VIIPER command embeds.
type LogConfig struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" enum:"trace,debug,info,warn,error" default:"info" env:"HIDSIM_LOG_LEVEL"`
	File    string `help:"Also write logs to this file; console logs then all go to stderr" env:"HIDSIM_LOG_FILE"`
	RawFile string `help:"Write raw inbound/outbound report hex dumps to this file" env:"HIDSIM_LOG_RAWFILE"`
}
