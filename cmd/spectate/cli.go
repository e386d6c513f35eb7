// Package main defines the CLI structure using kong.
package main

import "github.com/alecthomas/kong"

// CLI defines the command-line interface.
type CLI struct {
	Config  string `help:"Config file path"`
	God     bool   `help:"Start with all roles and hidden knowledge revealed"`
	LogFile string `help:"Append diagnostic logs to this file"`
	Debug   bool   `help:"Log at debug level"`

	Replay  ReplayCmd  `cmd:"" help:"Step through a recorded game"`
	Live    LiveCmd    `cmd:"" help:"Watch a running session over WebSocket"`
	Setup   SetupCmd   `cmd:"" help:"Create or edit the config file interactively"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// ReplayCmd opens the interactive viewer on a finished game record.
type ReplayCmd struct {
	File   string `arg:"" help:"Game record JSON file"`
	Follow bool   `short:"f" help:"Reload when the record file changes"`
	Play   bool   `help:"Start auto-play on load"`
}

// LiveCmd connects the viewer to a running game server.
type LiveCmd struct {
	URL string `help:"WebSocket endpoint (overrides config and environment)"`
	Tap bool   `help:"Republish inbound events to NATS"`
}

// SetupCmd runs the interactive configuration wizard.
type SetupCmd struct{}

// VersionCmd shows version information.
type VersionCmd struct{}

// kongVars returns variables for kong (version info).
func kongVars() kong.Vars {
	return kong.Vars{
		"version": version,
	}
}
