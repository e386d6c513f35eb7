// Package main is the entry point for the spectate terminal viewer.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/avalonarena/spectate/internal/config"
	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/live"
	"github.com/avalonarena/spectate/internal/logging"
	"github.com/avalonarena/spectate/internal/record"
	"github.com/avalonarena/spectate/internal/setup"
	"github.com/avalonarena/spectate/internal/telemetry"
	"github.com/avalonarena/spectate/internal/ui"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func init() {
	// Load .env for AVALON_HOST / AVALON_PORT and friends
	_ = godotenv.Load()
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("spectate"),
		kong.Description("Terminal viewer for recorded and live Avalon agent games."),
		kong.UsageOnError(),
		kongVars(),
	)
	kctx.FatalIfErrorf(kctx.Run(&cli))
}

// app holds everything a subcommand needs after shared setup.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	catalog *game.Catalog
}

// newApp loads config, logging and the role catalog, applying global flag
// overrides. The returned cleanup closes the log file and flushes traces.
func newApp(cli *CLI) (*app, func(), error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, nil, err
	}
	if cli.God {
		cfg.UI.GodMode = true
	}

	// The UI owns the terminal, so logs go to a file or nowhere.
	log := logging.Discard()
	var logFile *os.File
	if cli.LogFile != "" {
		logFile, err = os.OpenFile(cli.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log = logging.New()
		log.SetOutput(logFile)
	}
	if cli.Debug {
		log.SetLevel(logging.LevelDebug)
	}

	catalog := game.Default()
	if cfg.Roles.Catalog != "" {
		catalog, err = game.LoadFile(cfg.Roles.Catalog)
		if err != nil {
			if logFile != nil {
				logFile.Close()
			}
			return nil, nil, err
		}
	}

	shutdown, err := telemetry.Setup(context.Background(), "spectate", cfg.Telemetry)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		_ = shutdown(context.Background())
		if logFile != nil {
			logFile.Close()
		}
	}
	return &app{cfg: cfg, log: log, catalog: catalog}, cleanup, nil
}

// Run opens the replay viewer. The record is loaded and validated before
// any terminal state changes, so a broken file fails on the command line
// rather than inside the UI.
func (c *ReplayCmd) Run(cli *CLI) error {
	a, cleanup, err := newApp(cli)
	if err != nil {
		return err
	}
	defer cleanup()

	rec, err := record.Load(c.File)
	if err != nil {
		return err
	}

	if c.Play {
		a.cfg.Playback.AutoPlay = true
	}

	m, err := ui.NewReplayModel(a.cfg, a.log, a.catalog, rec, c.File, c.Follow)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = p.Run()
	return err
}

// Run connects to the game server and opens the live viewer.
func (c *LiveCmd) Run(cli *CLI) error {
	a, cleanup, err := newApp(cli)
	if err != nil {
		return err
	}
	defer cleanup()

	if c.URL != "" {
		a.cfg.Server.URL = c.URL
	}
	url := a.cfg.ServerURL()

	// The client notifies through the program; the program needs the model,
	// and the model needs the client. The closure breaks the cycle: nothing
	// is delivered until Connect runs, by which time p is set.
	var p *tea.Program
	client := live.NewClient(url,
		live.WithLogger(a.log),
		live.WithBackoff(a.cfg.ReconnectBase(), a.cfg.ReconnectMax(), a.cfg.Reconnect.Factor),
		live.WithNotify(func(msg any) {
			if p != nil {
				p.Send(msg)
			}
		}),
	)

	if c.Tap || a.cfg.Tap.Enabled {
		tap, err := live.NewNATSTap(a.cfg.Tap.URL)
		if err != nil {
			a.log.TapError(a.cfg.Tap.Subject, err)
		} else {
			defer tap.Close()
			live.AttachTap(client, tap, a.cfg.Tap.Subject, a.log)
		}
	}

	m := ui.NewLiveModel(a.cfg, a.log, a.catalog, client)
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		return err
	}
	defer client.Disconnect()

	_, err = p.Run()
	return err
}

// Run starts the configuration wizard. It takes over the terminal, so the
// shared app setup (logging, telemetry) is skipped.
func (c *SetupCmd) Run(cli *CLI) error {
	return setup.Run(cli.Config)
}

// Run prints version information.
func (c *VersionCmd) Run(cli *CLI) error {
	fmt.Printf("spectate version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	return nil
}
