// Package main is the batch replay tool: it prints game records as colored
// timelines, statistics or raw JSON without entering the interactive viewer.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/avalonarena/spectate/internal/record"
	"github.com/avalonarena/spectate/internal/replay"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "show":
		showRecord(args)
	case "stats":
		showStats(args)
	case "list":
		listRecords(args)
	case "version":
		fmt.Printf("replay version %s (commit: %s, built: %s)\n", version, commit, buildTime)
	case "help", "-h", "--help":
		printUsage()
	default:
		// A bare record path works as shorthand for show.
		if strings.HasSuffix(cmd, ".json") {
			showRecord(os.Args[1:])
			return
		}
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: replay <command> [options]

Commands:
  show <record.json>    Print the game as a step timeline
  stats <record.json>   Print game statistics
  list <dir|files...>   List records with their outcomes
  version               Show version
  help                  Show this help

Show Options:
  --god                 Reveal roles, night knowledge and mission cards
  --no-speeches         Skip table-talk steps
  --json                Dump the expanded step timeline as JSON
  --width <n>           Wrap column for speech text (default 72)`)
}

// showRecord prints one record as a timeline.
func showRecord(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: record file required")
		os.Exit(1)
	}
	path := args[0]

	god := false
	speeches := true
	asJSON := false
	width := 0

	for i := 1; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--god":
			god = true
		case arg == "--no-speeches":
			speeches = false
		case arg == "--json":
			asJSON = true
		case arg == "--width" && i+1 < len(args):
			i++
			width, _ = strconv.Atoi(args[i])
		case strings.HasPrefix(arg, "--width="):
			width, _ = strconv.Atoi(strings.TrimPrefix(arg, "--width="))
		default:
			fmt.Fprintf(os.Stderr, "unknown option: %s\n", arg)
			os.Exit(1)
		}
	}

	rec, err := record.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	opts := []replay.PrinterOption{
		replay.WithGodMode(god),
		replay.WithSpeeches(speeches),
	}
	if width > 0 {
		opts = append(opts, replay.WithWrapWidth(width))
	}
	p := replay.NewPrinter(os.Stdout, opts...)

	if asJSON {
		err = p.PrintJSON(rec)
	} else {
		err = p.PrintRecord(rec)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// showStats prints aggregate numbers for one record.
func showStats(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "error: record file required")
		os.Exit(1)
	}

	rec, err := record.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	replay.PrintStats(os.Stdout, replay.ComputeStats(rec))
}

// listRecords prints one line per record, with broken files reported
// inline instead of aborting the listing.
func listRecords(args []string) {
	l := replay.NewLister(os.Stdout)

	if len(args) == 0 {
		args = []string{"."}
	}

	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if info.IsDir() {
			if err := l.ListDir(args[0]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	if err := l.ListFiles(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
