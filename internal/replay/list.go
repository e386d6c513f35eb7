package replay

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/record"
)

// recordInfo holds a parsed record with its source path.
type recordInfo struct {
	Record *record.GameRecord
	Source string
	Label  string
}

// Lister prints summaries for whole directories of replay files.
type Lister struct {
	output io.Writer
}

// NewLister creates a Lister.
func NewLister(output io.Writer) *Lister {
	return &Lister{output: output}
}

// ListDir summarizes every replay file in a directory, newest last. Broken
// files are reported inline and skipped rather than aborting the listing.
func (l *Lister) ListDir(dir string) error {
	paths, err := findRecordFiles(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no replay files in %s", dir)
	}
	return l.ListFiles(paths)
}

// ListFiles summarizes the given replay files.
func (l *Lister) ListFiles(paths []string) error {
	records, broken := l.loadRecords(paths)

	fmt.Fprintln(l.output)
	fmt.Fprintf(l.output, "%s %s\n", titleStyle.Render("GAMES"), dimStyle.Render(fmt.Sprintf("(%d)", len(records))))
	fmt.Fprintln(l.output, divider)

	for i, info := range records {
		l.printRecordLine(i+1, info)
	}
	for _, msg := range broken {
		fmt.Fprintf(l.output, "     %s\n", rejectStyle.Render(msg))
	}
	fmt.Fprintln(l.output)
	return nil
}

func (l *Lister) loadRecords(paths []string) ([]recordInfo, []string) {
	var records []recordInfo
	var broken []string

	for _, path := range paths {
		rec, err := record.Load(path)
		if err != nil {
			broken = append(broken, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			continue
		}
		records = append(records, recordInfo{
			Record: rec,
			Source: path,
			Label:  recordLabel(path),
		})
	}

	// Export filenames embed timestamps, so name order is play order.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Label < records[j].Label
	})
	return records, broken
}

func (l *Lister) printRecordLine(num int, info recordInfo) {
	rec := info.Record

	winner := dimStyle.Render("unfinished")
	switch rec.Winner {
	case game.TeamGood:
		winner = goodStyle.Render("good")
	case game.TeamEvil:
		winner = evilStyle.Render("evil")
	}

	assassin := " "
	if rec.AssassinPhase != nil {
		if rec.AssassinPhase.MerlinKilled {
			assassin = failStyle.Render("🗡")
		} else {
			assassin = dimStyle.Render("🗡")
		}
	}

	fmt.Fprintf(l.output, "%s │ %s │ %s %s %s %s\n",
		seqStyle.Render(fmt.Sprintf("%d", num)),
		valueStyle.Render(fmt.Sprintf("%-22s", info.Label)),
		winner,
		dimStyle.Render(fmt.Sprintf("%d:%d", rec.GoodWinsCount, rec.EvilWinsCount)),
		assassin,
		dimStyle.Render(truncateReason(rec.EndReason, 36)))
}

// recordLabel extracts a display label from the export filename.
func recordLabel(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimPrefix(base, "replay_")
}

// findRecordFiles collects replay JSON files under dir, non-recursively.
func findRecordFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".json") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func truncateReason(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
