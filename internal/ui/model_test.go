package ui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avalonarena/spectate/internal/config"
	"github.com/avalonarena/spectate/internal/logging"
	"github.com/avalonarena/spectate/internal/record"
)

func writeRecord(t *testing.T, path string, rec *record.GameRecord) {
	t.Helper()
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
}

// partialRecord truncates the test game to its first three proposals, the
// shape a record file has while the game is still running.
func partialRecord() *record.GameRecord {
	rec := uiTestRecord()
	rec.MissionRecords = rec.MissionRecords[:3]
	rec.MissionResults = []bool{true, false}
	rec.GoodWinsCount = 1
	rec.EvilWinsCount = 1
	rec.Winner = ""
	rec.EndReason = ""
	rec.AssassinPhase = nil
	return rec
}

func TestModel_ReloadPinsToNewEnd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.json")
	writeRecord(t, path, uiTestRecord())

	m, err := NewReplayModel(config.Default(), logging.Discard(), nil, partialRecord(), path, false)
	if err != nil {
		t.Fatalf("NewReplayModel failed: %v", err)
	}
	m = sized(t, m)
	before := m.timeline.Len()

	// Pinned to the end of the short record when the grown file lands.
	mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnd})
	m = mm.(Model)
	mm, _ = m.Update(fileChangedMsg{})
	m = mm.(Model)

	if m.timeline.Len() <= before {
		t.Fatalf("timeline did not grow: %d then %d", before, m.timeline.Len())
	}
	if !m.timeline.AtEnd() {
		t.Errorf("cursor at %d of %d, expected the new end", m.timeline.Pos(), m.timeline.Len())
	}
	if m.status != "记录已重载" {
		t.Errorf("status %q", m.status)
	}
	if !m.view.Ended {
		t.Error("view not on the finished game after the reload")
	}
}

func TestModel_ReloadKeepsCursorMidTimeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.json")
	writeRecord(t, path, uiTestRecord())

	m, err := NewReplayModel(config.Default(), logging.Discard(), nil, partialRecord(), path, false)
	if err != nil {
		t.Fatalf("NewReplayModel failed: %v", err)
	}
	m = sized(t, m)

	for i := 0; i < 3; i++ {
		m = press(t, m, "n")
	}
	pos := m.timeline.Pos()
	m = press(t, m, " ")

	mm, _ := m.Update(fileChangedMsg{})
	m = mm.(Model)

	if m.timeline.Pos() != pos {
		t.Errorf("cursor moved from %d to %d on reload", pos, m.timeline.Pos())
	}
	if m.timeline.AtEnd() {
		t.Error("mid-timeline cursor jumped to the end")
	}
	if m.ctrl.Playing() {
		t.Error("reload left auto-play running over the old timeline's tick")
	}
}

func TestModel_ReloadRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.json")
	if err := os.WriteFile(path, []byte("half-written"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	m, err := NewReplayModel(config.Default(), logging.Discard(), nil, uiTestRecord(), path, false)
	if err != nil {
		t.Fatalf("NewReplayModel failed: %v", err)
	}
	m = sized(t, m)
	length := m.timeline.Len()

	mm, _ := m.Update(fileChangedMsg{})
	m = mm.(Model)

	if m.timeline.Len() != length {
		t.Error("broken file replaced the timeline")
	}
	if !strings.Contains(m.status, "重载失败") {
		t.Errorf("status %q does not report the failure", m.status)
	}
}

func TestModel_ManualStepStopsPlayback(t *testing.T) {
	m, err := NewReplayModel(config.Default(), logging.Discard(), nil, uiTestRecord(), "game.json", false)
	if err != nil {
		t.Fatalf("NewReplayModel failed: %v", err)
	}
	m = sized(t, m)

	m = press(t, m, " ")
	if !m.ctrl.Playing() {
		t.Fatal("space did not start playback")
	}

	m = press(t, m, "n")
	if m.ctrl.Playing() {
		t.Error("manual step left auto-play running")
	}
	if m.timeline.Pos() != 1 {
		t.Errorf("cursor at %d, expected 1", m.timeline.Pos())
	}
}

func TestModel_StaleTickDropped(t *testing.T) {
	m, err := NewReplayModel(config.Default(), logging.Discard(), nil, uiTestRecord(), "game.json", false)
	if err != nil {
		t.Fatalf("NewReplayModel failed: %v", err)
	}
	m = sized(t, m)

	m = press(t, m, " ")
	stale := m.ctrl.Generation()

	m = press(t, m, " ") // stop
	pos := m.timeline.Pos()

	mm, _ := m.Update(tickMsg{generation: stale})
	m = mm.(Model)
	if m.timeline.Pos() != pos {
		t.Error("stale tick advanced the timeline")
	}

	m = press(t, m, " ") // play again
	mm, _ = m.Update(tickMsg{generation: m.ctrl.Generation()})
	m = mm.(Model)
	if m.timeline.Pos() != pos+1 {
		t.Errorf("live tick did not advance: %d", m.timeline.Pos())
	}
}
