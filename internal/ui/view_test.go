package ui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avalonarena/spectate/internal/config"
	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/logging"
	"github.com/avalonarena/spectate/internal/protocol"
	"github.com/avalonarena/spectate/internal/replay"
)

func replayModel(t *testing.T) Model {
	t.Helper()
	m, err := NewReplayModel(config.Default(), logging.Discard(), nil, uiTestRecord(), "game.json", false)
	if err != nil {
		t.Fatalf("NewReplayModel failed: %v", err)
	}
	return m
}

// sized delivers the first window size, which readies the viewports.
func sized(t *testing.T, m Model) Model {
	t.Helper()
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return mm.(Model)
}

func press(t *testing.T, m Model, key string) Model {
	t.Helper()
	mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return mm.(Model)
}

func TestView_BeforeFirstResize(t *testing.T) {
	m := replayModel(t)
	if got := m.View(); !strings.Contains(got, "初始化中") {
		t.Errorf("unready view renders %q", got)
	}
}

func TestView_ReplayBoard(t *testing.T) {
	m := sized(t, replayModel(t))
	out := m.View()

	for _, want := range []string{
		"阿瓦隆观战",
		fmt.Sprintf("1/%d", m.timeline.Len()),
		"⏸",
		"甲",
		game.HiddenRoleLabel,
		"任务",
		"否决",
		"空格",
		"战绩",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("board output missing %q", want)
		}
	}
	if strings.Contains(out, "梅林") {
		t.Error("role visible without god mode")
	}
}

func TestView_GodModeKey(t *testing.T) {
	m := sized(t, replayModel(t))

	m = press(t, m, "v")
	out := m.View()
	if !strings.Contains(out, "[上帝视角]") {
		t.Error("god badge missing from the header")
	}
	if !strings.Contains(out, "梅林") {
		t.Error("roles still hidden in god mode")
	}
	if !strings.Contains(out, "上帝视角开启") {
		t.Error("toggle status missing from the footer")
	}

	m = press(t, m, "v")
	out = m.View()
	if strings.Contains(out, "梅林") {
		t.Error("roles still visible after toggling god mode off")
	}
}

func TestView_HistoryScreen(t *testing.T) {
	m := sized(t, replayModel(t))
	mm, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = mm.(Model)

	out := m.View()
	if !strings.Contains(out, "对局战绩") {
		t.Error("history header missing")
	}
	if !strings.Contains(out, "还没有完成的对局") {
		t.Error("empty history placeholder missing")
	}
	if !strings.Contains(out, "返回") {
		t.Error("history footer missing the back key")
	}
	if !strings.Contains(out, "本局 4 轮 5 次提案") {
		t.Error("record statistics line missing")
	}

	m.hist.Append(GameSnapshot{
		Number:    1,
		Winner:    game.TeamGood,
		GoodScore: 3,
		EvilScore: 1,
		StartedAt: testNow,
		EndedAt:   testNow.Add(8 * time.Minute),
		EndReason: "刺杀失败",
	})
	m.view.Stats = protocol.StatsUpdatePayload{
		"summary": map[string]any{
			"total_games":   float64(12),
			"good_win_rate": "58.3%",
			"evil_win_rate": "41.7%",
		},
	}
	out = m.View()
	for _, want := range []string{"正义胜", "3:1", "服务端累计 12 局", "正义胜率 58.3%"} {
		if !strings.Contains(out, want) {
			t.Errorf("history output missing %q", want)
		}
	}
}

func TestView_LiveIdle(t *testing.T) {
	m := sized(t, NewLiveModel(config.Default(), logging.Discard(), nil, nil))
	out := m.View()

	if !strings.Contains(out, "等待对局开始") {
		t.Error("idle prompt missing")
	}
	if !strings.Contains(out, "连接中") {
		t.Error("connecting state missing from the header")
	}
	if !strings.Contains(out, "开局") {
		t.Error("live footer missing the start key")
	}
}

func TestServerStatsLine(t *testing.T) {
	if got := serverStatsLine(nil); got != "" {
		t.Errorf("empty report rendered %q", got)
	}
	if got := serverStatsLine(protocol.StatsUpdatePayload{"summary": map[string]any{"total_games": float64(0)}}); got != "" {
		t.Errorf("zero-game report rendered %q", got)
	}

	full := protocol.StatsUpdatePayload{
		"summary": map[string]any{
			"total_games":   float64(12),
			"good_win_rate": "58.3%",
			"evil_win_rate": "41.7%",
		},
	}
	want := "服务端累计 12 局  正义胜率 58.3%  邪恶胜率 41.7%"
	if got := serverStatsLine(full); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	// Rates the server could not compute stay out of the line.
	na := protocol.StatsUpdatePayload{
		"summary": map[string]any{
			"total_games":   float64(2),
			"good_win_rate": "N/A",
			"evil_win_rate": "100.0%",
		},
	}
	if got := serverStatsLine(na); got != "服务端累计 2 局  邪恶胜率 100.0%" {
		t.Errorf("N/A rate not skipped: %q", got)
	}
}

func TestRecordStatsLine(t *testing.T) {
	if got := recordStatsLine(nil); got != "" {
		t.Errorf("nil stats rendered %q", got)
	}

	got := recordStatsLine(replay.ComputeStats(uiTestRecord()))
	want := "本局 4 轮 5 次提案（通过 4 否决 1）  任务 3 成 1 败  发言 2 条  刺杀未中"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
