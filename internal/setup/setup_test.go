package setup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/avalonarena/spectate/internal/config"
)

func TestGenerateTOML_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectate.toml")
	m := New(path)
	m.cfg.Server.Host = "games.example.com"
	m.cfg.Server.Port = 9000
	m.cfg.Playback.BaseIntervalMs = 2000
	m.cfg.UI.GodMode = true
	m.cfg.Tap.URL = "nats://localhost:4222"
	m.cfg.Tap.Enabled = true

	if err := os.WriteFile(path, []byte(m.generateTOML()), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}

	if cfg.Server.Host != "games.example.com" || cfg.Server.Port != 9000 {
		t.Errorf("server lost: %+v", cfg.Server)
	}
	if cfg.Playback.BaseIntervalMs != 2000 {
		t.Errorf("pace lost: %d", cfg.Playback.BaseIntervalMs)
	}
	if !cfg.UI.GodMode {
		t.Error("god mode lost")
	}
	if !cfg.Tap.Enabled || cfg.Tap.URL != "nats://localhost:4222" {
		t.Errorf("tap lost: %+v", cfg.Tap)
	}
	// Settings the wizard does not ask about keep their defaults.
	if cfg.Playback.SpeechMultiplier != 2.5 {
		t.Errorf("speech multiplier changed to %g", cfg.Playback.SpeechMultiplier)
	}
	if len(cfg.Playback.Speeds) != 4 {
		t.Errorf("speed ladder changed to %v", cfg.Playback.Speeds)
	}
	if cfg.Reconnect.Factor != 1.5 {
		t.Errorf("reconnect factor changed to %g", cfg.Reconnect.Factor)
	}
	if cfg.UI.SpeechTTLMs != 6000 {
		t.Errorf("speech ttl changed to %d", cfg.UI.SpeechTTLMs)
	}
}

func TestNew_PrefillsFromExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectate.toml")
	content := `
[server]
host = "replayhost"
port = 7777
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	m := New(path)
	if !m.editMode {
		t.Error("existing config not detected")
	}
	if m.cfg.Server.Host != "replayhost" || m.cfg.Server.Port != 7777 {
		t.Errorf("values not pre-filled: %+v", m.cfg.Server)
	}
}

func TestNew_MissingFileStartsFresh(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "spectate.toml"))
	if m.editMode {
		t.Error("edit mode without a config file")
	}
	if m.cfg.Server.Host != "localhost" || m.cfg.Server.Port != 8080 {
		t.Errorf("defaults missing: %+v", m.cfg.Server)
	}
}

func TestHandleEnter_RejectsBadPort(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "spectate.toml"))
	m.step = StepServerPort

	m.textInput.SetValue("not-a-port")
	next, _ := m.handleEnter()
	m = next.(Model)
	if m.step != StepServerPort || m.err == nil {
		t.Errorf("bad port accepted: step=%d err=%v", m.step, m.err)
	}

	m.textInput.SetValue("9000")
	next, _ = m.handleEnter()
	m = next.(Model)
	if m.step != StepInterval || m.err != nil {
		t.Errorf("valid port rejected: step=%d err=%v", m.step, m.err)
	}
	if m.cfg.Server.Port != 9000 {
		t.Errorf("port is %d", m.cfg.Server.Port)
	}
}

func TestHandleEnter_EmptyTapDisables(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "spectate.toml"))
	m.step = StepTap

	m.textInput.SetValue("   ")
	next, _ := m.handleEnter()
	m = next.(Model)
	if m.cfg.Tap.Enabled {
		t.Error("tap enabled with no URL")
	}

	m.step = StepTap
	m.textInput.SetValue("nats://localhost:4222")
	next, _ = m.handleEnter()
	m = next.(Model)
	if !m.cfg.Tap.Enabled || m.cfg.Tap.URL != "nats://localhost:4222" {
		t.Errorf("tap not enabled: %+v", m.cfg.Tap)
	}
}
