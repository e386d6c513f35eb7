package game

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCatalog_Default(t *testing.T) {
	c := Default()

	if c.Len() != 6 {
		t.Errorf("expected 6 roles, got %d", c.Len())
	}

	merlin := c.Lookup("merlin")
	if merlin.Team != TeamGood {
		t.Errorf("expected merlin on good, got %s", merlin.Team)
	}
	if !merlin.SeesEvil {
		t.Error("merlin should see evil")
	}

	assassin := c.Lookup("assassin")
	if assassin.Team != TeamEvil {
		t.Errorf("expected assassin on evil, got %s", assassin.Team)
	}
	if !assassin.Assassin {
		t.Error("assassin role should carry the assassin flag")
	}
}

func TestCatalog_LookupUnknown(t *testing.T) {
	c := Default()

	r := c.Lookup("oberon")
	if r.ID != "oberon" {
		t.Errorf("expected bare role id oberon, got %s", r.ID)
	}
	if r.Name != "oberon" {
		t.Errorf("expected name to fall back to id, got %s", r.Name)
	}
	if c.Has("oberon") {
		t.Error("unknown id should not be reported as defined")
	}
}

func TestCatalog_LoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yaml")
	content := `roles:
  - id: mordred
    name: 莫德雷德
    team: evil
  - id: merlin
    name: 大梅林
    team: good
    sees_evil: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	if !c.Has("mordred") {
		t.Error("new role should extend the catalog")
	}
	if got := c.Lookup("merlin").Name; got != "大梅林" {
		t.Errorf("override should replace the built-in name, got %s", got)
	}
	if !c.Has("percival") {
		t.Error("untouched built-in roles should survive a merge")
	}
}

func TestCatalog_LoadFileRejectsBadTeam(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roles.yaml")
	content := "roles:\n  - id: ghost\n    team: neutral\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for unknown team")
	}
}

func TestTeam_Labels(t *testing.T) {
	if TeamGood.Label() != "正义" {
		t.Errorf("unexpected good label %q", TeamGood.Label())
	}
	if TeamEvil.Label() != "邪恶" {
		t.Errorf("unexpected evil label %q", TeamEvil.Label())
	}
	if Team("draw").Label() != "draw" {
		t.Error("unknown team should label as itself")
	}
	if Team("draw").Valid() {
		t.Error("unknown team should not validate")
	}
}

func TestPhase_Label(t *testing.T) {
	if PhaseNight.Label() != "夜晚" {
		t.Errorf("unexpected night label %q", PhaseNight.Label())
	}
	if Phase("CUSTOM").Label() != "CUSTOM" {
		t.Error("unknown phase should label as itself")
	}
}
