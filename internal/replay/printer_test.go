package replay

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestPrinter_FinishedGameRevealsRoles(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	if err := p.PrintRecord(testRecord()); err != nil {
		t.Fatalf("PrintRecord failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "梅林") {
		t.Error("finished game hides roles in the roster")
	}
	if strings.Contains(out, "???") {
		t.Error("finished game still prints hidden role markers")
	}
	if !strings.Contains(out, "GOOD WINS") {
		t.Error("summary missing the winner banner")
	}
}

func TestPrinter_UnfinishedGameHidesRoles(t *testing.T) {
	rec := testRecord()
	rec.Winner = ""
	rec.AssassinPhase = nil

	var buf bytes.Buffer
	p := NewPrinter(&buf)
	if err := p.PrintRecord(rec); err != nil {
		t.Fatalf("PrintRecord failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "???") {
		t.Error("unfinished game shows no hidden role markers")
	}
	if strings.Contains(out, "梅林") {
		t.Error("unfinished game leaks a role name")
	}
	if !strings.Contains(out, "roles dealt, knowledge hidden") {
		t.Error("night step leaks knowledge without god mode")
	}
}

func TestPrinter_GodModeRevealsSecrets(t *testing.T) {
	rec := testRecord()
	rec.Winner = ""

	var buf bytes.Buffer
	p := NewPrinter(&buf, WithGodMode(true))
	if err := p.PrintRecord(rec); err != nil {
		t.Fatalf("PrintRecord failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "sees evil") {
		t.Error("god mode hides merlin's night knowledge")
	}
	if !strings.Contains(out, "梅林") {
		t.Error("god mode hides roles")
	}
	// Individual ballots appear under the tally, name plus mark.
	if !strings.Contains(out, "甲✓") {
		t.Error("god mode hides individual ballots")
	}
}

func TestPrinter_MorganaAdviceGodOnly(t *testing.T) {
	var plain, god bytes.Buffer
	if err := NewPrinter(&plain).PrintRecord(testRecord()); err != nil {
		t.Fatalf("PrintRecord failed: %v", err)
	}
	if err := NewPrinter(&god, WithGodMode(true)).PrintRecord(testRecord()); err != nil {
		t.Fatalf("PrintRecord failed: %v", err)
	}

	if strings.Contains(plain.String(), "莫甘娜: 杀乙") {
		t.Error("morgana's advice printed without god mode")
	}
	if !strings.Contains(god.String(), "莫甘娜: 杀乙") {
		t.Error("morgana's advice missing in god mode")
	}
}

func TestPrinter_WithoutSpeeches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, WithSpeeches(false))
	if err := p.PrintRecord(testRecord()); err != nil {
		t.Fatalf("PrintRecord failed: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "SPEECH") {
		t.Error("speech rows printed with speeches disabled")
	}
	if strings.Contains(out, "首轮信息少") {
		t.Error("speech text printed with speeches disabled")
	}
	if !strings.Contains(out, "PROPOSAL") {
		t.Error("proposal rows missing")
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	if err := p.PrintJSON(testRecord()); err != nil {
		t.Fatalf("PrintJSON failed: %v", err)
	}

	var steps []Step
	if err := json.Unmarshal(buf.Bytes(), &steps); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(steps) != len(Generate(testRecord())) {
		t.Errorf("JSON has %d steps, timeline has %d", len(steps), len(Generate(testRecord())))
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("这是一段没有空格的中文长发言需要硬换行才能排版", 10)
	if len(lines) < 2 {
		t.Errorf("CJK text not wrapped, got %d lines", len(lines))
	}
	for _, line := range lines {
		if len([]rune(line)) > 10 {
			t.Errorf("line exceeds wrap width: %q", line)
		}
	}

	if got := wrapText("short", 0); len(got) != 1 || got[0] != "short" {
		t.Errorf("zero width mangled the text: %v", got)
	}
}
