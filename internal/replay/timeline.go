package replay

import (
	"errors"

	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/record"
)

// ErrNoSteps marks a record that expands to an empty timeline.
var ErrNoSteps = errors.New("timeline has no steps")

// Timeline is a cursor over a fixed step sequence. It has no clocks and no
// goroutines; playback pacing lives with the caller.
type Timeline struct {
	steps []Step
	pos   int
}

// NewTimeline wraps a step sequence, positioned at the first step.
func NewTimeline(steps []Step) (*Timeline, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	return &Timeline{steps: steps}, nil
}

// FromRecord expands a record and wraps it.
func FromRecord(rec *record.GameRecord) (*Timeline, error) {
	return NewTimeline(Generate(rec))
}

// Len returns the step count.
func (t *Timeline) Len() int { return len(t.steps) }

// Pos returns the current index.
func (t *Timeline) Pos() int { return t.pos }

// AtEnd reports whether the cursor sits on the last step.
func (t *Timeline) AtEnd() bool { return t.pos == len(t.steps)-1 }

// Current returns the step under the cursor.
func (t *Timeline) Current() *Step { return &t.steps[t.pos] }

// Step returns the step at index i, or nil when out of range.
func (t *Timeline) Step(i int) *Step {
	if i < 0 || i >= len(t.steps) {
		return nil
	}
	return &t.steps[i]
}

// Next advances one step. At the end it stays put and reports false.
func (t *Timeline) Next() (*Step, bool) {
	if t.AtEnd() {
		return t.Current(), false
	}
	t.pos++
	return t.Current(), true
}

// Prev retreats one step. At the start it stays put and reports false.
func (t *Timeline) Prev() (*Step, bool) {
	if t.pos == 0 {
		return t.Current(), false
	}
	t.pos--
	return t.Current(), true
}

// First rewinds to the opening step.
func (t *Timeline) First() *Step {
	t.pos = 0
	return t.Current()
}

// Last jumps to the final step.
func (t *Timeline) Last() *Step {
	t.pos = len(t.steps) - 1
	return t.Current()
}

// Seek moves to index i, clamped to the valid range.
func (t *Timeline) Seek(i int) *Step {
	if i < 0 {
		i = 0
	}
	if i >= len(t.steps) {
		i = len(t.steps) - 1
	}
	t.pos = i
	return t.Current()
}

// JumpToRound moves to the first proposal of the given round. The cursor
// does not move when the round never happened.
func (t *Timeline) JumpToRound(round int) (*Step, bool) {
	for i := range t.steps {
		if t.steps[i].Phase == game.PhaseTeamProposal && t.steps[i].Round == round {
			t.pos = i
			return t.Current(), true
		}
	}
	return t.Current(), false
}

// JumpToPhase moves to the next step of the given phase after the cursor,
// wrapping around once. The cursor does not move when the phase is absent.
func (t *Timeline) JumpToPhase(phase game.Phase) (*Step, bool) {
	n := len(t.steps)
	for off := 1; off <= n; off++ {
		i := (t.pos + off) % n
		if t.steps[i].Phase == phase {
			t.pos = i
			return t.Current(), true
		}
	}
	return t.Current(), false
}
