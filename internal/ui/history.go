package ui

import (
	"time"

	"github.com/google/uuid"

	"github.com/avalonarena/spectate/internal/game"
)

// GameSnapshot is one finished or abandoned game, frozen for the history
// screen. Snapshots are never mutated after creation.
type GameSnapshot struct {
	ID             string
	Number         int
	StartedAt      time.Time
	EndedAt        time.Time
	SynthesizedEnd bool // end time invented because the next game started first
	Winner         game.Team
	EndReason      string
	GoodScore      int
	EvilScore      int
	MissionResults []*bool
	Roster         []PlayerCard
	MerlinKilled   *bool
}

// newSnapshotID returns a short unique id for a history entry.
func newSnapshotID() string {
	return uuid.NewString()[:8]
}

// History is the append-only list of games seen this session. The UI only
// ever appends; entries are never reordered or dropped.
type History struct {
	games []GameSnapshot
}

// NewHistory creates an empty History.
func NewHistory() *History {
	return &History{}
}

// Append adds a snapshot.
func (h *History) Append(s GameSnapshot) {
	h.games = append(h.games, s)
}

// Len returns the number of archived games.
func (h *History) Len() int { return len(h.games) }

// Games returns the archived games, oldest first.
func (h *History) Games() []GameSnapshot { return h.games }

// Latest returns the most recent snapshot, or nil.
func (h *History) Latest() *GameSnapshot {
	if len(h.games) == 0 {
		return nil
	}
	return &h.games[len(h.games)-1]
}

// GoodWins counts archived good victories.
func (h *History) GoodWins() int {
	n := 0
	for i := range h.games {
		if h.games[i].Winner == game.TeamGood {
			n++
		}
	}
	return n
}

// EvilWins counts archived evil victories.
func (h *History) EvilWins() int {
	n := 0
	for i := range h.games {
		if h.games[i].Winner == game.TeamEvil {
			n++
		}
	}
	return n
}
