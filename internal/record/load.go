package record

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/avalonarena/spectate/internal/game"
)

// ValidationError reports a structurally broken record, naming the field so
// the message points at the right spot in the file.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s: %s", e.Field, e.Reason)
}

// Load reads and validates a replay file.
func Load(path string) (*GameRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	rec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Parse decodes and validates a replay document.
func Parse(data []byte) (*GameRecord, error) {
	var rec GameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Validate checks the invariants the rest of the viewer relies on. It stays
// tolerant of optional fields (assassin_phase, mission_votes, team_approved)
// because older engine versions omit them.
func (r *GameRecord) Validate() error {
	if len(r.Players) == 0 {
		return &ValidationError{Field: "players", Reason: "empty roster"}
	}

	seen := make(map[int]bool, len(r.Players))
	for i, p := range r.Players {
		field := fmt.Sprintf("players[%d]", i)
		if seen[p.PlayerID] {
			return &ValidationError{Field: field + ".player_id", Reason: fmt.Sprintf("duplicate id %d", p.PlayerID)}
		}
		seen[p.PlayerID] = true
		if p.RoleID == "" {
			return &ValidationError{Field: field + ".role_id", Reason: "missing"}
		}
		if !p.Team.Valid() {
			return &ValidationError{Field: field + ".team", Reason: fmt.Sprintf("unknown team %q", p.Team)}
		}
	}

	if r.GameConfig.PlayerCount == 0 {
		return &ValidationError{Field: "game_config.player_count", Reason: "missing"}
	}
	if r.GameConfig.PlayerCount != len(r.Players) {
		return &ValidationError{
			Field:  "game_config.player_count",
			Reason: fmt.Sprintf("declares %d players, roster has %d", r.GameConfig.PlayerCount, len(r.Players)),
		}
	}

	for i, m := range r.MissionRecords {
		field := fmt.Sprintf("mission_records[%d]", i)
		if m.RoundNum < 1 {
			return &ValidationError{Field: field + ".round_num", Reason: fmt.Sprintf("must be >= 1, got %d", m.RoundNum)}
		}
		for _, member := range m.TeamMembers {
			if !seen[member] {
				return &ValidationError{Field: field + ".team_members", Reason: fmt.Sprintf("unknown player %d", member)}
			}
		}
	}

	if r.Winner != "" && !r.Winner.Valid() {
		return &ValidationError{Field: "winner", Reason: fmt.Sprintf("unknown team %q", r.Winner)}
	}

	return nil
}

// IsFinished reports whether the record captures a completed game.
func (r *GameRecord) IsFinished() bool {
	return r.Winner == game.TeamGood || r.Winner == game.TeamEvil
}
