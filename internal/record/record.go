// Package record defines the finished-game replay file format and its
// loader. A record is the engine's own export, so validation is about
// catching truncated or hand-edited files, not re-deriving game rules.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/avalonarena/spectate/internal/game"
)

// Player is one roster entry, including the night-phase knowledge lists the
// engine granted that player.
type Player struct {
	PlayerID             int       `json:"player_id"`
	PlayerName           string    `json:"player_name"`
	RoleID               string    `json:"role_id"`
	RoleNameCN           string    `json:"role_name_cn"`
	Team                 game.Team `json:"team"`
	KnownEvil            []int     `json:"known_evil,omitempty"`
	KnownMerlinOrMorgana []int     `json:"known_merlin_or_morgana,omitempty"`
	KnownAllies          []int     `json:"known_allies,omitempty"`
}

// Speech is one table-talk utterance inside a mission round.
type Speech struct {
	PlayerID int
	Text     string
}

// SpeechList preserves speaking order. The wire form is a JSON object keyed
// by stringified player id; the engine writes keys in speaking order, so the
// decoder must not lose it.
type SpeechList []Speech

// UnmarshalJSON walks the object token by token to keep key order.
func (s *SpeechList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("speeches: expected object, got %v", tok)
	}

	out := SpeechList{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("speeches: non-string key %v", keyTok)
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("speeches: key %q is not a player id", key)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("speeches: player %d: %w", id, err)
		}
		out = append(out, Speech{PlayerID: id, Text: text})
	}
	if _, err := dec.Token(); err != nil { // closing brace
		return err
	}

	*s = out
	return nil
}

// MarshalJSON writes the object back in list order.
func (s SpeechList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sp := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(strconv.Itoa(sp.PlayerID))
		if err != nil {
			return nil, err
		}
		text, err := json.Marshal(sp.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(text)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MissionRecord is one mission round: proposal, discussion, team vote and,
// when the team was approved, the mission itself.
type MissionRecord struct {
	RoundNum     int             `json:"round_num"`
	TeamLeaderID int             `json:"team_leader_id"`
	TeamMembers  []int           `json:"team_members"`
	TeamVotes    map[string]bool `json:"team_votes"`
	TeamApproved *bool           `json:"team_approved,omitempty"`
	MissionVotes map[string]bool `json:"mission_votes,omitempty"`
	Success      *bool           `json:"success"`
	Speeches     SpeechList      `json:"speeches,omitempty"`
}

// Approved reports whether the team vote passed. Older records omit the
// team_approved field; for those the counts decide, with a tie rejecting.
func (m *MissionRecord) Approved() bool {
	if m.TeamApproved != nil {
		return *m.TeamApproved
	}
	approve, reject := m.VoteCounts()
	return approve > reject
}

// VoteCounts tallies the team vote.
func (m *MissionRecord) VoteCounts() (approve, reject int) {
	for _, v := range m.TeamVotes {
		if v {
			approve++
		} else {
			reject++
		}
	}
	return approve, reject
}

// MissionCounts tallies the mission cards.
func (m *MissionRecord) MissionCounts() (success, fail int) {
	for _, v := range m.MissionVotes {
		if v {
			success++
		} else {
			fail++
		}
	}
	return success, fail
}

// VotesByPlayer returns the team vote as sorted (id, approved) pairs, since
// the wire form's map keys carry no order.
func (m *MissionRecord) VotesByPlayer() []PlayerVote {
	return sortVotes(m.TeamVotes)
}

// MissionVotesByPlayer returns the mission cards as sorted pairs.
func (m *MissionRecord) MissionVotesByPlayer() []PlayerVote {
	return sortVotes(m.MissionVotes)
}

// PlayerVote is a single (player, decision) pair.
type PlayerVote struct {
	PlayerID int
	Approved bool
}

func sortVotes(votes map[string]bool) []PlayerVote {
	out := make([]PlayerVote, 0, len(votes))
	for k, v := range votes {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out = append(out, PlayerVote{PlayerID: id, Approved: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// GameConfig is the table setup the game was played with.
type GameConfig struct {
	PlayerCount      int   `json:"player_count"`
	MissionTeamSizes []int `json:"mission_team_sizes"`
}

// AssassinPhase records the endgame assassination attempt. Present only when
// good completed three missions.
type AssassinPhase struct {
	MerlinKilled  bool    `json:"merlin_killed"`
	AssassinID    int     `json:"assassin_id"`
	TargetID      int     `json:"target_id"`
	MorganaAdvice *string `json:"morgana_advice"`
}

// GameRecord is one finished game as exported by the engine.
type GameRecord struct {
	Players        []Player        `json:"players"`
	MissionRecords []MissionRecord `json:"mission_records"`
	MissionResults []bool          `json:"mission_results"`
	GoodWinsCount  int             `json:"good_wins_count"`
	EvilWinsCount  int             `json:"evil_wins_count"`
	Winner         game.Team       `json:"winner"`
	EndReason      string          `json:"end_reason"`
	GameConfig     GameConfig      `json:"game_config"`
	AssassinPhase  *AssassinPhase  `json:"assassin_phase,omitempty"`
}

// PlayerByID returns the roster entry for id, or nil.
func (r *GameRecord) PlayerByID(id int) *Player {
	for i := range r.Players {
		if r.Players[i].PlayerID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// PlayerName returns the display name for id, falling back to the engine's
// seat-number convention for ids outside the roster.
func (r *GameRecord) PlayerName(id int) string {
	if p := r.PlayerByID(id); p != nil && p.PlayerName != "" {
		return p.PlayerName
	}
	return FallbackName(id)
}

// FallbackName is the engine's seat-number naming for unnamed players.
func FallbackName(id int) string {
	return fmt.Sprintf("玩家%d", id+1)
}
