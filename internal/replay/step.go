// Package replay turns a finished-game record into a canonical step
// timeline. Both the terminal dump and the interactive viewer consume the
// same steps, so a replayed game and a live one walk through identical
// states.
package replay

import (
	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/record"
)

// Step is one timeline position. Fields beyond the common block are
// populated per phase; a step carries everything needed to render it, so
// seeking is a plain index move with no re-derivation.
type Step struct {
	Index    int
	Phase    game.Phase
	Round    int // 1-based mission round, 0 when not round-scoped
	Attempt  int // 1-based proposal attempt within the round, 0 when not round-scoped
	LeaderID int // leader at this step, -1 when unknown

	// NIGHT and GAME_END carry the full roster with night knowledge.
	Players []record.Player

	// TEAM_PROPOSAL
	Team []int

	// SPEECH
	SpeakerID   int
	SpeakerName string
	Text        string

	// TEAM_VOTE
	Votes        []record.PlayerVote
	Approved     bool
	ApproveCount int
	RejectCount  int

	// MISSION. Success is nil when the record never resolved the mission.
	Success      *bool
	SuccessCount int
	FailCount    int
	MissionVotes []record.PlayerVote

	// ASSASSIN
	Assassin *record.AssassinPhase

	// GAME_END
	Winner         game.Team
	EndReason      string
	MissionResults []bool

	// Running totals after this step is applied.
	GoodScore int
	EvilScore int
	VoteTrack int // rejected proposals so far in this round

	// Track holds mission outcomes by round index as of this step, nil
	// entries unresolved. Carried on every step so a seek lands on a fully
	// renderable state.
	Track []*bool
}

// OnTeam reports whether the player sits on this step's proposed team.
func (s *Step) OnTeam(playerID int) bool {
	for _, id := range s.Team {
		if id == playerID {
			return true
		}
	}
	return false
}
