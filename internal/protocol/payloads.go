package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/avalonarena/spectate/internal/game"
)

// PlayerInfo is the roster entry carried by game_started and game_ended.
// Role fields are present from the start; whether they are shown is the
// renderer's visibility decision, not the transport's.
type PlayerInfo struct {
	PlayerID   int       `json:"player_id"`
	PlayerName string    `json:"player_name"`
	RoleID     string    `json:"role_id"`
	RoleNameCN string    `json:"role_name_cn"`
	Team       game.Team `json:"team"`
}

// GameStartedPayload carries the roster and the opening leader.
type GameStartedPayload struct {
	Players   []PlayerInfo `json:"players"`
	LeaderIdx int          `json:"leader_idx"`
}

// GameEndedPayload carries the outcome and the revealed roster.
type GameEndedPayload struct {
	Winner  game.Team    `json:"winner"`
	Reason  string       `json:"reason"`
	Players []PlayerInfo `json:"players"`
}

// GameStoppedPayload reports a user-initiated stop.
type GameStoppedPayload struct {
	Reason string `json:"reason"`
}

// CommunityGameStartPayload announces game N of a multi-game session.
// Total is nil in continuous mode.
type CommunityGameStartPayload struct {
	GameNum int  `json:"game_num"`
	Total   *int `json:"total"`
}

// PhaseStartedPayload marks a server-side phase transition. Phase is the
// server's lowercase name (night, team_proposal, discussion, vote, mission,
// assassin, reflection, private_chat), not a timeline phase.
type PhaseStartedPayload struct {
	Phase    string `json:"phase"`
	Round    int    `json:"round,omitempty"`
	LeaderID *int   `json:"leader_id,omitempty"`
}

// PhaseCompletedPayload closes a server-side phase.
type PhaseCompletedPayload struct {
	Phase string `json:"phase"`
	Pairs *int   `json:"pairs,omitempty"` // private_chat completion count
}

// RoundStartedPayload opens a mission round. Round is 1-based.
type RoundStartedPayload struct {
	Round    int `json:"round"`
	TeamSize int `json:"team_size"`
	LeaderID int `json:"leader_id"`
}

// LeaderChangedPayload reports leadership rotation after a rejected team.
type LeaderChangedPayload struct {
	NewLeaderID int `json:"new_leader_id"`
}

// AgentThinkingPayload marks an agent deliberating. Action is the server's
// verb (proposing_team, speaking, voting, mission_vote, reflecting).
type AgentThinkingPayload struct {
	PlayerID int    `json:"player_id"`
	Action   string `json:"action"`
}

// AgentThinkingEndPayload clears a thinking marker.
type AgentThinkingEndPayload struct {
	PlayerID int `json:"player_id"`
}

// AgentSpeechPayload carries one table-talk utterance.
type AgentSpeechPayload struct {
	PlayerID   int    `json:"player_id"`
	PlayerName string `json:"player_name"`
	Text       string `json:"text"`
	Round      int    `json:"round"`
}

// AgentVotePayload is one player's public team vote.
type AgentVotePayload struct {
	PlayerID   int    `json:"player_id"`
	PlayerName string `json:"player_name"`
	Approved   bool   `json:"approved"`
}

// AgentMissionVotePayload is an evil player's mission card. The server only
// emits these for evil players; good players always play success.
type AgentMissionVotePayload struct {
	PlayerID int  `json:"player_id"`
	Success  bool `json:"success"`
}

// TeamProposedPayload carries a leader's proposed team.
type TeamProposedPayload struct {
	LeaderID int   `json:"leader_id"`
	Team     []int `json:"team"`
	Round    int   `json:"round"`
}

// VoteResultPayload aggregates a team vote. Votes keys are stringified
// player ids.
type VoteResultPayload struct {
	Approved     bool            `json:"approved"`
	ApproveCount int             `json:"approve_count"`
	RejectCount  int             `json:"reject_count"`
	Votes        map[string]bool `json:"votes"`
	Round        int             `json:"round"`
}

// MissionResultPayload aggregates a mission outcome.
type MissionResultPayload struct {
	Success      bool `json:"success"`
	SuccessCount int  `json:"success_count"`
	FailCount    int  `json:"fail_count"`
	Round        int  `json:"round"`
}

// ScoreUpdatePayload carries the running mission score.
type ScoreUpdatePayload struct {
	GoodWins int `json:"good_wins"`
	EvilWins int `json:"evil_wins"`
}

// AssassinResultPayload reports the assassination attempt.
type AssassinResultPayload struct {
	MerlinKilled bool `json:"merlin_killed"`
	AssassinID   int  `json:"assassin_id"`
	TargetID     int  `json:"target_id"`
}

// AgentReflectionPayload carries a post-game lesson.
type AgentReflectionPayload struct {
	PlayerID       int    `json:"player_id"`
	PlayerName     string `json:"player_name"`
	Lesson         string `json:"lesson"`
	StrategyUpdate string `json:"strategy_update"`
}

// PrivateChatStartPayload opens a post-game private conversation.
type PrivateChatStartPayload struct {
	FromID   int    `json:"from_id"`
	FromName string `json:"from_name"`
	ToID     int    `json:"to_id"`
	ToName   string `json:"to_name"`
	Message  string `json:"message"`
}

// PrivateChatMessagePayload is one private chat line.
type PrivateChatMessagePayload struct {
	FromID   int    `json:"from_id"`
	FromName string `json:"from_name"`
	ToID     int    `json:"to_id"`
	ToName   string `json:"to_name"`
	Message  string `json:"message"`
}

// PrivateChatEndPayload closes a private conversation.
type PrivateChatEndPayload struct {
	PlayerAID   int    `json:"player_a_id"`
	PlayerBID   int    `json:"player_b_id"`
	PlayerAName string `json:"player_a_name"`
	PlayerBName string `json:"player_b_name"`
	Summary     string `json:"summary"`
}

// SocialRelation is one edge in an agent's social graph.
type SocialRelation struct {
	Name         string  `json:"name"`
	PlayerID     int     `json:"player_id"`
	Trust        float64 `json:"trust"`
	Friendliness float64 `json:"friendliness"`
}

// AgentProfilePayload is the long-lived profile card for one agent.
type AgentProfilePayload struct {
	PlayerID        int              `json:"player_id"`
	PlayerName      string           `json:"player_name"`
	RoleID          string           `json:"role_id"`
	RoleNameCN      string           `json:"role_name_cn"`
	Team            game.Team        `json:"team"`
	Stats           map[string]any   `json:"stats"`
	Strategy        string           `json:"strategy"`
	SocialRelations []SocialRelation `json:"social_relations"`
	Lessons         []string         `json:"lessons"`
}

// AllAgentsPayload carries every agent's profile at once.
type AllAgentsPayload struct {
	Agents []AgentProfilePayload `json:"agents"`
}

// StatsUpdatePayload is the community statistics report. Its shape varies
// with the server version, so it stays a map.
type StatsUpdatePayload map[string]any

// StateChangedPayload reports a runner state transition.
type StateChangedPayload struct {
	State SessionState `json:"state"`
}

// RunnerPausedPayload reports why the runner is holding at a checkpoint.
type RunnerPausedPayload struct {
	Reason string `json:"reason"`
}

// SessionEndedPayload closes a multi-game session.
type SessionEndedPayload struct {
	GamesCompleted int            `json:"games_completed"`
	Stats          map[string]any `json:"stats"`
}

// SessionStoppedPayload reports a user-initiated session stop.
type SessionStoppedPayload struct {
	GamesCompleted int `json:"games_completed"`
}

// ResponsePayload acknowledges an outbound command. Cmd echoes the command
// name from the envelope; RawData keeps the untyped body for fields a given
// command returns beyond the common ones.
type ResponsePayload struct {
	Cmd     string         `json:"-"`
	OK      bool           `json:"ok"`
	Error   string         `json:"error,omitempty"`
	State   SessionState   `json:"state,omitempty"`
	Mode    string         `json:"mode,omitempty"`
	RawData map[string]any `json:"-"`
}

// ErrorPayload carries a server-side error.
type ErrorPayload struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Text returns whichever error field the server populated.
func (p *ErrorPayload) Text() string {
	if p.Error != "" {
		return p.Error
	}
	return p.Message
}

// GenericPayload holds the data of an event type outside the catalogue.
type GenericPayload map[string]any

// Decode turns an envelope's raw data into the typed payload for its event.
// Catalogue events with malformed data return an error; types outside the
// catalogue decode into GenericPayload and never fail, keeping dispatch
// forward compatible.
func Decode(env *Envelope) (any, error) {
	unmarshal := func(v any) (any, error) {
		if len(env.Data) == 0 {
			return v, nil
		}
		if err := json.Unmarshal(env.Data, v); err != nil {
			return nil, fmt.Errorf("%s: bad payload: %w", env.Type, err)
		}
		return v, nil
	}

	switch env.Type {
	case EventGameStarted:
		return unmarshal(&GameStartedPayload{})
	case EventGameEnded:
		return unmarshal(&GameEndedPayload{})
	case EventGameStopped:
		return unmarshal(&GameStoppedPayload{})
	case EventCommunityGameStart:
		return unmarshal(&CommunityGameStartPayload{})
	case EventPhaseStarted:
		return unmarshal(&PhaseStartedPayload{})
	case EventPhaseCompleted:
		return unmarshal(&PhaseCompletedPayload{})
	case EventRoundStarted:
		return unmarshal(&RoundStartedPayload{})
	case EventLeaderChanged:
		return unmarshal(&LeaderChangedPayload{})
	case EventAgentThinking:
		return unmarshal(&AgentThinkingPayload{})
	case EventAgentThinkingEnd:
		return unmarshal(&AgentThinkingEndPayload{})
	case EventAgentSpeech:
		return unmarshal(&AgentSpeechPayload{})
	case EventAgentVote:
		return unmarshal(&AgentVotePayload{})
	case EventAgentMissionVote:
		return unmarshal(&AgentMissionVotePayload{})
	case EventTeamProposed:
		return unmarshal(&TeamProposedPayload{})
	case EventVoteResult:
		return unmarshal(&VoteResultPayload{})
	case EventMissionResult:
		return unmarshal(&MissionResultPayload{})
	case EventScoreUpdate:
		return unmarshal(&ScoreUpdatePayload{})
	case EventAssassinResult:
		return unmarshal(&AssassinResultPayload{})
	case EventAgentReflection:
		return unmarshal(&AgentReflectionPayload{})
	case EventPrivateChatStart:
		return unmarshal(&PrivateChatStartPayload{})
	case EventPrivateChatMessage:
		return unmarshal(&PrivateChatMessagePayload{})
	case EventPrivateChatEnd:
		return unmarshal(&PrivateChatEndPayload{})
	case EventAgentProfile:
		return unmarshal(&AgentProfilePayload{})
	case EventAllAgents:
		return unmarshal(&AllAgentsPayload{})
	case EventStatsUpdate:
		p := StatsUpdatePayload{}
		return unmarshal(&p)
	case EventStateChanged:
		return unmarshal(&StateChangedPayload{})
	case EventRunnerPaused:
		return unmarshal(&RunnerPausedPayload{})
	case EventSessionEnded:
		return unmarshal(&SessionEndedPayload{})
	case EventSessionStopped:
		return unmarshal(&SessionStoppedPayload{})
	case EventResponse:
		return decodeResponse(env)
	case EventError:
		return unmarshal(&ErrorPayload{})
	default:
		p := GenericPayload{}
		if len(env.Data) > 0 {
			// Best effort; undecodable generic data stays empty.
			_ = json.Unmarshal(env.Data, &p)
		}
		return p, nil
	}
}

// decodeResponse handles the response frame, whose cmd echo sits on the
// envelope itself.
func decodeResponse(env *Envelope) (any, error) {
	p := ResponsePayload{Cmd: env.Cmd}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("%s: bad payload: %w", env.Type, err)
		}
		extra := map[string]any{}
		if json.Unmarshal(env.Data, &extra) == nil {
			p.RawData = extra
		}
	}
	return &p, nil
}
