package game

// Phase tags what kind of game activity a step or event represents.
type Phase string

const (
	PhaseNight        Phase = "NIGHT"
	PhaseTeamProposal Phase = "TEAM_PROPOSAL"
	PhaseSpeech       Phase = "SPEECH"
	PhaseTeamVote     Phase = "TEAM_VOTE"
	PhaseMission      Phase = "MISSION"
	PhaseAssassin     Phase = "ASSASSIN"
	PhaseGameEnd      Phase = "GAME_END"
)

// Label returns the display name for a phase.
func (p Phase) Label() string {
	switch p {
	case PhaseNight:
		return "夜晚"
	case PhaseTeamProposal:
		return "组队"
	case PhaseSpeech:
		return "发言"
	case PhaseTeamVote:
		return "投票"
	case PhaseMission:
		return "任务"
	case PhaseAssassin:
		return "刺杀"
	case PhaseGameEnd:
		return "终局"
	default:
		return string(p)
	}
}

// Badge is a transient tag pinned on a player card.
type Badge string

const (
	BadgeLeader   Badge = "leader"   // current team leader
	BadgeTeam     Badge = "team"     // on the proposed/acting mission team
	BadgeApprove  Badge = "approve"  // voted to approve the team
	BadgeReject   Badge = "reject"   // voted to reject the team
	BadgeSuccess  Badge = "success"  // played a success card on the mission
	BadgeFail     Badge = "fail"     // played a fail card on the mission
	BadgeSpeaking Badge = "speaking" // has an active speech bubble
	BadgeThinking Badge = "thinking" // agent is deliberating
	BadgeTarget   Badge = "target"   // assassination target
	BadgeAssassin Badge = "assassin" // revealed as the assassin
)

// Glyph returns the one-cell marker rendered next to a card.
func (b Badge) Glyph() string {
	switch b {
	case BadgeLeader:
		return "👑"
	case BadgeTeam:
		return "⚔"
	case BadgeApprove:
		return "✓"
	case BadgeReject:
		return "✗"
	case BadgeSuccess:
		return "●"
	case BadgeFail:
		return "○"
	case BadgeSpeaking:
		return "💬"
	case BadgeThinking:
		return "…"
	case BadgeTarget:
		return "🎯"
	case BadgeAssassin:
		return "🗡"
	default:
		return "?"
	}
}
