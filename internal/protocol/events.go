package protocol

// Event types emitted by the game server. Unknown types still dispatch
// generically; only the ones listed here have a defined rendering.
const (
	// Game lifecycle
	EventGameStarted        = "game_started"
	EventGameEnded          = "game_ended"
	EventGameStopped        = "game_stopped"
	EventCommunityGameStart = "community_game_start"

	// Phase transitions
	EventPhaseStarted   = "phase_started"
	EventPhaseCompleted = "phase_completed"
	EventRoundStarted   = "round_started"
	EventLeaderChanged  = "leader_changed"

	// Per-agent actions
	EventAgentThinking    = "agent_thinking"
	EventAgentThinkingEnd = "agent_thinking_end"
	EventAgentSpeech      = "agent_speech"
	EventAgentVote        = "agent_vote"
	EventAgentMissionVote = "agent_mission_vote"

	// Aggregated results
	EventTeamProposed   = "team_proposed"
	EventVoteResult     = "vote_result"
	EventMissionResult  = "mission_result"
	EventScoreUpdate    = "score_update"
	EventAssassinResult = "assassin_result"

	// Community / learning
	EventAgentReflection    = "agent_reflection"
	EventPrivateChatStart   = "private_chat_start"
	EventPrivateChatMessage = "private_chat_message"
	EventPrivateChatEnd     = "private_chat_end"
	EventAgentProfile       = "agent_profile"
	EventAllAgents          = "all_agents"
	EventStatsUpdate        = "stats_update"

	// Session control
	EventStateChanged   = "state_changed"
	EventRunnerPaused   = "runner_paused"
	EventSessionEnded   = "session_ended"
	EventSessionStopped = "session_stopped"
	EventResponse       = "response"
	EventError          = "error"
)

// Wildcard subscribes a handler to every inbound event.
const Wildcard = "*"
