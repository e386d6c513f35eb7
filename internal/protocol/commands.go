package protocol

import "encoding/json"

// Command names accepted by the game server.
const (
	CmdStartGame       = "start_game"
	CmdPause           = "pause"
	CmdResume          = "resume"
	CmdStep            = "step"
	CmdStop            = "stop"
	CmdGetAgentProfile = "get_agent_profile"
	CmdGetAllAgents    = "get_all_agents"
	CmdGetStats        = "get_stats"
	CmdSetConfig       = "set_config"
)

// Game modes for start_game.
const (
	ModeSingle    = "single"
	ModeCommunity = "community"
)

// Command is one outbound control frame.
type Command struct {
	Cmd    string         `json:"cmd"`
	Params map[string]any `json:"params,omitempty"`
}

// Encode renders the command as a wire frame.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// StartGame builds a start_game command. numGames <= 0 means continuous
// community play with no fixed game count.
func StartGame(numGames int, mode string, stepMode bool) Command {
	params := map[string]any{
		"mode":      mode,
		"step_mode": stepMode,
	}
	if numGames > 0 {
		params["num_games"] = numGames
	} else {
		params["continuous"] = true
	}
	return Command{Cmd: CmdStartGame, Params: params}
}

// Pause asks the runner to hold at the next checkpoint.
func Pause() Command { return Command{Cmd: CmdPause} }

// Resume releases a paused runner.
func Resume() Command { return Command{Cmd: CmdResume} }

// Step advances a paused runner by one checkpoint.
func Step() Command { return Command{Cmd: CmdStep} }

// Stop ends the current game or session.
func Stop() Command { return Command{Cmd: CmdStop} }

// GetAgentProfile requests one agent's profile card.
func GetAgentProfile(agentID int) Command {
	return Command{Cmd: CmdGetAgentProfile, Params: map[string]any{"agent_id": agentID}}
}

// GetAllAgents requests every agent's profile.
func GetAllAgents() Command { return Command{Cmd: CmdGetAllAgents} }

// GetStats requests the community statistics report.
func GetStats() Command { return Command{Cmd: CmdGetStats} }

// SetConfig pushes runner configuration overrides.
func SetConfig(settings map[string]any) Command {
	return Command{Cmd: CmdSetConfig, Params: settings}
}
