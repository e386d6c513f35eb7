package ui

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/protocol"
)

// phaseFromServer maps the server's lowercase phase names onto timeline
// phases. Post-game phases collapse onto GAME_END; the raw name is kept on
// the view for the header.
func phaseFromServer(name string) game.Phase {
	switch name {
	case "night":
		return game.PhaseNight
	case "team_proposal":
		return game.PhaseTeamProposal
	case "discussion":
		return game.PhaseSpeech
	case "vote":
		return game.PhaseTeamVote
	case "mission":
		return game.PhaseMission
	case "assassin":
		return game.PhaseAssassin
	case "reflection", "private_chat":
		return game.PhaseGameEnd
	default:
		return ""
	}
}

// ApplyEvent folds one live event into the view. The returned snapshot is
// non-nil when a game just closed and belongs in the history; exactly one
// snapshot comes back per game no matter how its end was observed.
// Applying the same event twice leaves the same visible state behind.
func (v *GameView) ApplyEvent(env *protocol.Envelope, payload any, now time.Time) *GameSnapshot {
	var archived *GameSnapshot

	switch p := payload.(type) {
	case *protocol.GameStartedPayload:
		if v.Started && !v.archived {
			snap := v.Snapshot(now)
			archived = &snap
		}
		prev := v.GameNumber
		v.Reset()
		v.Started = true
		v.StartedAt = now
		v.Phase = game.PhaseNight
		v.ServerPhase = "night"
		v.setRosterInfo(p.Players)
		if v.nextGameNumber > 0 {
			v.GameNumber = v.nextGameNumber
			v.nextGameNumber = 0
		} else {
			v.GameNumber = prev + 1
		}
		if p.LeaderIdx >= 0 && p.LeaderIdx < len(v.players) {
			v.setLeader(v.players[p.LeaderIdx].ID)
		}
		v.pushFeed(now, fmt.Sprintf("── 第 %d 局开始，%d 名玩家入座 ──", v.GameNumber, len(p.Players)), false)

	case *protocol.GameEndedPayload:
		v.Ended = true
		v.EndedAt = now
		v.Winner = p.Winner
		v.EndReason = p.Reason
		v.Phase = game.PhaseGameEnd
		v.revealRoster(p.Players)
		v.clearTransient(false, false, true)
		v.pushFeed(now, fmt.Sprintf("游戏结束：%s阵营获胜（%s）", p.Winner.Label(), p.Reason), false)
		if !v.archived {
			snap := v.Snapshot(now)
			archived = &snap
			v.archived = true
		}

	case *protocol.GameStoppedPayload:
		if v.Started && !v.Ended {
			v.Ended = true
			v.EndedAt = now
			v.EndReason = p.Reason
			v.Phase = game.PhaseGameEnd
		}
		v.pushFeed(now, fmt.Sprintf("游戏已停止：%s", p.Reason), false)
		if v.Started && !v.archived {
			snap := v.Snapshot(now)
			archived = &snap
			v.archived = true
		}

	case *protocol.CommunityGameStartPayload:
		v.nextGameNumber = p.GameNum
		v.TotalGames = p.Total
		if p.Total != nil {
			v.pushFeed(now, fmt.Sprintf("社区赛：第 %d / %d 局即将开始", p.GameNum, *p.Total), false)
		} else {
			v.pushFeed(now, fmt.Sprintf("社区赛：第 %d 局即将开始", p.GameNum), false)
		}

	case *protocol.PhaseStartedPayload:
		v.ServerPhase = p.Phase
		if ph := phaseFromServer(p.Phase); ph != "" {
			v.Phase = ph
		}
		if p.Round > 0 {
			v.Round = p.Round
		}
		if p.LeaderID != nil {
			v.setLeader(*p.LeaderID)
		}

	case *protocol.PhaseCompletedPayload:
		// The next phase_started carries the interesting state.

	case *protocol.RoundStartedPayload:
		v.Round = p.Round
		v.TeamSize = p.TeamSize
		v.Phase = game.PhaseTeamProposal
		v.VoteTrack = 0
		v.pendingVote = false
		v.ProposedTeam = nil
		v.LastVote = nil
		v.setLeader(p.LeaderID)
		v.setTeam(nil)
		v.clearTransient(true, true, false)
		v.ensureTrack(p.Round)
		v.pushFeed(now, fmt.Sprintf("第 %d 轮任务开始，需要 %d 人出征，队长 %s", p.Round, p.TeamSize, v.PlayerName(p.LeaderID)), false)

	case *protocol.LeaderChangedPayload:
		v.setLeader(p.NewLeaderID)
		v.pushFeed(now, fmt.Sprintf("队长移交给 %s", v.PlayerName(p.NewLeaderID)), false)

	case *protocol.AgentThinkingPayload:
		if c := v.Player(p.PlayerID); c != nil {
			c.Thinking = p.Action
		}

	case *protocol.AgentThinkingEndPayload:
		if c := v.Player(p.PlayerID); c != nil {
			c.Thinking = ""
		}

	case *protocol.AgentSpeechPayload:
		name := p.PlayerName
		if name == "" {
			name = v.PlayerName(p.PlayerID)
		}
		v.bubbles[p.PlayerID] = SpeechBubble{
			PlayerID: p.PlayerID,
			Name:     name,
			Text:     p.Text,
			Round:    p.Round,
			Expires:  now.Add(v.speechTTL),
		}
		if c := v.Player(p.PlayerID); c != nil {
			c.Thinking = ""
		}
		v.pushFeed(now, fmt.Sprintf("%s：%s", name, p.Text), false)

	case *protocol.AgentVotePayload:
		approved := p.Approved
		if c := v.Player(p.PlayerID); c != nil {
			c.Vote = &approved
			c.Thinking = ""
		}

	case *protocol.AgentMissionVotePayload:
		success := p.Success
		if c := v.Player(p.PlayerID); c != nil {
			c.MissionCard = &success
			c.Thinking = ""
		}
		card := "成功"
		if !success {
			card = "破坏"
		}
		v.pushFeed(now, fmt.Sprintf("%s 打出了%s牌", v.PlayerName(p.PlayerID), card), true)

	case *protocol.TeamProposedPayload:
		if p.Round > 0 {
			v.Round = p.Round
		}
		v.Phase = game.PhaseTeamProposal
		v.setLeader(p.LeaderID)
		v.setTeam(p.Team)
		v.clearTransient(true, true, false)
		v.pendingVote = true
		v.pushFeed(now, fmt.Sprintf("%s 提议队伍：%s", v.PlayerName(p.LeaderID), v.nameList(p.Team)), false)

	case *protocol.VoteResultPayload:
		round := p.Round
		if round == 0 {
			round = v.Round
		}
		v.LastVote = &VoteOutcome{
			Round:        round,
			Attempt:      v.VoteTrack + 1,
			Approved:     p.Approved,
			ApproveCount: p.ApproveCount,
			RejectCount:  p.RejectCount,
		}
		for key, approved := range p.Votes {
			id, err := strconv.Atoi(key)
			if err != nil {
				continue
			}
			if c := v.Player(id); c != nil {
				vote := approved
				c.Vote = &vote
			}
		}
		// pendingVote gates the track so a replayed result frame cannot
		// advance it twice.
		if !p.Approved && v.pendingVote {
			v.VoteTrack++
		}
		v.pendingVote = false
		verdict := "通过"
		if !p.Approved {
			verdict = "被否决"
		}
		v.pushFeed(now, fmt.Sprintf("队伍%s（%d 赞成 / %d 反对）", verdict, p.ApproveCount, p.RejectCount), false)

	case *protocol.MissionResultPayload:
		round := p.Round
		if round == 0 {
			round = v.Round
		}
		success := p.Success
		v.ensureTrack(round)
		if round >= 1 {
			v.MissionResults[round-1] = &success
		}
		v.recountScores()
		v.LastMission = &MissionOutcome{
			Round:        round,
			Success:      &success,
			SuccessCount: p.SuccessCount,
			FailCount:    p.FailCount,
		}
		v.Phase = game.PhaseMission
		outcome := "成功"
		if !success {
			outcome = "失败"
		}
		v.pushFeed(now, fmt.Sprintf("第 %d 轮任务%s（%d 成功 / %d 破坏）", round, outcome, p.SuccessCount, p.FailCount), false)

	case *protocol.ScoreUpdatePayload:
		v.GoodScore = p.GoodWins
		v.EvilScore = p.EvilWins

	case *protocol.AssassinResultPayload:
		v.Phase = game.PhaseAssassin
		v.AssassinID = p.AssassinID
		v.TargetID = p.TargetID
		killed := p.MerlinKilled
		v.MerlinKilled = &killed
		verdict := "未能命中梅林"
		if killed {
			verdict = "命中了梅林"
		}
		v.pushFeed(now, fmt.Sprintf("刺客 %s 刺杀 %s，%s", v.PlayerName(p.AssassinID), v.PlayerName(p.TargetID), verdict), false)

	case *protocol.AgentReflectionPayload:
		name := p.PlayerName
		if name == "" {
			name = v.PlayerName(p.PlayerID)
		}
		if p.Lesson != "" {
			v.pushFeed(now, fmt.Sprintf("%s 复盘：%s", name, p.Lesson), false)
		}

	case *protocol.PrivateChatStartPayload:
		v.pushFeed(now, fmt.Sprintf("%s 私聊 %s：%s", p.FromName, p.ToName, p.Message), false)

	case *protocol.PrivateChatMessagePayload:
		v.pushFeed(now, fmt.Sprintf("%s → %s：%s", p.FromName, p.ToName, p.Message), false)

	case *protocol.PrivateChatEndPayload:
		if p.Summary != "" {
			v.pushFeed(now, fmt.Sprintf("%s 与 %s 的私聊结束：%s", p.PlayerAName, p.PlayerBName, p.Summary), false)
		}

	case *protocol.AgentProfilePayload:
		v.Profiles[p.PlayerID] = *p

	case *protocol.AllAgentsPayload:
		for _, a := range p.Agents {
			v.Profiles[a.PlayerID] = a
		}

	case *protocol.StatsUpdatePayload:
		v.Stats = *p

	case *protocol.StateChangedPayload:
		v.SessionState = p.State
		if p.State != protocol.StatePaused {
			v.PauseReason = ""
		}
		v.pushFeed(now, fmt.Sprintf("会话状态：%s", p.State), false)

	case *protocol.RunnerPausedPayload:
		v.SessionState = protocol.StatePaused
		v.PauseReason = p.Reason

	case *protocol.SessionEndedPayload:
		v.SessionState = protocol.StateFinished
		v.pushFeed(now, fmt.Sprintf("会话结束，共完成 %d 局", p.GamesCompleted), false)

	case *protocol.SessionStoppedPayload:
		v.SessionState = protocol.StateIdle
		v.pushFeed(now, fmt.Sprintf("会话已停止，共完成 %d 局", p.GamesCompleted), false)

	case *protocol.ErrorPayload:
		v.pushFeed(now, fmt.Sprintf("服务端错误：%s", p.Text()), false)

	case *protocol.ResponsePayload:
		if p.State != "" {
			v.SessionState = p.State
		}
		if p.OK && p.Cmd == protocol.CmdGetStats {
			if report, ok := p.RawData["stats"].(map[string]any); ok {
				v.Stats = protocol.StatsUpdatePayload(report)
			}
		}
		if p.OK && p.Cmd == protocol.CmdGetAllAgents {
			v.pushAgentRoster(now, p.RawData)
		}
		if !p.OK && p.Error != "" {
			v.pushFeed(now, fmt.Sprintf("指令 %s 失败：%s", p.Cmd, p.Error), false)
		}

	default:
		// Unknown event types keep a trace in the feed so a newer server
		// still shows signs of life.
		if env != nil && env.Type != "" {
			v.pushFeed(now, fmt.Sprintf("事件 %s", env.Type), false)
		}
	}

	return archived
}

// pushAgentRoster writes the get_all_agents summary into the feed. The
// response keys agents by their persistent id ("player_1") and carries
// per-side win counts.
func (v *GameView) pushAgentRoster(now time.Time, data map[string]any) {
	agents, ok := data["agents"].(map[string]any)
	if !ok || len(agents) == 0 {
		return
	}
	ids := make([]string, 0, len(agents))
	for id := range agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a, ok := agents[id].(map[string]any)
		if !ok {
			continue
		}
		name, _ := a["display_name"].(string)
		if name == "" {
			name = id
		}
		games, _ := a["games_played"].(float64)
		goodWins, _ := a["wins_as_good"].(float64)
		evilWins, _ := a["wins_as_evil"].(float64)
		v.pushFeed(now, fmt.Sprintf("档案 %s：%d 局，好人胜 %d，坏人胜 %d",
			name, int(games), int(goodWins), int(evilWins)), false)
	}
}

// revealRoster merges the end-of-game roster and marks every role public.
func (v *GameView) revealRoster(players []protocol.PlayerInfo) {
	if len(v.players) == 0 && len(players) > 0 {
		v.setRosterInfo(players)
	}
	for _, p := range players {
		if c := v.Player(p.PlayerID); c != nil {
			if p.RoleID != "" {
				c.RoleID = p.RoleID
			}
			if p.RoleNameCN != "" {
				c.RoleName = p.RoleNameCN
			} else if c.RoleName == "" && c.RoleID != "" {
				c.RoleName = v.catalog.Lookup(c.RoleID).Name
			}
			if p.Team.Valid() {
				c.Team = p.Team
			}
		}
	}
	for i := range v.players {
		v.players[i].Revealed = true
	}
}

// nameList renders a roster id list as a readable name sequence.
func (v *GameView) nameList(ids []int) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += "、"
		}
		out += v.PlayerName(id)
	}
	return out
}
