package ui

import (
	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/record"
	"github.com/avalonarena/spectate/internal/replay"
)

// InstallRecord seats the replay roster ahead of step application. Roles
// stay hidden until the timeline reaches the end of a finished game.
func (v *GameView) InstallRecord(rec *record.GameRecord) {
	v.Reset()
	v.Started = true
	v.setRoster(rec.Players)
	if len(rec.GameConfig.MissionTeamSizes) > 0 {
		v.MissionResults = make([]*bool, len(rec.GameConfig.MissionTeamSizes))
	}
}

// ApplyStep rebuilds the view from one timeline step. A step carries its
// whole renderable state, so applying any step in any order, or the same
// step twice, lands on the same picture.
func (v *GameView) ApplyStep(step *replay.Step) {
	if step == nil {
		return
	}
	if len(v.players) == 0 && len(step.Players) > 0 {
		v.setRoster(step.Players)
	}

	v.bubbles = map[int]SpeechBubble{}
	v.clearTransient(true, true, true)
	v.LastVote = nil
	v.LastMission = nil
	v.AssassinID = -1
	v.TargetID = -1
	v.MerlinKilled = nil
	v.MorganaAdvice = ""
	v.Ended = false
	v.Winner = ""
	v.EndReason = ""
	for i := range v.players {
		v.players[i].Revealed = false
	}

	v.Phase = step.Phase
	v.Round = step.Round
	v.VoteTrack = step.VoteTrack
	v.GoodScore = step.GoodScore
	v.EvilScore = step.EvilScore
	if step.Track != nil {
		v.MissionResults = append([]*bool(nil), step.Track...)
	}
	v.setLeader(step.LeaderID)
	v.setTeam(step.Team)
	v.TeamSize = len(step.Team)

	switch step.Phase {
	case game.PhaseSpeech:
		v.bubbles[step.SpeakerID] = SpeechBubble{
			PlayerID: step.SpeakerID,
			Name:     step.SpeakerName,
			Text:     step.Text,
			Round:    step.Round,
		}

	case game.PhaseTeamVote:
		for _, pv := range step.Votes {
			if c := v.Player(pv.PlayerID); c != nil {
				approved := pv.Approved
				c.Vote = &approved
			}
		}
		v.LastVote = &VoteOutcome{
			Round:        step.Round,
			Attempt:      step.Attempt,
			Approved:     step.Approved,
			ApproveCount: step.ApproveCount,
			RejectCount:  step.RejectCount,
		}

	case game.PhaseMission:
		for _, pv := range step.MissionVotes {
			if c := v.Player(pv.PlayerID); c != nil {
				success := pv.Approved
				c.MissionCard = &success
			}
		}
		v.LastMission = &MissionOutcome{
			Round:        step.Round,
			Success:      step.Success,
			SuccessCount: step.SuccessCount,
			FailCount:    step.FailCount,
		}

	case game.PhaseAssassin:
		v.applyAssassin(step.Assassin)

	case game.PhaseGameEnd:
		v.applyAssassin(step.Assassin)
		v.Ended = true
		v.Winner = step.Winner
		v.EndReason = step.EndReason
		if len(step.MissionResults) > 0 {
			v.MissionResults = make([]*bool, len(step.MissionResults))
			for i := range step.MissionResults {
				r := step.MissionResults[i]
				v.MissionResults[i] = &r
			}
		}
		for i := range v.players {
			v.players[i].Revealed = true
		}
	}
}

func (v *GameView) applyAssassin(a *record.AssassinPhase) {
	if a == nil {
		return
	}
	v.AssassinID = a.AssassinID
	v.TargetID = a.TargetID
	killed := a.MerlinKilled
	v.MerlinKilled = &killed
	if a.MorganaAdvice != nil {
		v.MorganaAdvice = *a.MorganaAdvice
	}
}
