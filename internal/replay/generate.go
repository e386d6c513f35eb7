package replay

import (
	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/record"
)

// Generate expands a record into the canonical step sequence: NIGHT, then
// per proposal TEAM_PROPOSAL, the round's SPEECH steps in speaking order and
// TEAM_VOTE, a MISSION step only when the team was approved, then ASSASSIN
// when the endgame reached it, and GAME_END. Rejected proposals contribute
// no MISSION step. Output depends only on the record, never on wall time.
func Generate(rec *record.GameRecord) []Step {
	var steps []Step

	goodScore, evilScore := 0, 0
	rounds := len(rec.GameConfig.MissionTeamSizes)
	if rounds == 0 {
		rounds = game.MissionWinTarget*2 - 1
	}
	track := make([]*bool, rounds)

	openingLeader := -1
	if len(rec.MissionRecords) > 0 {
		openingLeader = rec.MissionRecords[0].TeamLeaderID
	}

	steps = append(steps, Step{
		Phase:    game.PhaseNight,
		LeaderID: openingLeader,
		Players:  rec.Players,
		Track:    append([]*bool(nil), track...),
	})

	attempts := map[int]int{} // round -> proposals seen
	for i := range rec.MissionRecords {
		m := &rec.MissionRecords[i]
		attempts[m.RoundNum]++
		attempt := attempts[m.RoundNum]
		voteTrack := attempt - 1

		common := Step{
			Round:     m.RoundNum,
			Attempt:   attempt,
			LeaderID:  m.TeamLeaderID,
			GoodScore: goodScore,
			EvilScore: evilScore,
			VoteTrack: voteTrack,
			Track:     append([]*bool(nil), track...),
		}

		proposal := common
		proposal.Phase = game.PhaseTeamProposal
		proposal.Team = m.TeamMembers
		steps = append(steps, proposal)

		for _, sp := range m.Speeches {
			speech := common
			speech.Phase = game.PhaseSpeech
			speech.Team = m.TeamMembers
			speech.SpeakerID = sp.PlayerID
			speech.SpeakerName = rec.PlayerName(sp.PlayerID)
			speech.Text = sp.Text
			steps = append(steps, speech)
		}

		approve, reject := m.VoteCounts()
		vote := common
		vote.Phase = game.PhaseTeamVote
		vote.Team = m.TeamMembers
		vote.Votes = m.VotesByPlayer()
		vote.Approved = m.Approved()
		vote.ApproveCount = approve
		vote.RejectCount = reject
		steps = append(steps, vote)

		if !vote.Approved {
			continue
		}

		if m.Success != nil {
			if *m.Success {
				goodScore++
			} else {
				evilScore++
			}
			if idx := m.RoundNum - 1; idx >= 0 {
				for idx >= len(track) {
					track = append(track, nil)
				}
				track[idx] = m.Success
			}
		}
		succ, fail := m.MissionCounts()
		mission := common
		mission.Phase = game.PhaseMission
		mission.Team = m.TeamMembers
		mission.Success = m.Success
		mission.SuccessCount = succ
		mission.FailCount = fail
		mission.MissionVotes = m.MissionVotesByPlayer()
		mission.GoodScore = goodScore
		mission.EvilScore = evilScore
		mission.Track = append([]*bool(nil), track...)
		steps = append(steps, mission)
	}

	if rec.AssassinPhase != nil {
		steps = append(steps, Step{
			Phase:     game.PhaseAssassin,
			LeaderID:  -1,
			Assassin:  rec.AssassinPhase,
			GoodScore: goodScore,
			EvilScore: evilScore,
			Track:     append([]*bool(nil), track...),
		})
	}

	if rec.IsFinished() {
		steps = append(steps, Step{
			Phase:          game.PhaseGameEnd,
			LeaderID:       -1,
			Players:        rec.Players,
			Assassin:       rec.AssassinPhase,
			Winner:         rec.Winner,
			EndReason:      rec.EndReason,
			MissionResults: rec.MissionResults,
			GoodScore:      goodScore,
			EvilScore:      evilScore,
			Track:          append([]*bool(nil), track...),
		})
	}

	for i := range steps {
		steps[i].Index = i
	}
	return steps
}
