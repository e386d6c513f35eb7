package ui

import (
	"testing"
	"time"

	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/record"
	"github.com/avalonarena/spectate/internal/replay"
)

func boolPtr(b bool) *bool { return &b }

// uiTestRecord is a finished five-player game with one rejected proposal in
// round two and good winning through the failed assassination.
func uiTestRecord() *record.GameRecord {
	advice := "杀乙"
	return &record.GameRecord{
		Players: []record.Player{
			{PlayerID: 0, PlayerName: "甲", RoleID: "merlin", RoleNameCN: "梅林", Team: game.TeamGood, KnownEvil: []int{3, 4}},
			{PlayerID: 1, PlayerName: "乙", RoleID: "percival", RoleNameCN: "派西维尔", Team: game.TeamGood, KnownMerlinOrMorgana: []int{0, 3}},
			{PlayerID: 2, PlayerName: "丙", RoleID: "loyal_servant_1", RoleNameCN: "忠臣亚瑟", Team: game.TeamGood},
			{PlayerID: 3, PlayerName: "丁", RoleID: "morgana", RoleNameCN: "莫甘娜", Team: game.TeamEvil, KnownAllies: []int{4}},
			{PlayerID: 4, PlayerName: "戊", RoleID: "assassin", RoleNameCN: "刺客", Team: game.TeamEvil, KnownAllies: []int{3}},
		},
		MissionRecords: []record.MissionRecord{
			{
				RoundNum:     1,
				TeamLeaderID: 0,
				TeamMembers:  []int{0, 1},
				TeamVotes:    map[string]bool{"0": true, "1": true, "2": true, "3": false, "4": false},
				TeamApproved: boolPtr(true),
				MissionVotes: map[string]bool{"0": true, "1": true},
				Success:      boolPtr(true),
				Speeches:     record.SpeechList{{PlayerID: 2, Text: "先看第一轮"}},
			},
			{
				RoundNum:     2,
				TeamLeaderID: 1,
				TeamMembers:  []int{1, 3, 4},
				TeamVotes:    map[string]bool{"0": false, "1": true, "2": false, "3": true, "4": false},
				TeamApproved: boolPtr(false),
				Success:      nil,
				Speeches:     record.SpeechList{{PlayerID: 3, Text: "这队没问题"}},
			},
			{
				RoundNum:     2,
				TeamLeaderID: 2,
				TeamMembers:  []int{0, 2, 3},
				TeamVotes:    map[string]bool{"0": true, "1": true, "2": true, "3": true, "4": false},
				TeamApproved: boolPtr(true),
				MissionVotes: map[string]bool{"0": true, "2": true, "3": false},
				Success:      boolPtr(false),
			},
			{
				RoundNum:     3,
				TeamLeaderID: 3,
				TeamMembers:  []int{0, 2},
				TeamVotes:    map[string]bool{"0": true, "1": true, "2": true, "3": true, "4": true},
				TeamApproved: boolPtr(true),
				MissionVotes: map[string]bool{"0": true, "2": true},
				Success:      boolPtr(true),
			},
			{
				RoundNum:     4,
				TeamLeaderID: 4,
				TeamMembers:  []int{0, 1, 2},
				TeamVotes:    map[string]bool{"0": true, "1": true, "2": true, "3": true, "4": true},
				TeamApproved: boolPtr(true),
				MissionVotes: map[string]bool{"0": true, "1": true, "2": true},
				Success:      boolPtr(true),
			},
		},
		MissionResults: []bool{true, false, true, true},
		GoodWinsCount:  3,
		EvilWinsCount:  1,
		Winner:         game.TeamGood,
		EndReason:      "刺杀失败，正义阵营获胜",
		GameConfig: record.GameConfig{
			PlayerCount:      5,
			MissionTeamSizes: []int{2, 3, 2, 3, 3},
		},
		AssassinPhase: &record.AssassinPhase{
			MerlinKilled:  false,
			AssassinID:    4,
			TargetID:      1,
			MorganaAdvice: &advice,
		},
	}
}

// replayView installs the test record and returns its step sequence.
func replayView(t *testing.T) (*GameView, []replay.Step) {
	t.Helper()
	rec := uiTestRecord()
	v := NewGameView(nil)
	v.InstallRecord(rec)
	return v, replay.Generate(rec)
}

// findStep returns the first step matching the phase and round.
func findStep(t *testing.T, steps []replay.Step, phase game.Phase, round, attempt int) *replay.Step {
	t.Helper()
	for i := range steps {
		s := &steps[i]
		if s.Phase == phase && s.Round == round && (attempt == 0 || s.Attempt == attempt) {
			return s
		}
	}
	t.Fatalf("no %s step for round %d attempt %d", phase, round, attempt)
	return nil
}

func TestInstallRecord(t *testing.T) {
	v, _ := replayView(t)

	if !v.Started {
		t.Error("view not started")
	}
	if len(v.Players()) != 5 {
		t.Fatalf("roster has %d players", len(v.Players()))
	}
	if len(v.MissionResults) != 5 {
		t.Errorf("mission track has %d slots, config says 5", len(v.MissionResults))
	}
	// Roles stay hidden until the timeline reveals them.
	if got := v.RoleLabel(v.Player(0)); got != game.HiddenRoleLabel {
		t.Errorf("role visible right after install: %q", got)
	}
	// Night knowledge rides along for god mode.
	if len(v.Player(0).KnownEvil) != 2 {
		t.Errorf("merlin's knowledge lost: %v", v.Player(0).KnownEvil)
	}
}

func TestApplyStep_Night(t *testing.T) {
	v, steps := replayView(t)
	v.ApplyStep(&steps[0])

	if v.Phase != game.PhaseNight {
		t.Errorf("phase %s", v.Phase)
	}
	if v.LeaderID != 0 || !v.Player(0).IsLeader {
		t.Error("opening leader not marked")
	}
}

func TestApplyStep_SpeechBubbleIsStepScoped(t *testing.T) {
	v, steps := replayView(t)
	speech := findStep(t, steps, game.PhaseSpeech, 1, 0)
	v.ApplyStep(speech)

	if len(v.Bubbles()) != 1 {
		t.Fatalf("%d bubbles after a speech step", len(v.Bubbles()))
	}
	sb, ok := v.Bubble(2)
	if !ok {
		t.Fatal("speaker has no bubble")
	}
	if sb.Text != "先看第一轮" || sb.Name != "丙" {
		t.Errorf("bubble mangled: %+v", sb)
	}
	if !sb.Expires.IsZero() {
		t.Error("replay bubble carries a wall-clock deadline")
	}
	if v.PruneBubbles(time.Now().Add(time.Hour)) {
		t.Error("replay bubble pruned by the clock")
	}
}

func TestApplyStep_VoteStep(t *testing.T) {
	v, steps := replayView(t)
	vote := findStep(t, steps, game.PhaseTeamVote, 1, 0)
	v.ApplyStep(vote)

	if v.Player(0).Vote == nil || !*v.Player(0).Vote {
		t.Error("approve ballot not on the card")
	}
	if v.Player(4).Vote == nil || *v.Player(4).Vote {
		t.Error("reject ballot not on the card")
	}
	if v.LastVote == nil || !v.LastVote.Approved || v.LastVote.ApproveCount != 3 || v.LastVote.RejectCount != 2 {
		t.Errorf("vote outcome wrong: %+v", v.LastVote)
	}
	if !v.Player(1).OnTeam || v.Player(3).OnTeam {
		t.Error("team marks wrong")
	}
}

func TestApplyStep_RetryProposalCarriesVoteTrack(t *testing.T) {
	v, steps := replayView(t)
	retry := findStep(t, steps, game.PhaseTeamProposal, 2, 2)
	v.ApplyStep(retry)

	if v.VoteTrack != 1 {
		t.Errorf("vote track %d on the retry proposal, expected 1", v.VoteTrack)
	}
	if v.Round != 2 {
		t.Errorf("round %d", v.Round)
	}
}

func TestApplyStep_MissionStep(t *testing.T) {
	v, steps := replayView(t)
	mission := findStep(t, steps, game.PhaseMission, 2, 0)
	v.ApplyStep(mission)

	if v.Player(3).MissionCard == nil || *v.Player(3).MissionCard {
		t.Error("fail card not on the card")
	}
	if v.Player(0).MissionCard == nil || !*v.Player(0).MissionCard {
		t.Error("success card not on the card")
	}
	if v.LastMission == nil || v.LastMission.Success == nil || *v.LastMission.Success {
		t.Errorf("mission outcome wrong: %+v", v.LastMission)
	}
	if v.GoodScore != 1 || v.EvilScore != 1 {
		t.Errorf("score %d:%d, expected 1:1", v.GoodScore, v.EvilScore)
	}
	if len(v.MissionResults) < 2 || v.MissionResults[1] == nil || *v.MissionResults[1] {
		t.Errorf("mission track wrong: %v", v.MissionResults)
	}
	// Round one's outcome rides along on the track.
	if v.MissionResults[0] == nil || !*v.MissionResults[0] {
		t.Error("earlier round's outcome missing from the track")
	}
}

func TestApplyStep_AssassinScenePublic(t *testing.T) {
	v, steps := replayView(t)
	assassin := findStep(t, steps, game.PhaseAssassin, 0, 0)
	v.ApplyStep(assassin)

	if v.AssassinID != 4 || v.TargetID != 1 {
		t.Errorf("assassination %d -> %d", v.AssassinID, v.TargetID)
	}
	if v.MorganaAdvice != "杀乙" {
		t.Errorf("morgana advice %q", v.MorganaAdvice)
	}

	// The scene itself is public even without god mode.
	badges := v.Badges(v.Player(4))
	if !hasBadge(badges, game.BadgeAssassin) {
		t.Error("assassin badge hidden during the assassination")
	}
	if !hasBadge(v.Badges(v.Player(1)), game.BadgeTarget) {
		t.Error("target badge hidden during the assassination")
	}
}

func TestApplyStep_GameEnd(t *testing.T) {
	v, steps := replayView(t)
	v.ApplyStep(&steps[len(steps)-1])

	if !v.Ended || v.Winner != game.TeamGood {
		t.Errorf("end state wrong: ended=%v winner=%s", v.Ended, v.Winner)
	}
	if v.EndReason == "" {
		t.Error("end reason missing")
	}
	for _, c := range v.Players() {
		if !c.Revealed {
			t.Fatalf("player %d not revealed at game end", c.ID)
		}
	}
	if got := v.RoleLabel(v.Player(0)); got != "梅林" {
		t.Errorf("merlin renders as %q at game end", got)
	}
	want := []bool{true, false, true, true}
	if len(v.MissionResults) != len(want) {
		t.Fatalf("final track has %d slots", len(v.MissionResults))
	}
	for i, w := range want {
		if v.MissionResults[i] == nil || *v.MissionResults[i] != w {
			t.Errorf("final track slot %d not %v", i, w)
		}
	}
	if v.MerlinKilled == nil || *v.MerlinKilled {
		t.Error("assassination outcome wrong at game end")
	}
}

func TestApplyStep_BackwardSeekClearsEndState(t *testing.T) {
	v, steps := replayView(t)
	v.ApplyStep(&steps[len(steps)-1])
	v.ApplyStep(findStep(t, steps, game.PhaseTeamProposal, 1, 0))

	if v.Ended || v.Winner != "" {
		t.Error("end state survived seeking backwards")
	}
	if v.AssassinID != -1 || v.MerlinKilled != nil {
		t.Error("assassination state survived seeking backwards")
	}
	for _, c := range v.Players() {
		if c.Revealed {
			t.Fatal("roles stayed revealed after seeking backwards")
		}
	}
	if got := v.RoleLabel(v.Player(0)); got != game.HiddenRoleLabel {
		t.Errorf("role renders as %q after seeking backwards", got)
	}
}

func TestApplyStep_SameStepTwiceSamePicture(t *testing.T) {
	v, steps := replayView(t)
	vote := findStep(t, steps, game.PhaseTeamVote, 2, 1)

	v.ApplyStep(vote)
	v.ApplyStep(vote)

	if v.VoteTrack != vote.VoteTrack {
		t.Errorf("vote track drifted to %d", v.VoteTrack)
	}
	if len(v.Bubbles()) != 0 {
		t.Errorf("%d bubbles on a vote step", len(v.Bubbles()))
	}
	if v.LastVote == nil || v.LastVote.Approved {
		t.Errorf("vote outcome wrong: %+v", v.LastVote)
	}
}

func TestApplyStep_AnyOrderConverges(t *testing.T) {
	walked, steps := replayView(t)
	for i := range steps {
		walked.ApplyStep(&steps[i])
	}
	target := findStep(t, steps, game.PhaseSpeech, 2, 1)
	walked.ApplyStep(target)

	fresh, _ := replayView(t)
	fresh.ApplyStep(target)

	if walked.Phase != fresh.Phase || walked.Round != fresh.Round || walked.VoteTrack != fresh.VoteTrack {
		t.Errorf("walked view at %s/%d/%d, fresh at %s/%d/%d",
			walked.Phase, walked.Round, walked.VoteTrack, fresh.Phase, fresh.Round, fresh.VoteTrack)
	}
	if walked.GoodScore != fresh.GoodScore || walked.EvilScore != fresh.EvilScore {
		t.Errorf("scores diverge: %d:%d vs %d:%d", walked.GoodScore, walked.EvilScore, fresh.GoodScore, fresh.EvilScore)
	}
	if len(walked.Bubbles()) != len(fresh.Bubbles()) {
		t.Errorf("bubble counts diverge: %d vs %d", len(walked.Bubbles()), len(fresh.Bubbles()))
	}
	if walked.Ended != fresh.Ended {
		t.Error("end flags diverge")
	}
	for _, c := range walked.Players() {
		f := fresh.Player(c.ID)
		if (c.Vote == nil) != (f.Vote == nil) || c.OnTeam != f.OnTeam || c.IsLeader != f.IsLeader {
			t.Errorf("player %d cards diverge: %+v vs %+v", c.ID, c, f)
		}
	}
}

func hasBadge(badges []game.Badge, want game.Badge) bool {
	for _, b := range badges {
		if b == want {
			return true
		}
	}
	return false
}
