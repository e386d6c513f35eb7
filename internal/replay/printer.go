package replay

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/record"
)

// Printer writes a record's timeline as styled text. It is the
// non-interactive renderer; the TUI shares the same steps but draws them
// itself.
type Printer struct {
	output    io.Writer
	godMode   bool
	showTalk  bool
	wrapWidth int

	rec *record.GameRecord // set for the duration of a print
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithGodMode reveals hidden roles and night knowledge in the output.
func WithGodMode(on bool) PrinterOption {
	return func(p *Printer) {
		p.godMode = on
	}
}

// WithSpeeches includes full table talk instead of one-line summaries.
func WithSpeeches(on bool) PrinterOption {
	return func(p *Printer) {
		p.showTalk = on
	}
}

// WithWrapWidth sets the column speeches wrap at.
func WithWrapWidth(width int) PrinterOption {
	return func(p *Printer) {
		if width > 20 {
			p.wrapWidth = width
		}
	}
}

// NewPrinter creates a Printer.
func NewPrinter(output io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{
		output:    output,
		showTalk:  true,
		wrapWidth: 72,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PrintRecord writes the header, roster, timeline and summary.
func (p *Printer) PrintRecord(rec *record.GameRecord) error {
	p.rec = rec
	steps := Generate(rec)
	p.printHeader(rec)
	p.printRoster(rec)
	p.printTimeline(steps)
	p.printSummary(rec)
	return nil
}

// PrintJSON writes the expanded step sequence as JSON, for piping into
// other tools.
func (p *Printer) PrintJSON(rec *record.GameRecord) error {
	steps := Generate(rec)
	enc := json.NewEncoder(p.output)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(steps); err != nil {
		return fmt.Errorf("failed to encode steps: %w", err)
	}
	return nil
}

func (p *Printer) printHeader(rec *record.GameRecord) {
	fmt.Fprintln(p.output)
	fmt.Fprintf(p.output, "%s %s\n", titleStyle.Render("GAME"), p.winnerText(rec.Winner))
	fmt.Fprintln(p.output, divider)
	fmt.Fprintf(p.output, "%s %s\n", labelStyle.Render("Players: "), valueStyle.Render(fmt.Sprintf("%d", rec.GameConfig.PlayerCount)))
	fmt.Fprintf(p.output, "%s %s\n", labelStyle.Render("Missions:"), p.missionTrack(rec.MissionResults, rec.GameConfig.MissionTeamSizes))
	if rec.EndReason != "" {
		fmt.Fprintf(p.output, "%s %s\n", labelStyle.Render("Ending:  "), valueStyle.Render(rec.EndReason))
	}
	fmt.Fprintln(p.output)
}

func (p *Printer) printRoster(rec *record.GameRecord) {
	fmt.Fprintln(p.output, titleStyle.Render("ROSTER"))
	fmt.Fprintln(p.output, divider)
	for _, pl := range rec.Players {
		role := game.HiddenRoleLabel
		style := dimStyle
		// Roles are public once the game has ended.
		if p.godMode || rec.IsFinished() {
			role = pl.RoleNameCN
			style = p.teamStyle(pl.Team)
		}
		fmt.Fprintf(p.output, "  %s %s\n",
			valueStyle.Render(fmt.Sprintf("%-10s", pl.PlayerName)),
			style.Render(role))
	}
	fmt.Fprintln(p.output)
}

func (p *Printer) printTimeline(steps []Step) {
	fmt.Fprintf(p.output, "%s %s\n", titleStyle.Render("TIMELINE"), dimStyle.Render(fmt.Sprintf("(%d steps)", len(steps))))
	fmt.Fprintln(p.output, divider)

	lastRound := 0
	for i := range steps {
		step := &steps[i]
		if step.Round != lastRound && step.Round > 0 {
			fmt.Fprintln(p.output)
			fmt.Fprintf(p.output, "%s\n", leaderStyle.Render(fmt.Sprintf("ROUND %d", step.Round)))
			lastRound = step.Round
		}
		p.formatStep(step)
	}
}

// formatStep writes one timeline row.
func (p *Printer) formatStep(step *Step) {
	seq := seqStyle.Render(fmt.Sprintf("%d", step.Index+1))
	pos := roundStyle.Render(p.position(step))

	switch step.Phase {
	case game.PhaseNight:
		p.fmtNight(seq, pos, step)
	case game.PhaseTeamProposal:
		p.fmtProposal(seq, pos, step)
	case game.PhaseSpeech:
		p.fmtSpeech(seq, pos, step)
	case game.PhaseTeamVote:
		p.fmtVote(seq, pos, step)
	case game.PhaseMission:
		p.fmtMission(seq, pos, step)
	case game.PhaseAssassin:
		p.fmtAssassin(seq, pos, step)
	case game.PhaseGameEnd:
		p.fmtEnd(seq, pos, step)
	default:
		fmt.Fprintf(p.output, "%s │ %s │ %s\n", seq, pos, dimStyle.Render(string(step.Phase)))
	}
}

func (p *Printer) fmtNight(seq, pos string, step *Step) {
	fmt.Fprintf(p.output, "%s │ %s │ %s\n", seq, pos, nightStyle.Render("NIGHT"))
	if !p.godMode {
		fmt.Fprintf(p.output, "           %s\n", dimStyle.Render("roles dealt, knowledge hidden"))
		return
	}
	for _, pl := range step.Players {
		knowledge := p.nightKnowledge(&pl, step.Players)
		if knowledge == "" {
			continue
		}
		fmt.Fprintf(p.output, "           %s %s\n",
			p.teamStyle(pl.Team).Render(fmt.Sprintf("%s(%s)", pl.PlayerName, pl.RoleNameCN)),
			dimStyle.Render(knowledge))
	}
}

func (p *Printer) fmtProposal(seq, pos string, step *Step) {
	track := ""
	if step.VoteTrack > 0 {
		track = rejectStyle.Render(fmt.Sprintf(" (attempt %d, %d rejected)", step.Attempt, step.VoteTrack))
	}
	fmt.Fprintf(p.output, "%s │ %s │ %s %s → %s%s\n", seq, pos,
		leaderStyle.Render("PROPOSAL"),
		valueStyle.Render(p.name(step.LeaderID)),
		valueStyle.Render(p.names(step.Team)),
		track)
}

func (p *Printer) fmtSpeech(seq, pos string, step *Step) {
	if !p.showTalk {
		return
	}
	fmt.Fprintf(p.output, "%s │ %s │ %s %s\n", seq, pos,
		speechStyle.Render("SPEECH"),
		valueStyle.Render(step.SpeakerName))
	p.printWrapped(step.Text)
}

func (p *Printer) fmtVote(seq, pos string, step *Step) {
	verdict := approveStyle.Render("APPROVED")
	if !step.Approved {
		verdict = rejectStyle.Render("REJECTED")
	}
	fmt.Fprintf(p.output, "%s │ %s │ %s %s %s\n", seq, pos,
		valueStyle.Render("VOTE"),
		dimStyle.Render(fmt.Sprintf("✓%d ✗%d", step.ApproveCount, step.RejectCount)),
		verdict)
	if p.godMode {
		p.printBallots(step.Votes)
	}
}

func (p *Printer) fmtMission(seq, pos string, step *Step) {
	outcome := dimStyle.Render("UNRESOLVED")
	if step.Success != nil {
		if *step.Success {
			outcome = successStyle.Render("SUCCESS")
		} else {
			outcome = failStyle.Render("FAIL")
		}
	}
	fmt.Fprintf(p.output, "%s │ %s │ %s %s %s %s\n", seq, pos,
		valueStyle.Render("MISSION"),
		outcome,
		dimStyle.Render(fmt.Sprintf("(✓%d ✗%d)", step.SuccessCount, step.FailCount)),
		p.scoreText(step.GoodScore, step.EvilScore))
	if p.godMode {
		p.printBallots(step.MissionVotes)
	}
}

func (p *Printer) fmtAssassin(seq, pos string, step *Step) {
	a := step.Assassin
	outcome := approveStyle.Render("missed")
	if a.MerlinKilled {
		outcome = failStyle.Render("struck Merlin")
	}
	fmt.Fprintf(p.output, "%s │ %s │ %s %s → %s, %s\n", seq, pos,
		assassinStyle.Render("ASSASSIN"),
		valueStyle.Render(p.name(a.AssassinID)),
		valueStyle.Render(p.name(a.TargetID)),
		outcome)
	if p.godMode && a.MorganaAdvice != nil && *a.MorganaAdvice != "" {
		p.printWrapped("莫甘娜: " + *a.MorganaAdvice)
	}
}

func (p *Printer) fmtEnd(seq, pos string, step *Step) {
	fmt.Fprintf(p.output, "%s │ %s │ %s %s %s\n", seq, pos,
		titleStyle.Render("GAME END"),
		p.winnerText(step.Winner),
		p.scoreText(step.GoodScore, step.EvilScore))
	if step.EndReason != "" {
		fmt.Fprintf(p.output, "           %s\n", dimStyle.Render(step.EndReason))
	}
}

func (p *Printer) printSummary(rec *record.GameRecord) {
	fmt.Fprintln(p.output)
	fmt.Fprintln(p.output, divider)

	switch rec.Winner {
	case game.TeamGood:
		fmt.Fprintln(p.output, goodStyle.Bold(true).Render("GOOD WINS"))
	case game.TeamEvil:
		fmt.Fprintln(p.output, evilStyle.Bold(true).Render("EVIL WINS"))
	default:
		fmt.Fprintln(p.output, dimStyle.Render("UNFINISHED"))
	}

	stats := ComputeStats(rec)
	PrintStats(p.output, stats)
}

// printBallots writes individual votes indented under the tally line.
func (p *Printer) printBallots(votes []record.PlayerVote) {
	if len(votes) == 0 {
		return
	}
	parts := make([]string, 0, len(votes))
	for _, v := range votes {
		mark := approveStyle.Render("✓")
		if !v.Approved {
			mark = rejectStyle.Render("✗")
		}
		parts = append(parts, p.name(v.PlayerID)+mark)
	}
	fmt.Fprintf(p.output, "           %s\n", dimStyle.Render(strings.Join(parts, " ")))
}

// printWrapped writes long text indented and wrapped.
func (p *Printer) printWrapped(text string) {
	for _, line := range wrapText(text, p.wrapWidth) {
		fmt.Fprintf(p.output, "           %s\n", speechStyle.Render(line))
	}
}

func (p *Printer) position(step *Step) string {
	if step.Round == 0 {
		return ""
	}
	if step.Attempt > 1 {
		return fmt.Sprintf("R%d.%d", step.Round, step.Attempt)
	}
	return fmt.Sprintf("R%d", step.Round)
}

func (p *Printer) winnerText(winner game.Team) string {
	switch winner {
	case game.TeamGood:
		return goodStyle.Render("good wins")
	case game.TeamEvil:
		return evilStyle.Render("evil wins")
	default:
		return dimStyle.Render("unfinished")
	}
}

func (p *Printer) scoreText(good, evil int) string {
	return fmt.Sprintf("%s %s %s",
		goodStyle.Render(fmt.Sprintf("good %d", good)),
		dimStyle.Render(":"),
		evilStyle.Render(fmt.Sprintf("%d evil", evil)))
}

func (p *Printer) teamStyle(team game.Team) lipgloss.Style {
	if team == game.TeamEvil {
		return evilStyle
	}
	return goodStyle
}

// missionTrack renders the five-slot result row, e.g. "✓ ✗ ✓ ● ●".
func (p *Printer) missionTrack(results []bool, sizes []int) string {
	if len(sizes) == 0 {
		sizes = make([]int, 5)
	}
	parts := make([]string, 0, len(sizes))
	for i := range sizes {
		switch {
		case i < len(results) && results[i]:
			parts = append(parts, successStyle.Render("✓"))
		case i < len(results):
			parts = append(parts, failStyle.Render("✗"))
		default:
			parts = append(parts, dimStyle.Render("●"))
		}
	}
	return strings.Join(parts, " ")
}

// nightKnowledge summarizes what a player learned during the night.
func (p *Printer) nightKnowledge(pl *record.Player, roster []record.Player) string {
	name := func(id int) string {
		for _, other := range roster {
			if other.PlayerID == id {
				return other.PlayerName
			}
		}
		return fmt.Sprintf("玩家%d", id+1)
	}
	var parts []string
	if len(pl.KnownEvil) > 0 {
		parts = append(parts, "sees evil: "+joinNames(pl.KnownEvil, name))
	}
	if len(pl.KnownMerlinOrMorgana) > 0 {
		parts = append(parts, "sees Merlin/Morgana: "+joinNames(pl.KnownMerlinOrMorgana, name))
	}
	if len(pl.KnownAllies) > 0 {
		parts = append(parts, "allies: "+joinNames(pl.KnownAllies, name))
	}
	return strings.Join(parts, "; ")
}

func joinNames(ids []int, name func(int) string) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, name(id))
	}
	return strings.Join(parts, ", ")
}

// name resolves a player id against the record being printed.
func (p *Printer) name(id int) string {
	if p.rec != nil {
		return p.rec.PlayerName(id)
	}
	return fmt.Sprintf("玩家%d", id+1)
}

func (p *Printer) names(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, p.name(id))
	}
	return strings.Join(parts, ", ")
}

// wrapText word-wraps where it can and hard-wraps the rest, since CJK
// speeches rarely contain spaces.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	wrapped := wrap.String(wordwrap.String(strings.TrimSpace(text), width), width)
	return strings.Split(wrapped, "\n")
}
