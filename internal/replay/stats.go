package replay

import (
	"fmt"
	"io"
	"sort"

	"github.com/avalonarena/spectate/internal/record"
)

// Stats holds aggregate statistics for one game.
type Stats struct {
	// Rounds and proposals
	Rounds            int
	Proposals         int
	ApprovedProposals int
	RejectedProposals int

	// Table talk
	SpeechCount      int
	SpeechRuneTotal  int
	SpeechesByPlayer map[int]int

	// Team vote ballots across the whole game
	ApproveBallots   int
	RejectBallots    int
	ApprovesByPlayer map[int]int
	BallotsByPlayer  map[int]int

	// Missions
	MissionSuccesses int
	MissionFails     int
	FailCardsPlayed  int

	// Endgame
	AssassinAttempted bool
	MerlinKilled      bool
}

// ComputeStats aggregates a record into per-game statistics.
func ComputeStats(rec *record.GameRecord) *Stats {
	stats := &Stats{
		SpeechesByPlayer: make(map[int]int),
		ApprovesByPlayer: make(map[int]int),
		BallotsByPlayer:  make(map[int]int),
	}

	rounds := map[int]bool{}
	for i := range rec.MissionRecords {
		m := &rec.MissionRecords[i]
		rounds[m.RoundNum] = true
		stats.Proposals++
		if m.Approved() {
			stats.ApprovedProposals++
		} else {
			stats.RejectedProposals++
		}

		for _, sp := range m.Speeches {
			stats.SpeechCount++
			stats.SpeechRuneTotal += len([]rune(sp.Text))
			stats.SpeechesByPlayer[sp.PlayerID]++
		}

		for _, v := range m.VotesByPlayer() {
			stats.BallotsByPlayer[v.PlayerID]++
			if v.Approved {
				stats.ApproveBallots++
				stats.ApprovesByPlayer[v.PlayerID]++
			} else {
				stats.RejectBallots++
			}
		}

		if m.Approved() && m.Success != nil {
			if *m.Success {
				stats.MissionSuccesses++
			} else {
				stats.MissionFails++
			}
			_, fail := m.MissionCounts()
			stats.FailCardsPlayed += fail
		}
	}
	stats.Rounds = len(rounds)

	if rec.AssassinPhase != nil {
		stats.AssassinAttempted = true
		stats.MerlinKilled = rec.AssassinPhase.MerlinKilled
	}

	return stats
}

// PrintStats outputs the statistics to the writer.
func PrintStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("═══════════════════════════════════════════════════════════"))
	fmt.Fprintln(w, titleStyle.Render("                      GAME STATISTICS                      "))
	fmt.Fprintln(w, titleStyle.Render("═══════════════════════════════════════════════════════════"))
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleStyle.Render("Proposals:"))
	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Rounds played:"),
		valueStyle.Render(fmt.Sprintf("%d", stats.Rounds)))
	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Teams proposed:"),
		valueStyle.Render(fmt.Sprintf("%d", stats.Proposals)))
	fmt.Fprintf(w, "  %s %s %s\n",
		labelStyle.Render("Approved/Rejected:"),
		valueStyle.Render(fmt.Sprintf("%d/%d", stats.ApprovedProposals, stats.RejectedProposals)),
		labelStyle.Render(fmt.Sprintf("(%.0f%% approval)", approvalRate(stats))))
	fmt.Fprintln(w)

	if stats.SpeechCount > 0 {
		fmt.Fprintln(w, titleStyle.Render("Table Talk:"))
		fmt.Fprintf(w, "  %s %s\n",
			labelStyle.Render("Speeches:"),
			valueStyle.Render(fmt.Sprintf("%d", stats.SpeechCount)))
		fmt.Fprintf(w, "  %s %s\n",
			labelStyle.Render("Average length:"),
			valueStyle.Render(fmt.Sprintf("%d runes", stats.SpeechRuneTotal/stats.SpeechCount)))
		for _, id := range sortedKeys(stats.SpeechesByPlayer) {
			fmt.Fprintf(w, "    %s %s\n",
				labelStyle.Render(fmt.Sprintf("玩家%d:", id+1)),
				valueStyle.Render(fmt.Sprintf("%d", stats.SpeechesByPlayer[id])))
		}
		fmt.Fprintln(w)
	}

	if stats.ApproveBallots+stats.RejectBallots > 0 {
		fmt.Fprintln(w, titleStyle.Render("Ballots:"))
		fmt.Fprintf(w, "  %s %s\n",
			labelStyle.Render("Approve/Reject:"),
			valueStyle.Render(fmt.Sprintf("%d/%d", stats.ApproveBallots, stats.RejectBallots)))
		for _, id := range sortedKeys(stats.BallotsByPlayer) {
			total := stats.BallotsByPlayer[id]
			if total == 0 {
				continue
			}
			rate := 100 * float64(stats.ApprovesByPlayer[id]) / float64(total)
			fmt.Fprintf(w, "    %s %s\n",
				labelStyle.Render(fmt.Sprintf("玩家%d:", id+1)),
				valueStyle.Render(fmt.Sprintf("%.0f%% approve (%d votes)", rate, total)))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, titleStyle.Render("Missions:"))
	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Succeeded:"),
		valueStyle.Render(fmt.Sprintf("%d", stats.MissionSuccesses)))
	fmt.Fprintf(w, "  %s %s\n",
		labelStyle.Render("Failed:"),
		valueStyle.Render(fmt.Sprintf("%d", stats.MissionFails)))
	if stats.FailCardsPlayed > 0 {
		fmt.Fprintf(w, "  %s %s\n",
			labelStyle.Render("Fail cards played:"),
			valueStyle.Render(fmt.Sprintf("%d", stats.FailCardsPlayed)))
	}
	fmt.Fprintln(w)

	if stats.AssassinAttempted {
		fmt.Fprintln(w, titleStyle.Render("Assassination:"))
		if stats.MerlinKilled {
			fmt.Fprintf(w, "  %s\n", failStyle.Render("Merlin was killed"))
		} else {
			fmt.Fprintf(w, "  %s\n", approveStyle.Render("Merlin survived"))
		}
		fmt.Fprintln(w)
	}
}

func approvalRate(stats *Stats) float64 {
	if stats.Proposals == 0 {
		return 0
	}
	return 100 * float64(stats.ApprovedProposals) / float64(stats.Proposals)
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
