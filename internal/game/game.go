// Package game defines the shared vocabulary of the Avalon session:
// teams, phases, roles and the badge tags the viewer pins on player cards.
// It interprets nothing; upstream rule decisions are taken as given.
package game

// Team identifies a player's alignment.
type Team string

const (
	TeamGood Team = "good"
	TeamEvil Team = "evil"
)

// Valid reports whether t is a known team.
func (t Team) Valid() bool {
	return t == TeamGood || t == TeamEvil
}

// Label returns the display name for a team.
func (t Team) Label() string {
	switch t {
	case TeamGood:
		return "正义"
	case TeamEvil:
		return "邪恶"
	default:
		return string(t)
	}
}

// MaxTeamVotes is the number of consecutive rejected proposals after which
// the upstream engine hands the game to evil. The viewer only displays the
// rejection streak against this bound.
const MaxTeamVotes = 5

// MissionWinTarget is how many mission wins either side needs. Three good
// wins trigger the assassination phase rather than ending the game outright.
const MissionWinTarget = 3
