// Package ui renders the session: a bubbletea program over a GameView
// reconciler that folds timeline steps or live events into one visible
// state. Rendering reads the reconciled state plus the visibility flag and
// nothing else, so toggling visibility or re-rendering never replays
// events and never drifts.
package ui

import (
	"time"

	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/protocol"
	"github.com/avalonarena/spectate/internal/record"
)

// DefaultSpeechTTL is how long a live speech bubble stays up before it
// expires on its own. A newer speech from the same player supersedes it.
const DefaultSpeechTTL = 6 * time.Second

// defaultFeedCap bounds the event feed; older entries fall off the front.
const defaultFeedCap = 200

// PlayerCard is the visible state of one seat. Role fields always hold the
// true data; the visibility policy decides at render time whether they
// show or render as the hidden label.
type PlayerCard struct {
	ID       int
	Name     string
	RoleID   string
	RoleName string
	Team     game.Team

	// Night knowledge, populated from replay records only.
	KnownEvil            []int
	KnownMerlinOrMorgana []int
	KnownAllies          []int

	IsLeader bool
	OnTeam   bool
	Thinking string // server action verb while deliberating, empty otherwise

	Vote        *bool // team vote on the current proposal
	MissionCard *bool // mission card played this round
	Revealed    bool  // role made public by the engine
}

// SpeechBubble is one player's current table-talk line. A zero Expires
// means the bubble is step-scoped and never times out on its own.
type SpeechBubble struct {
	PlayerID int
	Name     string
	Text     string
	Round    int
	Expires  time.Time
}

// VoteOutcome summarizes the most recent team vote.
type VoteOutcome struct {
	Round        int
	Attempt      int
	Approved     bool
	ApproveCount int
	RejectCount  int
}

// MissionOutcome summarizes the most recent mission. Success is nil when
// the record never resolved it.
type MissionOutcome struct {
	Round        int
	Success      *bool
	SuccessCount int
	FailCount    int
}

// FeedEntry is one line of the event feed. GodOnly entries carry
// role-identifying content and render only under the visibility policy.
type FeedEntry struct {
	When    time.Time
	Text    string
	GodOnly bool
}

// GameView is the reconciled state of the game on screen. One instance
// serves both modes: replay feeds it whole steps, live feeds it events.
// All mutation happens on the program goroutine.
type GameView struct {
	catalog   *game.Catalog
	speechTTL time.Duration
	feedCap   int
	godMode   bool

	Started   bool
	StartedAt time.Time
	Ended     bool
	EndedAt   time.Time
	Winner    game.Team
	EndReason string

	GameNumber int  // 1-based game number within the session
	TotalGames *int // nil in continuous mode

	archived       bool // current game already has a history snapshot
	nextGameNumber int  // announced by community_game_start ahead of game_started

	Phase       game.Phase
	ServerPhase string // raw server phase name, live mode only
	Round       int
	TeamSize    int
	LeaderID    int
	VoteTrack   int
	pendingVote bool // a proposal is on the table awaiting its vote result

	players []PlayerCard
	byID    map[int]int

	ProposedTeam   []int
	LastVote       *VoteOutcome
	LastMission    *MissionOutcome
	MissionResults []*bool
	GoodScore      int
	EvilScore      int

	AssassinID    int
	TargetID      int
	MerlinKilled  *bool
	MorganaAdvice string

	bubbles map[int]SpeechBubble
	feed    []FeedEntry

	Profiles     map[int]protocol.AgentProfilePayload
	SessionState protocol.SessionState
	PauseReason  string
	Stats        protocol.StatsUpdatePayload
}

// Option configures a GameView.
type Option func(*GameView)

// WithGodMode sets the initial visibility policy.
func WithGodMode(on bool) Option {
	return func(v *GameView) { v.godMode = on }
}

// WithSpeechTTL overrides the live speech bubble lifetime.
func WithSpeechTTL(d time.Duration) Option {
	return func(v *GameView) {
		if d > 0 {
			v.speechTTL = d
		}
	}
}

// NewGameView creates an empty view against a role catalog.
func NewGameView(catalog *game.Catalog, opts ...Option) *GameView {
	if catalog == nil {
		catalog = game.Default()
	}
	v := &GameView{
		catalog:    catalog,
		speechTTL:  DefaultSpeechTTL,
		feedCap:    defaultFeedCap,
		LeaderID:   -1,
		AssassinID: -1,
		TargetID:   -1,
		byID:       map[int]int{},
		bubbles:    map[int]SpeechBubble{},
		Profiles:   map[int]protocol.AgentProfilePayload{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// GodMode reports the current visibility policy.
func (v *GameView) GodMode() bool { return v.godMode }

// SetGodMode flips the visibility policy. State is untouched; only
// rendering changes.
func (v *GameView) SetGodMode(on bool) { v.godMode = on }

// ToggleGodMode flips the policy and returns the new value.
func (v *GameView) ToggleGodMode() bool {
	v.godMode = !v.godMode
	return v.godMode
}

// Players returns the roster in seat order.
func (v *GameView) Players() []PlayerCard { return v.players }

// Player returns the card for id, or nil.
func (v *GameView) Player(id int) *PlayerCard {
	i, ok := v.byID[id]
	if !ok {
		return nil
	}
	return &v.players[i]
}

// PlayerName resolves id to a display name, falling back to a seat label.
func (v *GameView) PlayerName(id int) string {
	if p := v.Player(id); p != nil && p.Name != "" {
		return p.Name
	}
	return record.FallbackName(id)
}

// RoleLabel returns the role text to render for a card under the current
// visibility policy. Roles revealed by the engine stay visible either way.
func (v *GameView) RoleLabel(c *PlayerCard) string {
	if !v.godMode && !c.Revealed {
		return game.HiddenRoleLabel
	}
	if c.RoleName != "" {
		return c.RoleName
	}
	if c.RoleID != "" {
		return v.catalog.Lookup(c.RoleID).Name
	}
	return game.HiddenRoleLabel
}

// TeamVisible reports the card's alignment and whether policy allows
// showing it.
func (v *GameView) TeamVisible(c *PlayerCard) (game.Team, bool) {
	if !v.godMode && !c.Revealed {
		return "", false
	}
	return c.Team, c.Team.Valid()
}

// KnowledgeVisible reports whether night knowledge may render.
func (v *GameView) KnowledgeVisible() bool { return v.godMode }

// Badges returns the badge row for a card under the current policy.
func (v *GameView) Badges(c *PlayerCard) []game.Badge {
	var b []game.Badge
	if c.IsLeader {
		b = append(b, game.BadgeLeader)
	}
	if c.OnTeam {
		b = append(b, game.BadgeTeam)
	}
	// The assassination plays out in the open once good takes three
	// missions, so those badges are public from that scene on.
	assassinPublic := v.godMode || v.Ended || v.Phase == game.PhaseAssassin
	if c.ID == v.AssassinID && assassinPublic {
		b = append(b, game.BadgeAssassin)
	}
	if c.ID == v.TargetID && assassinPublic {
		b = append(b, game.BadgeTarget)
	}
	if c.Thinking != "" {
		b = append(b, game.BadgeThinking)
	}
	if _, ok := v.bubbles[c.ID]; ok {
		b = append(b, game.BadgeSpeaking)
	}
	if c.Vote != nil {
		if *c.Vote {
			b = append(b, game.BadgeApprove)
		} else {
			b = append(b, game.BadgeReject)
		}
	}
	if c.MissionCard != nil && (v.godMode || v.Ended) {
		if *c.MissionCard {
			b = append(b, game.BadgeSuccess)
		} else {
			b = append(b, game.BadgeFail)
		}
	}
	return b
}

// Bubble returns the active bubble for a player.
func (v *GameView) Bubble(id int) (SpeechBubble, bool) {
	sb, ok := v.bubbles[id]
	return sb, ok
}

// Bubbles returns all active bubbles keyed by player id.
func (v *GameView) Bubbles() map[int]SpeechBubble { return v.bubbles }

// PruneBubbles drops bubbles whose lifetime has passed and reports whether
// anything changed. Step-scoped bubbles (zero Expires) are kept.
func (v *GameView) PruneBubbles(now time.Time) bool {
	changed := false
	for id, sb := range v.bubbles {
		if !sb.Expires.IsZero() && now.After(sb.Expires) {
			delete(v.bubbles, id)
			changed = true
		}
	}
	return changed
}

// NextBubbleExpiry returns the soonest bubble deadline, or zero when no
// timed bubble is up.
func (v *GameView) NextBubbleExpiry() time.Time {
	var next time.Time
	for _, sb := range v.bubbles {
		if sb.Expires.IsZero() {
			continue
		}
		if next.IsZero() || sb.Expires.Before(next) {
			next = sb.Expires
		}
	}
	return next
}

// Feed returns the event feed visible under the current policy, oldest
// first. Hidden entries stay resident and reappear when policy allows.
func (v *GameView) Feed() []FeedEntry {
	if v.godMode {
		return v.feed
	}
	out := make([]FeedEntry, 0, len(v.feed))
	for _, e := range v.feed {
		if !e.GodOnly {
			out = append(out, e)
		}
	}
	return out
}

func (v *GameView) pushFeed(now time.Time, text string, godOnly bool) {
	v.feed = append(v.feed, FeedEntry{When: now, Text: text, GodOnly: godOnly})
	if len(v.feed) > v.feedCap {
		v.feed = v.feed[len(v.feed)-v.feedCap:]
	}
}

// Reset clears all per-game state ahead of a new game. The feed, profiles,
// session state and visibility policy survive; bubbles do not.
func (v *GameView) Reset() {
	v.Started = false
	v.StartedAt = time.Time{}
	v.Ended = false
	v.EndedAt = time.Time{}
	v.archived = false
	v.Winner = ""
	v.EndReason = ""
	v.Phase = ""
	v.ServerPhase = ""
	v.Round = 0
	v.TeamSize = 0
	v.LeaderID = -1
	v.VoteTrack = 0
	v.pendingVote = false
	v.players = nil
	v.byID = map[int]int{}
	v.ProposedTeam = nil
	v.LastVote = nil
	v.LastMission = nil
	v.MissionResults = nil
	v.GoodScore = 0
	v.EvilScore = 0
	v.AssassinID = -1
	v.TargetID = -1
	v.MerlinKilled = nil
	v.MorganaAdvice = ""
	v.bubbles = map[int]SpeechBubble{}
}

// Snapshot freezes the current game for the history screen. When the game
// never saw its end event the end time is synthesized from now.
func (v *GameView) Snapshot(now time.Time) GameSnapshot {
	s := GameSnapshot{
		ID:           newSnapshotID(),
		Number:       v.GameNumber,
		StartedAt:    v.StartedAt,
		EndedAt:      v.EndedAt,
		Winner:       v.Winner,
		EndReason:    v.EndReason,
		GoodScore:    v.GoodScore,
		EvilScore:    v.EvilScore,
		MerlinKilled: v.MerlinKilled,
	}
	if !v.Ended {
		s.EndedAt = now
		s.SynthesizedEnd = true
	}
	s.MissionResults = append([]*bool(nil), v.MissionResults...)
	s.Roster = append([]PlayerCard(nil), v.players...)
	return s
}

// setRoster installs the replay roster, carrying night knowledge.
func (v *GameView) setRoster(players []record.Player) {
	v.players = make([]PlayerCard, len(players))
	v.byID = make(map[int]int, len(players))
	for i, p := range players {
		name := p.PlayerName
		if name == "" {
			name = record.FallbackName(p.PlayerID)
		}
		v.players[i] = PlayerCard{
			ID:                   p.PlayerID,
			Name:                 name,
			RoleID:               p.RoleID,
			RoleName:             p.RoleNameCN,
			Team:                 p.Team,
			KnownEvil:            p.KnownEvil,
			KnownMerlinOrMorgana: p.KnownMerlinOrMorgana,
			KnownAllies:          p.KnownAllies,
		}
		if v.players[i].RoleName == "" && p.RoleID != "" {
			v.players[i].RoleName = v.catalog.Lookup(p.RoleID).Name
		}
		v.byID[p.PlayerID] = i
	}
}

// setRosterInfo installs a live roster from event payloads.
func (v *GameView) setRosterInfo(players []protocol.PlayerInfo) {
	v.players = make([]PlayerCard, len(players))
	v.byID = make(map[int]int, len(players))
	for i, p := range players {
		name := p.PlayerName
		if name == "" {
			name = record.FallbackName(p.PlayerID)
		}
		v.players[i] = PlayerCard{
			ID:       p.PlayerID,
			Name:     name,
			RoleID:   p.RoleID,
			RoleName: p.RoleNameCN,
			Team:     p.Team,
		}
		if v.players[i].RoleName == "" && p.RoleID != "" {
			v.players[i].RoleName = v.catalog.Lookup(p.RoleID).Name
		}
		v.byID[p.PlayerID] = i
	}
}

// clearTransient drops per-proposal marks from every card.
func (v *GameView) clearTransient(votes, cards, thinking bool) {
	for i := range v.players {
		if votes {
			v.players[i].Vote = nil
		}
		if cards {
			v.players[i].MissionCard = nil
		}
		if thinking {
			v.players[i].Thinking = ""
		}
	}
}

// setLeader moves the leader crown to id.
func (v *GameView) setLeader(id int) {
	v.LeaderID = id
	for i := range v.players {
		v.players[i].IsLeader = v.players[i].ID == id
	}
}

// setTeam marks the proposed team on the cards.
func (v *GameView) setTeam(team []int) {
	v.ProposedTeam = append([]int(nil), team...)
	on := make(map[int]bool, len(team))
	for _, id := range team {
		on[id] = true
	}
	for i := range v.players {
		v.players[i].OnTeam = on[v.players[i].ID]
	}
}

// ensureTrack grows the mission track to hold round (1-based).
func (v *GameView) ensureTrack(round int) {
	if round < 1 {
		return
	}
	for len(v.MissionResults) < round {
		v.MissionResults = append(v.MissionResults, nil)
	}
}

// recountScores rebuilds the running score from the mission track so a
// repeated result event cannot double-count.
func (v *GameView) recountScores() {
	good, evil := 0, 0
	for _, r := range v.MissionResults {
		if r == nil {
			continue
		}
		if *r {
			good++
		} else {
			evil++
		}
	}
	v.GoodScore, v.EvilScore = good, evil
}
