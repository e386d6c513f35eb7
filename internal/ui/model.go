package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/avalonarena/spectate/internal/config"
	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/live"
	"github.com/avalonarena/spectate/internal/logging"
	"github.com/avalonarena/spectate/internal/playback"
	"github.com/avalonarena/spectate/internal/protocol"
	"github.com/avalonarena/spectate/internal/record"
	"github.com/avalonarena/spectate/internal/replay"
)

// Mode selects the event source.
type Mode int

const (
	ModeReplay Mode = iota
	ModeLive
)

// screen selects what the main area shows.
type screen int

const (
	screenGame screen = iota
	screenHistory
)

// tickMsg advances auto-play. Ticks carry the generation they were
// scheduled under; a stale generation means the tick was superseded.
type tickMsg struct{ generation int }

// pruneMsg re-checks speech bubble lifetimes.
type pruneMsg struct{}

// fileChangedMsg reports that the followed record file was rewritten.
type fileChangedMsg struct{}

// watchErrMsg reports a follow-watcher failure.
type watchErrMsg struct{ err error }

// commandAckMsg reports the local outcome of sending a control command.
type commandAckMsg struct {
	cmd string
	err error
}

// sendTimeout bounds one control command write.
const sendTimeout = 5 * time.Second

// Model is the bubbletea program state for both viewer modes.
type Model struct {
	mode Mode
	cfg  *config.Config
	log  *logging.Logger

	view *GameView
	hist *History

	// Replay mode
	path     string
	rec      *record.GameRecord
	timeline *replay.Timeline
	stats    *replay.Stats
	ctrl     *playback.Controller
	follow   bool
	watcher  *fsnotify.Watcher

	// Live mode
	client *live.Client
	conn   live.ConnStateMsg
	spin   spinner.Model

	scr        screen
	width      int
	height     int
	ready      bool
	feedView   viewport.Model
	pruneArmed bool
	status     string
}

// NewReplayModel builds the interactive viewer over a validated record.
// Callers must have loaded and validated rec; a model is never constructed
// around a bad file.
func NewReplayModel(cfg *config.Config, log *logging.Logger, catalog *game.Catalog, rec *record.GameRecord, path string, follow bool) (Model, error) {
	tl, err := replay.FromRecord(rec)
	if err != nil {
		return Model{}, err
	}

	view := NewGameView(catalog,
		WithGodMode(cfg.UI.GodMode),
		WithSpeechTTL(cfg.SpeechTTL()),
	)
	view.InstallRecord(rec)
	view.ApplyStep(tl.Current())

	ctrl := playback.New(cfg.BaseInterval(),
		playback.WithSpeeds(cfg.Playback.Speeds),
		playback.WithSpeechMultiplier(cfg.Playback.SpeechMultiplier),
	)

	m := Model{
		mode:     ModeReplay,
		cfg:      cfg,
		log:      log,
		view:     view,
		hist:     NewHistory(),
		path:     path,
		rec:      rec,
		timeline: tl,
		stats:    replay.ComputeStats(rec),
		ctrl:     ctrl,
		follow:   follow,
	}

	if follow {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return Model{}, fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return Model{}, fmt.Errorf("failed to watch file: %w", err)
		}
		m.watcher = watcher
	}
	return m, nil
}

// NewLiveModel builds the interactive viewer over a live client. The caller
// owns the client's lifecycle; the model only sends commands through it.
func NewLiveModel(cfg *config.Config, log *logging.Logger, catalog *game.Catalog, client *live.Client) Model {
	view := NewGameView(catalog,
		WithGodMode(cfg.UI.GodMode),
		WithSpeechTTL(cfg.SpeechTTL()),
	)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = connectingStyle

	return Model{
		mode:   ModeLive,
		cfg:    cfg,
		log:    log,
		view:   view,
		hist:   NewHistory(),
		client: client,
		conn:   live.ConnStateMsg{State: live.StateConnecting},
		spin:   sp,
	}
}

// History exposes the archived games, mostly for tests.
func (m Model) History() *History { return m.hist }

// Init starts the mode's background commands.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.mode == ModeLive {
		cmds = append(cmds, m.spin.Tick)
	}
	if m.mode == ModeReplay {
		if m.watcher != nil {
			cmds = append(cmds, m.watchFile())
		}
		if m.cfg.Playback.AutoPlay {
			gen := m.ctrl.Play()
			cmds = append(cmds, m.scheduleTick(gen))
		}
	}
	return tea.Batch(cmds...)
}

// Close releases the follow watcher. Call after the program exits.
func (m Model) Close() {
	if m.watcher != nil {
		m.watcher.Close()
	}
}

// Update is the single event loop; every mutation of visible state runs
// through here.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		feedHeight := m.feedHeight()
		if !m.ready {
			m.feedView = viewport.New(msg.Width, feedHeight)
			m.ready = true
		} else {
			m.feedView.Width = msg.Width
			m.feedView.Height = feedHeight
		}
		m.refreshFeed()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m.handleTick(msg)

	case pruneMsg:
		m.pruneArmed = false
		m.view.PruneBubbles(time.Now())
		cmd := m.armPrune()
		return m, cmd

	case live.EventMsg:
		return m.handleEvent(msg)

	case live.ConnStateMsg:
		m.conn = msg
		if msg.State == live.StateConnected {
			m.status = ""
			return m, nil
		}
		return m, m.spin.Tick

	case spinner.TickMsg:
		if m.mode == ModeLive && m.conn.State != live.StateConnected {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case fileChangedMsg:
		return m.handleFileChanged()

	case watchErrMsg:
		m.status = errorStyle.Render(fmt.Sprintf("跟踪文件失败: %v", msg.err))
		return m, nil

	case commandAckMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("指令 %s 发送失败: %v", msg.cmd, msg.err))
		} else {
			m.status = fmt.Sprintf("指令 %s 已发送", msg.cmd)
		}
		return m, nil
	}

	return m, nil
}

// handleKey routes keyboard input by mode and screen.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.scr == screenHistory {
			m.scr = screenGame
			return m, nil
		}
		return m, tea.Quit

	case "tab":
		if m.scr == screenGame {
			m.scr = screenHistory
		} else {
			m.scr = screenGame
		}
		return m, nil

	case "v":
		on := m.view.ToggleGodMode()
		if on {
			m.status = godStyle.Render("上帝视角开启")
		} else {
			m.status = "上帝视角关闭"
		}
		m.refreshFeed()
		return m, nil
	}

	if m.scr == screenHistory {
		// Navigation inside the history table is viewport scrolling only.
		var cmd tea.Cmd
		m.feedView, cmd = m.feedView.Update(msg)
		return m, cmd
	}

	if m.mode == ModeReplay {
		return m.handleReplayKey(msg)
	}
	return m.handleLiveKey(msg)
}

// handleReplayKey covers timeline navigation and playback control.
func (m Model) handleReplayKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		if m.timeline.AtEnd() && !m.ctrl.Playing() {
			m.view.ApplyStep(m.timeline.Seek(0))
		}
		playing, gen := m.ctrl.Toggle()
		if playing {
			return m, m.scheduleTick(gen)
		}
		return m, nil

	case "n", "right", "l":
		m.ctrl.ManualStep()
		if step, ok := m.timeline.Next(); ok {
			m.view.ApplyStep(step)
		}
		return m, nil

	case "p", "left", "h":
		m.ctrl.ManualStep()
		if step, ok := m.timeline.Prev(); ok {
			m.view.ApplyStep(step)
		}
		return m, nil

	case "g", "home":
		m.ctrl.ManualStep()
		m.view.ApplyStep(m.timeline.Seek(0))
		return m, nil

	case "G", "end":
		m.ctrl.ManualStep()
		m.view.ApplyStep(m.timeline.Seek(m.timeline.Len() - 1))
		return m, nil

	case "1", "2", "3", "4", "5":
		m.ctrl.ManualStep()
		round := int(msg.String()[0] - '0')
		if step, ok := m.timeline.JumpToRound(round); ok {
			m.view.ApplyStep(step)
		} else {
			m.status = fmt.Sprintf("没有第 %d 轮", round)
		}
		return m, nil

	case "a":
		m.ctrl.ManualStep()
		if step, ok := m.timeline.JumpToPhase(game.PhaseAssassin); ok {
			m.view.ApplyStep(step)
		} else {
			m.status = "本局没有刺杀阶段"
		}
		return m, nil

	case "+", "=":
		speed, gen := m.ctrl.SpeedUp()
		m.status = fmt.Sprintf("速度 %gx", speed)
		if m.ctrl.Playing() {
			return m, m.scheduleTick(gen)
		}
		return m, nil

	case "-", "_":
		speed, gen := m.ctrl.SpeedDown()
		m.status = fmt.Sprintf("速度 %gx", speed)
		if m.ctrl.Playing() {
			return m, m.scheduleTick(gen)
		}
		return m, nil

	case "s":
		speed, gen := m.ctrl.CycleSpeed()
		m.status = fmt.Sprintf("速度 %gx", speed)
		if m.ctrl.Playing() {
			return m, m.scheduleTick(gen)
		}
		return m, nil
	}

	return m, nil
}

// handleLiveKey covers session control commands.
func (m Model) handleLiveKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		return m, m.sendCommand(protocol.StartGame(1, protocol.ModeSingle, false))
	case "S":
		return m, m.sendCommand(protocol.StartGame(0, protocol.ModeCommunity, false))
	case "P":
		return m, m.sendCommand(protocol.Pause())
	case "R":
		return m, m.sendCommand(protocol.Resume())
	case ".":
		return m, m.sendCommand(protocol.Step())
	case "x":
		return m, m.sendCommand(protocol.Stop())
	case "i":
		return m, m.sendCommand(protocol.GetAllAgents())
	case "t":
		return m, m.sendCommand(protocol.GetStats())
	case "up", "down", "pgup", "pgdown":
		var cmd tea.Cmd
		m.feedView, cmd = m.feedView.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleTick advances auto-play when the tick is still the scheduled one.
func (m Model) handleTick(msg tickMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeReplay || !m.ctrl.ValidTick(msg.generation) {
		return m, nil
	}
	step, ok := m.timeline.Next()
	if !ok {
		m.ctrl.Stop()
		m.status = "播放结束"
		return m, nil
	}
	m.view.ApplyStep(step)
	if m.timeline.AtEnd() {
		m.ctrl.Stop()
		m.status = "播放结束"
		return m, nil
	}
	return m, m.scheduleTick(m.ctrl.Generation())
}

// handleEvent folds a live event into the view and archives finished games.
func (m Model) handleEvent(msg live.EventMsg) (tea.Model, tea.Cmd) {
	now := time.Now()
	if snap := m.view.ApplyEvent(msg.Envelope, msg.Payload, now); snap != nil {
		m.hist.Append(*snap)
		m.log.GameArchived(snap.ID, string(snap.Winner), len(snap.MissionResults))
	}
	m.refreshFeed()
	if cmd := m.armPrune(); cmd != nil {
		return m, cmd
	}
	return m, nil
}

// handleFileChanged reloads a followed record. A bad reload keeps the
// current timeline on screen; the viewer never swaps good state for a
// half-written file.
func (m Model) handleFileChanged() (tea.Model, tea.Cmd) {
	rearm := m.watchFile()

	rec, err := record.Load(m.path)
	if err != nil {
		m.log.Warn("record reload rejected", map[string]interface{}{
			"path":  m.path,
			"error": err.Error(),
		})
		m.status = errorStyle.Render(fmt.Sprintf("重载失败: %v", err))
		return m, rearm
	}

	tl, err := replay.FromRecord(rec)
	if err != nil {
		m.status = errorStyle.Render(fmt.Sprintf("重载失败: %v", err))
		return m, rearm
	}

	pos := m.timeline.Pos()
	atEnd := m.timeline.AtEnd()
	m.rec = rec
	m.timeline = tl
	m.stats = replay.ComputeStats(rec)
	// Swapping the timeline invalidates any pending tick.
	m.ctrl.Stop()
	m.view = NewGameView(m.view.catalog, WithGodMode(m.view.GodMode()), WithSpeechTTL(m.cfg.SpeechTTL()))
	m.view.InstallRecord(rec)
	if atEnd {
		// Following a growing record: stay pinned to the newest step.
		m.view.ApplyStep(tl.Seek(tl.Len() - 1))
	} else {
		m.view.ApplyStep(tl.Seek(pos))
	}
	m.log.RecordLoaded(m.path, tl.Len())
	m.status = "记录已重载"
	return m, rearm
}

// scheduleTick arms the next auto-play tick for the current step's dwell.
func (m Model) scheduleTick(generation int) tea.Cmd {
	interval := m.ctrl.Interval(m.timeline.Current().Phase)
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{generation: generation}
	})
}

// armPrune schedules the next bubble expiry check if one is due and not
// already pending.
func (m *Model) armPrune() tea.Cmd {
	if m.pruneArmed {
		return nil
	}
	next := m.view.NextBubbleExpiry()
	if next.IsZero() {
		return nil
	}
	wait := time.Until(next)
	if wait < 50*time.Millisecond {
		wait = 50 * time.Millisecond
	}
	m.pruneArmed = true
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return pruneMsg{}
	})
}

// sendCommand writes one control frame off the event loop.
func (m Model) sendCommand(cmd protocol.Command) tea.Cmd {
	client := m.client
	name := cmd.Cmd
	return func() tea.Msg {
		if client == nil {
			return commandAckMsg{cmd: name, err: live.ErrNotConnected}
		}
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		return commandAckMsg{cmd: name, err: client.Send(ctx, cmd)}
	}
}

// boardReserve is the rows kept for the header, board, bubbles and footer;
// the feed pane gets the remainder.
const boardReserve = 16

// feedHeight returns the rows available to the scrolling feed pane.
func (m Model) feedHeight() int {
	h := m.height - boardReserve
	if h < 3 {
		h = 3
	}
	return h
}
