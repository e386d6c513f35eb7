package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/avalonarena/spectate/internal/game"
	"github.com/avalonarena/spectate/internal/live"
	"github.com/avalonarena/spectate/internal/protocol"
	"github.com/avalonarena/spectate/internal/replay"
)

// cardWidth is the inner width of one player card.
const cardWidth = 14

// View renders the current screen.
func (m Model) View() string {
	if !m.ready {
		return "初始化中..."
	}
	if m.scr == screenHistory {
		return m.renderHistory()
	}
	return m.renderGame()
}

// renderGame composes the board: header, player cards, speech bubbles,
// score tracks, the event feed and the footer.
func (m Model) renderGame() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if len(m.view.Players()) == 0 {
		b.WriteString(statusStyle.Render(m.idleText()))
		b.WriteString("\n")
	} else {
		b.WriteString(m.renderCards())
		b.WriteString("\n")
		b.WriteString(m.renderScore())
		b.WriteString("\n")
		if line := m.renderOutcome(); line != "" {
			b.WriteString(line)
			b.WriteString("\n")
		}
		if bubbles := m.renderBubbles(); bubbles != "" {
			b.WriteString(bubbles)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.feedView.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// idleText is shown before any game state exists.
func (m Model) idleText() string {
	if m.mode == ModeLive {
		return "等待对局开始... 按 s 开始单局，S 开始社区赛"
	}
	return "记录为空"
}

// renderHeader is the one-line title with mode, game position and
// connection or playback status.
func (m Model) renderHeader() string {
	parts := []string{headerStyle.Render("阿瓦隆观战")}

	if m.view.GameNumber > 0 {
		num := fmt.Sprintf("第 %d 局", m.view.GameNumber)
		if m.view.TotalGames != nil {
			num = fmt.Sprintf("第 %d / %d 局", m.view.GameNumber, *m.view.TotalGames)
		}
		parts = append(parts, statusStyle.Render(num))
	}

	if m.view.Phase != "" {
		label := m.view.Phase.Label()
		if m.view.Round > 0 && m.view.Phase != game.PhaseGameEnd {
			label = fmt.Sprintf("%s · 第%d轮", label, m.view.Round)
		}
		parts = append(parts, phaseStyle.Render(label))
	}

	switch m.mode {
	case ModeReplay:
		pos := fmt.Sprintf("%d/%d", m.timeline.Pos()+1, m.timeline.Len())
		if m.ctrl.Playing() {
			pos += fmt.Sprintf(" ▶ %gx", m.ctrl.Speed())
		} else {
			pos += " ⏸"
		}
		parts = append(parts, statusStyle.Render(pos))
	case ModeLive:
		parts = append(parts, m.renderConnState())
	}

	if m.view.GodMode() {
		parts = append(parts, godStyle.Render("[上帝视角]"))
	}
	if m.view.SessionState == protocol.StatePaused || m.view.PauseReason != "" {
		reason := m.view.PauseReason
		if reason == "" {
			reason = "已暂停"
		}
		parts = append(parts, connectingStyle.Render("⏸ "+reason))
	}

	return strings.Join(parts, "  ")
}

// renderConnState shows the live connection status with the reconnect
// countdown while the client is backing off.
func (m Model) renderConnState() string {
	switch m.conn.State {
	case live.StateConnected:
		return connectedStyle.Render("● 已连接")
	case live.StateConnecting:
		label := "连接中"
		if m.conn.Attempt > 1 {
			label = fmt.Sprintf("重连中 #%d", m.conn.Attempt)
		}
		return m.spin.View() + connectingStyle.Render(label)
	default:
		label := "已断开"
		if m.conn.Next > 0 {
			label = fmt.Sprintf("已断开，%s 后重连", m.conn.Next.Round(100*time.Millisecond))
		}
		return m.spin.View() + disconnectedStyle.Render(label)
	}
}

// renderCards lays the roster out in bordered cards, chunked to fit the
// terminal width.
func (m Model) renderCards() string {
	players := m.view.Players()
	cards := make([]string, len(players))
	for i := range players {
		cards[i] = m.renderCard(&players[i])
	}

	perRow := 1
	if m.width > 0 {
		perRow = m.width / (cardWidth + 4)
	}
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := start + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return strings.Join(rows, "\n")
}

// renderCard draws one player: badges, name, role under the visibility
// policy, and any night knowledge in god mode.
func (m Model) renderCard(c *PlayerCard) string {
	badges := m.view.Badges(c)
	glyphs := make([]string, 0, len(badges))
	for _, bd := range badges {
		glyphs = append(glyphs, bd.Glyph())
	}
	badgeLine := strings.Join(glyphs, " ")
	if badgeLine == "" {
		badgeLine = " "
	}

	role := m.view.RoleLabel(c)
	var roleLine string
	if team, ok := m.view.TeamVisible(c); ok {
		if team == game.TeamGood {
			roleLine = goodRoleStyle.Render(role)
		} else {
			roleLine = evilRoleStyle.Render(role)
		}
	} else {
		roleLine = roleHiddenStyle.Render(role)
	}

	lines := []string{
		nameStyle.Render(truncate(c.Name, cardWidth)),
		roleLine,
		badgeLine,
	}
	if c.Thinking != "" {
		lines = append(lines, thinkingStyle.Render(truncate(thinkingLabel(c.Thinking), cardWidth)))
	}
	if m.view.KnowledgeVisible() {
		if know := m.knowledgeLine(c); know != "" {
			lines = append(lines, feedSecretStyle.Render(truncate(know, cardWidth)))
		}
	}

	style := cardStyle
	switch {
	case c.IsLeader:
		style = cardLeaderStyle
	case c.OnTeam:
		style = cardTeamStyle
	}
	return style.Width(cardWidth).Render(strings.Join(lines, "\n"))
}

// thinkingLabel maps the server's action verbs onto short card text.
func thinkingLabel(action string) string {
	switch action {
	case "proposing_team":
		return "思考组队..."
	case "speaking":
		return "思考发言..."
	case "voting":
		return "思考投票..."
	case "mission_vote":
		return "思考出牌..."
	case "reflecting":
		return "复盘中..."
	default:
		return "思考中..."
	}
}

// knowledgeLine compresses night knowledge into one card row.
func (m Model) knowledgeLine(c *PlayerCard) string {
	switch {
	case len(c.KnownEvil) > 0:
		return "见邪: " + m.shortNames(c.KnownEvil)
	case len(c.KnownMerlinOrMorgana) > 0:
		return "见梅/莫: " + m.shortNames(c.KnownMerlinOrMorgana)
	case len(c.KnownAllies) > 0:
		return "同伙: " + m.shortNames(c.KnownAllies)
	}
	return ""
}

func (m Model) shortNames(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, m.view.PlayerName(id))
	}
	return strings.Join(parts, ",")
}

// renderScore is the mission track, running score and vote track line.
func (m Model) renderScore() string {
	var b strings.Builder

	b.WriteString(statusStyle.Render("任务 "))
	results := m.view.MissionResults
	slots := len(results)
	if slots < 5 {
		slots = 5
	}
	for i := 0; i < slots; i++ {
		var mark string
		switch {
		case i < len(results) && results[i] != nil && *results[i]:
			mark = trackWonStyle.Render("✓")
		case i < len(results) && results[i] != nil:
			mark = trackLostStyle.Render("✗")
		default:
			mark = trackOpenStyle.Render("●")
		}
		b.WriteString(mark)
		b.WriteString(" ")
	}

	b.WriteString("  ")
	b.WriteString(scoreGoodStyle.Render(fmt.Sprintf("正义 %d", m.view.GoodScore)))
	b.WriteString(statusStyle.Render(" : "))
	b.WriteString(scoreEvilStyle.Render(fmt.Sprintf("%d 邪恶", m.view.EvilScore)))

	b.WriteString(statusStyle.Render("   否决 "))
	for i := 0; i < game.MaxTeamVotes; i++ {
		if i < m.view.VoteTrack {
			b.WriteString(trackLostStyle.Render("✗"))
		} else {
			b.WriteString(trackOpenStyle.Render("·"))
		}
	}

	if m.view.TeamSize > 0 {
		b.WriteString(statusStyle.Render(fmt.Sprintf("   出征 %d 人", m.view.TeamSize)))
	}
	return b.String()
}

// renderOutcome shows the most recent vote or mission result, the
// assassination and the final verdict.
func (m Model) renderOutcome() string {
	var lines []string

	if lv := m.view.LastVote; lv != nil {
		verdict := trackWonStyle.Render("通过")
		if !lv.Approved {
			verdict = trackLostStyle.Render("否决")
		}
		lines = append(lines, fmt.Sprintf("%s %s  %d:%d",
			statusStyle.Render(fmt.Sprintf("第%d轮第%d次投票", lv.Round, lv.Attempt)),
			verdict, lv.ApproveCount, lv.RejectCount))
	}

	if lm := m.view.LastMission; lm != nil {
		var verdict string
		switch {
		case lm.Success == nil:
			verdict = statusStyle.Render("未出结果")
		case *lm.Success:
			verdict = trackWonStyle.Render("任务成功")
		default:
			verdict = trackLostStyle.Render("任务失败")
		}
		lines = append(lines, fmt.Sprintf("%s  %s（%d 成功 / %d 破坏）",
			statusStyle.Render(fmt.Sprintf("第%d轮", lm.Round)), verdict,
			lm.SuccessCount, lm.FailCount))
	}

	if m.view.AssassinID >= 0 {
		verdict := scoreGoodStyle.Render("刺杀失手")
		if m.view.MerlinKilled != nil && *m.view.MerlinKilled {
			verdict = scoreEvilStyle.Render("梅林被刺")
		}
		line := fmt.Sprintf("🗡 %s → %s  %s",
			m.view.PlayerName(m.view.AssassinID),
			m.view.PlayerName(m.view.TargetID), verdict)
		if m.view.GodMode() && m.view.MorganaAdvice != "" {
			line += feedSecretStyle.Render("  莫甘娜: " + truncate(m.view.MorganaAdvice, 40))
		}
		lines = append(lines, line)
	}

	if m.view.Ended && m.view.Winner.Valid() {
		style := scoreGoodStyle
		if m.view.Winner == game.TeamEvil {
			style = scoreEvilStyle
		}
		lines = append(lines, style.Render(fmt.Sprintf("★ %s阵营获胜", m.view.Winner.Label()))+
			statusStyle.Render("  "+m.view.EndReason))
	}

	return strings.Join(lines, "\n")
}

// renderBubbles draws active speech, newest first, wrapped to the width.
func (m Model) renderBubbles() string {
	bubbles := m.view.Bubbles()
	if len(bubbles) == 0 {
		return ""
	}
	width := m.width - 6
	if width < 20 {
		width = 20
	}

	// Stable order: seat order keeps bubbles from jumping around.
	var lines []string
	for _, c := range m.view.Players() {
		sb, ok := bubbles[c.ID]
		if !ok {
			continue
		}
		text := wrapToWidth(sb.Text, width)
		lines = append(lines, bubbleStyle.Render(nameStyle.Render(sb.Name)+"\n"+text))
	}
	return strings.Join(lines, "\n")
}

// renderFooter is the status line plus key help.
func (m Model) renderFooter() string {
	var help string
	switch {
	case m.scr == screenHistory:
		help = m.helpLine([][2]string{{"tab", "返回"}, {"↑/↓", "滚动"}, {"q", "退出"}})
	case m.mode == ModeReplay:
		help = m.helpLine([][2]string{
			{"空格", "播放/暂停"}, {"n/p", "步进"}, {"1-5", "跳轮"}, {"a", "刺杀"},
			{"g/G", "首/尾"}, {"s", "速度"}, {"v", "上帝"}, {"tab", "战绩"}, {"q", "退出"},
		})
	default:
		help = m.helpLine([][2]string{
			{"s/S", "开局"}, {"P/R", "暂停/继续"}, {".", "单步"}, {"x", "停止"},
			{"i", "档案"}, {"t", "统计"}, {"v", "上帝"}, {"tab", "战绩"}, {"q", "退出"},
		})
	}

	if m.status != "" {
		return m.status + "\n" + help
	}
	return help
}

func (m Model) helpLine(keys [][2]string) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, helpKeyStyle.Render(kv[0])+helpStyle.Render(" "+kv[1]))
	}
	return strings.Join(parts, helpStyle.Render(" · "))
}

// renderHistory is the cross-game results table.
func (m Model) renderHistory() string {
	var b strings.Builder
	b.WriteString(historyHeaderStyle.Render("对局战绩"))
	b.WriteString("\n\n")

	games := m.hist.Games()
	if len(games) == 0 {
		b.WriteString(statusStyle.Render("还没有完成的对局"))
		b.WriteString("\n")
	} else {
		for i := range games {
			b.WriteString(m.renderHistoryRow(&games[i]))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s %s  %s %s",
			statusStyle.Render("正义"), scoreGoodStyle.Render(fmt.Sprintf("%d 胜", m.hist.GoodWins())),
			statusStyle.Render("邪恶"), scoreEvilStyle.Render(fmt.Sprintf("%d 胜", m.hist.EvilWins()))))
		b.WriteString("\n")
	}

	if line := recordStatsLine(m.stats); line != "" {
		b.WriteString(statusStyle.Render(line))
		b.WriteString("\n")
	}
	if line := serverStatsLine(m.view.Stats); line != "" {
		b.WriteString(statusStyle.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// recordStatsLine condenses the loaded record's statistics into one row.
// Only replay mode carries a record; live mode passes nil.
func recordStatsLine(stats *replay.Stats) string {
	if stats == nil || stats.Proposals == 0 {
		return ""
	}
	line := fmt.Sprintf("本局 %d 轮 %d 次提案（通过 %d 否决 %d）  任务 %d 成 %d 败",
		stats.Rounds, stats.Proposals, stats.ApprovedProposals, stats.RejectedProposals,
		stats.MissionSuccesses, stats.MissionFails)
	if stats.SpeechCount > 0 {
		line += fmt.Sprintf("  发言 %d 条", stats.SpeechCount)
	}
	if stats.AssassinAttempted {
		if stats.MerlinKilled {
			line += "  刺客得手"
		} else {
			line += "  刺杀未中"
		}
	}
	return line
}

// serverStatsLine condenses the community statistics report into one row.
// The server preformats the rates ("53.1%"), so they pass through as text.
func serverStatsLine(stats protocol.StatsUpdatePayload) string {
	summary, ok := stats["summary"].(map[string]any)
	if !ok {
		return ""
	}
	total, ok := summary["total_games"].(float64)
	if !ok || total <= 0 {
		return ""
	}
	line := fmt.Sprintf("服务端累计 %d 局", int(total))
	if rate, ok := summary["good_win_rate"].(string); ok && rate != "N/A" {
		line += "  正义胜率 " + rate
	}
	if rate, ok := summary["evil_win_rate"].(string); ok && rate != "N/A" {
		line += "  邪恶胜率 " + rate
	}
	return line
}

// renderHistoryRow is one archived game line.
func (m Model) renderHistoryRow(s *GameSnapshot) string {
	var winner string
	switch s.Winner {
	case game.TeamGood:
		winner = winGoodStyle.Render("正义胜")
	case game.TeamEvil:
		winner = winEvilStyle.Render("邪恶胜")
	default:
		winner = statusStyle.Render("未完赛")
	}

	duration := s.EndedAt.Sub(s.StartedAt).Round(time.Second)
	durText := duration.String()
	if s.SynthesizedEnd {
		durText += "*"
	}

	reason := s.EndReason
	if s.MerlinKilled != nil && *s.MerlinKilled {
		reason += " 🗡"
	}

	return fmt.Sprintf("%s  %s  %s  %s  %s",
		statusStyle.Render(fmt.Sprintf("#%-3d", s.Number)),
		winner,
		fmt.Sprintf("%d:%d", s.GoodScore, s.EvilScore),
		statusStyle.Render(durText),
		truncate(reason, 40))
}

// refreshFeed rebuilds the feed viewport under the current visibility
// policy and pins it to the newest entry.
func (m *Model) refreshFeed() {
	if !m.ready {
		return
	}
	entries := m.view.Feed()
	lines := make([]string, 0, len(entries))
	width := m.feedView.Width - 2
	if width < 20 {
		width = 20
	}
	for _, e := range entries {
		stamp := feedTimeStyle.Render(e.When.Format("15:04:05"))
		text := e.Text
		if e.GodOnly {
			text = feedSecretStyle.Render(text)
		}
		lines = append(lines, stamp+" "+wrapToWidth(text, width))
	}
	m.feedView.SetContent(strings.Join(lines, "\n"))
	m.feedView.GotoBottom()
}

// wrapToWidth word-wraps where it can and hard-wraps the rest, since CJK
// text rarely contains spaces.
func wrapToWidth(text string, width int) string {
	return wrap.String(wordwrap.String(text, width), width)
}

// truncate clips s to max cells with an ellipsis.
func truncate(s string, max int) string {
	if lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > max-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
