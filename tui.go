package main

import (
	"math"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TUI message types
type StatusMsg struct {
	Text  string
	State State
}
type ChatMsg struct {
	Who  string
	Text string
	User bool
}
type MicMsg struct{ On bool }
type AudioLevelMsg struct{ Level float64 }
type DeviceLineMsg struct{ Text string }
type WarningMsg struct{ Text string }
type tickMsg time.Time

const chatHistoryLimit = 200

type tuiModel struct {
	submit func(Command) bool

	state         State
	status        string
	frame         int
	audioLevel    float64
	micOn         bool
	deviceLine    string
	warning       string
	chat          []ChatMsg
	input         string
	width, height int
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex

	// Closed once the program is processing messages, so the core is not
	// started while early events would still be dropped.
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

// tuiSink forwards assistant events into the Bubble Tea program. The
// program pointer is published after Run starts, so every send goes
// through the guarded handle.
type tuiSink struct{}

func (tuiSink) Status(text string, state State) { tuiSend(StatusMsg{Text: text, State: state}) }
func (tuiSink) ChatMessage(who, text string, user bool) {
	tuiSend(ChatMsg{Who: who, Text: text, User: user})
}
func (tuiSink) MicState(on bool)         { tuiSend(MicMsg{On: on}) }
func (tuiSink) AudioLevel(level float64) { tuiSend(AudioLevelMsg{Level: level}) }
func (tuiSink) DeviceLine(text string)   { tuiSend(DeviceLineMsg{Text: text}) }
func (tuiSink) Warning(text string)      { tuiSend(WarningMsg{Text: text}) }

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		p.Send(msg)
	}
}

func setTUIProgram(p *tea.Program) {
	tuiMu.Lock()
	tuiProgram = p
	tuiMu.Unlock()
}

// Pre-computed pixel styles to avoid allocations in render loop
var (
	pixelColorsActive = []string{"", "231", "159", "123", "87", "51", "45", "39", "33", "27", "236", "236", "236", "236", "255", "249"}
	pixelColorsIdle   = []string{"", "195", "153", "117", "111", "67", "61", "60", "24", "236", "236", "236", "236", "236", "255", "249"}
	pixelStylesActive [16]lipgloss.Style
	pixelStylesIdle   [16]lipgloss.Style
	pixelBgActive     [16][16]lipgloss.Style
	pixelBgIdle       [16][16]lipgloss.Style
)

func init() {
	for i, c := range pixelColorsActive {
		if c != "" {
			pixelStylesActive[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
		}
	}
	for i, c := range pixelColorsIdle {
		if c != "" {
			pixelStylesIdle[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(c))
		}
	}
	for i, fg := range pixelColorsActive {
		for j, bg := range pixelColorsActive {
			if fg != "" && bg != "" {
				pixelBgActive[i][j] = lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg))
			}
		}
	}
	for i, fg := range pixelColorsIdle {
		for j, bg := range pixelColorsIdle {
			if fg != "" && bg != "" {
				pixelBgIdle[i][j] = lipgloss.NewStyle().Foreground(lipgloss.Color(fg)).Background(lipgloss.Color(bg))
			}
		}
	}
}

func NewTUIProgram(core *Core) *tea.Program {
	m := tuiModel{
		submit: core.Submit,
		status: "Awaiting Orders.",
	}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func tuiTick() tea.Cmd {
	return tea.Tick(60*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	tuiReadyOnce.Do(func() { close(tuiReady) })
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.submit(Command{Kind: CmdToggleMic})
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input)
			m.input = ""
			if text != "" {
				m.submit(Command{Kind: CmdTextQuery, Text: text})
			}
		case tea.KeyBackspace:
			if len(m.input) > 0 {
				r := []rune(m.input)
				m.input = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		}

	case tickMsg:
		m.frame++
		return m, tuiTick()

	case StatusMsg:
		m.status = msg.Text
		m.state = msg.State
		if msg.State != StateListening {
			m.audioLevel = 0
		}

	case ChatMsg:
		m.chat = append(m.chat, msg)
		if len(m.chat) > chatHistoryLimit {
			m.chat = m.chat[len(m.chat)-chatHistoryLimit:]
		}

	case MicMsg:
		m.micOn = msg.On

	case AudioLevelMsg:
		if m.state == StateListening {
			m.audioLevel = m.audioLevel*0.6 + msg.Level*0.4
		}

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case WarningMsg:
		m.warning = msg.Text
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	const orbWidth = 45
	active := m.state == StateListening || m.state == StateProcessing || m.state == StateSpeaking
	level := m.audioLevel
	if m.state != StateListening {
		level = 0
	}

	orb := renderOrb(m.frame, level, active)

	// Build info section below orb
	var infoLines []string
	infoLines = append(infoLines, renderStateLine(m.state))

	if m.status != "" {
		statusLine := lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Render(truncateLine(m.status, orbWidth-2))
		infoLines = append(infoLines, statusLine)
	}

	if m.micOn {
		micLine := lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Render("● mic on")
		infoLines = append(infoLines, micLine)
	} else {
		micLine := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("○ mic off")
		infoLines = append(infoLines, micLine)
	}

	if m.deviceLine != "" {
		deviceLine := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render(truncateLine(m.deviceLine, orbWidth-2))
		infoLines = append(infoLines, deviceLine)
	}

	if m.warning != "" {
		warnLine := lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Render(truncateLine("⚠ "+m.warning, orbWidth-2))
		infoLines = append(infoLines, warnLine)
	}

	// Empty line for spacing
	infoLines = append(infoLines, "")

	// Help lines with version
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239")).Bold(true)
	infoLines = append(infoLines,
		boldStyle.Render("tab")+helpStyle.Render(" mic  ")+
			boldStyle.Render("enter")+helpStyle.Render(" send  ")+
			boldStyle.Render("esc")+helpStyle.Render(" quit"))
	infoLines = append(infoLines, helpStyle.Render("ghost "+version))

	// Append info to orb
	for _, line := range infoLines {
		orb += line + "\n"
	}

	orbLines := strings.Split(orb, "\n")

	// Calculate chat panel width
	chatWidth := m.width - orbWidth - 1
	if chatWidth < 20 {
		chatWidth = 20
	}
	wrapWidth := chatWidth - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	chatPanel := lipgloss.NewStyle().
		Width(chatWidth).
		Height(m.height).
		PaddingLeft(1).
		Render(m.renderChat(wrapWidth))

	// Pad orb panel to full height (orb at top)
	orbPadded := make([]string, m.height)
	for i := range orbPadded {
		if i < len(orbLines) {
			orbPadded[i] = orbLines[i]
		} else {
			orbPadded[i] = strings.Repeat(" ", orbWidth-1)
		}
	}

	orbPanel := lipgloss.NewStyle().
		Width(orbWidth - 1).
		Height(m.height).
		Render(strings.Join(orbPadded, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, orbPanel, chatPanel)
}

func renderStateLine(state State) string {
	switch state {
	case StateListening:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true).Render("◉ LISTENING")
	case StateProcessing:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true).Render("◐ PROCESSING")
	case StateSpeaking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true).Render("◈ SPEAKING")
	case StateError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Render("✗ ERROR")
	case StateOffline:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("○ OFFLINE")
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Render("○ STANDBY")
	}
}

// renderChat lays out the conversation bottom-aligned with the input
// line pinned to the last row.
func (m tuiModel) renderChat(wrapWidth int) string {
	userStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	assistantStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("117"))
	var lines []string
	for _, e := range m.chat {
		style := assistantStyle
		if e.User {
			style = userStyle
		}
		for _, line := range wrapText(e.Who+": "+e.Text, wrapWidth) {
			lines = append(lines, style.Render(line))
		}
		lines = append(lines, "")
	}
	if len(lines) == 0 {
		placeholder := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("No conversation yet")
		lines = append(lines, placeholder)
	}

	avail := m.height - 2
	if avail < 1 {
		avail = 1
	}
	if len(lines) > avail {
		lines = lines[len(lines)-avail:]
	}

	body := make([]string, avail)
	offset := avail - len(lines)
	for i, line := range lines {
		body[offset+i] = line
	}

	cursor := " "
	if m.frame%10 < 5 {
		cursor = "▌"
	}
	promptStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	inputStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("231"))
	inputLine := promptStyle.Render("> ") + inputStyle.Render(m.input) + inputStyle.Render(cursor)

	return strings.Join(body, "\n") + "\n" + inputLine
}

func renderOrb(frame int, level float64, active bool) string {
	const charsW = 44
	const charsH = 15
	const pixW = charsW
	const pixH = charsH * 2

	centerX := float64(pixW) / 2
	centerY := float64(pixH) / 2

	// Voice-reactive breathing
	var breathe float64
	if active {
		breathe = math.Sin(float64(frame)*0.10)*0.03 + level*10.0 - 0.05
	} else {
		breathe = math.Sin(float64(frame)*0.08)*0.02 - 0.05
	}

	pixels := make([][]int, pixH)
	for i := range pixels {
		pixels[i] = make([]int, pixW)
	}

	type ring struct {
		radius     float64
		breatheAmt float64
		colorIdx   int
	}

	rings := []ring{
		{0.6, 0.10, 1},
		{1.3, 0.12, 2},
		{2.0, 0.15, 3},
		{2.8, 0.35, 4}, // cyan rings: high reactivity
		{3.5, 0.40, 5},
		{4.2, 0.38, 6},
		{5.0, 0.30, 7},
		{5.8, 0.15, 8},
		{6.5, 0.03, 9},
		{7.2, 0.0, 10},
		{8.0, 0.0, 11},
		{10.0, 0.0, 12},
		{12.0, 0.0, 13},
	}

	for y := 0; y < pixH; y++ {
		for x := 0; x < pixW; x++ {
			dx := float64(x) - centerX
			dy := float64(y) - centerY
			dist := math.Sqrt(dx*dx + dy*dy)
			for _, r := range rings {
				radius := r.radius + breathe*r.breatheAmt*20
				if radius > 10.0 {
					radius = 10.0
				}
				if dist < radius {
					pixels[y][x] = r.colorIdx
					break
				}
			}
		}
	}

	// Glass reflections
	type spot struct {
		ox, oy float64
		radius float64
		color  int
	}
	dSide := 9.0
	dSide2 := 7.2
	dTop := 10.0
	dTop2 := 8.2
	spots := []spot{
		{-dSide * 0.707, -dSide * 0.707, 0.7, 14},
		{-dSide2 * 0.707, -dSide2 * 0.707, 0.4, 15},
		{0, -dTop, 0.8, 14},
		{0, -dTop2, 0.6, 15},
		{dSide * 0.707, -dSide * 0.707, 0.7, 14},
		{dSide2 * 0.707, -dSide2 * 0.707, 0.4, 15},
		{0, -2.0, 0.6, 14},
	}
	for y := 0; y < pixH; y++ {
		for x := 0; x < pixW; x++ {
			px := float64(x) - centerX
			py := float64(y) - centerY
			for _, s := range spots {
				dx := px - s.ox
				dy := py - s.oy
				rLen := math.Sqrt(s.ox*s.ox + s.oy*s.oy)
				if rLen < 0.001 {
					rLen = 1
				}
				tx, ty := -s.oy/rLen, s.ox/rLen
				dt := dx*tx + dy*ty
				dn := dx*(-ty) + dy*tx
				if (dt*dt)/9.0+dn*dn < s.radius*s.radius {
					pixels[y][x] = s.color
				}
			}
		}
	}

	// Use pre-computed styles based on assistant state
	var styles *[16]lipgloss.Style
	var bgStyles *[16][16]lipgloss.Style
	if active {
		styles = &pixelStylesActive
		bgStyles = &pixelBgActive
	} else {
		styles = &pixelStylesIdle
		bgStyles = &pixelBgIdle
	}

	var result strings.Builder
	for cy := 0; cy < charsH; cy++ {
		for cx := 0; cx < charsW; cx++ {
			topY := cy * 2
			botY := cy*2 + 1
			top := 0
			bot := 0
			if topY < pixH {
				top = pixels[topY][cx]
			}
			if botY < pixH {
				bot = pixels[botY][cx]
			}
			if top == 0 && bot == 0 {
				result.WriteString(" ")
			} else if top == bot {
				result.WriteString(styles[top].Render("█"))
			} else if top != 0 && bot == 0 {
				result.WriteString(styles[top].Render("▀"))
			} else if top == 0 && bot != 0 {
				result.WriteString(styles[bot].Render("▄"))
			} else {
				result.WriteString(bgStyles[top][bot].Render("▀"))
			}
		}
		result.WriteString("\n")
	}
	return result.String()
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		// Find last space within width
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}

func truncateLine(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	r := []rune(text)
	if len(r) <= width {
		return text
	}
	return string(r[:width-1]) + "…"
}
