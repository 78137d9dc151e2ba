package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"orion-console/internal/clipboard"
	"orion-console/internal/conversation"
	"orion-console/internal/export"
	"orion-console/internal/voice"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const glamourStyle = "dark"

// Quick actions submit a canned command with a single keystroke.
var quickActions = map[string]string{
	"ctrl+d": "Run a full system diagnostics sweep",
	"ctrl+t": "What time is it?",
	"ctrl+g": "Give me a motivational boost",
	"ctrl+s": "Summarize our conversation so far",
}

type transcriptEntry struct {
	id  conversation.EntryID
	msg conversation.Message
}

type Model struct {
	orch     *conversation.Orchestrator
	voice    *voice.InputController
	exporter *export.Exporter
	copier   *clipboard.Copier
	feed     *Feed

	viewport viewport.Model
	input    textinput.Model
	help     help.Model
	spinner  spinner.Model
	keys     keyMap

	width  int
	height int

	entries []transcriptEntry
	notices []string

	state       conversation.State
	statusText  string
	rendering   bool
	renderNonce int

	status string
	err    error
}

type submitDoneMsg struct {
	accepted bool
	text     string
}

type exportMsg struct {
	path string
	err  error
}

type renderMsg struct {
	rendered string
	nonce    int
	err      error
}

type voiceToggledMsg struct{}

type copyMsg struct {
	err error
}

func NewModel(orch *conversation.Orchestrator, vc *voice.InputController, exp *export.Exporter, feed *Feed) Model {
	vp := viewport.New(60, 20)
	vp.SetContent("Channel open. Type a command or press ctrl+l to listen.")

	ti := textinput.New()
	ti.Placeholder = "Transmit a command..."
	ti.Prompt = "> "
	ti.CharLimit = 512
	ti.Focus()

	h := help.New()
	h.ShowAll = false

	sp := spinner.New()
	sp.Spinner = spinner.Points

	return Model{
		orch:       orch,
		voice:      vc,
		exporter:   exp,
		copier:     &clipboard.Copier{},
		feed:       feed,
		viewport:   vp,
		input:      ti,
		help:       h,
		spinner:    sp,
		keys:       defaultKeys(),
		state:      conversation.StateIdle,
		statusText: conversation.CopyIdle,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return m.feed.Next()
	}
}

func (m Model) submitCmd(text string) tea.Cmd {
	return func() tea.Msg {
		accepted := m.orch.Submit(context.Background(), text)
		return submitDoneMsg{accepted: accepted, text: text}
	}
}

func (m Model) exportCmd() tea.Cmd {
	msgs := m.exportableMessages()
	return func() tea.Msg {
		path, err := m.exporter.Export(msgs)
		return exportMsg{path: path, err: err}
	}
}

func (m Model) copyCmd() tea.Cmd {
	text, ok := m.lastReply()
	if !ok {
		return func() tea.Msg {
			return copyMsg{err: errors.New("no reply to copy yet")}
		}
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return copyMsg{err: m.copier.Copy(ctx, text)}
	}
}

func (m Model) toggleVoiceCmd() tea.Cmd {
	return func() tea.Msg {
		m.voice.Toggle()
		return voiceToggledMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		cmds = append(cmds, m.renderTranscript())

	case entryAddedMsg:
		m.entries = append(m.entries, transcriptEntry{id: msg.id, msg: msg.message})
		cmds = append(cmds, m.renderTranscript(), m.waitForEvent())

	case entryRemovedMsg:
		m.removeEntry(msg.id)
		cmds = append(cmds, m.renderTranscript(), m.waitForEvent())

	case noticesMsg:
		m.notices = msg.notices
		cmds = append(cmds, m.waitForEvent())

	case statusMsg:
		m.state = msg.state
		m.statusText = msg.text
		if msg.state == conversation.StateThinking {
			cmds = append(cmds, m.spinner.Tick)
		}
		cmds = append(cmds, m.waitForEvent())

	case submitDoneMsg:
		if !msg.accepted {
			// Hand the dropped command back rather than destroying it,
			// unless the operator has already started typing again.
			if strings.TrimSpace(m.input.Value()) == "" {
				m.input.SetValue(msg.text)
				m.input.CursorEnd()
			}
			m.status = "Request dropped: another transmission is in flight"
		}

	case exportMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = "Export failed: " + msg.err.Error()
		} else {
			m.status = "Exported: " + msg.path
		}

	case copyMsg:
		if msg.err != nil {
			if errors.Is(msg.err, clipboard.ErrToolNotFound) {
				m.status = "Could not copy: clipboard tool not found"
			} else {
				m.status = "Could not copy: " + msg.err.Error()
			}
		} else {
			m.status = "Copied last reply to clipboard"
		}

	case voiceToggledMsg:
		if disabled, reason := m.voice.Disabled(); disabled {
			m.status = "Voice input unavailable: " + reason
		}

	case renderMsg:
		if msg.nonce != m.renderNonce {
			break
		}
		m.rendering = false
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.viewport.SetContent(msg.rendered)
		m.viewport.GotoBottom()

	case spinner.TickMsg:
		if m.state == conversation.StateThinking {
			var spin tea.Cmd
			m.spinner, spin = m.spinner.Update(msg)
			cmds = append(cmds, spin)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			text := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if text == "" {
				return m, nil
			}
			m.status = ""
			return m, tea.Batch(append(cmds, m.submitCmd(text))...)
		case key.Matches(msg, m.keys.Voice):
			return m, tea.Batch(append(cmds, m.toggleVoiceCmd())...)
		case key.Matches(msg, m.keys.Export):
			return m, tea.Batch(append(cmds, m.exportCmd())...)
		case key.Matches(msg, m.keys.Copy):
			return m, tea.Batch(append(cmds, m.copyCmd())...)
		case key.Matches(msg, m.keys.PageUp):
			m.viewport.HalfViewUp()
			return m, nil
		case key.Matches(msg, m.keys.PageDown):
			m.viewport.HalfViewDown()
			return m, nil
		}

		if command, ok := quickActions[msg.String()]; ok {
			m.input.SetValue("")
			m.status = ""
			return m, tea.Batch(append(cmds, m.submitCmd(command))...)
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) removeEntry(id conversation.EntryID) {
	for i, e := range m.entries {
		if e.id == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

// lastReply returns the newest settled assistant message.
func (m *Model) lastReply() (string, bool) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.msg.Role != conversation.RoleAssistant || e.msg.Content == conversation.PlaceholderContent {
			continue
		}
		return e.msg.Content, true
	}
	return "", false
}

func (m *Model) exportableMessages() []conversation.Message {
	msgs := make([]conversation.Message, 0, len(m.entries))
	for _, e := range m.entries {
		if e.msg.Content == conversation.PlaceholderContent {
			continue
		}
		msgs = append(msgs, e.msg)
	}
	return msgs
}

func (m *Model) transcriptMarkdown() string {
	var b strings.Builder
	for _, e := range m.entries {
		content := strings.TrimSpace(e.msg.Content)
		if content == "" {
			continue
		}
		b.WriteString("**" + e.msg.SpeakerLabel() + ":**\n\n")
		b.WriteString(content + "\n\n")
	}
	if b.Len() == 0 {
		return "_Channel open. Awaiting first transmission._"
	}
	return strings.TrimSpace(b.String())
}

func (m *Model) renderTranscript() tea.Cmd {
	md := m.transcriptMarkdown()
	wrap := m.viewport.Width - 2
	if wrap < 20 {
		wrap = 20
	}

	m.rendering = true
	m.renderNonce++
	nonce := m.renderNonce

	return func() tea.Msg {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(glamourStyle),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return renderMsg{rendered: md, nonce: nonce}
		}
		out, renderErr := r.Render(md)
		if renderErr != nil {
			return renderMsg{rendered: md, nonce: nonce}
		}
		return renderMsg{rendered: out, nonce: nonce}
	}
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	left, _ := m.paneWidths()

	bodyHeight := m.height - 4
	if bodyHeight < 8 {
		bodyHeight = 8
	}

	m.viewport.Width = left - 2
	m.viewport.Height = bodyHeight - 2
	m.input.Width = m.width - 6
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Starting..."
	}

	left, right := m.paneWidths()
	bodyHeight := m.height - 4
	if bodyHeight < 8 {
		bodyHeight = 8
	}

	transcriptPane := panelStyle(true).Width(left).Height(bodyHeight).Render(m.viewport.View())
	noticesPane := panelStyle(false).Width(right).Height(bodyHeight).Render(m.noticesView(right - 4))
	body := lipgloss.JoinHorizontal(lipgloss.Top, transcriptPane, noticesPane)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusLine(),
		body,
		m.input.View(),
		m.help.View(m.keys),
	)
}

func (m Model) noticesView(wrap int) string {
	if len(m.notices) == 0 {
		return noticeTitleStyle.Render("Notices") + "\n\n" + dimStyle.Render("No active notices.")
	}
	var b strings.Builder
	b.WriteString(noticeTitleStyle.Render("Notices") + "\n")
	for _, n := range m.notices {
		b.WriteString("\n" + ansi.Truncate("• "+n, wrap, "..."))
	}
	return b.String()
}

func (m Model) statusLine() string {
	status := m.statusText
	if m.state == conversation.StateThinking {
		status = m.spinner.View() + " " + status
	}
	if m.voice.Listening() {
		status += "  [listening]"
	}
	if disabled, _ := m.voice.Disabled(); disabled {
		status += "  [voice-off]"
	}
	if m.rendering {
		status += "  [rendering]"
	}
	if m.status != "" {
		status += "  " + m.status
	}
	if m.err != nil {
		status += "  err=" + m.err.Error()
	}
	status = fmt.Sprintf(" %s ", strings.TrimSpace(status))
	if m.width > 4 {
		status = ansi.Truncate(status, m.width-2, "...")
	}
	return statusStyle.Render(status)
}

func (m *Model) paneWidths() (int, int) {
	right := m.width / 3
	if right > 44 {
		right = 44
	}
	if right < 24 {
		right = 24
	}
	left := m.width - right - 1
	if left < 20 {
		left = 20
	}
	return left, right
}

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)
	noticeTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func panelStyle(active bool) lipgloss.Style {
	border := lipgloss.NormalBorder()
	if active {
		return lipgloss.NewStyle().
			Border(border, true).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1)
	}
	return lipgloss.NewStyle().
		Border(border, true).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
}

type keyMap struct {
	Submit   key.Binding
	Voice    key.Binding
	Export   key.Binding
	Copy     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Diag     key.Binding
	Time     key.Binding
	Motivate key.Binding
	Summary  key.Binding
	Quit     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "transmit"),
		),
		Voice: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "listen"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export transcript"),
		),
		Copy: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "copy reply"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Diag: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "diagnostics"),
		),
		Time: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "time check"),
		),
		Motivate: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "motivation"),
		),
		Summary: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "summary"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Voice, k.Export, k.Copy, k.Diag, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Voice, k.Export, k.Copy},
		{k.Diag, k.Time, k.Motivate, k.Summary},
		{k.PageUp, k.PageDown, k.Quit},
	}
}
