package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"

	"github.com/dixit-research/dixit/internal/history"
	"github.com/dixit-research/dixit/internal/models"
	"github.com/dixit-research/dixit/internal/render"
	"github.com/dixit-research/dixit/internal/session"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// resultMsg carries a finished dispatch back to the update loop
	resultMsg struct {
		result session.Result
	}
	healthMsg struct {
		body string
		err  error
	}
)

// HealthChecker probes the backend outside of the conversation
type HealthChecker interface {
	Health(ctx context.Context) (string, error)
	Endpoint() string
}

// Options wires the chat model to its collaborators
type Options struct {
	Controller  *session.Controller
	Health      HealthChecker
	Suggestions []string
	Export      history.ExportOptions
	Render      render.Options
	Theme       string

	// Side-effect hooks; nil selects the real implementation
	CopyToClipboard func(text string) error
	OpenURL         func(url string) error
	WriteFile       func(path string, data []byte) error
}

// Model represents the TUI state
type Model struct {
	ctrl        *session.Controller
	health      HealthChecker
	suggestions []string
	exportOpts  history.ExportOptions
	renderOpts  render.Options

	copyText  func(string) error
	openURL   func(string) error
	writeFile func(string, []byte) error

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	ready          bool
	animationFrame int
	notice         string
	noticeIsError  bool

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(opts Options) Model {
	if opts.Theme != "" {
		UpdateTheme(render.TUIThemeFor(opts.Theme))
	}

	ta := textarea.New()
	ta.Placeholder = "Ask a research question, or /suggest for ideas..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	m := Model{
		ctrl:        opts.Controller,
		health:      opts.Health,
		suggestions: opts.Suggestions,
		exportOpts:  opts.Export,
		renderOpts:  opts.Render,
		copyText:    opts.CopyToClipboard,
		openURL:     opts.OpenURL,
		writeFile:   opts.WriteFile,
		textarea:    ta,
		spinner:     s,
	}

	if m.copyText == nil {
		m.copyText = clipboard.WriteAll
	}
	if m.openURL == nil {
		m.openURL = browser.OpenURL
	}
	if m.writeFile == nil {
		m.writeFile = func(path string, data []byte) error {
			return os.WriteFile(path, data, 0o644)
		}
	}
	if m.renderOpts.Width == 0 {
		m.renderOpts = render.DefaultOptions()
	}
	if m.exportOpts.Title == "" {
		m.exportOpts = history.DefaultExportOptions()
	}

	return m
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+l":
			m.clearConversation()
			return m, nil

		case "ctrl+e":
			m.exportMail()
			return m, nil

		case "ctrl+y":
			m.copyTranscript()
			return m, nil

		case "enter":
			if m.ctrl.Sending() {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			if strings.HasPrefix(input, "/") {
				return m.runCommand(input)
			}
			return m, m.submit(input)
		}

	case resultMsg:
		outcome := m.ctrl.Complete(msg.result)
		if outcome == session.OutcomeStale {
			m.setNotice("Dropped a late answer from before the reset", false)
		}
		m.textarea.Focus()
		m.layout()
		m.updateViewport()
		m.viewport.GotoBottom()

	case healthMsg:
		if msg.err != nil {
			m.setNotice("Health check failed: "+msg.err.Error(), true)
		} else {
			m.setNotice("Backend healthy: "+compactJSON(msg.body), false)
		}

	case spinner.TickMsg:
		if m.ctrl.Sending() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.ctrl.Sending() {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.ctrl.Sending() {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit hands input to the controller and starts the network call
func (m *Model) submit(input string) tea.Cmd {
	req, ok := m.ctrl.Submit(input)
	if !ok {
		return nil
	}

	m.notice = ""
	m.animationFrame = 0
	m.textarea.Blur()
	m.layout()
	m.updateViewport()
	m.viewport.GotoBottom()

	return tea.Batch(
		m.dispatch(req),
		m.spinner.Tick,
		animationTick(),
	)
}

// dispatch runs the request off the update loop
func (m Model) dispatch(req *session.Request) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return resultMsg{result: ctrl.Dispatch(context.Background(), req)}
	}
}

// checkHealth probes the backend without touching the conversation
func (m Model) checkHealth() tea.Cmd {
	health := m.health
	return func() tea.Msg {
		if health == nil {
			return healthMsg{err: fmt.Errorf("no backend configured")}
		}
		body, err := health.Health(context.Background())
		return healthMsg{body: body, err: err}
	}
}

func (m *Model) clearConversation() {
	m.ctrl.Reset()
	m.setNotice("Conversation cleared", false)
	m.layout()
	m.updateViewport()
	m.viewport.GotoTop()
}

func (m *Model) transcript() string {
	return history.Transcript(m.ctrl.Messages(), m.exportOpts)
}

func (m *Model) exportMail() {
	link := history.MailtoURL(m.exportOpts.Subject, m.transcript())
	if err := m.openURL(link); err != nil {
		m.setNotice("Could not open mail client: "+err.Error(), true)
		return
	}
	m.setNotice("Opened mail client with the transcript", false)
}

func (m *Model) copyTranscript() {
	if err := m.copyText(m.transcript()); err != nil {
		m.setNotice("Could not copy: "+err.Error(), true)
		return
	}
	m.setNotice("Transcript copied to clipboard", false)
}

func (m *Model) saveTranscript(path string) {
	opts := m.exportOpts
	opts.Format = history.FormatFromPath(path)

	data, err := history.Export(m.ctrl.Messages(), m.ctrl.Store().ID(), m.ctrl.Sources(), opts)
	if err != nil {
		m.setNotice("Export failed: "+err.Error(), true)
		return
	}
	if err := m.writeFile(path, data); err != nil {
		m.setNotice("Could not write file: "+err.Error(), true)
		return
	}
	m.setNotice(fmt.Sprintf("Saved %s transcript to %s", opts.Format, path), false)
}

func (m *Model) setNotice(text string, isError bool) {
	m.notice = text
	m.noticeIsError = isError
}

// layout sizes the viewport around the fixed panels
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	headerHeight := 3
	inputHeight := 5
	statusHeight := 2
	sourcesHeight := m.sourcesHeight()

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - sourcesHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}

	contentWidth := m.width - 4
	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(contentWidth - 4)
}

const maxSourceLines = 5

func (m Model) sourcesHeight() int {
	n := len(m.ctrl.Sources())
	if n == 0 {
		return 0
	}
	if n > maxSourceLines {
		n = maxSourceLines + 1
	}
	// header line plus border
	return n + 2
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	var sections []string

	// Header
	headerParts := []string{
		titleStyle.Render("✦ " + m.exportOpts.BotName + " BOT"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render("research assistant"),
	}
	if m.health != nil {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			hintStyle.Render(m.health.Endpoint()),
		)
	}
	header := headerStyle.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...),
	)
	sections = append(sections, header)

	// Messages and sources
	messages := messagesAreaStyle.Width(contentWidth).Render(m.viewport.View())
	if sources := m.renderSources(contentWidth - 2); sources != "" {
		messages = lipgloss.JoinVertical(lipgloss.Left, messages, sources)
	}
	sections = append(sections, messages)

	// Status line
	if status := m.ctrl.Status(); status != "" {
		if m.ctrl.Sending() {
			sections = append(sections, statusLineStyle.Render(status))
		} else {
			sections = append(sections, statusErrorStyle.Render(status))
		}
	}

	// Input
	var inputContent string
	if m.ctrl.Sending() {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render(m.exportOpts.UserName),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	if m.notice != "" {
		if m.noticeIsError {
			sections = append(sections, errorStyle.PaddingLeft(1).Render(m.notice))
		} else {
			sections = append(sections, noticeStyle.Render(m.notice))
		}
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSources renders the source list of the most recent answer
func (m Model) renderSources(width int) string {
	sources := m.ctrl.Sources()
	if len(sources) == 0 {
		return ""
	}

	lines := []string{sourcesHeaderStyle.Render(fmt.Sprintf("Sources (%d)", len(sources)))}
	for i, s := range sources {
		if i == maxSourceLines {
			lines = append(lines, hintStyle.Render(fmt.Sprintf("  … %d more, /save to keep them all", len(sources)-maxSourceLines)))
			break
		}
		line := fmt.Sprintf("  %d. %s", i+1, sourceTitleStyle.Render(s.Title))
		if link := s.Link(); link != "" {
			line += "  " + sourceLinkStyle.Render(link)
		}
		lines = append(lines, line)
	}

	return sourcesPanelStyle.Width(width).Render(strings.Join(lines, "\n"))
}

// renderLoadingAnimation renders a colorful animated loading indicator
func (m Model) renderLoadingAnimation() string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinIdx := frame % len(chars)
	spinColor := gradientColors[frame%len(gradientColors)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 20
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" " + session.StatusThinking)

	return fmt.Sprintf("%s %s %s", spin, bar.String(), text)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+L", "Clear"},
		{"Ctrl+E", "Mail"},
		{"Ctrl+Y", "Copy"},
		{"Esc", "Quit"},
		{"/help", "Commands"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}
	opts := m.renderOpts.WithWidth(bubbleWidth - 4)

	for i, msg := range m.ctrl.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.Role == models.RoleUser {
			label := userLabelStyle.Render("⬤ " + m.exportOpts.UserName)
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Text)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("✦ " + m.exportOpts.BotName)
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(render.Answer(msg.Text, opts))
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// compactJSON flattens pretty-printed JSON onto one line for the notice area
func compactJSON(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RunChat starts the chat TUI
func RunChat(opts Options) error {
	p := tea.NewProgram(
		NewChatModel(opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
