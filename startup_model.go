package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/vorb/internal/audio"
)

type startupPhase uint8

const (
	phasePrompt startupPhase = iota
	phaseStarting
)

type startupResolvedMsg struct {
	stream audio.Stream
	err    error
}

// startupModel asks before touching the microphone, then opens the source
// and hands over to the orb model.
type startupModel struct {
	session *session
	phase   startupPhase
	width   int
	height  int
	spinner spinner.Model

	ctx    context.Context
	cancel context.CancelFunc
}

// newStartupModel skips the prompt when prompt is false.
func newStartupModel(s *session, prompt bool) startupModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0b6eea", Dark: "#7acbff"})

	ctx, cancel := context.WithCancel(context.Background())
	m := startupModel{
		session: s,
		phase:   phasePrompt,
		spinner: sp,
		ctx:     ctx,
		cancel:  cancel,
	}
	if !prompt {
		m.phase = phaseStarting
	}
	return m
}

func (m startupModel) Init() tea.Cmd {
	if m.phase == phaseStarting {
		return tea.Batch(m.spinner.Tick, m.openCmd())
	}
	return tea.SetWindowTitle("vorb")
}

func (m startupModel) openCmd() tea.Cmd {
	ctx, provider := m.ctx, m.session.provider
	return func() tea.Msg {
		stream, err := provider.Open(ctx)
		return startupResolvedMsg{stream: stream, err: err}
	}
}

func (m startupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.phase == phaseStarting {
			return m, cmd
		}
		return m, nil

	case startupResolvedMsg:
		m.session.driver.Activate(msg.stream, msg.err)

		model := m.session.model()
		cmds := []tea.Cmd{model.Init()}
		if m.width > 0 || m.height > 0 {
			w, h := m.width, m.height
			cmds = append(cmds, func() tea.Msg {
				return tea.WindowSizeMsg{Width: w, Height: h}
			})
		}
		return model, tea.Batch(cmds...)

	case tea.KeyMsg:
		if startupIsQuit(msg) {
			m.cancel()
			m.session.driver.Dispose()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		if m.phase == phasePrompt && startupIsStart(msg) {
			m.phase = phaseStarting
			return m, tea.Batch(m.spinner.Tick, m.openCmd())
		}
	}

	return m, nil
}

func (m startupModel) View() string {
	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(startupHeaderStyle.Render("vorb"))
	b.WriteString("\n\n  ")

	switch m.phase {
	case phasePrompt:
		b.WriteString(startupStatusStyle.Render("Press enter to enable microphone"))
		b.WriteString("\n\n  ")
		b.WriteString(startupHelpStyle.Render("enter start  q quit"))
	default:
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(startupStatusStyle.Render("Starting..."))
		b.WriteString("\n\n  ")
		b.WriteString(startupHelpStyle.Render("q quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func startupIsQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func startupIsStart(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "enter", " ":
		return true
	}
	return false
}

var (
	startupHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.AdaptiveColor{Light: "#0b6eea", Dark: "#7acbff"})
	startupStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BBBBBB"})
	startupHelpStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#999999", Dark: "#666666"})
)
