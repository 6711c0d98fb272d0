package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/vorb/internal/audio"
	"github.com/olivier-w/vorb/internal/driver"
	"github.com/olivier-w/vorb/internal/orb"
	"github.com/olivier-w/vorb/internal/util"
)

// hudRows is how many terminal rows the status area below the orb takes.
const hudRows = 4

// View is what the model draws the orb from.
type View interface {
	View() string
}

// Config wires a Model to a driver that has already been built.
type Config struct {
	Driver    *driver.Driver
	Scene     View
	Scheduler *Scheduler
	Provider  audio.Provider
	Notices   <-chan driver.Notice
	FPS       int
}

// Model is the Bubbletea model for the orb TUI.
type Model struct {
	driver   *driver.Driver
	scene    View
	sched    *Scheduler
	provider audio.Provider
	notices  <-chan driver.Notice

	meters meters
	bar    progress.Model

	width, height int
	notice        string
	starting      bool
	quitting      bool
}

// New creates a Model. The driver may already be running.
func New(cfg Config) Model {
	bar := progress.New(
		progress.WithScaledGradient("#0b6eea", "#7acbff"),
		progress.WithoutPercentage(),
	)
	bar.Width = 12
	provider := cfg.Provider
	if provider == nil {
		provider = audio.NoneProvider{}
	}
	return Model{
		driver:   cfg.Driver,
		scene:    cfg.Scene,
		sched:    cfg.Scheduler,
		provider: provider,
		notices:  cfg.Notices,
		meters:   newMeters(cfg.FPS),
		bar:      bar,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.sched.Cmd(), waitForNotice(m.notices), tea.SetWindowTitle("vorb"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			m.driver.Dispose()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		if isToggle(msg) {
			return m.toggle()
		}
		return m, nil

	case sourceOpenedMsg:
		m.starting = false
		if m.quitting || m.driver.Disposed() {
			if msg.stream != nil {
				msg.stream.Close()
			}
			return m, nil
		}
		m.notice = ""
		m.meters.reset()
		m.driver.Activate(msg.stream, msg.err)
		return m, m.sched.Cmd()

	case frameMsg:
		if !m.sched.fire(msg.id) {
			return m, nil
		}
		f := m.driver.Features()
		m.meters.step(meterAmplitude, f.Amplitude*4)
		m.meters.step(meterBass, f.BassEnergy)
		m.meters.step(meterTilt, (f.SpectralTilt+1)/2)
		return m, m.sched.Cmd()

	case noticeMsg:
		m.notice = msg.Message
		return m, waitForNotice(m.notices)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.driver.Resize(msg.Width, max(msg.Height-hudRows, 1))
		return m, nil
	}

	return m, nil
}

// toggle stops a running orb or opens the source again for a stopped one.
func (m Model) toggle() (tea.Model, tea.Cmd) {
	if m.starting || m.driver.Disposed() {
		return m, nil
	}
	if m.driver.Running() {
		m.driver.Stop()
		return m, nil
	}
	m.starting = true
	return m, OpenSource(m.provider)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	if m.scene != nil {
		b.WriteString(m.scene.View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.meterLine())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString("  " + noticeStyle.Render(m.notice))
	}
	b.WriteString("\n")
	b.WriteString("  " + helpStyle.Render(helpText(m.driver.Running())))
	return b.String()
}

func (m Model) statusLine() string {
	if m.starting {
		return "  " + headerStyle.Render("vorb") + "  " + labelStyle.Render("Starting...")
	}
	if !m.driver.Running() {
		return "  " + headerStyle.Render("vorb") + "  " + labelStyle.Render("stopped")
	}

	source := "no audio"
	if m.driver.Mode() == driver.ModeLive {
		source = m.driver.Label()
	}
	var uptime string
	if p, ok := m.driver.Last(); ok {
		uptime = util.FormatDuration(util.Seconds(p.Elapsed))
	}
	return fmt.Sprintf("  %s  %s  %s  %s",
		headerStyle.Render("vorb"),
		stateStyle.Render(stateIcon(m.driver.State())+" "+m.driver.State().String()),
		labelStyle.Render(source),
		timeStyle.Render(uptime),
	)
}

func (m Model) meterLine() string {
	return fmt.Sprintf("  %s %s  %s %s  %s %s",
		labelStyle.Render("amp"), m.bar.ViewAs(m.meters.value(meterAmplitude)),
		labelStyle.Render("bass"), m.bar.ViewAs(m.meters.value(meterBass)),
		labelStyle.Render("tilt"), m.bar.ViewAs(m.meters.value(meterTilt)),
	)
}

func stateIcon(s orb.State) string {
	switch s {
	case orb.Speaking:
		return "◉"
	case orb.Listening:
		return "◎"
	}
	return "○"
}
