package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/vorb/internal/driver"
	"github.com/olivier-w/vorb/internal/orb"
)

type stubRenderer struct {
	applied  int
	sizes    [][2]int
	disposed int
}

func (r *stubRenderer) Apply(orb.RenderParameters) { r.applied++ }
func (r *stubRenderer) SetSize(w, h int)           { r.sizes = append(r.sizes, [2]int{w, h}) }
func (r *stubRenderer) Dispose() error {
	r.disposed++
	return nil
}
func (r *stubRenderer) View() string { return "ORB" }

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time {
	c.now = c.now.Add(time.Second / 30)
	return c.now
}

func newTestModel(t *testing.T) (Model, *stubRenderer, chan driver.Notice) {
	t.Helper()
	r := &stubRenderer{}
	sched := NewScheduler(30)
	notices := make(chan driver.Notice, 4)
	d := driver.New(r, driver.Options{
		Scheduler: sched,
		Clock:     &stepClock{now: time.Unix(0, 0)},
		OnNotice:  NoticeSink(notices),
	})
	m := New(Config{Driver: d, Scene: r, Scheduler: sched, Notices: notices, FPS: 30})
	return m, r, notices
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestSourceFailureShowsNoticeAndAnimates(t *testing.T) {
	m, r, notices := newTestModel(t)

	m, cmd := update(t, m, sourceOpenedMsg{err: errors.New("permission denied")})
	if cmd == nil {
		t.Fatal("expected a frame tick after activation")
	}
	if !m.driver.Running() || m.driver.Mode() != driver.ModeSynthetic {
		t.Fatalf("running=%v mode=%v, want running synthetic", m.driver.Running(), m.driver.Mode())
	}

	select {
	case n := <-notices:
		m, _ = update(t, m, noticeMsg(n))
	default:
		t.Fatal("no notice emitted")
	}
	if !strings.Contains(m.View(), "Microphone access failed") {
		t.Fatalf("view missing notice:\n%s", m.View())
	}

	for range 3 {
		m, _ = update(t, m, frameMsg{id: m.sched.pending})
	}
	if r.applied != 3 {
		t.Fatalf("applied = %d, want 3", r.applied)
	}
}

func TestStaleFrameIsIgnored(t *testing.T) {
	m, r, _ := newTestModel(t)
	m, _ = update(t, m, sourceOpenedMsg{err: errors.New("no device")})
	stale := m.sched.pending

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if m.driver.Running() {
		t.Fatal("space did not stop the orb")
	}
	m, cmd := update(t, m, frameMsg{id: stale})
	if cmd != nil || r.applied != 0 {
		t.Fatalf("stale frame produced work: cmd=%v applied=%d", cmd != nil, r.applied)
	}
}

func TestToggleRestartsThroughProvider(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if cmd == nil || !m.starting {
		t.Fatal("space on a stopped orb should open the source")
	}
	if !strings.Contains(m.View(), "Starting...") {
		t.Fatal("view should say Starting... while the source opens")
	}

	msg := cmd()
	opened, ok := msg.(sourceOpenedMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want sourceOpenedMsg", msg)
	}
	m, _ = update(t, m, opened)
	if m.starting || !m.driver.Running() {
		t.Fatal("orb did not start after the source resolved")
	}
}

func TestWindowSizeReservesHUD(t *testing.T) {
	m, r, _ := newTestModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if len(r.sizes) != 1 || r.sizes[0] != [2]int{80, 24 - hudRows} {
		t.Fatalf("sizes = %v, want [[80 %d]]", r.sizes, 24-hudRows)
	}
	if got := strings.Count(m.View(), "\n"); got != hudRows {
		t.Fatalf("view has %d newlines after the orb, want %d", got, hudRows)
	}
}

func TestQuitDisposes(t *testing.T) {
	m, r, _ := newTestModel(t)
	m, _ = update(t, m, sourceOpenedMsg{err: errors.New("no device")})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if r.disposed != 1 || !m.driver.Disposed() {
		t.Fatalf("disposed = %d, want 1", r.disposed)
	}
	if m.View() != "" {
		t.Fatal("view should be empty after quit")
	}

	// a source resolving after quit is closed, not activated
	m, _ = update(t, m, sourceOpenedMsg{})
	if m.driver.Running() {
		t.Fatal("driver restarted after quit")
	}
}
