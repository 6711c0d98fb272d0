package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/vorb/internal/audio"
	"github.com/olivier-w/vorb/internal/driver"
)

type noticeMsg driver.Notice

// sourceOpenedMsg delivers the result of opening the audio provider.
type sourceOpenedMsg struct {
	stream audio.Stream
	err    error
}

// waitForNotice blocks on the driver's notice channel.
func waitForNotice(ch <-chan driver.Notice) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

// OpenSource opens p off the event loop.
func OpenSource(p audio.Provider) tea.Cmd {
	return func() tea.Msg {
		stream, err := p.Open(context.Background())
		return sourceOpenedMsg{stream: stream, err: err}
	}
}

// NoticeSink returns an OnNotice callback feeding ch without blocking.
func NoticeSink(ch chan<- driver.Notice) func(driver.Notice) {
	return func(n driver.Notice) {
		select {
		case ch <- n:
		default:
		}
	}
}
