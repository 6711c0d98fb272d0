package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func isToggle(msg tea.KeyMsg) bool {
	switch msg.String() {
	case " ", "enter":
		return true
	}
	return false
}

func helpText(running bool) string {
	if running {
		return "space stop  q quit"
	}
	return "space start  q quit"
}
