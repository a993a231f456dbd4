// Package tui is the Bubbletea front-end of the viewer: an image pane,
// a status bar, an optional properties sidebar, and a notice overlay.
// It polls the loader worker on a fixed tick and never blocks.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RepaintMsg is sent from outside the update loop (the loader worker's
// repaint callback) to wake the UI when a response is ready.
type RepaintMsg struct{}

// TickMsg drives response draining, animation and the slideshow clock.
type TickMsg struct {
	Time time.Time
}

// tickInterval balances animation smoothness against idle wakeups.
const tickInterval = 50 * time.Millisecond

// tickCmd schedules the next TickMsg.
func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
