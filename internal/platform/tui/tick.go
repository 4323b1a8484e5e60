// Package tui provides the Bubble Tea views for the environment: a live
// monitor that drives a session with an agent, and a browser for recorded
// episodes.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultTickRate matches the console's 60 frames per second.
const DefaultTickRate = 60

// TickMsg is sent to trigger one environment step.
type TickMsg time.Time

// tickCmd returns a Bubble Tea command that sends tick messages at the specified rate.
func tickCmd(tickRate int) tea.Cmd {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
