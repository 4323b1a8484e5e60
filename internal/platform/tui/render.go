package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/melee-gym/internal/melee"
)

// portStyles gives each port the color of its in-game indicator.
var portStyles = map[melee.Port]lipgloss.Style{
	melee.Port1: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	melee.Port2: lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
	melee.Port3: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	melee.Port4: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			MarginBottom(1)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func portStyle(p melee.Port) lipgloss.Style {
	if s, ok := portStyles[p]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

// centerText pads text so it is centered in width columns.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}

// marker is one player drawn on the stage line.
type marker struct {
	port melee.Port
	x    float64
}

// renderStage draws the players on a one-line stage of the given width.
// Positions are scaled so the farthest player stays on screen.
func renderStage(markers []marker, width int) string {
	if width < 3 {
		width = 3
	}
	scale := 100.0
	for _, m := range markers {
		scale = math.Max(scale, math.Abs(m.x))
	}

	cells := make([]string, width)
	for i := range cells {
		cells[i] = dimStyle.Render("─")
	}
	for _, m := range markers {
		col := int(math.Round((m.x/scale + 1) / 2 * float64(width-1)))
		col = max(0, min(width-1, col))
		cells[col] = portStyle(m.port).Render(string(rune('0' + int(m.port))))
	}
	return strings.Join(cells, "")
}
