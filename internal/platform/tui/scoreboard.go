package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/melee-gym/internal/storage"
)

// Episode browser layout constants
const (
	minWidthForSidebar = 100 // Minimum width to show environment sidebar
	sidebarWidth       = 22  // Width of environment sidebar
	maxEpisodes        = 200 // Max episodes to load
)

// EpisodeSource is the part of the store the browser reads.
type EpisodeSource interface {
	RecentEpisodes(environment string, limit int) ([]storage.Episode, error)
	GetAllEpisodeStats() (map[string]*storage.EpisodeStats, error)
}

// EpisodesModel is the Bubble Tea model for browsing recorded episodes.
type EpisodesModel struct {
	source      EpisodeSource
	envs        []string // environments with recorded episodes
	stats       map[string]*storage.EpisodeStats
	envCursor   int
	episodes    []storage.Episode
	err         error
	table       table.Model
	help        help.Model
	keys        EpisodesKeyMap
	width       int
	height      int
	quitting    bool
	showSidebar bool
}

// NewEpisodesModel creates a new episode browser.
func NewEpisodesModel(source EpisodeSource, width, height int) EpisodesModel {
	h := help.New()
	h.ShowAll = false

	m := EpisodesModel{
		source:      source,
		keys:        DefaultEpisodesKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.table = m.createTable()
	m.reload()
	return m
}

// createTable creates a new table sized for the current window.
func (m *EpisodesModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Started", Width: 14},
		{Title: "Outcome", Width: 10},
		{Title: "Frames", Width: 8},
		{Title: "Time", Width: 8},
		{Title: "Players", Width: 24},
	}

	tableWidth := m.width - 4 // Margins
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3 // Sidebar + border + gap
	}
	if rest := tableWidth - 14 - 10 - 8 - 8 - 10; rest > 24 {
		columns[4].Width = min(rest, 40)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(3, m.height-10)), // Leave room for header, stats, help and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// reload refreshes the environment list and the current environment's
// episodes.
func (m *EpisodesModel) reload() {
	m.err = nil
	if m.source == nil {
		m.envs, m.stats, m.episodes = nil, nil, nil
		m.updateTableRows()
		return
	}

	current := m.currentEnv()
	stats, err := m.source.GetAllEpisodeStats()
	if err != nil {
		m.err = err
		return
	}
	m.stats = stats
	m.envs = m.envs[:0]
	for env := range stats {
		m.envs = append(m.envs, env)
	}
	sort.Strings(m.envs)

	m.envCursor = 0
	for i, env := range m.envs {
		if env == current {
			m.envCursor = i
		}
	}
	m.loadEpisodes()
}

func (m EpisodesModel) currentEnv() string {
	if m.envCursor < 0 || m.envCursor >= len(m.envs) {
		return ""
	}
	return m.envs[m.envCursor]
}

// loadEpisodes loads episodes for the selected environment.
func (m *EpisodesModel) loadEpisodes() {
	env := m.currentEnv()
	if env == "" || m.source == nil {
		m.episodes = nil
		m.updateTableRows()
		return
	}

	episodes, err := m.source.RecentEpisodes(env, maxEpisodes)
	if err != nil {
		m.err = err
		m.episodes = nil
	} else {
		m.episodes = episodes
	}
	m.updateTableRows()
}

// updateTableRows updates the table with current episodes.
func (m *EpisodesModel) updateTableRows() {
	rows := make([]table.Row, len(m.episodes))
	for i, ep := range m.episodes {
		rows[i] = table.Row{
			ep.StartedAt.Local().Format("Jan 02 15:04"),
			ep.Outcome,
			fmt.Sprintf("%d", ep.MatchFrames),
			ep.Duration().Round(time.Second).String(),
			ep.Players,
		}
	}
	m.table.SetRows(rows)

	// Reset cursor to top
	m.table.GotoTop()
}

// Init initializes the episode browser.
func (m EpisodesModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the episode browser.
func (m EpisodesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Refresh):
			m.reload()
			return m, nil

		case key.Matches(msg, m.keys.NextEnv):
			if len(m.envs) > 0 {
				m.envCursor = (m.envCursor + 1) % len(m.envs)
				m.loadEpisodes()
			}
			return m, nil

		case key.Matches(msg, m.keys.PrevEnv):
			if len(m.envs) > 0 {
				m.envCursor--
				if m.envCursor < 0 {
					m.envCursor = len(m.envs) - 1
				}
				m.loadEpisodes()
			}
			return m, nil

		case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the episode browser.
func (m EpisodesModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	title := "EPISODES"
	if env := m.currentEnv(); env != "" {
		title = fmt.Sprintf("EPISODES - %s", env)
	}
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n\n")

	if m.showSidebar {
		sidebar := boxStyle.Width(sidebarWidth).Render(m.renderSidebar())
		content := boxStyle.Render(m.renderTableContent())
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, sidebar, "  ", content))
	} else {
		if len(m.envs) > 1 {
			b.WriteString(centerText(fmt.Sprintf("< %s >", m.currentEnv()), m.width))
			b.WriteString("\n\n")
		}
		b.WriteString(boxStyle.Render(m.renderTableContent()))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderStats renders the aggregate line for the selected environment.
func (m EpisodesModel) renderStats() string {
	st, ok := m.stats[m.currentEnv()]
	if !ok {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf(
		"%d episodes   %d completed   %d aborted   %d failed   avg %.0f frames",
		st.Episodes, st.Completed, st.Aborted, st.Failed, st.AvgMatchFrames,
	))
}

// renderSidebar renders the environment list.
func (m EpisodesModel) renderSidebar() string {
	var sidebar strings.Builder
	sidebar.WriteString("Environments\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")

	for i, env := range m.envs {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.envCursor {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}

		name := env
		maxLen := sidebarWidth - 6
		if len(name) > maxLen {
			name = name[:maxLen-1] + "."
		}
		sidebar.WriteString(style.Render(cursor + name))
		sidebar.WriteString("\n")
	}
	return strings.TrimRight(sidebar.String(), "\n")
}

// renderTableContent renders the table or empty message.
func (m EpisodesModel) renderTableContent() string {
	if len(m.episodes) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4)
		return emptyStyle.Render("No episodes recorded yet.\nRun 'meleegym run' to play one!")
	}

	return m.table.View()
}

// Episodes returns the episodes currently listed.
func (m EpisodesModel) Episodes() []storage.Episode {
	return m.episodes
}

// RunEpisodes runs the episode browser.
func RunEpisodes(source EpisodeSource, width, height int) error {
	p := tea.NewProgram(
		NewEpisodesModel(source, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
