package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/melee-gym/internal/agent"
	"github.com/vovakirdan/melee-gym/internal/embed"
	"github.com/vovakirdan/melee-gym/internal/gym"
	"github.com/vovakirdan/melee-gym/internal/melee"
)

// how many finished episodes the monitor lists
const historySize = 8

// resetMsg carries the result of a Reset run off the UI goroutine, along
// with the session state read on that goroutine once Reset returned.
type resetMsg struct {
	obs     embed.Observation
	phase   gym.Phase
	episode string
	err     error
}

// EpisodeSummary is one finished episode as shown by the monitor.
type EpisodeSummary struct {
	Episode string
	Frames  int
}

// Monitor is the Bubble Tea model that plays episodes on a ticker and
// shows the live state.
//
// Reset runs as a command, so it happens off the UI goroutine; no tick is
// scheduled while it runs. View renders only the monitor's own fields and
// never reads the session.
type Monitor struct {
	ctx    context.Context
	cancel context.CancelFunc
	env    *gym.Env
	agent  agent.Agent
	ports  []melee.Port

	target   int // episodes to play, 0 = unlimited
	tickRate int

	obs       embed.Observation
	last      gym.Info
	phase     gym.Phase
	frames    int
	history   []EpisodeSummary
	completed int
	resetting bool
	paused    bool
	finished  bool
	quitting  bool
	err       error

	keys   MonitorKeyMap
	help   help.Model
	width  int
	height int
}

// NewMonitor creates a monitor that plays the given number of episodes on
// env with a. Zero means until the user quits.
func NewMonitor(ctx context.Context, env *gym.Env, a agent.Agent, episodes, tickRate int) Monitor {
	ctx, cancel := context.WithCancel(ctx)
	return Monitor{
		ctx:       ctx,
		cancel:    cancel,
		env:       env,
		agent:     a,
		ports:     env.Ports(),
		target:    episodes,
		tickRate:  tickRate,
		resetting: true, // Init always starts with a reset
		keys:      DefaultMonitorKeyMap(),
		help:      help.New(),
		width:     80,
		height:    24,
	}
}

// Init starts the first episode.
func (m Monitor) Init() tea.Cmd {
	return m.resetCmd()
}

func (m *Monitor) resetCmd() tea.Cmd {
	m.resetting = true
	env, ctx := m.env, m.ctx
	return func() tea.Msg {
		obs, err := env.Reset(ctx)
		return resetMsg{obs: obs, phase: env.Phase(), episode: env.Episode(), err: err}
	}
}

// Update handles messages and advances the session.
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case resetMsg:
		return m.handleReset(msg)

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

func (m Monitor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.cancel()
		if m.resetting {
			// wait for the reset to notice the cancellation
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Pause):
		m.paused = !m.paused
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m Monitor) handleReset(msg resetMsg) (tea.Model, tea.Cmd) {
	m.resetting = false
	m.phase = msg.phase
	if m.quitting {
		return m, tea.Quit
	}
	if msg.err != nil {
		m.err = msg.err
		return m, tea.Quit
	}

	m.obs = msg.obs
	m.frames = 0
	m.last = gym.Info{Episode: msg.episode}
	return m, tickCmd(m.tickRate)
}

func (m Monitor) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting || m.resetting || m.finished {
		return m, nil
	}
	if m.paused {
		return m, tickCmd(m.tickRate)
	}

	res, err := m.env.Step(m.ctx, m.agent.Act(m.obs, m.ports))
	m.phase = m.env.Phase()
	if err != nil {
		m.err = err
		return m, tea.Quit
	}
	m.frames++
	m.last = res.Info

	if !res.Done {
		m.obs = res.Observation
		return m, tickCmd(m.tickRate)
	}

	m.completed++
	m.history = append(m.history, EpisodeSummary{Episode: res.Info.Episode, Frames: m.frames})
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
	if m.target > 0 && m.completed >= m.target {
		m.finished = true
		return m, tea.Quit
	}
	cmd := m.resetCmd()
	return m, cmd
}

// View renders the monitor.
func (m Monitor) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(centerText("MELEE GYM", m.width)))
	b.WriteString("\n")

	target := "∞"
	if m.target > 0 {
		target = fmt.Sprintf("%d", m.target)
	}
	phase := m.phase.String()
	if m.resetting {
		phase = "resetting"
	}
	status := fmt.Sprintf("episode %d/%s   phase %s   frame %d   menu %s",
		m.completed+1, target, phase, m.last.Frame, m.last.Menu)
	if m.paused {
		status += "   [paused]"
	}
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("id " + m.last.Episode))
	b.WriteString("\n\n")

	if m.resetting {
		b.WriteString(dimStyle.Render("navigating menus..."))
		b.WriteString("\n")
	} else {
		b.WriteString(boxStyle.Render(m.renderPlayers()))
		b.WriteString("\n")
	}

	if len(m.history) > 0 {
		b.WriteString("\nfinished\n")
		for _, h := range m.history {
			fmt.Fprintf(&b, "  %s  %6d frames\n", dimStyle.Render(h.Episode), h.Frames)
		}
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// renderPlayers shows the stage line and one row per port. Only Flat
// observations can be decoded; anything else is shown by type.
func (m Monitor) renderPlayers() string {
	v, ok := m.obs.(embed.Vector)
	if !ok {
		return fmt.Sprintf("observation: %T", m.obs)
	}

	var b strings.Builder
	markers := make([]marker, 0, len(v.Ports))
	for i, port := range v.Ports {
		f := v.Player(i)
		markers = append(markers, marker{port: port, x: float64(f[0])})
	}
	b.WriteString(renderStage(markers, max(20, min(m.width-8, 72))))
	b.WriteString("\n\n")

	for i, port := range v.Ports {
		f := v.Player(i)
		fmt.Fprintf(&b, "%s  stock %d  %5.0f%%  x %7.1f  y %5.1f\n",
			portStyle(port).Render(fmt.Sprintf("P%d", port)),
			int(f[3]), f[2]*100, f[0], f[1])
	}
	return strings.TrimRight(b.String(), "\n")
}

// Completed returns the number of episodes that ran to the end.
func (m Monitor) Completed() int {
	return m.completed
}

// Err returns the error that stopped the monitor, if any.
func (m Monitor) Err() error {
	return m.err
}

// RunMonitor plays episodes in a full-screen monitor and returns how many
// completed.
func RunMonitor(ctx context.Context, env *gym.Env, a agent.Agent, episodes, tickRate int) (int, error) {
	model := NewMonitor(ctx, env, a, episodes, tickRate)
	defer model.cancel()

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return 0, err
	}

	m, ok := finalModel.(Monitor)
	if !ok {
		return 0, nil
	}
	return m.Completed(), m.Err()
}
