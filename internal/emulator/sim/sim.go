// Package sim implements a deterministic in-process console.
//
// The simulated console walks the same menu sequence as the real game
// (main menu, character select, stage select, match, postgame scores) and
// plays a very small one-dimensional match: the main stick moves, A hits an
// opponent in front, too much damage or leaving the blast zone costs a
// stock. CPU ports move on their own. All randomness comes from the seed in
// emulator.Options, so two consoles fed the same inputs produce the same
// frames.
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"

	"github.com/vovakirdan/melee-gym/internal/emulator"
	"github.com/vovakirdan/melee-gym/internal/melee"
)

// Default match settings.
const (
	DefaultStocks    = 4
	DefaultTimeLimit = 8 * 60 * 60 // 8 minutes at 60fps
)

// ErrNotRunning is returned when stepping a console that was never started
// or has been stopped.
var ErrNotRunning = errors.New("sim: console not running")

func init() {
	emulator.Register("sim", "Deterministic in-process simulator", func(opts emulator.Options) (emulator.Console, error) {
		return New(opts)
	})
}

// slot is one port's menu selection and in-match state.
type slot struct {
	selection melee.Selection
	costume   int
	chosen    bool
	state     melee.PlayerState

	// cpu wander target, re-rolled periodically
	cpuTarget float64
}

// Console is a simulated emulator process.
type Console struct {
	opts      emulator.Options
	stocks    int
	timeLimit int64
	rng       *rand.Rand

	running   bool
	connected bool
	runs      int

	frame      int64
	matchFrame int64
	menu       melee.Menu
	next       melee.Menu // transition applied on the next frame, MenuUnknown for none
	stage      melee.Stage

	slots       map[melee.Port]*slot
	controllers map[melee.Port]*Controller
}

// Option configures a simulated console.
type Option func(*Console)

// WithStocks sets the number of stocks each player starts a match with.
func WithStocks(n int) Option {
	return func(c *Console) {
		if n > 0 {
			c.stocks = n
		}
	}
}

// WithTimeLimit sets the match length in frames.
func WithTimeLimit(frames int64) Option {
	return func(c *Console) {
		if frames > 0 {
			c.timeLimit = frames
		}
	}
}

// New creates a stopped console.
func New(opts emulator.Options, options ...Option) (*Console, error) {
	if opts.OnlineDelay < 0 {
		return nil, fmt.Errorf("sim: negative online delay %d", opts.OnlineDelay)
	}
	c := &Console{
		opts:        opts,
		stocks:      DefaultStocks,
		timeLimit:   DefaultTimeLimit,
		rng:         rand.New(rand.NewSource(opts.Seed)),
		slots:       make(map[melee.Port]*slot),
		controllers: make(map[melee.Port]*Controller),
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// Run boots the console into the main menu. The ISO path is not read.
func (c *Console) Run(ctx context.Context, opts emulator.RunOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.running {
		return errors.New("sim: console already running")
	}

	c.running = true
	c.connected = false
	c.runs++
	c.frame = 0
	c.matchFrame = 0
	c.menu = melee.MenuMain
	c.next = melee.MenuUnknown
	c.stage = melee.StageFinalDestination
	clear(c.slots)
	return nil
}

// Connect attaches to the running console.
func (c *Console) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.running {
		return fmt.Errorf("%w: %w", emulator.ErrConnect, ErrNotRunning)
	}
	c.connected = true
	return nil
}

// Stop shuts the console down and unplugs every controller.
func (c *Console) Stop() error {
	c.running = false
	c.connected = false
	for _, ctrl := range c.controllers {
		ctrl.connected = false
		ctrl.neutral()
	}
	return nil
}

// Running reports whether the console has been started and not stopped.
func (c *Console) Running() bool {
	return c.running
}

// Runs returns how many times the console has been started.
func (c *Console) Runs() int {
	return c.runs
}

// Controller creates the virtual controller for port, replacing any
// previous one.
func (c *Console) Controller(port melee.Port, typ melee.ControllerType) emulator.Controller {
	ctrl := newController(c, port, typ)
	c.controllers[port] = ctrl
	return ctrl
}

// Navigate moves the menus one step towards a match for ctrl's port.
func (c *Console) Navigate(gs *melee.GameState, ctrl emulator.Controller, req emulator.MenuRequest) error {
	if gs == nil {
		return errors.New("sim: navigate without a snapshot")
	}
	own, ok := ctrl.(*Controller)
	if !ok || own.console != c {
		return errors.New("sim: controller does not belong to this console")
	}
	if !own.connected {
		return fmt.Errorf("sim: controller on port %d is not connected", own.port)
	}
	if req.ConnectCode != "" {
		return fmt.Errorf("sim: online play is not supported (connect code %q)", req.ConnectCode)
	}

	switch gs.Menu {
	case melee.MenuMain:
		c.next = melee.MenuCharacterSelect

	case melee.MenuCharacterSelect:
		s := c.slot(own.port)
		s.selection = req.Selection
		s.costume = req.Costume
		s.chosen = true
		if req.Autostart && c.allChosen() {
			c.next = melee.MenuStageSelect
		}

	case melee.MenuStageSelect:
		stage := req.Stage
		if stage == melee.StageRandom {
			stage = melee.Stage(c.rng.Intn(int(melee.StageRandom)))
		}
		c.stage = stage
		c.next = melee.MenuInGame

	case melee.MenuPostgameScores:
		// pressing start leaves the results screen
		c.next = melee.MenuCharacterSelect
	}
	return nil
}

func (c *Console) slot(port melee.Port) *slot {
	s, ok := c.slots[port]
	if !ok {
		s = &slot{}
		c.slots[port] = s
	}
	return s
}

// allChosen reports whether every connected controller has picked a
// character.
func (c *Console) allChosen() bool {
	found := false
	for port, ctrl := range c.controllers {
		if !ctrl.connected {
			continue
		}
		s, ok := c.slots[port]
		if !ok || !s.chosen {
			return false
		}
		found = true
	}
	return found
}

// Step advances one frame.
func (c *Console) Step(ctx context.Context) (*melee.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !c.running {
		return nil, ErrNotRunning
	}
	if !c.connected {
		return nil, errors.New("sim: console not connected")
	}

	c.frame++
	if c.next != melee.MenuUnknown {
		c.enter(c.next)
		c.next = melee.MenuUnknown
	}

	if c.menu.InMatch() {
		c.simulate()
	}
	return c.snapshot(), nil
}

// enter switches menus and sets up whatever the new menu needs.
func (c *Console) enter(m melee.Menu) {
	c.menu = m
	switch m {
	case melee.MenuCharacterSelect:
		for _, s := range c.slots {
			s.chosen = false
		}
	case melee.MenuInGame:
		c.startMatch()
	}
}

// snapshot copies the current state.
func (c *Console) snapshot() *melee.GameState {
	gs := &melee.GameState{
		Frame:   c.frame,
		Menu:    c.menu,
		Stage:   c.stage,
		Players: make(map[melee.Port]melee.PlayerState, len(c.slots)),
	}
	for port, s := range c.slots {
		ps := s.state
		ps.Character = s.selection.Character
		ps.CPULevel = s.selection.CPULevel
		gs.Players[port] = ps
	}
	return gs
}

// ports returns the ports in the current match in ascending order.
func (c *Console) ports() []melee.Port {
	ports := make([]melee.Port, 0, len(c.slots))
	for port := range c.slots {
		ports = append(ports, port)
	}
	slices.Sort(ports)
	return ports
}
