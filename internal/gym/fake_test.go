package gym

import (
	"context"
	"errors"

	"github.com/vovakirdan/melee-gym/internal/emulator"
	"github.com/vovakirdan/melee-gym/internal/melee"
)

// navCall is one recorded menu-navigation request.
type navCall struct {
	frame int64 // frame of the snapshot the request was made against
	port  melee.Port
	req   emulator.MenuRequest
}

// fakeConsole is a scripted console. Menus last until a controller sends
// an autostart request; the match lasts until endAt.
type fakeConsole struct {
	frame   int64
	menu    melee.Menu
	running bool

	runErr     error
	connectErr error
	stepErr    error
	nilAt      int64 // return no snapshot on this frame
	endAt      int64 // leave gameplay on this frame

	onNavigate   func(n int) // called with the number of requests so far
	pendingStart bool
	log          []string
	navs         []navCall
	runs         []emulator.RunOptions
	controllers  map[melee.Port]*fakeController
}

func newFakeConsole() *fakeConsole {
	return &fakeConsole{controllers: make(map[melee.Port]*fakeController)}
}

func (c *fakeConsole) Run(ctx context.Context, opts emulator.RunOptions) error {
	c.log = append(c.log, "run")
	if c.runErr != nil {
		return c.runErr
	}
	c.runs = append(c.runs, opts)
	c.running = true
	c.frame = 0
	c.menu = melee.MenuCharacterSelect
	c.pendingStart = false
	return nil
}

func (c *fakeConsole) Connect(ctx context.Context) error {
	c.log = append(c.log, "connect")
	return c.connectErr
}

func (c *fakeConsole) Step(ctx context.Context) (*melee.GameState, error) {
	if c.stepErr != nil {
		return nil, c.stepErr
	}
	c.frame++
	if c.frame == c.nilAt {
		return nil, nil
	}

	if c.pendingStart {
		c.menu = melee.MenuInGame
		c.pendingStart = false
	}
	if c.endAt > 0 && c.frame >= c.endAt && c.menu.InMatch() {
		c.menu = melee.MenuPostgameScores
	}

	return &melee.GameState{
		Frame: c.frame,
		Menu:  c.menu,
		Stage: melee.StageFinalDestination,
		Players: map[melee.Port]melee.PlayerState{
			melee.Port1: {Stock: 4},
			melee.Port2: {Stock: 4},
		},
	}, nil
}

func (c *fakeConsole) Stop() error {
	c.log = append(c.log, "stop")
	c.running = false
	return nil
}

func (c *fakeConsole) Controller(port melee.Port, typ melee.ControllerType) emulator.Controller {
	ctrl := &fakeController{port: port, typ: typ}
	c.controllers[port] = ctrl
	return ctrl
}

func (c *fakeConsole) Navigate(gs *melee.GameState, ctrl emulator.Controller, req emulator.MenuRequest) error {
	c.navs = append(c.navs, navCall{frame: gs.Frame, port: ctrl.Port(), req: req})
	if c.onNavigate != nil {
		c.onNavigate(len(c.navs))
	}
	if req.Autostart && c.menu == melee.MenuCharacterSelect {
		c.pendingStart = true
	}
	return nil
}

// fakeController counts the calls it receives.
type fakeController struct {
	port       melee.Port
	typ        melee.ControllerType
	connectErr error
	tiltErr    error

	connects    int
	disconnects int
	pressed     map[melee.Button]bool
	tilts       int
	shoulders   int
}

func (f *fakeController) Port() melee.Port { return f.port }

func (f *fakeController) Connect(ctx context.Context) error {
	f.connects++
	return f.connectErr
}

func (f *fakeController) Disconnect() error {
	f.disconnects++
	return nil
}

func (f *fakeController) PressButton(b melee.Button) error {
	if f.pressed == nil {
		f.pressed = make(map[melee.Button]bool)
	}
	f.pressed[b] = true
	return nil
}

func (f *fakeController) ReleaseButton(b melee.Button) error {
	if f.pressed == nil {
		f.pressed = make(map[melee.Button]bool)
	}
	f.pressed[b] = false
	return nil
}

func (f *fakeController) TiltAnalog(b melee.Button, x, y float64) error {
	if f.tiltErr != nil {
		return f.tiltErr
	}
	f.tilts++
	return nil
}

func (f *fakeController) PressShoulder(b melee.Button, v float64) error {
	f.shoulders++
	return nil
}

// memRecorder keeps episode records in memory.
type memRecorder struct {
	records []EpisodeRecord
	err     error
}

func (m *memRecorder) RecordEpisode(rec EpisodeRecord) error {
	m.records = append(m.records, rec)
	return m.err
}

var errBoom = errors.New("boom")
