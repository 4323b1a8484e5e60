package sim

import (
	"context"
	"fmt"

	"github.com/vovakirdan/melee-gym/internal/emulator"
	"github.com/vovakirdan/melee-gym/internal/melee"
)

// Controller is a virtual controller plugged into a simulated console.
type Controller struct {
	console   *Console
	port      melee.Port
	typ       melee.ControllerType
	connected bool

	buttons  map[melee.Button]bool
	mainX    float64
	mainY    float64
	cX       float64
	cY       float64
	shoulder map[melee.Button]float64

	// previous frame's A, for edge detection
	lastA bool
}

func newController(c *Console, port melee.Port, typ melee.ControllerType) *Controller {
	ctrl := &Controller{
		console:  c,
		port:     port,
		typ:      typ,
		buttons:  make(map[melee.Button]bool),
		shoulder: make(map[melee.Button]float64),
	}
	ctrl.neutral()
	return ctrl
}

func (c *Controller) neutral() {
	clear(c.buttons)
	clear(c.shoulder)
	c.mainX, c.mainY = 0.5, 0.5
	c.cX, c.cY = 0.5, 0.5
	c.lastA = false
}

// Port implements emulator.Controller.
func (c *Controller) Port() melee.Port {
	return c.port
}

// Connect plugs the controller in. The console must be running, and the
// simulator has no adapter for physical controllers.
func (c *Controller) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.console.running {
		return fmt.Errorf("%w: sim: console not running", emulator.ErrConnect)
	}
	if c.typ != melee.ControllerStandard {
		return fmt.Errorf("%w: sim: unsupported controller type %s", emulator.ErrConnect, c.typ)
	}
	c.connected = true
	c.neutral()
	return nil
}

// Disconnect unplugs the controller.
func (c *Controller) Disconnect() error {
	c.connected = false
	c.neutral()
	return nil
}

// Connected reports whether the controller is plugged in.
func (c *Controller) Connected() bool {
	return c.connected
}

func (c *Controller) check() error {
	if !c.connected {
		return fmt.Errorf("sim: controller on port %d is not connected", c.port)
	}
	return nil
}

// PressButton implements emulator.Controller.
func (c *Controller) PressButton(b melee.Button) error {
	if err := c.check(); err != nil {
		return err
	}
	c.buttons[b] = true
	return nil
}

// ReleaseButton implements emulator.Controller.
func (c *Controller) ReleaseButton(b melee.Button) error {
	if err := c.check(); err != nil {
		return err
	}
	c.buttons[b] = false
	return nil
}

// TiltAnalog implements emulator.Controller.
func (c *Controller) TiltAnalog(b melee.Button, x, y float64) error {
	if err := c.check(); err != nil {
		return err
	}
	switch b {
	case melee.ButtonMain:
		c.mainX, c.mainY = x, y
	case melee.ButtonC:
		c.cX, c.cY = x, y
	default:
		return fmt.Errorf("sim: %s is not an analog stick", b)
	}
	return nil
}

// PressShoulder implements emulator.Controller.
func (c *Controller) PressShoulder(b melee.Button, amount float64) error {
	if err := c.check(); err != nil {
		return err
	}
	if b != melee.ButtonL && b != melee.ButtonR {
		return fmt.Errorf("sim: %s is not a shoulder", b)
	}
	c.shoulder[b] = amount
	return nil
}

// attackPressed reports a fresh A press and remembers the current state.
func (c *Controller) attackPressed() bool {
	down := c.buttons[melee.ButtonA]
	fresh := down && !c.lastA
	c.lastA = down
	return fresh
}

var _ emulator.Controller = (*Controller)(nil)
