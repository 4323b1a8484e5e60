// Package emulator defines the boundary between the environment and the
// external emulator: process start/stop, frame stepping, per-port
// controllers and the menu-navigation assist.
//
// Concrete backends live in sub-packages and register themselves in init()
// functions, so the command line can pick one by name without hardcoded
// dependencies.
package emulator

import (
	"context"
	"errors"

	"github.com/vovakirdan/melee-gym/internal/melee"
)

// ErrConnect is wrapped by every process or controller connection failure.
var ErrConnect = errors.New("emulator: connection failed")

// RunOptions are the per-launch process parameters.
type RunOptions struct {
	ISOPath string
	EnvVars []string // KEY=VALUE pairs added to the process environment
}

// MenuRequest is one menu-navigation assist request for one controller.
type MenuRequest struct {
	Stage       melee.Stage
	ConnectCode string // empty for local play
	Autostart   bool
	Swag        bool
	Costume     int
	Selection   melee.Selection
}

// Console is an emulator process handle.
//
// Step blocks until the console produces the next frame. A nil state with a
// nil error means no frame was available, which callers treat as a broken
// synchrony assumption.
type Console interface {
	// Run starts the emulator process.
	Run(ctx context.Context, opts RunOptions) error

	// Connect attaches to the running process.
	Connect(ctx context.Context) error

	// Step advances exactly one frame and returns its snapshot.
	Step(ctx context.Context) (*melee.GameState, error)

	// Stop terminates the process. Safe to call when nothing is running.
	Stop() error

	// Controller creates the input channel for one port.
	Controller(port melee.Port, typ melee.ControllerType) Controller

	// Navigate issues one menu-navigation assist request. It is called at
	// most once per controller per frame.
	Navigate(gs *melee.GameState, ctrl Controller, req MenuRequest) error
}

// Controller is the input channel bound to one console port.
type Controller interface {
	Port() melee.Port
	Connect(ctx context.Context) error
	Disconnect() error

	PressButton(b melee.Button) error
	ReleaseButton(b melee.Button) error

	// TiltAnalog sets an analog stick (ButtonMain or ButtonC). Coordinates
	// are in [0, 1] with 0.5 as neutral.
	TiltAnalog(b melee.Button, x, y float64) error

	// PressShoulder sets an analog shoulder (ButtonL or ButtonR) in [0, 1].
	PressShoulder(b melee.Button, amount float64) error
}
