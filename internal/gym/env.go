// Package gym wraps an emulator console as a reinforcement-learning
// environment: Reset drives the pre-match menus until gameplay starts,
// Step sends one action per port and advances exactly one frame, Close
// releases the emulator process.
//
// An Env is single-threaded. Every call blocks until the console has
// produced the frame it asked for, and no call may overlap another.
package gym

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/melee-gym/internal/config"
	"github.com/vovakirdan/melee-gym/internal/embed"
	"github.com/vovakirdan/melee-gym/internal/emulator"
	"github.com/vovakirdan/melee-gym/internal/melee"
	"github.com/vovakirdan/melee-gym/internal/pad"
	"github.com/vovakirdan/melee-gym/internal/player"
)

// AutostartSettleFrames is the number of menu frames that must elapse
// before the first controller may start the match. Starting earlier can
// beat the other controllers to their character selection.
const AutostartSettleFrames = 180

// frames slower than this are logged
const slowFrameThreshold = 12 * time.Millisecond

var (
	// ErrMissingFrame means the console returned no snapshot for a frame it
	// was asked to produce. The session is unusable afterwards.
	ErrMissingFrame = errors.New("gym: console produced no frame")

	// ErrMissingAction means Step was called without a signal for every
	// configured port.
	ErrMissingAction = errors.New("gym: no action for port")

	// ErrNotInMatch means Step was called outside gameplay.
	ErrNotInMatch = errors.New("gym: session is not in a match")

	// ErrClosed means the session has been closed.
	ErrClosed = errors.New("gym: session closed")
)

// Info carries per-step diagnostics.
type Info struct {
	Frame   int64
	Episode string
	Menu    melee.Menu
}

// StepResult is returned by Step.
type StepResult struct {
	// Observation is nil when Done is true.
	Observation embed.Observation

	// Reward is always nil; reward shaping is not implemented.
	Reward *float64

	Info Info
	Done bool
}

// Env is one environment session. It exclusively owns one console and one
// controller per configured port.
type Env struct {
	cfg         config.Config
	console     emulator.Console
	embedder    embed.Embedder
	players     map[melee.Port]player.Player
	ports       []melee.Port
	controllers map[melee.Port]emulator.Controller

	logger       *log.Logger
	recorder     EpisodeRecorder
	autostart    bool
	settleFrames int
	now          func() time.Time

	phase   Phase
	running bool
	failure error
	episode *episode
}

// Option configures an Env.
type Option func(*Env)

// WithLogger sets the session logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Env) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets where finished episodes are reported.
func WithRecorder(r EpisodeRecorder) Option {
	return func(e *Env) {
		e.recorder = r
	}
}

// WithAutostart controls whether the first controller may start the match
// from the menus. Without it Reset waits for someone else to start it.
func WithAutostart(enabled bool) Option {
	return func(e *Env) {
		e.autostart = enabled
	}
}

// WithSettleFrames overrides AutostartSettleFrames.
func WithSettleFrames(n int) Option {
	return func(e *Env) {
		if n >= 0 {
			e.settleFrames = n
		}
	}
}

// WithClock sets the time source used for episode records.
func WithClock(now func() time.Time) Option {
	return func(e *Env) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates a session over console. Players are validated here, so a
// human player is rejected before any process is started.
func New(
	cfg config.Config,
	console emulator.Console,
	embedder embed.Embedder,
	players map[melee.Port]player.Player,
	opts ...Option,
) (*Env, error) {
	if console == nil {
		return nil, errors.New("gym: nil console")
	}
	if embedder == nil {
		return nil, errors.New("gym: nil embedder")
	}
	if err := player.Validate(players); err != nil {
		return nil, err
	}

	e := &Env{
		cfg:          cfg,
		console:      console,
		embedder:     embedder,
		players:      make(map[melee.Port]player.Player, len(players)),
		controllers:  make(map[melee.Port]emulator.Controller, len(players)),
		logger:       log.New(io.Discard),
		autostart:    true,
		settleFrames: AutostartSettleFrames,
		now:          time.Now,
		phase:        PhaseUninitialized,
	}
	for _, opt := range opts {
		opt(e)
	}

	for port, p := range players {
		e.players[port] = p
	}
	e.ports = melee.SortedPorts(e.players)

	for _, port := range e.ports {
		e.controllers[port] = console.Controller(port, e.players[port].ControllerType())
	}

	return e, nil
}

// Phase returns the current lifecycle phase.
func (e *Env) Phase() Phase {
	return e.phase
}

// Ports returns the configured ports in ascending order.
func (e *Env) Ports() []melee.Port {
	return append([]melee.Port(nil), e.ports...)
}

// Config returns the session configuration.
func (e *Env) Config() config.Config {
	return e.cfg
}

// Episode returns the identifier of the current or most recent episode.
func (e *Env) Episode() string {
	if e.episode == nil {
		return ""
	}
	return e.episode.id
}

// Reset restarts the console, connects every controller and navigates the
// menus until gameplay starts. It returns the observation of the first
// in-match frame.
func (e *Env) Reset(ctx context.Context) (embed.Observation, error) {
	if err := e.usable(); err != nil {
		return nil, err
	}

	e.finishEpisode(OutcomeAborted)
	if err := e.stop(); err != nil {
		return nil, err
	}
	e.phase = PhaseUninitialized
	e.episode = &episode{id: uuid.NewString(), startedAt: e.now()}

	if err := e.start(ctx); err != nil {
		e.episode = nil
		//nolint:errcheck // Best-effort cleanup, the start error is what matters
		e.stop()
		return nil, err
	}

	e.phase = PhaseMenuing
	gs, err := e.menu(ctx)
	if err != nil {
		return nil, e.abortReset(err)
	}

	e.phase = PhaseInMatch
	e.logger.Info("match started",
		"episode", e.episode.id,
		"menu_frames", e.episode.menuFrames,
		"stage", gs.Stage,
	)
	return e.embedder.FromState(gs), nil
}

// start launches the process and connects the console and controllers.
func (e *Env) start(ctx context.Context) error {
	run := e.cfg.RunOptions()
	e.logger.Info("starting console", "iso", run.ISOPath, "episode", e.episode.id)
	if err := e.console.Run(ctx, run); err != nil {
		return fmt.Errorf("%w: start console: %w", emulator.ErrConnect, err)
	}
	e.running = true

	e.logger.Info("connecting to console")
	if err := e.console.Connect(ctx); err != nil {
		return fmt.Errorf("%w: console: %w", emulator.ErrConnect, err)
	}

	for _, port := range e.ports {
		if err := e.controllers[port].Connect(ctx); err != nil {
			return fmt.Errorf("%w: controller on port %d: %w", emulator.ErrConnect, port, err)
		}
	}
	return nil
}

// menu drives the menu-navigation assist, one request per controller per
// frame, and returns the first in-match snapshot.
func (e *Env) menu(ctx context.Context) (*melee.GameState, error) {
	gs, err := e.next(ctx)
	if err != nil {
		return nil, err
	}

	for !gs.Menu.InMatch() {
		for i, port := range e.ports {
			req := emulator.MenuRequest{
				Stage:     e.cfg.Stage,
				Autostart: e.autostart && i == 0 && e.episode.menuFrames > e.settleFrames,
				Swag:      false,
				Costume:   i,
				Selection: e.players[port].Selection(),
			}
			if err := e.console.Navigate(gs, e.controllers[port], req); err != nil {
				return nil, fmt.Errorf("gym: menu navigation on port %d: %w", port, err)
			}

			gs, err = e.next(ctx)
			if err != nil {
				return nil, err
			}
			e.episode.menuFrames++

			if gs.Menu.InMatch() {
				break
			}
		}
	}
	return gs, nil
}

// abortReset cleans up after a failed menu loop.
func (e *Env) abortReset(err error) error {
	if e.phase == PhaseFailed {
		return err
	}
	e.episode = nil
	//nolint:errcheck // Best-effort cleanup, the menu error is what matters
	e.stop()
	e.phase = PhaseUninitialized
	return err
}

// Step applies one signal per configured port, advances exactly one frame
// and reports whether the match has ended. Ports in action that are not
// configured are ignored. A controller that rejects its input leaves the
// frame partially applied, so it fails the session like a console error.
func (e *Env) Step(ctx context.Context, action map[melee.Port]pad.State) (StepResult, error) {
	if err := e.usable(); err != nil {
		return StepResult{}, err
	}
	if e.phase != PhaseInMatch {
		return StepResult{}, fmt.Errorf("%w (phase %s)", ErrNotInMatch, e.phase)
	}

	// validate everything before touching a controller
	for _, port := range e.ports {
		s, ok := action[port]
		if !ok {
			return StepResult{}, fmt.Errorf("%w %d", ErrMissingAction, port)
		}
		if err := s.Validate(); err != nil {
			return StepResult{}, fmt.Errorf("gym: port %d: %w", port, err)
		}
	}

	legal := e.embedder.LegalButtons()
	for _, port := range e.ports {
		if err := pad.Apply(e.controllers[port], action[port], legal); err != nil {
			return StepResult{}, e.fail(fmt.Errorf("gym: %w", err))
		}
	}

	gs, err := e.next(ctx)
	if err != nil {
		return StepResult{}, err
	}
	e.episode.matchFrames++

	result := StepResult{
		Info: Info{
			Frame:   gs.Frame,
			Episode: e.episode.id,
			Menu:    gs.Menu,
		},
	}

	if !gs.Menu.InMatch() {
		e.phase = PhaseDone
		e.logger.Info("match ended",
			"episode", e.episode.id,
			"match_frames", e.episode.matchFrames,
			"menu", gs.Menu,
		)
		e.finishEpisode(OutcomeCompleted)
		result.Done = true
		return result, nil
	}

	result.Observation = e.embedder.FromState(gs)
	return result, nil
}

// Render is a no-op; the emulator renders itself when not headless.
func (e *Env) Render(mode string) error {
	return nil
}

// Close disconnects the controllers and stops the console. It is safe to
// call more than once and on every exit path.
func (e *Env) Close() error {
	if e.phase == PhaseClosed {
		return nil
	}
	e.finishEpisode(OutcomeAborted)

	err := e.stop()
	e.phase = PhaseClosed
	if err != nil {
		return err
	}
	e.logger.Debug("session closed")
	return nil
}

// next advances one frame. A missing snapshot or a console error poisons
// the session.
func (e *Env) next(ctx context.Context) (*melee.GameState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	gs, err := e.console.Step(ctx)
	if err != nil {
		return nil, e.fail(fmt.Errorf("gym: console step: %w", err))
	}
	if gs == nil {
		return nil, e.fail(ErrMissingFrame)
	}

	if took := time.Since(start); took > slowFrameThreshold {
		e.logger.Debug("slow frame", "frame", gs.Frame, "took", took)
	}
	return gs, nil
}

// fail records err as fatal and releases the console.
func (e *Env) fail(err error) error {
	e.logger.Error("session failed", "error", err)
	e.finishEpisode(OutcomeFailed)
	e.failure = err
	e.phase = PhaseFailed
	if stopErr := e.stop(); stopErr != nil {
		e.logger.Warn("could not stop console", "error", stopErr)
	}
	return err
}

// stop disconnects controllers and stops the console. The console's Stop
// is called even when nothing is known to be running.
func (e *Env) stop() error {
	var errs []error
	if e.running {
		for _, port := range e.ports {
			if err := e.controllers[port].Disconnect(); err != nil {
				errs = append(errs, fmt.Errorf("gym: disconnect port %d: %w", port, err))
			}
		}
	}
	if err := e.console.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("gym: stop console: %w", err))
	}
	e.running = false
	return errors.Join(errs...)
}

func (e *Env) usable() error {
	switch e.phase {
	case PhaseClosed:
		return ErrClosed
	case PhaseFailed:
		return fmt.Errorf("gym: session failed earlier: %w", e.failure)
	}
	return nil
}
