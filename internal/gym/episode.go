package gym

import (
	"time"

	"github.com/vovakirdan/melee-gym/internal/melee"
	"github.com/vovakirdan/melee-gym/internal/player"
)

// Phase is the lifecycle state of a session.
type Phase int

const (
	// PhaseUninitialized: constructed, no process running.
	PhaseUninitialized Phase = iota
	// PhaseMenuing: process running, controllers connected, pre-match menus.
	PhaseMenuing
	// PhaseInMatch: frames are gameplay.
	PhaseInMatch
	// PhaseDone: the match ended; Reset starts the next one.
	PhaseDone
	// PhaseFailed: a fatal error occurred; only Close is allowed.
	PhaseFailed
	// PhaseClosed: the console has been released.
	PhaseClosed
)

// String returns a human-readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseMenuing:
		return "menuing"
	case PhaseInMatch:
		return "in-match"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Outcome describes how an episode ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed" // the console left gameplay on its own
	OutcomeAborted   Outcome = "aborted"   // reset or closed mid-match
	OutcomeFailed    Outcome = "failed"    // fatal console error mid-match
)

// EpisodeRecord summarizes one match.
type EpisodeRecord struct {
	ID          string
	Environment string
	Stage       melee.Stage
	Players     string // PORT=SPEC list, see player.Describe
	MenuFrames  int
	MatchFrames int
	Outcome     Outcome
	StartedAt   time.Time
	EndedAt     time.Time
}

// Duration returns the wall-clock length of the episode.
func (r EpisodeRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// EpisodeRecorder receives a record for every match that reached gameplay.
// This allows the session to persist history without depending on a
// storage package.
type EpisodeRecorder interface {
	RecordEpisode(rec EpisodeRecord) error
}

// episode is the bookkeeping for the current Reset.
type episode struct {
	id          string
	startedAt   time.Time
	menuFrames  int
	matchFrames int
	finished    bool
}

// finishEpisode reports the current episode once. Episodes that never
// reached gameplay are dropped.
func (e *Env) finishEpisode(outcome Outcome) {
	ep := e.episode
	if ep == nil || ep.finished {
		return
	}
	ep.finished = true

	if e.phase != PhaseInMatch && e.phase != PhaseDone {
		return
	}
	if e.recorder == nil {
		return
	}

	rec := EpisodeRecord{
		ID:          ep.id,
		Environment: e.cfg.EnvironmentName,
		Stage:       e.cfg.Stage,
		Players:     player.Describe(e.players),
		MenuFrames:  ep.menuFrames,
		MatchFrames: ep.matchFrames,
		Outcome:     outcome,
		StartedAt:   ep.startedAt,
		EndedAt:     e.now(),
	}
	if err := e.recorder.RecordEpisode(rec); err != nil {
		e.logger.Warn("could not record episode", "episode", ep.id, "error", err)
	}
}
