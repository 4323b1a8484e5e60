// Package embed defines how raw game state snapshots become observations.
//
// The shape of an observation is owned by the embedder, not by the
// environment: the environment only forwards whatever FromState returns.
package embed

import (
	"github.com/vovakirdan/melee-gym/internal/melee"
)

// Observation is an embedded game state.
type Observation any

// Embedder converts snapshots into observations and fixes the set of
// buttons an action must cover.
type Embedder interface {
	FromState(gs *melee.GameState) Observation
	LegalButtons() []melee.Button
}

// LegalButtons is the ordered set of digital buttons agents control.
// START and the remaining d-pad directions are excluded.
var LegalButtons = []melee.Button{
	melee.ButtonA,
	melee.ButtonB,
	melee.ButtonX,
	melee.ButtonY,
	melee.ButtonZ,
	melee.ButtonL,
	melee.ButtonR,
	melee.ButtonDUp,
}
