// Package agent provides trivial drivers that produce one controller
// signal per port from an observation. They exist to exercise an
// environment end to end; none of them learns.
package agent

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/vovakirdan/melee-gym/internal/embed"
	"github.com/vovakirdan/melee-gym/internal/melee"
	"github.com/vovakirdan/melee-gym/internal/pad"
)

// Agent chooses the next action for every port it is asked about.
type Agent interface {
	Act(obs embed.Observation, ports []melee.Port) map[melee.Port]pad.State
}

// Factory creates an agent from a seed.
type Factory func(seed int64) Agent

var factories = map[string]Factory{
	"noop":   func(int64) Agent { return Noop{} },
	"random": func(seed int64) Agent { return NewRandom(seed) },
}

// Names returns the available agent names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the named agent.
func New(name string, seed int64) (Agent, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("agent: unknown agent %q (available: %v)", name, Names())
	}
	return f(seed), nil
}

// Noop leaves every controller in the neutral position.
type Noop struct{}

// Act implements Agent.
func (Noop) Act(_ embed.Observation, ports []melee.Port) map[melee.Port]pad.State {
	action := make(map[melee.Port]pad.State, len(ports))
	for _, p := range ports {
		action[p] = pad.Neutral()
	}
	return action
}

// Random mashes: every frame each legal button is held with probability
// PressChance, and both sticks point somewhere at random.
type Random struct {
	rng *rand.Rand

	// PressChance is the per-frame probability of holding each button.
	PressChance float64
	// Legal is the set of buttons considered.
	Legal []melee.Button
}

// NewRandom creates a seeded Random agent over the legal buttons.
func NewRandom(seed int64) *Random {
	return &Random{
		rng:         rand.New(rand.NewSource(seed)),
		PressChance: 0.1,
		Legal:       embed.LegalButtons,
	}
}

// Act implements Agent.
func (r *Random) Act(_ embed.Observation, ports []melee.Port) map[melee.Port]pad.State {
	action := make(map[melee.Port]pad.State, len(ports))
	for _, p := range ports {
		s := pad.Neutral()
		for _, b := range r.Legal {
			if r.rng.Float64() < r.PressChance {
				s.Press(b)
			}
		}
		s.MainStick = pad.Stick{X: r.rng.Float64(), Y: r.rng.Float64()}
		s.CStick = pad.Stick{X: r.rng.Float64(), Y: r.rng.Float64()}
		action[p] = s
	}
	return action
}
