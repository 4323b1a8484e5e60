package embed

import (
	"github.com/vovakirdan/melee-gym/internal/melee"
)

// FeaturesPerPlayer is the length of one player's block in a Flat vector.
const FeaturesPerPlayer = 7

// Vector is the observation produced by Flat.
type Vector struct {
	Frame int64
	Ports []melee.Port // order of the player blocks in Values
	// Values holds FeaturesPerPlayer entries per port:
	// x, y, percent/100, stock, facing (1 right / 0 left), character id, cpu level/9.
	Values []float32
}

// Player returns the feature block of the i-th port.
func (v Vector) Player(i int) []float32 {
	return v.Values[i*FeaturesPerPlayer : (i+1)*FeaturesPerPlayer]
}

// Flat embeds a snapshot as a fixed-length numeric vector over a fixed set
// of ports. Ports absent from the snapshot are zero-filled.
type Flat struct {
	ports []melee.Port
}

// NewFlat creates a Flat embedder over the given ports.
func NewFlat(ports []melee.Port) *Flat {
	return &Flat{ports: append([]melee.Port(nil), ports...)}
}

// LegalButtons implements Embedder.
func (f *Flat) LegalButtons() []melee.Button {
	return LegalButtons
}

// FromState implements Embedder.
func (f *Flat) FromState(gs *melee.GameState) Observation {
	v := Vector{
		Ports:  f.ports,
		Values: make([]float32, len(f.ports)*FeaturesPerPlayer),
	}
	if gs == nil {
		return v
	}
	v.Frame = gs.Frame

	for i, port := range f.ports {
		ps, ok := gs.Player(port)
		if !ok {
			continue
		}
		block := v.Player(i)
		block[0] = float32(ps.X)
		block[1] = float32(ps.Y)
		block[2] = float32(ps.Percent / 100)
		block[3] = float32(ps.Stock)
		if ps.FacingRight {
			block[4] = 1
		}
		block[5] = float32(ps.Character)
		block[6] = float32(ps.CPULevel) / 9
	}
	return v
}
