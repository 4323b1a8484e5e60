// Package pad provides the per-port controller signal an agent sends on
// every step, and the code that replays it onto an emulator controller.
package pad

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/vovakirdan/melee-gym/internal/emulator"
	"github.com/vovakirdan/melee-gym/internal/melee"
)

// Center is the neutral analog stick coordinate.
const Center = 0.5

// Stick is an analog stick position. Both axes are in [0, 1].
// It marshals as a two-element JSON array.
type Stick struct {
	X, Y float64
}

// MarshalJSON implements json.Marshaler.
func (s Stick) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{s.X, s.Y})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stick) UnmarshalJSON(b []byte) error {
	var xy [2]float64
	if err := json.Unmarshal(b, &xy); err != nil {
		return fmt.Errorf("pad: stick must be [x, y]: %w", err)
	}
	s.X, s.Y = xy[0], xy[1]
	return nil
}

// State is the full controller signal for one port during one frame.
// Buttons missing from the map are released.
type State struct {
	Buttons   map[melee.Button]bool `json:"button"`
	MainStick Stick                 `json:"main_stick"`
	CStick    Stick                 `json:"c_stick"`
	LShoulder float64               `json:"l_shoulder"`
	RShoulder float64               `json:"r_shoulder"`
}

// Neutral returns a signal with every button released, both sticks
// centered and both shoulders up.
func Neutral() State {
	return State{
		Buttons:   make(map[melee.Button]bool),
		MainStick: Stick{Center, Center},
		CStick:    Stick{Center, Center},
	}
}

// Press marks a button as held.
func (s *State) Press(b melee.Button) {
	if s.Buttons == nil {
		s.Buttons = make(map[melee.Button]bool)
	}
	s.Buttons[b] = true
}

// Pressed returns true if the button is held.
func (s State) Pressed(b melee.Button) bool {
	if s.Buttons == nil {
		return false
	}
	return s.Buttons[b]
}

// Clone creates a copy of this signal.
func (s State) Clone() State {
	clone := s
	clone.Buttons = make(map[melee.Button]bool, len(s.Buttons))
	for k, v := range s.Buttons {
		clone.Buttons[k] = v
	}
	return clone
}

// Validate checks that every analog value is in [0, 1]. NaN is rejected.
func (s State) Validate() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("pad: %s value %g out of range [0, 1]", name, v)
		}
		return nil
	}

	for _, c := range []struct {
		name string
		v    float64
	}{
		{"main stick x", s.MainStick.X},
		{"main stick y", s.MainStick.Y},
		{"c-stick x", s.CStick.X},
		{"c-stick y", s.CStick.Y},
		{"l shoulder", s.LShoulder},
		{"r shoulder", s.RShoulder},
	} {
		if err := check(c.name, c.v); err != nil {
			return err
		}
	}
	return nil
}

// Apply replays the signal onto a controller: every legal button is pressed
// or released individually, then the sticks and shoulders are set directly.
func Apply(ctrl emulator.Controller, s State, legal []melee.Button) error {
	for _, b := range legal {
		var err error
		if s.Pressed(b) {
			err = ctrl.PressButton(b)
		} else {
			err = ctrl.ReleaseButton(b)
		}
		if err != nil {
			return fmt.Errorf("pad: port %d: button %s: %w", ctrl.Port(), b, err)
		}
	}

	if err := ctrl.TiltAnalog(melee.ButtonMain, s.MainStick.X, s.MainStick.Y); err != nil {
		return fmt.Errorf("pad: port %d: main stick: %w", ctrl.Port(), err)
	}
	if err := ctrl.TiltAnalog(melee.ButtonC, s.CStick.X, s.CStick.Y); err != nil {
		return fmt.Errorf("pad: port %d: c-stick: %w", ctrl.Port(), err)
	}
	if err := ctrl.PressShoulder(melee.ButtonL, s.LShoulder); err != nil {
		return fmt.Errorf("pad: port %d: l shoulder: %w", ctrl.Port(), err)
	}
	if err := ctrl.PressShoulder(melee.ButtonR, s.RShoulder); err != nil {
		return fmt.Errorf("pad: port %d: r shoulder: %w", ctrl.Port(), err)
	}
	return nil
}
