package agent

import (
	"reflect"
	"testing"

	"github.com/vovakirdan/melee-gym/internal/melee"
	"github.com/vovakirdan/melee-gym/internal/pad"
)

var ports = []melee.Port{melee.Port1, melee.Port2}

func TestNoop(t *testing.T) {
	action := Noop{}.Act(nil, ports)
	if len(action) != 2 {
		t.Fatalf("Expected 2 actions, got %d", len(action))
	}
	for p, s := range action {
		if !reflect.DeepEqual(s, pad.Neutral()) {
			t.Errorf("Port %d: expected neutral signal, got %+v", p, s)
		}
	}
}

func TestRandomDeterministic(t *testing.T) {
	a, b := NewRandom(7), NewRandom(7)
	for i := 0; i < 50; i++ {
		if !reflect.DeepEqual(a.Act(nil, ports), b.Act(nil, ports)) {
			t.Fatalf("Same seed diverged at step %d", i)
		}
	}
}

func TestRandomValid(t *testing.T) {
	r := NewRandom(1)
	r.PressChance = 0.5

	pressed := 0
	for i := 0; i < 100; i++ {
		for p, s := range r.Act(nil, ports) {
			if err := s.Validate(); err != nil {
				t.Fatalf("Port %d: invalid signal: %v", p, err)
			}
			for _, b := range r.Legal {
				if s.Pressed(b) {
					pressed++
				}
			}
			if s.Pressed(melee.ButtonStart) {
				t.Fatal("START is not a legal button")
			}
		}
	}
	if pressed == 0 {
		t.Error("Random agent never pressed anything")
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		if _, err := New(name, 1); err != nil {
			t.Errorf("New(%q) failed: %v", name, err)
		}
	}
	if _, err := New("alphago", 1); err == nil {
		t.Error("Expected error for unknown agent")
	}
}
