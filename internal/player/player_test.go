package player

import (
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/melee-gym/internal/melee"
)

func TestVariants(t *testing.T) {
	tests := []struct {
		name string
		p    Player
		kind Kind
		ctrl melee.ControllerType
		sel  melee.Selection
	}{
		{"human", Human{}, KindHuman, melee.ControllerGCNAdapter, melee.Selection{}},
		{"cpu", CPU{Character: melee.CharacterMarth, Level: 7}, KindCPU, melee.ControllerStandard,
			melee.Selection{Character: melee.CharacterMarth, CPULevel: 7}},
		{"ai", AI{Character: melee.CharacterFalco}, KindAI, melee.ControllerStandard,
			melee.Selection{Character: melee.CharacterFalco}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.p.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", tt.p.Kind(), tt.kind)
			}
			if tt.p.ControllerType() != tt.ctrl {
				t.Errorf("ControllerType() = %s, want %s", tt.p.ControllerType(), tt.ctrl)
			}
			if tt.p.Selection() != tt.sel {
				t.Errorf("Selection() = %+v, want %+v", tt.p.Selection(), tt.sel)
			}
		})
	}
}

func TestValidateRejectsHuman(t *testing.T) {
	cases := []map[melee.Port]Player{
		{melee.Port1: Human{}},
		{melee.Port1: DefaultCPU(), melee.Port2: Human{}},
		{melee.Port1: AI{}, melee.Port4: &Human{}},
	}

	for i, players := range cases {
		err := Validate(players)
		if !errors.Is(err, ErrHumanPlayer) {
			t.Errorf("case %d: expected ErrHumanPlayer, got %v", i, err)
		}
	}
}

func TestValidate(t *testing.T) {
	ok := map[melee.Port]Player{
		melee.Port1: DefaultCPU(),
		melee.Port2: AI{Character: melee.CharacterFox},
	}
	if err := Validate(ok); err != nil {
		t.Errorf("Valid assignment rejected: %v", err)
	}

	bad := []map[melee.Port]Player{
		{},
		{melee.Port(5): AI{}},
		{melee.Port1: CPU{Level: 0}},
		{melee.Port1: CPU{Level: 10}},
		{melee.Port1: nil},
	}
	for i, players := range bad {
		if err := Validate(players); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}

func TestParse(t *testing.T) {
	p, err := Parse("cpu:FALCO:3")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cpu, ok := p.(CPU); !ok || cpu.Character != melee.CharacterFalco || cpu.Level != 3 {
		t.Errorf("Unexpected player: %#v", p)
	}

	p, err = Parse("cpu")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.(CPU) != DefaultCPU() {
		t.Errorf("Expected default CPU, got %#v", p)
	}

	p, err = Parse("AI:marth")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p.(AI).Character != melee.CharacterMarth {
		t.Errorf("Expected MARTH, got %#v", p)
	}

	p, err = Parse("human")
	if err != nil || p.Kind() != KindHuman {
		t.Errorf("Expected human, got %#v, %v", p, err)
	}

	for _, s := range []string{"robot", "cpu:FOX:x", "cpu:FOX:9:1", "ai:NOBODY", "human:FOX"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q): expected error", s)
		}
	}
}

func TestParseAssignment(t *testing.T) {
	port, p, err := ParseAssignment("2=ai:FOX")
	if err != nil {
		t.Fatalf("ParseAssignment failed: %v", err)
	}
	if port != melee.Port2 || p.Kind() != KindAI {
		t.Errorf("Unexpected assignment: %d %#v", port, p)
	}

	for _, s := range []string{"ai:FOX", "x=ai", "0=ai", "5=cpu"} {
		if _, _, err := ParseAssignment(s); err == nil {
			t.Errorf("ParseAssignment(%q): expected error", s)
		}
	}
}

func TestDescribeRoundTrip(t *testing.T) {
	players := map[melee.Port]Player{
		melee.Port2: AI{Character: melee.CharacterSheik},
		melee.Port1: CPU{Character: melee.CharacterFox, Level: 9},
	}

	got := Describe(players)
	if got != "1=cpu:FOX:9 2=ai:SHEIK" {
		t.Fatalf("Unexpected description: %q", got)
	}

	for _, part := range strings.Fields(got) {
		port, p, err := ParseAssignment(part)
		if err != nil {
			t.Fatalf("ParseAssignment(%q) failed: %v", part, err)
		}
		if p != players[port] {
			t.Errorf("Port %d: got %#v, want %#v", port, p, players[port])
		}
	}
}
