// Package player provides the descriptors for the occupants of each console
// port. A descriptor decides how the port's controller is attached and what
// the menu-navigation assist should select for it.
package player

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/melee-gym/internal/melee"
)

// ErrHumanPlayer is returned when a session is configured with a human
// player. Driving a physical controller through the menus is not supported.
var ErrHumanPlayer = errors.New("player: human players are not supported")

// Kind tags the descriptor variant.
type Kind int

const (
	KindHuman Kind = iota
	KindCPU
	KindAI
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindHuman:
		return "human"
	case KindCPU:
		return "cpu"
	case KindAI:
		return "ai"
	default:
		return "unknown"
	}
}

// Player describes the occupant of one port.
type Player interface {
	Kind() Kind

	// ControllerType selects how the port's controller is attached.
	ControllerType() melee.ControllerType

	// Selection returns the menu-selection parameters for this player.
	Selection() melee.Selection
}

// Human is a person on a physical controller.
type Human struct{}

func (Human) Kind() Kind                           { return KindHuman }
func (Human) ControllerType() melee.ControllerType { return melee.ControllerGCNAdapter }
func (Human) Selection() melee.Selection           { return melee.Selection{} }
func (Human) String() string                       { return "human" }

// CPU is a console-controlled opponent at a fixed difficulty level.
type CPU struct {
	Character melee.Character
	Level     int // 1-9
}

// DefaultCPU returns a level 9 Fox.
func DefaultCPU() CPU {
	return CPU{Character: melee.CharacterFox, Level: 9}
}

func (CPU) Kind() Kind                           { return KindCPU }
func (CPU) ControllerType() melee.ControllerType { return melee.ControllerStandard }

func (c CPU) Selection() melee.Selection {
	return melee.Selection{Character: c.Character, CPULevel: c.Level}
}

func (c CPU) String() string {
	return fmt.Sprintf("cpu:%s:%d", c.Character, c.Level)
}

// AI is driven externally, one action per frame.
type AI struct {
	Character melee.Character
}

func (AI) Kind() Kind                           { return KindAI }
func (AI) ControllerType() melee.ControllerType { return melee.ControllerStandard }

func (a AI) Selection() melee.Selection {
	return melee.Selection{Character: a.Character}
}

func (a AI) String() string {
	return "ai:" + a.Character.String()
}

// Describe renders a port assignment in the PORT=SPEC form accepted by
// ParseAssignment, ports in ascending order.
func Describe(players map[melee.Port]Player) string {
	parts := make([]string, 0, len(players))
	for _, port := range melee.SortedPorts(players) {
		parts = append(parts, fmt.Sprintf("%d=%v", port, players[port]))
	}
	return strings.Join(parts, " ")
}

// Validate checks a port assignment before a session is built.
func Validate(players map[melee.Port]Player) error {
	if len(players) == 0 {
		return errors.New("player: no players configured")
	}

	for _, port := range melee.SortedPorts(players) {
		p := players[port]
		if !port.Valid() {
			return fmt.Errorf("player: invalid port %d", port)
		}
		if p == nil {
			return fmt.Errorf("player: port %d has no player", port)
		}

		switch p.Kind() {
		case KindHuman:
			return fmt.Errorf("port %d: %w", port, ErrHumanPlayer)
		case KindCPU:
			if level := p.Selection().CPULevel; level < 1 || level > 9 {
				return fmt.Errorf("player: port %d: cpu level %d out of range 1-9", port, level)
			}
		}
	}
	return nil
}

// Parse builds a descriptor from its short form:
//
//	human
//	cpu[:CHARACTER[:LEVEL]]
//	ai[:CHARACTER]
func Parse(s string) (Player, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	kind := strings.ToLower(parts[0])

	character := melee.CharacterFox
	if len(parts) > 1 && parts[1] != "" {
		c, err := melee.ParseCharacter(parts[1])
		if err != nil {
			return nil, fmt.Errorf("player: %q: %w", s, err)
		}
		character = c
	}

	switch kind {
	case "human":
		if len(parts) > 1 {
			return nil, fmt.Errorf("player: %q: human takes no parameters", s)
		}
		return Human{}, nil

	case "cpu":
		cpu := DefaultCPU()
		cpu.Character = character
		if len(parts) > 2 {
			level, err := strconv.Atoi(parts[2])
			if err != nil {
				return nil, fmt.Errorf("player: %q: bad cpu level: %w", s, err)
			}
			cpu.Level = level
		}
		if len(parts) > 3 {
			return nil, fmt.Errorf("player: %q: too many parameters", s)
		}
		return cpu, nil

	case "ai":
		if len(parts) > 2 {
			return nil, fmt.Errorf("player: %q: too many parameters", s)
		}
		return AI{Character: character}, nil
	}

	return nil, fmt.Errorf("player: unknown player kind %q", parts[0])
}

// ParseAssignment parses "PORT=SPEC", for example "1=cpu:FOX:9".
func ParseAssignment(s string) (melee.Port, Player, error) {
	portStr, spec, ok := strings.Cut(s, "=")
	if !ok {
		return 0, nil, fmt.Errorf("player: %q: expected PORT=SPEC", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil {
		return 0, nil, fmt.Errorf("player: %q: bad port: %w", s, err)
	}
	port := melee.Port(n)
	if !port.Valid() {
		return 0, nil, fmt.Errorf("player: invalid port %d", n)
	}
	p, err := Parse(spec)
	if err != nil {
		return 0, nil, err
	}
	return port, p, nil
}
