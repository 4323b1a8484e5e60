// Package melee provides the game vocabulary shared by the environment,
// the emulator boundary and the player descriptors: ports, stages,
// characters, menus, buttons and the per-frame game state snapshot.
//
// Enum types marshal to and from their upper-snake names (for example
// "FINAL_DESTINATION") so they can appear directly in JSON and YAML
// configuration documents.
package melee

import (
	"fmt"
	"sort"
	"strings"
)

// Port identifies a controller port on the console (1 through 4).
type Port int

// Valid ports.
const (
	Port1 Port = 1
	Port2 Port = 2
	Port3 Port = 3
	Port4 Port = 4
)

// Valid returns true if the port is one of the four console ports.
func (p Port) Valid() bool {
	return p >= Port1 && p <= Port4
}

// SortedPorts returns the keys of a port-indexed map in ascending order.
func SortedPorts[V any](m map[Port]V) []Port {
	ports := make([]Port, 0, len(m))
	for p := range m {
		ports = append(ports, p)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	return ports
}

// names is a bidirectional lookup between enum values and their names.
type names[T comparable] struct {
	kind    string
	byValue map[T]string
	byName  map[string]T
}

func newNames[T comparable](kind string, m map[T]string) names[T] {
	n := names[T]{kind: kind, byValue: m, byName: make(map[string]T, len(m))}
	for v, s := range m {
		n.byName[s] = v
	}
	return n
}

func (n names[T]) name(v T) string {
	if s, ok := n.byValue[v]; ok {
		return s
	}
	return "UNKNOWN"
}

func (n names[T]) parse(s string) (T, error) {
	if v, ok := n.byName[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("melee: unknown %s %q", n.kind, s)
}

// Stage is a playable stage.
type Stage int

const (
	StageFinalDestination Stage = iota
	StageBattlefield
	StagePokemonStadium
	StageDreamland
	StageFountainOfDreams
	StageYoshisStory
	StageRandom
)

var stageNames = newNames("stage", map[Stage]string{
	StageFinalDestination: "FINAL_DESTINATION",
	StageBattlefield:      "BATTLEFIELD",
	StagePokemonStadium:   "POKEMON_STADIUM",
	StageDreamland:        "DREAMLAND",
	StageFountainOfDreams: "FOUNTAIN_OF_DREAMS",
	StageYoshisStory:      "YOSHIS_STORY",
	StageRandom:           "RANDOM_STAGE",
})

func (s Stage) String() string { return stageNames.name(s) }

// ParseStage returns the stage with the given name.
func ParseStage(name string) (Stage, error) { return stageNames.parse(name) }

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(b []byte) error {
	v, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Character is a playable character.
type Character int

const (
	CharacterFox Character = iota
	CharacterFalco
	CharacterMarth
	CharacterSheik
	CharacterFalcon
	CharacterPeach
	CharacterJigglypuff
	CharacterSamus
	CharacterPikachu
	CharacterLuigi
	CharacterMario
	CharacterDoc
	CharacterYoungLink
	CharacterLink
	CharacterGanondorf
	CharacterIceClimbers
)

var characterNames = newNames("character", map[Character]string{
	CharacterFox:         "FOX",
	CharacterFalco:       "FALCO",
	CharacterMarth:       "MARTH",
	CharacterSheik:       "SHEIK",
	CharacterFalcon:      "CPTFALCON",
	CharacterPeach:       "PEACH",
	CharacterJigglypuff:  "JIGGLYPUFF",
	CharacterSamus:       "SAMUS",
	CharacterPikachu:     "PIKACHU",
	CharacterLuigi:       "LUIGI",
	CharacterMario:       "MARIO",
	CharacterDoc:         "DOC",
	CharacterYoungLink:   "YLINK",
	CharacterLink:        "LINK",
	CharacterGanondorf:   "GANONDORF",
	CharacterIceClimbers: "ICECLIMBERS",
})

func (c Character) String() string { return characterNames.name(c) }

// ParseCharacter returns the character with the given name.
func ParseCharacter(name string) (Character, error) { return characterNames.parse(name) }

// MarshalText implements encoding.TextMarshaler.
func (c Character) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Character) UnmarshalText(b []byte) error {
	v, err := ParseCharacter(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Menu is the phase indicator reported by the console for every frame.
type Menu int

const (
	MenuUnknown Menu = iota
	MenuMain
	MenuCharacterSelect
	MenuStageSelect
	MenuInGame
	MenuSuddenDeath
	MenuPostgameScores
)

var menuNames = newNames("menu", map[Menu]string{
	MenuUnknown:         "UNKNOWN_MENU",
	MenuMain:            "MAIN_MENU",
	MenuCharacterSelect: "CHARACTER_SELECT",
	MenuStageSelect:     "STAGE_SELECT",
	MenuInGame:          "IN_GAME",
	MenuSuddenDeath:     "SUDDEN_DEATH",
	MenuPostgameScores:  "POSTGAME_SCORES",
})

func (m Menu) String() string { return menuNames.name(m) }

// MarshalText implements encoding.TextMarshaler.
func (m Menu) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// InMatch returns true if the phase is gameplay. Sudden death counts as
// gameplay; everything else is a menu or a transition.
func (m Menu) InMatch() bool {
	return m == MenuInGame || m == MenuSuddenDeath
}

// Button is a digital button or analog input of a standard controller.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
	ButtonZ
	ButtonL
	ButtonR
	ButtonStart
	ButtonDUp
	ButtonDDown
	ButtonDLeft
	ButtonDRight
	ButtonMain // main analog stick
	ButtonC    // c-stick
)

var buttonNames = newNames("button", map[Button]string{
	ButtonA:      "A",
	ButtonB:      "B",
	ButtonX:      "X",
	ButtonY:      "Y",
	ButtonZ:      "Z",
	ButtonL:      "L",
	ButtonR:      "R",
	ButtonStart:  "START",
	ButtonDUp:    "D_UP",
	ButtonDDown:  "D_DOWN",
	ButtonDLeft:  "D_LEFT",
	ButtonDRight: "D_RIGHT",
	ButtonMain:   "MAIN",
	ButtonC:      "C",
})

func (b Button) String() string { return buttonNames.name(b) }

// ParseButton returns the button with the given name.
func ParseButton(name string) (Button, error) { return buttonNames.parse(name) }

// MarshalText implements encoding.TextMarshaler.
func (b Button) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Button) UnmarshalText(text []byte) error {
	v, err := ParseButton(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// ControllerType selects how a controller is attached to the console.
type ControllerType int

const (
	// ControllerStandard is a virtual controller driven by this program.
	ControllerStandard ControllerType = iota
	// ControllerGCNAdapter is a physical controller on a USB adapter.
	ControllerGCNAdapter
)

func (t ControllerType) String() string {
	switch t {
	case ControllerStandard:
		return "STANDARD"
	case ControllerGCNAdapter:
		return "GCN_ADAPTER"
	default:
		return "UNKNOWN"
	}
}
