package melee

// Selection holds the menu-selection parameters of one player.
type Selection struct {
	Character Character
	CPULevel  int // 0 = not CPU-controlled, 1-9 otherwise
}

// IsCPU returns true if the selection asks for a CPU-controlled player.
func (s Selection) IsCPU() bool {
	return s.CPULevel > 0
}

// PlayerState is the per-port part of a game state snapshot.
type PlayerState struct {
	Character   Character
	CPULevel    int
	Stock       int
	Percent     float64
	X           float64
	Y           float64
	FacingRight bool
}

// GameState is one frame snapshot produced by the console.
// It is owned by the console; consumers must treat it as read-only.
type GameState struct {
	Frame   int64
	Menu    Menu
	Stage   Stage
	Players map[Port]PlayerState
}

// Player returns the state of the player on the given port.
func (g *GameState) Player(p Port) (PlayerState, bool) {
	if g == nil || g.Players == nil {
		return PlayerState{}, false
	}
	ps, ok := g.Players[p]
	return ps, ok
}
