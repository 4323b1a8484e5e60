package sim

import (
	"math"
	"slices"

	"github.com/vovakirdan/melee-gym/internal/melee"
)

// Match physics, in stage units per frame.
const (
	StageEdge       = 70.0  // half width of the stage floor
	BlastZone       = 110.0 // leaving |x| > BlastZone costs a stock
	SpawnSpread     = 40.0  // players spawn evenly inside [-SpawnSpread, SpawnSpread]
	MoveSpeed       = 1.5
	JumpVelocity    = 3.0
	Gravity         = 0.15
	HitRange        = 12.0
	HitDamage       = 4.0
	KnockoutPercent = 150.0
	SuddenDeathDmg  = 300.0 // starting damage in sudden death
	SuddenDeathTime = 20 * 60

	stickDeadZone = 0.2
	cpuRethink    = 30 // frames between CPU target changes
)

// startMatch places every player and resets stocks and damage.
func (c *Console) startMatch() {
	c.matchFrame = 0
	ports := c.ports()
	for i, port := range ports {
		s := c.slots[port]
		s.state = melee.PlayerState{
			Stock:       c.stocks,
			X:           spawnX(i, len(ports)),
			FacingRight: spawnX(i, len(ports)) <= 0,
		}
		s.cpuTarget = s.state.X
	}
	for _, ctrl := range c.controllers {
		ctrl.lastA = false
	}
}

func spawnX(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return -SpawnSpread + 2*SpawnSpread*float64(i)/float64(n-1)
}

// simulate runs one frame of the match and ends it when due.
func (c *Console) simulate() {
	c.matchFrame++
	ports := c.ports()

	attackers := make([]melee.Port, 0, len(ports))
	for _, port := range ports {
		s := c.slots[port]
		if s.state.Stock <= 0 {
			continue
		}
		if c.act(port, s) {
			attackers = append(attackers, port)
		}
	}

	for _, port := range attackers {
		c.hit(port, ports)
	}

	for _, port := range ports {
		c.knockout(c.slots[port])
	}

	c.checkEnd(ports)
}

// act moves one player and reports whether it attacks this frame.
func (c *Console) act(port melee.Port, s *slot) bool {
	var dx float64
	var jump, attack bool

	if s.selection.IsCPU() {
		dx, jump, attack = c.cpuInput(port, s)
	} else if ctrl, ok := c.controllers[port]; ok && ctrl.connected {
		tilt := (ctrl.mainX - 0.5) * 2
		if math.Abs(tilt) > stickDeadZone {
			dx = tilt * MoveSpeed
		}
		jump = ctrl.buttons[melee.ButtonX] || ctrl.buttons[melee.ButtonY] || ctrl.mainY > 0.5+stickDeadZone*2
		attack = ctrl.attackPressed()
	}

	st := &s.state
	if dx != 0 {
		st.FacingRight = dx > 0
		st.X += dx
		// walking never carries a grounded player off the stage
		if st.Y == 0 {
			st.X = clamp(st.X, -StageEdge, StageEdge)
		}
	}

	if jump && st.Y == 0 {
		st.Y = JumpVelocity
	} else if st.Y > 0 {
		st.Y = math.Max(0, st.Y-Gravity*2)
	}
	return attack
}

// cpuInput wanders towards a random target and attacks nearby opponents,
// more often at higher levels.
func (c *Console) cpuInput(port melee.Port, s *slot) (dx float64, jump, attack bool) {
	if c.matchFrame%cpuRethink == 0 {
		s.cpuTarget = (c.rng.Float64()*2 - 1) * StageEdge
		if opp, ok := c.nearest(port); ok && c.rng.Intn(10) < s.selection.CPULevel {
			s.cpuTarget = opp.X
		}
	}

	diff := s.cpuTarget - s.state.X
	if math.Abs(diff) > MoveSpeed {
		dx = math.Copysign(MoveSpeed*0.8, diff)
	}

	jump = c.rng.Intn(240) == 0
	if opp, ok := c.nearest(port); ok && math.Abs(opp.X-s.state.X) <= HitRange {
		attack = c.rng.Intn(60) < s.selection.CPULevel
		if attack {
			s.state.FacingRight = opp.X >= s.state.X
		}
	}
	return dx, jump, attack
}

// nearest returns the closest opponent still in the match.
func (c *Console) nearest(port melee.Port) (melee.PlayerState, bool) {
	self := c.slots[port].state
	var best melee.PlayerState
	found := false
	for _, other := range c.ports() {
		if other == port {
			continue
		}
		st := c.slots[other].state
		if st.Stock <= 0 {
			continue
		}
		if !found || math.Abs(st.X-self.X) < math.Abs(best.X-self.X) {
			best = st
			found = true
		}
	}
	return best, found
}

// hit damages every opponent in front of the attacker within range.
func (c *Console) hit(attacker melee.Port, ports []melee.Port) {
	a := c.slots[attacker].state
	for _, port := range ports {
		if port == attacker {
			continue
		}
		t := &c.slots[port].state
		if t.Stock <= 0 {
			continue
		}
		dx := t.X - a.X
		if math.Abs(dx) > HitRange || math.Abs(t.Y-a.Y) > HitRange {
			continue
		}
		if (dx >= 0) != a.FacingRight {
			continue
		}
		t.Percent += HitDamage
		t.X += math.Copysign(1+t.Percent/20, dx)
	}
}

// knockout takes a stock from a player that took too much damage or left
// the blast zone, and respawns them.
func (c *Console) knockout(s *slot) {
	st := &s.state
	if st.Stock <= 0 {
		return
	}
	inside := math.Abs(st.X) <= BlastZone
	// in sudden death only the blast zone counts
	if inside && (c.menu == melee.MenuSuddenDeath || st.Percent < KnockoutPercent) {
		return
	}
	st.Stock--
	st.Percent = 0
	st.X, st.Y = 0, 0
	if c.menu == melee.MenuSuddenDeath {
		st.Stock = 0
	}
}

// checkEnd leaves gameplay when at most one player has stocks left, or
// when time runs out. A tie on time goes to sudden death.
func (c *Console) checkEnd(ports []melee.Port) {
	alive := 0
	for _, port := range ports {
		if c.slots[port].state.Stock > 0 {
			alive++
		}
	}
	if alive <= 1 && len(ports) > 1 {
		c.menu = melee.MenuPostgameScores
		return
	}
	if c.menu == melee.MenuSuddenDeath {
		// a sudden death that runs out is a draw
		if c.matchFrame >= c.timeLimit+SuddenDeathTime {
			c.menu = melee.MenuPostgameScores
		}
		return
	}
	if c.matchFrame < c.timeLimit {
		return
	}

	if leaders := c.leaders(ports); len(leaders) > 1 {
		c.menu = melee.MenuSuddenDeath
		for _, port := range ports {
			st := &c.slots[port].state
			if !slices.Contains(leaders, port) {
				st.Stock = 0
				continue
			}
			st.Stock = 1
			st.Percent = SuddenDeathDmg
		}
		return
	}
	c.menu = melee.MenuPostgameScores
}

// leaders returns the ports with the most stocks.
func (c *Console) leaders(ports []melee.Port) []melee.Port {
	var out []melee.Port
	best := 0
	for _, port := range ports {
		stock := c.slots[port].state.Stock
		switch {
		case len(out) == 0 || stock > best:
			out = []melee.Port{port}
			best = stock
		case stock == best:
			out = append(out, port)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
