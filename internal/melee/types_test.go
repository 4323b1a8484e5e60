package melee

import (
	"encoding/json"
	"testing"
)

func TestMenuInMatch(t *testing.T) {
	tests := []struct {
		menu Menu
		want bool
	}{
		{MenuInGame, true},
		{MenuSuddenDeath, true},
		{MenuCharacterSelect, false},
		{MenuStageSelect, false},
		{MenuPostgameScores, false},
		{MenuMain, false},
		{MenuUnknown, false},
	}

	for _, tt := range tests {
		if got := tt.menu.InMatch(); got != tt.want {
			t.Errorf("%s.InMatch() = %v, want %v", tt.menu, got, tt.want)
		}
	}
}

func TestStageText(t *testing.T) {
	var s Stage
	if err := json.Unmarshal([]byte(`"battlefield"`), &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if s != StageBattlefield {
		t.Errorf("Expected BATTLEFIELD, got %s", s)
	}

	data, err := json.Marshal(StageYoshisStory)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"YOSHIS_STORY"` {
		t.Errorf("Expected \"YOSHIS_STORY\", got %s", data)
	}

	if err := json.Unmarshal([]byte(`"HYRULE"`), &s); err == nil {
		t.Error("Expected error for unknown stage")
	}
}

func TestParseCharacter(t *testing.T) {
	c, err := ParseCharacter(" fox ")
	if err != nil {
		t.Fatalf("ParseCharacter failed: %v", err)
	}
	if c != CharacterFox {
		t.Errorf("Expected FOX, got %s", c)
	}

	if _, err := ParseCharacter("KIRBY64"); err == nil {
		t.Error("Expected error for unknown character")
	}
}

func TestSortedPorts(t *testing.T) {
	m := map[Port]string{Port3: "c", Port1: "a", Port2: "b"}
	ports := SortedPorts(m)
	if len(ports) != 3 || ports[0] != Port1 || ports[1] != Port2 || ports[2] != Port3 {
		t.Errorf("Unexpected order: %v", ports)
	}
}

func TestGameStatePlayer(t *testing.T) {
	var nilState *GameState
	if _, ok := nilState.Player(Port1); ok {
		t.Error("nil state should have no players")
	}

	gs := &GameState{Players: map[Port]PlayerState{Port2: {Stock: 4}}}
	ps, ok := gs.Player(Port2)
	if !ok || ps.Stock != 4 {
		t.Errorf("Unexpected player state: %+v, %v", ps, ok)
	}
}
