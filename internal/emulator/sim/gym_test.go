package sim_test

import (
	"context"
	"testing"

	"github.com/vovakirdan/melee-gym/internal/config"
	"github.com/vovakirdan/melee-gym/internal/embed"
	"github.com/vovakirdan/melee-gym/internal/emulator"
	"github.com/vovakirdan/melee-gym/internal/emulator/sim"
	"github.com/vovakirdan/melee-gym/internal/gym"
	"github.com/vovakirdan/melee-gym/internal/melee"
	"github.com/vovakirdan/melee-gym/internal/pad"
	"github.com/vovakirdan/melee-gym/internal/player"
)

type records struct {
	got []gym.EpisodeRecord
}

func (r *records) RecordEpisode(rec gym.EpisodeRecord) error {
	r.got = append(r.got, rec)
	return nil
}

func TestEnvPlaysFullEpisodes(t *testing.T) {
	cfg := config.Default()
	cfg.Stage = melee.StageBattlefield

	console, err := sim.New(cfg.ConsoleOptions(), sim.WithTimeLimit(300))
	if err != nil {
		t.Fatalf("sim.New failed: %v", err)
	}

	players := map[melee.Port]player.Player{
		melee.Port1: player.CPU{Character: melee.CharacterFox, Level: 9},
		melee.Port2: player.AI{Character: melee.CharacterFox},
	}
	ports := melee.SortedPorts(players)
	rec := &records{}

	env, err := gym.New(cfg, console, embed.NewFlat(ports), players, gym.WithRecorder(rec))
	if err != nil {
		t.Fatalf("gym.New failed: %v", err)
	}
	defer env.Close()

	ctx := context.Background()
	action := map[melee.Port]pad.State{
		melee.Port1: pad.Neutral(),
		melee.Port2: pad.Neutral(),
	}

	for episode := range 2 {
		obs, err := env.Reset(ctx)
		if err != nil {
			t.Fatalf("episode %d: Reset failed: %v", episode, err)
		}
		v := obs.(embed.Vector)
		if len(v.Values) != 2*embed.FeaturesPerPlayer {
			t.Fatalf("Unexpected observation size %d", len(v.Values))
		}

		steps := 0
		limit := 300 + sim.SuddenDeathTime + 10
		for {
			res, err := env.Step(ctx, action)
			if err != nil {
				t.Fatalf("episode %d: Step %d failed: %v", episode, steps, err)
			}
			steps++
			if res.Done {
				if res.Observation != nil {
					t.Error("Observation must be nil when done")
				}
				break
			}
			if steps > limit {
				t.Fatalf("episode %d: match did not end after %d steps", episode, steps)
			}
		}
	}

	if console.Runs() != 2 {
		t.Errorf("Expected the console to restart per episode, got %d runs", console.Runs())
	}
	if len(rec.got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(rec.got))
	}
	for i, r := range rec.got {
		if r.Outcome != gym.OutcomeCompleted {
			t.Errorf("record %d: outcome %s", i, r.Outcome)
		}
		if r.MenuFrames <= gym.AutostartSettleFrames {
			t.Errorf("record %d: started after only %d menu frames", i, r.MenuFrames)
		}
		if r.Stage != melee.StageBattlefield {
			t.Errorf("record %d: stage %s", i, r.Stage)
		}
	}

	if err := env.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if console.Running() {
		t.Error("Console still running after Close")
	}
}

func TestEnvWithRegisteredBackend(t *testing.T) {
	cfg := config.Default()
	console, err := emulator.Create("sim", cfg.ConsoleOptions())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	players := map[melee.Port]player.Player{
		melee.Port1: player.DefaultCPU(),
		melee.Port2: player.AI{},
	}
	env, err := gym.New(cfg, console, embed.NewFlat(melee.SortedPorts(players)), players)
	if err != nil {
		t.Fatalf("gym.New failed: %v", err)
	}
	defer env.Close()

	if _, err := env.Reset(context.Background()); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if env.Phase() != gym.PhaseInMatch {
		t.Errorf("Expected in-match, got %s", env.Phase())
	}
}
