//go:build !js

package main

import (
	"math/rand"
	"testing"

	"harvest/pkg/gamelog"
	"harvest/pkg/level"
	"harvest/pkg/world"
)

// TestFullRun plays whole games with the headless autopilot across several
// seeds and checks the board invariants every turn.
func TestFullRun(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		rng := rand.New(rand.NewSource(seed))

		gen, err := level.NewGenerator(12, 12)
		if err != nil {
			t.Fatal(err)
		}
		inserts, err := gen.Generate(rng, 3, 0.3)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		events := gamelog.New()
		w := world.New(world.Options{
			Width:      12,
			Height:     12,
			SpawnEvery: 3,
			Waves:      3,
			WaveSize:   2,
		}, rng, events)
		w.LoadLevel(inserts)
		w.Tick()

		for turn := 0; turn < 300 && w.Phase() != world.PhaseGameOver; turn++ {
			autoplay(w)
			w.Tick()
			w.Tick()
			checkInvariants(t, w, seed)
		}

		events.Flush()

		if w.Wave() == 0 {
			t.Errorf("seed %d: no goblin wave spawned across the whole run", seed)
		}
		if outcome, done := w.Outcome(); done {
			if w.Phase() != world.PhaseGameOver {
				t.Errorf("seed %d: outcome recorded but phase is %v", seed, w.Phase())
			}
			if outcome.Turns == 0 {
				t.Errorf("seed %d: outcome reports a zero-turn run", seed)
			}
		}
	}
}

func checkInvariants(t *testing.T, w *world.World, seed int64) {
	t.Helper()

	bounds := w.Bounds()
	players := 0
	occupied := map[[2]int]bool{}

	for _, s := range w.DrawList() {
		if !bounds.Contains(s.Pos) {
			t.Fatalf("seed %d: %v out of bounds at %v", seed, s.Glyph, s.Pos)
		}
		cell := [2]int{s.Pos.X, s.Pos.Y}
		if occupied[cell] {
			t.Fatalf("seed %d: two entities share cell %v", seed, s.Pos)
		}
		occupied[cell] = true
		if s.Glyph == world.GlyphPlayer {
			players++
		}
	}

	if players > 1 {
		t.Fatalf("seed %d: %d players on the board", seed, players)
	}
}
