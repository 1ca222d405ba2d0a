package world

import (
	"math/rand"
	"strings"
	"testing"

	"harvest/pkg/gamelog"
	"harvest/pkg/grid"
)

func newTestWorld(seed int64, opts Options) (*World, *gamelog.Log) {
	log := gamelog.New()
	return New(opts, rand.New(rand.NewSource(seed)), log), log
}

// step plays one full turn: the player waits, then the monsters act.
func step(w *World) {
	w.Wait()
	w.Tick() // player turn
	w.Tick() // monster turn
}

func TestPreRunTransitionsToAwaitingInput(t *testing.T) {
	w, _ := newTestWorld(1, Options{Waves: 1})
	w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 5)

	if w.Phase() != PhasePreRun {
		t.Fatalf("initial phase = %v; want pre-run", w.Phase())
	}
	w.Tick()
	if w.Phase() != PhaseAwaitingInput {
		t.Fatalf("phase after first tick = %v; want awaiting-input", w.Phase())
	}
}

func TestMoveOnlyAcceptedWhileAwaitingInput(t *testing.T) {
	w, _ := newTestWorld(1, Options{})
	w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 5)

	if w.Move(grid.Right) {
		t.Error("Move accepted during pre-run")
	}

	w.Tick()
	if !w.Move(grid.Right) {
		t.Error("Move rejected while awaiting input")
	}
	if w.Phase() != PhasePlayerTurn {
		t.Errorf("phase after Move = %v; want player-turn", w.Phase())
	}
	if w.Move(grid.Right) {
		t.Error("second Move accepted before the turn resolved")
	}
}

func TestPlayerMovesIntoOpenCell(t *testing.T) {
	tests := []struct {
		dir  grid.Direction
		want grid.Point
	}{
		{grid.Up, grid.Point{X: 5, Y: 4}},
		{grid.Down, grid.Point{X: 5, Y: 6}},
		{grid.Left, grid.Point{X: 4, Y: 5}},
		{grid.Right, grid.Point{X: 6, Y: 5}},
	}

	for _, tc := range tests {
		w, _ := newTestWorld(1, Options{Waves: 1, SpawnEvery: 100})
		p := w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 5)
		w.Tick()

		w.Move(tc.dir)
		w.Tick()

		if got := w.positions[p]; got != tc.want {
			t.Errorf("Move(%v): player at %v; want %v", tc.dir, got, tc.want)
		}
	}
}

func TestPlayerBlockedAtBoardEdge(t *testing.T) {
	w, _ := newTestWorld(1, Options{Width: 10, Height: 10, SpawnEvery: 100})
	p := w.SpawnPlayer(grid.Point{X: 0, Y: 0}, 5)
	w.Tick()

	w.Move(grid.Up)
	w.Tick()

	if got := w.positions[p]; got != (grid.Point{X: 0, Y: 0}) {
		t.Errorf("player moved off the board to %v", got)
	}
}

func TestMovingIntoEntityAttacksIt(t *testing.T) {
	w, log := newTestWorld(1, Options{SpawnEvery: 100})
	p := w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 5)
	g := w.SpawnGoblin(grid.Point{X: 6, Y: 5}, BrainWander)
	w.Tick()

	w.Move(grid.Right)
	w.Tick()

	if got := w.positions[p]; got != (grid.Point{X: 5, Y: 5}) {
		t.Errorf("player moved to %v; want to stay put", got)
	}
	if got := w.health[g].Amount; got != 1 {
		t.Errorf("goblin health = %d; want 1", got)
	}

	entries := log.Flush()
	var attacked bool
	for _, e := range entries {
		if e.Kind == gamelog.KindAttacked && e.Attacker == "player" && e.Target == "goblin" {
			attacked = true
			if e.At != (grid.Point{X: 6, Y: 5}) {
				t.Errorf("attack logged at %v; want target cell (6, 5)", e.At)
			}
			if e.Defeated {
				t.Error("attack logged as defeating a 2 hp goblin in one hit")
			}
		}
	}
	if !attacked {
		t.Error("no attack entry logged")
	}
}

func TestDefeatedGoblinIsRemoved(t *testing.T) {
	w, _ := newTestWorld(1, Options{SpawnEvery: 100})
	w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 5)
	// Pin the goblin between the player and a wall so it cannot drift off.
	g := w.SpawnGoblin(grid.Point{X: 6, Y: 5}, BrainPrioritizePlayer)
	w.SpawnWall(grid.Point{X: 7, Y: 5})
	w.Tick()

	w.Move(grid.Right)
	w.Tick() // player turn: first hit
	w.Tick() // monster turn

	w.Move(grid.Right)
	w.Tick() // player turn: second hit, goblin defeated
	w.Tick()

	if _, alive := w.positions[g]; alive {
		t.Error("defeated goblin still on the board")
	}
	if got := w.GoblinsDefeated(); got != 1 {
		t.Errorf("GoblinsDefeated = %d; want 1", got)
	}
}

func TestAdjacentGoblinAttacksPlayer(t *testing.T) {
	w, _ := newTestWorld(1, Options{SpawnEvery: 100})
	p := w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 5)
	w.SpawnGoblin(grid.Point{X: 6, Y: 5}, BrainWander)
	w.Tick()

	step(w)

	if got := w.health[p].Amount; got != 4 {
		t.Errorf("player health after adjacent goblin turn = %d; want 4", got)
	}
}

func TestPrioritizePlayerClosesDistance(t *testing.T) {
	w, _ := newTestWorld(1, Options{SpawnEvery: 100})
	w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 5)
	g := w.SpawnGoblin(grid.Point{X: 9, Y: 5}, BrainPrioritizePlayer)
	w.Tick()

	step(w)

	if got := w.positions[g]; got != (grid.Point{X: 8, Y: 5}) {
		t.Errorf("goblin at %v; want (8, 5)", got)
	}
}

func TestPrioritizeTownClosesOnNearestStructure(t *testing.T) {
	w, _ := newTestWorld(1, Options{SpawnEvery: 100})
	w.SpawnPlayer(grid.Point{X: 0, Y: 0}, 5)
	w.SpawnHouse(grid.Point{X: 5, Y: 9})
	w.SpawnFarm(grid.Point{X: 9, Y: 2})
	g := w.SpawnGoblin(grid.Point{X: 9, Y: 5}, BrainPrioritizeTown)
	w.Tick()

	step(w)

	// The farm at (9, 2) is the nearest structure; the goblin heads up.
	if got := w.positions[g]; got != (grid.Point{X: 9, Y: 4}) {
		t.Errorf("goblin at %v; want (9, 4)", got)
	}
}

func TestWaveSpawnsOnSchedule(t *testing.T) {
	w, log := newTestWorld(3, Options{Width: 12, Height: 12, Waves: 2, WaveSize: 2, SpawnEvery: 1})
	w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 5)
	w.SpawnHouse(grid.Point{X: 6, Y: 6})
	w.Tick()
	log.Flush()

	step(w)

	if got := w.Wave(); got != 1 {
		t.Fatalf("Wave = %d; want 1", got)
	}
	if got := len(w.monsters); got != 2 {
		t.Fatalf("%d goblins spawned; want 2", got)
	}

	for e := range w.monsters {
		p := w.positions[e]
		onEdge := p.X == 0 || p.X == 11 || p.Y == 0 || p.Y == 11
		if !onEdge {
			t.Errorf("goblin spawned at %v; want a border cell", p)
		}
	}

	var spawned int
	for _, e := range log.Flush() {
		if e.Kind == gamelog.KindSpawned {
			spawned++
		}
	}
	if spawned != 2 {
		t.Errorf("%d spawn entries logged; want 2", spawned)
	}
}

func TestLaterWavesGrow(t *testing.T) {
	w, _ := newTestWorld(3, Options{Width: 12, Height: 12, Waves: 2, WaveSize: 1, SpawnEvery: 1})
	w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 50)
	w.SpawnHouse(grid.Point{X: 6, Y: 6})
	w.Tick()

	step(w) // wave 1: 1 goblin
	step(w) // wave 2: 2 goblins

	if got := w.Wave(); got != 2 {
		t.Fatalf("Wave = %d; want 2", got)
	}
	spawnedTotal := len(w.monsters) + w.GoblinsDefeated()
	if spawnedTotal != 3 {
		t.Errorf("total goblins spawned = %d; want 3", spawnedTotal)
	}
}

func TestTreesGrowOverTime(t *testing.T) {
	w, _ := newTestWorld(5, Options{SpawnEvery: 1000, Waves: 1})
	w.SpawnPlayer(grid.Point{X: 0, Y: 0}, 100)
	trees := []Entity{
		w.SpawnTree(grid.Point{X: 8, Y: 8}),
		w.SpawnTree(grid.Point{X: 9, Y: 8}),
		w.SpawnTree(grid.Point{X: 10, Y: 8}),
	}
	w.Tick()

	for i := 0; i < 50; i++ {
		step(w)
	}

	grown := 0
	for _, tr := range trees {
		grown += int(w.health[tr].Amount) - 1
	}
	if grown == 0 {
		t.Error("no tree grew across 50 monster turns")
	}
}

func TestRunLostWhenPlayerFalls(t *testing.T) {
	w, log := newTestWorld(1, Options{SpawnEvery: 100})
	w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 1)
	w.SpawnHouse(grid.Point{X: 2, Y: 2})
	w.SpawnGoblin(grid.Point{X: 6, Y: 5}, BrainPrioritizePlayer)
	w.Tick()

	step(w)

	if w.Phase() != PhaseGameOver {
		t.Fatalf("phase = %v; want game-over", w.Phase())
	}
	outcome, done := w.Outcome()
	if !done {
		t.Fatal("no outcome recorded")
	}
	if outcome.Victory {
		t.Error("outcome marked as victory after the player fell")
	}

	var ended bool
	for _, e := range log.Flush() {
		if e.Kind == gamelog.KindRunEnded && !e.Victory {
			ended = true
		}
	}
	if !ended {
		t.Error("no run-ended entry logged")
	}

	if w.Move(grid.Left) {
		t.Error("Move accepted after game over")
	}
}

func TestRunLostWhenTownFalls(t *testing.T) {
	w, _ := newTestWorld(1, Options{SpawnEvery: 100})
	w.SpawnPlayer(grid.Point{X: 0, Y: 0}, 5)
	farm := w.SpawnFarm(grid.Point{X: 5, Y: 5}) // 1 hp, the whole town
	w.SpawnGoblin(grid.Point{X: 6, Y: 5}, BrainPrioritizeTown)
	w.Tick()

	step(w)

	if _, alive := w.positions[farm]; alive {
		t.Fatal("farm survived an adjacent goblin turn")
	}
	if w.Phase() != PhaseGameOver {
		t.Fatalf("phase = %v; want game-over", w.Phase())
	}
	outcome, _ := w.Outcome()
	if outcome.Victory {
		t.Error("outcome marked as victory after the town fell")
	}
}

func TestVictoryAfterFinalWaveCleared(t *testing.T) {
	w, _ := newTestWorld(1, Options{SpawnEvery: 100, Waves: 1, WaveSize: 1})
	w.SpawnPlayer(grid.Point{X: 5, Y: 5}, 10)
	w.SpawnHouse(grid.Point{X: 6, Y: 6})
	w.Tick()
	w.wave = 1 // final wave already spawned and cleared

	step(w)

	if w.Phase() != PhaseGameOver {
		t.Fatalf("phase = %v; want game-over", w.Phase())
	}
	outcome, _ := w.Outcome()
	if !outcome.Victory {
		t.Error("outcome not marked as victory with all waves cleared")
	}
}

func TestBoardString(t *testing.T) {
	w, _ := newTestWorld(1, Options{Width: 4, Height: 3})
	w.SpawnPlayer(grid.Point{X: 1, Y: 1}, 5)
	w.SpawnHouse(grid.Point{X: 3, Y: 0})
	w.SpawnTree(grid.Point{X: 0, Y: 2})

	want := strings.Join([]string{
		"...H",
		".@..",
		"T...",
		"",
	}, "\n")
	if got := w.BoardString(); got != want {
		t.Errorf("BoardString =\n%s\nwant\n%s", got, want)
	}
}
