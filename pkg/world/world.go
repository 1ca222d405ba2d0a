// Package world holds the logical game state: the entities on the board,
// the turn state machine, and the systems that advance a run.
package world

import (
	"math/rand"
	"strings"

	"harvest/pkg/gamelog"
	"harvest/pkg/grid"
	"harvest/pkg/level"
)

// Phase is the state the turn machine is currently in.
type Phase int

const (
	PhasePreRun Phase = iota
	PhaseAwaitingInput
	PhasePlayerTurn
	PhaseMonsterTurn
	PhaseGameOver
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhasePreRun:
		return "pre-run"
	case PhaseAwaitingInput:
		return "awaiting-input"
	case PhasePlayerTurn:
		return "player-turn"
	case PhaseMonsterTurn:
		return "monster-turn"
	case PhaseGameOver:
		return "game-over"
	default:
		return "unknown"
	}
}

// Options configure a run.
type Options struct {
	Width  int
	Height int

	// SpawnEvery is the number of monster turns between goblin waves.
	SpawnEvery int
	// Waves is the number of waves to survive for a victory.
	Waves int
	// WaveSize is the goblin count of the first wave; each later wave
	// brings one more.
	WaveSize int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 12
	}
	if o.Height <= 0 {
		o.Height = 12
	}
	if o.SpawnEvery <= 0 {
		o.SpawnEvery = 4
	}
	if o.Waves <= 0 {
		o.Waves = 3
	}
	if o.WaveSize <= 0 {
		o.WaveSize = 2
	}
	return o
}

// Outcome describes a finished run.
type Outcome struct {
	Victory         bool
	Turns           int
	GoblinsDefeated int
}

// Sprite is a drawable (position, glyph) pair for the frontends.
type Sprite struct {
	Pos   grid.Point
	Glyph Glyph
}

// World is the logical game world. It is not safe for concurrent use; the
// frontends drive it from a single goroutine.
type World struct {
	opts   Options
	bounds grid.Bounds
	rng    *rand.Rand
	log    *gamelog.Log

	phase Phase
	turn  int // completed monster turns
	wave  int // waves spawned so far

	next  Entity
	order []Entity

	positions map[Entity]grid.Point
	glyphs    map[Entity]Glyph
	players   map[Entity]bool
	monsters  map[Entity]bool
	towns     map[Entity]bool
	brains    map[Entity]Brain
	moving    map[Entity]grid.Direction
	health    map[Entity]*Health
	attacking map[Entity]Entity
	defeated  map[Entity]bool

	// occupied is rebuilt at the start of every system pass and kept
	// current as entities move or are removed within the pass.
	occupied map[grid.Point]Entity

	hadPlayer       bool
	hadTown         bool
	goblinsDefeated int
	outcome         *Outcome
}

// New creates an empty world. All randomness comes from rng, so runs with
// the same seed and inputs replay identically.
func New(opts Options, rng *rand.Rand, log *gamelog.Log) *World {
	opts = opts.withDefaults()
	return &World{
		opts:      opts,
		bounds:    grid.Bounds{W: opts.Width, H: opts.Height},
		rng:       rng,
		log:       log,
		phase:     PhasePreRun,
		positions: make(map[Entity]grid.Point),
		glyphs:    make(map[Entity]Glyph),
		players:   make(map[Entity]bool),
		monsters:  make(map[Entity]bool),
		towns:     make(map[Entity]bool),
		brains:    make(map[Entity]Brain),
		moving:    make(map[Entity]grid.Direction),
		health:    make(map[Entity]*Health),
		attacking: make(map[Entity]Entity),
		defeated:  make(map[Entity]bool),
		occupied:  make(map[grid.Point]Entity),
	}
}

// Phase returns the current turn machine phase.
func (w *World) Phase() Phase { return w.phase }

// Turn returns the number of completed monster turns.
func (w *World) Turn() int { return w.turn }

// Wave returns the number of goblin waves spawned so far.
func (w *World) Wave() int { return w.wave }

// Bounds returns the board extent.
func (w *World) Bounds() grid.Bounds { return w.bounds }

// GoblinsDefeated returns the number of goblins removed this run.
func (w *World) GoblinsDefeated() int { return w.goblinsDefeated }

// Outcome returns the run outcome once the game is over.
func (w *World) Outcome() (Outcome, bool) {
	if w.outcome == nil {
		return Outcome{}, false
	}
	return *w.outcome, true
}

// PlayerHealth returns the player's remaining hit points.
func (w *World) PlayerHealth() (uint8, bool) {
	p, ok := w.player()
	if !ok {
		return 0, false
	}
	h := w.health[p]
	if h == nil {
		return 0, false
	}
	return h.Amount, true
}

func (w *World) player() (Entity, bool) {
	for _, e := range w.order {
		if w.players[e] {
			return e, true
		}
	}
	return 0, false
}

// spawn creates a bare entity with a position and a glyph.
func (w *World) spawn(p grid.Point, g Glyph) Entity {
	e := w.next
	w.next++
	w.order = append(w.order, e)
	w.positions[e] = p
	w.glyphs[e] = g
	return e
}

// SpawnPlayer places the player with the given hit points.
func (w *World) SpawnPlayer(p grid.Point, hp uint8) Entity {
	e := w.spawn(p, GlyphPlayer)
	w.players[e] = true
	w.health[e] = &Health{Amount: hp}
	w.hadPlayer = true
	return e
}

// SpawnGoblin places a goblin with the given brain.
func (w *World) SpawnGoblin(p grid.Point, b Brain) Entity {
	e := w.spawn(p, GlyphGoblin)
	w.monsters[e] = true
	w.brains[e] = b
	w.health[e] = &Health{Amount: 2}
	return e
}

// SpawnHouse places a house.
func (w *World) SpawnHouse(p grid.Point) Entity {
	e := w.spawn(p, GlyphHouse)
	w.towns[e] = true
	w.health[e] = &Health{Amount: 2}
	w.hadTown = true
	return e
}

// SpawnFarm places a farm.
func (w *World) SpawnFarm(p grid.Point) Entity {
	e := w.spawn(p, GlyphFarm)
	w.towns[e] = true
	w.health[e] = &Health{Amount: 1}
	w.hadTown = true
	return e
}

// SpawnWall places a wall.
func (w *World) SpawnWall(p grid.Point) Entity {
	e := w.spawn(p, GlyphWall)
	w.towns[e] = true
	w.health[e] = &Health{Amount: 3}
	w.hadTown = true
	return e
}

// SpawnTree places a tree.
func (w *World) SpawnTree(p grid.Point) Entity {
	e := w.spawn(p, GlyphTree)
	w.health[e] = &Health{Amount: 1}
	return e
}

// LoadLevel populates the world from generated level inserts.
func (w *World) LoadLevel(inserts []level.Insert) {
	for _, in := range inserts {
		switch in.Item {
		case level.ItemPlayer:
			w.SpawnPlayer(in.Pos, 5)
		case level.ItemFarm:
			w.SpawnFarm(in.Pos)
		case level.ItemHouse:
			w.SpawnHouse(in.Pos)
		case level.ItemWall:
			w.SpawnWall(in.Pos)
		case level.ItemTree:
			w.SpawnTree(in.Pos)
		}
	}
}

// Move queues a player move and hands the turn to the machine. It is only
// accepted while the world is awaiting input.
func (w *World) Move(d grid.Direction) bool {
	if w.phase != PhaseAwaitingInput {
		return false
	}
	p, ok := w.player()
	if !ok {
		return false
	}
	w.moving[p] = d
	w.phase = PhasePlayerTurn
	return true
}

// Wait passes the player turn without moving.
func (w *World) Wait() bool {
	if w.phase != PhaseAwaitingInput {
		return false
	}
	w.phase = PhasePlayerTurn
	return true
}

// Tick advances the turn state machine by one step.
func (w *World) Tick() {
	switch w.phase {
	case PhasePreRun:
		w.runSystems()
		if w.phase == PhasePreRun {
			w.phase = PhaseAwaitingInput
		}
	case PhaseAwaitingInput, PhaseGameOver:
		// Waiting for input, or done. Nothing to run.
	case PhasePlayerTurn:
		w.runSystems()
		if w.phase == PhasePlayerTurn {
			w.phase = PhaseMonsterTurn
		}
	case PhaseMonsterTurn:
		w.runSystems()
		w.turn++
		if w.phase == PhaseMonsterTurn {
			w.phase = PhaseAwaitingInput
		}
	}
}

// runSystems executes one pass of the system pipeline. Monster planning
// happens before movement-to-melee conversion so that a goblin stepping
// into the player lands a hit on the same turn.
func (w *World) runSystems() {
	w.index()
	w.planMonsters()
	w.convertMovementToMelee()
	w.applyMovement()
	w.applyAttacks()
	w.flagDefeated()
	w.removeDefeated()
	w.growTrees()
	w.spawnWave()
	w.checkOutcome()
}

// index rebuilds the cell occupancy map.
func (w *World) index() {
	clear(w.occupied)
	for _, e := range w.order {
		w.occupied[w.positions[e]] = e
	}
}

// checkOutcome ends the run when the player or the whole town is gone, or
// when every spawned wave has been beaten.
func (w *World) checkOutcome() {
	if w.phase == PhaseGameOver || w.outcome != nil {
		return
	}

	_, playerAlive := w.player()
	lost := (w.hadPlayer && !playerAlive) || (w.hadTown && len(w.towns) == 0)
	won := !lost && w.hadPlayer && playerAlive && w.wave >= w.opts.Waves && len(w.monsters) == 0

	if !lost && !won {
		return
	}

	w.outcome = &Outcome{
		Victory:         won,
		Turns:           w.turn,
		GoblinsDefeated: w.goblinsDefeated,
	}
	w.phase = PhaseGameOver
	w.log.Add(gamelog.RunEnded(won))
}

// DrawList returns the renderable entities in spawn order.
func (w *World) DrawList() []Sprite {
	sprites := make([]Sprite, 0, len(w.order))
	for _, e := range w.order {
		sprites = append(sprites, Sprite{Pos: w.positions[e], Glyph: w.glyphs[e]})
	}
	return sprites
}

// BoardString renders the board as ASCII rows, one rune per cell.
func (w *World) BoardString() string {
	rows := make([][]rune, w.bounds.H)
	for y := range rows {
		rows[y] = make([]rune, w.bounds.W)
		for x := range rows[y] {
			rows[y][x] = '.'
		}
	}
	for _, s := range w.DrawList() {
		if w.bounds.Contains(s.Pos) {
			rows[s.Pos.Y][s.Pos.X] = s.Glyph.Rune()
		}
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
