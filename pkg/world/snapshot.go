package world

import (
	"fmt"
	"math/rand"

	"harvest/pkg/gamelog"
	"harvest/pkg/grid"
)

// EntityState is the serializable form of one entity.
type EntityState struct {
	ID      int    `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Glyph   int    `json:"glyph"`
	Player  bool   `json:"player,omitempty"`
	Monster bool   `json:"monster,omitempty"`
	Town    bool   `json:"town,omitempty"`
	Brain   *int   `json:"brain,omitempty"`
	Health  *uint8 `json:"health,omitempty"`
}

// State is the serializable snapshot of a run.
type State struct {
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	SpawnEvery      int           `json:"spawn_every"`
	Waves           int           `json:"waves"`
	WaveSize        int           `json:"wave_size"`
	Phase           int           `json:"phase"`
	Turn            int           `json:"turn"`
	Wave            int           `json:"wave"`
	GoblinsDefeated int           `json:"goblins_defeated"`
	HadPlayer       bool          `json:"had_player"`
	HadTown         bool          `json:"had_town"`
	Next            int           `json:"next_entity"`
	Entities        []EntityState `json:"entities"`
}

// Snapshot captures the current run state. Pending moves and attacks are
// intra-pass scratch and are not captured; snapshots taken between ticks
// never hold any.
func (w *World) Snapshot() State {
	s := State{
		Width:           w.opts.Width,
		Height:          w.opts.Height,
		SpawnEvery:      w.opts.SpawnEvery,
		Waves:           w.opts.Waves,
		WaveSize:        w.opts.WaveSize,
		Phase:           int(w.phase),
		Turn:            w.turn,
		Wave:            w.wave,
		GoblinsDefeated: w.goblinsDefeated,
		HadPlayer:       w.hadPlayer,
		HadTown:         w.hadTown,
		Next:            int(w.next),
	}

	for _, e := range w.order {
		pos := w.positions[e]
		es := EntityState{
			ID:      int(e),
			X:       pos.X,
			Y:       pos.Y,
			Glyph:   int(w.glyphs[e]),
			Player:  w.players[e],
			Monster: w.monsters[e],
			Town:    w.towns[e],
		}
		if b, ok := w.brains[e]; ok {
			brain := int(b)
			es.Brain = &brain
		}
		if h := w.health[e]; h != nil {
			amount := h.Amount
			es.Health = &amount
		}
		s.Entities = append(s.Entities, es)
	}

	return s
}

// Restore rebuilds a world from a snapshot. The RNG stream restarts from
// rng; entity layout, turn counters, and phase are restored exactly.
func Restore(s State, rng *rand.Rand, log *gamelog.Log) (*World, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("snapshot has invalid board size %dx%d", s.Width, s.Height)
	}
	if s.Phase < int(PhasePreRun) || s.Phase > int(PhaseGameOver) {
		return nil, fmt.Errorf("snapshot has invalid phase %d", s.Phase)
	}

	w := New(Options{
		Width:      s.Width,
		Height:     s.Height,
		SpawnEvery: s.SpawnEvery,
		Waves:      s.Waves,
		WaveSize:   s.WaveSize,
	}, rng, log)

	w.phase = Phase(s.Phase)
	w.turn = s.Turn
	w.wave = s.Wave
	w.goblinsDefeated = s.GoblinsDefeated
	w.hadPlayer = s.HadPlayer
	w.hadTown = s.HadTown

	for _, es := range s.Entities {
		p := grid.Point{X: es.X, Y: es.Y}
		if !w.bounds.Contains(p) {
			return nil, fmt.Errorf("snapshot entity %d out of bounds at (%d, %d)", es.ID, es.X, es.Y)
		}

		e := Entity(es.ID)
		w.order = append(w.order, e)
		w.positions[e] = p
		w.glyphs[e] = Glyph(es.Glyph)
		if es.Player {
			w.players[e] = true
		}
		if es.Monster {
			w.monsters[e] = true
		}
		if es.Town {
			w.towns[e] = true
		}
		if es.Brain != nil {
			w.brains[e] = Brain(*es.Brain)
		}
		if es.Health != nil {
			w.health[e] = &Health{Amount: *es.Health}
		}
	}

	w.next = Entity(s.Next)
	if len(w.order) > 0 && w.next <= w.order[len(w.order)-1] {
		w.next = w.order[len(w.order)-1] + 1
	}

	if w.phase == PhaseGameOver && w.outcome == nil {
		w.outcome = &Outcome{
			Victory:         w.hadPlayer && len(w.players) > 0 && len(w.monsters) == 0,
			Turns:           w.turn,
			GoblinsDefeated: w.goblinsDefeated,
		}
	}

	return w, nil
}
