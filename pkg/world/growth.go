package world

import "harvest/pkg/gamelog"

// growTrees gives each tree a 20% chance to gain a hit point on the
// monster turn.
func (w *World) growTrees() {
	if w.phase != PhaseMonsterTurn {
		return
	}

	for _, e := range w.order {
		if w.glyphs[e] != GlyphTree {
			continue
		}
		h := w.health[e]
		if h == nil {
			continue
		}

		if w.rng.Intn(100) < 20 {
			h.Increase(1)
			w.log.Add(gamelog.Grew(w.positions[e]))
		}
	}
}
