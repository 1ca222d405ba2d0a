package world

import "harvest/pkg/gamelog"

// convertMovementToMelee turns moves into melee attacks. An entity moving
// into an occupied cell stops; if the blocker has health, the mover attacks
// it instead.
func (w *World) convertMovementToMelee() {
	for _, e := range w.order {
		d, ok := w.moving[e]
		if !ok {
			continue
		}

		target, blocked := w.occupied[w.positions[e].Step(d)]
		if !blocked {
			continue
		}

		delete(w.moving, e)

		// Blockers without health (nothing left to hurt) just block.
		if w.health[target] == nil {
			continue
		}
		w.attacking[e] = target
	}
}

// applyAttacks resolves queued attacks, reducing each target's health by
// one and logging the hit.
func (w *World) applyAttacks() {
	for _, e := range w.order {
		target, ok := w.attacking[e]
		if !ok {
			continue
		}

		h := w.health[target]
		if h == nil {
			continue
		}
		alive := h.Reduce(1)

		w.log.Add(gamelog.Attacked(
			w.glyphs[e].String(),
			w.glyphs[target].String(),
			w.positions[target],
			!alive,
		))
	}

	clear(w.attacking)
}

// flagDefeated marks entities whose health reached zero.
func (w *World) flagDefeated() {
	for _, e := range w.order {
		h := w.health[e]
		if h == nil || h.Amount > 0 {
			continue
		}
		delete(w.health, e)
		w.defeated[e] = true
	}
}

// removeDefeated deletes defeated entities from the world entirely.
func (w *World) removeDefeated() {
	if len(w.defeated) == 0 {
		return
	}

	kept := w.order[:0]
	for _, e := range w.order {
		if !w.defeated[e] {
			kept = append(kept, e)
			continue
		}

		if w.monsters[e] {
			w.goblinsDefeated++
		}

		delete(w.occupied, w.positions[e])
		delete(w.positions, e)
		delete(w.glyphs, e)
		delete(w.players, e)
		delete(w.monsters, e)
		delete(w.towns, e)
		delete(w.brains, e)
		delete(w.moving, e)
		delete(w.health, e)
		delete(w.attacking, e)
	}
	w.order = kept

	clear(w.defeated)
}
