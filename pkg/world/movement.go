package world

// applyMovement moves every entity with a pending move. A move is dropped
// when the destination cell is occupied or out of bounds. The occupancy map
// is updated as entities move so two movers never land on the same cell.
func (w *World) applyMovement() {
	for _, e := range w.order {
		d, ok := w.moving[e]
		if !ok {
			continue
		}

		from := w.positions[e]
		to := from.Step(d)

		if _, taken := w.occupied[to]; taken {
			continue
		}
		if !w.bounds.Contains(to) {
			continue
		}

		delete(w.occupied, from)
		w.occupied[to] = e
		w.positions[e] = to
	}

	clear(w.moving)
}
