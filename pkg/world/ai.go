package world

import "harvest/pkg/grid"

// planMonsters queues a move for every entity with a brain. Runs only on
// the monster turn.
//
// A goblin standing next to the player always steps into it (which the
// combat conversion turns into a melee attack). Otherwise it moves by
// brain: wander randomly, head for the closest town structure, or head
// for the player.
func (w *World) planMonsters() {
	if w.phase != PhaseMonsterTurn {
		return
	}

	playerPos, playerAlive := w.playerPosition()
	townPositions := w.townPositions()

	for _, e := range w.order {
		brain, ok := w.brains[e]
		if !ok {
			continue
		}
		pos := w.positions[e]

		if w.monsters[e] && playerAlive && pos.Distance(playerPos) == 1 {
			w.moving[e] = grid.Toward(pos, playerPos)
			continue
		}

		switch {
		case brain == BrainPrioritizeTown && len(townPositions) > 0:
			w.moving[e] = grid.Toward(pos, closest(pos, townPositions))
		case brain == BrainPrioritizePlayer && playerAlive:
			w.moving[e] = grid.Toward(pos, playerPos)
		default:
			w.moving[e] = w.randomDirection()
		}
	}
}

func (w *World) playerPosition() (grid.Point, bool) {
	p, ok := w.player()
	if !ok {
		return grid.Point{}, false
	}
	return w.positions[p], true
}

func (w *World) townPositions() []grid.Point {
	var positions []grid.Point
	for _, e := range w.order {
		if w.towns[e] {
			positions = append(positions, w.positions[e])
		}
	}
	return positions
}

func (w *World) randomDirection() grid.Direction {
	dirs := [...]grid.Direction{grid.Up, grid.Down, grid.Left, grid.Right}
	return dirs[w.rng.Intn(len(dirs))]
}

// closest returns the candidate nearest to from. Earlier candidates win
// ties, keeping runs deterministic.
func closest(from grid.Point, candidates []grid.Point) grid.Point {
	best := candidates[0]
	bestDistance := from.Distance(best)
	for _, c := range candidates[1:] {
		if d := from.Distance(c); d < bestDistance {
			best = c
			bestDistance = d
		}
	}
	return best
}
