package world

import (
	"harvest/pkg/gamelog"
	"harvest/pkg/grid"
)

// spawnWave brings a wave of goblins in from the board edges. A wave
// arrives every SpawnEvery monster turns, each one goblin larger than the
// last, until every wave has spawned.
func (w *World) spawnWave() {
	if w.phase != PhaseMonsterTurn {
		return
	}
	if w.wave >= w.opts.Waves {
		return
	}
	if (w.turn+1)%w.opts.SpawnEvery != 0 {
		return
	}

	count := w.opts.WaveSize + w.wave
	open := w.openEdgeCells()
	w.rng.Shuffle(len(open), func(i, j int) {
		open[i], open[j] = open[j], open[i]
	})
	if count > len(open) {
		count = len(open)
	}

	for i := 0; i < count; i++ {
		p := open[i]
		brain := Brain(w.rng.Intn(3))
		e := w.SpawnGoblin(p, brain)
		w.occupied[p] = e
		w.log.Add(gamelog.Spawned(GlyphGoblin.String(), p))
	}

	w.wave++
}

// openEdgeCells returns the unoccupied border cells, row-major.
func (w *World) openEdgeCells() []grid.Point {
	var open []grid.Point
	for y := 0; y < w.bounds.H; y++ {
		for x := 0; x < w.bounds.W; x++ {
			if x != 0 && x != w.bounds.W-1 && y != 0 && y != w.bounds.H-1 {
				continue
			}
			p := grid.Point{X: x, Y: y}
			if _, taken := w.occupied[p]; !taken {
				open = append(open, p)
			}
		}
	}
	return open
}
