// Package level generates the starting settlement layout for a run.
package level

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"harvest/pkg/grid"
)

// Item is a thing placed on the board by the generator.
type Item int

const (
	ItemNone Item = iota
	ItemPlayer
	ItemFarm
	ItemHouse
	ItemTree
	ItemWall
)

// String returns a human-readable item name.
func (i Item) String() string {
	switch i {
	case ItemPlayer:
		return "player"
	case ItemFarm:
		return "farm"
	case ItemHouse:
		return "house"
	case ItemTree:
		return "tree"
	case ItemWall:
		return "wall"
	default:
		return "none"
	}
}

// Insert is a single placement produced by the generator.
type Insert struct {
	Pos  grid.Point
	Item Item
}

// ErrBoardFull is returned when no open cell remains for a placement.
var ErrBoardFull = errors.New("no open cell left on the board")

// Generator builds settlement layouts for a fixed board size.
type Generator struct {
	width  int
	height int
}

// NewGenerator creates a generator for a width x height board.
func NewGenerator(width, height int) (*Generator, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("board size must be positive, got %dx%d", width, height)
	}
	return &Generator{width: width, height: height}, nil
}

// Generate produces a settlement layout with the given number of houses and
// a tree density between 0 and 1. Rules:
//
//   - The first house lands in the center third of the board; the rest land
//     2 to 4 tiles from an existing house.
//   - Each house gets one farm within 1 to 2 tiles.
//   - Each house gets two walls, each protecting a house or a farm (even
//     odds) and facing the nearest board edge.
//   - Trees fill remaining cells until the occupied fraction reaches density.
//   - The player lands 1 to 3 tiles from a house.
//
// Goblins are left to the world's spawn system.
func (g *Generator) Generate(rng *rand.Rand, houses int, density float64) ([]Insert, error) {
	if houses <= 0 {
		return nil, fmt.Errorf("houses must be positive, got %d", houses)
	}
	if density < 0 || density > 1 {
		return nil, fmt.Errorf("density must be within [0, 1], got %v", density)
	}

	board := make([][]Item, g.height)
	for y := range board {
		board[y] = make([]Item, g.width)
	}

	// Houses first. The opening house sits in the center third of the board
	// so the settlement has room to sprawl in every direction.
	{
		xThird := g.width / 3
		yThird := g.height / 3
		x := rng.Intn(max(xThird, 1)) + xThird
		y := rng.Intn(max(yThird, 1)) + yThird
		board[y][x] = ItemHouse

		for added := 1; added < houses; added++ {
			p, err := g.nearItem(rng, 2, 4, ItemHouse, board)
			if err != nil {
				return nil, err
			}
			board[p.Y][p.X] = ItemHouse
		}
	}

	// One farm close to each house.
	for added := 0; added < houses; added++ {
		p, err := g.nearItem(rng, 1, 2, ItemHouse, board)
		if err != nil {
			return nil, err
		}
		board[p.Y][p.X] = ItemFarm
	}

	// Two walls per house. Each wall defends a house or a farm and tries to
	// face outwards, towards the closest board edge.
	for added := 0; added < houses*2; added++ {
		protect := ItemHouse
		if rng.Intn(2) == 1 {
			protect = ItemFarm
		}
		p, err := g.outwardFacing(rng, protect, board)
		if err != nil {
			return nil, err
		}
		board[p.Y][p.X] = ItemWall
	}

	// Fill with trees until the board reaches the requested density.
	{
		total := float64(g.width * g.height)
		occupied := float64(houses * 4)

		for occupied/total < density {
			p, err := g.anyOpen(rng, board)
			if err != nil {
				break // board is full, density is as high as it gets
			}
			board[p.Y][p.X] = ItemTree
			occupied++
		}
	}

	// Finally the player, near a house.
	{
		p, err := g.nearItem(rng, 1, 3, ItemHouse, board)
		if err != nil {
			return nil, err
		}
		board[p.Y][p.X] = ItemPlayer
	}

	return collect(board), nil
}

// allOfType returns every position holding the item, shuffled.
func (g *Generator) allOfType(rng *rand.Rand, of Item, board [][]Item) []grid.Point {
	var positions []grid.Point
	for y, row := range board {
		for x, item := range row {
			if item == of {
				positions = append(positions, grid.Point{X: x, Y: y})
			}
		}
	}
	rng.Shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})
	return positions
}

// edgeOrdered returns the in-bounds neighbours of p ordered by how close
// they are to a board edge, closest first.
func (g *Generator) edgeOrdered(p grid.Point) []grid.Point {
	bounds := grid.Bounds{W: g.width, H: g.height}

	var spots []grid.Point
	for _, d := range []grid.Direction{grid.Left, grid.Right, grid.Up, grid.Down} {
		if next := p.Step(d); bounds.Contains(next) {
			spots = append(spots, next)
		}
	}

	sort.SliceStable(spots, func(i, j int) bool {
		return g.edgeDistance(spots[i]) < g.edgeDistance(spots[j])
	})
	return spots
}

// edgeDistance returns the distance from p to the nearest board edge.
func (g *Generator) edgeDistance(p grid.Point) int {
	d := p.X
	if v := g.width - 1 - p.X; v < d {
		d = v
	}
	if p.Y < d {
		d = p.Y
	}
	if v := g.height - 1 - p.Y; v < d {
		d = v
	}
	return d
}

// outwardFacing finds an open cell adjacent to an item of the given type,
// preferring cells that face the nearest board edge. Falls back to any open
// cell when every neighbour is taken.
func (g *Generator) outwardFacing(rng *rand.Rand, of Item, board [][]Item) (grid.Point, error) {
	for _, at := range g.allOfType(rng, of, board) {
		for _, p := range g.edgeOrdered(at) {
			if board[p.Y][p.X] == ItemNone {
				return p, nil
			}
		}
	}
	return g.anyOpen(rng, board)
}

// nearItem finds an open cell between outside and within tiles (along one
// axis) of an item of the given type. Falls back to any open cell.
func (g *Generator) nearItem(rng *rand.Rand, outside, within int, of Item, board [][]Item) (grid.Point, error) {
	positions := g.allOfType(rng, of, board)
	bounds := grid.Bounds{W: g.width, H: g.height}

	for distance := outside; distance < within; distance++ {
		for _, at := range positions {
			for _, delta := range []grid.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
				p := grid.Point{X: at.X + delta.X*distance, Y: at.Y + delta.Y*distance}
				if !bounds.Contains(p) {
					continue
				}
				if board[p.Y][p.X] == ItemNone {
					return p, nil
				}
			}
		}
	}

	return g.anyOpen(rng, board)
}

// anyOpen returns a uniformly random open cell.
func (g *Generator) anyOpen(rng *rand.Rand, board [][]Item) (grid.Point, error) {
	var open []grid.Point
	for y, row := range board {
		for x, item := range row {
			if item == ItemNone {
				open = append(open, grid.Point{X: x, Y: y})
			}
		}
	}
	if len(open) == 0 {
		return grid.Point{}, ErrBoardFull
	}
	return open[rng.Intn(len(open))], nil
}

// collect flattens the board into placement inserts, row-major.
func collect(board [][]Item) []Insert {
	var inserts []Insert
	for y, row := range board {
		for x, item := range row {
			if item != ItemNone {
				inserts = append(inserts, Insert{Pos: grid.Point{X: x, Y: y}, Item: item})
			}
		}
	}
	return inserts
}
