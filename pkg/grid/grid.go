package grid

import "math"

// Coords converts a flat cell index into (x, y) coordinates for a board
// with the given number of columns.
func Coords(index, cols int) (int, int) {
	return index % cols, index / cols
}

// Index converts (x, y) coordinates into a flat cell index for a board
// with the given number of columns.
func Index(x, y, cols int) int {
	return y*cols + x
}

// Point is a logical (x, y) position on the board.
type Point struct {
	X int
	Y int
}

// Direction is one of the four cardinal movement directions.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Delta returns the (dx, dy) offset of one step in the direction.
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

// Step returns the point one cell away in the given direction.
func (p Point) Step(d Direction) Point {
	dx, dy := d.Delta()
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Distance returns the euclidean distance between two points.
func (p Point) Distance(o Point) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Relative returns o's position relative to p.
// For example, Point{1, 6}.Relative(Point{3, 2}) = Point{-2, 4}.
func (p Point) Relative(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Toward returns the direction that closes the larger axis gap between
// from and to. Horizontal wins ties to vertical only when strictly larger.
func Toward(from, to Point) Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y

	if abs(dx) > abs(dy) {
		if dx > 0 {
			return Right
		}
		return Left
	}
	if dy > 0 {
		return Down
	}
	return Up
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Bounds is the rectangular extent of a board.
type Bounds struct {
	W int
	H int
}

// Contains reports whether the point lies within the bounds.
func (b Bounds) Contains(p Point) bool {
	return p.X >= 0 && p.X < b.W && p.Y >= 0 && p.Y < b.H
}
