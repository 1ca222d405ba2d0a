package world

// Entity identifies a thing in the world. Ids are never reused within a run.
type Entity int

// Glyph is the abstract symbol an entity is drawn with.
type Glyph int

const (
	GlyphPlayer Glyph = iota
	GlyphGoblin
	GlyphFarm
	GlyphHouse
	GlyphWall
	GlyphTree
)

// String returns a human-readable glyph name.
func (g Glyph) String() string {
	switch g {
	case GlyphPlayer:
		return "player"
	case GlyphGoblin:
		return "goblin"
	case GlyphFarm:
		return "farm"
	case GlyphHouse:
		return "house"
	case GlyphWall:
		return "wall"
	case GlyphTree:
		return "tree"
	default:
		return "unknown"
	}
}

// Rune returns the single character used to draw the glyph.
func (g Glyph) Rune() rune {
	switch g {
	case GlyphPlayer:
		return '@'
	case GlyphGoblin:
		return 'G'
	case GlyphFarm:
		return 'F'
	case GlyphHouse:
		return 'H'
	case GlyphWall:
		return 'W'
	case GlyphTree:
		return 'T'
	default:
		return '?'
	}
}

// Brain selects how an entity decides its move on the monster turn.
type Brain int

const (
	// BrainWander moves in a random direction each turn.
	BrainWander Brain = iota
	// BrainPrioritizeTown moves towards the closest town structure.
	BrainPrioritizeTown
	// BrainPrioritizePlayer moves towards the player.
	BrainPrioritizePlayer
)

// String returns a human-readable brain name.
func (b Brain) String() string {
	switch b {
	case BrainWander:
		return "wander"
	case BrainPrioritizeTown:
		return "prioritize-town"
	case BrainPrioritizePlayer:
		return "prioritize-player"
	default:
		return "unknown"
	}
}

// Health tracks hit points. The zero value is an already-dead entity.
type Health struct {
	Amount uint8
}

// Reduce subtracts hit points, saturating at zero. Returns true while the
// entity is still alive.
func (h *Health) Reduce(amount uint8) bool {
	if amount >= h.Amount {
		h.Amount = 0
		return false
	}
	h.Amount -= amount
	return true
}

// Increase adds hit points, saturating at 255.
func (h *Health) Increase(amount uint8) {
	if h.Amount > 255-amount {
		h.Amount = 255
		return
	}
	h.Amount += amount
}
