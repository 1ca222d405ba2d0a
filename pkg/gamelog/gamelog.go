// Package gamelog collects per-turn game events for the frontends to drain.
package gamelog

import (
	"fmt"

	"harvest/pkg/grid"
)

// Kind describes the kind of event that produced an entry.
type Kind string

const (
	KindAttacked Kind = "Attacked"
	KindSpawned  Kind = "Spawned"
	KindGrew     Kind = "Grew"
	KindRunEnded Kind = "RunEnded"
)

// Entry is a single logged game event.
type Entry struct {
	Kind Kind

	// Attacker and Target name the glyphs involved in an attack.
	Attacker string
	Target   string

	// At is where the event happened, e.g. to highlight optionally.
	At grid.Point

	// Defeated reports whether the target was defeated by the attack.
	Defeated bool

	// Victory reports the outcome for a RunEnded entry.
	Victory bool
}

// Attacked builds an entry for a melee attack.
func Attacked(attacker, target string, at grid.Point, defeated bool) Entry {
	return Entry{Kind: KindAttacked, Attacker: attacker, Target: target, At: at, Defeated: defeated}
}

// Spawned builds an entry for a newly spawned entity.
func Spawned(target string, at grid.Point) Entry {
	return Entry{Kind: KindSpawned, Target: target, At: at}
}

// Grew builds an entry for a tree gaining health.
func Grew(at grid.Point) Entry {
	return Entry{Kind: KindGrew, Target: "tree", At: at}
}

// RunEnded builds an entry for the end of a run.
func RunEnded(victory bool) Entry {
	return Entry{Kind: KindRunEnded, Victory: victory}
}

// String renders the entry as a single display line.
func (e Entry) String() string {
	switch e.Kind {
	case KindAttacked:
		if e.Defeated {
			return fmt.Sprintf("%s defeated %s at (%d, %d)", e.Attacker, e.Target, e.At.X, e.At.Y)
		}
		return fmt.Sprintf("%s attacked %s at (%d, %d)", e.Attacker, e.Target, e.At.X, e.At.Y)
	case KindSpawned:
		return fmt.Sprintf("%s appeared at (%d, %d)", e.Target, e.At.X, e.At.Y)
	case KindGrew:
		return fmt.Sprintf("a tree grew at (%d, %d)", e.At.X, e.At.Y)
	case KindRunEnded:
		if e.Victory {
			return "the settlement survived"
		}
		return "the settlement has fallen"
	default:
		return string(e.Kind)
	}
}

// Log stores entries in arrival order until they are flushed.
type Log struct {
	entries []Entry
}

// New creates an empty log.
func New() *Log {
	return &Log{}
}

// Add appends an entry to the log.
func (l *Log) Add(e Entry) {
	l.entries = append(l.entries, e)
}

// Flush returns the logged entries and clears the log.
func (l *Log) Flush() []Entry {
	out := l.entries
	l.entries = nil
	return out
}
