// Package save stores run snapshots in named slots and mirrors them to the
// host disk.
package save

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// MaxStoreBytes is the total byte budget across all save slots.
const MaxStoreBytes = 1 << 20

// slotExt is the file extension used when mirroring slots to disk.
const slotExt = ".save"

// validSlotName is the regex for sanitizing slot names.
var validSlotName = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,32}$`)

var (
	ErrSlotNotFound    = errors.New("save slot not found")
	ErrInvalidSlotName = errors.New("invalid save slot name")
	ErrQuotaExceeded   = errors.New("save store quota exceeded")
)

// Slot holds one saved snapshot.
type Slot struct {
	Data     []byte
	Created  time.Time
	Modified time.Time
}

// Store is an in-memory collection of save slots with quota and dirty
// tracking. Safe for concurrent use; the frontends sync it to disk from a
// background goroutine.
type Store struct {
	mu    sync.RWMutex
	slots map[string]*Slot
	dirty map[string]bool
	used  int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		slots: make(map[string]*Slot),
		dirty: make(map[string]bool),
	}
}

// Write stores data under the slot name. It validates the name, checks the
// quota, and deep copies the data. An existing slot is overwritten and the
// quota usage updated accordingly.
func (s *Store) Write(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !validSlotName.MatchString(name) {
		return ErrInvalidSlotName
	}

	oldSize := 0
	existing := s.slots[name]
	if existing != nil {
		oldSize = len(existing.Data)
	}
	if s.used-oldSize+len(data) > MaxStoreBytes {
		return ErrQuotaExceeded
	}

	copied := make([]byte, len(data))
	copy(copied, data)

	now := time.Now()
	if existing != nil {
		existing.Data = copied
		existing.Modified = now
	} else {
		s.slots[name] = &Slot{Data: copied, Created: now, Modified: now}
	}
	s.used += len(data) - oldSize
	s.dirty[name] = true
	return nil
}

// Read returns a copy of the slot's data.
func (s *Store) Read(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot := s.slots[name]
	if slot == nil {
		return nil, ErrSlotNotFound
	}
	copied := make([]byte, len(slot.Data))
	copy(copied, slot.Data)
	return copied, nil
}

// Delete removes a slot. The removal is mirrored on the next sync.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slots[name]
	if slot == nil {
		return ErrSlotNotFound
	}
	s.used -= len(slot.Data)
	delete(s.slots, name)
	s.dirty[name] = true
	return nil
}

// List returns the slot names in sorted order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.slots))
	for name := range s.slots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dirty reports whether any slot changed since the last sync.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dirty) > 0
}

// SyncTo mirrors dirty slots to dir, one file per slot, and clears the
// dirty set. Deleted slots have their files removed.
func (s *Store) SyncTo(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.dirty) == 0 {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create save dir: %w", err)
	}

	for name := range s.dirty {
		path := filepath.Join(dir, name+slotExt)
		slot := s.slots[name]
		if slot == nil {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove slot %q: %w", name, err)
			}
			continue
		}
		if err := os.WriteFile(path, slot.Data, 0o644); err != nil {
			return fmt.Errorf("write slot %q: %w", name, err)
		}
	}

	clear(s.dirty)
	return nil
}

// LoadFrom builds a store from the slot files under dir. A missing dir
// yields an empty store.
func LoadFrom(dir string) (*Store, error) {
	store := NewStore()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("read save dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), slotExt) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), slotExt)
		if !validSlotName.MatchString(name) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read slot %q: %w", name, err)
		}
		if err := store.Write(name, data); err != nil {
			return nil, fmt.Errorf("load slot %q: %w", name, err)
		}
	}

	// Freshly loaded slots are already on disk.
	store.mu.Lock()
	clear(store.dirty)
	store.mu.Unlock()

	return store, nil
}
