// Package scene is the boundary between the calibration engine and the scene
// graph that owns light entities.
//
// A Scene stores attribute maps by entity id and notifies subscribers when
// attributes change. Store is the in-memory implementation used by the CLI,
// the HTTP API and tests; it can be loaded from and saved to YAML scene files
// and kept in sync with a file on disk by a Watcher.
package scene

import (
	"errors"
	"fmt"
	"sync"
)

// ErrEntityNotFound is returned when writing to an id the scene does not hold.
var ErrEntityNotFound = errors.New("entity not found")

// ChangeKind describes what happened to an entity.
type ChangeKind int

const (
	// ChangeValue reports updated attribute values.
	ChangeValue ChangeKind = iota

	// ChangeAdded reports a newly created entity.
	ChangeAdded

	// ChangeResynced reports an entity whose attributes were replaced
	// wholesale, for example after a reload.
	ChangeResynced

	// ChangeRemoved reports a deleted entity.
	ChangeRemoved
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "added"
	case ChangeResynced:
		return "resynced"
	case ChangeRemoved:
		return "removed"
	default:
		return "value"
	}
}

// Change is a notification about one entity.
type Change struct {
	ID    string
	Names []string
	Kind  ChangeKind
}

// Scene is what the engine needs from a scene graph.
type Scene interface {
	// Read returns a copy of the entity's attributes.
	Read(id string) (Attributes, bool)

	// Write merges attrs into an existing entity.
	Write(id string, attrs Attributes) error

	// Subscribe registers fn for change notifications. fn may be called from
	// any goroutine that mutates the scene.
	Subscribe(fn func(Change)) (cancel func())

	// IDs returns the entity ids in insertion order.
	IDs() []string
}

// Store is an in-memory Scene. It is safe for concurrent use; subscribers are
// called synchronously after the mutation, outside the store's lock, so they
// may read from or write to the store.
type Store struct {
	mu       sync.RWMutex
	entities map[string]Attributes
	names    map[string]string
	order    []string

	subMu   sync.RWMutex
	subs    map[int]func(Change)
	nextSub int
}

var _ Scene = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		entities: make(map[string]Attributes),
		names:    make(map[string]string),
		subs:     make(map[int]func(Change)),
	}
}

// Read implements Scene.
func (s *Store) Read(id string) (Attributes, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attrs, ok := s.entities[id]
	if !ok {
		return nil, false
	}
	return attrs.Clone(), true
}

// Has reports whether the store holds id.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entities[id]
	return ok
}

// Name returns the display name of an entity, or "" when unset.
func (s *Store) Name(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[id]
}

// IDs implements Scene.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of entities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Write implements Scene. Every written name is reported, whether or not its
// value differs from the previous one.
func (s *Store) Write(id string, attrs Attributes) error {
	norm, err := NormalizeAll(attrs)
	if err != nil {
		return fmt.Errorf("write %s: %w", id, err)
	}

	s.mu.Lock()
	cur, ok := s.entities[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("write %s: %w", id, ErrEntityNotFound)
	}
	for k, v := range norm {
		cur[k] = v
	}
	s.mu.Unlock()

	if len(norm) > 0 {
		s.notify(Change{ID: id, Names: norm.Names(), Kind: ChangeValue})
	}
	return nil
}

// Add creates an entity. Adding an existing id replaces its attributes and
// is reported as a resync.
func (s *Store) Add(id, name string, attrs Attributes) error {
	if id == "" {
		return fmt.Errorf("add: empty entity id")
	}
	norm, err := NormalizeAll(attrs)
	if err != nil {
		return fmt.Errorf("add %s: %w", id, err)
	}

	s.mu.Lock()
	_, existed := s.entities[id]
	s.entities[id] = norm
	s.names[id] = name
	if !existed {
		s.order = append(s.order, id)
	}
	s.mu.Unlock()

	kind := ChangeAdded
	if existed {
		kind = ChangeResynced
	}
	s.notify(Change{ID: id, Names: norm.Names(), Kind: kind})
	return nil
}

// Replace swaps an entity's attributes for attrs and reports a resync.
func (s *Store) Replace(id string, attrs Attributes) error {
	norm, err := NormalizeAll(attrs)
	if err != nil {
		return fmt.Errorf("replace %s: %w", id, err)
	}

	s.mu.Lock()
	if _, ok := s.entities[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("replace %s: %w", id, ErrEntityNotFound)
	}
	s.entities[id] = norm
	s.mu.Unlock()

	s.notify(Change{ID: id, Names: norm.Names(), Kind: ChangeResynced})
	return nil
}

// ReplaceInputs swaps every non-derived attribute for attrs and keeps the
// derived ones, so the last computed output survives until the new inputs
// resolve. Derived names in attrs are ignored.
func (s *Store) ReplaceInputs(id string, attrs Attributes) error {
	norm, err := NormalizeAll(attrs)
	if err != nil {
		return fmt.Errorf("replace %s: %w", id, err)
	}

	s.mu.Lock()
	cur, ok := s.entities[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("replace %s: %w", id, ErrEntityNotFound)
	}
	next := make(Attributes, len(norm))
	for name, v := range norm {
		if !IsDerived(name) {
			next[name] = v
		}
	}
	for name, v := range cur {
		if IsDerived(name) {
			next[name] = v
		}
	}
	s.entities[id] = next
	s.mu.Unlock()

	s.notify(Change{ID: id, Names: next.Names(), Kind: ChangeResynced})
	return nil
}

// Remove deletes an entity.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	attrs, ok := s.entities[id]
	if ok {
		delete(s.entities, id)
		delete(s.names, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if ok {
		s.notify(Change{ID: id, Names: attrs.Names(), Kind: ChangeRemoved})
	}
	return ok
}

// Subscribe implements Scene.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(c Change) {
	s.subMu.RLock()
	fns := make([]func(Change), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.subMu.RUnlock()

	for _, fn := range fns {
		fn(c)
	}
}
