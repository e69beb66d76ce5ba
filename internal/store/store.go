// Package store implements the entry store: the authoritative registry
// of signal entries, keyed by a stable numeric id and a hierarchical
// string path. It serialises writes, permits highly concurrent reads,
// and reports which ids actually changed on each batched update so the
// subscription engine can act on it.
//
// Grounded on the double-checked-locking, read-heavy RWMutex style used
// by the hierarchical level tree this package's register path is
// adapted from, flattened here to a single id-keyed map since signal
// paths have no need for the tree's intermediate aggregation nodes.
package store

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/eclipse-kuksa/kuksa-databroker-go/internal/metrics"
	"github.com/eclipse-kuksa/kuksa-databroker-go/pkg/signal"
)

// Store owns the set of registered entries. The zero value is not
// usable; construct one with New.
type Store struct {
	mu        sync.RWMutex
	entries   map[int32]*signal.Entry
	pathIndex map[string]int32 // case-folded path -> id
	nextID    atomic.Int32
}

// New returns an empty store.
func New() *Store {
	return &Store{
		entries:   make(map[int32]*signal.Entry),
		pathIndex: make(map[string]int32),
	}
}

// Register registers path with the given facets and returns its stable
// id. Re-registering an existing path is a no-op and returns the
// existing id, provided dataType matches; a mismatched data type fails
// with ErrTypeMismatch.
func (s *Store) Register(path string, dataType signal.DataType, changeType signal.ChangeType, entryType signal.EntryType, description string) (int32, error) {
	fold := strings.ToLower(path)

	s.mu.RLock()
	if id, ok := s.pathIndex[fold]; ok {
		entry := s.entries[id]
		s.mu.RUnlock()
		if entry.Metadata.DataType != dataType {
			return 0, ErrTypeMismatch
		}
		metrics.EntriesRegistered.Inc()
		return id, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another writer may have registered the same path while we waited
	// for the write lock.
	if id, ok := s.pathIndex[fold]; ok {
		entry := s.entries[id]
		if entry.Metadata.DataType != dataType {
			return 0, ErrTypeMismatch
		}
		metrics.EntriesRegistered.Inc()
		return id, nil
	}

	id := s.nextID.Add(1) - 1
	entry := &signal.Entry{
		Metadata: signal.Metadata{
			ID:          id,
			Path:        path,
			DataType:    dataType,
			EntryType:   entryType,
			ChangeType:  changeType,
			Description: description,
		},
		Current: signal.Datapoint{Value: signal.Unavailable},
	}
	s.entries[id] = entry
	s.pathIndex[fold] = id
	metrics.EntriesRegistered.Inc()
	return id, nil
}

// GetByID returns a snapshot copy of the entry with the given id.
func (s *Store) GetByID(id int32) (signal.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return signal.Entry{}, false
	}
	return entry.Clone(), true
}

// GetByPath returns a snapshot copy of the entry at path, matched
// case-insensitively. The returned metadata carries the original,
// case-preserving path.
func (s *Store) GetByPath(path string) (signal.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.pathIndex[strings.ToLower(path)]
	if !ok {
		return signal.Entry{}, false
	}
	return s.entries[id].Clone(), true
}

// ForEach calls fn with a snapshot of every entry under a single read
// guard, giving the caller a cross-entry consistent view. Iteration
// stops early if fn returns false.
func (s *Store) ForEach(fn func(signal.Entry) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		if !fn(entry.Clone()) {
			return
		}
	}
}

// Metadata returns just the metadata for path, used by the query
// compiler to resolve a path's declared data type without paying for a
// full entry clone.
func (s *Store) Metadata(path string) (signal.Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.pathIndex[strings.ToLower(path)]
	if !ok {
		return signal.Metadata{}, false
	}
	return s.entries[id].Metadata, true
}
