package columnstore

import (
	"errors"
	"sync"

	"github.com/dreamware/crackstore/internal/cracking"
)

// ErrUnknownColumn is returned when an operation names a column that has
// never been loaded on this node.
var ErrUnknownColumn = errors.New("unknown column")

// ColumnInfo summarizes one engine's size and crack-index state, for
// GetNodeInfo (spec §4.2).
type ColumnInfo struct {
	Name       string
	Size       int
	CrackCount int
}

// Store is a storage node's name-indexed collection of cracking engines.
// All methods are safe for concurrent use; see doc.go for why a single
// plain mutex guards every operation rather than a per-column lock.
type Store struct {
	mu      sync.Mutex
	engines map[string]*cracking.Engine
}

// New returns an empty Store.
func New() *Store {
	return &Store{engines: make(map[string]*cracking.Engine)}
}

// LoadColumn replaces any existing engine for name with a new one built
// from values, returning the number of rows loaded. The swap is atomic:
// the previous engine is only discarded once the new one has been
// constructed successfully.
func (s *Store) LoadColumn(name string, values []int32) int {
	engine := cracking.New(values)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.engines[name] = engine
	return engine.Size()
}

// RangeQuery runs a half-open range count against the named column,
// returning the count and the engine's per-query stats, or
// ErrUnknownColumn if name has never been loaded.
func (s *Store) RangeQuery(name string, low, high int32) (int32, cracking.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, ok := s.engines[name]
	if !ok {
		return 0, cracking.Stats{}, ErrUnknownColumn
	}

	count := engine.RangeQuery(low, high)
	return count, engine.GetStats(), nil
}

// Insert queues v for insertion into the named column, per spec §4.1's
// "queue-only" contract: the value is absorbed by the next query covering
// it. It returns ErrUnknownColumn, queuing nothing, if the column is
// unknown.
func (s *Store) Insert(name string, v int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, ok := s.engines[name]
	if !ok {
		return ErrUnknownColumn
	}
	engine.Insert(v)
	return nil
}

// Remove queues v for removal from the named column.
func (s *Store) Remove(name string, v int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, ok := s.engines[name]
	if !ok {
		return ErrUnknownColumn
	}
	engine.Remove(v)
	return nil
}

// ColumnInfo returns size and crack-index state for the named column, or
// ErrUnknownColumn.
func (s *Store) ColumnInfo(name string) (ColumnInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine, ok := s.engines[name]
	if !ok {
		return ColumnInfo{}, ErrUnknownColumn
	}
	return ColumnInfo{Name: name, Size: engine.Size(), CrackCount: engine.CrackCount()}, nil
}

// Names returns the names of every loaded column, in no particular order.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	return names
}

// AllColumnInfo returns ColumnInfo for every loaded column, for
// GetNodeInfo's per-column sizes and crack counts.
func (s *Store) AllColumnInfo() []ColumnInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]ColumnInfo, 0, len(s.engines))
	for name, engine := range s.engines {
		infos = append(infos, ColumnInfo{Name: name, Size: engine.Size(), CrackCount: engine.CrackCount()})
	}
	return infos
}
