// Package columnstore hosts the name-indexed collection of cracking engines
// that a storage node serves, per spec §4.2 ("Storage Node").
//
// Overview
//
// A Store wraps a map[string]*cracking.Engine behind a single mutex. Every
// public method — LoadColumn, RangeQuery, Insert, Remove, ColumnInfo,
// Names — takes the same lock, because spec §5 requires that RangeQuery's
// in-place mutation of the engine be serialized against every other
// operation on the node, not just concurrent writers of the same column.
//
// Concurrency
//
// Store.mu is a plain sync.Mutex, not a sync.RWMutex: a "read" (RangeQuery)
// mutates its engine's array and crack index just as much as a "write"
// (LoadColumn), so there is no reader/writer distinction to exploit here.
// This departs from internal/storage.MemoryStore's RWMutex on purpose —
// see DESIGN.md.
//
// Usage
//
//	store := columnstore.New()
//	store.LoadColumn("ages", []int32{5, 2, 8, 1, 9})
//	n, stats, err := store.RangeQuery("ages", 3, 7)
package columnstore
