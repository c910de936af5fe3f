// Package coordinator implements the control-plane logic of spec §4.3: the
// live node registry, node registration/heartbeat bookkeeping, and the
// soft-failure-isolation rules that cmd/coordinator's RangeQuery fan-out
// depends on.
//
// # Overview
//
// The coordinator doesn't route by key or shard — each storage node holds
// its own share of each loaded column, and a distributed range query fans out to
// every currently-healthy node rather than to a single owning node. This
// package therefore tracks node liveness, not data placement.
//
// # Architecture
//
//	┌───────────────────────────────────┐
//	│            COORDINATOR             │
//	├───────────────────────────────────┤
//	│  NodeRegistry                      │
//	│    - node-K id assignment          │
//	│    - healthy/unhealthy tracking    │
//	│    - last-heartbeat timestamps     │
//	└───────────────────────────────────┘
//
// The HTTP handlers that use this registry (RegisterNode, Heartbeat,
// RangeQuery fan-out, GetClusterStatus, LoadData) live in
// cmd/coordinator/main.go, matching the teacher's convention of keeping
// business logic in cmd/ and reusable bookkeeping in internal/.
//
// # Core type
//
// NodeRegistry: the authoritative set of known storage nodes.
//   - Register assigns sequential "node-K" ids, per spec §4.3
//   - Heartbeat refreshes liveness; rejects unknown ids
//   - MarkUnhealthy implements the soft-failure isolation of spec §4.3: a
//     node whose RPC fails or returns success=false during RangeQuery
//     fan-out is excluded from the aggregate, not treated as fatal, unless
//     every node fails
//
// # Concurrency model
//
// One sync.RWMutex guards the node slice. Reads (Healthy, All) take a read
// lock and return copies; writes (Register, Heartbeat, MarkUnhealthy,
// SetColumns) take the write lock. No lock is held across network I/O —
// fan-out happens in cmd/coordinator after a call to Healthy() returns a
// snapshot.
package coordinator
