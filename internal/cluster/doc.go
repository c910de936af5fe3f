// Package cluster provides the wire schema and transport helpers shared
// between the coordinator, storage nodes, and client: the request/response
// structs of spec §6 plus the small JSON-over-HTTP helpers (PostJSON,
// GetJSON) every RPC call site in this module builds on.
//
// # Overview
//
// cluster is deliberately thin: it owns no state and runs no goroutines.
// It exists so that cmd/node, cmd/coordinator, and cmd/client all encode
// and decode the exact same message shapes, rather than each defining its
// own ad hoc JSON structs.
//
// # Architecture
//
// The package follows a hub-and-spoke model: one coordinator, many storage
// nodes, each node holding its own consecutive share of each loaded column's
// values (assigned by the client at load time, not by hashing keys — see
// internal/coordinator/node_registry.go).
//
//	              ┌──────────────┐
//	              │ Coordinator  │
//	              │              │
//	              │ - Registry   │
//	              │ - Fan-out    │
//	              └──────┬───────┘
//	                     │
//	      ┌──────────────┼──────────────┐
//	      │              │              │
//	┌─────▼─────┐ ┌─────▼─────┐ ┌─────▼─────┐
//	│  Node 1   │ │  Node 2   │ │  Node 3   │
//	│ columns:  │ │ columns:  │ │ columns:  │
//	│ [ages]    │ │ [ages]    │ │ [ages]    │
//	└───────────┘ └───────────┘ └───────────┘
//
// # Core types
//
// NodeInfo / RegisterRequest: the teacher's original registration pair,
// kept in the package; no command uses them, since cmd/node registers with
// RegisterNodeRequest/Response.
//
// LoadColumnRequest/Response, RangeQueryRequest/Response, QueryStats,
// DistributedRangeQueryRequest/Response, RegisterNodeRequest/Response,
// HeartbeatRequest/Response, ClusterStatusResponse: the full wire schema of
// spec §6, field-for-field.
//
// # Communication protocol
//
// HTTP+JSON throughout (see SPEC_FULL.md §6 for why this module uses JSON
// over plain net/http rather than reimplementing the original C++
// reference's gRPC transport). Every call site uses PostJSON/GetJSON with
// a context.Context deadline matching spec §5's per-RPC timeouts (30s
// query, 60s load, 5s register, 2s heartbeat).
//
// # Concurrency model
//
// Stateless: PostJSON and GetJSON share one package-level *http.Client and
// are safe for concurrent use from any number of goroutines.
package cluster
