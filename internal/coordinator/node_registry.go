// Package coordinator implements the control-plane logic shared by
// cmd/coordinator: the live node registry, per spec §4.3. See doc.go for
// full package documentation.
package coordinator

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// ErrUnknownNode is returned by Heartbeat when the node id is not
// registered, per spec §4.3 ("Unknown ids are rejected").
var ErrUnknownNode = errors.New("unknown node")

// NodeRecord is one entry in the NodeRegistry: everything the coordinator
// knows about a single storage node.
type NodeRecord struct {
	NodeID        string
	Address       string
	Port          int32
	Healthy       bool
	LastHeartbeat time.Time
	Columns       []string
}

// NodeRegistry tracks the set of storage nodes known to the coordinator,
// per spec §4.3: assigning sequential node-K ids on registration, refreshing
// liveness on heartbeat, and marking nodes unhealthy when an RPC to them
// fails during fan-out.
//
// This replaces the teacher's ShardRegistry (consistent-hash key→shard→node
// routing): there is no key-hashing here, because each node holds a share of
// a column assigned at load time by the client, not a hash-partitioned
// shard, and every query goes to every healthy node. See DESIGN.md for the
// full rationale. The locking shape — one sync.RWMutex over the node
// slice, copy-on-read accessors — is carried over unchanged.
type NodeRegistry struct {
	mu     sync.RWMutex
	nodes  []*NodeRecord
	nextID int
}

// NewNodeRegistry returns an empty registry.
func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{}
}

// Register assigns a new node-K id to a node at address:port and marks it
// healthy as of now, per spec §4.3. If a node is already registered at the
// same address and port, its record is refreshed and its existing id returned
// instead of minting a new one — this mirrors the teacher's
// `handleRegister`'s re-registration-is-idempotent behavior.
func (r *NodeRegistry) Register(address string, port int32) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.nodes, func(n *NodeRecord) bool { return n.Address == address && n.Port == port })
	if idx >= 0 {
		r.nodes[idx].Healthy = true
		r.nodes[idx].LastHeartbeat = time.Now()
		return r.nodes[idx].NodeID
	}

	id := r.assignID()
	r.nodes = append(r.nodes, &NodeRecord{
		NodeID:        id,
		Address:       address,
		Port:          port,
		Healthy:       true,
		LastHeartbeat: time.Now(),
	})
	return id
}

func (r *NodeRegistry) assignID() string {
	r.nextID++
	return "node-" + strconv.Itoa(r.nextID)
}

// Heartbeat refreshes the last-seen timestamp and health flag for nodeID.
// Returns ErrUnknownNode if the id was never registered.
func (r *NodeRegistry) Heartbeat(nodeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.nodes, func(n *NodeRecord) bool { return n.NodeID == nodeID })
	if idx < 0 {
		return ErrUnknownNode
	}
	r.nodes[idx].Healthy = true
	r.nodes[idx].LastHeartbeat = time.Now()
	return nil
}

// MarkUnhealthy flags nodeID unhealthy, per spec §4.3's soft-failure
// isolation: a node whose RPC fails or returns success=false is excluded
// from subsequent fan-out aggregation until it heartbeats again.
func (r *NodeRegistry) MarkUnhealthy(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.nodes, func(n *NodeRecord) bool { return n.NodeID == nodeID })
	if idx >= 0 {
		r.nodes[idx].Healthy = false
	}
}

// SetColumns replaces the full set of column names a node reports hosting.
// Called from handleClusterStatus's GetNodeInfo refresh, which is
// authoritative, so a column the node no longer has is dropped too, unlike
// RecordColumn's accumulate-only updates from RangeQuery fan-out.
func (r *NodeRegistry) SetColumns(nodeID string, columns []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.nodes, func(n *NodeRecord) bool { return n.NodeID == nodeID })
	if idx >= 0 {
		r.nodes[idx].Columns = append([]string(nil), columns...)
	}
}

// RecordColumn notes that nodeID is known to host the named column, as
// observed from a successful RangeQuery fan-out response, appending it to
// the node's tracked column set if not already present. Unlike SetColumns
// (a full refresh from an authoritative source such as GetNodeInfo), this
// accumulates observations one query at a time, since fan-out responses
// only ever confirm a single column per call.
func (r *NodeRegistry) RecordColumn(nodeID, column string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.IndexFunc(r.nodes, func(n *NodeRecord) bool { return n.NodeID == nodeID })
	if idx < 0 {
		return
	}
	for _, c := range r.nodes[idx].Columns {
		if c == column {
			return
		}
	}
	r.nodes[idx].Columns = append(r.nodes[idx].Columns, column)
}

// Healthy returns a copy of every currently-healthy node record.
func (r *NodeRegistry) Healthy() []NodeRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]NodeRecord, 0, len(r.nodes))
	for _, n := range r.nodes {
		if n.Healthy {
			out = append(out, *n)
		}
	}
	return out
}

// All returns a copy of every known node record, healthy or not, for
// GetClusterStatus.
func (r *NodeRegistry) All() []NodeRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]NodeRecord, 0, len(r.nodes))
	for _, n := range r.nodes {
		out = append(out, *n)
	}
	return out
}
