// Package node provides the storage node's outbound half of cluster
// membership: periodically pushing a heartbeat to the coordinator, per
// spec §4.2. This is the inverse of
// internal/coordinator's node registry, which receives and records these
// heartbeats rather than soliciting them.
package node
