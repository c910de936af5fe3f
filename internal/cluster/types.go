package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type NodeInfo struct {
	ID   string `json:"id"`
	Addr string `json:"addr"`
}

type RegisterRequest struct {
	Node NodeInfo `json:"node"`
}

type BroadcastRequest struct {
	Path    string          `json:"path"`
	Payload json.RawMessage `json:"payload"`
}

// LoadColumnRequest asks a storage node to replace column ColumnName with Data,
// per spec §6.
type LoadColumnRequest struct {
	ColumnName string  `json:"column_name"`
	Data       []int32 `json:"data"`
}

type LoadColumnResponse struct {
	Success      bool   `json:"success"`
	RowsLoaded   int32  `json:"rows_loaded"`
	NodeID       string `json:"node_id"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// RangeQueryRequest asks a storage node to count column Low <= x < High.
type RangeQueryRequest struct {
	ColumnName string `json:"column_name"`
	Low        int32  `json:"low"`
	High       int32  `json:"high"`
}

type RangeQueryResponse struct {
	Success      bool       `json:"success"`
	Count        int32      `json:"count"`
	NodeID       string     `json:"node_id"`
	Stats        QueryStats `json:"stats"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// QueryStats reports the per-query cost of one RangeQuery, per spec §6.
type QueryStats struct {
	TuplesTouched int64   `json:"tuples_touched"`
	CracksUsed    int32   `json:"cracks_used"`
	QueryTimeMs   float64 `json:"query_time_ms"`
}

// DistributedRangeQueryRequest is the client-facing request the coordinator
// fans out to every healthy node as a RangeQueryRequest.
type DistributedRangeQueryRequest struct {
	ColumnName   string `json:"column_name"`
	Low          int32  `json:"low"`
	High         int32  `json:"high"`
	ReturnValues bool   `json:"return_values"` // reserved, ignored
}

// NodeQueryResult is one node's contribution to a DistributedRangeQueryResponse.
type NodeQueryResult struct {
	NodeID string     `json:"node_id"`
	Count  int32      `json:"count"`
	Stats  QueryStats `json:"stats"`
}

type DistributedRangeQueryResponse struct {
	TotalCount   int32             `json:"total_count"`
	NodesQueried int32             `json:"nodes_queried"`
	TotalTimeMs  float64           `json:"total_time_ms"`
	Success      bool              `json:"success"`
	NodeResults  []NodeQueryResult `json:"node_results"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// RegisterNodeRequest is a storage node's self-registration call to the
// coordinator, per spec §4.2/§4.3.
type RegisterNodeRequest struct {
	Address string `json:"address"`
	Port    int32  `json:"port"`
}

type RegisterNodeResponse struct {
	Success        bool   `json:"success"`
	AssignedNodeID string `json:"assigned_node_id"`
	Message        string `json:"message,omitempty"`
}

// HeartbeatRequest is sent by a storage node to the coordinator every
// heartbeat_interval seconds, per spec §4.2.
type HeartbeatRequest struct {
	NodeID string `json:"node_id"`
}

type HeartbeatResponse struct {
	Acknowledged bool `json:"acknowledged"`
}

// NodeStatus is one node's entry in a ClusterStatusResponse.
type NodeStatus struct {
	NodeID          string   `json:"node_id"`
	Address         string   `json:"address"`
	Port            int32    `json:"port"`
	IsHealthy       bool     `json:"is_healthy"`
	LastHeartbeatMs int64    `json:"last_heartbeat_ms"`
	Columns         []string `json:"columns"`
}

type ClusterStatusResponse struct {
	TotalNodes   int32        `json:"total_nodes"`
	HealthyNodes int32        `json:"healthy_nodes"`
	Nodes        []NodeStatus `json:"nodes"`
}

// NodeColumnSummary is one column's entry in a NodeInfoResponse.
type NodeColumnSummary struct {
	Name       string `json:"name"`
	Size       int    `json:"size"`
	CrackCount int    `json:"crack_count"`
}

// NodeInfoResponse is GetNodeInfo's response body, per spec §4.2/§6: the
// set of columns a node hosts and summary stats about each.
type NodeInfoResponse struct {
	NodeID    string              `json:"node_id"`
	Columns   []NodeColumnSummary `json:"columns"`
	TotalRows int                 `json:"total_rows"`
	Healthy   bool                `json:"healthy"`
}

// httpClient carries no Timeout of its own: each call site sets its own
// deadline via context.WithTimeout (30s query, 60s load, 5s register, 2s
// heartbeat, per spec §5) and NewRequestWithContext propagates it. A
// client-wide Timeout here would silently override those per-call
// deadlines.
var httpClient = &http.Client{}

func PostJSON(ctx context.Context, url string, body any, out any) error {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http %s: %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
