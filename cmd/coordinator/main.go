// Package main implements the crackstore coordinator: the control plane
// that tracks live storage nodes, fans out range queries to them, and
// aggregates their partial counts, per spec §4.3.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamware/crackstore/internal/cluster"
	"github.com/dreamware/crackstore/internal/coordinator"
)

func main() {
	addr := getenv("COORDINATOR_ADDR", ":8080")
	srv := newServer()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/register-node", srv.handleRegisterNode)
	mux.HandleFunc("/heartbeat", srv.handleHeartbeat)
	mux.HandleFunc("/query", srv.handleRangeQuery)
	mux.HandleFunc("/status", srv.handleClusterStatus)
	mux.HandleFunc("/load-data", srv.handleLoadData)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("coordinator listening on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(ctx)
	log.Println("coordinator stopped")
}

type server struct {
	registry *coordinator.NodeRegistry
}

func newServer() *server {
	return &server{registry: coordinator.NewNodeRegistry()}
}

// handleRegisterNode implements RegisterNodeRequest/Response, per spec §4.3.
func (s *server) handleRegisterNode(w http.ResponseWriter, r *http.Request) {
	var req cluster.RegisterNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Address == "" {
		writeJSON(w, cluster.RegisterNodeResponse{Success: false, Message: "address required"})
		return
	}

	id := s.registry.Register(req.Address, req.Port)
	writeJSON(w, cluster.RegisterNodeResponse{Success: true, AssignedNodeID: id})
}

// handleHeartbeat implements HeartbeatRequest/Response, per spec §4.3.
func (s *server) handleHeartbeat(w http.ResponseWriter, r *http.Request) {
	var req cluster.HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	if err := s.registry.Heartbeat(req.NodeID); err != nil {
		writeJSON(w, cluster.HeartbeatResponse{Acknowledged: false})
		return
	}
	writeJSON(w, cluster.HeartbeatResponse{Acknowledged: true})
}

// handleRangeQuery implements DistributedRangeQueryRequest/Response: fans
// out to every healthy node with a 30s deadline each, aggregates counts,
// and applies spec §4.3's soft-failure isolation.
func (s *server) handleRangeQuery(w http.ResponseWriter, r *http.Request) {
	var req cluster.DistributedRangeQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	start := time.Now()
	nodes := s.registry.Healthy()

	var (
		totalCount int32
		results    []cluster.NodeQueryResult
	)

	for _, n := range nodes {
		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		nodeResp, err := s.queryNode(ctx, n, req)
		cancel()

		if err != nil || !nodeResp.Success {
			s.registry.MarkUnhealthy(n.NodeID)
			continue
		}

		s.registry.RecordColumn(n.NodeID, req.ColumnName)

		totalCount += nodeResp.Count
		results = append(results, cluster.NodeQueryResult{
			NodeID: nodeResp.NodeID,
			Count:  nodeResp.Count,
			Stats:  nodeResp.Stats,
		})
	}

	resp := cluster.DistributedRangeQueryResponse{
		TotalCount:   totalCount,
		NodesQueried: int32(len(results)),
		TotalTimeMs:  float64(time.Since(start)) / float64(time.Millisecond),
		NodeResults:  results,
	}

	if len(results) == 0 {
		resp.Success = false
		resp.ErrorMessage = "No nodes responded"
	} else {
		resp.Success = true
	}

	writeJSON(w, resp)
}

func (s *server) queryNode(ctx context.Context, n coordinator.NodeRecord, req cluster.DistributedRangeQueryRequest) (cluster.RangeQueryResponse, error) {
	nodeReq := cluster.RangeQueryRequest{ColumnName: req.ColumnName, Low: req.Low, High: req.High}
	var resp cluster.RangeQueryResponse
	err := cluster.PostJSON(ctx, n.Address+"/columns/query", nodeReq, &resp)
	return resp, err
}

// refreshNodeColumns calls GetNodeInfo on every healthy node and records
// its reported columns via SetColumns, a full replace rather than
// RecordColumn's append-if-absent, since GetNodeInfo is authoritative: a
// column dropped by a later LoadColumn on the node should disappear here
// too, not linger from a stale RangeQuery observation.
func (s *server) refreshNodeColumns(ctx context.Context) {
	for _, n := range s.registry.Healthy() {
		nodeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		var info cluster.NodeInfoResponse
		err := cluster.GetJSON(nodeCtx, n.Address+"/info", &info)
		cancel()
		if err != nil {
			continue
		}

		columns := make([]string, len(info.Columns))
		for i, c := range info.Columns {
			columns[i] = c.Name
		}
		s.registry.SetColumns(n.NodeID, columns)
	}
}

// handleClusterStatus implements GetClusterStatus, per spec §4.3. Before
// building the response it refreshes each healthy node's column set via
// GetNodeInfo, so Nodes[].Columns reflects an authoritative snapshot
// rather than only the columns RangeQuery happens to have touched so far.
func (s *server) handleClusterStatus(w http.ResponseWriter, r *http.Request) {
	s.refreshNodeColumns(r.Context())

	nodes := s.registry.All()
	now := time.Now()

	statuses := make([]cluster.NodeStatus, 0, len(nodes))
	healthyCount := int32(0)
	for _, n := range nodes {
		if n.Healthy {
			healthyCount++
		}
		statuses = append(statuses, cluster.NodeStatus{
			NodeID:          n.NodeID,
			Address:         n.Address,
			Port:            n.Port,
			IsHealthy:       n.Healthy,
			LastHeartbeatMs: now.Sub(n.LastHeartbeat).Milliseconds(),
			Columns:         n.Columns,
		})
	}

	writeJSON(w, cluster.ClusterStatusResponse{
		TotalNodes:   int32(len(nodes)),
		HealthyNodes: healthyCount,
		Nodes:        statuses,
	})
}

// handleLoadData implements LoadData: an advisory endpoint reporting the
// set of healthy nodes. Actual per-node loads are performed by the client
// directly, per spec §4.3/§4.4.
func (s *server) handleLoadData(w http.ResponseWriter, _ *http.Request) {
	nodes := s.registry.Healthy()

	type nodeAddr struct {
		NodeID  string `json:"node_id"`
		Address string `json:"address"`
	}
	addrs := make([]nodeAddr, 0, len(nodes))
	for _, n := range nodes {
		addrs = append(addrs, nodeAddr{NodeID: n.NodeID, Address: n.Address})
	}

	writeJSON(w, struct {
		Nodes []nodeAddr `json:"nodes"`
	}{Nodes: addrs})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
