// Package main implements the crackstore storage node: a long-lived
// process that hosts a name-indexed collection of cracking engines and
// serves the column-store RPCs of spec §4.2.
//
// The node is a worker in the crackstore distributed system, responsible
// for:
//   - Hosting zero or more integer columns, each backed by a cracking engine
//   - Serving LoadColumn, RangeQuery, GetNodeInfo, and HealthCheck RPCs
//   - Registering with the coordinator on startup (unless --standalone)
//   - Pushing a heartbeat to the coordinator every heartbeat interval
//
// Architecture:
//
//	┌─────────────────────────────────────────┐
//	│                 Node                     │
//	├─────────────────────────────────────────┤
//	│  HTTP API:                              │
//	│    /health        - Health check         │
//	│    /columns/load  - LoadColumn           │
//	│    /columns/query - RangeQuery           │
//	│    /info          - GetNodeInfo          │
//	├─────────────────────────────────────────┤
//	│  Components:                            │
//	│    Node            - Runtime state       │
//	│    columnstore.Store - Engines by name   │
//	│    node.HeartbeatSender - Outbound push  │
//	└─────────────────────────────────────────┘
//
// Configuration (flags, with environment variable fallbacks):
//   - --port / NODE_PORT: listen port (default 8081)
//   - --coordinator / COORDINATOR_ADDR: coordinator base URL (required unless --standalone)
//   - --node-id / NODE_ID: node identifier (default: a generated uuid, replaced by the coordinator's assigned id on registration)
//   - --heartbeat / HEARTBEAT_INTERVAL: heartbeat interval in seconds (default 5)
//   - --standalone: skip coordinator registration and heartbeating entirely
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dreamware/crackstore/internal/cluster"
	"github.com/dreamware/crackstore/internal/columnstore"
	"github.com/dreamware/crackstore/internal/node"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

// Node is the runtime state of a storage node: its identity, its column
// store, and (unless standalone) its outbound heartbeat sender.
type Node struct {
	ID    string
	Store *columnstore.Store

	heartbeat *node.HeartbeatSender
}

// NewNode creates a node with an empty column store.
func NewNode(id string) *Node {
	return &Node{ID: id, Store: columnstore.New()}
}

func main() {
	var (
		port        = flag.Int("port", envInt("NODE_PORT", 8081), "listen port")
		coordinator = flag.String("coordinator", os.Getenv("COORDINATOR_ADDR"), "coordinator base URL")
		nodeID      = flag.String("node-id", os.Getenv("NODE_ID"), "node identifier")
		heartbeatS  = flag.Int("heartbeat", envInt("HEARTBEAT_INTERVAL", 5), "heartbeat interval in seconds")
		standalone  = flag.Bool("standalone", false, "skip coordinator registration and heartbeating")
	)
	flag.Parse()

	if *nodeID == "" {
		*nodeID = "node-" + uuid.NewString()
	}
	listen := fmt.Sprintf(":%d", *port)
	public := getenv("NODE_ADDR", fmt.Sprintf("http://127.0.0.1:%d", *port))

	if !*standalone && *coordinator == "" {
		logFatal("missing --coordinator (or COORDINATOR_ADDR); pass --standalone to run without one")
	}

	n := NewNode(*nodeID)
	log.Printf("node[%s] initialized", n.ID)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/columns/load", withNode(n, handleLoadColumn))
	mux.HandleFunc("/columns/query", withNode(n, handleRangeQuery))
	mux.HandleFunc("/info", withNode(n, handleNodeInfo))

	srv := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("node[%s] listening on %s (public %s)", n.ID, listen, public)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logFatal("listen: %v", err)
		}
	}()

	ctx := context.Background()
	if !*standalone {
		assigned := register(ctx, *coordinator, n.ID, public)
		if assigned != "" {
			n.ID = assigned
		}

		n.heartbeat = node.NewHeartbeatSender(*coordinator, n.ID, time.Duration(*heartbeatS)*time.Second)
		n.heartbeat.Start(ctx)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	if n.heartbeat != nil {
		n.heartbeat.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	log.Println("node stopped")
}

// register attempts to register the node with the coordinator, retrying on
// failure to handle coordinator startup delays or temporary network
// issues. Returns the coordinator-assigned node id, or "" if the
// coordinator didn't assign one.
func register(ctx context.Context, coord, id, addr string) string {
	req := cluster.RegisterNodeRequest{Address: addr}
	if port, err := portFromAddr(addr); err == nil {
		req.Port = port
	}

	var lastErr error
	for i := 0; i < 10; i++ {
		rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		var resp cluster.RegisterNodeResponse
		lastErr = cluster.PostJSON(rctx, coord+"/register-node", req, &resp)
		cancel()

		if lastErr == nil {
			if !resp.Success {
				lastErr = fmt.Errorf("coordinator rejected registration: %s", resp.Message)
			} else {
				log.Printf("registered with coordinator @ %s as %s", coord, resp.AssignedNodeID)
				return resp.AssignedNodeID
			}
		}

		log.Printf("register retry %d: %v", i+1, lastErr)
		time.Sleep(400 * time.Millisecond)
	}

	logFatal("failed to register with coordinator: %v", lastErr)
	return ""
}

// portFromAddr extracts the trailing :port from a host:port or
// http://host:port address string.
func portFromAddr(addr string) (int32, error) {
	idx := -1
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("no port in address %q", addr)
	}
	p, err := strconv.Atoi(addr[idx+1:])
	return int32(p), err
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// withNode adapts a (*Node, http.ResponseWriter, *http.Request) handler
// into a plain http.HandlerFunc closing over n, matching the teacher's
// handler-wiring convention in cmd/node/main.go.
func withNode(n *Node, h func(*Node, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h(n, w, r)
	}
}

// handleLoadColumn implements LoadColumnRequest/Response, per spec §4.2/§6.
func handleLoadColumn(n *Node, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cluster.LoadColumnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, cluster.LoadColumnResponse{Success: false, NodeID: n.ID, ErrorMessage: "bad json: " + err.Error()})
		return
	}
	if req.ColumnName == "" {
		writeJSON(w, cluster.LoadColumnResponse{Success: false, NodeID: n.ID, ErrorMessage: "column_name required"})
		return
	}

	rows := n.Store.LoadColumn(req.ColumnName, req.Data)
	writeJSON(w, cluster.LoadColumnResponse{Success: true, RowsLoaded: int32(rows), NodeID: n.ID})
}

// handleRangeQuery implements RangeQueryRequest/Response, per spec §4.2/§6.
func handleRangeQuery(n *Node, w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cluster.RangeQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, cluster.RangeQueryResponse{Success: false, NodeID: n.ID, ErrorMessage: "bad json: " + err.Error()})
		return
	}

	count, stats, err := n.Store.RangeQuery(req.ColumnName, req.Low, req.High)
	if err != nil {
		writeJSON(w, cluster.RangeQueryResponse{Success: false, NodeID: n.ID, ErrorMessage: err.Error()})
		return
	}

	// QueryStats.CracksUsed is the engine's current crack count (spec §4.2),
	// not the number created by this query — re-fetch it via ColumnInfo.
	cracksUsed := int32(0)
	if info, err := n.Store.ColumnInfo(req.ColumnName); err == nil {
		cracksUsed = int32(info.CrackCount)
	}

	writeJSON(w, cluster.RangeQueryResponse{
		Success: true,
		Count:   count,
		NodeID:  n.ID,
		Stats: cluster.QueryStats{
			TuplesTouched: int64(stats.LastTuplesTouched),
			CracksUsed:    cracksUsed,
			QueryTimeMs:   stats.LastQueryTimeMs,
		},
	})
}

func handleNodeInfo(n *Node, w http.ResponseWriter, _ *http.Request) {
	infos := n.Store.AllColumnInfo()

	summaries := make([]cluster.NodeColumnSummary, 0, len(infos))
	totalRows := 0
	for _, info := range infos {
		summaries = append(summaries, cluster.NodeColumnSummary{Name: info.Name, Size: info.Size, CrackCount: info.CrackCount})
		totalRows += info.Size
	}

	writeJSON(w, cluster.NodeInfoResponse{
		NodeID:    n.ID,
		Columns:   summaries,
		TotalRows: totalRows,
		Healthy:   true,
	})
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

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
