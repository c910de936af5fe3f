package node

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dreamware/crackstore/internal/cluster"
)

// HeartbeatSender periodically pushes a HeartbeatRequest to the
// coordinator, per spec §4.2 ("Outbound: periodic heartbeat to coordinator
// every heartbeat_interval seconds"). Failure to heartbeat is logged; the
// node does not exit, matching spec §4.2's failure policy.
//
// The ticker/Start/Stop/WaitGroup shape is adapted from
// internal/coordinator/health_monitor.go's HealthMonitor, with the
// direction of the check inverted: that monitor polls nodes from the
// coordinator, this sender pushes from the node to the coordinator.
type HeartbeatSender struct {
	coordinator string
	nodeID      string
	interval    time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeartbeatSender returns a sender that will POST heartbeats for nodeID
// to coordinator every interval once Start is called.
func NewHeartbeatSender(coordinator, nodeID string, interval time.Duration) *HeartbeatSender {
	return &HeartbeatSender{coordinator: coordinator, nodeID: nodeID, interval: interval}
}

// Start begins sending heartbeats in a background goroutine. It returns
// immediately; call Stop to shut the goroutine down.
func (h *HeartbeatSender) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				h.sendOnce(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the background goroutine and waits for it to exit.
func (h *HeartbeatSender) Stop() {
	h.mu.Lock()
	cancel := h.cancel
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	h.wg.Wait()
}

// sendOnce issues a single heartbeat RPC with the 2s deadline spec §5
// assigns to heartbeats. Failures are logged, never fatal.
func (h *HeartbeatSender) sendOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req := cluster.HeartbeatRequest{NodeID: h.nodeID}
	var resp cluster.HeartbeatResponse
	if err := cluster.PostJSON(ctx, h.coordinator+"/heartbeat", req, &resp); err != nil {
		log.Printf("node[%s] heartbeat failed: %v", h.nodeID, err)
		return
	}
	if !resp.Acknowledged {
		log.Printf("node[%s] heartbeat not acknowledged", h.nodeID)
	}
}
