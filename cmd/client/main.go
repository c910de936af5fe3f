// Package main implements the crackstore CLI client, per spec §4.4/§6: a
// stateless command-line tool with four verbs — status, load, query,
// benchmark — that talks only to the coordinator except for data load,
// which it shards round-robin and sends directly to each storage node.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dreamware/crackstore/internal/cluster"
)

var coordinatorAddr string

var rootCmd = &cobra.Command{
	Use:   "client",
	Short: "crackstore cluster client",
}

func main() {
	rootCmd.PersistentFlags().StringVar(&coordinatorAddr, "coordinator", "http://127.0.0.1:8080", "coordinator base URL")
	rootCmd.AddCommand(statusCmd, loadCmd, queryCmd, benchmarkCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "show cluster status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var resp cluster.ClusterStatusResponse
		if err := cluster.GetJSON(ctx, coordinatorAddr+"/status", &resp); err != nil {
			return fmt.Errorf("get status: %w", err)
		}

		fmt.Printf("cluster: %d nodes, %d healthy\n", resp.TotalNodes, resp.HealthyNodes)
		for _, n := range resp.Nodes {
			status := "unhealthy"
			if n.IsHealthy {
				status = "healthy"
			}
			fmt.Printf("  %s  %s:%d  %s  last heartbeat %dms ago  columns=%v\n",
				n.NodeID, n.Address, n.Port, status, n.LastHeartbeatMs, n.Columns)
		}
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <column> <file>",
	Short: "load a raw little-endian int32 file into the cluster, sharded round-robin across healthy nodes",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		column, path := args[0], args[1]

		values, err := readInt32File(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		type nodeAddr struct {
			NodeID  string `json:"node_id"`
			Address string `json:"address"`
		}
		var nodesResp struct {
			Nodes []nodeAddr `json:"nodes"`
		}
		if err := cluster.GetJSON(ctx, coordinatorAddr+"/load-data", &nodesResp); err != nil {
			return fmt.Errorf("list healthy nodes: %w", err)
		}
		if len(nodesResp.Nodes) == 0 {
			return fmt.Errorf("no healthy nodes to load into")
		}

		shares := shardRoundRobin(values, len(nodesResp.Nodes))

		totalLoaded := 0
		for i, n := range nodesResp.Nodes {
			share := shares[i]

			loadCtx, loadCancel := context.WithTimeout(context.Background(), 60*time.Second)
			var resp cluster.LoadColumnResponse
			err := cluster.PostJSON(loadCtx, n.Address+"/columns/load",
				cluster.LoadColumnRequest{ColumnName: column, Data: share}, &resp)
			loadCancel()

			if err != nil {
				return fmt.Errorf("load to %s: %w", n.NodeID, err)
			}
			if !resp.Success {
				return fmt.Errorf("load to %s failed: %s", n.NodeID, resp.ErrorMessage)
			}

			fmt.Printf("  %s: %d rows\n", n.NodeID, resp.RowsLoaded)
			totalLoaded += int(resp.RowsLoaded)
		}

		fmt.Printf("loaded %d total rows for column %q across %d nodes\n", totalLoaded, column, len(nodesResp.Nodes))
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <column> <low> <high>",
	Short: "run a distributed half-open range-count query [low, high)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		low, high, err := parseRange(args[1], args[2])
		if err != nil {
			return err
		}

		resp, err := runDistributedQuery(args[0], low, high)
		if err != nil {
			return err
		}
		printQueryResult(resp)
		if !resp.Success {
			return fmt.Errorf("%s", resp.ErrorMessage)
		}
		return nil
	},
}

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark <column> <low> <high> <iterations>",
	Short: "run the same distributed range query repeatedly and report adaptation",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		low, high, err := parseRange(args[1], args[2])
		if err != nil {
			return err
		}
		iterations, err := strconv.Atoi(args[3])
		if err != nil || iterations <= 0 {
			return fmt.Errorf("invalid iterations %q", args[3])
		}

		for i := 1; i <= iterations; i++ {
			resp, err := runDistributedQuery(args[0], low, high)
			if err != nil {
				return err
			}
			fmt.Printf("iteration %d/%d: total_count=%d nodes_queried=%d total_time_ms=%.3f\n",
				i, iterations, resp.TotalCount, resp.NodesQueried, resp.TotalTimeMs)
			if !resp.Success {
				return fmt.Errorf("%s", resp.ErrorMessage)
			}
		}
		return nil
	},
}

func runDistributedQuery(column string, low, high int32) (cluster.DistributedRangeQueryResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	req := cluster.DistributedRangeQueryRequest{ColumnName: column, Low: low, High: high}
	var resp cluster.DistributedRangeQueryResponse
	if err := cluster.PostJSON(ctx, coordinatorAddr+"/query", req, &resp); err != nil {
		return resp, fmt.Errorf("query: %w", err)
	}
	return resp, nil
}

func printQueryResult(resp cluster.DistributedRangeQueryResponse) {
	for _, nr := range resp.NodeResults {
		fmt.Printf("  %s: count=%d tuples_touched=%d cracks_used=%d query_time_ms=%.3f\n",
			nr.NodeID, nr.Count, nr.Stats.TuplesTouched, nr.Stats.CracksUsed, nr.Stats.QueryTimeMs)
	}
	fmt.Printf("total: %d (across %d nodes, %.3fms wall clock)\n", resp.TotalCount, resp.NodesQueried, resp.TotalTimeMs)
}

func parseRange(lowStr, highStr string) (int32, int32, error) {
	low, err := strconv.ParseInt(lowStr, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid low %q: %w", lowStr, err)
	}
	high, err := strconv.ParseInt(highStr, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid high %q: %w", highStr, err)
	}
	return int32(low), int32(high), nil
}

// readInt32File reads a raw concatenation of little-endian int32 values,
// per spec §6's file format.
func readInt32File(path string) ([]int32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("file size %d is not a multiple of 4", len(data))
	}

	values := make([]int32, len(data)/4)
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return values, nil
}

// shardRoundRobin splits values into numShards consecutive shares: share i
// gets floor(n/m) + (1 if i < n mod m else 0) values, per spec §4.4.
func shardRoundRobin(values []int32, numShards int) [][]int32 {
	n := len(values)
	base := n / numShards
	remainder := n % numShards

	shares := make([][]int32, numShards)
	offset := 0
	for i := 0; i < numShards; i++ {
		size := base
		if i < remainder {
			size++
		}
		shares[i] = values[offset : offset+size]
		offset += size
	}
	return shares
}
