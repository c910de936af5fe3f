package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dreamware/crackstore/internal/cluster"
)

func newTestNode() *Node {
	return NewNode("node-test")
}

func TestHandleLoadColumnAndQuery(t *testing.T) {
	n := newTestNode()

	loadBody, _ := json.Marshal(cluster.LoadColumnRequest{
		ColumnName: "ages",
		Data:       []int32{5, 2, 8, 1, 9, 3, 7, 4, 6, 0},
	})
	loadReq := httptest.NewRequest(http.MethodPost, "/columns/load", bytes.NewReader(loadBody))
	loadW := httptest.NewRecorder()
	handleLoadColumn(n, loadW, loadReq)

	var loadResp cluster.LoadColumnResponse
	if err := json.NewDecoder(loadW.Body).Decode(&loadResp); err != nil {
		t.Fatalf("decode load response: %v", err)
	}
	if !loadResp.Success || loadResp.RowsLoaded != 10 {
		t.Fatalf("unexpected load response: %+v", loadResp)
	}

	queryBody, _ := json.Marshal(cluster.RangeQueryRequest{ColumnName: "ages", Low: 3, High: 7})
	queryReq := httptest.NewRequest(http.MethodPost, "/columns/query", bytes.NewReader(queryBody))
	queryW := httptest.NewRecorder()
	handleRangeQuery(n, queryW, queryReq)

	var queryResp cluster.RangeQueryResponse
	if err := json.NewDecoder(queryW.Body).Decode(&queryResp); err != nil {
		t.Fatalf("decode query response: %v", err)
	}
	if !queryResp.Success || queryResp.Count != 4 {
		t.Fatalf("unexpected query response: %+v", queryResp)
	}
}

func TestHandleRangeQueryUnknownColumn(t *testing.T) {
	n := newTestNode()

	body, _ := json.Marshal(cluster.RangeQueryRequest{ColumnName: "ghost", Low: 0, High: 10})
	req := httptest.NewRequest(http.MethodPost, "/columns/query", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handleRangeQuery(n, w, req)

	var resp cluster.RangeQueryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Error("expected Success=false for unknown column")
	}
	if resp.ErrorMessage == "" {
		t.Error("expected an error message")
	}
}

func TestHandleNodeInfo(t *testing.T) {
	n := newTestNode()
	n.Store.LoadColumn("ages", []int32{1, 2, 3, 4, 5})

	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	w := httptest.NewRecorder()
	handleNodeInfo(n, w, req)

	var resp struct {
		NodeID    string `json:"node_id"`
		TotalRows int    `json:"total_rows"`
		Columns   []struct {
			Name string `json:"name"`
			Size int    `json:"size"`
		} `json:"columns"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.NodeID != "node-test" {
		t.Errorf("expected node id node-test, got %s", resp.NodeID)
	}
	if resp.TotalRows != 5 {
		t.Errorf("expected total rows 5, got %d", resp.TotalRows)
	}
	if len(resp.Columns) != 1 || resp.Columns[0].Name != "ages" {
		t.Errorf("unexpected columns: %+v", resp.Columns)
	}
}

func TestHandleHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestPortFromAddr(t *testing.T) {
	cases := []struct {
		addr string
		want int32
	}{
		{"http://127.0.0.1:8081", 8081},
		{"127.0.0.1:9000", 9000},
	}
	for _, c := range cases {
		got, err := portFromAddr(c.addr)
		if err != nil {
			t.Fatalf("portFromAddr(%q): %v", c.addr, err)
		}
		if got != c.want {
			t.Errorf("portFromAddr(%q) = %d, want %d", c.addr, got, c.want)
		}
	}
}
