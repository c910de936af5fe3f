package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestShardRoundRobin(t *testing.T) {
	t.Run("even split", func(t *testing.T) {
		values := []int32{1, 2, 3, 4, 5, 6}
		shares := shardRoundRobin(values, 3)
		if len(shares) != 3 {
			t.Fatalf("expected 3 shares, got %d", len(shares))
		}
		for _, s := range shares {
			if len(s) != 2 {
				t.Errorf("expected share size 2, got %d", len(s))
			}
		}
	})

	t.Run("uneven split gives leading shards the remainder", func(t *testing.T) {
		values := []int32{1, 2, 3, 4, 5, 6, 7}
		shares := shardRoundRobin(values, 3)
		sizes := make([]int, len(shares))
		for i, s := range shares {
			sizes[i] = len(s)
		}
		want := []int{3, 2, 2}
		for i := range want {
			if sizes[i] != want[i] {
				t.Errorf("share %d size = %d, want %d", i, sizes[i], want[i])
			}
		}
	})

	t.Run("shares are consecutive and cover every value exactly once", func(t *testing.T) {
		values := []int32{10, 20, 30, 40, 50}
		shares := shardRoundRobin(values, 2)

		var reassembled []int32
		for _, s := range shares {
			reassembled = append(reassembled, s...)
		}
		if len(reassembled) != len(values) {
			t.Fatalf("expected %d values, got %d", len(values), len(reassembled))
		}
		for i := range values {
			if reassembled[i] != values[i] {
				t.Errorf("position %d: got %d, want %d", i, reassembled[i], values[i])
			}
		}
	})
}

func TestReadInt32File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")

	want := []int32{5, -2, 8, 1, -9}
	buf := make([]byte, len(want)*4)
	for i, v := range want {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	got, err := readInt32File(path)
	if err != nil {
		t.Fatalf("readInt32File: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("value %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestReadInt32FileRejectsMisalignedSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}

	if _, err := readInt32File(path); err == nil {
		t.Error("expected error for file size not a multiple of 4")
	}
}

func TestParseRange(t *testing.T) {
	low, high, err := parseRange("3", "7")
	if err != nil {
		t.Fatalf("parseRange: %v", err)
	}
	if low != 3 || high != 7 {
		t.Errorf("got (%d, %d), want (3, 7)", low, high)
	}

	if _, _, err := parseRange("x", "7"); err == nil {
		t.Error("expected error for non-numeric low")
	}
}
