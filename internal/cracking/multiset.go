package cracking

import "sort"

// multiset is a counted collection of int32 values. It backs the engine's
// pending insert and pending remove sets: both need membership, count, and
// "remove exactly one instance" semantics, not deduplicated set membership.
type multiset struct {
	counts map[int32]int
	size   int
}

func newMultiset() *multiset {
	return &multiset{counts: make(map[int32]int)}
}

// Add records one more instance of v.
func (m *multiset) Add(v int32) {
	m.counts[v]++
	m.size++
}

// Remove deletes a single instance of v, if present, and reports whether one
// was found.
func (m *multiset) Remove(v int32) bool {
	n, ok := m.counts[v]
	if !ok || n == 0 {
		return false
	}
	if n == 1 {
		delete(m.counts, v)
	} else {
		m.counts[v] = n - 1
	}
	m.size--
	return true
}

// Len reports the total number of queued instances across all values.
func (m *multiset) Len() int {
	return m.size
}

// sortedKeys returns the distinct values present, ascending.
func (m *multiset) sortedKeys() []int32 {
	keys := make([]int32, 0, len(m.counts))
	for v := range m.counts {
		keys = append(keys, v)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// extractRange removes and returns every distinct value v with low <= v <
// high, in ascending order, each repeated once per queued instance.
func (m *multiset) extractRange(low, high int32) []int32 {
	var out []int32
	for _, v := range m.sortedKeys() {
		if v < low {
			continue
		}
		if v >= high {
			break
		}
		n := m.counts[v]
		for i := 0; i < n; i++ {
			out = append(out, v)
		}
		delete(m.counts, v)
		m.size -= n
	}
	return out
}
