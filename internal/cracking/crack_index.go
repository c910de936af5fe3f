package cracking

import "github.com/google/btree"

// crackEntry is one entry of the crack index: the value used as the sort
// key, the array position that partitions around it, and the two reserved
// fields from the reference design (holes, sorted) that do not affect base
// semantics but are carried through for fidelity to the data model.
type crackEntry struct {
	value  int32
	pos    int
	holes  int
	sorted bool
}

// prevPos is the position adjusted for holes. The base design never
// populates holes, so this always equals pos.
func (e *crackEntry) prevPos() int { return e.pos - e.holes }

func (e *crackEntry) Less(than btree.Item) bool {
	return e.value < than.(*crackEntry).value
}

// crackIndex is the ordered value -> position mapping described in
// spec §3 ("Crack index C"), backed by a google/btree.BTree. btree's public
// API offers no persistent cursor, only callback-based ascend/descend, so
// the C++ reference's lower_bound/++/-- iterator dance is reimplemented here
// as three small lookups: ceiling, strict successor, and strict
// predecessor. Each stops after at most two callback invocations (the
// strict lookups skip an entry equal to v), so each is a single O(log k)
// descent through the tree, not a scan.
const btreeDegree = 32

type crackIndex struct {
	tree *btree.BTree
}

func newCrackIndex() *crackIndex {
	return &crackIndex{tree: btree.New(btreeDegree)}
}

func (idx *crackIndex) len() int { return idx.tree.Len() }

func (idx *crackIndex) reset() { idx.tree = btree.New(btreeDegree) }

// invalidateAbove discards every crack entry with a value strictly greater
// than v. An absorbed insert is always appended past the end of the array,
// so any recorded crack position above v's eventual value no longer points
// at a valid partition boundary once the new element lands; those entries
// must be re-derived by a future crack() rather than trusted as-is.
func (idx *crackIndex) invalidateAbove(v int32) {
	var stale []*crackEntry
	idx.tree.AscendGreaterOrEqual(&crackEntry{value: v}, func(item btree.Item) bool {
		e := item.(*crackEntry)
		if e.value > v {
			stale = append(stale, e)
		}
		return true
	})
	for _, e := range stale {
		idx.tree.Delete(e)
	}
}

// get returns the entry stored at exactly value, or nil.
func (idx *crackIndex) get(value int32) *crackEntry {
	item := idx.tree.Get(&crackEntry{value: value})
	if item == nil {
		return nil
	}
	return item.(*crackEntry)
}

// ceiling returns the entry with the smallest value >= v, or nil. This is
// the reference's crack_index_.lower_bound(v).
func (idx *crackIndex) ceiling(v int32) *crackEntry {
	var found *crackEntry
	idx.tree.AscendGreaterOrEqual(&crackEntry{value: v}, func(item btree.Item) bool {
		found = item.(*crackEntry)
		return false
	})
	return found
}

// successorStrictlyGreater returns the entry with the smallest value > v, or
// nil. This is the reference's "++it" applied after a lower_bound(v) whose
// key equals v.
func (idx *crackIndex) successorStrictlyGreater(v int32) *crackEntry {
	var found *crackEntry
	idx.tree.AscendGreaterOrEqual(&crackEntry{value: v}, func(item btree.Item) bool {
		e := item.(*crackEntry)
		if e.value == v {
			return true
		}
		found = e
		return false
	})
	return found
}

// predecessorStrictlyLess returns the entry with the largest value < v, or
// nil. This is the reference's "--it" applied to a lower_bound(v) iterator
// that is not begin().
func (idx *crackIndex) predecessorStrictlyLess(v int32) *crackEntry {
	var found *crackEntry
	idx.tree.DescendLessOrEqual(&crackEntry{value: v}, func(item btree.Item) bool {
		e := item.(*crackEntry)
		if e.value == v {
			return true
		}
		found = e
		return false
	})
	return found
}

// max returns the entry with the largest value overall, or nil.
func (idx *crackIndex) max() *crackEntry {
	item := idx.tree.Max()
	if item == nil {
		return nil
	}
	return item.(*crackEntry)
}

// findPiece returns the half-open bounds [L, R) of the piece of the column
// that would contain v according to the crack index, per spec §4.1.
func (idx *crackIndex) findPiece(v int32, n int) (L, R int) {
	L, R = 0, n
	ceil := idx.ceiling(v)
	if ceil == nil {
		if m := idx.max(); m != nil {
			L = m.pos
		}
		return L, R
	}
	if ceil.value == v {
		L = ceil.pos
		if next := idx.successorStrictlyGreater(v); next != nil {
			R = next.prevPos()
		}
		return L, R
	}
	R = ceil.prevPos()
	if pred := idx.predecessorStrictlyLess(v); pred != nil {
		L = pred.pos
	}
	return L, R
}

// addCrack inserts a crack entry v -> {pos: p} unless it would be redundant
// with an existing entry, per the no-op conditions in spec §4.1.
func (idx *crackIndex) addCrack(v int32, p, n int) int {
	if p == 0 || p >= n {
		return p
	}

	i := idx.ceiling(v)
	if i != nil {
		if i.pos == p {
			return p
		}
		j := i
		if j.value == v {
			j = idx.successorStrictlyGreater(v)
		}
		if j != nil && j.prevPos() == p {
			return p
		}
	}

	if pred := idx.predecessorStrictlyLess(v); pred != nil {
		if pred.pos == p {
			return p
		}
	}

	if existing := idx.get(v); existing != nil {
		// Existing entry at this key must already carry position p;
		// the reference asserts this rather than overwriting.
		return p
	}

	idx.tree.ReplaceOrInsert(&crackEntry{value: v, pos: p})
	return p
}
