package cracking

import "time"

const (
	minExtraCapacity = 1000
)

// Engine owns one mutable integer column: its backing array, its crack
// index, its queued-but-unabsorbed updates, and its query statistics.
type Engine struct {
	arr []int32 // len(arr) == capacity; only arr[:size] is logical data
	size int

	index *crackIndex

	pendingInserts *multiset
	pendingRemoves *multiset

	stats Stats
}

// New copies initial into a fresh Engine with spare capacity for inserts.
// extraCapacity defaults to max(len(initial)/10, 1000) when omitted or
// negative.
func New(initial []int32, extraCapacity ...int) *Engine {
	extra := -1
	if len(extraCapacity) > 0 {
		extra = extraCapacity[0]
	}
	if extra < 0 {
		extra = len(initial) / 10
		if extra < minExtraCapacity {
			extra = minExtraCapacity
		}
	}

	arr := make([]int32, len(initial)+extra)
	copy(arr, initial)

	return &Engine{
		arr:            arr,
		size:           len(initial),
		index:          newCrackIndex(),
		pendingInserts: newMultiset(),
		pendingRemoves: newMultiset(),
	}
}

// Size returns the current logical length n of the column.
func (e *Engine) Size() int { return e.size }

// CrackCount returns the number of crack points currently recorded.
func (e *Engine) CrackCount() int { return e.index.len() }

// PendingInserts returns the number of queued, unabsorbed inserts.
func (e *Engine) PendingInserts() int { return e.pendingInserts.Len() }

// PendingRemoves returns the number of queued, unabsorbed removes.
func (e *Engine) PendingRemoves() int { return e.pendingRemoves.Len() }

// GetStats returns a snapshot of the engine's cumulative and most-recent
// query statistics.
func (e *Engine) GetStats() Stats { return e.stats }

// ResetStats zeroes both the cumulative and per-query counters.
func (e *Engine) ResetStats() { e.stats.reset() }

// Insert queues v for insertion. The value is not reflected in the column
// until a RangeQuery whose range covers v absorbs it. A remove already
// queued for v cancels instead of stacking, per the update-cancellation
// invariant.
func (e *Engine) Insert(v int32) {
	if e.pendingRemoves.Remove(v) {
		return
	}
	e.pendingInserts.Add(v)
}

// Remove queues v for removal. An insert already queued for v cancels
// instead of stacking.
func (e *Engine) Remove(v int32) {
	if e.pendingInserts.Remove(v) {
		return
	}
	e.pendingRemoves.Add(v)
}

// RangeQuery returns the count of elements x currently in the column with
// low <= x < high, first absorbing any pending inserts or removes whose
// value falls in [low, high). For low >= high the result is 0 and no work
// is done.
func (e *Engine) RangeQuery(low, high int32) int32 {
	start := time.Now()

	if low >= high {
		e.stats.record(0, 0, time.Since(start), 0)
		return 0
	}

	e.stats.LastTuplesTouched = 0

	e.mergePendingUpdates(low, high)

	initialCracks := e.index.len()
	result := e.crack(low, high)

	tuplesTouched := e.stats.LastTuplesTouched // set inside crack via recordTouch
	cracksCreated := e.index.len() - initialCracks
	e.stats.record(tuplesTouched, cracksCreated, time.Since(start), int(result))

	return result
}

// recordTouch accumulates tuples-touched for the query in progress. crack()
// and crackOne() call this directly rather than returning the count, so
// one running total accumulates for the call. mergePendingUpdates does not
// add to it.
func (e *Engine) recordTouch(n int) {
	e.stats.LastTuplesTouched += n
}

// partition performs one-sided in-place partitioning of arr[L:R] around v:
// afterward arr[L:i] holds values < v and arr[i:R] holds values >= v, for
// the returned index i. Element order within each side is unspecified.
func (e *Engine) partition(v int32, L, R int) int {
	i := L
	for j := L; j < R; j++ {
		if e.arr[j] < v {
			e.arr[i], e.arr[j] = e.arr[j], e.arr[i]
			i++
		}
	}
	return i
}

// splitAB performs a single-pass three-way (Dutch national flag) split of
// arr[L:R] around a < b: afterward arr[L:i1] < a, a <= arr[i1:i2] < b, and
// arr[i2:R] >= b. At most two swaps are performed per inspected element.
func (e *Engine) splitAB(L, R int, a, b int32) (i1, i2 int) {
	i1, i2 = L, L
	end := R - 1
	l := L
	for l <= end {
		switch {
		case e.arr[l] < a:
			e.arr[l], e.arr[i1] = e.arr[i1], e.arr[l]
			if i1 != i2 {
				e.arr[l], e.arr[i2] = e.arr[i2], e.arr[l]
			}
			i1++
			i2++
			l++
		case e.arr[l] < b:
			e.arr[l], e.arr[i2] = e.arr[i2], e.arr[l]
			i2++
			l++
		default:
			e.arr[l], e.arr[end] = e.arr[end], e.arr[l]
			end--
		}
	}
	return i1, i2
}

// crack is the core of RangeQuery: it locates the pieces containing a and
// b, partitions (or three-way splits) just enough of the array, records a
// and b as crack points, and returns the count of elements in [a, b). A
// boundary that is already an exact crack key is read directly from the
// index instead of being repartitioned, so that repeating the same query
// touches zero tuples once both boundaries have been cracked.
func (e *Engine) crack(a, b int32) int32 {
	aEntry := e.index.get(a)
	bEntry := e.index.get(b)

	switch {
	case aEntry != nil && bEntry != nil:
		return int32(bEntry.pos - aEntry.pos)
	case aEntry != nil:
		return int32(e.crackOne(b) - aEntry.pos)
	case bEntry != nil:
		return int32(bEntry.pos - e.crackOne(a))
	}

	L1, R1 := e.index.findPiece(a, e.size)
	L2, R2 := e.index.findPiece(b, e.size)

	e.recordTouch(R1 - L1)

	var i1, i2 int
	if L1 == L2 {
		i1, i2 = e.splitAB(L1, R1, a, b)
	} else {
		e.recordTouch(R2 - L2)
		i1 = e.partition(a, L1, R1)
		i2 = e.partition(b, L2, R2)
	}

	e.index.addCrack(a, i1, e.size)
	e.index.addCrack(b, i2, e.size)

	return int32(i2 - i1)
}

// crackOne partitions v's piece and records v as a crack point, used when
// the query's other boundary is already an exact crack key and only v's
// side still needs work.
func (e *Engine) crackOne(v int32) int {
	L, R := e.index.findPiece(v, e.size)
	e.recordTouch(R - L)
	p := e.partition(v, L, R)
	e.index.addCrack(v, p, e.size)
	return p
}

// mergePendingUpdates absorbs queued inserts and removes whose value falls
// in [low, high), per spec §4.1. Inserts land at the end of the array
// (growing capacity if needed, rather than dropping the value), which can
// place a value below an existing crack key past that crack's recorded
// position — so every crack entry above the inserted value is invalidated,
// to be re-derived by a later crack() rather than trusted stale. Removes
// swap the target with the final element and reset the crack index
// entirely, since swap-with-last can violate piece containment.
func (e *Engine) mergePendingUpdates(low, high int32) {
	for _, v := range e.pendingInserts.extractRange(low, high) {
		e.ensureCapacity(e.size + 1)
		e.arr[e.size] = v
		e.size++
		e.index.invalidateAbove(v)
	}

	removed := false
	for _, v := range e.pendingRemoves.extractRange(low, high) {
		for i := 0; i < e.size; i++ {
			if e.arr[i] == v {
				e.size--
				e.arr[i] = e.arr[e.size]
				removed = true
				break
			}
		}
	}
	if removed {
		e.index.reset()
	}
}

// ensureCapacity grows the backing array, doubling it (at least enough to
// fit need) when it is too small. This departs deliberately from the
// reference implementation, which silently drops inserts once capacity is
// exhausted; growing preserves every queued value instead.
func (e *Engine) ensureCapacity(need int) {
	if need <= len(e.arr) {
		return
	}
	newCap := len(e.arr) * 2
	if newCap < need {
		newCap = need
	}
	grown := make([]int32, newCap)
	copy(grown, e.arr[:e.size])
	e.arr = grown
}
