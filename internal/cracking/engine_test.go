package cracking

import (
	"math/rand"
	"testing"
)

// naiveRangeCount is the linear-scan oracle from the reference
// implementation's naive_range_count, used to check Engine.RangeQuery
// against brute force.
func naiveRangeCount(a []int32, low, high int32) int32 {
	var n int32
	for _, v := range a {
		if v >= low && v < high {
			n++
		}
	}
	return n
}

func multisetOf(a []int32) map[int32]int {
	m := make(map[int32]int, len(a))
	for _, v := range a {
		m[v]++
	}
	return m
}

var sampleArray = []int32{5, 2, 8, 1, 9, 3, 7, 4, 6, 0}

func TestRangeQueryConcreteScenarios(t *testing.T) {
	t.Run("range_query(3,7) = 4, crack_count >= 2", func(t *testing.T) {
		e := New(append([]int32(nil), sampleArray...))
		got := e.RangeQuery(3, 7)
		if got != 4 {
			t.Errorf("RangeQuery(3,7) = %d, want 4", got)
		}
		if e.CrackCount() < 2 {
			t.Errorf("CrackCount() = %d, want >= 2", e.CrackCount())
		}
	})

	t.Run("range_query(0,100) = 10", func(t *testing.T) {
		e := New(append([]int32(nil), sampleArray...))
		if got := e.RangeQuery(0, 100); got != 10 {
			t.Errorf("RangeQuery(0,100) = %d, want 10", got)
		}
	})

	t.Run("range_query(100,200) = 0", func(t *testing.T) {
		e := New(append([]int32(nil), sampleArray...))
		if got := e.RangeQuery(100, 200); got != 0 {
			t.Errorf("RangeQuery(100,200) = %d, want 0", got)
		}
	})

	t.Run("insert then query absorbs the value", func(t *testing.T) {
		e := New([]int32{5, 2, 8, 1, 9})
		e.Insert(3)
		got := e.RangeQuery(0, 10)
		if got != 6 {
			t.Errorf("RangeQuery(0,10) after insert(3) = %d, want 6", got)
		}
		if e.PendingInserts() != 0 {
			t.Errorf("PendingInserts() = %d, want 0", e.PendingInserts())
		}
	})

	t.Run("remove then query absorbs the removal and resets cracks", func(t *testing.T) {
		e := New([]int32{5, 2, 8, 1, 9})
		e.Remove(5)
		got := e.RangeQuery(0, 10)
		if got != 4 {
			t.Errorf("RangeQuery(0,10) after remove(5) = %d, want 4", got)
		}
		if e.PendingRemoves() != 0 {
			t.Errorf("PendingRemoves() = %d, want 0", e.PendingRemoves())
		}
		if e.CrackCount() != 0 {
			t.Errorf("CrackCount() = %d, want 0 (delete reset)", e.CrackCount())
		}
	})

	t.Run("100k uniform random: first query touches ~100k, repeats touch 0", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		values := make([]int32, 100000)
		for i := range values {
			values[i] = int32(rng.Intn(1000001))
		}
		e := New(values)

		var touched []int
		for i := 0; i < 5; i++ {
			e.RangeQuery(100000, 200000)
			touched = append(touched, e.GetStats().LastTuplesTouched)
		}

		if touched[0] < 50000 {
			t.Errorf("first iteration touched %d tuples, want roughly full-array scan", touched[0])
		}
		for i := 1; i < 5; i++ {
			if touched[i] != 0 {
				t.Errorf("iteration %d touched %d tuples, want 0", i+1, touched[i])
			}
		}
	})
}

func TestCorrectnessVsOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 30; trial++ {
		n := rng.Intn(500)
		values := make([]int32, n)
		for i := range values {
			values[i] = int32(rng.Intn(2001) - 1000)
		}

		e := New(values)
		for q := 0; q < 10; q++ {
			low := int32(rng.Intn(2001) - 1000)
			high := int32(rng.Intn(2001) - 1000)
			if low > high {
				low, high = high, low
			}

			want := naiveRangeCount(values, low, high)
			got := e.RangeQuery(low, high)
			if got != want {
				t.Fatalf("trial %d query %d: RangeQuery(%d,%d) = %d, want %d (n=%d)",
					trial, q, low, high, got, want, n)
			}
		}
	}
}

func TestAdaptationMonotonicity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	values := make([]int32, 5000)
	for i := range values {
		values[i] = int32(rng.Intn(100000))
	}
	e := New(values)

	e.RangeQuery(20000, 40000)
	first := e.GetStats().LastTuplesTouched

	e.RangeQuery(20000, 40000)
	second := e.GetStats().LastTuplesTouched

	if second > first {
		t.Errorf("second identical query touched %d tuples, more than first's %d", second, first)
	}
}

func TestCrackCountMonotonicityWithoutRemoves(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	values := make([]int32, 2000)
	for i := range values {
		values[i] = int32(rng.Intn(10000))
	}
	e := New(values)

	prev := e.CrackCount()
	for i := 0; i < 50; i++ {
		low := int32(rng.Intn(10000))
		high := low + int32(rng.Intn(500))
		e.RangeQuery(low, high)

		cur := e.CrackCount()
		if cur < prev {
			t.Fatalf("iteration %d: crack_count dropped from %d to %d without a remove", i, prev, cur)
		}
		prev = cur
	}
}

func TestMultisetPreservationUnderPureQueries(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	values := make([]int32, 1000)
	for i := range values {
		values[i] = int32(rng.Intn(5000))
	}
	want := multisetOf(values)

	e := New(values)
	for i := 0; i < 20; i++ {
		low := int32(rng.Intn(5000))
		high := low + int32(rng.Intn(1000))
		e.RangeQuery(low, high)
	}

	got := multisetOf(e.arr[:e.size])
	if len(got) != len(want) {
		t.Fatalf("distinct value count changed: got %d, want %d", len(got), len(want))
	}
	for v, n := range want {
		if got[v] != n {
			t.Errorf("value %d: count %d, want %d", v, got[v], n)
		}
	}
}

func TestInsertRemoveCancellation(t *testing.T) {
	e := New([]int32{1, 2, 3, 4, 5})

	e.Insert(100)
	e.Remove(100)

	if e.PendingInserts() != 0 || e.PendingRemoves() != 0 {
		t.Fatalf("expected both pending sets empty after cancellation, got inserts=%d removes=%d",
			e.PendingInserts(), e.PendingRemoves())
	}

	sizeBefore := e.Size()
	statsBefore := e.GetStats()

	got := e.RangeQuery(0, 10)
	if got != 5 {
		t.Errorf("RangeQuery(0,10) = %d, want 5 (cancellation should leave n=%d unchanged)", got, sizeBefore)
	}
	if e.Size() != sizeBefore {
		t.Errorf("Size() = %d, want unchanged %d", e.Size(), sizeBefore)
	}
	_ = statsBefore
}

func TestInsertRemoveCancellationReverseOrder(t *testing.T) {
	e := New([]int32{1, 2, 3, 4, 5})

	e.Remove(3)
	e.Insert(3)

	if e.PendingInserts() != 0 || e.PendingRemoves() != 0 {
		t.Fatalf("expected cancellation regardless of order, got inserts=%d removes=%d",
			e.PendingInserts(), e.PendingRemoves())
	}

	got := e.RangeQuery(0, 10)
	if got != 5 {
		t.Errorf("RangeQuery(0,10) = %d, want 5", got)
	}
}

// TestInsertBelowExistingCrackKeyStaysCorrect guards against a regression
// where an absorbed insert lands past the tail of the array without
// invalidating crack entries recorded above its value: a later query
// spanning the inserted value would then read a stale partition boundary
// and silently undercount it.
func TestInsertBelowExistingCrackKeyStaysCorrect(t *testing.T) {
	e := New([]int32{100, 200, 300, 400, 500})

	if got := e.RangeQuery(250, 260); got != 0 {
		t.Fatalf("RangeQuery(250,260) = %d, want 0", got)
	}
	if e.CrackCount() == 0 {
		t.Fatalf("expected RangeQuery to create crack entries above the inserted value's future position")
	}

	e.Insert(10)

	got := e.RangeQuery(0, 50)
	if got != 1 {
		t.Errorf("RangeQuery(0,50) = %d, want 1 (stale crack entry above the insert masked it)", got)
	}

	if got := e.RangeQuery(0, 1000); got != 6 {
		t.Errorf("RangeQuery(0,1000) = %d, want 6 (multiset should include the inserted value)", got)
	}
}

func TestBoundaryLowGreaterEqualHigh(t *testing.T) {
	e := New(append([]int32(nil), sampleArray...))

	cases := []struct{ low, high int32 }{
		{5, 5},
		{7, 3},
		{0, 0},
	}
	for _, c := range cases {
		got := e.RangeQuery(c.low, c.high)
		if got != 0 {
			t.Errorf("RangeQuery(%d,%d) = %d, want 0", c.low, c.high, got)
		}
		if e.CrackCount() != 0 {
			t.Errorf("RangeQuery(%d,%d) created %d cracks, want 0", c.low, c.high, e.CrackCount())
		}
	}
}

func TestFullCover(t *testing.T) {
	e := New(append([]int32(nil), sampleArray...))

	got := e.RangeQuery(-1000000000, 1000000000)
	if int(got) != e.Size() {
		t.Errorf("RangeQuery(-inf,+inf) = %d, want n=%d", got, e.Size())
	}
	if e.GetStats().LastTuplesTouched != e.Size() {
		t.Errorf("LastTuplesTouched = %d, want n=%d", e.GetStats().LastTuplesTouched, e.Size())
	}
}

func TestEmptyEngine(t *testing.T) {
	e := New(nil)
	if got := e.RangeQuery(0, 100); got != 0 {
		t.Errorf("RangeQuery on empty engine = %d, want 0", got)
	}
}

func TestCapacityGrowsRatherThanDroppingInserts(t *testing.T) {
	e := New([]int32{1, 2, 3}, 0)

	for i := 0; i < 20; i++ {
		e.Insert(int32(1000 + i))
	}

	got := e.RangeQuery(0, 2000)
	if got != 23 {
		t.Errorf("RangeQuery(0,2000) = %d, want 23 (3 original + 20 inserted)", got)
	}
}

func TestStatsCumulativeAccumulate(t *testing.T) {
	e := New(append([]int32(nil), sampleArray...))

	e.RangeQuery(3, 7)
	e.RangeQuery(0, 100)

	stats := e.GetStats()
	if stats.QueriesExecuted != 2 {
		t.Errorf("QueriesExecuted = %d, want 2", stats.QueriesExecuted)
	}
	if stats.TotalTuplesTouched <= 0 {
		t.Errorf("TotalTuplesTouched = %d, want > 0", stats.TotalTuplesTouched)
	}
}

func TestResetStats(t *testing.T) {
	e := New(append([]int32(nil), sampleArray...))
	e.RangeQuery(3, 7)
	e.ResetStats()

	stats := e.GetStats()
	if stats.QueriesExecuted != 0 || stats.TotalTuplesTouched != 0 {
		t.Errorf("expected zeroed stats after ResetStats, got %+v", stats)
	}
}
