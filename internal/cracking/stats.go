package cracking

import "time"

// Stats tracks both lifetime and most-recent-query counters for an Engine,
// mirroring the reference CrackingStats: cumulative totals persist across
// the engine's lifetime, while the last_* fields are overwritten by each
// RangeQuery call.
type Stats struct {
	QueriesExecuted    int64
	TotalTuplesTouched int64
	TotalCracksCreated int64
	TotalQueryTimeMs   float64

	LastTuplesTouched int
	LastCracksCreated int
	LastQueryTimeMs   float64
	LastResultCount   int
}

func (s *Stats) reset() {
	*s = Stats{}
}

func (s *Stats) record(tuplesTouched, cracksCreated int, elapsed time.Duration, result int) {
	ms := float64(elapsed) / float64(time.Millisecond)
	s.LastTuplesTouched = tuplesTouched
	s.LastCracksCreated = cracksCreated
	s.LastQueryTimeMs = ms
	s.LastResultCount = result

	s.QueriesExecuted++
	s.TotalTuplesTouched += int64(tuplesTouched)
	s.TotalCracksCreated += int64(cracksCreated)
	s.TotalQueryTimeMs += ms
}
