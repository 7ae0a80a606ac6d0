package availability

import (
	"sync/atomic"

	"github.com/hazqeelknight/events/models"
)

// engineStats aggregates counters behind the read-only stats accessor.
// Gauges reflect the record counts of the most recent computation.
type engineStats struct {
	ruleCount     atomic.Int64
	overrideCount atomic.Int64
	blockCount    atomic.Int64

	computations       atomic.Int64
	cacheHits          atomic.Int64
	cacheMisses        atomic.Int64
	totalComputationMs atomic.Int64
}

func (s *engineStats) observeInputs(rules, overrides, blocks int) {
	s.ruleCount.Store(int64(rules))
	s.overrideCount.Store(int64(overrides))
	s.blockCount.Store(int64(blocks))
}

func (s *engineStats) recordHit() {
	s.cacheHits.Add(1)
}

func (s *engineStats) recordComputation(ms int64) {
	s.cacheMisses.Add(1)
	s.computations.Add(1)
	s.totalComputationMs.Add(ms)
}

func (s *engineStats) snapshot() models.EngineStats {
	hits := s.cacheHits.Load()
	misses := s.cacheMisses.Load()
	computations := s.computations.Load()

	out := models.EngineStats{
		RuleCount:     s.ruleCount.Load(),
		OverrideCount: s.overrideCount.Load(),
		BlockCount:    s.blockCount.Load(),
		Computations:  computations,
		CacheHits:     hits,
		CacheMisses:   misses,
	}
	if total := hits + misses; total > 0 {
		out.CacheHitRate = float64(hits) / float64(total)
	}
	if computations > 0 {
		out.AvgComputationTimeMs = float64(s.totalComputationMs.Load()) / float64(computations)
	}
	return out
}
