package learnbank

import "time"

// MergeStats summarizes one merge pass.
type MergeStats struct {
	// Created is the number of new keys appended to the store.
	Created int

	// Updated is the number of existing keys replaced by a strictly more
	// confident candidate.
	Updated int

	// Unchanged is the number of candidates whose key already existed
	// with equal or higher confidence.
	Unchanged int
}

// Merge folds deduplicated candidates into the learned-pattern store.
//
// The existing slice and its elements are never mutated; the result is a
// fresh slice. New keys are appended; an existing key is replaced only
// when the candidate's confidence is strictly greater, in which case the
// candidate's confidence, provenance and counters are copied over and a
// new lastUpdated timestamp is stamped. The operation is idempotent and
// its final content is independent of candidate order for a fixed input
// set: later candidates in the same pass observe updates already applied
// to the accumulating result, not a stale snapshot.
func Merge(existing []LearnedPattern, discovered []DiscoveredPattern) ([]LearnedPattern, MergeStats) {
	merged := make([]LearnedPattern, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, lp := range merged {
		index[lp.Key()] = i
	}

	var stats MergeStats
	now := time.Now().UTC()
	for _, dp := range discovered {
		key := dp.Key()
		i, ok := index[key]
		if !ok {
			index[key] = len(merged)
			merged = append(merged, learnedFromDiscovered(dp, now))
			stats.Created++
			continue
		}

		if dp.Confidence > merged[i].Confidence {
			merged[i] = learnedFromDiscovered(dp, now)
			stats.Updated++
			continue
		}
		stats.Unchanged++
	}

	return merged, stats
}

// learnedFromDiscovered builds the persisted form of a candidate.
func learnedFromDiscovered(dp DiscoveredPattern, now time.Time) LearnedPattern {
	journeys := make([]string, len(dp.SourceJourneys))
	copy(journeys, dp.SourceJourneys)

	return LearnedPattern{
		Text:           dp.Text,
		OriginalText:   dp.OriginalText,
		Primitive:      string(dp.Primitive),
		Confidence:     dp.Confidence,
		SuccessCount:   dp.SuccessCount,
		FailureCount:   dp.FailureCount,
		SourceJourneys: journeys,
		LastUpdated:    now,
	}
}
