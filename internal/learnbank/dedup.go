package learnbank

// Deduplicate collapses candidates that denote the same normalized action
// into one record per (normalized text, primitive) key, preserving first
// occurrence order.
//
// When candidates collide on key, the higher-confidence candidate wins,
// their selector-hint lists are unioned, their success/fail counters are
// summed, and their source journeys are unioned.
func Deduplicate(patterns []DiscoveredPattern) []DiscoveredPattern {
	index := make(map[string]int, len(patterns))
	out := make([]DiscoveredPattern, 0, len(patterns))

	for _, p := range patterns {
		key := p.Key()
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, p)
			continue
		}
		out[i] = combine(out[i], p)
	}
	return out
}

// combine merges two candidates that share a key.
func combine(a, b DiscoveredPattern) DiscoveredPattern {
	winner, loser := a, b
	if b.Confidence > a.Confidence {
		winner, loser = b, a
	}

	winner.SelectorHints = unionHints(winner.SelectorHints, loser.SelectorHints)
	winner.SourceJourneys = unionStrings(winner.SourceJourneys, loser.SourceJourneys)
	winner.SuccessCount = a.SuccessCount + b.SuccessCount
	winner.FailureCount = a.FailureCount + b.FailureCount
	return winner
}

// unionHints appends hints from extra that are not already present in
// base, identified by (strategy, value).
func unionHints(base, extra []SelectorHint) []SelectorHint {
	if len(extra) == 0 {
		return base
	}

	seen := make(map[string]bool, len(base))
	for _, h := range base {
		seen[h.Strategy+"\x00"+h.Value] = true
	}

	out := make([]SelectorHint, len(base), len(base)+len(extra))
	copy(out, base)
	for _, h := range extra {
		k := h.Strategy + "\x00" + h.Value
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, h)
	}
	return out
}

// unionStrings appends values from extra not already present in base.
func unionStrings(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}

	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}

	out := make([]string, len(base), len(base)+len(extra))
	copy(out, base)
	for _, s := range extra {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
