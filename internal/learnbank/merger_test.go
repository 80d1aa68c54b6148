package learnbank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func existingPattern(text, primitive string, confidence float64) LearnedPattern {
	return LearnedPattern{
		Text:        text,
		Primitive:   primitive,
		Confidence:  confidence,
		LastUpdated: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}
}

func TestMerge_AppendsNewKeys(t *testing.T) {
	existing := []LearnedPattern{existingPattern("click login", "click", 0.8)}
	discovered := []DiscoveredPattern{
		{Text: "fill username", Primitive: PrimitiveFill, Confidence: 0.7, SuccessCount: 1, SourceJourneys: []string{"J1"}},
	}

	merged, stats := Merge(existing, discovered)

	require.Len(t, merged, 2)
	assert.Equal(t, MergeStats{Created: 1}, stats)

	added := merged[1]
	assert.Equal(t, "fill username", added.Text)
	assert.Equal(t, "fill", added.Primitive)
	assert.Equal(t, 1, added.SuccessCount)
	assert.Equal(t, []string{"J1"}, added.SourceJourneys)
	assert.False(t, added.LastUpdated.IsZero())
}

func TestMerge_ReplacesOnlyOnStrictlyHigherConfidence(t *testing.T) {
	existing := []LearnedPattern{existingPattern("click login", "click", 0.8)}

	// Equal confidence: entry stays bit-for-bit identical.
	merged, stats := Merge(existing, []DiscoveredPattern{
		{Text: "click login", Primitive: PrimitiveClick, Confidence: 0.8},
	})
	assert.Equal(t, existing[0], merged[0])
	assert.Equal(t, MergeStats{Unchanged: 1}, stats)

	// Lower confidence: same.
	merged, stats = Merge(existing, []DiscoveredPattern{
		{Text: "click login", Primitive: PrimitiveClick, Confidence: 0.5},
	})
	assert.Equal(t, existing[0], merged[0])
	assert.Equal(t, MergeStats{Unchanged: 1}, stats)

	// Strictly higher confidence: replaced with fresh timestamp.
	merged, stats = Merge(existing, []DiscoveredPattern{
		{Text: "click login", Primitive: PrimitiveClick, Confidence: 0.9, SourceJourneys: []string{"J9"}},
	})
	assert.Equal(t, MergeStats{Updated: 1}, stats)
	assert.Equal(t, 0.9, merged[0].Confidence)
	assert.Equal(t, []string{"J9"}, merged[0].SourceJourneys)
	assert.True(t, merged[0].LastUpdated.After(existing[0].LastUpdated))
}

func TestMerge_DoesNotMutateExisting(t *testing.T) {
	existing := []LearnedPattern{
		existingPattern("click login", "click", 0.5),
		existingPattern("fill username", "fill", 0.6),
	}
	snapshot := make([]LearnedPattern, len(existing))
	copy(snapshot, existing)

	merged, _ := Merge(existing, []DiscoveredPattern{
		{Text: "click login", Primitive: PrimitiveClick, Confidence: 0.95},
	})

	// The caller's slice is untouched.
	assert.Equal(t, snapshot, existing)
	// Never fewer keys than the existing store.
	assert.GreaterOrEqual(t, len(merged), len(existing))
}

func TestMerge_Idempotent(t *testing.T) {
	existing := []LearnedPattern{existingPattern("click login", "click", 0.5)}
	discovered := []DiscoveredPattern{
		{Text: "click login", Primitive: PrimitiveClick, Confidence: 0.9},
		{Text: "fill username", Primitive: PrimitiveFill, Confidence: 0.7},
	}

	once, _ := Merge(existing, discovered)
	twice, stats := Merge(once, discovered)

	// Second pass finds no confidence improvement, thus no changes
	// (timestamps included).
	assert.Equal(t, once, twice)
	assert.Equal(t, MergeStats{Unchanged: 2}, stats)
}

func TestMerge_LaterDuplicateSeesAppliedUpdate(t *testing.T) {
	discovered := []DiscoveredPattern{
		{Text: "click login", Primitive: PrimitiveClick, Confidence: 0.6},
		{Text: "click login", Primitive: PrimitiveClick, Confidence: 0.9},
		{Text: "click login", Primitive: PrimitiveClick, Confidence: 0.7},
	}

	merged, stats := Merge(nil, discovered)

	// The 0.9 update is visible within the pass; 0.7 does not regress it.
	require.Len(t, merged, 1)
	assert.Equal(t, 0.9, merged[0].Confidence)
	assert.Equal(t, MergeStats{Created: 1, Updated: 1, Unchanged: 1}, stats)
}

func TestMerge_EmptyInputs(t *testing.T) {
	merged, stats := Merge(nil, nil)
	assert.Empty(t, merged)
	assert.Equal(t, MergeStats{}, stats)

	existing := []LearnedPattern{existingPattern("click login", "click", 0.8)}
	merged, _ = Merge(existing, nil)
	assert.Equal(t, existing, merged)
}
