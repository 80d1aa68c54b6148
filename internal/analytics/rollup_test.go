package analytics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fyrsmithlabs/llkb/internal/storage"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(t.TempDir(), zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	return svc
}

func TestCompute_ZeroState(t *testing.T) {
	svc := newTestService(t)

	snapshot := svc.Compute(&LessonsFile{}, &ComponentsFile{})

	// No NaN, no division by zero.
	assert.Zero(t, snapshot.Averages.LessonConfidence)
	assert.Zero(t, snapshot.Averages.LessonSuccessRate)
	assert.Zero(t, snapshot.Averages.ReusesPerComponent)
	assert.Empty(t, snapshot.TopLessons)
	assert.Equal(t, Version, snapshot.Version)

	// Closed sets are fully keyed even when empty.
	assert.Len(t, snapshot.LessonsByCategory, len(LessonCategories))
	assert.Len(t, snapshot.ComponentsByCategory, len(ComponentCategories))
	assert.Len(t, snapshot.ComponentsByScope, len(ComponentScopes))
}

func TestCompute_OverviewConventions(t *testing.T) {
	svc := newTestService(t)

	lessons := &LessonsFile{
		Lessons:  []Lesson{{ID: "L1", Category: "selector"}, {ID: "L2", Category: "timing"}},
		Archived: []Lesson{{ID: "L3", Category: "selector"}},
	}
	components := &ComponentsFile{Components: []Component{
		{ID: "C1", Category: "auth", Scope: "page"},
		{ID: "C2", Category: "auth", Scope: "page", Archived: true},
	}}

	snapshot := svc.Compute(lessons, components)

	// Archived lessons come from the separate list; archived components
	// from the flag on the one list.
	assert.Equal(t, Overview{
		TotalLessons:       3,
		ActiveLessons:      2,
		ArchivedLessons:    1,
		TotalComponents:    2,
		ActiveComponents:   1,
		ArchivedComponents: 1,
	}, snapshot.Overview)

	// Archived records do not count toward breakdowns.
	assert.Equal(t, 1, snapshot.LessonsByCategory["selector"])
	assert.Equal(t, 1, snapshot.ComponentsByCategory["auth"])
	assert.Equal(t, 1, snapshot.ComponentsByScope["page"])
}

func TestCompute_UnknownCategoriesIgnored(t *testing.T) {
	svc := newTestService(t)

	snapshot := svc.Compute(
		&LessonsFile{Lessons: []Lesson{{ID: "L1", Category: "mystery"}}},
		&ComponentsFile{Components: []Component{{ID: "C1", Category: "quirk", Scope: "orbit"}}},
	)

	_, ok := snapshot.LessonsByCategory["mystery"]
	assert.False(t, ok)
	// "quirk" is a lesson category only.
	_, ok = snapshot.ComponentsByCategory["quirk"]
	assert.False(t, ok)
	_, ok = snapshot.ComponentsByScope["orbit"]
	assert.False(t, ok)
}

func TestCompute_AveragesRounded(t *testing.T) {
	svc := newTestService(t)

	lessons := &LessonsFile{Lessons: []Lesson{
		{ID: "L1", Confidence: 0.333, SuccessRate: 0.5},
		{ID: "L2", Confidence: 0.667, SuccessRate: 0.8},
		{ID: "L3", Confidence: 0.5, SuccessRate: 0.65},
	}}
	components := &ComponentsFile{Components: []Component{
		{ID: "C1", TotalUses: 3},
		{ID: "C2", TotalUses: 4},
	}}

	snapshot := svc.Compute(lessons, components)

	assert.Equal(t, 0.5, snapshot.Averages.LessonConfidence)
	assert.Equal(t, 0.65, snapshot.Averages.LessonSuccessRate)
	assert.Equal(t, 3.5, snapshot.Averages.ReusesPerComponent)
}

func TestCompute_TopPerformerOrdering(t *testing.T) {
	svc := newTestService(t)

	lessons := &LessonsFile{Lessons: []Lesson{
		{ID: "first", SuccessRate: 0.9, Occurrences: 10},
		{ID: "second", SuccessRate: 0.5, Occurrences: 10},
	}}

	snapshot := svc.Compute(lessons, &ComponentsFile{})

	require.Len(t, snapshot.TopLessons, 2)
	assert.Equal(t, "first", snapshot.TopLessons[0].ID)
	assert.Equal(t, 9.0, snapshot.TopLessons[0].Score)
	assert.Equal(t, "second", snapshot.TopLessons[1].ID)
	assert.Equal(t, 5.0, snapshot.TopLessons[1].Score)
}

func TestCompute_TopPerformersStableTiesAndLimit(t *testing.T) {
	svc := newTestService(t)

	var lessons LessonsFile
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		lessons.Lessons = append(lessons.Lessons, Lesson{
			ID: id, SuccessRate: 0.5, Occurrences: 4,
		})
	}

	snapshot := svc.Compute(&lessons, &ComponentsFile{})

	// Top 5 only, ties kept in input order.
	require.Len(t, snapshot.TopLessons, 5)
	assert.Equal(t, "a", snapshot.TopLessons[0].ID)
	assert.Equal(t, "e", snapshot.TopLessons[4].ID)
}

func TestCompute_TopComponentsByUses(t *testing.T) {
	svc := newTestService(t)

	components := &ComponentsFile{Components: []Component{
		{ID: "low", TotalUses: 2},
		{ID: "high", TotalUses: 9},
		{ID: "archived", TotalUses: 50, Archived: true},
	}}

	snapshot := svc.Compute(&LessonsFile{}, components)

	require.Len(t, snapshot.TopComponents, 2)
	assert.Equal(t, "high", snapshot.TopComponents[0].ID)
	assert.Equal(t, "low", snapshot.TopComponents[1].ID)
}

func TestCompute_NeedsReview(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	declining := func(l Lesson) bool { return l.ID == "L-declining" }
	svc := newTestService(t,
		WithClock(func() time.Time { return now }),
		WithDecliningDetector(declining),
	)

	lessons := &LessonsFile{Lessons: []Lesson{
		{ID: "L-low", Confidence: 0.39},
		{ID: "L-edge", Confidence: 0.4},
		{ID: "L-declining", Confidence: 0.9},
	}}
	components := &ComponentsFile{Components: []Component{
		{ID: "C-stale", TotalUses: 1, Source: ComponentSource{ExtractedAt: now.AddDate(0, 0, -40)}},
		{ID: "C-fresh", TotalUses: 1, Source: ComponentSource{ExtractedAt: now.AddDate(0, 0, -10)}},
		{ID: "C-used", TotalUses: 7, Source: ComponentSource{ExtractedAt: now.AddDate(0, 0, -40)}},
		{ID: "C-unknown-age", TotalUses: 0},
	}}

	review := svc.Compute(lessons, components).NeedsReview

	// Strictly below 0.4 only.
	assert.Equal(t, []string{"L-low"}, review.LowConfidenceLessons)
	assert.Equal(t, []string{"L-declining"}, review.DecliningLessons)
	assert.Equal(t, []string{"C-stale"}, review.StaleComponents)
}

func TestUpdate_FailsWithoutSourceStores(t *testing.T) {
	svc := newTestService(t)

	// No lessons.json / components.json on disk.
	assert.Error(t, svc.Update())
}

func TestUpdate_WritesSnapshot(t *testing.T) {
	root := t.TempDir()
	svc, err := NewService(root, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, storage.SaveJSON(filepath.Join(root, "lessons.json"), LessonsFile{
		Lessons: []Lesson{{ID: "L1", Category: "selector", Confidence: 0.8, SuccessRate: 0.9, Occurrences: 4}},
	}))
	require.NoError(t, storage.SaveJSON(filepath.Join(root, "components.json"), ComponentsFile{
		Components: []Component{{ID: "C1", Category: "auth", Scope: "page", TotalUses: 3}},
	}))

	require.NoError(t, svc.Update())

	snapshot, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, snapshot.Overview.ActiveLessons)
	assert.Equal(t, 1, snapshot.Overview.ActiveComponents)
	assert.False(t, snapshot.LastUpdated.IsZero())
}

func TestLoad_MissingAnalyticsFile(t *testing.T) {
	svc := newTestService(t)

	snapshot, err := svc.Load()
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, Version, snapshot.Version)
	assert.Zero(t, snapshot.Overview.TotalLessons)
}
