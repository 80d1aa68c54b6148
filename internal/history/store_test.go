package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), zaptest.NewLogger(t), opts...)
	require.NoError(t, err)
	return store
}

func writeDayLog(t *testing.T, store *Store, day string, lines string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(store.Dir(), 0o755))
	path := filepath.Join(store.Dir(), day+".jsonl")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o600))
}

func TestStore_AppendReadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	ev := Event{
		Event:     EventComponentExtracted,
		Prompt:    "journey-implement",
		JourneyID: "J1",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	require.NoError(t, store.Append(ev))

	events, err := store.ReadDay(time.Now())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, ev, events[0])
}

func TestStore_AppendFillsTimestamp(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Append(Event{Event: EventPatternsMerged}))

	events, err := store.ReadDay(time.Now())
	require.NoError(t, err)
	require.Len(t, events, 1)

	ts, err := time.Parse(time.RFC3339, events[0].Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestStore_ReadDay_MissingFile(t *testing.T) {
	store := newTestStore(t)

	events, err := store.ReadDay(time.Now())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStore_ReadDay_SkipsMalformedLines(t *testing.T) {
	store := newTestStore(t)
	day := time.Now().Format("2006-01-02")
	writeDayLog(t, store, day,
		`{"event":"component_extracted","timestamp":"2026-08-25T10:00:00Z"}`+"\n"+
			"{torn line\n"+
			`{"event":"patterns_merged","timestamp":"2026-08-25T11:00:00Z"}`+"\n")

	events, err := store.ReadDay(time.Now())
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestStore_CountToday(t *testing.T) {
	store := newTestStore(t)

	for _, journey := range []string{"J1", "J1", "J2"} {
		require.NoError(t, store.Append(Event{
			Event:     EventComponentExtracted,
			JourneyID: journey,
		}))
	}
	require.NoError(t, store.Append(Event{Event: EventPatternsMerged}))

	total, err := store.CountToday(EventComponentExtracted, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	j1, err := store.CountToday(EventComponentExtracted, func(ev Event) bool {
		return ev.JourneyID == "J1"
	})
	require.NoError(t, err)
	assert.Equal(t, 2, j1)
}

func TestStore_ListRange(t *testing.T) {
	store := newTestStore(t)
	for _, day := range []string{"2026-08-20", "2026-08-22", "2026-08-25", "2026-07-01"} {
		writeDayLog(t, store, day, "")
	}
	// Non-matching filenames are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o600))

	start := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 22, 23, 0, 0, 0, time.UTC)

	paths, err := store.ListRange(start, end)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	// Inclusive bounds, ascending order.
	assert.Equal(t, filepath.Join(store.Dir(), "2026-08-20.jsonl"), paths[0])
	assert.Equal(t, filepath.Join(store.Dir(), "2026-08-22.jsonl"), paths[1])
}

func TestStore_ListRange_MissingDir(t *testing.T) {
	store := newTestStore(t)

	paths, err := store.ListRange(time.Now().AddDate(0, 0, -7), time.Now())
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestStore_Cleanup_RetentionCutoff(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()

	oldDay := now.AddDate(0, 0, -400).Format("2006-01-02")
	keptDay := now.AddDate(0, 0, -300).Format("2006-01-02")
	writeDayLog(t, store, oldDay, "")
	writeDayLog(t, store, keptDay, "")
	// Files outside the strict date pattern are never touched.
	foreign := filepath.Join(store.Dir(), "backup.jsonl")
	require.NoError(t, os.WriteFile(foreign, []byte("x"), 0o600))

	deleted, err := store.Cleanup(365)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, err = os.Stat(filepath.Join(store.Dir(), oldDay+".jsonl"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(store.Dir(), keptDay+".jsonl"))
	assert.NoError(t, err)
	_, err = os.Stat(foreign)
	assert.NoError(t, err)
}

func TestStore_Cleanup_MissingDir(t *testing.T) {
	store := newTestStore(t)

	deleted, err := store.Cleanup(0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
