package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSaveJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	in := doc{Name: "patterns", Count: 3}
	require.NoError(t, SaveJSON(path, in))

	var out doc
	require.NoError(t, LoadJSON(path, &out))
	assert.Equal(t, in, out)
}

func TestSaveJSON_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")

	require.NoError(t, SaveJSON(path, doc{Name: "old"}))
	require.NoError(t, SaveJSON(path, doc{Name: "new"}))

	var out doc
	require.NoError(t, LoadJSON(path, &out))
	assert.Equal(t, "new", out.Name)

	// No temp file left behind.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadJSON_MissingFile(t *testing.T) {
	var out doc
	err := LoadJSON(filepath.Join(t.TempDir(), "absent.json"), &out)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadJSON_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	var out doc
	err := LoadJSON(path, &out)
	assert.True(t, errors.Is(err, ErrCorrupted))
}
