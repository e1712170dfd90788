package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	doc := newDocument()
	doc.Links["https://a.com/"] = Entry{Script: "script-one", Timestamp: "2026-08-31T10:00:00Z"}
	doc.Links["https://b.com/"] = Entry{Script: "script-two", Timestamp: "2026-08-31T10:05:00Z"}
	require.NoError(t, store.Save(doc))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded.Links, 2)
	assert.Equal(t, "script-one", loaded.Links["https://a.com/"].Script)
	assert.Equal(t, doc.Metadata.Created, loaded.Metadata.Created)
	assert.Equal(t, doc.Metadata.LastUpdated, loaded.Metadata.LastUpdated)
}

func TestSQLiteStoreSaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	doc := newDocument()
	doc.Links["https://a.com/"] = Entry{Script: "s", Timestamp: "2026-08-31T10:00:00Z"}
	require.NoError(t, store.Save(doc))

	replacement := newDocument()
	replacement.Links["https://b.com/"] = Entry{Script: "s", Timestamp: "2026-08-31T11:00:00Z"}
	require.NoError(t, store.Save(replacement))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded.Links, 1)
	assert.Contains(t, loaded.Links, "https://b.com/")
}

func TestSQLiteStoreEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded.Links)
	assert.NotEmpty(t, loaded.Metadata.Created)
}

func TestRegistryOverSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)

	reg := New(store)
	assert.Equal(t, 2, reg.Register([]string{"https://a.com/", "https://b.com/"}, "s"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, New(reopened).Stats().TotalLinks)
}
