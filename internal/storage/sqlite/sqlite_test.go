package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/storage"
	"github.com/cory-johannsen/warband/internal/storage/sqlite"
	"github.com/cory-johannsen/warband/internal/storage/storagetest"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore(t *testing.T) {
	storagetest.Run(t, openStore(t, filepath.Join(t.TempDir(), "battles.db")))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battles.db")
	first, err := sqlite.Open(path)
	require.NoError(t, err)
	saved, err := first.Save(context.Background(), storage.NewSnapshot("reopen", 3, "red", []byte{4, 5}))
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := openStore(t, path)
	got, err := second.Load(context.Background(), saved.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5}, got.Data)
	assert.Equal(t, "red", got.Winner)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sqlite.Open("")
	assert.Error(t, err)
}
