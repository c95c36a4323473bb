package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/storage"
	"github.com/cory-johannsen/warband/internal/storage/storagetest"
)

func TestMemoryStore(t *testing.T) {
	storagetest.Run(t, storage.NewMemoryStore())
}

func TestMemoryStore_CopiesData(t *testing.T) {
	store := storage.NewMemoryStore()
	data := []byte{1, 2, 3}
	s, err := store.Save(context.Background(), storage.NewSnapshot("copy", 1, "", data))
	require.NoError(t, err)
	data[0] = 9

	got, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	got.Data[1] = 9
	again, err := store.Load(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, again.Data)
}

func TestPrepare(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := storage.Prepare(storage.Snapshot{}, now)
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, now, s.CreatedAt)

	keep := storage.NewSnapshot("x", 0, "", nil)
	keep.CreatedAt = now.Add(-time.Hour)
	prepared := storage.Prepare(keep, now)
	assert.Equal(t, keep.ID, prepared.ID)
	assert.Equal(t, keep.CreatedAt, prepared.CreatedAt)
}

// Property: List never returns more than limit entries and is ordered newest first.
func TestPropertyMemoryStoreListOrdered(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store := storage.NewMemoryStore()
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		base := time.Now()
		for i := 0; i < n; i++ {
			s := storage.NewSnapshot("p", i, "", nil)
			s.CreatedAt = base.Add(time.Duration(rapid.IntRange(-1000, 1000).Draw(rt, "offset")) * time.Second)
			_, err := store.Save(context.Background(), s)
			require.NoError(rt, err)
		}
		limit := rapid.IntRange(1, 25).Draw(rt, "limit")
		list, err := store.List(context.Background(), limit)
		require.NoError(rt, err)
		assert.LessOrEqual(rt, len(list), limit)
		assert.Equal(rt, min(n, limit), len(list))
		for i := 1; i < len(list); i++ {
			assert.False(rt, list[i].CreatedAt.After(list[i-1].CreatedAt))
		}
	})
}
