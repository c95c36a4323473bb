// Package storagetest checks SnapshotStore implementations against the
// behavior every backend shares.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/storage"
)

// Run exercises store. The store must start empty.
func Run(t *testing.T, store storage.SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		in := storage.NewSnapshot("bridge", 4, "blue", []byte{1, 2, 3, 0, 255})
		saved, err := store.Save(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, in.ID, saved.ID)
		assert.False(t, saved.CreatedAt.IsZero())

		got, err := store.Load(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, "bridge", got.Label)
		assert.Equal(t, 4, got.Round)
		assert.Equal(t, "blue", got.Winner)
		assert.Equal(t, []byte{1, 2, 3, 0, 255}, got.Data)
		assert.WithinDuration(t, saved.CreatedAt, got.CreatedAt, time.Second)
	})

	t.Run("SaveAssignsID", func(t *testing.T) {
		saved, err := store.Save(ctx, storage.Snapshot{Label: "anonymous", Data: []byte{9}})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, saved.ID)
		_, err = store.Load(ctx, saved.ID)
		assert.NoError(t, err)
	})

	t.Run("SaveReplaces", func(t *testing.T) {
		s := storage.NewSnapshot("siege", 1, "", []byte{1})
		_, err := store.Save(ctx, s)
		require.NoError(t, err)
		s.Round = 7
		s.Winner = "red"
		s.Data = []byte{7, 7}
		_, err = store.Save(ctx, s)
		require.NoError(t, err)

		got, err := store.Load(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, got.Round)
		assert.Equal(t, "red", got.Winner)
		assert.Equal(t, []byte{7, 7}, got.Data)
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := store.Load(ctx, uuid.New())
		assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		base := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
		var ids []uuid.UUID
		for i := 0; i < 3; i++ {
			s := storage.NewSnapshot("ordered", i, "", []byte{byte(i)})
			s.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			_, err := store.Save(ctx, s)
			require.NoError(t, err)
			ids = append(ids, s.ID)
		}
		list, err := store.List(ctx, 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, ids[2], list[0].ID)
		assert.Equal(t, ids[1], list[1].ID)
		assert.Empty(t, list[0].Data, "listings carry no payload")
	})

	t.Run("Delete", func(t *testing.T) {
		s, err := store.Save(ctx, storage.NewSnapshot("doomed", 2, "", []byte{2}))
		require.NoError(t, err)
		require.NoError(t, store.Delete(ctx, s.ID))
		_, err = store.Load(ctx, s.ID)
		assert.ErrorIs(t, err, storage.ErrSnapshotNotFound)
		assert.ErrorIs(t, store.Delete(ctx, s.ID), storage.ErrSnapshotNotFound)
	})
}
