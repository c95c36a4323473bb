package main

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/warband/internal/testutil"
)

func TestMigrateDB_InvalidDirection(t *testing.T) {
	_, _, err := migrateDB("postgres://unused", "file://../../migrations", "sideways", 0)
	assert.Error(t, err)
}

func TestMigrateDB_UpAndDown(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	source := "file://../../migrations"

	version, dirty, err := migrateDB(pc.DSN(), source, "up", 0)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	var exists bool
	require.NoError(t, pc.RawPool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'battle_snapshots')`,
	).Scan(&exists))
	assert.True(t, exists)

	_, _, err = migrateDB(pc.DSN(), source, "up", 0)
	assert.True(t, errors.Is(err, migrate.ErrNoChange))

	_, _, err = migrateDB(pc.DSN(), source, "down", 1)
	require.NoError(t, err)
	require.NoError(t, pc.RawPool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'battle_snapshots')`,
	).Scan(&exists))
	assert.False(t, exists)
}
