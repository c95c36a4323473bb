// Package sqlite stores battle snapshots in a local SQLite file through gorm
// and the pure-Go glebarez driver.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cory-johannsen/warband/internal/storage"
)

// snapshotRow is the gorm model of the battle_snapshots table.
type snapshotRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Label     string    `gorm:"size:128;not null;default:''"`
	Round     int       `gorm:"not null;default:0"`
	Winner    string    `gorm:"size:16;not null;default:''"`
	Data      []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index;not null"`
}

func (snapshotRow) TableName() string { return "battle_snapshots" }

func toRow(s storage.Snapshot) snapshotRow {
	return snapshotRow{
		ID:        s.ID.String(),
		Label:     s.Label,
		Round:     s.Round,
		Winner:    s.Winner,
		Data:      s.Data,
		CreatedAt: s.CreatedAt,
	}
}

func (r snapshotRow) snapshot() (storage.Snapshot, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("parsing snapshot id %q: %w", r.ID, err)
	}
	return storage.Snapshot{
		ID:        id,
		Label:     r.Label,
		Round:     r.Round,
		Winner:    r.Winner,
		Data:      r.Data,
		CreatedAt: r.CreatedAt,
	}, nil
}

// Store is a SnapshotStore backed by a SQLite database.
type Store struct {
	db *gorm.DB
}

// Open opens or creates the database at path and migrates its schema.
//
// Precondition: path must be non-empty.
// Postcondition: Returns a ready Store or a non-nil error.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: empty database path")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %q: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}
	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		return nil, fmt.Errorf("migrating battle_snapshots: %w", err)
	}
	return &Store{db: db}, nil
}

// Save implements storage.SnapshotStore.
func (s *Store) Save(ctx context.Context, snap storage.Snapshot) (storage.Snapshot, error) {
	snap = storage.Prepare(snap, time.Now())
	row := toRow(snap)
	if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
		return storage.Snapshot{}, fmt.Errorf("saving snapshot %s: %w", snap.ID, err)
	}
	return snap, nil
}

// Load implements storage.SnapshotStore.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (storage.Snapshot, error) {
	var row snapshotRow
	err := s.db.WithContext(ctx).Where("id = ?", id.String()).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.Snapshot{}, storage.ErrSnapshotNotFound
	}
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("querying snapshot %s: %w", id, err)
	}
	return row.snapshot()
}

// List implements storage.SnapshotStore.
func (s *Store) List(ctx context.Context, limit int) ([]storage.Snapshot, error) {
	q := s.db.WithContext(ctx).
		Select("id", "label", "round", "winner", "created_at").
		Order("created_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []snapshotRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	out := make([]storage.Snapshot, 0, len(rows))
	for _, r := range rows {
		snap, err := r.snapshot()
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// Delete implements storage.SnapshotStore.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&snapshotRow{})
	if res.Error != nil {
		return fmt.Errorf("deleting snapshot %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrSnapshotNotFound
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
