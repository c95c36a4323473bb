package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/warband/internal/storage"
)

// SnapshotRepository provides battle snapshot persistence operations.
type SnapshotRepository struct {
	db *pgxpool.Pool
	// owned is closed by Close when the repository opened the pool itself.
	owned *Pool
}

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// NewOwnedSnapshotRepository creates a SnapshotRepository that closes p
// when the repository is closed.
func NewOwnedSnapshotRepository(p *Pool) *SnapshotRepository {
	return &SnapshotRepository{db: p.DB(), owned: p}
}

// Save inserts s or replaces the row with the same ID.
//
// Postcondition: Returns the stored snapshot with ID and CreatedAt set.
func (r *SnapshotRepository) Save(ctx context.Context, s storage.Snapshot) (storage.Snapshot, error) {
	s = storage.Prepare(s, time.Now())
	_, err := r.db.Exec(ctx,
		`INSERT INTO battle_snapshots (id, label, round, winner, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE
		 SET label = EXCLUDED.label, round = EXCLUDED.round, winner = EXCLUDED.winner,
		     data = EXCLUDED.data, created_at = EXCLUDED.created_at`,
		s.ID.String(), s.Label, s.Round, s.Winner, s.Data, s.CreatedAt,
	)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("saving snapshot %s: %w", s.ID, err)
	}
	return s, nil
}

// Load retrieves a snapshot by ID.
//
// Postcondition: Returns the snapshot or storage.ErrSnapshotNotFound.
func (r *SnapshotRepository) Load(ctx context.Context, id uuid.UUID) (storage.Snapshot, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, label, round, winner, data, created_at
		 FROM battle_snapshots WHERE id = $1`,
		id.String(),
	)
	s, err := scanSnapshot(row, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Snapshot{}, storage.ErrSnapshotNotFound
		}
		return storage.Snapshot{}, fmt.Errorf("querying snapshot %s: %w", id, err)
	}
	return s, nil
}

// List returns up to limit snapshots, newest first, without their data.
// A limit of zero or less returns every snapshot.
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]storage.Snapshot, error) {
	query := `SELECT id, label, round, winner, created_at
		FROM battle_snapshots ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []storage.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return out, nil
}

// Delete removes a snapshot by ID.
//
// Postcondition: Returns storage.ErrSnapshotNotFound if no row matched.
func (r *SnapshotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM battle_snapshots WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrSnapshotNotFound
	}
	return nil
}

// Close releases the pool when the repository owns it.
func (r *SnapshotRepository) Close() error {
	if r.owned != nil {
		r.owned.Close()
	}
	return nil
}

func scanSnapshot(row pgx.Row, withData bool) (storage.Snapshot, error) {
	var (
		s  storage.Snapshot
		id string
	)
	dest := []any{&id, &s.Label, &s.Round, &s.Winner}
	if withData {
		dest = append(dest, &s.Data)
	}
	dest = append(dest, &s.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return storage.Snapshot{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("parsing snapshot id %q: %w", id, err)
	}
	s.ID = parsed
	return s, nil
}
