// Package storage defines battle snapshot persistence shared by every backend.
package storage

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSnapshotNotFound is returned when a snapshot lookup yields no results.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is an encoded battle state plus the metadata needed to list it.
type Snapshot struct {
	ID uuid.UUID
	// Label names the scenario the battle came from.
	Label  string
	Round  int
	Winner string
	// Data is the output of battle.Arena.Snapshot.
	Data      []byte
	CreatedAt time.Time
}

// NewSnapshot returns a snapshot with a fresh random identifier.
func NewSnapshot(label string, round int, winner string, data []byte) Snapshot {
	return Snapshot{
		ID:     uuid.New(),
		Label:  label,
		Round:  round,
		Winner: winner,
		Data:   data,
	}
}

// SnapshotStore persists battle snapshots.
type SnapshotStore interface {
	// Save inserts or replaces s. A nil ID is replaced by a fresh one and a
	// zero CreatedAt by the current time.
	//
	// Postcondition: Returns the stored snapshot.
	Save(ctx context.Context, s Snapshot) (Snapshot, error)
	// Load returns the snapshot with id, or ErrSnapshotNotFound.
	Load(ctx context.Context, id uuid.UUID) (Snapshot, error)
	// List returns up to limit snapshots, newest first, without their data.
	List(ctx context.Context, limit int) ([]Snapshot, error)
	// Delete removes the snapshot with id, or returns ErrSnapshotNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
	Close() error
}

// Prepare fills the identifier and creation time of s when unset.
func Prepare(s Snapshot, now time.Time) Snapshot {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now.UTC()
	}
	return s
}

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]Snapshot
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[uuid.UUID]Snapshot)}
}

// Save implements SnapshotStore.
func (m *MemoryStore) Save(_ context.Context, s Snapshot) (Snapshot, error) {
	s = Prepare(s, time.Now())
	s.Data = append([]byte(nil), s.Data...)
	m.mu.Lock()
	m.snapshots[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Load implements SnapshotStore.
func (m *MemoryStore) Load(_ context.Context, id uuid.UUID) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.snapshots[id]
	if !ok {
		return Snapshot{}, ErrSnapshotNotFound
	}
	s.Data = append([]byte(nil), s.Data...)
	return s, nil
}

// List implements SnapshotStore.
func (m *MemoryStore) List(_ context.Context, limit int) ([]Snapshot, error) {
	m.mu.RLock()
	out := make([]Snapshot, 0, len(m.snapshots))
	for _, s := range m.snapshots {
		s.Data = nil
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete implements SnapshotStore.
func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snapshots[id]; !ok {
		return ErrSnapshotNotFound
	}
	delete(m.snapshots, id)
	return nil
}

// Close implements SnapshotStore.
func (m *MemoryStore) Close() error { return nil }
