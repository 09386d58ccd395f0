// apps/go-server/internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is the default backend for a single server process where rooms only
// need to live as long as the process does.
//
// Characteristics:
//   - Stores *game.Room copies keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Replace and Delete are compare-and-swap on Room.Version.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
)

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex          // guards rooms map
	rooms map[string]*game.Room // keyed by Room.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{rooms: make(map[string]*game.Room)}
}

// Get looks up a room by ID and returns a private copy.
func (m *memory) Get(ctx context.Context, id string) (*game.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rooms[id]; ok {
		return r.Clone(), nil
	}
	return nil, ErrNotFound
}

// Create adds a room if the ID is free.
func (m *memory) Create(ctx context.Context, r *game.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[r.ID]; ok {
		return ErrExists
	}
	r.Version = 1
	m.rooms[r.ID] = r.Clone()
	return nil
}

// Replace swaps in r if the stored version matches.
func (m *memory) Replace(ctx context.Context, r *game.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rooms[r.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != r.Version {
		return ErrConflict
	}
	r.Version++
	m.rooms[r.ID] = r.Clone()
	return nil
}

// Delete removes a room from the map if the stored version matches.
func (m *memory) Delete(ctx context.Context, id string, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rooms[id]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != version {
		return ErrConflict
	}
	delete(m.rooms, id)
	return nil
}

// Scan returns copies of every room.
func (m *memory) Scan(ctx context.Context) ([]*game.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*game.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r.Clone())
	}
	return out, nil
}
