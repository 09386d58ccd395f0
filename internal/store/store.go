// apps/go-server/internal/store/store.go
//
// Persistence contract for room records.
//
// Every backend (memory, SQLite, Redis) satisfies the same rules:
//   - Operations touch exactly one record; there are no multi-record transactions.
//   - Replace and Delete are guarded by the record's Version (compare-and-swap).
//     A stale Version yields ErrConflict and leaves the record untouched.
//   - Rooms handed out by Get/Scan are copies; mutating them never changes
//     stored state until Replace succeeds.

package store

import (
	"context"
	"errors"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
)

var (
	// ErrNotFound is returned when no record exists for an id.
	ErrNotFound = errors.New("store: room not found")
	// ErrExists is returned by Create when the id is already taken.
	ErrExists = errors.New("store: room id already exists")
	// ErrConflict is returned by Replace and Delete when the stored version moved on.
	ErrConflict = errors.New("store: version conflict")
)

// Store defines the persistence interface for rooms.
type Store interface {
	// Get retrieves a room by ID or returns ErrNotFound.
	Get(ctx context.Context, id string) (*game.Room, error)

	// Create inserts a new room and sets its Version to 1.
	// Returns ErrExists if the ID is taken.
	Create(ctx context.Context, r *game.Room) error

	// Replace overwrites the stored room if its version still equals r.Version,
	// then bumps r.Version. Returns ErrNotFound or ErrConflict.
	Replace(ctx context.Context, r *game.Room) error

	// Delete removes a room if its stored version still equals version.
	// Returns ErrNotFound or ErrConflict.
	Delete(ctx context.Context, id string, version int64) error

	// Scan returns every stored room.
	Scan(ctx context.Context) ([]*game.Room, error)
}
