// apps/go-server/internal/rooms/service.go
//
// Multiplayer room service.
// Responsibilities:
//   - Lifecycle operations: create / join / start / poll / leave.
//   - Word submissions and all-submitted detection.
//   - Results with cross-player duplicate suppression.
//   - Expiry of stale rooms (Cleanup, Reaper).
//
// Consistency:
//   Every mutation is a read-compute-write cycle run by mutate(). Cycles on
//   the same room id are serialized by an in-process keyed lock, and the write
//   itself is a version-checked store.Replace, so a second server process
//   sharing the backend cannot interleave a stale write. A version conflict
//   re-runs the cycle on fresh state a bounded number of times.

package rooms

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
	"github.com/robalobadob/boggle/apps/go-server/internal/store"
)

const (
	// DefaultTTL is how long a room lives before Cleanup removes it.
	DefaultTTL = time.Hour
	// DefaultCountdown is added to "now" when a room starts.
	DefaultCountdown = 5 * time.Second

	maxIDAttempts    = 10
	maxWriteAttempts = 5
)

// Options tunes a Service. Zero values select the defaults.
type Options struct {
	TTL       time.Duration
	Countdown time.Duration
	Now       func() time.Time
	NewID     func() (string, error)
}

// Service implements the room operations on top of a store.Store.
type Service struct {
	store     store.Store
	locks     *keyedMutex
	ttl       time.Duration
	countdown time.Duration
	now       func() time.Time
	newID     func() (string, error)
}

// New constructs a Service.
func New(st store.Store, opts Options) *Service {
	if st == nil {
		panic("store cannot be nil for rooms.Service")
	}
	s := &Service{
		store:     st,
		locks:     newKeyedMutex(),
		ttl:       opts.TTL,
		countdown: opts.Countdown,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if s.ttl <= 0 {
		s.ttl = DefaultTTL
	}
	if s.countdown <= 0 {
		s.countdown = DefaultCountdown
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = game.NewRoomID
	}
	return s
}

// outcome tells mutate what to do with the room after fn ran.
type outcome int

const (
	keep   outcome = iota // nothing changed, skip the write
	write                 // persist the room
	remove                // delete the room
)

// mutate runs fn against the current state of room id and persists the result.
// fn may be called more than once if another writer wins the version race;
// it must derive everything from the room it is given.
func (s *Service) mutate(ctx context.Context, id string, fn func(r *game.Room) (outcome, error)) (*game.Room, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		r, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, storeError(err, id)
		}
		next, err := fn(r)
		if err != nil {
			return nil, err
		}

		switch next {
		case keep:
			return r, nil
		case remove:
			err = s.store.Delete(ctx, id, r.Version)
		default:
			err = s.store.Replace(ctx, r)
		}
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, storeError(err, id)
		}
		log.Debug().Str("room", id).Int("attempt", attempt).Msg("version conflict, retrying")
	}
	log.Warn().Str("room", id).Msg("gave up after repeated version conflicts")
	return nil, game.Internal(store.ErrConflict, "Room is busy, try again")
}

// storeError maps store failures to kinded errors.
func storeError(err error, id string) error {
	if errors.Is(err, store.ErrNotFound) {
		return game.NotFound("Room not found")
	}
	log.Error().Err(err).Str("room", id).Msg("store failure")
	return game.Internal(err, "Storage failure")
}

// NormalizeRoomID trims and upper-cases a client supplied room code.
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// ParseBoardCode converts the flat boardCode parameter.
func ParseBoardCode(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, game.InputMissing("Missing player or boardCode")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, game.InputMissing("Invalid boardCode")
	}
	return n, nil
}

// ms converts a time to epoch milliseconds.
func ms(t time.Time) int64 { return t.UnixMilli() }
