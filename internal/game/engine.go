// apps/go-server/internal/game/engine.go
//
// Room state machine.
// Responsibilities:
//   - Create rooms with a fresh join code in the waiting state.
//   - Apply join / leave / start / submit to an in-memory Room value.
//   - Keep the lifecycle monotonic and the submission map consistent with
//     the player list.
//
// Notes:
//   - Every method here is pure state manipulation; persistence and locking
//     belong to the store and rooms packages.
//   - Player identity is the folded name (words.Fold); display names keep
//     the case the player first joined with.
package game

import (
	"crypto/rand"
	"time"

	"github.com/robalobadob/boggle/apps/go-server/internal/words"
)

const (
	// RoomIDAlphabet omits look-alike characters (0/O, 1/I).
	RoomIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// RoomIDLength is the number of symbols in a join code.
	RoomIDLength = 6
)

// NewRoom constructs a waiting room owned by player.
func NewRoom(id, player string, boardCode int, now time.Time) *Room {
	return &Room{
		ID:          id,
		BoardCode:   boardCode,
		Players:     []string{player},
		Status:      StatusWaiting,
		Submissions: map[string][]string{},
		CreatedAt:   now,
	}
}

// Clone returns a deep copy so callers can mutate without aliasing store state.
func (r *Room) Clone() *Room {
	c := *r
	c.Players = append([]string(nil), r.Players...)
	c.Submissions = make(map[string][]string, len(r.Submissions))
	for k, v := range r.Submissions {
		c.Submissions[k] = append([]string(nil), v...)
	}
	return &c
}

// indexOf returns the position of name in Players by folded key, or -1.
func (r *Room) indexOf(name string) int {
	key := words.Fold(name)
	for i, p := range r.Players {
		if words.Fold(p) == key {
			return i
		}
	}
	return -1
}

// HasPlayer reports whether name (folded) is in the room.
func (r *Room) HasPlayer(name string) bool { return r.indexOf(name) >= 0 }

// Join appends name unless the room has left the waiting state.
// Re-joining under an existing name is a no-op; changed reports whether
// the player list was modified.
func (r *Room) Join(name string) (changed bool, err error) {
	if r.Status != StatusWaiting {
		return false, Conflict("Game already started")
	}
	if r.HasPlayer(name) {
		return false, nil
	}
	r.Players = append(r.Players, name)
	return true, nil
}

// Leave removes name and any submission it made.
// If the room is playing and everyone left has submitted, it finishes.
func (r *Room) Leave(name string) (changed bool) {
	i := r.indexOf(name)
	if i < 0 {
		return false
	}
	r.Players = append(r.Players[:i:i], r.Players[i+1:]...)
	delete(r.Submissions, words.Fold(name))
	if r.Status == StatusPlaying && len(r.Players) > 0 && r.AllSubmitted() {
		r.advance(StatusFinished)
	}
	return true
}

// Empty reports whether the last player has left.
func (r *Room) Empty() bool { return len(r.Players) == 0 }

// Start moves the room to playing with the countdown ending at at.
// Restarting a playing room resets the countdown (last caller wins).
// A finished room is left untouched and Start reports false.
func (r *Room) Start(at time.Time) (changed bool) {
	if r.Status == StatusFinished {
		return false
	}
	r.advance(StatusPlaying)
	r.StartTime = at
	return true
}

// Submit stores (overwrites) the word list for name and finishes the room
// when every player has an entry. A waiting room takes no submissions.
func (r *Room) Submit(name string, list []string) error {
	if !r.HasPlayer(name) {
		return Conflict("Player not in room")
	}
	if r.Status == StatusWaiting {
		return Conflict("Game not started")
	}
	if list == nil {
		list = []string{}
	}
	if r.Submissions == nil {
		r.Submissions = map[string][]string{}
	}
	r.Submissions[words.Fold(name)] = list
	if r.AllSubmitted() {
		r.advance(StatusFinished)
	}
	return nil
}

// AllSubmitted reports whether every player has a submission entry.
func (r *Room) AllSubmitted() bool {
	for _, p := range r.Players {
		if _, ok := r.Submissions[words.Fold(p)]; !ok {
			return false
		}
	}
	return true
}

// SubmittedPlayers lists, in join order, the display names with a submission.
func (r *Room) SubmittedPlayers() []string {
	out := []string{}
	for _, p := range r.Players {
		if _, ok := r.Submissions[words.Fold(p)]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Expired reports whether the room was created more than ttl before now.
func (r *Room) Expired(now time.Time, ttl time.Duration) bool {
	return r.CreatedAt.Before(now.Add(-ttl))
}

// advance moves Status forward; it never regresses.
func (r *Room) advance(to Status) {
	if to.rank() > r.Status.rank() {
		r.Status = to
	}
}

// NewRoomID returns a RoomIDLength code drawn from RoomIDAlphabet.
// Uniqueness is the caller's concern (see store.ErrExists).
func NewRoomID() (string, error) {
	var b [RoomIDLength]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	// 256 is a multiple of len(RoomIDAlphabet), so the modulo is unbiased.
	for i := range b {
		b[i] = RoomIDAlphabet[int(b[i])%len(RoomIDAlphabet)]
	}
	return string(b[:]), nil
}
