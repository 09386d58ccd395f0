// apps/go-server/internal/game/types.go
//
// Core type definitions for multiplayer rooms.
// Defines:
//   - Status: lifecycle state of a room (waiting → playing → finished).
//   - Room: the full record for a single session.
//   - PlayerResult / Results: the scored view returned once words are in.

package game

import "time"

// Status represents where a room is in its lifecycle.
// Transitions are monotonic: waiting → playing → finished.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// rank orders statuses so transitions can be checked for regressions.
func (s Status) rank() int {
	switch s {
	case StatusWaiting:
		return 0
	case StatusPlaying:
		return 1
	case StatusFinished:
		return 2
	}
	return -1
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool { return s.rank() >= 0 }

// Room holds the state of one multiplayer session.
type Room struct {
	ID          string              // Opaque join code (see NewRoomID).
	BoardCode   int                 // Puzzle layout shared by every player; immutable.
	Players     []string            // Display names in join order, unique by folded key.
	Status      Status              // Lifecycle state.
	Submissions map[string][]string // Folded player name → folded words.
	StartTime   time.Time           // Countdown target; zero until the room is started.
	CreatedAt   time.Time           // Set at creation; only used for expiry.
	Version     int64               // Optimistic concurrency stamp maintained by the store.
}

// PlayerResult is one row of the results view.
type PlayerResult struct {
	Name        string   `json:"name"`
	Words       []string `json:"words"`
	UniqueWords []string `json:"uniqueWords"`
	Score       int      `json:"score"`
}

// Results is the scored view of a room.
type Results struct {
	Players    []PlayerResult `json:"players"`
	Duplicates []string       `json:"duplicates"`
	Status     Status         `json:"status"`
}
