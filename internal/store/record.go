package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
)

// record is the logical row shape shared by the SQL and Redis backends:
// roomId, boardCode, playersJSON, status, wordsJSON, startTime, createdAt.
// Times are epoch milliseconds; a zero StartTime means "not started".
type record struct {
	RoomID      string
	BoardCode   int
	PlayersJSON string
	Status      string
	WordsJSON   string
	StartTime   int64
	CreatedAt   int64
	Version     int64
}

// toRecord serializes the typed room at the storage boundary.
func toRecord(r *game.Room) (record, error) {
	players, err := json.Marshal(nonNil(r.Players))
	if err != nil {
		return record{}, fmt.Errorf("encode players: %w", err)
	}
	subs := r.Submissions
	if subs == nil {
		subs = map[string][]string{}
	}
	wordsJSON, err := json.Marshal(subs)
	if err != nil {
		return record{}, fmt.Errorf("encode words: %w", err)
	}
	rec := record{
		RoomID:      r.ID,
		BoardCode:   r.BoardCode,
		PlayersJSON: string(players),
		Status:      string(r.Status),
		WordsJSON:   string(wordsJSON),
		CreatedAt:   r.CreatedAt.UnixMilli(),
		Version:     r.Version,
	}
	if !r.StartTime.IsZero() {
		rec.StartTime = r.StartTime.UnixMilli()
	}
	return rec, nil
}

// room deserializes a record into the typed room.
func (rec record) room() (*game.Room, error) {
	r := &game.Room{
		ID:        rec.RoomID,
		BoardCode: rec.BoardCode,
		Status:    game.Status(rec.Status),
		CreatedAt: time.UnixMilli(rec.CreatedAt),
		Version:   rec.Version,
	}
	if !r.Status.Valid() {
		return nil, fmt.Errorf("room %s: unknown status %q", rec.RoomID, rec.Status)
	}
	if err := json.Unmarshal([]byte(rec.PlayersJSON), &r.Players); err != nil {
		return nil, fmt.Errorf("room %s: decode players: %w", rec.RoomID, err)
	}
	r.Submissions = map[string][]string{}
	if rec.WordsJSON != "" {
		if err := json.Unmarshal([]byte(rec.WordsJSON), &r.Submissions); err != nil {
			return nil, fmt.Errorf("room %s: decode words: %w", rec.RoomID, err)
		}
		if r.Submissions == nil {
			r.Submissions = map[string][]string{}
		}
	}
	if rec.StartTime > 0 {
		r.StartTime = time.UnixMilli(rec.StartTime)
	}
	return r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
