package rooms

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
	"github.com/robalobadob/boggle/apps/go-server/internal/store"
)

// CreateResult is returned by CreateRoom.
type CreateResult struct {
	RoomID    string `json:"roomId"`
	BoardCode int    `json:"boardCode"`
}

// JoinResult is returned by JoinRoom.
type JoinResult struct {
	Success   bool     `json:"success"`
	Players   []string `json:"players"`
	BoardCode int      `json:"boardCode"`
}

// StartResult is returned by StartRoom. StartTime is epoch milliseconds.
type StartResult struct {
	Success   bool  `json:"success"`
	StartTime int64 `json:"startTime"`
}

// PollResult is the read-only room view clients poll.
type PollResult struct {
	Players          []string    `json:"players"`
	Status           game.Status `json:"status"`
	StartTime        *int64      `json:"startTime"` // null until started
	PlayersSubmitted []string    `json:"playersSubmitted"`
}

// LeaveResult is returned by LeaveRoom.
type LeaveResult struct {
	Success bool `json:"success"`
}

// CreateRoom opens a waiting room for player on boardCode.
// Expired rooms are reaped first; a reaper failure is logged, not returned.
func (s *Service) CreateRoom(ctx context.Context, player string, boardCode int) (*CreateResult, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return nil, game.InputMissing("Missing player or boardCode")
	}

	if _, err := s.Cleanup(ctx); err != nil {
		log.Warn().Err(err).Msg("cleanup before create")
	}

	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id, err := s.newID()
		if err != nil {
			return nil, game.Internal(err, "Could not allocate a room code")
		}
		r := game.NewRoom(id, player, boardCode, s.now())
		err = s.store.Create(ctx, r)
		if err == nil {
			log.Info().Str("room", id).Str("player", player).Int("board", boardCode).Msg("room created")
			return &CreateResult{RoomID: id, BoardCode: boardCode}, nil
		}
		if !errors.Is(err, store.ErrExists) {
			return nil, storeError(err, id)
		}
		log.Warn().Str("room", id).Int("attempt", attempt).Msg("room code collision, retrying")
	}
	return nil, game.Internal(store.ErrExists, "Could not allocate a room code")
}

// JoinRoom adds player to a waiting room. Joining twice under the same
// (case-insensitive) name changes nothing.
func (s *Service) JoinRoom(ctx context.Context, roomID, player string) (*JoinResult, error) {
	roomID, player = NormalizeRoomID(roomID), strings.TrimSpace(player)
	if roomID == "" || player == "" {
		return nil, game.InputMissing("Missing roomId or player")
	}

	r, err := s.mutate(ctx, roomID, func(r *game.Room) (outcome, error) {
		changed, err := r.Join(player)
		if err != nil || !changed {
			return keep, err
		}
		return write, nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Str("room", roomID).Str("player", player).Int("players", len(r.Players)).Msg("joined")
	return &JoinResult{Success: true, Players: r.Players, BoardCode: r.BoardCode}, nil
}

// StartRoom sets the room playing with a countdown ending Countdown from now.
// Calling it again restarts the countdown; on a finished room it reports the
// recorded start time without changing anything.
func (s *Service) StartRoom(ctx context.Context, roomID string) (*StartResult, error) {
	roomID = NormalizeRoomID(roomID)
	if roomID == "" {
		return nil, game.InputMissing("Missing roomId")
	}

	at := s.now().Add(s.countdown)
	r, err := s.mutate(ctx, roomID, func(r *game.Room) (outcome, error) {
		if !r.Start(at) {
			return keep, nil
		}
		return write, nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("room", roomID).Time("startTime", r.StartTime).Msg("room started")
	return &StartResult{Success: true, StartTime: ms(r.StartTime)}, nil
}

// PollRoom returns the current room view. It never writes.
func (s *Service) PollRoom(ctx context.Context, roomID string) (*PollResult, error) {
	roomID = NormalizeRoomID(roomID)
	if roomID == "" {
		return nil, game.InputMissing("Missing roomId")
	}
	r, err := s.store.Get(ctx, roomID)
	if err != nil {
		return nil, storeError(err, roomID)
	}

	res := &PollResult{
		Players:          r.Players,
		Status:           r.Status,
		PlayersSubmitted: r.SubmittedPlayers(),
	}
	if !r.StartTime.IsZero() {
		st := ms(r.StartTime)
		res.StartTime = &st
	}
	return res, nil
}

// LeaveRoom removes player. The last player out deletes the room, and
// leaving a room that no longer exists succeeds.
func (s *Service) LeaveRoom(ctx context.Context, roomID, player string) (*LeaveResult, error) {
	roomID, player = NormalizeRoomID(roomID), strings.TrimSpace(player)
	if roomID == "" || player == "" {
		return nil, game.InputMissing("Missing roomId or player")
	}

	deleted := false
	_, err := s.mutate(ctx, roomID, func(r *game.Room) (outcome, error) {
		if !r.Leave(player) {
			return keep, nil
		}
		if r.Empty() {
			deleted = true
			return remove, nil
		}
		return write, nil
	})
	if errors.Is(err, game.ErrNotFound) {
		return &LeaveResult{Success: true}, nil
	}
	if err != nil {
		return nil, err
	}
	if deleted {
		log.Info().Str("room", roomID).Msg("last player left, room deleted")
	}
	return &LeaveResult{Success: true}, nil
}
