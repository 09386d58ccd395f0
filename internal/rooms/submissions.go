package rooms

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
	"github.com/robalobadob/boggle/apps/go-server/internal/words"
)

// SubmitResult is returned by SubmitWords.
type SubmitResult struct {
	Success      bool `json:"success"`
	AllSubmitted bool `json:"allSubmitted"`
	Submitted    int  `json:"submitted"`
	Total        int  `json:"total"`
}

// SubmitWords records player's comma-separated word list, replacing any
// earlier submission. The room finishes once every player has submitted.
// An empty list is a valid submission.
func (s *Service) SubmitWords(ctx context.Context, roomID, player, wordList string) (*SubmitResult, error) {
	roomID, player = NormalizeRoomID(roomID), strings.TrimSpace(player)
	if roomID == "" || player == "" {
		return nil, game.InputMissing("Missing roomId or player")
	}
	list := words.ParseList(wordList)

	r, err := s.mutate(ctx, roomID, func(r *game.Room) (outcome, error) {
		if err := r.Submit(player, list); err != nil {
			return keep, err
		}
		return write, nil
	})
	if err != nil {
		return nil, err
	}

	res := &SubmitResult{
		Success:      true,
		AllSubmitted: r.AllSubmitted(),
		Submitted:    len(r.SubmittedPlayers()),
		Total:        len(r.Players),
	}
	log.Debug().
		Str("room", roomID).
		Str("player", player).
		Int("words", len(list)).
		Int("submitted", res.Submitted).
		Int("total", res.Total).
		Msg("words submitted")
	if r.Status == game.StatusFinished && res.AllSubmitted {
		log.Info().Str("room", roomID).Msg("all players submitted")
	}
	return res, nil
}
