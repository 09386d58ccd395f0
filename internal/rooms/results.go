package rooms

import (
	"context"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
)

// GetResults scores the room as it stands. Players who have not submitted
// appear with empty lists and zero score; it is the caller's choice to wait
// for status "finished".
func (s *Service) GetResults(ctx context.Context, roomID string) (*game.Results, error) {
	roomID = NormalizeRoomID(roomID)
	if roomID == "" {
		return nil, game.InputMissing("Missing roomId")
	}
	r, err := s.store.Get(ctx, roomID)
	if err != nil {
		return nil, storeError(err, roomID)
	}
	res := game.Tally(r)
	return &res, nil
}
