// apps/go-server/internal/httpserver/routes_exec.go
//
// Flat action dispatcher: GET|POST /exec?action=<name>&param=...
// Every REST endpoint is reachable here under its action name, so clients
// built against a single script URL keep working.

package httpserver

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
)

func (s *Server) mountExec(r chi.Router) {
	actions := map[string]action{
		// multiplayer
		"createRoom":  s.createRoom,
		"joinRoom":    s.joinRoom,
		"pollRoom":    s.pollRoom,
		"startRoom":   s.startRoom,
		"submitWords": s.submitWords,
		"getResults":  s.getResults,
		"leaveRoom":   s.leaveRoom,
		// daily
		"check":       s.dailyCheck,
		"save":        s.dailySave,
		"leaderboard": s.dailyLeaderboard,
		"dailyBoard":  s.dailyBoard,
	}
	h := handle(func(ctx context.Context, p params) (any, error) {
		a, ok := actions[p.get("action")]
		if !ok {
			return nil, game.InputMissing("Unknown action")
		}
		return a(ctx, p)
	})
	r.Get("/exec", h)
	r.Post("/exec", h)
}
