// apps/go-server/internal/httpserver/routes_rooms.go
//
// HTTP routes for multiplayer rooms:
//   - POST /rooms                     → create a room
//   - GET  /rooms/{roomId}            → poll room state
//   - POST /rooms/{roomId}/join       → join (waiting rooms only)
//   - POST /rooms/{roomId}/start      → start the countdown
//   - POST /rooms/{roomId}/words      → submit a word list
//   - GET  /rooms/{roomId}/results    → scored results
//   - POST /rooms/{roomId}/leave      → leave (last one out deletes the room)

package httpserver

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/boggle/apps/go-server/internal/rooms"
)

func (s *Server) mountRooms(r chi.Router) {
	r.Post("/rooms", handle(s.createRoom))
	r.Route("/rooms/{roomId}", func(r chi.Router) {
		r.Get("/", handle(s.pollRoom))
		r.Post("/join", handle(s.joinRoom))
		r.Post("/start", handle(s.startRoom))
		r.Post("/words", handle(s.submitWords))
		r.Get("/results", handle(s.getResults))
		r.Post("/leave", handle(s.leaveRoom))
	})
}

func (s *Server) createRoom(ctx context.Context, p params) (any, error) {
	player := p.get("player")
	board, err := rooms.ParseBoardCode(p.get("boardCode"))
	if err != nil {
		return nil, err
	}
	return s.rooms.CreateRoom(ctx, player, board)
}

func (s *Server) joinRoom(ctx context.Context, p params) (any, error) {
	return s.rooms.JoinRoom(ctx, p.get("roomId"), p.get("player"))
}

func (s *Server) pollRoom(ctx context.Context, p params) (any, error) {
	return s.rooms.PollRoom(ctx, p.get("roomId"))
}

func (s *Server) startRoom(ctx context.Context, p params) (any, error) {
	return s.rooms.StartRoom(ctx, p.get("roomId"))
}

func (s *Server) submitWords(ctx context.Context, p params) (any, error) {
	return s.rooms.SubmitWords(ctx, p.get("roomId"), p.get("player"), p.get("words"))
}

func (s *Server) getResults(ctx context.Context, p params) (any, error) {
	return s.rooms.GetResults(ctx, p.get("roomId"))
}

func (s *Server) leaveRoom(ctx context.Context, p params) (any, error) {
	return s.rooms.LeaveRoom(ctx, p.get("roomId"), p.get("player"))
}
