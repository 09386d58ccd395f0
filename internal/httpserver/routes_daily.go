// apps/go-server/internal/httpserver/routes_daily.go
//
// HTTP routes for the daily mode.
// Exposes four endpoints under /daily:
//   - GET  /daily/check       → has this player saved a score for the date?
//   - POST /daily/save        → save a score (once per player per date)
//   - GET  /daily/leaderboard → every score for the date, best first
//   - GET  /daily/board       → board-of-the-day code for the date
//
// Player names match case-insensitively. A blank date means today (UTC).
// The board code is deterministic in date + DAILY_SALT.

package httpserver

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/boggle/apps/go-server/internal/daily"
	"github.com/robalobadob/boggle/apps/go-server/internal/game"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Get("/check", handle(s.dailyCheck))
		r.Post("/save", handle(s.dailySave))
		r.Get("/leaderboard", handle(s.dailyLeaderboard))
		r.Get("/board", handle(s.dailyBoard))
	})
}

// dailyStore returns the store or an internal error when daily mode is off.
func (s *Server) dailyStore() (*daily.Store, error) {
	if s.daily == nil {
		return nil, game.Internal(nil, "Daily mode unavailable")
	}
	return s.daily, nil
}

// date resolves the "date" param, defaulting to today.
func (s *Server) date(p params) (string, error) {
	return daily.NormalizeDate(p.get("date"), s.opts.Now())
}

func (s *Server) dailyCheck(ctx context.Context, p params) (any, error) {
	st, err := s.dailyStore()
	if err != nil {
		return nil, err
	}
	date, err := s.date(p)
	if err != nil {
		return nil, err
	}
	return st.Check(ctx, p.get("player"), date)
}

func (s *Server) dailySave(ctx context.Context, p params) (any, error) {
	st, err := s.dailyStore()
	if err != nil {
		return nil, err
	}
	date, err := s.date(p)
	if err != nil {
		return nil, err
	}
	if p.get("player") == "" {
		return nil, game.InputMissing("Missing player or date")
	}
	score, err := p.intParam("score")
	if err != nil {
		return nil, err
	}
	found, err := p.intParam("words")
	if err != nil {
		return nil, err
	}
	return st.Save(ctx, date, daily.Entry{Player: p.get("player"), Score: score, Words: found})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date        string        `json:"date"`
	Leaderboard []daily.Entry `json:"leaderboard"`
}

func (s *Server) dailyLeaderboard(ctx context.Context, p params) (any, error) {
	st, err := s.dailyStore()
	if err != nil {
		return nil, err
	}
	date, err := s.date(p)
	if err != nil {
		return nil, err
	}
	rows, err := st.Leaderboard(ctx, date)
	if err != nil {
		return nil, err
	}
	return lbRes{Date: date, Leaderboard: rows}, nil
}

// boardRes is returned by /daily/board.
type boardRes struct {
	Date      string `json:"date"`
	BoardCode int    `json:"boardCode"`
}

func (s *Server) dailyBoard(_ context.Context, p params) (any, error) {
	date, err := s.date(p)
	if err != nil {
		return nil, err
	}
	return boardRes{Date: date, BoardCode: daily.BoardCode(date, s.opts.DailySalt, s.opts.DailyBoards)}, nil
}
