package daily

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
	"github.com/robalobadob/boggle/apps/go-server/internal/words"
)

// AlreadyPlayed is the message returned when a player saves twice for a date.
const AlreadyPlayed = "Already played today"

// Entry is one saved daily score.
type Entry struct {
	Player string `json:"player"`
	Score  int    `json:"score"`
	Words  int    `json:"words"`
}

// CheckResult reports whether a player has a score for a date.
type CheckResult struct {
	Played bool `json:"played"`
	Score  *int `json:"score,omitempty"`
	Words  *int `json:"words,omitempty"`
}

// SaveResult is returned by Save. A refused save is not an error.
type SaveResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Store persists daily scores in SQLite (table daily_scores).
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func required(player, date string) (string, string, error) {
	player, date = strings.TrimSpace(player), strings.TrimSpace(date)
	if player == "" || date == "" {
		return "", "", game.InputMissing("Missing player or date")
	}
	return player, date, nil
}

// Check looks up player's score for date. Player names match case-insensitively.
func (s *Store) Check(ctx context.Context, player, date string) (*CheckResult, error) {
	player, date, err := required(player, date)
	if err != nil {
		return nil, err
	}

	var score, found int
	err = s.db.QueryRowContext(ctx,
		`SELECT score, words FROM daily_scores WHERE player_key=? AND date=?`,
		words.Fold(player), date,
	).Scan(&score, &found)
	if errors.Is(err, sql.ErrNoRows) {
		return &CheckResult{Played: false}, nil
	}
	if err != nil {
		return nil, game.Internal(fmt.Errorf("daily: check %s: %w", date, err), "Storage failure")
	}
	return &CheckResult{Played: true, Score: &score, Words: &found}, nil
}

// Save records a score unless player already has one for date.
func (s *Store) Save(ctx context.Context, date string, e Entry) (*SaveResult, error) {
	player, date, err := required(e.Player, date)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO daily_scores(id, date, player, player_key, score, words)
		 VALUES(?,?,?,?,?,?)`,
		uuid.NewString(), date, player, words.Fold(player), e.Score, e.Words,
	)
	if isUnique(err) {
		return &SaveResult{Success: false, Message: AlreadyPlayed}, nil
	}
	if err != nil {
		return nil, game.Internal(fmt.Errorf("daily: save %s: %w", date, err), "Storage failure")
	}
	log.Info().Str("player", player).Str("date", date).Int("score", e.Score).Msg("daily score saved")
	return &SaveResult{Success: true}, nil
}

// Leaderboard returns every score for date, highest first; ties keep save order.
func (s *Store) Leaderboard(ctx context.Context, date string) ([]Entry, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, game.InputMissing("Missing date")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT player, score, words
		 FROM daily_scores
		 WHERE date=?
		 ORDER BY score DESC, rowid ASC`, date,
	)
	if err != nil {
		return nil, game.Internal(fmt.Errorf("daily: leaderboard %s: %w", date, err), "Storage failure")
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Player, &e.Score, &e.Words); err != nil {
			return nil, game.Internal(err, "Storage failure")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, game.Internal(err, "Storage failure")
	}
	return out, nil
}

func isUnique(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
			se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
