// apps/go-server/internal/store/sqlite.go
//
// SQLite-backed Store.
// Each room is one row of the rooms table (see assets/migrations/001_rooms.sql)
// holding the seven logical fields plus a version column.
//
// Replace is a single conditional UPDATE (... WHERE room_id=? AND version=?)
// and Delete a conditional DELETE, so concurrent writers from several processes sharing the file cannot
// interleave partial updates: one wins, the others see ErrConflict.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
)

// SQLiteStore implements Store on a migrated *sql.DB.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps db; the caller owns its lifecycle.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectRoom = `SELECT room_id, board_code, players_json, status, words_json, start_time, created_at, version FROM rooms`

func scanRecord(sc interface{ Scan(...any) error }) (record, error) {
	var rec record
	err := sc.Scan(&rec.RoomID, &rec.BoardCode, &rec.PlayersJSON, &rec.Status,
		&rec.WordsJSON, &rec.StartTime, &rec.CreatedAt, &rec.Version)
	return rec, err
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*game.Room, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectRoom+` WHERE room_id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select room %s: %w", id, err)
	}
	return rec.room()
}

func (s *SQLiteStore) Create(ctx context.Context, r *game.Room) error {
	rec, err := toRecord(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO rooms (room_id, board_code, players_json, status, words_json, start_time, created_at, version)
        VALUES (?, ?, ?, ?, ?, ?, ?, 1)`,
		rec.RoomID, rec.BoardCode, rec.PlayersJSON, rec.Status, rec.WordsJSON, rec.StartTime, rec.CreatedAt,
	)
	if isUniqueViolation(err) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("insert room %s: %w", r.ID, err)
	}
	r.Version = 1
	return nil
}

func (s *SQLiteStore) Replace(ctx context.Context, r *game.Room) error {
	rec, err := toRecord(r)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
        UPDATE rooms
        SET board_code=?, players_json=?, status=?, words_json=?, start_time=?, created_at=?, version=version+1
        WHERE room_id=? AND version=?`,
		rec.BoardCode, rec.PlayersJSON, rec.Status, rec.WordsJSON, rec.StartTime, rec.CreatedAt,
		rec.RoomID, rec.Version,
	)
	if err != nil {
		return fmt.Errorf("update room %s: %w", r.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update room %s: %w", r.ID, err)
	}
	if n == 0 {
		return s.missOrConflict(ctx, r.ID)
	}
	r.Version++
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string, version int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE room_id=? AND version=?`, id, version)
	if err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	if n == 0 {
		return s.missOrConflict(ctx, id)
	}
	return nil
}

// missOrConflict explains why a version-guarded statement matched no row.
func (s *SQLiteStore) missOrConflict(ctx context.Context, id string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM rooms WHERE room_id=?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check room %s: %w", id, err)
	}
	return ErrConflict
}

func (s *SQLiteStore) Scan(ctx context.Context) ([]*game.Room, error) {
	rows, err := s.db.QueryContext(ctx, selectRoom+` ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("scan rooms: %w", err)
	}
	defer rows.Close()

	var out []*game.Room
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		r, err := rec.room()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// isUniqueViolation reports whether err is a SQLite PRIMARY KEY / UNIQUE failure.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
