// apps/go-server/internal/store/redis.go
//
// Redis-backed Store for deployments that run several server processes
// against one shared room table.
//
// Layout: one hash per room at "<prefix>room:<id>" whose fields are the
// seven logical columns plus "version".
//
// Writes use optimistic locking: WATCH the room key, check the version, and
// replace every field (or DEL the key) in one MULTI/EXEC. If another client touches the key in
// between, EXEC aborts (redis.TxFailedErr) and the write reports ErrConflict.

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
)

// RedisStore implements Store on a go-redis client.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a RedisStore. An empty prefix defaults to "boggle:".
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	if client == nil {
		panic("redis client cannot be nil for RedisStore")
	}
	if keyPrefix == "" {
		keyPrefix = "boggle:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

// --- key helpers ---

func (s *RedisStore) roomKey(id string) string {
	return s.keyPrefix + "room:" + id
}

// --- field codec ---

func recordFields(rec record) map[string]interface{} {
	return map[string]interface{}{
		"roomId":    rec.RoomID,
		"boardCode": rec.BoardCode,
		"players":   rec.PlayersJSON,
		"status":    rec.Status,
		"words":     rec.WordsJSON,
		"startTime": rec.StartTime,
		"createdAt": rec.CreatedAt,
		"version":   rec.Version,
	}
}

func parseFields(m map[string]string) (record, error) {
	rec := record{
		RoomID:      m["roomId"],
		PlayersJSON: m["players"],
		Status:      m["status"],
		WordsJSON:   m["words"],
	}
	var err error
	if rec.BoardCode, err = strconv.Atoi(m["boardCode"]); err != nil {
		return rec, fmt.Errorf("room %s: boardCode: %w", rec.RoomID, err)
	}
	for name, dst := range map[string]*int64{
		"startTime": &rec.StartTime,
		"createdAt": &rec.CreatedAt,
		"version":   &rec.Version,
	} {
		v := m[name]
		if v == "" {
			continue
		}
		if *dst, err = strconv.ParseInt(v, 10, 64); err != nil {
			return rec, fmt.Errorf("room %s: %s: %w", rec.RoomID, name, err)
		}
	}
	return rec, nil
}

// --- Store implementation ---

func (s *RedisStore) Get(ctx context.Context, id string) (*game.Room, error) {
	return s.get(ctx, s.client, id)
}

// get reads a room through any command issuer (client or WATCH transaction).
func (s *RedisStore) get(ctx context.Context, c redis.Cmdable, id string) (*game.Room, error) {
	key := s.roomKey(id)
	m, err := c.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: get room %s from %s: %w", id, key, err)
	}
	if len(m) == 0 {
		return nil, ErrNotFound
	}
	rec, err := parseFields(m)
	if err != nil {
		return nil, err
	}
	return rec.room()
}

func (s *RedisStore) Create(ctx context.Context, r *game.Room) error {
	key := s.roomKey(r.ID)
	rec, err := toRecord(r)
	if err != nil {
		return err
	}
	rec.Version = 1

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrExists
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, recordFields(rec))
			return nil
		})
		return err
	}, key)

	switch {
	case errors.Is(err, ErrExists), errors.Is(err, redis.TxFailedErr):
		return ErrExists
	case err != nil:
		return fmt.Errorf("redis: create room %s: %w", r.ID, err)
	}
	r.Version = 1
	return nil
}

func (s *RedisStore) Replace(ctx context.Context, r *game.Room) error {
	key := s.roomKey(r.ID)
	rec, err := toRecord(r)
	if err != nil {
		return err
	}
	rec.Version = r.Version + 1

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		v, err := tx.HGet(ctx, key, "version").Int64()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if v != r.Version {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, recordFields(rec))
			return nil
		})
		return err
	}, key)

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	case err != nil:
		return fmt.Errorf("redis: replace room %s: %w", r.ID, err)
	}
	r.Version = rec.Version
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string, version int64) error {
	key := s.roomKey(id)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		v, err := tx.HGet(ctx, key, "version").Int64()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if v != version {
			return ErrConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, redis.TxFailedErr):
		return ErrConflict
	case err != nil:
		return fmt.Errorf("redis: delete room %s: %w", id, err)
	}
	return nil
}

// escapeGlob quotes the SCAN MATCH metacharacters in s.
func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func (s *RedisStore) Scan(ctx context.Context) ([]*game.Room, error) {
	var out []*game.Room
	iter := s.client.Scan(ctx, 0, escapeGlob(s.roomKey(""))+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		id := key[len(s.roomKey("")):]
		r, err := s.get(ctx, s.client, id)
		if errors.Is(err, ErrNotFound) {
			continue // deleted between SCAN and HGETALL
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis: scan rooms: %w", err)
	}
	return out, nil
}
