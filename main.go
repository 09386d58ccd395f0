package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/boggle/apps/go-server/internal/config"
	"github.com/robalobadob/boggle/apps/go-server/internal/daily"
	"github.com/robalobadob/boggle/apps/go-server/internal/httpserver"
	"github.com/robalobadob/boggle/apps/go-server/internal/rooms"
	"github.com/robalobadob/boggle/apps/go-server/internal/sqlitedb"
	"github.com/robalobadob/boggle/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Daily scores always live in SQLite; rooms go wherever STORE_BACKEND says.
	db, err := sqlitedb.OpenMigrated(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("open database")
	}
	defer db.Close()

	st, closeStore, err := openStore(ctx, cfg, db)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("open room store")
	}
	defer closeStore()

	svc := rooms.New(st, rooms.Options{TTL: cfg.RoomTTL, Countdown: cfg.Countdown})
	go rooms.NewReaper(svc, cfg.ReaperInterval).Run(ctx)

	srv := httpserver.New(svc, daily.NewStore(db), httpserver.Options{
		ClientOrigin:   cfg.ClientOrigin,
		DailySalt:      cfg.DailySalt,
		DailyBoards:    cfg.DailyBoards,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	log.Info().
		Str("port", cfg.Port).
		Str("backend", cfg.StoreBackend).
		Dur("roomTTL", cfg.RoomTTL).
		Msg("starting go-server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openStore builds the room store selected by cfg.StoreBackend.
func openStore(ctx context.Context, cfg *config.Config, db *sql.DB) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryStore(), func() {}, nil
	case config.BackendSQLite:
		return store.NewSQLiteStore(db), func() {}, nil
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return store.NewRedisStore(client, cfg.RedisPrefix), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q (want memory, sqlite or redis)", cfg.StoreBackend)
}
