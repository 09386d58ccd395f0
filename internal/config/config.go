// apps/go-server/internal/config/config.go
//
// Environment configuration. main loads .env (godotenv) before calling Load,
// so real env vars win over the file. Malformed numbers and durations fall
// back to the default with a warning rather than aborting startup.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Store backends accepted in STORE_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	Port     string
	LogLevel string

	StoreBackend string
	DatabasePath string
	RedisAddr    string
	RedisPrefix  string

	RoomTTL        time.Duration
	Countdown      time.Duration
	ReaperInterval time.Duration

	ClientOrigin string
	DailySalt    string
	DailyBoards  int

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "5175"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend: strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		DatabasePath: getEnv("DATABASE_PATH", "./data/app.db"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPrefix:  getEnv("REDIS_PREFIX", "boggle:"),

		RoomTTL:        getDuration("ROOM_TTL", time.Hour),
		Countdown:      getDuration("COUNTDOWN", 5*time.Second),
		ReaperInterval: getDuration("REAPER_INTERVAL", 5*time.Minute),

		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		DailyBoards:  getInt("DAILY_BOARDS", 1000),

		RateLimitRPS:   getFloat("RATE_LIMIT_RPS", 20),
		RateLimitBurst: getInt("RATE_LIMIT_BURST", 40),
	}
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Dur("default", fallback).Msg("bad duration, using default")
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Int("default", fallback).Msg("bad integer, using default")
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Float64("default", fallback).Msg("bad number, using default")
		return fallback
	}
	return f
}
