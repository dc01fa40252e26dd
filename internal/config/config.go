// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/tabletop/internal/models"
	"github.com/jason-s-yu/tabletop/internal/registry"
	"github.com/jason-s-yu/tabletop/internal/room"
	"github.com/sirupsen/logrus"
)

// Config is everything the server reads from the environment at startup.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	Room     room.Settings
	Registry registry.Options

	TicketsRequired      bool
	TicketTTL            time.Duration
	TicketPrivateKeyPath string
	TicketPublicKeyPath  string

	// OriginPatterns is passed to websocket.Accept.
	OriginPatterns []string
}

// Load reads the environment. Unset or unparsable values fall back to their defaults.
func Load() *Config {
	defaults := room.DefaultSettings()

	opts := models.DefaultOptions()
	opts.LockedHands = getEnvBool("ROOM_LOCKED_HANDS", opts.LockedHands)
	opts.FlipWhenExitHand = getEnvBool("ROOM_FLIP_WHEN_EXIT_HAND", opts.FlipWhenExitHand)
	opts.ReturnHandOnLeave = getEnvBool("ROOM_RETURN_HAND_ON_LEAVE", opts.ReturnHandOnLeave)

	return &Config{
		Port:      getEnv("PORT", "8080"),
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		Room: room.Settings{
			MaxPlayers:       getEnvInt("ROOM_MAX_PLAYERS", defaults.MaxPlayers),
			TickRate:         getEnvDuration("TICK_RATE", defaults.TickRate),
			SlowTickMultiple: getEnvInt("SLOW_TICK_MULTIPLE", defaults.SlowTickMultiple),
			CheckInterval:    getEnvDuration("ROOM_CHECK_INTERVAL", defaults.CheckInterval),
			Timeout:          getEnvDuration("ROOM_TIMEOUT", defaults.Timeout),
			SnapDistance:     getEnvFloat("SNAP_DISTANCE", defaults.SnapDistance),
			Options:          opts,
		},

		Registry: registry.Options{
			Mode:          getEnv("REGISTRY_MODE", "memory"),
			DatabaseURL:   databaseURL(),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			RedisRoomsKey: getEnv("REDIS_ROOMS_KEY", registry.DefaultRoomsKey),
			SQLitePath:    getEnv("SQLITE_PATH", registry.DefaultSQLitePath),
		},

		TicketsRequired:      getEnvBool("TICKETS_REQUIRED", false),
		TicketTTL:            getEnvDuration("TICKET_TTL", 10*time.Minute),
		TicketPrivateKeyPath: os.Getenv("TICKET_PRIVATE_KEY"),
		TicketPublicKeyPath:  os.Getenv("TICKET_PUBLIC_KEY"),

		OriginPatterns: splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}
}

// CORSOrigins turns the websocket host patterns into origins for the plain HTTP endpoints.
func (c *Config) CORSOrigins() []string {
	var out []string
	for _, p := range c.OriginPatterns {
		if p == "*" {
			return []string{"*"}
		}
		if strings.Contains(p, "://") {
			out = append(out, p)
			continue
		}
		out = append(out, "http://"+p, "https://"+p)
	}
	return out
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// NewLogger builds the root logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	if strings.EqualFold(c.LogFormat, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the POSTGRES_*/PG_* variables.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		getEnv("PG_HOST", "localhost"),
		getEnv("PG_PORT", "5432"),
		os.Getenv("PG_DATABASE"),
	)
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// getEnvInt parses an environment variable as integer, else a default value.
func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvFloat(key string, def float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}

// getEnvDuration accepts Go durations ("50ms", "5m") or a bare number of milliseconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
