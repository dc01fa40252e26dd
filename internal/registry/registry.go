// internal/registry/registry.go
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Registry is the external bookkeeping of which rooms are live. Rooms register on spin-up and
// deregister on idle shutdown; a lobby or load balancer reads the list.
type Registry interface {
	RegisterRoom(ctx context.Context, name string) error
	DeregisterRoom(ctx context.Context, name string) error
	Rooms(ctx context.Context) ([]Entry, error)
	Close() error
}

// Entry is one registered room.
type Entry struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Options selects and configures a backend.
type Options struct {
	// Mode is one of memory, postgres, redis or sqlite.
	Mode string

	DatabaseURL string

	RedisAddr     string
	RedisDB       int
	RedisRoomsKey string

	SQLitePath string
}

// New opens the backend named by opts.Mode and returns it with its resolved mode name.
func New(ctx context.Context, opts Options, logger logrus.FieldLogger) (Registry, string, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	switch mode {
	case "", "memory":
		return NewMemory(), "memory", nil
	case "postgres", "pg":
		reg, err := NewPostgres(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, "", fmt.Errorf("postgres registry: %w", err)
		}
		logger.Info("room registry backed by postgres")
		return reg, "postgres", nil
	case "redis":
		reg, err := NewRedis(ctx, opts.RedisAddr, opts.RedisDB, opts.RedisRoomsKey)
		if err != nil {
			return nil, "", fmt.Errorf("redis registry: %w", err)
		}
		logger.Infof("room registry backed by redis at %s", opts.RedisAddr)
		return reg, "redis", nil
	case "sqlite", "local":
		reg, err := NewSQLite(ctx, opts.SQLitePath)
		if err != nil {
			return nil, "", fmt.Errorf("sqlite registry: %w", err)
		}
		logger.Infof("room registry backed by sqlite at %s", opts.SQLitePath)
		return reg, "sqlite", nil
	}
	return nil, "", fmt.Errorf("unknown registry mode %q", opts.Mode)
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("empty room name")
	}
	return nil
}
