package registry

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRoomsKey is the Redis set holding live room names.
const DefaultRoomsKey = "tabletop_rooms"

// Redis keeps room names in a set and their creation times in a companion hash.
type Redis struct {
	rdb      *redis.Client
	roomsKey string
}

// NewRedis connects to addr and pings it.
func NewRedis(ctx context.Context, addr string, db int, roomsKey string) (*Redis, error) {
	if roomsKey == "" {
		roomsKey = DefaultRoomsKey
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Redis{rdb: rdb, roomsKey: roomsKey}, nil
}

func (r *Redis) createdKey() string {
	return r.roomsKey + ":created"
}

func (r *Redis) RegisterRoom(ctx context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.roomsKey, name)
		pipe.HSet(ctx, r.createdKey(), name, time.Now().UTC().Unix())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to register room '%s' in '%s': %w", name, r.roomsKey, err)
	}
	return nil
}

func (r *Redis) DeregisterRoom(ctx context.Context, name string) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, r.roomsKey, name)
		pipe.HDel(ctx, r.createdKey(), name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to deregister room '%s' from '%s': %w", name, r.roomsKey, err)
	}
	return nil
}

func (r *Redis) Rooms(ctx context.Context) ([]Entry, error) {
	names, err := r.rdb.SMembers(ctx, r.roomsKey).Result()
	if err != nil {
		return nil, err
	}
	created, err := r.rdb.HGetAll(ctx, r.createdKey()).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		e := Entry{Name: name}
		if sec, err := strconv.ParseInt(created[name], 10, 64); err == nil {
			e.CreatedAt = time.Unix(sec, 0).UTC()
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
