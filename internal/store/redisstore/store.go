package redisstore

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const userKeyPrefix = "imitator:user_id:"

// Store is a Redis-backed name -> user id cache.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *Store {
	return NewWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), ttl)
}

func NewWithClient(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func userKey(name string) string {
	return userKeyPrefix + name
}

func (s *Store) GetUserID(ctx context.Context, name string) (uint32, bool, error) {
	v, err := s.rdb.Get(ctx, userKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		// corrupt entry, treat as a miss
		return 0, false, nil
	}
	return uint32(id), true, nil
}

func (s *Store) SetUserID(ctx context.Context, name string, id uint32) error {
	return s.rdb.Set(ctx, userKey(name), strconv.FormatUint(uint64(id), 10), s.ttl).Err()
}
