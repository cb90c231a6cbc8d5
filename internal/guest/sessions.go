package guest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when an anonymous id has no live mapping.
var ErrSessionNotFound = errors.New("guest session not found")

// Sessions maps opaque anonymous ids to guest principal ids.
type Sessions interface {
	Lookup(ctx context.Context, anonID string) (string, error)
	Put(ctx context.Context, anonID, principalID string) error
	Forget(ctx context.Context, anonID string) error
}

// RedisSessions stores anonymous-id mappings as plain keys with a sliding TTL.
type RedisSessions struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisSessions creates a Redis-backed store. An empty prefix defaults to "guest:anon:".
func NewRedisSessions(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisSessions {
	if prefix == "" {
		prefix = "guest:anon:"
	}
	return &RedisSessions{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisSessions) key(anonID string) string { return s.prefix + anonID }

// Lookup resolves anonID and extends its TTL.
func (s *RedisSessions) Lookup(ctx context.Context, anonID string) (string, error) {
	if anonID == "" {
		return "", ErrSessionNotFound
	}
	key := s.key(anonID)
	principalID, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis expire: %w", err)
	}
	return principalID, nil
}

func (s *RedisSessions) Put(ctx context.Context, anonID, principalID string) error {
	if anonID == "" || principalID == "" {
		return errors.New("guest session: empty id")
	}
	if err := s.client.Set(ctx, s.key(anonID), principalID, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisSessions) Forget(ctx context.Context, anonID string) error {
	if anonID == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(anonID)).Err()
}
