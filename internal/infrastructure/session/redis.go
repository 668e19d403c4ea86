// Package session keeps the set of live access tokens in Redis.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"apikit/internal/core/apperror"
	"apikit/internal/domain/auth"
	"apikit/pkg/logger"
)

var (
	ErrEmptyConnectionURL = errors.New("session: empty redis connection URL")
	ErrFailedToParseURL   = errors.New("session: failed to parse redis URL")
	ErrConnectionFailed   = errors.New("session: failed to connect to redis")
	ErrHealthcheckFailed  = errors.New("session: redis healthcheck failed")
)

// Config holds Redis connection configuration.
type Config struct {
	URL           string
	PoolSize      int
	MinIdleConns  int
	RetryAttempts int
	RetryInterval time.Duration
	DialTimeout   time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(url string) Config {
	return Config{
		URL:           url,
		PoolSize:      10,
		MinIdleConns:  2,
		RetryAttempts: 3,
		RetryInterval: 2 * time.Second,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
	}
}

// Open creates a Redis client, retrying the initial ping with linear backoff.
// Supports both redis:// and rediss:// (TLS) URL schemes.
func Open(ctx context.Context, cfg Config) (redis.UniversalClient, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(cfg.URL, "redis://") && !strings.HasPrefix(cfg.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		logger.Warn(ctx, "redis not ready", "attempt", i+1, "error", lastErr)

		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

// Healthcheck returns a readiness probe for client.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrHealthcheckFailed
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

var _ auth.SessionStore = (*RedisStore)(nil)

// RedisStore stores one key per live token id, expiring with the token.
// Redis failures surface as internal failures.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a store; keys are "<prefix>:<token id>".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "auth:token"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(tokenID string) string {
	return s.prefix + ":" + tokenID
}

// Register marks tokenID as live for ttl.
func (s *RedisStore) Register(ctx context.Context, tokenID string, userID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(tokenID), strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return apperror.NewInternal(fmt.Errorf("register session: %w", err))
	}
	return nil
}

// Exists reports whether tokenID is still live.
func (s *RedisStore) Exists(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("lookup session: %w", err))
	}
	return n > 0, nil
}

// Revoke removes tokenID; revoking an unknown id is not an error.
func (s *RedisStore) Revoke(ctx context.Context, tokenID string) error {
	if err := s.client.Del(ctx, s.key(tokenID)).Err(); err != nil {
		return apperror.NewInternal(fmt.Errorf("revoke session: %w", err))
	}
	return nil
}
