// Package cache stores answers to questions that were asked without history.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "invoicechat:answer:"

// AnswerCache looks up and stores answers by question. Get reports a miss
// with ok == false and a nil error.
type AnswerCache interface {
	Get(ctx context.Context, question string) (answer string, ok bool, err error)
	Set(ctx context.Context, question, answer string) error
	Close() error
}

// Key derives the storage key for a question. Surrounding or repeated
// whitespace does not change the key; case does, since invoice identifiers
// are case sensitive.
func Key(question string) string {
	normalized := strings.Join(strings.Fields(question), " ")
	sum := sha256.Sum256([]byte(normalized))
	return keyPrefix + hex.EncodeToString(sum[:])
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to redisURL and verifies the connection.
func NewRedisCache(redisURL string, ttl time.Duration) (AnswerCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return &redisCache{client: client, ttl: ttl}, nil
}

func (c *redisCache) Get(ctx context.Context, question string) (string, bool, error) {
	answer, err := c.client.Get(ctx, Key(question)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return answer, true, nil
}

func (c *redisCache) Set(ctx context.Context, question, answer string) error {
	if err := c.client.Set(ctx, Key(question), answer, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

// Noop never stores anything. Used when no Redis URL is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Noop) Set(context.Context, string, string) error         { return nil }
func (Noop) Close() error                                      { return nil }
