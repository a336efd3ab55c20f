package transaction

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayKeyPrefix = "webhook:processed:"

// ReplayGuard remembers processed webhook event ids so redeliveries are acknowledged without
// being applied again.
type ReplayGuard interface {
	// Claim returns false when the event id was already claimed.
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type RedisReplayGuard struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisReplayGuard(client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *RedisReplayGuard {
	return &RedisReplayGuard{client: client, ttl: ttl, logger: logger}
}

func (g *RedisReplayGuard) Claim(ctx context.Context, eventID string) (bool, error) {
	return g.client.SetNX(ctx, replayKeyPrefix+eventID, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
}

func (g *RedisReplayGuard) Release(ctx context.Context, eventID string) error {
	return g.client.Del(ctx, replayKeyPrefix+eventID).Err()
}

// NoopReplayGuard is used when no Redis is configured; every delivery is processed.
type NoopReplayGuard struct{}

func (NoopReplayGuard) Claim(context.Context, string) (bool, error) { return true, nil }

func (NoopReplayGuard) Release(context.Context, string) error { return nil }
