package timeproof

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRedeemStore backs single-use redemption with Redis SET NX, letting
// multiple gateway instances share one redemption space.
type RedisRedeemStore struct {
	client *redis.Client
	prefix string
}

func NewRedisRedeemStore(client *redis.Client) *RedisRedeemStore {
	return &RedisRedeemStore{client: client, prefix: "timeproof:"}
}

func (s *RedisRedeemStore) Use(ctx context.Context, kind, value string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return s.client.SetNX(ctx, s.prefix+kind+"|"+value, 1, ttl).Result()
}
