package infra

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// ── In-flight locks ──────────────────────────────────────────────────────────

// liberarScript deletes the key only while it still holds our token, so an
// expired lock re-taken by another request is never released by us.
const liberarScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`

// RedisCandado is a SETNX lock with TTL. Tokens are kept per key so only the
// holder releases.
type RedisCandado struct {
	rdb    redis.Cmdable
	tokens sync.Map // clave -> token
}

func NewRedisCandado(rdb redis.Cmdable) *RedisCandado {
	return &RedisCandado{rdb: rdb}
}

func (c *RedisCandado) Adquirir(ctx context.Context, clave string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := c.rdb.SetNX(ctx, clave, token, ttl).Result()
	if err != nil || !ok {
		return false, err
	}
	c.tokens.Store(clave, token)
	return true, nil
}

func (c *RedisCandado) Liberar(ctx context.Context, clave string) error {
	token, ok := c.tokens.LoadAndDelete(clave)
	if !ok {
		return nil
	}
	return c.rdb.Eval(ctx, liberarScript, []string{clave}, token).Err()
}
