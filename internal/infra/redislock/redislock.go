// Package redislock guarda a coordenação entre instâncias no Redis:
// lock da varredura e deduplicação de notificações do gateway.
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const dedupeTTL = 24 * time.Hour

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type Client struct {
	rdb *redis.Client
}

func New(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Client{rdb: redis.NewClient(opts)}, nil
}

func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// TryLock só libera o lock se ele ainda for nosso.
func (c *Client) TryLock(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (func(), bool, error) {

	token := uuid.NewString()

	ok, err := c.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = unlockScript.Run(ctx, c.rdb, []string{key}, token).Err()
	}
	return unlock, true, nil
}

// Claim devolve false se a chave já foi processada nas últimas 24h.
func (c *Client) Claim(ctx context.Context, key string) (bool, error) {
	return c.rdb.SetNX(ctx, dedupeKey(key), time.Now().UTC().Format(time.RFC3339), dedupeTTL).Result()
}

func (c *Client) Forget(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, dedupeKey(key)).Err()
}

func dedupeKey(key string) string {
	return "lesson-scheduler:webhook:" + key
}
