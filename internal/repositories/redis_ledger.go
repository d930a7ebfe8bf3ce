package repositories

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisLedger implements Ledger with SETNX keys that expire after ttl.
type RedisLedger struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLedger(rdb *goredis.Client, prefix string, ttl time.Duration) *RedisLedger {
	return &RedisLedger{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (l *RedisLedger) Claim(ctx context.Context, key string) (bool, error) {
	return l.rdb.SetNX(ctx, l.prefix+key, time.Now().Unix(), l.ttl).Result()
}

func (l *RedisLedger) Release(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, l.prefix+key).Err()
}

// NopLedger claims every key; steps are then applied at-least-once.
type NopLedger struct{}

func (NopLedger) Claim(context.Context, string) (bool, error) { return true, nil }
func (NopLedger) Release(context.Context, string) error       { return nil }
