// Package ratelimit provides a redis token bucket used in front of
// telemetry ingest. With no redis configured it admits everything.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/campuswatt/gridline/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Limiter interface {
	// Allow reports whether the caller identified by key may proceed.
	Allow(ctx context.Context, key string) (bool, error)
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

// tokenBucket refills cfg.DeviceRate tokens per second up to
// cfg.DeviceBurst, tracked per key in redis. The whole take-or-refuse
// step runs as one script so concurrent reporters cannot overdraw.
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts = tonumber(data[2])
if tokens == nil then
  tokens = burst
  ts = now
end

tokens = math.min(burst, tokens + (now - ts) * rate)
local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HMSET', key, 'tokens', tokens, 'ts', now)
redis.call('EXPIRE', key, math.ceil(burst / rate) + 60)
return allowed
`)

type redisLimiter struct {
	client *redis.Client
	rate   float64
	burst  int
	log    *zap.Logger
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(time.Now().UnixNano()) / float64(time.Second)
	allowed, err := tokenBucket.Run(ctx, l.client,
		[]string{fmt.Sprintf("ratelimit:%s", key)},
		l.rate, l.burst, now,
	).Int()
	if err != nil {
		// Redis being down must not take ingest with it.
		l.log.Warn("rate limiter unavailable, admitting", zap.Error(err))
		return true, nil
	}
	return allowed == 1, nil
}

type Params struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Log       *zap.Logger
}

func New(p Params) Limiter {
	rl := p.Config.RateLimit
	if !rl.Enabled || rl.RedisAddr == "" {
		return noopLimiter{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     rl.RedisAddr,
		Password: rl.RedisPassword,
		DB:       rl.RedisDB,
	})
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	p.Log.Info("rate limiter enabled",
		zap.String("redis_addr", rl.RedisAddr),
		zap.Float64("rate", rl.DeviceRate),
		zap.Int("burst", rl.DeviceBurst),
	)
	return &redisLimiter{
		client: client,
		rate:   rl.DeviceRate,
		burst:  rl.DeviceBurst,
		log:    p.Log.Named("ratelimit"),
	}
}

var Module = fx.Module("ratelimit",
	fx.Provide(New),
)
