package keylock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/progress-engine/internal/platform/logger"
)

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis layers a Redis lease over a Local lock so API replicas serialize the same key.
// The local lock keeps same-process contention off the network.
type Redis struct {
	rdb    goredis.UniversalClient
	local  *Local
	log    *logger.Logger
	prefix string
	ttl    time.Duration
	poll   time.Duration
}

type RedisOptions struct {
	Prefix string
	TTL    time.Duration
	Poll   time.Duration
}

func NewRedis(rdb goredis.UniversalClient, log *logger.Logger, opts RedisOptions) *Redis {
	if opts.Prefix == "" {
		opts.Prefix = "progress:lock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.Poll <= 0 {
		opts.Poll = 25 * time.Millisecond
	}
	return &Redis{
		rdb:    rdb,
		local:  NewLocal(),
		log:    log.With("component", "RedisKeyLock"),
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		poll:   opts.Poll,
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	releaseLocal, err := r.local.Lock(ctx, key)
	if err != nil {
		return nil, err
	}
	redisKey := r.prefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()
	for {
		ok, err := r.rdb.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			releaseLocal()
			return nil, fmt.Errorf("acquire lease %s: %w", redisKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			releaseLocal()
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return func() {
		// Release even when the request context is already cancelled.
		relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(relCtx, r.rdb, []string{redisKey}, token).Err(); err != nil && err != goredis.Nil {
			r.log.Warn("lease release failed", "key", redisKey, "error", err)
		}
		releaseLocal()
	}, nil
}

// Dial connects and pings, mirroring how the SSE bus client is brought up.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
