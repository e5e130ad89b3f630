package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	URL      string
	Addr     string
	Username string
	Password string
}

// NewRedisClient connects to Redis and pings it. URL takes precedence over Addr.
func NewRedisClient(ctx context.Context, o RedisOptions) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:         o.Addr,
		Username:     o.Username,
		Password:     o.Password,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 1,
	}
	if o.URL != "" {
		parsed, err := redis.ParseURL(o.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		parsed.ReadTimeout = opts.ReadTimeout
		parsed.WriteTimeout = opts.WriteTimeout
		parsed.PoolSize = opts.PoolSize
		parsed.MinIdleConns = opts.MinIdleConns
		opts = parsed
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// redisCmdable is the subset of the go-redis client used by the locker.
type redisCmdable interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

type RedisLocker struct {
	client redisCmdable
	ttl    time.Duration
	log    *slog.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, log *slog.Logger) *RedisLocker {
	if log == nil {
		log = slog.Default()
	}
	return &RedisLocker{client: client, ttl: ttl, log: log.With("component", "lock.redis")}
}

// WithDoctorLock fails fast with ErrNotAcquired when another holder has the key.
// fn runs with a deadline of the lock TTL so it cannot outlive the lock.
func (l *RedisLocker) WithDoctorLock(ctx context.Context, doctorID int64, fn func(ctx context.Context) error) error {
	key := doctorKey(doctorID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire doctor lock: %w", err)
	}
	if !ok {
		return ErrNotAcquired
	}

	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := l.release(releaseCtx, key, token); err != nil {
			l.log.Warn("doctor lock not released; held until ttl",
				slog.Int64("doctor_id", doctorID),
				slog.Duration("ttl", l.ttl),
				slog.Any("err", err),
			)
		}
	}()

	fnCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(fnCtx)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release doctor lock: %w", err)
	}
	return nil
}
