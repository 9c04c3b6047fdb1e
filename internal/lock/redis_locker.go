package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "lock:"

// compare-and-delete so a holder whose TTL already lapsed cannot free a
// lease that now belongs to someone else
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

type RedisLocker struct {
	rdb      *redis.Client
	opts     Options
	newToken func() string
	logger   *zap.Logger
}

type RedisOption func(*RedisLocker)

// WithTokenFunc overrides the lease token generator.
func WithTokenFunc(fn func() string) RedisOption {
	return func(l *RedisLocker) { l.newToken = fn }
}

func WithLogger(logger *zap.Logger) RedisOption {
	return func(l *RedisLocker) {
		if logger != nil {
			l.logger = logger.Named("lock.redis")
		}
	}
}

func NewRedisLocker(rdb *redis.Client, opts Options, options ...RedisOption) *RedisLocker {
	l := &RedisLocker{
		rdb:      rdb,
		opts:     opts.withDefaults(),
		newToken: uuid.NewString,
		logger:   zap.L().Named("lock.redis"),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := l.newToken()
	deadline := time.Now().Add(l.opts.Wait)
	delay := l.opts.InitialBackoff

	for attempt := 1; ; attempt++ {
		ok, err := l.rdb.SetNX(ctx, redisKey, token, l.opts.TTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}

		if time.Now().Add(delay).After(deadline) {
			l.logger.Warn("lock wait exhausted",
				zap.String("key", redisKey),
				zap.Int("attempts", attempt),
			)
			return nil, ErrNotAcquired
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
		if delay > l.opts.MaxBackoff {
			delay = l.opts.MaxBackoff
		}
	}
}

func (l *RedisLocker) releaser(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			// detached from the caller's ctx so a cancelled request still frees the lease
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := l.rdb.Eval(ctx, releaseScript, []string{redisKey}, token).Err(); err != nil {
				l.logger.Error("lock release failed", zap.String("key", redisKey), zap.Error(err))
			}
		})
	}
}
