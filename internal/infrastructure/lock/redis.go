package lock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/janhq/support-chat-api/internal/infrastructure/metrics"
)

const keyPrefix = "support-chat:conversation-lock:"

// RedisLocker serializes conversations across processes sharing one database.
type RedisLocker struct {
	client redis.UniversalClient
	rs     *redsync.Redsync
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisLocker connects to Redis. redisURL accepts a comma separated list of
// redis:// URLs or host:port pairs; more than one address selects cluster mode.
func NewRedisLocker(ctx context.Context, redisURL string, ttl time.Duration, log zerolog.Logger) (*RedisLocker, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL must be provided")
	}

	opts, err := buildUniversalOptions(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if len(opts.Addrs) > 1 && opts.DB != 0 {
		log.Warn().Msg("ignoring non-zero DB for redis cluster configuration")
		opts.DB = 0
	}

	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	log.Info().Int("addrs", len(opts.Addrs)).Dur("ttl", ttl).Msg("redis conversation lock ready")
	return &RedisLocker{
		client: client,
		rs:     redsync.New(goredis.NewPool(client)),
		ttl:    ttl,
		log:    log.With().Str("component", "redis-locker").Logger(),
	}, nil
}

// Lock acquires the distributed mutex for key, retrying until ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	start := time.Now()
	mutex := l.rs.NewMutex(keyPrefix+key,
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(int(l.ttl/(100*time.Millisecond))+1),
		redsync.WithRetryDelay(100*time.Millisecond),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return nil, err
	}
	metrics.RecordLockWait("redis", time.Since(start).Seconds())

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller may already be cancelled; the unlock itself must still run.
			unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if _, err := mutex.UnlockContext(unlockCtx); err != nil {
				l.log.Error().Err(err).Str("key", key).Msg("failed to release conversation lock")
			}
		})
	}, nil
}

// Close releases the redis client.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
		if opts.DialTimeout == 0 {
			opts.DialTimeout = parsed.DialTimeout
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no redis addresses provided")
	}
	return opts, nil
}
