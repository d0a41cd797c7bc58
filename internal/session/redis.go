package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const (
	keyPrefix   = "callsession:"
	maxRetries  = 10
	retryDelay  = 5 * time.Second
	pingTimeout = 5 * time.Second
)

// RedisStore persists sessions in Redis so webhook deliveries can land on
// any replica. Update is read-modify-write without a transaction: same-SID
// concurrency is last-write-wins, acceptable for provider retries.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects with retries, matching infrastructure that may
// come up after us.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration, log zerolog.Logger) (*RedisStore, error) {
	opt, parseErr := redis.ParseURL(url)
	if parseErr != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", parseErr)
	}

	var rdb *redis.Client
	var err error
	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rdb = redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		pingErr := rdb.Ping(pingCtx).Err()
		cancel()

		if pingErr == nil {
			log.Info().Msg("Connected to Redis session store")
			return &RedisStore{rdb: rdb, ttl: ttl}, nil
		}
		err = pingErr
		rdb.Close()

		if ctx.Err() == nil {
			log.Warn().Err(err).Int("attempt", i+1).Int("max_attempts", maxRetries).Msg("Redis connection failed, retrying in 5s...")
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("could not connect to redis after %d attempts: %w", maxRetries, err)
}

func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	return s.set(ctx, sess)
}

func (s *RedisStore) Get(ctx context.Context, callSID string) (*Session, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+callSID).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *RedisStore) Update(ctx context.Context, callSID string, mutate func(*Session)) error {
	sess, err := s.Get(ctx, callSID)
	if err != nil {
		return err
	}
	mutate(sess)
	return s.set(ctx, sess)
}

func (s *RedisStore) Delete(ctx context.Context, callSID string) error {
	return s.rdb.Del(ctx, keyPrefix+callSID).Err()
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	var cursor uint64
	count := 0
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) set(ctx context.Context, sess *Session) error {
	val, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyPrefix+sess.CallSID, val, s.ttl).Err()
}
