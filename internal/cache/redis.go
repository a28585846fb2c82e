package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	"analyticsadmin/internal/logging"
)

// RedisStore keeps entries under a key prefix in Redis
type RedisStore struct {
	pool   *redis.Pool
	prefix string
}

func NewRedisPool(url string) *redis.Pool {
	return &redis.Pool{
		MaxIdle:     10,
		MaxActive:   50,
		IdleTimeout: 240 * time.Second,
		Dial: func() (redis.Conn, error) {
			return redis.DialURL(url,
				redis.DialConnectTimeout(10*time.Second),
				redis.DialReadTimeout(10*time.Second),
			)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			_, err := c.Do("PING")
			return err
		},
	}
}

// NewRedisStore connects to url and verifies the connection
func NewRedisStore(url, prefix string) (*RedisStore, error) {
	logging.Infof("Initializing redis cache [%s]...", prefix)
	s := &RedisStore{pool: NewRedisPool(url), prefix: prefix}

	connection := s.pool.Get()
	defer connection.Close()
	if _, err := redis.String(connection.Do("PING")); err != nil {
		s.pool.Close()
		return nil, fmt.Errorf("Error testing connection to Redis: %v", err)
	}
	return s, nil
}

func (s *RedisStore) key(key string) string {
	return s.prefix + ":" + key
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	connection, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, false, err
	}
	defer connection.Close()

	data, err := redis.Bytes(connection.Do("GET", s.key(key)))
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	connection, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer connection.Close()

	args := redis.Args{}.Add(s.key(key), value)
	if ttl > 0 {
		args = args.Add("PX", ttl.Milliseconds())
	}
	if _, err := connection.Do("SET", args...); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	connection, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer connection.Close()

	if _, err := connection.Do("DEL", s.key(key)); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", key, err)
	}
	return nil
}

// Clear deletes every key under the prefix using SCAN
func (s *RedisStore) Clear(ctx context.Context) error {
	connection, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer connection.Close()

	cursor := 0
	for {
		values, err := redis.Values(connection.Do("SCAN", cursor, "MATCH", s.prefix+":*", "COUNT", 100))
		if err != nil {
			return fmt.Errorf("failed to scan redis keys: %w", err)
		}
		var keys []string
		if _, err := redis.Scan(values, &cursor, &keys); err != nil {
			return fmt.Errorf("failed to read redis scan result: %w", err)
		}
		if len(keys) > 0 {
			if _, err := connection.Do("DEL", redis.Args{}.AddFlat(keys)...); err != nil {
				return fmt.Errorf("failed to delete redis keys: %w", err)
			}
		}
		if cursor == 0 {
			return nil
		}
	}
}

func (s *RedisStore) Close() error {
	return s.pool.Close()
}
