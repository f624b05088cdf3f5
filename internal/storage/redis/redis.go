// Package redis stores the grade model artifact in Redis and provides the
// cross-process lock that serializes cold-start training.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/haskel/gradecast/internal/model"
	"github.com/haskel/gradecast/internal/storage"
)

// Config holds Redis connection configuration.
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int

	// PoolSize is the maximum number of socket connections.
	PoolSize int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the default connection settings.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr returns the Redis address in "host:port" format.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ErrConnection is returned when Redis cannot be reached.
var ErrConnection = errors.New("redis: connection failed")

// Key names.
const (
	DefaultModelKey = "gradecast:model"
	updatedSuffix   = ":updated_at"
	lockSuffix      = ":lock"
)

// NewClient creates a client and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return client, nil
}

// ModelStore keeps the model artifact under a single key. SET replaces the
// value atomically, so readers see either the old or the new artifact.
type ModelStore struct {
	client *redis.Client
	key    string
}

// NewModelStore creates a store for key.
func NewModelStore(client *redis.Client, key string) *ModelStore {
	if key == "" {
		key = DefaultModelKey
	}
	return &ModelStore{client: client, key: key}
}

// Key returns the artifact key.
func (s *ModelStore) Key() string {
	return s.key
}

// LockKey returns the training lock key paired with the artifact key.
func (s *ModelStore) LockKey() string {
	return s.key + lockSuffix
}

// Load fetches and decodes the artifact.
func (s *ModelStore) Load(ctx context.Context) (model.Regressor, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrModelNotFound
		}
		return nil, fmt.Errorf("failed to read model key %s: %w", s.key, err)
	}

	m, err := model.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load model from %s: %w", s.key, err)
	}
	return m, nil
}

// Store replaces the artifact and its timestamp in one transaction.
func (s *ModelStore) Store(ctx context.Context, m model.Regressor) error {
	data, err := model.Marshal(m)
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key, data, 0)
		pipe.Set(ctx, s.key+updatedSuffix, time.Now().Unix(), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write model key %s: %w", s.key, err)
	}
	return nil
}

// Info returns information about the stored artifact.
func (s *ModelStore) Info(ctx context.Context) (storage.ModelInfo, error) {
	info := storage.ModelInfo{
		Backend:  storage.BackendRedis,
		Location: s.key,
	}

	size, err := s.client.StrLen(ctx, s.key).Result()
	if err != nil {
		return info, fmt.Errorf("failed to stat model key %s: %w", s.key, err)
	}
	if size == 0 {
		return info, nil
	}
	info.Exists = true
	info.Size = size

	ts, err := s.client.Get(ctx, s.key+updatedSuffix).Result()
	if err == nil {
		if sec, perr := strconv.ParseInt(ts, 10, 64); perr == nil {
			info.UpdatedAt = time.Unix(sec, 0)
		}
	} else if !errors.Is(err, redis.Nil) {
		return info, fmt.Errorf("failed to read model timestamp: %w", err)
	}

	return info, nil
}

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a single-key mutual exclusion lock with a TTL.
type Locker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	retry  time.Duration
}

// NewLocker creates a lock on key. The TTL bounds how long a crashed holder
// can block others.
func NewLocker(client *redis.Client, key string, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Locker{client: client, key: key, ttl: ttl, retry: 100 * time.Millisecond}
}

// Lock blocks until the lock is acquired or ctx is done. The returned
// function releases it.
func (l *Locker) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", l.key, err)
		}
		if ok {
			return func() {
				// Release even if the caller's context is already done.
				unlockScript.Run(context.Background(), l.client, []string{l.key}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
