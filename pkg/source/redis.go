package source

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	stageerrors "github.com/matzehuels/stageflow/pkg/errors"
	"github.com/matzehuels/stageflow/pkg/graph"
)

// RedisConfig configures a [RedisSource].
type RedisConfig struct {
	// URL is a redis:// or rediss:// connection URL. When empty, Addr is used.
	URL string
	// Addr is the host:port of the server (default "localhost:6379").
	Addr string
	// Key holds the JSON stage array (or an object with "stages" and "current").
	Key string
	// CurrentKey optionally holds the current stage name. A missing value
	// means no current stage.
	CurrentKey string
}

// getter is the subset of the Redis client used by RedisSource.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisSource reads stage records stored under a Redis key.
type RedisSource struct {
	client     getter
	closer     func() error
	key        string
	currentKey string
}

// NewRedisSource connects to Redis and verifies the connection with PING.
func NewRedisSource(ctx context.Context, cfg RedisConfig) (*RedisSource, error) {
	if err := stageerrors.ValidateKey(cfg.Key); err != nil {
		return nil, err
	}
	if cfg.CurrentKey != "" {
		if err := stageerrors.ValidateKey(cfg.CurrentKey); err != nil {
			return nil, err
		}
	}

	opts := &redis.Options{Addr: cfg.Addr}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, stageerrors.Wrap(stageerrors.ErrCodeInvalidOption, err, "parse redis url")
		}
		opts = parsed
	}
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, stageerrors.Wrap(stageerrors.ErrCodeNetwork, err, "connect to redis at %s", opts.Addr)
	}
	return &RedisSource{
		client:     client,
		closer:     client.Close,
		key:        cfg.Key,
		currentKey: cfg.CurrentKey,
	}, nil
}

// Close releases the underlying connection pool.
func (s *RedisSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// Load implements [Source].
func (s *RedisSource) Load(ctx context.Context) (graph.Input, error) {
	return observe(ctx, KindRedis, func() (graph.Input, error) {
		data, err := s.get(ctx, s.key)
		if err != nil {
			return graph.Input{}, err
		}
		in, err := graph.UnmarshalInput([]byte(data))
		if err != nil {
			return graph.Input{}, err
		}

		if s.currentKey != "" {
			current, err := s.get(ctx, s.currentKey)
			switch {
			case stageerrors.Is(err, stageerrors.ErrCodeNotFound):
				in.Current = ""
			case err != nil:
				return graph.Input{}, err
			default:
				in.Current = current
			}
		}
		return in, nil
	})
}

func (s *RedisSource) get(ctx context.Context, key string) (string, error) {
	var val string
	err := RetryWithBackoff(ctx, func() error {
		v, err := s.client.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redis.Nil):
			return stageerrors.New(stageerrors.ErrCodeNotFound, "redis key %q not found", key)
		case err != nil:
			return Retryable(stageerrors.Wrap(stageerrors.ErrCodeNetwork, err, "redis get %q", key))
		}
		val = v
		return nil
	})
	return val, err
}
