package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"FinSight/internal/domain/models"
	"FinSight/internal/domain/repository"
	"FinSight/pkg/util"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Timeout  time.Duration
}

// RedisStore keeps series in Redis under a per-process namespace. The
// namespace is cleared on start and on Close, so data never outlives the
// process that wrote it.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	timeout   time.Duration
}

var _ repository.SeriesStore = (*RedisStore)(nil)

// NewRedisClient creates a client from cfg.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})
}

// NewRedisStore pings client and prepares an empty namespace.
func NewRedisStore(ctx context.Context, client redis.UniversalClient, prefix string, timeout time.Duration) (*RedisStore, error) {
	if prefix == "" {
		prefix = "finsight:series"
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	s := &RedisStore{
		client:    client,
		namespace: fmt.Sprintf("%s:%s", prefix, uuid.NewString()),
		timeout:   timeout,
	}

	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if err := s.flush(pctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Namespace returns the key prefix owned by this process.
func (s *RedisStore) Namespace() string { return s.namespace }

func (s *RedisStore) Get(ctx context.Context, ticker string) (models.PriceSeries, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.key(ticker)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.PriceSeries{}, false, nil
		}
		return models.PriceSeries{}, false, fmt.Errorf("redis get: %w", err)
	}
	ps, err := decodeSeries(data)
	if err != nil {
		return models.PriceSeries{}, false, err
	}
	return ps, true, nil
}

func (s *RedisStore) Put(ctx context.Context, ticker string, series models.PriceSeries) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	series.Symbol = util.NormalizeTicker(ticker)
	data, err := encodeSeries(series)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(ticker), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close drops the namespace and closes the client.
func (s *RedisStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	ferr := s.flush(ctx)
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return ferr
}

func (s *RedisStore) key(ticker string) string {
	return fmt.Sprintf("%s:%s", s.namespace, util.NormalizeTicker(ticker))
}

func (s *RedisStore) flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.namespace+":*", 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Unlink(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis unlink: %w", err)
	}
	return nil
}

func encodeSeries(ps models.PriceSeries) ([]byte, error) {
	b, err := json.Marshal(ps)
	if err != nil {
		return nil, fmt.Errorf("encode series: %w", err)
	}
	return b, nil
}

func decodeSeries(b []byte) (models.PriceSeries, error) {
	var ps models.PriceSeries
	if err := json.Unmarshal(b, &ps); err != nil {
		return models.PriceSeries{}, fmt.Errorf("decode series: %w", err)
	}
	return ps, nil
}
