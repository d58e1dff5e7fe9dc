// Package cache provides the Redis-backed read cache. The database remains
// the authority of record; everything here is an optimization that may be
// flushed at any time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"paylink/internal/models"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type Service struct {
	client *redis.Client
	ttl    time.Duration
}

func NewService(client *redis.Client, defaultTTL time.Duration) *Service {
	return &Service{client: client, ttl: defaultTTL}
}

func (s *Service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	val, err := s.client.Get(ctx, walletKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var wallet models.Wallet
	if err := json.Unmarshal([]byte(val), &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *Service) SetWallet(ctx context.Context, wallet *models.Wallet) error {
	data, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("failed to marshal wallet: %w", err)
	}
	return s.client.Set(ctx, walletKey(wallet.UserID), data, s.ttl).Err()
}

func (s *Service) InvalidateWallet(ctx context.Context, userID uint) error {
	return s.client.Del(ctx, walletKey(userID)).Err()
}

// MarkIdempotencyKey records a seen idempotency key for fast duplicate
// rejection. The transactions table's unique constraint stays the ground
// truth; this only short-circuits obvious retries.
func (s *Service) MarkIdempotencyKey(ctx context.Context, key, referenceID string) error {
	return s.client.Set(ctx, idempotencyKey(key), referenceID, s.ttl).Err()
}

// SeenIdempotencyKey returns the reference id recorded for the key, if any.
func (s *Service) SeenIdempotencyKey(ctx context.Context, key string) (string, error) {
	ref, err := s.client.Get(ctx, idempotencyKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return ref, nil
}

func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *Service) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *Service) Close() error { return s.client.Close() }

func walletKey(userID uint) string { return fmt.Sprintf("wallet:%d", userID) }

func idempotencyKey(key string) string { return "idem:" + key }
