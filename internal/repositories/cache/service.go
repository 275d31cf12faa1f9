package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"custodia/internal/models"
)

// CacheService wraps Redis with JSON marshalling and the request/settings
// helpers the engine uses.
type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) Close() error {
	return s.client.Close()
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Request caching. Only terminal-state reads benefit long-term, but all
// lookups go through here; mutations invalidate.
func requestKey(id uint64) string {
	return fmt.Sprintf("request:%d", id)
}

func (s *CacheService) GetRequest(ctx context.Context, id uint64) (*models.TransferRequest, error) {
	var req models.TransferRequest
	found, err := s.Get(ctx, requestKey(id), &req)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, redis.Nil
	}
	return &req, nil
}

func (s *CacheService) SetRequest(ctx context.Context, req *models.TransferRequest) error {
	if req == nil {
		return fmt.Errorf("cannot cache nil request")
	}
	return s.Set(ctx, requestKey(req.ID), req)
}

func (s *CacheService) InvalidateRequest(ctx context.Context, id uint64) error {
	return s.Delete(ctx, requestKey(id))
}

// Account caching backs the auth middleware's token-version checks.
func accountKey(id uint) string {
	return fmt.Sprintf("account:%d", id)
}

func (s *CacheService) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	found, err := s.Get(ctx, accountKey(id), &account)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, redis.Nil
	}
	return &account, nil
}

func (s *CacheService) SetAccount(ctx context.Context, account *models.Account) error {
	if account == nil {
		return fmt.Errorf("cannot cache nil account")
	}
	return s.Set(ctx, accountKey(account.ID), account)
}

func (s *CacheService) InvalidateAccount(ctx context.Context, id uint) error {
	return s.Delete(ctx, accountKey(id))
}
