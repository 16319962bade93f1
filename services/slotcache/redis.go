package slotcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"

	"servicehub/models"
)

// RedisStore shares cached passes across instances. Each provider has a set
// of its live keys so invalidation does not need to SCAN.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key Key) (models.WeeklySlotsFetchResult, bool, error) {
	var result models.WeeklySlotsFetchResult

	raw, err := s.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return result, false, nil
	}
	if err != nil {
		return result, false, fmt.Errorf("failed to read slot cache: %w", err)
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, false, fmt.Errorf("failed to decode cached slots: %w", err)
	}
	return result, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key Key, result models.WeeklySlotsFetchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode slots for cache: %w", err)
	}

	idx := providerIndexKey(key.ProviderID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key.String(), data, s.ttl)
		pipe.SAdd(ctx, idx, key.String())
		if s.ttl > 0 {
			pipe.Expire(ctx, idx, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write slot cache: %w", err)
	}
	return nil
}

func (s *RedisStore) InvalidateProvider(ctx context.Context, providerID string, rng models.DateRange) (int, error) {
	idx := providerIndexKey(providerID)
	members, err := s.client.SMembers(ctx, idx).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read slot cache index: %w", err)
	}

	var stale []string
	for _, m := range members {
		key, err := ParseKey(m)
		if err != nil || key.Range().Overlaps(rng) {
			stale = append(stale, m)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	staleArgs := make([]interface{}, len(stale))
	for i, k := range stale {
		staleArgs[i] = k
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, stale...)
		pipe.SRem(ctx, idx, staleArgs...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate slot cache: %w", err)
	}
	return len(stale), nil
}
