package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryStorage keeps the serialized cart in memory. Used in tests and as a
// fallback when Redis is not configured.
type MemoryStorage struct {
	data []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Load() ([]byte, error) {
	return s.data, nil
}

func (s *MemoryStorage) Save(data []byte) error {
	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}

// RedisStorage persists the serialized cart under a single named slot,
// cart:<cartID>. Every save refreshes the TTL so active carts never expire.
type RedisStorage struct {
	client *redis.Client
	cartID string
	ttl    time.Duration
}

func NewRedisStorage(client *redis.Client, cartID string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client: client,
		cartID: cartID,
		ttl:    ttl,
	}
}

func (s *RedisStorage) key() string {
	return fmt.Sprintf("cart:%s", s.cartID)
}

func (s *RedisStorage) Load() ([]byte, error) {
	data, err := s.client.Get(context.Background(), s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		// No slot yet - empty cart
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStorage) Save(data []byte) error {
	return s.client.Set(context.Background(), s.key(), data, s.ttl).Err()
}
