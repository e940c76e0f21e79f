package goodserver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is the key-value store backing issued session tokens and recorded
// enrollments. Must be safe for concurrent use. Storing an existing key
// updates it; removing a missing key is an error.
type Storage interface {
	Store(key string, value string) error
	Retrieve(key string) (string, error)
	Remove(key string) error
}

// SessionTokenTTL bounds how long an issued capture session token stays
// usable.
const SessionTokenTTL = 1 * time.Hour

type InMemoryStorage struct {
	values map[string]string
	mutex  sync.Mutex
}

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{values: make(map[string]string)}
}

func (s *InMemoryStorage) Store(key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.values[key] = value
	return nil
}

func (s *InMemoryStorage) Retrieve(key string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if value, ok := s.values[key]; ok {
		return value, nil
	}
	return "", fmt.Errorf("failed to find value for %s", key)
}

func (s *InMemoryStorage) Remove(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		return nil
	}
	return fmt.Errorf("failed to remove value for %s, because it wasn't there", key)
}

// ------------------------------------------------------------------------------

// RedisStorage persists values under namespaced keys. A zero TTL means the
// values never expire.
type RedisStorage struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

func NewRedisStorage(client *redis.Client, namespace string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{client: client, namespace: namespace, ttl: ttl}
}

func (s *RedisStorage) key(key string) string {
	return fmt.Sprintf("%s:fv:%s", s.namespace, key)
}

func (s *RedisStorage) Store(key, value string) error {
	ctx := context.Background()
	return s.client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *RedisStorage) Retrieve(key string) (string, error) {
	ctx := context.Background()
	return s.client.Get(ctx, s.key(key)).Result()
}

func (s *RedisStorage) Remove(key string) error {
	ctx := context.Background()
	return s.client.Del(ctx, s.key(key)).Err()
}
