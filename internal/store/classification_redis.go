// internal/store/classification_redis.go
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"
)

// ErrClassificationNotFound is returned when no snapshot exists for a session.
var ErrClassificationNotFound = fmt.Errorf("classification not found")

// RedisClassificationStore persists classification snapshots per session.
type RedisClassificationStore struct {
	client *redis.Client
	log    logger.Logger
	ttl    time.Duration
}

// NewRedisClassificationStore creates a store with the given TTL.
// A zero TTL keeps snapshots until explicitly deleted.
func NewRedisClassificationStore(client *redis.Client, log logger.Logger, ttl time.Duration) *RedisClassificationStore {
	return &RedisClassificationStore{
		client: client,
		log:    log.WithFields(map[string]interface{}{"component": "classification_store"}),
		ttl:    ttl,
	}
}

// Get loads the classification snapshot for a session.
func (s *RedisClassificationStore) Get(ctx context.Context, session models.Session) (*models.Classification, error) {
	key := session.ClassificationKey()

	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrClassificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get classification %s: %w", key, err)
	}

	var classification models.Classification
	if err := json.Unmarshal([]byte(val), &classification); err != nil {
		return nil, fmt.Errorf("decode classification %s: %w", key, err)
	}

	return &classification, nil
}

// Put stores the classification snapshot for a session.
func (s *RedisClassificationStore) Put(ctx context.Context, session models.Session, classification *models.Classification) error {
	key := session.ClassificationKey()

	classification.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(classification)
	if err != nil {
		return fmt.Errorf("encode classification %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("put classification %s: %w", key, err)
	}

	s.log.Debug("Stored classification snapshot", map[string]interface{}{
		"key":    key,
		"images": classification.TotalImages(),
	})
	return nil
}

// Delete removes the classification snapshot for a session.
func (s *RedisClassificationStore) Delete(ctx context.Context, session models.Session) error {
	return s.client.Del(ctx, session.ClassificationKey()).Err()
}
