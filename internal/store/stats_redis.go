// internal/store/stats_redis.go
package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"
)

const (
	statsFieldRequested = "movies_requested"
	statsFieldCompleted = "movies_completed"
	statsFieldFailed    = "movies_failed"
)

// RedisStatsStore tracks per-project movie counters in a Redis hash.
type RedisStatsStore struct {
	client *redis.Client
	log    logger.Logger
}

func NewRedisStatsStore(client *redis.Client, log logger.Logger) *RedisStatsStore {
	return &RedisStatsStore{
		client: client,
		log:    log.WithFields(map[string]interface{}{"component": "stats_store"}),
	}
}

// RecordRequested increments the requested counter for a project.
func (s *RedisStatsStore) RecordRequested(ctx context.Context, session models.Session) error {
	return s.incr(ctx, session, statsFieldRequested)
}

// RecordCompleted increments the completed counter for a project.
func (s *RedisStatsStore) RecordCompleted(ctx context.Context, session models.Session) error {
	return s.incr(ctx, session, statsFieldCompleted)
}

// RecordFailed increments the failed counter for a project.
func (s *RedisStatsStore) RecordFailed(ctx context.Context, session models.Session) error {
	return s.incr(ctx, session, statsFieldFailed)
}

func (s *RedisStatsStore) incr(ctx context.Context, session models.Session, field string) error {
	if err := s.client.HIncrBy(ctx, session.StatsKey(), field, 1).Err(); err != nil {
		return fmt.Errorf("increment %s for %s: %w", field, session.StatsKey(), err)
	}
	return nil
}

// Get returns the current counters for a project. Missing fields read as zero.
func (s *RedisStatsStore) Get(ctx context.Context, session models.Session) (*models.ProjectStats, error) {
	vals, err := s.client.HGetAll(ctx, session.StatsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("get stats for %s: %w", session.StatsKey(), err)
	}

	stats := &models.ProjectStats{}
	stats.MoviesRequested = parseCounter(vals[statsFieldRequested])
	stats.MoviesCompleted = parseCounter(vals[statsFieldCompleted])
	stats.MoviesFailed = parseCounter(vals[statsFieldFailed])
	return stats, nil
}

func parseCounter(raw string) int {
	n, _ := strconv.Atoi(raw)
	return n
}
