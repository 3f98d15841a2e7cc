// internal/store/stats_redis_test.go
package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"
)

func TestStatsStore_Counters(t *testing.T) {
	client := newTestRedis(t)
	s := NewRedisStatsStore(client, logger.NewNoOpLogger())
	ctx := context.Background()
	session := testSession()

	require.NoError(t, s.RecordRequested(ctx, session))
	require.NoError(t, s.RecordRequested(ctx, session))
	require.NoError(t, s.RecordCompleted(ctx, session))
	require.NoError(t, s.RecordFailed(ctx, session))

	stats, err := s.Get(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.MoviesRequested)
	assert.Equal(t, 1, stats.MoviesCompleted)
	assert.Equal(t, 1, stats.MoviesFailed)
}

func TestStatsStore_EmptyReadsZero(t *testing.T) {
	client := newTestRedis(t)
	s := NewRedisStatsStore(client, logger.NewNoOpLogger())

	stats, err := s.Get(context.Background(), testSession())
	require.NoError(t, err)
	assert.Equal(t, &models.ProjectStats{}, stats)
}
