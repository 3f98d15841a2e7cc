// internal/store/versions_postgres_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"
)

func newVersionStore(t *testing.T) (*PostgresVersionStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresVersionStore(db, logger.NewNoOpLogger()), mock
}

func TestVersionStore_Create(t *testing.T) {
	s, mock := newVersionStore(t)

	mock.ExpectExec("INSERT INTO movie_versions").
		WithArgs(sqlmock.AnyArg(), "user-1", "proj-1", "highlight-30s", models.StatePending, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := s.Create(context.Background(), testSession(), "highlight-30s")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionStore_MarkSuccess(t *testing.T) {
	s, mock := newVersionStore(t)

	mock.ExpectExec("UPDATE movie_versions").
		WithArgs("v-1", models.StateSuccess, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.MarkSuccess(context.Background(), "v-1", "gs://out/movie.mp4"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVersionStore_MarkFailure_MissingRow(t *testing.T) {
	s, mock := newVersionStore(t)

	mock.ExpectExec("UPDATE movie_versions").
		WithArgs("missing", models.StateFailure, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.MarkFailure(context.Background(), "missing", "render timed out")
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestVersionStore_Get(t *testing.T) {
	s, mock := newVersionStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "project_id", "template", "state", "reason", "video_uri", "created_at", "updated_at",
	}).AddRow("v-1", "user-1", "proj-1", "highlight-30s", models.StateSuccess, nil, "gs://out/movie.mp4", now, now)

	mock.ExpectQuery("SELECT id, user_id, project_id").
		WithArgs("v-1").
		WillReturnRows(rows)

	v, err := s.Get(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Equal(t, "v-1", v.ID)
	assert.Equal(t, models.StateSuccess, v.State)
	assert.Equal(t, "gs://out/movie.mp4", v.VideoURI)
	assert.Empty(t, v.Reason)
}

func TestVersionStore_GetMissing(t *testing.T) {
	s, mock := newVersionStore(t)

	mock.ExpectQuery("SELECT id, user_id, project_id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "project_id", "template", "state", "reason", "video_uri", "created_at", "updated_at",
		}))

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrVersionNotFound)
}

func TestVersionStore_ListByProject(t *testing.T) {
	s, mock := newVersionStore(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "project_id", "template", "state", "reason", "video_uri", "created_at", "updated_at",
	}).
		AddRow("v-2", "user-1", "proj-1", "tour-60s", models.StatePending, nil, nil, now, now).
		AddRow("v-1", "user-1", "proj-1", "highlight-30s", models.StateFailure, "not enough images", nil, now.Add(-time.Hour), now.Add(-time.Hour))

	mock.ExpectQuery("SELECT id, user_id, project_id").
		WithArgs("user-1", "proj-1").
		WillReturnRows(rows)

	versions, err := s.ListByProject(context.Background(), testSession())
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "v-2", versions[0].ID)
	assert.Equal(t, "not enough images", versions[1].Reason)
}
