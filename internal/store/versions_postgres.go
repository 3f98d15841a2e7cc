// internal/store/versions_postgres.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"
)

// ErrVersionNotFound is returned when no snapshot row matches.
var ErrVersionNotFound = fmt.Errorf("version not found")

// PostgresVersionStore persists movie version snapshots.
type PostgresVersionStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewPostgresVersionStore(db *sql.DB, log logger.Logger) *PostgresVersionStore {
	return &PostgresVersionStore{
		db:  db,
		log: log.WithFields(map[string]interface{}{"component": "version_store"}),
	}
}

// Create inserts a pending version snapshot and returns its id.
func (s *PostgresVersionStore) Create(ctx context.Context, session models.Session, template string) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	query := `
		INSERT INTO movie_versions (id, user_id, project_id, template, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)`

	if _, err := s.db.ExecContext(ctx, query, id, session.UserID, session.ProjectID, template, models.StatePending, now); err != nil {
		return "", fmt.Errorf("insert version: %w", err)
	}

	s.log.Info("Created version snapshot", map[string]interface{}{
		"versionId": id,
		"userId":    session.UserID,
		"projectId": session.ProjectID,
		"template":  template,
	})
	return id, nil
}

// MarkSuccess records a successful render and its video URI.
func (s *PostgresVersionStore) MarkSuccess(ctx context.Context, id, videoURI string) error {
	return s.updateState(ctx, id, models.StateSuccess, "", videoURI)
}

// MarkFailure records a failed render with a reason.
func (s *PostgresVersionStore) MarkFailure(ctx context.Context, id, reason string) error {
	return s.updateState(ctx, id, models.StateFailure, reason, "")
}

func (s *PostgresVersionStore) updateState(ctx context.Context, id string, state models.ActionState, reason, videoURI string) error {
	query := `
		UPDATE movie_versions
		SET state = $2, reason = $3, video_uri = $4, updated_at = $5
		WHERE id = $1`

	res, err := s.db.ExecContext(ctx, query, id, state, nullable(reason), nullable(videoURI), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update version %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrVersionNotFound
	}
	return nil
}

// Get loads a version snapshot by id.
func (s *PostgresVersionStore) Get(ctx context.Context, id string) (*models.VersionSnapshot, error) {
	query := `
		SELECT id, user_id, project_id, template, state, reason, video_uri, created_at, updated_at
		FROM movie_versions
		WHERE id = $1`

	var v models.VersionSnapshot
	var reason, videoURI sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.UserID, &v.ProjectID, &v.Template, &v.State,
		&reason, &videoURI, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get version %s: %w", id, err)
	}

	v.Reason = reason.String
	v.VideoURI = videoURI.String
	return &v, nil
}

// ListByProject returns all version snapshots for a project, newest first.
func (s *PostgresVersionStore) ListByProject(ctx context.Context, session models.Session) ([]models.VersionSnapshot, error) {
	query := `
		SELECT id, user_id, project_id, template, state, reason, video_uri, created_at, updated_at
		FROM movie_versions
		WHERE user_id = $1 AND project_id = $2
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, session.UserID, session.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.VersionSnapshot
	for rows.Next() {
		var v models.VersionSnapshot
		var reason, videoURI sql.NullString
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.ProjectID, &v.Template, &v.State,
			&reason, &videoURI, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		v.Reason = reason.String
		v.VideoURI = videoURI.String
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
