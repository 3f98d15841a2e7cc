// internal/models/session.go
package models

import "fmt"

// Session identifies the user and listing project a job operates on.
// Every worker input embeds one.
type Session struct {
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
}

func (s Session) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("userId is required")
	}
	if s.ProjectID == "" {
		return fmt.Errorf("projectId is required")
	}
	return nil
}

// ClassificationKey is the Redis key holding the project's bucket
// snapshot and template preselections.
func (s Session) ClassificationKey() string {
	return fmt.Sprintf("classification:%s:%s", s.UserID, s.ProjectID)
}

// StatsKey is the Redis key holding the project's movie counters.
func (s Session) StatsKey() string {
	return fmt.Sprintf("stats:%s:%s", s.UserID, s.ProjectID)
}
