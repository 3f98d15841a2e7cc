// internal/models/classification.go
package models

import (
	"context"
	"time"

	"listingreel-workers/internal/selection"
)

// Classification is the persisted outcome of one classification run for
// a project: the ranked bucket snapshot plus per-template shot-list
// preselections derived from it. Stored as one JSON document so a
// make-movie run can reuse it without re-labeling.
type Classification struct {
	Buckets       selection.ImageBuckets `json:"buckets"`
	Preselections map[string][]string    `json:"preselections,omitempty"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// TotalImages counts the photos in the snapshot.
func (c *Classification) TotalImages() int {
	return c.Buckets.TotalItems()
}

// ClassificationStore persists bucket snapshots keyed by session.
type ClassificationStore interface {
	Get(ctx context.Context, session Session) (*Classification, error)
	Put(ctx context.Context, session Session, classification *Classification) error
	Delete(ctx context.Context, session Session) error
}
