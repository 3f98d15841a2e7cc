// internal/workers/selection/select-images/models.go
package selectimages

import "listingreel-workers/internal/selection"

type Input struct {
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
	Template  string `json:"template"`
}

type Output struct {
	ImageURIs []string           `json:"imageUris"`
	Sequence  selection.Sequence `json:"sequence,omitempty"`
	Fallback  bool               `json:"fallback"`
	NumClips  int                `json:"numClips"`
}
