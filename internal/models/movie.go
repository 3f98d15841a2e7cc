// internal/models/movie.go
package models

import "time"

// ActionState is the terminal state of one movie-pipeline action.
type ActionState string

const (
	StatePending ActionState = "PENDING"
	StateSuccess ActionState = "SUCCESS"
	StateFailure ActionState = "FAILURE"
)

// ActionStatus reports how an action ended and, on failure, why.
type ActionStatus struct {
	State  ActionState `json:"state"`
	Reason string      `json:"reason,omitempty"`
}

func Success() ActionStatus {
	return ActionStatus{State: StateSuccess}
}

func Failure(reason string) ActionStatus {
	return ActionStatus{State: StateFailure, Reason: reason}
}

// MovieConfig carries the caller's rendering preferences. The engine
// only cares about the pieces that change how many image clips the
// template needs; the rest passes through to the renderer.
type MovieConfig struct {
	Orientation string `json:"orientation,omitempty"`
	EndTitles   string `json:"endTitles,omitempty"`
	Voiceover   bool   `json:"voiceover,omitempty"`
	Captions    bool   `json:"captions,omitempty"`
	Watermark   bool   `json:"watermark,omitempty"`
}

// MakeMovieRequest asks for one rendered listing video. OrderedImages,
// when supplied, bypasses classification-driven selection entirely.
type MakeMovieRequest struct {
	Session       Session     `json:"session"`
	Template      string      `json:"template"`
	Config        MovieConfig `json:"config"`
	OrderedImages []string    `json:"orderedImages,omitempty"`
	NotifyEmails  []string    `json:"notifyEmails,omitempty"`
}

type MakeMovieResponse struct {
	Result       ActionStatus `json:"result"`
	Version      string       `json:"version,omitempty"`
	VideoURI     string       `json:"videoUri,omitempty"`
	VoiceoverURI string       `json:"voiceoverUri,omitempty"`
	CaptionsURI  string       `json:"captionsUri,omitempty"`
}

// VersionSnapshot is one row of the movie_versions table: a record of
// one rendering attempt against a project, keyed by a generated
// version id.
type VersionSnapshot struct {
	ID        string      `json:"id" db:"id"`
	UserID    string      `json:"userId" db:"user_id"`
	ProjectID string      `json:"projectId" db:"project_id"`
	Template  string      `json:"template" db:"template"`
	State     ActionState `json:"state" db:"state"`
	Reason    string      `json:"reason,omitempty" db:"reason"`
	VideoURI  string      `json:"videoUri,omitempty" db:"video_uri"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// ProjectStats are per-project movie counters surfaced to the UI.
type ProjectStats struct {
	MoviesRequested int `json:"moviesRequested"`
	MoviesCompleted int `json:"moviesCompleted"`
	MoviesFailed    int `json:"moviesFailed"`
}
