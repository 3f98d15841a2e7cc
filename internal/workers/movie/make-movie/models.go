// internal/workers/movie/make-movie/models.go
package makemovie

import "listingreel-workers/internal/models"

type Input struct {
	UserID        string             `json:"userId"`
	ProjectID     string             `json:"projectId"`
	Template      string             `json:"template"`
	Config        models.MovieConfig `json:"config"`
	OrderedImages []string           `json:"orderedImages,omitempty"`
	NotifyEmails  []string           `json:"notifyEmails,omitempty"`
}

type Output struct {
	Result       string   `json:"result"`
	Version      string   `json:"version"`
	VideoURI     string   `json:"videoUri"`
	VoiceoverURI string   `json:"voiceoverUri,omitempty"`
	CaptionsURI  string   `json:"captionsUri,omitempty"`
	Fallback     bool     `json:"fallback"`
	NotifyEmails []string `json:"notifyEmails,omitempty"`
}
