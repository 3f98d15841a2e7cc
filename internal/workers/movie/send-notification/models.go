// internal/workers/movie/send-notification/models.go
package sendnotification

type Input struct {
	UserID           string                 `json:"userId"`
	ProjectID        string                 `json:"projectId"`
	NotificationType string                 `json:"notificationType"`
	Emails           []string               `json:"notifyEmails,omitempty"`
	Phone            string                 `json:"notifyPhone,omitempty"`
	VideoURI         string                 `json:"videoUri,omitempty"`
	Reason           string                 `json:"reason,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeMovieReady  = "movie_ready"
	TypeMovieFailed = "movie_failed"
)

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
