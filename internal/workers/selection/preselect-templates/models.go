// internal/workers/selection/preselect-templates/models.go
package preselecttemplates

type Input struct {
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
}

type Output struct {
	Preselections    map[string][]string `json:"preselections"`
	SkippedTemplates []string            `json:"skippedTemplates,omitempty"`
}
