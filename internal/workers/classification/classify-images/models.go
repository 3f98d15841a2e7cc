// internal/workers/classification/classify-images/models.go
package classifyimages

type Input struct {
	UserID         string   `json:"userId"`
	ProjectID      string   `json:"projectId"`
	ImageURIs      []string `json:"imageUris"`
	ExcludedImages []string `json:"excludedImages,omitempty"`
}

type Output struct {
	TotalImages    int            `json:"totalImages"`
	CategoryCounts map[string]int `json:"categoryCounts"`
	SkippedURIs    []string       `json:"skippedUris,omitempty"`
}
