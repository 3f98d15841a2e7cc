// internal/models/template.go
package models

// ClipSource tells the renderer where a clip's content comes from.
type ClipSource string

const (
	ClipImage    ClipSource = "image"
	ClipTitle    ClipSource = "title"
	ClipPresents ClipSource = "presents"
	ClipEndTitle ClipSource = "end_title"
)

// Clip is one slot of an edit decision list.
type Clip struct {
	Source     ClipSource `json:"source"`
	Duration   float64    `json:"duration"`
	Effect     string     `json:"effect,omitempty"`
	Transition string     `json:"transition,omitempty"`
}

// Template is an edit decision list: the clip-by-clip skeleton of one
// movie style. The number of image clips drives how many photos the
// selection engine must supply.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Orientation string `json:"orientation,omitempty"`
	Clips       []Clip `json:"clips"`
}

// ImageClipCount counts the clips that need a photo. Title, presents
// and end-title clips render generated frames and consume none.
func (t *Template) ImageClipCount() int {
	count := 0
	for _, c := range t.Clips {
		if c.Source == ClipImage {
			count++
		}
	}
	return count
}
