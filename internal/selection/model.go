// internal/selection/model.go
package selection

import "fmt"

// HeroStrategy selects how the lead image of a sequence is chosen.
type HeroStrategy string

const (
	// HeroFilename picks the first image after sorting all candidates by
	// base filename. Deterministic, no randomness.
	HeroFilename HeroStrategy = "FILENAME"
	// HeroHighScore picks the highest-scored image across all buckets.
	HeroHighScore HeroStrategy = "HIGH_SCORE"
	// HeroCustomExterior prefers the filename-first image when it is an
	// exterior shot, otherwise weighted-picks from the Exterior bucket.
	HeroCustomExterior HeroStrategy = "CUSTOM_EXTERIOR"
)

const (
	// CategoryOther is the catch-all bucket for photos the categorizer
	// could not place in a configured category.
	CategoryOther = "Other"

	categoryExterior = "Exterior"
)

// Model is the per-vertical selection configuration: the closed set of
// categories, the hero policy, positional overrides for boundary clips
// and the rotation order for everything in between. It is constant for
// the duration of one selection request.
type Model struct {
	Categories      []string         `json:"categories"`
	HeroEnabled     bool             `json:"heroEnabled"`
	HeroStrategy    HeroStrategy     `json:"heroStrategy"`
	BoundarySmall   map[int][]string `json:"boundarySmall"`
	BoundaryLarge   map[int][]string `json:"boundaryLarge"`
	InteriorOrder   []string         `json:"interiorOrder"`
	LargeMovieClips int              `json:"largeMovieClips"`
}

// HasCategory reports whether name is a configured category. The
// catch-all "Other" bucket is always legal.
func (m *Model) HasCategory(name string) bool {
	if name == CategoryOther {
		return true
	}
	for _, cat := range m.Categories {
		if cat == name {
			return true
		}
	}
	return false
}

// AllCategories returns the configured categories with "Other" appended
// when not already listed. Used wherever buckets must be walked in a
// deterministic order.
func (m *Model) AllCategories() []string {
	for _, cat := range m.Categories {
		if cat == CategoryOther {
			return m.Categories
		}
	}
	return append(append([]string{}, m.Categories...), CategoryOther)
}

// FallbackCategories returns the categories outside the interior
// rotation, in configured order. These absorb interior clips once the
// rotation categories run dry.
func (m *Model) FallbackCategories() []string {
	inRotation := make(map[string]bool, len(m.InteriorOrder))
	for _, cat := range m.InteriorOrder {
		inRotation[cat] = true
	}
	var out []string
	for _, cat := range m.Categories {
		if !inRotation[cat] {
			out = append(out, cat)
		}
	}
	return out
}

// BoundaryPriorities returns the boundary map for a movie of numClips
// clips: the small map below the large-movie threshold, the large map
// at or above it.
func (m *Model) BoundaryPriorities(numClips int) map[int][]string {
	if numClips < m.LargeMovieClips {
		return m.BoundarySmall
	}
	return m.BoundaryLarge
}

// Validate rejects models that would only fail later, mid-selection:
// empty category sets, unknown hero strategies, rotation or boundary
// entries naming unconfigured categories, zero boundary keys.
func (m *Model) Validate() error {
	if len(m.Categories) == 0 {
		return fmt.Errorf("selection model: no categories configured")
	}
	if m.HeroEnabled {
		switch m.HeroStrategy {
		case HeroFilename, HeroHighScore, HeroCustomExterior:
		default:
			return fmt.Errorf("%w: %q", ErrInvalidHeroStrategy, m.HeroStrategy)
		}
	}
	for _, cat := range m.InteriorOrder {
		if !m.HasCategory(cat) {
			return fmt.Errorf("selection model: interior order names unknown category %q", cat)
		}
	}
	for name, boundaries := range map[string]map[int][]string{"small": m.BoundarySmall, "large": m.BoundaryLarge} {
		for key, cats := range boundaries {
			if key == 0 {
				return fmt.Errorf("selection model: %s boundary map has zero key", name)
			}
			for _, cat := range cats {
				if !m.HasCategory(cat) {
					return fmt.Errorf("selection model: %s boundary key %d names unknown category %q", name, key, cat)
				}
			}
		}
	}
	if m.LargeMovieClips <= 0 {
		return fmt.Errorf("selection model: large movie threshold must be positive")
	}
	return nil
}

// DefaultRealEstate is the stock residential listing model: exteriors
// open the movie, outdoor and neighborhood shots close it, and the
// interior rotation cycles the main living spaces.
func DefaultRealEstate() *Model {
	return &Model{
		Categories: []string{
			"Exterior", "Living", "Dining", "Kitchen", "Bedroom", "Bathroom",
			"Pool", "Backyard", "Neighborhood", "Plan", "Other",
		},
		HeroEnabled:  true,
		HeroStrategy: HeroFilename,
		BoundarySmall: map[int][]string{
			1:  {"Exterior", "Backyard", "Living"},
			-1: {"Pool", "Backyard", "Neighborhood", "Exterior"},
		},
		BoundaryLarge: map[int][]string{
			1:  {"Exterior", "Backyard", "Living"},
			-2: {"Pool", "Backyard", "Neighborhood", "Living", "Kitchen"},
			-1: {"Neighborhood", "Backyard", "Exterior", "Pool"},
		},
		InteriorOrder:   []string{"Living", "Dining", "Kitchen", "Bedroom"},
		LargeMovieClips: 10,
	}
}
