// internal/selection/sequence.go
package selection

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCategory = errors.New("bucket category not in configured model")
)

// SequenceEntry records one chosen photo together with the strategy or
// fallback tier that picked it, so selections can be audited after the
// fact.
type SequenceEntry struct {
	URI       string  `json:"uri"`
	Category  string  `json:"category"`
	Rationale string  `json:"rationale"`
	Score     float64 `json:"score"`
}

// Sequence is the ordered shot list for one movie. Entry 0 is the hero
// shot when hero mode is enabled.
type Sequence []SequenceEntry

// URIs returns the sequence's photo URIs in order.
func (s Sequence) URIs() []string {
	uris := make([]string, len(s))
	for i, e := range s {
		uris[i] = e.URI
	}
	return uris
}

// generator holds the mutable state of one sequence run: the shrinking
// buckets, the interior rotation queue and the set of categories
// already burned by boundary fallbacks. It is owned by exactly one
// GenerateSequence call and never shared.
type generator struct {
	model        *Model
	picker       *Picker
	buckets      ImageBuckets
	boundaries   map[int][]string
	rotation     []string
	fallbacks    []string
	fallbackUsed map[string]bool
}

// GenerateSequence produces an ordered shot list of up to numClips
// photos, consuming buckets destructively. Callers that need their
// snapshot preserved must pass a clone.
//
// The run validates the bucket categories, clamps numClips to the
// available supply, places the hero shot when enabled and then fills
// each slot through the boundary resolver or the interior rotator.
// Exhausting the buckets mid-run ends the sequence early; that is a
// short result, not an error.
func GenerateSequence(model *Model, picker *Picker, buckets ImageBuckets, numClips int) (Sequence, error) {
	for cat := range buckets {
		if !model.HasCategory(cat) {
			return nil, fmt.Errorf("%w: %q (valid: %v)", ErrUnknownCategory, cat, model.Categories)
		}
	}
	buckets.SortByScore()

	total := buckets.TotalItems()
	if model.HeroEnabled {
		if total == 0 {
			return Sequence{}, nil
		}
		if numClips > total {
			numClips = total
		}
	} else if total < numClips {
		numClips = total
	}
	if numClips <= 0 {
		return Sequence{}, nil
	}

	g := &generator{
		model:        model,
		picker:       picker,
		buckets:      buckets,
		boundaries:   model.BoundaryPriorities(numClips),
		rotation:     append([]string{}, model.InteriorOrder...),
		fallbacks:    model.FallbackCategories(),
		fallbackUsed: make(map[string]bool),
	}

	seq := Sequence{}
	start := 1
	if model.HeroEnabled {
		hero, ok, err := g.pickHero()
		if err != nil {
			return nil, err
		}
		if !ok {
			return Sequence{}, nil
		}
		seq = append(seq, hero)
		start = 2
	}

	for i := start; i <= numClips; i++ {
		var entry SequenceEntry
		var ok bool
		if key, bounded := boundaryKey(g.boundaries, i, numClips); bounded {
			entry, ok = g.pickBoundary(i, g.boundaries[key])
		} else {
			entry, ok = g.pickInterior(i)
		}
		if !ok {
			// Buckets ran dry; return what we have.
			break
		}
		seq = append(seq, entry)
	}

	return seq, nil
}
