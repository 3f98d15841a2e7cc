// internal/selection/selector.go
package selection

import (
	"errors"
	"fmt"
	"sort"

	"listingreel-workers/internal/common/logger"
)

var (
	ErrInsufficientImages = errors.New("not enough images for requested clip count")
)

// Selector is the public entry point for picking a shot list from a
// bucket snapshot. It never mutates the caller's buckets and never
// lets a generation failure crash the movie pipeline: anything other
// than a configuration error degrades to a deterministic lexicographic
// fallback.
type Selector struct {
	model  *Model
	picker *Picker
	logger logger.Logger
}

func NewSelector(model *Model, picker *Picker, log logger.Logger) *Selector {
	return &Selector{
		model:  model,
		picker: picker,
		logger: log.WithFields(map[string]interface{}{"component": "selector"}),
	}
}

// Result is the outcome of one selection run. Sequence is nil when the
// lexicographic fallback fired, in which case URIs still holds a usable
// shot list.
type Result struct {
	URIs     []string
	Sequence Sequence
	Fallback bool
}

// Select picks numClips photo URIs from buckets. available is the full
// set of source photo URIs and feeds the lexicographic fallback; when
// empty, the buckets' own URIs stand in.
//
// Returns ErrInsufficientImages when the buckets cannot cover the
// requested clip count, and surfaces configuration errors (unknown
// category, unknown hero strategy) unmasked. Everything else is logged
// and answered with the fallback list.
func (s *Selector) Select(buckets ImageBuckets, numClips int, available []string) (*Result, error) {
	total := buckets.TotalItems()
	if total < numClips {
		return nil, fmt.Errorf("%w: required %d, available %d", ErrInsufficientImages, numClips, total)
	}

	seq, err := runGuarded(func() (Sequence, error) {
		return GenerateSequence(s.model, s.picker, buckets.Clone(), numClips)
	})
	if err != nil {
		if errors.Is(err, ErrUnknownCategory) || errors.Is(err, ErrInvalidHeroStrategy) {
			return nil, err
		}
		s.logger.Error("sequence generation failed, falling back to lexicographic order", map[string]interface{}{
			"error":    err.Error(),
			"numClips": numClips,
		})
		return &Result{
			URIs:     lexicographicFallback(buckets, available, numClips),
			Fallback: true,
		}, nil
	}

	return &Result{URIs: seq.URIs(), Sequence: seq}, nil
}

// runGuarded converts a panic inside the generation run into an error
// so the orchestrator's fallback path sees it like any other failure.
func runGuarded(fn func() (Sequence, error)) (seq Sequence, err error) {
	defer func() {
		if r := recover(); r != nil {
			seq = nil
			err = fmt.Errorf("sequence generation panicked: %v", r)
		}
	}()
	return fn()
}

// lexicographicFallback sorts the originally available photo URIs and
// takes the first numClips, so selection always yields something even
// when generation blows up.
func lexicographicFallback(buckets ImageBuckets, available []string, numClips int) []string {
	uris := available
	if len(uris) == 0 {
		uris = buckets.URIs()
	}
	sorted := make([]string, len(uris))
	copy(sorted, uris)
	sort.Strings(sorted)
	if len(sorted) > numClips {
		sorted = sorted[:numClips]
	}
	return sorted
}
