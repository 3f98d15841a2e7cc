// internal/selection/boundary.go
package selection

import "fmt"

// boundaryKey resolves whether a clip slot carries a positional
// category override. Positive keys are 1-based from the front, negative
// keys 1-based from the back (the last clip is always -1). A positive
// match wins when both keys are configured, which can only happen on
// very short sequences.
func boundaryKey(priorities map[int][]string, clipIdx, totalClips int) (int, bool) {
	posKey := clipIdx
	negKey := -(totalClips - clipIdx + 1)
	if _, ok := priorities[posKey]; ok {
		return posKey, true
	}
	if _, ok := priorities[negKey]; ok {
		return negKey, true
	}
	return 0, false
}

// pickBoundary fills a boundary slot via a three-tier cascade: the
// slot's priority list in order, then any category not yet burned as a
// boundary fallback, then anything left at all. ok is false only when
// the buckets are fully exhausted.
func (g *generator) pickBoundary(clipIdx int, priorityList []string) (SequenceEntry, bool) {
	for _, cat := range priorityList {
		if item, ok := g.picker.PickFromCategory(g.buckets, cat); ok {
			return SequenceEntry{
				URI:       item.URI,
				Category:  cat,
				Rationale: fmt.Sprintf("selected boundary prioritized image (clip %d)", clipIdx),
				Score:     item.Score,
			}, true
		}
	}

	// Every prioritized category was empty. Spread the damage across
	// categories not already used up by an earlier boundary fallback.
	var unused []candidate
	for _, cat := range g.model.AllCategories() {
		if g.fallbackUsed[cat] {
			continue
		}
		for _, it := range g.buckets[cat] {
			unused = append(unused, candidate{category: cat, Item: it})
		}
	}
	if chosen, ok := g.picker.pickCandidate(unused); ok {
		g.buckets.Remove(chosen.category, chosen.URI)
		g.fallbackUsed[chosen.category] = true
		return SequenceEntry{
			URI:       chosen.URI,
			Category:  chosen.category,
			Rationale: fmt.Sprintf("selected boundary image from fallback unused category (clip %d)", clipIdx),
			Score:     chosen.Score,
		}, true
	}

	if chosen, ok := g.picker.pickCandidate(g.flatten()); ok {
		g.buckets.Remove(chosen.category, chosen.URI)
		return SequenceEntry{
			URI:       chosen.URI,
			Category:  chosen.category,
			Rationale: fmt.Sprintf("selected boundary image from any available category (clip %d)", clipIdx),
			Score:     chosen.Score,
		}, true
	}

	return SequenceEntry{}, false
}
