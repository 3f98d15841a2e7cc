// internal/selection/interior.go
package selection

import "fmt"

// pickInterior fills a non-boundary slot by rotating through the
// interior category queue. The queue persists across the whole
// generation run, so categories round-robin for as long as they have
// supply. Two fallback tiers follow: categories outside the rotation,
// then anything left at all.
func (g *generator) pickInterior(clipIdx int) (SequenceEntry, bool) {
	for range g.rotation {
		cat := g.rotation[0]
		// Rotate regardless of outcome so an empty category does not
		// stall the queue.
		g.rotation = append(g.rotation[1:], cat)
		if item, ok := g.picker.PickFromCategory(g.buckets, cat); ok {
			return SequenceEntry{
				URI:       item.URI,
				Category:  cat,
				Rationale: fmt.Sprintf("selected interior image from %q (clip %d)", cat, clipIdx),
				Score:     item.Score,
			}, true
		}
	}

	var outside []candidate
	for _, cat := range g.fallbacks {
		for _, it := range g.buckets[cat] {
			outside = append(outside, candidate{category: cat, Item: it})
		}
	}
	if chosen, ok := g.picker.pickCandidate(outside); ok {
		g.buckets.Remove(chosen.category, chosen.URI)
		return SequenceEntry{
			URI:       chosen.URI,
			Category:  chosen.category,
			Rationale: fmt.Sprintf("selected interior image from non-rotation category %q (clip %d)", chosen.category, clipIdx),
			Score:     chosen.Score,
		}, true
	}

	if chosen, ok := g.picker.pickCandidate(g.flatten()); ok {
		g.buckets.Remove(chosen.category, chosen.URI)
		return SequenceEntry{
			URI:       chosen.URI,
			Category:  chosen.category,
			Rationale: fmt.Sprintf("selected interior image from any available category %q (clip %d)", chosen.category, clipIdx),
			Score:     chosen.Score,
		}, true
	}

	return SequenceEntry{}, false
}
