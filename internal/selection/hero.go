// internal/selection/hero.go
package selection

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidHeroStrategy = errors.New("invalid hero selection strategy")
)

const heroRationale = "selected hero image"

// pickHero chooses the lead image per the model's hero strategy and
// removes it from its bucket. ok is false when the buckets are empty.
func (g *generator) pickHero() (SequenceEntry, bool, error) {
	all := g.flatten()
	if len(all) == 0 {
		return SequenceEntry{}, false, nil
	}

	var hero candidate
	switch g.model.HeroStrategy {
	case HeroFilename:
		hero = filenameFirst(all)
	case HeroHighScore:
		hero = all[0]
		for _, c := range all[1:] {
			if c.Score > hero.Score {
				hero = c
			}
		}
	case HeroCustomExterior:
		hero = g.pickHeroExterior(all)
	default:
		return SequenceEntry{}, false, fmt.Errorf("%w: %q", ErrInvalidHeroStrategy, g.model.HeroStrategy)
	}

	g.buckets.Remove(hero.category, hero.URI)
	return SequenceEntry{
		URI:       hero.URI,
		Category:  hero.category,
		Rationale: heroRationale,
		Score:     hero.Score,
	}, true, nil
}

// pickHeroExterior prefers the filename-first image when it already is
// an exterior shot; otherwise it weighted-picks from the Exterior
// bucket, falling back to the filename-first image whatever its
// category when no exterior shot remains.
func (g *generator) pickHeroExterior(all []candidate) candidate {
	first := filenameFirst(all)
	if first.category == categoryExterior {
		return first
	}
	if item, ok := g.picker.PickFromCategory(g.buckets, categoryExterior); ok {
		return candidate{category: categoryExterior, Item: item}
	}
	return first
}

// flatten collects every remaining (category, item) pair, walking
// categories in configured order so the result is deterministic.
func (g *generator) flatten() []candidate {
	var all []candidate
	for _, cat := range g.model.AllCategories() {
		for _, it := range g.buckets[cat] {
			all = append(all, candidate{category: cat, Item: it})
		}
	}
	return all
}

func filenameFirst(all []candidate) candidate {
	sorted := make([]candidate, len(all))
	copy(sorted, all)
	sort.SliceStable(sorted, func(i, j int) bool {
		return baseName(sorted[i].URI) < baseName(sorted[j].URI)
	})
	return sorted[0]
}

// baseName returns the portion of a URI after the last slash.
func baseName(uri string) string {
	if idx := strings.LastIndexByte(uri, '/'); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}
