// internal/selection/picker.go
package selection

import (
	"math/rand"
	"time"
)

// Picker draws one item from a list with probability proportional to
// its score and removes it from the source (sampling without
// replacement). It is the sole mutator of bucket contents.
type Picker struct {
	rng *rand.Rand
}

// NewPicker returns a Picker backed by rng. Pass nil for a
// time-seeded source; tests inject a fixed seed for determinism.
func NewPicker(rng *rand.Rand) *Picker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Picker{rng: rng}
}

// Pick draws one item weighted by score. When every score is zero the
// draw degrades to uniform instead of dividing by zero. Returns the
// chosen item, the list with it removed, and false when items is empty.
func (p *Picker) Pick(items []Item) (Item, []Item, bool) {
	if len(items) == 0 {
		return Item{}, items, false
	}
	chosen := items[p.weightedIndex(items)]
	return chosen, removeByURI(items, chosen.URI), true
}

// PickFromCategory weighted-picks from one bucket and writes the shrunk
// list back immediately so subsequent picks see the removal.
func (p *Picker) PickFromCategory(buckets ImageBuckets, category string) (Item, bool) {
	chosen, remaining, ok := p.Pick(buckets[category])
	if !ok {
		return Item{}, false
	}
	buckets[category] = remaining
	return chosen, true
}

// candidate is a bucket item paired with the category it came from,
// used by cross-category fallback draws.
type candidate struct {
	category string
	Item
}

func (p *Picker) pickCandidate(cands []candidate) (candidate, bool) {
	if len(cands) == 0 {
		return candidate{}, false
	}
	total := 0.0
	for _, c := range cands {
		if c.Score > 0 {
			total += c.Score
		}
	}
	if total <= 0 {
		return cands[p.rng.Intn(len(cands))], true
	}
	r := p.rng.Float64() * total
	for _, c := range cands {
		if c.Score <= 0 {
			continue
		}
		r -= c.Score
		if r < 0 {
			return c, true
		}
	}
	// Float rounding can leave r at exactly zero after the last weight.
	return cands[len(cands)-1], true
}

func (p *Picker) weightedIndex(items []Item) int {
	total := 0.0
	for _, it := range items {
		if it.Score > 0 {
			total += it.Score
		}
	}
	if total <= 0 {
		return p.rng.Intn(len(items))
	}
	r := p.rng.Float64() * total
	last := 0
	for i, it := range items {
		if it.Score <= 0 {
			continue
		}
		r -= it.Score
		if r < 0 {
			return i
		}
		last = i
	}
	return last
}

func removeByURI(items []Item, uri string) []Item {
	kept := make([]Item, 0, len(items)-1)
	for _, it := range items {
		if it.URI == uri {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}
