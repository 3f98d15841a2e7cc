// internal/selection/buckets.go
package selection

import "sort"

// Item is one candidate photo inside a category bucket.
type Item struct {
	URI   string  `json:"uri"`
	Score float64 `json:"score"`
}

// ImageBuckets maps a room category to its candidate photos, ordered by
// descending score. Buckets shrink as photos are selected; a URI never
// appears in more than one bucket.
type ImageBuckets map[string][]Item

// Clone returns a deep copy so one generation run can consume the
// buckets destructively without touching the caller's snapshot.
func (b ImageBuckets) Clone() ImageBuckets {
	copied := make(ImageBuckets, len(b))
	for cat, items := range b {
		dup := make([]Item, len(items))
		copy(dup, items)
		copied[cat] = dup
	}
	return copied
}

// TotalItems counts the photos remaining across all categories.
func (b ImageBuckets) TotalItems() int {
	total := 0
	for _, items := range b {
		total += len(items)
	}
	return total
}

// SortByScore re-sorts every bucket by descending score. The sort is
// stable, so equally scored photos keep their relative order.
func (b ImageBuckets) SortByScore() {
	for cat := range b {
		items := b[cat]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Score > items[j].Score
		})
	}
}

// URIs returns every remaining photo URI, sorted lexicographically.
func (b ImageBuckets) URIs() []string {
	uris := make([]string, 0, b.TotalItems())
	for _, items := range b {
		for _, it := range items {
			uris = append(uris, it.URI)
		}
	}
	sort.Strings(uris)
	return uris
}

// Remove deletes the photo with the given URI from a category and
// reports whether it was present. Removal is by URI, not index, since
// duplicate scores make index-based removal ambiguous.
func (b ImageBuckets) Remove(category, uri string) bool {
	items, ok := b[category]
	if !ok {
		return false
	}
	kept := items[:0]
	found := false
	for _, it := range items {
		if it.URI == uri {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	b[category] = kept
	return found
}
