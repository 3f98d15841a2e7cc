// internal/selection/ranker.go
package selection

// LabeledImage is the categorizer collaborator's verdict for one photo:
// where it belongs and how rich its detected features were. Category
// may be empty or unrecognized; the ranker normalizes it.
type LabeledImage struct {
	URI      string  `json:"uri"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Rank buckets labeled photos by category and sorts each bucket by
// descending score. Photos with a category outside the configured set
// are folded into "Other" rather than rejected.
func Rank(images []LabeledImage, categories []string) ImageBuckets {
	buckets := make(ImageBuckets, len(categories)+1)
	known := make(map[string]bool, len(categories))
	for _, cat := range categories {
		buckets[cat] = []Item{}
		known[cat] = true
	}
	if !known[CategoryOther] {
		buckets[CategoryOther] = []Item{}
	}

	for _, img := range images {
		cat := img.Category
		if !known[cat] && cat != CategoryOther {
			cat = CategoryOther
		}
		buckets[cat] = append(buckets[cat], Item{URI: img.URI, Score: img.Score})
	}

	buckets.SortByScore()
	return buckets
}
