// internal/selection/sequence_test.go
package selection

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoCategoryModel is the minimal model most generator tests use:
// slot 1 wants an exterior, everything else rotates Kitchen then
// Exterior, no hero.
func twoCategoryModel() *Model {
	return &Model{
		Categories:      []string{"Exterior", "Kitchen"},
		HeroEnabled:     false,
		HeroStrategy:    HeroFilename,
		BoundarySmall:   map[int][]string{1: {"Exterior"}},
		BoundaryLarge:   map[int][]string{1: {"Exterior"}},
		InteriorOrder:   []string{"Kitchen", "Exterior"},
		LargeMovieClips: 10,
	}
}

func TestGenerateSequence_UnknownCategory(t *testing.T) {
	buckets := ImageBuckets{
		"Garage": {{URI: "a.jpg", Score: 1}},
	}

	_, err := GenerateSequence(twoCategoryModel(), seededPicker(1), buckets, 1)

	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestGenerateSequence_OtherBucketAlwaysValid(t *testing.T) {
	// Ranker output carries an "Other" bucket even when the model does
	// not list it.
	buckets := ImageBuckets{
		"Other": {{URI: "a.jpg", Score: 1}},
	}

	seq, err := GenerateSequence(twoCategoryModel(), seededPicker(1), buckets, 1)

	require.NoError(t, err)
	assert.Len(t, seq, 1)
}

func TestGenerateSequence_EmptyBuckets(t *testing.T) {
	tests := []struct {
		name string
		hero bool
	}{
		{name: "hero enabled", hero: true},
		{name: "hero disabled", hero: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := twoCategoryModel()
			model.HeroEnabled = tt.hero

			seq, err := GenerateSequence(model, seededPicker(1), ImageBuckets{}, 5)

			require.NoError(t, err)
			assert.Empty(t, seq)
		})
	}
}

func TestGenerateSequence_ClampsToSupply(t *testing.T) {
	buckets := ImageBuckets{
		"Exterior": {{URI: "a.jpg", Score: 1}},
		"Kitchen":  {{URI: "b.jpg", Score: 1}},
	}

	seq, err := GenerateSequence(twoCategoryModel(), seededPicker(1), buckets, 10)

	require.NoError(t, err)
	assert.Len(t, seq, 2)
}

func TestGenerateSequence_BoundaryAdherence(t *testing.T) {
	buckets := ImageBuckets{
		"Exterior": {{URI: "ext.jpg", Score: 1}},
		"Kitchen":  {{URI: "k1.jpg", Score: 1}, {URI: "k2.jpg", Score: 1}},
	}

	seq, err := GenerateSequence(twoCategoryModel(), seededPicker(1), buckets, 3)

	require.NoError(t, err)
	require.Len(t, seq, 3)
	assert.Equal(t, "Exterior", seq[0].Category)
	assert.Contains(t, seq[0].Rationale, "boundary prioritized")
}

func TestGenerateSequence_NegativeBoundaryKey(t *testing.T) {
	model := twoCategoryModel()
	model.BoundarySmall = map[int][]string{-1: {"Exterior"}}

	buckets := ImageBuckets{
		"Exterior": {{URI: "e1.jpg", Score: 1}, {URI: "e2.jpg", Score: 1}},
		"Kitchen":  {{URI: "k1.jpg", Score: 1}},
	}

	seq, err := GenerateSequence(model, seededPicker(1), buckets, 3)

	require.NoError(t, err)
	require.Len(t, seq, 3)
	// The last slot resolves against key -1 regardless of sequence length.
	assert.Equal(t, "Exterior", seq[2].Category)
}

func TestGenerateSequence_RotationFairness(t *testing.T) {
	model := &Model{
		Categories:      []string{"A", "B"},
		InteriorOrder:   []string{"A", "B"},
		LargeMovieClips: 10,
	}
	buckets := ImageBuckets{
		"A": {{URI: "a1.jpg", Score: 1}, {URI: "a2.jpg", Score: 1}},
		"B": {{URI: "b1.jpg", Score: 1}, {URI: "b2.jpg", Score: 1}},
	}

	seq, err := GenerateSequence(model, seededPicker(1), buckets, 4)

	require.NoError(t, err)
	require.Len(t, seq, 4)
	assert.Equal(t, []string{"A", "B", "A", "B"}, []string{
		seq[0].Category, seq[1].Category, seq[2].Category, seq[3].Category,
	})
}

func TestGenerateSequence_RotationSkipsEmptyCategory(t *testing.T) {
	model := &Model{
		Categories:      []string{"A", "B"},
		InteriorOrder:   []string{"A", "B"},
		LargeMovieClips: 10,
	}
	buckets := ImageBuckets{
		"A": {},
		"B": {{URI: "b1.jpg", Score: 1}, {URI: "b2.jpg", Score: 1}},
	}

	seq, err := GenerateSequence(model, seededPicker(1), buckets, 2)

	require.NoError(t, err)
	require.Len(t, seq, 2)
	assert.Equal(t, "B", seq[0].Category)
	assert.Equal(t, "B", seq[1].Category)
}

func TestGenerateSequence_InteriorFallbacks(t *testing.T) {
	// Rotation categories are dry; the slot falls to a non-rotation
	// category first, then to whatever remains.
	model := &Model{
		Categories:      []string{"A", "B", "C"},
		InteriorOrder:   []string{"A"},
		LargeMovieClips: 10,
	}
	buckets := ImageBuckets{
		"A": {},
		"B": {{URI: "b1.jpg", Score: 1}},
		"C": {},
	}

	seq, err := GenerateSequence(model, seededPicker(1), buckets, 1)

	require.NoError(t, err)
	require.Len(t, seq, 1)
	assert.Equal(t, "B", seq[0].Category)
	assert.Contains(t, seq[0].Rationale, "non-rotation category")
}

func TestGenerateSequence_BoundaryFallbackCascade(t *testing.T) {
	// The prioritized category is empty, so tier 2 draws from an
	// unused category instead of crashing.
	model := &Model{
		Categories:      []string{"Exterior", "Kitchen"},
		BoundarySmall:   map[int][]string{1: {"Exterior"}},
		BoundaryLarge:   map[int][]string{1: {"Exterior"}},
		InteriorOrder:   []string{"Kitchen"},
		LargeMovieClips: 10,
	}
	buckets := ImageBuckets{
		"Exterior": {},
		"Kitchen":  {{URI: "k1.jpg", Score: 1}},
	}

	seq, err := GenerateSequence(model, seededPicker(1), buckets, 1)

	require.NoError(t, err)
	require.Len(t, seq, 1)
	assert.Equal(t, "Kitchen", seq[0].Category)
	assert.Contains(t, seq[0].Rationale, "fallback unused category")
}

func TestGenerateSequence_BoundaryFallbackAnyCategory(t *testing.T) {
	// Two boundary slots, one spare category: the second slot finds
	// every category already burned by tier 2 and drops to tier 3.
	model := &Model{
		Categories:      []string{"Exterior", "Kitchen"},
		BoundarySmall:   map[int][]string{1: {"Exterior"}, 2: {"Exterior"}},
		BoundaryLarge:   map[int][]string{},
		InteriorOrder:   []string{},
		LargeMovieClips: 10,
	}
	buckets := ImageBuckets{
		"Exterior": {},
		"Kitchen":  {{URI: "k1.jpg", Score: 1}, {URI: "k2.jpg", Score: 1}},
	}

	seq, err := GenerateSequence(model, seededPicker(1), buckets, 2)

	require.NoError(t, err)
	require.Len(t, seq, 2)
	assert.Contains(t, seq[0].Rationale, "fallback unused category")
	assert.Contains(t, seq[1].Rationale, "any available category")
}

func TestGenerateSequence_NoDuplicates(t *testing.T) {
	model := DefaultRealEstate()
	buckets := ImageBuckets{}
	for i, cat := range model.Categories {
		for j := 0; j < 3; j++ {
			buckets[cat] = append(buckets[cat], Item{
				URI:   fmt.Sprintf("gs://p/%s-%d-%d.jpg", cat, i, j),
				Score: float64(j + 1),
			})
		}
	}

	for seed := int64(0); seed < 20; seed++ {
		seq, err := GenerateSequence(model, seededPicker(seed), buckets.Clone(), 15)

		require.NoError(t, err)
		require.Len(t, seq, 15)

		seen := map[string]bool{}
		for _, e := range seq {
			assert.False(t, seen[e.URI], "duplicate uri %s (seed %d)", e.URI, seed)
			seen[e.URI] = true
		}
		assert.Equal(t, heroRationale, seq[0].Rationale)
		for _, e := range seq[1:] {
			assert.NotEqual(t, heroRationale, e.Rationale)
		}
	}
}

func TestGenerateSequence_EndToEndExample(t *testing.T) {
	buckets := ImageBuckets{
		"Exterior": {{URI: "a.jpg", Score: 5}, {URI: "b.jpg", Score: 1}},
		"Kitchen":  {{URI: "c.jpg", Score: 3}},
	}

	seq, err := GenerateSequence(twoCategoryModel(), seededPicker(1), buckets, 3)

	require.NoError(t, err)
	require.Len(t, seq, 3)
	assert.Equal(t, "Exterior", seq[0].Category)
	assert.Equal(t, "Kitchen", seq[1].Category)
	assert.Equal(t, "c.jpg", seq[1].URI)
	assert.Equal(t, "Exterior", seq[2].Category)
	assert.NotEqual(t, seq[0].URI, seq[2].URI)
}
