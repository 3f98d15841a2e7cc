// internal/workers/classification/classify-images/handler_test.go
package classifyimages

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listingreel-workers/internal/common/gcp"
	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"
	"listingreel-workers/internal/selection"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		MaxLabels: 20,
		Timeout:   3 * time.Second,
	}
}

type fakeLabeler struct {
	labels map[string][]gcp.ImageLabel
	fail   map[string]bool
}

func (f *fakeLabeler) DetectLabels(_ context.Context, uri string) ([]gcp.ImageLabel, error) {
	if f.fail[uri] {
		return nil, fmt.Errorf("vision unavailable")
	}
	return f.labels[uri], nil
}

func (f *fakeLabeler) Close() error { return nil }

type fakeCategorizer struct {
	err error
}

// Categorizes on simple keyword rules so tests stay deterministic.
func (f *fakeCategorizer) Categorize(_ context.Context, labels []string, _ []string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	joined := strings.ToLower(strings.Join(labels, " "))
	switch {
	case strings.Contains(joined, "facade"):
		return "Exterior", nil
	case strings.Contains(joined, "stove"):
		return "Kitchen", nil
	default:
		return "Other", nil
	}
}

type memoryStore struct {
	data map[string]*models.Classification
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]*models.Classification{}}
}

func (m *memoryStore) Get(_ context.Context, session models.Session) (*models.Classification, error) {
	c, ok := m.data[session.ClassificationKey()]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return c, nil
}

func (m *memoryStore) Put(_ context.Context, session models.Session, c *models.Classification) error {
	m.data[session.ClassificationKey()] = c
	return nil
}

func (m *memoryStore) Delete(_ context.Context, session models.Session) error {
	delete(m.data, session.ClassificationKey())
	return nil
}

type fakeBucket struct {
	keys []string
}

func (f *fakeBucket) Upload(_ context.Context, _ string, _ io.Reader) error { return nil }

func (f *fakeBucket) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeBucket) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeBucket) ListKeys(_ context.Context, prefix string) ([]string, error) {
	var out []string
	for _, k := range f.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeBucket) ObjectURI(key string) string { return "gs://photos/" + key }

func newTestHandler(labeler *fakeLabeler, categorizer *fakeCategorizer, store *memoryStore) *Handler {
	model := selection.DefaultRealEstate()
	return NewHandler(createTestConfig(), labeler, categorizer, store, nil, model, logger.NewNoOpLogger())
}

// ==========================
// Tests
// ==========================

func TestExecute_ClassifiesAndStores(t *testing.T) {
	labeler := &fakeLabeler{labels: map[string][]gcp.ImageLabel{
		"gs://p/front.jpg": {{Description: "Facade", Score: 0.9}, {Description: "House", Score: 0.8}},
		"gs://p/stove.jpg": {{Description: "Stove", Score: 0.95}},
		"gs://p/blur.jpg":  {},
	}}
	store := newMemoryStore()
	h := newTestHandler(labeler, &fakeCategorizer{}, store)

	output, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		ProjectID: "proj-1",
		ImageURIs: []string{"gs://p/front.jpg", "gs://p/stove.jpg", "gs://p/blur.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, output.TotalImages)
	assert.Equal(t, 1, output.CategoryCounts["Exterior"])
	assert.Equal(t, 1, output.CategoryCounts["Kitchen"])
	assert.Equal(t, 1, output.CategoryCounts["Other"])
	assert.Empty(t, output.SkippedURIs)

	stored, err := store.Get(context.Background(), models.Session{UserID: "user-1", ProjectID: "proj-1"})
	require.NoError(t, err)
	require.Len(t, stored.Buckets["Exterior"], 1)
	assert.Equal(t, "gs://p/front.jpg", stored.Buckets["Exterior"][0].URI)
	assert.Equal(t, 2.0, stored.Buckets["Exterior"][0].Score)
}

func TestExecute_UnlabeledImageGetsFloorScore(t *testing.T) {
	labeler := &fakeLabeler{labels: map[string][]gcp.ImageLabel{
		"gs://p/blur.jpg": {},
	}}
	store := newMemoryStore()
	h := newTestHandler(labeler, &fakeCategorizer{}, store)

	_, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		ProjectID: "proj-1",
		ImageURIs: []string{"gs://p/blur.jpg"},
	})
	require.NoError(t, err)

	stored, err := store.Get(context.Background(), models.Session{UserID: "user-1", ProjectID: "proj-1"})
	require.NoError(t, err)
	require.Len(t, stored.Buckets["Other"], 1)
	assert.Equal(t, 1.0, stored.Buckets["Other"][0].Score)
}

func TestExecute_SkipsFailedLabels(t *testing.T) {
	labeler := &fakeLabeler{
		labels: map[string][]gcp.ImageLabel{
			"gs://p/ok.jpg": {{Description: "Facade", Score: 0.9}},
		},
		fail: map[string]bool{"gs://p/bad.jpg": true},
	}
	store := newMemoryStore()
	h := newTestHandler(labeler, &fakeCategorizer{}, store)

	output, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		ProjectID: "proj-1",
		ImageURIs: []string{"gs://p/ok.jpg", "gs://p/bad.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.TotalImages)
	assert.Equal(t, []string{"gs://p/bad.jpg"}, output.SkippedURIs)
}

func TestExecute_SkipsMalformedURI(t *testing.T) {
	labeler := &fakeLabeler{labels: map[string][]gcp.ImageLabel{
		"gs://p/ok.jpg": {{Description: "Facade", Score: 0.9}},
	}}
	store := newMemoryStore()
	h := newTestHandler(labeler, &fakeCategorizer{}, store)

	output, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		ProjectID: "proj-1",
		ImageURIs: []string{"gs://p/ok.jpg", "/local/path.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.TotalImages)
	assert.Equal(t, []string{"/local/path.jpg"}, output.SkippedURIs)
}

func TestExecute_AllImagesFailed(t *testing.T) {
	labeler := &fakeLabeler{fail: map[string]bool{"gs://p/bad.jpg": true}}
	h := newTestHandler(labeler, &fakeCategorizer{}, newMemoryStore())

	_, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		ProjectID: "proj-1",
		ImageURIs: []string{"gs://p/bad.jpg"},
	})
	assert.ErrorContains(t, err, "failed labeling")
}

func TestExecute_CategorizerErrorSurfaces(t *testing.T) {
	labeler := &fakeLabeler{labels: map[string][]gcp.ImageLabel{
		"gs://p/a.jpg": {{Description: "Facade", Score: 0.9}},
	}}
	h := newTestHandler(labeler, &fakeCategorizer{err: fmt.Errorf("model timeout")}, newMemoryStore())

	_, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		ProjectID: "proj-1",
		ImageURIs: []string{"gs://p/a.jpg"},
	})
	assert.ErrorContains(t, err, "model timeout")
}

func TestExecute_ListsBucketWhenNoURIsGiven(t *testing.T) {
	bucket := &fakeBucket{keys: []string{
		"user-1/proj-1/photos/front.jpg",
		"user-1/proj-1/photos/notes.txt",
		"user-2/proj-9/photos/other.jpg",
	}}
	labeler := &fakeLabeler{labels: map[string][]gcp.ImageLabel{
		"gs://photos/user-1/proj-1/photos/front.jpg": {{Description: "Facade", Score: 0.9}},
	}}
	store := newMemoryStore()
	h := NewHandler(createTestConfig(), labeler, &fakeCategorizer{}, store, bucket,
		selection.DefaultRealEstate(), logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		ProjectID: "proj-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.TotalImages)
	assert.Equal(t, 1, output.CategoryCounts["Exterior"])
}

func TestExecute_ExcludedImagesSkippedWhenListing(t *testing.T) {
	bucket := &fakeBucket{keys: []string{
		"user-1/proj-1/photos/front.jpg",
		"user-1/proj-1/photos/pool.jpg",
	}}
	labeler := &fakeLabeler{labels: map[string][]gcp.ImageLabel{
		"gs://photos/user-1/proj-1/photos/front.jpg": {{Description: "Facade", Score: 0.9}},
		"gs://photos/user-1/proj-1/photos/pool.jpg":  {{Description: "Swimming pool", Score: 0.9}},
	}}
	store := newMemoryStore()
	h := NewHandler(createTestConfig(), labeler, &fakeCategorizer{}, store, bucket,
		selection.DefaultRealEstate(), logger.NewNoOpLogger())

	output, err := h.Execute(context.Background(), &Input{
		UserID:         "user-1",
		ProjectID:      "proj-1",
		ExcludedImages: []string{"pool.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, output.TotalImages)
	assert.Equal(t, 1, output.CategoryCounts["Exterior"])
	assert.Zero(t, output.CategoryCounts["Other"])
}

func TestExecute_InvalidInput(t *testing.T) {
	h := newTestHandler(&fakeLabeler{}, &fakeCategorizer{}, newMemoryStore())

	_, err := h.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)

	_, err = h.Execute(context.Background(), &Input{UserID: "user-1", ProjectID: "proj-1"})
	assert.ErrorIs(t, err, ErrNoImages)

	_, err = h.Execute(context.Background(), &Input{ProjectID: "proj-1", ImageURIs: []string{"gs://p/a.jpg"}})
	assert.Error(t, err)
}
