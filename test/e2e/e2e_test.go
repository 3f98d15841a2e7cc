// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listingreel-workers/internal/common/gcp"
	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"
	"listingreel-workers/internal/renderer"
	"listingreel-workers/internal/selection"
	"listingreel-workers/internal/store"
	"listingreel-workers/pkg/registry"

	classifyimages "listingreel-workers/internal/workers/classification/classify-images"
	makemovie "listingreel-workers/internal/workers/movie/make-movie"
	sendnotification "listingreel-workers/internal/workers/movie/send-notification"
	preselecttemplates "listingreel-workers/internal/workers/selection/preselect-templates"
	selectimages "listingreel-workers/internal/workers/selection/select-images"
)

// ==========================
// Fixture
// ==========================

const classicTemplate = `{
  "id": "classic-landscape",
  "name": "Classic Landscape",
  "orientation": "landscape",
  "clips": [
    {"source": "presents", "duration": 2.0},
    {"source": "image", "duration": 3.0, "effect": "kenburns"},
    {"source": "image", "duration": 3.0},
    {"source": "image", "duration": 3.0},
    {"source": "image", "duration": 3.0},
    {"source": "image", "duration": 3.0},
    {"source": "image", "duration": 3.0},
    {"source": "end_title", "duration": 2.5}
  ]
}`

const grandTemplate = `{
  "id": "grand-tour",
  "name": "Grand Tour",
  "orientation": "landscape",
  "clips": [
    {"source": "presents", "duration": 2.0},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "image", "duration": 2.5},
    {"source": "end_title", "duration": 2.5}
  ]
}`

type fakeLabeler struct{}

// Labels are keyed off the file name so the pipeline stays deterministic.
func (f *fakeLabeler) DetectLabels(_ context.Context, uri string) ([]gcp.ImageLabel, error) {
	base := strings.ToLower(filepath.Base(uri))
	switch {
	case strings.Contains(base, "front"), strings.Contains(base, "exterior"):
		return []gcp.ImageLabel{{Description: "Facade", Score: 0.95}, {Description: "House", Score: 0.9}}, nil
	case strings.Contains(base, "kitchen"):
		return []gcp.ImageLabel{{Description: "Stove", Score: 0.93}, {Description: "Countertop", Score: 0.88}}, nil
	case strings.Contains(base, "living"):
		return []gcp.ImageLabel{{Description: "Couch", Score: 0.91}}, nil
	case strings.Contains(base, "bedroom"):
		return []gcp.ImageLabel{{Description: "Bed", Score: 0.9}}, nil
	case strings.Contains(base, "pool"):
		return []gcp.ImageLabel{{Description: "Swimming pool", Score: 0.97}}, nil
	default:
		return []gcp.ImageLabel{}, nil
	}
}

func (f *fakeLabeler) Close() error { return nil }

type fakeCategorizer struct{}

func (f *fakeCategorizer) Categorize(_ context.Context, labels []string, _ []string) (string, error) {
	joined := strings.ToLower(strings.Join(labels, " "))
	switch {
	case strings.Contains(joined, "facade"):
		return "Exterior", nil
	case strings.Contains(joined, "stove"):
		return "Kitchen", nil
	case strings.Contains(joined, "couch"):
		return "Living", nil
	case strings.Contains(joined, "bed"):
		return "Bedroom", nil
	case strings.Contains(joined, "pool"):
		return "Pool", nil
	default:
		return "Other", nil
	}
}

type fakeRenderer struct {
	requests []*renderer.RenderRequest
}

func (f *fakeRenderer) Render(_ context.Context, req *renderer.RenderRequest) (*renderer.RenderResult, error) {
	f.requests = append(f.requests, req)
	return &renderer.RenderResult{
		VideoURI:    "gs://renders/" + req.OutputKey,
		DurationSec: 24,
	}, nil
}

type fakeVersions struct {
	created   []string
	succeeded map[string]string
	failed    map[string]string
}

func newFakeVersions() *fakeVersions {
	return &fakeVersions{succeeded: map[string]string{}, failed: map[string]string{}}
}

func (f *fakeVersions) Create(_ context.Context, _ models.Session, template string) (string, error) {
	id := fmt.Sprintf("v-%d", len(f.created)+1)
	f.created = append(f.created, template)
	return id, nil
}

func (f *fakeVersions) MarkSuccess(_ context.Context, id, videoURI string) error {
	f.succeeded[id] = videoURI
	return nil
}

func (f *fakeVersions) MarkFailure(_ context.Context, id, reason string) error {
	f.failed[id] = reason
	return nil
}

type mockSES struct {
	sent []string
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.sent = append(m.sent, params.Destination.ToAddresses...)
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct{}

func (m *mockSNS) Publish(_ context.Context, _ *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return &sns.PublishOutput{}, nil
}

type pipeline struct {
	classify  *classifyimages.Handler
	preselect *preselecttemplates.Handler
	selectImg *selectimages.Handler
	makeMovie *makemovie.Handler
	notify    *sendnotification.Handler

	classifications *store.RedisClassificationStore
	stats           *store.RedisStatsStore
	versions        *fakeVersions
	renderer        *fakeRenderer
	ses             *mockSES
	templates       *registry.TemplateRegistry
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	log := logger.NewNoOpLogger()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classic-landscape.json"), []byte(classicTemplate), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "grand-tour.json"), []byte(grandTemplate), 0o644))

	templates, err := registry.Load(dir)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	classifications := store.NewRedisClassificationStore(redisClient, log, time.Hour)
	stats := store.NewRedisStatsStore(redisClient, log)
	versions := newFakeVersions()
	render := &fakeRenderer{}
	sesClient := &mockSES{}

	model := selection.DefaultRealEstate()
	selector := selection.NewSelector(model, selection.NewPicker(rand.New(rand.NewSource(42))), log)

	notifyCfg := &sendnotification.Config{
		EmailEnabled: true,
		FromEmail:    "noreply@listingreel.example",
		Timeout:      3 * time.Second,
	}

	return &pipeline{
		classify: classifyimages.NewHandler(
			&classifyimages.Config{MaxLabels: 20, Timeout: 5 * time.Second},
			&fakeLabeler{}, &fakeCategorizer{}, classifications, nil, model, log),
		preselect: preselecttemplates.NewHandler(
			&preselecttemplates.Config{Timeout: 5 * time.Second},
			classifications, templates, selector, log),
		selectImg: selectimages.NewHandler(
			&selectimages.Config{Timeout: 5 * time.Second},
			classifications, templates, selector, nil, log),
		makeMovie: makemovie.NewHandler(
			&makemovie.Config{Timeout: 5 * time.Second},
			versions, stats, classifications, templates, selector, render, log),
		notify: sendnotification.NewHandlerWithClients(notifyCfg, sesClient, &mockSNS{}, log),

		classifications: classifications,
		stats:           stats,
		versions:        versions,
		renderer:        render,
		ses:             sesClient,
		templates:       templates,
	}
}

func projectPhotos() []string {
	return []string{
		"gs://photos/u1/p1/photos/front-01.jpg",
		"gs://photos/u1/p1/photos/exterior-02.jpg",
		"gs://photos/u1/p1/photos/kitchen-01.jpg",
		"gs://photos/u1/p1/photos/kitchen-02.jpg",
		"gs://photos/u1/p1/photos/living-01.jpg",
		"gs://photos/u1/p1/photos/bedroom-01.jpg",
		"gs://photos/u1/p1/photos/pool-01.jpg",
		"gs://photos/u1/p1/photos/misc-01.jpg",
	}
}

// ==========================
// Tests
// ==========================

func TestPipeline_ClassifyPreselectSelect(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	classOut, err := p.classify.Execute(ctx, &classifyimages.Input{
		UserID:    "u1",
		ProjectID: "p1",
		ImageURIs: projectPhotos(),
	})
	require.NoError(t, err)
	assert.Equal(t, 8, classOut.TotalImages)
	assert.Equal(t, 2, classOut.CategoryCounts["Exterior"])
	assert.Equal(t, 2, classOut.CategoryCounts["Kitchen"])
	assert.Equal(t, 1, classOut.CategoryCounts["Other"])

	preOut, err := p.preselect.Execute(ctx, &preselecttemplates.Input{
		UserID:    "u1",
		ProjectID: "p1",
	})
	require.NoError(t, err)

	// 8 photos fill the classic template's 6 image clips but not the
	// grand tour's 12.
	require.Contains(t, preOut.Preselections, "classic-landscape")
	assert.Len(t, preOut.Preselections["classic-landscape"], 6)
	assert.Contains(t, preOut.SkippedTemplates, "grand-tour")

	selOut, err := p.selectImg.Execute(ctx, &selectimages.Input{
		UserID:    "u1",
		ProjectID: "p1",
		Template:  "classic-landscape",
	})
	require.NoError(t, err)

	assert.Equal(t, 6, selOut.NumClips)
	assert.Len(t, selOut.ImageURIs, 6)
	assert.False(t, selOut.Fallback)

	seen := map[string]bool{}
	for _, uri := range selOut.ImageURIs {
		assert.False(t, seen[uri], "duplicate %s in selection", uri)
		seen[uri] = true
	}
}

func TestPipeline_MakeMovieAndNotify(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	_, err := p.classify.Execute(ctx, &classifyimages.Input{
		UserID:    "u1",
		ProjectID: "p1",
		ImageURIs: projectPhotos(),
	})
	require.NoError(t, err)

	_, err = p.preselect.Execute(ctx, &preselecttemplates.Input{UserID: "u1", ProjectID: "p1"})
	require.NoError(t, err)

	movieOut, err := p.makeMovie.Execute(ctx, &makemovie.Input{
		UserID:       "u1",
		ProjectID:    "p1",
		Template:     "classic-landscape",
		NotifyEmails: []string{"agent@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, "success", movieOut.Result)
	assert.NotEmpty(t, movieOut.Version)
	assert.True(t, strings.HasPrefix(movieOut.VideoURI, "gs://renders/"))

	require.Len(t, p.renderer.requests, 1)
	assert.Equal(t, "classic-landscape", p.renderer.requests[0].Template)
	assert.Len(t, p.renderer.requests[0].ImageURIs, 6)

	assert.Equal(t, movieOut.VideoURI, p.versions.succeeded[movieOut.Version])

	stats, err := p.stats.Get(ctx, models.Session{UserID: "u1", ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MoviesRequested)
	assert.Equal(t, 1, stats.MoviesCompleted)
	assert.Equal(t, 0, stats.MoviesFailed)

	notifyOut, err := p.notify.Execute(ctx, &sendnotification.Input{
		UserID:           "u1",
		ProjectID:        "p1",
		NotificationType: sendnotification.TypeMovieReady,
		Emails:           movieOut.NotifyEmails,
		VideoURI:         movieOut.VideoURI,
	})
	require.NoError(t, err)
	assert.Equal(t, sendnotification.StatusSent, notifyOut.Status)
	assert.Equal(t, []string{"agent@example.com"}, p.ses.sent)
}

func TestPipeline_MakeMovieInfeasibleTemplate(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	_, err := p.classify.Execute(ctx, &classifyimages.Input{
		UserID:    "u1",
		ProjectID: "p1",
		ImageURIs: projectPhotos(),
	})
	require.NoError(t, err)

	_, err = p.makeMovie.Execute(ctx, &makemovie.Input{
		UserID:    "u1",
		ProjectID: "p1",
		Template:  "grand-tour",
	})
	require.ErrorIs(t, err, selection.ErrInsufficientImages)

	stats, err := p.stats.Get(ctx, models.Session{UserID: "u1", ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MoviesRequested)
	assert.Equal(t, 1, stats.MoviesFailed)
}

func TestPipeline_OrderedImagesBypassClassification(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	ordered := projectPhotos()[:6]
	movieOut, err := p.makeMovie.Execute(ctx, &makemovie.Input{
		UserID:        "u1",
		ProjectID:     "p1",
		Template:      "classic-landscape",
		OrderedImages: ordered,
	})
	require.NoError(t, err)

	assert.Equal(t, "success", movieOut.Result)
	require.Len(t, p.renderer.requests, 1)
	assert.Equal(t, ordered, p.renderer.requests[0].ImageURIs)
}
