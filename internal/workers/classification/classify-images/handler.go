// internal/workers/classification/classify-images/handler.go
package classifyimages

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"listingreel-workers/internal/common/ai"
	cmnerrors "listingreel-workers/internal/common/errors"
	"listingreel-workers/internal/common/gcp"
	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/common/metrics"
	"listingreel-workers/internal/common/validation"
	"listingreel-workers/internal/models"
	"listingreel-workers/internal/selection"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "classify-images"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
	ErrNoImages = errors.New("no image uris provided")
)

type Handler struct {
	config      *Config
	logger      logger.Logger
	errors      *cmnerrors.ErrorHandler
	labeler     gcp.Labeler
	categorizer ai.Categorizer
	store       models.ClassificationStore
	photos      gcp.BucketService
	model       *selection.Model
}

func NewHandler(config *Config, labeler gcp.Labeler, categorizer ai.Categorizer, store models.ClassificationStore, photos gcp.BucketService, model *selection.Model, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:      config,
		logger:      scoped,
		errors:      cmnerrors.NewErrorHandler(scoped),
		labeler:     labeler,
		categorizer: categorizer,
		store:       store,
		photos:      photos,
		model:       model,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.errors.HandleJobError(context.Background(), client, job, fmt.Errorf("parse input: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		switch {
		case errors.Is(err, ErrNilInput), errors.Is(err, ErrNoImages):
			// passed through as-is
		case errors.Is(err, context.DeadlineExceeded):
			err = cmnerrors.NewCategorizationTimeoutError()
		default:
			err = cmnerrors.NewClassificationFailedError(err)
		}
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	session := models.Session{UserID: input.UserID, ProjectID: input.ProjectID}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	uris := input.ImageURIs
	if len(uris) == 0 {
		var err error
		uris, err = h.listProjectPhotos(ctx, session, input.ExcludedImages)
		if err != nil {
			return nil, err
		}
	}
	if len(uris) == 0 {
		return nil, ErrNoImages
	}

	start := time.Now()
	categories := h.model.AllCategories()

	labeled := make([]selection.LabeledImage, 0, len(uris))
	var skipped []string

	for _, uri := range uris {
		if !validation.ValidateStorageURI(uri) {
			h.logger.Warn("skipping malformed image uri", map[string]interface{}{
				"uri": uri,
			})
			skipped = append(skipped, uri)
			continue
		}

		imgLabels, err := h.labeler.DetectLabels(ctx, uri)
		if err != nil {
			h.logger.Warn("label detection failed, skipping image", map[string]interface{}{
				"uri":   uri,
				"error": err.Error(),
			})
			skipped = append(skipped, uri)
			continue
		}

		descriptions := make([]string, 0, len(imgLabels))
		for _, l := range imgLabels {
			descriptions = append(descriptions, l.Description)
		}

		category, err := h.categorizer.Categorize(ctx, descriptions, categories)
		if err != nil {
			return nil, fmt.Errorf("categorize %s: %w", uri, err)
		}

		// An unlabelable photo still fills a slot, so it keeps a floor score of 1.
		score := float64(len(descriptions))
		if score < 1 {
			score = 1
		}

		labeled = append(labeled, selection.LabeledImage{
			URI:      uri,
			Category: category,
			Score:    score,
		})
	}

	if len(labeled) == 0 {
		return nil, fmt.Errorf("all %d images failed labeling", len(uris))
	}

	buckets := selection.Rank(labeled, h.model.Categories)

	classification := &models.Classification{Buckets: buckets}
	if err := h.store.Put(ctx, session, classification); err != nil {
		return nil, fmt.Errorf("store classification: %w", err)
	}

	counts := make(map[string]int, len(buckets))
	for category, items := range buckets {
		if len(items) == 0 {
			continue
		}
		counts[category] = len(items)
		metrics.ImagesClassified.WithLabelValues(category).Add(float64(len(items)))
	}

	h.logger.Info("classification completed", map[string]interface{}{
		"userId":     input.UserID,
		"projectId":  input.ProjectID,
		"images":     len(labeled),
		"skipped":    len(skipped),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Output{
		TotalImages:    len(labeled),
		CategoryCounts: counts,
		SkippedURIs:    skipped,
	}, nil
}

// listProjectPhotos falls back to listing the project's photo prefix in
// the bucket when the job carries no explicit image URIs. Photos the
// project has excluded are dropped by filename.
func (h *Handler) listProjectPhotos(ctx context.Context, session models.Session, excluded []string) ([]string, error) {
	if h.photos == nil {
		return nil, ErrNoImages
	}

	prefix := fmt.Sprintf("%s/%s/photos/", session.UserID, session.ProjectID)
	keys, err := h.photos.ListKeys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list photos under %s: %w", prefix, err)
	}

	skip := make(map[string]bool, len(excluded))
	for _, name := range excluded {
		skip[path.Base(name)] = true
	}

	uris := make([]string, 0, len(keys))
	for _, key := range keys {
		if skip[path.Base(key)] {
			continue
		}
		lower := strings.ToLower(key)
		if strings.HasSuffix(lower, ".jpg") || strings.HasSuffix(lower, ".jpeg") ||
			strings.HasSuffix(lower, ".png") || strings.HasSuffix(lower, ".webp") {
			uris = append(uris, h.photos.ObjectURI(key))
		}
	}
	return uris, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
