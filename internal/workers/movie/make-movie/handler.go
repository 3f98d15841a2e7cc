// internal/workers/movie/make-movie/handler.go
package makemovie

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cmnerrors "listingreel-workers/internal/common/errors"
	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/common/metrics"
	"listingreel-workers/internal/models"
	"listingreel-workers/internal/renderer"
	"listingreel-workers/internal/selection"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "make-movie"
)

var (
	ErrNilInput       = errors.New("input cannot be nil")
	ErrTooFewOrdered  = errors.New("ordered images do not fill the template")
	ErrRenderRejected = errors.New("render service rejected the request")
)

// VersionStore persists movie version snapshots across the render lifecycle.
type VersionStore interface {
	Create(ctx context.Context, session models.Session, template string) (string, error)
	MarkSuccess(ctx context.Context, id, videoURI string) error
	MarkFailure(ctx context.Context, id, reason string) error
}

// StatsStore tracks per-project movie counters.
type StatsStore interface {
	RecordRequested(ctx context.Context, session models.Session) error
	RecordCompleted(ctx context.Context, session models.Session) error
	RecordFailed(ctx context.Context, session models.Session) error
}

// TemplateSource resolves template ids into edit decision lists.
type TemplateSource interface {
	Get(id string) (*models.Template, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	errors    *cmnerrors.ErrorHandler
	versions  VersionStore
	stats     StatsStore
	store     models.ClassificationStore
	templates TemplateSource
	selector  *selection.Selector
	renderer  renderer.Renderer
}

func NewHandler(
	config *Config,
	versions VersionStore,
	stats StatsStore,
	store models.ClassificationStore,
	templates TemplateSource,
	selector *selection.Selector,
	render renderer.Renderer,
	log logger.Logger,
) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		logger:    scoped,
		errors:    cmnerrors.NewErrorHandler(scoped),
		versions:  versions,
		stats:     stats,
		store:     store,
		templates: templates,
		selector:  selector,
		renderer:  render,
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
		case errors.Is(err, selection.ErrInsufficientImages), errors.Is(err, ErrTooFewOrdered):
			err = cmnerrors.NewInsufficientImagesError(err)
		case errors.Is(err, ErrRenderRejected):
			err = cmnerrors.NewRenderFailedError(input.Template, err)
		case errors.Is(err, context.DeadlineExceeded):
			err = cmnerrors.NewRenderTimeoutError(input.Template)
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

	tpl, err := h.templates.Get(input.Template)
	if err != nil {
		return nil, err
	}
	minShots := tpl.ImageClipCount()

	if err := h.stats.RecordRequested(ctx, session); err != nil {
		h.logger.Warn("failed to record requested stat", map[string]interface{}{
			"error": err.Error(),
		})
	}

	versionID, err := h.versions.Create(ctx, session, input.Template)
	if err != nil {
		return nil, fmt.Errorf("create version: %w", err)
	}

	images, fallback, err := h.resolveImages(ctx, session, input, minShots)
	if err != nil {
		h.recordFailure(ctx, session, versionID, input.Template, err)
		return nil, err
	}

	start := time.Now()
	result, err := h.renderer.Render(ctx, &renderer.RenderRequest{
		Template:  tpl.ID,
		Clips:     tpl.Clips,
		ImageURIs: images,
		Config:    input.Config,
		OutputKey: fmt.Sprintf("%s/%s/%s.mp4", input.UserID, input.ProjectID, versionID),
	})
	if err != nil {
		h.recordFailure(ctx, session, versionID, input.Template, err)
		return nil, fmt.Errorf("%w: %v", ErrRenderRejected, err)
	}

	if err := h.versions.MarkSuccess(ctx, versionID, result.VideoURI); err != nil {
		h.logger.Error("failed to mark version success", map[string]interface{}{
			"versionId": versionID,
			"error":     err.Error(),
		})
	}
	if err := h.stats.RecordCompleted(ctx, session); err != nil {
		h.logger.Warn("failed to record completed stat", map[string]interface{}{
			"error": err.Error(),
		})
	}
	metrics.MoviesRendered.WithLabelValues(input.Template, "success").Inc()

	h.logger.Info("movie rendered", map[string]interface{}{
		"userId":     input.UserID,
		"projectId":  input.ProjectID,
		"template":   input.Template,
		"version":    versionID,
		"videoUri":   result.VideoURI,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Output{
		Result:       "success",
		Version:      versionID,
		VideoURI:     result.VideoURI,
		VoiceoverURI: result.VoiceoverURI,
		CaptionsURI:  result.CaptionsURI,
		Fallback:     fallback,
		NotifyEmails: input.NotifyEmails,
	}, nil
}

// resolveImages picks the photo list for the render. Caller-supplied
// ordered images bypass selection entirely; otherwise the stored
// preselection for this template wins, and a fresh selection runs last.
func (h *Handler) resolveImages(ctx context.Context, session models.Session, input *Input, minShots int) ([]string, bool, error) {
	if len(input.OrderedImages) > 0 {
		if len(input.OrderedImages) < minShots {
			return nil, false, fmt.Errorf("%w: have %d, need %d", ErrTooFewOrdered, len(input.OrderedImages), minShots)
		}
		return input.OrderedImages, false, nil
	}

	classification, err := h.store.Get(ctx, session)
	if err != nil {
		return nil, false, fmt.Errorf("load classification: %w", err)
	}

	if pre, ok := classification.Preselections[input.Template]; ok && len(pre) >= minShots {
		return pre, false, nil
	}

	result, err := h.selector.Select(classification.Buckets, minShots, classification.Buckets.URIs())
	if err != nil {
		return nil, false, err
	}
	return result.URIs, result.Fallback, nil
}

func (h *Handler) recordFailure(ctx context.Context, session models.Session, versionID, template string, cause error) {
	if err := h.versions.MarkFailure(ctx, versionID, cause.Error()); err != nil {
		h.logger.Error("failed to mark version failure", map[string]interface{}{
			"versionId": versionID,
			"error":     err.Error(),
		})
	}
	if err := h.stats.RecordFailed(ctx, session); err != nil {
		h.logger.Warn("failed to record failed stat", map[string]interface{}{
			"error": err.Error(),
		})
	}
	metrics.MoviesRendered.WithLabelValues(template, "failure").Inc()
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
