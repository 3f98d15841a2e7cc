// internal/workers/selection/select-images/handler.go
package selectimages

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
	"listingreel-workers/internal/selection"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "select-images"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

// TemplateSource resolves template ids into edit decision lists.
type TemplateSource interface {
	Get(id string) (*models.Template, error)
}

// AuditSink records finished selection runs. Implementations must not
// fail the selection; recording is best effort.
type AuditSink interface {
	Record(ctx context.Context, session models.Session, template string, numClips int, result *selection.Result)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	errors    *cmnerrors.ErrorHandler
	store     models.ClassificationStore
	templates TemplateSource
	selector  *selection.Selector
	audit     AuditSink
}

func NewHandler(config *Config, store models.ClassificationStore, templates TemplateSource, selector *selection.Selector, audit AuditSink, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		logger:    scoped,
		errors:    cmnerrors.NewErrorHandler(scoped),
		store:     store,
		templates: templates,
		selector:  selector,
		audit:     audit,
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
		h.errors.HandleJobError(ctx, client, job, mapSelectionError(err))
		return
	}

	h.completeJob(client, job, output)
}

// mapSelectionError translates engine sentinels into the standard error
// taxonomy so the workflow sees stable BPMN error codes.
func mapSelectionError(err error) error {
	switch {
	case errors.Is(err, selection.ErrInsufficientImages):
		return cmnerrors.NewInsufficientImagesError(err)
	case errors.Is(err, selection.ErrUnknownCategory):
		return cmnerrors.NewUnknownCategoryError(err.Error())
	case errors.Is(err, selection.ErrInvalidHeroStrategy):
		return cmnerrors.NewInvalidHeroStrategyError(err.Error())
	default:
		return err
	}
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
	numClips := tpl.ImageClipCount()

	classification, err := h.store.Get(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("load classification: %w", err)
	}

	start := time.Now()
	available := classification.Buckets.URIs()

	result, err := h.selector.Select(classification.Buckets, numClips, available)
	if err != nil {
		return nil, err
	}

	if result.Fallback {
		metrics.SelectionFallbacks.WithLabelValues(input.Template).Inc()
	}

	if h.audit != nil {
		h.audit.Record(ctx, session, input.Template, numClips, result)
	}

	h.logger.Info("selection completed", map[string]interface{}{
		"userId":     input.UserID,
		"projectId":  input.ProjectID,
		"template":   input.Template,
		"numClips":   numClips,
		"selected":   len(result.URIs),
		"fallback":   result.Fallback,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Output{
		ImageURIs: result.URIs,
		Sequence:  result.Sequence,
		Fallback:  result.Fallback,
		NumClips:  numClips,
	}, nil
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
