// internal/workers/selection/preselect-templates/handler.go
package preselecttemplates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cmnerrors "listingreel-workers/internal/common/errors"
	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"
	"listingreel-workers/internal/selection"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "preselect-templates"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

// TemplateLister enumerates all registered templates.
type TemplateLister interface {
	List() []models.Template
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	errors    *cmnerrors.ErrorHandler
	store     models.ClassificationStore
	templates TemplateLister
	selector  *selection.Selector
}

func NewHandler(config *Config, store models.ClassificationStore, templates TemplateLister, selector *selection.Selector, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		logger:    scoped,
		errors:    cmnerrors.NewErrorHandler(scoped),
		store:     store,
		templates: templates,
		selector:  selector,
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
		case errors.Is(err, selection.ErrUnknownCategory):
			err = cmnerrors.NewUnknownCategoryError(err.Error())
		case errors.Is(err, selection.ErrInvalidHeroStrategy):
			err = cmnerrors.NewInvalidHeroStrategyError(err.Error())
		}
		h.errors.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

// execute runs selection once per registered template so the UI can show
// every movie style instantly. Templates the photo set cannot fill are
// skipped rather than failing the whole fan-out. All preselections land
// in a single snapshot write.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	session := models.Session{UserID: input.UserID, ProjectID: input.ProjectID}
	if err := session.Validate(); err != nil {
		return nil, err
	}

	classification, err := h.store.Get(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("load classification: %w", err)
	}

	start := time.Now()
	preselections := make(map[string][]string)
	var skipped []string

	for _, tpl := range h.templates.List() {
		numClips := tpl.ImageClipCount()

		result, err := h.selector.Select(classification.Buckets, numClips, classification.Buckets.URIs())
		if err != nil {
			if errors.Is(err, selection.ErrInsufficientImages) {
				h.logger.Debug("skipping template, not enough images", map[string]interface{}{
					"template": tpl.ID,
					"numClips": numClips,
				})
				skipped = append(skipped, tpl.ID)
				continue
			}
			return nil, fmt.Errorf("preselect template %s: %w", tpl.ID, err)
		}

		preselections[tpl.ID] = result.URIs
	}

	classification.Preselections = preselections
	if err := h.store.Put(ctx, session, classification); err != nil {
		return nil, fmt.Errorf("store preselections: %w", err)
	}

	h.logger.Info("preselection completed", map[string]interface{}{
		"userId":     input.UserID,
		"projectId":  input.ProjectID,
		"templates":  len(preselections),
		"skipped":    len(skipped),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Output{
		Preselections:    preselections,
		SkippedTemplates: skipped,
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
