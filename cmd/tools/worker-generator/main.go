// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name        string
	PackageName string
	TaskType    string
	Category    string
	Timeout     string
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// packageNameFromTaskType turns "select-images" into "selectimages"
func packageNameFromTaskType(taskType string) string {
	return strings.ReplaceAll(taskType, "-", "")
}

const configTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ .Timeout }},
	}
}
`

const modelsTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/models.go
package {{ .PackageName }}

type Input struct {
	UserID    string ` + "`json:\"userId\"`" + `
	ProjectID string ` + "`json:\"projectId\"`" + `
}

type Output struct {
	Result string ` + "`json:\"result\"`" + `
}
`

const handlerTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	cmnerrors "listingreel-workers/internal/common/errors"
	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "{{ .TaskType }}"
)

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	logger logger.Logger
	errors *cmnerrors.ErrorHandler
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		logger: scoped,
		errors: cmnerrors.NewErrorHandler(scoped),
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

	return &Output{Result: "success"}, nil
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
`

const handlerTestTemplate = `// internal/workers/{{ .Category }}/{{ .TaskType }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listingreel-workers/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 3 * time.Second,
	}
}

func newTestHandler() *Handler {
	return NewHandler(createTestConfig(), logger.NewNoOpLogger())
}

// ==========================
// Tests
// ==========================

func TestExecute_Success(t *testing.T) {
	h := newTestHandler()

	output, err := h.Execute(context.Background(), &Input{
		UserID:    "user-1",
		ProjectID: "proj-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "success", output.Result)
}

func TestExecute_NilInput(t *testing.T) {
	h := newTestHandler()

	_, err := h.Execute(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilInput)
}
`

func main() {
	taskType := flag.String("task-type", "", "Task type of the new worker (e.g. trim-photos)")
	category := flag.String("category", "", "Worker category directory (e.g. classification, selection, movie)")
	timeout := flag.String("timeout", "30 * time.Second", "Default execute timeout expression")
	outDir := flag.String("out", "internal/workers", "Root directory for generated workers")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *taskType == "" || *category == "" {
		fmt.Println("Error: task-type and category are required.")
		flag.Usage()
		os.Exit(1)
	}

	data := WorkerData{
		Name:        upperFirst(*taskType),
		PackageName: packageNameFromTaskType(*taskType),
		TaskType:    *taskType,
		Category:    *category,
		Timeout:     *timeout,
	}

	dir := filepath.Join(*outDir, *category, *taskType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Printf("Error creating %s: %v\n", dir, err)
		os.Exit(1)
	}

	templates := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": handlerTestTemplate,
	}

	for filename, tmplStr := range templates {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil && !*force {
			fmt.Printf("Skipping %s (exists, use -force to overwrite)\n", path)
			continue
		}

		tmpl, err := template.New(filename).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			os.Exit(1)
		}

		f, err := os.Create(path)
		if err != nil {
			fmt.Printf("Error creating %s: %v\n", path, err)
			os.Exit(1)
		}
		if err := tmpl.Execute(f, data); err != nil {
			f.Close()
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
			os.Exit(1)
		}
		f.Close()
		fmt.Printf("Generated %s\n", path)
	}

	fmt.Printf("\nWorker %q scaffolded. Register it in cmd/worker-manager/main.go.\n", *taskType)
}
