// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"listingreel-workers/internal/common/ai"
	"listingreel-workers/internal/common/camunda"
	"listingreel-workers/internal/common/config"
	"listingreel-workers/internal/common/database"
	"listingreel-workers/internal/common/gcp"
	"listingreel-workers/internal/common/logger"
	"listingreel-workers/internal/common/observability"
	"listingreel-workers/internal/renderer"
	"listingreel-workers/internal/selection"
	"listingreel-workers/internal/store"
	"listingreel-workers/pkg/registry"

	// Classification Workers (1)
	ci "listingreel-workers/internal/workers/classification/classify-images"

	// Selection Workers (2)
	pt "listingreel-workers/internal/workers/selection/preselect-templates"
	si "listingreel-workers/internal/workers/selection/select-images"

	// Movie Workers (2)
	mm "listingreel-workers/internal/workers/movie/make-movie"
	sn "listingreel-workers/internal/workers/movie/send-notification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init External Service Clients ---
	labeler, err := gcp.NewLabeler(ctx, log, cfg.GCP.MaxLabels)
	if err != nil {
		zapLog.Fatal("vision labeler init failed", zap.Error(err))
	}
	defer labeler.Close()

	photos, err := gcp.NewBucketService(ctx, log, cfg.GCP.Bucket)
	if err != nil {
		zapLog.Fatal("photo bucket init failed", zap.Error(err))
	}

	categorizer := ai.NewCategorizer(log, cfg.OpenAI.APIKey, cfg.OpenAI.Model,
		time.Duration(cfg.OpenAI.Timeout)*time.Millisecond)

	renderClient := renderer.NewClient(cfg.Renderer.BaseURL,
		time.Duration(cfg.Renderer.Timeout)*time.Millisecond, log)

	templates, err := registry.Load(cfg.Template.RegistryPath)
	if err != nil {
		zapLog.Fatal("template registry load failed", zap.Error(err))
	}
	zapLog.Info("Template registry loaded", zap.Int("templates", templates.Len()))

	// --- Init Selection Engine ---
	model := buildSelectionModel(cfg.Classification)
	if err := model.Validate(); err != nil {
		zapLog.Fatal("invalid selection model", zap.Error(err))
	}
	selector := selection.NewSelector(model, selection.NewPicker(nil), log)

	// --- Init Stores ---
	classifications := store.NewRedisClassificationStore(redis.Client, log, 24*time.Hour)
	stats := store.NewRedisStatsStore(redis.Client, log)
	versions := store.NewPostgresVersionStore(pg.DB, log)

	auditIndex := cfg.Classification.AuditIndex
	if auditIndex == "" {
		auditIndex = "selection-audit"
	}
	audit := store.NewElasticsearchAuditSink(esClient, log, auditIndex)

	zapLog.Info("All external service clients initialized")

	// --- START: Register ALL 5 Workers ---

	// --- 1. Classification Workers (1) ---
	if cfg.Workers[ci.TaskType].Enabled {
		handler := ci.NewHandler(
			&ci.Config{
				MaxLabels: cfg.GCP.MaxLabels,
				Timeout:   time.Duration(cfg.Workers[ci.TaskType].Timeout) * time.Millisecond,
			},
			labeler, categorizer, classifications, photos, model, log,
		)
		startWorker(zeebeClient, ci.TaskType, cfg.Workers[ci.TaskType], handler.Handle, zapLog)
	}

	// --- 2. Selection Workers (2) ---
	if cfg.Workers[si.TaskType].Enabled {
		handler := si.NewHandler(
			&si.Config{
				Timeout: time.Duration(cfg.Workers[si.TaskType].Timeout) * time.Millisecond,
			},
			classifications, templates, selector, audit, log,
		)
		startWorker(zeebeClient, si.TaskType, cfg.Workers[si.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[pt.TaskType].Enabled {
		handler := pt.NewHandler(
			&pt.Config{
				Timeout: time.Duration(cfg.Workers[pt.TaskType].Timeout) * time.Millisecond,
			},
			classifications, templates, selector, log,
		)
		startWorker(zeebeClient, pt.TaskType, cfg.Workers[pt.TaskType], handler.Handle, zapLog)
	}

	// --- 3. Movie Workers (2) ---
	if cfg.Workers[mm.TaskType].Enabled {
		handler := mm.NewHandler(
			&mm.Config{
				Timeout: time.Duration(cfg.Workers[mm.TaskType].Timeout) * time.Millisecond,
			},
			versions, stats, classifications, templates, selector, renderClient, log,
		)
		startWorker(zeebeClient, mm.TaskType, cfg.Workers[mm.TaskType], handler.Handle, zapLog)
	}

	if cfg.Workers[sn.TaskType].Enabled {
		handler, err := sn.NewHandler(
			&sn.Config{
				EmailEnabled: cfg.Notifications.Email.Enabled,
				SMSEnabled:   cfg.Notifications.SMS.Enabled,
				FromEmail:    cfg.Notifications.Email.FromEmail,
				AWSRegion:    cfg.Notifications.AWS.Region,
				Timeout:      time.Duration(cfg.Workers[sn.TaskType].Timeout) * time.Millisecond,
			},
			log,
		)
		if err != nil {
			zapLog.Fatal("failed to create send-notification handler", zap.Error(err))
		}
		startWorker(zeebeClient, sn.TaskType, cfg.Workers[sn.TaskType], handler.Handle, zapLog)
	}

	zapLog.Info("All 5 workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range activeWorkers {
		w.Stop()
	}

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// buildSelectionModel starts from the stock residential model and applies
// the configured overrides.
func buildSelectionModel(cfg config.ClassificationConfig) *selection.Model {
	model := selection.DefaultRealEstate()
	model.HeroEnabled = cfg.HeroEnabled
	if cfg.HeroStrategy != "" {
		model.HeroStrategy = selection.HeroStrategy(cfg.HeroStrategy)
	}
	if cfg.LargeMovieClips > 0 {
		model.LargeMovieClips = cfg.LargeMovieClips
	}
	return model
}

var activeWorkers []*camunda.CamundaWorker

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc camunda.HandlerFunc, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	w := camunda.NewWorker(client, taskType, camunda.WorkerOptions{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
	}, handlerFunc, log)

	activeWorkers = append(activeWorkers, w)
}
