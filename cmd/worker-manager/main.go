// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mission-workers/internal/common/aws"
	"mission-workers/internal/common/camunda"
	"mission-workers/internal/common/config"
	"mission-workers/internal/common/database"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/observability"
	"mission-workers/internal/common/validation"
	"mission-workers/internal/dispatch"
	"mission-workers/internal/missions"
	"mission-workers/internal/platform"
	"mission-workers/internal/search"
	"mission-workers/internal/store"
	"mission-workers/pkg/registry"

	rs "mission-workers/internal/workers/mission/review-submission"
	sm "mission-workers/internal/workers/mission/submit-mission"
	gcs "mission-workers/internal/workers/reporting/get-campaign-statistics"
	gsub "mission-workers/internal/workers/reporting/get-campaign-submissions"
	gmh "mission-workers/internal/workers/reporting/get-mission-history"
	sp "mission-workers/internal/workers/reporting/search-portfolio"
	ra "mission-workers/internal/workers/selection/reject-applicants"
	sa "mission-workers/internal/workers/selection/select-applicants"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.Build(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		zapLog = logger.New("info", "console")
	}
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting mission worker manager...", zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.Observability, log)
	defer obs.Shutdown()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
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

	if cfg.Database.Postgres.AutoMigrate {
		if err := store.Migrate(ctx, pg.DB); err != nil {
			zapLog.Fatal("schema migration failed", zap.Error(err))
		}
		zapLog.Info("Schema migration applied")
	}

	// --- Redis ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Coordinators ---
	queue := dispatch.NewQueue(rdb.Client, cfg.Missions.DispatchQueue)
	deps := missions.Dependencies{
		Store: store.New(pg.DB),
		Campaigns: store.NewCampaignDirectory(pg.DB, rdb.Client,
			time.Duration(cfg.Missions.CampaignCacheTTL)*time.Second, log),
		Influencers:   store.NewInfluencerDirectory(pg.DB),
		Notifications: queue.Notifications(),
		Emails:        queue.Emails(),
		Stats: store.NewStatsCache(rdb.Client,
			time.Duration(cfg.Missions.StatisticsCacheTTL)*time.Second, log),
		Classifier: platform.NewClassifier(),
		Logger:     log,
	}

	// --- Elasticsearch (optional secondary index) ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		index := search.NewPortfolioIndex(esClient.Client, cfg.Missions.PortfolioIndex, log)
		if err := index.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("portfolio index setup failed", zap.Error(err))
		}
		deps.Portfolio = index
		zapLog.Info("Elasticsearch connected successfully")
	} else {
		zapLog.Info("Elasticsearch disabled, portfolio search returns no results")
	}

	coordinators := missions.NewCoordinators(deps)

	// --- Side-effect dispatcher ---
	processor, err := newProcessor(ctx, cfg, rdb, log)
	if err != nil {
		zapLog.Fatal("dispatch processor setup failed", zap.Error(err))
	}
	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		_ = processor.Run(ctx)
	}()

	// --- Workers ---
	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("input schema compilation failed", zap.Error(err))
	}

	zc := zeebe.GetClient()
	workers := []worker.JobWorker{
		camunda.StartWorker(zc, sa.TaskType, config.GetWorkerConfig(cfg, sa.TaskType),
			sa.NewHandler(sa.LoadConfig(config.GetWorkerConfig(cfg, sa.TaskType)), coordinators.Selection, validator, obs, log), log),
		camunda.StartWorker(zc, ra.TaskType, config.GetWorkerConfig(cfg, ra.TaskType),
			ra.NewHandler(ra.LoadConfig(config.GetWorkerConfig(cfg, ra.TaskType)), coordinators.Selection, validator, obs, log), log),
		camunda.StartWorker(zc, sm.TaskType, config.GetWorkerConfig(cfg, sm.TaskType),
			sm.NewHandler(sm.LoadConfig(config.GetWorkerConfig(cfg, sm.TaskType)), coordinators.Submission, validator, obs, log), log),
		camunda.StartWorker(zc, rs.TaskType, config.GetWorkerConfig(cfg, rs.TaskType),
			rs.NewHandler(rs.LoadConfig(config.GetWorkerConfig(cfg, rs.TaskType)), coordinators.Review, validator, obs, log), log),
		camunda.StartWorker(zc, gsub.TaskType, config.GetWorkerConfig(cfg, gsub.TaskType),
			gsub.NewHandler(gsub.LoadConfig(config.GetWorkerConfig(cfg, gsub.TaskType)), coordinators.Projections, validator, obs, log), log),
		camunda.StartWorker(zc, gmh.TaskType, config.GetWorkerConfig(cfg, gmh.TaskType),
			gmh.NewHandler(gmh.LoadConfig(config.GetWorkerConfig(cfg, gmh.TaskType)), coordinators.Projections, validator, obs, log), log),
		camunda.StartWorker(zc, gcs.TaskType, config.GetWorkerConfig(cfg, gcs.TaskType),
			gcs.NewHandler(gcs.LoadConfig(config.GetWorkerConfig(cfg, gcs.TaskType)), coordinators.Projections, validator, obs, log), log),
		camunda.StartWorker(zc, sp.TaskType, config.GetWorkerConfig(cfg, sp.TaskType),
			sp.NewHandler(sp.LoadConfig(config.GetWorkerConfig(cfg, sp.TaskType)), coordinators.Projections, validator, obs, log), log),
	}
	zapLog.Info("Mission workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		checks := map[string]error{
			"postgres": pg.Ping(checkCtx),
			"redis":    rdb.Ping(checkCtx),
			"zeebe":    zeebe.HealthCheck(checkCtx),
		}
		if esClient != nil {
			checks["elasticsearch"] = esClient.Ping(checkCtx)
		}
		failed := map[string]string{}
		for name, err := range checks {
			if err != nil {
				failed[name] = err.Error()
			}
		}
		if len(failed) > 0 {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", failed)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		if w != nil {
			w.Close()
			w.AwaitClose()
		}
	}

	stop()
	<-dispatchDone

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Deliver whatever the last jobs queued before exiting.
	if n, err := processor.Drain(shutdownCtx, cfg.Missions.DispatchBatchSize); err != nil {
		zapLog.Warn("dispatch drain failed", zap.Error(err), zap.Int("delivered", n))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func newProcessor(ctx context.Context, cfg *config.Config, rdb *database.RedisClient, log logger.Logger) (*dispatch.Processor, error) {
	opts := []dispatch.ProcessorOption{
		dispatch.WithPollTimeout(config.GetDuration(cfg.Missions.DispatchPollInterval)),
	}
	awsCfg := cfg.Integrations.AWS
	if awsCfg.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, awsCfg.Region)
		if err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
		opts = append(opts, dispatch.WithPushSender(dispatch.NewSNSPushSender(snsClient, awsCfg.SNS.TopicARN)))
	}
	if awsCfg.SES.Enabled {
		sesClient, err := aws.NewSESClient(ctx, awsCfg.Region)
		if err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
		opts = append(opts, dispatch.WithEmailSender(dispatch.NewSESEmailSender(sesClient, awsCfg.SES.FromEmail)))
	}
	return dispatch.NewProcessor(rdb.Client, cfg.Missions.DispatchQueue, log, opts...), nil
}

func writeStatus(w http.ResponseWriter, code int, status string, failures map[string]string) {
	body := map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if len(failures) > 0 {
		body["failures"] = failures
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
