// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mission-workers/internal/common/config"
	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/metrics"
)

// JobHandler processes one activated job and reports its outcome to Zeebe.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Observer receives a span and outcome metrics per job. *observability.Observability satisfies it.
type Observer interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span)
	RecordJobProcessed(ctx context.Context, taskType, status string)
	RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string)
}

// JobRunner runs a job body and completes or fails the job with the outcome.
type JobRunner struct {
	taskType string
	timeout  time.Duration
	errs     *errors.ErrorHandler
	obs      Observer
	logger   logger.Logger
}

func NewJobRunner(taskType string, timeout time.Duration, obs Observer, log logger.Logger) *JobRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &JobRunner{
		taskType: taskType,
		timeout:  timeout,
		errs:     errors.NewErrorHandler(log),
		obs:      obs,
		logger:   log,
	}
}

// Run executes fn under the job timeout. A nil error completes the job with
// fn's output as variables; anything else goes through the error handler.
func (r *JobRunner) Run(client worker.JobClient, job entities.Job, fn func(ctx context.Context) (interface{}, error)) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.taskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(r.taskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	var span trace.Span
	if r.obs != nil {
		ctx, span = r.obs.StartSpan(ctx, r.taskType,
			attribute.Int64("job.key", job.Key),
			attribute.Int64("process.instance.key", job.ProcessInstanceKey),
		)
		defer span.End()
	}

	output, err := fn(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
		code := errors.CodeOf(err)
		metrics.WorkerJobsFailed.WithLabelValues(r.taskType, string(code)).Inc()
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(code))
		}
		r.errs.HandleJobError(ctx, client, job, err)
	} else {
		metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
		r.complete(ctx, client, job, output)
	}

	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(r.taskType).Observe(elapsed.Seconds())
	if r.obs != nil {
		r.obs.RecordJobProcessed(ctx, r.taskType, status)
		r.obs.RecordJobDuration(ctx, r.taskType, elapsed, status)
	}
}

func (r *JobRunner) complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}
	r.logger.Info("job completed", map[string]interface{}{
		"jobKey": job.Key,
	})
}

// StartWorker opens a job worker for taskType unless it is disabled in config.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, log logger.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return nil
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return jobWorker
}
