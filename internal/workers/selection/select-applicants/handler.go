// internal/workers/selection/select-applicants/handler.go
package selectapplicants

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mission-workers/internal/common/camunda"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/validation"
	"mission-workers/internal/models"
)

const TaskType = "select-applicants"

type Selector interface {
	SelectMany(ctx context.Context, campaignID string, applicationIDs []string, requesterID string) (*models.BatchResult, error)
}

type Handler struct {
	config    *Config
	selector  Selector
	validator *validation.Validator
	runner    *camunda.JobRunner
	logger    logger.Logger
}

func NewHandler(cfg *Config, selector Selector, validator *validation.Validator, obs camunda.Observer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    cfg,
		selector:  selector,
		validator: validator,
		runner:    camunda.NewJobRunner(TaskType, cfg.Timeout, obs, log),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	h.runner.Run(client, job, func(ctx context.Context) (interface{}, error) {
		var input Input
		if err := h.validator.Decode(TaskType, job.Variables, &input); err != nil {
			return nil, err
		}
		return h.Execute(ctx, &input)
	})
}

// Execute selects every listed application. Item failures are part of the
// output; only a missing campaign or a foreign requester fail the job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.selector.SelectMany(ctx, input.CampaignID, input.ApplicationIDs, input.RequesterID)
	if err != nil {
		return nil, err
	}
	if result.FailCount > 0 {
		h.logger.Warn("selection finished with failures", map[string]interface{}{
			"campaignId":   input.CampaignID,
			"successCount": result.SuccessCount,
			"failCount":    result.FailCount,
		})
	}
	return &Output{BatchResult: *result}, nil
}
