// internal/workers/selection/reject-applicants/handler.go
package rejectapplicants

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mission-workers/internal/common/camunda"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/validation"
	"mission-workers/internal/models"
)

const TaskType = "reject-applicants"

type Rejector interface {
	RejectMany(ctx context.Context, campaignID string, applicationIDs []string, requesterID string) (*models.BatchResult, error)
}

type Handler struct {
	config    *Config
	rejector  Rejector
	validator *validation.Validator
	runner    *camunda.JobRunner
	logger    logger.Logger
}

func NewHandler(cfg *Config, rejector Rejector, validator *validation.Validator, obs camunda.Observer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    cfg,
		rejector:  rejector,
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	result, err := h.rejector.RejectMany(ctx, input.CampaignID, input.ApplicationIDs, input.RequesterID)
	if err != nil {
		return nil, err
	}
	return &Output{BatchResult: *result}, nil
}
