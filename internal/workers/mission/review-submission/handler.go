// internal/workers/mission/review-submission/handler.go
package reviewsubmission

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mission-workers/internal/common/camunda"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/validation"
	"mission-workers/internal/models"
)

const TaskType = "review-submission"

type Reviewer interface {
	Review(ctx context.Context, submissionID, reviewerID string, decision models.Decision) (*models.MissionSubmission, error)
}

type Handler struct {
	config    *Config
	reviewer  Reviewer
	validator *validation.Validator
	runner    *camunda.JobRunner
	logger    logger.Logger
}

func NewHandler(cfg *Config, reviewer Reviewer, validator *validation.Validator, obs camunda.Observer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    cfg,
		reviewer:  reviewer,
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

// Execute decodes the decision before touching any state, so a revision
// request without a reason never reaches the coordinator.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	decision, err := input.Decision.Decode()
	if err != nil {
		return nil, err
	}

	sub, err := h.reviewer.Review(ctx, input.SubmissionID, input.RequesterID, decision)
	if err != nil {
		return nil, err
	}
	return &Output{
		SubmissionID:  sub.ID,
		Decision:      decision.Kind(),
		ReviewStatus:  sub.ReviewStatus,
		RevisionCount: sub.RevisionCount,
		Submission:    *sub,
	}, nil
}
