// internal/workers/mission/submit-mission/handler.go
package submitmission

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mission-workers/internal/common/camunda"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/validation"
	"mission-workers/internal/missions"
	"mission-workers/internal/models"
)

const TaskType = "submit-mission"

type Submitter interface {
	Submit(ctx context.Context, cmd missions.SubmitCommand) (*models.MissionSubmission, error)
}

type Handler struct {
	config    *Config
	submitter Submitter
	validator *validation.Validator
	runner    *camunda.JobRunner
	logger    logger.Logger
}

func NewHandler(cfg *Config, submitter Submitter, validator *validation.Validator, obs camunda.Observer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    cfg,
		submitter: submitter,
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

// Execute handles first submissions and resubmissions alike.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	sub, err := h.submitter.Submit(ctx, missions.SubmitCommand{
		ApplicationID: input.ApplicationID,
		InfluencerID:  input.InfluencerID,
		ContentURL:    input.ContentURL,
		Note:          input.Note,
	})
	if err != nil {
		return nil, err
	}
	return &Output{
		SubmissionID: sub.ID,
		Platform:     sub.Platform,
		ReviewStatus: sub.ReviewStatus,
		Submission:   *sub,
	}, nil
}
