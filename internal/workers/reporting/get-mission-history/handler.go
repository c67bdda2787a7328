// internal/workers/reporting/get-mission-history/handler.go
package getmissionhistory

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"mission-workers/internal/common/camunda"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/validation"
	"mission-workers/internal/models"
)

const TaskType = "get-mission-history"

type Projection interface {
	GetMyMissionHistory(ctx context.Context, influencerID string) ([]models.MissionHistoryItem, error)
}

type Handler struct {
	config     *Config
	projection Projection
	validator  *validation.Validator
	runner     *camunda.JobRunner
	logger     logger.Logger
}

func NewHandler(cfg *Config, projection Projection, validator *validation.Validator, obs camunda.Observer, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     cfg,
		projection: projection,
		validator:  validator,
		runner:     camunda.NewJobRunner(TaskType, cfg.Timeout, obs, log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Debug("processing job", map[string]interface{}{"jobKey": job.Key})

	h.runner.Run(client, job, func(ctx context.Context) (interface{}, error) {
		var input Input
		if err := h.validator.Decode(TaskType, job.Variables, &input); err != nil {
			return nil, err
		}
		return h.Execute(ctx, &input)
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	items, err := h.projection.GetMyMissionHistory(ctx, input.InfluencerID)
	if err != nil {
		return nil, err
	}
	return &Output{InfluencerID: input.InfluencerID, Count: len(items), Missions: items}, nil
}
