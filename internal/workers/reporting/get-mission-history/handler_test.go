package getmissionhistory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mission-workers/internal/common/camunda/camundatest"
	"mission-workers/internal/common/config"
	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/common/validation"
	"mission-workers/internal/models"
	"mission-workers/pkg/registry"
)

type MockProjection struct {
	mock.Mock
}

func (m *MockProjection) GetMyMissionHistory(ctx context.Context, influencerID string) ([]models.MissionHistoryItem, error) {
	args := m.Called(ctx, influencerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MissionHistoryItem), args.Error(1)
}

func newHandler(t *testing.T, p Projection) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	v, err := validation.NewValidator(reg)
	require.NoError(t, err)
	return NewHandler(LoadConfig(config.WorkerConfig{}), p, v, nil, logger.NewTestLogger(t))
}

func TestHandle_ReturnsHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p := &MockProjection{}
	p.On("GetMyMissionHistory", mock.Anything, "inf-1").Return([]models.MissionHistoryItem{
		{ApplicationID: "a2", CampaignTitle: "Spring launch", Status: models.ApplicationCompleted, PortfolioEntryID: "p2", UpdatedAt: now},
		{ApplicationID: "a1", CampaignTitle: "Winter promo", Status: models.ApplicationSelected, UpdatedAt: now.Add(-time.Hour)},
	}, nil)

	client := camundatest.NewJobClient()
	newHandler(t, p).Handle(client, camundatest.NewJob(1, TaskType, Input{InfluencerID: "inf-1"}))

	require.Len(t, client.Completed, 1)
	var out Output
	require.NoError(t, client.CompletedVariables(0, &out))
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "p2", out.Missions[0].PortfolioEntryID)
	assert.Nil(t, out.Missions[1].Submission)
}

func TestHandle_MissingInfluencerRejected(t *testing.T) {
	p := &MockProjection{}
	client := camundatest.NewJobClient()
	newHandler(t, p).Handle(client, camundatest.NewJob(2, TaskType, map[string]string{}))

	require.Len(t, client.Thrown, 1)
	assert.Equal(t, string(errors.ErrCodeValidationFailed), client.Thrown[0].ErrorCode)
	p.AssertNotCalled(t, "GetMyMissionHistory", mock.Anything, mock.Anything)
}
