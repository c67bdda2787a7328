package selectapplicants

import (
	"context"
	"testing"

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

type MockSelector struct {
	mock.Mock
}

func (m *MockSelector) SelectMany(ctx context.Context, campaignID string, ids []string, requesterID string) (*models.BatchResult, error) {
	args := m.Called(ctx, campaignID, ids, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BatchResult), args.Error(1)
}

func newHandler(t *testing.T, selector Selector) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	v, err := validation.NewValidator(reg)
	require.NoError(t, err)
	return NewHandler(LoadConfig(config.WorkerConfig{}), selector, v, nil, logger.NewTestLogger(t))
}

func TestHandle_CompletesWithBatchResult(t *testing.T) {
	selector := &MockSelector{}
	result := models.NewBatchResult(2)
	result.AddSuccess("a1")
	result.AddFailure("a2", "INVALID_STATE", "application a2 must be in {pending} to become selected, current status is rejected")
	selector.On("SelectMany", mock.Anything, "camp-1", []string{"a1", "a2"}, "owner-1").Return(result, nil)

	client := camundatest.NewJobClient()
	job := camundatest.NewJob(1, TaskType, Input{CampaignID: "camp-1", RequesterID: "owner-1", ApplicationIDs: []string{"a1", "a2"}})

	newHandler(t, selector).Handle(client, job)

	require.Len(t, client.Completed, 1)
	var out Output
	require.NoError(t, client.CompletedVariables(0, &out))
	assert.Equal(t, 1, out.SuccessCount)
	assert.Equal(t, 1, out.FailCount)
	assert.Equal(t, []string{"a1"}, out.SuccessfulIDs)
	assert.Equal(t, "a2", out.Failures[0].ID)
	selector.AssertExpectations(t)
}

func TestHandle_InvalidVariablesThrowValidationFailed(t *testing.T) {
	selector := &MockSelector{}
	client := camundatest.NewJobClient()
	job := camundatest.NewJob(2, TaskType, map[string]interface{}{"campaignId": "camp-1"})

	newHandler(t, selector).Handle(client, job)

	require.Len(t, client.Thrown, 1)
	assert.Equal(t, string(errors.ErrCodeValidationFailed), client.Thrown[0].ErrorCode)
	selector.AssertNotCalled(t, "SelectMany", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_ForbiddenIsThrown(t *testing.T) {
	selector := &MockSelector{}
	selector.On("SelectMany", mock.Anything, "camp-1", []string{"a1"}, "intruder").
		Return(nil, errors.NewForbiddenError("requester intruder does not own campaign camp-1"))

	client := camundatest.NewJobClient()
	job := camundatest.NewJob(3, TaskType, Input{CampaignID: "camp-1", RequesterID: "intruder", ApplicationIDs: []string{"a1"}})

	newHandler(t, selector).Handle(client, job)

	require.Len(t, client.Thrown, 1)
	assert.Equal(t, string(errors.ErrCodeForbidden), client.Thrown[0].ErrorCode)
	assert.Empty(t, client.Completed)
}
