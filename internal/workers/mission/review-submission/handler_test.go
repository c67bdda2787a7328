package reviewsubmission

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

type MockReviewer struct {
	mock.Mock
}

func (m *MockReviewer) Review(ctx context.Context, submissionID, reviewerID string, decision models.Decision) (*models.MissionSubmission, error) {
	args := m.Called(ctx, submissionID, reviewerID, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MissionSubmission), args.Error(1)
}

func newHandler(t *testing.T, reviewer Reviewer) *Handler {
	t.Helper()
	reg, err := registry.Default()
	require.NoError(t, err)
	v, err := validation.NewValidator(reg)
	require.NoError(t, err)
	return NewHandler(LoadConfig(config.WorkerConfig{}), reviewer, v, nil, logger.NewTestLogger(t))
}

func intPtr(v int) *int { return &v }

func TestHandle_Approve(t *testing.T) {
	reviewer := &MockReviewer{}
	reviewer.On("Review", mock.Anything, "s1", "owner-1", models.Approve{Feedback: "great", Rating: intPtr(5)}).
		Return(&models.MissionSubmission{ID: "s1", ReviewStatus: models.ReviewApproved}, nil)

	client := camundatest.NewJobClient()
	job := camundatest.NewJob(1, TaskType, map[string]interface{}{
		"submissionId": "s1",
		"requesterId":  "owner-1",
		"decision":     map[string]interface{}{"type": "approve", "feedback": "great", "rating": 5},
	})
	newHandler(t, reviewer).Handle(client, job)

	require.Len(t, client.Completed, 1)
	var out Output
	require.NoError(t, client.CompletedVariables(0, &out))
	assert.Equal(t, models.DecisionApprove, out.Decision)
	assert.Equal(t, models.ReviewApproved, out.ReviewStatus)
	reviewer.AssertExpectations(t)
}

func TestExecute_RequestRevision(t *testing.T) {
	reviewer := &MockReviewer{}
	reviewer.On("Review", mock.Anything, "s1", "owner-1", models.RequestRevision{Reason: "logo hidden"}).
		Return(&models.MissionSubmission{ID: "s1", ReviewStatus: models.ReviewRevisionRequested, RevisionCount: 1}, nil)

	out, err := newHandler(t, reviewer).Execute(context.Background(), &Input{
		SubmissionID: "s1",
		RequesterID:  "owner-1",
		Decision:     models.DecisionPayload{Type: models.DecisionRequestRevision, Reason: "  logo hidden "},
	})

	require.NoError(t, err)
	assert.Equal(t, models.DecisionRequestRevision, out.Decision)
	assert.Equal(t, 1, out.RevisionCount)
}

func TestHandle_BlankRevisionReasonNeverReachesReviewer(t *testing.T) {
	reviewer := &MockReviewer{}
	client := camundatest.NewJobClient()
	job := camundatest.NewJob(2, TaskType, map[string]interface{}{
		"submissionId": "s1",
		"requesterId":  "owner-1",
		"decision":     map[string]interface{}{"type": "request_revision", "reason": "   "},
	})

	newHandler(t, reviewer).Handle(client, job)

	require.Len(t, client.Thrown, 1)
	assert.Equal(t, string(errors.ErrCodeValidationFailed), client.Thrown[0].ErrorCode)
	reviewer.AssertNotCalled(t, "Review", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandle_UnknownDecisionTypeRejectedBySchema(t *testing.T) {
	reviewer := &MockReviewer{}
	client := camundatest.NewJobClient()
	job := camundatest.NewJob(3, TaskType, map[string]interface{}{
		"submissionId": "s1",
		"requesterId":  "owner-1",
		"decision":     map[string]interface{}{"type": "maybe"},
	})

	newHandler(t, reviewer).Handle(client, job)

	require.Len(t, client.Thrown, 1)
	assert.Equal(t, string(errors.ErrCodeValidationFailed), client.Thrown[0].ErrorCode)
}

func TestHandle_AlreadyApprovedIsThrown(t *testing.T) {
	reviewer := &MockReviewer{}
	reviewer.On("Review", mock.Anything, "s1", "owner-1", mock.Anything).
		Return(nil, errors.NewInvalidStateError("submission s1 is already approved"))

	client := camundatest.NewJobClient()
	job := camundatest.NewJob(4, TaskType, Input{
		SubmissionID: "s1", RequesterID: "owner-1", Decision: models.DecisionPayload{Type: models.DecisionApprove},
	})
	newHandler(t, reviewer).Handle(client, job)

	require.Len(t, client.Thrown, 1)
	assert.Equal(t, string(errors.ErrCodeInvalidState), client.Thrown[0].ErrorCode)
}
