package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mission-workers/internal/common/errors"
)

func testClient() *Client {
	return &Client{config: &ClientConfig{
		RequestTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: 2,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
		},
	}}
}

func TestExecuteWithRetry_RecoversFromTransientError(t *testing.T) {
	c := testClient()
	attempts := 0

	result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		attempts++
		if attempts < 2 {
			return nil, status.Error(codes.Unavailable, "connection refused")
		}
		return "ok", nil
	}, "topology")

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 2, attempts)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	c := testClient()
	attempts := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		attempts++
		return nil, status.Error(codes.NotFound, "process instance not found")
	}, "cancel")

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, errors.ErrCodeNotFound, errors.CodeOf(err))
}

func TestExecuteWithRetry_ExhaustsRetries(t *testing.T) {
	c := testClient()
	attempts := 0

	_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
		attempts++
		return nil, status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}, "topology")

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, errors.ErrCodeExternalService, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "after 3 attempt(s)")
}

func TestExecuteWithRetry_StopsWhenContextCancelled(t *testing.T) {
	c := testClient()
	c.config.RetryConfig.BaseDelay = time.Second
	c.config.RetryConfig.MaxDelay = time.Second
	ctx, cancel := context.WithCancel(context.Background())

	_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
		cancel()
		return nil, status.Error(codes.Unavailable, "gateway restarting")
	}, "topology")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		code codes.Code
		want errors.ErrorCode
	}{
		{codes.NotFound, errors.ErrCodeNotFound},
		{codes.FailedPrecondition, errors.ErrCodeInvalidState},
		{codes.AlreadyExists, errors.ErrCodeInvalidState},
		{codes.PermissionDenied, errors.ErrCodeForbidden},
		{codes.Internal, errors.ErrCodeExternalService},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			err := mapZeebeError(status.Error(tt.code, "boom"), "complete", 1)
			assert.Equal(t, tt.want, errors.CodeOf(err))
		})
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(status.Error(codes.Unavailable, "reset")))
	assert.True(t, isRetryableZeebeError(context.DeadlineExceeded))
	assert.False(t, isRetryableZeebeError(status.Error(codes.InvalidArgument, "bad request")))
	assert.False(t, isRetryableZeebeError(stderrors.New("plain failure")))
}
