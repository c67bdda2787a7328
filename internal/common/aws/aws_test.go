package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	SendEmailFunc func(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, input, optFns...)
}

type mockSNS struct {
	PublishFunc func(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, input, optFns...)
}

func TestSESClient_Delegates(t *testing.T) {
	var got *ses.SendEmailInput
	client := NewSESClientFrom(&mockSES{
		SendEmailFunc: func(_ context.Context, input *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			got = input
			return &ses.SendEmailOutput{MessageId: awssdk.String("msg-1")}, nil
		},
	})

	out, err := client.SendEmail(context.Background(), &ses.SendEmailInput{Source: awssdk.String("noreply@example.com")})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", *out.MessageId)
	assert.Equal(t, "noreply@example.com", *got.Source)
}

func TestSNSClient_Delegates(t *testing.T) {
	client := NewSNSClientFrom(&mockSNS{
		PublishFunc: func(_ context.Context, input *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return &sns.PublishOutput{MessageId: awssdk.String(*input.Message + "-id")}, nil
		},
	})

	out, err := client.Publish(context.Background(), &sns.PublishInput{Message: awssdk.String("hello")})
	require.NoError(t, err)
	assert.Equal(t, "hello-id", *out.MessageId)
}
