package dispatch

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mission-workers/internal/common/logger"
	"mission-workers/internal/models"
)

const queueKey = "missions:dispatch"

type mockSES struct {
	mu            sync.Mutex
	inputs        []*ses.SendEmailInput
	SendEmailFunc func(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *mockSES) SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, input, optFns...)
	}
	return &ses.SendEmailOutput{MessageId: awssdk.String("msg-1")}, nil
}

type mockSNS struct {
	mu          sync.Mutex
	inputs      []*sns.PublishInput
	PublishFunc func(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNS) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, input, optFns...)
	}
	return &sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil
}

func (m *mockSNS) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestQueue_EnqueuesBothChannels(t *testing.T) {
	_, rdb := setup(t)
	q := NewQueue(rdb, queueKey)
	ctx := context.Background()

	require.NoError(t, q.Notifications().Send(ctx, "inf-1", models.NotificationSelected, map[string]interface{}{
		"campaignId": "camp-1",
	}))
	require.NoError(t, q.Emails().Send(ctx, "inf1@example.com", models.EmailMissionApproved, map[string]string{
		"campaignTitle": "Spring launch",
	}))

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestQueue_RedisDownReturnsError(t *testing.T) {
	mr, rdb := setup(t)
	mr.Close()
	q := NewQueue(rdb, queueKey)

	err := q.Notifications().Send(context.Background(), "inf-1", models.NotificationRejected, nil)
	assert.Error(t, err)
}

func TestProcessor_DeliversInEnqueueOrder(t *testing.T) {
	_, rdb := setup(t)
	q := NewQueue(rdb, queueKey)
	ctx := context.Background()

	push := &mockSNS{}
	mail := &mockSES{}
	p := NewProcessor(rdb, queueKey, logger.NewTestLogger(t),
		WithPushSender(NewSNSPushSender(push, "arn:aws:sns:ap-northeast-2:1:missions")),
		WithEmailSender(NewSESEmailSender(mail, "noreply@example.com")),
	)

	require.NoError(t, q.Notifications().Send(ctx, "inf-1", models.NotificationRevisionRequested, map[string]interface{}{
		"revisionNumber": 2,
	}))
	require.NoError(t, q.Emails().Send(ctx, "inf1@example.com", models.EmailRevisionRequested, map[string]string{
		"campaignTitle":  "Spring launch",
		"reason":         "logo hidden",
		"revisionNumber": "2",
	}))

	n, err := p.Drain(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, push.inputs, 1)
	pub := push.inputs[0]
	assert.Equal(t, "arn:aws:sns:ap-northeast-2:1:missions", awssdk.ToString(pub.TopicArn))
	assert.Equal(t, "inf-1", awssdk.ToString(pub.MessageAttributes["recipient_id"].StringValue))
	assert.Equal(t, "revision-requested", awssdk.ToString(pub.MessageAttributes["kind"].StringValue))
	assert.Contains(t, awssdk.ToString(pub.Message), `"revisionNumber":2`)

	require.Len(t, mail.inputs, 1)
	email := mail.inputs[0]
	assert.Equal(t, []string{"inf1@example.com"}, email.Destination.ToAddresses)
	assert.Equal(t, "noreply@example.com", awssdk.ToString(email.Source))
	assert.Equal(t, "Revision requested for Spring launch", awssdk.ToString(email.Message.Subject.Data))
	body := awssdk.ToString(email.Message.Body.Text.Data)
	assert.Contains(t, body, "revision #2")
	assert.Contains(t, body, "Reason: logo hidden")
	assert.NotContains(t, body, "{{")
}

func TestProcessor_FailuresAreDroppedNotRetried(t *testing.T) {
	_, rdb := setup(t)
	q := NewQueue(rdb, queueKey)
	ctx := context.Background()

	push := &mockSNS{PublishFunc: func(context.Context, *sns.PublishInput, ...func(*sns.Options)) (*sns.PublishOutput, error) {
		return nil, stderrors.New("throttled")
	}}
	p := NewProcessor(rdb, queueKey, logger.NewTestLogger(t), WithPushSender(NewSNSPushSender(push, "arn")))

	require.NoError(t, q.Notifications().Send(ctx, "inf-1", models.NotificationApproved, nil))
	n, err := p.Drain(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Zero(t, left)
}

func TestProcessor_DisabledChannelAndMalformed(t *testing.T) {
	mr, rdb := setup(t)
	q := NewQueue(rdb, queueKey)
	ctx := context.Background()
	p := NewProcessor(rdb, queueKey, logger.NewTestLogger(t))

	_, err := mr.Lpush(queueKey, "not json")
	require.NoError(t, err)
	require.NoError(t, q.Emails().Send(ctx, "inf1@example.com", models.EmailMissionApproved, nil))

	n, err := p.Drain(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestProcessor_UnknownTemplateFails(t *testing.T) {
	sender := NewSESEmailSender(&mockSES{}, "noreply@example.com")
	err := sender.Deliver(context.Background(), &Envelope{Channel: ChannelEmail, Kind: "welcome"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EMAIL_SEND_FAILED")
}

func TestProcessor_RunUntilCancelled(t *testing.T) {
	_, rdb := setup(t)
	q := NewQueue(rdb, queueKey)
	push := &mockSNS{}
	p := NewProcessor(rdb, queueKey, logger.NewTestLogger(t),
		WithPushSender(NewSNSPushSender(push, "arn")),
		WithPollTimeout(100*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.NoError(t, q.Notifications().Send(context.Background(), "inf-1", models.NotificationSelected, nil))
	assert.Eventually(t, func() bool { return push.count() == 1 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("processor did not stop")
	}
}

func TestRender_RemovesMissingPlaceholders(t *testing.T) {
	got := render("Hi {{name}}, {{missing}}see {{url}}", map[string]string{"name": "Mina", "url": "https://x"})
	assert.Equal(t, "Hi Mina, see https://x", got)
}
