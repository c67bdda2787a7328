package dispatch

import (
	"context"
	"encoding/json"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"mission-workers/internal/common/aws"
	"mission-workers/internal/common/errors"
)

// Sender delivers one envelope of a single channel.
type Sender interface {
	Deliver(ctx context.Context, env *Envelope) error
}

// SNSPushSender publishes push notices to a topic; subscribers fan out by
// the recipient_id message attribute.
type SNSPushSender struct {
	client   aws.SNSService
	topicARN string
}

func NewSNSPushSender(client aws.SNSService, topicARN string) *SNSPushSender {
	return &SNSPushSender{client: client, topicARN: topicARN}
}

func (s *SNSPushSender) Deliver(ctx context.Context, env *Envelope) error {
	body, err := json.Marshal(map[string]interface{}{
		"id":        env.ID,
		"kind":      env.Kind,
		"recipient": env.Recipient,
		"payload":   env.Payload,
	})
	if err != nil {
		return errors.NewNotificationSendFailedError(env.Kind, err)
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(s.topicARN),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"recipient_id": {DataType: awssdk.String("String"), StringValue: awssdk.String(env.Recipient)},
			"kind":         {DataType: awssdk.String("String"), StringValue: awssdk.String(env.Kind)},
		},
	})
	if err != nil {
		return errors.NewNotificationSendFailedError(env.Kind, err)
	}
	return nil
}

// SESEmailSender renders a built-in template and sends it through SES.
type SESEmailSender struct {
	client aws.SESService
	from   string
}

func NewSESEmailSender(client aws.SESService, from string) *SESEmailSender {
	return &SESEmailSender{client: client, from: from}
}

func (s *SESEmailSender) Deliver(ctx context.Context, env *Envelope) error {
	tmpl, err := lookupTemplate(env.Kind)
	if err != nil {
		return errors.NewEmailSendFailedError(env.Kind, err)
	}
	subject := render(tmpl.Subject, env.Variables)
	body := render(tmpl.Body, env.Variables)

	_, err = s.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{env.Recipient},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
		Source: awssdk.String(s.from),
	})
	if err != nil {
		return errors.NewEmailSendFailedError(env.Kind, err)
	}
	return nil
}
