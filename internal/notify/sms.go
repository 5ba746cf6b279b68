package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// smsLimit keeps a lead alert within a single SMS segment.
const smsLimit = 160

// SNSAPI is the subset of the SNS client used for SMS.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SMSNotifier texts new leads to the sales phones via SNS.
// Numbers must be in E.164 format (e.g. +919876543210).
type SMSNotifier struct {
	client SNSAPI
	to     []string
}

func NewSMSNotifier(client SNSAPI, to []string) *SMSNotifier {
	return &SMSNotifier{client: client, to: to}
}

func (s *SMSNotifier) LeadCreated(ctx context.Context, lead models.Lead) error {
	msg := []rune(summary(lead))
	if len(msg) > smsLimit {
		msg = append(msg[:smsLimit-3], []rune("...")...)
	}
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	for _, phone := range s.to {
		out, err := s.client.Publish(ctx, &sns.PublishInput{
			Message:           aws.String(string(msg)),
			PhoneNumber:       aws.String(phone),
			MessageAttributes: attrs,
		})
		if err != nil {
			return fmt.Errorf("failed to send SMS to %s: %w", phone, err)
		}
		slog.Debug("lead sms sent", "to", phone, "message_id", aws.ToString(out.MessageId))
	}
	return nil
}
