package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/Arisudan/Varshini-Industrries/internal/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// SESAPI is the subset of the SESv2 client used for lead mail.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailNotifier mails new leads to the sales inbox via SES.
type EmailNotifier struct {
	client SESAPI
	from   string
	to     []string
}

func NewEmailNotifier(client SESAPI, from string, to []string) *EmailNotifier {
	return &EmailNotifier{client: client, from: from, to: to}
}

var leadEmail = template.Must(template.New("lead").Parse(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2 style="color: #0b4f9c;">New enquiry</h2>
  <table cellpadding="6">
    <tr><td><b>Name</b></td><td>{{.Client}}</td></tr>
    <tr><td><b>Email</b></td><td>{{.Contact.Email}}</td></tr>
    <tr><td><b>Phone</b></td><td>{{.Contact.Phone}}</td></tr>
    <tr><td><b>Interest</b></td><td>{{.Interest}}</td></tr>
    <tr><td><b>Received</b></td><td>{{.Date.Display}}</td></tr>
  </table>
  <p>Open the admin dashboard to follow up.</p>
</body>
</html>`))

func (e *EmailNotifier) LeadCreated(ctx context.Context, lead models.Lead) error {
	if len(e.to) == 0 {
		return nil
	}
	var html bytes.Buffer
	if err := leadEmail.Execute(&html, lead); err != nil {
		return fmt.Errorf("render lead email: %w", err)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.from),
		Destination:      &sestypes.Destination{ToAddresses: e.to},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject(lead))},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: aws.String(html.String())},
					Text: &sestypes.Content{Data: aws.String(summary(lead))},
				},
			},
		},
	}
	if lead.Contact.Email != "" {
		input.ReplyToAddresses = []string{lead.Contact.Email}
	}
	if _, err := e.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
