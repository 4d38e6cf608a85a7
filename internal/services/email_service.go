package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/ashford-college/admissions-api/internal/models"
)

// EmailService defines the interface for applicant notifications
type EmailService interface {
	SendDecisionEmail(ctx context.Context, email, applicantName string, app *models.Application) error
}

// AWSSESEmailService sends notifications using AWS SES
type AWSSESEmailService struct {
	sesClient   *ses.Client
	fromAddress string
	portalURL   string
	logger      *slog.Logger
}

// NewAWSSESEmailService creates a new AWS SES email service
func NewAWSSESEmailService(region, fromAddress, portalURL string, logger *slog.Logger) (*AWSSESEmailService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESEmailService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		portalURL:   portalURL,
		logger:      logger,
	}, nil
}

// SendDecisionEmail notifies an applicant that a decision has been recorded
// on their application. The email never states the decision itself; the
// applicant signs in to see it.
func (s *AWSSESEmailService) SendDecisionEmail(ctx context.Context, email, applicantName string, app *models.Application) error {
	statusLink := fmt.Sprintf("%s/applications/%s", s.portalURL, app.ID)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 4px; }
        .content { padding: 20px 0; }
        .button { display: inline-block; background-color: #0066cc; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; margin: 20px 0; }
        .footer { color: #666; font-size: 12px; margin-top: 20px; padding-top: 20px; border-top: 1px solid #eee; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Your Application Status Has Been Updated</h1>
        </div>
        <div class="content">
            <p>Dear %s,</p>
            <p>A decision has been recorded on your application to the <strong>%s</strong> program (%s entry).</p>
            <p>Sign in to the admissions portal to view your decision letter:</p>
            <p><a href="%s" class="button">View Application Status</a></p>
            <p>Or copy and paste this link in your browser:<br>
            <code>%s</code></p>
        </div>
        <div class="footer">
            <p>This is an automated message. Please do not reply to this email.</p>
            <p>If you have any questions, please contact the admissions office.</p>
        </div>
    </div>
</body>
</html>
`, applicantName, app.Program, app.EntryTerm, statusLink, statusLink)

	textBody := fmt.Sprintf(`Your Application Status Has Been Updated

Dear %s,

A decision has been recorded on your application to the %s program (%s entry).

Sign in to the admissions portal to view your decision letter:

%s

This is an automated message. Please do not reply to this email.
If you have any questions, please contact the admissions office.
`, applicantName, app.Program, app.EntryTerm, statusLink)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Your application status has been updated"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send decision email via SES",
			slog.String("application_id", app.ID),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("decision email sent",
		slog.String("application_id", app.ID),
		slog.String("message_id", *result.MessageId))

	return nil
}

// LogOnlyEmailService stands in when SES is not configured (local
// development, tests). It records the notification and succeeds.
type LogOnlyEmailService struct {
	logger *slog.Logger
}

func NewLogOnlyEmailService(logger *slog.Logger) *LogOnlyEmailService {
	return &LogOnlyEmailService{logger: logger}
}

func (s *LogOnlyEmailService) SendDecisionEmail(ctx context.Context, email, applicantName string, app *models.Application) error {
	s.logger.Info("decision email suppressed (email disabled)",
		slog.String("application_id", app.ID))
	return nil
}
