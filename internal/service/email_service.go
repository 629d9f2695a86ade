package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
)

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	log        *zap.Logger
}

// NewEmailService creates a new email service. A service without a
// configured from address is created disabled and skips every send.
func NewEmailService(log *zap.Logger, awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if fromEmail == "" {
		log.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, log: log}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Info("email service enabled",
		zap.String("from", fromEmail),
		zap.String("region", awsRegion))

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		log:        log,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendInvitationEmail sends a farm invitation with its acceptance link.
func (s *EmailService) SendInvitationEmail(ctx context.Context, toEmail, farmName, inviterName string, role models.Role, token string) error {
	if !s.enabled {
		s.log.Debug("skipping invitation email, service disabled", zap.String("to", toEmail))
		return nil
	}

	inviteLink := fmt.Sprintf("%s/invitations/%s", s.appBaseURL, token)
	roleName := strings.ToLower(string(role))

	subject := fmt.Sprintf("You've been invited to %s", farmName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2e7d32; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2e7d32; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Farm Invitation</h1>
		</div>
		<div class="content">
			<p>Hi,</p>
			<p>%s has invited you to join <strong>%s</strong> as a %s.</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Accept Invitation</a>
			</p>
			<p>Or copy and paste this link into your browser:</p>
			<p>%s</p>
			<p>This invitation expires in 7 days.</p>
		</div>
		<div class="footer">
			<p>If you weren't expecting this invitation, you can ignore this email.</p>
		</div>
	</div>
</body>
</html>
`, inviterName, farmName, roleName, inviteLink, inviteLink)

	textBody := fmt.Sprintf(`Hi,

%s has invited you to join %s as a %s.

Accept the invitation here: %s

This invitation expires in 7 days. If you weren't expecting it, you can ignore this email.
`, inviterName, farmName, roleName, inviteLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendDueEventsEmail notifies a farm owner about events coming due.
func (s *EmailService) SendDueEventsEmail(ctx context.Context, toEmail, farmName string, dueCount int64) error {
	if !s.enabled {
		s.log.Debug("skipping reminder email, service disabled", zap.String("to", toEmail))
		return nil
	}

	plural := "events are"
	if dueCount == 1 {
		plural = "event is"
	}

	subject := fmt.Sprintf("%s: upcoming events reminder", farmName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2e7d32; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2e7d32; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Upcoming Events</h1>
		</div>
		<div class="content">
			<p>Hi,</p>
			<p><strong>%d</strong> %s due on %s within the next few days.</p>
			<p style="text-align: center;">
				<a href="%s" class="button">Open Farm Tracker</a>
			</p>
		</div>
	</div>
</body>
</html>
`, dueCount, plural, farmName, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi,

%d %s due on %s within the next few days.

Open Farm Tracker: %s
`, dueCount, plural, farmName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	s.log.Info("email sent",
		zap.String("to", toEmail),
		zap.String("subject", subject))
	return nil
}
