package utils

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"innerspark/config"
	"innerspark/logger"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type EmailMessage struct {
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer delivers rendered email messages.
type Mailer interface {
	Send(msg EmailMessage) error
}

// DefaultMailer is replaced by SetupMailer; until then mail is only logged.
var DefaultMailer Mailer = consoleMailer{}

// SetupMailer picks SendGrid when an API key is configured
func SetupMailer(cfg *config.Config) {
	if cfg.SendgridAPIKey == "" {
		logger.Log.Warn("SENDGRID_API_KEY is empty, emails will only be logged")
		DefaultMailer = consoleMailer{}
		return
	}
	DefaultMailer = &sendgridMailer{
		client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:   sgmail.NewEmail(cfg.EmailSenderName, cfg.EmailSender),
	}
}

type sendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func (s *sendgridMailer) Send(msg EmailMessage) error {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail("", to))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	for _, a := range msg.Attachments {
		att := sgmail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.ContentType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		m.AddAttachment(att)
	}

	res, err := s.client.Send(m)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

type consoleMailer struct{}

func (consoleMailer) Send(msg EmailMessage) error {
	logger.Log.Info("email (not sent)", "to", msg.To, "subject", msg.Subject, "attachments", len(msg.Attachments))
	return nil
}

// SendEmail delivers a message through the configured mailer
func SendEmail(to []string, subject string, htmlBody string, attachments ...Attachment) error {
	err := DefaultMailer.Send(EmailMessage{To: to, Subject: subject, HTML: htmlBody, Attachments: attachments})
	if err != nil {
		logger.Log.Error("error sending email", "to", to, "subject", subject, "error", err)
		return err
	}
	logger.Log.Debug("email sent", "to", to, "subject", subject)
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F7F5FF; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #2E1A6B; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #2E1A6B; line-height: 1.6; }
			.content h2 { color: #2E1A6B; margin-top: 0; }
			.footer { background-color: #F7F5FF; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #EFEAFF; padding: 15px; border-radius: 4px; border-left: 4px solid #F2A541; margin: 20px 0; }
			.code { font-size: 36px; letter-spacing: 8px; text-align: center; color: #F2A541; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>%s</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; %d %s. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, senderName(), title, bodyContent, time.Now().Year(), senderName())
}

func senderName() string {
	if config.AppConfig != nil && config.AppConfig.EmailSenderName != "" {
		return config.AppConfig.EmailSenderName
	}
	return "InnerSpark"
}

// --- Triggers ---

func SendWelcomeEmail(email, name string) {
	subject := "Welcome to " + senderName()
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your account has been created. Browse the catalog and watch free previews before you enroll.</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome!", body))
}

// SendOTPEmail is synchronous so the caller can report delivery failures
func SendOTPEmail(otp, email string) error {
	body := fmt.Sprintf(`
		<p>Use this code to verify your email address:</p>
		<p class="code">%s</p>
		<p>The code expires in 10 minutes. Do not share it with anyone.</p>
	`, otp)
	return SendEmail([]string{email}, "Your verification code", getEmailTemplate("Email Verification", body))
}

func SendLoginNotificationEmail(email, name, ip, device, timeStr string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>A new sign-in to your account was detected.</p>
		<div class="info-box">
			<strong>Time:</strong> %s<br>
			<strong>IP address:</strong> %s<br>
			<strong>Device:</strong> %s
		</div>
		<p>If this wasn't you, change your password immediately.</p>
	`, name, timeStr, ip, device)

	go SendEmail([]string{email}, "New sign-in to your account", getEmailTemplate("Security Alert", body))
}

func SendEnrollmentEmail(email, userName, courseName string, expiresAt *time.Time) {
	access := "You have lifetime access to this course."
	if expiresAt != nil {
		access = "Your access is valid until " + expiresAt.Format("02 Jan 2006") + "."
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have successfully enrolled in:</p>
		<div class="info-box"><strong>%s</strong></div>
		<p>%s Complete all modules and pass the final exam to earn your certificate.</p>
	`, userName, courseName, access)

	go SendEmail([]string{email}, "Enrollment confirmed: "+courseName, getEmailTemplate("Enrollment Successful", body))
}

func SendPaymentReceiptEmail(email, userName, courseName, orderID string, amount int64) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We have received your payment.</p>
		<div class="info-box">
			<strong>Course:</strong> %s<br>
			<strong>Order ID:</strong> %s<br>
			<strong>Amount:</strong> %d
		</div>
	`, userName, courseName, orderID, amount)

	go SendEmail([]string{email}, "Payment received", getEmailTemplate("Payment Receipt", body))
}

// SendCertificateEmail mails the rendered certificate as an attachment
func SendCertificateEmail(email, userName, courseName, certificateNumber string, png []byte) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>.</p>
		<div class="info-box">Your certificate number is <strong>%s</strong>. Anyone can verify it on our website.</div>
	`, userName, courseName, certificateNumber)

	var attachments []Attachment
	if len(png) > 0 {
		attachments = append(attachments, Attachment{
			Filename:    "certificate-" + certificateNumber + ".png",
			ContentType: "image/png",
			Content:     png,
		})
	}
	go SendEmail([]string{email}, "Your certificate for "+courseName, getEmailTemplate("Certificate of Completion", body), attachments...)
}

func SendEnrollmentExpiryReminder(email, name, courseName string, expiresAt *time.Time) {
	when := "soon"
	if expiresAt != nil {
		when = "on " + expiresAt.Format("02 Jan 2006")
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your access to <strong>%s</strong> expires %s.</p>
		<p>Finish your remaining modules before then, or renew to keep learning.</p>
	`, name, courseName, when)

	go SendEmail([]string{email}, "Your course access is expiring", getEmailTemplate("Access Expiring", body))
}

func SendTicketReplyEmail(email, name, ticketTitle string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Our support team replied to your ticket <strong>%s</strong>.</p>
		<p>Open the help center to read the reply.</p>
	`, name, ticketTitle)

	go SendEmail([]string{email}, "New reply on your support ticket", getEmailTemplate("Support Update", body))
}

func SendModuleReviewedEmail(email, name, moduleTitle, status, reason string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your module <strong>%s</strong> was reviewed: <strong>%s</strong>.</p>
	`, name, moduleTitle, status)
	if reason != "" {
		body += fmt.Sprintf(`<div class="info-box"><strong>Reason:</strong> %s</div>`, reason)
	}

	go SendEmail([]string{email}, "Module review: "+moduleTitle, getEmailTemplate("Content Review", body))
}
