package notifications

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strconv"
	"time"
)

// EmailService interface for sending emails
type EmailService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) error
	SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

// NewSMTPConfigFromEnv creates SMTP config from environment variables
func NewSMTPConfigFromEnv() *SMTPConfig {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}

	timeout, _ := time.ParseDuration(os.Getenv("SMTP_TIMEOUT"))
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &SMTPConfig{
		Host:      os.Getenv("SMTP_HOST"),
		Port:      port,
		Username:  os.Getenv("SMTP_USERNAME"),
		Password:  os.Getenv("SMTP_PASSWORD"),
		FromEmail: os.Getenv("FROM_EMAIL"),
		FromName:  "ProRenter",
		UseTLS:    true,
		Timeout:   timeout,
	}
}

// SMTPEmailService is a real SMTP implementation of the EmailService interface
type SMTPEmailService struct {
	config *SMTPConfig
}

// NewSMTPEmailService creates a new SMTP email service
func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if err := validateSMTPConfig(config); err != nil {
		return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
	}

	return &SMTPEmailService{config: config}, nil
}

func validateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return fmt.Errorf("SMTP config is nil")
	}
	if config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if config.Username == "" {
		return fmt.Errorf("SMTP username is required")
	}
	if config.Password == "" {
		return fmt.Errorf("SMTP password is required")
	}
	if config.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// SendNotification renders and sends a notification via email
func (s *SMTPEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	log.Printf("[SMTP] Sending %s notification to %s (%s)",
		notification.Type,
		notification.RecipientEmail,
		notification.RecipientName,
	)

	htmlBody, textBody := s.generateContent(notification)
	return s.SendHTML(ctx, notification.RecipientEmail, notification.Subject, htmlBody, textBody)
}

// SendHTML sends an HTML email
func (s *SMTPEmailService) SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error {
	message := s.buildMessage(to, subject, htmlBody, textBody)

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var err error
	if s.config.UseTLS {
		err = s.sendWithSTARTTLS(addr, auth, to, message)
	} else {
		err = smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, message)
	}

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Printf("[SMTP] Email sent successfully to %s", to)
	return nil
}

// sendWithSTARTTLS sends email with STARTTLS encryption
func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	tlsconfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         s.config.Host,
	}

	if err = client.StartTLS(tlsconfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	_, err = w.Write(message)
	if err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return w.Close()
}

// buildMessage creates the email message with proper headers
func (s *SMTPEmailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Date"] = time.Now().Format(time.RFC1123Z)

	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)
	headers["Content-Type"] = fmt.Sprintf("multipart/alternative; boundary=%s", boundary)

	message := ""
	for k, v := range headers {
		message += fmt.Sprintf("%s: %s\r\n", k, v)
	}
	message += "\r\n"

	if textBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary)
		message += "Content-Type: text/plain; charset=UTF-8\r\n"
		message += "\r\n"
		message += textBody + "\r\n"
	}

	if htmlBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary)
		message += "Content-Type: text/html; charset=UTF-8\r\n"
		message += "\r\n"
		message += htmlBody + "\r\n"
	}

	message += fmt.Sprintf("--%s--\r\n", boundary)

	return []byte(message)
}

// generateContent creates email content for notification types
func (s *SMTPEmailService) generateContent(notification *EmailNotification) (string, string) {
	data := notification.TemplateData

	switch notification.Type {
	case NotificationTypeDisputeOpened:
		htmlBody := fmt.Sprintf(`
			<h2>A dispute was opened</h2>
			<p>Hi %s,</p>
			<p>A dispute has been opened on your booking for <strong>%v</strong>.</p>
			<p>Reason: %v</p>
			<p>Please respond with your side of the story and any supporting photos or documents.</p>
			<p>ProRenter Resolutions Team</p>
		`,
			notification.RecipientName,
			data["listing_title"],
			data["reason"],
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nA dispute has been opened on your booking for %v.\nReason: %v\n\nPlease respond with your side of the story and any supporting photos or documents.\n\nProRenter Resolutions Team",
			notification.RecipientName,
			data["listing_title"],
			data["reason"],
		)

		return htmlBody, textBody

	case NotificationTypeEvidenceRequested:
		htmlBody := fmt.Sprintf(`
			<h2>More evidence is needed</h2>
			<p>Hi %s,</p>
			<p>An operator reviewing your dispute has asked for more evidence.</p>
			<p>%v</p>
			<p>Please upload it before <strong>%v</strong>.</p>
			<p>ProRenter Resolutions Team</p>
		`,
			notification.RecipientName,
			data["message"],
			data["due_at"],
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nAn operator reviewing your dispute has asked for more evidence.\n%v\nPlease upload it before %v.\n\nProRenter Resolutions Team",
			notification.RecipientName,
			data["message"],
			data["due_at"],
		)

		return htmlBody, textBody

	case NotificationTypeDisputeResolved:
		htmlBody := fmt.Sprintf(`
			<h2>Your dispute has been resolved</h2>
			<p>Hi %s,</p>
			<p>Decision: <strong>%v</strong></p>
			<p>Refund to renter: %v</p>
			<p>Deposit captured: %v</p>
			<p>If you disagree with this outcome you may appeal within the appeal window.</p>
			<p>ProRenter Resolutions Team</p>
		`,
			notification.RecipientName,
			data["decision"],
			data["refund"],
			data["deposit_captured"],
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nYour dispute has been resolved.\nDecision: %v\nRefund to renter: %v\nDeposit captured: %v\n\nIf you disagree with this outcome you may appeal within the appeal window.\n\nProRenter Resolutions Team",
			notification.RecipientName,
			data["decision"],
			data["refund"],
			data["deposit_captured"],
		)

		return htmlBody, textBody

	case NotificationTypeBookingConfirmed:
		htmlBody := fmt.Sprintf(`
			<h2>Booking Confirmed</h2>
			<p>Hi %s,</p>
			<p>Your booking for <strong>%v</strong> has been confirmed!</p>
			<p>Dates: %v to %v</p>
			<p>Total: %v</p>
			<p>ProRenter Team</p>
		`,
			notification.RecipientName,
			data["listing_title"],
			data["start_date"],
			data["end_date"],
			data["total"],
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nYour booking for %v has been confirmed!\nDates: %v to %v\nTotal: %v\n\nProRenter Team",
			notification.RecipientName,
			data["listing_title"],
			data["start_date"],
			data["end_date"],
			data["total"],
		)

		return htmlBody, textBody

	default:
		htmlBody := fmt.Sprintf(`
			<h2>%s</h2>
			<p>Hi %s,</p>
			<p>This is a notification from ProRenter.</p>
			<p>ProRenter Team</p>
		`,
			notification.Subject,
			notification.RecipientName,
		)

		textBody := fmt.Sprintf(
			"Hi %s,\n\nThis is a notification from ProRenter.\n\nProRenter Team",
			notification.RecipientName,
		)

		return htmlBody, textBody
	}
}

// MockEmailService logs instead of sending, used in development without SMTP
type MockEmailService struct{}

func NewMockEmailService() *MockEmailService {
	return &MockEmailService{}
}

func (s *MockEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	log.Printf("[MOCK] Sending %s notification to %s (%s)",
		notification.Type,
		notification.RecipientEmail,
		notification.RecipientName,
	)
	return nil
}

func (s *MockEmailService) SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error {
	log.Printf("[MOCK] To: %s, Subject: %s", to, subject)
	return nil
}
