package email

import (
	"fmt"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// EmailService delivers account-lifecycle mail. Activation tokens reach
// guardians and staff out of band; nothing in the request path waits on it.
type EmailService interface {
	SendActivationEmail(toEmail, toName, token string) error
	SendWelcomeEmail(toEmail, toName string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	BaseURL   string        // Base URL for activation links
	TokenTTL  time.Duration // Activation link lifetime quoted in the mail
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

// SendActivationEmail sends the one-time activation link for a new account.
// Without SMTP credentials the token is logged instead, which keeps local
// development working.
func (s *EmailServiceImpl) SendActivationEmail(toEmail, toName, token string) error {
	activationURL := fmt.Sprintf("%s/api/v1/auth/activate?token=%s", s.config.BaseURL, token)

	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("token", token).
			Str("activationURL", activationURL).
			Msg("SMTP credentials not configured - activation email not sent. Use the token/URL above for testing.")
		return nil
	}

	expiry := ""
	if s.config.TokenTTL > 0 {
		expiry = fmt.Sprintf(" The link expires in %d hours.", int(s.config.TokenTTL.Hours()))
	}

	subject := "Activate your account"
	body := fmt.Sprintf("Hello %s,\r\n\r\nAn account has been created for you. "+
		"Set your password using the link below.%s\r\n\r\n%s\r\n",
		toName, expiry, activationURL)

	return s.send(toEmail, subject, body)
}

// SendWelcomeEmail sends a short note after successful activation
func (s *EmailServiceImpl) SendWelcomeEmail(toEmail, toName string) error {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Info().Str("toEmail", toEmail).Msg("SMTP not configured - welcome email skipped")
		return nil
	}

	body := fmt.Sprintf("Hello %s,\r\n\r\nYour account is now active. You can sign in at %s.\r\n",
		toName, s.config.BaseURL)

	return s.send(toEmail, "Welcome", body)
}

func (s *EmailServiceImpl) send(toEmail, subject, body string) error {
	addr := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	msg := []byte("From: " + s.config.FromName + " <" + s.config.FromEmail + ">\r\n" +
		"To: " + toEmail + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{toEmail}, msg); err != nil {
		s.logger.Error().Err(err).Str("toEmail", toEmail).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
