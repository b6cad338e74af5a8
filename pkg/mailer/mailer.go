package mailer

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Sender dispatches the transactional emails the auth flows produce. It is
// consumed as a black box: failures are logged by the caller, never
// retried, and never block the triggering operation's success response.
type Sender interface {
	SendVerifyEmail(toAddress, token string) error
	SendForgotPasswordEmail(toAddress, token string) error
}

// Mailer sends email over SMTP via gomail.
type Mailer struct {
	config *mailerConfig
	dialer *gomail.Dialer

	// clientURL is the web client origin that verification and reset links
	// point at.
	clientURL string
}

// NewMailer creates a new Mailer instance. SMTP settings come from
// environment variables.
func NewMailer(logger *zerolog.Logger, clientURL string) *Mailer {
	cfg := newMailerConfig(logger)

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate Mailer configuration")
	}

	dialer := gomail.NewDialer(
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
	)

	return &Mailer{
		config:    cfg,
		dialer:    dialer,
		clientURL: clientURL,
	}
}

// SendVerifyEmail sends the email-verification mail with the token embedded
// in a link.
func (m *Mailer) SendVerifyEmail(toAddress, token string) error {
	link := fmt.Sprintf("%s/verify-email?token=%s", m.clientURL, token)
	body := renderTemplate(
		"Verify your email",
		"Click the link below to verify your email address.",
		link,
	)

	return m.sendHTML(toAddress, "Verify your email", body)
}

// SendForgotPasswordEmail sends the password-reset mail with the token
// embedded in a link.
func (m *Mailer) SendForgotPasswordEmail(toAddress, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.clientURL, token)
	body := renderTemplate(
		"You are receiving this email because you have requested to reset your password.",
		"Click the link below to reset your password.",
		link,
	)

	return m.sendHTML(toAddress, "Forgot password", body)
}

func (m *Mailer) sendHTML(toAddress, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.config.From)
	msg.SetHeader("To", toAddress)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	return m.dialer.DialAndSend(msg)
}

// mailerConfig holds SMTP configuration for sending emails.
type mailerConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

// newMailerConfig creates a mailerConfig instance from environment variables.
func newMailerConfig(logger *zerolog.Logger) *mailerConfig {
	cfg, err := env.ParseAs[mailerConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	return &cfg
}

// validate checks if the Mailer configuration is valid.
func (c *mailerConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.Username == "" {
		return fmt.Errorf("missing SMTP_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SMTP_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}

	return nil
}
