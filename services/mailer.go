package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer sends account emails over SMTP. When SMTP is not configured it
// degrades to a no-op so registration still succeeds in development.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewMailerFromEnv builds a mailer from SMTP_* environment variables.
func NewMailerFromEnv() *Mailer {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USERNAME")
	}
	return &Mailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     from,
	}
}

// SendVerification emails a verification link for a freshly registered
// account.
func (m *Mailer) SendVerification(to, token string) error {
	if m.host == "" {
		logrus.Debugf("SMTP not configured, skipping verification email to %s", to)
		return nil
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	link := fmt.Sprintf("%s/api/auth/verify?token=%s", baseURL, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Verify your CivicPulse account")
	msg.SetBody("text/html", fmt.Sprintf(
		"<p>Welcome to CivicPulse!</p><p>Please <a href=%q>verify your email</a> to activate your account.</p>", link))

	dialer := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return dialer.DialAndSend(msg)
}
