package mailing

import (
	"bytes"
	"html/template"
	"strconv"

	"foodies-api/internal/utils"

	"gopkg.in/gomail.v2"
)

type MailConfig struct {
	AppURL       string
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

// Enabled reports whether an SMTP server is configured.
func (c MailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.SMTPEmail != ""
}

// Mailer sends a single html message.
type Mailer interface {
	Send(toEmail string, subject string, body string) error
}

type smtpMailer struct {
	config MailConfig
}

// NewMailer returns nil when no SMTP server is configured.
func NewMailer(config MailConfig) Mailer {
	if !config.Enabled() {
		return nil
	}
	return &smtpMailer{config: config}
}

func (m *smtpMailer) Send(toEmail string, subject string, body string) error {
	emailConfig := m.config

	mailer := gomail.NewMessage()
	mailer.SetAddressHeader("From", emailConfig.SMTPEmail, emailConfig.SMTPSender)
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)
	port, err := strconv.Atoi(emailConfig.SMTPPort)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(
		emailConfig.SMTPHost,
		port,
		emailConfig.SMTPEmail,
		emailConfig.SMTPPassword,
	)

	return dialer.DialAndSend(mailer)
}

var welcomeTemplate = template.Must(template.New("welcome").Parse(
	`<p>Hi {{.Name}},</p><p>welcome to Foodies! Start sharing your recipes at <a href="{{.AppURL}}">{{.AppURL}}</a>.</p>`,
))

func WelcomeBody(name, appURL string) (string, error) {
	var buf bytes.Buffer
	err := welcomeTemplate.Execute(&buf, struct {
		Name   string
		AppURL string
	}{name, appURL})
	return buf.String(), err
}
