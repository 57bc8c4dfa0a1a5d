package utils

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"lms/config"
)

const appName = "LMS"

// Mailer delivers one HTML message.
type Mailer interface {
	Send(to []string, subject string, htmlBody string) error
}

// DefaultMailer is set from config in main; SendEmail goes through it.
var DefaultMailer Mailer = NoopMailer{}

func NewMailer(cfg *config.Config) Mailer {
	switch cfg.MailDriver {
	case "sendgrid":
		return NewSendGridMailer(cfg.SendGridAPIKey, cfg.EmailSender)
	case "none", "":
		return NoopMailer{}
	default:
		return &SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			From:     cfg.EmailSender,
			Password: cfg.Password,
		}
	}
}

type SMTPMailer struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (m *SMTPMailer) Send(to []string, subject string, htmlBody string) error {
	if len(to) == 0 {
		return errors.New("no recipients")
	}

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: %s <%s>\r\n", appName, m.From)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", m.From, m.Password, m.Host)
	return smtp.SendMail(m.Host+":"+m.Port, auth, m.From, to, []byte(msg))
}

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

type SendGridMailer struct {
	key  string
	from *sgmail.Email
}

func NewSendGridMailer(key, fromEmail string) *SendGridMailer {
	return &SendGridMailer{key: key, from: sgmail.NewEmail(appName, fromEmail)}
}

func (m *SendGridMailer) prepare(to []string, subject string, htmlBody string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = subject
	for _, addr := range to {
		p.AddTos(sgmail.NewEmail("", addr))
	}

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(sgmail.NewContent("text/html", htmlBody))
	return msg
}

func (m *SendGridMailer) Send(to []string, subject string, htmlBody string) error {
	if len(to) == 0 {
		return errors.New("no recipients")
	}
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(to, subject, htmlBody))

	res, err := sendgrid.API(req)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded with status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// NoopMailer drops every message.
type NoopMailer struct{}

func (NoopMailer) Send([]string, string, string) error { return nil }

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	if err := DefaultMailer.Send(to, subject, htmlBody); err != nil {
		log.Error().Err(err).Strs("to", to).Str("subject", subject).Msg("sending email failed")
		return err
	}
	log.Debug().Strs("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1E4078; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1E2A3A; line-height: 1.6; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #2E7D32; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; margin: 20px 0; text-align: center; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>%s</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">Happy learning!</div>
		</div>
	</body>
	</html>
	`, appName, html.EscapeString(title), bodyContent)
}

// CertificateEmail builds the subject and body announcing a new certificate.
func CertificateEmail(userName, courseName, certificateNumber, certificateURL string) (string, string) {
	subject := "Certificate of Completion: " + courseName
	link := ""
	// inline data URIs are too large for a mail link
	if certificateURL != "" && !strings.HasPrefix(certificateURL, "data:") {
		link = fmt.Sprintf(`<p><a href="%s" class="btn">Download certificate</a></p>`, html.EscapeString(certificateURL))
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>.</p>
		<div class="info-box">
			Certificate number<br><strong>%s</strong>
		</div>
		%s
		<p>Anyone can verify this certificate with its number.</p>
	`, html.EscapeString(userName), html.EscapeString(courseName), html.EscapeString(certificateNumber), link)
	return subject, getEmailTemplate("Course Completed", body)
}

// SendCertificateEmail mails the certificate notice in the background.
func SendCertificateEmail(email, userName, courseName, certificateNumber, certificateURL string) {
	subject, body := CertificateEmail(userName, courseName, certificateNumber, certificateURL)
	go SendEmail([]string{email}, subject, body)
}

// SendEnrollmentEmail confirms an enrollment in the background.
func SendEnrollmentEmail(email, userName, courseName string) {
	subject := "Enrollment Confirmed: " + courseName
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<p>Complete every lesson and pass the course quiz to earn your certificate.</p>
	`, html.EscapeString(userName), html.EscapeString(courseName))

	go SendEmail([]string{email}, subject, getEmailTemplate("Enrollment Successful", body))
}

// SendAccountCreatedEmail tells a new user which role they were given.
func SendAccountCreatedEmail(email, name, role string) {
	subject := "Your " + appName + " account"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>An administrator created a <strong>%s</strong> account for you.</p>
		<p>Sign in with this e-mail address and the password you were given.</p>
	`, html.EscapeString(name), html.EscapeString(strings.ToLower(role)))

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome Onboard!", body))
}
