package utils

import (
	"encoding/base64"
	"fmt"
	"html"
	"net/http"

	"techlearn/certificate"
	"techlearn/config"
	"techlearn/logger"
	"techlearn/models/course"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

const appName = "TechLearn LMS"

// Mailer delivers certificate emails.
type Mailer interface {
	SendCertificate(to string, info course.CertificateInfo, pdf []byte) error
}

// NewMailer returns a SendGrid mailer when an API key is configured and a logging
// mailer otherwise.
func NewMailer(cfg *config.Config, log *logger.Logger) Mailer {
	if cfg.SendgridAPIKey == "" {
		return &ConsoleMailer{log: log}
	}
	return NewSendgridMailer(cfg.SendgridAPIKey, cfg.EmailSender, sendgridHost)
}

type SendgridMailer struct {
	key  string
	host string
	from *sgmail.Email
}

func NewSendgridMailer(key, fromEmail, host string) *SendgridMailer {
	return &SendgridMailer{key: key, host: host, from: sgmail.NewEmail(appName, fromEmail)}
}

func (m *SendgridMailer) SendCertificate(to string, info course.CertificateInfo, pdf []byte) error {
	req := sendgrid.GetRequest(m.key, sendgridEndpoint, m.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(to, info, pdf))

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("send certificate email: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send certificate email: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (m *SendgridMailer) prepare(to string, info course.CertificateInfo, pdf []byte) *sgmail.SGMailV3 {
	subject, text, htmlBody := certificateEmail(info)

	p := sgmail.NewPersonalization()
	p.Subject = "[" + appName + "] " + subject
	p.AddTos(sgmail.NewEmail(info.StudentName, to))

	msg := sgmail.NewV3Mail()
	msg.SetFrom(m.from)
	msg.AddPersonalizations(p)
	msg.AddContent(
		sgmail.NewContent("text/plain", text),
		sgmail.NewContent("text/html", htmlBody),
	)
	if len(pdf) > 0 {
		msg.AddAttachment(&sgmail.Attachment{
			Content:     base64.StdEncoding.EncodeToString(pdf),
			Type:        "application/pdf",
			Filename:    certificate.FileName(info.CourseTitle),
			Disposition: "attachment",
		})
	}
	return msg
}

// ConsoleMailer logs emails instead of sending them.
type ConsoleMailer struct {
	log *logger.Logger
}

func (m *ConsoleMailer) SendCertificate(to string, info course.CertificateInfo, pdf []byte) error {
	subject, _, _ := certificateEmail(info)
	m.log.Info("Certificate email", "to", to, "subject", subject, "attachment_bytes", len(pdf))
	return nil
}

// SendCertificateEmail delivers the email in the background. Failures are logged.
func SendCertificateEmail(mailer Mailer, log *logger.Logger, to string, info course.CertificateInfo, pdf []byte) {
	go func() {
		if err := mailer.SendCertificate(to, info, pdf); err != nil {
			log.Warn("Failed to send certificate email", "to", to, "course", info.CourseTitle, "error", err)
		}
	}()
}

func certificateEmail(info course.CertificateInfo) (subject, text, htmlBody string) {
	subject = "Your certificate for " + info.CourseTitle
	text = fmt.Sprintf("Congratulations %s!\n\nYou completed %s on %s.\nCertificate number: %s\n",
		info.StudentName, info.CourseTitle, info.CompletionDate, info.Number)
	htmlBody = getEmailTemplate("Congratulations, "+html.EscapeString(info.StudentName)+"!", fmt.Sprintf(
		`<p>You have successfully completed <strong>%s</strong>.</p>
		<div class="info-box">Completed on %s<br>Certificate number: %s</div>
		<p>Your certificate is attached to this email.</p>`,
		html.EscapeString(info.CourseTitle), html.EscapeString(info.CompletionDate), html.EscapeString(info.Number)))
	return subject, text, htmlBody
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #1E40AF; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1F2937; line-height: 1.6; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #1D4ED8; margin: 20px 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>TECHLEARN LMS</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				Free Tech Education
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}
