package notify

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"text/template"

	"backend-soozu/internal/config"

	"github.com/google/uuid"
)

var mailTmpl = template.Must(template.New("confirmation").Parse(
	`Subject: Your Soozu trip tracker
From: {{.From}}
To: {{.To}}

Hi {{if .TravelerName}}{{.TravelerName}}{{else}}traveler{{end}},

Your tracker for "{{.TripName}}" is ready.
Share link token: {{.Token}}
{{if .StartDate}}Trip starts: {{.StartDate}}
{{end}}
Keep this token private: anyone with it and your email can view the trip.
`))

type Mailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewMailer(cfg config.Config) *Mailer {
	m := &Mailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		from: cfg.MailFrom,
	}
	if cfg.SMTPUser != "" {
		m.auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	return m
}

var sendMailFn = smtp.SendMail

func (m *Mailer) Send(_ context.Context, msg Message) (Result, error) {
	if msg.To == "" {
		return Result{}, errors.New("recipient required")
	}

	var body bytes.Buffer
	data := struct {
		Message
		From string
	}{Message: msg, From: m.from}
	if err := mailTmpl.Execute(&body, data); err != nil {
		return Result{}, err
	}

	if err := sendMailFn(m.addr, m.auth, m.from, []string{msg.To}, body.Bytes()); err != nil {
		return Result{}, err
	}
	return Result{MessageID: uuid.NewString()}, nil
}
