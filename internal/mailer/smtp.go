package mailer

import (
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"pycsa-web/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpSender struct {
	dialer dialer
	from   string
	to     string
	logger *zap.Logger
}

// NewSMTPSender creates a Sender that delivers through an SMTP relay
func NewSMTPSender(cfg config.EmailConfig, logger *zap.Logger) Sender {
	from := cfg.From
	if from == "" {
		from = cfg.SMTPUser
	}
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   from,
		to:     cfg.To,
		logger: logger,
	}
}

var bodyTemplate = template.Must(template.New("email").Parse(`<h2>{{.Title}}</h2>
<table cellpadding="6" style="border-collapse:collapse">
{{range .Rows}}<tr><th align="left">{{.Key}}</th><td>{{.Value}}</td></tr>
{{end}}</table>`))

type row struct {
	Key   string
	Value string
}

func subject(templateID string, params map[string]string) string {
	if s := params["asunto"]; s != "" {
		return s
	}
	if params["tipoServicio"] != "" {
		return "Solicitud de cotización: " + params["tipoServicio"]
	}
	return "Nuevo mensaje (" + templateID + ")"
}

func renderBody(title string, params map[string]string) (string, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, row{Key: k, Value: params[k]})
	}

	var b strings.Builder
	if err := bodyTemplate.Execute(&b, struct {
		Title string
		Rows  []row
	}{title, rows}); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *smtpSender) Send(ctx context.Context, templateID string, params map[string]string) error {
	subj := subject(templateID, params)
	body, err := renderBody(subj, params)
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	if replyTo := params["correo"]; replyTo != "" {
		m.SetHeader("Reply-To", replyTo)
	}
	m.SetHeader("Subject", subj)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error("SMTP delivery failed", zap.String("template", templateID), zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("Email sent", zap.String("provider", "smtp"), zap.String("template", templateID))
	return nil
}
