package email

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/orris-inc/licensor/internal/domain/license"
	"github.com/orris-inc/licensor/internal/shared/biztime"
	"github.com/orris-inc/licensor/internal/shared/config"
	"github.com/orris-inc/licensor/internal/shared/logger"
	"github.com/orris-inc/licensor/internal/shared/services/markdown"
	"github.com/orris-inc/licensor/internal/shared/utils"
)

// ErrEmailServiceNotConfigured is returned when email delivery is disabled.
var ErrEmailServiceNotConfigured = errors.New("email service not configured")

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPEmailService renders license emails from localized markdown and sends
// them as multipart plain text and HTML.
type SMTPEmailService struct {
	config   config.EmailConfig
	sender   sender
	renderer markdown.Renderer
	logger   logger.Interface
}

func NewSMTPEmailService(cfg config.EmailConfig, renderer markdown.Renderer, logger logger.Interface) *SMTPEmailService {
	return &SMTPEmailService{
		config:   cfg,
		sender:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		renderer: renderer,
		logger:   logger,
	}
}

// NewNotifier returns the SMTP service when email is enabled and configured,
// otherwise a notifier that reports ErrEmailServiceNotConfigured.
func NewNotifier(cfg config.EmailConfig, renderer markdown.Renderer, logger logger.Interface) license.Notifier {
	if !cfg.Enabled || cfg.SMTPHost == "" {
		logger.Infow("email delivery disabled")
		return &disabledNotifier{logger: logger}
	}
	logger.Infow("email service initialized",
		"host", cfg.SMTPHost,
		"port", cfg.SMTPPort,
		"from", cfg.FromAddress,
	)
	return NewSMTPEmailService(cfg, renderer, logger)
}

func (s *SMTPEmailService) SendLicense(ctx context.Context, to string, n license.Notification) error {
	if to == "" {
		return fmt.Errorf("recipient is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, htmlBody, plainBody, err := s.compose(n)
	if err != nil {
		return err
	}

	if err := s.sendEmail(to, subject, htmlBody, plainBody); err != nil {
		return err
	}

	s.logger.Infow("license email sent",
		"to", utils.MaskEmail(to),
		"plan_id", n.PlanID,
	)
	return nil
}

func (s *SMTPEmailService) compose(n license.Notification) (subject, htmlBody, plainBody string, err error) {
	tag := matchLocale(s.config.Locale)
	tmpl := licenseTemplates[tag]

	expiry := n.ExpiryDate
	if expiry == license.PerpetualExpiry {
		expiry = perpetualLabels[tag]
	}
	product := s.config.ProductName
	if product == "" {
		product = "our product"
	}

	data := templateData{
		Code:       n.Code,
		Plan:       displayPlan(n.PlanID, tag),
		Product:    product,
		IssuedDate: biztime.FormatDate(n.IssuedAt),
		ExpiryDate: expiry,
		SupportURL: s.config.SupportURL,
	}

	subject, err = renderTemplate("subject", tmpl.subject, data)
	if err != nil {
		return "", "", "", err
	}
	source, err := renderTemplate("body", tmpl.body, data)
	if err != nil {
		return "", "", "", err
	}
	htmlBody, err = s.renderer.HTML(source)
	if err != nil {
		return "", "", "", err
	}
	plainBody, err = s.renderer.PlainText(source)
	if err != nil {
		return "", "", "", err
	}
	return subject, htmlBody, plainBody, nil
}

func (s *SMTPEmailService) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	if s.config.FromName != "" {
		m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	} else {
		m.SetHeader("From", s.config.FromAddress)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

type disabledNotifier struct {
	logger logger.Interface
}

func (d *disabledNotifier) SendLicense(_ context.Context, to string, _ license.Notification) error {
	d.logger.Warnw("email service not configured, cannot send license email", "to", utils.MaskEmail(to))
	return ErrEmailServiceNotConfigured
}
