package email

import (
	"fmt"

	"recipebook_backend/internal/config"

	"gopkg.in/gomail.v2"
)

// SMTPProvider delivers mail through the configured SMTP relay.
type SMTPProvider struct {
	cfg      *config.Config
	renderer *TemplateManager
}

func NewSMTPProvider(cfg *config.Config) (*SMTPProvider, error) {
	if cfg.Email.SMTPHost == "" {
		return nil, fmt.Errorf("smtp host is not configured")
	}
	renderer, err := NewTemplateManager()
	if err != nil {
		return nil, err
	}
	return &SMTPProvider{cfg: cfg, renderer: renderer}, nil
}

func (p *SMTPProvider) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.cfg.Email.FromEmail, p.cfg.Email.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(
		p.cfg.Email.SMTPHost,
		p.cfg.Email.SMTPPort,
		p.cfg.Email.SMTPUsername,
		p.cfg.Email.SMTPPassword,
	)
	return d.DialAndSend(m)
}

func (p *SMTPProvider) SendWelcome(to, displayName string) error {
	body, err := p.renderer.Render(templateWelcome, map[string]interface{}{
		"DisplayName": displayName,
	})
	if err != nil {
		return fmt.Errorf("failed to render welcome email: %w", err)
	}
	return p.Send(to, "Bienvenue !", body)
}

func (p *SMTPProvider) SendPasswordReset(to, displayName, resetLink string) error {
	body, err := p.renderer.Render(templatePasswordReset, map[string]interface{}{
		"DisplayName": displayName,
		"ResetLink":   resetLink,
	})
	if err != nil {
		return fmt.Errorf("failed to render password reset email: %w", err)
	}
	return p.Send(to, "Réinitialisation de votre mot de passe", body)
}
