package email

// Provider sends application emails. Implementations must be safe for
// concurrent use.
type Provider interface {
	Send(to, subject, htmlBody string) error
	SendWelcome(to, displayName string) error
	SendPasswordReset(to, displayName, resetLink string) error
}

// NoopProvider drops every email. Used in tests and when SMTP is not
// configured.
type NoopProvider struct{}

func (NoopProvider) Send(to, subject, htmlBody string) error { return nil }

func (NoopProvider) SendWelcome(to, displayName string) error { return nil }

func (NoopProvider) SendPasswordReset(to, displayName, resetLink string) error { return nil }
