package email

import (
	"fmt"
	"html/template"
	"strings"
)

const (
	templatePasswordReset = "password_reset"
	templateWelcome       = "welcome"
)

var builtinTemplates = map[string]string{
	templateWelcome: `<html>
<body style="font-family: sans-serif; color: #333;">
  <h2>Bienvenue {{.DisplayName}} !</h2>
  <p>Votre compte est prêt. Partagez vos recettes, suivez d'autres cuisiniers
  et gardez vos plats préférés sous la main.</p>
  <p>Bonne cuisine !</p>
</body>
</html>`,
	templatePasswordReset: `<html>
<body style="font-family: sans-serif; color: #333;">
  <h2>Bonjour {{.DisplayName}},</h2>
  <p>Vous avez demandé la réinitialisation de votre mot de passe.</p>
  <p><a href="{{.ResetLink}}">Réinitialiser mon mot de passe</a></p>
  <p>Ce lien expire dans une heure. Si vous n'êtes pas à l'origine de cette
  demande, ignorez simplement cet email.</p>
</body>
</html>`,
}

// TemplateManager holds parsed email templates. Parsing happens once at
// construction.
type TemplateManager struct {
	templates map[string]*template.Template
}

func NewTemplateManager() (*TemplateManager, error) {
	tm := &TemplateManager{templates: make(map[string]*template.Template, len(builtinTemplates))}
	for name, body := range builtinTemplates {
		tpl, err := template.New(name).Parse(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse email template %s: %w", name, err)
		}
		tm.templates[name] = tpl
	}
	return tm, nil
}

func (tm *TemplateManager) Render(name string, data interface{}) (string, error) {
	tpl, ok := tm.templates[name]
	if !ok {
		return "", fmt.Errorf("email template not found: %s", name)
	}
	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
