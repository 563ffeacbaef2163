package services

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/_base.gohtml templates/*.gohtml
var templateFS embed.FS

const (
	TemplateNewProject      = "new_project"
	TemplateContactRequest  = "contact_request"
	TemplateApprovedRequest = "approved_request"
	TemplateRejectedRequest = "rejected_request"
	TemplateSignIn          = "sign_in"
)

// TemplateContext is the value every email template executes against.
type TemplateContext struct {
	FrontendBaseURL string
	SupportEmail    string
	Data            any
}

// EmailTemplates holds each named template parsed together with _base.
type EmailTemplates struct {
	templates    map[string]*template.Template
	frontendURL  string
	supportEmail string
}

func NewEmailTemplates(frontendURL, supportEmail string) (*EmailTemplates, error) {
	names := []string{
		TemplateNewProject,
		TemplateContactRequest,
		TemplateApprovedRequest,
		TemplateRejectedRequest,
		TemplateSignIn,
	}

	parsed := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := template.New("_base.gohtml").
			Option("missingkey=error").
			ParseFS(templateFS, "templates/_base.gohtml", "templates/"+name+".gohtml")
		if err != nil {
			return nil, fmt.Errorf("parsing email template %s: %w", name, err)
		}
		parsed[name] = tmpl
	}

	return &EmailTemplates{
		templates:    parsed,
		frontendURL:  frontendURL,
		supportEmail: supportEmail,
	}, nil
}

func (t *EmailTemplates) Render(name string, data any) (string, error) {
	tmpl, ok := t.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}

	var buff bytes.Buffer
	err := tmpl.Execute(&buff, TemplateContext{
		FrontendBaseURL: t.frontendURL,
		SupportEmail:    t.supportEmail,
		Data:            data,
	})
	if err != nil {
		return "", fmt.Errorf("rendering email template %s: %w", name, err)
	}
	return buff.String(), nil
}
