package mailer

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/intersectiondata/leadflow/internal/repository"
)

const outreachSubject = "Oracle EPM support for {{.CompanyName}}"

const outreachBody = `Hi {{.FirstName}},

I noticed {{.CompanyName}} is hiring for a {{if .Title}}{{.Title}}{{else}}finance{{end}} role, which usually means the planning workload is growing. We help finance teams get more out of Oracle EPM (PBCS, EPBCS, Hyperion) without adding headcount.

Would a quick 30 minute call next week be useful? Happy to share what similar teams are doing.

Best,
{{.SenderName}}
{{.SenderCompany}}

--
{{.SenderCompany}}{{if .CompanyAddress}}, {{.CompanyAddress}}{{end}}
Reply "unsubscribe" to stop receiving these emails.{{if .PrivacyPolicyURL}}
Privacy policy: {{.PrivacyPolicyURL}}{{end}}`

// TemplateRenderer personalizes the cold-outreach email per candidate.
type TemplateRenderer struct {
	subject *template.Template
	body    *template.Template

	SenderName       string
	SenderCompany    string
	CompanyAddress   string
	PrivacyPolicyURL string
}

type templateData struct {
	FirstName        string
	Title            string
	CompanyName      string
	SenderName       string
	SenderCompany    string
	CompanyAddress   string
	PrivacyPolicyURL string
}

// NewTemplateRenderer parses the built-in outreach template.
func NewTemplateRenderer(senderName, senderCompany, companyAddress, privacyPolicyURL string) (*TemplateRenderer, error) {
	subject, err := template.New("subject").Parse(outreachSubject)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	body, err := template.New("body").Parse(outreachBody)
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}
	return &TemplateRenderer{
		subject:          subject,
		body:             body,
		SenderName:       senderName,
		SenderCompany:    senderCompany,
		CompanyAddress:   companyAddress,
		PrivacyPolicyURL: privacyPolicyURL,
	}, nil
}

// Render produces the subject and body for one candidate.
func (r *TemplateRenderer) Render(candidate repository.SendCandidate) (string, string, error) {
	data := templateData{
		FirstName:        candidate.Contact.FirstName,
		Title:            candidate.Contact.Title,
		CompanyName:      candidate.CompanyName,
		SenderName:       r.SenderName,
		SenderCompany:    r.SenderCompany,
		CompanyAddress:   r.CompanyAddress,
		PrivacyPolicyURL: r.PrivacyPolicyURL,
	}
	if data.FirstName == "" {
		data.FirstName = "there"
	}

	var subject, body strings.Builder
	if err := r.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := r.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subject.String(), body.String(), nil
}
