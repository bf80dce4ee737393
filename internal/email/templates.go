// Package email renders queued notifications and delivers them through the Resend API.
package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template identifiers accepted on queue records
const (
	TemplateWelcome              = "welcome"
	TemplateAnnouncement         = "announcement"
	TemplateAccountWarning       = "account_warning"
	TemplateAccountDisabled      = "account_disabled"
	TemplateAccountEnabled       = "account_enabled"
	TemplateNewQuestion          = "new_question"
	TemplateEventReminder        = "event_reminder"
	TemplateVerificationReminder = "verification_reminder"
)

// FallbackTemplate is used for any identifier not in the template set
const FallbackTemplate = TemplateAnnouncement

const layout = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{block "title" .}}Event Q&amp;A{{end}}</title>
</head>
<body style="margin:0;padding:0;background:#f4f4f7;font-family:Helvetica,Arial,sans-serif;color:#333;">
<table role="presentation" width="100%" cellpadding="0" cellspacing="0">
<tr><td align="center" style="padding:24px;">
<table role="presentation" width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;">
<tr><td style="padding:32px;">
{{template "body" .}}
</td></tr>
<tr><td style="padding:16px 32px;font-size:12px;color:#999;">
You received this email because you have an account with Event Q&amp;A.
</td></tr>
</table>
</td></tr>
</table>
</body>
</html>
`

var bodies = map[string]string{
	TemplateWelcome: `{{define "title"}}Welcome{{end}}{{define "body"}}
<h1>Welcome, {{field . "name" "there"}}!</h1>
<p>Your account is ready. You can now create events and collect questions from your audience.</p>
{{with field . "dashboardUrl" ""}}<p><a href="{{.}}">Open your dashboard</a></p>{{end}}
{{end}}`,

	TemplateAnnouncement: `{{define "title"}}{{field . "title" "Announcement"}}{{end}}{{define "body"}}
<h1>{{field . "title" "Announcement"}}</h1>
<p>{{field . "message" ""}}</p>
{{end}}`,

	TemplateAccountWarning: `{{define "title"}}Account warning{{end}}{{define "body"}}
<h1>Account warning</h1>
<p>Hi {{field . "name" "there"}},</p>
<p>We noticed activity on your account that goes against our terms of use.</p>
{{with field . "reason" ""}}<p><strong>Reason:</strong> {{.}}</p>{{end}}
<p>Further violations may lead to your account being disabled.</p>
{{end}}`,

	TemplateAccountDisabled: `{{define "title"}}Account disabled{{end}}{{define "body"}}
<h1>Your account has been disabled</h1>
<p>Hi {{field . "name" "there"}},</p>
{{with field . "reason" ""}}<p><strong>Reason:</strong> {{.}}</p>{{end}}
<p>If you believe this is a mistake, reply to this email.</p>
{{end}}`,

	TemplateAccountEnabled: `{{define "title"}}Account re-enabled{{end}}{{define "body"}}
<h1>Your account is active again</h1>
<p>Hi {{field . "name" "there"}},</p>
<p>Your account has been re-enabled and you can sign in as usual.</p>
{{end}}`,

	TemplateNewQuestion: `{{define "title"}}New question{{end}}{{define "body"}}
<h1>New question for {{field . "eventTitle" "your event"}}</h1>
<blockquote style="border-left:4px solid #4f46e5;margin:0;padding:8px 16px;">{{field . "question" ""}}</blockquote>
<p>Asked by {{field . "author" "Anonymous"}}</p>
{{with field . "eventUrl" ""}}<p><a href="{{.}}">Moderate questions</a></p>{{end}}
{{end}}`,

	TemplateEventReminder: `{{define "title"}}Event reminder{{end}}{{define "body"}}
<h1>{{field . "eventTitle" "Your event"}} is coming up</h1>
{{with field . "eventDate" ""}}<p>Starts: {{.}}</p>{{end}}
{{with field . "eventUrl" ""}}<p><a href="{{.}}">View event</a></p>{{end}}
{{end}}`,

	TemplateVerificationReminder: `{{define "title"}}Verify your email{{end}}{{define "body"}}
<h1>Please verify your email</h1>
<p>Hi {{field . "name" "there"}},</p>
<p>You have not verified your email address yet. Verified accounts can publish events.</p>
{{with field . "verificationUrl" ""}}<p><a href="{{.}}">Verify email</a></p>{{end}}
{{end}}`,
}

var funcs = template.FuncMap{
	"field": field,
}

var templates = mustParse()

func mustParse() map[string]*template.Template {
	base := template.Must(template.New("layout").Funcs(funcs).Parse(layout))
	out := make(map[string]*template.Template, len(bodies))
	for id, body := range bodies {
		t := template.Must(base.Clone())
		out[id] = template.Must(t.Parse(body))
	}
	return out
}

// field reads a key from the data bag, returning fallback when absent, nil, or empty
func field(data map[string]any, key, fallback string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return fallback
	}
	s := fmt.Sprint(v)
	if s == "" {
		return fallback
	}
	return s
}

// IsKnownTemplate reports whether id names one of the fixed templates
func IsKnownTemplate(id string) bool {
	_, ok := templates[id]
	return ok
}

// Render produces the HTML document for a queue record. Unknown template ids render the
// announcement template. Every data value is HTML-escaped.
func Render(templateID string, data map[string]any) (string, error) {
	t, ok := templates[templateID]
	if !ok {
		t = templates[FallbackTemplate]
	}
	if data == nil {
		data = map[string]any{}
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("render template %s: %w", templateID, err)
	}
	return buf.String(), nil
}
