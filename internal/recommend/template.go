package recommend

import (
	"bytes"         // Template rendering buffer
	"fmt"           // Unknown locale errors
	"html/template" // HTML-escaped mail bodies
)

// InviteData feeds the localized recommendation mail template.
type InviteData struct {
	RecipientName string // Recipient display name
	SenderContact string // Who recommended them
	AcceptURL     string // Consent callback link, accept
	DeclineURL    string // Consent callback link, decline
}

// inviteSubjects holds the per-locale mail subject.
var inviteSubjects = map[string]string{
	"en": "You have been recommended",
	"de": "Sie wurden weiterempfohlen",
}

// inviteBodies holds the per-locale HTML body template.
var inviteBodies = map[string]*template.Template{
	"en": template.Must(template.New("invite_en").Parse(`<html><body>
<p>Hi {{.RecipientName}},</p>
<p>{{.SenderContact}} has recommended our directory to you.</p>
<p><a href="{{.AcceptURL}}">Yes, I am interested</a><br>
<a href="{{.DeclineURL}}">No, thank you</a></p>
</body></html>`)),
	"de": template.Must(template.New("invite_de").Parse(`<html><body>
<p>Hallo {{.RecipientName}},</p>
<p>{{.SenderContact}} hat Ihnen unser Verzeichnis weiterempfohlen.</p>
<p><a href="{{.AcceptURL}}">Ja, ich bin interessiert</a><br>
<a href="{{.DeclineURL}}">Nein, danke</a></p>
</body></html>`)),
}

// RenderInvite renders the localized subject and HTML body for one task's
// recommendation mail. Unknown locales fall back to English.
func RenderInvite(locale string, data InviteData) (subject, body string, err error) {
	tmpl, ok := inviteBodies[locale]
	if !ok {
		tmpl = inviteBodies["en"]
		locale = "en"
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render invite mail: %w", err)
	}
	return inviteSubjects[locale], buf.String(), nil
}
