package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	texttmpl "text/template"
)

// EmailService delivers messages asynchronously; implementations must never
// block the caller nor surface delivery errors to it.
type EmailService interface {
	SendMessages(messages ...*EmailMessage)
}

type EmailMessage struct {
	To      []mail.Address
	Subject string

	TextContent string
	HTMLContent string

	// TemplateName selects a registered template pair; ContextData feeds it.
	TemplateName string
	ContextData  interface{}
}

type templatePair struct {
	text *texttmpl.Template
	html *htmltmpl.Template
}

var emailTemplates = map[string]templatePair{
	"password-reset": {
		text: texttmpl.Must(texttmpl.New("password-reset.txt").Parse(passwordResetText)),
		html: htmltmpl.Must(htmltmpl.New("password-reset.gohtml").Parse(passwordResetHTML)),
	},
}

const passwordResetText = `Hi {{.Name}},

You requested a password reset for your {{.AppName}} account.
Open the link below to choose a new password:

{{.ResetURL}}

If you did not request this, you can safely ignore this message.
`

const passwordResetHTML = `<p>Hi {{.Name}},</p>
<p>You requested a password reset for your {{.AppName}} account.</p>
<p><a href="{{.ResetURL}}">Reset your password</a></p>
<p>If you did not request this, you can safely ignore this message.</p>
`

// Render fills TextContent/HTMLContent from the named template, leaving any
// pre-set content untouched.
func (m *EmailMessage) Render() error {
	if m.TemplateName == "" {
		return nil
	}
	pair, ok := emailTemplates[m.TemplateName]
	if !ok {
		return nil
	}
	if m.TextContent == "" && pair.text != nil {
		var buff bytes.Buffer
		if err := pair.text.Execute(&buff, m.ContextData); err != nil {
			return err
		}
		m.TextContent = buff.String()
	}
	if m.HTMLContent == "" && pair.html != nil {
		var buff bytes.Buffer
		if err := pair.html.Execute(&buff, m.ContextData); err != nil {
			return err
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
