package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
)

var notificationTmpl = htmltmpl.Must(htmltmpl.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1e293b;">
  <h2>{{.Subject}}</h2>
  <p>{{.Body}}</p>
  <p style="color: #64748b; font-size: 12px;">{{.AppName}}</p>
</body>
</html>
`))

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain content, also rendered into the HTML layout

		TextContent string
		HTMLContent string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// Render fills the text and HTML contents of the message.
func (m *EmailMessage) Render(appName string) error {
	m.TextContent = m.BodyStr
	if m.BodyStr == "" {
		return nil
	}

	var buff bytes.Buffer
	data := struct{ Subject, Body, AppName string }{m.Subject, m.BodyStr, appName}
	if err := notificationTmpl.Execute(&buff, data); err != nil {
		return err
	}
	m.HTMLContent = buff.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
