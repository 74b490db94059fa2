package core

import (
	"bytes"
	htmltmpl "html/template"
	"net/mail"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"
)

var (
	emailTemplates   = make(map[string]emailTemplate)
	emailTemplatesMu sync.RWMutex
)

type (
	emailTemplate struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}

	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// RegisterEmailTemplate parses and registers the text & html bodies of a named email.
// html may be empty.
func RegisterEmailTemplate(name, text, html string) error {
	entry := emailTemplate{}
	var err error
	if entry.text, err = texttmpl.New(name).Option("missingkey=error").Parse(text); err != nil {
		return errors.Wrapf(err, "parsing %s text template", name)
	}
	if html != "" {
		if entry.html, err = htmltmpl.New(name).Option("missingkey=error").Parse(html); err != nil {
			return errors.Wrapf(err, "parsing %s html template", name)
		}
	}
	emailTemplatesMu.Lock()
	emailTemplates[name] = entry
	emailTemplatesMu.Unlock()
	return nil
}

// MustRegisterEmailTemplate is like RegisterEmailTemplate but panics on invalid templates.
func MustRegisterEmailTemplate(name, text, html string) {
	if err := RegisterEmailTemplate(name, text, html); err != nil {
		panic(err)
	}
}

func (m *EmailMessage) Render() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	emailTemplatesMu.RLock()
	entry, ok := emailTemplates[m.TemplateName]
	emailTemplatesMu.RUnlock()
	if !ok {
		return errors.Errorf("unknown email template %q", m.TemplateName)
	}

	var buff bytes.Buffer
	if err := entry.text.Execute(&buff, m.TemplateData); err != nil {
		return errors.Wrap(err, "rendering text")
	}
	m.TextContent = buff.String()

	if entry.html != nil {
		buff.Reset()
		if err := entry.html.Execute(&buff, m.TemplateData); err != nil {
			return errors.Wrap(err, "rendering html")
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }
