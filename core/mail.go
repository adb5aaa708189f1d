package core

import (
	"bytes"
	htmltmpl "html/template"
	"io"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/fs"
)

const emailTemplatesDir = "templates/email"

var emailTemplates = &templateSet{fsys: appfs.FS}

type (
	// EmailMessage is a notification sent to applicants, message senders and staff.
	// A message either carries a plain BodyStr or names one of the templates under fs/templates/email.
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string

		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// ContextData is what the email templates are executed with.
	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}

	executor interface {
		Execute(w io.Writer, data interface{}) error
	}

	// mailTemplate pairs the text and html renditions of one template. Either may be missing.
	mailTemplate struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}

	templateSet struct {
		fsys  fs.FS
		once  sync.Once
		err   error
		byKey map[string]*mailTemplate
	}
)

// Category is the label mail providers group this message under.
func (m *EmailMessage) Category() string {
	if m.TemplateName != "" {
		return m.TemplateName
	}
	return "plain"
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.TextContent != "" || m.HTMLContent != "" }

// Render fills TextContent and HTMLContent. Links in templates are built on frontendBaseURL.
func (m *EmailMessage) Render(frontendBaseURL string) error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}

	tmpl, err := emailTemplates.get(m.TemplateName)
	if err != nil {
		return err
	}
	data := ContextData{FrontendBaseURL: frontendBaseURL, Data: m.TemplateData}

	if tmpl.text != nil {
		if m.TextContent, err = execute(tmpl.text, data); err != nil {
			return errors.Wrapf(err, "rendering %s.txt", m.TemplateName)
		}
	}
	if tmpl.html != nil {
		if m.HTMLContent, err = execute(tmpl.html, data); err != nil {
			return errors.Wrapf(err, "rendering %s.gohtml", m.TemplateName)
		}
	}
	return nil
}

func execute(tmpl executor, data ContextData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (ts *templateSet) get(name string) (*mailTemplate, error) {
	ts.once.Do(func() { ts.err = ts.load() })
	if ts.err != nil {
		return nil, errors.Wrap(ts.err, "parsing email templates")
	}
	tmpl, ok := ts.byKey[name]
	if !ok {
		return nil, errors.Errorf("unknown email template %q", name)
	}
	return tmpl, nil
}

// load parses every `<name>.txt` and `<name>.gohtml` of the templates dir on top of the matching `_base` layout.
func (ts *templateSet) load() error {
	entries, err := fs.ReadDir(ts.fsys, emailTemplatesDir)
	if err != nil {
		return err
	}

	ts.byKey = make(map[string]*mailTemplate)
	for _, e := range entries {
		fname := e.Name()
		if e.IsDir() || strings.HasPrefix(fname, "_") {
			continue
		}
		ext := path.Ext(fname)
		name := strings.TrimSuffix(fname, ext)
		files := []string{path.Join(emailTemplatesDir, "_base"+ext), path.Join(emailTemplatesDir, fname)}

		tmpl, ok := ts.byKey[name]
		if !ok {
			tmpl = new(mailTemplate)
		}
		switch ext {
		case ".txt":
			t, err := texttmpl.ParseFS(ts.fsys, files...)
			if err != nil {
				return errors.Wrap(err, fname)
			}
			tmpl.text = t.Option("missingkey=error")
		case ".gohtml":
			t, err := htmltmpl.ParseFS(ts.fsys, files...)
			if err != nil {
				return errors.Wrap(err, fname)
			}
			tmpl.html = t.Option("missingkey=error")
		default:
			continue
		}
		ts.byKey[name] = tmpl
	}
	return nil
}
