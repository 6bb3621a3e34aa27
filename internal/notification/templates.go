package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*.txt templates/*.html
var templateFS embed.FS

type Renderer struct {
	plain *texttemplate.Template
	html  *htmltemplate.Template
}

func NewRenderer() (*Renderer, error) {
	plain, err := texttemplate.ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse plain templates: %w", err)
	}
	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html templates: %w", err)
	}
	return &Renderer{plain: plain, html: html}, nil
}

func (r *Renderer) Render(msg Message) (Email, error) {
	plainTpl := r.plain.Lookup(msg.Template + ".txt")
	htmlTpl := r.html.Lookup(msg.Template + ".html")
	if plainTpl == nil || htmlTpl == nil {
		return Email{}, fmt.Errorf("%w: %s", ErrUnknownTemplate, msg.Template)
	}

	var plain, html bytes.Buffer
	if err := plainTpl.Execute(&plain, msg.Data); err != nil {
		return Email{}, fmt.Errorf("render %s.txt: %w", msg.Template, err)
	}
	if err := htmlTpl.Execute(&html, msg.Data); err != nil {
		return Email{}, fmt.Errorf("render %s.html: %w", msg.Template, err)
	}

	return Email{
		To:        msg.To,
		Subject:   msg.Subject,
		PlainBody: plain.String(),
		HTMLBody:  html.String(),
	}, nil
}
