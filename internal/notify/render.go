package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	texttemplate "text/template"

	"github.com/makt28/kumamail/internal/kuma"
	webassets "github.com/makt28/kumamail/web"
)

// PlaceholderBody replaces both parts of the email for test payloads.
const PlaceholderBody = "Testing email, no data provided"

// Body is a rendered plaintext and HTML pair.
type Body struct {
	Text string
	HTML string
}

// Renderer renders email bodies from the embedded templates.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

// NewRenderer parses email.txt and email.html from the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmplFS, err := fs.Sub(webassets.TemplatesFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("access templates: %w", err)
	}
	return NewRendererFS(tmplFS)
}

// NewRendererFS parses email.txt and email.html from fsys.
func NewRendererFS(fsys fs.FS) (*Renderer, error) {
	text, err := texttemplate.ParseFS(fsys, "email.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text template: %w", err)
	}
	html, err := htmltemplate.ParseFS(fsys, "email.html")
	if err != nil {
		return nil, fmt.Errorf("parse html template: %w", err)
	}
	return &Renderer{text: text, html: html}, nil
}

// Render returns the body for hook. Test payloads get PlaceholderBody in both
// parts; normal payloads are rendered with the whole webhook as template data.
func (r *Renderer) Render(hook *kuma.Webhook, kind kuma.Kind) (Body, error) {
	if kind == kuma.Test {
		return Body{Text: PlaceholderBody, HTML: PlaceholderBody}, nil
	}

	var text, html bytes.Buffer
	if err := r.text.Execute(&text, hook); err != nil {
		return Body{}, fmt.Errorf("render text body: %w", err)
	}
	if err := r.html.Execute(&html, hook); err != nil {
		return Body{}, fmt.Errorf("render html body: %w", err)
	}
	return Body{Text: text.String(), HTML: html.String()}, nil
}
