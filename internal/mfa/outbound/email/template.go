package email

import (
	"bytes"
	"embed"
	"errors"
	htmltemplate "html/template"
	"path"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

// ErrTemplateNotFound is returned when Render gets an unknown name.
var ErrTemplateNotFound = errors.New("template not found")

// Templates renders the embedded email bodies. Names ending in .html are
// rendered with html/template so values are escaped; everything else uses
// text/template.
type Templates struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewTemplates parses every embedded template.
func NewTemplates() (*Templates, error) {
	html, err := htmltemplate.New("").Option("missingkey=zero").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	text, err := texttemplate.New("").Option("missingkey=zero").ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, err
	}

	return &Templates{html: html, text: text}, nil
}

// Render executes the named template with data.
func (t *Templates) Render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer

	if path.Ext(name) == ".html" {
		tpl := t.html.Lookup(name)
		if tpl == nil {
			return "", ErrTemplateNotFound
		}
		if err := tpl.Execute(&buf, data); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	tpl := t.text.Lookup(name)
	if tpl == nil {
		return "", ErrTemplateNotFound
	}
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
