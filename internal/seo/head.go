package seo

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"regexp"

	"github.com/jaanus110/haagissuvilarent/internal/component"
)

//go:embed templates/head.html.tmpl
var templateFS embed.FS

var headTemplate = template.Must(template.ParseFS(templateFS, "templates/head.html.tmpl"))

// ErrMissingHead is returned when a document has no </head> to inject into.
var ErrMissingHead = errors.New("seo: document has no </head>")

var (
	headEndPattern   = regexp.MustCompile(`(?i)</head>`)
	titlePattern     = regexp.MustCompile(`(?is)<title[^>]*>.*?</title>`)
	canonicalPattern = regexp.MustCompile(`(?i)<link[^>]*rel=["']canonical["'][^>]*>`)
	hreflangPattern  = regexp.MustCompile(`(?i)<link[^>]*hreflang=["'][^"']*["'][^>]*>[ \t]*\r?\n?`)
	metaPattern      = regexp.MustCompile(`(?i)<meta[^>]*(?:name|property)=["'](?:description|og:[^"']*|twitter:[^"']*)["'][^>]*>[ \t]*\r?\n?`)
)

type headData struct {
	Meta          Meta
	WithTitle     bool
	WithCanonical bool
	Scripts       []template.HTML
}

// Inject writes meta into doc. A template title is replaced; an existing
// canonical link is kept; hreflang, description, Open Graph and Twitter tags
// already present are replaced by the generated ones.
func Inject(doc string, meta Meta) (string, error) {
	if !headEndPattern.MatchString(doc) {
		return "", ErrMissingHead
	}

	doc = hreflangPattern.ReplaceAllString(doc, "")
	doc = metaPattern.ReplaceAllString(doc, "")

	data := headData{
		Meta:          meta,
		WithCanonical: !canonicalPattern.MatchString(doc),
	}
	if loc := titlePattern.FindStringIndex(doc); loc != nil {
		doc = doc[:loc[0]] + "<title>" + template.HTMLEscapeString(meta.Title) + "</title>" + doc[loc[1]:]
	} else {
		data.WithTitle = true
	}
	for _, block := range meta.StructuredData {
		script, err := component.Script(block)
		if err != nil {
			return "", fmt.Errorf("seo: encode structured data: %w", err)
		}
		data.Scripts = append(data.Scripts, template.HTML(script))
	}

	var buf bytes.Buffer
	if err := headTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("seo: render head: %w", err)
	}

	idx := headEndPattern.FindStringIndex(doc)[0]
	return doc[:idx] + buf.String() + "\n" + doc[idx:], nil
}
