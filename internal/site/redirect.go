package site

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/jaanus110/haagissuvilarent/internal/config"
)

//go:embed templates/redirect.html.tmpl
var templateFS embed.FS

var redirectTemplate = template.Must(template.ParseFS(templateFS, "templates/redirect.html.tmpl"))

type redirectData struct {
	Title       string
	Description string
	BaseURL     string
	Default     string
	StorageKey  string
	Codes       []string
	Languages   []config.Language
}

// renderRedirect builds the root page that sends visitors to their language,
// preferring a stored choice, then the browser languages, then the default.
func renderRedirect(m config.Manifest, languages []string, defaultLang string) ([]byte, error) {
	names := map[string]string{}
	for _, l := range m.Languages {
		names[l.Code] = l.Name
	}
	data := redirectData{
		Title:       m.Site.RedirectTitle,
		Description: m.Site.RedirectText,
		BaseURL:     m.Site.BaseURL,
		Default:     defaultLang,
		StorageKey:  m.Site.StorageKey,
		Codes:       languages,
	}
	// the default language is listed first
	data.Languages = append(data.Languages, config.Language{Code: defaultLang, Name: names[defaultLang]})
	for _, code := range languages {
		if code != defaultLang {
			data.Languages = append(data.Languages, config.Language{Code: code, Name: names[code]})
		}
	}

	var buf bytes.Buffer
	if err := redirectTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
