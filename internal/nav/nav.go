package nav

import (
	"strings"

	"github.com/jaanus110/haagissuvilarent/internal/config"
)

// Linker builds absolute and relative links between language variants of a page.
type Linker struct {
	BaseURL   string
	Default   string
	Languages []string
	Clean     bool
}

// Alternate is one hreflang variant of a page.
type Alternate struct {
	HrefLang string
	Href     string
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// NewLinker builds a linker for the loaded languages of a manifest.
func NewLinker(m config.Manifest, languages []string, defaultLang string) Linker {
	return Linker{
		BaseURL:   strings.TrimRight(m.Site.BaseURL, "/"),
		Default:   defaultLang,
		Languages: append([]string(nil), languages...),
		Clean:     m.UsesCleanURLs(),
	}
}

// HomeURL is the landing page of lang, e.g. https://host/et/.
func (l Linker) HomeURL(lang string) string {
	return l.BaseURL + "/" + lang + "/"
}

// URL is the public address of page p in lang.
func (l Linker) URL(lang string, p config.Page) string {
	return l.HomeURL(lang) + p.URLPath(l.Clean)
}

// Canonical is the canonical address of p. AMP variants point at the
// language home page.
func (l Linker) Canonical(lang string, p config.Page) string {
	if p.AMP {
		return l.HomeURL(lang)
	}
	return l.URL(lang, p)
}

// Alternates lists one entry per language plus x-default for the default language.
func (l Linker) Alternates(p config.Page) []Alternate {
	out := make([]Alternate, 0, len(l.Languages)+1)
	for _, lang := range l.Languages {
		out = append(out, Alternate{HrefLang: lang, Href: l.URL(lang, p)})
	}
	out = append(out, Alternate{HrefLang: "x-default", Href: l.URL(l.Default, p)})
	return out
}

// LanguagePath is the relative link from p in one language to the same page in lang.
func (l Linker) LanguagePath(lang string, p config.Page) string {
	if p.IsHome() {
		return "../" + lang + "/index.html"
	}
	return "../" + lang + "/" + p.Output
}

// Values returns the page-scoped placeholder values of p in lang.
// breadcrumbCurrent is the already resolved label of the current page.
func (l Linker) Values(lang string, p config.Page, breadcrumbCurrent string) map[string]string {
	values := map[string]string{
		"lang":          lang,
		"prefix":        "index.html",
		"canonical_url": l.Canonical(lang, p),
		"page_slug":     p.Slug(),
		"base_url":      l.BaseURL,
	}
	if p.IsHome() {
		values["prefix"] = ""
	} else {
		values["breadcrumb_current"] = breadcrumbCurrent
	}
	for _, code := range l.Languages {
		values["lang_path_"+code] = l.LanguagePath(code, p)
	}
	return values
}

// Breadcrumbs builds the trail for p: the language home page followed by the
// current page. The home page has a single active crumb.
func (l Linker) Breadcrumbs(lang string, p config.Page, homeKey, titleKey string) []Crumb {
	crumbs := []Crumb{{Href: l.HomeURL(lang), LabelKey: homeKey, Active: p.IsHome()}}
	if p.IsHome() {
		return crumbs
	}
	return append(crumbs, Crumb{
		Href:     l.URL(lang, p),
		LabelKey: titleKey,
		Label:    TitleFromSlug(p.Slug()),
		Active:   true,
	})
}

// TitleFromSlug turns "rental-terms" into "Rental Terms".
func TitleFromSlug(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = toUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
