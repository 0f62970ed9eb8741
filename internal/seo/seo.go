package seo

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"

	"github.com/jaanus110/haagissuvilarent/internal/nav"
)

type OpenGraph struct {
	Title            string
	Description      string
	Type             string
	Locale           string
	LocaleAlternates []string
	URL              string
	Image            Image
	SiteName         string
}

type Twitter struct {
	Card        string
	Title       string
	Description string
	Image       string
	ImageAlt    string
	Site        string
	Creator     string
}

// Image is an absolute image reference with its declared dimensions.
type Image struct {
	URL    string
	Width  int
	Height int
	Type   string
	Alt    string
}

// Meta is everything injected into the head of one (language, page) pair.
type Meta struct {
	Lang           string
	Title          string
	Description    string
	Canonical      string
	OriginalLang   string
	Translated     bool
	Alternates     []nav.Alternate
	AMPURL         string
	OG             OpenGraph
	Twitter        Twitter
	StructuredData []map[string]any
}

var strict = bluemonday.StrictPolicy()

// PlainText strips markup from a localized value and collapses whitespace.
func PlainText(v string) string {
	return strings.Join(strings.Fields(html.UnescapeString(strict.Sanitize(v))), " ")
}

// Locale returns the Open Graph locale of a language code, e.g. "et" -> "et_EE".
func Locale(lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf == language.No {
		return base.String()
	}
	return base.String() + "_" + region.String()
}
