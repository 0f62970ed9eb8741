package testutil

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// StructuredData decodes every application/ld+json block of doc, keyed by @type.
func StructuredData(t testing.TB, doc *goquery.Document) map[string]map[string]any {
	t.Helper()

	out := map[string]map[string]any{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var block map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &block); err != nil {
			t.Fatalf("decode json-ld: %v\n%s", err, s.Text())
		}
		typ, _ := block["@type"].(string)
		out[typ] = block
	})
	return out
}

// MetaContent returns the content attribute of the first meta tag matching selector.
func MetaContent(doc *goquery.Document, selector string) string {
	return doc.Find(selector).First().AttrOr("content", "")
}
