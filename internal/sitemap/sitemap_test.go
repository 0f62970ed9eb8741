package sitemap

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jaanus110/haagissuvilarent/internal/config"
	"github.com/jaanus110/haagissuvilarent/internal/nav"
)

var now = time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)

func testLinker() (nav.Linker, config.Manifest) {
	m := config.DefaultManifest()
	return nav.NewLinker(m, []string{"en", "et", "ru"}, "et"), m
}

func TestLanguageSitemap(t *testing.T) {
	linker, m := testLinker()
	set := Language(linker, m.Pages, "ru", now)

	require.Len(t, set.URLs, 4)
	home := set.URLs[0]
	require.Equal(t, "https://tartuhaagissuvila.ee/ru/", home.Loc)
	require.Equal(t, "2025-06-02", home.LastMod)
	require.Equal(t, "1.0", home.Priority)
	require.Equal(t, "weekly", home.ChangeFreq)
	require.Len(t, home.Links, 4)
	require.Equal(t, Link{Rel: "alternate", HrefLang: "x-default", Href: "https://tartuhaagissuvila.ee/et/"}, home.Links[3])

	terms := set.URLs[1]
	require.Equal(t, "https://tartuhaagissuvila.ee/ru/rental-terms", terms.Loc)
	require.Equal(t, "0.8", terms.Priority)
	require.Equal(t, "monthly", terms.ChangeFreq)

	out, err := Encode(set)
	require.NoError(t, err)
	doc := string(out)
	require.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	require.Contains(t, doc, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xhtml="http://www.w3.org/1999/xhtml">`)
	require.Contains(t, doc, `<xhtml:link rel="alternate" hreflang="en" href="https://tartuhaagissuvila.ee/en/rental-terms"></xhtml:link>`)
	require.NotContains(t, doc, "/ru/amp")

	var parsed struct {
		URLs []struct {
			Loc string `xml:"loc"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(out, &parsed))
	require.Len(t, parsed.URLs, 4)
}

func TestAMPSitemap(t *testing.T) {
	linker, m := testLinker()
	set := AMP(linker, m.Pages, now)

	require.Len(t, set.URLs, 3)
	require.Equal(t, "https://tartuhaagissuvila.ee/en/amp", set.URLs[0].Loc)
	require.Equal(t, "2025-06-02T08:30:00Z", set.URLs[0].LastMod)
}

func TestImageSitemap(t *testing.T) {
	linker, m := testLinker()
	set := Images(linker, m.Images, func(key string) string { return "caption " + key })

	require.Len(t, set.URLs, 1)
	u := set.URLs[0]
	require.Equal(t, "https://tartuhaagissuvila.ee/et/", u.Loc)
	require.Len(t, u.Images, 30)
	require.Equal(t, "https://tartuhaagissuvila.ee/img/gallery/out_front_right_1200w.webp", u.Images[0].Loc)
	require.Equal(t, "caption hero_image_alt", u.Images[0].Caption)
	require.Equal(t, "https://tartuhaagissuvila.ee/img/gallery/in_bathroom_1200w.jpg", u.Images[29].Loc)

	out, err := Encode(set)
	require.NoError(t, err)
	require.Contains(t, string(out), `xmlns:image="http://www.google.com/schemas/sitemap-image/1.1"`)
	require.Contains(t, string(out), "<image:caption>caption gallery_alt_9</image:caption>")
	require.NotContains(t, string(out), "<image:title>")
}

func TestIndexAndRobots(t *testing.T) {
	idx := NewIndex("https://tartuhaagissuvila.ee/", []string{FileName("en"), ImagesFile}, now)
	require.Len(t, idx.Sitemaps, 2)
	require.Equal(t, "https://tartuhaagissuvila.ee/sitemap-en.xml", idx.Sitemaps[0].Loc)
	require.Equal(t, "2025-06-02T08:30:00Z", idx.Sitemaps[1].LastMod)

	robots := Robots("https://tartuhaagissuvila.ee", []string{"en", "et", "ru"})
	require.Equal(t, "User-agent: *\nAllow: /\nAllow: /en/\nAllow: /et/\nAllow: /ru/\n\nSitemap: https://tartuhaagissuvila.ee/sitemap-index.xml\n", robots)
}
