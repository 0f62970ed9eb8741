package site

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jaanus110/haagissuvilarent/internal/config"
	"github.com/jaanus110/haagissuvilarent/internal/i18n"
	"github.com/jaanus110/haagissuvilarent/internal/seo"
	"github.com/jaanus110/haagissuvilarent/internal/sitemap"
	"github.com/jaanus110/haagissuvilarent/internal/testutil"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="{{lang}}">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>placeholder</title>
<style>/* Critical CSS will be injected here */</style>
<!-- COMPONENT: FAQ_SCHEMA -->
</head>
<body>
<!-- COMPONENT: NAVBAR -->
<h1>{{hero_title}}</h1>
<p class="crumb">{{breadcrumb_current}}</p>
<a class="btn" href="#booking">{{hero_button}}</a>
<!-- COMPONENT: FOOTER -->
</body>
</html>
`

const ampTemplate = `<!doctype html>
<html ⚡ lang="{{lang}}">
<head>
<meta charset="utf-8">
<title>amp</title>
<style amp-custom>h1{color:red}</style>
</head>
<body><h1>{{hero_title}}</h1></body>
</html>
`

var fixed = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func writeFixture(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func fixtureFiles() map[string]string {
	return map[string]string{
		"translations/et.json": `{
  "hero_title": "Haagissuvila rent Tartus",
  "meta_description": "Rendi haagissuvila Tartus.",
  "nav_home": "Avaleht",
  "title_rental_terms": "Renditingimused",
  "faq_title": "KKK"
}`,
		"translations/en.json": `{
  "hero_title": "Caravan Rental in Tartu",
  "hero_button": "Book Now",
  "meta_description": "Rent a caravan in Tartu.",
  "nav_home": "Home",
  "faq_title": "Questions \"and\" answers"
}`,
		"translations/ru.yaml":          "hero_title: Аренда каравана в Тарту\nnav_home: Главная\n",
		"templates/index.html":          pageTemplate,
		"templates/rental-terms.html":   pageTemplate,
		"templates/privacy-policy.html": pageTemplate,
		"templates/cookie-policy.html":  pageTemplate,
		"templates/index-amp.html":      ampTemplate,
		"components/navbar.html":        `<nav><a href="{{prefix}}">{{nav_home}}</a> <a href="{{lang_path_en}}">EN</a></nav>`,
		"components/faq.json":           `{"@context": "https://schema.org", "@type": "FAQPage", "name": "{{faq_title}}"}`,
		"css/critical.css":              "body{margin:0}",
	}
}

func testManifest() config.Manifest {
	m := config.DefaultManifest()
	m.Site.BaseURL = "https://example.test"
	m.CriticalCSS = "css/critical.css"
	m.Components = map[string]string{
		"NAVBAR":     "components/navbar.html",
		"FOOTER":     "components/footer.html",
		"FAQ_SCHEMA": "components/faq.json",
	}
	m.Pages = m.Pages[:4]
	return m
}

func build(t *testing.T, m config.Manifest, root string) (Result, string, error) {
	t.Helper()
	out := filepath.Join(t.TempDir(), "dist")
	a := New(m, Options{
		Root:         root,
		OutputDir:    out,
		LogDir:       filepath.Join(t.TempDir(), "logs"),
		FlagCritical: true,
		Clock:        func() time.Time { return fixed },
		BuildID:      "01TESTBUILD",
	}, nil)
	res, err := a.Build(context.Background())
	return res, out, err
}

func readOutput(t *testing.T, out, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(out, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(raw)
}

func TestBuildWritesEveryArtifact(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, fixtureFiles())

	res, out, err := build(t, testManifest(), root)
	require.NoError(t, err)
	require.Empty(t, res.Failed)
	require.Equal(t, []string{"en", "et", "ru"}, res.Languages)
	require.Equal(t, "et", res.Default)

	for _, lang := range res.Languages {
		for _, page := range []string{"index.html", "rental-terms.html", "privacy-policy.html", "cookie-policy.html"} {
			require.FileExists(t, filepath.Join(out, lang, page))
		}
	}
	for _, name := range []string{
		RedirectFile, "sitemap-en.xml", "sitemap-et.xml", "sitemap-ru.xml",
		sitemap.ImagesFile, sitemap.IndexFile, sitemap.RobotsFile,
	} {
		require.FileExists(t, filepath.Join(out, name))
	}
	require.NoFileExists(t, filepath.Join(out, sitemap.AMPFile))
	require.Len(t, res.Written, 12+7)

	info, err := os.Stat(filepath.Join(out, "et", "index.html"))
	require.NoError(t, err)
	require.Equal(t, fs.FileMode(filePerm), info.Mode().Perm())
}

func TestBuildLeavesNoPlaceholders(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, fixtureFiles())

	_, out, err := build(t, testManifest(), root)
	require.NoError(t, err)

	err = filepath.WalkDir(out, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() {
			return nil
		}
		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		body := string(raw)
		require.NotContains(t, body, "{{", path)
		require.NotContains(t, body, "<!-- COMPONENT:", path)
		return nil
	})
	require.NoError(t, err)
}

func TestBuildFlagsCriticalFallbacks(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, fixtureFiles())

	res, out, err := build(t, testManifest(), root)
	require.NoError(t, err)

	require.Contains(t, readOutput(t, out, "et/index.html"), "⚠️ Book Now ⚠️")
	require.Contains(t, readOutput(t, out, "ru/index.html"), "⚠️ Book Now ⚠️")
	en := readOutput(t, out, "en/index.html")
	require.Contains(t, en, ">Book Now<")
	require.NotContains(t, en, "⚠️")

	require.Positive(t, res.Report.CriticalCount())
	require.NotEmpty(t, res.LogFiles)
	var etLog string
	for _, path := range res.LogFiles {
		if filepath.Base(path) == "missing_translations_et.txt" {
			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			etLog = string(raw)
		}
	}
	require.Contains(t, etLog, "Build: 01TESTBUILD")
	require.Contains(t, etLog, "hero_button")
}

func TestBuildPageContent(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, fixtureFiles())

	_, out, err := build(t, testManifest(), root)
	require.NoError(t, err)

	body := readOutput(t, out, "et/rental-terms.html")
	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "et", doc.Find("html").AttrOr("lang", ""))
	require.Equal(t, "Renditingimused", doc.Find("title").Text())
	require.Equal(t, "https://example.test/et/rental-terms", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))
	require.Equal(t, 4, doc.Find(`link[rel="alternate"][hreflang]`).Length())
	require.Equal(t, "Rendi haagissuvila Tartus.", testutil.MetaContent(doc, `meta[name="description"]`))
	require.Equal(t, "Renditingimused", doc.Find("p.crumb").Text())
	require.Equal(t, "index.html", doc.Find("nav a").First().AttrOr("href", ""))
	require.Equal(t, "../en/rental-terms.html", doc.Find("nav a").Last().AttrOr("href", ""))
	require.Contains(t, body, "body{margin:0}")
	require.NotContains(t, body, "Critical CSS will be injected here")

	data := testutil.StructuredData(t, doc)
	require.Equal(t, "KKK", data["FAQPage"]["name"])
	require.Contains(t, data, "BreadcrumbList")
	require.Equal(t, "Rendi haagissuvila Tartus.", data["WebPage"]["description"])

	en := testutil.ParseHTML(t, readOutput(t, out, "en/index.html"))
	require.Equal(t, `Questions "and" answers`, testutil.StructuredData(t, en)["FAQPage"]["name"])
	require.Equal(t, "", en.Find("nav a").First().AttrOr("href", "missing"))
}

func TestBuildRedirectAndRobots(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, fixtureFiles())

	_, out, err := build(t, testManifest(), root)
	require.NoError(t, err)

	doc := testutil.ParseHTML(t, readOutput(t, out, RedirectFile))
	require.Equal(t, "Caravan Rental in Tartu, Estonia", doc.Find("title").Text())
	require.Equal(t, "0;url=/et/", testutil.MetaContent(doc, `meta[http-equiv="refresh"]`))
	links := doc.Find(".language-links a")
	require.Equal(t, 3, links.Length())
	require.Equal(t, "/et/", links.First().AttrOr("href", ""))
	require.Contains(t, doc.Find("script").Text(), `"preferredLang"`)

	robots := readOutput(t, out, sitemap.RobotsFile)
	require.Equal(t, "User-agent: *\nAllow: /\nAllow: /en/\nAllow: /et/\nAllow: /ru/\n\nSitemap: https://example.test/sitemap-index.xml\n", robots)

	index := readOutput(t, out, sitemap.IndexFile)
	require.Contains(t, index, "https://example.test/sitemap-et.xml")
	require.Contains(t, index, "https://example.test/sitemap-images.xml")
	require.Contains(t, readOutput(t, out, "sitemap-et.xml"), "<lastmod>2025-06-01</lastmod>")
}

func TestBuildIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, fixtureFiles())

	_, first, err := build(t, testManifest(), root)
	require.NoError(t, err)
	_, second, err := build(t, testManifest(), root)
	require.NoError(t, err)

	err = filepath.WalkDir(first, func(path string, d fs.DirEntry, err error) error {
		require.NoError(t, err)
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(first, path)
		require.NoError(t, err)
		require.Equal(t, readOutput(t, first, filepath.ToSlash(rel)), readOutput(t, second, filepath.ToSlash(rel)), rel)
		return nil
	})
	require.NoError(t, err)
}

func TestBuildAMPPage(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, fixtureFiles())
	m := testManifest()
	m.Pages = config.DefaultManifest().Pages

	res, out, err := build(t, m, root)
	require.NoError(t, err)
	require.Empty(t, res.Failed)
	require.FileExists(t, filepath.Join(out, sitemap.AMPFile))

	amp := readOutput(t, out, "et/amp.html")
	require.NotContains(t, amp, "body{margin:0}")
	require.Contains(t, amp, "<style amp-custom>h1{color:red}</style>")
	doc := testutil.ParseHTML(t, amp)
	require.Equal(t, "https://example.test/et/", doc.Find(`link[rel="canonical"]`).AttrOr("href", ""))

	home := testutil.ParseHTML(t, readOutput(t, out, "et/index.html"))
	require.Equal(t, "https://example.test/et/amp", home.Find(`link[rel="amphtml"]`).AttrOr("href", ""))
}

func TestBuildContinuesPastPageFailure(t *testing.T) {
	root := t.TempDir()
	files := fixtureFiles()
	files["templates/privacy-policy.html"] = "<html><body>{{hero_title}}</body></html>"
	writeFixture(t, root, files)

	res, out, err := build(t, testManifest(), root)
	require.NoError(t, err)
	require.Len(t, res.Failed, 3)
	for _, failure := range res.Failed {
		require.Equal(t, "privacy-policy.html", failure.Page)
		require.ErrorIs(t, failure, seo.ErrMissingHead)
	}
	require.NoFileExists(t, filepath.Join(out, "et", "privacy-policy.html"))
	require.FileExists(t, filepath.Join(out, "et", "cookie-policy.html"))
	require.FileExists(t, filepath.Join(out, sitemap.IndexFile))
}

func TestBuildMissingTemplateFailsPair(t *testing.T) {
	root := t.TempDir()
	files := fixtureFiles()
	delete(files, "templates/cookie-policy.html")
	writeFixture(t, root, files)

	res, _, err := build(t, testManifest(), root)
	require.NoError(t, err)
	require.Len(t, res.Failed, 3)
	var pe *PageError
	require.True(t, errors.As(res.Failed[0], &pe))
	require.ErrorIs(t, pe, fs.ErrNotExist)
}

func TestBuildWithoutLanguagesFails(t *testing.T) {
	root := t.TempDir()
	files := fixtureFiles()
	for name := range files {
		if strings.HasPrefix(name, "translations/") {
			delete(files, name)
		}
	}
	writeFixture(t, root, files)

	_, out, err := build(t, testManifest(), root)
	require.ErrorIs(t, err, i18n.ErrNoLanguages)
	require.NoDirExists(t, out)
}

func TestBuildSkipsMissingLanguage(t *testing.T) {
	root := t.TempDir()
	files := fixtureFiles()
	delete(files, "translations/ru.yaml")
	writeFixture(t, root, files)

	res, out, err := build(t, testManifest(), root)
	require.NoError(t, err)
	require.Equal(t, []string{"en", "et"}, res.Languages)
	require.Len(t, res.Skipped, 1)
	require.ErrorIs(t, res.Skipped["ru"], i18n.ErrMissingLanguageFile)
	require.NoDirExists(t, filepath.Join(out, "ru"))
	require.NotContains(t, readOutput(t, out, sitemap.RobotsFile), "/ru/")
}

func TestBuildWritesImageSitemapWithoutGallery(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, fixtureFiles())
	m := testManifest()
	m.Images.Gallery = nil

	res, out, err := build(t, m, root)
	require.NoError(t, err)
	require.Empty(t, res.Skipped)

	images := readOutput(t, out, sitemap.ImagesFile)
	require.Contains(t, images, "<loc>https://example.test/et/</loc>")
	require.NotContains(t, images, "<image:image>")
	require.Contains(t, readOutput(t, out, sitemap.IndexFile), "https://example.test/sitemap-images.xml")
}

func TestBuildStopsOnCancel(t *testing.T) {
	root := t.TempDir()
	writeFixture(t, root, fixtureFiles())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := New(testManifest(), Options{Root: root, OutputDir: t.TempDir(), LogDir: t.TempDir()}, nil)
	res, err := a.Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, res.Written)
}

func TestInjectCriticalCSS(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"marker", "<style>/* Critical CSS will be injected here */</style>", "<style>a{}</style>"},
		{"style", "<head><style>b{}</style></head>", "<head><style>\na{}b{}</style></head>"},
		{"head", "<head></head>", "<head><style>\na{}\n</style>\n</head>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, injectCriticalCSS(tc.doc, "a{}"))
		})
	}
	require.True(t, isAMP(ampTemplate))
	require.False(t, isAMP(pageTemplate))
}
