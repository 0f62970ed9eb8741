package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/jaanus110/haagissuvilarent/internal/config"
	"github.com/jaanus110/haagissuvilarent/internal/nav"
)

const (
	sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNS   = "http://www.w3.org/1999/xhtml"
	imageNS   = "http://www.google.com/schemas/sitemap-image/1.1"

	dateLayout = "2006-01-02"
)

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	XHTML   string   `xml:"xmlns:xhtml,attr,omitempty"`
	Image   string   `xml:"xmlns:image,attr,omitempty"`
	URLs    []URL    `xml:"url"`
}

type URL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod,omitempty"`
	ChangeFreq string  `xml:"changefreq,omitempty"`
	Priority   string  `xml:"priority,omitempty"`
	Links      []Link  `xml:"xhtml:link"`
	Images     []Image `xml:"image:image"`
}

type Link struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

type Image struct {
	Loc     string `xml:"image:loc"`
	Caption string `xml:"image:caption,omitempty"`
	Title   string `xml:"image:title,omitempty"`
}

type Index struct {
	XMLName  xml.Name `xml:"sitemapindex"`
	Xmlns    string   `xml:"xmlns,attr"`
	Sitemaps []Ref    `xml:"sitemap"`
}

type Ref struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Language lists the non-AMP pages of lang with hreflang annotations.
func Language(linker nav.Linker, pages []config.Page, lang string, now time.Time) URLSet {
	set := URLSet{Xmlns: sitemapNS, XHTML: xhtmlNS}
	for _, p := range pages {
		if p.AMP {
			continue
		}
		set.URLs = append(set.URLs, pageURL(linker, p, lang, now.Format(dateLayout)))
	}
	return set
}

// AMP lists the AMP pages of every language.
func AMP(linker nav.Linker, pages []config.Page, now time.Time) URLSet {
	set := URLSet{Xmlns: sitemapNS, XHTML: xhtmlNS}
	for _, p := range pages {
		if !p.AMP {
			continue
		}
		for _, lang := range linker.Languages {
			set.URLs = append(set.URLs, pageURL(linker, p, lang, now.Format(time.RFC3339)))
		}
	}
	return set
}

func pageURL(linker nav.Linker, p config.Page, lang, lastmod string) URL {
	u := URL{
		Loc:        linker.URL(lang, p),
		LastMod:    lastmod,
		ChangeFreq: changeFreq(p),
		Priority:   priority(p),
	}
	for _, alt := range linker.Alternates(p) {
		u.Links = append(u.Links, Link{Rel: "alternate", HrefLang: alt.HrefLang, Href: alt.Href})
	}
	return u
}

func changeFreq(p config.Page) string {
	if p.ChangeFreq != "" {
		return p.ChangeFreq
	}
	if p.IsHome() || p.AMP {
		return "weekly"
	}
	return "monthly"
}

func priority(p config.Page) string {
	if p.Priority != "" {
		return p.Priority
	}
	if p.IsHome() || p.AMP {
		return "1.0"
	}
	return "0.8"
}

// ImageText resolves caption and title keys of gallery images.
type ImageText func(key string) string

// Images lists every gallery image in every format under the default
// language home page.
func Images(linker nav.Linker, images config.Images, text ImageText) URLSet {
	u := URL{Loc: linker.HomeURL(linker.Default)}
	dir := strings.Trim(images.GalleryPath, "/")
	for _, img := range images.Gallery {
		var caption, title string
		if img.CaptionKey != "" {
			caption = text(img.CaptionKey)
		}
		if img.TitleKey != "" {
			title = text(img.TitleKey)
		}
		for _, format := range images.Formats {
			u.Images = append(u.Images, Image{
				Loc:     fmt.Sprintf("%s/%s/%s.%s", linker.BaseURL, dir, img.Base, format),
				Caption: caption,
				Title:   title,
			})
		}
	}
	return URLSet{Xmlns: sitemapNS, Image: imageNS, URLs: []URL{u}}
}

// NewIndex references the named sitemap files under baseURL.
func NewIndex(baseURL string, files []string, now time.Time) Index {
	idx := Index{Xmlns: sitemapNS}
	for _, name := range files {
		idx.Sitemaps = append(idx.Sitemaps, Ref{
			Loc:     strings.TrimRight(baseURL, "/") + "/" + name,
			LastMod: now.Format(time.RFC3339),
		})
	}
	return idx
}

// Encode renders v as an indented XML document with declaration.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("sitemap: encode: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// FileName is the sitemap file of one language.
func FileName(lang string) string { return "sitemap-" + lang + ".xml" }

const (
	AMPFile    = "sitemap-amp.xml"
	ImagesFile = "sitemap-images.xml"
	IndexFile  = "sitemap-index.xml"
	RobotsFile = "robots.txt"
)

// Robots allows the site root and every language directory and points at
// the sitemap index.
func Robots(baseURL string, languages []string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\nAllow: /\n")
	for _, lang := range languages {
		fmt.Fprintf(&b, "Allow: /%s/\n", lang)
	}
	fmt.Fprintf(&b, "\nSitemap: %s/%s\n", strings.TrimRight(baseURL, "/"), IndexFile)
	return b.String()
}
