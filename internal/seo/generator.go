package seo

import (
	"strings"

	"github.com/jaanus110/haagissuvilarent/internal/config"
	"github.com/jaanus110/haagissuvilarent/internal/i18n"
	"github.com/jaanus110/haagissuvilarent/internal/nav"
	"github.com/jaanus110/haagissuvilarent/internal/textutil"
)

const (
	twitterCard    = "summary_large_image"
	heroTitleKey   = "hero_title"
	descriptionKey = "meta_description"
	titleSeparator = " | "
)

// Generator derives page metadata from the manifest and a resolution scope.
// Output depends only on its inputs.
type Generator struct {
	manifest config.Manifest
	linker   nav.Linker
	ampPage  *config.Page
}

// NewGenerator builds a generator for the manifest and linker.
func NewGenerator(m config.Manifest, linker nav.Linker) *Generator {
	g := &Generator{manifest: m, linker: linker}
	for i := range m.Pages {
		if m.Pages[i].AMP {
			p := m.Pages[i]
			g.ampPage = &p
			break
		}
	}
	return g
}

// Generate builds the metadata of page p. Localized strings are read through
// scope, unflagged and stripped of markup.
func (g *Generator) Generate(scope *i18n.Scope, p config.Page) Meta {
	lang := scope.Lang()
	site := g.manifest.Site
	canonical := g.linker.Canonical(lang, p)
	title := g.title(scope, p)
	description := PlainText(scope.Plain(g.descriptionKey(scope, p)))

	image := g.ogImage(scope)
	meta := Meta{
		Lang:         lang,
		Title:        title,
		Description:  description,
		Canonical:    canonical,
		OriginalLang: g.linker.Default,
		Translated:   lang != g.linker.Default,
		Alternates:   g.linker.Alternates(p),
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Type:        "article",
			Locale:      Locale(lang),
			URL:         canonical,
			Image:       image,
			SiteName:    site.Name,
		},
		Twitter: Twitter{
			Card:        twitterCard,
			Title:       title,
			Description: description,
			Image:       image.URL,
			ImageAlt:    image.Alt,
			Site:        site.Twitter,
			Creator:     site.Twitter,
		},
	}
	if p.IsHome() {
		meta.OG.Type = "website"
		if g.ampPage != nil {
			meta.AMPURL = g.linker.URL(lang, *g.ampPage)
		}
	}
	for _, other := range g.linker.Languages {
		if other != lang {
			meta.OG.LocaleAlternates = append(meta.OG.LocaleAlternates, Locale(other))
		}
	}

	meta.StructuredData = g.structuredData(scope, p, title, description, image)
	return meta
}

func (g *Generator) title(scope *i18n.Scope, p config.Page) string {
	site := g.manifest.Site
	if p.TitleKey != "" && scope.Has(p.TitleKey) {
		return PlainText(scope.Plain(p.TitleKey))
	}
	if p.IsHome() || p.AMP {
		parts := []string{PlainText(scope.Plain(heroTitleKey))}
		if brand := g.manifest.Product.Brand; brand != "" {
			parts = append(parts, brand)
		}
		return joinTitle(append(parts, site.Name)...)
	}
	if key := "title_" + p.KeyStem(); scope.Has(key) {
		return PlainText(scope.Plain(key))
	}
	return joinTitle(g.pageLabel(scope, p), PlainText(scope.Plain(heroTitleKey)), site.Name)
}

// pageLabel names a non-home page: its navigation label when translated,
// otherwise the prettified slug.
func (g *Generator) pageLabel(scope *i18n.Scope, p config.Page) string {
	if p.NavKey != "" && scope.Has(p.NavKey) {
		return PlainText(scope.Plain(p.NavKey))
	}
	if key := "nav_" + p.KeyStem(); scope.Has(key) {
		return PlainText(scope.Plain(key))
	}
	return nav.TitleFromSlug(p.Slug())
}

func (g *Generator) descriptionKey(scope *i18n.Scope, p config.Page) string {
	if p.DescriptionKey != "" {
		return p.DescriptionKey
	}
	if !p.IsHome() {
		if key := descriptionKey + "_" + p.KeyStem(); scope.Has(key) {
			return key
		}
	}
	return descriptionKey
}

func (g *Generator) ogImage(scope *i18n.Scope) Image {
	img := g.manifest.Images.OpenGraph
	out := Image{
		URL:    g.absolute(img.Path),
		Width:  img.Width,
		Height: img.Height,
		Type:   img.Type,
	}
	if key := g.manifest.Images.AltKey; key != "" {
		out.Alt = PlainText(scope.Plain(key))
	}
	return out
}

func (g *Generator) structuredData(scope *i18n.Scope, p config.Page, title, description string, image Image) []map[string]any {
	m := g.manifest
	lang := scope.Lang()
	home := g.linker.HomeURL(lang)
	canonical := g.linker.Canonical(lang, p)

	businessName := m.Business.DefaultName
	if m.Business.NameKey != "" && scope.Has(m.Business.NameKey) {
		businessName = PlainText(scope.Plain(m.Business.NameKey))
	}
	blocks := []map[string]any{LocalBusiness(BusinessInput{
		Name:          businessName,
		AlternateName: m.Site.AlternateName,
		URL:           home,
		Logo:          g.absolute(m.Business.Logo),
		Image:         image.URL,
		Business:      m.Business,
	})}

	productName := m.Product.Brand
	if m.Product.NameKey != "" && scope.Has(m.Product.NameKey) {
		productName = PlainText(scope.Plain(m.Product.NameKey))
	}
	images := make([]string, 0, len(m.Product.Images))
	for _, path := range m.Product.Images {
		images = append(images, g.absolute(path))
	}
	offers := make([]Offer, 0, len(m.Product.Offers))
	for _, o := range m.Product.Offers {
		offers = append(offers, Offer{Name: g.offerName(scope, o), Price: o.Price})
	}
	blocks = append(blocks, Product(ProductInput{
		Name:        productName,
		Brand:       m.Product.Brand,
		Description: description,
		URL:         home,
		Images:      images,
		Currency:    m.Product.Currency,
		Offers:      offers,
	}))

	blocks = append(blocks, WebPage(title, description, canonical, lang, m.Site.Name, m.Site.BaseURL+"/", home))

	if !p.IsHome() {
		crumbs := g.linker.Breadcrumbs(lang, p, m.Site.HomeKey, "title_"+p.KeyStem())
		items := make([]BreadcrumbItem, 0, len(crumbs))
		for _, c := range crumbs {
			name := c.Label
			if c.LabelKey != "" && scope.Has(c.LabelKey) {
				name = PlainText(scope.Plain(c.LabelKey))
			}
			items = append(items, BreadcrumbItem{Name: textutil.FirstNonEmpty(name, m.Site.Name), Item: c.Href})
		}
		blocks = append(blocks, BreadcrumbList(items))
	}
	return blocks
}

// offerName is the translated price text up to its first colon, e.g.
// "Weekdays: 75 EUR" -> "Weekdays".
func (g *Generator) offerName(scope *i18n.Scope, o config.Offer) string {
	if o.Key == "" || !scope.Has(o.Key) {
		return o.DefaultName
	}
	text := PlainText(scope.Plain(o.Key))
	if i := strings.Index(text, ":"); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	return textutil.FirstNonEmpty(text, o.DefaultName)
}

func (g *Generator) absolute(path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return g.manifest.Site.BaseURL + "/" + strings.TrimLeft(path, "/")
}

func joinTitle(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, titleSeparator)
}
