package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Manifest describes the site: languages, pages, component registry and the
// constants used by the metadata generator.
type Manifest struct {
	Site            SiteInfo          `yaml:"site"`
	DefaultLanguage string            `yaml:"default_language"`
	Languages       []Language        `yaml:"languages"`
	Dirs            Dirs              `yaml:"dirs"`
	CriticalCSS     string            `yaml:"critical_css"`
	CleanURLs       *bool             `yaml:"clean_urls"`
	Components      map[string]string `yaml:"components"`
	Pages           []Page            `yaml:"pages"`
	Critical        CriticalKeys      `yaml:"critical"`
	Aliases         map[string]string `yaml:"aliases"`
	Constants       map[string]string `yaml:"constants"`
	Business        Business          `yaml:"business"`
	Product         Product           `yaml:"product"`
	Images          Images            `yaml:"images"`
}

// SiteInfo holds deployment-wide identity values.
type SiteInfo struct {
	Name          string `yaml:"name"`
	AlternateName string `yaml:"alternate_name"`
	BaseURL       string `yaml:"base_url"`
	Twitter       string `yaml:"twitter"`
	HomeKey       string `yaml:"home_key"`
	RedirectTitle string `yaml:"redirect_title"`
	RedirectText  string `yaml:"redirect_description"`
	StorageKey    string `yaml:"storage_key"`
}

// Language is a supported site language. Name labels the language in the
// root redirect page.
type Language struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Dirs locates inputs relative to the site root.
type Dirs struct {
	Translations string `yaml:"translations"`
	Templates    string `yaml:"templates"`
	Components   string `yaml:"components"`
}

// Page pairs a template with an output file name.
type Page struct {
	Template       string `yaml:"template"`
	Output         string `yaml:"output"`
	TitleKey       string `yaml:"title_key"`
	DescriptionKey string `yaml:"description_key"`
	NavKey         string `yaml:"nav_key"`
	AMP            bool   `yaml:"amp"`
	Priority       string `yaml:"priority"`
	ChangeFreq     string `yaml:"changefreq"`
}

// CriticalKeys selects the translation keys whose fallbacks are flagged.
type CriticalKeys struct {
	Prefixes []string `yaml:"prefixes"`
	Keys     []string `yaml:"keys"`
	Exempt   []string `yaml:"exempt"`
}

// Business feeds the organisation JSON-LD block.
type Business struct {
	Type        string   `yaml:"type"`
	NameKey     string   `yaml:"name_key"`
	DefaultName string   `yaml:"default_name"`
	Logo        string   `yaml:"logo"`
	Telephone   string   `yaml:"telephone"`
	Email       string   `yaml:"email"`
	Address     Address  `yaml:"address"`
	Geo         Geo      `yaml:"geo"`
	Hours       Hours    `yaml:"hours"`
	SameAs      []string `yaml:"same_as"`
}

// Address is a schema.org PostalAddress.
type Address struct {
	Locality string `yaml:"locality"`
	Region   string `yaml:"region"`
	Country  string `yaml:"country"`
}

// Geo is a schema.org GeoCoordinates pair.
type Geo struct {
	Latitude  string `yaml:"latitude"`
	Longitude string `yaml:"longitude"`
}

// Hours is a single opening hours specification.
type Hours struct {
	Days   []string `yaml:"days"`
	Opens  string   `yaml:"opens"`
	Closes string   `yaml:"closes"`
}

// Product feeds the product JSON-LD block.
type Product struct {
	Brand    string   `yaml:"brand"`
	NameKey  string   `yaml:"name_key"`
	Images   []string `yaml:"images"`
	Currency string   `yaml:"currency"`
	Offers   []Offer  `yaml:"offers"`
}

// Offer is one priced rental option. The offer name is the part of the
// translated text before the first colon.
type Offer struct {
	Key         string `yaml:"key"`
	DefaultName string `yaml:"default_name"`
	Price       string `yaml:"price"`
}

// Images lists fixed image constants for metadata and the image sitemap.
type Images struct {
	OpenGraph   Image          `yaml:"open_graph"`
	AltKey      string         `yaml:"alt_key"`
	GalleryPath string         `yaml:"gallery_path"`
	Formats     []string       `yaml:"formats"`
	Gallery     []GalleryImage `yaml:"gallery"`
}

// Image is an absolute-or-relative image reference with dimensions.
type Image struct {
	Path   string `yaml:"path"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Type   string `yaml:"type"`
}

// GalleryImage is one entry of the image sitemap.
type GalleryImage struct {
	Base       string `yaml:"base"`
	CaptionKey string `yaml:"caption_key"`
	TitleKey   string `yaml:"title_key"`
}

// LoadManifest reads site.yaml. A missing file yields DefaultManifest.
func LoadManifest(path string) (Manifest, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultManifest(), nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultManifest(), nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("config: read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("config: parse manifest %s: %w", path, err)
	}
	m = m.withDefaults()
	return m, nil
}

// Validate reports manifest fields that would make a build meaningless.
func (m Manifest) Validate() error {
	var invalid []string
	if !strings.HasPrefix(m.Site.BaseURL, "http://") && !strings.HasPrefix(m.Site.BaseURL, "https://") {
		invalid = append(invalid, "site.base_url")
	}
	if len(m.Languages) == 0 {
		invalid = append(invalid, "languages")
	}
	seen := map[string]struct{}{}
	for i, lang := range m.Languages {
		if _, err := language.Parse(lang.Code); err != nil || lang.Code == "" {
			invalid = append(invalid, fmt.Sprintf("languages[%d].code", i))
			continue
		}
		if _, ok := seen[lang.Code]; ok {
			invalid = append(invalid, fmt.Sprintf("languages[%d].code", i))
		}
		seen[lang.Code] = struct{}{}
	}
	if _, ok := seen[m.DefaultLanguage]; !ok {
		invalid = append(invalid, "default_language")
	}
	if len(m.Pages) == 0 {
		invalid = append(invalid, "pages")
	}
	outputs := map[string]struct{}{}
	for i, p := range m.Pages {
		if strings.TrimSpace(p.Template) == "" {
			invalid = append(invalid, fmt.Sprintf("pages[%d].template", i))
		}
		if strings.TrimSpace(p.Output) == "" || strings.ContainsAny(p.Output, `/\`) {
			invalid = append(invalid, fmt.Sprintf("pages[%d].output", i))
		}
		if _, ok := outputs[p.Output]; ok {
			invalid = append(invalid, fmt.Sprintf("pages[%d].output", i))
		}
		outputs[p.Output] = struct{}{}
	}
	for i, o := range m.Product.Offers {
		if !isNumber(o.Price) {
			invalid = append(invalid, fmt.Sprintf("product.offers[%d].price", i))
		}
	}
	if geo := m.Business.Geo; geo != (Geo{}) {
		if !isNumber(geo.Latitude) {
			invalid = append(invalid, "business.geo.latitude")
		}
		if !isNumber(geo.Longitude) {
			invalid = append(invalid, "business.geo.longitude")
		}
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

var jsonNumber = regexp.MustCompile(`^-?(?:0|[1-9][0-9]*)(?:\.[0-9]+)?(?:[eE][+-]?[0-9]+)?$`)

// isNumber reports whether v can be written as a bare JSON number.
func isNumber(v string) bool { return jsonNumber.MatchString(v) }

// LanguageCodes returns the configured language codes in manifest order.
func (m Manifest) LanguageCodes() []string {
	out := make([]string, 0, len(m.Languages))
	for _, l := range m.Languages {
		out = append(out, l.Code)
	}
	return out
}

// UsesCleanURLs reports whether page URLs drop the .html extension.
func (m Manifest) UsesCleanURLs() bool {
	return m.CleanURLs == nil || *m.CleanURLs
}

// HasAMP reports whether any page is an AMP variant.
func (m Manifest) HasAMP() bool {
	for _, p := range m.Pages {
		if p.AMP {
			return true
		}
	}
	return false
}

// IsHome reports whether the page is the language landing page.
func (p Page) IsHome() bool {
	return p.Output == "index.html"
}

// Slug is the output name without extension, e.g. "rental-terms".
func (p Page) Slug() string {
	return strings.TrimSuffix(p.Output, ".html")
}

// KeyStem converts the slug into translation key form, e.g. "rental_terms".
func (p Page) KeyStem() string {
	return strings.ReplaceAll(p.Slug(), "-", "_")
}

// URLPath is the page path below the language directory.
func (p Page) URLPath(clean bool) string {
	if p.IsHome() {
		return ""
	}
	if clean {
		return p.Slug()
	}
	return p.Output
}

func (m Manifest) withDefaults() Manifest {
	def := DefaultManifest()
	if m.Site.Name == "" {
		m.Site.Name = def.Site.Name
	}
	if m.Site.HomeKey == "" {
		m.Site.HomeKey = def.Site.HomeKey
	}
	if m.Site.RedirectTitle == "" {
		m.Site.RedirectTitle = def.Site.RedirectTitle
	}
	if m.Site.RedirectText == "" {
		m.Site.RedirectText = def.Site.RedirectText
	}
	if m.Site.StorageKey == "" {
		m.Site.StorageKey = def.Site.StorageKey
	}
	m.Site.BaseURL = strings.TrimRight(m.Site.BaseURL, "/")
	if m.Dirs.Translations == "" {
		m.Dirs.Translations = def.Dirs.Translations
	}
	if m.Dirs.Templates == "" {
		m.Dirs.Templates = def.Dirs.Templates
	}
	if m.Dirs.Components == "" {
		m.Dirs.Components = def.Dirs.Components
	}
	for i := range m.Languages {
		m.Languages[i].Code = strings.ToLower(strings.TrimSpace(m.Languages[i].Code))
		if m.Languages[i].Name == "" {
			m.Languages[i].Name = strings.ToUpper(m.Languages[i].Code)
		}
	}
	m.DefaultLanguage = strings.ToLower(strings.TrimSpace(m.DefaultLanguage))
	if m.DefaultLanguage == "" && len(m.Languages) > 0 {
		m.DefaultLanguage = m.Languages[0].Code
	}
	if len(m.Critical.Prefixes) == 0 && len(m.Critical.Keys) == 0 {
		m.Critical = def.Critical
	}
	for i := range m.Pages {
		if m.Pages[i].Output == "" {
			m.Pages[i].Output = m.Pages[i].Template
		}
	}
	if m.Images.GalleryPath == "" {
		m.Images.GalleryPath = def.Images.GalleryPath
	}
	if len(m.Images.Formats) == 0 {
		m.Images.Formats = def.Images.Formats
	}
	return m
}

// DefaultManifest is the production configuration of the caravan rental site.
func DefaultManifest() Manifest {
	clean := true
	return Manifest{
		Site: SiteInfo{
			Name:          "TartuHaagissuvila.ee",
			AlternateName: "Caravan Rental Tartu",
			BaseURL:       "https://tartuhaagissuvila.ee",
			Twitter:       "@TartuHaagissuvila",
			HomeKey:       "nav_home",
			RedirectTitle: "Caravan Rental in Tartu, Estonia",
			RedirectText:  "Rent a comfortable caravan in Tartu, Estonia. Perfect for family holidays and exploring the Baltics.",
			StorageKey:    "preferredLang",
		},
		DefaultLanguage: "et",
		Languages: []Language{
			{Code: "en", Name: "In English"},
			{Code: "et", Name: "Eesti keeles"},
			{Code: "ru", Name: "На русском"},
		},
		Dirs: Dirs{
			Translations: "translations",
			Templates:    "templates",
			Components:   ".",
		},
		CriticalCSS: "css/styles.css",
		CleanURLs:   &clean,
		Components: map[string]string{
			"META_BASE":         "components/head/meta-base.html",
			"RESOURCE_HINTS":    "components/head/resource-hints.html",
			"CRITICAL_CSS":      "components/head/critical-css.html",
			"FAVICON_LINKS":     "components/head/favicons.html",
			"CSS_LINKS":         "components/head/css-links.html",
			"GTM_HEAD":          "components/scripts/gtm-head.html",
			"GTM_BODY":          "components/scripts/gtm-body.html",
			"META_PIXEL":        "components/scripts/meta-pixel.html",
			"BOOTSTRAP_JS":      "components/scripts/bootstrap-js.html",
			"CUSTOM_JS":         "components/scripts/custom-js.html",
			"NAVBAR":            "components/structure/navbar.html",
			"BREADCRUMB":        "components/structure/breadcrumb.html",
			"HERO_SECTION":      "components/structure/hero-section.html",
			"FEATURES_SECTION":  "components/structure/features-section.md",
			"GALLERY_SECTION":   "components/structure/gallery-section.html",
			"FOOTER":            "components/structure/footer.html",
			"BUSINESS_SCHEMA":   "components/structured-data/business.json",
			"PRODUCT_SCHEMA":    "components/structured-data/product.json",
			"WEBPAGE_SCHEMA":    "components/structured-data/webpage.json",
			"FAQ_SCHEMA":        "components/structured-data/faq.json",
			"BREADCRUMB_SCHEMA": "components/structured-data/breadcrumb.json",
			"REVIEW_SCHEMA":     "components/structured-data/review.json",
		},
		Pages: []Page{
			{Template: "index.html", Output: "index.html", TitleKey: "title_index", Priority: "1.0", ChangeFreq: "weekly"},
			{Template: "rental-terms.html", Output: "rental-terms.html", Priority: "0.8", ChangeFreq: "monthly"},
			{Template: "privacy-policy.html", Output: "privacy-policy.html", Priority: "0.8", ChangeFreq: "monthly"},
			{Template: "cookie-policy.html", Output: "cookie-policy.html", Priority: "0.8", ChangeFreq: "monthly"},
			{Template: "index-amp.html", Output: "amp.html", AMP: true, Priority: "1.0", ChangeFreq: "weekly"},
		},
		Critical: CriticalKeys{
			Prefixes: []string{"nav_", "title_", "gallery_alt_"},
			Keys:     []string{"hero_title", "hero_subtitle", "hero_button", "hero_image_alt", "meta_description"},
			Exempt:   []string{"nav_photos", "nav_caravan"},
		},
		Aliases: map[string]string{
			"caravan_name":               "nav_home",
			"meta_title":                 "hero_title",
			"faq_question_min_rental":    "faq_question_rental_period",
			"faq_question_prices":        "faq_question_pricing",
			"rental_price_mon_thu_title": "rental_price_mon_thu",
			"rental_price_fri_sun_title": "rental_price_fri_sun",
		},
		Constants: map[string]string{
			"rental_price_mon_thu_num": "75",
			"rental_price_fri_sun_num": "85",
		},
		Business: Business{
			Type:        "RentalVehicleCompany",
			NameKey:     "nav_home",
			DefaultName: "Tartu Haagissuvila Rent",
			Logo:        "img/gallery/out_front_right_400w.jpg",
			Telephone:   "+37253322495",
			Email:       "info@tartuhaagissuvila.ee",
			Address:     Address{Locality: "Tartu", Region: "Tartumaa", Country: "EE"},
			Geo:         Geo{Latitude: "58.3634850", Longitude: "26.6822315"},
			Hours: Hours{
				Days:   []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
				Opens:  "09:00",
				Closes: "17:00",
			},
		},
		Product: Product{
			Brand:   "Elddis Corona",
			NameKey: "nav_caravan",
			Images: []string{
				"img/gallery/out_front_left_1200w.jpg",
				"img/gallery/in_kitchen_1200w.jpg",
				"img/gallery/in_bathroom_1200w.jpg",
			},
			Currency: "EUR",
			Offers: []Offer{
				{Key: "rental_price_mon_thu", DefaultName: "Weekday Rental", Price: "75"},
				{Key: "rental_price_fri_sun", DefaultName: "Weekend Rental", Price: "85"},
				{Key: "rental_price_2025_2027", DefaultName: "Peak Season Rental", Price: "170"},
			},
		},
		Images: Images{
			OpenGraph:   Image{Path: "img/gallery/out_front_right_1200w.webp", Width: 1200, Height: 900, Type: "image/webp"},
			AltKey:      "hero_image_alt",
			GalleryPath: "img/gallery",
			Formats:     []string{"webp", "avif", "jpg"},
			Gallery: []GalleryImage{
				{Base: "out_front_right_1200w", CaptionKey: "hero_image_alt"},
				{Base: "out_front_left_1200w", CaptionKey: "gallery_alt_1"},
				{Base: "out_back_right_1200w", CaptionKey: "gallery_alt_2"},
				{Base: "out_front_right_awning_1200w", CaptionKey: "gallery_alt_3"},
				{Base: "in_right_closedbed_1200w", CaptionKey: "gallery_alt_4"},
				{Base: "in_right_openbed_1200w", CaptionKey: "gallery_alt_5"},
				{Base: "in_kitchen_1200w", CaptionKey: "gallery_alt_6"},
				{Base: "in_left_closedbed_1200w", CaptionKey: "gallery_alt_7"},
				{Base: "in_left_openbed_1200w", CaptionKey: "gallery_alt_8"},
				{Base: "in_bathroom_1200w", CaptionKey: "gallery_alt_9"},
			},
		},
	}
}
