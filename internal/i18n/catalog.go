package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/jaanus110/haagissuvilarent/internal/observability"
	"github.com/jaanus110/haagissuvilarent/internal/textutil"
)

// Extensions lists the translation file formats in lookup order.
var Extensions = []string{".json", ".yaml", ".yml", ".toml"}

// Mapping is a flat key to localized string table for one language.
type Mapping map[string]string

// Lookup returns the value for key. Blank values count as absent.
func (m Mapping) Lookup(key string) (string, bool) {
	v, ok := m[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Catalog holds the mappings of every language that loaded for a build.
type Catalog struct {
	defaultLang string
	order       []string
	dict        map[string]Mapping
	failures    map[string]error
}

// NewCatalog returns an empty catalog. Languages are added with Add.
func NewCatalog(defaultLang string) *Catalog {
	return &Catalog{
		defaultLang: strings.ToLower(defaultLang),
		dict:        map[string]Mapping{},
		failures:    map[string]error{},
	}
}

// Add registers the mapping for lang. The first Add of a language fixes its
// position in Languages.
func (c *Catalog) Add(lang string, m Mapping) {
	lang = strings.ToLower(lang)
	if _, ok := c.dict[lang]; !ok {
		c.order = append(c.order, lang)
	}
	normalized := textutil.NormalizeStringMap(m)
	if normalized == nil {
		normalized = map[string]string{}
	}
	c.dict[lang] = Mapping(normalized)
}

// Languages returns the loaded language codes in load order.
func (c *Catalog) Languages() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Default returns the default language code.
func (c *Catalog) Default() string { return c.defaultLang }

// Has reports whether lang loaded.
func (c *Catalog) Has(lang string) bool {
	_, ok := c.dict[lang]
	return ok
}

// Mapping returns the mapping of lang.
func (c *Catalog) Mapping(lang string) (Mapping, bool) {
	m, ok := c.dict[lang]
	return m, ok
}

// Failures returns the per-language load errors of languages that were skipped.
func (c *Catalog) Failures() map[string]error {
	out := make(map[string]error, len(c.failures))
	for k, v := range c.failures {
		out[k] = v
	}
	return out
}

// Negotiate picks the best loaded language for an Accept-Language header,
// falling back to the default language.
func (c *Catalog) Negotiate(acceptLang string) string {
	if len(c.order) == 0 {
		return c.defaultLang
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(prefs) == 0 {
		return c.defaultLang
	}
	for _, pref := range prefs {
		base, _ := pref.Base()
		if c.Has(base.String()) {
			return base.String()
		}
	}
	return c.defaultLang
}

// Load reads <dir>/<lang>.<ext> for every language. A language whose file is
// missing or malformed is logged and skipped; ErrNoLanguages is returned only
// when nothing loaded. When the default language fails the first loaded
// language takes its place.
func Load(dir string, languages []string, defaultLang string, logger *zap.Logger) (*Catalog, error) {
	logger = observability.OrNop(logger)
	c := NewCatalog(defaultLang)

	for _, raw := range languages {
		lang := strings.ToLower(strings.TrimSpace(raw))
		if _, err := language.Parse(lang); err != nil || lang == "" {
			c.failures[raw] = &MalformedTranslationDataError{Language: raw, Err: fmt.Errorf("invalid language code: %w", err)}
			logger.Warn("skipping language", zap.String("lang", raw), zap.Error(c.failures[raw]))
			continue
		}
		m, err := LoadFile(dir, lang)
		if err != nil {
			c.failures[lang] = err
			logger.Warn("skipping language", zap.String("lang", lang), zap.Error(err))
			continue
		}
		c.Add(lang, m)
		logger.Info("loaded translations", zap.String("lang", lang), zap.Int("keys", len(m)))
	}

	if len(c.order) == 0 {
		return nil, fmt.Errorf("i18n: load %s: %w", dir, ErrNoLanguages)
	}
	if !c.Has(c.defaultLang) {
		logger.Warn("default language did not load",
			zap.String("configured", c.defaultLang),
			zap.String("using", c.order[0]),
		)
		c.defaultLang = c.order[0]
	}
	return c, nil
}

// LoadFile finds and decodes the translation file of one language.
func LoadFile(dir, lang string) (Mapping, error) {
	for _, ext := range Extensions {
		path := filepath.Join(dir, lang+ext)
		raw, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &MissingLanguageFileError{Language: lang, Dir: dir, Err: err}
		}
		m, err := decode(raw, lang, ext)
		if err != nil {
			return nil, &MalformedTranslationDataError{Language: lang, Path: path, Err: err}
		}
		return m, nil
	}
	return nil, &MissingLanguageFileError{Language: lang, Dir: dir}
}

func decode(raw []byte, lang, ext string) (Mapping, error) {
	switch ext {
	case ".json":
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return flatten(doc)
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return flatten(doc)
	case ".toml":
		return decodeTOML(raw, lang)
	}
	return nil, fmt.Errorf("unsupported format %q", ext)
}

func decodeTOML(raw []byte, lang string) (Mapping, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, err
	}
	bundle := goi18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	file, err := bundle.ParseMessageFileBytes(raw, lang+".toml")
	if err != nil {
		return nil, err
	}
	out := make(Mapping, len(file.Messages))
	for _, msg := range file.Messages {
		out[msg.ID] = msg.Other
	}
	return out, nil
}

// flatten accepts scalar values only; nested objects or lists make the
// document malformed.
func flatten(doc map[string]any) (Mapping, error) {
	if doc == nil {
		return nil, errors.New("document is not an object")
	}
	out := make(Mapping, len(doc))
	for key, value := range doc {
		switch v := value.(type) {
		case string:
			out[key] = v
		case nil:
			out[key] = ""
		case bool:
			out[key] = strconv.FormatBool(v)
		case int:
			out[key] = strconv.Itoa(v)
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("key %q: expected a string, got %T", key, value)
		}
	}
	return out, nil
}
