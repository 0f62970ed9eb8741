package i18n

import (
	"strings"
)

// Tier identifies which step of the fallback chain produced a value.
type Tier int

const (
	TierPage Tier = iota
	TierPrimary
	TierAlias
	TierConstant
	TierDefault
	TierEnglish
	TierGenerated
	TierMissing
)

var tierNames = map[Tier]string{
	TierPage:      "page",
	TierPrimary:   "primary",
	TierAlias:     "alias",
	TierConstant:  "constant",
	TierDefault:   "default",
	TierEnglish:   "english",
	TierGenerated: "generated",
	TierMissing:   "missing",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsFallback reports whether the value did not come from the target language.
func (t Tier) IsFallback() bool { return t >= TierDefault }

// Found reports whether a real value (not a synthesized one) was located.
func (t Tier) Found() bool { return t < TierGenerated }

const (
	englishCode   = "en"
	warningMarker = "⚠️"
	wordSeparator = "_"
)

// Resolver walks the fallback chain for a (key, language) pair. It is shared
// by body substitution and metadata generation and is safe for concurrent use.
type Resolver struct {
	catalog   *Catalog
	prefixes  []string
	critical  map[string]struct{}
	exempt    map[string]struct{}
	aliases   map[string]string
	constants map[string]string
	flag      bool
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithCriticalKeys marks keys whose fallbacks are flagged in output.
func WithCriticalKeys(prefixes, keys, exempt []string) ResolverOption {
	return func(r *Resolver) {
		r.prefixes = append([]string(nil), prefixes...)
		r.critical = toSet(keys)
		r.exempt = toSet(exempt)
	}
}

// WithAliases maps a requested key onto another key of the same language.
func WithAliases(aliases map[string]string) ResolverOption {
	return func(r *Resolver) {
		r.aliases = copyMap(aliases)
	}
}

// WithConstants supplies language independent values such as prices.
func WithConstants(constants map[string]string) ResolverOption {
	return func(r *Resolver) {
		r.constants = copyMap(constants)
	}
}

// WithFlagging toggles the warning markers around critical fallbacks.
func WithFlagging(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.flag = enabled
	}
}

// NewResolver builds a resolver over catalog.
func NewResolver(catalog *Catalog, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		catalog:   catalog,
		critical:  map[string]struct{}{},
		exempt:    map[string]struct{}{},
		aliases:   map[string]string{},
		constants: map[string]string{},
		flag:      true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsCritical reports whether fallbacks of key are flagged.
func (r *Resolver) IsCritical(key string) bool {
	if _, ok := r.exempt[key]; ok {
		return false
	}
	if _, ok := r.critical[key]; ok {
		return true
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// Lookup returns the unflagged value of key for lang and the tier it came from.
func (r *Resolver) Lookup(key, lang string) (string, Tier) {
	if m, ok := r.catalog.Mapping(lang); ok {
		if v, ok := m.Lookup(key); ok {
			return v, TierPrimary
		}
		if target, ok := r.aliases[key]; ok {
			if v, ok := m.Lookup(target); ok {
				return v, TierAlias
			}
		}
	}
	if v, ok := r.constants[key]; ok && v != "" {
		return v, TierConstant
	}
	def := r.catalog.Default()
	if lang != def {
		if m, ok := r.catalog.Mapping(def); ok {
			if v, ok := m.Lookup(key); ok {
				return v, TierDefault
			}
		}
	}
	if lang != englishCode && def != englishCode {
		if m, ok := r.catalog.Mapping(englishCode); ok {
			if v, ok := m.Lookup(key); ok {
				return v, TierEnglish
			}
		}
	}
	if strings.Contains(key, wordSeparator) {
		if label := GenerateLabel(key, lang); label != "" {
			return label, TierGenerated
		}
	}
	return "[" + key + "]", TierMissing
}

// Resolve is Lookup plus critical-key flagging.
func (r *Resolver) Resolve(key, lang string) (string, Tier) {
	v, tier := r.Lookup(key, lang)
	return r.decorate(key, v, tier), tier
}

func (r *Resolver) decorate(key, value string, tier Tier) string {
	if !r.flag || !tier.IsFallback() || tier == TierMissing {
		return value
	}
	if !r.IsCritical(key) {
		return value
	}
	return warningMarker + " " + value + " " + warningMarker
}

// Recorder receives every fallback resolution.
type Recorder interface {
	Record(event FallbackEvent)
}

// FallbackEvent describes one key that was not found in its target language.
type FallbackEvent struct {
	Lang     string
	Page     string
	Key      string
	Tier     Tier
	Value    string
	Critical bool
}

// Scope binds a resolver to one (language, page) pair with page-scoped values
// that take precedence over translations.
type Scope struct {
	r        *Resolver
	lang     string
	page     string
	values   map[string]string
	recorder Recorder
}

// Scope returns a resolution scope for lang and page. rec may be nil.
func (r *Resolver) Scope(lang, page string, values map[string]string, rec Recorder) *Scope {
	return &Scope{r: r, lang: lang, page: page, values: copyMap(values), recorder: rec}
}

// Lang returns the target language of the scope.
func (s *Scope) Lang() string { return s.lang }

// Page returns the page name of the scope.
func (s *Scope) Page() string { return s.page }

// Resolver returns the underlying resolver.
func (s *Scope) Resolver() *Resolver { return s.r }

// Resolve returns the flagged display value of key.
func (s *Scope) Resolve(key string) string {
	v, tier := s.lookup(key)
	return s.r.decorate(key, v, tier)
}

// Plain returns the unflagged value of key, for machine-read outputs.
func (s *Scope) Plain(key string) string {
	v, _ := s.lookup(key)
	return v
}

// Has reports whether key has a real value in this scope without recording a
// fallback.
func (s *Scope) Has(key string) bool {
	if _, ok := s.values[key]; ok {
		return true
	}
	_, tier := s.r.Lookup(key, s.lang)
	return tier.Found()
}

func (s *Scope) lookup(key string) (string, Tier) {
	if v, ok := s.values[key]; ok {
		return v, TierPage
	}
	v, tier := s.r.Lookup(key, s.lang)
	if tier.IsFallback() && s.recorder != nil {
		s.recorder.Record(FallbackEvent{
			Lang:     s.lang,
			Page:     s.page,
			Key:      key,
			Tier:     tier,
			Value:    v,
			Critical: s.r.IsCritical(key),
		})
	}
	return v, tier
}

func toSet(keys []string) map[string]struct{} {
	out := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		out[k] = struct{}{}
	}
	return out
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
