// Package site assembles the static output tree: one document per language
// and page, the root redirect, sitemaps and robots.txt.
package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/jaanus110/haagissuvilarent/internal/component"
	"github.com/jaanus110/haagissuvilarent/internal/config"
	"github.com/jaanus110/haagissuvilarent/internal/i18n"
	"github.com/jaanus110/haagissuvilarent/internal/nav"
	"github.com/jaanus110/haagissuvilarent/internal/observability"
	"github.com/jaanus110/haagissuvilarent/internal/render"
	"github.com/jaanus110/haagissuvilarent/internal/seo"
	"github.com/jaanus110/haagissuvilarent/internal/sitemap"
	"github.com/jaanus110/haagissuvilarent/internal/textutil"
)

// RedirectFile is the root document that forwards visitors to a language.
const RedirectFile = "index.html"

// Options locate build inputs and outputs.
type Options struct {
	Root         string
	OutputDir    string
	LogDir       string
	FlagCritical bool
	Clock        func() time.Time
	BuildID      string
}

// PageError is the failure of one (language, page) pair.
type PageError struct {
	Lang string
	Page string
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("site: %s/%s: %v", e.Lang, e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Result summarises a build.
type Result struct {
	BuildID   string
	Languages []string
	Default   string
	Written   []string
	Failed    []*PageError
	Skipped   map[string]error
	Report    *render.Report
	LogFiles  []string
}

// Assembler runs builds for one manifest.
type Assembler struct {
	manifest config.Manifest
	opts     Options
	logger   *zap.Logger
}

// New returns an assembler. Zero Clock and BuildID default to time.Now and a
// fresh ULID per build.
func New(m config.Manifest, opts Options, logger *zap.Logger) *Assembler {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Assembler{manifest: m, opts: opts, logger: observability.OrNop(logger).Named("site")}
}

type pipeline struct {
	resolver  *i18n.Resolver
	engine    *render.Engine
	linker    nav.Linker
	generator *seo.Generator
	css       string
	report    *render.Report
}

// Build renders every loaded language and page. A failing pair is recorded
// in Result.Failed and the build continues; only an unusable catalog, a
// cancelled context or a failing global artifact abort it.
func (a *Assembler) Build(ctx context.Context) (Result, error) {
	m := a.manifest
	now := a.opts.Clock().UTC()
	buildID := a.opts.BuildID
	if buildID == "" {
		buildID = ulid.Make().String()
	}
	logger := a.logger.With(zap.String("build", buildID))

	catalog, err := i18n.Load(a.path(m.Dirs.Translations), m.LanguageCodes(), m.DefaultLanguage, logger)
	if err != nil {
		return Result{BuildID: buildID}, err
	}
	a.checkCriticalKeys(catalog, logger)

	p, err := a.newPipeline(catalog, logger)
	if err != nil {
		return Result{BuildID: buildID}, err
	}

	res := Result{
		BuildID:   buildID,
		Languages: catalog.Languages(),
		Default:   catalog.Default(),
		Skipped:   catalog.Failures(),
		Report:    p.report,
	}
	for _, lang := range res.Languages {
		for _, page := range m.Pages {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			path, err := a.buildPage(p, lang, page)
			if err != nil {
				pe := &PageError{Lang: lang, Page: page.Output, Err: err}
				res.Failed = append(res.Failed, pe)
				logger.Error("page failed", zap.String("lang", lang), zap.String("page", page.Output), zap.Error(err))
				continue
			}
			res.Written = append(res.Written, path)
		}
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	global, err := a.writeGlobal(p, res.Languages, res.Default, now)
	res.Written = append(res.Written, global...)
	if err != nil {
		return res, err
	}

	logs, err := p.report.WriteLogs(a.opts.LogDir, buildID, now)
	if err != nil {
		logger.Warn("write fallback logs", zap.Error(err))
	}
	res.LogFiles = logs

	logger.Info("build finished",
		zap.Strings("languages", res.Languages),
		zap.Strings("skipped_languages", textutil.SortedKeys(res.Skipped)),
		zap.Int("written", len(res.Written)),
		zap.Int("failed", len(res.Failed)),
		zap.Int("fallbacks", p.report.Count()),
		zap.Int("critical_fallbacks", p.report.CriticalCount()),
	)
	return res, nil
}

func (a *Assembler) newPipeline(catalog *i18n.Catalog, logger *zap.Logger) (*pipeline, error) {
	m := a.manifest
	resolver := i18n.NewResolver(catalog,
		i18n.WithCriticalKeys(m.Critical.Prefixes, m.Critical.Keys, m.Critical.Exempt),
		i18n.WithAliases(m.Aliases),
		i18n.WithConstants(m.Constants),
		i18n.WithFlagging(a.opts.FlagCritical),
	)
	fragments := component.NewResolver(a.path(m.Dirs.Components), m.Components, logger)
	linker := nav.NewLinker(m, catalog.Languages(), catalog.Default())

	css, err := a.readCriticalCSS()
	if err != nil {
		return nil, err
	}
	return &pipeline{
		resolver:  resolver,
		engine:    render.NewEngine(fragments, logger),
		linker:    linker,
		generator: seo.NewGenerator(m, linker),
		css:       css,
		report:    render.NewReport(),
	}, nil
}

func (a *Assembler) buildPage(p *pipeline, lang string, page config.Page) (string, error) {
	raw, err := os.ReadFile(filepath.Join(a.path(a.manifest.Dirs.Templates), page.Template))
	if err != nil {
		return "", fmt.Errorf("read template: %w", err)
	}

	current := nav.TitleFromSlug(page.Slug())
	if v, tier := p.resolver.Lookup("title_"+page.KeyStem(), lang); tier.Found() {
		current = seo.PlainText(v)
	}
	scope := p.resolver.Scope(lang, page.Output, p.linker.Values(lang, page, current), p.report)

	doc := p.engine.Render(string(raw), scope)
	if !isAMP(doc) {
		doc = injectCriticalCSS(doc, p.css)
	}
	doc, err = seo.Inject(doc, p.generator.Generate(scope, page))
	if err != nil {
		return "", err
	}
	doc = render.Cleanup(doc, lang)

	out := filepath.Join(a.opts.OutputDir, lang, filepath.FromSlash(page.Output))
	if err := writeFile(out, []byte(doc)); err != nil {
		return "", err
	}
	return out, nil
}

func (a *Assembler) writeGlobal(p *pipeline, languages []string, defaultLang string, now time.Time) ([]string, error) {
	m := a.manifest
	var written []string
	write := func(name string, data []byte) error {
		path := filepath.Join(a.opts.OutputDir, name)
		if err := writeFile(path, data); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	redirect, err := renderRedirect(m, languages, defaultLang)
	if err != nil {
		return written, fmt.Errorf("site: render redirect: %w", err)
	}
	if err := write(RedirectFile, redirect); err != nil {
		return written, err
	}

	var files []string
	writeSitemap := func(name string, v any) error {
		data, err := sitemap.Encode(v)
		if err != nil {
			return err
		}
		if err := write(name, data); err != nil {
			return err
		}
		files = append(files, name)
		return nil
	}
	for _, lang := range languages {
		if err := writeSitemap(sitemap.FileName(lang), sitemap.Language(p.linker, m.Pages, lang, now)); err != nil {
			return written, err
		}
	}
	if m.HasAMP() {
		if err := writeSitemap(sitemap.AMPFile, sitemap.AMP(p.linker, m.Pages, now)); err != nil {
			return written, err
		}
	}
	text := func(key string) string {
		v, _ := p.resolver.Lookup(key, defaultLang)
		return seo.PlainText(v)
	}
	if err := writeSitemap(sitemap.ImagesFile, sitemap.Images(p.linker, m.Images, text)); err != nil {
		return written, err
	}
	if err := writeSitemap(sitemap.IndexFile, sitemap.NewIndex(m.Site.BaseURL, files, now)); err != nil {
		return written, err
	}

	if err := write(sitemap.RobotsFile, []byte(sitemap.Robots(m.Site.BaseURL, languages))); err != nil {
		return written, err
	}
	return written, nil
}

// checkCriticalKeys logs explicitly critical keys absent from a language.
func (a *Assembler) checkCriticalKeys(catalog *i18n.Catalog, logger *zap.Logger) {
	for _, lang := range catalog.Languages() {
		mapping, _ := catalog.Mapping(lang)
		var missing []string
		for _, key := range a.manifest.Critical.Keys {
			if _, ok := mapping.Lookup(key); !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			logger.Warn("critical keys missing", zap.String("lang", lang), zap.Strings("keys", missing))
		}
	}
}

func (a *Assembler) readCriticalCSS() (string, error) {
	name := a.manifest.CriticalCSS
	if name == "" {
		return "", nil
	}
	raw, err := os.ReadFile(a.path(name))
	if errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("critical css not found", zap.String("path", a.path(name)))
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("site: read critical css: %w", err)
	}
	return string(raw), nil
}

func (a *Assembler) path(rel string) string {
	if rel == "" {
		return a.opts.Root
	}
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(a.opts.Root, rel)
}
