// Package audit checks a built output tree for pages that are unsafe to
// publish.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/jaanus110/haagissuvilarent/internal/observability"
)

// Kind classifies an audit finding.
type Kind string

const (
	KindLeftoverToken      Kind = "leftover_token"
	KindLeftoverMarker     Kind = "leftover_marker"
	KindMissingLang        Kind = "missing_lang"
	KindMissingTitle       Kind = "missing_title"
	KindMissingDescription Kind = "missing_description"
	KindMissingCanonical   Kind = "missing_canonical"
	KindMissingViewport    Kind = "missing_viewport"
	KindImageAlt           Kind = "image_without_alt"
	KindInvalidJSONLD      Kind = "invalid_json_ld"
	KindParse              Kind = "parse_error"
)

// ErrLeftoverTokens is returned by Report.Err when a page still contains
// unresolved placeholders.
var ErrLeftoverTokens = errors.New("audit: unresolved placeholders in output")

var (
	tokenPattern  = regexp.MustCompile(`\{\{[^{}]*\}\}`)
	markerPattern = regexp.MustCompile(`<!--\s*COMPONENT:\s*[A-Z0-9_]+\s*-->`)
)

// Issue is one finding on one page.
type Issue struct {
	Path   string
	Kind   Kind
	Detail string
}

func (i Issue) String() string {
	if i.Detail == "" {
		return fmt.Sprintf("%s: %s", i.Path, i.Kind)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Path, i.Kind, i.Detail)
}

// Report collects the findings of a run.
type Report struct {
	Pages  int
	Issues []Issue
}

// Count returns the number of issues of kind.
func (r Report) Count(kind Kind) int {
	n := 0
	for _, i := range r.Issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

// Err fails the audit when placeholders leaked into the output. Other
// findings are warnings.
func (r Report) Err() error {
	if n := r.Count(KindLeftoverToken); n > 0 {
		return fmt.Errorf("%w: %d occurrence(s)", ErrLeftoverTokens, n)
	}
	return nil
}

// Log writes every finding to logger.
func (r Report) Log(logger *zap.Logger) {
	logger = observability.OrNop(logger)
	for _, i := range r.Issues {
		fields := []zap.Field{zap.String("path", i.Path), zap.String("kind", string(i.Kind))}
		if i.Detail != "" {
			fields = append(fields, zap.String("detail", i.Detail))
		}
		if i.Kind == KindLeftoverToken {
			logger.Error("audit finding", fields...)
			continue
		}
		logger.Warn("audit finding", fields...)
	}
	logger.Info("audit finished", zap.Int("pages", r.Pages), zap.Int("issues", len(r.Issues)))
}

// Dir audits every .html file below dir. Paths in the report are relative
// to dir with forward slashes.
func Dir(ctx context.Context, dir string) (Report, error) {
	var report Report
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".html") {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("audit: read %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		report.Pages++
		report.Issues = append(report.Issues, Document(filepath.ToSlash(rel), raw)...)
		return nil
	})
	if err != nil {
		return report, err
	}
	return report, nil
}

// Document audits one HTML document.
func Document(path string, body []byte) []Issue {
	var issues []Issue
	add := func(kind Kind, detail string) {
		issues = append(issues, Issue{Path: path, Kind: kind, Detail: detail})
	}

	for _, tok := range tokenPattern.FindAll(body, -1) {
		add(KindLeftoverToken, string(tok))
	}
	for _, m := range markerPattern.FindAll(body, -1) {
		add(KindLeftoverMarker, string(m))
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		add(KindParse, err.Error())
		return issues
	}
	doc := goquery.NewDocumentFromNode(root)

	if strings.TrimSpace(doc.Find("html").AttrOr("lang", "")) == "" {
		add(KindMissingLang, "")
	}
	if strings.TrimSpace(doc.Find("head title").First().Text()) == "" {
		add(KindMissingTitle, "")
	}
	if strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")) == "" {
		add(KindMissingDescription, "")
	}
	if strings.TrimSpace(doc.Find(`link[rel="canonical"]`).AttrOr("href", "")) == "" {
		add(KindMissingCanonical, "")
	}
	if doc.Find(`meta[name="viewport"]`).Length() == 0 {
		add(KindMissingViewport, "")
	}
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("alt"); !ok {
			add(KindImageAlt, s.AttrOr("src", ""))
		}
	})
	doc.Find(`script[type="application/ld+json"]`).Each(func(i int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			add(KindInvalidJSONLD, fmt.Sprintf("block %d: %v", i+1, err))
		}
	})
	return issues
}
