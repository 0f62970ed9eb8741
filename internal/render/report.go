package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jaanus110/haagissuvilarent/internal/i18n"
)

// PageReport lists the fallback events of one (language, page) pair.
type PageReport struct {
	Lang     string
	Page     string
	Critical []i18n.FallbackEvent
	Regular  []i18n.FallbackEvent
}

// Empty reports whether no fallback happened.
func (p *PageReport) Empty() bool { return len(p.Critical) == 0 && len(p.Regular) == 0 }

// Report aggregates fallback events per language and page. Each key is
// recorded once per page.
type Report struct {
	pages map[string]*PageReport
	order []string
	seen  map[string]struct{}
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		pages: map[string]*PageReport{},
		seen:  map[string]struct{}{},
	}
}

// Record implements i18n.Recorder.
func (r *Report) Record(ev i18n.FallbackEvent) {
	id := ev.Lang + "\x00" + ev.Page + "\x00" + ev.Key
	if _, ok := r.seen[id]; ok {
		return
	}
	r.seen[id] = struct{}{}

	pageID := ev.Lang + "\x00" + ev.Page
	p, ok := r.pages[pageID]
	if !ok {
		p = &PageReport{Lang: ev.Lang, Page: ev.Page}
		r.pages[pageID] = p
		r.order = append(r.order, pageID)
	}
	if ev.Critical {
		p.Critical = append(p.Critical, ev)
	} else {
		p.Regular = append(p.Regular, ev)
	}
}

// Count returns the number of distinct fallback events.
func (r *Report) Count() int { return len(r.seen) }

// CriticalCount returns the number of critical fallback events.
func (r *Report) CriticalCount() int {
	n := 0
	for _, p := range r.pages {
		n += len(p.Critical)
	}
	return n
}

// Languages returns the languages with at least one event, sorted.
func (r *Report) Languages() []string {
	set := map[string]struct{}{}
	for _, p := range r.pages {
		set[p.Lang] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for lang := range set {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Pages returns the page reports of lang in recording order.
func (r *Report) Pages(lang string) []*PageReport {
	var out []*PageReport
	for _, id := range r.order {
		if p := r.pages[id]; p.Lang == lang {
			out = append(out, p)
		}
	}
	return out
}

// LogFileName is the name of the missing-translation log of lang.
func LogFileName(lang string) string {
	return "missing_translations_" + lang + ".txt"
}

// WriteLogs appends one block per page to logs/missing_translations_<lang>.txt
// and returns the files touched.
func (r *Report) WriteLogs(dir, buildID string, now time.Time) ([]string, error) {
	langs := r.Languages()
	if len(langs) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("render: create log dir: %w", err)
	}
	var written []string
	for _, lang := range langs {
		var b strings.Builder
		for _, p := range r.Pages(lang) {
			if p.Empty() {
				continue
			}
			writeBlock(&b, p, buildID, now)
		}
		path := filepath.Join(dir, LogFileName(lang))
		if err := appendFile(path, b.String()); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func writeBlock(b *strings.Builder, p *PageReport, buildID string, now time.Time) {
	fmt.Fprintf(b, "\n=== Missing translations for %s/%s ===\n", p.Lang, p.Page)
	fmt.Fprintf(b, "Date: %s\n", now.UTC().Format(time.RFC3339))
	if buildID != "" {
		fmt.Fprintf(b, "Build: %s\n", buildID)
	}
	if len(p.Critical) > 0 {
		b.WriteString("\n== CRITICAL ==\n")
		for _, ev := range p.Critical {
			fmt.Fprintf(b, "%s (%s)\n", ev.Key, ev.Tier)
		}
	}
	if len(p.Regular) > 0 {
		b.WriteString("\n== REGULAR ==\n")
		for _, ev := range p.Regular {
			fmt.Fprintf(b, "%s (%s)\n", ev.Key, ev.Tier)
		}
	}
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("render: open %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("render: append %s: %w", path, err)
	}
	return f.Close()
}
