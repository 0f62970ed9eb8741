package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/jaanus110/haagissuvilarent/internal/observability"
)

// Kind is the source format of a fragment.
type Kind int

const (
	KindHTML Kind = iota
	KindMarkdown
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindMarkdown:
		return "markdown"
	case KindJSON:
		return "json"
	default:
		return "html"
	}
}

// KindOf derives the fragment kind from a file extension.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return KindJSON
	case ".md", ".markdown":
		return KindMarkdown
	default:
		return KindHTML
	}
}

// Fragment is a reusable snippet referenced by a component marker. Markdown
// bodies are already rendered to HTML; JSON bodies are raw until Finalize.
type Fragment struct {
	Name string
	Kind Kind
	Path string
	Body string
}

// Resolver reads fragments from the component registry. Reads are cached for
// the lifetime of the resolver; it is not safe for concurrent use.
type Resolver struct {
	root   string
	paths  map[string]string
	logger *zap.Logger
	md     goldmark.Markdown
	cache  map[string]Fragment
	warned map[string]struct{}
}

// NewResolver creates a resolver for the registry paths, relative to root.
func NewResolver(root string, paths map[string]string, logger *zap.Logger) *Resolver {
	registry := make(map[string]string, len(paths))
	for name, path := range paths {
		registry[strings.TrimSpace(name)] = strings.TrimSpace(path)
	}
	return &Resolver{
		root:   root,
		paths:  registry,
		logger: observability.OrNop(logger),
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		cache:  map[string]Fragment{},
		warned: map[string]struct{}{},
	}
}

// Fragment returns the named fragment. Unknown names and unreadable files
// yield an empty fragment and false; the warning is logged once per name.
func (r *Resolver) Fragment(name string) (Fragment, bool) {
	if f, ok := r.cache[name]; ok {
		return f, f.Body != "" || f.Path != ""
	}
	rel, ok := r.paths[name]
	if !ok || rel == "" {
		r.warnOnce(name, "unknown component", zap.String("component", name))
		r.cache[name] = Fragment{Name: name}
		return Fragment{Name: name}, false
	}

	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, rel)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		r.warnOnce(name, "component unreadable", zap.String("component", name), zap.String("path", path), zap.Error(err))
		r.cache[name] = Fragment{Name: name}
		return Fragment{Name: name}, false
	}

	f := Fragment{Name: name, Kind: KindOf(path), Path: path, Body: string(raw)}
	if f.Kind == KindMarkdown {
		body, err := r.renderMarkdown(f.Body)
		if err != nil {
			r.warnOnce(name, "markdown render failed", zap.String("component", name), zap.Error(err))
			r.cache[name] = Fragment{Name: name}
			return Fragment{Name: name}, false
		}
		f.Body = body
	}
	r.cache[name] = f
	return f, true
}

func (r *Resolver) renderMarkdown(src string) (string, error) {
	_, body := splitFrontMatter(src)
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *Resolver) warnOnce(name, msg string, fields ...zap.Field) {
	if _, ok := r.warned[name]; ok {
		return
	}
	r.warned[name] = struct{}{}
	r.logger.Warn(msg, fields...)
}

// splitFrontMatter separates an optional leading "---" block from a Markdown body.
func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n\r")
		}
	}
	return "", input
}

// EscapeJSON encodes v for use inside a JSON string literal.
func EscapeJSON(v string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}

// Finalize validates a substituted JSON fragment and wraps the re-serialized
// document in a JSON-LD script element.
func Finalize(name, substituted string) (string, error) {
	var doc any
	dec := json.NewDecoder(strings.NewReader(substituted))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("component %s: invalid structured data: %w", name, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("component %s: invalid structured data: trailing content", name)
	}
	return Script(doc)
}

// Script renders v as an indented application/ld+json script element.
func Script(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	body := strings.TrimSuffix(buf.String(), "\n")
	body = strings.ReplaceAll(body, "</", `<\/`)
	return "<script type=\"application/ld+json\">\n" + body + "\n</script>", nil
}
