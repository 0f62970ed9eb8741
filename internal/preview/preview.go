// Package preview serves a built output tree locally the way a static host
// with clean URLs would.
package preview

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/jaanus110/haagissuvilarent/internal/observability"
)

// Negotiator picks a language for an Accept-Language header.
type Negotiator interface {
	Negotiate(acceptLang string) string
	Languages() []string
}

// Options configure the preview handler.
type Options struct {
	Dir       string
	Languages Negotiator
	Logger    *zap.Logger
}

// NewHandler returns the preview router.
func NewHandler(opts Options) http.Handler {
	logger := observability.OrNop(opts.Logger).Named("preview")
	s := &server{dir: opts.Dir, langs: opts.Languages}
	if opts.Languages != nil {
		s.known = map[string]struct{}{}
		for _, lang := range opts.Languages.Languages() {
			s.known[lang] = struct{}{}
		}
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	r.Get("/", s.root)
	r.Get("/*", s.static)
	return r
}

type server struct {
	dir   string
	langs Negotiator
	known map[string]struct{}
}

// root sends browsers that announce a language straight to it; anything
// else gets the generated redirect page.
func (s *server) root(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Vary", "Accept-Language")
	if accept := r.Header.Get("Accept-Language"); accept != "" && s.langs != nil {
		http.Redirect(w, r, "/"+s.langs.Negotiate(accept)+"/", http.StatusFound)
		return
	}
	s.serveFile(w, r, "index.html")
}

func (s *server) static(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)
	if strings.HasSuffix(r.URL.Path, "/") && clean != "/" {
		clean += "/"
	}
	rel := strings.TrimPrefix(clean, "/")

	if lang, _, _ := strings.Cut(rel, "/"); s.isLanguage(lang) {
		w.Header().Set("Content-Language", lang)
	}

	for _, candidate := range candidates(rel) {
		if s.serveFile(w, r, candidate) {
			return
		}
	}
	http.NotFound(w, r)
}

// candidates lists the files a clean URL may map to, e.g.
// "et/rental-terms" -> et/rental-terms, et/rental-terms.html.
func candidates(rel string) []string {
	if rel == "" || strings.HasSuffix(rel, "/") {
		return []string{rel + "index.html"}
	}
	if path.Ext(rel) != "" {
		return []string{rel}
	}
	return []string{rel + ".html", rel + "/index.html"}
}

func (s *server) serveFile(w http.ResponseWriter, r *http.Request, rel string) bool {
	full := filepath.Join(s.dir, filepath.FromSlash(rel))
	f, err := os.Open(full)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			http.Error(w, "read error", http.StatusInternalServerError)
			return true
		}
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	if etag, err := fileETag(f); err == nil {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

// fileETag hashes the content of f and rewinds it. Rebuilds change the tag
// even when a file keeps its size and modification second.
func fileETag(f *os.File) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return `W/"` + hex.EncodeToString(h.Sum(nil)) + `"`, nil
}

func (s *server) isLanguage(lang string) bool {
	_, ok := s.known[lang]
	return ok
}

// Serve runs the preview server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	logger = observability.OrNop(logger)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("preview listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
