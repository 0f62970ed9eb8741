package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile      = ".env"
	defaultRoot         = "."
	defaultManifestFile = "site.yaml"
	defaultOutputDir    = "dist"
	defaultLogDir       = "logs"
	defaultPreviewAddr  = ":8080"
	defaultLogLevel     = "info"
	defaultLogFormat    = "console"
)

// Config captures the runtime configuration of a build, organised by concern.
type Config struct {
	Paths   PathsConfig
	Build   BuildConfig
	Preview PreviewConfig
	Logging LoggingConfig
}

// PathsConfig locates build inputs and outputs. Relative paths are resolved
// against Root.
type PathsConfig struct {
	Root      string
	Manifest  string
	OutputDir string
	LogDir    string
}

// BuildConfig overrides manifest values without editing site.yaml.
type BuildConfig struct {
	BaseURL         string
	DefaultLanguage string
	Languages       []string
	FlagCritical    bool
}

// PreviewConfig configures the local preview server.
type PreviewConfig struct {
	Addr string
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level  string
	Format string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the build configuration by combining defaults, .env overrides
// and environment variables (explicit map > OS env > .env).
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	root := stringWithDefault(lookup, "SITE_ROOT", defaultRoot)
	cfg := Config{
		Paths: PathsConfig{
			Root:      root,
			Manifest:  resolvePath(root, stringWithDefault(lookup, "SITE_MANIFEST", defaultManifestFile)),
			OutputDir: resolvePath(root, stringWithDefault(lookup, "SITE_OUTPUT_DIR", defaultOutputDir)),
			LogDir:    resolvePath(root, stringWithDefault(lookup, "SITE_LOG_DIR", defaultLogDir)),
		},
		Build: BuildConfig{
			BaseURL:         strings.TrimRight(stringWithDefault(lookup, "SITE_BASE_URL", ""), "/"),
			DefaultLanguage: strings.ToLower(stringWithDefault(lookup, "SITE_DEFAULT_LANGUAGE", "")),
			Languages:       csvWithDefault(lookup, "SITE_LANGUAGES"),
			FlagCritical:    boolWithDefault(lookup, "SITE_FLAG_CRITICAL", true),
		},
		Preview: PreviewConfig{
			Addr: stringWithDefault(lookup, "SITE_PREVIEW_ADDR", defaultPreviewAddr),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
			Format: strings.ToLower(stringWithDefault(lookup, "LOG_FORMAT", defaultLogFormat)),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyOverrides copies environment overrides onto the manifest.
func (c Config) ApplyOverrides(m *Manifest) {
	if m == nil {
		return
	}
	if c.Build.BaseURL != "" {
		m.Site.BaseURL = c.Build.BaseURL
	}
	if c.Build.DefaultLanguage != "" {
		m.DefaultLanguage = c.Build.DefaultLanguage
	}
	if len(c.Build.Languages) > 0 {
		keep := make(map[string]struct{}, len(c.Build.Languages))
		for _, code := range c.Build.Languages {
			keep[strings.ToLower(code)] = struct{}{}
		}
		filtered := m.Languages[:0:0]
		for _, lang := range m.Languages {
			if _, ok := keep[lang.Code]; ok {
				filtered = append(filtered, lang)
			}
		}
		m.Languages = filtered
	}
}

func validateConfig(cfg Config) error {
	var missing []string

	if strings.TrimSpace(cfg.Paths.Root) == "" {
		missing = append(missing, "Paths.Root")
	}
	if strings.TrimSpace(cfg.Paths.OutputDir) == "" {
		missing = append(missing, "Paths.OutputDir")
	}
	if strings.TrimSpace(cfg.Paths.LogDir) == "" {
		missing = append(missing, "Paths.LogDir")
	}
	if cfg.Build.BaseURL != "" && !strings.HasPrefix(cfg.Build.BaseURL, "http://") && !strings.HasPrefix(cfg.Build.BaseURL, "https://") {
		missing = append(missing, "Build.BaseURL")
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		missing = append(missing, "Logging.Format")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

func csvWithDefault(lookup func(string) (string, bool), key string) []string {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
