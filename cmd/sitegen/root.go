package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jaanus110/haagissuvilarent/internal/config"
	"github.com/jaanus110/haagissuvilarent/internal/observability"
)

// app carries state shared by every subcommand once the persistent pre-run
// has loaded configuration.
type app struct {
	envFile  string
	flagEnv  map[string]*string
	cfg      config.Config
	manifest config.Manifest
	logger   *zap.Logger
}

// envFlags maps persistent flags to the environment variables they override.
var envFlags = []struct {
	name, env, usage string
}{
	{"root", "SITE_ROOT", "site source root"},
	{"manifest", "SITE_MANIFEST", "site manifest (default site.yaml under root)"},
	{"out", "SITE_OUTPUT_DIR", "output directory (default dist under root)"},
	{"logs", "SITE_LOG_DIR", "missing translation log directory (default logs under root)"},
	{"base-url", "SITE_BASE_URL", "public base URL"},
	{"default-lang", "SITE_DEFAULT_LANGUAGE", "default language code"},
	{"langs", "SITE_LANGUAGES", "comma separated subset of languages to build"},
	{"log-level", "LOG_LEVEL", "log level (debug, info, warn, error)"},
	{"log-format", "LOG_FORMAT", "log format (console, json)"},
}

func newRootCmd() *cobra.Command {
	a := &app{flagEnv: map[string]*string{}}
	build := &buildOptions{}

	root := &cobra.Command{
		Use:   "sitegen",
		Short: "Build the multilingual caravan rental site",
		Long: `sitegen renders every page template in every configured language,
resolves missing translations through the fallback chain and writes
the static site with its redirect page, sitemaps and robots.txt.

Running without a subcommand performs a full build.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBuild(cmd.Context(), build)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with local overrides")
	for _, f := range envFlags {
		a.flagEnv[f.name] = flags.String(f.name, "", f.usage)
	}
	flags.Bool("no-flag", false, "do not decorate critical fallbacks with warning markers")
	build.bind(root)

	root.AddCommand(newBuildCmd(a), newAuditCmd(a), newServeCmd(a))
	return root
}

// setup loads configuration with flag values taking precedence over the
// environment, then the manifest, then builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	overrides := map[string]string{}
	for _, f := range envFlags {
		if cmd.Flags().Changed(f.name) {
			overrides[f.env] = *a.flagEnv[f.name]
		}
	}
	if noFlag, _ := cmd.Flags().GetBool("no-flag"); noFlag {
		overrides["SITE_FLAG_CRITICAL"] = "false"
	}

	cfg, err := config.Load(config.WithEnvFile(a.envFile), config.WithEnvMap(overrides))
	if err != nil {
		return err
	}
	logger, err := observability.NewLogger(observability.LoggerOptions{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	manifest, err := config.LoadManifest(cfg.Paths.Manifest)
	if err != nil {
		return err
	}
	cfg.ApplyOverrides(&manifest)
	if err := manifest.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.manifest = manifest
	a.logger = logger
	return nil
}
