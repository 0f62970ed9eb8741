package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jaanus110/haagissuvilarent/internal/i18n"
	"github.com/jaanus110/haagissuvilarent/internal/preview"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		rebuild bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Preview the built site locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if rebuild {
				if err := a.runBuild(ctx, &buildOptions{}); err != nil {
					return err
				}
			}
			catalog, err := i18n.Load(
				a.sourcePath(a.manifest.Dirs.Translations),
				a.manifest.LanguageCodes(),
				a.manifest.DefaultLanguage,
				a.logger.Named("i18n"),
			)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Preview.Addr
			}
			handler := preview.NewHandler(preview.Options{
				Dir:       a.cfg.Paths.OutputDir,
				Languages: catalog,
				Logger:    a.logger,
			})
			return preview.Serve(ctx, addr, handler, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default SITE_PREVIEW_ADDR or :8080)")
	cmd.Flags().BoolVar(&rebuild, "build", true, "build before serving")
	return cmd
}

func (a *app) sourcePath(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(a.cfg.Paths.Root, rel)
}
