package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jaanus110/haagissuvilarent/internal/site"
	"github.com/jaanus110/haagissuvilarent/internal/textutil"
)

type buildOptions struct {
	strict bool
	check  bool
}

func (o *buildOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.strict, "strict", false, "fail when any language or page could not be built")
	cmd.Flags().BoolVar(&o.check, "check", false, "audit the output after building")
}

func newBuildCmd(a *app) *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render all languages and pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runBuild(cmd.Context(), opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func (a *app) runBuild(ctx context.Context, opts *buildOptions) error {
	assembler := site.New(a.manifest, site.Options{
		Root:         a.cfg.Paths.Root,
		OutputDir:    a.cfg.Paths.OutputDir,
		LogDir:       a.cfg.Paths.LogDir,
		FlagCritical: a.cfg.Build.FlagCritical,
	}, a.logger)

	res, err := assembler.Build(ctx)
	if err != nil {
		a.logger.Error("build failed", zap.String("build", res.BuildID), zap.Error(err))
		return err
	}
	if opts.strict && len(res.Skipped) > 0 {
		langs := textutil.SortedKeys(res.Skipped)
		return fmt.Errorf("%d language(s) skipped: %s: %w", len(langs), strings.Join(langs, ", "), res.Skipped[langs[0]])
	}
	if opts.strict && len(res.Failed) > 0 {
		return fmt.Errorf("%d page(s) failed, first: %w", len(res.Failed), res.Failed[0])
	}
	if opts.check {
		return a.runAudit(ctx)
	}
	return nil
}
