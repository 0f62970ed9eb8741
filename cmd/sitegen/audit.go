package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jaanus110/haagissuvilarent/internal/audit"
)

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check built pages for leftover placeholders and missing metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runAudit(cmd.Context())
		},
	}
}

func (a *app) runAudit(ctx context.Context) error {
	report, err := audit.Dir(ctx, a.cfg.Paths.OutputDir)
	if err != nil {
		return err
	}
	report.Log(a.logger.Named("audit"))
	return report.Err()
}
