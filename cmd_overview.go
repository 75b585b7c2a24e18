package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recruitment-tracker/models"
	"recruitment-tracker/report"
)

func newOverviewCmd(a *app) *cobra.Command {
	var (
		toFile bool
		asOf   string
	)
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Report submitted, pending and overdue assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := models.Today()
			if asOf != "" {
				d, err := models.ParseDate(asOf)
				if err != nil {
					return fmt.Errorf("invalid --as-of: %w", err)
				}
				today = d
			}

			ov, err := a.service.Overview(cmd.Context(), today)
			if err != nil {
				return err
			}
			if err := report.Print(cmd.OutOrStdout(), ov); err != nil {
				return err
			}

			if !toFile {
				return nil
			}
			newline, err := a.cfg.Report.Newline()
			if err != nil {
				return err
			}
			if err := report.WriteFile(a.cfg.Report.OutputPath, ov, newline); err != nil {
				return err
			}
			a.logger.Info("overview written", zap.String("path", a.cfg.Report.OutputPath))
			return nil
		},
	}
	cmd.Flags().BoolVar(&toFile, "output-to-file", false, "also write the report to the configured output path")
	cmd.Flags().StringVar(&asOf, "as-of", "", "reference date for overdue checks (YYYY-MM-DD, default today)")
	return cmd
}
