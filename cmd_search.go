package main

import (
	"github.com/spf13/cobra"

	"recruitment-tracker/report"
)

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <netid>",
		Short: "Show an applicant and their assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := a.service.GetApplicant(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return report.RenderApplicant(cmd.OutOrStdout(), detail)
		},
	}
}
