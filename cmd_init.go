package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"recruitment-tracker/roster"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init <assignments-file> <submissions-file>",
		Short: "Replace all records with the reconciled rosters",
		Long: `Reads the assignment and submission rosters (.csv or .xlsx), joins them on
name and email, and replaces every stored applicant and assignment with the
matched pairs. Unmatched rows on either side are dropped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := roster.LoadAssignments(args[0])
			if err != nil {
				return err
			}
			submissions, err := roster.LoadSubmissions(args[1])
			if err != nil {
				return err
			}

			res, err := a.service.Reconcile(cmd.Context(), assignments, submissions)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Loaded %d applicants.\n", res.Matched)
			if res.UnmatchedAssignments > 0 || res.UnmatchedSubmissions > 0 {
				fmt.Fprintf(out, "Skipped %d assignment rows and %d submission rows with no match.\n",
					res.UnmatchedAssignments, res.UnmatchedSubmissions)
			}
			return nil
		},
	}
}
