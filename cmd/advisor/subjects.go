package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newSubjectsCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List subject families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adv, err := global.setup(cmd)
			if err != nil {
				return err
			}

			subjects, err := adv.courses.Subjects(cmd.Context())
			if err != nil {
				return err
			}

			if global.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), subjects)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tNAME\tCOURSES")
			for _, s := range subjects {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", s.Key, s.Name, s.CourseCount)
			}
			return tw.Flush()
		},
	}
}
